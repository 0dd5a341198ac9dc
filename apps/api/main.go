package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/scorebook/apps/bootstrap"
	"github.com/trezcool/scorebook/core"
)

func main() {
	conf := core.NewConfig()
	ctx := context.Background()

	app, err := bootstrap.New(ctx, conf, log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))
	if err != nil {
		log.Fatalf("API : %v", err)
	}
	defer app.Close()

	app.Logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer app.Logger.Info("Application stopped")

	if err = app.Serve(ctx); err != nil {
		app.Logger.Error(err.Error(), err)
	}
}
