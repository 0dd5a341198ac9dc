package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/scorebook/apps/bootstrap"
	"github.com/trezcool/scorebook/core"
)

func main() {
	conf := core.NewConfig()
	ctx := context.Background()

	// logs go to stderr, command output to stdout
	app, err := bootstrap.New(ctx, conf, log.New(os.Stderr, "CLI : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))
	if err != nil {
		log.Fatalf("CLI : %v", err)
	}

	cli := commandLine{
		ws:         app.Workspace,
		out:        os.Stdout,
		validate:   app.Validate,
		translator: app.Translator,
		dsn:        conf.PostgresURL(),
		serve:      app.Serve,
	}
	err = cli.run(ctx, os.Args)
	app.Close()
	if err != nil {
		if err != errHelp {
			printError(os.Stderr, err)
		}
		os.Exit(1)
	}
}
