package bootstrap

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scorebook/core"
)

func testConfig(driver string) *core.Config {
	conf := &core.Config{AppName: "Scorebook", Env: "TEST", TestMode: true, Mode: core.ModeMulti}
	conf.Server.Address = "127.0.0.1:0"
	conf.Server.ShutdownTimeout = time.Second
	conf.Server.DisableReqLogs = true
	conf.Storage.Driver = driver
	return conf
}

func TestNew(t *testing.T) {
	app, err := New(context.Background(), testConfig(core.DriverMemory), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(app.Close)

	assert.True(t, app.Workspace.IsMultiUser())

	server := app.NewServer()
	for _, path := range []string{"/", "/metrics"} {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNew_unknownDriver(t *testing.T) {
	_, err := New(context.Background(), testConfig("floppy"), log.New(io.Discard, "", 0))
	assert.EqualError(t, err, `opening storage: unknown storage driver "floppy"`)
}

func TestServe_stopsWithContext(t *testing.T) {
	app, err := New(context.Background(), testConfig(core.DriverMemory), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(app.Close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
