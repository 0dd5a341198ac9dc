package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scorebook/core"
	filekv "github.com/trezcool/scorebook/storage/kv/file"
	inmemkv "github.com/trezcool/scorebook/storage/kv/inmem"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	conf := new(core.Config)

	conf.Storage.Driver = core.DriverMemory
	kv, err := Open(ctx, conf)
	require.NoError(t, err)
	assert.IsType(t, &inmemkv.Store{}, kv)

	conf.Storage.Driver = core.DriverFile
	conf.Storage.DataDir = filepath.Join(t.TempDir(), "scorebook")
	kv, err = Open(ctx, conf)
	require.NoError(t, err)
	assert.IsType(t, &filekv.Store{}, kv)

	conf.Storage.Driver = "floppy"
	_, err = Open(ctx, conf)
	assert.Error(t, err)
}
