package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core"
	filekv "github.com/trezcool/scorebook/storage/kv/file"
	inmemkv "github.com/trezcool/scorebook/storage/kv/inmem"
	pgkv "github.com/trezcool/scorebook/storage/kv/postgres"
	rediskv "github.com/trezcool/scorebook/storage/kv/redis"
)

const redisPrefix = "scorebook:"

// Open returns the KV store selected by conf.Storage.Driver.
func Open(ctx context.Context, conf *core.Config) (core.KVStore, error) {
	switch conf.Storage.Driver {
	case core.DriverMemory:
		return inmemkv.Open(), nil
	case core.DriverFile:
		store, err := filekv.Open(conf.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case core.DriverRedis:
		rc := conf.Storage.Redis
		store, err := rediskv.Open(ctx, rc.Address, rc.Password, rc.DB, redisPrefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	case core.DriverPostgres:
		store, err := pgkv.Open(ctx, conf.PostgresURL())
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
}
