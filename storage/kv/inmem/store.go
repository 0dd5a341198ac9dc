// Package inmemkv is a process-local core.KVStore, used in tests and with the "memory" driver.
package inmemkv

import (
	"context"
	"sync"

	"github.com/trezcool/scorebook/core"
)

type Store struct {
	sync.RWMutex
	table map[string][]byte
}

func Open() *Store {
	return &Store{table: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.RLock()
	defer s.RUnlock()

	if v, ok := s.table[key]; ok {
		return append([]byte(nil), v...), nil
	}
	return nil, core.ErrKeyNotFound
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.Lock()
	defer s.Unlock()

	s.table[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.Lock()
	defer s.Unlock()

	delete(s.table, key)
	return nil
}

func (s *Store) Close() error { return nil }
