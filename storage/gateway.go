// Package storage serializes snapshots, accounts and the session pointer into a core.KVStore.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/roster"
)

// Storage keys
const (
	DataKey    = "ogrenci_puanlama_data_v2" // single-user snapshot
	UsersKey   = "ogrenci_users"            // accounts, keyed by normalized username
	SessionKey = "ogrenci_auth"             // session pointer
	probeKey   = "__storage_test__"
)

// Export formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Gateway loads and saves the single-user snapshot.
type Gateway struct {
	kv  core.KVStore
	log core.Logger
}

func NewGateway(kv core.KVStore, log core.Logger) *Gateway {
	return &Gateway{kv: kv, log: log}
}

// Probe writes and removes a throwaway key. Any failure means the medium cannot be used.
func (g *Gateway) Probe(ctx context.Context) error {
	return Probe(ctx, g.kv)
}

func Probe(ctx context.Context, kv core.KVStore) error {
	if err := kv.Set(ctx, probeKey, []byte(probeKey)); err != nil {
		return errors.Wrapf(core.ErrStorageUnavailable, "writing probe: %v", err)
	}
	if err := kv.Delete(ctx, probeKey); err != nil {
		return errors.Wrapf(core.ErrStorageUnavailable, "removing probe: %v", err)
	}
	return nil
}

// Load returns the stored snapshot. A missing or unreadable snapshot yields the default one;
// only a failing medium is an error.
func (g *Gateway) Load(ctx context.Context) (roster.Snapshot, error) {
	b, err := g.kv.Get(ctx, DataKey)
	if err != nil {
		if errors.Is(err, core.ErrKeyNotFound) {
			return roster.DefaultSnapshot(), nil
		}
		return roster.Snapshot{}, core.NewStorageError("load", DataKey, err)
	}

	var snap roster.Snapshot
	if err = json.Unmarshal(b, &snap); err != nil {
		if g.log != nil {
			g.log.Warn("stored snapshot is corrupt; using defaults", err)
		}
		return roster.DefaultSnapshot(), nil
	}
	if snap.Classes == nil {
		snap.Classes = []roster.Class{}
	}
	return snap, nil
}

// SaveSnapshot implements roster.Saver.
func (g *Gateway) SaveSnapshot(ctx context.Context, snap roster.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	if err = g.kv.Set(ctx, DataKey, b); err != nil {
		return core.NewStorageError("save", DataKey, err)
	}
	return nil
}

// Clear deletes the stored snapshot; the next Load returns the defaults.
func (g *Gateway) Clear(ctx context.Context) error {
	if err := g.kv.Delete(ctx, DataKey); err != nil {
		return core.NewStorageError("clear", DataKey, err)
	}
	return nil
}

// Export serializes a snapshot for download.
func Export(snap roster.Snapshot, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		b, err := json.MarshalIndent(snap, "", "  ")
		return b, errors.Wrap(err, "encoding json")
	case FormatYAML, "yml":
		b, err := yaml.Marshal(snap)
		return b, errors.Wrap(err, "encoding yaml")
	default:
		return nil, errors.Wrap(ErrUnknownFormat, format)
	}
}

// ExportFilename names an export taken at `t`, e.g. ogrenci_puanlari_2024-05-01.json.
func ExportFilename(t time.Time, format string) string {
	ext := FormatJSON
	if f := strings.ToLower(format); f == FormatYAML || f == "yml" {
		ext = FormatYAML
	}
	return fmt.Sprintf("ogrenci_puanlari_%s.%s", t.Format("2006-01-02"), ext)
}

// ContentType returns the MIME type of an export format.
func ContentType(format string) string {
	if f := strings.ToLower(format); f == FormatYAML || f == "yml" {
		return "application/yaml"
	}
	return "application/json"
}
