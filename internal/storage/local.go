package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/addictsagenda/agenda/internal/registry"
)

// LocalStore persists every domain inside a single JSON blob file on the
// device. Saves are whole-blob merge writes: the blob is re-read, the one
// key is replaced, and the blob is rewritten, so a write to one key never
// clobbers a sibling. A corrupted blob is treated as empty rather than
// surfaced; data-loss risk is mitigated by export, not by transactions.
type LocalStore struct {
	mu   sync.Mutex
	path string
	log  *zap.Logger
}

// NewLocalStore creates a LocalStore backed by the blob file at path.
// The file is created lazily on first save.
func NewLocalStore(path string, log *zap.Logger) *LocalStore {
	return &LocalStore{path: path, log: log}
}

// Load returns the domain's value from the blob, normalized through the
// registry, or the domain default when absent or unreadable.
func (ls *LocalStore) Load(_ context.Context, d registry.Domain) json.RawMessage {
	desc := registry.Lookup(d)

	ls.mu.Lock()
	blob := ls.readBlob()
	ls.mu.Unlock()

	raw, ok := blob[desc.Key]
	if !ok {
		return desc.Default
	}
	return desc.Normalize(raw)
}

// Save merges value into the blob under the domain's key. On any failure
// the prior blob is left untouched and the error is logged and returned.
func (ls *LocalStore) Save(_ context.Context, d registry.Domain, value json.RawMessage) error {
	desc := registry.Lookup(d)

	ls.mu.Lock()
	defer ls.mu.Unlock()

	blob := ls.readBlob()
	blob[desc.Key] = desc.Normalize(value)
	if err := ls.writeBlob(blob); err != nil {
		ls.log.Error("saving local blob", zap.String("key", desc.Key), zap.Error(err))
		return err
	}
	return nil
}

// LoadAll returns every populated domain from the blob. Keys that left the
// registry are dropped; unset domains are omitted, not defaulted.
func (ls *LocalStore) LoadAll(_ context.Context) map[string]json.RawMessage {
	ls.mu.Lock()
	blob := ls.readBlob()
	ls.mu.Unlock()

	out := make(map[string]json.RawMessage, len(blob))
	for key, raw := range blob {
		desc, ok := registry.ByKey(key)
		if !ok {
			continue
		}
		out[key] = desc.Normalize(raw)
	}
	return out
}

// DeleteAll removes the blob file entirely.
func (ls *LocalStore) DeleteAll(_ context.Context) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := os.Remove(ls.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		ls.log.Error("deleting local blob", zap.Error(err))
		return err
	}
	return nil
}

// readBlob loads the blob file. A missing or unparseable file yields an
// empty blob; parse failures are logged once here and never propagated.
// Callers must hold ls.mu.
func (ls *LocalStore) readBlob() map[string]json.RawMessage {
	blob := make(map[string]json.RawMessage)

	data, err := os.ReadFile(ls.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			ls.log.Error("reading local blob", zap.Error(err))
		}
		return blob
	}
	if err := json.Unmarshal(data, &blob); err != nil {
		ls.log.Error("local blob corrupted, treating as empty", zap.Error(err))
		return make(map[string]json.RawMessage)
	}
	return blob
}

// writeBlob serializes the blob and replaces the file atomically, so a
// failed write cannot leave a half-written blob behind. Callers must hold
// ls.mu.
func (ls *LocalStore) writeBlob(blob map[string]json.RawMessage) error {
	data, err := json.Marshal(blob)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(ls.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	tmp := ls.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, ls.path)
}
