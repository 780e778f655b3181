// Package export implements full-data backup and restore. Exports are
// wrapped in a versioned envelope so future domain additions or renames
// can be migrated on import instead of silently failing to map; imports
// also accept the legacy bare key-to-value object produced by earlier app
// versions.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/addictsagenda/agenda/internal/registry"
)

// SchemaVersion identifies the current envelope layout.
const SchemaVersion = 1

// Envelope is the on-disk backup format.
type Envelope struct {
	SchemaVersion int                        `json:"schema_version"`
	ExportedAt    string                     `json:"exported_at"`
	Domains       map[string]json.RawMessage `json:"domains"`
}

// Store is the slice of the data store the export service needs.
type Store interface {
	Save(ctx context.Context, d registry.Domain, value json.RawMessage) error
	LoadAll(ctx context.Context) map[string]json.RawMessage
}

// Service produces and restores backups through the active backend.
type Service struct {
	store Store
}

// NewService constructs an export Service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Export returns the full backup document as indented JSON. Unset domains
// are omitted, not defaulted.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	env := Envelope{
		SchemaVersion: SchemaVersion,
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		Domains:       s.store.LoadAll(ctx),
	}
	return json.MarshalIndent(env, "", "  ")
}

// Import restores a backup into the active backend, one save per domain.
// It accepts both the current envelope and the legacy bare key-to-value
// map. Keys outside the registry are skipped; undecodable values collapse
// to their domain default on save. Returns the number of domains restored.
func (s *Service) Import(ctx context.Context, data []byte) (int, error) {
	domains, err := decodeBackup(data)
	if err != nil {
		return 0, err
	}

	restored := 0
	for key, value := range domains {
		desc, ok := registry.ByKey(key)
		if !ok {
			continue
		}
		if err := s.store.Save(ctx, desc.Domain, value); err != nil {
			return restored, fmt.Errorf("restoring %s: %w", key, err)
		}
		restored++
	}
	return restored, nil
}

// decodeBackup unwraps either backup format into a key-to-value map.
func decodeBackup(data []byte) (map[string]json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err == nil && env.SchemaVersion > 0 {
		if env.SchemaVersion > SchemaVersion {
			return nil, fmt.Errorf("backup schema version %d is newer than supported %d", env.SchemaVersion, SchemaVersion)
		}
		return env.Domains, nil
	}

	// Legacy format: a bare object keyed by storage keys.
	var legacy map[string]json.RawMessage
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("unrecognized backup format: %w", err)
	}
	return legacy, nil
}
