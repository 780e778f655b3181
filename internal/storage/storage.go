// Package storage implements the persistence layer shared by every feature
// module: a Backend contract with two interchangeable implementations (the
// device-local blob store and the remote vault client) and the DataStore
// facade that selects between them based on the session kind.
//
// The contract deliberately never fails a read: absence, decode failures
// and transport failures are logged at the backend boundary and resolve to
// the domain's declared default, so feature modules never special-case
// backend errors. Writes report a distinguishable ErrNotPersisted when
// there is no destination.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/addictsagenda/agenda/internal/idgen"
	"github.com/addictsagenda/agenda/internal/registry"
)

// ErrNotPersisted is returned by Save and DeleteAll when the active backend
// has no destination to write to (remote backend without a session). It is
// an expected transient state during auth transitions, not a failure.
var ErrNotPersisted = errors.New("no active session, value not persisted")

// Backend is the uniform contract both storage implementations satisfy.
//
// Load and LoadAll never fail: failures resolve to the domain default or an
// empty document. Save and DeleteAll return ErrNotPersisted when the write
// had no destination, and the underlying error when the write was attempted
// and failed; prior persisted state is left unchanged either way.
type Backend interface {
	// Load returns the current value of the domain as canonical JSON, or
	// the domain default if the value is absent or unreadable.
	Load(ctx context.Context, d registry.Domain) json.RawMessage
	// Save persists value under the domain's key, touching no other key.
	Save(ctx context.Context, d registry.Domain, value json.RawMessage) error
	// LoadAll returns every populated domain keyed by its storage key.
	// Unset domains are omitted, not defaulted.
	LoadAll(ctx context.Context) map[string]json.RawMessage
	// DeleteAll removes every domain's data.
	DeleteAll(ctx context.Context) error
}

// SessionKind is the signal from the authentication collaborator that
// decides which backend is active.
type SessionKind string

const (
	// SessionCloud selects the remote vault backend.
	SessionCloud SessionKind = "cloud"
	// SessionLocal selects the device-local backend. Any kind other than
	// SessionCloud, including an empty one, behaves the same way.
	SessionLocal SessionKind = "local"
)

// DataStore is the single object feature modules call. It holds both
// backends and delegates every operation verbatim to whichever one is
// active; the switching decision lives in SetStorageEngine and nowhere
// else. A failed remote call never falls back to local: silent
// data-location drift would be worse than a visible failure.
type DataStore struct {
	mu     sync.RWMutex
	local  Backend
	remote Backend
	active Backend
	kind   SessionKind
	log    *zap.Logger
}

// New constructs a DataStore over the two backends. The local backend is
// active until SetStorageEngine says otherwise.
func New(local, remote Backend, log *zap.Logger) *DataStore {
	return &DataStore{
		local:  local,
		remote: remote,
		active: local,
		kind:   SessionLocal,
		log:    log,
	}
}

// SetStorageEngine activates the backend matching the session kind:
// SessionCloud activates the remote backend, anything else the local one.
// Calling it repeatedly with the same kind is a no-op. An operation already
// in flight completes against the backend reference it captured.
func (s *DataStore) SetStorageEngine(kind SessionKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.local
	nextKind := SessionLocal
	if kind == SessionCloud {
		next = s.remote
		nextKind = SessionCloud
	}
	if next == s.active {
		return
	}
	s.active = next
	s.kind = nextKind
	s.log.Info("storage engine switched", zap.String("engine", string(nextKind)))
}

// Engine returns the kind of the currently active backend.
func (s *DataStore) Engine() SessionKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kind
}

func (s *DataStore) backend() Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Load delegates to the active backend.
func (s *DataStore) Load(ctx context.Context, d registry.Domain) json.RawMessage {
	return s.backend().Load(ctx, d)
}

// Save delegates to the active backend.
func (s *DataStore) Save(ctx context.Context, d registry.Domain, value json.RawMessage) error {
	return s.backend().Save(ctx, d, value)
}

// LoadAll delegates to the active backend.
func (s *DataStore) LoadAll(ctx context.Context) map[string]json.RawMessage {
	return s.backend().LoadAll(ctx)
}

// DeleteAll delegates to the active backend.
func (s *DataStore) DeleteAll(ctx context.Context) error {
	return s.backend().DeleteAll(ctx)
}

// GenerateID returns a new entry identifier. ID generation is
// backend-independent so records created under either backend share one
// shape.
func (s *DataStore) GenerateID() string {
	return idgen.New()
}
