// Package service provides business-logic services for authentication and
// vault documents, delegating persistence to repository interfaces.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/addictsagenda/agenda/internal/registry"
)

// ErrUnknownKey is returned when a request names a storage key outside the
// registry.
var ErrUnknownKey = errors.New("unknown storage key")

// ErrFieldAbsent is returned when the requested field was never written
// for this user. It maps to 404 at the HTTP layer; the client resolves it
// to the domain default.
var ErrFieldAbsent = errors.New("field absent")

// VaultRepository defines the persistence operations needed by the
// VaultService.
type VaultRepository interface {
	// GetValue fetches one field of the user's document; sql.ErrNoRows
	// when the field was never written.
	GetValue(ctx context.Context, login, key string) (json.RawMessage, error)
	// GetDocument fetches the user's full document.
	GetDocument(ctx context.Context, login string) (map[string]json.RawMessage, error)
	// PutValue merge-writes one field of the user's document.
	PutValue(ctx context.Context, login, key string, value json.RawMessage) error
	// DeleteDocument removes the user's entire document.
	DeleteDocument(ctx context.Context, login string) error
}

// VaultService implements the per-user document operations behind the
// remote storage backend. Keys are validated against the registry and
// values normalized through it before they are persisted, so a buggy or
// outdated client cannot poison a user's document with undecodable data.
type VaultService struct {
	repo VaultRepository
}

// NewVaultService constructs a VaultService with the provided repository.
func NewVaultService(repo VaultRepository) *VaultService {
	return &VaultService{repo: repo}
}

// GetValue returns one field of the user's document.
// Returns ErrUnknownKey for keys outside the registry and ErrFieldAbsent
// when the field was never written.
func (s *VaultService) GetValue(ctx context.Context, login, key string) (json.RawMessage, error) {
	if !registry.KnownKey(key) {
		return nil, ErrUnknownKey
	}
	value, err := s.repo.GetValue(ctx, login, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFieldAbsent
		}
		return nil, err
	}
	return value, nil
}

// GetDocument returns the user's full document.
func (s *VaultService) GetDocument(ctx context.Context, login string) (map[string]json.RawMessage, error) {
	return s.repo.GetDocument(ctx, login)
}

// PutValue normalizes value for the key's domain and merge-writes it into
// the user's document.
func (s *VaultService) PutValue(ctx context.Context, login, key string, value json.RawMessage) error {
	desc, ok := registry.ByKey(key)
	if !ok {
		return ErrUnknownKey
	}
	if err := s.repo.PutValue(ctx, login, key, desc.Normalize(value)); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// DeleteDocument wipes the user's document.
func (s *VaultService) DeleteDocument(ctx context.Context, login string) error {
	return s.repo.DeleteDocument(ctx, login)
}
