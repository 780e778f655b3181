// Package meetings owns the user's meeting list and the 90-in-90
// challenge domain.
package meetings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/addictsagenda/agenda/internal/models"
	"github.com/addictsagenda/agenda/internal/registry"
)

// ErrNotFound is returned when no meeting carries the requested ID.
var ErrNotFound = errors.New("meeting not found")

// Store is the slice of the data store this domain needs.
type Store interface {
	Load(ctx context.Context, d registry.Domain) json.RawMessage
	Save(ctx context.Context, d registry.Domain, value json.RawMessage) error
	GenerateID() string
}

// Service reads and writes the meeting list through the facade.
type Service struct {
	store Store
}

// NewService constructs a meetings Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns all meetings sorted by name.
func (s *Service) List(ctx context.Context) []models.Meeting {
	var meetings []models.Meeting
	if err := json.Unmarshal(s.store.Load(ctx, registry.Meetings), &meetings); err != nil {
		return nil
	}
	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].Name < meetings[j].Name
	})
	return meetings
}

// Add creates a new meeting entry and returns it.
func (s *Service) Add(ctx context.Context, m models.Meeting) (models.Meeting, error) {
	m.ID = s.store.GenerateID()
	if err := s.save(ctx, append(s.List(ctx), m)); err != nil {
		return models.Meeting{}, err
	}
	return m, nil
}

// Remove deletes the meeting with the given ID.
func (s *Service) Remove(ctx context.Context, id string) error {
	meetings := s.List(ctx)
	kept := meetings[:0]
	for _, m := range meetings {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(meetings) {
		return ErrNotFound
	}
	return s.save(ctx, kept)
}

func (s *Service) save(ctx context.Context, meetings []models.Meeting) error {
	raw, err := json.Marshal(meetings)
	if err != nil {
		return fmt.Errorf("encoding meetings: %w", err)
	}
	return s.store.Save(ctx, registry.Meetings, raw)
}
