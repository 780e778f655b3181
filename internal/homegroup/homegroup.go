// Package homegroup owns the homegroup domains: the by-date meeting
// tracker and the member roster.
package homegroup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/addictsagenda/agenda/internal/models"
	"github.com/addictsagenda/agenda/internal/registry"
)

// ErrNotFound is returned when no member carries the requested ID.
var ErrNotFound = errors.New("member not found")

// dateKey is the YYYY-MM-DD form tracker entries are keyed by.
const dateKey = "2006-01-02"

// Store is the slice of the data store this domain needs.
type Store interface {
	Load(ctx context.Context, d registry.Domain) json.RawMessage
	Save(ctx context.Context, d registry.Domain, value json.RawMessage) error
	GenerateID() string
}

// Service reads and writes the tracker and roster through the facade.
type Service struct {
	store Store
}

// NewService constructs a homegroup Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Entries returns the full tracker map keyed by date.
func (s *Service) Entries(ctx context.Context) map[string]models.TrackerEntry {
	entries := map[string]models.TrackerEntry{}
	if err := json.Unmarshal(s.store.Load(ctx, registry.HomegroupTracker), &entries); err != nil {
		return map[string]models.TrackerEntry{}
	}
	return entries
}

// Entry returns the tracker entry for the given day, if recorded.
func (s *Service) Entry(ctx context.Context, day time.Time) (models.TrackerEntry, bool) {
	e, ok := s.Entries(ctx)[day.Format(dateKey)]
	return e, ok
}

// SetEntry records the tracker entry for the given day, replacing any
// previous entry for that date and leaving other dates untouched.
func (s *Service) SetEntry(ctx context.Context, day time.Time, entry models.TrackerEntry) error {
	entries := s.Entries(ctx)
	entries[day.Format(dateKey)] = entry
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding tracker: %w", err)
	}
	return s.store.Save(ctx, registry.HomegroupTracker, raw)
}

// Members returns the roster sorted by name.
func (s *Service) Members(ctx context.Context) []models.Member {
	var members []models.Member
	if err := json.Unmarshal(s.store.Load(ctx, registry.HomegroupMembers), &members); err != nil {
		return nil
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Name < members[j].Name
	})
	return members
}

// AddMember creates a roster entry and returns it.
func (s *Service) AddMember(ctx context.Context, m models.Member) (models.Member, error) {
	m.ID = s.store.GenerateID()
	if err := s.saveMembers(ctx, append(s.Members(ctx), m)); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// RemoveMember deletes the roster entry with the given ID.
func (s *Service) RemoveMember(ctx context.Context, id string) error {
	members := s.Members(ctx)
	kept := members[:0]
	for _, m := range members {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(members) {
		return ErrNotFound
	}
	return s.saveMembers(ctx, kept)
}

func (s *Service) saveMembers(ctx context.Context, members []models.Member) error {
	raw, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("encoding members: %w", err)
	}
	return s.store.Save(ctx, registry.HomegroupMembers, raw)
}
