// Package goals owns the goals-list domain.
package goals

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

// ErrNotFound is returned when no goal carries the requested ID.
var ErrNotFound = errors.New("goal not found")

// Store is the slice of the data store this domain needs.
type Store interface {
	Load(ctx context.Context, d registry.Domain) json.RawMessage
	Save(ctx context.Context, d registry.Domain, value json.RawMessage) error
	GenerateID() string
}

// Service reads and writes goals through the facade.
type Service struct {
	store Store
}

// NewService constructs a goals Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns all goals, newest first.
func (s *Service) List(ctx context.Context) []models.Goal {
	var goals []models.Goal
	if err := json.Unmarshal(s.store.Load(ctx, registry.Goals), &goals); err != nil {
		return nil
	}
	sort.SliceStable(goals, func(i, j int) bool {
		return goals[i].Timestamp > goals[j].Timestamp
	})
	return goals
}

// Add creates a new goal and returns it.
func (s *Service) Add(ctx context.Context, text string) (models.Goal, error) {
	goal := models.Goal{
		ID:        s.store.GenerateID(),
		Text:      text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.save(ctx, append([]models.Goal{goal}, s.List(ctx)...)); err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

// Toggle flips the completed flag of the goal with the given ID and
// returns its new state.
func (s *Service) Toggle(ctx context.Context, id string) (bool, error) {
	goals := s.List(ctx)
	for i := range goals {
		if goals[i].ID == id {
			goals[i].Completed = !goals[i].Completed
			if err := s.save(ctx, goals); err != nil {
				return false, err
			}
			return goals[i].Completed, nil
		}
	}
	return false, ErrNotFound
}

// Edit replaces the goal's text and refreshes its timestamp.
func (s *Service) Edit(ctx context.Context, id, text string) error {
	goals := s.List(ctx)
	for i := range goals {
		if goals[i].ID == id {
			goals[i].Text = text
			goals[i].Timestamp = time.Now().UTC().Format(time.RFC3339)
			return s.save(ctx, goals)
		}
	}
	return ErrNotFound
}

// Delete removes the goal with the given ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	goals := s.List(ctx)
	kept := goals[:0]
	for _, g := range goals {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(goals) {
		return ErrNotFound
	}
	return s.save(ctx, kept)
}

func (s *Service) save(ctx context.Context, goals []models.Goal) error {
	raw, err := json.Marshal(goals)
	if err != nil {
		return fmt.Errorf("encoding goals: %w", err)
	}
	return s.store.Save(ctx, registry.Goals, raw)
}
