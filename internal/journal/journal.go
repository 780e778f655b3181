// Package journal owns the daily-journal domain: dated entries with mood,
// tags and an optional template, plus the user's tag vocabulary.
package journal

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

// ErrNotFound is returned when no entry carries the requested ID.
var ErrNotFound = errors.New("journal entry not found")

// Template is a prompt the user can start an entry from.
type Template struct {
	ID   string
	Name string
	Body string
}

// Templates lists the built-in journal templates.
var Templates = []Template{
	{
		ID:   "gratitude",
		Name: "3-Part Gratitude Check",
		Body: "Today I am grateful for:\n1. (Person/Relationship)\n2. (Experience/Event)\n3. (Small Detail)\n\nHow did this feeling of gratitude influence my day?",
	},
	{
		ID:   "halt",
		Name: "The H.A.L.T. Check",
		Body: "Before reacting or craving, I will check:\n\nHungry? (Yes/No):\nAngry? (Yes/No):\nLonely? (Yes/No):\nTired? (Yes/No):\n\nWhat action did I take to meet my true need?",
	},
	{
		ID:   "resentment",
		Name: "Resentment Filter",
		Body: "Today I felt resentful toward: (Person/Situation)\n\nWhat did they do?\n\nWhat part of my self-esteem did this threaten?\n\nWhat is my part in this situation?",
	},
	{
		ID:   "step_10",
		Name: "Step 10 Spot Check",
		Body: "Where was I wrong today?\n\nWas I mindful of others?\n\nDid I practice honesty in a difficult situation?\n\nIf I was wrong, did I promptly admit it?",
	},
}

// Store is the slice of the data store this domain needs.
type Store interface {
	Load(ctx context.Context, d registry.Domain) json.RawMessage
	Save(ctx context.Context, d registry.Domain, value json.RawMessage) error
	GenerateID() string
}

// Service reads and writes journal entries and the tag vocabulary through
// the facade.
type Service struct {
	store Store
}

// NewService constructs a journal Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Entries returns all journal entries, newest first.
func (s *Service) Entries(ctx context.Context) []models.JournalEntry {
	var entries []models.JournalEntry
	if err := json.Unmarshal(s.store.Load(ctx, registry.Journal), &entries); err != nil {
		return nil
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries
}

// Add creates a new entry, merges its tags into the vocabulary, and
// returns it.
func (s *Service) Add(ctx context.Context, text string, mood int, tags []string, template string) (models.JournalEntry, error) {
	entry := models.JournalEntry{
		ID:        s.store.GenerateID(),
		Text:      text,
		Mood:      mood,
		Tags:      tags,
		Template:  template,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	entries := append([]models.JournalEntry{entry}, s.Entries(ctx)...)
	if err := s.saveEntries(ctx, entries); err != nil {
		return models.JournalEntry{}, err
	}
	if err := s.mergeTags(ctx, tags); err != nil {
		return models.JournalEntry{}, err
	}
	return entry, nil
}

// Update replaces the text, mood and tags of the entry with the given ID.
// The entry's ID and timestamp are kept; IDs are never regenerated.
func (s *Service) Update(ctx context.Context, id, text string, mood int, tags []string) error {
	entries := s.Entries(ctx)
	found := false
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Text = text
			entries[i].Mood = mood
			entries[i].Tags = tags
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}
	if err := s.saveEntries(ctx, entries); err != nil {
		return err
	}
	return s.mergeTags(ctx, tags)
}

// Delete removes the entry with the given ID. Its ID is never reused.
func (s *Service) Delete(ctx context.Context, id string) error {
	entries := s.Entries(ctx)
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return ErrNotFound
	}
	return s.saveEntries(ctx, kept)
}

// Tags returns the tag vocabulary, sorted.
func (s *Service) Tags(ctx context.Context) []string {
	var tags []string
	if err := json.Unmarshal(s.store.Load(ctx, registry.JournalTags), &tags); err != nil {
		return nil
	}
	sort.Strings(tags)
	return tags
}

func (s *Service) saveEntries(ctx context.Context, entries []models.JournalEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding journal: %w", err)
	}
	return s.store.Save(ctx, registry.Journal, raw)
}

// mergeTags unions tags into the stored vocabulary.
func (s *Service) mergeTags(ctx context.Context, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	known := s.Tags(ctx)
	seen := make(map[string]bool, len(known))
	for _, t := range known {
		seen[t] = true
	}
	changed := false
	for _, t := range tags {
		if t != "" && !seen[t] {
			known = append(known, t)
			seen[t] = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	sort.Strings(known)
	raw, err := json.Marshal(known)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}
	return s.store.Save(ctx, registry.JournalTags, raw)
}
