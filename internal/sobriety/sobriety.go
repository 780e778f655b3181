// Package sobriety owns the sobriety-date domain: setting the date and
// deriving day counts and milestones from it.
package sobriety

import (
	"context"
	"encoding/json"
	"time"

	"github.com/addictsagenda/agenda/internal/registry"
)

// isoLayout matches the millisecond ISO-8601 form the app has always
// stored, e.g. "2023-01-01T00:00:00.000Z".
const isoLayout = "2006-01-02T15:04:05.000Z"

// Milestone is a day-count achievement.
type Milestone struct {
	Days  int
	Label string
}

// Milestones lists the celebrated day counts, ascending.
var Milestones = []Milestone{
	{1, "24 Hours"},
	{30, "30 Days"},
	{60, "60 Days"},
	{90, "90 Days"},
	{180, "6 Months"},
	{365, "1 Year"},
	{730, "2 Years"},
	{1825, "5 Years"},
}

// Store is the slice of the data store this domain needs.
type Store interface {
	Load(ctx context.Context, d registry.Domain) json.RawMessage
	Save(ctx context.Context, d registry.Domain, value json.RawMessage) error
}

// Service reads and writes the sobriety date through the facade.
type Service struct {
	store Store
}

// NewService constructs a sobriety Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Date returns the stored sobriety date. The second return is false when
// no date has been set.
func (s *Service) Date(ctx context.Context) (time.Time, bool) {
	raw := s.store.Load(ctx, registry.Sobriety)
	var iso string
	if err := json.Unmarshal(raw, &iso); err != nil || iso == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SetDate stores the sobriety date.
func (s *Service) SetDate(ctx context.Context, date time.Time) error {
	iso := date.UTC().Format(isoLayout)
	value, err := json.Marshal(iso)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, registry.Sobriety, value)
}

// DaysSober returns the number of whole days between the sobriety date
// and now, never negative. Zero with no date set.
func (s *Service) DaysSober(ctx context.Context, now time.Time) int {
	date, ok := s.Date(ctx)
	if !ok {
		return 0
	}
	days := int(now.Sub(date).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// NextMilestone returns the first milestone not yet reached. The second
// return is false once every milestone has been passed or no date is set.
func (s *Service) NextMilestone(ctx context.Context, now time.Time) (Milestone, bool) {
	if _, ok := s.Date(ctx); !ok {
		return Milestone{}, false
	}
	days := s.DaysSober(ctx, now)
	for _, m := range Milestones {
		if days < m.Days {
			return m, true
		}
	}
	return Milestone{}, false
}

// Reached returns every milestone already achieved, ascending.
func (s *Service) Reached(ctx context.Context, now time.Time) []Milestone {
	days := s.DaysSober(ctx, now)
	if _, ok := s.Date(ctx); !ok {
		return nil
	}
	var out []Milestone
	for _, m := range Milestones {
		if days >= m.Days {
			out = append(out, m)
		}
	}
	return out
}
