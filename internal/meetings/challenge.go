package meetings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/addictsagenda/agenda/internal/models"
	"github.com/addictsagenda/agenda/internal/registry"
)

// ChallengeDays is the length of the 90-in-90 challenge.
const ChallengeDays = 90

// ErrNoChallenge is returned when no challenge has been started.
var ErrNoChallenge = errors.New("no challenge in progress")

// ErrDayOutOfRange is returned for day indexes outside [0, ChallengeDays).
var ErrDayOutOfRange = errors.New("challenge day out of range")

// Progress summarizes the state of a running challenge.
type Progress struct {
	// CurrentDay is the 1-based day of the challenge, capped at
	// ChallengeDays.
	CurrentDay int
	// Attended counts days with a logged meeting.
	Attended int
}

// ChallengeService owns the 90-in-90 challenge state.
type ChallengeService struct {
	store Store
}

// NewChallengeService constructs a ChallengeService.
func NewChallengeService(store Store) *ChallengeService {
	return &ChallengeService{store: store}
}

// Current returns the running challenge. The second return is false when
// none has been started.
func (s *ChallengeService) Current(ctx context.Context) (models.Challenge, bool) {
	raw := s.store.Load(ctx, registry.NinetyInNinety)
	var ch models.Challenge
	if err := json.Unmarshal(raw, &ch); err != nil || ch.StartDate == "" {
		return models.Challenge{}, false
	}
	if ch.Attendance == nil {
		ch.Attendance = map[string]bool{}
	}
	return ch, true
}

// Start begins a new challenge on the given day, resetting any previous
// progress. The start is anchored to midnight UTC.
func (s *ChallengeService) Start(ctx context.Context, day time.Time) error {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	ch := models.Challenge{
		StartDate:  start.Format(time.RFC3339),
		Attendance: map[string]bool{},
	}
	return s.save(ctx, ch)
}

// ToggleDay flips meeting attendance for the given 0-based challenge day.
func (s *ChallengeService) ToggleDay(ctx context.Context, dayIndex int) error {
	if dayIndex < 0 || dayIndex >= ChallengeDays {
		return ErrDayOutOfRange
	}
	ch, ok := s.Current(ctx)
	if !ok {
		return ErrNoChallenge
	}
	start, err := time.Parse(time.RFC3339, ch.StartDate)
	if err != nil {
		return fmt.Errorf("challenge start date unreadable: %w", err)
	}
	dateKey := start.AddDate(0, 0, dayIndex).Format("2006-01-02")
	if ch.Attendance[dateKey] {
		delete(ch.Attendance, dateKey)
	} else {
		ch.Attendance[dateKey] = true
	}
	return s.save(ctx, ch)
}

// Progress reports the current day and attendance count. The second
// return is false when no challenge has been started.
func (s *ChallengeService) Progress(ctx context.Context, now time.Time) (Progress, bool) {
	ch, ok := s.Current(ctx)
	if !ok {
		return Progress{}, false
	}
	start, err := time.Parse(time.RFC3339, ch.StartDate)
	if err != nil {
		return Progress{}, false
	}

	day := int(now.Sub(start).Hours()/24) + 1
	if day < 1 {
		day = 1
	}
	if day > ChallengeDays {
		day = ChallengeDays
	}

	attended := 0
	for _, present := range ch.Attendance {
		if present {
			attended++
		}
	}
	return Progress{CurrentDay: day, Attended: attended}, true
}

func (s *ChallengeService) save(ctx context.Context, ch models.Challenge) error {
	raw, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("encoding challenge: %w", err)
	}
	return s.store.Save(ctx, registry.NinetyInNinety, raw)
}
