// Package workbook serves the step-work question catalog and the
// user's free-text responses to it.
package workbook

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/addictsagenda/agenda/internal/registry"
)

// ErrUnknownQuestion is returned when a response targets a question key
// absent from the catalog.
var ErrUnknownQuestion = errors.New("unknown workbook question")

//go:embed workbook.json
var catalogJSON []byte

// Section groups related questions inside a topic.
type Section struct {
	Title     string   `json:"title"`
	Questions []string `json:"questions"`
}

// Topic is a single workbook exercise. It carries either collapsible
// Sections of numbered questions or a single free-form Prompt.
type Topic struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Quote    string    `json:"quote,omitempty"`
	Prompt   string    `json:"prompt,omitempty"`
	Sections []Section `json:"sections,omitempty"`
}

// Category is a named group of topics.
type Category struct {
	Title  string  `json:"title"`
	Topics []Topic `json:"topics"`
}

// Store is the slice of the data store this domain needs.
type Store interface {
	Load(ctx context.Context, d registry.Domain) json.RawMessage
	Save(ctx context.Context, d registry.Domain, value json.RawMessage) error
}

// Service exposes the catalog and persists responses through the facade.
type Service struct {
	store      Store
	categories map[string]Category
	keys       map[string]struct{}
}

// NewService constructs a workbook Service from the embedded catalog.
func NewService(store Store) (*Service, error) {
	var categories map[string]Category
	if err := json.Unmarshal(catalogJSON, &categories); err != nil {
		return nil, fmt.Errorf("decoding workbook catalog: %w", err)
	}
	s := &Service{store: store, categories: categories, keys: map[string]struct{}{}}
	for _, cat := range categories {
		for _, topic := range cat.Topics {
			for _, key := range questionKeys(topic) {
				s.keys[key] = struct{}{}
			}
		}
	}
	return s, nil
}

// questionKeys lists every response key a topic can produce. Sectioned
// topics key each question as id-<section initial>-<1-based index>;
// prompt topics respond under the bare topic id.
func questionKeys(topic Topic) []string {
	if len(topic.Sections) == 0 {
		return []string{topic.ID}
	}
	var keys []string
	for _, sec := range topic.Sections {
		initial := ""
		if sec.Title != "" {
			initial = sec.Title[:1]
		}
		for i := range sec.Questions {
			keys = append(keys, fmt.Sprintf("%s-%s-%d", topic.ID, initial, i+1))
		}
	}
	return keys
}

// Categories returns the catalog keyed by category name.
func (s *Service) Categories() map[string]Category {
	return s.categories
}

// Responses returns every saved answer keyed by question.
func (s *Service) Responses(ctx context.Context) map[string]string {
	responses := map[string]string{}
	if err := json.Unmarshal(s.store.Load(ctx, registry.Workbook), &responses); err != nil {
		return map[string]string{}
	}
	return responses
}

// Answer returns the saved response for a question, empty when unset.
func (s *Service) Answer(ctx context.Context, key string) string {
	return s.Responses(ctx)[key]
}

// SetAnswer saves one response without disturbing the others. A blank
// answer removes the entry.
func (s *Service) SetAnswer(ctx context.Context, key, text string) error {
	if _, ok := s.keys[key]; !ok {
		return ErrUnknownQuestion
	}
	responses := s.Responses(ctx)
	if strings.TrimSpace(text) == "" {
		delete(responses, key)
	} else {
		responses[key] = text
	}
	raw, err := json.Marshal(responses)
	if err != nil {
		return fmt.Errorf("encoding responses: %w", err)
	}
	return s.store.Save(ctx, registry.Workbook, raw)
}

// CompletedTopics returns the IDs of topics with at least one
// non-blank response, sorted.
func (s *Service) CompletedTopics(ctx context.Context) []string {
	responses := s.Responses(ctx)
	var completed []string
	for _, cat := range s.categories {
		for _, topic := range cat.Topics {
			for _, key := range questionKeys(topic) {
				if strings.TrimSpace(responses[key]) != "" {
					completed = append(completed, topic.ID)
					break
				}
			}
		}
	}
	sort.Strings(completed)
	return completed
}

// Completion reports answered and total question counts for a topic.
func (s *Service) Completion(ctx context.Context, topicID string) (answered, total int) {
	responses := s.Responses(ctx)
	for _, cat := range s.categories {
		for _, topic := range cat.Topics {
			if topic.ID != topicID {
				continue
			}
			keys := questionKeys(topic)
			total = len(keys)
			for _, key := range keys {
				if strings.TrimSpace(responses[key]) != "" {
					answered++
				}
			}
			return answered, total
		}
	}
	return 0, 0
}
