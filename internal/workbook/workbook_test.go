package workbook

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/addictsagenda/agenda/internal/registry"
)

type fakeStore struct {
	data map[registry.Domain]json.RawMessage
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[registry.Domain]json.RawMessage{}}
}

func (f *fakeStore) Load(_ context.Context, d registry.Domain) json.RawMessage {
	if raw, ok := f.data[d]; ok {
		return raw
	}
	return registry.Lookup(d).Default
}

func (f *fakeStore) Save(_ context.Context, d registry.Domain, value json.RawMessage) error {
	f.data[d] = value
	return nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(newFakeStore())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestNewService_Catalog(t *testing.T) {
	svc := newTestService(t)

	cats := svc.Categories()
	if _, ok := cats["steps"]; !ok {
		t.Fatal("catalog missing steps category")
	}
	if _, ok := cats["daily"]; !ok {
		t.Fatal("catalog missing daily category")
	}
	if len(cats["steps"].Topics) == 0 {
		t.Fatal("steps category has no topics")
	}
}

func TestQuestionKeys(t *testing.T) {
	sectioned := Topic{
		ID: "step_1",
		Sections: []Section{
			{Title: "Powerlessness", Questions: []string{"q1", "q2"}},
			{Title: "Unmanageability", Questions: []string{"q1"}},
		},
	}
	want := []string{"step_1-P-1", "step_1-P-2", "step_1-U-1"}
	if got := questionKeys(sectioned); !reflect.DeepEqual(got, want) {
		t.Fatalf("questionKeys = %v, want %v", got, want)
	}

	prompt := Topic{ID: "daily_gratitude", Prompt: "reflect"}
	if got := questionKeys(prompt); !reflect.DeepEqual(got, []string{"daily_gratitude"}) {
		t.Fatalf("questionKeys for prompt topic = %v", got)
	}
}

func TestService_SetAnswer(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.SetAnswer(ctx, "step_1-P-1", "I could not stop on my own."); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if got := svc.Answer(ctx, "step_1-P-1"); got != "I could not stop on my own." {
		t.Fatalf("Answer = %q", got)
	}

	// One answer per key; other keys stay untouched.
	if err := svc.SetAnswer(ctx, "step_1-P-2", "second"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := svc.SetAnswer(ctx, "step_1-P-1", "revised"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	responses := svc.Responses(ctx)
	if responses["step_1-P-1"] != "revised" || responses["step_1-P-2"] != "second" {
		t.Fatalf("Responses = %v", responses)
	}

	if err := svc.SetAnswer(ctx, "not-a-question", "x"); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("SetAnswer unknown key = %v, want ErrUnknownQuestion", err)
	}
}

func TestService_BlankAnswerRemoves(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.SetAnswer(ctx, "daily_gratitude", "my homegroup"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := svc.SetAnswer(ctx, "daily_gratitude", "   "); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if _, ok := svc.Responses(ctx)["daily_gratitude"]; ok {
		t.Fatal("blank answer must remove the entry")
	}
}

func TestService_Completion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if got := svc.CompletedTopics(ctx); len(got) != 0 {
		t.Fatalf("CompletedTopics on empty store = %v", got)
	}

	if err := svc.SetAnswer(ctx, "step_1-P-1", "answered"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := svc.SetAnswer(ctx, "daily_service", "helped a newcomer"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}

	want := []string{"daily_service", "step_1"}
	if got := svc.CompletedTopics(ctx); !reflect.DeepEqual(got, want) {
		t.Fatalf("CompletedTopics = %v, want %v", got, want)
	}

	answered, total := svc.Completion(ctx, "step_1")
	if answered != 1 || total != 5 {
		t.Fatalf("Completion(step_1) = %d/%d, want 1/5", answered, total)
	}
	if answered, total := svc.Completion(ctx, "nonexistent"); answered != 0 || total != 0 {
		t.Fatalf("Completion(nonexistent) = %d/%d, want 0/0", answered, total)
	}
}
