package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/addictsagenda/agenda/internal/registry"
)

type fakeStore struct {
	data map[registry.Domain]json.RawMessage
	seq  int
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

func (f *fakeStore) GenerateID() string {
	f.seq++
	return fmt.Sprintf("id-%d", f.seq)
}

func TestService_EmptyStore(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	if got := svc.Entries(ctx); len(got) != 0 {
		t.Fatalf("Entries on empty store = %d entries, want 0", len(got))
	}
	if got := svc.Tags(ctx); len(got) != 0 {
		t.Fatalf("Tags on empty store = %v, want none", got)
	}
}

func TestService_AddAndList(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	first, err := svc.Add(ctx, "grateful today", 4, []string{"gratitude"}, "gratitude")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	second, err := svc.Add(ctx, "rough evening", 2, []string{"halt", "craving"}, "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	entries := svc.Entries(ctx)
	if len(entries) != 2 {
		t.Fatalf("Entries = %d, want 2", len(entries))
	}
	if entries[0].ID != second.ID {
		t.Fatalf("entries[0].ID = %q, want newest %q", entries[0].ID, second.ID)
	}
	if entries[1].ID != first.ID {
		t.Fatalf("entries[1].ID = %q, want %q", entries[1].ID, first.ID)
	}
	if entries[1].Template != "gratitude" {
		t.Fatalf("entries[1].Template = %q, want gratitude", entries[1].Template)
	}
}

func TestService_TagVocabulary(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	if _, err := svc.Add(ctx, "a", 3, []string{"gratitude"}, ""); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Add(ctx, "b", 3, []string{"craving", "gratitude"}, ""); err != nil {
		t.Fatalf("Add: %v", err)
	}

	want := []string{"craving", "gratitude"}
	if got := svc.Tags(ctx); !reflect.DeepEqual(got, want) {
		t.Fatalf("Tags = %v, want %v", got, want)
	}
}

func TestService_Update(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	entry, err := svc.Add(ctx, "original", 3, nil, "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := svc.Update(ctx, entry.ID, "revised", 5, []string{"progress"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got := svc.Entries(ctx)[0]
	if got.ID != entry.ID {
		t.Fatalf("Update changed ID: %q -> %q", entry.ID, got.ID)
	}
	if got.Text != "revised" || got.Mood != 5 {
		t.Fatalf("updated entry = %+v", got)
	}
	if got.Timestamp != entry.Timestamp {
		t.Fatal("Update must keep the original timestamp")
	}

	if err := svc.Update(ctx, "missing", "x", 1, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update missing = %v, want ErrNotFound", err)
	}
}

func TestService_Delete(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	keep, err := svc.Add(ctx, "keep", 3, nil, "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	drop, err := svc.Add(ctx, "drop", 3, nil, "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := svc.Delete(ctx, drop.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	entries := svc.Entries(ctx)
	if len(entries) != 1 || entries[0].ID != keep.ID {
		t.Fatalf("after delete entries = %+v", entries)
	}

	if err := svc.Delete(ctx, drop.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestTemplates_KnownIDs(t *testing.T) {
	want := map[string]bool{"gratitude": true, "halt": true, "resentment": true, "step_10": true}
	for _, tpl := range Templates {
		if !want[tpl.ID] {
			t.Errorf("unexpected template %q", tpl.ID)
		}
		if tpl.Body == "" {
			t.Errorf("template %q has no body", tpl.ID)
		}
		delete(want, tpl.ID)
	}
	for id := range want {
		t.Errorf("missing template %q", id)
	}
}
