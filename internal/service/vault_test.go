package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
)

// fakeVaultRepo implements VaultRepository in memory.
type fakeVaultRepo struct {
	docs map[string]map[string]json.RawMessage
	err  error
}

func (f *fakeVaultRepo) doc(login string) map[string]json.RawMessage {
	if f.docs[login] == nil {
		f.docs[login] = map[string]json.RawMessage{}
	}
	return f.docs[login]
}

func (f *fakeVaultRepo) GetValue(_ context.Context, login, key string) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.doc(login)[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return v, nil
}

func (f *fakeVaultRepo) GetDocument(_ context.Context, login string) (map[string]json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc(login), nil
}

func (f *fakeVaultRepo) PutValue(_ context.Context, login, key string, value json.RawMessage) error {
	if f.err != nil {
		return f.err
	}
	f.doc(login)[key] = value
	return nil
}

func (f *fakeVaultRepo) DeleteDocument(_ context.Context, login string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.docs, login)
	return nil
}

func newVaultService() (*VaultService, *fakeVaultRepo) {
	repo := &fakeVaultRepo{docs: map[string]map[string]json.RawMessage{}}
	return NewVaultService(repo), repo
}

func TestVaultService_RejectsUnknownKey(t *testing.T) {
	svc, _ := newVaultService()
	ctx := context.Background()

	if _, err := svc.GetValue(ctx, "alice", "not_a_key"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("GetValue unknown key = %v, want ErrUnknownKey", err)
	}
	if err := svc.PutValue(ctx, "alice", "not_a_key", json.RawMessage(`1`)); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("PutValue unknown key = %v, want ErrUnknownKey", err)
	}
}

func TestVaultService_AbsentField(t *testing.T) {
	svc, _ := newVaultService()

	_, err := svc.GetValue(context.Background(), "alice", "recovery_sobriety_date")
	if !errors.Is(err, ErrFieldAbsent) {
		t.Errorf("expected ErrFieldAbsent, got %v", err)
	}
}

func TestVaultService_PutNormalizes(t *testing.T) {
	svc, repo := newVaultService()
	ctx := context.Background()

	// A legacy boolean marker is stored as a real JSON boolean.
	if err := svc.PutValue(ctx, "alice", "recovery_welcome_tip_dismissed", json.RawMessage(`"true"`)); err != nil {
		t.Fatalf("PutValue: %v", err)
	}
	if got := repo.docs["alice"]["recovery_welcome_tip_dismissed"]; string(got) != `true` {
		t.Errorf("stored value = %s, want true", got)
	}

	// Undecodable input collapses to the domain default instead of
	// poisoning the document.
	if err := svc.PutValue(ctx, "alice", "recovery_goals", json.RawMessage(`{broken`)); err != nil {
		t.Fatalf("PutValue: %v", err)
	}
	if got := repo.docs["alice"]["recovery_goals"]; string(got) != `[]` {
		t.Errorf("stored value = %s, want []", got)
	}
}

func TestVaultService_RoundTrip(t *testing.T) {
	svc, _ := newVaultService()
	ctx := context.Background()

	payload := json.RawMessage(`[{"id":"m1","name":"Sunrise Group","day":"Tuesday","time":"19:00"}]`)
	if err := svc.PutValue(ctx, "alice", "recovery_user_meetings", payload); err != nil {
		t.Fatalf("PutValue: %v", err)
	}
	got, err := svc.GetValue(ctx, "alice", "recovery_user_meetings")
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("round trip mismatch: %s", got)
	}

	doc, err := svc.GetDocument(ctx, "alice")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if len(doc) != 1 {
		t.Errorf("document has %d fields, want 1", len(doc))
	}
}

func TestVaultService_UserIsolation(t *testing.T) {
	svc, _ := newVaultService()
	ctx := context.Background()

	svc.PutValue(ctx, "alice", "recovery_goals", json.RawMessage(`[{"id":"g1"}]`))
	svc.PutValue(ctx, "bob", "recovery_goals", json.RawMessage(`[{"id":"g2"}]`))

	if err := svc.DeleteDocument(ctx, "alice"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	got, err := svc.GetValue(ctx, "bob", "recovery_goals")
	if err != nil || string(got) != `[{"id":"g2"}]` {
		t.Errorf("bob's document affected by alice's wipe: %s %v", got, err)
	}
}
