package registry

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestLookup_AllDomains(t *testing.T) {
	domains := []Domain{
		Sobriety, Journal, JournalTags, Goals, Workbook, WelcomeTip,
		PIN, NinetyInNinety, Meetings, HomegroupTracker, HomegroupMembers,
	}
	seen := map[string]Domain{}
	for _, d := range domains {
		desc := Lookup(d)
		if desc.Domain != d {
			t.Errorf("Lookup(%s) returned descriptor for %s", d, desc.Domain)
		}
		if !strings.HasPrefix(desc.Key, "recovery_") {
			t.Errorf("key %q for %s does not carry the recovery_ prefix", desc.Key, d)
		}
		if prev, dup := seen[desc.Key]; dup {
			t.Errorf("key %q used by both %s and %s", desc.Key, prev, d)
		}
		seen[desc.Key] = d
	}
	if len(seen) != len(domains) {
		t.Errorf("expected %d distinct keys, got %d", len(domains), len(seen))
	}
}

func TestLookup_UnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown domain")
		}
	}()
	Lookup(Domain("bogus"))
}

func TestByKey(t *testing.T) {
	desc, ok := ByKey("recovery_goals")
	if !ok || desc.Domain != Goals {
		t.Fatalf("ByKey(recovery_goals) = %+v, %v", desc, ok)
	}
	if _, ok := ByKey("recovery_unrelated"); ok {
		t.Error("ByKey accepted a key outside the registry")
	}
	if !KnownKey("recovery_app_pin") || KnownKey("random") {
		t.Error("KnownKey misclassified a key")
	}
}

func TestNormalize_StringDomain(t *testing.T) {
	desc := Lookup(Sobriety)
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"json string", `"2023-01-01T00:00:00.000Z"`, `"2023-01-01T00:00:00.000Z"`},
		{"legacy bare string", `2023-01-01T00:00:00.000Z`, `"2023-01-01T00:00:00.000Z"`},
		{"empty", ``, `null`},
		{"null", `null`, `null`},
		{"wrong shape", `[1,2]`, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := desc.Normalize([]byte(tt.raw))
			if string(got) != tt.want {
				t.Errorf("Normalize(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize_BoolDomain(t *testing.T) {
	desc := Lookup(WelcomeTip)
	tests := []struct {
		raw  string
		want string
	}{
		{`true`, `true`},
		{`"true"`, `true`},
		{`false`, `false`},
		{`"false"`, `false`},
		{``, `false`},
		{`garbage`, `false`},
	}
	for _, tt := range tests {
		if got := desc.Normalize([]byte(tt.raw)); string(got) != tt.want {
			t.Errorf("Normalize(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestNormalize_JSONDomain(t *testing.T) {
	goals := Lookup(Goals)
	payload := `[{"id":"g1","text":"Call sponsor","completed":false}]`
	got := goals.Normalize([]byte(payload))
	var entries []map[string]any
	if err := json.Unmarshal(got, &entries); err != nil {
		t.Fatalf("normalized payload does not parse: %v", err)
	}
	if len(entries) != 1 || entries[0]["id"] != "g1" {
		t.Errorf("unexpected entries: %v", entries)
	}

	if got := goals.Normalize([]byte(`{not json`)); string(got) != `[]` {
		t.Errorf("corrupted payload normalized to %s, want []", got)
	}
	if got := Lookup(Workbook).Normalize(nil); string(got) != `{}` {
		t.Errorf("absent workbook normalized to %s, want {}", got)
	}
}

func TestEncode(t *testing.T) {
	if got := Lookup(PIN).Encode(json.RawMessage(`"1234"`)); got != "1234" {
		t.Errorf("PIN encoded as %q, want raw string", got)
	}
	if got := Lookup(WelcomeTip).Encode(json.RawMessage(`true`)); got != "true" {
		t.Errorf("welcome tip encoded as %q", got)
	}
	if got := Lookup(Goals).Encode(json.RawMessage(`[]`)); got != "[]" {
		t.Errorf("goals encoded as %q", got)
	}
}
