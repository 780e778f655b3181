// Package registry is the single source of truth for the logical data
// domains of the application. Every domain maps to one stable storage key
// used identically by both storage backends, and carries a schema
// descriptor that tells the backends how its value is encoded and what to
// return when it is absent. Backends stay generic byte stores; all
// per-domain typing lives in this table.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Domain identifies one logical category of user data.
type Domain string

// The full set of domains. Adding a new domain means adding a constant
// here plus a descriptor in the table below; backends need no changes.
const (
	// Sobriety holds the user's sobriety date as a raw ISO-8601 string.
	Sobriety Domain = "sobriety"
	// Journal holds the list of journal entries.
	Journal Domain = "journal"
	// JournalTags holds the user's journal tag vocabulary.
	JournalTags Domain = "journal_tags"
	// Goals holds the list of goals.
	Goals Domain = "goals"
	// Workbook holds workbook responses keyed by question ID.
	Workbook Domain = "workbook"
	// WelcomeTip records whether the onboarding tip was dismissed.
	WelcomeTip Domain = "welcome_tip"
	// PIN holds the app lock code as a raw string.
	PIN Domain = "pin"
	// NinetyInNinety holds 90-in-90 challenge progress.
	NinetyInNinety Domain = "ninety_in_ninety"
	// Meetings holds the user's meeting list.
	Meetings Domain = "meetings"
	// HomegroupTracker holds homegroup tracker entries keyed by date.
	HomegroupTracker Domain = "homegroup_tracker"
	// HomegroupMembers holds the homegroup member roster.
	HomegroupMembers Domain = "homegroup_members"
)

// Kind describes how a domain's value is encoded at rest.
type Kind int

const (
	// KindString domains persist a raw string (dates, the PIN). Legacy
	// stores wrote them without JSON quoting.
	KindString Kind = iota
	// KindBool domains persist a boolean flag. Legacy stores wrote the
	// markers "true" and "false".
	KindBool
	// KindJSON domains persist an arbitrary JSON value.
	KindJSON
)

// Descriptor is the schema entry for one domain: its stable storage key,
// its encoding kind, and the canonical default returned when the domain
// has never been written or its stored form cannot be decoded.
type Descriptor struct {
	Domain  Domain
	Key     string
	Kind    Kind
	Default json.RawMessage
}

var (
	defaultNull   = json.RawMessage("null")
	defaultFalse  = json.RawMessage("false")
	defaultList   = json.RawMessage("[]")
	defaultObject = json.RawMessage("{}")
)

// descriptors maps every domain to its schema entry. The Key strings are
// stable across backends and app versions; renaming one silently orphans
// existing user data.
var descriptors = map[Domain]Descriptor{
	Sobriety:         {Sobriety, "recovery_sobriety_date", KindString, defaultNull},
	Journal:          {Journal, "recovery_journal_entries", KindJSON, defaultList},
	JournalTags:      {JournalTags, "recovery_journal_tags", KindJSON, defaultList},
	Goals:            {Goals, "recovery_goals", KindJSON, defaultList},
	Workbook:         {Workbook, "recovery_workbook_responses", KindJSON, defaultObject},
	WelcomeTip:       {WelcomeTip, "recovery_welcome_tip_dismissed", KindBool, defaultFalse},
	PIN:              {PIN, "recovery_app_pin", KindString, defaultNull},
	NinetyInNinety:   {NinetyInNinety, "recovery_90_in_90_challenge", KindJSON, defaultNull},
	Meetings:         {Meetings, "recovery_user_meetings", KindJSON, defaultList},
	HomegroupTracker: {HomegroupTracker, "recovery_homegroup_tracker", KindJSON, defaultObject},
	HomegroupMembers: {HomegroupMembers, "recovery_homegroup_members", KindJSON, defaultList},
}

// byKey indexes descriptors by their storage key.
var byKey = func() map[string]Descriptor {
	m := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		m[d.Key] = d
	}
	return m
}()

// Lookup returns the descriptor for the given domain.
// It panics on an unknown domain: the set is fixed at compile time and an
// unknown value is a programming error, not a runtime condition.
func Lookup(d Domain) Descriptor {
	desc, ok := descriptors[d]
	if !ok {
		panic(fmt.Sprintf("registry: unknown domain %q", d))
	}
	return desc
}

// ByKey returns the descriptor whose storage key matches key.
// The second return is false for keys outside the registry.
func ByKey(key string) (Descriptor, bool) {
	desc, ok := byKey[key]
	return desc, ok
}

// KnownKey reports whether key belongs to the registry.
func KnownKey(key string) bool {
	_, ok := byKey[key]
	return ok
}

// All returns every descriptor. The returned slice is a copy and is not
// ordered.
func All() []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, d)
	}
	return out
}

// Keys returns every storage key. The returned slice is a copy.
func Keys() []string {
	out := make([]string, 0, len(byKey))
	for k := range byKey {
		out = append(out, k)
	}
	return out
}

// Normalize converts a stored byte form of this domain's value into
// canonical JSON. It accepts the current JSON encodings as well as the
// legacy per-key string encodings (bare date/PIN strings, "true"/"false"
// boolean markers). Anything that cannot be decoded collapses to the
// domain default; Normalize never fails.
func (d Descriptor) Normalize(raw []byte) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return d.Default
	}

	switch d.Kind {
	case KindString:
		if json.Valid(raw) {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				return mustMarshal(s)
			}
			if bytes.Equal(raw, []byte("null")) {
				return d.Default
			}
			// Valid JSON but not a string: wrong shape for this domain.
			return d.Default
		}
		// Legacy bare string, e.g. "2023-01-01T00:00:00.000Z" unquoted.
		return mustMarshal(string(raw))

	case KindBool:
		switch string(raw) {
		case "true", `"true"`:
			return json.RawMessage("true")
		case "false", `"false"`, "null":
			return d.Default
		}
		if b, err := strconv.ParseBool(string(raw)); err == nil && b {
			return json.RawMessage("true")
		}
		return d.Default

	default:
		if !json.Valid(raw) {
			return d.Default
		}
		return json.RawMessage(bytes.Clone(raw))
	}
}

// Encode converts a canonical JSON value into this domain's at-rest form
// for stores that keep one string slot per key. The blob store persists
// canonical JSON directly and does not use it.
func (d Descriptor) Encode(value json.RawMessage) string {
	switch d.Kind {
	case KindString:
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			return s
		}
		return string(value)
	case KindBool:
		if bytes.Equal(bytes.TrimSpace(value), []byte("true")) {
			return "true"
		}
		return "false"
	default:
		return string(value)
	}
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
