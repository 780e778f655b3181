// Package models defines the core data structures for users and the
// collection-domain entries. Every entry carries a unique ID assigned once
// at creation by the ID generator; IDs are never regenerated or reused
// after deletion.
package models

// User represents an application user with credentials.
type User struct {
	// Login is the login name chosen by the user.
	Login string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
}

// JournalEntry is one dated journal item.
type JournalEntry struct {
	// ID is the unique identifier for the entry.
	ID string `json:"id"`
	// Text is the body of the entry.
	Text string `json:"text"`
	// Mood is an optional 1-5 mood rating; 0 means unset.
	Mood int `json:"mood,omitempty"`
	// Tags are the tags attached to this entry.
	Tags []string `json:"tags,omitempty"`
	// Template is the ID of the journal template used, if any.
	Template string `json:"template,omitempty"`
	// Timestamp is the creation time as an ISO-8601 string.
	Timestamp string `json:"timestamp"`
}

// Goal is one recovery goal.
type Goal struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Timestamp string `json:"timestamp"`
}

// Meeting is one entry of the user's meeting list.
type Meeting struct {
	ID string `json:"id"`
	// Name is the meeting's name, e.g. "Sunrise Group".
	Name string `json:"name"`
	// Day is the weekday the meeting takes place.
	Day string `json:"day"`
	// Time is the meeting's start time, e.g. "19:00".
	Time string `json:"time"`
	// Location is a free-form venue description.
	Location string `json:"location,omitempty"`
	// Fellowship is the program the meeting belongs to ("AA", "NA", ...).
	Fellowship string `json:"fellowship,omitempty"`
}

// Member is one entry of the homegroup member roster.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	// Role is the member's service position, if any.
	Role string `json:"role,omitempty"`
	// CleanDate is the member's sobriety date as an ISO-8601 string.
	CleanDate string `json:"cleanDate,omitempty"`
}

// TrackerEntry is one homegroup tracker record, stored in a map keyed by
// YYYY-MM-DD date.
type TrackerEntry struct {
	Chairperson string `json:"chairperson"`
	Attendance  string `json:"attendance"`
	// Tradition is the seventh-tradition collection amount.
	Tradition string `json:"tradition"`
	Notes     string `json:"notes,omitempty"`
}

// Challenge is the 90-in-90 challenge state.
type Challenge struct {
	// StartDate is the first challenge day as an ISO-8601 string.
	StartDate string `json:"startDate"`
	// Attendance maps YYYY-MM-DD dates to whether a meeting was attended.
	Attendance map[string]bool `json:"attendance"`
}
