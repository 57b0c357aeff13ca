// Package attendance holds the roster and attendance log domain: identity resolution against
// the roster and the check-in/check-out state machine.
package attendance

import (
	"encoding/json"
	"time"
)

// User is a registered person with a reference photo.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo"` // JPEG data URL
}

// RecordStatus is the state of an attendance record.
type RecordStatus string

// Record states.
const (
	StatusCheckedIn RecordStatus = "Checked In"
	StatusCompleted RecordStatus = "Completed"
)

// Record is one attendance session. A record with StatusCheckedIn is an open session.
type Record struct {
	ID       string       `json:"id,omitempty"`
	User     User         `json:"user"`
	CheckIn  time.Time    `json:"checkIn"`
	CheckOut *time.Time   `json:"checkOut"`
	Status   RecordStatus `json:"status"`
}

// Open reports whether the record is an open session.
func (r *Record) Open() bool {
	return r.Status == StatusCheckedIn
}

// UnmarshalJSON revives timestamps from their string form. A malformed timestamp does not
// fail the record; it becomes the zero time.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string          `json:"id"`
		User     User            `json:"user"`
		CheckIn  json.RawMessage `json:"checkIn"`
		CheckOut json.RawMessage `json:"checkOut"`
		Status   RecordStatus    `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.ID = raw.ID
	r.User = raw.User
	r.Status = raw.Status
	r.CheckIn = parseTimestamp(raw.CheckIn)
	r.CheckOut = nil
	if present(raw.CheckOut) {
		t := parseTimestamp(raw.CheckOut)
		r.CheckOut = &t
	}
	return nil
}

// present reports whether a stored checkOut holds a value. Missing, null and empty strings are absent.
func present(raw json.RawMessage) bool {
	switch string(raw) {
	case "", "null", `""`:
		return false
	}
	return true
}

func parseTimestamp(raw json.RawMessage) time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Action is an attendance intent.
type Action string

// Attendance intents.
const (
	ActionCheckIn  Action = "check-in"
	ActionCheckOut Action = "check-out"
)

// Outcome is the result of a successful attendance intent.
type Outcome struct {
	Action     Action
	User       User
	Record     Record
	Resolution Resolution
}

// Stats summarizes the persisted state.
type Stats struct {
	Users        int `json:"users"`
	Records      int `json:"records"`
	OpenSessions int `json:"open_sessions"`
}
