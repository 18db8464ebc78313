package models

import "time"

// Status is the lifecycle stage of one tracked application.
type Status string

const (
	StatusApplied     Status = "applied"
	StatusInterviewed Status = "interviewed"
	StatusOffer       Status = "offer"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
	StatusArchived    Status = "archived"
)

// Statuses lists every valid status, in pipeline order.
var Statuses = []Status{
	StatusApplied,
	StatusInterviewed,
	StatusOffer,
	StatusAccepted,
	StatusRejected,
	StatusArchived,
}

// ParseStatus accepts only an exact match against the known set.
// Wrong-case or unknown values are rejected, never defaulted; the caller
// decides whether invalid means drop or error.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if s == string(st) {
			return st, true
		}
	}
	return "", false
}

// FieldType is the value type of a user-defined custom field.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
	FieldURL    FieldType = "url"
)

// ParseFieldType falls back to text for unknown input. Unlike status, a
// field type has a safe default, so the parse is permissive.
func ParseFieldType(s string) FieldType {
	switch FieldType(s) {
	case FieldText, FieldNumber, FieldDate, FieldURL:
		return FieldType(s)
	}
	return FieldText
}

// CustomField is one user-defined attribute attachable to records. The id is
// derived from the name once, at creation, and never recomputed, so renames
// keep record references intact.
type CustomField struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Schema is the persisted shape of the custom-field document.
type Schema struct {
	CustomFields []CustomField `json:"customFields"`
}

// EventType tags one timeline entry.
type EventType string

const (
	EventCreated       EventType = "created"
	EventStatusChanged EventType = "status_changed"
	EventNoteAdded     EventType = "note_added"
	EventTagAdded      EventType = "tag_added"
	EventAppliedDate   EventType = "applied_date_updated"
	EventCustomUpdated EventType = "custom_updated"
)

// TimelineEvent is an immutable audit entry owned by exactly one record.
// Events are appended newest-last; sorting or capping for display is a read
// concern, the store never truncates.
type TimelineEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

// Record is one tracked job application.
//
// Tags behave as a set with insertion order preserved. Notes are a
// chronological history; the current note is the last element. Custom maps
// field ids to scalar values; ids not present in the schema are tolerated and
// carried as-is.
type Record struct {
	ID          string          `json:"id"`
	Company     string          `json:"company"`
	Role        string          `json:"role"`
	Status      Status          `json:"status"`
	AppliedDate string          `json:"appliedDate,omitempty"`
	Tags        []string        `json:"tags"`
	Notes       []string        `json:"notes"`
	Custom      map[string]any  `json:"custom"`
	Timeline    []TimelineEvent `json:"timeline"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CurrentNote returns the last note, or "" when the history is empty.
func (r *Record) CurrentNote() string {
	if len(r.Notes) == 0 {
		return ""
	}
	return r.Notes[len(r.Notes)-1]
}

// HasTag reports whether tag is already present on the record.
func (r *Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
