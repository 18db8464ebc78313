// Package actions converts untrusted structured payloads into a closed set
// of mutation commands and executes them against the stores. The producer
// (an LLM, an import pipeline, anything) is not trusted to conform to the
// contract, so parsing is fallible per candidate: whatever cannot be made
// safe is dropped, and whatever survives is individually well-typed.
package actions

import "github.com/jobdeck/jobdeck/internal/models"

// Kind discriminates the seven command variants.
type Kind string

const (
	KindAddJob         Kind = "add_job"
	KindUpdateJob      Kind = "update_job"
	KindSetStatus      Kind = "set_status"
	KindAddTag         Kind = "add_tag"
	KindAddNote        Kind = "add_note"
	KindAddCustomField Kind = "add_custom_field"
	KindDeleteJob      Kind = "delete_job"
)

var kinds = map[Kind]bool{
	KindAddJob:         true,
	KindUpdateJob:      true,
	KindSetStatus:      true,
	KindAddTag:         true,
	KindAddNote:        true,
	KindAddCustomField: true,
	KindDeleteJob:      true,
}

// JobPayload carries the validated fields of add_job and update_job. Nil
// slices/maps and empty strings mean "absent"; Status is empty when the
// producer omitted it or supplied something outside the known set.
type JobPayload struct {
	Company     string         `json:"company,omitempty"`
	Role        string         `json:"role,omitempty"`
	Status      models.Status  `json:"status,omitempty"`
	AppliedDate string         `json:"appliedDate,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Notes       []string       `json:"notes,omitempty"`
	Custom      map[string]any `json:"custom,omitempty"`
}

// Command is one normalized mutation. Only the fields relevant to its Kind
// are populated; a Command built by Normalize is guaranteed individually
// valid, while hand-built ones are re-checked by the applicator.
type Command struct {
	Kind Kind `json:"type"`

	// add_job / update_job
	Job *JobPayload `json:"job,omitempty"`

	// every kind except add_job / add_custom_field
	ID string `json:"id,omitempty"`

	// set_status
	Status models.Status `json:"status,omitempty"`

	// add_tag / add_note
	Tag  string `json:"tag,omitempty"`
	Note string `json:"note,omitempty"`

	// add_custom_field
	FieldName string           `json:"name,omitempty"`
	FieldType models.FieldType `json:"fieldType,omitempty"`
}

// Batch is the output of normalization: the producer's optional summary plus
// every candidate that survived validation, in input order.
type Batch struct {
	Summary  string
	Commands []Command
}
