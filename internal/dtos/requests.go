package dtos

import (
	"github.com/jobdeck/jobdeck/internal/actions"
	"github.com/jobdeck/jobdeck/internal/models"
)

// CreateJobRequest is the direct-API path for adding a record. Company and
// role are the only hard requirements, enforced here at the boundary — the
// store itself does not reject blanks.
type CreateJobRequest struct {
	Company     string         `json:"company" binding:"required"`
	Role        string         `json:"role" binding:"required"`
	Status      string         `json:"status"`
	AppliedDate string         `json:"appliedDate"`
	Tags        []string       `json:"tags"`
	Notes       []string       `json:"notes"`
	Custom      map[string]any `json:"custom"`
}

// UpdateJobRequest is a partial update; absent fields leave the record
// untouched.
type UpdateJobRequest struct {
	Company     *string        `json:"company"`
	Role        *string        `json:"role"`
	Status      *string        `json:"status"`
	AppliedDate *string        `json:"appliedDate"`
	Tags        []string       `json:"tags"`
	Notes       []string       `json:"notes"`
	Custom      map[string]any `json:"custom"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AddTagRequest struct {
	Tag string `json:"tag" binding:"required"`
}

type AddNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

// SetNoteRequest replaces the note history; a null note clears it.
type SetNoteRequest struct {
	Note *string `json:"note"`
}

type UpsertFieldRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type"`
}

type AssistantRequest struct {
	Instruction string `json:"instruction" binding:"required"`
}

// AssistantResponse reports the batch outcome: the summary line plus one
// result per executed command. Applied commands stay applied even when later
// ones fail; there is no rollback to report.
type AssistantResponse struct {
	Summary string           `json:"summary"`
	Applied int              `json:"applied"`
	Failed  int              `json:"failed"`
	Results []actions.Result `json:"results"`
}

// ExportResponse is the full state, serialized verbatim.
type ExportResponse struct {
	Records []models.Record `json:"records"`
	Schema  models.Schema   `json:"schema"`
}
