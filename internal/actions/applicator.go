package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/jobdeck/jobdeck/internal/logger"
	"github.com/jobdeck/jobdeck/internal/models"
	"github.com/jobdeck/jobdeck/internal/store"
)

// Result is the outcome of one command. The applicator emits exactly one
// Result per input command, in input order.
type Result struct {
	Command Command `json:"command"`
	OK      bool    `json:"ok"`
	Message string  `json:"message"`
}

// Applicator executes normalized command batches against the stores.
type Applicator struct {
	records *store.RecordStore
	schema  *store.SchemaStore
	log     logger.Logger
}

func NewApplicator(records *store.RecordStore, schema *store.SchemaStore, log logger.Logger) *Applicator {
	return &Applicator{records: records, schema: schema, log: log}
}

// Apply runs the commands strictly one at a time, so commands targeting the
// same record observe each other's effects in program order. A failing
// command never aborts the batch: its Result carries ok=false and the rest
// keep executing. Nothing is ever rolled back.
//
// fields is the schema snapshot used to resolve custom-field keys in
// add_job/update_job payloads from display name to canonical id
// (case-insensitive); keys matching nothing pass through literally,
// tolerating forward references to fields not created yet.
func (a *Applicator) Apply(ctx context.Context, cmds []Command, fields []models.CustomField) []Result {
	results := make([]Result, 0, len(cmds))
	for _, cmd := range cmds {
		msg, err := a.execute(ctx, cmd, fields)
		if err != nil {
			a.log.Warn("command failed",
				logger.String("kind", string(cmd.Kind)),
				logger.Error(err))
			results = append(results, Result{Command: cmd, OK: false, Message: err.Error()})
			continue
		}
		results = append(results, Result{Command: cmd, OK: true, Message: msg})
	}
	return results
}

// execute dispatches one command. Panics from a store operation are
// converted into that command's error so the batch survives them.
func (a *Applicator) execute(ctx context.Context, cmd Command, fields []models.CustomField) (msg string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command panicked: %v", r)
		}
	}()

	switch cmd.Kind {
	case KindAddJob:
		if cmd.Job == nil || cmd.Job.Company == "" || cmd.Job.Role == "" {
			return "", fmt.Errorf("add_job: company and role are required")
		}
		id, err := a.records.Add(ctx, recordInput(cmd.Job, fields))
		if err != nil {
			return "", err
		}
		return "created " + id, nil

	case KindUpdateJob:
		if cmd.ID == "" || cmd.Job == nil {
			return "", fmt.Errorf("update_job: id is required")
		}
		if err := a.records.Update(ctx, cmd.ID, recordPatch(cmd.Job, fields)); err != nil {
			return "", err
		}
		return "updated " + cmd.ID, nil

	case KindSetStatus:
		// Re-validate: normalized commands are always well-formed, but the
		// applicator also accepts hand-built ones.
		status, ok := models.ParseStatus(string(cmd.Status))
		if cmd.ID == "" || !ok {
			return "", fmt.Errorf("set_status: unknown status %q", cmd.Status)
		}
		if err := a.records.SetStatus(ctx, cmd.ID, status); err != nil {
			return "", err
		}
		return "status set to " + string(status), nil

	case KindAddTag:
		if cmd.ID == "" || cmd.Tag == "" {
			return "", fmt.Errorf("add_tag: id and tag are required")
		}
		if err := a.records.AddTag(ctx, cmd.ID, cmd.Tag); err != nil {
			return "", err
		}
		return "tagged " + cmd.Tag, nil

	case KindAddNote:
		if cmd.ID == "" || cmd.Note == "" {
			return "", fmt.Errorf("add_note: id and note are required")
		}
		if err := a.records.AddNote(ctx, cmd.ID, cmd.Note); err != nil {
			return "", err
		}
		return "note added", nil

	case KindAddCustomField:
		if cmd.FieldName == "" {
			return "", fmt.Errorf("add_custom_field: name is required")
		}
		id, err := a.schema.UpsertField(ctx, cmd.FieldName, cmd.FieldType)
		if err != nil {
			return "", err
		}
		return "field " + id, nil

	case KindDeleteJob:
		if cmd.ID == "" {
			return "", fmt.Errorf("delete_job: id is required")
		}
		if err := a.records.Delete(ctx, cmd.ID); err != nil {
			return "", err
		}
		return "deleted " + cmd.ID, nil
	}

	return "", fmt.Errorf("unsupported")
}

// resolveCustom maps custom keys from "field name or id" to canonical id.
// Exact id matches win, then case-insensitive name matches; anything else
// passes through as a literal id.
func resolveCustom(custom map[string]any, fields []models.CustomField) map[string]any {
	if custom == nil {
		return nil
	}
	byID := make(map[string]bool, len(fields))
	byName := make(map[string]string, len(fields))
	for _, f := range fields {
		byID[f.ID] = true
		byName[strings.ToLower(f.Name)] = f.ID
	}

	out := make(map[string]any, len(custom))
	for k, v := range custom {
		switch {
		case byID[k]:
			out[k] = v
		default:
			if id, ok := byName[strings.ToLower(k)]; ok {
				out[id] = v
			} else {
				out[k] = v
			}
		}
	}
	return out
}

func recordInput(job *JobPayload, fields []models.CustomField) store.RecordInput {
	return store.RecordInput{
		Company:     job.Company,
		Role:        job.Role,
		Status:      job.Status,
		AppliedDate: job.AppliedDate,
		Tags:        job.Tags,
		Notes:       job.Notes,
		Custom:      resolveCustom(job.Custom, fields),
	}
}

func recordPatch(job *JobPayload, fields []models.CustomField) store.RecordPatch {
	patch := store.RecordPatch{
		Tags:   job.Tags,
		Notes:  job.Notes,
		Custom: resolveCustom(job.Custom, fields),
	}
	if job.Company != "" {
		patch.Company = &job.Company
	}
	if job.Role != "" {
		patch.Role = &job.Role
	}
	if job.Status != "" {
		status := job.Status
		patch.Status = &status
	}
	if job.AppliedDate != "" {
		date := job.AppliedDate
		patch.AppliedDate = &date
	}
	return patch
}
