package actions

import (
	"strconv"
	"strings"

	"github.com/jobdeck/jobdeck/internal/models"
)

// Normalize turns one arbitrary decoded-JSON payload into a vetted command
// batch. Tolerance is two-phase: first each candidate is shape-matched
// against the closed kind set, then its fields are coerced per kind.
// Candidates failing either phase are dropped silently; a malformed payload
// yields an empty batch, never an error. Failure visibility belongs to
// application time, not here.
func Normalize(payload any) Batch {
	root, ok := payload.(map[string]any)
	if !ok {
		return Batch{}
	}

	var batch Batch
	if s, ok := root["summary"].(string); ok {
		batch.Summary = strings.TrimSpace(s)
	}

	rawActions, ok := root["actions"].([]any)
	if !ok {
		return batch
	}

	for _, raw := range rawActions {
		kind, body, ok := matchShape(raw)
		if !ok {
			continue
		}
		if cmd, ok := parseCommand(kind, body); ok {
			batch.Commands = append(batch.Commands, cmd)
		}
	}
	return batch
}

// matchShape accepts two candidate shapes: an object with an explicit "type"
// discriminator, or — a common malformed shape worth tolerating — a
// single-key wrapper whose one key names a kind and whose value is the
// payload. Everything else is dropped.
func matchShape(raw any) (Kind, map[string]any, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return "", nil, false
	}

	if t, ok := m["type"].(string); ok && kinds[Kind(t)] {
		return Kind(t), m, true
	}

	if len(m) == 1 {
		for k, v := range m {
			if !kinds[Kind(k)] {
				return "", nil, false
			}
			body, ok := v.(map[string]any)
			if !ok {
				return "", nil, false
			}
			return Kind(k), body, true
		}
	}
	return "", nil, false
}

func parseCommand(kind Kind, body map[string]any) (Command, bool) {
	switch kind {
	case KindAddJob:
		return parseAddJob(body)
	case KindUpdateJob:
		return parseUpdateJob(body)
	case KindSetStatus:
		return parseSetStatus(body)
	case KindAddTag:
		return parseAddTag(body)
	case KindAddNote:
		return parseAddNote(body)
	case KindAddCustomField:
		return parseAddCustomField(body)
	case KindDeleteJob:
		return parseDeleteJob(body)
	}
	return Command{}, false
}

func parseAddJob(body map[string]any) (Command, bool) {
	job := parseJobFields(body)
	if job.Company == "" || job.Role == "" {
		return Command{}, false
	}
	return Command{Kind: KindAddJob, Job: &job}, true
}

func parseUpdateJob(body map[string]any) (Command, bool) {
	id := cleanString(body["id"])
	if id == "" {
		return Command{}, false
	}
	job := parseJobFields(body)
	return Command{Kind: KindUpdateJob, ID: id, Job: &job}, true
}

func parseSetStatus(body map[string]any) (Command, bool) {
	id := cleanString(body["id"])
	status, ok := models.ParseStatus(cleanString(body["status"]))
	// Status has no safe default, so an unknown value rejects the whole
	// action rather than guessing.
	if id == "" || !ok {
		return Command{}, false
	}
	return Command{Kind: KindSetStatus, ID: id, Status: status}, true
}

func parseAddTag(body map[string]any) (Command, bool) {
	id := cleanString(body["id"])
	tag := cleanString(body["tag"])
	if id == "" || tag == "" {
		return Command{}, false
	}
	return Command{Kind: KindAddTag, ID: id, Tag: tag}, true
}

func parseAddNote(body map[string]any) (Command, bool) {
	id := cleanString(body["id"])
	note := cleanString(body["note"])
	if id == "" || note == "" {
		return Command{}, false
	}
	return Command{Kind: KindAddNote, ID: id, Note: note}, true
}

func parseAddCustomField(body map[string]any) (Command, bool) {
	name := cleanString(body["name"])
	if name == "" {
		return Command{}, false
	}
	// Field type has a safe default; unknown or missing becomes text.
	typ := models.ParseFieldType(cleanString(body["fieldType"]))
	if typ == models.FieldText {
		typ = models.ParseFieldType(cleanString(body["type"]))
	}
	return Command{Kind: KindAddCustomField, FieldName: name, FieldType: typ}, true
}

func parseDeleteJob(body map[string]any) (Command, bool) {
	id := cleanString(body["id"])
	if id == "" {
		return Command{}, false
	}
	return Command{Kind: KindDeleteJob, ID: id}, true
}

// parseJobFields coerces the optional record fields shared by add_job and
// update_job. Each field degrades independently: a field that cannot be
// coerced is omitted, never fails the whole command.
func parseJobFields(body map[string]any) JobPayload {
	job := JobPayload{
		Company:     cleanString(body["company"]),
		Role:        cleanString(body["role"]),
		AppliedDate: cleanString(body["appliedDate"]),
		Tags:        stringList(body["tags"]),
		Notes:       stringList(body["notes"]),
		Custom:      scalarMap(body["custom"]),
	}
	// Accepted only on exact match; no defaulting here, the store owns the
	// default.
	if status, ok := models.ParseStatus(cleanString(body["status"])); ok {
		job.Status = status
	}
	return job
}

// cleanString returns the trimmed string value, or "" for any other type.
func cleanString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// stringList accepts a bare string (wrapped as one element) or an array of
// scalars (stringified, empties filtered). Any other shape means absent.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
		return nil
	case []any:
		var out []string
		for _, item := range t {
			if s := stringifyScalar(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func stringifyScalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// scalarMap accepts only a flat mapping to string/number/null. Nested or
// otherwise non-scalar values are dropped from the map; a map left empty
// after filtering is treated as absent.
func scalarMap(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		switch val.(type) {
		case string, float64, nil:
			out[k] = val
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
