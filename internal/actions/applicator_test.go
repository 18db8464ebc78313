package actions

import (
	"context"
	"testing"

	"github.com/jobdeck/jobdeck/internal/logger"
	"github.com/jobdeck/jobdeck/internal/models"
	"github.com/jobdeck/jobdeck/internal/storage"
	"github.com/jobdeck/jobdeck/internal/store"
)

func newTestApplicator(t *testing.T) (*Applicator, *store.RecordStore, *store.SchemaStore) {
	t.Helper()
	docs := storage.NewMemoryStore()
	records := store.NewRecordStore(docs)
	schema := store.NewSchemaStore(docs)
	return NewApplicator(records, schema, logger.Nop()), records, schema
}

func TestApplyEndToEndWrapperPayload(t *testing.T) {
	applicator, records, _ := newTestApplicator(t)
	ctx := context.Background()

	payload := decode(t, `{"actions":[{"add_job":{"company":"Acme","role":"Engineer","status":"applied"}}]}`)
	batch := Normalize(payload)
	if len(batch.Commands) != 1 {
		t.Fatalf("normalized %d commands, want 1", len(batch.Commands))
	}

	results := applicator.Apply(ctx, batch.Commands, nil)
	if len(results) != 1 || !results[0].OK {
		t.Fatalf("unexpected results: %+v", results)
	}

	all, err := records.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("store has %d records, want 1", len(all))
	}
	rec := all[0]
	if rec.Company != "Acme" || rec.Role != "Engineer" || rec.Status != models.StatusApplied {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestApplyUnknownStatusPayloadMutatesNothing(t *testing.T) {
	applicator, records, _ := newTestApplicator(t)
	ctx := context.Background()

	payload := decode(t, `{"actions":[{"type":"set_status","id":"whatever","status":"promoted"}]}`)
	batch := Normalize(payload)
	if len(batch.Commands) != 0 {
		t.Fatalf("normalized %d commands, want 0", len(batch.Commands))
	}

	results := applicator.Apply(ctx, batch.Commands, nil)
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
	all, err := records.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("store has %d records, want 0", len(all))
	}
}

func TestApplyDoesNotAbortOnFailure(t *testing.T) {
	applicator, records, _ := newTestApplicator(t)
	ctx := context.Background()

	id, err := records.Add(ctx, store.RecordInput{Company: "Acme", Role: "Engineer"})
	if err != nil {
		t.Fatal(err)
	}

	// Command 1 is hand-built with a status the normalizer would never
	// emit, forcing a failure in the middle of the batch.
	cmds := []Command{
		{Kind: KindSetStatus, ID: id, Status: models.StatusInterviewed},
		{Kind: KindSetStatus, ID: id, Status: models.Status("promoted")},
		{Kind: KindAddTag, ID: id, Tag: "priority"},
	}

	results := applicator.Apply(ctx, cmds, nil)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	wantOK := []bool{true, false, true}
	for i, want := range wantOK {
		if results[i].OK != want {
			t.Errorf("results[%d].OK = %v, want %v (%s)", i, results[i].OK, want, results[i].Message)
		}
	}

	rec, found, err := records.Get(ctx, id)
	if err != nil || !found {
		t.Fatalf("record lookup failed: found=%v err=%v", found, err)
	}
	if rec.Status != models.StatusInterviewed {
		t.Errorf("status = %q, want interviewed", rec.Status)
	}
	if !rec.HasTag("priority") {
		t.Error("tag from the command after the failure is missing")
	}
}

func TestApplyUnknownKindIsUnsupported(t *testing.T) {
	applicator, _, _ := newTestApplicator(t)

	results := applicator.Apply(context.Background(), []Command{{Kind: Kind("teleport_job")}}, nil)
	if len(results) != 1 || results[0].OK {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].Message != "unsupported" {
		t.Errorf("message = %q, want unsupported", results[0].Message)
	}
}

func TestApplyResolvesCustomFieldNames(t *testing.T) {
	applicator, records, schema := newTestApplicator(t)
	ctx := context.Background()

	fieldID, err := schema.UpsertField(ctx, "Salary Range", models.FieldText)
	if err != nil {
		t.Fatal(err)
	}
	fields, err := schema.Fields(ctx)
	if err != nil {
		t.Fatal(err)
	}

	cmds := []Command{{
		Kind: KindAddJob,
		Job: &JobPayload{
			Company: "Acme",
			Role:    "Engineer",
			Custom: map[string]any{
				"salary range": "100k", // case-insensitive name match
				"future-field": "x",    // unresolved, passes through
			},
		},
	}}
	results := applicator.Apply(ctx, cmds, fields)
	if !results[0].OK {
		t.Fatalf("add_job failed: %s", results[0].Message)
	}

	all, err := records.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	custom := all[0].Custom
	if custom[fieldID] != "100k" {
		t.Errorf("custom[%q] = %v, want 100k", fieldID, custom[fieldID])
	}
	if custom["future-field"] != "x" {
		t.Errorf("unresolved key should pass through literally, got %v", custom)
	}
}

func TestApplySequentialVisibility(t *testing.T) {
	applicator, records, _ := newTestApplicator(t)
	ctx := context.Background()

	id, err := records.Add(ctx, store.RecordInput{Company: "Acme", Role: "Engineer"})
	if err != nil {
		t.Fatal(err)
	}

	// Later commands must observe earlier effects: the second add_tag sees
	// the first one's tag, so only one tag_added event lands.
	cmds := []Command{
		{Kind: KindAddTag, ID: id, Tag: "remote"},
		{Kind: KindAddTag, ID: id, Tag: "remote"},
	}
	results := applicator.Apply(ctx, cmds, nil)
	for i, r := range results {
		if !r.OK {
			t.Fatalf("results[%d] failed: %s", i, r.Message)
		}
	}

	rec, _, err := records.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	tagEvents := 0
	for _, ev := range rec.Timeline {
		if ev.Type == models.EventTagAdded {
			tagEvents++
		}
	}
	if tagEvents != 1 {
		t.Errorf("tag_added events = %d, want 1", tagEvents)
	}
}

func TestApplyDeleteUnknownIDIsNoOpSuccess(t *testing.T) {
	applicator, _, _ := newTestApplicator(t)

	results := applicator.Apply(context.Background(), []Command{{Kind: KindDeleteJob, ID: "ghost"}}, nil)
	if !results[0].OK {
		t.Errorf("deleting an unknown id should be a silent no-op, got %+v", results[0])
	}
}

func TestApplyAddCustomField(t *testing.T) {
	applicator, _, schema := newTestApplicator(t)
	ctx := context.Background()

	cmds := []Command{{Kind: KindAddCustomField, FieldName: "Recruiter", FieldType: models.FieldText}}
	results := applicator.Apply(ctx, cmds, nil)
	if !results[0].OK {
		t.Fatalf("add_custom_field failed: %s", results[0].Message)
	}

	fields, err := schema.Fields(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != 1 || fields[0].Name != "Recruiter" || fields[0].ID != "recruiter" {
		t.Errorf("unexpected schema: %+v", fields)
	}
}
