package store

import (
	"context"
	"testing"

	"github.com/jobdeck/jobdeck/internal/models"
	"github.com/jobdeck/jobdeck/internal/storage"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Salary", "salary"},
		{"spaces collapse", "Salary  Range", "salary-range"},
		{"punctuation collapses to one dash", "Recruiter / Contact!!", "recruiter-contact"},
		{"leading and trailing junk trimmed", "  --Portal--  ", "portal"},
		{"digits kept", "Round 2 Date", "round-2-date"},
		{"cjk kept", "希望年収", "希望年収"},
		{"mixed cjk and ascii", "面接 Date", "面接-date"},
		{"nothing usable", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slugify(tt.in); got != tt.want {
				t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugifyBoundsLength(t *testing.T) {
	long := ""
	for range 20 {
		long += "abcdef"
	}
	got := slugify(long)
	if len([]rune(got)) > maxSlugRunes {
		t.Errorf("slug length = %d runes, want <= %d", len([]rune(got)), maxSlugRunes)
	}
}

func TestUpsertFieldAppendsAndReturnsSlug(t *testing.T) {
	s := NewSchemaStore(storage.NewMemoryStore())
	ctx := context.Background()

	id, err := s.UpsertField(ctx, "Salary Range", models.FieldNumber)
	if err != nil {
		t.Fatal(err)
	}
	if id != "salary-range" {
		t.Errorf("id = %q, want salary-range", id)
	}

	fields, err := s.Fields(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != 1 || fields[0].Name != "Salary Range" || fields[0].Type != models.FieldNumber {
		t.Errorf("fields = %+v", fields)
	}
}

func TestUpsertFieldOverwritesExistingID(t *testing.T) {
	s := NewSchemaStore(storage.NewMemoryStore())
	ctx := context.Background()

	first, err := s.UpsertField(ctx, "Salary Range", models.FieldText)
	if err != nil {
		t.Fatal(err)
	}
	// Same derived id, different casing and type: must overwrite in place,
	// never duplicate.
	second, err := s.UpsertField(ctx, "SALARY range", models.FieldNumber)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("ids differ: %q vs %q", first, second)
	}

	fields, err := s.Fields(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != 1 {
		t.Fatalf("fields = %d, want 1", len(fields))
	}
	if fields[0].Name != "SALARY range" || fields[0].Type != models.FieldNumber {
		t.Errorf("field not overwritten: %+v", fields[0])
	}
}

func TestUpsertFieldFallsBackToRandomID(t *testing.T) {
	s := NewSchemaStore(storage.NewMemoryStore())
	ctx := context.Background()

	id, err := s.UpsertField(ctx, "!!!", models.FieldText)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected a generated id for an unslugifiable name")
	}

	// A second unslugifiable name must get its own id, not collide.
	other, err := s.UpsertField(ctx, "???", models.FieldText)
	if err != nil {
		t.Fatal(err)
	}
	if other == id {
		t.Error("two fallback ids collided")
	}
}

func TestUpsertFieldPreservesInsertionOrder(t *testing.T) {
	s := NewSchemaStore(storage.NewMemoryStore())
	ctx := context.Background()

	for _, name := range []string{"Salary", "Recruiter", "Portal"} {
		if _, err := s.UpsertField(ctx, name, models.FieldText); err != nil {
			t.Fatal(err)
		}
	}

	fields, err := s.Fields(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"salary", "recruiter", "portal"}
	if len(fields) != len(want) {
		t.Fatalf("fields = %d, want %d", len(fields), len(want))
	}
	for i, id := range want {
		if fields[i].ID != id {
			t.Errorf("fields[%d].ID = %q, want %q", i, fields[i].ID, id)
		}
	}
}

func TestSchemaSubscribeFiresImmediatelyOnLoadFailure(t *testing.T) {
	docs := storage.NewMemoryStore()
	if err := docs.Put(context.Background(), storage.SchemaKey, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	s := NewSchemaStore(docs)

	calls := 0
	unsubscribe := s.Subscribe(func(fields []models.CustomField) {
		calls++
		if len(fields) != 0 {
			t.Errorf("snapshot = %d fields, want empty", len(fields))
		}
	})
	defer unsubscribe()

	if calls != 1 {
		t.Errorf("subscribe fired %d times, want 1 immediate call", calls)
	}
}

func TestSchemaSubscribe(t *testing.T) {
	s := NewSchemaStore(storage.NewMemoryStore())

	var snapshots [][]models.CustomField
	unsubscribe := s.Subscribe(func(fields []models.CustomField) {
		snapshots = append(snapshots, fields)
	})
	defer unsubscribe()

	if len(snapshots) != 1 {
		t.Fatalf("subscribe fired %d times, want immediate first call", len(snapshots))
	}

	if _, err := s.UpsertField(context.Background(), "Salary", models.FieldNumber); err != nil {
		t.Fatal(err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("subscribe fired %d times after upsert, want 2", len(snapshots))
	}
	if len(snapshots[1]) != 1 || snapshots[1][0].ID != "salary" {
		t.Errorf("post-upsert snapshot = %+v", snapshots[1])
	}
}
