package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jobdeck/jobdeck/internal/models"
	"github.com/jobdeck/jobdeck/internal/storage"
)

// RecordInput is everything a caller may supply when creating a record.
// Status defaults to applied. The store does not reject blank company/role;
// that enforcement belongs to the boundary feeding it (handlers, normalizer).
type RecordInput struct {
	Company     string
	Role        string
	Status      models.Status
	AppliedDate string
	Tags        []string
	Notes       []string
	Custom      map[string]any
}

// RecordPatch carries a partial update. Nil pointer/slice/map fields are
// absent and leave the record untouched; present fields overwrite, except
// Custom which merges key by key into the existing map.
type RecordPatch struct {
	Company     *string
	Role        *string
	Status      *models.Status
	AppliedDate *string
	Tags        []string
	Notes       []string
	Custom      map[string]any
}

// RecordStore owns the record collection. Mutators follow one contract:
// mutating a non-existent id is a silent no-op, never an error, because each
// mutation is a map over the whole collection. Batch callers rely on that.
type RecordStore struct {
	docs storage.DocumentStore
	mu   sync.Mutex

	now   func() time.Time
	newID func() string
}

func NewRecordStore(docs storage.DocumentStore) *RecordStore {
	return &RecordStore{
		docs:  docs,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *RecordStore) load(ctx context.Context) ([]models.Record, error) {
	data, err := s.docs.Get(ctx, storage.RecordsKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load records: %w", err)
	}
	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

func (s *RecordStore) save(ctx context.Context, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := s.docs.Put(ctx, storage.RecordsKey, data); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}

func (s *RecordStore) event(typ models.EventType, label string) models.TimelineEvent {
	return models.TimelineEvent{
		ID:        s.newID(),
		Type:      typ,
		Label:     label,
		CreatedAt: s.now(),
	}
}

// List returns the full collection, newest-created first.
func (s *RecordStore) List(ctx context.Context) ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns one record by id.
func (s *RecordStore) Get(ctx context.Context, id string) (models.Record, bool, error) {
	records, err := s.List(ctx)
	if err != nil {
		return models.Record{}, false, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, true, nil
		}
	}
	return models.Record{}, false, nil
}

// Add creates a record and returns its generated id. The timeline starts
// with a created event and a status_changed event for the initial status; an
// applied_date_updated event is added when an applied date is supplied.
func (s *RecordStore) Add(ctx context.Context, input RecordInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return "", err
	}

	status := input.Status
	if status == "" {
		status = models.StatusApplied
	}

	now := s.now()
	rec := models.Record{
		ID:          s.newID(),
		Company:     input.Company,
		Role:        input.Role,
		Status:      status,
		AppliedDate: input.AppliedDate,
		Tags:        dedupe(input.Tags),
		Notes:       append([]string{}, input.Notes...),
		Custom:      copyCustom(input.Custom),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	rec.Timeline = append(rec.Timeline,
		s.event(models.EventCreated, "Application created"),
		s.event(models.EventStatusChanged, "Status set to "+string(status)),
	)
	if input.AppliedDate != "" {
		rec.Timeline = append(rec.Timeline,
			s.event(models.EventAppliedDate, "Applied date set to "+input.AppliedDate))
	}

	// Newest-created first, by convention of the records document.
	records = append([]models.Record{rec}, records...)
	if err := s.save(ctx, records); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Update merges a patch into one record. The collection is persisted even
// when the id matches nothing, keeping the map-over-collection semantics.
func (s *RecordStore) Update(ctx context.Context, id string, patch RecordPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	for i := range records {
		if records[i].ID != id {
			continue
		}
		r := &records[i]

		if patch.Company != nil {
			r.Company = *patch.Company
		}
		if patch.Role != nil {
			r.Role = *patch.Role
		}
		if patch.Status != nil && *patch.Status != r.Status {
			r.Status = *patch.Status
			r.Timeline = append(r.Timeline,
				s.event(models.EventStatusChanged, "Status set to "+string(*patch.Status)))
		}
		if patch.AppliedDate != nil && *patch.AppliedDate != r.AppliedDate {
			r.AppliedDate = *patch.AppliedDate
			r.Timeline = append(r.Timeline,
				s.event(models.EventAppliedDate, "Applied date set to "+*patch.AppliedDate))
		}
		if patch.Tags != nil {
			r.Tags = dedupe(patch.Tags)
		}
		if patch.Notes != nil {
			r.Notes = append([]string{}, patch.Notes...)
		}
		if patch.Custom != nil {
			if r.Custom == nil {
				r.Custom = map[string]any{}
			}
			for k, v := range patch.Custom {
				r.Custom[k] = v
			}
		}
		r.UpdatedAt = s.now()
		break
	}

	return s.save(ctx, records)
}

// SetStatus transitions a record and appends exactly one status_changed
// event. Setting the status it already has changes nothing, so repeated
// calls never duplicate timeline entries.
func (s *RecordStore) SetStatus(ctx context.Context, id string, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	changed := false
	for i := range records {
		if records[i].ID != id || records[i].Status == status {
			continue
		}
		records[i].Status = status
		records[i].Timeline = append(records[i].Timeline,
			s.event(models.EventStatusChanged, "Status set to "+string(status)))
		records[i].UpdatedAt = s.now()
		changed = true
		break
	}

	if !changed {
		return nil
	}
	return s.save(ctx, records)
}

// AddTag is idempotent: the tag is appended and a tag_added event emitted
// only the first time that exact string appears on the record.
func (s *RecordStore) AddTag(ctx context.Context, id, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	changed := false
	for i := range records {
		if records[i].ID != id || records[i].HasTag(tag) {
			continue
		}
		records[i].Tags = append(records[i].Tags, tag)
		records[i].Timeline = append(records[i].Timeline,
			s.event(models.EventTagAdded, "Tagged "+tag))
		records[i].UpdatedAt = s.now()
		changed = true
		break
	}

	if !changed {
		return nil
	}
	return s.save(ctx, records)
}

// AddNote appends to the note history. Note mutations do not touch the
// timeline; they only refresh updatedAt. Intentional, not an oversight.
func (s *RecordStore) AddNote(ctx context.Context, id, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	changed := false
	for i := range records {
		if records[i].ID != id {
			continue
		}
		records[i].Notes = append(records[i].Notes, note)
		records[i].UpdatedAt = s.now()
		changed = true
		break
	}

	if !changed {
		return nil
	}
	return s.save(ctx, records)
}

// SetNote replaces the whole note history with zero or one entries; nil
// clears it. Like AddNote, no timeline event.
func (s *RecordStore) SetNote(ctx context.Context, id string, note *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	changed := false
	for i := range records {
		if records[i].ID != id {
			continue
		}
		if note == nil {
			records[i].Notes = []string{}
		} else {
			records[i].Notes = []string{*note}
		}
		records[i].UpdatedAt = s.now()
		changed = true
		break
	}

	if !changed {
		return nil
	}
	return s.save(ctx, records)
}

// SetCustomValue sets one key in the record's custom map and appends a
// custom_updated event.
func (s *RecordStore) SetCustomValue(ctx context.Context, id, fieldID string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	changed := false
	for i := range records {
		if records[i].ID != id {
			continue
		}
		if records[i].Custom == nil {
			records[i].Custom = map[string]any{}
		}
		records[i].Custom[fieldID] = value
		records[i].Timeline = append(records[i].Timeline,
			s.event(models.EventCustomUpdated, "Updated "+fieldID))
		records[i].UpdatedAt = s.now()
		changed = true
		break
	}

	if !changed {
		return nil
	}
	return s.save(ctx, records)
}

// Delete removes a record. No tombstone, no undo. Deleting an unknown id is
// a silent no-op.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return s.save(ctx, kept)
}

// Subscribe fires fn immediately with the current collection, then after
// every persisted mutation. Backends that can observe other processes (redis
// pub/sub) also deliver externally-originated changes through the same path.
func (s *RecordStore) Subscribe(fn func([]models.Record)) func() {
	// The immediate callback is contractual; a failed initial load still
	// delivers an empty snapshot rather than skipping the call.
	records, err := s.List(context.Background())
	if err != nil {
		records = nil
	}
	fn(records)

	return s.docs.Subscribe(func(key string) {
		if key != storage.RecordsKey {
			return
		}
		records, err := s.load(context.Background())
		if err != nil {
			return
		}
		fn(records)
	})
}

func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func copyCustom(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
