// Package store owns the two persisted collections: the user-defined
// custom-field schema and the application records with their audit
// timelines. Each collection is one JSON document in the storage layer;
// every mutation is a full read-modify-write cycle, and subscribers are
// notified after each persisted change.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jobdeck/jobdeck/internal/models"
	"github.com/jobdeck/jobdeck/internal/storage"
)

// SchemaStore owns the ordered set of custom fields.
type SchemaStore struct {
	docs storage.DocumentStore
	mu   sync.Mutex
}

func NewSchemaStore(docs storage.DocumentStore) *SchemaStore {
	return &SchemaStore{docs: docs}
}

func (s *SchemaStore) load(ctx context.Context) (models.Schema, error) {
	data, err := s.docs.Get(ctx, storage.SchemaKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Schema{}, nil
		}
		return models.Schema{}, fmt.Errorf("load schema: %w", err)
	}
	var schema models.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return models.Schema{}, fmt.Errorf("decode schema: %w", err)
	}
	return schema, nil
}

func (s *SchemaStore) save(ctx context.Context, schema models.Schema) error {
	data, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	if err := s.docs.Put(ctx, storage.SchemaKey, data); err != nil {
		return fmt.Errorf("save schema: %w", err)
	}
	return nil
}

// UpsertField registers a custom field and returns its id. The id is a slug
// of the name, derived once; an upsert that lands on an existing id
// overwrites that field's name and type in place instead of duplicating it.
// A name that slugifies to nothing gets a random id.
func (s *SchemaStore) UpsertField(ctx context.Context, name string, typ models.FieldType) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schema, err := s.load(ctx)
	if err != nil {
		return "", err
	}

	id := slugify(name)
	if id == "" {
		id = uuid.NewString()
	}

	replaced := false
	for i := range schema.CustomFields {
		if schema.CustomFields[i].ID == id {
			schema.CustomFields[i].Name = name
			schema.CustomFields[i].Type = typ
			replaced = true
			break
		}
	}
	if !replaced {
		schema.CustomFields = append(schema.CustomFields, models.CustomField{
			ID:   id,
			Name: name,
			Type: typ,
		})
	}

	if err := s.save(ctx, schema); err != nil {
		return "", err
	}
	return id, nil
}

// Fields returns the schema in insertion order.
func (s *SchemaStore) Fields(ctx context.Context) ([]models.CustomField, error) {
	schema, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return schema.CustomFields, nil
}

// Subscribe fires fn immediately with the current fields, then after every
// persisted schema change, including changes made by another process when
// the backend can observe them.
func (s *SchemaStore) Subscribe(fn func([]models.CustomField)) func() {
	// The immediate callback fires even when the initial load fails; the
	// subscriber gets an empty snapshot instead of silence.
	schema, err := s.load(context.Background())
	if err != nil {
		schema = models.Schema{}
	}
	fn(schema.CustomFields)

	return s.docs.Subscribe(func(key string) {
		if key != storage.SchemaKey {
			return
		}
		schema, err := s.load(context.Background())
		if err != nil {
			return
		}
		fn(schema.CustomFields)
	})
}
