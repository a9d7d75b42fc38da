// Package storage provides shape definition storage backed by NATS KV.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semshape/shape"
)

// BucketShapes is the default KV bucket holding shape definitions.
const BucketShapes = "SEMSHAPE_SHAPES"

// validKey restricts store keys to what NATS KV accepts. Shape IDs double as
// keys, so IDs outside this alphabet cannot be stored.
var validKey = regexp.MustCompile(`^[-_=.a-zA-Z0-9]+$`)

// ValidKey reports whether a shape ID can be used as a KV key.
func ValidKey(id string) bool {
	return id != "" && !strings.HasPrefix(id, ".") && validKey.MatchString(id)
}

// ShapeStore persists shape definitions in a NATS KV bucket, keyed by shape
// ID. Definitions are stored in authoring form and compiled on load.
type ShapeStore struct {
	kv jetstream.KeyValue
}

// NewShapeStore opens the shape bucket, creating it if it does not exist.
func NewShapeStore(ctx context.Context, js jetstream.JetStream, bucket string) (*ShapeStore, error) {
	if bucket == "" {
		bucket = BucketShapes
	}

	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      bucket,
			Description: "Shape definitions for graph validation",
			History:     5,
		})
		if err != nil {
			return nil, fmt.Errorf("create shapes bucket: %w", err)
		}
	}

	return &ShapeStore{kv: kv}, nil
}

// Put stores a shape definition. The definition is compiled first so invalid
// shapes never reach the bucket.
func (s *ShapeStore) Put(ctx context.Context, def *shape.Definition) error {
	if !ValidKey(def.ID) {
		return fmt.Errorf("shape ID %q is not a valid store key", def.ID)
	}
	if _, err := def.Compile(); err != nil {
		return fmt.Errorf("compile shape %s: %w", def.ID, err)
	}

	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("marshal shape %s: %w", def.ID, err)
	}

	if _, err := s.kv.Put(ctx, def.ID, data); err != nil {
		return fmt.Errorf("store shape %s: %w", def.ID, err)
	}
	return nil
}

// Get retrieves one shape definition by ID.
func (s *ShapeStore) Get(ctx context.Context, id string) (*shape.Definition, error) {
	entry, err := s.kv.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get shape %s: %w", id, err)
	}

	var def shape.Definition
	if err := json.Unmarshal(entry.Value(), &def); err != nil {
		return nil, fmt.Errorf("unmarshal shape %s: %w", id, err)
	}
	return &def, nil
}

// List returns every stored shape definition.
func (s *ShapeStore) List(ctx context.Context) ([]*shape.Definition, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if err == jetstream.ErrNoKeysFound {
			return nil, nil
		}
		return nil, fmt.Errorf("list shape keys: %w", err)
	}

	defs := make([]*shape.Definition, 0, len(keys))
	for _, key := range keys {
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			continue // Skip entries that fail to load
		}
		var def shape.Definition
		if err := json.Unmarshal(entry.Value(), &def); err != nil {
			continue
		}
		defs = append(defs, &def)
	}
	return defs, nil
}

// Delete removes a shape definition.
func (s *ShapeStore) Delete(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete shape %s: %w", id, err)
	}
	return nil
}

// LoadRegistry compiles every stored definition into a fresh registry.
// Definitions that fail to compile are skipped and reported in the returned
// error list so one bad shape does not block the rest.
func (s *ShapeStore) LoadRegistry(ctx context.Context) (*shape.Registry, []error, error) {
	defs, err := s.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	registry := shape.NewRegistry()
	var skipped []error
	for _, def := range defs {
		ns, err := def.Compile()
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		if err := registry.Register(ns); err != nil {
			skipped = append(skipped, err)
		}
	}
	return registry, skipped, nil
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "key not found")
}
