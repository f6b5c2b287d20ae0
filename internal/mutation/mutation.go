// Package mutation implements the document mutation pipeline of §4.5:
// validating, defaulting, and versioning a new document, then emitting
// exactly one CREATE event per call.
package mutation

import (
	"time"

	"github.com/google/uuid"

	"github.com/parquedb/parquedb/internal/entity"
	"github.com/parquedb/parquedb/internal/event"
	"github.com/parquedb/parquedb/pkg/errors"
)

// IDGenerator produces a new entity id. A Pipeline built by New defaults
// to DefaultIDGenerator (uuid.NewString); tests substitute a deterministic
// generator.
type IDGenerator func() string

// DefaultIDGenerator is the production id generator: a random UUIDv4.
func DefaultIDGenerator() string {
	return uuid.NewString()
}

// Clock returns the current time; tests substitute a fixed clock so
// CreatedAt/UpdatedAt assertions don't race real time.
type Clock func() time.Time

// Context carries per-call mutation metadata: who's performing the
// mutation, when it's deemed to have happened, and whether the
// input-shape check should be bypassed. A zero-value Context works for
// callers that don't need audit attribution: Timestamp falls back to the
// pipeline's own clock, Actor stays empty, and validation runs normally.
type Context struct {
	Actor          string
	Timestamp      time.Time
	SkipValidation bool
}

// Pipeline runs document mutations against a single namespace/collection.
type Pipeline struct {
	namespace  string
	collection string
	schema     *entity.Schema

	genID IDGenerator
	now   Clock
}

// New builds a Pipeline for the given namespace, collection, and schema.
func New(namespace, collection string, schema *entity.Schema) *Pipeline {
	return &Pipeline{
		namespace:  namespace,
		collection: collection,
		schema:     schema,
		genID:      DefaultIDGenerator,
		now:        time.Now,
	}
}

// WithIDGenerator overrides the id generator, e.g. for deterministic tests.
func (p *Pipeline) WithIDGenerator(gen IDGenerator) *Pipeline {
	p.genID = gen
	return p
}

// WithClock overrides the clock, e.g. for deterministic tests.
func (p *Pipeline) WithClock(clock Clock) *Pipeline {
	p.now = clock
	return p
}

// ExecuteCreate validates input against the reserved $type/name contract
// and the pipeline's schema, applies field defaults, assigns an id (if
// absent) and version/audit fields, and returns both the created Entity
// and the single CREATE event it emits (§4.5: "exactly one CREATE event
// per call" - the caller is responsible for publishing it; ExecuteCreate
// never mutates shared state beyond returning a fresh value).
func (p *Pipeline) ExecuteCreate(ctx Context, id string, input map[string]any) (*entity.Entity, event.Event, error) {
	data, typ, name, err := p.validateAndDefault(input, ctx.SkipValidation)
	if err != nil {
		return nil, event.Event{}, err
	}

	if id == "" {
		id = p.genID()
	}

	now := ctx.Timestamp
	if now.IsZero() {
		now = p.now()
	}

	namespace := entity.NormalizeNamespace(p.namespace)
	ent := &entity.Entity{
		ID:         namespace + "/" + id,
		Namespace:  namespace,
		Collection: p.collection,
		Type:       typ,
		Name:       name,
		Version:    1,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  ctx.Actor,
		UpdatedBy:  ctx.Actor,
	}

	target := namespace + ":" + id
	evt := event.NewCreate(ent, ctx.Actor, target, now)
	return ent, evt, nil
}

// validateAndDefault enforces the reserved $type/name contract (unless
// skipValidation is set), checks every schema-required field is present
// (or has a default), rejects fields not declared by the schema, and
// returns a fresh map holding the input plus applied defaults - with
// $type and name pulled out, since they're reserved attributes tracked
// on the Entity directly rather than members of Data. A nil schema
// skips field-level validation but $type/name are still enforced.
func (p *Pipeline) validateAndDefault(input map[string]any, skipValidation bool) (map[string]any, string, string, error) {
	out := make(map[string]any, len(input))
	for k, v := range input {
		out[k] = v
	}

	typ, hasType := reservedString(out, "$type")
	name, hasName := reservedString(out, "name")
	delete(out, "$type")
	delete(out, "name")

	if !skipValidation {
		if !hasType {
			return nil, "", "", errors.NewValidationError(
				nil, errors.ErrorCodeValidationFailed, "$type must be a non-empty string",
			).WithField("$type").WithRule("required")
		}
		if !hasName {
			return nil, "", "", errors.NewValidationError(
				nil, errors.ErrorCodeValidationFailed, "name must be a non-empty string",
			).WithField("name").WithRule("required")
		}
	}

	if p.schema == nil {
		return out, typ, name, nil
	}

	for fieldName, field := range p.schema.Fields {
		if _, present := out[fieldName]; present {
			continue
		}
		if field.Default != nil {
			out[fieldName] = field.Default
			continue
		}
		if field.Required && !skipValidation {
			return nil, "", "", errors.NewRequiredFieldError(fieldName)
		}
	}

	if !skipValidation {
		for fieldName := range input {
			if fieldName == "$type" || fieldName == "name" {
				continue
			}
			if _, declared := p.schema.Fields[fieldName]; !declared {
				return nil, "", "", errors.NewValidationError(
					nil, errors.ErrorCodeInvalidInput, "field is not declared by the collection schema",
				).WithField(fieldName).WithRule("schema_member")
			}
		}
	}

	return out, typ, name, nil
}

// reservedString reads key out of m as a non-empty string, reporting
// false if it's absent, empty, or the wrong type.
func reservedString(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
