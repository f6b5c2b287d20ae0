// Package schema implements schema evolution and breaking-change
// detection (§4.6): classifying how a proposed schema differs from a
// collection's current one, and deciding whether that difference is safe
// to apply without a migration.
package schema

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/parquedb/parquedb/internal/entity"
	"github.com/parquedb/parquedb/pkg/errors"
)

// Severity classifies how disruptive a schema change is.
type Severity int

const (
	// SeveritySafe changes require no migration (e.g. adding an optional field).
	SeveritySafe Severity = iota
	// SeverityWarning changes are backward compatible but worth surfacing
	// to operators (e.g. adding a required field with a default).
	SeverityWarning
	// SeverityBreaking changes require a migration before they can be
	// safely applied.
	SeverityBreaking
)

// ChangeKind enumerates the categories of schema change this package
// detects.
type ChangeKind string

const (
	ChangeDropCollection ChangeKind = "DROP_COLLECTION"
	ChangeType           ChangeKind = "CHANGE_TYPE"
	ChangeRemoveField    ChangeKind = "REMOVE_FIELD"
	ChangeRequired       ChangeKind = "CHANGE_REQUIRED"
	ChangeAddField       ChangeKind = "ADD_FIELD"
)

// Change describes one detected difference between two schema versions.
type Change struct {
	Kind       ChangeKind
	Field      string
	Severity   Severity
	Detail     string
	Suggestion string
}

// Diff compares prior to next and returns every detected change. A nil
// prior means "collection did not exist before" and is compared as an
// empty schema: every field in next is reported as ADD_FIELD, graded like
// any other added field (breaking when required with no default).
func Diff(prior, next *entity.Schema) []Change {
	if next == nil {
		return []Change{{
			Kind:       ChangeDropCollection,
			Severity:   SeverityBreaking,
			Detail:     "collection schema removed",
			Suggestion: "archive or export the collection before dropping its schema",
		}}
	}
	if prior == nil {
		prior = &entity.Schema{Fields: map[string]entity.Field{}}
	}

	var changes []Change

	for name, before := range prior.Fields {
		after, stillPresent := next.Fields[name]
		if !stillPresent {
			changes = append(changes, Change{
				Kind:       ChangeRemoveField,
				Field:      name,
				Severity:   SeverityBreaking,
				Detail:     fmt.Sprintf("field %q removed", name),
				Suggestion: fmt.Sprintf("backfill or migrate readers off %q before removing it", name),
			})
			continue
		}

		if before.Type != after.Type {
			changes = append(changes, Change{
				Kind:       ChangeType,
				Field:      name,
				Severity:   SeverityBreaking,
				Detail:     fmt.Sprintf("field %q type changed from %s to %s", name, before.Type, after.Type),
				Suggestion: fmt.Sprintf("write a migration that converts %q from %s to %s", name, before.Type, after.Type),
			})
		}

		if !before.Required && after.Required {
			changes = append(changes, Change{
				Kind:       ChangeRequired,
				Field:      name,
				Severity:   SeverityBreaking,
				Detail:     fmt.Sprintf("field %q became required", name),
				Suggestion: fmt.Sprintf("backfill %q on existing documents before requiring it", name),
			})
		}
	}

	for name, after := range next.Fields {
		if _, existedBefore := prior.Fields[name]; existedBefore {
			continue
		}

		change := Change{Kind: ChangeAddField, Field: name, Detail: fmt.Sprintf("field %q added", name)}
		switch {
		case after.Required && after.Default == nil:
			change.Severity = SeverityBreaking
			change.Suggestion = fmt.Sprintf("give %q a default value, or backfill existing documents first", name)
		case after.Required:
			change.Severity = SeverityWarning
			change.Suggestion = fmt.Sprintf("existing documents will receive %q's default value on next read", name)
		default:
			change.Severity = SeveritySafe
		}
		changes = append(changes, change)
	}

	return changes
}

// IsSafeToApply reports whether every change in changes is non-breaking,
// aggregating every breaking change into a single *SchemaError via
// multierr so the caller sees the full list of problems, not just the
// first one.
func IsSafeToApply(collection string, changes []Change) (bool, error) {
	var errs error
	breaking := 0

	for _, c := range changes {
		if c.Severity == SeverityBreaking {
			breaking++
			errs = multierr.Append(errs, errors.NewSchemaError(
				nil, errors.ErrorCodeSchemaIncompatible, c.Detail,
			).WithDetail("kind", string(c.Kind)).WithDetail("field", c.Field).WithDetail("suggestion", c.Suggestion))
		}
	}

	if breaking == 0 {
		return true, nil
	}

	return false, errors.NewSchemaIncompatibleError(collection, breaking).
		WithDetail("causes", multierr.Errors(errs))
}

// GenerateMigrationHints returns the Suggestion text of every breaking
// change, for surfacing to an operator deciding how to write a migration.
func GenerateMigrationHints(changes []Change) []string {
	var hints []string
	for _, c := range changes {
		if c.Severity == SeverityBreaking && c.Suggestion != "" {
			hints = append(hints, c.Suggestion)
		}
	}
	return hints
}
