package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parquedb/parquedb/internal/entity"
)

func TestDiffDetectsAddFieldSafe(t *testing.T) {
	prior := &entity.Schema{Fields: map[string]entity.Field{}}
	next := &entity.Schema{Fields: map[string]entity.Field{
		"nickname": {Type: "string"},
	}}

	changes := Diff(prior, next)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeAddField, changes[0].Kind)
	assert.Equal(t, SeveritySafe, changes[0].Severity)
}

func TestDiffDetectsRequiredAddWithoutDefaultAsBreaking(t *testing.T) {
	prior := &entity.Schema{Fields: map[string]entity.Field{}}
	next := &entity.Schema{Fields: map[string]entity.Field{
		"ssn": {Type: "string", Required: true},
	}}

	changes := Diff(prior, next)
	require.Len(t, changes, 1)
	assert.Equal(t, SeverityBreaking, changes[0].Severity)
}

func TestDiffDetectsRemoveField(t *testing.T) {
	prior := &entity.Schema{Fields: map[string]entity.Field{
		"legacy": {Type: "string"},
	}}
	next := &entity.Schema{Fields: map[string]entity.Field{}}

	changes := Diff(prior, next)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeRemoveField, changes[0].Kind)
	assert.Equal(t, SeverityBreaking, changes[0].Severity)
}

func TestDiffDetectsTypeChange(t *testing.T) {
	prior := &entity.Schema{Fields: map[string]entity.Field{
		"age": {Type: "string"},
	}}
	next := &entity.Schema{Fields: map[string]entity.Field{
		"age": {Type: "number"},
	}}

	changes := Diff(prior, next)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeType, changes[0].Kind)
	assert.Equal(t, SeverityBreaking, changes[0].Severity)
}

func TestDiffDetectsBecameRequired(t *testing.T) {
	prior := &entity.Schema{Fields: map[string]entity.Field{
		"email": {Type: "string", Required: false},
	}}
	next := &entity.Schema{Fields: map[string]entity.Field{
		"email": {Type: "string", Required: true},
	}}

	changes := Diff(prior, next)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeRequired, changes[0].Kind)
}

func TestDiffNilNextIsDropCollection(t *testing.T) {
	prior := &entity.Schema{Fields: map[string]entity.Field{"x": {Type: "string"}}}
	changes := Diff(prior, nil)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeDropCollection, changes[0].Kind)
}

func TestIsSafeToApplyAggregatesMultipleBreakingChanges(t *testing.T) {
	prior := &entity.Schema{Fields: map[string]entity.Field{
		"a": {Type: "string"},
		"b": {Type: "string"},
	}}
	next := &entity.Schema{Fields: map[string]entity.Field{
		"a": {Type: "number"},
	}}

	changes := Diff(prior, next)
	safe, err := IsSafeToApply("widgets", changes)
	assert.False(t, safe)
	require.Error(t, err)

	var schemaErr interface{ BreakingCount() int }
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, 2, schemaErr.BreakingCount())
}

func TestIsSafeToApplyAcceptsOnlySafeChanges(t *testing.T) {
	prior := &entity.Schema{Fields: map[string]entity.Field{}}
	next := &entity.Schema{Fields: map[string]entity.Field{
		"nickname": {Type: "string"},
	}}

	changes := Diff(prior, next)
	safe, err := IsSafeToApply("widgets", changes)
	assert.True(t, safe)
	assert.NoError(t, err)
}

func TestGenerateMigrationHintsOnlyCoversBreaking(t *testing.T) {
	prior := &entity.Schema{Fields: map[string]entity.Field{
		"legacy": {Type: "string"},
	}}
	next := &entity.Schema{Fields: map[string]entity.Field{
		"nickname": {Type: "string"},
	}}

	hints := GenerateMigrationHints(Diff(prior, next))
	require.Len(t, hints, 1)
	assert.Contains(t, hints[0], "legacy")
}
