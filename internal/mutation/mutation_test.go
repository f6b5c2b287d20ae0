package mutation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parquedb/parquedb/internal/entity"
	"github.com/parquedb/parquedb/internal/event"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestExecuteCreateAppliesDefaultsAndVersion(t *testing.T) {
	schema := &entity.Schema{
		Fields: map[string]entity.Field{
			"email":  {Type: "string", Required: true},
			"status": {Type: "string", Default: "active"},
		},
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := New("ns", "users", schema).
		WithIDGenerator(func() string { return "fixed-id" }).
		WithClock(fixedClock(now))

	input := map[string]any{"$type": "User", "name": "Ada", "email": "ada@example.com"}
	ent, evt, err := p.ExecuteCreate(Context{}, "", input)
	require.NoError(t, err)

	assert.Equal(t, "ns/fixed-id", ent.ID)
	assert.Equal(t, "ns", ent.Namespace)
	assert.Equal(t, "User", ent.Type)
	assert.Equal(t, "Ada", ent.Name)
	assert.Equal(t, 1, ent.Version)
	assert.Equal(t, "active", ent.Data["status"])
	assert.Equal(t, now, ent.CreatedAt)
	assert.Equal(t, now, ent.UpdatedAt)

	assert.Equal(t, event.KindCreate, evt.Kind)
	assert.Equal(t, "ns/fixed-id", evt.EntityID)
	assert.Equal(t, "ns:fixed-id", evt.Target)
	assert.Equal(t, "ada@example.com", evt.After.Data["email"])
}

func TestExecuteCreateSetsActorOnAuditFields(t *testing.T) {
	p := New("ns", "users", nil)
	ctx := Context{Actor: "operator-1"}
	ent, evt, err := p.ExecuteCreate(ctx, "", map[string]any{"$type": "User", "name": "Ada"})
	require.NoError(t, err)

	assert.Equal(t, "operator-1", ent.CreatedBy)
	assert.Equal(t, "operator-1", ent.UpdatedBy)
	assert.Equal(t, "operator-1", evt.Actor)
}

func TestExecuteCreateRejectsMissingType(t *testing.T) {
	p := New("ns", "users", nil)
	_, _, err := p.ExecuteCreate(Context{}, "", map[string]any{"name": "Ada"})
	assert.Error(t, err)
}

func TestExecuteCreateRejectsMissingName(t *testing.T) {
	p := New("ns", "users", nil)
	_, _, err := p.ExecuteCreate(Context{}, "", map[string]any{"$type": "User"})
	assert.Error(t, err)
}

func TestExecuteCreateRejectsEmptyName(t *testing.T) {
	p := New("ns", "users", nil)
	_, _, err := p.ExecuteCreate(Context{}, "", map[string]any{"$type": "User", "name": ""})
	assert.Error(t, err)
}

func TestExecuteCreateSkipValidationBypassesReservedCheck(t *testing.T) {
	schema := &entity.Schema{
		Fields: map[string]entity.Field{
			"status": {Type: "string", Default: "active"},
		},
	}
	p := New("ns", "users", schema)
	ent, _, err := p.ExecuteCreate(Context{SkipValidation: true}, "", map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, ent.Type)
	assert.Empty(t, ent.Name)
	assert.Equal(t, "active", ent.Data["status"])
}

func TestExecuteCreateRejectsMissingRequiredField(t *testing.T) {
	schema := &entity.Schema{
		Fields: map[string]entity.Field{
			"email": {Type: "string", Required: true},
		},
	}
	p := New("ns", "users", schema)

	_, _, err := p.ExecuteCreate(Context{}, "", map[string]any{"$type": "User", "name": "Ada"})
	assert.Error(t, err)
}

func TestExecuteCreateRejectsUndeclaredField(t *testing.T) {
	schema := &entity.Schema{
		Fields: map[string]entity.Field{
			"email": {Type: "string"},
		},
	}
	p := New("ns", "users", schema)

	_, _, err := p.ExecuteCreate(Context{}, "", map[string]any{"$type": "User", "name": "Ada", "extra": true})
	assert.Error(t, err)
}

func TestExecuteCreateUsesCallerSuppliedID(t *testing.T) {
	p := New("ns", "users", nil)
	ent, _, err := p.ExecuteCreate(Context{}, "caller-id", map[string]any{"$type": "User", "name": "Ada", "x": 1})
	require.NoError(t, err)
	assert.Equal(t, "ns/caller-id", ent.ID)
}

func TestExecuteCreateEventClonesDontAliasEntity(t *testing.T) {
	p := New("ns", "users", nil)
	input := map[string]any{"$type": "User", "name": "Ada", "tags": []any{"a", "b"}}
	ent, evt, err := p.ExecuteCreate(Context{}, "", input)
	require.NoError(t, err)

	evt.After.Data["tags"].([]any)[0] = "mutated"
	assert.Equal(t, "a", ent.Data["tags"].([]any)[0])
}

func TestDefaultIDGeneratorProducesUniqueValues(t *testing.T) {
	a := DefaultIDGenerator()
	b := DefaultIDGenerator()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
