package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parquedb/parquedb/internal/entity"
	"github.com/parquedb/parquedb/internal/geo"
	"github.com/parquedb/parquedb/pkg/options"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	opts.SegmentOptions.Size = 1 << 20

	e, err := New(context.Background(), &Config{Options: &opts})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func userSchema() *entity.Schema {
	return &entity.Schema{
		Version: 1,
		Fields: map[string]entity.Field{
			"email": {Type: "string", Required: true},
			"age":   {Type: "number", Required: false, Default: float64(0)},
		},
	}
}

func TestRegisterCollectionAndCreateEntityRoundTrip(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	require.NoError(t, e.RegisterCollection(ctx, "shop", "users", userSchema()))

	ent, evt, err := e.CreateEntity(ctx, "shop", "users", "", "operator", map[string]any{
		"$type": "User", "name": "ada", "email": "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ent.Version)
	assert.Equal(t, "CREATE", string(evt.Kind))
	assert.Equal(t, float64(0), ent.Data["age"])
	assert.Equal(t, "operator", ent.CreatedBy)

	fetched, err := e.GetEntity(ctx, "shop", "users", ent.ID)
	require.NoError(t, err)
	assert.Equal(t, ent.ID, fetched.ID)
	assert.Equal(t, "ada@example.com", fetched.Data["email"])
}

func TestCreateEntityRejectsMissingRequiredField(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	require.NoError(t, e.RegisterCollection(ctx, "shop", "users", userSchema()))

	_, _, err := e.CreateEntity(ctx, "shop", "users", "", "operator", map[string]any{"$type": "User", "name": "ada"})
	assert.Error(t, err)
}

func TestCreateEntityRejectsMissingReservedType(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	require.NoError(t, e.RegisterCollection(ctx, "shop", "users", userSchema()))

	_, _, err := e.CreateEntity(ctx, "shop", "users", "", "operator", map[string]any{
		"name": "ada", "email": "ada@example.com",
	})
	assert.Error(t, err)
}

func TestCreateEntityOnUnregisteredCollectionFails(t *testing.T) {
	e := testEngine(t)
	_, _, err := e.CreateEntity(context.Background(), "shop", "missing", "", "operator", map[string]any{})
	assert.Error(t, err)
}

func TestRegisterCollectionRejectsBreakingSchemaChange(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	require.NoError(t, e.RegisterCollection(ctx, "shop", "users", userSchema()))

	breaking := &entity.Schema{
		Version: 2,
		Fields: map[string]entity.Field{
			"email": {Type: "number", Required: true},
		},
	}
	err := e.RegisterCollection(ctx, "shop", "users", breaking)
	assert.Error(t, err)
}

func TestCloseIsIdempotentAndBlocksFurtherUse(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	require.NoError(t, e.RegisterCollection(ctx, "shop", "users", userSchema()))

	require.NoError(t, e.Close())
	assert.Error(t, e.Close())

	_, _, err := e.CreateEntity(ctx, "shop", "users", "", "operator", map[string]any{"$type": "User", "name": "x"})
	assert.ErrorIs(t, err, ErrEngineClosed)
}

func TestCreateEntityFeedsBloomFilter(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	require.NoError(t, e.RegisterCollection(ctx, "shop", "users", userSchema()))

	ent, _, err := e.CreateEntity(ctx, "shop", "users", "ada", "operator", map[string]any{
		"$type": "User", "name": "ada", "email": "ada@example.com",
	})
	require.NoError(t, err)

	ok, err := e.MayContainEntity("shop", "users", "ada")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "shop/ada", ent.ID)

	ok, err = e.MayContainEntity("shop", "users", "never-created")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateEntityFeedsFullTextIndex(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	require.NoError(t, e.RegisterCollection(ctx, "shop", "users", userSchema()))

	_, _, err := e.CreateEntity(ctx, "shop", "users", "", "operator", map[string]any{
		"$type": "User", "name": "ada lovelace", "email": "ada@example.com",
	})
	require.NoError(t, err)

	results, err := e.SearchText("shop", "users", "lovelace")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func placesSchema() *entity.Schema {
	return &entity.Schema{
		Version: 1,
		Fields: map[string]entity.Field{
			"lat": {Type: "number", Required: true},
			"lng": {Type: "number", Required: true},
		},
	}
}

func TestCreateEntityFeedsGeospatialIndexAndPersists(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	require.NoError(t, e.RegisterCollection(ctx, "shop", "places", placesSchema()))

	_, _, err := e.CreateEntity(ctx, "shop", "places", "", "operator", map[string]any{
		"$type": "Place", "name": "London Office", "lat": 51.5074, "lng": -0.1278,
	})
	require.NoError(t, err)

	result, err := e.SearchRadius("shop", "places", 51.5074, -0.1278, 5000, geo.RadiusOptions{})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 1)

	// A fresh engine reading the same data directory restores the
	// geospatial index from the storage backend, per the persistence
	// contract §4.4 describes.
	opts2 := *e.options
	e2, err := New(ctx, &Config{Options: &opts2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e2.Close() })
	require.NoError(t, e2.RegisterCollection(ctx, "shop", "places", placesSchema()))

	result2, err := e2.SearchRadius("shop", "places", 51.5074, -0.1278, 5000, geo.RadiusOptions{})
	require.NoError(t, err)
	assert.Len(t, result2.Hits, 1)
}
