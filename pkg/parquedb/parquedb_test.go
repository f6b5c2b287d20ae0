package parquedb

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parquedb/parquedb/internal/entity"
	"github.com/parquedb/parquedb/pkg/options"
)

func withTempDir(dir string) options.OptionFunc {
	return func(o *options.Options) { o.DataDir = dir }
}

func TestOpenCreateAndGetEntity(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, "test-service", withTempDir(t.TempDir()))
	require.NoError(t, err)
	defer db.Close()

	schema := &entity.Schema{Fields: map[string]entity.Field{"email": {Type: "string", Required: true}}}
	require.NoError(t, db.RegisterCollection(ctx, "shop", "users", schema))

	ent, evt, err := db.CreateEntity(ctx, "shop", "users", "", "operator", map[string]any{
		"$type": "User", "name": "grace", "email": "grace@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", ent.Data["email"])
	assert.Equal(t, "grace", ent.Name)
	assert.Equal(t, "CREATE", string(evt.Kind))

	ok, err := db.MayContainEntity("shop", "users", strings.TrimPrefix(ent.ID, "shop/"))
	require.NoError(t, err)
	assert.True(t, ok)

	fetched, err := db.GetEntity(ctx, "shop", "users", ent.ID)
	require.NoError(t, err)
	assert.Equal(t, ent.ID, fetched.ID)
}

func TestOnceInitReturnsSameInstance(t *testing.T) {
	defaultOnce = sync.Once{}
	ctx := context.Background()
	db1, err1 := OnceInit(ctx, "once-service", withTempDir(t.TempDir()))
	require.NoError(t, err1)
	db2, err2 := OnceInit(ctx, "once-service", withTempDir(t.TempDir()))
	require.NoError(t, err2)
	assert.Same(t, db1, db2)
	db1.Close()
}
