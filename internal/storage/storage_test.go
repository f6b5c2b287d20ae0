package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parquedb/parquedb/pkg/options"
)

func TestLocalBackendWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b, err := New(&Config{Root: dir})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Write(ctx, "catalog/ns1.json", []byte(`{"collections":[]}`)))

	data, err := b.Read(ctx, "catalog/ns1.json")
	require.NoError(t, err)
	assert.Equal(t, `{"collections":[]}`, string(data))

	exists, err := b.Exists(ctx, "catalog/ns1.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalBackendReadMissingReturnsNotFound(t *testing.T) {
	dir := t.TempDir()
	b, err := New(&Config{Root: dir})
	require.NoError(t, err)

	_, err = b.Read(context.Background(), "does/not/exist.json")
	assert.Error(t, err)
}

func TestLocalBackendDeleteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	b, err := New(&Config{Root: dir})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Write(ctx, "a.bin", []byte("x")))
	require.NoError(t, b.Delete(ctx, "a.bin"))
	require.NoError(t, b.Delete(ctx, "a.bin"))

	exists, err := b.Exists(ctx, "a.bin")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalBackendListFiltersByPrefix(t *testing.T) {
	dir := t.TempDir()
	b, err := New(&Config{Root: dir})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Write(ctx, "windows/ns1/w1.seg", []byte("a")))
	require.NoError(t, b.Write(ctx, "windows/ns1/w2.seg", []byte("b")))
	require.NoError(t, b.Write(ctx, "windows/ns2/w1.seg", []byte("c")))

	matches, err := b.List(ctx, "windows/ns1/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"windows/ns1/w1.seg", "windows/ns1/w2.seg"}, matches)
}

func TestLocalBackendStatReturnsSize(t *testing.T) {
	dir := t.TempDir()
	b, err := New(&Config{Root: dir})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Write(ctx, "f.bin", []byte("hello")))

	info, err := b.Stat(ctx, "f.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
}

func segmentLogOptions() *options.Options {
	opts := options.NewDefaultOptions()
	opts.SegmentOptions.Size = 64
	return &opts
}

func TestSegmentLogAppendAndReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sl, err := OpenSegmentLog(context.Background(), &SegmentLogConfig{
		Namespace: "orders", DataDir: dir, Options: segmentLogOptions(),
	})
	require.NoError(t, err)
	defer sl.Close()

	ptr, err := sl.Append("entity-1", []byte("payload-bytes"), 1000)
	require.NoError(t, err)

	data, err := sl.Read(ptr)
	require.NoError(t, err)
	assert.Equal(t, "payload-bytes", string(data))

	found, ok := sl.Lookup("entity-1")
	require.True(t, ok)
	assert.Equal(t, ptr, found)
}

func TestSegmentLogRotatesWhenSizeExceeded(t *testing.T) {
	dir := t.TempDir()
	sl, err := OpenSegmentLog(context.Background(), &SegmentLogConfig{
		Namespace: "orders", DataDir: dir, Options: segmentLogOptions(),
	})
	require.NoError(t, err)
	defer sl.Close()

	first := sl.ActiveSegmentID()
	payload := make([]byte, 40)
	_, err = sl.Append("e1", payload, 1)
	require.NoError(t, err)
	_, err = sl.Append("e2", payload, 2)
	require.NoError(t, err)

	assert.Greater(t, sl.ActiveSegmentID(), first)
}

func TestSegmentLogRecoversExistingSegmentOnReopen(t *testing.T) {
	dir := t.TempDir()
	opts := segmentLogOptions()

	sl, err := OpenSegmentLog(context.Background(), &SegmentLogConfig{Namespace: "orders", DataDir: dir, Options: opts})
	require.NoError(t, err)
	_, err = sl.Append("e1", []byte("first"), 1)
	require.NoError(t, err)
	require.NoError(t, sl.Close())

	reopened, err := OpenSegmentLog(context.Background(), &SegmentLogConfig{Namespace: "orders", DataDir: dir, Options: opts})
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, sl.ActiveSegmentID(), reopened.ActiveSegmentID())

	segDir := filepath.Join(dir, opts.SegmentOptions.Directory, "orders")
	entries, err := os.ReadDir(segDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSegmentLogDeleteDropsPointer(t *testing.T) {
	dir := t.TempDir()
	sl, err := OpenSegmentLog(context.Background(), &SegmentLogConfig{
		Namespace: "orders", DataDir: dir, Options: segmentLogOptions(),
	})
	require.NoError(t, err)
	defer sl.Close()

	_, err = sl.Append("e1", []byte("v"), 1)
	require.NoError(t, err)
	sl.Delete("e1")

	_, ok := sl.Lookup("e1")
	assert.False(t, ok)
}

func TestSegmentLogOperationsFailAfterClose(t *testing.T) {
	dir := t.TempDir()
	sl, err := OpenSegmentLog(context.Background(), &SegmentLogConfig{
		Namespace: "orders", DataDir: dir, Options: segmentLogOptions(),
	})
	require.NoError(t, err)
	require.NoError(t, sl.Close())

	_, err = sl.Append("e1", []byte("v"), 1)
	assert.ErrorIs(t, err, ErrSegmentLogClosed)

	assert.Error(t, sl.Close())
}
