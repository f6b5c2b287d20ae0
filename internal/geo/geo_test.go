package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeProducesRequestedLength(t *testing.T) {
	hash := Encode(37.8324, 112.5584, 9)
	assert.Len(t, hash, 9)

	for _, c := range hash {
		assert.Contains(t, base32Alphabet, string(c))
	}
}

func TestEncodeHigherPrecisionNarrowsBox(t *testing.T) {
	coarse, err := DecodeBox(Encode(37.8324, 112.5584, 4))
	require.NoError(t, err)
	fine, err := DecodeBox(Encode(37.8324, 112.5584, 9))
	require.NoError(t, err)

	coarseArea := (coarse.MaxLat - coarse.MinLat) * (coarse.MaxLon - coarse.MinLon)
	fineArea := (fine.MaxLat - fine.MinLat) * (fine.MaxLon - fine.MinLon)
	assert.Greater(t, coarseArea, fineArea)
}

func TestDecodeRoundTrip(t *testing.T) {
	hash := Encode(51.5074, -0.1278, 8)
	lat, lon, err := Decode(hash)
	require.NoError(t, err)
	assert.InDelta(t, 51.5074, lat, 0.01)
	assert.InDelta(t, -0.1278, lon, 0.01)
}

func TestDecodeRejectsInvalidCharacter(t *testing.T) {
	_, _, err := Decode("ww8a!r4t8")
	assert.Error(t, err)
}

func TestNeighborsReturnsEight(t *testing.T) {
	neighbors, err := Neighbors("u4pruyd")
	require.NoError(t, err)
	assert.Len(t, neighbors, 8)
}

func TestHaversineDistanceLondonToParis(t *testing.T) {
	// London to Paris is approximately 344km.
	d := HaversineDistance(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 344000, d, 10000)
}

func TestApproximateDistanceAgreesWithHaversineShortRange(t *testing.T) {
	exact := HaversineDistance(51.5074, -0.1278, 51.5174, -0.1178)
	approx := ApproximateDistance(51.5074, -0.1278, 51.5174, -0.1178)
	assert.InDelta(t, exact, approx, 50)
}

func TestBearingDueNorth(t *testing.T) {
	b := Bearing(0, 0, 10, 0)
	assert.InDelta(t, 0, b, 0.1)
}

func TestDestinationInvertsBearing(t *testing.T) {
	lat, lon := Destination(51.5074, -0.1278, 90, 10000)
	backLat, backLon := Destination(lat, lon, 270, 10000)
	assert.InDelta(t, 51.5074, backLat, 0.01)
	assert.InDelta(t, -0.1278, backLon, 0.01)
}

func TestBoundingBoxEnclosesRadius(t *testing.T) {
	box := boundingBox(51.5074, -0.1278, 5000)
	assert.Less(t, box.MinLat, 51.5074)
	assert.Greater(t, box.MaxLat, 51.5074)
	assert.Less(t, box.MinLon, -0.1278)
	assert.Greater(t, box.MaxLon, -0.1278)
}

func TestGeohashesInRadiusCoversLargeDisks(t *testing.T) {
	small, err := geohashesInRadius(51.5074, -0.1278, 500, 7)
	require.NoError(t, err)

	large, err := geohashesInRadius(51.5074, -0.1278, 50000, 7)
	require.NoError(t, err)

	assert.Greater(t, len(large), len(small),
		"a disk spanning many cells should yield more candidate cells than a small one")
}

func TestGeohashesInRadiusIncludesCenterCell(t *testing.T) {
	hashes, err := geohashesInRadius(51.5074, -0.1278, 1000, 7)
	require.NoError(t, err)
	assert.Contains(t, hashes, Encode(51.5074, -0.1278, 7))
}

func TestRadiusIndexFindsNearbyPoints(t *testing.T) {
	idx := New(Config{BucketPrecision: 6})
	idx.Index(1, 51.5074, -0.1278, 0, 0) // London
	idx.Index(2, 48.8566, 2.3522, 0, 0)  // Paris
	idx.Index(3, 51.5080, -0.1280, 0, 0) // near London

	result, err := idx.Radius(51.5074, -0.1278, 5000, RadiusOptions{})
	require.NoError(t, err)

	ids := make(map[uint32]bool)
	for _, h := range result.Hits {
		ids[h.DocID] = true
	}
	assert.True(t, ids[1])
	assert.True(t, ids[3])
	assert.False(t, ids[2])
	assert.Greater(t, result.EntriesScanned, 0)
}

func TestRadiusResultsSortedByDistance(t *testing.T) {
	idx := New(Config{BucketPrecision: 6})
	idx.Index(1, 51.5074, -0.1278, 0, 0)
	idx.Index(2, 51.5076, -0.1278, 0, 0)
	idx.Index(3, 51.5078, -0.1278, 0, 0)

	result, err := idx.Radius(51.5074, -0.1278, 10000, RadiusOptions{})
	require.NoError(t, err)
	require.Len(t, result.Hits, 3)
	for i := 1; i < len(result.Hits); i++ {
		assert.True(t, result.Hits[i].DistanceMeters >= result.Hits[i-1].DistanceMeters)
	}
}

func TestRadiusHonorsMinDistanceAndLimit(t *testing.T) {
	idx := New(Config{BucketPrecision: 6})
	idx.Index(1, 51.5074, -0.1278, 1, 10)
	idx.Index(2, 51.5076, -0.1278, 1, 20)
	idx.Index(3, 51.5078, -0.1278, 2, 30)

	result, err := idx.Radius(51.5074, -0.1278, 10000, RadiusOptions{MinDistanceMeters: 50})
	require.NoError(t, err)
	for _, h := range result.Hits {
		assert.NotEqual(t, uint32(1), h.DocID)
	}

	limited, err := idx.Radius(51.5074, -0.1278, 10000, RadiusOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited.Hits, 1)
}

func TestRadiusResultCarriesRowGroupsAndEntriesScanned(t *testing.T) {
	idx := New(Config{BucketPrecision: 6})
	idx.Index(1, 51.5074, -0.1278, 7, 42)

	result, err := idx.Radius(51.5074, -0.1278, 1000, RadiusOptions{})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, 7, result.Hits[0].RowGroup)
	assert.Equal(t, 42, result.Hits[0].RowOffset)
	assert.Equal(t, []int{7}, result.RowGroups)
	assert.Equal(t, 1, result.EntriesScanned)
}

func TestRadiusFindsPointsBeyondOneCellWidth(t *testing.T) {
	idx := New(Config{BucketPrecision: 5})
	idx.Index(1, 51.5074, -0.1278, 0, 0)
	far, _ := Destination(51.5074, -0.1278, 45, 20000)

	result, err := idx.Radius(far, -0.1278, 30000, RadiusOptions{})
	require.NoError(t, err)
	ids := make(map[uint32]bool)
	for _, h := range result.Hits {
		ids[h.DocID] = true
	}
	assert.True(t, ids[1], "a 30km radius should still find a point ~14km away, several bucket cells from the center")
}

func TestRemoveDropsPointFromBucket(t *testing.T) {
	idx := New(Config{BucketPrecision: 6})
	idx.Index(1, 51.5074, -0.1278, 0, 0)
	idx.Remove(1)

	result, err := idx.Radius(51.5074, -0.1278, 1000, RadiusOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	idx := New(Config{BucketPrecision: 6})
	idx.Index(1, 51.5074, -0.1278, 3, 9)
	idx.Index(2, 48.8566, 2.3522, 4, 11)

	snap := idx.Snapshot()
	require.Len(t, snap, 2)

	restored := New(Config{BucketPrecision: 6})
	restored.Restore(snap)

	result, err := restored.Radius(51.5074, -0.1278, 1000, RadiusOptions{})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, uint32(1), result.Hits[0].DocID)
	assert.Equal(t, 3, result.Hits[0].RowGroup)
}

func TestWrapLongitude(t *testing.T) {
	assert.InDelta(t, -170, wrapLongitude(190), 0.0001)
	assert.InDelta(t, 170, wrapLongitude(-190), 0.0001)
}

func TestClampLatitude(t *testing.T) {
	assert.Equal(t, 90.0, clamp(120, -90, 90))
	assert.Equal(t, -90.0, clamp(-120, -90, 90))
}

func TestBearingRange(t *testing.T) {
	b := Bearing(51.5074, -0.1278, 48.8566, 2.3522)
	assert.True(t, b >= 0 && b < 360)
	assert.False(t, math.IsNaN(b))
}
