package geo

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// Point is a single indexed location, identified by a uint32 docID, plus
// the Parquet row-group/row-offset coordinates §4.4 requires an index
// entry carry so a hit can be resolved straight back to its row without a
// second lookup.
type Point struct {
	DocID     uint32
	Lat       float64
	Lon       float64
	RowGroup  int
	RowOffset int
}

// Index buckets points by geohash prefix so a radius query only needs to
// haversine-check points in the query bucket and the cells geohashesInRadius
// selects around it, rather than the whole dataset.
type Index struct {
	precision int
	buckets   map[string]*roaring.Bitmap
	points    map[uint32]Point
}

// Config controls the geohash precision points are bucketed at; it
// mirrors pkg/options.GeoOptions.
type Config struct {
	BucketPrecision int
}

// New builds an empty Index from cfg.
func New(cfg Config) *Index {
	return &Index{
		precision: cfg.BucketPrecision,
		buckets:   make(map[string]*roaring.Bitmap),
		points:    make(map[uint32]Point),
	}
}

// Index records a point's location and its row-group/row-offset
// coordinates, bucketing it by its geohash prefix. Re-indexing a docID
// first removes its prior bucket membership.
func (idx *Index) Index(docID uint32, lat, lon float64, rowGroup, rowOffset int) {
	idx.Remove(docID)

	hash := Encode(lat, lon, idx.precision)
	bm, ok := idx.buckets[hash]
	if !ok {
		bm = roaring.New()
		idx.buckets[hash] = bm
	}
	bm.Add(docID)
	idx.points[docID] = Point{DocID: docID, Lat: lat, Lon: lon, RowGroup: rowGroup, RowOffset: rowOffset}
}

// Remove deletes docID from its bucket.
func (idx *Index) Remove(docID uint32) {
	p, ok := idx.points[docID]
	if !ok {
		return
	}
	hash := Encode(p.Lat, p.Lon, idx.precision)
	if bm, ok := idx.buckets[hash]; ok {
		bm.Remove(docID)
		if bm.IsEmpty() {
			delete(idx.buckets, hash)
		}
	}
	delete(idx.points, docID)
}

// Hit is one result of a radius query: the point, its distance from the
// query center in meters, and the row-group/row-offset coordinates its
// indexed Point carried.
type Hit struct {
	DocID          uint32
	DistanceMeters float64
	RowGroup       int
	RowOffset      int
}

// RadiusOptions narrows a radius query (§4.4): MinDistanceMeters excludes
// points closer than that distance (an annulus rather than a disk, zero
// means no lower bound), MaxDistanceMeters overrides the query's own
// radiusMeters as the upper bound when smaller, and Limit caps the number
// of hits returned after sorting (zero means unlimited).
type RadiusOptions struct {
	MinDistanceMeters float64
	MaxDistanceMeters float64
	Limit             int
}

// RadiusResult is the outcome of a radius query: the matching hits
// sorted by ascending distance, the distinct row groups of those hits in
// ascending order, and the total candidate count examined before distance
// filtering.
type RadiusResult struct {
	Hits           []Hit
	RowGroups      []int
	EntriesScanned int
}

// Radius returns every indexed point within radiusMeters of (lat, lon),
// sorted by ascending distance, honoring opts' min/max/limit narrowing.
// Candidates are gathered from every geohash cell geohashesInRadius
// selects, which - unlike a fixed center+8-neighbor set - scales the
// candidate cell count to the search radius so disks larger than one
// bucket cell are still fully covered.
func (idx *Index) Radius(lat, lon, radiusMeters float64, opts RadiusOptions) (RadiusResult, error) {
	maxDistance := radiusMeters
	if opts.MaxDistanceMeters > 0 && opts.MaxDistanceMeters < maxDistance {
		maxDistance = opts.MaxDistanceMeters
	}

	hashes, err := geohashesInRadius(lat, lon, maxDistance, idx.precision)
	if err != nil {
		return RadiusResult{}, err
	}

	var hits []Hit
	entriesScanned := 0
	for _, hash := range hashes {
		bm, ok := idx.buckets[hash]
		if !ok {
			continue
		}
		it := bm.Iterator()
		for it.HasNext() {
			docID := it.Next()
			entriesScanned++
			p := idx.points[docID]
			d := HaversineDistance(lat, lon, p.Lat, p.Lon)
			if d > maxDistance {
				continue
			}
			if opts.MinDistanceMeters > 0 && d < opts.MinDistanceMeters {
				continue
			}
			hits = append(hits, Hit{DocID: docID, DistanceMeters: d, RowGroup: p.RowGroup, RowOffset: p.RowOffset})
		}
	}

	sortHits(hits)
	if opts.Limit > 0 && len(hits) > opts.Limit {
		hits = hits[:opts.Limit]
	}

	rowGroups := distinctRowGroups(hits)
	return RadiusResult{Hits: hits, RowGroups: rowGroups, EntriesScanned: entriesScanned}, nil
}

func distinctRowGroups(hits []Hit) []int {
	seen := make(map[int]bool)
	var groups []int
	for _, h := range hits {
		if seen[h.RowGroup] {
			continue
		}
		seen[h.RowGroup] = true
		groups = append(groups, h.RowGroup)
	}
	sort.Ints(groups)
	return groups
}

func sortHits(hits []Hit) {
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].DistanceMeters < hits[j].DistanceMeters
	})
}

// Snapshot captures every indexed point, for persistence through a
// storage backend: a reload replays these entries through Index to
// restore the full entry set (§4.4).
func (idx *Index) Snapshot() []Point {
	points := make([]Point, 0, len(idx.points))
	for _, p := range idx.points {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].DocID < points[j].DocID })
	return points
}

// Restore replaces the index's contents with points, as captured by a
// prior Snapshot.
func (idx *Index) Restore(points []Point) {
	idx.buckets = make(map[string]*roaring.Bitmap)
	idx.points = make(map[uint32]Point)
	for _, p := range points {
		idx.Index(p.DocID, p.Lat, p.Lon, p.RowGroup, p.RowOffset)
	}
}
