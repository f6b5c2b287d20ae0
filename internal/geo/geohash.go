// Package geo implements the geospatial index of §4.4: geohash
// encode/decode, great-circle distance and bearing, bounding boxes, and
// a radius query over geohash-bucketed points.
package geo

import "github.com/parquedb/parquedb/pkg/errors"

const base32Alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

var base32Index [256]int8

func init() {
	for i := range base32Index {
		base32Index[i] = -1
	}
	for i, c := range base32Alphabet {
		base32Index[c] = int8(i)
	}
}

// Encode produces the base-32 geohash of (lat, lon) at the given string
// precision, using the standard interleaved-bit (Peano curve) encoding:
// each output character packs 5 bits, alternately refined from longitude
// and latitude binary-search bisection.
func Encode(lat, lon float64, precision int) string {
	latRange := [2]float64{-90, 90}
	lonRange := [2]float64{-180, 180}

	out := make([]byte, precision)
	bit, ch := 0, 0
	isEven := true

	for i := 0; i < precision; {
		if isEven {
			mid := (lonRange[0] + lonRange[1]) / 2
			if lon >= mid {
				ch = ch<<1 | 1
				lonRange[0] = mid
			} else {
				ch = ch << 1
				lonRange[1] = mid
			}
		} else {
			mid := (latRange[0] + latRange[1]) / 2
			if lat >= mid {
				ch = ch<<1 | 1
				latRange[0] = mid
			} else {
				ch = ch << 1
				latRange[1] = mid
			}
		}

		isEven = !isEven
		bit++
		if bit == 5 {
			out[i] = base32Alphabet[ch]
			bit, ch = 0, 0
			i++
		}
	}

	return string(out)
}

// BoundingBox is the lat/lon rectangle a geohash string covers.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Center returns the midpoint of the box - the point Decode returns.
func (b BoundingBox) Center() (lat, lon float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}

// Decode returns the center point of hash's bounding box.
func Decode(hash string) (lat, lon float64, err error) {
	box, err := DecodeBox(hash)
	if err != nil {
		return 0, 0, err
	}
	lat, lon = box.Center()
	return lat, lon, nil
}

// DecodeBox returns the bounding box a geohash string represents.
func DecodeBox(hash string) (BoundingBox, error) {
	if hash == "" {
		return BoundingBox{}, errors.NewInvalidGeohashError(hash, 0)
	}

	latRange := [2]float64{-90, 90}
	lonRange := [2]float64{-180, 180}
	isEven := true

	for i := 0; i < len(hash); i++ {
		c := hash[i]
		idx := base32Index[c]
		if idx < 0 {
			return BoundingBox{}, errors.NewInvalidGeohashError(hash, c)
		}

		for bit := 4; bit >= 0; bit-- {
			bitVal := (int(idx) >> uint(bit)) & 1
			if isEven {
				mid := (lonRange[0] + lonRange[1]) / 2
				if bitVal == 1 {
					lonRange[0] = mid
				} else {
					lonRange[1] = mid
				}
			} else {
				mid := (latRange[0] + latRange[1]) / 2
				if bitVal == 1 {
					latRange[0] = mid
				} else {
					latRange[1] = mid
				}
			}
			isEven = !isEven
		}
	}

	return BoundingBox{
		MinLat: latRange[0], MaxLat: latRange[1],
		MinLon: lonRange[0], MaxLon: lonRange[1],
	}, nil
}

// boundingBox returns the lat/lon rectangle enclosing every point within
// radiusMeters of (lat, lon), computed by projecting due north, south,
// east, and west from the center by radiusMeters using Destination - the
// direct great-circle destination formula, rather than a flat-earth
// degree approximation, so the box stays accurate near the poles.
func boundingBox(lat, lon, radiusMeters float64) BoundingBox {
	north, _ := Destination(lat, lon, 0, radiusMeters)
	south, _ := Destination(lat, lon, 180, radiusMeters)
	_, east := Destination(lat, lon, 90, radiusMeters)
	_, west := Destination(lat, lon, 270, radiusMeters)

	return BoundingBox{
		MinLat: south, MaxLat: north,
		MinLon: west, MaxLon: east,
	}
}

// geohashesInRadius returns every geohash cell, at the given precision,
// that a disk of radiusMeters around (lat, lon) overlaps. It replaces a
// fixed center+8-neighbor candidate set, which only covers a disk up to
// roughly one cell's width - for a radius spanning multiple cells, it
// walks the bounding box's cell grid directly so every overlapping cell
// is included regardless of how many cells wide the disk is.
func geohashesInRadius(lat, lon, radiusMeters float64, precision int) ([]string, error) {
	if precision <= 0 {
		return nil, errors.NewInvalidGeohashError("", 0)
	}

	box := boundingBox(lat, lon, radiusMeters)
	corner, err := DecodeBox(Encode(box.MinLat, box.MinLon, precision))
	if err != nil {
		return nil, err
	}
	latStep := corner.MaxLat - corner.MinLat
	lonStep := corner.MaxLon - corner.MinLon
	if latStep <= 0 || lonStep <= 0 {
		return []string{Encode(lat, lon, precision)}, nil
	}

	seen := make(map[string]struct{})
	var hashes []string
	for cellLat := box.MinLat; cellLat <= box.MaxLat+latStep/2; cellLat += latStep {
		for cellLon := box.MinLon; cellLon <= box.MaxLon+lonStep/2; cellLon += lonStep {
			h := Encode(clamp(cellLat, -90, 90), wrapLongitude(cellLon), precision)
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			hashes = append(hashes, h)
		}
	}
	return hashes, nil
}

// Direction enumerates the 8 compass neighbors for Neighbors.
type Direction int

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// Neighbor returns the geohash of the same precision adjacent to hash in
// the given direction, by moving the center point one full box-width/
// height across the relevant edge and re-encoding.
func Neighbor(hash string, dir Direction) (string, error) {
	box, err := DecodeBox(hash)
	if err != nil {
		return "", err
	}

	lat, lon := box.Center()
	latSpan := box.MaxLat - box.MinLat
	lonSpan := box.MaxLon - box.MinLon

	switch dir {
	case North:
		lat += latSpan
	case South:
		lat -= latSpan
	case East:
		lon += lonSpan
	case West:
		lon -= lonSpan
	case NorthEast:
		lat += latSpan
		lon += lonSpan
	case NorthWest:
		lat += latSpan
		lon -= lonSpan
	case SouthEast:
		lat -= latSpan
		lon += lonSpan
	case SouthWest:
		lat -= latSpan
		lon -= lonSpan
	}

	lat = clamp(lat, -90, 90)
	lon = wrapLongitude(lon)

	return Encode(lat, lon, len(hash)), nil
}

// Neighbors returns all 8 compass neighbors of hash, in the Direction
// enum's declared order.
func Neighbors(hash string) ([]string, error) {
	out := make([]string, 8)
	for d := North; d <= NorthWest; d++ {
		n, err := Neighbor(hash, d)
		if err != nil {
			return nil, err
		}
		out[d] = n
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wrapLongitude(lon float64) float64 {
	for lon < -180 {
		lon += 360
	}
	for lon > 180 {
		lon -= 360
	}
	return lon
}
