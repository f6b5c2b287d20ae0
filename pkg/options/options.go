// Package options provides data structures and functions for configuring
// the parquedb engine. It defines various parameters that control storage
// behavior, performance, and maintenance operations across every
// subsystem: segment layout, bloom filter sizing, full-text tokenization,
// geospatial bucket precision, and compaction health thresholds.
package options

import (
	"strings"
	"time"
)

// Defines configurable parameters for each segment.
// It provides fine-grained control over segment behavior, performance, and resource utilization.
type segmentOptions struct {
	// Defines the maximum size a segment can grow to before rotation.
	// When a segment reaches this size, a new segment will be created.
	// Larger segments mean fewer files but slower compaction and recovery.
	//
	//  - Default: 1GB
	//  - Maximum: 4GB
	//  - Minimum: 512MB
	Size uint64 `json:"maxSegmentSize"`

	// Specifies where segment files are stored.
	//
	// Default: "/var/lib/parquedb/segments"
	Directory string `json:"directory"`

	// Defines the filename prefix for segment files.
	// Final filename will be: `prefix_segmentId_timestamp.seg`
	//
	// Default: "segment"
	Prefix string `json:"prefix"`
}

// BloomOptions controls split-block bloom filter sizing (§4.2).
type BloomOptions struct {
	// BlockCount is the number of 32-byte blocks the filter allocates.
	// Higher counts lower the false-positive rate at the cost of memory.
	//
	// Default: 128 (4KB filter)
	BlockCount uint32 `json:"blockCount"`
}

// FTSOptions controls tokenization and scoring for the full-text index (§4.3).
type FTSOptions struct {
	// MinWordLength filters out tokens shorter than this after lowercasing
	// and splitting on non-alphanumeric boundaries.
	//
	// Default: 2
	MinWordLength int `json:"minWordLength"`

	// IndexPositions controls whether token offsets are retained per
	// posting. Phrase queries require this to be true.
	//
	// Default: true
	IndexPositions bool `json:"indexPositions"`

	// PhraseBoostAlpha is the α coefficient in the phrase-boost formula
	// `1 + α·phraseCount(doc, phrase)` (§4.3, Open Question (a)).
	//
	// Default: 0.75
	PhraseBoostAlpha float64 `json:"phraseBoostAlpha"`
}

// GeoOptions controls geohash bucket precision for the geospatial index (§4.4).
type GeoOptions struct {
	// BucketPrecision is the geohash string length used to bucket points.
	//
	// Default: 6
	BucketPrecision int `json:"bucketPrecision"`
}

// CompactionOptions controls the compaction control plane's scheduling and
// health thresholds (§4.7).
type CompactionOptions struct {
	// WindowSize is the width of each half-open compaction window.
	//
	// Default: 5m
	WindowSize time.Duration `json:"windowSize"`

	// MaxWait bounds how long a window waits for writer acknowledgements
	// before becoming eligible for dispatch regardless.
	//
	// Default: 1m
	MaxWait time.Duration `json:"maxWait"`

	// StuckTimeout bounds how long a dispatched window may take before it
	// transitions to the stuck state.
	//
	// Default: 10m
	StuckTimeout time.Duration `json:"stuckTimeout"`

	// PendingWindowsDegraded/Unhealthy and OldestWindowAgeDegraded/Unhealthy
	// are the health thresholds of §4.7's table. Overriding these lets a
	// deployment tune health sensitivity without touching scheduler code.
	PendingWindowsDegraded  int           `json:"pendingWindowsDegraded"`
	PendingWindowsUnhealthy int           `json:"pendingWindowsUnhealthy"`
	OldestWindowAgeDegraded time.Duration `json:"oldestWindowAgeDegraded"`
	OldestWindowAgeUnhealthy time.Duration `json:"oldestWindowAgeUnhealthy"`
}

// Defines the configuration parameters for the parquedb engine.
// It provides control over storage, performance and maintenance aspects.
type Options struct {
	// Specifies the base path where files will be stored.
	//
	// Default: "/var/lib/parquedb"
	DataDir string `json:"dataDir"`

	// Defines how often the compaction process runs to
	// merge old segments. More frequent compaction means more
	// optimal storage but higher overhead.
	//
	// Default: 5h
	CompactInterval time.Duration `json:"compactInterval"`

	// Configures segment management including size limits and naming convention.
	SegmentOptions *segmentOptions `json:"segmentOptions"`

	// Configures the split-block bloom filter.
	BloomOptions *BloomOptions `json:"bloomOptions"`

	// Configures the full-text index.
	FTSOptions *FTSOptions `json:"ftsOptions"`

	// Configures the geospatial index.
	GeoOptions *GeoOptions `json:"geoOptions"`

	// Configures the compaction control plane.
	CompactionOptions *CompactionOptions `json:"compactionOptions"`
}

// OptionFunc is a function type that modifies the engine's configuration.
type OptionFunc func(*Options)

// Applies a predefined set of default configuration values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		*o = opts
	}
}

// Sets the primary data directory for parquedb.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// Sets the interval at which parquedb performs compaction operations.
func WithCompactInterval(interval time.Duration) OptionFunc {
	return func(o *Options) {
		if interval > DefaultCompactInterval {
			o.CompactInterval = interval
		}
	}
}

// Sets the directory specifically for storing segment files.
func WithSegmentDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.SegmentOptions.Directory = directory
		}
	}
}

// Sets the file name prefix for segment files.
func WithSegmentPrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.SegmentOptions.Prefix = prefix
		}
	}
}

// Sets the maximum size of individual segment files.
func WithSegmentSize(size uint64) OptionFunc {
	return func(o *Options) {
		if size >= MinSegmentSize && size <= MaxSegmentSize {
			o.SegmentOptions.Size = size
		}
	}
}

// Sets the number of 32-byte blocks the bloom filter allocates.
func WithBloomBlockCount(count uint32) OptionFunc {
	return func(o *Options) {
		if count > 0 {
			o.BloomOptions.BlockCount = count
		}
	}
}

// Sets the minimum token length the full-text tokenizer retains.
func WithFTSMinWordLength(length int) OptionFunc {
	return func(o *Options) {
		if length > 0 {
			o.FTSOptions.MinWordLength = length
		}
	}
}

// Enables or disables positional posting lists in the full-text index.
func WithFTSIndexPositions(enabled bool) OptionFunc {
	return func(o *Options) {
		o.FTSOptions.IndexPositions = enabled
	}
}

// Sets the phrase-boost α coefficient.
func WithFTSPhraseBoostAlpha(alpha float64) OptionFunc {
	return func(o *Options) {
		if alpha > 0 {
			o.FTSOptions.PhraseBoostAlpha = alpha
		}
	}
}

// Sets the geohash bucket precision the geospatial index groups points by.
func WithGeoBucketPrecision(precision int) OptionFunc {
	return func(o *Options) {
		if precision > 0 {
			o.GeoOptions.BucketPrecision = precision
		}
	}
}

// Sets the width of each compaction window.
func WithCompactionWindowSize(size time.Duration) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.CompactionOptions.WindowSize = size
		}
	}
}

// Sets the maximum wait before a window becomes eligible for dispatch
// regardless of writer acknowledgement.
func WithCompactionMaxWait(wait time.Duration) OptionFunc {
	return func(o *Options) {
		if wait > 0 {
			o.CompactionOptions.MaxWait = wait
		}
	}
}

// Sets how long a dispatched window may run before being marked stuck.
func WithCompactionStuckTimeout(timeout time.Duration) OptionFunc {
	return func(o *Options) {
		if timeout > 0 {
			o.CompactionOptions.StuckTimeout = timeout
		}
	}
}
