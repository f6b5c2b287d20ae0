package options

import "time"

const (
	// Specifies the default base directory where parquedb will store its data files.
	// If no other directory is specified during initialization, this path will be used.
	DefaultDataDir = "/var/lib/parquedb"

	// Defines the default time duration between automatic compaction operations.
	// By default, compaction will run every 5 hours.
	DefaultCompactInterval = time.Hour * 5

	// Represents the minimum allowed size for a segment file in bytes (512MB).
	MinSegmentSize uint64 = 512 * 1024 * 1024

	// Represents the maximum allowed size for a segment file in bytes (4GB).
	MaxSegmentSize uint64 = 4 * 1024 * 1024 * 1024

	// Specifies the default target size for a new segment file in bytes (1GB).
	DefaultSegmentSize uint64 = 1 * 1024 * 1024 * 1024

	// Specifies the default subdirectory within the main data directory
	// where segment files will be stored.
	DefaultSegmentDirectory = "/segments"

	// Defines the default prefix for segment file names.
	DefaultSegmentPrefix = "segment"

	// DefaultBloomBlockCount allocates a 4KB filter (128 * 32 bytes), tuned
	// for a false-positive rate around 1% at roughly 4K inserted elements.
	DefaultBloomBlockCount uint32 = 128

	// DefaultFTSMinWordLength discards single-character tokens, following
	// common full-text engines' stop-length default.
	DefaultFTSMinWordLength = 2

	// DefaultFTSIndexPositions keeps positional postings enabled so phrase
	// queries work out of the box.
	DefaultFTSIndexPositions = true

	// DefaultFTSPhraseBoostAlpha resolves spec.md's Open Question (a); see
	// SPEC_FULL.md for the derivation of why 0.75 satisfies the required
	// >1.5 ratio at 4 occurrences.
	DefaultFTSPhraseBoostAlpha = 0.75

	// DefaultGeoBucketPrecision matches spec.md §3's geohash bucket default.
	DefaultGeoBucketPrecision = 6

	// DefaultCompactionWindowSize is the half-open interval width new
	// compaction windows are created with.
	DefaultCompactionWindowSize = time.Minute * 5

	// DefaultCompactionMaxWait bounds how long a window waits for writer
	// acknowledgement before being dispatched anyway.
	DefaultCompactionMaxWait = time.Minute

	// DefaultCompactionStuckTimeout bounds how long a dispatched window may
	// run before being marked stuck.
	DefaultCompactionStuckTimeout = time.Minute * 10

	// Health thresholds, matching §4.7's default table.
	DefaultPendingWindowsDegraded   = 10
	DefaultPendingWindowsUnhealthy  = 50
	DefaultOldestWindowAgeDegraded  = time.Hour * 2
	DefaultOldestWindowAgeUnhealthy = time.Hour * 6
)

// Holds the default configuration settings for a parquedb instance.
var defaultOptions = Options{
	DataDir:         DefaultDataDir,
	CompactInterval: DefaultCompactInterval,
	SegmentOptions: &segmentOptions{
		Size:      DefaultSegmentSize,
		Prefix:    DefaultSegmentPrefix,
		Directory: DefaultSegmentDirectory,
	},
	BloomOptions: &BloomOptions{
		BlockCount: DefaultBloomBlockCount,
	},
	FTSOptions: &FTSOptions{
		MinWordLength:    DefaultFTSMinWordLength,
		IndexPositions:   DefaultFTSIndexPositions,
		PhraseBoostAlpha: DefaultFTSPhraseBoostAlpha,
	},
	GeoOptions: &GeoOptions{
		BucketPrecision: DefaultGeoBucketPrecision,
	},
	CompactionOptions: &CompactionOptions{
		WindowSize:               DefaultCompactionWindowSize,
		MaxWait:                  DefaultCompactionMaxWait,
		StuckTimeout:             DefaultCompactionStuckTimeout,
		PendingWindowsDegraded:   DefaultPendingWindowsDegraded,
		PendingWindowsUnhealthy:  DefaultPendingWindowsUnhealthy,
		OldestWindowAgeDegraded:  DefaultOldestWindowAgeDegraded,
		OldestWindowAgeUnhealthy: DefaultOldestWindowAgeUnhealthy,
	},
}

// NewDefaultOptions returns a fresh Options value with its own copies of
// every sub-options pointer, so callers can mutate one instance's nested
// options without affecting another's.
func NewDefaultOptions() Options {
	opts := defaultOptions
	seg := *defaultOptions.SegmentOptions
	bloom := *defaultOptions.BloomOptions
	fts := *defaultOptions.FTSOptions
	geo := *defaultOptions.GeoOptions
	compaction := *defaultOptions.CompactionOptions

	opts.SegmentOptions = &seg
	opts.BloomOptions = &bloom
	opts.FTSOptions = &fts
	opts.GeoOptions = &geo
	opts.CompactionOptions = &compaction

	return opts
}
