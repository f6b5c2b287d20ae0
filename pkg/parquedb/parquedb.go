// Package parquedb is the public embedding API: a document-oriented
// engine with order-preserving keys, bloom-filtered existence checks,
// full-text and geospatial secondary indexes, schema evolution guardrails,
// and a windowed compaction control plane.
//
// Database replaces the teacher's lazy Instance wrapper with an explicit
// builder: Open does all the work New used to do lazily on first use, so
// construction failures surface immediately rather than on whatever
// operation happens to touch the engine first.
package parquedb

import (
	"context"
	"sync"

	"github.com/parquedb/parquedb/internal/engine"
	"github.com/parquedb/parquedb/internal/entity"
	"github.com/parquedb/parquedb/internal/event"
	"github.com/parquedb/parquedb/internal/fts"
	"github.com/parquedb/parquedb/internal/geo"
	"github.com/parquedb/parquedb/pkg/logger"
	"github.com/parquedb/parquedb/pkg/options"
)

// Database is the primary entry point for interacting with parquedb. It
// wraps the internal engine that coordinates storage, per-collection
// mutation pipelines, and compaction.
type Database struct {
	engine  *engine.Engine
	options *options.Options
}

// Open builds and initializes a Database for the given service name,
// applying any functional options over the package defaults. All
// subsystem initialization - storage backend recovery, compaction
// control plane construction - happens here, not lazily on first use.
func Open(ctx context.Context, service string, opts ...options.OptionFunc) (*Database, error) {
	log := logger.New(service)

	defaultOpts := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	eng, err := engine.New(ctx, &engine.Config{Logger: log, Options: &defaultOpts})
	if err != nil {
		return nil, err
	}

	return &Database{engine: eng, options: &defaultOpts}, nil
}

// RegisterCollection declares (or evolves) the schema for a
// namespace/collection pair. A breaking schema change against an
// already-registered collection is rejected.
func (d *Database) RegisterCollection(ctx context.Context, namespace, collection string, schema *entity.Schema) error {
	return d.engine.RegisterCollection(ctx, namespace, collection, schema)
}

// CreateEntity validates, defaults, and persists a new document as
// having been performed by actor, returning it alongside the CREATE
// event the mutation pipeline emitted.
func (d *Database) CreateEntity(
	ctx context.Context, namespace, collection, id, actor string, input map[string]any,
) (*entity.Entity, event.Event, error) {
	return d.engine.CreateEntity(ctx, namespace, collection, id, actor, input)
}

// GetEntity reads a document back by its id.
func (d *Database) GetEntity(ctx context.Context, namespace, collection, id string) (*entity.Entity, error) {
	return d.engine.GetEntity(ctx, namespace, collection, id)
}

// MayContainEntity reports whether id might exist in namespace/collection,
// consulting the collection's bloom filter. A false result is definitive.
func (d *Database) MayContainEntity(namespace, collection, id string) (bool, error) {
	return d.engine.MayContainEntity(namespace, collection, id)
}

// SearchText runs a full-text query against namespace/collection.
func (d *Database) SearchText(namespace, collection, query string) ([]fts.Result, error) {
	return d.engine.SearchText(namespace, collection, query)
}

// SearchRadius runs a geospatial radius query against namespace/collection.
func (d *Database) SearchRadius(
	namespace, collection string, lat, lon, radiusMeters float64, opts geo.RadiusOptions,
) (geo.RadiusResult, error) {
	return d.engine.SearchRadius(namespace, collection, lat, lon, radiusMeters, opts)
}

// Close releases every resource the database holds: segment logs,
// compaction control plane, and storage backend handles.
func (d *Database) Close() error {
	return d.engine.Close()
}

var (
	defaultOnce sync.Once
	defaultDB   *Database
	defaultErr  error
)

// OnceInit lazily opens and caches one process-wide Database the first
// time it's called, returning the same instance (and the same error, if
// Open failed) on every subsequent call. It exists for callers that want
// a single shared database without threading one through explicitly;
// most callers should prefer Open and hold the *Database themselves.
func OnceInit(ctx context.Context, service string, opts ...options.OptionFunc) (*Database, error) {
	defaultOnce.Do(func() {
		defaultDB, defaultErr = Open(ctx, service, opts...)
	})
	return defaultDB, defaultErr
}
