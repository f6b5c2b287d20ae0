// Package engine provides the core database engine implementation for
// parquedb. It serves as the central coordinator and entry point for all
// database operations, orchestrating four subsystems:
//   - Storage: the append-only segment log and named-object backend (H)
//   - Mutation: per-collection document pipelines (E), each wrapping a
//     schema evolver (F) that rejects breaking changes before they apply
//   - Secondary indexes: a bloom filter (B), full-text index (C), and
//     geospatial index (D), fed from every created document
//   - Compaction: the window-tracking control plane (G) that batches
//     written segments for later merge
//
// The engine implements a thread-safe interface with proper lifecycle
// management, ensuring resources are properly initialized and cleaned up.
// It uses atomic operations for state management to provide consistent
// behavior across concurrent operations.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/parquedb/parquedb/internal/bloom"
	"github.com/parquedb/parquedb/internal/compaction"
	"github.com/parquedb/parquedb/internal/entity"
	"github.com/parquedb/parquedb/internal/event"
	"github.com/parquedb/parquedb/internal/fts"
	"github.com/parquedb/parquedb/internal/geo"
	"github.com/parquedb/parquedb/internal/mutation"
	"github.com/parquedb/parquedb/internal/schema"
	"github.com/parquedb/parquedb/internal/storage"
	dberrors "github.com/parquedb/parquedb/pkg/errors"
	"github.com/parquedb/parquedb/pkg/options"
)

// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
var ErrEngineClosed = errors.New("operation failed: cannot access closed engine")

// indexStateObject is the name every collection's secondary-index state is
// persisted under in the engine's storage backend, relative to the
// collection's own namespace/collection prefix.
const indexStateObject = "index-state.json"

// indexState is the on-disk snapshot of a collection's docID assignment
// and geospatial index, so a reload restores the full entry set (§4.4)
// rather than rebuilding it from the segment log.
type indexState struct {
	NextDocID uint32            `json:"nextDocId"`
	DocIDs    map[string]uint32 `json:"docIds"`
	GeoPoints []geo.Point       `json:"geoPoints"`
}

// collection bundles everything the engine tracks per namespace/collection
// pair: its current schema, the mutation pipeline built from it, the
// segment log its entity payloads are appended to, and the three
// secondary indexes (B/C/D) every created document is fed into.
type collection struct {
	schema   *entity.Schema
	pipeline *mutation.Pipeline
	segments *storage.SegmentLog

	idxMu   sync.Mutex
	bloom   *bloom.Filter
	fts     *fts.Index
	geo     *geo.Index
	docIDs  map[string]uint32
	nextDoc uint32

	stateObject string
}

// assignDocID returns the stable uint32 docID for entityID, minting a new
// one if this is the first time entityID has been indexed.
func (c *collection) assignDocID(entityID string) uint32 {
	c.idxMu.Lock()
	defer c.idxMu.Unlock()

	if id, ok := c.docIDs[entityID]; ok {
		return id
	}
	c.nextDoc++
	id := c.nextDoc
	c.docIDs[entityID] = id
	return id
}

// snapshot captures the collection's index state for persistence.
func (c *collection) snapshot() indexState {
	c.idxMu.Lock()
	defer c.idxMu.Unlock()

	docIDs := make(map[string]uint32, len(c.docIDs))
	for k, v := range c.docIDs {
		docIDs[k] = v
	}
	return indexState{NextDocID: c.nextDoc, DocIDs: docIDs, GeoPoints: c.geo.Snapshot()}
}

// restore replaces the collection's docID table and geo index contents
// with a previously persisted snapshot.
func (c *collection) restore(state indexState) {
	c.idxMu.Lock()
	defer c.idxMu.Unlock()

	if state.DocIDs != nil {
		c.docIDs = state.DocIDs
	}
	c.nextDoc = state.NextDocID
	c.geo.Restore(state.GeoPoints)
}

// Engine represents the main database engine that coordinates all
// subsystems. It acts as the primary interface for database operations
// and manages the lifecycle of every internal component.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger
	closed  atomic.Bool

	backend    *storage.LocalBackend
	compaction *compaction.Compaction

	mu          sync.RWMutex
	collections map[string]*collection // "namespace/collection" -> collection
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New creates and initializes a new Engine instance with the provided
// configuration. The storage backend is initialized first since every
// other subsystem depends on durable storage being available; compaction
// has no external dependencies and is built last.
func New(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil {
		return nil, fmt.Errorf("invalid configuration")
	}

	log := config.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	backend, err := storage.New(&storage.Config{Root: config.Options.DataDir, Logger: log})
	if err != nil {
		return nil, err
	}

	comp := compaction.New(&compaction.Config{Logger: log, Options: config.Options.CompactionOptions})

	return &Engine{
		options:     config.Options,
		log:         log,
		backend:     backend,
		compaction:  comp,
		collections: make(map[string]*collection),
	}, nil
}

func collectionKey(namespace, collectionName string) string {
	return namespace + "/" + collectionName
}

// RegisterCollection opens (or re-validates) the namespace/collection
// pair against the given schema. A schema change against an
// already-registered collection is diffed through internal/schema first;
// a change set containing any breaking entry is rejected rather than
// silently applied, per §4.6. Opening a collection for the first time
// builds its bloom/full-text/geospatial indexes from e.options and
// restores any persisted index state from a prior run.
func (e *Engine) RegisterCollection(ctx context.Context, namespace, collectionName string, sc *entity.Schema) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	key := collectionKey(namespace, collectionName)

	e.mu.Lock()
	defer e.mu.Unlock()

	if existing, ok := e.collections[key]; ok {
		changes := schema.Diff(existing.schema, sc)
		if safe, err := schema.IsSafeToApply(collectionName, changes); !safe {
			return err
		}
		existing.schema = sc
		existing.pipeline = mutation.New(namespace, collectionName, sc)
		return nil
	}

	segments, err := storage.OpenSegmentLog(ctx, &storage.SegmentLogConfig{
		Namespace: key, DataDir: e.options.DataDir, Options: e.options, Logger: e.log,
	})
	if err != nil {
		return err
	}

	bloomFilter, err := bloom.NewFilter(e.options.BloomOptions.BlockCount)
	if err != nil {
		return err
	}

	c := &collection{
		schema:      sc,
		pipeline:    mutation.New(namespace, collectionName, sc),
		segments:    segments,
		bloom:       bloomFilter,
		fts: fts.New(fts.Config{
			MinWordLength:    e.options.FTSOptions.MinWordLength,
			IndexPositions:   e.options.FTSOptions.IndexPositions,
			PhraseBoostAlpha: e.options.FTSOptions.PhraseBoostAlpha,
		}),
		geo:         geo.New(geo.Config{BucketPrecision: e.options.GeoOptions.BucketPrecision}),
		docIDs:      make(map[string]uint32),
		stateObject: key + "/" + indexStateObject,
	}

	if err := e.restoreIndexState(ctx, c); err != nil {
		return err
	}

	e.collections[key] = c
	return nil
}

// restoreIndexState loads a collection's persisted docID table and
// geospatial index, if a prior run left one; a missing object means this
// is the collection's first run and is not an error.
func (e *Engine) restoreIndexState(ctx context.Context, c *collection) error {
	exists, err := e.backend.Exists(ctx, c.stateObject)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	raw, err := e.backend.Read(ctx, c.stateObject)
	if err != nil {
		return err
	}

	var state indexState
	if err := json.Unmarshal(raw, &state); err != nil {
		return dberrors.NewStorageError(err, dberrors.ErrorCodeIO, "failed to deserialize index state")
	}
	c.restore(state)
	return nil
}

// persistIndexState writes c's current docID table and geospatial index
// through the storage backend, so a reload restores the full entry set.
func (e *Engine) persistIndexState(ctx context.Context, c *collection) error {
	raw, err := json.Marshal(c.snapshot())
	if err != nil {
		return dberrors.NewStorageError(err, dberrors.ErrorCodeIO, "failed to serialize index state")
	}
	return e.backend.Write(ctx, c.stateObject, raw)
}

func (e *Engine) lookup(namespace, collectionName string) (*collection, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, ok := e.collections[collectionKey(namespace, collectionName)]
	if !ok {
		return nil, dberrors.NewNotFoundError(collectionKey(namespace, collectionName))
	}
	return c, nil
}

// CreateEntity runs the mutation pipeline for namespace/collectionName,
// persists the created entity's payload to its segment log, feeds the
// entity into the collection's secondary indexes (bloom existence
// prefilter, full-text, geospatial), and enqueues the payload in the
// compaction control plane's current window. It returns both the created
// Entity and the CREATE event the pipeline emitted, mirroring
// mutation.Pipeline.ExecuteCreate's contract.
func (e *Engine) CreateEntity(
	ctx context.Context, namespace, collectionName, id, actor string, input map[string]any,
) (*entity.Entity, event.Event, error) {
	if e.closed.Load() {
		return nil, event.Event{}, ErrEngineClosed
	}

	c, err := e.lookup(namespace, collectionName)
	if err != nil {
		return nil, event.Event{}, err
	}

	ent, evt, err := c.pipeline.ExecuteCreate(mutation.Context{Actor: actor}, id, input)
	if err != nil {
		return nil, event.Event{}, err
	}

	payload, err := json.Marshal(ent)
	if err != nil {
		return nil, event.Event{}, dberrors.NewStorageError(err, dberrors.ErrorCodeIO, "failed to serialize entity payload")
	}

	ptr, err := c.segments.Append(ent.ID, payload, ent.CreatedAt.UnixNano())
	if err != nil {
		return nil, event.Event{}, err
	}

	if err := c.indexEntity(ctx, e, ent, ptr); err != nil {
		return nil, event.Event{}, err
	}

	e.compaction.Append(collectionKey(namespace, collectionName), ent.CreatedAt, payload)
	return ent, evt, nil
}

// indexEntity feeds ent into its collection's bloom, full-text, and
// geospatial indexes. When ent carries a location, it then persists the
// docID table and geo index through the storage backend; entities without
// one do not trigger a write.
func (c *collection) indexEntity(ctx context.Context, e *Engine, ent *entity.Entity, ptr *storage.RecordPointer) error {
	if err := c.bloom.InsertValue(ent.ID); err != nil {
		return err
	}

	if text := collectText(ent); text != "" {
		docID := c.assignDocID(ent.ID)
		c.fts.Index(docID, text)
	}

	if lat, lon, ok := extractLatLon(ent); ok {
		docID := c.assignDocID(ent.ID)
		c.geo.Index(docID, lat, lon, int(ptr.SegmentID), int(ptr.Offset))
		return e.persistIndexState(ctx, c)
	}

	return nil
}

// collectText concatenates every string-valued attribute of ent's data
// (plus its reserved name) into the blob the full-text index tokenizes.
// Non-string attributes (numbers, nested objects, geo coordinates) carry
// no searchable text and are skipped.
func collectText(ent *entity.Entity) string {
	text := ent.Name
	for _, v := range ent.Data {
		if s, ok := v.(string); ok {
			text += " " + s
		}
	}
	return text
}

// extractLatLon reads the reserved "lat"/"lng" attributes §4.4's geo
// entry tuple is built from out of ent's data, reporting ok=false when
// either is absent or not numeric - most documents carry no location and
// simply aren't fed into the geospatial index.
func extractLatLon(ent *entity.Entity) (lat, lon float64, ok bool) {
	latVal, hasLat := ent.Data["lat"]
	lonVal, hasLon := ent.Data["lng"]
	if !hasLat || !hasLon {
		return 0, 0, false
	}

	lat, ok = toFloat(latVal)
	if !ok {
		return 0, 0, false
	}
	lon, ok = toFloat(lonVal)
	if !ok {
		return 0, 0, false
	}
	return lat, lon, true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// GetEntity reads an entity back by id through its collection's segment log.
func (e *Engine) GetEntity(ctx context.Context, namespace, collectionName, id string) (*entity.Entity, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	c, err := e.lookup(namespace, collectionName)
	if err != nil {
		return nil, err
	}

	ptr, ok := c.segments.Lookup(id)
	if !ok {
		return nil, dberrors.NewKeyNotFoundError(id)
	}

	payload, err := c.segments.Read(ptr)
	if err != nil {
		return nil, err
	}

	var ent entity.Entity
	if err := json.Unmarshal(payload, &ent); err != nil {
		return nil, dberrors.NewStorageError(err, dberrors.ErrorCodeIO, "failed to deserialize entity payload")
	}
	return &ent, nil
}

// MayContainEntity reports whether id might exist in namespace/collectionName,
// consulting the collection's bloom filter before a caller pays for a full
// GetEntity lookup. A false result is a definitive negative.
func (e *Engine) MayContainEntity(namespace, collectionName, id string) (bool, error) {
	c, err := e.lookup(namespace, collectionName)
	if err != nil {
		return false, err
	}
	return c.bloom.MayContainValue(entity.ComposeID(namespace, id))
}

// SearchText runs a full-text query against namespace/collectionName's
// indexed documents, returning docIDs scored by BM25 with the phrase
// boost §4.3 describes.
func (e *Engine) SearchText(namespace, collectionName, query string) ([]fts.Result, error) {
	c, err := e.lookup(namespace, collectionName)
	if err != nil {
		return nil, err
	}
	return c.fts.Search(query), nil
}

// SearchRadius runs a geospatial radius query against namespace/collectionName's
// indexed documents.
func (e *Engine) SearchRadius(namespace, collectionName string, lat, lon, radiusMeters float64, opts geo.RadiusOptions) (geo.RadiusResult, error) {
	c, err := e.lookup(namespace, collectionName)
	if err != nil {
		return geo.RadiusResult{}, err
	}
	return c.geo.Radius(lat, lon, radiusMeters, opts)
}

// Health reports the compaction backlog health for a namespace/collection pair.
func (e *Engine) Health(namespace, collectionName string) compaction.Health {
	return e.compaction.Health(collectionKey(namespace, collectionName), time.Now())
}

// Backend exposes the engine's storage backend for callers that need
// whole-object read/write semantics rather than the entity segment log's
// append model.
func (e *Engine) Backend() *storage.LocalBackend {
	return e.backend
}

// Close gracefully shuts down the engine and releases all associated
// resources: every collection's segment log, then the compaction control
// plane.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	for _, c := range e.collections {
		if err := c.segments.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := e.compaction.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
