// Package query implements the three PIR server operations and the
// health check (spec §4.E): plaintext fetch, set-parity XOR, and
// full-set XOR over a PRSet-expanded index list.
package query

import (
	"time"

	"plinko-pir/internal/database"
	"plinko-pir/internal/pirerr"
	"plinko-pir/internal/prf"
	"plinko-pir/internal/prset"
)

// Engine composes a loaded Database with PRSet expansion to answer
// queries. Stateless beyond the borrowed Database reference, so a
// single Engine is safe for concurrent use by many readers (spec §5).
type Engine struct {
	db *database.Database
}

// New binds an Engine to a loaded database.
func New(db *database.Database) *Engine {
	return &Engine{db: db}
}

// Result wraps an operation's return value with the wall-clock
// duration measured around the computation, excluding validation and
// response serialization where practical (spec §4.E).
type Result struct {
	Value    uint64
	Duration time.Duration
}

// validateIndex checks index is a valid position in [0, n), per spec
// §4.E / §7. The int64 parameter lets the transport layer reject
// negative indices arriving from JSON without overflow hazards from
// coercing to uint64 first.
func (e *Engine) validateIndex(index int64) (uint64, error) {
	if index < 0 {
		return 0, pirerr.BadRequest("index out of range [0, %d)", e.db.Size())
	}
	idx := uint64(index)
	if idx >= e.db.Size() {
		return 0, pirerr.BadRequest("index out of range [0, %d)", e.db.Size())
	}
	return idx, nil
}

// Plaintext returns the record at index. Never logs index (spec
// §4.E: "must not log the index or any value derived from it") — the
// caller is trusted to uphold that by not passing index to a logger
// either.
func (e *Engine) Plaintext(index int64) (Result, error) {
	idx, err := e.validateIndex(index)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	value := e.db.Get(idx)
	elapsed := time.Since(start)

	return Result{Value: value, Duration: elapsed}, nil
}

// SetParity returns the XOR of records[i] for every i in indices.
// Duplicates are permitted and processed as given; accumulation order
// doesn't affect the result since XOR is associative and commutative.
func (e *Engine) SetParity(indices []int64) (Result, error) {
	if len(indices) == 0 {
		return Result{}, pirerr.BadRequest("indices list cannot be empty")
	}

	resolved := make([]uint64, len(indices))
	for i, raw := range indices {
		idx, err := e.validateIndex(raw)
		if err != nil {
			return Result{}, err
		}
		resolved[i] = idx
	}

	start := time.Now()
	var parity uint64
	for _, idx := range resolved {
		parity ^= e.db.Get(idx)
	}
	elapsed := time.Since(start)

	return Result{Value: parity, Duration: elapsed}, nil
}

// FullSet expands a PRSet from prfKey over the database's chunk/set
// parameters and returns the XOR of the referenced records. Fails
// with pirerr.KindInternal if any expanded index lands outside
// [0, n) — that indicates a parameter mismatch between the PRSet
// expansion and the loaded database, not a client error (spec §4.E).
func (e *Engine) FullSet(prfKey []byte) (Result, error) {
	if len(prfKey) != 16 {
		return Result{}, pirerr.BadRequest("prf_key must be 16 bytes")
	}

	key := prf.NewKey128(prfKey)
	set := prset.New(key)

	start := time.Now()
	indices := set.Expand(e.db.SetSize(), e.db.ChunkSize())

	var value uint64
	for _, idx := range indices {
		if idx >= e.db.Size() {
			return Result{}, pirerr.Internal("PRSet expansion produced index out of range [0, %d)", e.db.Size())
		}
		value ^= e.db.Get(idx)
	}
	elapsed := time.Since(start)

	return Result{Value: value, Duration: elapsed}, nil
}

// Health is the structured view returned by the /health endpoint
// (spec §4.E, §6.2).
type Health struct {
	Status         string
	DatabaseLoaded bool
	DatabaseSize   uint64
	ChunkSize      uint64
	SetSize        uint64
}

// Health reports the engine's current state. Never includes secrets.
func (e *Engine) Health() Health {
	return Health{
		Status:         "healthy",
		DatabaseLoaded: e.db.Size() > 0,
		DatabaseSize:   e.db.Size(),
		ChunkSize:      e.db.ChunkSize(),
		SetSize:        e.db.SetSize(),
	}
}
