// Package prset implements the Pseudorandom Set expansion (spec §4.C).
//
// A PRSet is stateless apart from its key: Expand(k, c) deterministically
// draws one index per chunk, confined to that chunk's range. It does not
// know the database size and will happily produce indices outside
// [0, n) if the caller passes inconsistent parameters — the query
// engine is responsible for re-validating.
package prset

import "plinko-pir/internal/prf"

// PRSet holds only its key; each evaluation builds the AES block cipher
// from it, so invocations are pure functions of the key.
type PRSet struct {
	key prf.Key128
}

// New creates a PRSet bound to key.
func New(key prf.Key128) PRSet {
	return PRSet{key: key}
}

// PrfEvalMod computes (msb64(PRF(key, x))) mod m, returning 0 if m == 0.
// Modulo bias for m that doesn't divide 2^64 is accepted, not corrected
// — see spec §4.C and DESIGN.md's Open Question record.
func (s PRSet) PrfEvalMod(x uint64, m uint64) uint64 {
	if m == 0 {
		return 0
	}
	return prf.EvalScalar(s.key, x) % m
}

// Expand generates the pseudorandom set: for i in [0, k), the i-th
// entry is i*c + offset_i where offset_i = PrfEvalMod(i, c). Pure and
// infallible given k, c >= 0.
func (s PRSet) Expand(setSize, chunkSize uint64) []uint64 {
	indices := make([]uint64, setSize)
	for i := uint64(0); i < setSize; i++ {
		offset := s.PrfEvalMod(i, chunkSize)
		indices[i] = i*chunkSize + offset
	}
	return indices
}
