package iprf

import (
	"crypto/sha256"
	"encoding/binary"
)

// encodeNode computes the collision-free 32-byte node identity digest
// of (lo, hi, originalN) required by spec §4.D. originalN is always
// the root's ball count (the iPRF's domain size n) regardless of
// recursion depth; the current node's shrinking ball count feeds only
// the binomial split, never the node identity. Bit-packing into a uint64 is deliberately avoided: n may
// exceed 2^16 (spec requires support to at least 2^60), so the full
// digest is carried forward as keying material rather than truncated.
func encodeNode(lo, hi, originalN uint64) [sha256.Size]byte {
	var buf [24]byte
	binary.BigEndian.PutUint64(buf[0:8], lo)
	binary.BigEndian.PutUint64(buf[8:16], hi)
	binary.BigEndian.PutUint64(buf[16:24], originalN)
	return sha256.Sum256(buf[:])
}
