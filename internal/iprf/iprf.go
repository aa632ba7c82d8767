// Package iprf implements the invertible PRF over {0..n-1} -> {0..m-1}
// (spec §4.D): a binary interval tree driven by a PRF-keyed binomial
// split, with forward evaluation and O(log n + |bin|) inverse lookup.
package iprf

import (
	"crypto/aes"

	"plinko-pir/internal/pirerr"
	"plinko-pir/internal/prf"
)

// IPRF is a keyed (n, m) invertible PRF instance.
type IPRF struct {
	key prf.Key128
	n   uint64 // domain size
	m   uint64 // range size
}

// New builds an iPRF instance. Returns a BadRequest error if n or m
// isn't strictly positive (spec §4.D failure modes); the key's length
// is fixed at 16 bytes by the prf.Key128 type, so it is not checked here.
func New(key prf.Key128, n, m uint64) (*IPRF, error) {
	if n == 0 {
		return nil, pirerr.BadRequest("iprf: domain size n must be positive")
	}
	if m == 0 {
		return nil, pirerr.BadRequest("iprf: range size m must be positive")
	}
	return &IPRF{key: key, n: n, m: m}, nil
}

// seedAt mixes the iPRF key into a node's identity digest and returns
// a uniform sample in (0, 1) driving that node's binomial split. The
// digest (32 bytes, two AES blocks) is run through the block PRF
// rather than truncated first, so no bits of the collision-free
// digest are discarded before keying (spec §4.D: "bit-packing...is
// forbidden").
func (f *IPRF) seedAt(lo, hi uint64) float64 {
	digest := encodeNode(lo, hi, f.n)

	var half0, half1 [aes.BlockSize]byte
	copy(half0[:], digest[:16])
	copy(half1[:], digest[16:])

	out0 := prf.Block(f.key, half0)
	out1 := prf.Block(f.key, half1)

	var mixed [16]byte
	for i := range mixed {
		mixed[i] = out0[i] ^ out1[i]
	}

	word := uint64(0)
	for i := 0; i < 8; i++ {
		word = word<<8 | uint64(mixed[i])
	}

	// Use the top 53 bits as a double-precision uniform in (0, 1),
	// matching the mantissa width of a float64.
	const invTwoTo53 = 1.0 / (1 << 53)
	return (float64(word>>11) + 0.5) * invTwoTo53
}

// split returns the number of balls routed to the left child of the
// interval [lo, hi] carrying ballCount balls, via Binomial(ballCount, p)
// where p is the fraction of the interval's bins on the left.
func (f *IPRF) split(lo, hi, ballCount uint64) uint64 {
	mid := (lo + hi) / 2
	leftBins := mid - lo + 1
	totalBins := hi - lo + 1
	p := float64(leftBins) / float64(totalBins)
	u := f.seedAt(lo, hi)
	return sampleSplit(ballCount, p, u)
}

// Forward evaluates F(x) for x in [0, n). Descends the range interval
// [0, m) one binomial split at a time, tracking which half of the
// domain's current ball allocation x's rank falls into (spec §4.D).
func (f *IPRF) Forward(x uint64) uint64 {
	low, high := uint64(0), f.m-1
	ballCount := f.n
	ballIndex := x

	for low < high {
		leftCount := f.split(low, high, ballCount)
		mid := (low + high) / 2
		if ballIndex < leftCount {
			high = mid
			ballCount = leftCount
		} else {
			low = mid + 1
			ballIndex -= leftCount
			ballCount -= leftCount
		}
	}
	return low
}

// Inverse returns every x in [0, n) with Forward(x) == y, in
// ascending order. It descends the same single deterministic path
// Forward would take to reach bin y — each level's binomial split
// assigns a contiguous sub-range of domain ranks to each child, so at
// every level exactly one child can contain bin y — then returns the
// contiguous domain range left standing at the leaf. Expected
// complexity O(log n + |preimage|); no recursion, so there is no
// stack-depth concern for large n (spec §9, iPRF tree recursion note).
func (f *IPRF) Inverse(y uint64) []uint64 {
	if y >= f.m {
		return nil
	}

	low, high := uint64(0), f.m-1
	start, end := uint64(0), f.n-1

	for low < high {
		if start > end {
			return nil
		}
		ballCount := end - start + 1
		leftCount := f.split(low, high, ballCount)
		mid := (low + high) / 2
		splitPoint := start + leftCount

		if y <= mid {
			high = mid
			end = splitPoint - 1
		} else {
			low = mid + 1
			start = splitPoint
		}
	}

	if start > end {
		return nil
	}
	result := make([]uint64, end-start+1)
	for i := range result {
		result[i] = start + uint64(i)
	}
	return result
}

// N returns the configured domain size.
func (f *IPRF) N() uint64 { return f.n }

// M returns the configured range size.
func (f *IPRF) M() uint64 { return f.m }
