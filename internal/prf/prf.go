// Package prf implements the keyed 128-bit block PRF primitive (spec §4.A).
//
// F_k(x) -> 16 bytes, realised as AES-128 applied to a single block.
// This is not exposed as a general encryption API: callers only ever
// see single-block evaluation, never a mode of operation.
package prf

import (
	"crypto/aes"
	"encoding/binary"
)

// Key128 is an opaque 16-byte PRF key, equal iff the underlying bytes
// are equal. Immutable after construction.
type Key128 [16]byte

// NewKey128 copies 16 bytes into a Key128. Panics if the slice isn't
// exactly 16 bytes — callers validate length at the request boundary
// (pirerr.BadRequest) before ever reaching this constructor.
func NewKey128(b []byte) Key128 {
	if len(b) != 16 {
		panic("prf: key must be 16 bytes")
	}
	var k Key128
	copy(k[:], b)
	return k
}

// Block evaluates F_k on a single 16-byte block and returns the
// 16-byte output. Deterministic in key and block.
func Block(key Key128, block [aes.BlockSize]byte) [aes.BlockSize]byte {
	cipher, err := aes.NewCipher(key[:])
	if err != nil {
		// aes.NewCipher only fails on bad key length, and Key128 is
		// fixed-size, so this is unreachable.
		panic(err)
	}
	var out [aes.BlockSize]byte
	cipher.Encrypt(out[:], block[:])
	return out
}

// EvalScalar evaluates F_k(x) for a scalar x in [0, 2^64), placing x
// big-endian in the low 8 bytes of the input block (high 8 bytes
// zero), and returns the leading 8 bytes of the output interpreted
// big-endian as a uint64 pseudorandom word (spec §4.A).
func EvalScalar(key Key128, x uint64) uint64 {
	var in [aes.BlockSize]byte
	binary.BigEndian.PutUint64(in[8:], x)
	out := Block(key, in)
	return binary.BigEndian.Uint64(out[:8])
}
