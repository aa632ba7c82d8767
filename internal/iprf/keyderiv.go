package iprf

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"plinko-pir/internal/prf"
)

// DeriveKey derives a deterministic 16-byte iPRF key from a master
// secret and a domain-separation context string (spec §4.D "Key
// derivation"). Identical inputs always yield identical output;
// distinct context strings yield cryptographically independent keys.
// Non-determinism here would invalidate every hint a client has
// cached against the previous key.
func DeriveKey(masterSecret []byte, context string) prf.Key128 {
	reader := hkdf.New(sha256.New, masterSecret, nil, []byte(context))
	var out [16]byte
	if _, err := io.ReadFull(reader, out[:]); err != nil {
		// hkdf.New's Reader only fails once the output stream is
		// exhausted (255*HashSize bytes); 16 bytes never gets close.
		panic("iprf: hkdf derivation failed: " + err.Error())
	}
	return prf.Key128(out)
}
