// Package database loads the immutable, fixed-width-record database
// snapshot (spec §3, §6.1) and derives the PIR chunk/set parameters.
package database

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"plinko-pir/internal/pirerr"
)

// entrySize is the on-disk record width in bytes: one big-endian
// uint64 per record, per spec §6.1. No header, no magic, no trailer.
const entrySize = 8

// Database is an immutable, indexed sequence of n uint64 records.
type Database struct {
	records   []uint64
	chunkSize uint64
	setSize   uint64
}

// Size returns the number of records, n.
func (d *Database) Size() uint64 { return uint64(len(d.records)) }

// ChunkSize returns the derived PIR chunk size.
func (d *Database) ChunkSize() uint64 { return d.chunkSize }

// SetSize returns the derived PIR set size.
func (d *Database) SetSize() uint64 { return d.setSize }

// Get returns the record at index. The caller must have already
// validated index is in [0, Size()); Get panics otherwise, since by
// the time a Database method is called the query engine has already
// converted out-of-range access into a pirerr error (BadRequest for a
// caller-supplied index, Internal for a PRSet-expanded one).
func (d *Database) Get(index uint64) uint64 {
	return d.records[index]
}

// deriveParams computes chunkSize = max(1, n/1024), setSize =
// max(1, n/chunkSize), per spec §3 "PIR parameters".
func deriveParams(n uint64) (chunkSize, setSize uint64) {
	chunkSize = n / 1024
	if chunkSize < 1 {
		chunkSize = 1
	}
	setSize = n / chunkSize
	if setSize < 1 {
		setSize = 1
	}
	return chunkSize, setSize
}

// Load reads the flat binary database file at path, waiting up to
// timeout for it to appear (timeout <= 0 means check once and fail
// immediately if absent, per spec §5/§6.3). Fails with a
// pirerr.DatabaseError if the file never appears, its size isn't a
// multiple of 8, or it can't be read.
func Load(path string, timeout time.Duration, log zerolog.Logger) (*Database, error) {
	if err := waitForFile(path, timeout, log); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pirerr.Wrap(pirerr.KindDatabaseError, fmt.Sprintf("failed to read database file %s", path), err)
	}

	if len(data)%entrySize != 0 {
		return nil, pirerr.New(pirerr.KindDatabaseError,
			fmt.Sprintf("database file size %d is not a multiple of %d", len(data), entrySize))
	}

	n := uint64(len(data) / entrySize)
	records := make([]uint64, n)
	for i := uint64(0); i < n; i++ {
		records[i] = binary.BigEndian.Uint64(data[i*entrySize : i*entrySize+entrySize])
	}

	chunkSize, setSize := deriveParams(n)
	addressable := setSize * chunkSize
	if addressable < n {
		log.Info().
			Uint64("db_size", n).
			Uint64("addressable", addressable).
			Uint64("unreachable_tail", n-addressable).
			Msg("PRSet expansion cannot reach every record: setSize*chunkSize under-covers the database (spec §9 open question, not a bug)")
	}

	log.Debug().
		Uint64("db_size", n).
		Float64("size_mb", float64(n*entrySize)/(1024*1024)).
		Msg("database snapshot decoded")

	return &Database{records: records, chunkSize: chunkSize, setSize: setSize}, nil
}

func waitForFile(path string, timeout time.Duration, log zerolog.Logger) error {
	if timeout <= 0 {
		if _, err := os.Stat(path); err != nil {
			return pirerr.Wrap(pirerr.KindDatabaseError, fmt.Sprintf("database file %s not found", path), err)
		}
		return nil
	}

	start := time.Now()
	attempts := 0
	for {
		if _, err := os.Stat(path); err == nil {
			return nil
		}

		attempts++
		if attempts%10 == 0 {
			log.Info().
				Dur("elapsed", time.Since(start)).
				Dur("timeout", timeout).
				Msg("still waiting for database file")
		}

		if time.Since(start) >= timeout {
			return pirerr.New(pirerr.KindDatabaseError, fmt.Sprintf("timeout waiting for database file at %s", path))
		}

		time.Sleep(time.Second)
	}
}
