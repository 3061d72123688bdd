// Package segment manages the shared-memory object behind a store: opening
// and mapping it, driving the initialization handshake through the header
// state machine, and providing the bounds-checked raw accessors every other
// package reads and writes through.
//
// # Header Format
//
// The first 0x30 bytes of the segment are reserved:
//
//	Byte 0:        state byte: 0x00 empty, 0x5A initialization in progress,
//	               0xA5 valid
//	Bytes 1-19:    random signature bytes, each in [0x01, 0xFE]
//	Bytes 20-29:   increment-by-one sequence seeded from byte 19
//	Bytes 30-31:   little-endian 16-bit checksum over the signature
//	Bytes 32-47:   reserved handshake block, zeroed
//
// The payload starts at byte 0x30: per-scalar timestamps followed by the six
// value pools at offsets fixed by the layout planner.
package segment

import (
	"fmt"
	"math/rand/v2"

	"github.com/snstore/snstore/endian"
	"github.com/snstore/snstore/errs"
)

// Header state bytes.
const (
	StateEmpty      = 0x00
	StateInProgress = 0x5A
	StateValid      = 0xA5
)

// HeaderSize mirrors the layout planner's reserved region.
const HeaderSize = 0x30

const (
	signatureStart = 1  // first random signature byte
	sequenceStart  = 20 // first byte of the +1 run
	checksumOffset = 30 // little-endian uint16
	reservedStart  = 32 // zeroed handshake block, 0x20..0x2F
)

var headerEngine = endian.GetLittleEndianEngine()

// writeSignature fills bytes 1..29 with a fresh validity signature: 19
// random bytes in [0x01, 0xFE] followed by a +1 sequence seeded from the
// last random byte.
func writeSignature(hdr []byte) {
	for i := signatureStart; i < sequenceStart; i++ {
		hdr[i] = byte(1 + rand.IntN(0xFE))
	}
	for i := sequenceStart; i < checksumOffset; i++ {
		hdr[i] = hdr[i-1] + 1
	}
	headerEngine.PutUint16(hdr[checksumOffset:], checksum(hdr))
}

// checksum sums the signature bytes 1..29 on top of the valid state value.
func checksum(hdr []byte) uint16 {
	sum := uint16(StateValid)
	for i := signatureStart; i < checksumOffset; i++ {
		sum += uint16(hdr[i])
	}

	return sum
}

// validateHeader checks a header claiming to be valid: state byte, signature
// byte range, stored checksum, and the +1 sequence run.
func validateHeader(hdr []byte) error {
	if hdr[0] != StateValid {
		return fmt.Errorf("segment: state byte 0x%02X, want 0x%02X: %w",
			hdr[0], StateValid, errs.ErrChecksumInvalid)
	}

	for i := signatureStart; i < sequenceStart; i++ {
		if hdr[i] == 0x00 || hdr[i] == 0xFF {
			return fmt.Errorf("segment: signature byte %d out of range: %w",
				i, errs.ErrChecksumInvalid)
		}
	}

	want := checksum(hdr)
	got := headerEngine.Uint16(hdr[checksumOffset:])
	if got != want {
		return fmt.Errorf("segment: header checksum 0x%04X, want 0x%04X: %w",
			got, want, errs.ErrChecksumInvalid)
	}

	for i := sequenceStart; i < checksumOffset; i++ {
		if hdr[i] != hdr[i-1]+1 {
			return fmt.Errorf("segment: signature sequence broken at byte %d: %w",
				i, errs.ErrChecksumInvalid)
		}
	}

	return nil
}
