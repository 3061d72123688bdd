// Package endian provides the byte-order engines for segment and snapshot
// framing.
//
// An EndianEngine is encoding/binary's ByteOrder plus AppendByteOrder under
// one name. Segment headers and snapshot blobs are always written
// little-endian so a blob moves between hosts; payload scalars use host
// order because every process on the machine maps the same bytes. Callers
// probe the host order with CheckEndianness or the IsNative helpers.
//
// Engines are stateless and safe for concurrent use.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine reads, writes and appends fixed-width integers in one byte
// order. binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness reports the host byte order by inspecting where a uint16
// places its high byte.
func CheckEndianness() binary.ByteOrder {
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

// GetLittleEndianEngine returns the engine used for segment headers and
// snapshot framing.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
