package segment

import (
	"fmt"
	"unsafe"

	"github.com/snstore/snstore/sem"
)

// Raw typed access to the mapped segment lives in this file and nowhere
// else. Every accessor proves offset+size <= len(mem) before touching
// memory; a violation is a layout bug, not a runtime condition, so it
// panics. Scalars are read and written in host byte order.

func (s *Segment) check(offset, size int) {
	if offset < 0 || offset+size > len(s.mem) {
		panic(fmt.Sprintf("segment: access [%d,%d) outside payload of %d bytes",
			offset, offset+size, len(s.mem)))
	}
}

// Float64At reads the double at the given segment offset.
func (s *Segment) Float64At(offset int) float64 {
	s.check(offset, 8)
	return *(*float64)(unsafe.Pointer(&s.mem[offset]))
}

// SetFloat64At writes the double at the given segment offset.
func (s *Segment) SetFloat64At(offset int, v float64) {
	s.check(offset, 8)
	*(*float64)(unsafe.Pointer(&s.mem[offset])) = v
}

// Uint64At reads the 64-bit word at the given segment offset.
func (s *Segment) Uint64At(offset int) uint64 {
	s.check(offset, 8)
	return *(*uint64)(unsafe.Pointer(&s.mem[offset]))
}

// SetUint64At writes the 64-bit word at the given segment offset.
func (s *Segment) SetUint64At(offset int, v uint64) {
	s.check(offset, 8)
	*(*uint64)(unsafe.Pointer(&s.mem[offset])) = v
}

// Uint32At reads the 32-bit word at the given segment offset.
func (s *Segment) Uint32At(offset int) uint32 {
	s.check(offset, 4)
	return *(*uint32)(unsafe.Pointer(&s.mem[offset]))
}

// SetUint32At writes the 32-bit word at the given segment offset.
func (s *Segment) SetUint32At(offset int, v uint32) {
	s.check(offset, 4)
	*(*uint32)(unsafe.Pointer(&s.mem[offset])) = v
}

// Uint16At reads the 16-bit word at the given segment offset.
func (s *Segment) Uint16At(offset int) uint16 {
	s.check(offset, 2)
	return *(*uint16)(unsafe.Pointer(&s.mem[offset]))
}

// SetUint16At writes the 16-bit word at the given segment offset.
func (s *Segment) SetUint16At(offset int, v uint16) {
	s.check(offset, 2)
	*(*uint16)(unsafe.Pointer(&s.mem[offset])) = v
}

// ByteAt reads the byte at the given segment offset.
func (s *Segment) ByteAt(offset int) byte {
	s.check(offset, 1)
	return s.mem[offset]
}

// SetByteAt writes the byte at the given segment offset.
func (s *Segment) SetByteAt(offset int, v byte) {
	s.check(offset, 1)
	s.mem[offset] = v
}

// BytesAt returns the n bytes starting at offset as a view into the mapped
// segment. Writes through the view are visible to every attached process.
func (s *Segment) BytesAt(offset, n int) []byte {
	s.check(offset, n)
	return s.mem[offset : offset+n]
}

// Payload returns the payload region, everything past the header.
func (s *Segment) Payload() []byte {
	return s.mem[HeaderSize:]
}

// Size returns the mapped segment size in bytes.
func (s *Segment) Size() int {
	return len(s.mem)
}

// Name returns the shared-memory object name the segment was opened with.
func (s *Segment) Name() string {
	return s.name
}

// Initialized reports whether this process performed the first-writer
// initialization of the segment.
func (s *Segment) Initialized() bool {
	return s.initialized
}

// Sem returns the container semaphore with the given layout ID.
func (s *Segment) Sem(id int) *sem.Sem {
	return s.sems[id]
}

// SemCount returns the number of container semaphores bound to the segment.
func (s *Segment) SemCount() int {
	return len(s.sems)
}

// State returns the current header state byte.
func (s *Segment) State() byte {
	return s.mem[0]
}
