package store

import (
	"time"

	"github.com/snstore/snstore/dynval"
)

// Path-addressed convenience methods. Each resolves the path from the root
// on every call; hot paths pre-resolve a Ref instead. A path that does not
// resolve logs once and reports the zero value with ok=false (reads) or
// false (writes).

// Float64 reads the field at path coerced to float64.
func (s *Store) Float64(path string, protect bool) (float64, bool) {
	r, ok := s.at(path)
	if !ok {
		return 0, false
	}

	return r.Float64(protect)
}

// Int64 reads the field at path coerced to int64.
func (s *Store) Int64(path string, protect bool) (int64, bool) {
	r, ok := s.at(path)
	if !ok {
		return 0, false
	}

	return r.Int64(protect)
}

// Bool reads the field at path coerced to bool.
func (s *Store) Bool(path string, protect bool) (bool, bool) {
	r, ok := s.at(path)
	if !ok {
		return false, false
	}

	return r.Bool(protect)
}

// String reads the field at path coerced to its textual form.
func (s *Store) String(path string, protect bool) (string, bool) {
	r, ok := s.at(path)
	if !ok {
		return "", false
	}

	return r.String(protect)
}

// SetFloat64 writes the field at path from a float64.
func (s *Store) SetFloat64(path string, v float64, protect bool) bool {
	r, ok := s.at(path)

	return ok && r.SetFloat64(v, protect)
}

// SetInt64 writes the field at path from an int64.
func (s *Store) SetInt64(path string, v int64, protect bool) bool {
	r, ok := s.at(path)

	return ok && r.SetInt64(v, protect)
}

// SetBool writes the field at path from a bool.
func (s *Store) SetBool(path string, v bool, protect bool) bool {
	r, ok := s.at(path)

	return ok && r.SetBool(v, protect)
}

// SetString writes the field at path from a string.
func (s *Store) SetString(path string, v string, protect bool) bool {
	r, ok := s.at(path)

	return ok && r.SetString(v, protect)
}

// Update applies a dynval value to the subtree at path.
func (s *Store) Update(path string, v *dynval.Value, protect bool) bool {
	r, ok := s.at(path)

	return ok && r.Set(v, protect)
}

// WaitForUpdate polls the field at path for a write newer than startMS.
func (s *Store) WaitForUpdate(path string, startMS int64, timeout time.Duration) bool {
	r, ok := s.at(path)

	return ok && r.WaitForUpdate(startMS, timeout)
}
