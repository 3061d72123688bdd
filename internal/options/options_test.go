package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// openSettings mimics the settings structs the store and mirror builders
// pass through Apply.
type openSettings struct {
	prefix  string
	retries int
	verbose bool
}

func withPrefix(p string) Option[*openSettings] {
	return New(func(s *openSettings) error {
		if p == "" {
			return errors.New("prefix must not be empty")
		}
		s.prefix = p

		return nil
	})
}

func withRetries(n int) Option[*openSettings] {
	return New(func(s *openSettings) error {
		if n < 0 {
			return errors.New("retries must not be negative")
		}
		s.retries = n

		return nil
	})
}

func withVerbose() Option[*openSettings] {
	return NoError(func(s *openSettings) {
		s.verbose = true
	})
}

func TestApply(t *testing.T) {
	set := &openSettings{}
	err := Apply(set, withPrefix("/snSem_"), withRetries(3), withVerbose())
	require.NoError(t, err)
	require.Equal(t, "/snSem_", set.prefix)
	require.Equal(t, 3, set.retries)
	require.True(t, set.verbose)
}

func TestApplyStopsAtFirstError(t *testing.T) {
	set := &openSettings{}
	err := Apply(set, withRetries(2), withPrefix(""), withVerbose())
	require.Error(t, err)
	require.Contains(t, err.Error(), "prefix must not be empty")
	require.Equal(t, 2, set.retries)
	require.False(t, set.verbose, "options after the failing one must not run")
}

func TestApplyNoOptions(t *testing.T) {
	set := &openSettings{}
	require.NoError(t, Apply(set))
	require.Equal(t, &openSettings{}, set)
}

func TestNoErrorNeverFails(t *testing.T) {
	set := &openSettings{}
	require.NoError(t, withVerbose().apply(set))
	require.True(t, set.verbose)
}
