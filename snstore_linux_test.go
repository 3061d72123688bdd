//go:build linux

package snstore_test

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snstore/snstore"
	"github.com/snstore/snstore/compress"
	"github.com/snstore/snstore/dynval"
	"github.com/snstore/snstore/store"
)

const flightSchema = `{
	"type": "unit",
	"speed": {"type": "float", "defaultValue": 0.0, "hysteresis": 100},
	"mode": {"type": "string", "size": 8, "defaultValue": "idle"},
	"gps": {
		"type": "unit",
		"lat": {"type": "float", "defaultValue": 0.0},
		"lon": {"type": "float", "defaultValue": 0.0}
	}
}`

func openFlight(t *testing.T) (*store.Store, string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flight.json")
	require.NoError(t, os.WriteFile(path, []byte(flightSchema), 0o644))

	id := rand.Uint64()
	name := fmt.Sprintf("/snstore_top_%x", id)
	prefix := fmt.Sprintf("/snTop%x_", id)

	st, err := snstore.Open(name, path, store.WithSemaphorePrefix(prefix))
	require.NoError(t, err)
	t.Cleanup(func() {
		semCount := st.Layout().SemCount
		_ = st.Close()
		_ = snstore.Unlink(name, semCount, prefix)
	})

	return st, name, prefix
}

func TestOpenReadWrite(t *testing.T) {
	st, _, _ := openFlight(t)

	require.True(t, st.SetFloat64("gps.lat", 48.137154, true))

	lat, ok := st.Float64("gps.lat", true)
	require.True(t, ok)
	require.Equal(t, 48.137154, lat)

	mode, ok := st.String("mode", true)
	require.True(t, ok)
	require.Equal(t, "idle", mode)
}

func TestCaptureRestore(t *testing.T) {
	st, _, _ := openFlight(t)
	require.True(t, st.SetFloat64("speed", 13.372, true))

	blob, err := snstore.Capture(st, compress.TypeS2)
	require.NoError(t, err)

	snap, err := snstore.Restore(blob)
	require.NoError(t, err)

	speed, ok := snap.Tree.Find("speed").AsFloat()
	require.True(t, ok)
	require.Equal(t, 13.372, speed)
}

func TestMirrorReportsMovement(t *testing.T) {
	st, _, _ := openFlight(t)

	m, err := snstore.NewMirror(st)
	require.NoError(t, err)

	require.True(t, st.SetFloat64("speed", 10, true))

	delta := dynval.NewMap()
	changed, err := m.Changes(delta)
	require.NoError(t, err)
	require.True(t, changed)
	require.NotNil(t, delta.Find("speed"))
}

func TestUnlinkAllowsFreshSegment(t *testing.T) {
	st, name, prefix := openFlight(t)
	require.True(t, st.SetString("mode", "armed", true))
	semCount := st.Layout().SemCount
	require.NoError(t, st.Close())

	require.NoError(t, snstore.Unlink(name, semCount, prefix))

	path := filepath.Join(t.TempDir(), "flight.json")
	require.NoError(t, os.WriteFile(path, []byte(flightSchema), 0o644))

	fresh, err := snstore.Open(name, path, store.WithSemaphorePrefix(prefix))
	require.NoError(t, err)
	defer func() {
		_ = fresh.Close()
		_ = snstore.Unlink(name, semCount, prefix)
	}()

	mode, ok := fresh.String("mode", true)
	require.True(t, ok)
	require.Equal(t, "idle", mode)
}
