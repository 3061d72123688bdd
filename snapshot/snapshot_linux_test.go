//go:build linux

package snapshot

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snstore/snstore/compress"
	"github.com/snstore/snstore/dynval"
	"github.com/snstore/snstore/schema"
	"github.com/snstore/snstore/segment"
	"github.com/snstore/snstore/store"
)

const captureSchema = `{
	"type": "unit",
	"speed": {"type": "float", "defaultValue": 13.372},
	"count": {"type": "int", "size": 4, "defaultValue": 42},
	"armed": {"type": "bool", "defaultValue": true},
	"name": {"type": "string", "size": 8, "defaultValue": "edge-01"},
	"gps": {
		"type": "unit",
		"lat": {"type": "float", "defaultValue": 48.137154},
		"lon": {"type": "float", "defaultValue": 11.576124}
	}
}`

func openCaptureStore(t *testing.T) *store.Store {
	t.Helper()
	v, err := dynval.Parse([]byte(captureSchema))
	require.NoError(t, err)
	root, err := schema.FromValue(v)
	require.NoError(t, err)

	id := rand.Uint64()
	name := fmt.Sprintf("/snstore_snap_%x", id)
	prefix := fmt.Sprintf("/snSnap%x_", id)

	st, err := store.Open(name, root, store.WithSemaphorePrefix(prefix))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
		_ = segment.Unlink(name, st.Layout().SemCount, prefix)
	})

	return st
}

func TestCaptureRoundTrip(t *testing.T) {
	st := openCaptureStore(t)
	require.True(t, st.SetFloat64("speed", 99.5, true))
	require.True(t, st.SetString("name", "lab", true))

	blob, err := Capture(st, compress.TypeZstd)
	require.NoError(t, err)

	snap, err := Decode(blob)
	require.NoError(t, err)
	require.True(t, dynval.Equal(st.Tree(), snap.Tree))

	speed, ok := snap.Tree.Find("speed").AsFloat()
	require.True(t, ok)
	require.Equal(t, 99.5, speed)

	name, ok := snap.Tree.Find("name").AsString()
	require.True(t, ok)
	require.Equal(t, "lab", name)
}

func TestCaptureFile(t *testing.T) {
	st := openCaptureStore(t)
	path := filepath.Join(t.TempDir(), "capture.snap")

	require.NoError(t, CaptureFile(st, compress.TypeLZ4, path))

	snap, err := DecodeFile(path)
	require.NoError(t, err)
	require.Equal(t, compress.TypeLZ4, snap.Codec)
	require.True(t, dynval.Equal(st.Tree(), snap.Tree))
}
