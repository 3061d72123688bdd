package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/snstore/snstore/compress"
	"github.com/snstore/snstore/dynval"
	"github.com/snstore/snstore/errs"
)

func sampleTree() *dynval.Value {
	gps := dynval.NewMap()
	gps.Set("lat", dynval.NewFloat(48.137154))
	gps.Set("lon", dynval.NewFloat(11.576124))

	readings := dynval.NewSequence()
	readings.Append(dynval.NewInt(7))
	readings.Append(dynval.NewInt(42))

	root := dynval.NewMap()
	root.Set("gps", gps)
	root.Set("readings", readings)
	root.Set("armed", dynval.NewBool(true))
	root.Set("name", dynval.NewString("edge-01"))

	return root
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tree := sampleTree()

	for _, codec := range []compress.Type{
		compress.TypeNone, compress.TypeZstd, compress.TypeS2, compress.TypeLZ4,
	} {
		t.Run(codec.String(), func(t *testing.T) {
			blob, err := Encode(tree, codec)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(blob), HeaderSize)

			snap, err := Decode(blob)
			require.NoError(t, err)
			require.Equal(t, codec, snap.Codec)
			require.True(t, dynval.Equal(tree, snap.Tree))
			require.WithinDuration(t, time.Now(), snap.CapturedAt, time.Minute)
		})
	}
}

func TestEncodeUnknownCodec(t *testing.T) {
	_, err := Encode(sampleTree(), compress.Type(0x7F))
	require.Error(t, err)
}

func TestDecodeShortBlob(t *testing.T) {
	_, err := Decode([]byte{0x53, 0x4E})
	require.ErrorIs(t, err, errs.ErrSnapshotInvalid)
}

func TestDecodeBadMagic(t *testing.T) {
	blob, err := Encode(sampleTree(), compress.TypeNone)
	require.NoError(t, err)

	blob[0] ^= 0xFF
	_, err = Decode(blob)
	require.ErrorIs(t, err, errs.ErrSnapshotInvalid)
}

func TestDecodeBadVersion(t *testing.T) {
	blob, err := Encode(sampleTree(), compress.TypeNone)
	require.NoError(t, err)

	blob[4] = Version + 1
	_, err = Decode(blob)
	require.ErrorIs(t, err, errs.ErrSnapshotInvalid)
}

func TestDecodeUnknownCodec(t *testing.T) {
	blob, err := Encode(sampleTree(), compress.TypeNone)
	require.NoError(t, err)

	blob[5] = 0x7F
	_, err = Decode(blob)
	require.ErrorIs(t, err, errs.ErrSnapshotInvalid)
}

func TestDecodeCorruptBody(t *testing.T) {
	blob, err := Encode(sampleTree(), compress.TypeNone)
	require.NoError(t, err)

	// Flip a byte in the document; the fingerprint check must catch it.
	blob[HeaderSize+3] ^= 0xFF
	_, err = Decode(blob)
	require.ErrorIs(t, err, errs.ErrSnapshotInvalid)
}

func TestDecodeTruncatedBody(t *testing.T) {
	blob, err := Encode(sampleTree(), compress.TypeNone)
	require.NoError(t, err)

	_, err = Decode(blob[:len(blob)-4])
	require.ErrorIs(t, err, errs.ErrSnapshotInvalid)
}

func TestDecodeLengthMismatch(t *testing.T) {
	blob, err := Encode(sampleTree(), compress.TypeNone)
	require.NoError(t, err)

	headerEngine.PutUint32(blob[24:28], headerEngine.Uint32(blob[24:28])+1)
	_, err = Decode(blob)
	require.ErrorIs(t, err, errs.ErrSnapshotInvalid)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.snap")
	tree := sampleTree()

	blob, err := Encode(tree, compress.TypeZstd)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, blob, 0o644))

	snap, err := DecodeFile(path)
	require.NoError(t, err)
	require.True(t, dynval.Equal(tree, snap.Tree))
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.snap"))
	require.Error(t, err)
}
