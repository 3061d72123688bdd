// Package snapshot turns a live store into a self-describing blob and back.
//
// A snapshot is a point-in-time JSON dump of the store's tree behind a
// small fixed header: magic, format version, compression codec, an xxHash64
// fingerprint of the uncompressed document, the capture time and the
// document length. The fingerprint is verified on import, so a truncated or
// bit-flipped blob fails loudly instead of parsing into a wrong tree.
//
// Snapshots are a diagnostic surface for offline inspection and archival.
// Capture reads through the typed access layer under the usual semaphore
// discipline; importing never writes back into a segment.
package snapshot

import (
	"fmt"
	"os"
	"time"

	"github.com/snstore/snstore/compress"
	"github.com/snstore/snstore/dynval"
	"github.com/snstore/snstore/endian"
	"github.com/snstore/snstore/errs"
	"github.com/snstore/snstore/internal/hash"
	"github.com/snstore/snstore/internal/pool"
	"github.com/snstore/snstore/store"
)

// Magic identifies a snapshot blob: "SNS1" as a little-endian word.
const Magic uint32 = 0x3153_4E53

// Version is the current snapshot format version.
const Version byte = 1

// HeaderSize is the fixed byte length of the snapshot header.
//
// Header layout, little-endian:
//
//	0..3   magic "SNS1"
//	4      format version
//	5      compression codec
//	6..7   reserved, zero
//	8..15  xxHash64 of the uncompressed document
//	16..23 capture time, Unix milliseconds
//	24..27 uncompressed document length
//	28..31 reserved, zero
const HeaderSize = 32

var headerEngine = endian.GetLittleEndianEngine()

// Snapshot is a decoded blob.
type Snapshot struct {
	Tree       *dynval.Value
	Codec      compress.Type
	CapturedAt time.Time
}

// Capture dumps the store's tree and encodes it with the given codec.
func Capture(st *store.Store, codec compress.Type) ([]byte, error) {
	return Encode(st.Tree(), codec)
}

// CaptureFile captures the store into a snapshot file.
func CaptureFile(st *store.Store, codec compress.Type, path string) error {
	blob, err := Capture(st, codec)
	if err != nil {
		return err
	}

	return os.WriteFile(path, blob, 0o644)
}

// Encode serializes a dynval tree into a snapshot blob.
func Encode(tree *dynval.Value, codecType compress.Type) ([]byte, error) {
	codec, err := compress.CreateCodec(codecType, "snapshot")
	if err != nil {
		return nil, err
	}

	doc, err := tree.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("snapshot: serialize: %w", err)
	}

	body, err := codec.Compress(doc)
	if err != nil {
		return nil, fmt.Errorf("snapshot: compress: %w", err)
	}

	buf := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(buf)

	var header [HeaderSize]byte
	headerEngine.PutUint32(header[0:4], Magic)
	header[4] = Version
	header[5] = byte(codecType)
	headerEngine.PutUint64(header[8:16], hash.Bytes(doc))
	headerEngine.PutUint64(header[16:24], uint64(time.Now().UnixMilli()))
	headerEngine.PutUint32(header[24:28], uint32(len(doc)))

	buf.MustWrite(header[:])
	buf.MustWrite(body)

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// Decode parses and verifies a snapshot blob.
func Decode(blob []byte) (*Snapshot, error) {
	if len(blob) < HeaderSize {
		return nil, fmt.Errorf("snapshot: %d bytes is shorter than the header: %w",
			len(blob), errs.ErrSnapshotInvalid)
	}
	if headerEngine.Uint32(blob[0:4]) != Magic {
		return nil, fmt.Errorf("snapshot: bad magic: %w", errs.ErrSnapshotInvalid)
	}
	if blob[4] != Version {
		return nil, fmt.Errorf("snapshot: unsupported version %d: %w",
			blob[4], errs.ErrSnapshotInvalid)
	}

	codecType := compress.Type(blob[5])
	codec, err := compress.GetCodec(codecType)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %v: %w", err, errs.ErrSnapshotInvalid)
	}

	doc, err := codec.Decompress(blob[HeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("snapshot: decompress: %v: %w", err, errs.ErrSnapshotInvalid)
	}

	if uint32(len(doc)) != headerEngine.Uint32(blob[24:28]) {
		return nil, fmt.Errorf("snapshot: document length mismatch: %w", errs.ErrSnapshotInvalid)
	}
	if hash.Bytes(doc) != headerEngine.Uint64(blob[8:16]) {
		return nil, fmt.Errorf("snapshot: fingerprint mismatch: %w", errs.ErrSnapshotInvalid)
	}

	tree, err := dynval.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("snapshot: parse: %v: %w", err, errs.ErrSnapshotInvalid)
	}

	return &Snapshot{
		Tree:       tree,
		Codec:      codecType,
		CapturedAt: time.UnixMilli(int64(headerEngine.Uint64(blob[16:24]))),
	}, nil
}

// DecodeFile reads and decodes a snapshot file.
func DecodeFile(path string) (*Snapshot, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Decode(blob)
}
