package compress

import "fmt"

// Type identifies a compression algorithm. The byte value is what snapshot
// headers carry on disk, so existing values never change meaning.
type Type byte

const (
	// TypeNone stores snapshot payloads uncompressed.
	TypeNone Type = 0
	// TypeZstd selects Zstandard, the best ratio for JSON payloads.
	TypeZstd Type = 1
	// TypeS2 selects S2, the fastest round-trip.
	TypeS2 Type = 2
	// TypeLZ4 selects LZ4 block compression.
	TypeLZ4 Type = 3
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeZstd:
		return "zstd"
	case TypeS2:
		return "s2"
	case TypeLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// ParseType maps an algorithm name, as accepted on the command line, to its
// Type.
func ParseType(name string) (Type, error) {
	switch name {
	case "none", "":
		return TypeNone, nil
	case "zstd":
		return TypeZstd, nil
	case "s2":
		return TypeS2, nil
	case "lz4":
		return TypeLZ4, nil
	default:
		return TypeNone, fmt.Errorf("unknown compression type %q", name)
	}
}

// Compressor compresses one snapshot payload.
//
// The input is a complete serialized document, typically a few KB of JSON.
// The returned slice is newly allocated and owned by the caller; the input
// is never modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload produced by the matching Compressor. It
// validates the data format and returns an error on corrupt or mismatched
// input.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. All built-in codecs are stateless values
// safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec returns a Codec for the given type. The target string names
// the caller's purpose in the error message.
func CreateCodec(t Type, target string) (Codec, error) {
	switch t {
	case TypeNone:
		return NewNoOpCompressor(), nil
	case TypeZstd:
		return NewZstdCompressor(), nil
	case TypeS2:
		return NewS2Compressor(), nil
	case TypeLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, t)
	}
}

var builtinCodecs = map[Type]Codec{
	TypeNone: NewNoOpCompressor(),
	TypeZstd: NewZstdCompressor(),
	TypeS2:   NewS2Compressor(),
	TypeLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the shared built-in Codec for the type.
func GetCodec(t Type) (Codec, error) {
	if codec, ok := builtinCodecs[t]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", t)
}
