package compress

// NoOpCompressor passes data through unchanged. Snapshots written with it
// stay readable with a text editor, which is what you want when debugging
// the snapshot pipeline itself.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates the pass-through codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns the input slice as-is, sharing its memory with the
// caller. Callers that hold on to the result must not mutate the input
// afterwards.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input slice as-is, sharing its memory with the
// caller.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
