// Package compress provides the compression codecs behind store snapshots.
//
// Snapshot payloads are serialized JSON documents, usually a few kilobytes,
// written once and read back for offline inspection. Four codecs cover the
// useful trade-offs:
//
//   - TypeNone: pass-through, for debugging snapshots with a text editor
//   - TypeZstd: best ratio, the default for archived snapshots
//   - TypeS2: fastest round-trip, for high-frequency capture loops
//   - TypeLZ4: low, predictable latency with a decent ratio
//
// Codecs are stateless values; the pooled encoder and decoder state behind
// them is shared safely across goroutines. The Type byte is persisted in
// snapshot headers, so values are stable across releases.
//
// The zstd codec has two implementations selected by build tag: a cgo
// binding when cgo is available and a pure-Go fallback otherwise. Both read
// each other's output.
package compress
