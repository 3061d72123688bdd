package compress

import (
	"bytes"
	"fmt"
	"testing"
)

// benchPayload builds a snapshot-shaped JSON document of roughly the given
// size.
func benchPayload(size int) []byte {
	unit := []byte(`{"gps":{"lat":48.137154,"lon":11.576124},"speed":13.372000,"count":42,"armed":true,"name":"edge-01"},`)

	return bytes.Repeat(unit, size/len(unit)+1)[:size]
}

func BenchmarkCompress(b *testing.B) {
	for typ, codec := range allCodecs() {
		for _, size := range []int{1 << 10, 16 << 10, 256 << 10} {
			data := benchPayload(size)
			b.Run(fmt.Sprintf("%s/%dKB", typ, size>>10), func(b *testing.B) {
				b.SetBytes(int64(size))
				for b.Loop() {
					if _, err := codec.Compress(data); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkDecompress(b *testing.B) {
	for typ, codec := range allCodecs() {
		for _, size := range []int{1 << 10, 16 << 10, 256 << 10} {
			compressed, err := codec.Compress(benchPayload(size))
			if err != nil {
				b.Fatal(err)
			}
			b.Run(fmt.Sprintf("%s/%dKB", typ, size>>10), func(b *testing.B) {
				b.SetBytes(int64(size))
				for b.Loop() {
					if _, err := codec.Decompress(compressed); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
