package store

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Manifest texts compress extremely well and a tracked dataset can hold
// thousands of them, so they are stored as zstd blobs. The package-level
// coder pair is safe for concurrent EncodeAll/DecodeAll use.
var (
	manifestEncoder, _ = zstd.NewWriter(nil)
	manifestDecoder, _ = zstd.NewReader(nil)
)

func compressManifest(text string) []byte {
	if text == "" {
		return nil
	}
	return manifestEncoder.EncodeAll([]byte(text), nil)
}

func decompressManifest(blob []byte) (string, error) {
	if len(blob) == 0 {
		return "", nil
	}
	raw, err := manifestDecoder.DecodeAll(blob, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decompress manifest: %w", err)
	}
	return string(raw), nil
}
