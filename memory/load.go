package memory

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"

	"github.com/wippyai/nichefmt/errors"
)

// Compression identifies how a segment file is stored on disk.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

// CompressionFor infers the compression from a file extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// LoadSegment reads a segment file, decompressing it according to its
// extension. A non-empty checksum is the hex BLAKE3-256 digest of the
// uncompressed bytes.
func LoadSegment(path, checksum string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Load("open segment "+path, err)
	}
	defer f.Close()

	data, err := Decompress(f, CompressionFor(path))
	if err != nil {
		return nil, errors.Load("read segment "+path, err)
	}
	if err := VerifyChecksum(data, checksum); err != nil {
		return nil, errors.Load("verify segment "+path, err)
	}
	return data, nil
}

// Decompress reads all of r using the given compression.
func Decompress(r io.Reader, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone, "":
		return io.ReadAll(r)

	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer dec.Close()
		data, err := io.ReadAll(dec)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return data, nil

	case CompressionLZ4:
		data, err := io.ReadAll(lz4.NewReader(r))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return data, nil

	default:
		return nil, fmt.Errorf("unsupported compression %q", c)
	}
}

// DecompressBytes is Decompress over an in-memory buffer.
func DecompressBytes(data []byte, c Compression) ([]byte, error) {
	return Decompress(bytes.NewReader(data), c)
}

// Checksum returns the hex BLAKE3-256 digest of data.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// VerifyChecksum compares data against a hex digest. An empty want always passes.
func VerifyChecksum(data []byte, want string) error {
	if want == "" {
		return nil
	}
	got := Checksum(data)
	if !strings.EqualFold(got, strings.TrimSpace(want)) {
		return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
	}
	return nil
}
