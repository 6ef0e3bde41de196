// Package dataset reads and writes scouting record collections. It is the
// caller-side ingestion layer: the engine itself only ever sees the decoded
// records handed to store.Load.
package dataset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ahrav/go-scout/internal/domain"
)

// Format names a dataset encoding.
type Format string

// Supported formats.
const (
	FormatJSON       Format = "json"
	FormatMsgpack    Format = "msgpack"
	FormatMsgpackLZ4 Format = "msgpack+lz4"
)

// ErrUnsupportedFormat indicates an encoding name or file extension the
// package does not know.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatMsgpack, FormatMsgpackLZ4:
		return f, nil
	case "lz4":
		return FormatMsgpackLZ4, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath picks a format from a file name or URL path extension.
func FormatFromPath(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".msgpack.lz4"), strings.HasSuffix(name, ".lz4"):
		return FormatMsgpackLZ4, nil
	case strings.HasSuffix(name, ".msgpack"), strings.HasSuffix(name, ".mp"):
		return FormatMsgpack, nil
	case strings.HasSuffix(name, ".json"):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: cannot infer format of %q", ErrUnsupportedFormat, path)
	}
}

// Snapshot header constants. Binary snapshots start with a fixed header
// so a truncated or foreign file fails fast instead of decoding garbage.
const (
	MagicBytes    = "SCDS"
	FormatVersion = 1

	flagLZ4 uint8 = 1 << 0
)

// FileHeader is the fixed prefix of a binary snapshot.
type FileHeader struct {
	Magic    [4]byte
	Version  uint8
	Flags    uint8
	Reserved [2]byte
}

// Compressed reports whether the body is an lz4 frame.
func (h FileHeader) Compressed() bool { return h.Flags&flagLZ4 != 0 }

// WriteHeader writes a snapshot header to w.
func WriteHeader(w io.Writer, compressed bool) error {
	header := FileHeader{
		Magic:   [4]byte{MagicBytes[0], MagicBytes[1], MagicBytes[2], MagicBytes[3]},
		Version: FormatVersion,
	}
	if compressed {
		header.Flags |= flagLZ4
	}
	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates a snapshot header.
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %w", domain.ErrMalformedInput, err)
	}

	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("%w: invalid file format: expected %s, got %q",
			domain.ErrMalformedInput, MagicBytes, string(header.Magic[:]))
	}

	if header.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported file version: %d", domain.ErrMalformedInput, header.Version)
	}

	return &header, nil
}
