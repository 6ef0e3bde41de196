package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ahrav/go-scout/internal/domain"
)

// Snapshot is the body of a binary dataset file.
type Snapshot struct {
	Records  []map[string]any `msgpack:"records"`
	Metadata map[string]any   `msgpack:"metadata,omitempty"`
}

// Decode reads a record collection in format from r. JSON input is either
// an array of records or an object with a "records" array. Numbers in
// JSON are kept as json.Number so integer team numbers survive exactly.
func Decode(r io.Reader, format Format) ([]map[string]any, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(r)
	case FormatMsgpack, FormatMsgpackLZ4:
		snap, err := decodeSnapshot(r, format == FormatMsgpackLZ4)
		if err != nil {
			return nil, err
		}
		return snap.Records, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Encode writes records to w in format.
func Encode(w io.Writer, records []map[string]any, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case FormatMsgpack, FormatMsgpackLZ4:
		return encodeSnapshot(w, Snapshot{Records: records}, format == FormatMsgpackLZ4)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func decodeJSON(r io.Reader) ([]map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}
	data = bytes.TrimSpace(data)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if len(data) > 0 && data[0] == '[' {
		var records []map[string]any
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("%w: failed to decode JSON: %w", domain.ErrMalformedInput, err)
		}
		return records, nil
	}

	var wrapped struct {
		Records []map[string]any `json:"records"`
	}
	if err := dec.Decode(&wrapped); err != nil {
		return nil, fmt.Errorf("%w: failed to decode JSON: %w", domain.ErrMalformedInput, err)
	}
	if wrapped.Records == nil {
		return nil, fmt.Errorf("%w: JSON must be an array of records or an object with a records array",
			domain.ErrMalformedInput)
	}
	return wrapped.Records, nil
}

func decodeSnapshot(r io.Reader, wantCompressed bool) (*Snapshot, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if header.Compressed() != wantCompressed {
		return nil, fmt.Errorf("%w: snapshot compression flag does not match the requested format",
			domain.ErrMalformedInput)
	}

	body := r
	if header.Compressed() {
		body = lz4.NewReader(r)
	}

	var snap Snapshot
	if err := msgpack.NewDecoder(body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: failed to decode MessagePack: %w", domain.ErrMalformedInput, err)
	}
	return &snap, nil
}

func encodeSnapshot(w io.Writer, snap Snapshot, compressed bool) error {
	if err := WriteHeader(w, compressed); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if !compressed {
		if err := msgpack.NewEncoder(w).Encode(snap); err != nil {
			return fmt.Errorf("failed to encode MessagePack: %w", err)
		}
		return nil
	}

	zw := lz4.NewWriter(w)
	if err := msgpack.NewEncoder(zw).Encode(snap); err != nil {
		return fmt.Errorf("failed to encode MessagePack: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to compress data: %w", err)
	}
	return nil
}
