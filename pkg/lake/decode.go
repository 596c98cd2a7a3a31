package lake

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileShape distinguishes the two record-bearing layouts a lake file may
// have. The shape is resolved once per file, not re-inspected per consumer.
type FileShape int

const (
	ShapeSingleRecord FileShape = iota
	ShapeRecordSequence
)

// DecodedFile is the tagged result of decoding one lake file: either one
// record object or an ordered sequence of record objects.
type DecodedFile struct {
	Shape   FileShape
	Records []map[string]any
}

// DecodeFile parses raw file bytes as a single record object or an array of
// record objects. Any other JSON value, or malformed input, is an error and
// the whole file is skipped by the caller.
func DecodeFile(data []byte) (*DecodedFile, error) {
	switch jsoniter.Get(data).ValueType() {
	case jsoniter.ObjectValue:
		var record map[string]any
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("failed to decode record object: %w", err)
		}
		return &DecodedFile{Shape: ShapeSingleRecord, Records: []map[string]any{record}}, nil

	case jsoniter.ArrayValue:
		var records []map[string]any
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to decode record sequence: %w", err)
		}
		return &DecodedFile{Shape: ShapeRecordSequence, Records: records}, nil

	default:
		return nil, fmt.Errorf("file is neither a record object nor a record sequence")
	}
}

// DecodeRaw parses raw file bytes into generic JSON values without
// normalization, preserving the single/sequence distinction as a flat item
// slice. Used by the dataset read path, which returns lake content verbatim.
func DecodeRaw(data []byte) ([]any, error) {
	switch jsoniter.Get(data).ValueType() {
	case jsoniter.ObjectValue:
		var item any
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("failed to decode file: %w", err)
		}
		return []any{item}, nil

	case jsoniter.ArrayValue:
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to decode file: %w", err)
		}
		return items, nil

	default:
		return nil, fmt.Errorf("file is neither a record object nor a record sequence")
	}
}
