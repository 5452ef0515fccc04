package punch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DecodeMode selects how DecodeRecords reacts to a body it cannot read.
type DecodeMode int

const (
	// Lenient degrades undecodable bodies to an empty list.
	Lenient DecodeMode = iota

	// Strict reports undecodable bodies as errors.
	Strict
)

// ErrUnknownShape is returned in Strict mode for a body that is neither an
// array, a {"data": [...]} wrapper, nor a single punch record. An object
// with no id, username or status is not a punch record.
var ErrUnknownShape = errors.New("unrecognised punch list shape")

// DecodeRecords normalises a punch-list response body into a slice.
//
// Accepted shapes:
//   - [ {...}, {...} ]
//   - { "data": [ {...} ] }
//   - { ... } (a single record)
//
// An empty body, JSON null or {"data": null} is an empty list in both modes.
func DecodeRecords(body []byte, mode DecodeMode) ([]Record, error) {
	records, err := decodeRecords(body)
	if err != nil {
		if mode == Strict {
			return nil, err
		}
		return []Record{}, nil
	}
	return records, nil
}

func decodeRecords(body []byte) ([]Record, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []Record{}, nil
	}

	switch body[0] {
	case '[':
		var list []Record
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("decode punch array: %w", err)
		}
		return list, nil

	case '{':
		var wrapper struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, fmt.Errorf("decode punch object: %w", err)
		}
		data := bytes.TrimSpace(wrapper.Data)
		if len(data) > 0 && data[0] == '[' {
			var list []Record
			if err := json.Unmarshal(data, &list); err != nil {
				return nil, fmt.Errorf("decode wrapped punch array: %w", err)
			}
			return list, nil
		}

		var single Record
		if err := json.Unmarshal(body, &single); err != nil {
			return nil, fmt.Errorf("decode single punch: %w", err)
		}
		if single.identified() {
			return []Record{single}, nil
		}
		if bytes.Equal(data, []byte("null")) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("%w: object is not a punch record", ErrUnknownShape)
	}

	return nil, fmt.Errorf("%w: body starts with %q", ErrUnknownShape, body[0])
}
