package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseJSON accepts a bare array of cards or an object wrapping one under
// "cards" or "questions".
func ParseJSON(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty JSON deck")
	}

	if data[0] == '[' {
		var records []Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to decode JSON deck: %w", err)
		}
		return records, nil
	}

	var doc struct {
		Cards     []Record `json:"cards"`
		Questions []Record `json:"questions"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode JSON deck: %w", err)
	}
	if doc.Cards == nil && doc.Questions == nil {
		return nil, errors.New(`JSON deck has no "cards" or "questions" array`)
	}
	return append(doc.Cards, doc.Questions...), nil
}
