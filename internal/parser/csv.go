package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// csvColumns maps accepted header names onto Record fields.
var csvColumns = map[string]func(*Record, string){
	"question":       func(r *Record, v string) { r.Question = v },
	"q":              func(r *Record, v string) { r.Question = v },
	"option_a":       func(r *Record, v string) { r.OptionA = v },
	"a":              func(r *Record, v string) { r.OptionA = v },
	"option_b":       func(r *Record, v string) { r.OptionB = v },
	"b":              func(r *Record, v string) { r.OptionB = v },
	"option_c":       func(r *Record, v string) { r.OptionC = v },
	"c":              func(r *Record, v string) { r.OptionC = v },
	"option_d":       func(r *Record, v string) { r.OptionD = v },
	"d":              func(r *Record, v string) { r.OptionD = v },
	"option_e":       func(r *Record, v string) { r.OptionE = v },
	"e":              func(r *Record, v string) { r.OptionE = v },
	"answer":         func(r *Record, v string) { r.Answer = v },
	"correct_answer": func(r *Record, v string) { r.CorrectAnswer = v },
	"correct":        func(r *Record, v string) { r.CorrectAnswer = v },
	"blank_answer":   func(r *Record, v string) { r.BlankAnswer = v },
	"question_type":  func(r *Record, v string) { r.QuestionType = v },
	"type":           func(r *Record, v string) { r.QuestionType = v },
	"subject":        func(r *Record, v string) { r.Subject = v },
	"topic":          func(r *Record, v string) { r.Subject = v },
	"image_path":     func(r *Record, v string) { r.ImagePath = v },
	"image":          func(r *Record, v string) { r.ImagePath = v },
	"difficulty": func(r *Record, v string) {
		// Unparseable difficulty falls back to the default level.
		r.Difficulty, _ = strconv.Atoi(strings.TrimSpace(v))
	},
}

// ParseCSV reads a deck with a header row. Unknown columns are ignored and
// rows without a question are skipped.
func ParseCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty CSV deck")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	setters := make([]func(*Record, string), len(header))
	known := false
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		setters[i] = csvColumns[name]
		if setters[i] != nil {
			known = true
		}
	}
	if !known {
		return nil, errors.New("CSV header has no recognised columns")
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		var rec Record
		for i, value := range row {
			if i < len(setters) && setters[i] != nil {
				setters[i](&rec, value)
			}
		}
		if strings.TrimSpace(rec.Question) == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
