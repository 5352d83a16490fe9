package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jinzhu/copier"

	"github.com/conorfennell/testdeck/internal/domain"
)

// ErrUnsupported is returned for files that are not a known deck format.
var ErrUnsupported = errors.New("unsupported deck format")

// Record is a card as it appears in a deck file, before normalization.
// Answer is the format-neutral answer column: it becomes the correct option
// letter for multiple-choice cards and the blank answer otherwise.
type Record struct {
	Question      string `json:"question"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	OptionE       string `json:"option_e"`
	Answer        string `json:"answer"`
	CorrectAnswer string `json:"correct_answer"`
	BlankAnswer   string `json:"blank_answer"`
	QuestionType  string `json:"question_type"`
	Subject       string `json:"subject"`
	Difficulty    int    `json:"difficulty"`
	ImagePath     string `json:"image_path"`
}

// Supported reports whether path has a deck file extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".json", ".csv":
		return true
	}
	return false
}

// ParseFile reads a deck file and returns its cards, normalized but not validated.
// The format is chosen by extension.
func ParseFile(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []Record
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".md", ".markdown":
		subject := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		records, err = ParseMarkdown(file, subject)
	case ".json":
		records, err = ParseJSON(file)
	case ".csv":
		records, err = ParseCSV(file)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	if err != nil {
		return nil, err
	}

	cards := make([]domain.Card, 0, len(records))
	for i, rec := range records {
		card, err := rec.Card()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Card normalizes the record into a domain card.
func (r Record) Card() (domain.Card, error) {
	r.trim()

	hasOptions := false
	for _, opt := range []string{r.OptionA, r.OptionB, r.OptionC, r.OptionD, r.OptionE} {
		if opt != "" {
			hasOptions = true
			break
		}
	}

	if r.Answer != "" {
		if hasOptions && isOptionLetter(r.Answer) && r.CorrectAnswer == "" {
			r.CorrectAnswer = r.Answer
		} else if !hasOptions && r.BlankAnswer == "" {
			r.BlankAnswer = r.Answer
		}
	}
	r.CorrectAnswer = strings.ToUpper(r.CorrectAnswer)

	if r.QuestionType == "" {
		r.QuestionType = string(domain.MultipleChoice)
		if !hasOptions && r.BlankAnswer != "" {
			r.QuestionType = string(domain.FillInBlank)
		}
	}
	if r.Difficulty < 1 {
		r.Difficulty = 1
	}

	var card domain.Card
	if err := copier.Copy(&card, &r); err != nil {
		return domain.Card{}, fmt.Errorf("failed to map record: %w", err)
	}
	return card, nil
}

func (r *Record) trim() {
	for _, f := range []*string{
		&r.Question, &r.OptionA, &r.OptionB, &r.OptionC, &r.OptionD, &r.OptionE,
		&r.Answer, &r.CorrectAnswer, &r.BlankAnswer, &r.QuestionType, &r.Subject, &r.ImagePath,
	} {
		*f = strings.TrimSpace(*f)
	}
	r.QuestionType = strings.ToLower(r.QuestionType)
}

func isOptionLetter(s string) bool {
	return len(s) == 1 && strings.ContainsAny(strings.ToUpper(s), "ABCDE")
}

// setOption stores text in the i-th option slot (0 = A). Slots past E are dropped.
func (r *Record) setOption(i int, text string) bool {
	slots := []*string{&r.OptionA, &r.OptionB, &r.OptionC, &r.OptionD, &r.OptionE}
	if i < 0 || i >= len(slots) {
		return false
	}
	*slots[i] = text
	return true
}
