package domain

import "time"

// QuestionType tells how a card is answered.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	FillInBlank    QuestionType = "fill_in_blank"
)

// Card is a single stored question.
// Option fields are only meaningful for multiple-choice cards and
// BlankAnswer only for fill-in-the-blank cards. Absent values are empty strings.
type Card struct {
	ID            int64        `json:"id" db:"id"`
	Question      string       `json:"question" db:"question" validate:"required,notblank"`
	OptionA       string       `json:"option_a" db:"option_a"`
	OptionB       string       `json:"option_b" db:"option_b"`
	OptionC       string       `json:"option_c" db:"option_c"`
	OptionD       string       `json:"option_d" db:"option_d"`
	OptionE       string       `json:"option_e" db:"option_e"`
	CorrectAnswer string       `json:"correct_answer" db:"correct_answer"`
	BlankAnswer   string       `json:"blank_answer" db:"blank_answer"`
	QuestionType  QuestionType `json:"question_type" db:"question_type" validate:"oneof=multiple_choice fill_in_blank"`
	Subject       string       `json:"subject" db:"subject" validate:"required,notblank"`
	Difficulty    int          `json:"difficulty" db:"difficulty" validate:"min=1"`
	ImagePath     string       `json:"image_path" db:"image_path"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// WithDefaults fills the fields the store would otherwise default.
func (c Card) WithDefaults() Card {
	if c.QuestionType == "" {
		c.QuestionType = MultipleChoice
	}
	if c.Difficulty == 0 {
		c.Difficulty = 1
	}
	return c
}

// Options returns the five option slots in A..E order.
func (c Card) Options() []string {
	return []string{c.OptionA, c.OptionB, c.OptionC, c.OptionD, c.OptionE}
}
