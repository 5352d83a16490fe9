package domain

import "time"

// SessionType distinguishes free practice from a scored test run.
type SessionType string

const (
	Practice SessionType = "practice"
	Test     SessionType = "test"
)

// Session is one practice or test run.
// EndedAt and CorrectAnswers stay nil until the session is ended.
type Session struct {
	ID             int64       `json:"id" db:"id"`
	StartedAt      time.Time   `json:"started_at" db:"started_at" validate:"required"`
	EndedAt        *time.Time  `json:"ended_at,omitempty" db:"ended_at"`
	TotalQuestions int         `json:"total_questions" db:"total_questions" validate:"min=0"`
	CorrectAnswers *int        `json:"correct_answers,omitempty" db:"correct_answers"`
	SessionType    SessionType `json:"session_type" db:"session_type" validate:"oneof=practice test"`
}

// Ended reports whether the session has been closed.
func (s Session) Ended() bool {
	return s.EndedAt != nil
}

// Attempt is one answer given to a card within a session. Attempts are never modified.
type Attempt struct {
	ID          int64     `json:"id" db:"id"`
	SessionID   int64     `json:"session_id" db:"session_id" validate:"gt=0"`
	CardID      int64     `json:"card_id" db:"card_id" validate:"gt=0"`
	UserAnswer  string    `json:"user_answer" db:"user_answer"`
	IsCorrect   bool      `json:"is_correct" db:"is_correct"`
	TimeTaken   int       `json:"time_taken" db:"time_taken" validate:"min=0"` // seconds
	AttemptedAt time.Time `json:"attempted_at" db:"attempted_at"`
}
