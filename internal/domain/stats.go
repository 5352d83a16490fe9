package domain

// SubjectStat aggregates activity for every card sharing a subject.
// Accuracy is a percentage rounded to two decimals and is 0 when there are no attempts.
type SubjectStat struct {
	Subject         string  `json:"subject" db:"subject"`
	TotalCards      int     `json:"total_cards" db:"total_cards"`
	TotalAttempts   int     `json:"total_attempts" db:"total_attempts"`
	CorrectAttempts int     `json:"correct_attempts" db:"correct_attempts"`
	Accuracy        float64 `json:"accuracy" db:"accuracy"`
}

// DailyStat aggregates the sessions started on one calendar day (UTC).
type DailyStat struct {
	Date           string  `json:"date" db:"date"` // YYYY-MM-DD
	Sessions       int     `json:"sessions" db:"sessions"`
	TotalQuestions int     `json:"total_questions" db:"total_questions"`
	CorrectAnswers int     `json:"correct_answers" db:"correct_answers"`
	Accuracy       float64 `json:"accuracy" db:"accuracy"`
}
