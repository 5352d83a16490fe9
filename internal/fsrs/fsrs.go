package fsrs

import (
	"math"
	"time"

	"github.com/conorfennell/testdeck/internal/domain"
)

// Rating is the grade given to one review of a card.
type Rating int

const (
	Again Rating = 1
	Hard  Rating = 2
	Good  Rating = 3
	Easy  Rating = 4
)

// RatingFor grades an answer. Wrong answers are Again. Right answers are
// graded by how long they took in seconds; 0 means the time was not recorded.
func RatingFor(correct bool, timeTaken int) Rating {
	switch {
	case !correct:
		return Again
	case timeTaken <= 0:
		return Good
	case timeTaken <= 10:
		return Easy
	case timeTaken <= 30:
		return Good
	default:
		return Hard
	}
}

// CardState is the review state of one card.
type CardState struct {
	Reviews     int       `json:"reviews"`
	Repetitions int       `json:"repetitions"` // consecutive successful reviews
	Stability   float64   `json:"stability,omitempty"`
	Difficulty  float64   `json:"difficulty,omitempty"`
	EaseFactor  float64   `json:"ease_factor,omitempty"`
	Interval    int       `json:"interval_days"`
	LastReview  time.Time `json:"last_review"`
	Due         time.Time `json:"due"`
}

// IsDue reports whether the card should be reviewed at now.
// A card that was never reviewed is always due.
func (c CardState) IsDue(now time.Time) bool {
	return !now.Before(c.Due)
}

// Scheduler advances a card's state by one review taken at the given time.
type Scheduler interface {
	Next(state CardState, rating Rating, at time.Time) CardState
}

// Replay folds a card's attempts, oldest first, through the scheduler.
func Replay(s Scheduler, attempts []domain.Attempt) CardState {
	var state CardState
	for _, a := range attempts {
		state = s.Next(state, RatingFor(a.IsCorrect, a.TimeTaken), a.AttemptedAt)
	}
	return state
}

// Params holds the parameters for the FSRS algorithm.
type Params struct {
	A                 float64 // scales the overall memory increase
	B                 float64 // difficulty exponent
	C                 float64 // stability exponent
	D                 float64 // retention effect scaler
	DesiredRetention  float64 // desired retention rate (e.g., 0.9 for 90%)
	InitialDifficulty float64 // difficulty of a card before its first review
}

// DefaultParams provides a set of sensible default parameters to start with.
func DefaultParams() *Params {
	return &Params{
		A:                 0.2,
		B:                 0.5,
		C:                 0.1,
		D:                 4.0,
		DesiredRetention:  0.9,
		InitialDifficulty: 5.0,
	}
}

// NextState calculates the next stability and difficulty based on a review at the given time.
func (p *Params) NextState(currentState CardState, rating Rating, at time.Time) CardState {
	next := currentState
	next.LastReview = at

	difficulty := currentState.Difficulty
	if difficulty == 0 {
		difficulty = p.InitialDifficulty
	}

	if rating == Again {
		// A lapse resets stability to one day and makes the card harder.
		next.Stability = 1
		next.Difficulty = math.Min(10, difficulty+0.5)
		return next
	}

	next.Stability = p.calculateNewStability(currentState.Stability, difficulty)
	next.Difficulty = difficulty
	if rating == Hard {
		next.Difficulty = math.Min(10, difficulty+0.1)
	}
	return next
}

// Next implements Scheduler.
func (p *Params) Next(state CardState, rating Rating, at time.Time) CardState {
	next := p.NextState(state, rating, at)
	next.Reviews++
	if rating == Again {
		next.Repetitions = 0
	} else {
		next.Repetitions++
	}
	next.Interval = intervalDays(next.Stability)
	next.Due = NextDueDate(at, next.Interval)
	return next
}

// calculateNewStability applies the core FSRS formula for a successful review.
func (p *Params) calculateNewStability(stability, difficulty float64) float64 {
	// Formula: S' = S * (1 + a * D^(-b) * S^c * (e^(d * (1-R)) - 1))
	if stability < 1 {
		stability = 1 // Ensure stability is at least 1 to avoid issues with pow
	}
	if difficulty < 1 {
		difficulty = 1 // Ensure difficulty is at least 1
	}

	factor := p.A * math.Pow(difficulty, -p.B) * math.Pow(stability, p.C)
	exponent := p.D * (1 - p.DesiredRetention)
	multiplier := math.Exp(exponent) - 1

	return stability * (1 + factor*multiplier)
}

// intervalDays rounds a stability to whole days, never less than one.
func intervalDays(stability float64) int {
	return max(1, int(math.Round(stability)))
}

// NextDueDate returns the date interval days after from.
func NextDueDate(from time.Time, interval int) time.Time {
	return from.AddDate(0, 0, interval)
}
