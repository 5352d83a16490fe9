package fsrs

import (
	"math"
	"time"
)

// SM2 is the SuperMemo-2 scheduler: the first two successful reviews are one
// and six days apart, later ones grow by the ease factor.
type SM2 struct {
	InitialEase float64
	MinEase     float64
}

func DefaultSM2() SM2 {
	return SM2{InitialEase: 2.5, MinEase: 1.3}
}

// quality maps a rating onto the SM-2 0..5 scale.
func (r Rating) quality() float64 {
	switch r {
	case Hard:
		return 3
	case Good:
		return 4
	case Easy:
		return 5
	}
	return 0
}

// Next implements Scheduler.
func (s SM2) Next(state CardState, rating Rating, at time.Time) CardState {
	q := rating.quality()
	ease := state.EaseFactor
	if ease == 0 {
		ease = s.InitialEase
	}

	next := state
	next.Reviews++
	if q < 3 {
		next.Repetitions = 0
		next.Interval = 1
	} else {
		next.Repetitions++
		switch next.Repetitions {
		case 1:
			next.Interval = 1
		case 2:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(state.Interval) * ease))
		}
	}

	next.EaseFactor = math.Max(s.MinEase, ease+(0.1-(5-q)*(0.08+(5-q)*0.02)))
	next.LastReview = at
	next.Due = NextDueDate(at, next.Interval)
	return next
}
