// Package srs schedules reviews with a two-level SM-2 variant.
package srs

import "math"

const (
	DefaultEasinessFactor = 2.5
	MinEasinessFactor     = 1.3

	QualityCorrect   = 5
	QualityIncorrect = 2

	passingQuality = 3
)

// Quality maps a self-reported outcome to an SM-2 quality grade.
func Quality(correct bool) int {
	if correct {
		return QualityCorrect
	}
	return QualityIncorrect
}

// UpdateEasinessFactor calculates the new EF for a quality grade.
// The result never falls below MinEasinessFactor.
func UpdateEasinessFactor(ef float64, quality int) float64 {
	if ef == 0 {
		ef = DefaultEasinessFactor
	}

	q := float64(quality)
	newEF := ef + 0.1 - (5-q)*(0.08+(5-q)*0.02)
	return math.Max(newEF, MinEasinessFactor)
}

// NextInterval calculates the interval in review cycles after a grade.
// On correct: 1, then 6, then round(interval * EF)
// On wrong: back to 1
func NextInterval(state State, quality int) float64 {
	if quality < passingQuality {
		return 1
	}

	switch state.Repetitions {
	case 0:
		return 1
	case 1:
		return 6
	default:
		ef := state.EasinessFactor
		if ef == 0 {
			ef = DefaultEasinessFactor
		}
		return math.Round(state.Interval * ef)
	}
}

// GradeState returns the state after grading at the given cycle. The EF is
// updated from the previous EF, the interval from the previous repetitions.
func GradeState(state State, correct bool, cycle int, jitter float64) State {
	quality := Quality(correct)

	next := state
	next.Interval = NextInterval(state, quality)
	if quality >= passingQuality {
		next.Repetitions++
		next.Lapsed = false
	} else {
		next.Repetitions = 0
		next.Lapsed = true
	}
	next.EasinessFactor = UpdateEasinessFactor(state.EasinessFactor, quality)
	next.DueCycle = float64(cycle) + next.Interval + jitter
	return next
}
