package srs

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateEasinessFactor(t *testing.T) {
	tests := []struct {
		name     string
		ef       float64
		quality  int
		expected float64
	}{
		{
			name:     "correct increases EF",
			ef:       2.5,
			quality:  QualityCorrect,
			expected: 2.6,
		},
		{
			name:     "incorrect decreases EF",
			ef:       2.5,
			quality:  QualityIncorrect,
			expected: 2.18, // 2.5 - 0.32
		},
		{
			name:     "EF floors at minimum",
			ef:       1.4,
			quality:  QualityIncorrect,
			expected: MinEasinessFactor,
		},
		{
			name:     "zero EF uses default",
			ef:       0,
			quality:  QualityCorrect,
			expected: 2.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateEasinessFactor(tt.ef, tt.quality)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestGradeState(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		correct bool
		cycle   int
		jitter  float64
		want    State
	}{
		{
			name:    "fresh item graded correct",
			state:   NewState(),
			correct: true,
			cycle:   0,
			want:    State{Repetitions: 1, Interval: 1, EasinessFactor: 2.6, DueCycle: 1},
		},
		{
			name:    "second correct uses six cycles",
			state:   State{Repetitions: 1, Interval: 1, EasinessFactor: 2.5},
			correct: true,
			cycle:   4,
			jitter:  0.5,
			want:    State{Repetitions: 2, Interval: 6, EasinessFactor: 2.6, DueCycle: 10.5},
		},
		{
			name:    "later correct multiplies by EF",
			state:   State{Repetitions: 3, Interval: 10, EasinessFactor: 2.0},
			correct: true,
			cycle:   10,
			jitter:  -1,
			want:    State{Repetitions: 4, Interval: 20, EasinessFactor: 2.1, DueCycle: 29},
		},
		{
			name:    "incorrect resets repetitions and interval",
			state:   State{Repetitions: 5, Interval: 40, EasinessFactor: 2.5, DueCycle: 50},
			correct: false,
			cycle:   12,
			want:    State{Repetitions: 0, Interval: 1, EasinessFactor: 2.18, DueCycle: 13, Lapsed: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GradeState(tt.state, tt.correct, tt.cycle, tt.jitter)
			assert.Equal(t, tt.want.Repetitions, got.Repetitions)
			assert.Equal(t, tt.want.Interval, got.Interval)
			assert.InDelta(t, tt.want.EasinessFactor, got.EasinessFactor, 1e-9)
			assert.InDelta(t, tt.want.DueCycle, got.DueCycle, 1e-9)
			assert.Equal(t, tt.want.Lapsed, got.Lapsed)
		})
	}
}

func TestGradeState_IntervalLadder(t *testing.T) {
	state := NewState()
	var intervals []float64
	for cycle := 0; cycle < 3; cycle++ {
		state = GradeState(state, true, cycle, 0)
		intervals = append(intervals, state.Interval)
	}

	// EF after the second grade is 2.7, round(6 * 2.7) = 16
	assert.Equal(t, []float64{1, 6, 16}, intervals)
	assert.Equal(t, 3, state.Repetitions)
}

func TestGradeState_EasinessFloorHolds(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	state := NewState()
	for cycle := 0; cycle < 2000; cycle++ {
		correct := rng.IntN(4) == 0
		state = GradeState(state, correct, cycle, rng.Float64()*2-1)
		if !assert.GreaterOrEqual(t, state.EasinessFactor, MinEasinessFactor) {
			return
		}
		if !correct {
			assert.Equal(t, 0, state.Repetitions)
			assert.Equal(t, 1.0, state.Interval)
		}
	}
}

func TestState_Valid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{name: "new state", state: NewState(), want: true},
		{name: "graded state", state: State{Repetitions: 2, Interval: 6, EasinessFactor: 2.6, DueCycle: 8.3}, want: true},
		{name: "negative due cycle is possible with jitter", state: State{EasinessFactor: 2.5, DueCycle: -0.5}, want: true},
		{name: "EF below floor", state: State{EasinessFactor: 1.2}, want: false},
		{name: "zero EF", state: State{}, want: false},
		{name: "negative repetitions", state: State{Repetitions: -1, EasinessFactor: 2.5}, want: false},
		{name: "negative interval", state: State{Interval: -1, EasinessFactor: 2.5}, want: false},
		{name: "NaN due cycle", state: State{EasinessFactor: 2.5, DueCycle: nan()}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Valid())
		})
	}
}
