package srs

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	PolicySM2   = "sm2"
	PolicyDrill = "drill"

	DefaultJitterRange      = 1.0
	DefaultEpsilon          = 1e-9
	DefaultMasteryThreshold = 3
)

// Rand is the randomness used for selection and jitter. *rand.Rand satisfies
// it. Implementations are not required to be safe for concurrent use.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// NewRand returns a randomly seeded source.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Policy picks the next item of a pool and grades it.
type Policy interface {
	// Select returns nil for an empty pool. It never mutates items.
	Select(pool []*Item, cycle int) *Item
	// Grade updates the item and returns the next cycle.
	Grade(item *Item, correct bool, cycle int) int
}

type Config struct {
	Policy      string
	JitterRange float64
	Epsilon     float64
	// ResetCycleOnCatalogChange resets the cycle and item states when the
	// catalog mode changes, e.g. switching number ranges.
	ResetCycleOnCatalogChange bool
	MasteryThreshold          int
}

func DefaultConfig() Config {
	return Config{
		Policy:           PolicySM2,
		JitterRange:      DefaultJitterRange,
		Epsilon:          DefaultEpsilon,
		MasteryThreshold: DefaultMasteryThreshold,
	}
}

// NewPolicy builds the policy named in the config.
func NewPolicy(cfg Config, rng Rand) (Policy, error) {
	switch cfg.Policy {
	case "", PolicySM2:
		return NewScheduler(cfg, rng), nil
	case PolicyDrill:
		return NewDrillPolicy(cfg.MasteryThreshold, rng), nil
	default:
		return nil, fmt.Errorf("unknown scheduling policy %q", cfg.Policy)
	}
}

// SelectNext picks uniformly among the items due at cycle. When nothing is
// due, it picks uniformly among the items sharing the soonest due cycle.
func SelectNext(pool []*Item, cycle int, epsilon float64, rng Rand) *Item {
	if len(pool) == 0 {
		return nil
	}

	now := float64(cycle) + epsilon
	soonest := math.Inf(1)
	var due []*Item
	for _, item := range pool {
		if item.State.DueCycle <= now {
			due = append(due, item)
		}
		soonest = math.Min(soonest, item.State.DueCycle)
	}
	if len(due) > 0 {
		return due[rng.IntN(len(due))]
	}

	var ties []*Item
	for _, item := range pool {
		if item.State.DueCycle <= soonest+epsilon {
			ties = append(ties, item)
		}
	}
	return ties[rng.IntN(len(ties))]
}

// Scheduler is the SM-2 policy with due cycle jitter.
type Scheduler struct {
	jitterRange float64
	epsilon     float64
	rng         Rand
}

// NewScheduler falls back to DefaultEpsilon when cfg.Epsilon is not
// positive, so a due cycle is never compared exactly.
func NewScheduler(cfg Config, rng Rand) *Scheduler {
	if rng == nil {
		rng = NewRand()
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = DefaultEpsilon
	}
	return &Scheduler{
		jitterRange: cfg.JitterRange,
		epsilon:     cfg.Epsilon,
		rng:         rng,
	}
}

func (s *Scheduler) Select(pool []*Item, cycle int) *Item {
	return SelectNext(pool, cycle, s.epsilon, s.rng)
}

func (s *Scheduler) Grade(item *Item, correct bool, cycle int) int {
	item.State = GradeState(item.State, correct, cycle, s.jitter())
	item.Tally.record(correct)
	return cycle + 1
}

// jitter is uniform in [-jitterRange, jitterRange].
func (s *Scheduler) jitter() float64 {
	if s.jitterRange <= 0 {
		return 0
	}
	return (s.rng.Float64()*2 - 1) * s.jitterRange
}
