package srs

// DrillPolicy drills missed items first and retires items answered
// correctly masteryThreshold times in a row. Once every item of the pool is
// retired, all of them are eligible again.
type DrillPolicy struct {
	masteryThreshold int
	rng              Rand
}

func NewDrillPolicy(masteryThreshold int, rng Rand) *DrillPolicy {
	if masteryThreshold <= 0 {
		masteryThreshold = DefaultMasteryThreshold
	}
	if rng == nil {
		rng = NewRand()
	}
	return &DrillPolicy{
		masteryThreshold: masteryThreshold,
		rng:              rng,
	}
}

func (p *DrillPolicy) Select(pool []*Item, _ int) *Item {
	if len(pool) == 0 {
		return nil
	}

	var missed, learning []*Item
	for _, item := range pool {
		switch {
		case item.State.Lapsed:
			missed = append(missed, item)
		case !p.Mastered(item):
			learning = append(learning, item)
		}
	}

	candidates := pool
	if len(missed) > 0 {
		candidates = missed
	} else if len(learning) > 0 {
		candidates = learning
	}
	return candidates[p.rng.IntN(len(candidates))]
}

// Grade keeps EF and interval as they are.
func (p *DrillPolicy) Grade(item *Item, correct bool, cycle int) int {
	if correct {
		item.State.Repetitions++
		item.State.Lapsed = false
	} else {
		item.State.Repetitions = 0
		item.State.Lapsed = true
	}
	item.State.DueCycle = float64(cycle)
	item.Tally.record(correct)
	return cycle + 1
}

func (p *DrillPolicy) Mastered(item *Item) bool {
	return item.State.Repetitions >= p.masteryThreshold
}
