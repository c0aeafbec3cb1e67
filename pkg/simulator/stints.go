package simulator

import "f1strategybot/pkg/tyres"

// StintRun is a stint as it was actually driven, rebuilt from the lap trace.
type StintRun struct {
	Compound  tyres.Compound `json:"compound"`
	FirstLap  int            `json:"firstLap"`
	LastLap   int            `json:"lastLap"`
	Overdrawn bool           `json:"overdrawn"`
}

func (s StintRun) Laps() int {
	return s.LastLap - s.FirstLap + 1
}

// Stints groups the lap trace into driven stints. It returns nil when the
// result was produced without a lap trace.
func (r Result) Stints() []StintRun {
	if len(r.Laps) == 0 {
		return nil
	}
	runs := []StintRun{}
	for _, lap := range r.Laps {
		if lap.Pit || len(runs) == 0 {
			runs = append(runs, StintRun{Compound: lap.Compound, FirstLap: lap.Number})
		}
		cur := &runs[len(runs)-1]
		cur.LastLap = lap.Number
		if r.LimitsOverridden && lap.Number >= r.OverriddenAtLap {
			cur.Overdrawn = true
		}
	}
	return runs
}
