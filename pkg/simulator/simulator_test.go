package simulator

import (
	"context"
	"f1strategybot/pkg/strategy"
	"f1strategybot/pkg/tyres"
	"math"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func table(mediumLife int) tyres.Table {
	return tyres.Table{
		tyres.Soft:   {Pace: 1.25, Lifespan: 20},
		tyres.Medium: {Pace: 1.30, Lifespan: mediumLife},
		tyres.Hard:   {Pace: 1.35, Lifespan: 40},
	}
}

var softMedium = strategy.Strategy{
	{Compound: tyres.Soft, PlannedLaps: 25},
	{Compound: tyres.Medium, PlannedLaps: 33},
}

func TestSimulateOneStop(t *testing.T) {
	t.Run("Strict", func(t *testing.T) {
		// 20 laps on Soft, pit on lap 21, 38 laps on a Medium that lasts exactly 38.
		sim := New(table(38), WithLapTrace(true))
		res, err := sim.Simulate(softMedium, 58)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Completed() || res.Exhausted {
			t.Fatalf("expected race to be completed: %+v", res)
		}
		if !almostEqual(res.TotalTime, 94.4) {
			t.Errorf("expected total time %v but found %v", 94.4, res.TotalTime)
		}
		if res.PitStops != 1 {
			t.Errorf("expected %d pit stops but found %d", 1, res.PitStops)
		}
		if !reflect.DeepEqual(res.PitLaps, []int{21}) {
			t.Errorf("expected pit laps [21] but found %v", res.PitLaps)
		}
		if res.LimitsOverridden {
			t.Error("did not expect tyre limits to be overridden")
		}
		if len(res.Laps) != 58 {
			t.Fatalf("expected %d traced laps but found %d", 58, len(res.Laps))
		}
		lap21 := res.Laps[20]
		if !lap21.Pit || lap21.Compound != tyres.Medium || lap21.TyreAge != 1 {
			t.Errorf("unexpected lap 21: %+v", lap21)
		}
		if res.Laps[19].Compound != tyres.Soft || res.Laps[19].TyreAge != 20 {
			t.Errorf("unexpected lap 20: %+v", res.Laps[19])
		}
		if !almostEqual(res.Laps[57].Elapsed, res.TotalTime) {
			t.Errorf("last traced lap elapsed %v does not match total %v", res.Laps[57].Elapsed, res.TotalTime)
		}
	})

	t.Run("StrictMediumTooShort", func(t *testing.T) {
		// 20 + 33 laps of tyre cover 53 laps; lap 54 needs a third set.
		res, err := New(table(33)).Simulate(softMedium, 58)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Completed() || !res.Exhausted {
			t.Fatalf("expected strategy to be exhausted: %+v", res)
		}
		if res.ExhaustedAtLap != 54 {
			t.Errorf("expected exhaustion at lap %d but found %d", 54, res.ExhaustedAtLap)
		}
		if res.TotalTime != 0 {
			t.Errorf("expected no time for an exhausted strategy but found %v", res.TotalTime)
		}
	})

	t.Run("Lenient", func(t *testing.T) {
		res, err := New(table(33), WithPolicy(Lenient)).Simulate(softMedium, 58)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Completed() || res.Exhausted {
			t.Fatalf("expected race to be completed: %+v", res)
		}
		if !almostEqual(res.TotalTime, 94.4) {
			t.Errorf("expected total time %v but found %v", 94.4, res.TotalTime)
		}
		if res.PitStops != 1 {
			t.Errorf("expected %d pit stops but found %d", 1, res.PitStops)
		}
		if !res.LimitsOverridden || res.OverriddenAtLap != 54 {
			t.Errorf("expected limits overridden at lap 54: %+v", res)
		}
	})
}

func TestSimulateSingleSoftStint(t *testing.T) {
	single := strategy.Strategy{{Compound: tyres.Soft, PlannedLaps: 25}}

	t.Run("Strict", func(t *testing.T) {
		res, err := New(table(30)).Simulate(single, 25)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Exhausted || res.ExhaustedAtLap != 21 {
			t.Errorf("expected exhaustion at lap 21: %+v", res)
		}
		if res.Outcome != Exhausted {
			t.Errorf("expected outcome '%s' but found '%s'", Exhausted, res.Outcome)
		}
	})

	t.Run("Lenient", func(t *testing.T) {
		res, err := New(table(30), WithPolicy(Lenient)).Simulate(single, 25)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Exhausted {
			t.Error("lenient policy must not report exhaustion")
		}
		if res.TotalTime != 31.25 {
			t.Errorf("expected total time %v but found %v", 31.25, res.TotalTime)
		}
		if res.PitStops != 0 {
			t.Errorf("expected no pit stops but found %d", res.PitStops)
		}
		if !res.LimitsOverridden || res.OverriddenAtLap != 21 {
			t.Errorf("expected limits overridden at lap 21: %+v", res)
		}
	})
}

func TestSimulateLifespanBoundary(t *testing.T) {
	single := strategy.Strategy{{Compound: tyres.Soft}}
	res, err := New(table(30)).Simulate(single, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Completed() || res.PitStops != 0 {
		t.Errorf("a tyre reaching its lifespan on the last lap needs no stop: %+v", res)
	}
	if res.TotalTime != 25 {
		t.Errorf("expected total time %v but found %v", 25.0, res.TotalTime)
	}

	res, err = New(table(30)).Simulate(single, 21)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Exhausted || res.ExhaustedAtLap != 21 {
		t.Errorf("expected exhaustion one lap past the lifespan: %+v", res)
	}
}

func TestSimulateZeroLaps(t *testing.T) {
	for _, p := range []Policy{Strict, Lenient} {
		t.Run(p.String(), func(t *testing.T) {
			res, err := New(table(30), WithPolicy(p), WithLapTrace(true)).Simulate(softMedium, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !res.Completed() || res.TotalTime != 0 || res.PitStops != 0 || len(res.Laps) != 0 {
				t.Errorf("expected empty completed result: %+v", res)
			}
		})
	}
}

func TestSimulatePlannedLapsAreAdvisory(t *testing.T) {
	// planned 5 laps on Soft do not force an early stop
	s := strategy.Strategy{{Compound: tyres.Soft, PlannedLaps: 5}, {Compound: tyres.Hard, PlannedLaps: 5}}
	res, err := New(table(30)).Simulate(s, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(res.PitLaps, []int{21}) {
		t.Errorf("expected pit on lap 21 only but found %v", res.PitLaps)
	}
}

func TestSimulateValidation(t *testing.T) {
	tests := []struct {
		name     string
		sim      *Simulator
		strategy strategy.Strategy
		laps     int
		want     error
	}{
		{"empty strategy", New(table(30)), nil, 58, ErrEmptyStrategy},
		{"negative laps", New(table(30)), softMedium, -1, ErrNegativeLaps},
		{"too many laps", New(table(30)), softMedium, DefaultMaxLaps + 1, ErrTooManyLaps},
		{"max int laps", New(table(30), WithLapTrace(true)), softMedium, math.MaxInt, ErrTooManyLaps},
		{"custom lap limit", New(table(30), WithMaxLaps(50)), softMedium, 58, ErrTooManyLaps},
		{"unknown compound", New(table(30)), strategy.Strategy{{Compound: "Inter"}}, 10, ErrUnknownCompound},
		{"negative pit loss", New(table(30), WithPitStopLoss(-1)), softMedium, 10, ErrInvalidPitStopLoss},
		{"bad table", New(tyres.Table{tyres.Soft: {Pace: 1, Lifespan: 0}}), strategy.Strategy{{Compound: tyres.Soft}}, 10, ErrInvalidTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.sim.Simulate(tt.strategy, tt.laps)
			if err == nil {
				t.Fatalf("expected error but got result %+v", res)
			}
			if !IsValidation(err) {
				t.Errorf("expected a validation error but found %T", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected error to match %v but found %v", tt.want, err)
			}
			if !reflect.DeepEqual(res, Result{}) {
				t.Errorf("expected zero result on validation failure but found %+v", res)
			}
		})
	}
}

func TestSimulateAtLapLimit(t *testing.T) {
	sim := New(table(30), WithMaxLaps(58), WithPolicy(Lenient))
	res, err := sim.Simulate(softMedium, 58)
	if err != nil {
		t.Fatalf("unexpected error at the limit: %v", err)
	}
	if !res.Completed() {
		t.Errorf("expected a completed race, got %+v", res)
	}
	if New(table(30), WithMaxLaps(0)).MaxLaps() != DefaultMaxLaps {
		t.Error("expected non positive limits to keep the default")
	}
}

func TestValidationErrorCause(t *testing.T) {
	_, err := New(table(30)).Simulate(nil, 10)
	if errors.Cause(err) != ErrEmptyStrategy {
		t.Errorf("expected cause %v but found %v", ErrEmptyStrategy, errors.Cause(err))
	}
}

func TestSimulatePitStopsMatchLifespanEvents(t *testing.T) {
	s := strategy.Strategy{{Compound: tyres.Soft}, {Compound: tyres.Medium}, {Compound: tyres.Hard}}
	tbl := table(30)
	coverage := 20 + 30 + 40
	cumulative := []int{20, 50}

	sim := New(tbl)
	for laps := 1; laps <= coverage; laps++ {
		res, err := sim.Simulate(s, laps)
		if err != nil {
			t.Fatalf("laps %d: unexpected error: %v", laps, err)
		}
		want := 0
		for _, c := range cumulative {
			if c < laps {
				want++
			}
		}
		if res.PitStops != want {
			t.Errorf("laps %d: expected %d pit stops but found %d", laps, want, res.PitStops)
		}
		if res.PitStops >= len(s) {
			t.Errorf("laps %d: pit stops %d must stay below %d stints", laps, res.PitStops, len(s))
		}
		if !res.Completed() {
			t.Errorf("laps %d: expected completion within coverage", laps)
		}
	}
}

func TestSimulateTimeIsMonotonicInLaps(t *testing.T) {
	sim := New(tyres.DefaultTable(), WithPolicy(Lenient))
	for _, sc := range strategy.DefaultScenarios() {
		prev := 0.0
		for laps := 0; laps <= 80; laps++ {
			res, err := sim.Simulate(sc.Strategy, laps)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", sc.ID, err)
			}
			if res.TotalTime < prev {
				t.Fatalf("%s: time decreased from %v to %v at %d laps", sc.ID, prev, res.TotalTime, laps)
			}
			prev = res.TotalTime
		}
	}
}

func TestSimulateIsIdempotent(t *testing.T) {
	sim := New(tyres.DefaultTable(), WithLapTrace(true))
	for _, sc := range strategy.DefaultScenarios() {
		a, errA := sim.Simulate(sc.Strategy, 58)
		b, errB := sim.Simulate(sc.Strategy, 58)
		if errA != nil || errB != nil {
			t.Fatalf("%s: unexpected errors: %v %v", sc.ID, errA, errB)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: results differ between identical runs", sc.ID)
		}
	}
}

func TestDefaultScenarios(t *testing.T) {
	sim := New(tyres.DefaultTable())
	tests := map[string]struct {
		exhausted bool
		atLap     int
		pitStops  int
		time      float64
	}{
		// Soft 20 + Medium 30 cover 50 laps only.
		"one-stop-sm": {exhausted: true, atLap: 51, pitStops: 1},
		// Soft 20 + Soft 20 + Medium 18.
		"two-stop-ssm": {pitStops: 2, time: 40*1.25 + 18*1.30 + 2*DefaultPitStopLoss},
		// Medium 30 + Hard 28.
		"one-stop-mh": {pitStops: 1, time: 30*1.30 + 28*1.35 + DefaultPitStopLoss},
	}
	for _, sc := range strategy.DefaultScenarios() {
		want := tests[sc.ID]
		t.Run(sc.ID, func(t *testing.T) {
			res, err := sim.Simulate(sc.Strategy, 58)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Exhausted != want.exhausted {
				t.Fatalf("expected exhausted=%v but found %+v", want.exhausted, res)
			}
			if res.PitStops != want.pitStops {
				t.Errorf("expected %d pit stops but found %d", want.pitStops, res.PitStops)
			}
			if want.exhausted {
				if res.ExhaustedAtLap != want.atLap {
					t.Errorf("expected exhaustion at lap %d but found %d", want.atLap, res.ExhaustedAtLap)
				}
				return
			}
			if math.Abs(res.TotalTime-want.time) > 1e-6 {
				t.Errorf("expected total time %v but found %v", want.time, res.TotalTime)
			}
		})
	}
}

func TestWithCopiesSimulator(t *testing.T) {
	base := New(tyres.DefaultTable())
	lenient := base.With(WithPolicy(Lenient), WithPitStopLoss(25))
	if base.Policy() != Strict || base.PitStopLoss() != DefaultPitStopLoss {
		t.Error("With must not modify the receiver")
	}
	if lenient.Policy() != Lenient || lenient.PitStopLoss() != 25 {
		t.Errorf("unexpected copy settings: %v %v", lenient.Policy(), lenient.PitStopLoss())
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"strict": Strict, "LENIENT": Lenient, "": Strict} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("abort"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestCompare(t *testing.T) {
	sim := New(tyres.DefaultTable(), WithPolicy(Lenient))
	scenarios := strategy.DefaultScenarios()
	results, err := sim.Compare(context.Background(), scenarios, 58)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(scenarios) {
		t.Fatalf("expected %d results but found %d", len(scenarios), len(results))
	}
	for i, sc := range scenarios {
		want, _ := sim.Simulate(sc.Strategy, 58)
		if !reflect.DeepEqual(results[i], want) {
			t.Errorf("%s: result out of order or different", sc.ID)
		}
	}

	bad := append(strategy.Scenarios{}, scenarios...)
	bad = append(bad, strategy.Scenario{ID: "broken"})
	if _, err := sim.Compare(context.Background(), bad, 58); !errors.Is(err, ErrEmptyStrategy) {
		t.Errorf("expected empty strategy error but found %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sim.Compare(ctx, scenarios, 58); err == nil {
		t.Error("expected error for cancelled context")
	}
}
