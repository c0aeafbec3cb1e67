package simulator

import (
	"f1strategybot/pkg/strategy"
	"f1strategybot/pkg/tyres"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultPitStopLoss = 20.0
	// DefaultMaxLaps is far above any real race distance.
	DefaultMaxLaps = 1000
)

// Lap is one entry of the lap trace.
type Lap struct {
	Number   int            `json:"lap"`
	Compound tyres.Compound `json:"compound"`
	TyreAge  int            `json:"tyreAge"`
	Pace     float64        `json:"pace"`
	Elapsed  float64        `json:"elapsed"`
	Pit      bool           `json:"pit"`
}

type Result struct {
	Outcome          Outcome `json:"outcome"`
	Policy           Policy  `json:"policy"`
	TotalLaps        int     `json:"totalLaps"`
	TotalTime        float64 `json:"totalTime"`
	PitStops         int     `json:"pitStops"`
	PitLaps          []int   `json:"pitLaps"`
	StintsUsed       int     `json:"stintsUsed"`
	Exhausted        bool    `json:"exhausted"`
	ExhaustedAtLap   int     `json:"exhaustedAtLap,omitempty"`
	LimitsOverridden bool    `json:"limitsOverridden"`
	OverriddenAtLap  int     `json:"overriddenAtLap,omitempty"`
	Laps             []Lap   `json:"laps,omitempty"`
}

// Completed reports whether the race distance was covered. TotalTime is
// meaningless otherwise.
func (r Result) Completed() bool {
	return r.Outcome == Completed
}

type Simulator struct {
	table       tyres.Table
	pitStopLoss float64
	policy      Policy
	trace       bool
	maxLaps     int
	logger      zerolog.Logger
}

type Option func(*Simulator)

func WithPitStopLoss(seconds float64) Option {
	return func(s *Simulator) {
		s.pitStopLoss = seconds
	}
}

func WithPolicy(p Policy) Option {
	return func(s *Simulator) {
		s.policy = p
	}
}

// WithLapTrace records every simulated lap in Result.Laps.
func WithLapTrace(enabled bool) Option {
	return func(s *Simulator) {
		s.trace = enabled
	}
}

// WithMaxLaps bounds the race distance accepted by Simulate. Values below one
// keep DefaultMaxLaps.
func WithMaxLaps(laps int) Option {
	return func(s *Simulator) {
		if laps > 0 {
			s.maxLaps = laps
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

func New(table tyres.Table, opts ...Option) *Simulator {
	s := &Simulator{
		table:       table,
		pitStopLoss: DefaultPitStopLoss,
		policy:      Strict,
		maxLaps:     DefaultMaxLaps,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// With returns a copy of the simulator with opts applied on top.
func (s *Simulator) With(opts ...Option) *Simulator {
	c := *s
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

func (s *Simulator) Policy() Policy {
	return s.policy
}

func (s *Simulator) PitStopLoss() float64 {
	return s.pitStopLoss
}

func (s *Simulator) MaxLaps() int {
	return s.maxLaps
}

func (s *Simulator) Table() tyres.Table {
	return s.table
}

func (s *Simulator) validate(strat strategy.Strategy, totalLaps int) error {
	if len(strat) == 0 {
		return &ValidationError{Field: "strategy", Err: ErrEmptyStrategy}
	}
	if totalLaps < 0 {
		return &ValidationError{Field: "total laps", Value: totalLaps, Err: ErrNegativeLaps}
	}
	if totalLaps > s.maxLaps {
		return &ValidationError{Field: "total laps", Value: totalLaps, Err: errors.Wrapf(ErrTooManyLaps, "max %d", s.maxLaps)}
	}
	if s.pitStopLoss < 0 {
		return &ValidationError{Field: "pit stop loss", Value: s.pitStopLoss, Err: ErrInvalidPitStopLoss}
	}
	if err := s.table.Validate(); err != nil {
		return &ValidationError{Field: "tyre table", Err: errors.Wrap(ErrInvalidTable, err.Error())}
	}
	for i, stint := range strat {
		if _, ok := s.table.Lookup(stint.Compound); !ok {
			return &ValidationError{Field: "compound", Value: stint.Compound, Err: errors.Wrapf(ErrUnknownCompound, "stint %d", i+1)}
		}
	}
	return nil
}

// Simulate runs the race lap by lap. Tyres are changed only when the current
// set has reached its lifespan at the start of a lap; planned stint lengths
// are not enforced. Invalid input is rejected before the first lap.
func (s *Simulator) Simulate(strat strategy.Strategy, totalLaps int) (Result, error) {
	if err := s.validate(strat, totalLaps); err != nil {
		return Result{}, err
	}

	res := Result{
		Outcome:    Completed,
		Policy:     s.policy,
		TotalLaps:  totalLaps,
		PitLaps:    []int{},
		StintsUsed: 1,
	}
	if totalLaps == 0 {
		return res, nil
	}
	if s.trace {
		res.Laps = make([]Lap, 0, totalLaps)
	}

	elapsed := 0.0
	stintIdx := 0
	lapsOnTyre := 0
	compound := strat[0].Compound
	spec := s.table[compound]

	for lap := 1; lap <= totalLaps; lap++ {
		pit := false
		if lapsOnTyre >= spec.Lifespan && !res.LimitsOverridden {
			if stintIdx+1 >= len(strat) {
				if s.policy == Strict {
					s.logger.Debug().
						Str("strategy", strat.String()).
						Int("lap", lap).
						Msg("strategy ran out of tyres")
					res.Outcome = Exhausted
					res.Exhausted = true
					res.ExhaustedAtLap = lap
					return res, nil
				}
				s.logger.Debug().
					Str("strategy", strat.String()).
					Str("compound", string(compound)).
					Int("lap", lap).
					Msg("tyre lifespan overridden")
				res.LimitsOverridden = true
				res.OverriddenAtLap = lap
			} else {
				stintIdx++
				res.PitStops++
				res.PitLaps = append(res.PitLaps, lap)
				res.StintsUsed++
				elapsed += s.pitStopLoss
				compound = strat[stintIdx].Compound
				spec = s.table[compound]
				lapsOnTyre = 0
				pit = true
			}
		}

		elapsed += spec.Pace
		lapsOnTyre++

		if s.trace {
			res.Laps = append(res.Laps, Lap{
				Number:   lap,
				Compound: compound,
				TyreAge:  lapsOnTyre,
				Pace:     spec.Pace,
				Elapsed:  elapsed,
				Pit:      pit,
			})
		}
	}

	res.TotalTime = elapsed
	return res, nil
}
