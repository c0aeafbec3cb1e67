package strategy

import (
	"f1strategybot/pkg/tyres"
	"fmt"
	"strconv"
	"strings"
)

// Stint is one segment of the race on a single compound. PlannedLaps is
// advisory: the simulator only changes tyres when their lifespan runs out.
type Stint struct {
	Compound    tyres.Compound `yaml:"compound" json:"compound"`
	PlannedLaps int            `yaml:"laps" json:"laps"`
}

type Strategy []Stint

func (s Strategy) String() string {
	parts := make([]string, len(s))
	for i, stint := range s {
		if stint.PlannedLaps > 0 {
			parts[i] = fmt.Sprintf("%s(%d)", stint.Compound, stint.PlannedLaps)
		} else {
			parts[i] = string(stint.Compound)
		}
	}
	return strings.Join(parts, " -> ")
}

func (s Strategy) PlannedLaps() int {
	total := 0
	for _, stint := range s {
		total += stint.PlannedLaps
	}
	return total
}

// Stops is the number of planned tyre changes.
func (s Strategy) Stops() int {
	if len(s) == 0 {
		return 0
	}
	return len(s) - 1
}

// Name builds the display name used for scenarios without an explicit one,
// e.g. "One-Stop: Soft -> Medium".
func (s Strategy) Name() string {
	compounds := make([]string, len(s))
	for i, stint := range s {
		compounds[i] = string(stint.Compound)
	}
	return fmt.Sprintf("%s: %s", stopsLabel(s.Stops()), strings.Join(compounds, " -> "))
}

func stopsLabel(stops int) string {
	switch stops {
	case 0:
		return "No-Stop"
	case 1:
		return "One-Stop"
	case 2:
		return "Two-Stop"
	case 3:
		return "Three-Stop"
	}
	return strconv.Itoa(stops) + "-Stop"
}

type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return "invalid strategy: " + e.Reason
	}
	return fmt.Sprintf("invalid stint %q: %s", e.Token, e.Reason)
}

// Parse reads a user entered strategy such as "Soft:25 Medium:33" or "S,M,H".
func Parse(text string) (Strategy, error) {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(tokens) == 0 {
		return nil, &ParseError{Reason: "no stints given"}
	}

	s := make(Strategy, 0, len(tokens))
	for _, token := range tokens {
		name, lapsStr, hasLaps := strings.Cut(token, ":")
		compound, err := tyres.ParseCompound(name)
		if err != nil {
			return nil, &ParseError{Token: token, Reason: err.Error()}
		}
		laps := 0
		if hasLaps {
			laps, err = strconv.Atoi(lapsStr)
			if err != nil {
				return nil, &ParseError{Token: token, Reason: "laps must be a number"}
			}
			if laps < 0 {
				return nil, &ParseError{Token: token, Reason: "laps must not be negative"}
			}
		}
		s = append(s, Stint{Compound: compound, PlannedLaps: laps})
	}
	return s, nil
}
