package simulator

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Policy decides what happens when the current tyre is worn out and the
// strategy has no stint left to switch to.
type Policy int

const (
	// Strict stops the race at the lap that needed a new tyre.
	Strict Policy = iota
	// Lenient keeps running on the last compound past its lifespan.
	Lenient
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	}
	return Strict, errors.Errorf("unknown exhaustion policy %q", s)
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

type Outcome int

const (
	Completed Outcome = iota
	Exhausted
)

func (o Outcome) String() string {
	if o == Exhausted {
		return "exhausted"
	}
	return "completed"
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
