package tyres

import (
	"image/color"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

type Compound string

const (
	Soft   Compound = "Soft"
	Medium Compound = "Medium"
	Hard   Compound = "Hard"
)

// Spec holds the fixed attributes of a compound. Color is only used by the
// presentation layer.
type Spec struct {
	Pace     float64    `yaml:"pace" json:"pace"`
	Lifespan int        `yaml:"lifespan" json:"lifespan"`
	Color    color.RGBA `yaml:"-" json:"-"`
}

type Table map[Compound]Spec

var (
	colorSoft   = color.RGBA{0xda, 0x29, 0x1c, 0xff}
	colorMedium = color.RGBA{0xff, 0xd1, 0x2e, 0xff}
	colorHard   = color.RGBA{0x88, 0x88, 0x88, 0xff}
	colorOther  = color.RGBA{0x1f, 0x77, 0xb4, 0xff}
)

func DefaultTable() Table {
	return Table{
		Soft:   {Pace: 1.25, Lifespan: 20, Color: colorSoft},
		Medium: {Pace: 1.30, Lifespan: 30, Color: colorMedium},
		Hard:   {Pace: 1.35, Lifespan: 40, Color: colorHard},
	}
}

func (t Table) Lookup(c Compound) (Spec, bool) {
	s, ok := t[c]
	return s, ok
}

// Merge returns a copy of t with the entries of other on top. Colors are
// kept from t when other does not set one.
func (t Table) Merge(other Table) Table {
	merged := make(Table, len(t)+len(other))
	for c, s := range t {
		merged[c] = s
	}
	for c, s := range other {
		if s.Color == (color.RGBA{}) {
			if prev, ok := t[c]; ok {
				s.Color = prev.Color
			} else {
				s.Color = colorOther
			}
		}
		merged[c] = s
	}
	return merged
}

func (t Table) Validate() error {
	for _, c := range t.Compounds() {
		s := t[c]
		if s.Pace <= 0 {
			return errors.Errorf("compound %s: pace must be positive, got %v", c, s.Pace)
		}
		if s.Lifespan <= 0 {
			return errors.Errorf("compound %s: lifespan must be positive, got %d", c, s.Lifespan)
		}
	}
	return nil
}

// Compounds returns the compounds of the table sorted by pace, fastest first.
func (t Table) Compounds() []Compound {
	cs := make([]Compound, 0, len(t))
	for c := range t {
		cs = append(cs, c)
	}
	sort.Slice(cs, func(i, j int) bool {
		if t[cs[i]].Pace == t[cs[j]].Pace {
			return cs[i] < cs[j]
		}
		return t[cs[i]].Pace < t[cs[j]].Pace
	})
	return cs
}

// ParseCompound accepts full names in any case and the one letter codes S, M and H.
func ParseCompound(s string) (Compound, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "soft":
		return Soft, nil
	case "m", "medium":
		return Medium, nil
	case "h", "hard":
		return Hard, nil
	case "":
		return "", errors.New("empty compound")
	}
	return Compound(capitalize(strings.TrimSpace(s))), nil
}

func capitalize(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return strings.ToValidUTF8(name, "")
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(name[size:])
}

func (c Compound) Short() string {
	if c == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(string(c))
	return string(unicode.ToUpper(r))
}
