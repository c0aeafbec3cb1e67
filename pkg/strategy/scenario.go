package strategy

import (
	"f1strategybot/pkg/tyres"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Scenario struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Strategy Strategy `yaml:"stints" json:"stints"`
}

type Scenarios []Scenario

func DefaultScenarios() Scenarios {
	return Scenarios{
		{
			ID:       "one-stop-sm",
			Name:     "One-Stop: Soft -> Medium",
			Strategy: Strategy{{tyres.Soft, 25}, {tyres.Medium, 33}},
		},
		{
			ID:       "two-stop-ssm",
			Name:     "Two-Stop: Soft -> Soft -> Medium",
			Strategy: Strategy{{tyres.Soft, 15}, {tyres.Soft, 20}, {tyres.Medium, 23}},
		},
		{
			ID:       "one-stop-mh",
			Name:     "One-Stop: Medium -> Hard",
			Strategy: Strategy{{tyres.Medium, 30}, {tyres.Hard, 28}},
		},
	}
}

func (ss Scenarios) GetByID(id string) (Scenario, bool) {
	for _, s := range ss {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

// File is the on-disk shape of a scenarios file. Race settings are pointers
// so an explicit zero is told apart from a missing key.
type File struct {
	TotalLaps   *int                          `yaml:"totalLaps"`
	PitStopLoss *float64                      `yaml:"pitStopLoss"`
	Compounds   map[tyres.Compound]tyres.Spec `yaml:"compounds"`
	Scenarios   Scenarios                     `yaml:"scenarios"`
}

// Table returns base with the file's compound overrides applied.
func (f *File) Table(base tyres.Table) tyres.Table {
	if len(f.Compounds) == 0 {
		return base
	}
	return base.Merge(tyres.Table(f.Compounds))
}

func LoadScenarios(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading scenarios file %s", path)
	}
	return ParseScenarios(data)
}

func ParseScenarios(data []byte) (*File, error) {
	f := &File{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, errors.Wrap(err, "decoding scenarios")
	}
	seen := map[string]bool{}
	for i := range f.Scenarios {
		s := &f.Scenarios[i]
		if s.ID == "" {
			return nil, errors.Errorf("scenario %d: missing id", i+1)
		}
		if seen[s.ID] {
			return nil, errors.Errorf("scenario %s: duplicated id", s.ID)
		}
		seen[s.ID] = true
		if len(s.Strategy) == 0 {
			return nil, errors.Errorf("scenario %s: no stints", s.ID)
		}
		for j := range s.Strategy {
			c, err := tyres.ParseCompound(string(s.Strategy[j].Compound))
			if err != nil {
				return nil, errors.Wrapf(err, "scenario %s: stint %d", s.ID, j+1)
			}
			s.Strategy[j].Compound = c
		}
		if strings.TrimSpace(s.Name) == "" {
			s.Name = s.Strategy.Name()
		}
	}
	if f.Compounds != nil {
		normalized := make(map[tyres.Compound]tyres.Spec, len(f.Compounds))
		for name, spec := range f.Compounds {
			c, err := tyres.ParseCompound(string(name))
			if err != nil {
				return nil, errors.Wrap(err, "compounds")
			}
			normalized[c] = spec
		}
		f.Compounds = normalized
		if err := tyres.Table(f.Compounds).Validate(); err != nil {
			return nil, errors.Wrap(err, "compounds")
		}
	}
	return f, nil
}
