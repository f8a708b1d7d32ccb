package experiment

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/oqtopus-team/qec-bell/core"
	"github.com/oqtopus-team/qec-bell/shor"
)

const NoErrorName = "no-error"

// Scenario is one set of injected errors. Shots overrides Conf.Shots when
// positive.
type Scenario struct {
	Name   string
	Errors []shor.ErrorSpec
	Shots  int
}

func NoErrorScenario() Scenario {
	return Scenario{Name: NoErrorName}
}

// SingleErrorScenarios returns one scenario per logical qubit, data
// position and Pauli type.
func SingleErrorScenarios() []Scenario {
	scenarios := make([]Scenario, 0, shor.NumLogical*shor.DataPerLogical*len(shor.Paulis))
	for l := 0; l < shor.NumLogical; l++ {
		for p := 0; p < shor.DataPerLogical; p++ {
			for _, pauli := range shor.Paulis {
				e := shor.ErrorSpec{Logical: l, Position: p, Pauli: pauli}
				scenarios = append(scenarios, Scenario{
					Name:   "single " + e.String(),
					Errors: []shor.ErrorSpec{e},
				})
			}
		}
	}
	return scenarios
}

// PairedBitFlipScenarios flips the same data position of both halves of
// the pair.
func PairedBitFlipScenarios() []Scenario {
	scenarios := make([]Scenario, 0, shor.DataPerLogical)
	for p := 0; p < shor.DataPerLogical; p++ {
		errs := make([]shor.ErrorSpec, 0, shor.NumLogical)
		for l := 0; l < shor.NumLogical; l++ {
			errs = append(errs, shor.ErrorSpec{Logical: l, Position: p, Pauli: shor.X})
		}
		scenarios = append(scenarios, Scenario{
			Name:   fmt.Sprintf("paired X at %d", p),
			Errors: errs,
		})
	}
	return scenarios
}

// SweepScenarios is the baseline followed by every single error.
func SweepScenarios() []Scenario {
	return append([]Scenario{NoErrorScenario()}, SingleErrorScenarios()...)
}

// FromSetting converts the [[scenarios]] of a setting file. Unnamed
// entries are named after their position.
func FromSetting(s *core.Setting) ([]Scenario, error) {
	if s == nil {
		return nil, nil
	}
	scenarios := make([]Scenario, 0, len(s.Scenarios))
	for i, ss := range s.Scenarios {
		sc := Scenario{
			Name:   ss.Name,
			Errors: append([]shor.ErrorSpec{}, ss.Errors...),
			Shots:  ss.Shots,
		}
		if sc.Name == "" {
			sc.Name = fmt.Sprintf("scenario-%d", i)
		}
		if err := sc.Validate(); err != nil {
			return nil, errors.Wrapf(err, "scenario %d", i)
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

func (s Scenario) Validate() error {
	if s.Shots < 0 {
		return errors.Errorf("%s: negative shots %d", s.Name, s.Shots)
	}
	for _, e := range s.Errors {
		if err := e.Validate(); err != nil {
			return errors.Wrapf(err, "%s: error %s", s.Name, e)
		}
	}
	return nil
}
