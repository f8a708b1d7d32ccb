package shor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/oqtopus-team/qec-bell/circuit"
	"github.com/oqtopus-team/qec-bell/statevec"
)

var ErrUnknownPauli = errors.New("unknown pauli")

// Pauli is a single-qubit error type.
type Pauli uint8

const (
	X Pauli = iota + 1
	Y
	Z
)

var Paulis = []Pauli{X, Y, Z}

func ParsePauli(s string) (Pauli, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return X, nil
	case "Y":
		return Y, nil
	case "Z":
		return Z, nil
	}
	return 0, errors.Wrapf(ErrUnknownPauli, "%q", s)
}

func (p Pauli) String() string {
	switch p {
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	}
	return fmt.Sprintf("Pauli(%d)", uint8(p))
}

// Gate returns the operation applying p to qubit q.
func (p Pauli) Gate(q int) (circuit.Operation, error) {
	switch p {
	case X:
		return circuit.X(q), nil
	case Y:
		return circuit.Y(q), nil
	case Z:
		return circuit.Z(q), nil
	}
	return circuit.Operation{}, errors.Wrapf(ErrUnknownPauli, "%d", uint8(p))
}

func (p Pauli) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pauli) UnmarshalText(b []byte) error {
	v, err := ParsePauli(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ErrorSpec places one Pauli error on a physical position (0-8) of a
// logical qubit.
type ErrorSpec struct {
	Logical  int
	Position int
	Pauli    Pauli
}

// ParseErrorSpec reads the "logical:position:pauli" form, e.g. "0:2:X".
func ParseErrorSpec(s string) (ErrorSpec, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return ErrorSpec{}, errors.Errorf("error spec %q is not in logical:position:pauli form", s)
	}
	l, err := strconv.Atoi(parts[0])
	if err != nil {
		return ErrorSpec{}, errors.Wrapf(err, "error spec %q logical qubit", s)
	}
	pos, err := strconv.Atoi(parts[1])
	if err != nil {
		return ErrorSpec{}, errors.Wrapf(err, "error spec %q position", s)
	}
	p, err := ParsePauli(parts[2])
	if err != nil {
		return ErrorSpec{}, errors.Wrapf(err, "error spec %q", s)
	}
	e := ErrorSpec{Logical: l, Position: pos, Pauli: p}
	if err := e.Validate(); err != nil {
		return ErrorSpec{}, err
	}
	return e, nil
}

// ParseErrorSpecs parses every entry of ss.
func ParseErrorSpecs(ss []string) ([]ErrorSpec, error) {
	specs := make([]ErrorSpec, 0, len(ss))
	for _, s := range ss {
		e, err := ParseErrorSpec(s)
		if err != nil {
			return nil, err
		}
		specs = append(specs, e)
	}
	return specs, nil
}

// Validate bounds-checks the logical qubit and the position.
func (e ErrorSpec) Validate() error {
	if err := checkLogical(e.Logical); err != nil {
		return err
	}
	if e.Position < 0 || e.Position >= DataPerLogical {
		return &statevec.DimensionError{Kind: "data position", Index: e.Position, Size: DataPerLogical}
	}
	return nil
}

// Block is the index of the block holding the error.
func (e ErrorSpec) Block() int {
	return e.Position / BlockSize
}

func (e ErrorSpec) String() string {
	return fmt.Sprintf("%d:%d:%s", e.Logical, e.Position, e.Pauli)
}

func (e ErrorSpec) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *ErrorSpec) UnmarshalText(b []byte) error {
	v, err := ParseErrorSpec(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}
