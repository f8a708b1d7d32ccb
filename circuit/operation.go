package circuit

import (
	"fmt"
	"strings"
)

type Kind int

const (
	Hadamard Kind = iota
	ControlledNot
	PauliX
	PauliZ
	PauliY
	Measure
	Barrier
)

func (k Kind) String() string {
	switch k {
	case Hadamard:
		return "h"
	case ControlledNot:
		return "cx"
	case PauliX:
		return "x"
	case PauliZ:
		return "z"
	case PauliY:
		return "y"
	case Measure:
		return "measure"
	case Barrier:
		return "barrier"
	default:
		return "unknown"
	}
}

// IsUnitary reports whether the kind is a gate with a matrix action.
func (k Kind) IsUnitary() bool {
	switch k {
	case Hadamard, ControlledNot, PauliX, PauliZ, PauliY:
		return true
	default:
		return false
	}
}

// Operation is one immutable circuit step. For ControlledNot, Qubits holds
// (control, target). For Measure, Clbit names the classical bit written.
// A Barrier without qubits spans the whole register.
type Operation struct {
	Kind   Kind
	Qubits []int
	Clbit  int
}

func H(q int) Operation { return Operation{Kind: Hadamard, Qubits: []int{q}} }

func X(q int) Operation { return Operation{Kind: PauliX, Qubits: []int{q}} }

func Y(q int) Operation { return Operation{Kind: PauliY, Qubits: []int{q}} }

func Z(q int) Operation { return Operation{Kind: PauliZ, Qubits: []int{q}} }

func CX(control, target int) Operation {
	return Operation{Kind: ControlledNot, Qubits: []int{control, target}}
}

func M(q, clbit int) Operation {
	return Operation{Kind: Measure, Qubits: []int{q}, Clbit: clbit}
}

func B(qubits ...int) Operation {
	return Operation{Kind: Barrier, Qubits: append([]int(nil), qubits...)}
}

// Control returns the control qubit of a ControlledNot.
func (o Operation) Control() int {
	return o.Qubits[0]
}

// Target returns the single qubit of a one-qubit operation or the target of
// a ControlledNot.
func (o Operation) Target() int {
	return o.Qubits[len(o.Qubits)-1]
}

func (o Operation) clone() Operation {
	o.Qubits = append([]int(nil), o.Qubits...)
	return o
}

func (o Operation) String() string {
	switch o.Kind {
	case Measure:
		return fmt.Sprintf("measure q[%d] -> c[%d]", o.Target(), o.Clbit)
	case Barrier:
		if len(o.Qubits) == 0 {
			return "barrier"
		}
	}
	qs := make([]string, 0, len(o.Qubits))
	for _, q := range o.Qubits {
		qs = append(qs, fmt.Sprintf("q[%d]", q))
	}
	return o.Kind.String() + " " + strings.Join(qs, ", ")
}
