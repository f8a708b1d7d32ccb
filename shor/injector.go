package shor

import (
	"github.com/oqtopus-team/qec-bell/circuit"
)

// Inject appends one Pauli gate per error on the data qubits followed by a
// barrier. Indices are bounds-checked against the data blocks only.
func Inject(errs []ErrorSpec) ([]circuit.Operation, error) {
	ops := make([]circuit.Operation, 0, len(errs)+1)
	for _, e := range errs {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		op, err := e.Pauli.Gate(Data(e.Logical)[e.Position])
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return append(ops, circuit.B()), nil
}
