package shor

import (
	"github.com/oqtopus-team/qec-bell/circuit"
)

// Encode moves the logical value held by input into a Shor codeword on data.
// The input slot is returned to |0>.
func Encode(input int, data DataBlock) []circuit.Operation {
	l0, l1, l2 := data.Leader(0), data.Leader(1), data.Leader(2)
	ops := []circuit.Operation{
		circuit.CX(input, l1),
		circuit.CX(input, l2),
		circuit.CX(input, l0),
		circuit.CX(l0, input),
		circuit.H(l0),
		circuit.H(l1),
		circuit.H(l2),
	}
	for b := 0; b < NumBlocks; b++ {
		q := data.Block(b)
		ops = append(ops, circuit.CX(q[0], q[1]), circuit.CX(q[0], q[2]))
	}
	return ops
}
