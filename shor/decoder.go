package shor

import (
	"github.com/oqtopus-team/qec-bell/circuit"
)

// DecodeToLogical undoes the encoding of data and moves the recovered value
// into output, leaving the data block in |0...0>.
//
// The leader collapse is two CNOTs from the first leader, not a three-way
// majority vote: it recovers the value only when at most one block is still
// corrupted, so corrections must be applied before these operations.
func DecodeToLogical(data DataBlock, output int) []circuit.Operation {
	ops := make([]circuit.Operation, 0, 2*NumBlocks+NumBlocks+4)
	for b := 0; b < NumBlocks; b++ {
		q := data.Block(b)
		ops = append(ops, circuit.CX(q[0], q[1]), circuit.CX(q[0], q[2]))
	}
	l0, l1, l2 := data.Leader(0), data.Leader(1), data.Leader(2)
	return append(ops,
		circuit.H(l0),
		circuit.H(l1),
		circuit.H(l2),
		circuit.CX(l0, l1),
		circuit.CX(l0, l2),
		circuit.CX(l0, output),
		circuit.CX(output, l0),
	)
}
