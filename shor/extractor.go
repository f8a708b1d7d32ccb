package shor

import (
	"github.com/oqtopus-team/qec-bell/circuit"
)

// bitFlipChecks are the data position pairs compared by ancillas 0-5.
var bitFlipChecks = [NumBlocks * 2][2]int{
	{0, 1}, {1, 2},
	{3, 4}, {4, 5},
	{6, 7}, {7, 8},
}

// Extract measures the six ZZ and two X^6 stabilizers of data into
// classical bits clbitOffset..clbitOffset+7, in ancilla order.
func Extract(data DataBlock, anc AncillaBlock, clbitOffset int) []circuit.Operation {
	ops := make([]circuit.Operation, 0, 3*len(bitFlipChecks)+2*(2*BlockSize+3))
	for i, pair := range bitFlipChecks {
		ops = append(ops,
			circuit.CX(data[pair[0]], anc[i]),
			circuit.CX(data[pair[1]], anc[i]),
			circuit.M(anc[i], clbitOffset+i),
		)
	}
	// ancilla 6 compares blocks 0 and 1, ancilla 7 blocks 1 and 2
	for i := 0; i < 2; i++ {
		a := anc[len(bitFlipChecks)+i]
		ops = append(ops, circuit.H(a))
		for pos := i * BlockSize; pos < (i+2)*BlockSize; pos++ {
			ops = append(ops, circuit.CX(a, data[pos]))
		}
		ops = append(ops, circuit.H(a), circuit.M(a, clbitOffset+len(bitFlipChecks)+i))
	}
	return ops
}
