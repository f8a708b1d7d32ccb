package circuit

import (
	"fmt"
	"strings"
)

// QASM renders the circuit as OpenQASM 3 text with a single quantum
// register q and a single classical register c.
func (c *Circuit) QASM() string {
	var b strings.Builder
	b.WriteString("OPENQASM 3;\n")
	b.WriteString("include \"stdgates.inc\";\n")
	fmt.Fprintf(&b, "qubit[%d] q;\n", c.numQubits)
	if c.numClbits > 0 {
		fmt.Fprintf(&b, "bit[%d] c;\n", c.numClbits)
	}
	for _, op := range c.ops {
		b.WriteString(qasmStatement(op))
		b.WriteString("\n")
	}
	return b.String()
}

func qasmStatement(op Operation) string {
	switch op.Kind {
	case Measure:
		return fmt.Sprintf("c[%d] = measure q[%d];", op.Clbit, op.Target())
	case Barrier:
		if len(op.Qubits) == 0 {
			return "barrier q;"
		}
	}
	return op.String() + ";"
}
