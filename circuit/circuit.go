// Package circuit holds the ordered operation lists executed by the
// state-vector engine. It has no execution logic of its own.
package circuit

import "sort"

type Circuit struct {
	numQubits int
	numClbits int
	ops       []Operation
}

func New(numQubits, numClbits int) *Circuit {
	return &Circuit{
		numQubits: numQubits,
		numClbits: numClbits,
	}
}

func (c *Circuit) NumQubits() int {
	return c.numQubits
}

func (c *Circuit) NumClbits() int {
	return c.numClbits
}

// Append copies ops onto the end of the circuit. Appended operations are
// never modified afterwards.
func (c *Circuit) Append(ops ...Operation) {
	for _, op := range ops {
		c.ops = append(c.ops, op.clone())
	}
}

// Ops returns a copy of the operation list.
func (c *Circuit) Ops() []Operation {
	out := make([]Operation, len(c.ops))
	for i, op := range c.ops {
		out[i] = op.clone()
	}
	return out
}

// Since returns a copy of the operations appended at or after index i.
func (c *Circuit) Since(i int) []Operation {
	if i >= len(c.ops) {
		return nil
	}
	out := make([]Operation, 0, len(c.ops)-i)
	for _, op := range c.ops[i:] {
		out = append(out, op.clone())
	}
	return out
}

func (c *Circuit) Len() int {
	return len(c.ops)
}

// GateCount counts unitary gates. Measurements and barriers are excluded.
func (c *Circuit) GateCount() int {
	n := 0
	for _, op := range c.ops {
		if op.Kind.IsUnitary() {
			n++
		}
	}
	return n
}

// CountOps returns the number of operations per kind name.
func (c *Circuit) CountOps() map[string]int {
	counts := make(map[string]int)
	for _, op := range c.ops {
		counts[op.Kind.String()]++
	}
	return counts
}

// Depth is the length of the critical path. Barriers synchronise the qubits
// they span but do not add a layer. A measurement also occupies its
// classical bit.
func (c *Circuit) Depth() int {
	qubitLevel := make(map[int]int)
	clbitLevel := make(map[int]int)
	depth := 0
	for _, op := range c.ops {
		qubits := op.Qubits
		if op.Kind == Barrier && len(qubits) == 0 {
			qubits = c.allQubits(qubitLevel)
		}
		level := 0
		for _, q := range qubits {
			if qubitLevel[q] > level {
				level = qubitLevel[q]
			}
		}
		if op.Kind == Measure && clbitLevel[op.Clbit] > level {
			level = clbitLevel[op.Clbit]
		}
		if op.Kind != Barrier {
			level++
		}
		for _, q := range qubits {
			qubitLevel[q] = level
		}
		if op.Kind == Measure {
			clbitLevel[op.Clbit] = level
		}
		if level > depth {
			depth = level
		}
	}
	return depth
}

func (c *Circuit) allQubits(seen map[int]int) []int {
	qs := make([]int, 0, c.numQubits)
	for q := 0; q < c.numQubits; q++ {
		qs = append(qs, q)
	}
	for q := range seen {
		if q < 0 || q >= c.numQubits {
			qs = append(qs, q)
		}
	}
	sort.Ints(qs)
	return qs
}
