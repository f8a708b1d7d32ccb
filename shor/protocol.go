package shor

import (
	"github.com/oqtopus-team/qec-bell/circuit"
)

// NewCircuit returns an empty circuit sized for one Bell pair run.
func NewCircuit() *circuit.Circuit {
	return circuit.New(NumQubits, NumClbits)
}

// AppendPreparation appends the Bell preparation, both encoders, the
// injected errors and both syndrome extractions.
func AppendPreparation(c *circuit.Circuit, errs []ErrorSpec) error {
	c.Append(BellPreparation()...)
	for l := 0; l < NumLogical; l++ {
		c.Append(Encode(Input(l), Data(l))...)
	}
	c.Append(circuit.B())
	inj, err := Inject(errs)
	if err != nil {
		return err
	}
	c.Append(inj...)
	for l := 0; l < NumLogical; l++ {
		c.Append(Extract(Data(l), Ancillas(l), ClbitOffset(l))...)
	}
	return nil
}

// AppendRecovery appends both Shor decoders.
func AppendRecovery(c *circuit.Circuit) {
	c.Append(circuit.B())
	for l := 0; l < NumLogical; l++ {
		c.Append(DecodeToLogical(Data(l), Output(l))...)
	}
}

// OutputQubits are the qubits holding the recovered Bell pair.
func OutputQubits() []int {
	qs := make([]int, NumLogical)
	for l := range qs {
		qs[l] = Output(l)
	}
	return qs
}
