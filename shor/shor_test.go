//go:build unit
// +build unit

package shor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oqtopus-team/qec-bell/bell"
	"github.com/oqtopus-team/qec-bell/circuit"
	"github.com/oqtopus-team/qec-bell/statevec"
)

type pairRun struct {
	syndromes   [NumLogical]Syndrome
	corrections [NumLogical]Correction
	decodeErrs  [NumLogical]error
	fidelity    float64
}

func runPair(t *testing.T, errs []ErrorSpec, policy Policy, correct bool) pairRun {
	t.Helper()
	c := NewCircuit()
	require.Nil(t, AppendPreparation(c, errs))
	s, err := statevec.NewState(NumQubits, NumClbits)
	require.Nil(t, err)
	e := statevec.NewEngine()
	require.Nil(t, e.Run(s, c.Ops()))

	var r pairRun
	d := NewDecoder(policy)
	mark := c.Len()
	for l := 0; l < NumLogical; l++ {
		syn, err := SyndromeFromClbits(s.Clbits(), ClbitOffset(l))
		require.Nil(t, err)
		r.syndromes[l] = syn
		r.corrections[l], r.decodeErrs[l] = d.Decode(syn)
		if correct && r.decodeErrs[l] == nil {
			c.Append(r.corrections[l].Operations(Data(l))...)
		}
	}
	AppendRecovery(c)
	require.Nil(t, e.Run(s, c.Since(mark)))
	assert.InDelta(t, 1, s.Norm(), 1e-9)

	rho, err := s.ReducedDensityMatrix(OutputQubits()...)
	require.Nil(t, err)
	r.fidelity, err = bell.Fidelity(rho, bell.PhiPlus())
	require.Nil(t, err)
	return r
}

func syndromeOf(t *testing.T, errs []ErrorSpec, l int) Syndrome {
	t.Helper()
	c := NewCircuit()
	require.Nil(t, AppendPreparation(c, errs))
	s, err := statevec.NewState(NumQubits, NumClbits)
	require.Nil(t, err)
	require.Nil(t, statevec.NewEngine().Run(s, c.Ops()))
	syn, err := SyndromeFromClbits(s.Clbits(), ClbitOffset(l))
	require.Nil(t, err)
	return syn
}

func TestRegisterLayout(t *testing.T) {
	assert.Equal(t, 38, NumQubits)
	assert.Equal(t, 16, NumClbits)
	assert.Equal(t, 1, Input(1))
	assert.Equal(t, DataBlock{11, 12, 13, 14, 15, 16, 17, 18, 19}, Data(1))
	assert.Equal(t, AncillaBlock{20, 21, 22, 23, 24, 25, 26, 27}, Ancillas(0))
	assert.Equal(t, 36, Output(0))
	assert.Equal(t, []int{36, 37}, OutputQubits())
	assert.Equal(t, 5, Data(0).Leader(1))
	assert.Equal(t, [3]int{17, 18, 19}, Data(1).Block(2))
	assert.Equal(t, 8, ClbitOffset(1))
}

func TestEncodeDecodeIsIdentity(t *testing.T) {
	tests := []struct {
		name  string
		prep  []circuit.Operation
		wants map[uint64]complex128
	}{
		{
			name:  "zero",
			wants: map[uint64]complex128{0: 1},
		},
		{
			name:  "one",
			prep:  []circuit.Operation{circuit.X(Input(0))},
			wants: map[uint64]complex128{1 << uint(Output(0)): 1},
		},
		{
			name:  "plus",
			prep:  []circuit.Operation{circuit.H(Input(0))},
			wants: map[uint64]complex128{0: 1 / math.Sqrt2, 1 << uint(Output(0)): 1 / math.Sqrt2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := statevec.NewState(NumQubits, 0)
			require.Nil(t, err)
			e := statevec.NewEngine()
			require.Nil(t, e.Run(s, tt.prep))
			require.Nil(t, e.Run(s, Encode(Input(0), Data(0))))

			p, err := s.Probabilities(Input(0))
			require.Nil(t, err)
			assert.InDelta(t, 1, p[0], 1e-12)

			require.Nil(t, e.Run(s, DecodeToLogical(Data(0), Output(0))))
			assert.Equal(t, len(tt.wants), s.Support())
			for k, v := range tt.wants {
				assert.InDelta(t, real(v), real(s.Amplitude(k)), 1e-12)
				assert.InDelta(t, imag(v), imag(s.Amplitude(k)), 1e-12)
			}
		})
	}
}

func TestNoErrorKeepsBellPair(t *testing.T) {
	r := runPair(t, nil, PolicySingle, true)
	assert.True(t, r.syndromes[0].IsZero())
	assert.True(t, r.syndromes[1].IsZero())
	assert.True(t, r.corrections[0].IsIdentity())
	assert.InDelta(t, 1, r.fidelity, 1e-9)
}

func TestEverySingleErrorIsCorrected(t *testing.T) {
	for _, policy := range []Policy{PolicySingle, PolicyPerBlock} {
		for l := 0; l < NumLogical; l++ {
			for pos := 0; pos < DataPerLogical; pos++ {
				for _, p := range Paulis {
					spec := ErrorSpec{Logical: l, Position: pos, Pauli: p}
					t.Run(string(policy)+"/"+spec.String(), func(t *testing.T) {
						r := runPair(t, []ErrorSpec{spec}, policy, true)
						assert.Nil(t, r.decodeErrs[0])
						assert.Nil(t, r.decodeErrs[1])
						assert.False(t, r.syndromes[l].IsZero())
						assert.True(t, r.syndromes[1-l].IsZero())
						assert.InDelta(t, 1, r.fidelity, 1e-9)
						assert.Equal(t, "1.0000", bell.FormatFidelity(r.fidelity))
					})
				}
			}
		}
	}
}

func TestConcreteScenarios(t *testing.T) {
	r := runPair(t, []ErrorSpec{{Logical: 0, Position: 2, Pauli: X}}, PolicySingle, true)
	a, b := r.syndromes[0].BitFlip(0)
	assert.Equal(t, [2]uint8{0, 1}, [2]uint8{a, b})
	a, b = r.syndromes[0].PhaseFlip()
	assert.Equal(t, [2]uint8{0, 0}, [2]uint8{a, b})
	assert.Equal(t, "01000000", r.syndromes[0].String())
	assert.Equal(t, "X2", r.corrections[0].String())
	assert.InDelta(t, 1, r.fidelity, 1e-9)

	r = runPair(t, []ErrorSpec{{Logical: 1, Position: 5, Pauli: Z}}, PolicySingle, true)
	a, b = r.syndromes[1].BitFlip(1)
	assert.Equal(t, [2]uint8{0, 0}, [2]uint8{a, b})
	a, b = r.syndromes[1].PhaseFlip()
	assert.Equal(t, [2]uint8{1, 1}, [2]uint8{a, b})
	assert.Equal(t, "00000011", r.syndromes[1].String())
	assert.Equal(t, "Z3", r.corrections[1].String())
	assert.InDelta(t, 1, r.fidelity, 1e-9)
}

func TestSyndromeIsInjective(t *testing.T) {
	seen := map[Syndrome]string{}
	for pos := 0; pos < DataPerLogical; pos++ {
		for _, p := range []Pauli{X, Y} {
			spec := ErrorSpec{Logical: 0, Position: pos, Pauli: p}
			syn := syndromeOf(t, []ErrorSpec{spec}, 0)
			prev, dup := seen[syn]
			assert.False(t, dup, "%s and %s share syndrome %s", spec, prev, syn)
			seen[syn] = spec.String()
			assert.Equal(t, syn, syndromeOf(t, []ErrorSpec{{Logical: 1, Position: pos, Pauli: p}}, 1))
		}
	}
	// phase flips inside one block act identically on the codeword
	for b := 0; b < NumBlocks; b++ {
		first := syndromeOf(t, []ErrorSpec{{Logical: 0, Position: b * BlockSize, Pauli: Z}}, 0)
		_, dup := seen[first]
		assert.False(t, dup)
		seen[first] = "Z block"
		for off := 1; off < BlockSize; off++ {
			assert.Equal(t, first, syndromeOf(t, []ErrorSpec{{Logical: 0, Position: b*BlockSize + off, Pauli: Z}}, 0))
		}
	}
	assert.Equal(t, 2*DataPerLogical+NumBlocks, len(seen))
}

func TestIndependentErrors(t *testing.T) {
	tests := []struct {
		name    string
		errs    []ErrorSpec
		policy  Policy
		failsOn int
	}{
		{
			name:    "bit flips on both logical qubits",
			errs:    []ErrorSpec{{0, 4, X}, {1, 4, X}},
			policy:  PolicySingle,
			failsOn: -1,
		},
		{
			name:    "x and z on different logical qubits",
			errs:    []ErrorSpec{{0, 8, X}, {1, 0, Z}},
			policy:  PolicySingle,
			failsOn: -1,
		},
		{
			name:    "bit flips in two blocks with per-block decoding",
			errs:    []ErrorSpec{{0, 1, X}, {0, 6, X}},
			policy:  PolicyPerBlock,
			failsOn: -1,
		},
		{
			name:    "bit flip and phase flip in different blocks with per-block decoding",
			errs:    []ErrorSpec{{1, 0, X}, {1, 7, Z}},
			policy:  PolicyPerBlock,
			failsOn: -1,
		},
		{
			name:    "bit flips in two blocks with the default policy",
			errs:    []ErrorSpec{{0, 1, X}, {0, 6, X}},
			failsOn: -1,
		},
		{
			name:    "bit flips in two blocks with single decoding",
			errs:    []ErrorSpec{{0, 1, X}, {0, 6, X}},
			policy:  PolicySingle,
			failsOn: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runPair(t, tt.errs, tt.policy, true)
			for l := 0; l < NumLogical; l++ {
				if l == tt.failsOn {
					assert.True(t, IsUncorrectable(r.decodeErrs[l]))
					continue
				}
				assert.Nil(t, r.decodeErrs[l])
			}
			if tt.failsOn < 0 {
				assert.InDelta(t, 1, r.fidelity, 1e-9)
			}
		})
	}
}

func TestUncorrectedPhaseFlip(t *testing.T) {
	// a phase flip on the first block flips the collapsed leader
	r := runPair(t, []ErrorSpec{{0, 0, Z}}, PolicySingle, false)
	assert.InDelta(t, 0, r.fidelity, 1e-9)

	// the leader collapse tolerates one corrupted block other than the first
	r = runPair(t, []ErrorSpec{{0, 3, Z}}, PolicySingle, false)
	assert.InDelta(t, 1, r.fidelity, 1e-9)
}

func TestNormAfterEveryOperation(t *testing.T) {
	c := NewCircuit()
	require.Nil(t, AppendPreparation(c, []ErrorSpec{{0, 4, Y}, {1, 8, Z}}))
	mark := c.Len()
	c.Append(Correction{Flips: [3]int{-1, 4, -1}, PhaseBlock: 1}.Operations(Data(0))...)
	c.Append(Correction{Flips: [3]int{-1, -1, -1}, PhaseBlock: 2}.Operations(Data(1))...)
	AppendRecovery(c)
	require.Less(t, mark, c.Len())

	s, err := statevec.NewState(NumQubits, NumClbits)
	require.Nil(t, err)
	e := statevec.NewEngine()
	for i, op := range c.Ops() {
		require.Nil(t, e.Apply(s, op))
		assert.InDelta(t, 1, s.Norm(), 1e-9, "operation %d (%s)", i, op)
	}
	rho, err := s.ReducedDensityMatrix(OutputQubits()...)
	require.Nil(t, err)
	f, err := bell.Fidelity(rho, bell.PhiPlus())
	require.Nil(t, err)
	assert.InDelta(t, 1, f, 1e-9)
}

func TestInject(t *testing.T) {
	ops, err := Inject([]ErrorSpec{{0, 2, X}, {1, 0, Y}})
	assert.Nil(t, err)
	assert.Equal(t, []circuit.Operation{circuit.X(4), circuit.Y(11), circuit.B()}, ops)

	ops, err = Inject(nil)
	assert.Nil(t, err)
	assert.Equal(t, []circuit.Operation{circuit.B()}, ops)

	_, err = Inject([]ErrorSpec{{2, 0, X}})
	assert.EqualError(t, err, "logical qubit index 2 is out of range [0,2)")
	assert.True(t, statevec.IsDimensionError(err))

	_, err = Inject([]ErrorSpec{{0, 9, Z}})
	assert.EqualError(t, err, "data position index 9 is out of range [0,9)")
	assert.True(t, statevec.IsDimensionError(err))

	_, err = Inject([]ErrorSpec{{0, 1, Pauli(9)}})
	assert.ErrorIs(t, err, ErrUnknownPauli)
}

func TestEncoderShape(t *testing.T) {
	ops := Encode(Input(0), Data(0))
	assert.Equal(t, []circuit.Operation{
		circuit.CX(0, 5), circuit.CX(0, 8), circuit.CX(0, 2), circuit.CX(2, 0),
		circuit.H(2), circuit.H(5), circuit.H(8),
		circuit.CX(2, 3), circuit.CX(2, 4), circuit.CX(5, 6), circuit.CX(5, 7), circuit.CX(8, 9), circuit.CX(8, 10),
	}, ops)
}

func TestExtractorShape(t *testing.T) {
	ops := Extract(Data(0), Ancillas(0), 0)
	c := circuit.New(NumQubits, NumClbits)
	c.Append(ops...)
	counts := c.CountOps()
	assert.Equal(t, 8, counts["measure"])
	assert.Equal(t, 4, counts["h"])
	assert.Equal(t, 12+12, counts["cx"])
	assert.Equal(t, circuit.M(20, 0), ops[2])
	assert.Equal(t, circuit.M(27, 7), ops[len(ops)-1])
}
