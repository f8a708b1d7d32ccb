// Package statevec simulates pure n-qubit states exactly. Amplitudes are
// kept sparsely, keyed by the basis index, so registers of a few dozen
// qubits stay cheap as long as the state has a small support, which is the
// case for stabilizer codewords.
package statevec

import (
	"math/cmplx"
	"sort"
)

const MaxQubits = 64

// State is the amplitude map and classical register of one run. Bit q of a
// basis index is the value of qubit q.
type State struct {
	numQubits int
	numClbits int
	amps      map[uint64]complex128
	clbits    []uint8
}

// NewState returns |0...0> with all classical bits cleared.
func NewState(numQubits, numClbits int) (*State, error) {
	if numQubits < 1 || numQubits > MaxQubits {
		return nil, &DimensionError{Kind: "qubit", Index: numQubits, Size: MaxQubits + 1}
	}
	if numClbits < 0 {
		return nil, &DimensionError{Kind: "clbit", Index: numClbits, Size: 0}
	}
	return &State{
		numQubits: numQubits,
		numClbits: numClbits,
		amps:      map[uint64]complex128{0: 1},
		clbits:    make([]uint8, numClbits),
	}, nil
}

func (s *State) NumQubits() int {
	return s.numQubits
}

func (s *State) NumClbits() int {
	return s.numClbits
}

// Support is the number of basis states with a non-zero amplitude.
func (s *State) Support() int {
	return len(s.amps)
}

func (s *State) Amplitude(basis uint64) complex128 {
	return s.amps[basis]
}

// Norm is the sum of squared amplitude magnitudes.
func (s *State) Norm() float64 {
	n := 0.0
	for _, a := range s.amps {
		n += sqAbs(a)
	}
	return n
}

func (s *State) Clbit(i int) (uint8, error) {
	if i < 0 || i >= s.numClbits {
		return 0, &DimensionError{Kind: "clbit", Index: i, Size: s.numClbits}
	}
	return s.clbits[i], nil
}

// Clbits returns a copy of the classical register.
func (s *State) Clbits() []uint8 {
	return append([]uint8(nil), s.clbits...)
}

// Probabilities returns the marginal distribution of the given qubits. Entry
// k has bit i set when qubits[i] is 1.
func (s *State) Probabilities(qubits ...int) ([]float64, error) {
	if err := s.checkQubits(qubits); err != nil {
		return nil, err
	}
	probs := make([]float64, 1<<len(qubits))
	for basis, a := range s.amps {
		probs[localIndex(basis, qubits)] += sqAbs(a)
	}
	return probs, nil
}

// ReducedDensityMatrix traces out every qubit not listed. Row and column
// indices follow the same ordering as Probabilities.
func (s *State) ReducedDensityMatrix(qubits ...int) ([][]complex128, error) {
	if err := s.checkQubits(qubits); err != nil {
		return nil, err
	}
	dim := 1 << len(qubits)
	var mask uint64
	for _, q := range qubits {
		mask |= 1 << uint(q)
	}
	// group amplitudes by the configuration of the traced-out qubits
	groups := make(map[uint64][]complex128)
	for basis, a := range s.amps {
		rest := basis &^ mask
		g, ok := groups[rest]
		if !ok {
			g = make([]complex128, dim)
			groups[rest] = g
		}
		g[localIndex(basis, qubits)] = a
	}
	rho := make([][]complex128, dim)
	for i := range rho {
		rho[i] = make([]complex128, dim)
	}
	for _, key := range sortedKeys(groups) {
		g := groups[key]
		for i := 0; i < dim; i++ {
			if g[i] == 0 {
				continue
			}
			for j := 0; j < dim; j++ {
				rho[i][j] += g[i] * cmplx.Conj(g[j])
			}
		}
	}
	return rho, nil
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	amps := make(map[uint64]complex128, len(s.amps))
	for k, v := range s.amps {
		amps[k] = v
	}
	return &State{
		numQubits: s.numQubits,
		numClbits: s.numClbits,
		amps:      amps,
		clbits:    s.Clbits(),
	}
}

func (s *State) checkQubits(qubits []int) error {
	seen := make(map[int]struct{}, len(qubits))
	for _, q := range qubits {
		if q < 0 || q >= s.numQubits {
			return &DimensionError{Kind: "qubit", Index: q, Size: s.numQubits}
		}
		if _, ok := seen[q]; ok {
			return ErrInvalidOperation
		}
		seen[q] = struct{}{}
	}
	return nil
}

func localIndex(basis uint64, qubits []int) int {
	idx := 0
	for i, q := range qubits {
		if basis&(1<<uint(q)) != 0 {
			idx |= 1 << i
		}
	}
	return idx
}

func sortedKeys(m map[uint64][]complex128) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sqAbs(a complex128) float64 {
	return real(a)*real(a) + imag(a)*imag(a)
}

func nearlyZero(a complex128, eps float64) bool {
	return cmplx.Abs(a) < eps
}
