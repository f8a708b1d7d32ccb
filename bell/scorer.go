// Package bell scores a recovered two-qubit state against the ideal Bell
// pair (|00>+|11>)/sqrt2.
package bell

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/go-faster/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/oqtopus-team/qec-bell/statevec"
)

var idealOutcomes = map[string]float64{"00": 0.5, "11": 0.5}

var outcomeOrder = []string{"00", "01", "10", "11"}

// PhiPlus returns the amplitudes of (|00>+|11>)/sqrt2.
func PhiPlus() []complex128 {
	return []complex128{complex(1/math.Sqrt2, 0), 0, 0, complex(1/math.Sqrt2, 0)}
}

// Fidelity returns <psi|rho|psi> clamped to [0,1].
func Fidelity(rho [][]complex128, psi []complex128) (float64, error) {
	if len(rho) != len(psi) {
		return 0, errors.Errorf("density matrix has dimension %d, state has %d", len(rho), len(psi))
	}
	var f complex128
	for i, row := range rho {
		if len(row) != len(psi) {
			return 0, errors.Errorf("density matrix row %d has length %d, want %d", i, len(row), len(psi))
		}
		for j, v := range row {
			f += cmplx.Conj(psi[i]) * v * psi[j]
		}
	}
	return clamp(real(f)), nil
}

// StateFidelity traces s down to qubits and scores it against PhiPlus.
func StateFidelity(s *statevec.State, qubits ...int) (float64, error) {
	if len(qubits) != 2 {
		return 0, errors.Errorf("bell fidelity needs two qubits, got %d", len(qubits))
	}
	rho, err := s.ReducedDensityMatrix(qubits...)
	if err != nil {
		return 0, err
	}
	return Fidelity(rho, PhiPlus())
}

// QBER is the bit error rate of a Werner state with fidelity f.
func QBER(f float64) float64 {
	return clamp(2 * (1 - f) / 3)
}

// KeyRate is the asymptotic BB84 secret key fraction at error rate q.
func KeyRate(q float64) float64 {
	q = clamp(q)
	h := stat.Entropy([]float64{q, 1 - q}) / math.Ln2
	return math.Max(0, 1-2*h)
}

// ClassicalFidelity is the squared Bhattacharyya coefficient between the
// sampled output distribution and the ideal 00/11 split. Keys are two-bit
// strings with logical qubit 0 first.
func ClassicalFidelity(counts map[string]uint32) float64 {
	var total uint32
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0
	}
	p := make([]float64, len(outcomeOrder))
	q := make([]float64, len(outcomeOrder))
	for i, k := range outcomeOrder {
		p[i] = float64(counts[k]) / float64(total)
		q[i] = idealOutcomes[k]
	}
	bc := math.Exp(-stat.Bhattacharyya(p, q))
	return clamp(bc * bc)
}

func FormatFidelity(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

func FormatQBER(q float64) string {
	return fmt.Sprintf("%.2f%%", 100*q)
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
