package sampling

import (
	"sort"
	"strings"

	"github.com/go-faster/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/oqtopus-team/qec-bell/core"
	"github.com/oqtopus-team/qec-bell/statevec"
)

var (
	ErrNoSource     = errors.New("sampling needs an entropy source")
	ErrInvalidShots = errors.New("shots must be positive")
)

// Sampler draws computational-basis measurement outcomes from a state
// without collapsing it.
type Sampler struct {
	source statevec.Source
}

func NewSampler(src statevec.Source) *Sampler {
	return &Sampler{source: src}
}

// Sample measures the given qubits shots times. Keys list the outcome of
// qubits[0] first.
func (s *Sampler) Sample(st *statevec.State, shots int, qubits ...int) (core.Counts, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}
	if shots <= 0 {
		return nil, errors.Wrapf(ErrInvalidShots, "got %d", shots)
	}
	probs, err := st.Probabilities(qubits...)
	if err != nil {
		return nil, errors.Wrap(err, "marginal distribution")
	}
	cum := floats.CumSum(make([]float64, len(probs)), probs)
	total := cum[len(cum)-1]
	last := lastNonZero(probs)

	counts := make(core.Counts)
	for i := 0; i < shots; i++ {
		r := s.source.Float64() * total
		k := sort.Search(len(cum), func(i int) bool { return cum[i] > r })
		if k > last {
			k = last
		}
		counts[key(k, len(qubits))]++
	}
	return counts, nil
}

func lastNonZero(probs []float64) int {
	for i := len(probs) - 1; i > 0; i-- {
		if probs[i] > 0 {
			return i
		}
	}
	return 0
}

func key(k, width int) string {
	var b strings.Builder
	for i := 0; i < width; i++ {
		if k&(1<<i) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
