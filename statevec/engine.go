package statevec

import (
	"fmt"
	"math"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/oqtopus-team/qec-bell/circuit"
)

const DefaultEpsilon = 1e-10

// collapse probabilities below this are treated as a vanished norm
const minCollapseProbability = 1e-24

var invSqrt2 = complex(1/math.Sqrt2, 0)

// Engine applies operations to a State. It keeps no per-run data apart from
// its entropy source, so one engine per run keeps runs independent.
type Engine struct {
	epsilon float64
	source  Source
}

type Option func(*Engine)

// WithEpsilon sets the magnitude under which amplitudes and branch
// probabilities count as zero.
func WithEpsilon(eps float64) Option {
	return func(e *Engine) {
		if eps > 0 {
			e.epsilon = eps
		}
	}
}

// WithSource enables sampling of non-deterministic measurements.
func WithSource(src Source) Option {
	return func(e *Engine) {
		e.source = src
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{epsilon: DefaultEpsilon}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Epsilon() float64 {
	return e.epsilon
}

// Deterministic reports whether the engine runs without an entropy source.
func (e *Engine) Deterministic() bool {
	return e.source == nil
}

// Run applies ops in order and stops at the first failure.
func (e *Engine) Run(s *State, ops []circuit.Operation) error {
	for i, op := range ops {
		if err := e.Apply(s, op); err != nil {
			return errors.Wrapf(err, "operation %d (%s)", i, op)
		}
	}
	return nil
}

// Apply transforms s in place by one operation.
func (e *Engine) Apply(s *State, op circuit.Operation) error {
	if err := e.validate(s, op); err != nil {
		return err
	}
	switch op.Kind {
	case circuit.Hadamard:
		e.hadamard(s, op.Target())
	case circuit.PauliX:
		s.amps = remap(s.amps, func(k uint64, a complex128) (uint64, complex128) {
			return k ^ bit(op.Target()), a
		})
	case circuit.PauliY:
		b := bit(op.Target())
		s.amps = remap(s.amps, func(k uint64, a complex128) (uint64, complex128) {
			if k&b == 0 {
				return k | b, a * 1i
			}
			return k &^ b, a * -1i
		})
	case circuit.PauliZ:
		b := bit(op.Target())
		for k, a := range s.amps {
			if k&b != 0 {
				s.amps[k] = -a
			}
		}
	case circuit.ControlledNot:
		cb, tb := bit(op.Control()), bit(op.Target())
		s.amps = remap(s.amps, func(k uint64, a complex128) (uint64, complex128) {
			if k&cb != 0 {
				return k ^ tb, a
			}
			return k, a
		})
	case circuit.Measure:
		return e.measure(s, op.Target(), op.Clbit)
	case circuit.Barrier:
	}
	return nil
}

func (e *Engine) validate(s *State, op circuit.Operation) error {
	for _, q := range op.Qubits {
		if q < 0 || q >= s.numQubits {
			return &DimensionError{Kind: "qubit", Index: q, Size: s.numQubits}
		}
	}
	switch op.Kind {
	case circuit.Hadamard, circuit.PauliX, circuit.PauliY, circuit.PauliZ:
		if len(op.Qubits) != 1 {
			return errors.Wrapf(ErrInvalidOperation, "%s needs one qubit, got %d", op.Kind, len(op.Qubits))
		}
	case circuit.ControlledNot:
		if len(op.Qubits) != 2 {
			return errors.Wrapf(ErrInvalidOperation, "cx needs two qubits, got %d", len(op.Qubits))
		}
		if op.Control() == op.Target() {
			return errors.Wrapf(ErrInvalidOperation, "cx control and target are both %d", op.Control())
		}
	case circuit.Measure:
		if len(op.Qubits) != 1 {
			return errors.Wrapf(ErrInvalidOperation, "measure needs one qubit, got %d", len(op.Qubits))
		}
		if op.Clbit < 0 || op.Clbit >= s.numClbits {
			return &DimensionError{Kind: "clbit", Index: op.Clbit, Size: s.numClbits}
		}
	case circuit.Barrier:
	default:
		return errors.Wrapf(ErrInvalidOperation, "unknown kind %d", int(op.Kind))
	}
	return nil
}

func (e *Engine) hadamard(s *State, q int) {
	b := bit(q)
	next := make(map[uint64]complex128, 2*len(s.amps))
	for k, a := range s.amps {
		v := a * invSqrt2
		next[k&^b] += v
		if k&b == 0 {
			next[k|b] += v
		} else {
			next[k|b] -= v
		}
	}
	for k, a := range next {
		if nearlyZero(a, e.epsilon) {
			delete(next, k)
		}
	}
	s.amps = next
}

func (e *Engine) measure(s *State, q, clbit int) error {
	b := bit(q)
	p0, p1 := 0.0, 0.0
	for k, a := range s.amps {
		if k&b == 0 {
			p0 += sqAbs(a)
		} else {
			p1 += sqAbs(a)
		}
	}
	outcome, err := e.pickOutcome(p0, p1)
	if err != nil {
		return errors.Wrapf(err, "measure q[%d] (p0=%g, p1=%g)", q, p0, p1)
	}
	p := p0
	if outcome == 1 {
		p = p1
	}
	if p < minCollapseProbability {
		return errors.Wrapf(ErrVanishingNorm, "measure q[%d] outcome %d has probability %g", q, outcome, p)
	}
	scale := complex(1/math.Sqrt(p), 0)
	for k, a := range s.amps {
		if (k&b != 0) != (outcome == 1) {
			delete(s.amps, k)
			continue
		}
		s.amps[k] = a * scale
	}
	s.clbits[clbit] = outcome
	zap.L().Debug(fmt.Sprintf("measured q[%d] -> c[%d] = %d (p1=%g)", q, clbit, outcome, p1))
	return nil
}

func (e *Engine) pickOutcome(p0, p1 float64) (uint8, error) {
	switch {
	case p1 <= e.epsilon:
		return 0, nil
	case p0 <= e.epsilon:
		return 1, nil
	case e.source == nil:
		return 0, ErrNondeterministicMeasurement
	}
	if e.source.Float64() < p1/(p0+p1) {
		return 1, nil
	}
	return 0, nil
}

func remap(amps map[uint64]complex128, f func(uint64, complex128) (uint64, complex128)) map[uint64]complex128 {
	next := make(map[uint64]complex128, len(amps))
	for k, a := range amps {
		nk, na := f(k, a)
		next[nk] = na
	}
	return next
}

func bit(q int) uint64 {
	return 1 << uint(q)
}
