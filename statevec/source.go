package statevec

// Source supplies uniform samples in [0,1) for measurement. *math/rand.Rand
// satisfies it.
type Source interface {
	Float64() float64
}
