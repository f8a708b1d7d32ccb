package sampling

import (
	"github.com/go-faster/errors"

	"github.com/oqtopus-team/qec-bell/core"
)

var ErrInconsistentKeys = errors.New("inconsistent key lengths")

// divideStringByLengths splits "10110" with lengths [2, 3] into ["10", "110"].
func divideStringByLengths(input string, lengths []int) ([]string, error) {
	result := make([]string, 0, len(lengths))
	pos := 0
	for _, length := range lengths {
		if length <= 0 || pos+length > len(input) {
			return nil, ErrInconsistentKeys
		}
		result = append(result, input[pos:pos+length])
		pos += length
	}
	if pos != len(input) {
		return nil, ErrInconsistentKeys
	}
	return result, nil
}

// Divide marginalizes counts over consecutive groups of key characters.
// Divide(counts, 1, 1) gives the outcome counts of each half of a pair.
func Divide(counts core.Counts, lengths ...int) ([]core.Counts, error) {
	if len(counts) == 0 {
		return nil, errors.New("counts is empty")
	}
	divided := make([]core.Counts, len(lengths))
	for i := range divided {
		divided[i] = make(core.Counts)
	}
	for k, v := range counts {
		keys, err := divideStringByLengths(k, lengths)
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", k)
		}
		for i, key := range keys {
			divided[i][key] += v
		}
	}
	return divided, nil
}

// Correlation is the sampled expectation of Z on every measured qubit:
// outcomes with an even number of ones count +1, odd ones -1. It is 1 for
// the ideal pair.
func Correlation(counts core.Counts) float64 {
	var total, sum float64
	for k, v := range counts {
		parity := 0
		for _, c := range k {
			if c == '1' {
				parity ^= 1
			}
		}
		if parity == 0 {
			sum += float64(v)
		} else {
			sum -= float64(v)
		}
		total += float64(v)
	}
	if total == 0 {
		return 0
	}
	return sum / total
}
