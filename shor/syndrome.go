package shor

import (
	"strings"

	"github.com/go-faster/errors"

	"github.com/oqtopus-team/qec-bell/statevec"
)

// Syndrome holds the eight stabilizer outcomes of one logical qubit: six
// bit-flip checks (two per block) then the two phase checks.
type Syndrome [SyndromeBits]uint8

// SyndromeFromClbits reads the syndrome stored at clbits[offset:offset+8].
func SyndromeFromClbits(clbits []uint8, offset int) (Syndrome, error) {
	var s Syndrome
	if offset < 0 || offset+SyndromeBits > len(clbits) {
		return s, &statevec.DimensionError{Kind: "clbit", Index: offset + SyndromeBits - 1, Size: len(clbits)}
	}
	copy(s[:], clbits[offset:offset+SyndromeBits])
	return s, nil
}

// ParseSyndrome is the inverse of String.
func ParseSyndrome(str string) (Syndrome, error) {
	var s Syndrome
	if len(str) != SyndromeBits {
		return s, errors.Errorf("syndrome %q must have %d bits", str, SyndromeBits)
	}
	for i, c := range str {
		switch c {
		case '0':
		case '1':
			s[i] = 1
		default:
			return s, errors.Errorf("syndrome %q has a non-binary digit %q", str, c)
		}
	}
	return s, nil
}

// BitFlip returns the two bit-flip outcomes of block b.
func (s Syndrome) BitFlip(b int) (uint8, uint8) {
	return s[2*b], s[2*b+1]
}

// PhaseFlip returns the two phase check outcomes.
func (s Syndrome) PhaseFlip() (uint8, uint8) {
	return s[6], s[7]
}

func (s Syndrome) IsZero() bool {
	return s == Syndrome{}
}

// String renders the bits in extraction order, e.g. "01000000".
func (s Syndrome) String() string {
	var sb strings.Builder
	for _, b := range s {
		if b == 0 {
			sb.WriteByte('0')
		} else {
			sb.WriteByte('1')
		}
	}
	return sb.String()
}

func (s Syndrome) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Syndrome) UnmarshalText(b []byte) error {
	v, err := ParseSyndrome(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
