package shor

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/oqtopus-team/qec-bell/circuit"
)

const noFlip = -1

// Policy selects which syndromes the classical decoder accepts.
type Policy string

const (
	// PolicySingle accepts only syndromes explained by one single-qubit
	// Pauli error on the logical qubit.
	PolicySingle Policy = "single"
	// PolicyPerBlock decodes each block and the phase checks independently.
	// It is the default.
	PolicyPerBlock Policy = "per-block"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicySingle, PolicyPerBlock:
		return Policy(s), nil
	case "":
		return PolicyPerBlock, nil
	}
	return "", errors.Errorf("unknown decoder policy %q", s)
}

// UncorrectableSyndromeError is returned when a syndrome matches no error
// hypothesis of the decoder policy.
type UncorrectableSyndromeError struct {
	Syndrome Syndrome
	Reason   string
}

func (e *UncorrectableSyndromeError) Error() string {
	return fmt.Sprintf("uncorrectable syndrome %s: %s", e.Syndrome, e.Reason)
}

func IsUncorrectable(err error) bool {
	var ue *UncorrectableSyndromeError
	return errors.As(err, &ue)
}

// Correction is the Pauli frame the decoder infers for one logical qubit.
type Correction struct {
	// Flips holds the data position receiving X in each block, or -1.
	Flips [NumBlocks]int `json:"flips"`
	// PhaseBlock is the block whose leader receives Z, or -1.
	PhaseBlock int `json:"phase_block"`
}

// Identity returns the correction that applies nothing.
func Identity() Correction {
	return Correction{Flips: [NumBlocks]int{noFlip, noFlip, noFlip}, PhaseBlock: noFlip}
}

func (c Correction) IsIdentity() bool {
	return c == Identity()
}

// Operations renders c as gates on data. Bit flips come first.
func (c Correction) Operations(data DataBlock) []circuit.Operation {
	var ops []circuit.Operation
	for _, pos := range c.Flips {
		if pos != noFlip {
			ops = append(ops, circuit.X(data[pos]))
		}
	}
	if c.PhaseBlock != noFlip {
		ops = append(ops, circuit.Z(data.Leader(c.PhaseBlock)))
	}
	return ops
}

// String lists the gates by data position, "X2 Z3", or "I".
func (c Correction) String() string {
	var parts []string
	for _, pos := range c.Flips {
		if pos != noFlip {
			parts = append(parts, fmt.Sprintf("X%d", pos))
		}
	}
	if c.PhaseBlock != noFlip {
		parts = append(parts, fmt.Sprintf("Z%d", c.PhaseBlock*BlockSize))
	}
	if len(parts) == 0 {
		return "I"
	}
	return strings.Join(parts, " ")
}

// Decoder is the classical syndrome lookup.
type Decoder struct {
	Policy Policy
}

func NewDecoder(p Policy) *Decoder {
	if p == "" {
		p = PolicyPerBlock
	}
	return &Decoder{Policy: p}
}

// Decode maps a syndrome to the correction restoring the codeword.
func (d *Decoder) Decode(s Syndrome) (Correction, error) {
	c := Identity()
	flagged := []int{}
	for b := 0; b < NumBlocks; b++ {
		off := locate(s.BitFlip(b))
		if off == noFlip {
			continue
		}
		c.Flips[b] = b*BlockSize + off
		flagged = append(flagged, b)
	}
	c.PhaseBlock = locate(s.PhaseFlip())

	switch d.Policy {
	case PolicyPerBlock, "":
		return c, nil
	case PolicySingle:
	default:
		return Identity(), errors.Errorf("unknown decoder policy %q", d.Policy)
	}
	if len(flagged) > 1 {
		return Identity(), &UncorrectableSyndromeError{
			Syndrome: s,
			Reason:   fmt.Sprintf("bit flips in %d blocks", len(flagged)),
		}
	}
	if len(flagged) == 1 && c.PhaseBlock != noFlip && c.PhaseBlock != flagged[0] {
		return Identity(), &UncorrectableSyndromeError{
			Syndrome: s,
			Reason:   fmt.Sprintf("bit flip in block %d and phase flip in block %d", flagged[0], c.PhaseBlock),
		}
	}
	return c, nil
}

// locate maps a two-bit sub-syndrome to an offset: (1,0) first, (1,1)
// middle, (0,1) last.
func locate(a, b uint8) int {
	switch {
	case a == 1 && b == 0:
		return 0
	case a == 1 && b == 1:
		return 1
	case a == 0 && b == 1:
		return 2
	}
	return noFlip
}
