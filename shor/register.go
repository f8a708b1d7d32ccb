// Package shor builds the operation sequences of the nine-qubit Shor code
// protecting both halves of a Bell pair, and decodes its syndromes.
package shor

import (
	"github.com/oqtopus-team/qec-bell/circuit"
	"github.com/oqtopus-team/qec-bell/statevec"
)

const (
	NumLogical         = 2
	BlockSize          = 3
	NumBlocks          = 3
	DataPerLogical     = BlockSize * NumBlocks
	AncillasPerLogical = 8
	SyndromeBits       = AncillasPerLogical

	inputBase   = 0
	dataBase    = inputBase + NumLogical
	ancillaBase = dataBase + NumLogical*DataPerLogical
	outputBase  = ancillaBase + NumLogical*AncillasPerLogical

	// NumQubits is the register size of one Bell pair run.
	NumQubits = outputBase + NumLogical
	// NumClbits holds one syndrome per logical qubit.
	NumClbits = NumLogical * SyndromeBits
)

// DataBlock lists the physical qubits of one logical qubit. Block b occupies
// positions 3b..3b+2 and its first qubit is the block leader.
type DataBlock [DataPerLogical]int

// Leader returns the representative qubit of block b.
func (d DataBlock) Leader(b int) int {
	return d[b*BlockSize]
}

// Block returns the three qubits of block b.
func (d DataBlock) Block(b int) [BlockSize]int {
	return [BlockSize]int{d[b*BlockSize], d[b*BlockSize+1], d[b*BlockSize+2]}
}

// AncillaBlock lists the syndrome ancillas of one logical qubit.
type AncillaBlock [AncillasPerLogical]int

func Input(l int) int {
	return inputBase + l
}

func Output(l int) int {
	return outputBase + l
}

func Data(l int) DataBlock {
	var d DataBlock
	for i := range d {
		d[i] = dataBase + l*DataPerLogical + i
	}
	return d
}

func Ancillas(l int) AncillaBlock {
	var a AncillaBlock
	for i := range a {
		a[i] = ancillaBase + l*AncillasPerLogical + i
	}
	return a
}

// ClbitOffset is the first classical bit of logical qubit l's syndrome.
func ClbitOffset(l int) int {
	return l * SyndromeBits
}

// BellPreparation entangles the two input slots into (|00>+|11>)/sqrt2.
func BellPreparation() []circuit.Operation {
	return []circuit.Operation{
		circuit.H(Input(0)),
		circuit.CX(Input(0), Input(1)),
	}
}

func checkLogical(l int) error {
	if l < 0 || l >= NumLogical {
		return &statevec.DimensionError{Kind: "logical qubit", Index: l, Size: NumLogical}
	}
	return nil
}
