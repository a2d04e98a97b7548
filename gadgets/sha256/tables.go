package sha256

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/plonksha/debug"
	"github.com/consensys/plonksha/plonk"
)

// sparseRotateTable maps an 11-bit chunk to its sparse encoding and the
// sparse encoding of a fixed rotation of that chunk, where the rotation acts
// on the chunk placed in the low bits of a 32-bit register. A non-zero
// extraction truncates the chunk to its low extraction bits first, which is
// how a one-bit overflow in the high limb is absorbed for free.
type sparseRotateTable struct {
	name       string
	bits       int
	rotation   int
	extraction int
	base       uint64
}

func newSparseRotateTable(bits, rotation, extraction int, base uint64, name string) *sparseRotateTable {
	return &sparseRotateTable{
		name:       name,
		bits:       bits,
		rotation:   rotation,
		extraction: extraction,
		base:       base,
	}
}

func (t *sparseRotateTable) Name() string { return t.name }

func (t *sparseRotateTable) Width() int { return 3 }

func (t *sparseRotateTable) Size() uint64 { return 1 << t.bits }

func (t *sparseRotateTable) Query(key fr.Element) ([]fr.Element, error) {
	if !key.IsUint64() || key.Uint64() >= t.Size() {
		return nil, fmt.Errorf("table %q key %s: %w", t.name, key.String(), plonk.ErrTableDomain)
	}
	n := key.Uint64()
	return []fr.Element{
		converterHelper(n, t.base, 0, t.extraction),
		converterHelper(n, t.base, t.rotation, t.extraction),
	}, nil
}

// normalizationTable maps a chunk of sparse-radix digits, digit by digit,
// through a boolean reduction and recombines the resulting bits with binary
// weights. The mapping covers every possible digit-wise sum: up to 6 for the
// weight-1/2/3 Choose sum in radix 7, up to 3 for the weight-1/1/1 sums.
type normalizationTable struct {
	name      string
	base      uint64
	numChunks int
	mapping   []uint64
	size      uint64
}

func newNormalizationTable(base uint64, numChunks int, mapping []uint64, name string) *normalizationTable {
	debug.Assert(len(mapping) >= int(base), "digit mapping shorter than the radix")
	size := uint64(1)
	for i := 0; i < numChunks; i++ {
		size *= base
	}
	return &normalizationTable{
		name:      name,
		base:      base,
		numChunks: numChunks,
		mapping:   mapping,
		size:      size,
	}
}

func (t *normalizationTable) Name() string { return t.name }

func (t *normalizationTable) Width() int { return 2 }

func (t *normalizationTable) Size() uint64 { return t.size }

func (t *normalizationTable) Query(key fr.Element) ([]fr.Element, error) {
	if !key.IsUint64() || key.Uint64() >= t.size {
		return nil, fmt.Errorf("table %q key %s: %w", t.name, key.String(), plonk.ErrTableDomain)
	}
	digits := sparseDigits(new(big.Int).SetUint64(key.Uint64()), t.base, t.numChunks)
	var out uint64
	for i, d := range digits {
		out |= t.mapping[d] << i
	}
	return []fr.Element{fr.NewElement(out)}, nil
}

// Digit-sum reductions behind the normalization tables.
//
// The Choose path sums e + 2f + 3g digit-wise in radix 7; the digit sum
// uniquely determines Ch(e,f,g) = (e AND f) XOR (NOT e AND g) on that bit.
// The Majority path sums a + b + c in radix 4; Maj is 1 when the sum is at
// least 2. The xor maps reduce the weight-1/1/1 rotation sums by parity.
var (
	chooseMapping   = []uint64{0, 0, 0, 1, 0, 1, 1}
	majorityMapping = []uint64{0, 0, 1, 1}
	xorMapping      = []uint64{0, 1, 0, 1, 0, 1, 0}
)
