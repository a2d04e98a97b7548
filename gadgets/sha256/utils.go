package sha256

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	// chunkWidth is the fixed bit width of the rotate-extract table keys.
	chunkWidth = 11
	// regWidth is the SHA-256 register width.
	regWidth = 32

	// chooseBase is the sparse radix of the Choose path.
	chooseBase = 7
	// majorityBase is the sparse radix of the Majority path.
	majorityBase = 4

	// chDefaultNumChunks is the default digit count per Choose normalization
	// chunk: 7^4 keys keep the table near the 2^11 rotate-table size.
	chDefaultNumChunks = 4
	// majDefaultNumChunks is the Majority counterpart: 4^6 = 2^12 keys.
	majDefaultNumChunks = 6
)

// rotateRight32 rotates the low 32 bits of n right by r.
func rotateRight32(n uint64, r int) uint64 {
	n &= (1 << regWidth) - 1
	if r == 0 {
		return n
	}
	return ((n >> r) | (n << (regWidth - r))) & ((1 << regWidth) - 1)
}

// rotateExtract keeps the low extraction bits of n (all bits when extraction
// is zero), then rotates the result right within the 32-bit register.
func rotateExtract(n uint64, rotation, extraction int) uint64 {
	if extraction > 0 {
		n &= (1 << extraction) - 1
	}
	return rotateRight32(n, rotation)
}

// mapIntoSparseForm re-encodes a 32-bit word digit-wise into the given radix:
// bit i of n becomes digit i, weighted base^i. The result exceeds 64 bits for
// high bit positions, hence the big.Int accumulator.
func mapIntoSparseForm(n uint64, base uint64) *big.Int {
	res := new(big.Int)
	weight := big.NewInt(1)
	bigBase := new(big.Int).SetUint64(base)
	for i := 0; i < regWidth; i++ {
		if n>>i&1 == 1 {
			res.Add(res, weight)
		}
		weight = new(big.Int).Mul(weight, bigBase)
	}
	return res
}

// converterHelper extracts, rotates and sparse-encodes a register value,
// returning the encoding as a field element.
func converterHelper(n uint64, base uint64, rotation, extraction int) fr.Element {
	t := mapIntoSparseForm(rotateExtract(n, rotation, extraction), base)
	var res fr.Element
	res.SetBigInt(t)
	return res
}

// frUint64 lifts a small integer into the field.
func frUint64(n uint64) fr.Element {
	return fr.NewElement(n)
}

// frPow computes base^exp as a field element; the radix positional weights of
// the recombination gates.
func frPow(base uint64, exp uint64) fr.Element {
	var res fr.Element
	res.Exp(fr.NewElement(base), new(big.Int).SetUint64(exp))
	return res
}

// lowLimb returns the lowest 64-bit limb of the canonical representation of
// x. All 32-bit word semantics live in this limb; callers must have
// range-checked x before trusting it.
func lowLimb(x fr.Element) uint64 {
	bits := x.Bits()
	return bits[0]
}

// sparseDigits decomposes a sparse-encoded value into its radix digits,
// lowest first.
func sparseDigits(x *big.Int, base uint64, count int) []uint64 {
	digits := make([]uint64, count)
	rem := new(big.Int).Set(x)
	mod := new(big.Int)
	bigBase := new(big.Int).SetUint64(base)
	for i := 0; i < count; i++ {
		rem.DivMod(rem, bigBase, mod)
		digits[i] = mod.Uint64()
	}
	return digits
}
