package sha256

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/plonksha/plonk"
)

// SparseChValue carries a 32-bit register in the five forms the Choose path
// consumes: the canonical binary value, the radix-7 sparse encoding, and the
// sparse encodings of the right-rotations by 6, 11 and 25 (the Sigma1
// rotation schedule). All five represent the same underlying integer.
type SparseChValue struct {
	Normal Value
	Sparse Value
	Rot6   Value
	Rot11  Value
	Rot25  Value
}

// allocateConvertedNum allocates a wire whose witness is the given 11-bit
// chunk of v (chunk index counted from the low bits), or a sparse conversion
// of the full register when chunkBitlen covers it.
func allocateConvertedNum(sys plonk.ConstraintSystem, v Value, chunkBitlen, chunkNum int, base uint64, rotation, extraction int) (Value, error) {
	return allocValue(sys, func() (fr.Element, error) {
		w, ok := v.Witness()
		if !ok {
			return fr.Element{}, plonk.ErrMissingAssignment
		}
		n := (lowLimb(w) >> (chunkBitlen * chunkNum)) & ((1 << chunkBitlen) - 1)
		if base == 0 {
			return fr.NewElement(n), nil
		}
		return converterHelper(n, base, rotation, extraction), nil
	})
}

// ConvertIntoSparseChooserForm converts a 32-bit register into its radix-7
// sparse encoding together with the three Sigma1 rotations.
//
// The register is split into three 11-bit limbs. The low and mid limbs go
// through the zero-extraction rotate-by-6 table; the high limb goes through
// the 10-bit-extraction rotate-by-3 table, whose truncation absorbs a
// possible one-bit overflow without an explicit check. One linear gate proves
// the split faithful and one linear gate per output form ties it to a
// radix-7-weighted recombination of the limb-level outputs.
//
// The input must be tagged NoOverflow or OneBitOverflow; SmallOverflow is
// reduced through Extract32FromOverflowed first. A SignificantOverflow tag is
// a fatal precondition violation and panics.
func (p *GadgetParams) ConvertIntoSparseChooserForm(sys plonk.ConstraintSystem, input TrackedValue) (SparseChValue, error) {
	var v Value
	var err error
	switch input.Overflow {
	case SignificantOverflow:
		panic("sha256: significant overflow reaching the chooser conversion; reduce the value first")
	case SmallOverflow:
		if v, err = Extract32FromOverflowed(sys, input.Val); err != nil {
			return SparseChValue{}, err
		}
	default:
		v = input.Val
	}

	if v.IsConstant() {
		n := lowLimb(v.Constant()) & ((1 << regWidth) - 1)
		return SparseChValue{
			Normal: v,
			Sparse: NewConstant(converterHelper(n, chooseBase, 0, 0)),
			Rot6:   NewConstant(converterHelper(n, chooseBase, 6, 0)),
			Rot11:  NewConstant(converterHelper(n, chooseBase, 11, 0)),
			Rot25:  NewConstant(converterHelper(n, chooseBase, 25, 0)),
		}, nil
	}

	// split into three 11-bit limbs; 3*11 = 33, so the top bit of the high
	// limb is the spot where a one-bit overflow lands and the extraction
	// table forgets it.
	low, err := allocateConvertedNum(sys, v, chunkWidth, 0, 0, 0, 0)
	if err != nil {
		return SparseChValue{}, err
	}
	mid, err := allocateConvertedNum(sys, v, chunkWidth, 1, 0, 0, 0)
	if err != nil {
		return SparseChValue{}, err
	}
	high, err := allocateConvertedNum(sys, v, chunkWidth, 2, 0, 0, 0)
	if err != nil {
		return SparseChValue{}, err
	}

	sparseLow, sparseLowRot6, err := queryTable2(sys, p.base7Rot6Table, low)
	if err != nil {
		return SparseChValue{}, err
	}
	sparseMid, _, err := queryTable2(sys, p.base7Rot6Table, mid)
	if err != nil {
		return SparseChValue{}, err
	}
	sparseHigh, sparseHighRot3, err := queryTable2(sys, p.base7Rot3Extr10Table, high)
	if err != nil {
		return SparseChValue{}, err
	}

	// low + 2^11*mid + 2^22*high == v
	err = sys.TernaryLcEq(
		[3]fr.Element{frUint64(1), frUint64(1 << chunkWidth), frUint64(1 << (2 * chunkWidth))},
		[3]plonk.Variable{low.Variable(), mid.Variable(), high.Variable()},
		v.Variable(),
	)
	if err != nil {
		return SparseChValue{}, err
	}

	assemble := func(rotation int, coeffs [3]fr.Element, inputs [3]Value) (Value, error) {
		target, err := allocateConvertedNum(sys, v, regWidth, 0, chooseBase, rotation, 0)
		if err != nil {
			return Value{}, err
		}
		err = sys.TernaryLcEq(
			coeffs,
			[3]plonk.Variable{inputs[0].Variable(), inputs[1].Variable(), inputs[2].Variable()},
			target.Variable(),
		)
		return target, err
	}

	// fullSparse = sparseLow + 7^11*sparseMid + 7^22*sparseHigh
	fullSparse, err := assemble(0,
		[3]fr.Element{frUint64(1), frPow(chooseBase, 11), frPow(chooseBase, 22)},
		[3]Value{sparseLow, sparseMid, sparseHigh},
	)
	if err != nil {
		return SparseChValue{}, err
	}

	// rot6 = sparseLowRot6 + 7^(11-6)*sparseMid + 7^(22-6)*sparseHigh
	rot6, err := assemble(6,
		[3]fr.Element{frUint64(1), frPow(chooseBase, 11-6), frPow(chooseBase, 22-6)},
		[3]Value{sparseLowRot6, sparseMid, sparseHigh},
	)
	if err != nil {
		return SparseChValue{}, err
	}

	// rotating by exactly one limb width is a pure reordering of limbs:
	// rot11 = sparseMid + 7^(22-11)*sparseHigh + 7^(32-11)*sparseLow
	rot11, err := assemble(11,
		[3]fr.Element{frUint64(1), frPow(chooseBase, 22-11), frPow(chooseBase, 32-11)},
		[3]Value{sparseMid, sparseHigh, sparseLow},
	)
	if err != nil {
		return SparseChValue{}, err
	}

	// rot25 = sparseHighRot3 + 7^(32-25)*sparseLow + 7^(32-25+11)*sparseMid
	rot25, err := assemble(25,
		[3]fr.Element{frUint64(1), frPow(chooseBase, 32-25), frPow(chooseBase, 32-25+11)},
		[3]Value{sparseHighRot3, sparseLow, sparseMid},
	)
	if err != nil {
		return SparseChValue{}, err
	}

	return SparseChValue{
		Normal: v,
		Sparse: fullSparse,
		Rot6:   rot6,
		Rot11:  rot11,
		Rot25:  rot25,
	}, nil
}
