package sha256

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/plonksha/plonk"
)

// SparseMajValue carries a 32-bit register in the five forms the Majority
// path consumes: the canonical binary value, the radix-4 sparse encoding, and
// the sparse encodings of the right-rotations by 2, 13 and 22 (the Sigma0
// rotation schedule).
type SparseMajValue struct {
	Normal Value
	Sparse Value
	Rot2   Value
	Rot13  Value
	Rot22  Value
}

// ConvertIntoSparseMajorityForm converts a 32-bit register into its radix-4
// sparse encoding together with the three Sigma0 rotations.
//
// The structure mirrors the chooser conversion with one difference: the table
// serving the high limb depends on the majority strategy. Under UseTwoTables
// a dedicated 10-bit-extraction table absorbs a one-bit overflow exactly as
// on the chooser path. Under RawOverflowCheck the plain table serves every
// limb, which is only sound on an exactly-32-bit input, so a OneBitOverflow
// tag forces an explicit overflow extraction first.
func (p *GadgetParams) ConvertIntoSparseMajorityForm(sys plonk.ConstraintSystem, input TrackedValue) (SparseMajValue, error) {
	var v Value
	var err error
	switch {
	case input.Overflow == SignificantOverflow:
		panic("sha256: significant overflow reaching the majority conversion; reduce the value first")
	case input.Overflow == SmallOverflow,
		input.Overflow == OneBitOverflow && p.majorityStrategy == RawOverflowCheck:
		if v, err = Extract32FromOverflowed(sys, input.Val); err != nil {
			return SparseMajValue{}, err
		}
	default:
		v = input.Val
	}

	if v.IsConstant() {
		n := lowLimb(v.Constant()) & ((1 << regWidth) - 1)
		return SparseMajValue{
			Normal: v,
			Sparse: NewConstant(converterHelper(n, majorityBase, 0, 0)),
			Rot2:   NewConstant(converterHelper(n, majorityBase, 2, 0)),
			Rot13:  NewConstant(converterHelper(n, majorityBase, 13, 0)),
			Rot22:  NewConstant(converterHelper(n, majorityBase, 22, 0)),
		}, nil
	}

	low, err := allocateConvertedNum(sys, v, chunkWidth, 0, 0, 0, 0)
	if err != nil {
		return SparseMajValue{}, err
	}
	mid, err := allocateConvertedNum(sys, v, chunkWidth, 1, 0, 0, 0)
	if err != nil {
		return SparseMajValue{}, err
	}
	high, err := allocateConvertedNum(sys, v, chunkWidth, 2, 0, 0, 0)
	if err != nil {
		return SparseMajValue{}, err
	}

	sparseLow, sparseLowRot2, err := queryTable2(sys, p.base4Rot2Table, low)
	if err != nil {
		return SparseMajValue{}, err
	}
	sparseMid, sparseMidRot2, err := queryTable2(sys, p.base4Rot2Table, mid)
	if err != nil {
		return SparseMajValue{}, err
	}
	highChunkTable := p.base4Rot2Table
	if p.majorityStrategy == UseTwoTables {
		highChunkTable = p.base4Rot2Extr10Table
	}
	sparseHigh, _, err := queryTable2(sys, highChunkTable, high)
	if err != nil {
		return SparseMajValue{}, err
	}

	// low + 2^11*mid + 2^22*high == v
	err = sys.TernaryLcEq(
		[3]fr.Element{frUint64(1), frUint64(1 << chunkWidth), frUint64(1 << (2 * chunkWidth))},
		[3]plonk.Variable{low.Variable(), mid.Variable(), high.Variable()},
		v.Variable(),
	)
	if err != nil {
		return SparseMajValue{}, err
	}

	assemble := func(rotation int, coeffs [3]fr.Element, inputs [3]Value) (Value, error) {
		target, err := allocateConvertedNum(sys, v, regWidth, 0, majorityBase, rotation, 0)
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

	// fullSparse = sparseLow + 4^11*sparseMid + 4^22*sparseHigh
	fullSparse, err := assemble(0,
		[3]fr.Element{frUint64(1), frPow(majorityBase, 11), frPow(majorityBase, 22)},
		[3]Value{sparseLow, sparseMid, sparseHigh},
	)
	if err != nil {
		return SparseMajValue{}, err
	}

	// rot2 = sparseLowRot2 + 4^(11-2)*sparseMid + 4^(22-2)*sparseHigh
	rot2, err := assemble(2,
		[3]fr.Element{frUint64(1), frPow(majorityBase, 11-2), frPow(majorityBase, 22-2)},
		[3]Value{sparseLowRot2, sparseMid, sparseHigh},
	)
	if err != nil {
		return SparseMajValue{}, err
	}

	// rot13 = sparseMidRot2 + 4^(22-13)*sparseHigh + 4^(32-13)*sparseLow
	rot13, err := assemble(13,
		[3]fr.Element{frUint64(1), frPow(majorityBase, 22-13), frPow(majorityBase, 32-13)},
		[3]Value{sparseMidRot2, sparseHigh, sparseLow},
	)
	if err != nil {
		return SparseMajValue{}, err
	}

	// rot22 = sparseHigh + 4^(32-22)*sparseLow + 4^(32-22+11)*sparseMid
	rot22, err := assemble(22,
		[3]fr.Element{frUint64(1), frPow(majorityBase, 32-22), frPow(majorityBase, 32-22+11)},
		[3]Value{sparseHigh, sparseLow, sparseMid},
	)
	if err != nil {
		return SparseMajValue{}, err
	}

	return SparseMajValue{
		Normal: v,
		Sparse: fullSparse,
		Rot2:   rot2,
		Rot13:  rot13,
		Rot22:  rot22,
	}, nil
}
