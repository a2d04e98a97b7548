package sha256

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/plonksha/plonk"
)

// linearCombination returns a value constrained to
// coeffs[0]*vals[0] + coeffs[1]*vals[1] + coeffs[2]*vals[2]. Constant terms
// fold into the main gate's constant selector; a fully constant input folds
// to field arithmetic with no gates.
func linearCombination(sys plonk.ConstraintSystem, coeffs [3]fr.Element, vals [3]Value) (Value, error) {
	var constAcc, term fr.Element
	type allocated struct {
		coeff fr.Element
		val   Value
	}
	var allocs []allocated
	for i := range vals {
		if vals[i].IsConstant() {
			c := vals[i].Constant()
			term.Mul(&coeffs[i], &c)
			constAcc.Add(&constAcc, &term)
			continue
		}
		allocs = append(allocs, allocated{coeff: coeffs[i], val: vals[i]})
	}

	if len(allocs) == 0 {
		return NewConstant(constAcc), nil
	}

	res, err := allocValue(sys, func() (fr.Element, error) {
		sum := constAcc
		var t fr.Element
		for _, a := range allocs {
			w, ok := a.val.Witness()
			if !ok {
				return fr.Element{}, plonk.ErrMissingAssignment
			}
			t.Mul(&a.coeff, &w)
			sum.Add(&sum, &t)
		}
		return sum, nil
	})
	if err != nil {
		return Value{}, err
	}

	var minusOne fr.Element
	minusOne.SetOne()
	minusOne.Neg(&minusOne)

	zero := sys.ZeroVariable()
	wires := [4]plonk.Variable{zero, zero, zero, res.Variable()}
	var selectors [7]fr.Element
	for i, a := range allocs {
		wires[i] = a.val.Variable()
		selectors[i] = a.coeff
	}
	selectors[3] = minusOne
	selectors[5] = constAcc
	if err := sys.MainGate(selectors, wires); err != nil {
		return Value{}, err
	}
	return res, nil
}

// Choose evaluates Ch(e,f,g) = (e AND f) XOR (NOT e AND g) on three registers
// in sparse chooser form. The sparse encodings are summed digit-wise with
// weights 1, 2, 3 so that every digit of the sum identifies its (e,f,g) bit
// triple, then normalized through the chooser table.
func (p *GadgetParams) Choose(sys plonk.ConstraintSystem, e, f, g SparseChValue) (TrackedValue, error) {
	sum, err := linearCombination(sys,
		[3]fr.Element{frUint64(1), frUint64(2), frUint64(3)},
		[3]Value{e.Sparse, f.Sparse, g.Sparse},
	)
	if err != nil {
		return TrackedValue{}, err
	}
	res, err := normalizeSparse(sys, sum, p.chNormalizationTable, chooseBase, p.chNumChunks)
	if err != nil {
		return TrackedValue{}, err
	}
	return Tracked(res), nil
}

// Sigma1 evaluates the big sigma1 function rot6(e) XOR rot11(e) XOR rot25(e):
// the three sparse rotations are summed with unit weights and reduced by
// digit parity.
func (p *GadgetParams) Sigma1(sys plonk.ConstraintSystem, e SparseChValue) (TrackedValue, error) {
	sum, err := linearCombination(sys,
		[3]fr.Element{frUint64(1), frUint64(1), frUint64(1)},
		[3]Value{e.Rot6, e.Rot11, e.Rot25},
	)
	if err != nil {
		return TrackedValue{}, err
	}
	res, err := normalizeSparse(sys, sum, p.chXorTable, chooseBase, p.chNumChunks)
	if err != nil {
		return TrackedValue{}, err
	}
	return Tracked(res), nil
}

// Majority evaluates Maj(a,b,c) = (a AND b) XOR (a AND c) XOR (b AND c):
// the sparse encodings are summed with unit weights, a digit of 2 or 3
// meaning the majority of the three bits is set.
func (p *GadgetParams) Majority(sys plonk.ConstraintSystem, a, b, c SparseMajValue) (TrackedValue, error) {
	sum, err := linearCombination(sys,
		[3]fr.Element{frUint64(1), frUint64(1), frUint64(1)},
		[3]Value{a.Sparse, b.Sparse, c.Sparse},
	)
	if err != nil {
		return TrackedValue{}, err
	}
	res, err := normalizeSparse(sys, sum, p.majNormalizationTable, majorityBase, p.majNumChunks)
	if err != nil {
		return TrackedValue{}, err
	}
	return Tracked(res), nil
}

// Sigma0 evaluates the big sigma0 function rot2(a) XOR rot13(a) XOR rot22(a).
func (p *GadgetParams) Sigma0(sys plonk.ConstraintSystem, a SparseMajValue) (TrackedValue, error) {
	sum, err := linearCombination(sys,
		[3]fr.Element{frUint64(1), frUint64(1), frUint64(1)},
		[3]Value{a.Rot2, a.Rot13, a.Rot22},
	)
	if err != nil {
		return TrackedValue{}, err
	}
	res, err := normalizeSparse(sys, sum, p.majXorTable, majorityBase, p.majNumChunks)
	if err != nil {
		return TrackedValue{}, err
	}
	return Tracked(res), nil
}
