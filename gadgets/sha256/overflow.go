package sha256

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/plonksha/plonk"
)

// extract32FromConstant splits a value of at most 36 bits into its exact low
// 32 bits and the two 2-bit overflow residues (bits 32-33 and 34-35).
func extract32FromConstant(x fr.Element) (extracted, ofLow, ofHigh fr.Element) {
	n := lowLimb(x)
	extracted = fr.NewElement(n & ((1 << regWidth) - 1))
	ofLow = fr.NewElement((n >> 32) & 3)
	ofHigh = fr.NewElement(n >> 34)
	return extracted, ofLow, ofHigh
}

// Extract32FromOverflowed reduces a value known to be within 36 bits to its
// exact low 32 bits. For a constant the extraction is pure masking; for an
// allocated value the low 32 bits are decomposed into sixteen 2-bit steps
// range-checked by four gates, the two overflow residues are constrained to
// {0,1,2,3} and one linear main gate enforces
//
//	x = low32 + 2^32*ofLow + 2^34*ofHigh.
func Extract32FromOverflowed(sys plonk.ConstraintSystem, v Value) (Value, error) {
	res, _, _, err := extract32WithResidues(sys, v)
	return res, err
}

func extract32WithResidues(sys plonk.ConstraintSystem, v Value) (res, ofLow, ofHigh Value, err error) {
	if v.IsConstant() {
		e, l, h := extract32FromConstant(v.Constant())
		return NewConstant(e), NewConstant(l), NewConstant(h), nil
	}

	// accumulators a_1..a_16 of the low 32 bits, two bits per step;
	// a_0 is the implicit zero wire and a_16 the extracted result.
	accs := make([]Value, 16)
	for i := 1; i <= 16; i++ {
		shift := regWidth - 2*i
		accs[i-1], err = allocValue(sys, func() (fr.Element, error) {
			w, ok := v.Witness()
			if !ok {
				return fr.Element{}, plonk.ErrMissingAssignment
			}
			low32 := lowLimb(w) & ((1 << regWidth) - 1)
			return fr.NewElement(low32 >> shift), nil
		})
		if err != nil {
			return Value{}, Value{}, Value{}, err
		}
	}

	prev := sys.ZeroVariable()
	for i := 0; i < 4; i++ {
		quad := [4]plonk.Variable{
			accs[4*i].Variable(),
			accs[4*i+1].Variable(),
			accs[4*i+2].Variable(),
			accs[4*i+3].Variable(),
		}
		if err = sys.Range32Gate(prev, quad); err != nil {
			return Value{}, Value{}, Value{}, err
		}
		prev = quad[3]
	}

	residue := func(extract func(fr.Element) fr.Element) (Value, error) {
		return allocValue(sys, func() (fr.Element, error) {
			w, ok := v.Witness()
			if !ok {
				return fr.Element{}, plonk.ErrMissingAssignment
			}
			return extract(w), nil
		})
	}
	ofLow, err = residue(func(w fr.Element) fr.Element {
		_, l, _ := extract32FromConstant(w)
		return l
	})
	if err != nil {
		return Value{}, Value{}, Value{}, err
	}
	ofHigh, err = residue(func(w fr.Element) fr.Element {
		_, _, h := extract32FromConstant(w)
		return h
	})
	if err != nil {
		return Value{}, Value{}, Value{}, err
	}

	res = accs[15]
	wires := [4]plonk.Variable{v.Variable(), ofLow.Variable(), ofHigh.Variable(), res.Variable()}

	if err = sys.BeginGateBatch(); err != nil {
		return Value{}, Value{}, Value{}, err
	}
	if err = sys.In04RangeGate(1, wires); err != nil {
		return Value{}, Value{}, Value{}, err
	}
	if err = sys.In04RangeGate(2, wires); err != nil {
		return Value{}, Value{}, Value{}, err
	}

	// selectors [qA, qB, qC, qD, qM, qConst, qDnext] enforcing
	// -x + 2^32*ofLow + 2^34*ofHigh + low32 = 0.
	var minusOne fr.Element
	minusOne.SetOne()
	minusOne.Neg(&minusOne)
	selectors := [7]fr.Element{
		minusOne,
		frUint64(1 << 32),
		frUint64(1 << 34),
		frUint64(1),
	}
	if err = sys.MainGate(selectors, wires); err != nil {
		return Value{}, Value{}, Value{}, err
	}
	if err = sys.EndGateBatch(); err != nil {
		return Value{}, Value{}, Value{}, err
	}

	return res, ofLow, ofHigh, nil
}
