package sha256

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/plonksha/debug"
	"github.com/consensys/plonksha/plonk"
)

// normalizeSparse undoes the sparse embedding: given x = sum x_i * base^i
// with digits x_i inside the mapping domain of the table, it returns
// z = sum f(x_i) * 2^i where f is the boolean reduction the table encodes.
//
// A table over all 32 digits would be enormous, so x is decomposed into
// ceil(32/numChunks) chunks of numChunks digits each by repeated division by
// base^numChunks. Each chunk is allocated, looked up, and the chunk outputs
// are recombined with binary weights 2^(numChunks*i). A chain of ternary
// gates proves both decompositions faithful. For a constant input the chunks
// go straight through Table.Query with no gates.
func normalizeSparse(sys plonk.ConstraintSystem, input Value, h plonk.TableHandle, base uint64, numChunks int) (Value, error) {
	table := sys.Table(h)
	numSlices := (regWidth + numChunks - 1) / numChunks

	chunkModulus := new(big.Int).Exp(new(big.Int).SetUint64(base), big.NewInt(int64(numChunks)), nil)

	if input.IsConstant() {
		x := new(big.Int)
		c := input.Constant()
		c.BigInt(x)
		var res, term fr.Element
		binWeight := frUint64(1)
		binShift := frUint64(1 << numChunks)
		chunk := new(big.Int)
		for i := 0; i < numSlices; i++ {
			x.DivMod(x, chunkModulus, chunk)
			var key fr.Element
			key.SetBigInt(chunk)
			outs, err := table.Query(key)
			if err != nil {
				return Value{}, err
			}
			term.Mul(&outs[0], &binWeight)
			res.Add(&res, &term)
			binWeight.Mul(&binWeight, &binShift)
		}
		return NewConstant(res), nil
	}

	chunks := make([]Value, numSlices)
	outputs := make([]Value, numSlices)
	var err error
	for i := 0; i < numSlices; i++ {
		idx := i
		chunks[i], err = allocValue(sys, func() (fr.Element, error) {
			w, ok := input.Witness()
			if !ok {
				return fr.Element{}, plonk.ErrMissingAssignment
			}
			x := new(big.Int)
			w.BigInt(x)
			for j := 0; j < idx; j++ {
				x.Div(x, chunkModulus)
			}
			x.Mod(x, chunkModulus)
			var e fr.Element
			e.SetBigInt(x)
			return e, nil
		})
		if err != nil {
			return Value{}, err
		}
		if outputs[i], err = queryTable1(sys, h, chunks[i]); err != nil {
			return Value{}, err
		}
	}

	// sparse-side recombination: sum chunk_i * (base^numChunks)^i == input
	var chunkMod fr.Element
	chunkMod.SetBigInt(chunkModulus)
	sparseWeights := make([]fr.Element, numSlices)
	binWeights := make([]fr.Element, numSlices)
	sparseWeights[0] = frUint64(1)
	binWeights[0] = frUint64(1)
	binShift := frUint64(1 << numChunks)
	for i := 1; i < numSlices; i++ {
		sparseWeights[i].Mul(&sparseWeights[i-1], &chunkMod)
		binWeights[i].Mul(&binWeights[i-1], &binShift)
	}
	if err := assertChain(sys, sparseWeights, chunks, input); err != nil {
		return Value{}, err
	}

	// binary-side recombination into the normalized result
	result, err := allocValue(sys, func() (fr.Element, error) {
		var res, term fr.Element
		for i := range outputs {
			w, ok := outputs[i].Witness()
			if !ok {
				return fr.Element{}, plonk.ErrMissingAssignment
			}
			term.Mul(&w, &binWeights[i])
			res.Add(&res, &term)
		}
		return res, nil
	})
	if err != nil {
		return Value{}, err
	}
	if err := assertChain(sys, binWeights, outputs, result); err != nil {
		return Value{}, err
	}
	return result, nil
}

// assertChain enforces sum(weights[i]*vals[i]) == target with a running
// accumulator over ternary linear gates: the first gate folds three terms,
// every following gate folds two more, and the last gate targets target
// directly. All vals must be allocated.
func assertChain(sys plonk.ConstraintSystem, weights []fr.Element, vals []Value, target Value) error {
	debug.Assert(len(weights) == len(vals), "weight and value counts differ")
	zero := sys.ZeroVariable()

	if len(vals) <= 3 {
		var cs [3]fr.Element
		ws := [3]plonk.Variable{zero, zero, zero}
		for i := range vals {
			cs[i] = weights[i]
			ws[i] = vals[i].Variable()
		}
		return sys.TernaryLcEq(cs, ws, target.Variable())
	}

	// partial allocates the running sum sum(ws[i]*vs[i]) + prev.
	partial := func(prev *Value, ws []fr.Element, vs []Value) (Value, error) {
		return allocValue(sys, func() (fr.Element, error) {
			var res, term fr.Element
			if prev != nil {
				w, ok := prev.Witness()
				if !ok {
					return fr.Element{}, plonk.ErrMissingAssignment
				}
				res = w
			}
			for i := range vs {
				w, ok := vs[i].Witness()
				if !ok {
					return fr.Element{}, plonk.ErrMissingAssignment
				}
				term.Mul(&w, &ws[i])
				res.Add(&res, &term)
			}
			return res, nil
		})
	}

	acc, err := partial(nil, weights[:3], vals[:3])
	if err != nil {
		return err
	}
	if err := sys.TernaryLcEq(
		[3]fr.Element{weights[0], weights[1], weights[2]},
		[3]plonk.Variable{vals[0].Variable(), vals[1].Variable(), vals[2].Variable()},
		acc.Variable(),
	); err != nil {
		return err
	}

	i := 3
	for ; i+2 < len(vals); i += 2 {
		next, err := partial(&acc, weights[i:i+2], vals[i:i+2])
		if err != nil {
			return err
		}
		if err := sys.TernaryLcEq(
			[3]fr.Element{frUint64(1), weights[i], weights[i+1]},
			[3]plonk.Variable{acc.Variable(), vals[i].Variable(), vals[i+1].Variable()},
			next.Variable(),
		); err != nil {
			return err
		}
		acc = next
	}

	cs := [3]fr.Element{frUint64(1)}
	ws := [3]plonk.Variable{acc.Variable(), zero, zero}
	for j := 0; i+j < len(vals); j++ {
		cs[j+1] = weights[i+j]
		ws[j+1] = vals[i+j].Variable()
	}
	return sys.TernaryLcEq(cs, ws, target.Variable())
}
