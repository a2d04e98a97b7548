package sha256

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/plonksha/plonk"
)

// queryTable1 looks up an allocated key in a single-output table. The output
// is computed from the key's witness when one is present and left unassigned
// otherwise, then bound to the key by one lookup gate. The gate format is
// fixed at four wire slots; unused slots are padded with the zero wire and
// carry no meaningful values.
func queryTable1(sys plonk.ConstraintSystem, h plonk.TableHandle, key Value) (Value, error) {
	table := sys.Table(h)
	res, err := allocValue(sys, func() (fr.Element, error) {
		k, ok := key.Witness()
		if !ok {
			return fr.Element{}, plonk.ErrMissingAssignment
		}
		outs, err := table.Query(k)
		if err != nil {
			return fr.Element{}, err
		}
		return outs[0], nil
	})
	if err != nil {
		return Value{}, fmt.Errorf("querying table %q: %w", table.Name(), err)
	}

	if err := sys.BeginGateBatch(); err != nil {
		return Value{}, err
	}
	dummy := sys.ZeroVariable()
	wires := [4]plonk.Variable{key.Variable(), res.Variable(), dummy, dummy}
	if err := sys.LookupGate(wires[:table.Width()], h); err != nil {
		return Value{}, err
	}
	if err := sys.EndGateBatch(); err != nil {
		return Value{}, err
	}
	return res, nil
}

// queryTable2 is the two-output variant of queryTable1: one lookup gate binds
// the key and both outputs.
func queryTable2(sys plonk.ConstraintSystem, h plonk.TableHandle, key Value) (Value, Value, error) {
	table := sys.Table(h)

	var outs []fr.Element
	queried := false
	query := func(i int) func() (fr.Element, error) {
		return func() (fr.Element, error) {
			k, ok := key.Witness()
			if !ok {
				return fr.Element{}, plonk.ErrMissingAssignment
			}
			if !queried {
				var err error
				if outs, err = table.Query(k); err != nil {
					return fr.Element{}, err
				}
				queried = true
			}
			return outs[i], nil
		}
	}

	res0, err := allocValue(sys, query(0))
	if err != nil {
		return Value{}, Value{}, fmt.Errorf("querying table %q: %w", table.Name(), err)
	}
	res1, err := allocValue(sys, query(1))
	if err != nil {
		return Value{}, Value{}, fmt.Errorf("querying table %q: %w", table.Name(), err)
	}

	if err := sys.BeginGateBatch(); err != nil {
		return Value{}, Value{}, err
	}
	dummy := sys.ZeroVariable()
	wires := [4]plonk.Variable{key.Variable(), res0.Variable(), res1.Variable(), dummy}
	if err := sys.LookupGate(wires[:table.Width()], h); err != nil {
		return Value{}, Value{}, err
	}
	if err := sys.EndGateBatch(); err != nil {
		return Value{}, Value{}, err
	}
	return res0, res1, nil
}
