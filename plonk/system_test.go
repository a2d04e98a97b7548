package plonk

import (
	"errors"
	"fmt"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

type constTable struct {
	name  string
	width int
	size  uint64
	outs  map[uint64][]uint64
}

func (t *constTable) Name() string { return t.name }
func (t *constTable) Width() int   { return t.width }
func (t *constTable) Size() uint64 { return t.size }

func (t *constTable) Query(key fr.Element) ([]fr.Element, error) {
	if !key.IsUint64() || key.Uint64() >= t.size {
		return nil, fmt.Errorf("table %q: %w", t.name, ErrTableDomain)
	}
	var res []fr.Element
	for _, o := range t.outs[key.Uint64()] {
		res = append(res, fr.NewElement(o))
	}
	return res, nil
}

func allocUint64(t *testing.T, s *System, n uint64) Variable {
	t.Helper()
	v, err := s.AllocVariable(func() (fr.Element, error) {
		return fr.NewElement(n), nil
	})
	require.NoError(t, err)
	return v
}

func TestAllocVariable(t *testing.T) {
	s := NewSystem()
	require.Equal(t, 1, s.NbVariables()) // zero wire

	v := allocUint64(t, s, 42)
	val, ok := s.WitnessValue(v)
	require.True(t, ok)
	require.Equal(t, uint64(42), val.Uint64())

	unassigned, err := s.AllocVariable(func() (fr.Element, error) {
		return fr.Element{}, ErrMissingAssignment
	})
	require.NoError(t, err)
	_, ok = s.WitnessValue(unassigned)
	require.False(t, ok)
	require.Equal(t, 3, s.NbVariables())
	require.Equal(t, 2, s.NbAssigned())

	_, err = s.AllocVariable(func() (fr.Element, error) {
		return fr.Element{}, errors.New("boom")
	})
	require.Error(t, err)
}

func TestTernaryLcEq(t *testing.T) {
	s := NewSystem()
	a := allocUint64(t, s, 3)
	b := allocUint64(t, s, 5)
	c := allocUint64(t, s, 7)
	target := allocUint64(t, s, 3+2*5+4*7)

	coeffs := [3]fr.Element{fr.NewElement(1), fr.NewElement(2), fr.NewElement(4)}
	require.NoError(t, s.TernaryLcEq(coeffs, [3]Variable{a, b, c}, target))
	require.NoError(t, s.Satisfied())

	bad := allocUint64(t, s, 1)
	require.NoError(t, s.TernaryLcEq(coeffs, [3]Variable{a, b, c}, bad))
	require.Error(t, s.Satisfied())
}

func TestMainGate(t *testing.T) {
	s := NewSystem()
	a := allocUint64(t, s, 6)
	b := allocUint64(t, s, 7)

	var minusOne fr.Element
	minusOne.SetOne()
	minusOne.Neg(&minusOne)

	// a*b - d == 0 via the multiplication selector
	target := allocUint64(t, s, 42)
	selectors := [7]fr.Element{{}, {}, {}, minusOne, fr.NewElement(1), {}, {}}
	require.NoError(t, s.MainGate(selectors, [4]Variable{a, b, s.ZeroVariable(), target}))
	require.NoError(t, s.Satisfied())

	// qDnext is not supported by the reference checker
	selectors[6] = fr.NewElement(1)
	require.Error(t, s.MainGate(selectors, [4]Variable{a, b, s.ZeroVariable(), target}))
}

func TestRange32Gate(t *testing.T) {
	s := NewSystem()
	// accumulate 0b11_01_10_00 two bits at a time
	vals := []uint64{3, 3*4 + 1, (3*4+1)*4 + 2, ((3*4+1)*4 + 2) * 4}
	var wires [4]Variable
	for i, v := range vals {
		wires[i] = allocUint64(t, s, v)
	}
	require.NoError(t, s.Range32Gate(s.ZeroVariable(), wires))
	require.NoError(t, s.Satisfied())

	bad := allocUint64(t, s, vals[3]+5) // step of 5 is not a 2-bit digit
	require.NoError(t, s.Range32Gate(s.ZeroVariable(), [4]Variable{wires[0], wires[1], wires[2], bad}))
	require.Error(t, s.Satisfied())
}

func TestIn04RangeGate(t *testing.T) {
	s := NewSystem()
	good := allocUint64(t, s, 3)
	bad := allocUint64(t, s, 4)
	wires := [4]Variable{good, bad, s.ZeroVariable(), s.ZeroVariable()}

	require.NoError(t, s.In04RangeGate(0, wires))
	require.NoError(t, s.Satisfied())

	require.NoError(t, s.In04RangeGate(1, wires))
	require.Error(t, s.Satisfied())

	require.Error(t, s.In04RangeGate(4, wires))
}

func TestTableRegistration(t *testing.T) {
	s := NewSystem()
	tbl := &constTable{name: "t", width: 2, size: 4, outs: map[uint64][]uint64{0: {0}, 1: {10}, 2: {20}, 3: {30}}}
	h, err := s.AddTable(tbl)
	require.NoError(t, err)
	require.Equal(t, tbl, s.Table(h))

	_, err = s.AddTable(&constTable{name: "t", width: 2, size: 4})
	require.Error(t, err, "duplicate name must fail")

	_, err = s.AddTable(&constTable{name: "wide", width: 5, size: 4})
	require.Error(t, err, "unsupported width must fail")
}

func TestLookupGate(t *testing.T) {
	s := NewSystem()
	tbl := &constTable{name: "t", width: 2, size: 4, outs: map[uint64][]uint64{0: {0}, 1: {10}, 2: {20}, 3: {30}}}
	h, err := s.AddTable(tbl)
	require.NoError(t, err)

	key := allocUint64(t, s, 2)
	out := allocUint64(t, s, 20)
	require.NoError(t, s.LookupGate([]Variable{key, out}, h))
	require.NoError(t, s.Satisfied())
	require.Equal(t, 1, s.NbLookups())

	badOut := allocUint64(t, s, 21)
	require.NoError(t, s.LookupGate([]Variable{key, badOut}, h))
	require.Error(t, s.Satisfied())
}

func TestLookupDomainViolation(t *testing.T) {
	s := NewSystem()
	tbl := &constTable{name: "t", width: 2, size: 4, outs: map[uint64][]uint64{}}
	h, err := s.AddTable(tbl)
	require.NoError(t, err)

	key := allocUint64(t, s, 17)
	out := allocUint64(t, s, 0)
	require.NoError(t, s.LookupGate([]Variable{key, out}, h))
	err = s.Satisfied()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTableDomain)
}

func TestSatisfiedMissingAssignment(t *testing.T) {
	s := NewSystem()
	a := allocUint64(t, s, 1)
	hole, err := s.AllocVariable(func() (fr.Element, error) {
		return fr.Element{}, ErrMissingAssignment
	})
	require.NoError(t, err)

	coeffs := [3]fr.Element{fr.NewElement(1), {}, {}}
	require.NoError(t, s.TernaryLcEq(coeffs, [3]Variable{a, s.ZeroVariable(), s.ZeroVariable()}, hole))
	require.ErrorIs(t, s.Satisfied(), ErrMissingAssignment)
}

func TestGateBatch(t *testing.T) {
	s := NewSystem()
	require.Error(t, s.EndGateBatch())
	require.NoError(t, s.BeginGateBatch())
	require.Error(t, s.BeginGateBatch())
	require.NoError(t, s.EndGateBatch())
}
