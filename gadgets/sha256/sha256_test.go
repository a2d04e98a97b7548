package sha256

import (
	"math/big"
	"math/bits"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/plonksha/plonk"
	"github.com/stretchr/testify/require"
)

func rotr(x uint32, r int) uint32 { return bits.RotateLeft32(x, -r) }

func refCh(e, f, g uint32) uint32  { return (e & f) ^ (^e & g) }
func refMaj(a, b, c uint32) uint32 { return (a & b) ^ (a & c) ^ (b & c) }
func refSigma1(e uint32) uint32    { return rotr(e, 6) ^ rotr(e, 11) ^ rotr(e, 25) }
func refSigma0(a uint32) uint32    { return rotr(a, 2) ^ rotr(a, 13) ^ rotr(a, 22) }

// allocInput allocates a wire carrying n, the way the surrounding round
// driver would feed a register into the gadget.
func allocInput(t *testing.T, sys plonk.ConstraintSystem, n uint64) Value {
	t.Helper()
	v, err := allocValue(sys, func() (fr.Element, error) {
		return fr.NewElement(n), nil
	})
	require.NoError(t, err)
	return v
}

// allocMissing allocates a wire with no witness, as in a setup pass.
func allocMissing(t *testing.T, sys plonk.ConstraintSystem) Value {
	t.Helper()
	v, err := allocValue(sys, func() (fr.Element, error) {
		return fr.Element{}, plonk.ErrMissingAssignment
	})
	require.NoError(t, err)
	return v
}

func witnessOf(t *testing.T, v Value) fr.Element {
	t.Helper()
	w, ok := v.Witness()
	require.True(t, ok, "value must carry a witness")
	return w
}

func witnessUint32(t *testing.T, v Value) uint32 {
	t.Helper()
	w := witnessOf(t, v)
	require.True(t, w.IsUint64())
	n := w.Uint64()
	require.Less(t, n, uint64(1)<<regWidth)
	return uint32(n)
}

// decodeSparse maps a sparse-radix encoding with 0/1 digits back to the
// 32-bit binary word it represents.
func decodeSparse(t *testing.T, x fr.Element, base uint64) uint32 {
	t.Helper()
	v := new(big.Int)
	x.BigInt(v)
	var res uint32
	rem := new(big.Int).Set(v)
	mod := new(big.Int)
	bigBase := new(big.Int).SetUint64(base)
	for i := 0; i < regWidth; i++ {
		rem.DivMod(rem, bigBase, mod)
		d := mod.Uint64()
		require.LessOrEqual(t, d, uint64(1), "sparse digit %d out of binary range", i)
		res |= uint32(d) << i
	}
	require.Zero(t, rem.Sign(), "sparse encoding has more than 32 digits")
	return res
}

var sampleRegisters = []uint32{
	0,
	1,
	0x6A09E667, // first SHA-256 initial hash constant
	0xBB67AE85,
	0x510E527F,
	0xFFFFFFFF,
	0x80000001,
	0x0000FFFF,
	0xDEADBEEF,
}

func TestInitialHashConstantRotations(t *testing.T) {
	// cross-checked against the stdlib rotate rather than hard-coded hex
	const n = 0x6A09E667
	for _, r := range []int{2, 6, 11, 13, 22, 25} {
		require.Equal(t, uint64(rotr(n, r)), rotateExtract(n, r, 0), "rotation by %d", r)
	}
}

func TestConstantValueAccessors(t *testing.T) {
	c := ConstantFromUint64(7)
	require.True(t, c.IsConstant())
	cv := c.Constant()
	require.Equal(t, uint64(7), cv.Uint64())
	w, ok := c.Witness()
	require.True(t, ok)
	require.Equal(t, uint64(7), w.Uint64())
	require.Panics(t, func() { c.Variable() })

	sys := plonk.NewSystem()
	a := allocInput(t, sys, 7)
	require.False(t, a.IsConstant())
	require.Panics(t, func() { a.Constant() })
}

func TestSignificantOverflowPanics(t *testing.T) {
	sys := plonk.NewSystem()
	params, err := NewGadgetParams(sys, UseTwoTables)
	require.NoError(t, err)

	in := TrackedValue{Val: allocInput(t, sys, 123), Overflow: SignificantOverflow}
	require.Panics(t, func() { _, _ = params.ConvertIntoSparseChooserForm(sys, in) })
	require.Panics(t, func() { _, _ = params.ConvertIntoSparseMajorityForm(sys, in) })
}
