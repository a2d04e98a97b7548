// Package sha256 compiles the SHA-256 compression primitives into
// arithmetic-circuit constraints for a PLONK-style constraint system with
// custom gates and lookup tables.
//
// A 32-bit register is re-encoded into a non-binary radix ("sparse form", 7
// for the Choose path, 4 for the Majority path) in which bitwise rotation and
// the Ch/Maj boolean functions become field additions and table lookups. The
// gadget tracks how many excess bits a value may carry beyond 32 bits and
// normalizes accumulated sparse values back to binary-weighted field
// elements, chunk by chunk.
package sha256

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/plonksha/plonk"
)

// Value is a circuit value: either a compile-time field constant or a handle
// to an allocated wire with an optional concrete witness. Operations that
// combine constants short-circuit to field arithmetic and never touch the
// constraint system; operations on an allocated value emit constraints
// whether or not a witness is present.
type Value struct {
	constant fr.Element
	variable plonk.Variable
	witness  *fr.Element
	isConst  bool
}

// NewConstant wraps a field element known at circuit-compile time.
func NewConstant(x fr.Element) Value {
	return Value{constant: x, isConst: true}
}

// ConstantFromUint64 wraps a small integer constant.
func ConstantFromUint64(n uint64) Value {
	return NewConstant(fr.NewElement(n))
}

// NewAllocated wraps an allocated wire. witness is nil in setup or
// verification-only passes.
func NewAllocated(v plonk.Variable, witness *fr.Element) Value {
	return Value{variable: v, witness: witness}
}

// IsConstant reports whether the value is a compile-time constant.
func (v Value) IsConstant() bool { return v.isConst }

// Constant returns the wrapped constant. It panics on an allocated value.
func (v Value) Constant() fr.Element {
	if !v.isConst {
		panic("sha256: Constant called on an allocated value")
	}
	return v.constant
}

// Variable returns the wire handle. It panics on a constant.
func (v Value) Variable() plonk.Variable {
	if v.isConst {
		panic("sha256: Variable called on a constant value")
	}
	return v.variable
}

// Witness returns the concrete value if one is known: always for a constant,
// only during witness generation for an allocated value.
func (v Value) Witness() (fr.Element, bool) {
	if v.isConst {
		return v.constant, true
	}
	if v.witness == nil {
		return fr.Element{}, false
	}
	return *v.witness, true
}

// OverflowTracker bounds how far a circuit value may exceed the nominal
// 32-bit range before it must be re-canonicalized.
type OverflowTracker uint8

const (
	// NoOverflow marks an exact 32-bit value.
	NoOverflow OverflowTracker = iota
	// OneBitOverflow marks a value of at most 33 bits.
	OneBitOverflow
	// SmallOverflow marks a value carrying at most 4 extra bits (36 bits).
	SmallOverflow
	// SignificantOverflow marks a value beyond 36 bits. No reduction strategy
	// is defined for it; converting such a value is a fatal design error.
	SignificantOverflow
)

func (t OverflowTracker) String() string {
	switch t {
	case NoOverflow:
		return "none"
	case OneBitOverflow:
		return "one bit"
	case SmallOverflow:
		return "small"
	case SignificantOverflow:
		return "significant"
	}
	return "unknown"
}

// TrackedValue pairs a circuit value with its overflow classification.
type TrackedValue struct {
	Val      Value
	Overflow OverflowTracker
}

// Tracked tags a value as an exact 32-bit register.
func Tracked(v Value) TrackedValue {
	return TrackedValue{Val: v, Overflow: NoOverflow}
}

// allocValue allocates a wire whose value is produced by compute, keeping the
// computed witness alongside the handle. A compute returning
// plonk.ErrMissingAssignment yields an unassigned wire.
func allocValue(sys plonk.ConstraintSystem, compute func() (fr.Element, error)) (Value, error) {
	var wit *fr.Element
	v, err := sys.AllocVariable(func() (fr.Element, error) {
		x, err := compute()
		if err != nil {
			return fr.Element{}, err
		}
		wit = &x
		return x, nil
	})
	if err != nil {
		return Value{}, err
	}
	return NewAllocated(v, wit), nil
}
