// Package plonk defines the constraint-system and lookup-table interfaces
// consumed by the gadget packages, together with a reference in-memory
// builder used for testing gadget soundness.
//
// The gate surface is deliberately narrow: variable allocation with a
// value-producing closure, batched emission of custom gates, a ternary
// linear-combination equality gate, a fixed-format main gate with seven
// selectors and four wires, two small range gates and a lookup gate binding
// a key/output tuple to a registered table.
package plonk

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	// ErrMissingAssignment signals that a witness value was required but the
	// circuit is being built in a setup or verification-only pass. Value
	// closures return it to allocate an unassigned wire.
	ErrMissingAssignment = errors.New("missing variable assignment")

	// ErrTableDomain signals a lookup key outside a registered table's domain.
	ErrTableDomain = errors.New("lookup key outside table domain")
)

// Variable is an opaque wire index in a constraint system.
type Variable uint32

// TableHandle references a table registered in a constraint system's catalog.
// Handles are borrowed by gadget invocations; the catalog owns the tables.
type TableHandle int

// Table is a registered lookup table. Query is deterministic and total over
// the table's declared domain; keys outside the domain return an error
// wrapping [ErrTableDomain]. Width reports the number of wire slots the
// table's lookup gate occupies, key column included.
type Table interface {
	Name() string
	Width() int
	Size() uint64
	Query(key fr.Element) ([]fr.Element, error)
}

// ConstraintSystem is the gate-emission surface consumed by gadgets.
// Implementations are not safe for concurrent construction; circuit building
// for one instance happens on one builder.
type ConstraintSystem interface {
	// AllocVariable allocates a new wire. The closure produces the wire's
	// concrete value during witness generation; returning
	// ErrMissingAssignment leaves the wire unassigned (setup pass). Any
	// other error aborts construction.
	AllocVariable(value func() (fr.Element, error)) (Variable, error)

	// ZeroVariable returns the pre-allocated constant-zero wire, used to pad
	// fixed-width gates.
	ZeroVariable() Variable

	// BeginGateBatch groups the following gates into one trace step until
	// EndGateBatch.
	BeginGateBatch() error
	EndGateBatch() error

	// TernaryLcEq asserts coeffs[0]*inputs[0] + coeffs[1]*inputs[1] +
	// coeffs[2]*inputs[2] == target.
	TernaryLcEq(coeffs [3]fr.Element, inputs [3]Variable, target Variable) error

	// MainGate applies the fixed-format main gate
	//   qA*a + qB*b + qC*c + qD*d + qM*a*b + qConst + qDnext*d' == 0
	// with selectors ordered [qA, qB, qC, qD, qM, qConst, qDnext] over the
	// four wires [a, b, c, d].
	MainGate(selectors [7]fr.Element, wires [4]Variable) error

	// Range32Gate enforces four 2-bit accumulation steps: with p = prev and
	// the wires a, b, c, d, each of a-4p, b-4a, c-4b, d-4c lies in [0, 4).
	// Four chained applications range-check a full 32-bit decomposition.
	Range32Gate(prev Variable, limbs [4]Variable) error

	// In04RangeGate constrains wires[slot] to the domain {0, 1, 2, 3}.
	In04RangeGate(slot int, wires [4]Variable) error

	// LookupGate binds wires[0] as key and wires[1:] as outputs to the
	// registered table. len(wires) must equal the table's Width.
	LookupGate(wires []Variable, table TableHandle) error

	// AddTable registers a table and returns its handle. Registration of a
	// duplicate name or an unsupported width is a fatal setup error.
	AddTable(t Table) (TableHandle, error)

	// Table resolves a handle to its registered table.
	Table(h TableHandle) Table
}
