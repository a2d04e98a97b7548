package plonk

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/plonksha/logger"
	"github.com/rs/zerolog"
)

type gateKind uint8

const (
	gateTernaryLc gateKind = iota
	gateMain
	gateRange32
	gateIn04Range
	gateLookup
)

func (k gateKind) String() string {
	switch k {
	case gateTernaryLc:
		return "ternary_lc_eq"
	case gateMain:
		return "main"
	case gateRange32:
		return "range32"
	case gateIn04Range:
		return "in04_range"
	case gateLookup:
		return "lookup"
	}
	return "unknown"
}

type gate struct {
	kind   gateKind
	coeffs []fr.Element
	wires  []Variable
	slot   int
	table  TableHandle
}

// System is a reference constraint-system builder. It records every emitted
// gate and the witness values produced by allocation closures, and can replay
// all recorded constraints against the witness. It is intended for gadget
// testing, not proving.
//
// System is not safe for concurrent use.
type System struct {
	values   []fr.Element
	assigned *bitset.BitSet
	gates    []gate
	tables   []Table
	names    map[string]struct{}

	inBatch   bool
	nbBatches int
	nbLookups int

	log zerolog.Logger
}

// NewSystem returns an empty reference builder with the constant-zero wire
// pre-allocated.
func NewSystem() *System {
	s := &System{
		assigned: bitset.New(64),
		names:    make(map[string]struct{}),
		log:      logger.Logger().With().Str("component", "plonk").Logger(),
	}
	s.values = append(s.values, fr.Element{})
	s.assigned.Set(0)
	return s
}

// AllocVariable implements [ConstraintSystem].
func (s *System) AllocVariable(value func() (fr.Element, error)) (Variable, error) {
	v := Variable(len(s.values))
	val, err := value()
	if err != nil {
		if !errors.Is(err, ErrMissingAssignment) {
			return 0, fmt.Errorf("variable %d value closure: %w", v, err)
		}
		s.values = append(s.values, fr.Element{})
		return v, nil
	}
	s.values = append(s.values, val)
	s.assigned.Set(uint(v))
	return v, nil
}

// ZeroVariable implements [ConstraintSystem].
func (s *System) ZeroVariable() Variable { return 0 }

// BeginGateBatch implements [ConstraintSystem].
func (s *System) BeginGateBatch() error {
	if s.inBatch {
		return errors.New("gate batch already open")
	}
	s.inBatch = true
	s.nbBatches++
	return nil
}

// EndGateBatch implements [ConstraintSystem].
func (s *System) EndGateBatch() error {
	if !s.inBatch {
		return errors.New("no open gate batch")
	}
	s.inBatch = false
	return nil
}

// TernaryLcEq implements [ConstraintSystem].
func (s *System) TernaryLcEq(coeffs [3]fr.Element, inputs [3]Variable, target Variable) error {
	wires := []Variable{inputs[0], inputs[1], inputs[2], target}
	if err := s.checkWires(wires); err != nil {
		return err
	}
	s.gates = append(s.gates, gate{kind: gateTernaryLc, coeffs: coeffs[:], wires: wires})
	return nil
}

// MainGate implements [ConstraintSystem].
func (s *System) MainGate(selectors [7]fr.Element, wires [4]Variable) error {
	if !selectors[6].IsZero() {
		return errors.New("reference builder does not track next-step wires, qDnext must be zero")
	}
	if err := s.checkWires(wires[:]); err != nil {
		return err
	}
	s.gates = append(s.gates, gate{kind: gateMain, coeffs: selectors[:], wires: wires[:]})
	return nil
}

// Range32Gate implements [ConstraintSystem].
func (s *System) Range32Gate(prev Variable, limbs [4]Variable) error {
	wires := append([]Variable{prev}, limbs[:]...)
	if err := s.checkWires(wires); err != nil {
		return err
	}
	s.gates = append(s.gates, gate{kind: gateRange32, wires: wires})
	return nil
}

// In04RangeGate implements [ConstraintSystem].
func (s *System) In04RangeGate(slot int, wires [4]Variable) error {
	if slot < 0 || slot >= 4 {
		return fmt.Errorf("in04 range gate slot %d out of range", slot)
	}
	if err := s.checkWires(wires[:]); err != nil {
		return err
	}
	s.gates = append(s.gates, gate{kind: gateIn04Range, wires: wires[:], slot: slot})
	return nil
}

// LookupGate implements [ConstraintSystem].
func (s *System) LookupGate(wires []Variable, table TableHandle) error {
	t := s.Table(table)
	if len(wires) != t.Width() {
		return fmt.Errorf("lookup gate on table %q: %d wires, table width %d", t.Name(), len(wires), t.Width())
	}
	if err := s.checkWires(wires); err != nil {
		return err
	}
	s.gates = append(s.gates, gate{kind: gateLookup, wires: wires, table: table})
	s.nbLookups++
	return nil
}

// AddTable implements [ConstraintSystem].
func (s *System) AddTable(t Table) (TableHandle, error) {
	if _, ok := s.names[t.Name()]; ok {
		return 0, fmt.Errorf("table %q already registered", t.Name())
	}
	if w := t.Width(); w < 2 || w > 3 {
		return 0, fmt.Errorf("table %q width %d unsupported", t.Name(), w)
	}
	s.names[t.Name()] = struct{}{}
	s.tables = append(s.tables, t)
	h := TableHandle(len(s.tables) - 1)
	s.log.Debug().Str("table", t.Name()).Int("width", t.Width()).Uint64("size", t.Size()).Msg("registered lookup table")
	return h, nil
}

// Table implements [ConstraintSystem].
func (s *System) Table(h TableHandle) Table {
	return s.tables[h]
}

// NbVariables returns the number of allocated wires, the zero wire included.
func (s *System) NbVariables() int { return len(s.values) }

// NbAssigned returns the number of wires carrying a concrete witness value.
func (s *System) NbAssigned() int { return int(s.assigned.Count()) }

// NbGates returns the number of recorded gates, lookup gates included.
func (s *System) NbGates() int { return len(s.gates) }

// NbLookups returns the number of recorded lookup gates.
func (s *System) NbLookups() int { return s.nbLookups }

// WitnessValue returns the concrete value of a wire, if one was produced.
func (s *System) WitnessValue(v Variable) (fr.Element, bool) {
	if int(v) >= len(s.values) || !s.assigned.Test(uint(v)) {
		return fr.Element{}, false
	}
	return s.values[v], true
}

func (s *System) checkWires(wires []Variable) error {
	for _, w := range wires {
		if int(w) >= len(s.values) {
			return fmt.Errorf("wire %d not allocated", w)
		}
	}
	return nil
}

// Satisfied replays every recorded gate against the produced witness. It
// returns an error wrapping ErrMissingAssignment if a gate references an
// unassigned wire, and a descriptive error for the first violated constraint.
func (s *System) Satisfied() error {
	for i, g := range s.gates {
		if err := s.checkGate(g); err != nil {
			return fmt.Errorf("gate %d (%s): %w", i, g.kind, err)
		}
	}
	return nil
}

func (s *System) wireValues(wires []Variable) ([]fr.Element, error) {
	vals := make([]fr.Element, len(wires))
	for i, w := range wires {
		v, ok := s.WitnessValue(w)
		if !ok {
			return nil, fmt.Errorf("wire %d: %w", w, ErrMissingAssignment)
		}
		vals[i] = v
	}
	return vals, nil
}

func (s *System) checkGate(g gate) error {
	vals, err := s.wireValues(g.wires)
	if err != nil {
		return err
	}

	switch g.kind {
	case gateTernaryLc:
		var acc, t fr.Element
		for i := 0; i < 3; i++ {
			t.Mul(&g.coeffs[i], &vals[i])
			acc.Add(&acc, &t)
		}
		if !acc.Equal(&vals[3]) {
			return fmt.Errorf("linear combination %s != target %s", acc.String(), vals[3].String())
		}

	case gateMain:
		var acc, t fr.Element
		for i := 0; i < 4; i++ {
			t.Mul(&g.coeffs[i], &vals[i])
			acc.Add(&acc, &t)
		}
		t.Mul(&vals[0], &vals[1])
		t.Mul(&t, &g.coeffs[4])
		acc.Add(&acc, &t)
		acc.Add(&acc, &g.coeffs[5])
		if !acc.IsZero() {
			return fmt.Errorf("main gate evaluates to %s", acc.String())
		}

	case gateRange32:
		four := fr.NewElement(4)
		for i := 1; i < len(vals); i++ {
			var step fr.Element
			step.Mul(&vals[i-1], &four)
			step.Sub(&vals[i], &step)
			if !step.IsUint64() || step.Uint64() > 3 {
				return fmt.Errorf("step %d is not a 2-bit digit", i-1)
			}
		}

	case gateIn04Range:
		v := vals[g.slot]
		if !v.IsUint64() || v.Uint64() > 3 {
			return fmt.Errorf("wire slot %d outside {0,1,2,3}", g.slot)
		}

	case gateLookup:
		t := s.Table(g.table)
		outs, err := t.Query(vals[0])
		if err != nil {
			return fmt.Errorf("table %q: %w", t.Name(), err)
		}
		for i, out := range outs {
			if !out.Equal(&vals[i+1]) {
				return fmt.Errorf("table %q output %d mismatch", t.Name(), i)
			}
		}
	}
	return nil
}
