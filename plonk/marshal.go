package plonk

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// TableInfo describes a registered table inside a [Snapshot].
type TableInfo struct {
	Name  string `cbor:"name"`
	Width int    `cbor:"width"`
	Size  uint64 `cbor:"size"`
}

// Snapshot is a serializable summary of a built system: wire, gate and lookup
// counts plus the registered table catalog. It is a diagnostic artifact for
// comparing gate budgets across gadget parameter choices; it does not carry
// witness data.
type Snapshot struct {
	NbVariables int         `cbor:"nbVariables"`
	NbAssigned  int         `cbor:"nbAssigned"`
	NbGates     int         `cbor:"nbGates"`
	NbLookups   int         `cbor:"nbLookups"`
	NbBatches   int         `cbor:"nbBatches"`
	Tables      []TableInfo `cbor:"tables"`
}

// Snapshot summarizes the current state of the builder.
func (s *System) Snapshot() Snapshot {
	snap := Snapshot{
		NbVariables: s.NbVariables(),
		NbAssigned:  s.NbAssigned(),
		NbGates:     s.NbGates(),
		NbLookups:   s.NbLookups(),
		NbBatches:   s.nbBatches,
	}
	for _, t := range s.tables {
		snap.Tables = append(snap.Tables, TableInfo{Name: t.Name(), Width: t.Width(), Size: t.Size()})
	}
	return snap
}

// WriteTo serializes a snapshot of the system to w using CBOR.
func (s *System) WriteTo(w io.Writer) (int64, error) {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return 0, fmt.Errorf("cbor encoder: %w", err)
	}
	data, err := enc.Marshal(s.Snapshot())
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot: %w", err)
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadSnapshot deserializes a system snapshot previously written with WriteTo.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}
