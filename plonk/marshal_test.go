package plonk

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewSystem()
	tbl := &constTable{name: "t", width: 2, size: 8, outs: map[uint64][]uint64{1: {2}}}
	h, err := s.AddTable(tbl)
	require.NoError(t, err)

	key := allocUint64(t, s, 1)
	out := allocUint64(t, s, 2)
	require.NoError(t, s.LookupGate([]Variable{key, out}, h))

	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	snap, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	require.Equal(t, s.Snapshot(), snap)
	require.Equal(t, 3, snap.NbVariables)
	require.Equal(t, 1, snap.NbLookups)
	require.Len(t, snap.Tables, 1)
	require.Equal(t, "t", snap.Tables[0].Name)
}
