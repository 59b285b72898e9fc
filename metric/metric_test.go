package metric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRegistersAndObserves(t *testing.T) {
	reg := NewRegistry()
	m, err := New("moga_test", reg)
	require.NoError(t, err)

	m.ObserveGeneration(5, 2, 12.5)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestAverager(t *testing.T) {
	avg := NewAverager()
	require.Equal(t, 0.0, avg.Read())

	avg.Observe(2)
	avg.Observe(4)
	require.Equal(t, 3.0, avg.Read())
}
