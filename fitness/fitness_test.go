package fitness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/moga/errs"
)

func TestBaseObjectiveAccess(t *testing.T) {
	f := FromValues([]float64{1, 2, 3})
	require.Equal(t, 3, f.NumObjectives())

	v, err := f.ObjectiveValue(1)
	require.NoError(t, err)
	require.Equal(t, 2.0, v)

	_, err = f.ObjectiveValue(3)
	require.ErrorIs(t, err, errs.ErrInvalidIndex)

	require.NoError(t, f.SetObjectiveValue(0, 9))
	v, _ = f.ObjectiveValue(0)
	require.Equal(t, 9.0, v)

	require.ErrorIs(t, f.SetObjectiveValue(-1, 0), errs.ErrInvalidIndex)
}

func TestCloneIsIndependent(t *testing.T) {
	original := FromValues([]float64{1, 2})
	original.SetValue(5)
	original.SetAcceptable(true)

	clone := original.Clone()
	clone.SetObjectiveValue(0, 100)
	clone.SetValue(-1)
	clone.SetAcceptable(false)

	v, _ := original.ObjectiveValue(0)
	require.Equal(t, 1.0, v)
	require.Equal(t, 5.0, original.Value())
	require.True(t, original.Acceptable())
}

func TestEqual(t *testing.T) {
	a := FromValues([]float64{1, 2})
	b := FromValues([]float64{1, 2})
	require.True(t, a.Equal(b))

	c := FromValues([]float64{1, 2, 3})
	require.False(t, a.Equal(c))

	d := FromValues([]float64{1, 3})
	require.False(t, a.Equal(d))
}

type stubExt struct {
	Rank int
}

func TestRequireExtension(t *testing.T) {
	f := New(2)
	_, err := RequireExtension[stubExt](f)
	require.True(t, errors.Is(err, errs.ErrFitnessShape))

	f.SetExtension(&stubExt{Rank: 3})
	ext, err := RequireExtension[stubExt](f)
	require.NoError(t, err)
	require.Equal(t, 3, ext.Rank)
}
