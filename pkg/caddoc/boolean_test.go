package caddoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brichet/JupyterCAD/pkg/jcad"
)

func threeObjectDoc(t *testing.T) *Document {
	t.Helper()
	d := New(jcad.Default())
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, d.AddBox(name, 1, 1, 1, jcad.DefaultPlacement()))
	}
	return d
}

func TestResolveOperands(t *testing.T) {
	d := threeObjectDoc(t)

	for name, tc := range map[string]struct {
		first, second Operand
		wantA, wantB  string
	}{
		"both defaulted": {Operand{}, Operand{}, "B", "C"},
		"index and name": {ByIndex(0), ByName("C"), "A", "C"},
		"both names":     {ByName("C"), ByName("A"), "C", "A"},
		"default second": {ByName("A"), Operand{}, "A", "C"},
		"indexes":        {ByIndex(2), ByIndex(1), "C", "B"},
	} {
		t.Run(name, func(t *testing.T) {
			a, b, err := d.ResolveOperands(tc.first, tc.second)
			require.NoError(t, err)
			assert.Equal(t, tc.wantA, a)
			assert.Equal(t, tc.wantB, b)
		})
	}
}

func TestResolveOperandsUnknown(t *testing.T) {
	d := threeObjectDoc(t)

	_, _, err := d.ResolveOperands(ByName("Z"), ByName("C"))
	assert.ErrorIs(t, err, ErrUnknownObject)

	_, _, err = d.ResolveOperands(ByIndex(7), Operand{})
	assert.ErrorIs(t, err, ErrUnknownObject)
}

func TestResolveOperandsNeedsTwoObjects(t *testing.T) {
	d := New(jcad.Default())
	_, _, err := d.ResolveOperands(Operand{}, Operand{})
	assert.ErrorIs(t, err, ErrInsufficientOperands)

	require.NoError(t, d.AddBox("only", 1, 1, 1, jcad.DefaultPlacement()))
	_, _, err = d.ResolveOperands(Operand{}, Operand{})
	assert.ErrorIs(t, err, ErrInsufficientOperands)
}

func TestCutAddsResultAndHidesOperands(t *testing.T) {
	d := New(jcad.Default())
	require.NoError(t, d.AddBox("A", 1, 1, 1, jcad.DefaultPlacement()))
	require.NoError(t, d.AddBox("B", 1, 1, 1, jcad.DefaultPlacement()))

	require.NoError(t, d.Cut("", ByName("A"), ByName("B"), false))

	assert.Equal(t, []string{"A", "B", "Cut 1"}, d.Objects())

	cut, err := d.GetObject("Cut 1")
	require.NoError(t, err)
	params, ok := cut.Params.(jcad.CutParams)
	require.True(t, ok)
	assert.Equal(t, "A", params.Base)
	assert.Equal(t, "B", params.Tool)

	for _, operand := range []string{"A", "B"} {
		obj, err := d.GetObject(operand)
		require.NoError(t, err)
		require.NotNil(t, obj.Visible, operand)
		assert.False(t, *obj.Visible, operand)
	}
}

func TestFuseDefaultsToLastTwoObjects(t *testing.T) {
	d := threeObjectDoc(t)

	require.NoError(t, d.Fuse("", Operand{}, Operand{}, true))

	assert.Equal(t, []string{"A", "B", "C", "Fuse 1"}, d.Objects())
	fuse, err := d.GetObject("Fuse 1")
	require.NoError(t, err)
	params, ok := fuse.Params.(jcad.FuseParams)
	require.True(t, ok)
	assert.Equal(t, []string{"B", "C"}, params.Shapes)
	assert.True(t, params.Refine)

	// A was not an operand and stays visible
	a, err := d.GetObject("A")
	require.NoError(t, err)
	require.NotNil(t, a.Visible)
	assert.True(t, *a.Visible)
}

func TestIntersect(t *testing.T) {
	d := threeObjectDoc(t)

	require.NoError(t, d.Intersect("overlap", ByIndex(0), ByIndex(1), false))

	assert.Contains(t, d.Objects(), "overlap")
	obj, err := d.GetObject("overlap")
	require.NoError(t, err)
	assert.Equal(t, jcad.ShapeMultiCommon, obj.Shape)
	params, ok := obj.Params.(jcad.IntersectionParams)
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, params.Shapes)
}

func TestBooleanFailureLeavesDocumentUnchanged(t *testing.T) {
	d := threeObjectDoc(t)

	err := d.Cut("", ByName("Z"), Operand{}, false)
	require.ErrorIs(t, err, ErrUnknownObject)
	assert.Equal(t, []string{"A", "B", "C"}, d.Objects())
	for _, name := range []string{"A", "B", "C"} {
		obj, err := d.GetObject(name)
		require.NoError(t, err)
		require.NotNil(t, obj.Visible)
		assert.True(t, *obj.Visible, name)
	}
}

func TestExtrusionRequiresExistingBase(t *testing.T) {
	d := New(jcad.Default())
	err := d.AddExtrusion("", "missing", [3]float64{0, 0, 1}, 10, 0, true, jcad.DefaultPlacement())
	assert.ErrorIs(t, err, ErrUnknownObject)

	require.NoError(t, d.AddBox("Base", 1, 1, 1, jcad.DefaultPlacement()))
	require.NoError(t, d.AddExtrusion("", "Base", [3]float64{0, 0, 1}, 10, 0, true, jcad.DefaultPlacement()))
	assert.Equal(t, []string{"Base", "Extrusion 1"}, d.Objects())
}
