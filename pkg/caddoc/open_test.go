package caddoc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brichet/JupyterCAD/pkg/jcad"
)

func TestClassify(t *testing.T) {
	t.Run("jcad", func(t *testing.T) {
		comm, err := Classify("model.jcad")
		require.NoError(t, err)
		require.NotNil(t, comm.Format)
		require.NotNil(t, comm.ContentType)
		assert.Equal(t, "text", *comm.Format)
		assert.Equal(t, "jcad", *comm.ContentType)
		assert.Equal(t, "model.jcad", *comm.Path)
	})

	t.Run("fcstd", func(t *testing.T) {
		comm, err := Classify("part.FCStd")
		require.NoError(t, err)
		assert.Equal(t, "base64", *comm.Format)
		assert.Equal(t, "FCStd", *comm.ContentType)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Classify("model.xyz")
		assert.ErrorIs(t, err, ErrUnsupportedExtension)
	})

	t.Run("no extension", func(t *testing.T) {
		_, err := Classify("noext")
		assert.ErrorIs(t, err, ErrNoExtension)
	})
}

func TestOpenJCADFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.jcad")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"objects": [
			{"shape": "Part::Box", "name": "Box 1",
			 "parameters": {"Length": 1, "Width": 2, "Height": 3},
			 "visible": true},
			{"shape": "Part::Unknowable", "name": "skipped"},
			{"shape": "Part::Sphere", "name": "Sphere 1",
			 "parameters": {"Radius": 5, "Angle1": -90, "Angle2": 90, "Angle3": 360},
			 "visible": false}
		]
	}`), 0o644))

	d, err := Open(path, jcad.Default(), nil)
	require.NoError(t, err)
	// entries with unregistered shapes are skipped, not fatal
	assert.Equal(t, []string{"Box 1", "Sphere 1"}, d.Objects())

	sphere, err := d.GetObject("Sphere 1")
	require.NoError(t, err)
	require.NotNil(t, sphere.Visible)
	assert.False(t, *sphere.Visible)

	comm := d.Comm()
	require.NotNil(t, comm.ContentType)
	assert.Equal(t, "jcad", *comm.ContentType)
}

func TestOpenInvalidObjectFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.jcad")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"objects": [{"shape": "Part::Box", "name": "Box 1", "parameters": {"Length": 1}}]
	}`), 0o644))

	_, err := Open(path, jcad.Default(), nil)
	assert.ErrorContains(t, err, "Width")
}

type stubConverter struct {
	called bool
	out    []byte
	err    error
}

func (s *stubConverter) ToJCAD(path string) ([]byte, error) {
	s.called = true
	return s.out, s.err
}

func TestOpenFCStdRequiresConverter(t *testing.T) {
	_, err := Open("part.fcstd", jcad.Default(), nil)
	assert.ErrorIs(t, err, ErrMissingConverter)
}

func TestOpenFCStdThroughConverter(t *testing.T) {
	conv := &stubConverter{out: []byte(`{
		"objects": [{"shape": "Part::Cylinder", "name": "Cylinder 1",
			"parameters": {"Radius": 1, "Height": 2, "Angle": 360}}]
	}`)}

	d, err := Open("part.fcstd", jcad.Default(), map[string]Converter{"fcstd": conv})
	require.NoError(t, err)
	assert.True(t, conv.called)
	assert.Equal(t, []string{"Cylinder 1"}, d.Objects())
	assert.Equal(t, "FCStd", *d.Comm().ContentType)
}

func TestCreateBindsCommWithoutReading(t *testing.T) {
	d, err := Create("fresh.jcad", jcad.Default())
	require.NoError(t, err)
	assert.Empty(t, d.Objects())
	assert.Equal(t, "jcad", *d.Comm().ContentType)

	_, err = Create("fresh.step", jcad.Default())
	assert.ErrorIs(t, err, ErrUnsupportedExtension)
}
