package caddoc

import (
	"fmt"

	"github.com/brichet/JupyterCAD/pkg/jcad"
)

// The typed adders below mirror the notebook-facing construction flow: the
// parameters are serialized, pushed through the registry so the schema
// validates them, and the reconstructed object is appended to the sequence.
// An empty name picks the next free "{prefix} n".

func (d *Document) addTyped(name, prefix string, kind jcad.ShapeKind, params jcad.Params) error {
	if name == "" {
		name = d.NewUniqueName(prefix)
	}
	obj := &jcad.Object{Name: name, Shape: kind, Params: params}
	validated, err := d.registry.CreateObject(obj.ToMap())
	if err != nil {
		return err
	}
	if validated == nil {
		return fmt.Errorf("%w: %s", ErrUnknownShape, kind)
	}
	return d.AddObject(validated)
}

func (d *Document) AddBox(name string, length, width, height float64, placement jcad.Placement) error {
	return d.addTyped(name, "Box", jcad.ShapeBox, jcad.BoxParams{
		Length: length, Width: width, Height: height,
		Placement: &placement,
	})
}

func (d *Document) AddCone(name string, radius1, radius2, height, angle float64, placement jcad.Placement) error {
	return d.addTyped(name, "Cone", jcad.ShapeCone, jcad.ConeParams{
		Radius1: radius1, Radius2: radius2, Height: height, Angle: angle,
		Placement: &placement,
	})
}

func (d *Document) AddCylinder(name string, radius, height, angle float64, placement jcad.Placement) error {
	return d.addTyped(name, "Cylinder", jcad.ShapeCylinder, jcad.CylinderParams{
		Radius: radius, Height: height, Angle: angle,
		Placement: &placement,
	})
}

func (d *Document) AddSphere(name string, radius, angle1, angle2, angle3 float64, placement jcad.Placement) error {
	return d.addTyped(name, "Sphere", jcad.ShapeSphere, jcad.SphereParams{
		Radius: radius, Angle1: angle1, Angle2: angle2, Angle3: angle3,
		Placement: &placement,
	})
}

func (d *Document) AddTorus(name string, radius1, radius2, angle1, angle2, angle3 float64, placement jcad.Placement) error {
	return d.addTyped(name, "Torus", jcad.ShapeTorus, jcad.TorusParams{
		Radius1: radius1, Radius2: radius2, Angle1: angle1, Angle2: angle2, Angle3: angle3,
		Placement: &placement,
	})
}

// AddExtrusion sweeps an existing object along dir. The base reference must
// name an object already in the document.
func (d *Document) AddExtrusion(name, base string, dir [3]float64, lengthFwd, lengthRev float64, solid bool, placement jcad.Placement) error {
	if !d.Exists(base) {
		return fmt.Errorf("%w: %s", ErrUnknownObject, base)
	}
	return d.addTyped(name, "Extrusion", jcad.ShapeExtrusion, jcad.ExtrusionParams{
		Base: base, Dir: dir, LengthFwd: lengthFwd, LengthRev: lengthRev, Solid: solid,
		Placement: &placement,
	})
}

// AddRawShape appends externally produced geometry as an opaque BREP blob.
func (d *Document) AddRawShape(name, brep string, placement jcad.Placement) error {
	return d.addTyped(name, "Shape", jcad.ShapeAny, jcad.AnyParams{
		Shape:     brep,
		Placement: &placement,
	})
}
