package jcad

import (
	"fmt"
	"math"
)

// Params is the closed tagged union of per-kind parameter records. A record
// is only ever produced by its kind's decoder, which extracts the declared
// fields from an untyped map and validates them; undeclared raw fields are
// dropped on the way in.
type Params interface {
	Kind() ShapeKind
	Validate() error
	toMap() map[string]any
}

// ParamsDecoder builds and validates a parameter record from the raw
// "parameters" map of a serialized object.
type ParamsDecoder func(raw map[string]any) (Params, error)

type BoxParams struct {
	Length, Width, Height float64
	Placement             *Placement
}

type ConeParams struct {
	Radius1, Radius2, Height, Angle float64
	Placement                       *Placement
}

type CylinderParams struct {
	Radius, Height, Angle float64
	Placement             *Placement
}

type SphereParams struct {
	Radius, Angle1, Angle2, Angle3 float64
	Placement                      *Placement
}

type TorusParams struct {
	Radius1, Radius2, Angle1, Angle2, Angle3 float64
	Placement                                *Placement
}

// ExtrusionParams sweeps an existing object along a direction vector.
type ExtrusionParams struct {
	Base                 string
	Dir                  [3]float64
	LengthFwd, LengthRev float64
	Solid                bool
	Placement            *Placement
}

// CutParams subtracts Tool from Base. Operand names are resolved against the
// owning document at construction time, not here.
type CutParams struct {
	Base, Tool string
	Refine     bool
	Placement  *Placement
}

type FuseParams struct {
	Shapes    []string
	Refine    bool
	Placement *Placement
}

type IntersectionParams struct {
	Shapes    []string
	Refine    bool
	Placement *Placement
}

// AnyParams carries externally produced geometry as an opaque BREP blob.
// This is the single escape hatch for shapes the schema set does not model.
type AnyParams struct {
	Shape     string
	Placement *Placement
}

func (BoxParams) Kind() ShapeKind          { return ShapeBox }
func (ConeParams) Kind() ShapeKind         { return ShapeCone }
func (CylinderParams) Kind() ShapeKind     { return ShapeCylinder }
func (SphereParams) Kind() ShapeKind       { return ShapeSphere }
func (TorusParams) Kind() ShapeKind        { return ShapeTorus }
func (ExtrusionParams) Kind() ShapeKind    { return ShapeExtrusion }
func (CutParams) Kind() ShapeKind          { return ShapeCut }
func (FuseParams) Kind() ShapeKind         { return ShapeMultiFuse }
func (IntersectionParams) Kind() ShapeKind { return ShapeMultiCommon }
func (AnyParams) Kind() ShapeKind          { return ShapeAny }

func (p BoxParams) Validate() error {
	return finite(map[string]float64{"Length": p.Length, "Width": p.Width, "Height": p.Height})
}

func (p ConeParams) Validate() error {
	return finite(map[string]float64{"Radius1": p.Radius1, "Radius2": p.Radius2, "Height": p.Height, "Angle": p.Angle})
}

func (p CylinderParams) Validate() error {
	return finite(map[string]float64{"Radius": p.Radius, "Height": p.Height, "Angle": p.Angle})
}

func (p SphereParams) Validate() error {
	return finite(map[string]float64{"Radius": p.Radius, "Angle1": p.Angle1, "Angle2": p.Angle2, "Angle3": p.Angle3})
}

func (p TorusParams) Validate() error {
	return finite(map[string]float64{"Radius1": p.Radius1, "Radius2": p.Radius2, "Angle1": p.Angle1, "Angle2": p.Angle2, "Angle3": p.Angle3})
}

func (p ExtrusionParams) Validate() error {
	if p.Base == "" {
		return fmt.Errorf("missing required field Base")
	}
	return finite(map[string]float64{
		"LengthFwd": p.LengthFwd, "LengthRev": p.LengthRev,
		"Dir[0]": p.Dir[0], "Dir[1]": p.Dir[1], "Dir[2]": p.Dir[2],
	})
}

func (p CutParams) Validate() error {
	if p.Base == "" {
		return fmt.Errorf("missing required field Base")
	}
	if p.Tool == "" {
		return fmt.Errorf("missing required field Tool")
	}
	return nil
}

func (p FuseParams) Validate() error         { return validateShapes(p.Shapes) }
func (p IntersectionParams) Validate() error { return validateShapes(p.Shapes) }

func (p AnyParams) Validate() error {
	if p.Shape == "" {
		return fmt.Errorf("missing required field Shape")
	}
	return nil
}

func validateShapes(shapes []string) error {
	if len(shapes) < 2 {
		return fmt.Errorf("Shapes must reference at least two objects, got %d", len(shapes))
	}
	for i, s := range shapes {
		if s == "" {
			return fmt.Errorf("Shapes[%d] is empty", i)
		}
	}
	return nil
}

func finite(fields map[string]float64) error {
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("field %s is not a finite number", name)
		}
	}
	return nil
}
