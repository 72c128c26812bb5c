// Package jcad defines the typed CAD object model shared between replicas:
// the closed set of shape kinds, the validated parameter record for each
// kind, and the registry that reconstructs typed objects from the untyped
// maps held in the replicated document.
package jcad

// ShapeKind tags a CAD object with the primitive or operation that produced
// it. The set is closed; Part::Any is the escape hatch for externally
// supplied geometry.
type ShapeKind string

const (
	ShapeBox         ShapeKind = "Part::Box"
	ShapeCone        ShapeKind = "Part::Cone"
	ShapeCylinder    ShapeKind = "Part::Cylinder"
	ShapeSphere      ShapeKind = "Part::Sphere"
	ShapeTorus       ShapeKind = "Part::Torus"
	ShapeExtrusion   ShapeKind = "Part::Extrusion"
	ShapeCut         ShapeKind = "Part::Cut"
	ShapeMultiFuse   ShapeKind = "Part::MultiFuse"
	ShapeMultiCommon ShapeKind = "Part::MultiCommon"
	ShapeAny         ShapeKind = "Part::Any"
)

// Placement positions a shape in space: a translation plus a rotation of
// Angle degrees around Axis.
type Placement struct {
	Position [3]float64
	Axis     [3]float64
	Angle    float64
}

// DefaultPlacement is the identity placement used when a caller supplies
// none: origin position, Z axis, zero angle.
func DefaultPlacement() Placement {
	return Placement{Axis: [3]float64{0, 0, 1}}
}

func (p Placement) toMap() map[string]any {
	return map[string]any{
		"Position": []any{p.Position[0], p.Position[1], p.Position[2]},
		"Axis":     []any{p.Axis[0], p.Axis[1], p.Axis[2]},
		"Angle":    p.Angle,
	}
}
