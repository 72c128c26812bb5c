package jcad

// Object is a named, typed CAD object. It is a plain value until added to a
// document; the replicated sequence holds its serialized map form only.
type Object struct {
	Name   string
	Shape  ShapeKind
	Params Params

	// Visible is nil until set by the owning document or by a caller;
	// documents default it to true on add.
	Visible *bool
}

// ToMap serializes the object to its canonical wire shape:
// {name, shape, parameters: {...}, visible?}.
func (o *Object) ToMap() map[string]any {
	out := map[string]any{
		"name":       o.Name,
		"shape":      string(o.Shape),
		"parameters": o.Params.toMap(),
	}
	if o.Visible != nil {
		out["visible"] = *o.Visible
	}
	return out
}

func withPlacement(fields map[string]any, p *Placement) map[string]any {
	if p != nil {
		fields["Placement"] = p.toMap()
	}
	return fields
}

func (p BoxParams) toMap() map[string]any {
	return withPlacement(map[string]any{
		"Length": p.Length,
		"Width":  p.Width,
		"Height": p.Height,
	}, p.Placement)
}

func (p ConeParams) toMap() map[string]any {
	return withPlacement(map[string]any{
		"Radius1": p.Radius1,
		"Radius2": p.Radius2,
		"Height":  p.Height,
		"Angle":   p.Angle,
	}, p.Placement)
}

func (p CylinderParams) toMap() map[string]any {
	return withPlacement(map[string]any{
		"Radius": p.Radius,
		"Height": p.Height,
		"Angle":  p.Angle,
	}, p.Placement)
}

func (p SphereParams) toMap() map[string]any {
	return withPlacement(map[string]any{
		"Radius": p.Radius,
		"Angle1": p.Angle1,
		"Angle2": p.Angle2,
		"Angle3": p.Angle3,
	}, p.Placement)
}

func (p TorusParams) toMap() map[string]any {
	return withPlacement(map[string]any{
		"Radius1": p.Radius1,
		"Radius2": p.Radius2,
		"Angle1":  p.Angle1,
		"Angle2":  p.Angle2,
		"Angle3":  p.Angle3,
	}, p.Placement)
}

func (p ExtrusionParams) toMap() map[string]any {
	return withPlacement(map[string]any{
		"Base":      p.Base,
		"Dir":       []any{p.Dir[0], p.Dir[1], p.Dir[2]},
		"LengthFwd": p.LengthFwd,
		"LengthRev": p.LengthRev,
		"Solid":     p.Solid,
	}, p.Placement)
}

func (p CutParams) toMap() map[string]any {
	return withPlacement(map[string]any{
		"Base":   p.Base,
		"Tool":   p.Tool,
		"Refine": p.Refine,
	}, p.Placement)
}

func (p FuseParams) toMap() map[string]any {
	shapes := make([]any, len(p.Shapes))
	for i, s := range p.Shapes {
		shapes[i] = s
	}
	return withPlacement(map[string]any{
		"Shapes": shapes,
		"Refine": p.Refine,
	}, p.Placement)
}

func (p IntersectionParams) toMap() map[string]any {
	shapes := make([]any, len(p.Shapes))
	for i, s := range p.Shapes {
		shapes[i] = s
	}
	return withPlacement(map[string]any{
		"Shapes": shapes,
		"Refine": p.Refine,
	}, p.Placement)
}

func (p AnyParams) toMap() map[string]any {
	return withPlacement(map[string]any{
		"Shape": p.Shape,
	}, p.Placement)
}
