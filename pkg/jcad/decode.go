package jcad

import (
	"fmt"
)

// Decoders extract only the fields their schema declares from the raw map;
// everything else is dropped. Declared numeric fields are required: absence
// is a validation failure, as is a non-finite value. Operand references and
// blobs are required too, while booleans and Placement are optional.

func DecodeBox(raw map[string]any) (Params, error) {
	if err := requireFields(raw, "Length", "Width", "Height"); err != nil {
		return nil, err
	}
	p := BoxParams{
		Length:    numberField(raw, "Length"),
		Width:     numberField(raw, "Width"),
		Height:    numberField(raw, "Height"),
		Placement: placementField(raw),
	}
	return p, p.Validate()
}

func DecodeCone(raw map[string]any) (Params, error) {
	if err := requireFields(raw, "Radius1", "Radius2", "Height", "Angle"); err != nil {
		return nil, err
	}
	p := ConeParams{
		Radius1:   numberField(raw, "Radius1"),
		Radius2:   numberField(raw, "Radius2"),
		Height:    numberField(raw, "Height"),
		Angle:     numberField(raw, "Angle"),
		Placement: placementField(raw),
	}
	return p, p.Validate()
}

func DecodeCylinder(raw map[string]any) (Params, error) {
	if err := requireFields(raw, "Radius", "Height", "Angle"); err != nil {
		return nil, err
	}
	p := CylinderParams{
		Radius:    numberField(raw, "Radius"),
		Height:    numberField(raw, "Height"),
		Angle:     numberField(raw, "Angle"),
		Placement: placementField(raw),
	}
	return p, p.Validate()
}

func DecodeSphere(raw map[string]any) (Params, error) {
	if err := requireFields(raw, "Radius", "Angle1", "Angle2", "Angle3"); err != nil {
		return nil, err
	}
	p := SphereParams{
		Radius:    numberField(raw, "Radius"),
		Angle1:    numberField(raw, "Angle1"),
		Angle2:    numberField(raw, "Angle2"),
		Angle3:    numberField(raw, "Angle3"),
		Placement: placementField(raw),
	}
	return p, p.Validate()
}

func DecodeTorus(raw map[string]any) (Params, error) {
	if err := requireFields(raw, "Radius1", "Radius2", "Angle1", "Angle2", "Angle3"); err != nil {
		return nil, err
	}
	p := TorusParams{
		Radius1:   numberField(raw, "Radius1"),
		Radius2:   numberField(raw, "Radius2"),
		Angle1:    numberField(raw, "Angle1"),
		Angle2:    numberField(raw, "Angle2"),
		Angle3:    numberField(raw, "Angle3"),
		Placement: placementField(raw),
	}
	return p, p.Validate()
}

func DecodeExtrusion(raw map[string]any) (Params, error) {
	if err := requireFields(raw, "Base", "Dir", "LengthFwd", "LengthRev"); err != nil {
		return nil, err
	}
	p := ExtrusionParams{
		Base:      stringField(raw, "Base"),
		LengthFwd: numberField(raw, "LengthFwd"),
		LengthRev: numberField(raw, "LengthRev"),
		Solid:     boolField(raw, "Solid"),
		Placement: placementField(raw),
	}
	if v, ok := raw["Dir"]; ok {
		vec, err := vec3(v)
		if err != nil {
			return nil, fmt.Errorf("field Dir: %w", err)
		}
		p.Dir = vec
	}
	return p, p.Validate()
}

func DecodeCut(raw map[string]any) (Params, error) {
	p := CutParams{
		Base:      stringField(raw, "Base"),
		Tool:      stringField(raw, "Tool"),
		Refine:    boolField(raw, "Refine"),
		Placement: placementField(raw),
	}
	return p, p.Validate()
}

func DecodeFuse(raw map[string]any) (Params, error) {
	p := FuseParams{
		Shapes:    stringSliceField(raw, "Shapes"),
		Refine:    boolField(raw, "Refine"),
		Placement: placementField(raw),
	}
	return p, p.Validate()
}

func DecodeIntersection(raw map[string]any) (Params, error) {
	p := IntersectionParams{
		Shapes:    stringSliceField(raw, "Shapes"),
		Refine:    boolField(raw, "Refine"),
		Placement: placementField(raw),
	}
	return p, p.Validate()
}

func DecodeAny(raw map[string]any) (Params, error) {
	p := AnyParams{
		Shape:     stringField(raw, "Shape"),
		Placement: placementField(raw),
	}
	return p, p.Validate()
}

// numberField reads a numeric raw field, tolerating the integer types that
// JSON decoding and the replicated document hand back. Absent or non-numeric
// values decode as NaN-free zero and are left to Validate.
func numberField(raw map[string]any, key string) float64 {
	v, ok := raw[key]
	if !ok {
		return 0
	}
	f, _ := asNumber(v)
	return f
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func boolField(raw map[string]any, key string) bool {
	b, _ := raw[key].(bool)
	return b
}

func stringSliceField(raw map[string]any, key string) []string {
	v, ok := raw[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(v))
	for _, e := range v {
		s, ok := e.(string)
		if !ok {
			return nil
		}
		out = append(out, s)
	}
	return out
}

func vec3(v any) ([3]float64, error) {
	var out [3]float64
	elems, ok := v.([]any)
	if !ok || len(elems) != 3 {
		return out, fmt.Errorf("expected a 3-element vector")
	}
	for i, e := range elems {
		f, ok := asNumber(e)
		if !ok {
			return out, fmt.Errorf("element %d is not a number", i)
		}
		out[i] = f
	}
	return out, nil
}

func placementField(raw map[string]any) *Placement {
	m, ok := raw["Placement"].(map[string]any)
	if !ok {
		return nil
	}
	p := DefaultPlacement()
	if v, ok := m["Position"]; ok {
		if vec, err := vec3(v); err == nil {
			p.Position = vec
		}
	}
	if v, ok := m["Axis"]; ok {
		if vec, err := vec3(v); err == nil {
			p.Axis = vec
		}
	}
	if v, ok := m["Angle"]; ok {
		if f, ok := asNumber(v); ok {
			p.Angle = f
		}
	}
	return &p
}

func requireFields(raw map[string]any, keys ...string) error {
	for _, k := range keys {
		if _, ok := raw[k]; !ok {
			return fmt.Errorf("missing required field %s", k)
		}
	}
	return nil
}
