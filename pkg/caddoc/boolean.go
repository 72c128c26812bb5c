package caddoc

import (
	"fmt"

	"github.com/brichet/JupyterCAD/pkg/jcad"
)

type operandMode int

const (
	operandDefault operandMode = iota
	operandByName
	operandByIndex
)

// Operand identifies a boolean operand by name, by index into the current
// sequence, or not at all. The zero value means "default": the first
// operand falls back to the second-to-last object and the second to the
// last, so two freshly built shapes can be combined without naming them.
type Operand struct {
	mode  operandMode
	name  string
	index int
}

func ByName(name string) Operand { return Operand{mode: operandByName, name: name} }
func ByIndex(i int) Operand      { return Operand{mode: operandByIndex, index: i} }

// ResolveOperands maps two operand references to object names. It requires
// at least two objects in the document.
func (d *Document) ResolveOperands(first, second Operand) (string, string, error) {
	objects := d.Objects()
	if len(objects) < 2 {
		return "", "", ErrInsufficientOperands
	}
	a, err := resolveOperand(first, objects, len(objects)-2)
	if err != nil {
		return "", "", err
	}
	b, err := resolveOperand(second, objects, len(objects)-1)
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

func resolveOperand(op Operand, objects []string, fallback int) (string, error) {
	switch op.mode {
	case operandByName:
		for _, n := range objects {
			if n == op.name {
				return op.name, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrUnknownObject, op.name)
	case operandByIndex:
		if op.index < 0 || op.index >= len(objects) {
			return "", fmt.Errorf("%w: index %d out of range", ErrUnknownObject, op.index)
		}
		return objects[op.index], nil
	default:
		return objects[fallback], nil
	}
}

// Cut subtracts tool from base and hides both operands. The consumed shapes
// stay in the sequence so they remain addressable for undo and inspection.
func (d *Document) Cut(name string, base, tool Operand, refine bool) error {
	b, t, err := d.ResolveOperands(base, tool)
	if err != nil {
		return err
	}
	placement := jcad.DefaultPlacement()
	if err := d.addTyped(name, "Cut", jcad.ShapeCut, jcad.CutParams{
		Base: b, Tool: t, Refine: refine,
		Placement: &placement,
	}); err != nil {
		return err
	}
	return d.hideOperands(b, t)
}

// Fuse unions two shapes and hides both operands.
func (d *Document) Fuse(name string, shape1, shape2 Operand, refine bool) error {
	s1, s2, err := d.ResolveOperands(shape1, shape2)
	if err != nil {
		return err
	}
	placement := jcad.DefaultPlacement()
	if err := d.addTyped(name, "Fuse", jcad.ShapeMultiFuse, jcad.FuseParams{
		Shapes: []string{s1, s2}, Refine: refine,
		Placement: &placement,
	}); err != nil {
		return err
	}
	return d.hideOperands(s1, s2)
}

// Intersect keeps the common volume of two shapes and hides both operands.
func (d *Document) Intersect(name string, shape1, shape2 Operand, refine bool) error {
	s1, s2, err := d.ResolveOperands(shape1, shape2)
	if err != nil {
		return err
	}
	placement := jcad.DefaultPlacement()
	if err := d.addTyped(name, "Intersection", jcad.ShapeMultiCommon, jcad.IntersectionParams{
		Shapes: []string{s1, s2}, Refine: refine,
		Placement: &placement,
	}); err != nil {
		return err
	}
	return d.hideOperands(s1, s2)
}

// hideOperands runs after the add as two further independent transactions;
// a failure here leaves the new object in place with a visible operand,
// which is acceptable because visibility is cosmetic.
func (d *Document) hideOperands(a, b string) error {
	if err := d.SetVisible(a, false); err != nil {
		return err
	}
	return d.SetVisible(b, false)
}
