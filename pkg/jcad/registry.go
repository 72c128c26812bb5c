package jcad

import (
	"fmt"
	"sync"
)

// Registry maps shape kinds to their parameter decoders. It is built once at
// startup and handed to every document that needs to reconstruct typed
// objects from replicated data.
type Registry struct {
	decoders map[ShapeKind]ParamsDecoder
}

func NewRegistry() *Registry {
	return &Registry{decoders: map[ShapeKind]ParamsDecoder{}}
}

// Register binds a decoder to a kind. First registration wins; registering
// an already-bound kind is a no-op.
func (r *Registry) Register(kind ShapeKind, dec ParamsDecoder) {
	if _, ok := r.decoders[kind]; ok {
		return
	}
	r.decoders[kind] = dec
}

// CreateObject reconstructs a typed object from its serialized map form.
// A missing or unregistered shape tag yields (nil, nil): not an error,
// callers must check. A registered shape whose parameters fail validation
// yields an error. Construction has no side effects; adding the result to a
// document is a separate call.
func (r *Registry) CreateObject(raw map[string]any) (*Object, error) {
	kind, _ := raw["shape"].(string)
	dec, ok := r.decoders[ShapeKind(kind)]
	if !ok {
		return nil, nil
	}
	name, _ := raw["name"].(string)
	rawParams, _ := raw["parameters"].(map[string]any)
	if rawParams == nil {
		rawParams = map[string]any{}
	}
	params, err := dec(rawParams)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters for %s %q: %w", kind, name, err)
	}
	obj := &Object{Name: name, Shape: ShapeKind(kind), Params: params}
	if v, ok := raw["visible"].(bool); ok {
		obj.Visible = &v
	}
	return obj, nil
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry with every built-in shape kind
// bound. Callers that want isolation build their own with NewRegistry.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		r := NewRegistry()
		r.Register(ShapeBox, DecodeBox)
		r.Register(ShapeCone, DecodeCone)
		r.Register(ShapeCylinder, DecodeCylinder)
		r.Register(ShapeSphere, DecodeSphere)
		r.Register(ShapeTorus, DecodeTorus)
		r.Register(ShapeExtrusion, DecodeExtrusion)
		r.Register(ShapeCut, DecodeCut)
		r.Register(ShapeMultiFuse, DecodeFuse)
		r.Register(ShapeMultiCommon, DecodeIntersection)
		r.Register(ShapeAny, DecodeAny)
		defaultRegistry = r
	})
	return defaultRegistry
}
