// Package caddoc implements the shared CAD document: a replicated, ordered
// sequence of serialized objects held in an automerge document under the
// root key "objects". Every mutation is staged and committed as exactly one
// change so that peers observe it atomically; convergence between replicas
// is automerge's job, not ours.
package caddoc

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/automerge/automerge-go"
	"github.com/google/uuid"

	"github.com/brichet/JupyterCAD/pkg/jcad"
)

const objectsKey = "objects"

// Document is one replica of a shared CAD document.
type Document struct {
	doc      *automerge.Doc
	registry *jcad.Registry
	commID   string
	comm     CommPayload
}

// New returns a fresh, empty document replica.
func New(registry *jcad.Registry) *Document {
	return &Document{
		doc:      automerge.New(),
		registry: registry,
		commID:   uuid.NewString(),
	}
}

// NewDetached returns a document handle with no replicated root attached
// yet, e.g. one created before the first connection. Reads return empty
// results and mutations fail with ErrNotAttached until Attach is called.
func NewDetached(registry *jcad.Registry) *Document {
	return &Document{registry: registry, commID: uuid.NewString()}
}

// Load restores a replica from a saved automerge document.
func Load(registry *jcad.Registry, data []byte) (*Document, error) {
	doc, err := automerge.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load doc: %w", err)
	}
	return &Document{doc: doc, registry: registry, commID: uuid.NewString()}, nil
}

// Attach binds a replicated root to a detached document.
func (d *Document) Attach(doc *automerge.Doc) {
	d.doc = doc
}

// Doc exposes the underlying automerge document for transport and
// persistence layers. The object sequence itself must only be mutated
// through this type.
func (d *Document) Doc() *automerge.Doc { return d.doc }

// Save serializes the full replica state.
func (d *Document) Save() []byte {
	if d.doc == nil {
		return nil
	}
	return d.doc.Save()
}

// CommID is the stable opaque identifier viewers use to attach to this open
// document.
func (d *Document) CommID() string { return d.commID }

// Comm returns the handshake payload produced when the document was opened.
func (d *Document) Comm() CommPayload { return d.comm }

// Render returns the single-key payload the display integration consumes to
// attach a viewer.
func (d *Document) Render() map[string]string {
	body, _ := json.Marshal(map[string]string{"commId": d.commID})
	return map[string]string{"application/FCStd": string(body)}
}

// transact runs one logical mutation and commits it as a single change.
func (d *Document) transact(msg string, fn func() error) error {
	if d.doc == nil {
		return ErrNotAttached
	}
	if err := fn(); err != nil {
		return err
	}
	if _, err := d.doc.Commit(msg); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// objectsList returns the replicated sequence, or nil if the root is not
// attached or the sequence was never created.
func (d *Document) objectsList() *automerge.List {
	if d.doc == nil {
		return nil
	}
	v, err := d.doc.Path(objectsKey).Get()
	if err != nil || v.Kind() != automerge.KindList {
		return nil
	}
	return v.List()
}

// Objects returns the object names in sequence order. A detached or empty
// document yields an empty slice.
func (d *Document) Objects() []string {
	names := []string{}
	list := d.objectsList()
	if list == nil {
		return names
	}
	values, err := list.Values()
	if err != nil {
		return names
	}
	for _, v := range values {
		if v.Kind() != automerge.KindMap {
			continue
		}
		nv, err := v.Map().Get("name")
		if err == nil && nv.Kind() == automerge.KindStr {
			names = append(names, nv.Str())
		}
	}
	return names
}

// Exists reports whether an object with the given name is in the sequence.
func (d *Document) Exists(name string) bool {
	for _, n := range d.Objects() {
		if n == name {
			return true
		}
	}
	return false
}

// GetObject deserializes the first entry with the given name through the
// registry. It returns (nil, nil) when no entry matches.
func (d *Document) GetObject(name string) (*jcad.Object, error) {
	entry := d.entryByName(name)
	if entry == nil {
		return nil, nil
	}
	raw, err := mapToGo(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %q: %w", name, err)
	}
	obj, err := d.registry.CreateObject(raw)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownShape, raw["shape"])
	}
	return obj, nil
}

// AddObject appends the serialized object to the sequence in one atomic
// transaction. Adding a name that already exists is a precondition error
// and leaves the sequence unchanged.
func (d *Document) AddObject(obj *jcad.Object) error {
	if obj == nil {
		return fmt.Errorf("cannot add a nil object")
	}
	if d.doc == nil {
		return ErrNotAttached
	}
	if d.Exists(obj.Name) {
		slog.Error("object already exists", "name", obj.Name)
		return fmt.Errorf("%w: %s", ErrObjectExists, obj.Name)
	}
	entry := obj.ToMap()
	if _, ok := entry["visible"]; !ok {
		entry["visible"] = true
	}
	return d.transact("add "+obj.Name, func() error {
		return d.doc.Path(objectsKey).List().Append(entry)
	})
}

// Remove deletes the entry with the given name. Removing an absent name is
// a no-op, not an error.
func (d *Document) Remove(name string) error {
	idx := d.indexByName(name)
	if idx < 0 {
		return nil
	}
	list := d.objectsList()
	return d.transact("remove "+name, func() error {
		return list.Delete(idx)
	})
}

// SetVisible rewrites the visible flag of the named entry.
//
// TODO: honor the visible argument once the viewer supports re-showing
// hidden objects; every current caller only ever hides, and the flag is
// forced to false to match them.
func (d *Document) SetVisible(name string, visible bool) error {
	entry := d.entryByName(name)
	if entry == nil {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, name)
	}
	_ = visible
	return d.transact("set visible "+name, func() error {
		return entry.Set("visible", false)
	})
}

// NewUniqueName returns the lowest-numbered "{prefix} n" not taken by an
// existing object, starting from "{prefix} 1".
func (d *Document) NewUniqueName(prefix string) string {
	taken := map[string]bool{}
	for _, n := range d.Objects() {
		taken[n] = true
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s %d", prefix, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

// Merge applies every change from the other replica onto this one.
// Automerge ignores changes it has already seen, so this is safe to call
// repeatedly and in either direction.
func (d *Document) Merge(other *Document) error {
	if d.doc == nil || other.doc == nil {
		return ErrNotAttached
	}
	changes, err := other.doc.Changes()
	if err != nil {
		return fmt.Errorf("failed to collect changes: %w", err)
	}
	if err := d.doc.Apply(changes...); err != nil {
		return fmt.Errorf("failed to apply changes: %w", err)
	}
	return nil
}

func (d *Document) entryByName(name string) *automerge.Map {
	list := d.objectsList()
	if list == nil {
		return nil
	}
	values, err := list.Values()
	if err != nil {
		return nil
	}
	for _, v := range values {
		if v.Kind() != automerge.KindMap {
			continue
		}
		nv, err := v.Map().Get("name")
		if err == nil && nv.Kind() == automerge.KindStr && nv.Str() == name {
			return v.Map()
		}
	}
	return nil
}

func (d *Document) indexByName(name string) int {
	list := d.objectsList()
	if list == nil {
		return -1
	}
	values, err := list.Values()
	if err != nil {
		return -1
	}
	for i, v := range values {
		if v.Kind() != automerge.KindMap {
			continue
		}
		nv, err := v.Map().Get("name")
		if err == nil && nv.Kind() == automerge.KindStr && nv.Str() == name {
			return i
		}
	}
	return -1
}

// mapToGo converts a replicated map entry into plain Go values so it can be
// fed back through the object registry.
func mapToGo(m *automerge.Map) (map[string]any, error) {
	values, err := m.Values()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		gv, err := valueToGo(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = gv
	}
	return out, nil
}

func valueToGo(v *automerge.Value) (any, error) {
	switch v.Kind() {
	case automerge.KindMap:
		return mapToGo(v.Map())
	case automerge.KindList:
		values, err := v.List().Values()
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(values))
		for i, e := range values {
			ge, err := valueToGo(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, ge)
		}
		return out, nil
	case automerge.KindStr:
		return v.Str(), nil
	case automerge.KindFloat64:
		return v.Float64(), nil
	case automerge.KindInt64:
		return v.Int64(), nil
	case automerge.KindUint64:
		return v.Uint64(), nil
	case automerge.KindBool:
		return v.Bool(), nil
	case automerge.KindBytes:
		return v.Bytes(), nil
	case automerge.KindNull, automerge.KindVoid:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported value kind %v", v.Kind())
	}
}
