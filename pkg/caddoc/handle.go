package caddoc

import "github.com/brichet/JupyterCAD/pkg/jcad"

// Handle binds a constructed object to the document it is meant to live in.
// Construction stays pure: the object is only registered when Attach is
// called, and the back reference is used solely to re-render or re-sync,
// never to mutate the sequence directly.
type Handle struct {
	obj *jcad.Object
	doc *Document
}

func NewHandle(obj *jcad.Object, doc *Document) *Handle {
	return &Handle{obj: obj, doc: doc}
}

func (h *Handle) Object() *jcad.Object { return h.obj }

func (h *Handle) Document() *Document { return h.doc }

// Attach registers the object into the bound document.
func (h *Handle) Attach() error {
	return h.doc.AddObject(h.obj)
}

// Render delegates to the bound document's viewer payload.
func (h *Handle) Render() map[string]string {
	return h.doc.Render()
}
