package caddoc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/automerge/automerge-go"
)

// jcadFile is the on-disk text format: a JSON object whose "objects" array
// holds entries in exactly the wire shape used on the replicated sequence.
type jcadFile struct {
	Objects []map[string]any `json:"objects"`
}

// loadJCAD appends every object in the serialized document. Entries with an
// unregistered shape tag are skipped with a warning rather than failing the
// whole load; invalid parameters on a known shape are an error.
func (d *Document) loadJCAD(data []byte) error {
	var file jcadFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse jcad document: %w", err)
	}
	for _, raw := range file.Objects {
		obj, err := d.registry.CreateObject(raw)
		if err != nil {
			return err
		}
		if obj == nil {
			slog.Warn("skipping object with unregistered shape", "shape", raw["shape"], "name", raw["name"])
			continue
		}
		if err := d.AddObject(obj); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJCAD serializes the current sequence back to the text format. The
// entries round-trip byte-for-byte through the canonical object shape.
func (d *Document) MarshalJCAD() ([]byte, error) {
	file := jcadFile{Objects: []map[string]any{}}
	list := d.objectsList()
	if list != nil {
		values, err := list.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read sequence: %w", err)
		}
		for i, v := range values {
			if v.Kind() != automerge.KindMap {
				continue
			}
			entry, err := mapToGo(v.Map())
			if err != nil {
				return nil, fmt.Errorf("failed to read entry %d: %w", i, err)
			}
			file.Objects = append(file.Objects, entry)
		}
	}
	return json.MarshalIndent(file, "", "  ")
}

// WriteFile saves the document as a .jcad text file.
func (d *Document) WriteFile(path string) error {
	data, err := d.MarshalJCAD()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
