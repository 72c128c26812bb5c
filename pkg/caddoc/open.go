package caddoc

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/brichet/JupyterCAD/pkg/jcad"
)

// CommPayload is the handshake handed to the transport layer when a
// document is opened. All fields are null for an in-memory document.
type CommPayload struct {
	Path        *string `json:"path"`
	Format      *string `json:"format"`
	ContentType *string `json:"contentType"`
}

// Converter turns a native CAD file into jcad JSON text. Geometry lives
// entirely behind this interface; the document core only dispatches on the
// file extension and checks that a converter is present.
type Converter interface {
	ToJCAD(path string) ([]byte, error)
}

// Classify maps a file path to its comm payload by extension: .fcstd is a
// base64 native document, .jcad plain text. Anything else is unsupported,
// and a name with no extension segment cannot be classified at all.
func Classify(path string) (CommPayload, error) {
	clean := filepath.Clean(path)
	parts := strings.Split(filepath.Base(clean), ".")
	if len(parts) < 2 || parts[1] == "" {
		return CommPayload{}, ErrNoExtension
	}
	var format, contentType string
	switch strings.ToLower(parts[1]) {
	case "fcstd":
		format, contentType = "base64", "FCStd"
	case "jcad":
		format, contentType = "text", "jcad"
	default:
		return CommPayload{}, ErrUnsupportedExtension
	}
	return CommPayload{Path: &clean, Format: &format, ContentType: &contentType}, nil
}

// Create returns a fresh replica bound to path without reading anything
// from disk, for hosts starting a brand-new file. The path still has to
// classify cleanly.
func Create(path string, registry *jcad.Registry) (*Document, error) {
	comm, err := Classify(path)
	if err != nil {
		return nil, err
	}
	d := New(registry)
	d.comm = comm
	return d, nil
}

// Open classifies the path, checks converter availability, and loads the
// file content into a fresh replica. The capability check happens before
// any document state is created. Converters are keyed by lower-case
// extension ("fcstd").
func Open(path string, registry *jcad.Registry, converters map[string]Converter) (*Document, error) {
	comm, err := Classify(path)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch *comm.ContentType {
	case "FCStd":
		conv := converters["fcstd"]
		if conv == nil {
			slog.Warn("a native CAD converter is required to open FCStd files", "path", path)
			return nil, ErrMissingConverter
		}
		if data, err = conv.ToJCAD(*comm.Path); err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", path, err)
		}
	case "jcad":
		if data, err = os.ReadFile(*comm.Path); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	d := New(registry)
	d.comm = comm
	if err := d.loadJCAD(data); err != nil {
		return nil, err
	}
	return d, nil
}
