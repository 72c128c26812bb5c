package caddoc

import "errors"

var (
	// ErrNotAttached is returned by mutations on a document whose replicated
	// root has not been attached yet.
	ErrNotAttached = errors.New("document is not attached to a replicated root")

	// ErrObjectExists is returned when adding an object whose name is
	// already present in the sequence.
	ErrObjectExists = errors.New("object already exists")

	// ErrObjectNotFound is returned by operations that require the named
	// object to be present.
	ErrObjectNotFound = errors.New("no object with that name")

	// ErrUnknownShape is returned when a shape tag has no registered schema.
	ErrUnknownShape = errors.New("unknown shape kind")

	// ErrInsufficientOperands is returned by boolean operations on a
	// document with fewer than two objects.
	ErrInsufficientOperands = errors.New("cannot apply a boolean operator with less than two objects in the document")

	// ErrUnknownObject is returned when a boolean operand name or index
	// does not resolve to an object.
	ErrUnknownObject = errors.New("unknown object")

	// ErrUnsupportedExtension is returned for file extensions the document
	// opener does not understand.
	ErrUnsupportedExtension = errors.New("file extension is not supported")

	// ErrNoExtension is returned when a path has no extension segment.
	ErrNoExtension = errors.New("can not detect file extension")

	// ErrMissingConverter is returned when opening a native CAD file
	// without a registered converter capability.
	ErrMissingConverter = errors.New("a native CAD converter is required to open FCStd files")
)
