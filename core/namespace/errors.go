package namespace

import "errors"

var (
	// ErrNotFound is returned when a path segment does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidName is returned for empty names or empty segments.
	ErrInvalidName = errors.New("invalid dotted name")
	// ErrNotNamespace is returned when a segment resolves to a leaf where a
	// sub-namespace is required.
	ErrNotNamespace = errors.New("not a namespace")
	// ErrConflict is returned in strict mode when a path is already taken.
	ErrConflict = errors.New("already registered")
	// ErrWrongType is returned by LookupAs when the stored value has another type.
	ErrWrongType = errors.New("unexpected type")
	// ErrUnknownPartition is returned for partition names other than api, models and plugins.
	ErrUnknownPartition = errors.New("unknown partition")
)
