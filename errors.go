package codegen

import (
	"errors"
	"fmt"
)

// Usage errors, returned before a run even starts.
var (
	// ErrEmptyDocument indicates the input document had no paths and no schemas.
	ErrEmptyDocument = errors.New("codegen: document has no paths or schemas")

	// ErrNoOperations indicates mode=client/client-mod/server-mod was requested
	// but the operation filter selected zero operations.
	ErrNoOperations = errors.New("codegen: no operations selected")

	// ErrOnlyAndExcludeBothSet indicates the mutually exclusive only/exclude
	// filters were both supplied.
	ErrOnlyAndExcludeBothSet = errors.New("codegen: only and exclude are mutually exclusive")
)

// LoadError indicates the input document failed to parse, or a component
// required by a later stage was missing from it.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load: %s", e.Err)
	}
	return fmt.Sprintf("load: %s: %s", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ResolveError indicates a $ref pointed nowhere, a pure-ref chain closed on
// itself, or allOf members produced a fatal structural conflict.
type ResolveError struct {
	SchemaPath string
	Err        error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve: while resolving %s: %s", e.SchemaPath, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// ConversionError indicates a resolved schema shape could not be represented
// in the Abstract Type Representation.
type ConversionError struct {
	SchemaPath string
	FieldName  string
	Err        error
}

func (e *ConversionError) Error() string {
	if e.FieldName == "" {
		return fmt.Sprintf("convert: while converting schema %s: %s", e.SchemaPath, e.Err)
	}
	return fmt.Sprintf("convert: while converting schema %s, field %s: %s", e.SchemaPath, e.FieldName, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// NameCollisionError indicates two distinct nominal types wanted the same
// name and neither schema fingerprint matched. Recoverable by suffixing
// unless the suffixed name would shadow a reserved identifier, in which
// case the pipeline aborts.
type NameCollisionError struct {
	Name     string
	Fatal    bool
	Reserved string
}

func (e *NameCollisionError) Error() string {
	if e.Fatal {
		return fmt.Sprintf("name collision: %q cannot be suffixed without shadowing reserved identifier %q", e.Name, e.Reserved)
	}
	return fmt.Sprintf("name collision: %q", e.Name)
}

// EmitError indicates the final source assembly produced output that is
// not representable as valid target-language syntax. This is always a bug
// in the emitter, never a consequence of the input document.
type EmitError struct {
	NodeDump string
	Err      error
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("emit: %s\n--- offending node ---\n%s", e.Err, e.NodeDump)
}

func (e *EmitError) Unwrap() error { return e.Err }
