package generator

import (
	"errors"
	"fmt"

	"github.com/m-haketa/openapi-typescript-code-generator/pkg/openapi"
)

var (
	// ErrUnsetType is reported for a schema with no type, no $ref and no inferable shape
	ErrUnsetType = errors.New("unset type")
	// ErrUnsupportedShape is reported for tuple-style or boolean array items
	ErrUnsupportedShape = errors.New("unsupported schema shape")
	// ErrUnresolvedReference is reported when a $ref cannot be located
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrDuplicateOperation is reported when two operations share method+URI or operationId
	ErrDuplicateOperation = errors.New("duplicate operation")
)

// SchemaError describes a fatal conversion failure at a schema location
type SchemaError struct {
	Err      error
	Location openapi.Point
	Detail   string
	// Schema is the offending schema rendered as JSON
	Schema string
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("%v at %s", e.Err, e.Location)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Schema != "" {
		msg += "\n" + e.Schema
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

func schemaError(kind error, at openapi.Point, node any, format string, args ...any) *SchemaError {
	e := &SchemaError{Err: kind, Location: at, Detail: fmt.Sprintf(format, args...)}
	if node != nil {
		e.Schema = openapi.Marshal(node)
	}
	return e
}
