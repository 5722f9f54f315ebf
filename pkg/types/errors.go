package types

import (
	"errors"
	"fmt"
)

// Namespace and type id errors.
var (
	ErrEmptyNamespace           = errors.New("namespace must not be empty")
	ErrEmptySegment             = errors.New("namespace segment must not be empty")
	ErrSegmentContainsSeparator = errors.New("namespace segment contains a reserved separator")
	ErrInvalidSegmentCharacter  = errors.New("namespace segment contains an invalid character")
	ErrNotATypeSegment          = errors.New("segment is not a type segment")
	ErrTypeCannotBeAppended     = errors.New("namespace already ends in a type segment")
	ErrUnknownKind              = errors.New("unknown type kind")
	ErrKindMismatch             = errors.New("type kind mismatch")
	ErrEmptyTypeName            = errors.New("type name must not be empty")
	ErrTrailingFields           = errors.New("unexpected trailing fields")
	ErrInvalidTypeID            = errors.New("invalid type id")
	ErrIsAWildcard              = errors.New("endpoint is a wildcard")
)

// Property and extension errors.
var (
	ErrInvalidName            = errors.New("invalid name")
	ErrInvalidDataType        = errors.New("invalid data type")
	ErrInvalidSocketType      = errors.New("invalid socket type")
	ErrInvalidMutability      = errors.New("invalid mutability")
	ErrTypeMismatch           = errors.New("value does not match data type")
	ErrPropertyAlreadyExists  = errors.New("property already exists")
	ErrPropertyDoesNotExist   = errors.New("property does not exist")
	ErrExtensionAlreadyExists = errors.New("extension already exists")
	ErrExtensionDoesNotExist  = errors.New("extension does not exist")
)

// Flow content errors.
var (
	ErrEntityInstanceAlreadyExists   = errors.New("entity instance already exists")
	ErrEntityInstanceDoesNotExist    = errors.New("entity instance does not exist")
	ErrRelationInstanceAlreadyExists = errors.New("relation instance already exists")
	ErrRelationInstanceDoesNotExist  = errors.New("relation instance does not exist")
)

// Field names a component of a canonical type id string.
type Field string

// Type id fields reported by [ParseError].
const (
	FieldKind      Field = "kind"
	FieldNamespace Field = "namespace"
	FieldName      Field = "name"
	FieldTrailing  Field = "trailing"
)

// ParseError reports a malformed canonical type id.
type ParseError struct {
	Input string
	Field Field
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse type id %q: %s: %v", e.Input, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SegmentError reports an invalid namespace segment.
type SegmentError struct {
	Segment string
	Err     error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %q: %v", e.Segment, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}
