package typesystem

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/lattice/pkg/types"
)

// Registry errors.
var (
	ErrTypeAlreadyExists = errors.New("type already exists")
	ErrTypeDoesNotExist  = errors.New("type does not exist")
	ErrComponentNotFound = errors.New("component is not referenced by type")
)

// Error records a failed registry operation, the type it targeted and, for
// property and extension mutators, the sub-resource name.
type Error struct {
	Op   string
	Type types.TypeDefinition
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("typesystem: %s %s %s: %v", e.Op, e.Type, e.Name, e.Err)
	}
	return fmt.Sprintf("typesystem: %s %s: %v", e.Op, e.Type, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
