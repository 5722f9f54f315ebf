package reactive

import "errors"

// Instance errors.
var (
	ErrPropertyDoesNotExist = errors.New("property does not exist")
	ErrEndpointMismatch     = errors.New("entity does not match relation endpoint")
)
