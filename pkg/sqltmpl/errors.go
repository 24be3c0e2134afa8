package sqltmpl

import (
	"errors"
	"fmt"
)

// ErrRecipeNotFound is returned when no category directory contains a
// SQL template for the requested recipe name.
var ErrRecipeNotFound = errors.New("recipe not found")

// RenderError reports a template rendering failure with its underlying
// cause. Rendering failures are never swallowed into empty SQL.
type RenderError struct {
	Stage string // "read", "parse" or "execute"
	Cause error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("sql template render failed (%s): %v", e.Stage, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
