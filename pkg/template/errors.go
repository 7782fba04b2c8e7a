package template

import (
	"fmt"
	"strings"
)

// ParseError reports malformed template syntax, such as an unterminated
// expression or a block with no closing tag. It is fatal at load time.
type ParseError struct {
	Msg string
	Pos int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("template parse error at offset %d: %s", e.Pos, e.Msg)
}

// RequiredVariablesMissingError is returned before rendering begins when
// one or more declared required variables are absent from the merged
// variable set. Names lists every missing variable, not just the first.
type RequiredVariablesMissingError struct {
	Names []string
}

func (e *RequiredVariablesMissingError) Error() string {
	return fmt.Sprintf("missing required variables: %s", strings.Join(e.Names, ", "))
}

// VariableNotFoundError is returned when a plain or nested variable
// reference cannot be resolved during rendering. Rendering stops
// immediately; no partial output is returned.
type VariableNotFoundError struct {
	Name string
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("template variable not found: %s", e.Name)
}
