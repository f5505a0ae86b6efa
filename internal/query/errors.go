package query

import (
	"errors"
	"fmt"
)

// Parse errors.
var (
	ErrEmptyPath     = errors.New("query path cannot be empty")
	ErrUnexpectedEnd = errors.New("unexpected end of path")
)

// InvalidIndexError reports a malformed numeric index or range bound.
type InvalidIndexError struct {
	Detail string
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("invalid index: %s", e.Detail)
}

// InvalidCharacterError reports an unexpected character during parsing.
type InvalidCharacterError struct {
	Char rune
	Pos  int
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("invalid character %q at position %d", e.Char, e.Pos)
}

// Evaluation errors.

type NodeNotFoundError struct {
	ID string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node '%s' not found", e.ID)
}

type PropertyNotFoundError struct {
	Name string
}

func (e *PropertyNotFoundError) Error() string {
	return fmt.Sprintf("property '%s' not found", e.Name)
}

type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range (length: %d)", e.Index, e.Len)
}

// InvalidTypeError reports an operation applied to a value of the wrong
// shape, or a filter value that cannot be interpreted.
type InvalidTypeError struct {
	Detail string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid type: %s", e.Detail)
}
