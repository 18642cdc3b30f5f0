package parser

import (
	"errors"
	"fmt"

	"github.com/chriserin/dspec/internal/lexer"
)

type ErrorKind string

const (
	KindLex       ErrorKind = "lex"
	KindSyntax    ErrorKind = "syntax"
	KindStructure ErrorKind = "structure"
)

// ParseError is the single failure a parse produces. No partial tree is
// returned alongside it.
type ParseError struct {
	Kind    ErrorKind
	Message string
	Pos     lexer.Position
	End     int // byte offset just past the offending token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s error: %s", e.Pos, e.Kind, e.Message)
}

// AsParseError unwraps err into a *ParseError when it carries one.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func lexFailure(err error) *ParseError {
	var le *lexer.Error
	if errors.As(err, &le) {
		return &ParseError{Kind: KindLex, Message: le.Message, Pos: le.Pos, End: le.Pos.Offset + 1}
	}
	return &ParseError{Kind: KindLex, Message: err.Error()}
}
