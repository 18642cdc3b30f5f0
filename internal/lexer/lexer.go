// Package lexer tokenizes .dspec sources with the Go scanner.
//
// The surface syntax is Go with a handful of contextual keywords, so the
// standard go/scanner does all the work. The one addition is the attribute
// marker '@', which Go treats as an illegal character; it is surfaced here as
// a token of kind At instead of an error.
package lexer

import (
	"bytes"
	"fmt"
	"go/scanner"
	"go/token"
)

// At is the token kind of the attribute marker '@'. It reuses token.ILLEGAL
// because go/scanner has no kind for it.
const At = token.ILLEGAL

// Position locates a token in its source file. Line and Col are 1-based,
// Offset is a 0-based byte offset.
type Position struct {
	File   string
	Line   int
	Col    int
	Offset int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

type Token struct {
	Kind token.Token
	Text string
	Pos  Position
	End  int // byte offset just past the token
}

// Auto reports whether t is a semicolon inserted by the scanner at a newline
// or at end of file.
func (t Token) Auto() bool {
	return t.Kind == token.SEMICOLON && t.Text == "\n"
}

// Is reports whether t is an identifier spelled word.
func (t Token) Is(word string) bool {
	return t.Kind == token.IDENT && t.Text == word
}

func (t Token) String() string {
	switch {
	case t.Kind == token.EOF:
		return "end of file"
	case t.Auto():
		return "newline"
	default:
		return fmt.Sprintf("'%s'", t.Text)
	}
}

// Error is a tokenization failure at a specific position.
type Error struct {
	Pos     Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Tokenize scans src and returns its tokens, always terminated by an EOF
// token. Comments are dropped. The first scanner error aborts tokenization.
func Tokenize(filename string, src []byte) ([]Token, error) {
	fset := token.NewFileSet()
	file := fset.AddFile(filename, -1, len(src))

	var first *Error
	handler := func(pos token.Position, msg string) {
		if pos.Offset < len(src) && src[pos.Offset] == '@' {
			return
		}
		if first == nil {
			first = &Error{Pos: position(pos), Message: msg}
		}
	}

	var s scanner.Scanner
	s.Init(file, src, handler, 0)

	var tokens []Token
	for {
		pos, tok, lit := s.Scan()
		if first != nil {
			return nil, first
		}
		p := position(fset.Position(pos))
		text := lit
		if text == "" {
			text = tok.String()
		}
		t := Token{Kind: tok, Text: text, Pos: p, End: p.Offset + len(text)}
		switch {
		case tok == token.EOF || t.Auto():
			t.End = p.Offset
		case tok == token.STRING && lit[0] == '`':
			// the scanner drops carriage returns from raw strings
			if i := bytes.IndexByte(src[p.Offset+1:], '`'); i >= 0 {
				t.End = p.Offset + i + 2
			}
		}
		tokens = append(tokens, t)
		if tok == token.EOF {
			break
		}
		if tok == token.ILLEGAL && lit != "@" {
			return nil, &Error{Pos: p, Message: fmt.Sprintf("illegal character %q", lit)}
		}
	}
	return tokens, nil
}

func position(p token.Position) Position {
	return Position{File: p.Filename, Line: p.Line, Col: p.Column, Offset: p.Offset}
}
