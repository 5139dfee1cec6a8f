// Copyright 2024 The tree-gen Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package treelang

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/QE-Lab/tree-gen/treelang/token"
)

// Lexer tokenizes tree-description source code into a stream of [token.Token]s.
type Lexer struct {
	r         *bufio.Reader
	cur       rune
	next      rune
	curLine   int
	curColumn int
	eof       bool
	err       error
	// pendingDoc accumulates the text of comments seen by the most recent
	// skipWhitespaceAndComments call, one entry per comment, attached to
	// the token that follows them.
	pendingDoc []string
}

// NewLexer creates a Lexer that reads tree-description source from r.
func NewLexer(r io.Reader) (*Lexer, error) {
	l := &Lexer{r: bufio.NewReader(r), curLine: 1}
	if err := l.readRune(); err != nil {
		return nil, err
	}
	if err := l.readRune(); err != nil {
		return nil, err
	}
	l.curColumn = 1
	return l, nil
}

func (l *Lexer) readRune() error {
	if l.eof {
		l.cur = l.next
		l.next = 0
		return nil
	}
	r, _, err := l.r.ReadRune()
	if err == io.EOF {
		l.cur = l.next
		l.next = 0
		l.eof = true
		return nil
	}
	if err != nil {
		return err
	}
	if l.cur == '\n' {
		l.curLine++
		l.curColumn = 0
	}
	l.curColumn++
	l.cur = l.next
	l.next = r
	return nil
}

func (l *Lexer) pos() token.Position {
	return token.Position{Line: l.curLine, Column: l.curColumn}
}

func (l *Lexer) isAtEnd() bool {
	return l.eof && l.cur == 0
}

// Next scans and returns the next token. Once an error is returned, the
// Lexer's internal state is no longer advanced and every subsequent call
// returns the same error.
func (l *Lexer) Next() (token.Token, error) {
	if l.err != nil {
		return token.Token{}, l.err
	}
	if err := l.skipWhitespaceAndComments(); err != nil {
		l.err = err
		return token.Token{}, err
	}
	doc := strings.Join(l.pendingDoc, "\n")
	if l.isAtEnd() {
		return token.Token{Kind: token.EOF, Pos: l.pos(), Doc: doc}, nil
	}

	pos := l.pos()
	var tok token.Token
	var err error
	switch {
	case l.cur == '{':
		tok, err = l.single(token.LBRACE, pos)
	case l.cur == '}':
		tok, err = l.single(token.RBRACE, pos)
	case l.cur == '(':
		tok, err = l.single(token.LPAREN, pos)
	case l.cur == ')':
		tok, err = l.single(token.RPAREN, pos)
	case l.cur == '[':
		tok, err = l.single(token.LBRACKET, pos)
	case l.cur == ']':
		tok, err = l.single(token.RBRACKET, pos)
	case l.cur == '<':
		tok, err = l.single(token.LANGLE, pos)
	case l.cur == '>':
		tok, err = l.single(token.RANGLE, pos)
	case l.cur == ',':
		tok, err = l.single(token.COMMA, pos)
	case l.cur == ':':
		tok, err = l.single(token.COLON, pos)
	case l.cur == ';':
		tok, err = l.single(token.SEMI, pos)
	case l.cur == '=':
		tok, err = l.single(token.EQUALS, pos)
	case l.cur == '*':
		tok, err = l.single(token.STAR, pos)
	case l.cur == '?':
		tok, err = l.single(token.QUESTION, pos)
	case l.cur == '|':
		tok, err = l.single(token.PIPE, pos)
	case l.cur == '!':
		tok, err = l.single(token.BANG, pos)
	case l.cur == '"':
		tok, err = l.scanString(pos)
	case isDigit(l.cur):
		tok, err = l.scanInt(pos)
	case isIdentStart(l.cur):
		tok, err = l.scanIdent(pos)
	default:
		bad := l.cur
		if err := l.readRune(); err != nil {
			l.err = err
			return token.Token{}, err
		}
		err := fmt.Errorf("%s: illegal character %q", pos, bad)
		l.err = err
		return token.Token{Kind: token.ILLEGAL, Literal: string(bad), Pos: pos, Doc: doc}, err
	}
	if err != nil {
		return tok, err
	}
	tok.Doc = doc
	return tok, nil
}

func (l *Lexer) single(k token.Kind, pos token.Position) (token.Token, error) {
	lit := string(l.cur)
	if err := l.readRune(); err != nil {
		l.err = err
		return token.Token{}, err
	}
	return token.Token{Kind: k, Literal: lit, Pos: pos}, nil
}

// skipWhitespaceAndComments advances past whitespace and comments up to the
// next significant rune, recording each comment's text into l.pendingDoc in
// source order (a line comment without its marker and one following space;
// each line of a block comment trimmed of surrounding whitespace and one
// leading `*`), so that the caller's Next can attach it as the following
// token's Doc.
func (l *Lexer) skipWhitespaceAndComments() error {
	l.pendingDoc = l.pendingDoc[:0]
	for !l.isAtEnd() {
		switch {
		case unicode.IsSpace(l.cur):
			if err := l.readRune(); err != nil {
				return err
			}
		case l.cur == '/' && l.next == '/':
			if err := l.readRune(); err != nil {
				return err
			}
			if err := l.readRune(); err != nil {
				return err
			}
			if !l.isAtEnd() && l.cur == ' ' {
				if err := l.readRune(); err != nil {
					return err
				}
			}
			var sb strings.Builder
			for !l.isAtEnd() && l.cur != '\n' {
				sb.WriteRune(l.cur)
				if err := l.readRune(); err != nil {
					return err
				}
			}
			l.pendingDoc = append(l.pendingDoc, sb.String())
		case l.cur == '/' && l.next == '*':
			start := l.pos()
			if err := l.readRune(); err != nil {
				return err
			}
			if err := l.readRune(); err != nil {
				return err
			}
			closed := false
			var sb strings.Builder
			for !l.isAtEnd() {
				if l.cur == '*' && l.next == '/' {
					if err := l.readRune(); err != nil {
						return err
					}
					if err := l.readRune(); err != nil {
						return err
					}
					closed = true
					break
				}
				sb.WriteRune(l.cur)
				if err := l.readRune(); err != nil {
					return err
				}
			}
			if !closed {
				return fmt.Errorf("%s: unterminated block comment", start)
			}
			for _, line := range strings.Split(sb.String(), "\n") {
				line = strings.TrimSpace(line)
				line = strings.TrimPrefix(line, "*")
				l.pendingDoc = append(l.pendingDoc, strings.TrimSpace(line))
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) scanString(pos token.Position) (token.Token, error) {
	if err := l.readRune(); err != nil { // consume opening quote
		l.err = err
		return token.Token{}, err
	}
	var sb strings.Builder
	for {
		if l.isAtEnd() {
			err := fmt.Errorf("%s: unterminated string literal", pos)
			l.err = err
			return token.Token{}, err
		}
		if l.cur == '"' {
			if err := l.readRune(); err != nil {
				l.err = err
				return token.Token{}, err
			}
			return token.Token{Kind: token.STRING, Literal: sb.String(), Pos: pos}, nil
		}
		if l.cur == '\\' {
			if err := l.readRune(); err != nil {
				l.err = err
				return token.Token{}, err
			}
			switch l.cur {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				err := fmt.Errorf("%s: invalid escape sequence \\%c", l.pos(), l.cur)
				l.err = err
				return token.Token{}, err
			}
			if err := l.readRune(); err != nil {
				l.err = err
				return token.Token{}, err
			}
			continue
		}
		sb.WriteRune(l.cur)
		if err := l.readRune(); err != nil {
			l.err = err
			return token.Token{}, err
		}
	}
}

func (l *Lexer) scanInt(pos token.Position) (token.Token, error) {
	var sb strings.Builder
	for !l.isAtEnd() && isDigit(l.cur) {
		sb.WriteRune(l.cur)
		if err := l.readRune(); err != nil {
			l.err = err
			return token.Token{}, err
		}
	}
	return token.Token{Kind: token.INT, Literal: sb.String(), Pos: pos}, nil
}

func (l *Lexer) scanIdent(pos token.Position) (token.Token, error) {
	var sb strings.Builder
	for !l.isAtEnd() && isIdentPart(l.cur) {
		sb.WriteRune(l.cur)
		if err := l.readRune(); err != nil {
			l.err = err
			return token.Token{}, err
		}
	}
	return token.Token{Kind: token.IDENT, Literal: sb.String(), Pos: pos}, nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
