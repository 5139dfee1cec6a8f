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

// Package treelang implements the lexer and parser for the tree-description
// language: a file is an optional header followed by a sequence of
// enumeration and node-type declarations, per the grammar documented in the
// top-level design notes. Parsing fails fast on the first error encountered
// (no error recovery), matching the resolution pass's first-error-wins
// strategy in package treemodel.
package treelang

import (
	"fmt"
	"io"

	"github.com/QE-Lab/tree-gen/treelang/ast"
	"github.com/QE-Lab/tree-gen/treelang/token"
)

// Error is a located parse error: Pos points at the start of the offending
// token, Tok holds its literal text, and Msg describes the problem.
type Error struct {
	Pos token.Position
	Msg string
	Tok string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Parser parses tree-description source into a raw [ast.File]. It uses one
// token of lookahead and stops at the first error.
type Parser struct {
	lex     *Lexer
	cur     token.Token
	peek    token.Token
}

// NewParser creates a Parser reading from r.
func NewParser(r io.Reader) (*Parser, error) {
	lex, err := NewLexer(r)
	if err != nil {
		return nil, err
	}
	p := &Parser{lex: lex}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.cur = p.peek
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.peek = tok
	return nil
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) *Error {
	return &Error{Pos: tok.Pos, Msg: fmt.Sprintf(format, args...), Tok: tok.Literal}
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.cur.Kind != k {
		return token.Token{}, p.errorf(p.cur, "expected %s but found %q", k, tokenText(p.cur))
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

func (p *Parser) expectIdentWith(name string) error {
	if p.cur.Kind != token.IDENT || p.cur.Literal != name {
		return p.errorf(p.cur, "expected %q but found %q", name, tokenText(p.cur))
	}
	return p.advance()
}

func tokenText(t token.Token) string {
	if t.Kind == token.EOF {
		return "<EOF>"
	}
	return t.Literal
}

// curIsKeyword reports whether the current token is the identifier name,
// without consuming it. Used to decide between grammar alternatives that
// share a common IDENT lookahead.
func (p *Parser) curIsKeyword(name string) bool {
	return p.cur.Kind == token.IDENT && p.cur.Literal == name
}

// ParseFile parses an entire tree-description source file.
func (p *Parser) ParseFile() (*ast.File, error) {
	f := &ast.File{}
	if p.curIsKeyword("header") {
		h, err := p.parseHeader()
		if err != nil {
			return nil, err
		}
		f.Header = h
	}
	for p.cur.Kind != token.EOF {
		doc := p.takeDoc()
		switch {
		case p.curIsKeyword("enum"):
			e, err := p.parseEnum(doc)
			if err != nil {
				return nil, err
			}
			f.Enums = append(f.Enums, e)
		case p.cur.Kind == token.IDENT:
			n, err := p.parseNode(doc)
			if err != nil {
				return nil, err
			}
			f.Nodes = append(f.Nodes, n)
		default:
			return nil, p.errorf(p.cur, "expected a node type or enum declaration, found %q", tokenText(p.cur))
		}
	}
	return f, nil
}

// takeDoc returns the comment text the Lexer attached to the current
// lookahead token: any line or block comment immediately preceding it in
// source, which parseEnum/parseNode/parseField thread into the
// corresponding ast node's Doc field and, from there, into the emitted Go
// doc comment and Python docstring.
func (p *Parser) takeDoc() string { return p.cur.Doc }

func (p *Parser) parseHeader() (*ast.Header, error) {
	pos := p.cur.Pos
	if err := p.expectIdentWith("header"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	h := &ast.Header{Pos: pos}
	for p.cur.Kind != token.RBRACE {
		if p.cur.Kind != token.IDENT {
			return nil, p.errorf(p.cur, "expected a header directive, found %q", tokenText(p.cur))
		}
		switch p.cur.Literal {
		case "namespace":
			if err := p.advance(); err != nil {
				return nil, err
			}
			s, err := p.expectString()
			if err != nil {
				return nil, err
			}
			h.Namespace = s
		case "include_header":
			if err := p.advance(); err != nil {
				return nil, err
			}
			s, err := p.expectString()
			if err != nil {
				return nil, err
			}
			h.IncludeHeaders = append(h.IncludeHeaders, s)
		case "include_source":
			if err := p.advance(); err != nil {
				return nil, err
			}
			s, err := p.expectString()
			if err != nil {
				return nil, err
			}
			h.IncludeSources = append(h.IncludeSources, s)
		case "source_location":
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			h.SourceLocation = name.Literal
			if _, err := p.expect(token.SEMI); err != nil {
				return nil, err
			}
			continue
		case "primitive_preset":
			if err := p.advance(); err != nil {
				return nil, err
			}
			s, err := p.expectString()
			if err != nil {
				return nil, err
			}
			h.PrimitivePreset = s
		case "enable":
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			h.EnabledFeatures = append(h.EnabledFeatures, name.Literal)
			if _, err := p.expect(token.SEMI); err != nil {
				return nil, err
			}
			continue
		case "primitive":
			pd, err := p.parsePrimitive()
			if err != nil {
				return nil, err
			}
			h.Primitives = append(h.Primitives, pd)
			continue
		default:
			return nil, p.errorf(p.cur, "unknown header directive %q", p.cur.Literal)
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return h, nil
}

func (p *Parser) parsePrimitive() (*ast.PrimitiveDecl, error) {
	pos := p.cur.Pos
	if err := p.expectIdentWith("primitive"); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	pd := &ast.PrimitiveDecl{Pos: pos, Name: name.Literal}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	for p.cur.Kind != token.RBRACE {
		if p.cur.Kind != token.IDENT {
			return nil, p.errorf(p.cur, "expected a primitive attribute, found %q", tokenText(p.cur))
		}
		switch p.cur.Literal {
		case "include":
			if err := p.advance(); err != nil {
				return nil, err
			}
			s, err := p.expectString()
			if err != nil {
				return nil, err
			}
			pd.Include = s
		case "default":
			if err := p.advance(); err != nil {
				return nil, err
			}
			s, err := p.expectString()
			if err != nil {
				return nil, err
			}
			pd.Default = s
		case "serialize":
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			pd.Serialize = name.Literal
		case "deserialize":
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			pd.Deserialize = name.Literal
		default:
			return nil, p.errorf(p.cur, "unknown primitive attribute %q", p.cur.Literal)
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return pd, nil
}

func (p *Parser) expectString() (string, error) {
	tok, err := p.expect(token.STRING)
	if err != nil {
		return "", err
	}
	return tok.Literal, nil
}

func (p *Parser) parseEnum(doc string) (*ast.EnumDecl, error) {
	pos := p.cur.Pos
	if err := p.expectIdentWith("enum"); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	e := &ast.EnumDecl{Pos: pos, Doc: doc, Name: name.Literal}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for p.cur.Kind != token.RBRACE {
		cdoc := p.takeDoc()
		cpos := p.cur.Pos
		cname, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if seen[cname.Literal] {
			return nil, p.errorf(cname, "duplicate enumeration constant %q in enum %q", cname.Literal, e.Name)
		}
		seen[cname.Literal] = true
		e.Constants = append(e.Constants, &ast.EnumConst{Pos: cpos, Doc: cdoc, Name: cname.Literal})
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *Parser) parseNode(doc string) (*ast.NodeDecl, error) {
	pos := p.cur.Pos
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	n := &ast.NodeDecl{Pos: pos, Doc: doc, Name: name.Literal}
	if p.cur.Kind == token.COLON {
		if err := p.advance(); err != nil {
			return nil, err
		}
		parent, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		n.Parent = parent.Literal
	}
	for p.cur.Kind == token.IDENT && (p.cur.Literal == "root" || p.cur.Literal == "error") {
		if p.cur.Literal == "root" {
			n.IsRoot = true
		} else {
			n.IsErr = true
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for p.cur.Kind != token.RBRACE {
		fd, err := p.parseField()
		if err != nil {
			return nil, err
		}
		if seen[fd.Name] {
			return nil, p.errorf(p.cur, "duplicate field %q in node type %q", fd.Name, n.Name)
		}
		seen[fd.Name] = true
		n.Fields = append(n.Fields, fd)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return n, nil
}

// edgeKeywords maps the keyword-like identifiers that introduce a
// parameterized edge TypeExpr (`Maybe<T>`, `One<T>`, ...) to their EdgeKind.
var edgeKeywords = map[string]ast.EdgeKind{
	"Maybe":    ast.EdgeMaybe,
	"One":      ast.EdgeOne,
	"Any":      ast.EdgeAny,
	"Many":     ast.EdgeMany,
	"Link":     ast.EdgeLink,
	"External": ast.EdgeExternal,
}

func (p *Parser) parseField() (*ast.FieldDecl, error) {
	doc := p.takeDoc()
	pos := p.cur.Pos
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	kind, typeRef, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	fd := &ast.FieldDecl{Pos: pos, Doc: doc, Name: name.Literal, Kind: kind, TypeRef: typeRef}
	if p.cur.Kind == token.BANG {
		fd.ExtOp = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.cur.Kind == token.EQUALS {
		if kind != ast.EdgePrimitive {
			return nil, p.errorf(p.cur, "field %q: a default value is only allowed on a primitive-typed field", name.Literal)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		def, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		fd.Default = def
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return fd, nil
}

// parseTypeExpr parses `T`, or one of `Maybe<T>`, `One<T>`, `Any<T>`,
// `Many<T>`, `Link<T>`, `External<T>`.
func (p *Parser) parseTypeExpr() (ast.EdgeKind, string, error) {
	if p.cur.Kind != token.IDENT {
		return 0, "", p.errorf(p.cur, "expected a type, found %q", tokenText(p.cur))
	}
	if kind, ok := edgeKeywords[p.cur.Literal]; ok && p.peek.Kind == token.LANGLE {
		if err := p.advance(); err != nil { // consume edge keyword
			return 0, "", err
		}
		if _, err := p.expect(token.LANGLE); err != nil {
			return 0, "", err
		}
		target, err := p.expect(token.IDENT)
		if err != nil {
			return 0, "", err
		}
		if _, err := p.expect(token.RANGLE); err != nil {
			return 0, "", err
		}
		return kind, target.Literal, nil
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return 0, "", err
	}
	return ast.EdgePrimitive, name.Literal, nil
}

func (p *Parser) parseLiteral() (string, error) {
	switch p.cur.Kind {
	case token.STRING:
		tok := p.cur
		if err := p.advance(); err != nil {
			return "", err
		}
		return tok.Literal, nil
	case token.INT:
		tok := p.cur
		if err := p.advance(); err != nil {
			return "", err
		}
		return tok.Literal, nil
	default:
		return "", p.errorf(p.cur, "expected a literal default value, found %q", tokenText(p.cur))
	}
}
