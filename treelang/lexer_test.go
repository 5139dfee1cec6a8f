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
	"strings"
	"testing"

	"github.com/QE-Lab/tree-gen/treelang/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l, err := NewLexer(strings.NewReader(src))
	if err != nil {
		t.Fatalf("NewLexer: %v", err)
	}
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestLexerSigilsAndIdents(t *testing.T) {
	toks := scanAll(t, `Add : Expr { lhs: One<Expr>; } // trailing comment`)
	wantKinds := []token.Kind{
		token.IDENT, token.COLON, token.IDENT, token.LBRACE,
		token.IDENT, token.COLON, token.IDENT, token.LANGLE, token.IDENT, token.RANGLE, token.SEMI,
		token.RBRACE, token.EOF,
	}
	if len(toks) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(wantKinds), toks)
	}
	for i, k := range wantKinds {
		if toks[i].Kind != k {
			t.Errorf("token %d: kind = %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestLexerStringEscapes(t *testing.T) {
	toks := scanAll(t, `"a\n\"b\""`)
	if toks[0].Kind != token.STRING || toks[0].Literal != "a\n\"b\"" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexerBlockComment(t *testing.T) {
	toks := scanAll(t, "/* skip me\nacross lines */ x")
	if len(toks) != 2 || toks[0].Kind != token.IDENT || toks[0].Literal != "x" {
		t.Fatalf("got %+v", toks)
	}
	if toks[0].Pos.Line != 2 {
		t.Errorf("Pos.Line = %d, want 2", toks[0].Pos.Line)
	}
}

func TestLexerIllegalCharacter(t *testing.T) {
	l, err := NewLexer(strings.NewReader("@"))
	if err != nil {
		t.Fatalf("NewLexer: %v", err)
	}
	_, err = l.Next()
	if err == nil {
		t.Fatal("expected an illegal-character error")
	}
}

func TestLexerIntegerLiteral(t *testing.T) {
	toks := scanAll(t, "12345")
	if toks[0].Kind != token.INT || toks[0].Literal != "12345" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexerLineCommentBecomesDoc(t *testing.T) {
	toks := scanAll(t, "// a binary addition\n// over two operands\nAdd")
	if toks[0].Kind != token.IDENT || toks[0].Literal != "Add" {
		t.Fatalf("got %+v", toks[0])
	}
	want := "a binary addition\nover two operands"
	if toks[0].Doc != want {
		t.Errorf("Doc = %q, want %q", toks[0].Doc, want)
	}
}

func TestLexerBlockCommentBecomesDoc(t *testing.T) {
	toks := scanAll(t, "/* the literal value. */\nLit")
	if toks[0].Kind != token.IDENT || toks[0].Literal != "Lit" {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[0].Doc != "the literal value." {
		t.Errorf("Doc = %q, want %q", toks[0].Doc, "the literal value.")
	}
}

func TestLexerDocDoesNotLeakAcrossTokens(t *testing.T) {
	toks := scanAll(t, "// doc for Add\nAdd Lit")
	if toks[1].Doc != "" {
		t.Errorf("second token Doc = %q, want empty", toks[1].Doc)
	}
}
