package lexer_test

import (
	"errors"
	"testing"

	"sexpvm/internal/lexer"
)

func TestLexSimple(t *testing.T) {
	terms, err := lexer.Lex("(set x 5)\n(print_int x)")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	if len(terms) != 2 {
		t.Fatalf("got %d terms, want 2", len(terms))
	}

	want := "(set x 5)"
	if got := terms[0].String(); got != want {
		t.Errorf("terms[0] = %q, want %q", got, want)
	}
}

func TestLexNested(t *testing.T) {
	terms, err := lexer.Lex("(set x (+ 1 2))")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	if len(terms) != 1 || len(terms[0].List) != 3 {
		t.Fatalf("unexpected shape: %+v", terms)
	}

	inner := terms[0].List[2]
	if !inner.IsList || inner.String() != "(+ 1 2)" {
		t.Errorf("inner = %q, want (+ 1 2)", inner.String())
	}
}

func TestLexStringLiteral(t *testing.T) {
	terms, err := lexer.Lex("(print_string 'hello (world)')")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	if len(terms[0].List) != 2 {
		t.Fatalf("unexpected shape: %+v", terms)
	}

	lit := terms[0].List[1]
	if lit.IsList {
		t.Fatalf("string literal parsed as list: %+v", lit)
	}

	const want = "'hello (world)'"
	if lit.Atom != want {
		t.Errorf("literal = %q, want %q", lit.Atom, want)
	}
}

func TestLexInvalidSymbol(t *testing.T) {
	_, err := lexer.Lex("(set x @)")

	var symErr *lexer.InvalidSymbolError
	if !errors.As(err, &symErr) {
		t.Fatalf("err = %v, want *InvalidSymbolError", err)
	}

	if symErr.Char != '@' {
		t.Errorf("Char = %q, want '@'", symErr.Char)
	}
}
