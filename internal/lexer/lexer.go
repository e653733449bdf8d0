// Package lexer turns a source text of parenthesized S-expressions into
// ordered term trees for the translator. A term is either an atom (a
// string token) or a nested list of terms; Term represents both with a
// single recursive type.
package lexer

import (
	"fmt"
	"strings"
)

// Term is one node of a parsed expression: either a leaf Atom or a List of
// child terms. Exactly one of Atom/List is meaningful, selected by IsList.
type Term struct {
	Atom   string
	List   []Term
	IsList bool
}

// Leaf builds an atom term.
func Leaf(atom string) Term { return Term{Atom: atom} }

// Node builds a list term.
func Node(children ...Term) Term { return Term{List: children, IsList: true} }

func (t Term) String() string {
	if !t.IsList {
		return t.Atom
	}

	parts := make([]string, len(t.List))
	for i, c := range t.List {
		parts[i] = c.String()
	}

	return "(" + strings.Join(parts, " ") + ")"
}

// InvalidSymbolError reports a character the lexer's state machine does not
// recognize, at its line and column (both 1-indexed).
type InvalidSymbolError struct {
	Line, Col int
	Char      rune
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol: %q, on line and position: %d, %d", e.Char, e.Line, e.Col)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	default:
		return false
	}
}

func isWord(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}

func isArithmetic(r rune) bool {
	return r == '+' || r == '-' || r == '%'
}

func isComparison(r rune) bool {
	return r == '=' || r == '!'
}

// Lexer is a one-shot state machine: feed it source text with Lex and
// receive the ordered top-level terms it found. Its state is not reset
// between calls: a second Lex on the same Lexer appends to the terms
// found by the first.
type Lexer struct {
	allTerms   []Term
	termsStack [][]Term
	brackets   int

	curTerm []Term
	atom    []rune
	inQuote bool
}

// New returns a ready-to-use Lexer.
func New() *Lexer {
	return &Lexer{}
}

func (l *Lexer) pushAtom() {
	if len(l.atom) == 0 {
		return
	}

	l.curTerm = append(l.curTerm, Leaf(string(l.atom)))
	l.atom = nil
}

func (l *Lexer) processStringChar(ch rune) {
	l.atom = append(l.atom, ch)

	if ch == '\'' {
		l.curTerm = append(l.curTerm, Leaf(string(l.atom)))
		l.atom = nil
		l.inQuote = false
	}
}

func (l *Lexer) processLeftParen() {
	if l.brackets != 0 {
		l.termsStack = append(l.termsStack, l.curTerm)
		l.curTerm = nil
	}

	l.brackets++
}

func (l *Lexer) processRightParen() {
	l.pushAtom()

	if l.brackets > 1 {
		prev := l.termsStack[len(l.termsStack)-1]
		l.termsStack = l.termsStack[:len(l.termsStack)-1]
		prev = append(prev, Node(l.curTerm...))
		l.curTerm = prev
	}

	if l.brackets == 1 {
		l.allTerms = append(l.allTerms, Node(l.curTerm...))
		l.curTerm = nil
	}

	l.brackets--
}

func (l *Lexer) processChar(line, col int, ch rune) error {
	switch {
	case l.inQuote:
		l.processStringChar(ch)

	case ch == '(':
		l.processLeftParen()

	case ch == ')':
		l.processRightParen()

	case isSpace(ch):
		l.pushAtom()

	case ch == '\'' && len(l.atom) == 0:
		l.inQuote = true
		l.atom = append(l.atom, ch)

	case isWord(ch) || isArithmetic(ch) || isComparison(ch) || ch == '&':
		l.atom = append(l.atom, ch)

	default:
		return &InvalidSymbolError{Line: line, Col: col, Char: ch}
	}

	return nil
}

// Lex parses source text into its ordered top-level terms.
func (l *Lexer) Lex(text string) ([]Term, error) {
	for lineNum, line := range strings.Split(text, "\n") {
		for pos, ch := range []rune(line) {
			if err := l.processChar(lineNum+1, pos+1, ch); err != nil {
				return nil, err
			}
		}
	}

	return l.allTerms, nil
}

// Lex is a package-level convenience that lexes text with a fresh Lexer.
func Lex(text string) ([]Term, error) {
	return New().Lex(text)
}
