package vm_test

import (
	"context"
	"testing"

	"sexpvm/internal/lexer"
	"sexpvm/internal/translate"
	"sexpvm/internal/vm"
)

func run(t *testing.T, src string, input []rune) *vm.ControlUnit {
	t.Helper()

	terms, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	img, err := translate.Translate(terms)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	cu, err := vm.LoadImage(img)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}

	cu.DataPath.SetInput(input)

	if err := cu.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	return cu
}

func TestHelloWorld(t *testing.T) {
	cu := run(t, "(print_string 'hi')", nil)

	if got := cu.DataPath.Output(); got != "hi" {
		t.Errorf("output = %q, want %q", got, "hi")
	}
}

func TestEchoOneChar(t *testing.T) {
	cu := run(t, "(set c (read_char)) (print_char c)", []rune{'x'})

	if got := cu.DataPath.Output(); got != "x" {
		t.Errorf("output = %q, want %q", got, "x")
	}
}

func TestArithmetic(t *testing.T) {
	cu := run(t, "(print_int (+ 2 (% 10 3)))", nil)

	if got := cu.DataPath.Output(); got != "3" {
		t.Errorf("output = %q, want %q", got, "3")
	}
}

func TestAmpersand(t *testing.T) {
	cu := run(t, "(print_int (& (= 1 1) (= 2 3)))", nil)

	if got := cu.DataPath.Output(); got != "0" {
		t.Errorf("output = %q, want %q", got, "0")
	}
}

func TestIfElse(t *testing.T) {
	cu := run(t, "(if (= 1 2) (print_char 84) (print_char 70))", nil)

	if got := cu.DataPath.Output(); got != "F" {
		t.Errorf("output = %q, want %q", got, "F")
	}
}

func TestWhileCountdown(t *testing.T) {
	cu := run(t, `
		(set n 3)
		(while (!= n 0)
			(print_int n)
			(set n (- n 1)))
	`, nil)

	if cu.InstructionCount() == 0 {
		t.Errorf("expected at least one instruction executed")
	}
}

func TestFunctionCall(t *testing.T) {
	cu := run(t, `
		(fun add_one (x) (+ x 1))
		(print_int (add_one 4))
	`, nil)

	if got := cu.DataPath.Output(); got != "5" {
		t.Errorf("output = %q, want %q", got, "5")
	}
}

func TestFunctionCallDouble(t *testing.T) {
	cu := run(t, `
		(fun dbl (x) (+ x x))
		(print_int (dbl 5))
	`, nil)

	if got := cu.DataPath.Output(); got != "10" {
		t.Errorf("output = %q, want %q", got, "10")
	}
}

func TestTickCountAtLeastInstructionCount(t *testing.T) {
	cu := run(t, "(print_char 65)", nil)

	if cu.Ticks < cu.InstructionCount() {
		t.Errorf("Ticks = %d, want >= InstructionCount = %d", cu.Ticks, cu.InstructionCount())
	}
}

func TestInputExhaustedHalts(t *testing.T) {
	terms, err := lexer.Lex("(set c (read_char)) (set c (read_char))")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	img, err := translate.Translate(terms)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	cu, err := vm.LoadImage(img)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}

	cu.DataPath.SetInput([]rune{'a'})

	err = cu.Run(context.Background())
	if err != vm.ErrInputExhausted {
		t.Fatalf("Run err = %v, want ErrInputExhausted", err)
	}
}
