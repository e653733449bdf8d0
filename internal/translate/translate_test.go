package translate_test

import (
	"strings"
	"testing"

	"sexpvm/internal/isa"
	"sexpvm/internal/lexer"
	"sexpvm/internal/translate"
)

func mustTranslate(t *testing.T, src string) *translate.Image {
	t.Helper()

	terms, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	img, err := translate.Translate(terms)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	return img
}

func TestImageShape(t *testing.T) {
	img := mustTranslate(t, "(print_string 'hi')")

	if len(img.Memory) != translate.ImageSize {
		t.Fatalf("len(Memory) = %d, want %d", len(img.Memory), translate.ImageSize)
	}

	if img.DataLen <= 0 {
		t.Fatalf("DataLen = %d, want > 0", img.DataLen)
	}

	if img.DataLen+img.CodeLen > translate.ImageSize {
		t.Fatalf("DataLen+CodeLen = %d exceeds image size", img.DataLen+img.CodeLen)
	}
}

func TestStartupJump(t *testing.T) {
	img := mustTranslate(t, "(print_char 65)")

	ins := isa.Decode(img.Memory[0])
	if ins.Op != isa.JMP || ins.Mode != isa.Direct {
		t.Fatalf("cell 0 = %+v, want JMP DIRECT", ins)
	}

	if int(ins.Operand) != img.DataLen {
		t.Errorf("startup jump target = %d, want %d (data length)", ins.Operand, img.DataLen)
	}
}

func TestControlFlowRelocation(t *testing.T) {
	img := mustTranslate(t, "(if (= 1 1) (print_char 65))")

	for i := img.DataLen; i < img.DataLen+img.CodeLen; i++ {
		ins := isa.Decode(img.Memory[i])
		if ins.Op == isa.JMP || ins.Op == isa.JZ || ins.Op == isa.CALL {
			if int(ins.Operand) < img.DataLen || int(ins.Operand) >= translate.ImageSize {
				t.Errorf("cell %d: control-flow operand %d out of code range [%d, %d)",
					i, ins.Operand, img.DataLen, translate.ImageSize)
			}
		}
	}
}

func TestLastCodeCellIsHalt(t *testing.T) {
	img := mustTranslate(t, "(print_char 65)")

	last := img.Memory[img.DataLen+img.CodeLen-1]
	if isa.Decode(last).Op != isa.HLT {
		t.Errorf("last code cell = %s, want halt", isa.Mnemonic(last))
	}
}

func TestListingFormat(t *testing.T) {
	img := mustTranslate(t, "(print_char 65)")
	listing := img.Listing()

	if !strings.Contains(listing, "DATA MEMORY") || !strings.Contains(listing, "CODE MEMORY") {
		t.Errorf("listing missing section headers:\n%s", listing)
	}
}

func TestUndefinedVariable(t *testing.T) {
	terms, err := lexer.Lex("(print_int x)")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	_, err = translate.Translate(terms)

	var termErr *translate.TermError
	if err == nil {
		t.Fatal("Translate: want error for undefined variable")
	}

	if !strings.Contains(err.Error(), "no such variable") {
		t.Errorf("err = %v, want 'no such variable'", err)
	}

	_ = termErr
}

func TestOversizedLiteralRejected(t *testing.T) {
	terms, err := lexer.Lex("(print_int 4294967296)")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	if _, err := translate.Translate(terms); err == nil {
		t.Fatal("Translate: want error for literal above 2^32-1")
	}
}

func TestSpilledLiteral(t *testing.T) {
	terms, err := lexer.Lex("(print_int 16777216)")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	img, err := translate.Translate(terms)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	found := false
	for i := 1; i < img.DataLen; i++ {
		if uint32(img.Memory[i]) == 16777216 {
			found = true
		}
	}

	if !found {
		t.Error("expected spilled literal 16777216 in data memory")
	}
}

func TestNestedFunctionRejected(t *testing.T) {
	terms, err := lexer.Lex("(fun outer (x) (fun inner (y) y))")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	if _, err := translate.Translate(terms); err == nil {
		t.Fatal("Translate: want error for nested function definition")
	}
}
