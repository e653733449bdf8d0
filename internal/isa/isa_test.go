package isa_test

import (
	"testing"

	"sexpvm/internal/isa"
)

func TestEncodeDecode(t *testing.T) {
	tcs := []struct {
		name string
		ins  isa.Instruction
	}{
		{"add-operand", isa.Instruction{Op: isa.ADD, Mode: isa.OperandLoad, Operand: 42}},
		{"jmp-direct", isa.Instruction{Op: isa.JMP, Mode: isa.Direct, Operand: 2047}},
		{"save-sp-indirect", isa.Instruction{Op: isa.SAVE, Mode: isa.SPIndirect, Operand: 0}},
		{"hlt", isa.Instruction{Op: isa.HLT, Mode: isa.Direct, Operand: 0}},
		{"max-operand", isa.Instruction{Op: isa.LOAD, Mode: isa.Indirect, Operand: 1<<24 - 1}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			w := isa.Encode(tc.ins)
			got := isa.Decode(w)

			if got != tc.ins {
				t.Errorf("Decode(Encode(%+v)) = %+v, want %+v", tc.ins, got, tc.ins)
			}
		})
	}
}

func TestWordText(t *testing.T) {
	w := isa.EncodeRaw(isa.JMP, isa.Direct, 1)
	const want = "D0000001"

	if got := w.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}

	parsed, err := isa.ParseText(want)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}

	if parsed != w {
		t.Errorf("ParseText(%q) = %v, want %v", want, parsed, w)
	}
}

func TestMnemonic(t *testing.T) {
	tcs := []struct {
		w    isa.Word
		want string
	}{
		{isa.EncodeRaw(isa.ADD, isa.OperandLoad, 5), "add #5"},
		{isa.EncodeRaw(isa.JMP, isa.Direct, 12), "jmp 12"},
		{isa.EncodeRaw(isa.SAVE, isa.SPIndirect, 0), "save &0"},
		{isa.EncodeRaw(isa.HLT, isa.Direct, 0), "halt"},
		{isa.EncodeRaw(isa.PRINT, isa.Direct, 0), "print"},
	}

	for _, tc := range tcs {
		if got := isa.Mnemonic(tc.w); got != tc.want {
			t.Errorf("Mnemonic(%s) = %q, want %q", tc.w.Text(), got, tc.want)
		}
	}
}
