// Package isa defines the instruction set for the single-accumulator
// machine: its opcodes, addressing modes, and the fixed-width binary
// encoding that the translator emits and the virtual machine decodes.
package isa

import "fmt"

// Word is a single memory cell: either an encoded instruction or a data
// value. The machine is word-addressed and every cell is 32 bits wide.
type Word uint32

// Opcode identifies the operation an instruction performs.
//
//go:generate stringer -type=Opcode
type Opcode uint8

const (
	ADD Opcode = iota
	SUB
	DIV
	MOD
	LOAD
	SAVE
	INPUT
	PRINT
	CALL
	RETURN
	PUSH
	POP
	CMP
	JMP
	JZ
	HLT
)

var opcodeNames = [...]string{
	ADD: "add", SUB: "subtraction", DIV: "division", MOD: "division remainder",
	LOAD: "load", SAVE: "save",
	INPUT: "input", PRINT: "print",
	CALL: "call", RETURN: "return", PUSH: "push", POP: "pop",
	CMP: "compare", JMP: "jmp", JZ: "jz",
	HLT: "halt",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", uint8(op))
}

// hasOperand reports whether an instruction's mnemonic carries an explicit
// addressing mode and operand when disassembled.
func (op Opcode) hasOperand() bool {
	switch op {
	case PRINT, INPUT, RETURN, PUSH, POP, HLT:
		return false
	default:
		return true
	}
}

// Mode selects how an instruction's operand is interpreted to produce an
// effective address (or, for OperandLoad, is itself the value).
//
//go:generate stringer -type=Mode
type Mode uint8

const (
	Direct Mode = iota
	Indirect
	OperandLoad
	SPIndirect
)

var modeSigils = [...]string{
	Direct: "", Indirect: "$", OperandLoad: "#", SPIndirect: "&",
}

func (m Mode) String() string {
	if int(m) < len(modeSigils) {
		return modeSigils[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Bit widths of the fixed instruction encoding: a 4-bit opcode nibble, a
// 4-bit addressing-mode nibble, and a 24-bit unsigned operand.
const (
	OpcodeShift = 28
	ModeShift   = 24
	OperandMask = 1<<24 - 1
)

// Instruction is a decoded instruction word.
type Instruction struct {
	Op      Opcode
	Mode    Mode
	Operand uint32
}

// Encode packs an instruction into its 32-bit binary representation.
func Encode(ins Instruction) Word {
	return Word(uint32(ins.Op)<<OpcodeShift | uint32(ins.Mode)<<ModeShift | (ins.Operand & OperandMask))
}

// EncodeRaw is a convenience wrapper for Encode that takes fields directly.
func EncodeRaw(op Opcode, mode Mode, operand uint32) Word {
	return Encode(Instruction{Op: op, Mode: mode, Operand: operand})
}

// Decode unpacks a memory cell into its instruction fields. Decode never
// fails: any 32-bit value decodes to some (Op, Mode, Operand) triple, valid
// or not, matching the source machine's unconditional command_from_hex.
func Decode(w Word) Instruction {
	v := uint32(w)
	return Instruction{
		Op:      Opcode(v >> OpcodeShift & 0xF),
		Mode:    Mode(v >> ModeShift & 0xF),
		Operand: v & OperandMask,
	}
}

// Mnemonic renders a memory cell as a disassembled instruction, matching
// the reference translator's debug listing format.
func Mnemonic(w Word) string {
	ins := Decode(w)
	if !ins.Op.hasOperand() {
		return ins.Op.String()
	}
	return fmt.Sprintf("%s %s%d", ins.Op, ins.Mode, ins.Operand)
}

// Text renders a memory cell as eight uppercase hex digits, the textual
// form used by the container format and debug listings.
func (w Word) Text() string {
	return fmt.Sprintf("%08X", uint32(w))
}

// ParseText parses eight hex digits (case-insensitive, not required to be
// zero-padded) into a memory cell.
func ParseText(s string) (Word, error) {
	var v uint32
	if _, err := fmt.Sscanf(s, "%X", &v); err != nil {
		return 0, fmt.Errorf("isa: invalid word %q: %w", s, err)
	}
	return Word(v), nil
}
