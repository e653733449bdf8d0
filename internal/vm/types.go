// Package vm simulates the single-accumulator machine described by the
// translator's instruction set: a flat memory, an accumulator-centered data
// path, and a control unit that dispatches each opcode through a small
// family of addressing and execution stages.
package vm

import (
	"errors"
	"fmt"

	"sexpvm/internal/isa"
)

// MemorySize is the number of addressable words in the machine's memory.
const MemorySize = 2048

// InstructionLimit bounds how many instructions Run executes before giving
// up on a program that never halts.
const InstructionLimit = 1000

// Word is the machine's native storage unit; it is the same width as an
// encoded instruction so the accumulator, memory cells, and instruction
// words can move between registers without conversion.
type Word = isa.Word

var (
	// ErrHalt is returned by Step when the program executes HLT. Run treats
	// it as a normal, successful stop rather than a failure.
	ErrHalt = errors.New("vm: halt")

	// ErrInputExhausted is returned when INPUT executes with no buffered
	// input remaining.
	ErrInputExhausted = errors.New("vm: input exhausted")

	// ErrLimitExceeded is returned by Run when a program does not halt
	// within InstructionLimit instructions.
	ErrLimitExceeded = errors.New("vm: instruction limit exceeded")

	// ErrDivideByZero is returned by DIV and MOD when the operand is zero.
	ErrDivideByZero = errors.New("vm: divide by zero")
)

// AddressError reports an access outside the machine's memory.
type AddressError struct {
	Addr int
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("vm: address %d out of range [0, %d)", e.Addr, MemorySize)
}
