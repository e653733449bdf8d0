package vm

import (
	"fmt"
	"io"
	"strings"

	"sexpvm/internal/isa"
)

// Memory is the machine's flat address space.
type Memory [MemorySize]Word

func (m *Memory) load(addr int) (Word, error) {
	if addr < 0 || addr >= MemorySize {
		return 0, &AddressError{Addr: addr}
	}

	return m[addr], nil
}

func (m *Memory) store(addr int, w Word) error {
	if addr < 0 || addr >= MemorySize {
		return &AddressError{Addr: addr}
	}

	m[addr] = w

	return nil
}

// aluOp is the arithmetic the ALU performs when it is signaled; only ADD,
// SUB, DIV, MOD, and CMP route through it.
type aluOp func(left, right Word) Word

// DataPath holds the machine's registers, memory, and I/O queues. A few
// helpers carry the register transfer vocabulary (latchAccFromALU,
// latchAccFromInput, signalALU, signalOutput); the control unit also
// assigns registers such as Ip, Sp and Alu directly.
type DataPath struct {
	Acc Word // accumulator
	Sp  Word // stack pointer
	Ip  Word // instruction pointer
	Ar  Word // address register
	Alu Word // ALU result latch

	zero bool // ALU produced zero on its last operation

	Mem *Memory

	input    []rune
	inputPos int
	output   strings.Builder

	// inputSource and outputSink back an interactive console: when set,
	// INPUT falls through to inputSource once the buffered FIFO is
	// exhausted, and PRINT mirrors every character to outputSink as well
	// as the in-memory output buffer.
	inputSource io.RuneReader
	outputSink  io.Writer
}

// NewDataPath returns a data path with a zeroed memory and stack pointer
// parked at the top of the address space, as the machine starts before a
// program is loaded.
func NewDataPath() *DataPath {
	return &DataPath{
		Mem: new(Memory),
		Sp:  Word(MemorySize),
	}
}

// SetInput replaces the input FIFO that INPUT instructions consume from.
func (dp *DataPath) SetInput(tokens []rune) {
	dp.input = tokens
	dp.inputPos = 0
}

// Output returns everything PRINT has written so far.
func (dp *DataPath) Output() string {
	return dp.output.String()
}

// SetInputSource attaches a fallback read_char source consulted once the
// buffered input FIFO set by SetInput is exhausted, for interactive
// consoles.
func (dp *DataPath) SetInputSource(r io.RuneReader) {
	dp.inputSource = r
}

// SetOutputSink attaches a writer that mirrors every character print
// writes, for interactive consoles.
func (dp *DataPath) SetOutputSink(w io.Writer) {
	dp.outputSink = w
}

// latchAccFromALU copies the ALU's last result into the accumulator.
func (dp *DataPath) latchAccFromALU() {
	dp.Acc = dp.Alu
}

// latchAccFromInput pulls the next buffered input rune into the
// accumulator. Once the FIFO is empty it reads from the attached input
// source, if any; it reports ErrInputExhausted when there is no source or
// the source fails.
func (dp *DataPath) latchAccFromInput() error {
	if dp.inputPos < len(dp.input) {
		dp.Acc = Word(dp.input[dp.inputPos])
		dp.inputPos++

		return nil
	}

	if dp.inputSource != nil {
		r, _, err := dp.inputSource.ReadRune()
		if err != nil {
			return ErrInputExhausted
		}

		dp.Acc = Word(r)

		return nil
	}

	return ErrInputExhausted
}

// signalOutput appends the accumulator's value, as a rune, to the output
// buffer, as PRINT does, and mirrors it to an attached console.
func (dp *DataPath) signalOutput() {
	r := rune(dp.Acc)

	dp.output.WriteRune(r)

	if dp.outputSink != nil {
		fmt.Fprintf(dp.outputSink, "%c", r)
	}
}

// resolveAddress computes the effective address an instruction addresses,
// following the addressing mode encoded in the instruction (operandValue
// then reads the operand). It also returns the number of ticks the
// resolution cost, mirroring how many memory round trips each mode needs.
func (dp *DataPath) resolveAddress(ins isa.Instruction) (addr int, ticks int, err error) {
	switch ins.Mode {
	case isa.OperandLoad:
		return 0, 0, nil

	case isa.Direct:
		return int(ins.Operand), 1, nil

	case isa.SPIndirect:
		return int(dp.Sp) + int(ins.Operand), 2, nil

	case isa.Indirect:
		dp.Ar = Word(ins.Operand)

		ptr, err := dp.Mem.load(int(dp.Ar))
		if err != nil {
			return 0, 0, err
		}

		return int(ptr), 3, nil

	default:
		return 0, 0, &AddressError{Addr: int(ins.Operand)}
	}
}

// operandValue returns the value an ALU or LOAD instruction operates on:
// the operand itself under OPERAND_LOAD, or the memory cell at the
// resolved address otherwise.
func (dp *DataPath) operandValue(ins isa.Instruction, addr int) (Word, error) {
	if ins.Mode == isa.OperandLoad {
		return Word(ins.Operand), nil
	}

	return dp.Mem.load(addr)
}

// signalALU performs op on the accumulator and the given right-hand
// operand, latching the result and the zero flag.
func (dp *DataPath) signalALU(op aluOp, right Word) {
	dp.Alu = op(dp.Acc, right)
	dp.zero = dp.Alu == 0
}

var aluOps = map[isa.Opcode]aluOp{
	isa.ADD: func(l, r Word) Word { return l + r },
	isa.SUB: func(l, r Word) Word { return l - r },
	isa.MOD: func(l, r Word) Word { return Word(int32(l) % int32(r)) },
	isa.DIV: func(l, r Word) Word { return Word(int32(l) / int32(r)) },
	isa.CMP: func(l, r Word) Word { return l - r },
}
