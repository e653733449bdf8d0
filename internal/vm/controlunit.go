package vm

import (
	"context"
	"fmt"

	"sexpvm/internal/isa"
	"sexpvm/internal/log"
)

// ControlUnit drives a DataPath one instruction at a time, dispatching each
// opcode through the family described in the instruction set: control
// flow, ALU/LOAD/SAVE, and the register-transfer "other" family (PRINT,
// INPUT, PUSH, POP).
type ControlUnit struct {
	DataPath *DataPath

	Ticks   int
	Counter int

	log *log.Logger
}

// OptionFn configures a ControlUnit at construction.
type OptionFn func(*ControlUnit)

// WithLogger attaches a logger the control unit reports its run state to.
func WithLogger(logger *log.Logger) OptionFn {
	return func(cu *ControlUnit) { cu.log = logger }
}

// New returns a ControlUnit with a fresh, empty DataPath.
func New(opts ...OptionFn) *ControlUnit {
	cu := &ControlUnit{
		DataPath: NewDataPath(),
		log:      log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(cu)
	}

	return cu
}

// Load installs a memory image and resets the instruction pointer to its
// first cell, as the startup jump at cell 0 expects.
func (cu *ControlUnit) Load(mem []Word) error {
	if len(mem) != MemorySize {
		return fmt.Errorf("vm: image has %d words, want %d", len(mem), MemorySize)
	}

	copy(cu.DataPath.Mem[:], mem)
	cu.DataPath.Ip = 0

	return nil
}

// addressTicks returns the number of ticks address resolution for mode
// costs, independent of whether the resolution finds an error.
func addressTicks(mode isa.Mode) int {
	switch mode {
	case isa.OperandLoad:
		return 0
	case isa.Direct:
		return 1
	case isa.SPIndirect:
		return 2
	case isa.Indirect:
		return 3
	default:
		return 0
	}
}

// Step fetches, decodes, and executes a single instruction, advancing the
// instruction pointer and tick counter. It returns ErrHalt when the
// program executes HLT.
func (cu *ControlUnit) Step() error {
	dp := cu.DataPath

	w, err := dp.Mem.load(int(dp.Ip))
	if err != nil {
		return err
	}

	ins := isa.Decode(w)

	switch ins.Op {
	case isa.HLT:
		cu.Ticks++

		return ErrHalt

	case isa.JMP:
		dp.Ip = Word(ins.Operand)
		cu.Ticks++

		return nil

	case isa.JZ:
		if dp.zero {
			dp.Ip = Word(ins.Operand)
		} else {
			dp.Ip++
		}

		cu.Ticks++

		return nil

	case isa.CALL:
		ret := dp.Ip + 1
		dp.Sp--

		if err := dp.Mem.store(int(dp.Sp), ret); err != nil {
			return err
		}

		dp.Ip = Word(ins.Operand)
		cu.Ticks += 2

		return nil

	case isa.RETURN:
		ret, err := dp.Mem.load(int(dp.Sp))
		if err != nil {
			return err
		}

		dp.Ip = ret
		dp.Sp++
		cu.Ticks += 2

		return nil
	}

	if err := cu.executeOther(ins); err != nil {
		return err
	}

	dp.Ip++

	return nil
}

// executeOther dispatches the ALU/LOAD/SAVE family and the register
// transfer family (PRINT, INPUT, PUSH, POP); every opcode that reaches
// here falls through to a sequential IP++ in Step.
func (cu *ControlUnit) executeOther(ins isa.Instruction) error {
	dp := cu.DataPath

	switch ins.Op {
	case isa.ADD, isa.SUB, isa.DIV, isa.MOD, isa.CMP:
		addr, ticks, err := dp.resolveAddress(ins)
		if err != nil {
			return err
		}

		right, err := dp.operandValue(ins, addr)
		if err != nil {
			return err
		}

		if (ins.Op == isa.DIV || ins.Op == isa.MOD) && right == 0 {
			return ErrDivideByZero
		}

		dp.signalALU(aluOps[ins.Op], right)
		cu.Ticks += ticks + 1

		if ins.Op != isa.CMP {
			dp.latchAccFromALU()
		}

		return nil

	case isa.LOAD:
		addr, ticks, err := dp.resolveAddress(ins)
		if err != nil {
			return err
		}

		val, err := dp.operandValue(ins, addr)
		if err != nil {
			return err
		}

		// LOAD routes its operand through the ALU with a zero left operand,
		// so it sets the zero flag that a following JZ reads.
		dp.Alu = val
		dp.zero = dp.Alu == 0
		dp.latchAccFromALU()
		cu.Ticks += ticks + 1

		return nil

	case isa.SAVE:
		addr, ticks, err := dp.resolveAddress(ins)
		if err != nil {
			return err
		}

		if err := dp.Mem.store(addr, dp.Acc); err != nil {
			return err
		}

		cu.Ticks += ticks + 1

		return nil

	case isa.INPUT:
		if err := dp.latchAccFromInput(); err != nil {
			return err
		}

		cu.Ticks++

		return nil

	case isa.PRINT:
		dp.signalOutput()
		cu.Ticks++

		return nil

	case isa.PUSH:
		dp.Sp--

		if err := dp.Mem.store(int(dp.Sp), dp.Acc); err != nil {
			return err
		}

		cu.Ticks++

		return nil

	case isa.POP:
		dp.Sp++
		cu.Ticks++

		return nil

	default:
		return fmt.Errorf("vm: unhandled opcode %s", ins.Op)
	}
}

// Run steps the machine until HLT, an error, or InstructionLimit
// instructions have executed without halting.
func (cu *ControlUnit) Run(ctx context.Context) error {
	for cu.Counter = 0; cu.Counter < InstructionLimit; cu.Counter++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := cu.Step()

		switch {
		case err == ErrHalt:
			cu.log.Debug("halted", "instructions", cu.Counter+1, "ticks", cu.Ticks)
			return nil
		case err != nil:
			return err
		}
	}

	cu.log.Warn("limit exceeded", "instructions", cu.Counter, "ticks", cu.Ticks)

	return ErrLimitExceeded
}

// InstructionCount returns how many instructions Run executed: one more
// than the loop counter on a clean halt, since the counter is not
// incremented for the instruction that halted.
func (cu *ControlUnit) InstructionCount() int {
	if cu.Counter >= InstructionLimit {
		return cu.Counter
	}

	return cu.Counter + 1
}
