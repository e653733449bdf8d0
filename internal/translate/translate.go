// Package translate lowers term trees produced by the lexer into a flat
// memory image: a data segment holding constants, strings and variables,
// followed by a code segment of encoded instructions, relocated and
// terminated with a halt.
package translate

import (
	"fmt"
	"strconv"
	"strings"

	"sexpvm/internal/isa"
	"sexpvm/internal/lexer"
)

// ImageSize is the fixed length of every emitted memory image.
const ImageSize = 2048

// TermError reports a malformed or semantically invalid term: an unknown
// keyword head, an undefined variable, an oversized numeric literal, a
// missing string array, a nested function definition, or a non-numeric
// alloc size.
type TermError struct {
	Term lexer.Term
	Msg  string
}

func (e *TermError) Error() string {
	return fmt.Sprintf("%s - %s", e.Msg, e.Term.String())
}

func termError(term lexer.Term, msg string) error {
	return &TermError{Term: term, Msg: msg}
}

// arrayInfo is the (base address, cell count) pair recorded for an
// allocated string buffer.
type arrayInfo struct {
	addr, size int
}

// Translator walks term trees, emitting code into a code-memory slice and
// constants into a data-memory slice, resolving names through its symbol
// tables and patching forward jumps once their targets are known. The zero
// value is not usable; construct one with New.
type Translator struct {
	pc int

	code []isa.Word
	data []isa.Word

	variables    map[string]int
	stringArrays map[string]arrayInfo
	literalsNum  map[uint32]int
	literalsStr  map[string]int
	functions    map[string]int
	funVariables map[string][]string
}

// New returns a Translator ready to translate a program from scratch. Cell
// 0 of data memory is reserved for the startup jump patched in at the end
// of Translate.
func New() *Translator {
	return &Translator{
		data:         []isa.Word{0},
		variables:    make(map[string]int),
		stringArrays: make(map[string]arrayInfo),
		literalsNum:  make(map[uint32]int),
		literalsStr:  make(map[string]int),
		functions:    make(map[string]int),
		funVariables: make(map[string][]string),
	}
}

// Image is the translated program: a flat, fixed-size memory image plus
// the boundary between its data and code segments, used both to run the
// program and to render a debug listing.
type Image struct {
	Memory  []isa.Word
	DataLen int
	CodeLen int
}

// Listing renders the debug listing format: the startup jump, then the
// data segment (address, hex, decimal, and the printable character when
// the value is above 32), then the code segment disassembled.
func (img *Image) Listing() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d - %s - %s\n", 0, img.Memory[0].Text(), isa.Mnemonic(img.Memory[0]))
	b.WriteString("\nDATA MEMORY\n")

	for i := 1; i < img.DataLen; i++ {
		v := uint32(img.Memory[i])
		if v > 32 {
			fmt.Fprintf(&b, "%d - %s - %d - %c\n", i, img.Memory[i].Text(), v, rune(v))
		} else {
			fmt.Fprintf(&b, "%d - %s - %d\n", i, img.Memory[i].Text(), v)
		}
	}

	b.WriteString("\nCODE MEMORY\n")

	for i := img.DataLen; i < img.DataLen+img.CodeLen; i++ {
		fmt.Fprintf(&b, "%d - %s - %s\n", i, img.Memory[i].Text(), isa.Mnemonic(img.Memory[i]))
	}

	return b.String()
}

// Translate lowers a sequence of top-level terms into a memory image.
func Translate(terms []lexer.Term) (*Image, error) {
	t := New()

	for _, term := range terms {
		if err := t.translateTerm(term, ""); err != nil {
			return nil, err
		}
	}

	t.data[0] = isa.EncodeRaw(isa.JMP, isa.Direct, uint32(len(t.data)))

	for i, w := range t.code {
		ins := isa.Decode(w)
		if ins.Op == isa.JMP || ins.Op == isa.JZ || ins.Op == isa.CALL {
			t.code[i] = isa.EncodeRaw(ins.Op, ins.Mode, ins.Operand+uint32(len(t.data)))
		}
	}

	t.emit(isa.HLT, isa.Direct, 0)

	memory := make([]isa.Word, 0, ImageSize)
	memory = append(memory, t.data...)
	memory = append(memory, t.code...)

	if len(memory) > ImageSize {
		return nil, fmt.Errorf("translate: image of %d words exceeds %d-word memory", len(memory), ImageSize)
	}

	img := &Image{DataLen: len(t.data), CodeLen: len(t.code)}

	for len(memory) < ImageSize {
		memory = append(memory, 0)
	}

	img.Memory = memory

	return img, nil
}

// --- code/data emission -----------------------------------------------

func (t *Translator) reserve() int {
	idx := len(t.code)
	t.code = append(t.code, 0)
	t.pc++

	return idx
}

func (t *Translator) emit(op isa.Opcode, mode isa.Mode, operand uint32) {
	t.code = append(t.code, isa.EncodeRaw(op, mode, operand))
	t.pc++
}

func (t *Translator) patch(idx int, op isa.Opcode, mode isa.Mode, operand uint32) {
	t.code[idx] = isa.EncodeRaw(op, mode, operand)
}

func (t *Translator) addData(value uint32, count int) int {
	addr := len(t.data)
	for i := 0; i < count; i++ {
		t.data = append(t.data, isa.Word(value))
	}

	return addr
}

func (t *Translator) addData1(value uint32) int {
	return t.addData(value, 1)
}

// --- symbol resolution ---------------------------------------------------

func indexOf(list []string, name string) int {
	for i, v := range list {
		if v == name {
			return i
		}
	}

	return -1
}

// operationWithVar emits a load/store-family instruction that addresses a
// named variable: a global resolves to a DIRECT address, a function-local
// to an SP_INDIRECT offset into the current frame.
func (t *Translator) operationWithVar(term lexer.Term, op isa.Opcode, varName, funName string) error {
	if addr, ok := t.variables[varName]; ok {
		t.emit(op, isa.Direct, uint32(addr))
		return nil
	}

	if funName != "" {
		if idx := indexOf(t.funVariables[funName], varName); idx >= 0 {
			t.emit(op, isa.SPIndirect, uint32(idx))
			return nil
		}
	}

	return termError(term, "no such variable")
}

func (t *Translator) operationWithNumLiteral(term lexer.Term, op isa.Opcode, value uint64) error {
	const (
		maxOperand = 1<<24 - 1
		maxLiteral = 1<<32 - 1
	)

	if value <= maxOperand {
		t.emit(op, isa.OperandLoad, uint32(value))
		return nil
	}

	if value <= maxLiteral {
		key := uint32(value)

		addr, ok := t.literalsNum[key]
		if !ok {
			addr = t.addData1(key)
			t.literalsNum[key] = addr
		}

		t.emit(op, isa.Direct, uint32(addr))

		return nil
	}

	return termError(term, "numbers more than (2^32 - 1) are not allowed")
}

func (t *Translator) operationWithBoolLiteral(op isa.Opcode, lit string) {
	if lit == "T" {
		t.emit(op, isa.OperandLoad, 1)
	} else {
		t.emit(op, isa.OperandLoad, 0)
	}
}

func (t *Translator) getStringLiteralAddr(s string) int {
	if addr, ok := t.literalsStr[s]; ok {
		return addr
	}

	addr := len(t.data)
	t.literalsStr[s] = addr

	for _, ch := range s {
		t.addData1(uint32(ch))
	}

	t.addData1(0)

	return addr
}

// getVarAddress resolves (or creates) the binding for a name being
// assigned to. A global is looked up first; failing that, inside a
// function the name is looked up in the current frame, or else bound as a
// brand new local by inserting it at frame position 0 and pushing — the
// caller must not emit a redundant SAVE in that case.
func (t *Translator) getVarAddress(varName, funName string) (addr int, isPushed bool) {
	if addr, ok := t.variables[varName]; ok {
		return addr, false
	}

	if funName != "" {
		if idx := indexOf(t.funVariables[funName], varName); idx >= 0 {
			return idx, false
		}

		t.funVariables[funName] = append([]string{varName}, t.funVariables[funName]...)
		t.emit(isa.PUSH, isa.Direct, 0)

		return 0, true
	}

	addr = t.addData1(0)
	t.variables[varName] = addr

	return addr, false
}

// --- atom classification ---------------------------------------------------

func isDigitStart(s string) bool {
	return len(s) > 0 && s[0] >= '0' && s[0] <= '9'
}

func isBoolLiteral(s string) bool {
	return s == "T" || s == "F"
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\''
}

func unquote(s string) string {
	return s[1 : len(s)-1]
}

func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// --- statement forms ---------------------------------------------------

func (t *Translator) translateFun(term lexer.Term) error {
	name := term.List[1].Atom

	var argNames []string
	for _, a := range term.List[2].List {
		argNames = append(argNames, a.Atom)
	}

	exprs := term.List[3:]

	jmpIdx := t.reserve()

	t.functions[name] = t.pc

	argNames = append(argNames, "")

	reversed := make([]string, len(argNames))
	for i, v := range argNames {
		reversed[len(argNames)-1-i] = v
	}

	t.funVariables[name] = reversed

	for _, expr := range exprs {
		if expr.IsList {
			if err := t.translateTerm(expr, name); err != nil {
				return err
			}
		} else if err := t.operationWithVar(term, isa.LOAD, expr.Atom, name); err != nil {
			return err
		}
	}

	for _, arg := range t.funVariables[name] {
		if arg == "" {
			break
		}

		t.emit(isa.POP, isa.Direct, 0)
	}

	t.emit(isa.RETURN, isa.Direct, 0)
	t.patch(jmpIdx, isa.JMP, isa.Direct, uint32(t.pc))

	return nil
}

func (t *Translator) translateFunCall(term lexer.Term, funName string) error {
	name := term.List[0].Atom
	args := term.List[1:]

	for _, arg := range args {
		switch {
		case !arg.IsList && isDigitStart(arg.Atom):
			v, err := parseUint(arg.Atom)
			if err != nil {
				return err
			}

			if err := t.operationWithNumLiteral(term, isa.LOAD, v); err != nil {
				return err
			}
		case arg.IsList:
			if err := t.translateTerm(arg, funName); err != nil {
				return err
			}
		default:
			if err := t.operationWithVar(term, isa.LOAD, arg.Atom, funName); err != nil {
				return err
			}
		}

		t.emit(isa.PUSH, isa.Direct, 0)
	}

	t.emit(isa.CALL, isa.Direct, uint32(t.functions[name]))

	for range args {
		t.emit(isa.POP, isa.Direct, 0)
	}

	return nil
}

func (t *Translator) translateAction(term, action lexer.Term, funName string) error {
	switch {
	case action.IsList:
		return t.translateTerm(action, funName)
	case isDigitStart(action.Atom):
		v, err := parseUint(action.Atom)
		if err != nil {
			return err
		}

		return t.operationWithNumLiteral(term, isa.LOAD, v)
	case isQuoted(action.Atom):
		addr := t.getStringLiteralAddr(unquote(action.Atom))
		t.emit(isa.LOAD, isa.OperandLoad, uint32(addr))

		return nil
	case isBoolLiteral(action.Atom):
		t.operationWithBoolLiteral(isa.LOAD, action.Atom)
		return nil
	default:
		return t.operationWithVar(term, isa.LOAD, action.Atom, funName)
	}
}

func (t *Translator) translateIf(term lexer.Term, funName string) error {
	cond := term.List[1]
	ifTrue := term.List[2]

	var ifFalse *lexer.Term
	if len(term.List) == 4 {
		ifFalse = &term.List[3]
	}

	switch {
	case cond.IsList:
		if err := t.translateTerm(cond, funName); err != nil {
			return err
		}
	case isBoolLiteral(cond.Atom):
		t.operationWithBoolLiteral(isa.LOAD, cond.Atom)
	default:
		if err := t.operationWithVar(term, isa.LOAD, cond.Atom, funName); err != nil {
			return err
		}
	}

	jzIdx := t.reserve()

	if err := t.translateAction(term, ifTrue, funName); err != nil {
		return err
	}

	if ifFalse == nil {
		t.patch(jzIdx, isa.JZ, isa.Direct, uint32(t.pc))
		return nil
	}

	jmpIdx := t.reserve()
	t.patch(jzIdx, isa.JZ, isa.Direct, uint32(t.pc))

	if err := t.translateAction(term, *ifFalse, funName); err != nil {
		return err
	}

	t.patch(jmpIdx, isa.JMP, isa.Direct, uint32(t.pc))

	return nil
}

func (t *Translator) translateWhile(term lexer.Term, funName string) error {
	cond := term.List[1]
	actions := term.List[2:]

	condPC := t.pc

	if cond.IsList {
		if err := t.translateTerm(cond, funName); err != nil {
			return err
		}
	} else if err := t.operationWithVar(term, isa.LOAD, cond.Atom, funName); err != nil {
		return err
	}

	jzIdx := t.reserve()

	for _, act := range actions {
		var err error

		switch {
		case act.IsList:
			err = t.translateTerm(act, funName)
		case isDigitStart(act.Atom):
			var v uint64
			if v, err = parseUint(act.Atom); err == nil {
				err = t.operationWithNumLiteral(term, isa.LOAD, v)
			}
		case isBoolLiteral(act.Atom):
			t.operationWithBoolLiteral(isa.LOAD, act.Atom)
		default:
			err = t.operationWithVar(term, isa.LOAD, act.Atom, funName)
		}

		if err != nil {
			return err
		}
	}

	t.emit(isa.JMP, isa.Direct, uint32(condPC))
	t.patch(jzIdx, isa.JZ, isa.Direct, uint32(t.pc))

	return nil
}

func (t *Translator) translateSet(term lexer.Term, funName string) error {
	varName := term.List[1].Atom
	varValue := term.List[2]

	switch {
	case varValue.IsList:
		if err := t.translateTerm(varValue, funName); err != nil {
			return err
		}
	case isDigitStart(varValue.Atom):
		v, err := parseUint(varValue.Atom)
		if err != nil {
			return err
		}

		if err := t.operationWithNumLiteral(term, isa.LOAD, v); err != nil {
			return err
		}
	case isBoolLiteral(varValue.Atom):
		t.operationWithBoolLiteral(isa.LOAD, varValue.Atom)
	default:
		if err := t.operationWithVar(term, isa.LOAD, varValue.Atom, funName); err != nil {
			return err
		}
	}

	addr, isPushed := t.getVarAddress(varName, funName)

	if funName != "" {
		if !isPushed {
			t.emit(isa.SAVE, isa.SPIndirect, uint32(addr))
		}
	} else {
		t.emit(isa.SAVE, isa.Direct, uint32(addr))
	}

	return nil
}

func (t *Translator) translateSetChar(term lexer.Term, funName string) error {
	stringName := term.List[1].Atom
	pos := term.List[2]
	char := term.List[3]

	info, ok := t.stringArrays[stringName]
	if !ok {
		return termError(term, "no such string name")
	}

	newCharAddr := t.addData1(0)

	t.emit(isa.LOAD, isa.OperandLoad, uint32(info.addr))

	if !pos.IsList && isDigitStart(pos.Atom) {
		v, err := parseUint(pos.Atom)
		if err != nil {
			return err
		}

		if err := t.operationWithNumLiteral(term, isa.ADD, v); err != nil {
			return err
		}
	} else if err := t.operationWithVar(term, isa.ADD, pos.Atom, funName); err != nil {
		return err
	}

	t.emit(isa.SAVE, isa.Direct, uint32(newCharAddr))

	switch {
	case char.IsList:
		if err := t.translateTerm(char, funName); err != nil {
			return err
		}
	case isDigitStart(char.Atom):
		v, err := parseUint(char.Atom)
		if err != nil {
			return err
		}

		if err := t.operationWithNumLiteral(term, isa.LOAD, v); err != nil {
			return err
		}
	default:
		if err := t.operationWithVar(term, isa.LOAD, char.Atom, funName); err != nil {
			return err
		}
	}

	t.emit(isa.SAVE, isa.Indirect, uint32(newCharAddr))

	return nil
}

func (t *Translator) translatePrintString(term lexer.Term) error {
	str := term.List[1]
	stringAddrAddr := t.addData1(0)

	switch {
	case !str.IsList && isQuoted(str.Atom):
		addr := t.getStringLiteralAddr(unquote(str.Atom))
		t.emit(isa.LOAD, isa.OperandLoad, uint32(addr))
	case str.IsList:
		if err := t.translateTerm(str, ""); err != nil {
			return err
		}
	default:
		info, ok := t.stringArrays[str.Atom]
		if !ok {
			return termError(term, "no such string name")
		}

		t.emit(isa.LOAD, isa.OperandLoad, uint32(info.addr))
	}

	t.emit(isa.SAVE, isa.Direct, uint32(stringAddrAddr))

	t.emit(isa.LOAD, isa.Indirect, uint32(stringAddrAddr))
	t.emit(isa.JZ, isa.Direct, uint32(t.pc+6))
	t.emit(isa.PRINT, isa.Direct, 0)

	t.emit(isa.LOAD, isa.Direct, uint32(stringAddrAddr))
	t.emit(isa.ADD, isa.OperandLoad, 1)
	t.emit(isa.SAVE, isa.Direct, uint32(stringAddrAddr))

	t.emit(isa.JMP, isa.Direct, uint32(t.pc-6))

	return nil
}

func (t *Translator) translatePrintInt(term lexer.Term, funName string) error {
	arg := term.List[1]

	info, ok := t.stringArrays["print-int"]
	if !ok {
		addr := t.addData(0, 11)
		info = arrayInfo{addr: addr, size: 11}
		t.stringArrays["print-int"] = info
		t.addData1(uint32(addr + 1))
	}

	arrayStart := info.addr + 11

	switch {
	case arg.IsList:
		if err := t.translateTerm(arg, ""); err != nil {
			return err
		}
	case isDigitStart(arg.Atom):
		v, err := parseUint(arg.Atom)
		if err != nil {
			return err
		}

		if err := t.operationWithNumLiteral(term, isa.LOAD, v); err != nil {
			return err
		}
	default:
		if err := t.operationWithVar(term, isa.LOAD, arg.Atom, funName); err != nil {
			return err
		}
	}

	t.emit(isa.PUSH, isa.Direct, 0)

	startPC := t.pc
	t.emit(isa.LOAD, isa.SPIndirect, 0)
	t.emit(isa.MOD, isa.OperandLoad, 10)
	t.emit(isa.ADD, isa.OperandLoad, uint32('0'))
	t.emit(isa.SAVE, isa.Indirect, uint32(arrayStart))

	t.emit(isa.LOAD, isa.SPIndirect, 0)
	t.emit(isa.DIV, isa.OperandLoad, 10)
	t.emit(isa.JZ, isa.Direct, uint32(t.pc+6))
	t.emit(isa.SAVE, isa.SPIndirect, 0)

	t.emit(isa.LOAD, isa.Direct, uint32(arrayStart))
	t.emit(isa.ADD, isa.OperandLoad, 1)
	t.emit(isa.SAVE, isa.Direct, uint32(arrayStart))

	t.emit(isa.JMP, isa.Direct, uint32(startPC))
	t.emit(isa.POP, isa.Direct, 0)

	startPC = t.pc
	t.emit(isa.LOAD, isa.Indirect, uint32(arrayStart))
	t.emit(isa.JZ, isa.Direct, uint32(t.pc+6))
	t.emit(isa.PRINT, isa.Direct, 0)

	t.emit(isa.LOAD, isa.Direct, uint32(arrayStart))
	t.emit(isa.SUB, isa.OperandLoad, 1)
	t.emit(isa.SAVE, isa.Direct, uint32(arrayStart))

	t.emit(isa.JMP, isa.Direct, uint32(startPC))

	t.emit(isa.LOAD, isa.Direct, uint32(arrayStart))
	t.emit(isa.ADD, isa.OperandLoad, 1)
	t.emit(isa.SAVE, isa.Direct, uint32(arrayStart))

	return nil
}

func (t *Translator) translatePrintChar(term lexer.Term, funName string) error {
	arg := term.List[1]

	switch {
	case arg.IsList:
		if err := t.translateTerm(arg, funName); err != nil {
			return err
		}
	case isDigitStart(arg.Atom):
		v, err := parseUint(arg.Atom)
		if err != nil {
			return err
		}

		if err := t.operationWithNumLiteral(term, isa.LOAD, v); err != nil {
			return err
		}
	default:
		if err := t.operationWithVar(term, isa.LOAD, arg.Atom, funName); err != nil {
			return err
		}
	}

	t.emit(isa.PRINT, isa.Direct, 0)

	return nil
}

func (t *Translator) translateReadChar() {
	t.emit(isa.INPUT, isa.Direct, 0)
}

func (t *Translator) translateAlloc(term lexer.Term) error {
	stringName := term.List[1].Atom
	sizeAtom := term.List[2].Atom

	if !isDigitStart(sizeAtom) {
		return termError(term, "string size must be a number")
	}

	n, err := parseUint(sizeAtom)
	if err != nil {
		return termError(term, "string size must be a number")
	}

	size := int(n) + 1
	addr := t.addData(0, size)
	t.stringArrays[stringName] = arrayInfo{addr: addr, size: size}

	return nil
}

func (t *Translator) translateComparisonSymbol(term lexer.Term, funName string) error {
	arg1 := term.List[1]
	arg2 := term.List[2]

	switch {
	case !arg1.IsList && isDigitStart(arg1.Atom):
		v, err := parseUint(arg1.Atom)
		if err != nil {
			return err
		}

		if err := t.operationWithNumLiteral(term, isa.LOAD, v); err != nil {
			return err
		}
	case arg1.IsList:
		if err := t.translateTerm(arg1, funName); err != nil {
			return err
		}
	default:
		if err := t.operationWithVar(term, isa.LOAD, arg1.Atom, funName); err != nil {
			return err
		}
	}

	switch {
	case !arg2.IsList && isDigitStart(arg2.Atom):
		v, err := parseUint(arg2.Atom)
		if err != nil {
			return err
		}

		if err := t.operationWithNumLiteral(term, isa.CMP, v); err != nil {
			return err
		}
	case arg2.IsList:
		if err := t.translateTerm(arg2, funName); err != nil {
			return err
		}
	default:
		if err := t.operationWithVar(term, isa.CMP, arg2.Atom, funName); err != nil {
			return err
		}
	}

	argValue, oppValue := uint32(1), uint32(0)
	if term.List[0].Atom == "=" {
		argValue, oppValue = 0, 1
	}

	t.emit(isa.JZ, isa.Direct, uint32(t.pc+3))
	t.emit(isa.LOAD, isa.OperandLoad, argValue)
	t.emit(isa.JMP, isa.Direct, uint32(t.pc+2))
	t.emit(isa.LOAD, isa.OperandLoad, oppValue)

	return nil
}

func arithmeticOpcode(symbol string) isa.Opcode {
	switch symbol {
	case "+":
		return isa.ADD
	case "-":
		return isa.SUB
	case "%":
		return isa.MOD
	default:
		return isa.DIV
	}
}

func (t *Translator) translateArithmeticSymbol(term lexer.Term, funName string) error {
	op := arithmeticOpcode(term.List[0].Atom)
	arg1 := term.List[1]
	arg2 := term.List[2]

	if arg1.IsList {
		if err := t.translateTerm(arg1, funName); err != nil {
			return err
		}
	} else if !arg1.IsList && isDigitStart(arg1.Atom) {
		v, err := parseUint(arg1.Atom)
		if err != nil {
			return err
		}

		if err := t.operationWithNumLiteral(term, isa.LOAD, v); err != nil {
			return err
		}
	} else if err := t.operationWithVar(term, isa.LOAD, arg1.Atom, funName); err != nil {
		return err
	}

	if arg2.IsList {
		left, right := t.addData1(0), t.addData1(0)
		t.emit(isa.SAVE, isa.Direct, uint32(left))
		if err := t.translateTerm(arg2, funName); err != nil {
			return err
		}
		t.emit(isa.SAVE, isa.Direct, uint32(right))
		t.emit(isa.LOAD, isa.Direct, uint32(left))
		t.emit(op, isa.Direct, uint32(right))
	} else if !arg2.IsList && isDigitStart(arg2.Atom) {
		v, err := parseUint(arg2.Atom)
		if err != nil {
			return err
		}

		if err := t.operationWithNumLiteral(term, op, v); err != nil {
			return err
		}
	} else if err := t.operationWithVar(term, op, arg2.Atom, funName); err != nil {
		return err
	}

	return nil
}

func (t *Translator) translateAmpersand(term lexer.Term, funName string) error {
	cond1 := term.List[1]
	cond2 := term.List[2]

	if cond1.IsList {
		if err := t.translateTerm(cond1, funName); err != nil {
			return err
		}
	} else if err := t.operationWithVar(term, isa.LOAD, cond1.Atom, funName); err != nil {
		return err
	}

	t.emit(isa.PUSH, isa.Direct, 0)

	if cond2.IsList {
		if err := t.translateTerm(cond2, funName); err != nil {
			return err
		}
	} else if err := t.operationWithVar(term, isa.LOAD, cond2.Atom, funName); err != nil {
		return err
	}

	t.emit(isa.CMP, isa.SPIndirect, 0)
	t.emit(isa.JZ, isa.Direct, uint32(t.pc+3))
	t.emit(isa.LOAD, isa.OperandLoad, 0)
	t.emit(isa.JMP, isa.Direct, uint32(t.pc+2))
	t.emit(isa.LOAD, isa.OperandLoad, 1)
	t.emit(isa.POP, isa.Direct, 0)

	return nil
}

// translateTerm dispatches on a term's head atom to the matching
// statement form.
func (t *Translator) translateTerm(term lexer.Term, funName string) error {
	if len(term.List) == 0 {
		return termError(term, "empty term")
	}

	head := term.List[0].Atom

	if head == "fun" {
		if funName != "" {
			return termError(term, "you can't define function inside other function")
		}

		return t.translateFun(term)
	}

	if _, ok := t.functions[head]; ok {
		return t.translateFunCall(term, funName)
	}

	switch head {
	case "if":
		return t.translateIf(term, funName)
	case "while":
		return t.translateWhile(term, funName)
	case "set":
		return t.translateSet(term, funName)
	case "set_char":
		return t.translateSetChar(term, funName)
	case "print_string":
		return t.translatePrintString(term)
	case "print_char":
		return t.translatePrintChar(term, funName)
	case "print_int":
		return t.translatePrintInt(term, funName)
	case "read_char":
		t.translateReadChar()
		return nil
	case "alloc":
		return t.translateAlloc(term)
	case "=", "!=":
		return t.translateComparisonSymbol(term, funName)
	case "&":
		return t.translateAmpersand(term, funName)
	case "+", "-", "%":
		return t.translateArithmeticSymbol(term, funName)
	}

	return termError(term, "invalid keyword")
}
