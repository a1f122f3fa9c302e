package intcode

import (
	"fmt"
	"strings"
)

// Opcode selects an instruction from the two low decimal digits of a word.
type Opcode int64

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_ADD = Opcode(1)  // add
	OP_MUL = Opcode(2)  // mul
	OP_IN  = Opcode(3)  // in
	OP_OUT = Opcode(4)  // out
	OP_JNZ = Opcode(5)  // jnz
	OP_JZ  = Opcode(6)  // jz
	OP_LT  = Opcode(7)  // lt
	OP_EQ  = Opcode(8)  // eq
	OP_ARB = Opcode(9)  // arb
	OP_HLT = Opcode(99) // hlt
)

// Mode is a parameter addressing mode.
type Mode int

//go:generate go tool stringer -linecomment -type=Mode
const (
	MODE_POSITION  = Mode(0) // position
	MODE_IMMEDIATE = Mode(1) // immediate
	MODE_RELATIVE  = Mode(2) // relative
)

// Valid returns true for the three defined addressing modes.
func (mode Mode) Valid() bool {
	return mode >= MODE_POSITION && mode <= MODE_RELATIVE
}

// Instruction is a catalog entry.
type Instruction struct {
	Opcode     Opcode // Opcode selecting the instruction.
	Parameters int    // Parameter words following the opcode word.
}

// Instructions is the complete instruction set.
var Instructions = [...]Instruction{
	{OP_ADD, 3},
	{OP_MUL, 3},
	{OP_IN, 1},
	{OP_OUT, 1},
	{OP_JNZ, 2},
	{OP_JZ, 2},
	{OP_LT, 3},
	{OP_EQ, 3},
	{OP_ARB, 1},
	{OP_HLT, 0},
}

// Lookup finds the instruction for an opcode.
func Lookup(op Opcode) (ins Instruction, err error) {
	for _, ins = range Instructions {
		if ins.Opcode == op {
			return
		}
	}

	return Instruction{}, ErrOpcodeInvalid
}

// Width is the number of words the instruction occupies.
func (ins Instruction) Width() int {
	return ins.Parameters + 1
}

// Destination returns the index of the parameter the instruction writes to,
// or -1 if it writes no memory.
func (ins Instruction) Destination() int {
	switch ins.Opcode {
	case OP_ADD, OP_MUL, OP_LT, OP_EQ:
		return 2
	case OP_IN:
		return 0
	}
	return -1
}

// Arg is an encoded instruction parameter.
type Arg struct {
	Mode  Mode
	Value int64
}

// Pos is a position mode parameter.
func Pos(address int64) Arg {
	return Arg{MODE_POSITION, address}
}

// Imm is an immediate mode parameter.
func Imm(value int64) Arg {
	return Arg{MODE_IMMEDIATE, value}
}

// Rel is a relative mode parameter.
func Rel(offset int64) Arg {
	return Arg{MODE_RELATIVE, offset}
}

// String returns the assembly language representation of the parameter.
func (arg Arg) String() string {
	switch arg.Mode {
	case MODE_POSITION:
		return fmt.Sprintf("%d", arg.Value)
	case MODE_IMMEDIATE:
		return fmt.Sprintf("#%d", arg.Value)
	case MODE_RELATIVE:
		if arg.Value == 0 {
			return "rb"
		}
		return fmt.Sprintf("rb%+d", arg.Value)
	}
	return fmt.Sprintf("?%d:%d", int(arg.Mode), arg.Value)
}

// Code is a single instruction word with its parameter words.
type Code struct {
	Word       int64
	Parameters []int64
}

// MakeCode encodes an instruction from its opcode and parameters.
func MakeCode(op Opcode, args ...Arg) Code {
	word := int64(op)
	scale := int64(100)
	params := make([]int64, len(args))
	for n, arg := range args {
		word += int64(arg.Mode) * scale
		scale *= 10
		params[n] = arg.Value
	}

	return Code{
		Word:       word,
		Parameters: params,
	}
}

// Opcode returns the opcode from the instruction word.
func (code Code) Opcode() Opcode {
	return Opcode(code.Word % 100)
}

// Mode returns the addressing mode of parameter index.
func (code Code) Mode(index int) Mode {
	modes := code.Word / 100
	for range index {
		modes /= 10
	}
	return Mode(modes % 10)
}

// Arg returns the decoded parameter at index.
func (code Code) Arg(index int) Arg {
	var value int64
	if index < len(code.Parameters) {
		value = code.Parameters[index]
	}
	return Arg{Mode: code.Mode(index), Value: value}
}

// Words returns the instruction as memory words.
func (code Code) Words() []int64 {
	return append([]int64{code.Word}, code.Parameters...)
}

// Valid returns true if the code is a complete instruction with usable
// addressing modes.
func (code Code) Valid() bool {
	ins, err := Lookup(code.Opcode())
	if err != nil || len(code.Parameters) != ins.Parameters {
		return false
	}

	modes := code.Word / 100
	for n := range ins.Parameters {
		mode := code.Mode(n)
		if !mode.Valid() || (n == ins.Destination() && mode == MODE_IMMEDIATE) {
			return false
		}
		modes /= 10
	}

	// Unused mode digits would not survive reassembly.
	return modes == 0
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	if !code.Valid() {
		words := []string{".data"}
		for _, word := range code.Words() {
			words = append(words, fmt.Sprintf("%d", word))
		}
		return strings.Join(words, " ")
	}

	ins, _ := Lookup(code.Opcode())

	words := []string{ins.Opcode.String()}
	for n := range ins.Parameters {
		words = append(words, code.Arg(n).String())
	}

	return strings.Join(words, " ")
}

// StepKind is the control flow outcome of an instruction.
type StepKind int

//go:generate go tool stringer -linecomment -type=StepKind
const (
	STEP_ADVANCE = StepKind(0) // advance
	STEP_JUMP    = StepKind(1) // jump
	STEP_HALT    = StepKind(2) // halt
)

// Step tells the machine how to move the instruction pointer.
type Step struct {
	Kind  StepKind
	Value int64 // Words to advance, or jump target.
}

// Advance moves the instruction pointer past n words.
func Advance(n int) Step {
	return Step{Kind: STEP_ADVANCE, Value: int64(n)}
}

// JumpTo sets the instruction pointer to an absolute address.
func JumpTo(address int64) Step {
	return Step{Kind: STEP_JUMP, Value: address}
}

// Halt stops the machine.
func Halt() Step {
	return Step{Kind: STEP_HALT}
}
