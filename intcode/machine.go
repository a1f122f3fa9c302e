package intcode

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

// Input supplies the next input value. It is called synchronously by the
// `in` instruction, and must have a value available.
type Input func() (value int64, err error)

// Output consumes an output value from the `out` instruction.
type Output func(value int64) error

// Machine is the execution state of a single Intcode program.
type Machine struct {
	Verbose bool // Set to enable verbose logging.

	Input  Input  // Input supplier, may be replaced between ticks.
	Output Output // Output consumer, may be replaced between ticks.

	Memory       *Memory // Memory, seeded from the program.
	Ip           int64   // Current instruction pointer.
	RelativeBase int64   // Base of relative mode addresses.

	Ticks int // Executed instruction counter.

	code   Code // Currently executing instruction.
	halted bool
}

// NewMachine creates a machine loaded with a copy of program.
func NewMachine(program []int64, input Input, output Output) (m *Machine, err error) {
	if len(program) == 0 {
		err = ErrProgramEmpty
		return
	}

	m = &Machine{
		Input:  input,
		Output: output,
		Memory: NewMemory(program),
	}

	return
}

// Run loads program into a new machine and runs it until it halts.
// The final machine state is returned, even on error.
func Run(program []int64, input Input, output Output) (m *Machine, err error) {
	m, err = NewMachine(program, input, output)
	if err != nil {
		return
	}

	err = m.Run()
	return
}

// Running returns true while the instruction pointer is inside the
// loaded program. Jumps outside of it, including into memory beyond the
// program, stop the machine.
func (m *Machine) Running() bool {
	return !m.halted && m.Ip >= 0 && m.Ip < m.Memory.Len()
}

// Read returns the memory value at address.
func (m *Machine) Read(address int64) (int64, error) {
	return m.Memory.Read(address)
}

// Write sets the memory value at address.
func (m *Machine) Write(address int64, value int64) error {
	return m.Memory.Write(address, value)
}

// Run ticks the machine until it halts.
func (m *Machine) Run() (err error) {
	for m.Running() {
		err = m.Tick()
		if err != nil {
			return
		}
	}

	return
}

// String returns the current machine state as a string.
func (m *Machine) String() (text string) {
	regs := []string{"ip", "rb", "state", "ticks"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "ip":
			strval = fmt.Sprintf("%d", m.Ip)
		case "rb":
			strval = fmt.Sprintf("%d", m.RelativeBase)
		case "state":
			strval = "halted"
			if m.Running() {
				strval = "running"
			}
		case "ticks":
			strval = fmt.Sprintf("%d", m.Ticks)
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Fetch reads the instruction at the instruction pointer.
func (m *Machine) Fetch() (code Code, ins Instruction, err error) {
	word, err := m.Read(m.Ip)
	if err != nil {
		return
	}

	code = Code{Word: word}
	ins, err = Lookup(code.Opcode())
	if err != nil {
		err = errors.Join(ErrOpcode(code), err)
		return
	}

	code.Parameters = make([]int64, ins.Parameters)
	for n := range code.Parameters {
		code.Parameters[n], err = m.Read(m.Ip + int64(n) + 1)
		if err != nil {
			return
		}
	}

	return
}

// Tick executes a single instruction.
func (m *Machine) Tick() (err error) {
	if !m.Running() {
		err = ErrHalted
		return
	}

	code, ins, err := m.Fetch()
	if err != nil {
		return
	}

	if m.Verbose {
		log.Printf("%04d: %v", m.Ip, m.Debug())
	}

	step, err := m.Execute(code, ins)
	if err != nil {
		return
	}

	switch step.Kind {
	case STEP_ADVANCE:
		m.Ip += step.Value
	case STEP_JUMP:
		m.Ip = step.Value
	case STEP_HALT:
		m.halted = true
	}

	m.Ticks++

	return
}

// Execute executes a single decoded instruction, and returns how the
// instruction pointer moves.
func (m *Machine) Execute(code Code, ins Instruction) (step Step, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	m.code = code
	defer func() { m.code = Code{} }()

	step = Advance(ins.Width())

	switch ins.Opcode {
	case OP_ADD, OP_MUL, OP_LT, OP_EQ:
		var a, b, dst int64
		if a, err = m.parameter(0); err != nil {
			return
		}
		if b, err = m.parameter(1); err != nil {
			return
		}
		if dst, err = m.address(2); err != nil {
			return
		}
		var value int64
		switch ins.Opcode {
		case OP_ADD:
			value = a + b
		case OP_MUL:
			value = a * b
		case OP_LT:
			if a < b {
				value = 1
			}
		case OP_EQ:
			if a == b {
				value = 1
			}
		}
		err = m.Write(dst, value)
	case OP_IN:
		var dst, value int64
		if dst, err = m.address(0); err != nil {
			return
		}
		if m.Input == nil {
			err = errors.Join(ErrInput, ErrInputMissing)
			return
		}
		value, err = m.Input()
		if err != nil {
			err = errors.Join(ErrInput, err)
			return
		}
		err = m.Write(dst, value)
	case OP_OUT:
		var value int64
		if value, err = m.parameter(0); err != nil {
			return
		}
		if m.Output == nil {
			return
		}
		err = m.Output(value)
		if err != nil {
			err = errors.Join(ErrOutput, err)
		}
	case OP_JNZ, OP_JZ:
		var cond, target int64
		if cond, err = m.parameter(0); err != nil {
			return
		}
		if target, err = m.parameter(1); err != nil {
			return
		}
		if (cond != 0) == (ins.Opcode == OP_JNZ) {
			step = JumpTo(target)
		}
	case OP_ARB:
		var adjust int64
		if adjust, err = m.parameter(0); err != nil {
			return
		}
		m.RelativeBase += adjust
	case OP_HLT:
		step = Halt()
	default:
		err = ErrOpcodeInvalid
	}

	return
}

// parameter reads the value of parameter index of the executing instruction.
func (m *Machine) parameter(index int) (value int64, err error) {
	arg := m.code.Arg(index)
	switch arg.Mode {
	case MODE_POSITION:
		value, err = m.Read(arg.Value)
	case MODE_IMMEDIATE:
		value = arg.Value
	case MODE_RELATIVE:
		value, err = m.Read(m.RelativeBase + arg.Value)
	default:
		err = ErrMode{Index: index, Mode: arg.Mode}
	}

	return
}

// address resolves the destination address of parameter index of the
// executing instruction.
func (m *Machine) address(index int) (address int64, err error) {
	arg := m.code.Arg(index)
	switch arg.Mode {
	case MODE_POSITION:
		address = arg.Value
	case MODE_RELATIVE:
		address = m.RelativeBase + arg.Value
	case MODE_IMMEDIATE:
		err = errors.Join(ErrModeImmediate, ErrMode{Index: index, Mode: arg.Mode})
	default:
		err = ErrMode{Index: index, Mode: arg.Mode}
	}

	return
}

// Debug renders the instruction at the instruction pointer with its
// resolved operands. It does not modify the machine.
func (m *Machine) Debug() string {
	code, ins, err := m.Fetch()
	if err != nil {
		return fmt.Sprintf("?? %v", err)
	}

	words := []string{ins.Opcode.String()}
	for n := range ins.Parameters {
		arg := code.Arg(n)
		if n == ins.Destination() {
			words = append(words, "->"+m.debugAddress(arg))
		} else {
			words = append(words, m.debugValue(arg))
		}
	}

	return strings.Join(words, " ")
}

func (m *Machine) debugValue(arg Arg) string {
	var address int64
	var where string
	switch arg.Mode {
	case MODE_POSITION:
		address = arg.Value
		where = fmt.Sprintf("[%d]", address)
	case MODE_RELATIVE:
		address = m.RelativeBase + arg.Value
		where = fmt.Sprintf("[%v=%d]", arg, address)
	default:
		return arg.String()
	}

	value, err := m.Read(address)
	if err != nil {
		return where + "=?"
	}
	return fmt.Sprintf("%v=%d", where, value)
}

func (m *Machine) debugAddress(arg Arg) string {
	switch arg.Mode {
	case MODE_POSITION:
		return fmt.Sprintf("[%d]", arg.Value)
	case MODE_RELATIVE:
		return fmt.Sprintf("[%v=%d]", arg, m.RelativeBase+arg.Value)
	}
	return arg.String()
}
