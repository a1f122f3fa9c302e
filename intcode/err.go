package intcode

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrProgramEmpty  = errors.New(f("program empty"))
	ErrHalted        = errors.New(f("machine halted"))
	ErrInput         = errors.New(f("input underrun"))
	ErrInputMissing  = errors.New(f("no input attached"))
	ErrOutput        = errors.New(f("output failed"))
	ErrOpcodeInvalid = errors.New(f("opcode invalid"))
	ErrModeInvalid   = errors.New(f("addressing mode invalid"))
	ErrModeImmediate = errors.New(f("immediate mode destination"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrDataEmpty          = errors.New(f(".data without values"))
)

// ErrOpcode identifies the instruction that failed to execute.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode %d (%v)", eo.Word, Code(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrAddress is a memory address outside of the addressable range.
type ErrAddress int64

func (ea ErrAddress) Error() string {
	return f("address %d invalid", int64(ea))
}

func (ea ErrAddress) Is(err error) (ok bool) {
	_, ok = err.(ErrAddress)
	return
}

// ErrMode is an unusable addressing mode for a parameter.
type ErrMode struct {
	Index int  // Parameter index.
	Mode  Mode // Decoded mode digit.
}

func (em ErrMode) Error() string {
	return f("parameter %d mode %d", em.Index, int(em.Mode))
}

func (em ErrMode) Is(err error) bool {
	return err == ErrModeInvalid
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrMnemonic string

func (em ErrMnemonic) Error() string {
	return f("'%v' is not an instruction", string(em))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseArgument string

func (err ErrParseArgument) Error() string {
	return f("'%v' is not a parameter", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
