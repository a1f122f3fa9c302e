package intcode

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assemble(t *testing.T, source ...string) (prog *Program) {
	t.Helper()

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(source, "\n")))
	require.NoError(t, err)

	return
}

func TestAssembler_Quine(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"; Outputs a copy of itself.",
		"start: arb #1",
		"       out rb-1",
		"       add 100 #1 100",
		"       eq 100 #16 101",
		"       jz 101 #start",
		"       hlt",
	)

	assert.Equal(quine, prog.Binary())
	assert.Len(prog.Lines, 6)
	assert.Equal(2, prog.Lines[0].LineNo)
	assert.Equal([]string{"out", "rb-1"}, prog.Lines[1].Words)
}

func TestAssembler_Operands(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line  string
		words []int64
	}){
		{"add 9 10 3", []int64{1, 9, 10, 3}},
		{"mul 4 #3 4", []int64{1002, 4, 3, 4}},
		{"in rb", []int64{203, 0}},
		{"out rb+0x10", []int64{204, 16}},
		{"lt #-1 rb-2 rb+3", []int64{22107, -1, -2, 3}},
		{"out #'A'", []int64{104, 65}},
		{"out #'\\n'", []int64{104, 10}},
		{"out #$(6 * 7)", []int64{104, 42}},
		{"out #$(OP_ADD + 100 * MODE_IMMEDIATE)", []int64{104, 101}},
		{".data 1 -2 +3 0x7f", []int64{1, -2, 3, 127}},
		{"arb #-5", []int64{109, -5}},
	}

	for _, entry := range table {
		prog := assemble(t, entry.line)
		assert.Equal(entry.words, prog.Binary(), entry.line)
	}
}

func TestAssembler_Equates(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		".equ SCRATCH 1000",
		".equ STEP 3",
		"add #STEP #$(STEP * 2) SCRATCH",
		"out rb-STEP",
		".data LINENO",
	)

	assert.Equal([]int64{1101, 3, 6, 1000, 204, -3, 5}, prog.Binary())
}

func TestAssembler_Predefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("NOUN", "12")
	asm.Predefine("VERB", "2")

	prog, err := asm.Parse(strings.NewReader("out #$(100 * NOUN + VERB)\nhlt"))
	assert.NoError(err)
	assert.Equal([]int64{104, 1202, 99}, prog.Binary())

	value, err := asm.Eval("NOUN * VERB + OP_HLT")
	assert.NoError(err)
	assert.Equal(int64(123), value)

	_, err = asm.Eval("'text'")
	assert.ErrorIs(err, ErrParseExpression("'text'"))

	value, err = (&Assembler{}).Eval("-(1 << 40)")
	assert.NoError(err)
	assert.Equal(int64(-(1 << 40)), value)
}

func TestAssembler_Labels(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"      jz #0 #main",
		"data: .data 5 end",
		"main: out data",
		"      out #end",
		"end:  hlt",
	)

	assert.Equal([]int64{1106, 0, 5, 5, 9, 4, 3, 104, 9, 99}, prog.Binary())

	var output []int64
	_, err := Run(prog.Binary(), nil, collect(&output))
	assert.NoError(err)
	assert.Equal([]int64{5, 9}, output)
}

func TestAssembler_Macro(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		".macro PRINT VAL",
		"  out #VAL",
		".endm",
		".macro COUNTDOWN N",
		"  add #N #0 counter",
		"  @loop: out counter",
		"  add counter #-1 counter",
		"  jnz counter #@loop",
		".endm",
		"PRINT 'H'",
		"PRINT 'i'",
		"COUNTDOWN 3",
		"COUNTDOWN 2",
		"hlt",
		"counter: .data 0",
	)

	var output []int64
	_, err := Run(prog.Binary(), nil, collect(&output))
	assert.NoError(err)
	assert.Equal([]int64{'H', 'i', 3, 2, 1, 2, 1}, output)
}

func TestAssembler_Comments(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"out #';' ; print a semicolon, it's ';'",
		"out #'\\\\'  ; and a backslash",
		".data ';' 1 ; don't",
		"; whole line",
		"hlt",
	)

	assert.Equal([]int64{104, ';', 104, '\\', ';', 1, 99}, prog.Binary())
	assert.Len(prog.Lines, 4)
}

func TestAssembler_MacroArguments(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		".equ STEP 3",
		".equ SIZE STEP",
		".macro COPY SRC DST",
		"  add SRC #0 DST",
		".endm",
		"COPY rb+2 value",
		"COPY #STEP rb-1",
		"COPY #SIZE value",
		"out #SIZE",
		"hlt",
		"value: .data 0",
	)

	assert.Equal([]int64{
		1201, 2, 0, 15,
		21101, 3, 0, -1,
		1101, 3, 0, 15,
		104, 3,
		99,
		0,
	}, prog.Binary())
}

func TestAssembler_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		source string
		lineno int
		err    error
	}){
		{"mnemonic", "bogus 1", 1, ErrMnemonic("bogus")},
		{"missing", "hlt\nadd 1 2", 2, ErrOpcodeValueMissing},
		{"extra", "out 1 2", 1, ErrOpcodeExtraArgs},
		{"destination", "add 1 2 #3", 1, ErrModeImmediate},
		{"label_missing", "hlt\n\njz #0 #nowhere", 3, ErrLabelMissing("nowhere")},
		{"label_duplicate", "a: hlt\na: hlt", 2, ErrLabelDuplicate},
		{"equ_syntax", ".equ X", 1, ErrEquateSyntax},
		{"equ_duplicate", ".equ X 1\n.equ X 2", 2, ErrEquateDuplicate},
		{"macro_nesting", ".macro M\n.macro N", 2, ErrMacroNesting},
		{"macro_lonely", ".macro M\nhlt", 2, ErrMacroLonely},
		{"macro_endm", ".endm", 1, ErrMacroLonelyEndm},
		{"macro_args", ".macro M A\nout #A\n.endm\nM", 4, ErrMacroSyntax},
		{"data_empty", ".data", 1, ErrDataEmpty},
		{"number", "out 12abc", 1, ErrParseNumber("12abc")},
		{"negative_label", "out -here", 1, ErrParseNumber("-here")},
		{"relative", "out rb+", 1, ErrParseNumber("+")},
		{"immediate", "out #", 1, ErrParseArgument("#")},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(entry.source))
		assert.ErrorIs(err, entry.err, entry.name)

		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.name) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
		}
	}
}

func TestAssembler_Reuse(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader("a: .equ X 1\nout #X\nhlt"))
	assert.Error(err)

	prog, err := asm.Parse(strings.NewReader(".equ X 2\na: out #X\nhlt"))
	assert.NoError(err)
	assert.Equal([]int64{104, 2, 99}, prog.Binary())
}

func TestAssembler_Disassemble(t *testing.T) {
	assert := assert.New(t)

	var lines []string
	for _, code := range Disassemble(quine) {
		lines = append(lines, code.String())
	}

	assert.Equal([]string{
		"arb #1",
		"out rb-1",
		"add 100 #1 100",
		"eq 100 #16 101",
		"jz 101 #0",
		"hlt",
	}, lines)

	prog := assemble(t, lines...)
	assert.Equal(quine, prog.Binary())
}
