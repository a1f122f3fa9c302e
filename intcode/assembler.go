// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package intcode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":         "0",
	"MODE_POSITION":  fmt.Sprintf("%d", MODE_POSITION),
	"MODE_IMMEDIATE": fmt.Sprintf("%d", MODE_IMMEDIATE),
	"MODE_RELATIVE":  fmt.Sprintf("%d", MODE_RELATIVE),
}

// mnemonicMap maps instruction names to opcodes.
var mnemonicMap = map[string]Opcode{}

func init() {
	for _, ins := range Instructions {
		name := ins.Opcode.String()
		mnemonicMap[name] = ins.Opcode
		sysEquate["OP_"+strings.ToUpper(name)] = fmt.Sprintf("%d", ins.Opcode)
	}
}

var (
	labelRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
	charRegexp  = regexp.MustCompile(`'\\?[^']'`)
	parenRegexp = regexp.MustCompile(`\$\([^\$]*\)`)
)

// Assembler is a single pass macro assembler for Intcode.
type Assembler struct {
	Verbose bool   // If set, verbosely logs the assembler actions.
	Lines   []Line // List of generated lines.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansions int // Count of macro expansions.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// resetEquates restores the system and predefined equates.
func (asm *Assembler) resetEquates() {
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}
}

// valueOf returns the value of a simple word. Words that are neither
// numbers nor equates, but could be a label, are returned as a link.
func (asm *Assembler) valueOf(word string) (value int64, link string, err error) {
	body := word
	negate := false
	if len(body) > 0 && (body[0] == '-' || body[0] == '+') {
		negate = body[0] == '-'
		body = body[1:]
	}

	body = asm.resolve(body)

	if len(body) == 0 {
		err = ErrParseNumber(word)
		return
	}

	value, err = strconv.ParseInt(body, 0, 64)
	if err == nil {
		if negate {
			value = -value
		}
		return
	}

	err = nil
	if !negate && labelRegexp.MatchString(body) {
		link = body
		return
	}

	err = ErrParseNumber(word)
	return
}

// parseArg decodes a single instruction parameter.
func (asm *Assembler) parseArg(word string) (arg Arg, link string, err error) {
	value := word
	switch {
	case strings.HasPrefix(value, "#"):
		arg.Mode = MODE_IMMEDIATE
		value = value[1:]
	case value == "rb":
		arg.Mode = MODE_RELATIVE
		return
	case strings.HasPrefix(value, "rb+"), strings.HasPrefix(value, "rb-"):
		arg.Mode = MODE_RELATIVE
		value = value[2:]
	}

	if len(value) == 0 {
		err = ErrParseArgument(word)
		return
	}

	arg.Value, link, err = asm.valueOf(value)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		value64, link, _err := asm.valueOf(str)
		if _err != nil || len(link) != 0 {
			// Ignore non-integer equates. They may be labels
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	for key, ip := range asm.Label {
		if _, ok := pred[key]; !ok {
			pred[key] = starlark.MakeInt(ip)
		}
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// Eval evaluates a compile-time expression using the system and predefined
// equates, along with any equates and labels from the last Parse().
func (asm *Assembler) Eval(expr string) (value int64, err error) {
	if asm.Equate == nil {
		asm.resetEquates()
	}

	return asm.parenEval(expr)
}

// stripComment removes a trailing comment. A ';' inside a character
// literal does not start a comment.
func stripComment(text string) string {
	quoted := false
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '\\':
			if quoted {
				n++
			}
		case '\'':
			quoted = !quoted
		case ';':
			if !quoted {
				return text[:n]
			}
		}
	}

	return text
}

// charLiteral converts a 'x' literal to its decimal value.
func charLiteral(word string) string {
	str := word[1 : len(word)-1]
	if str[0] == '\\' {
		switch str[1:] {
		case "\\":
			str = "\\"
		case "n":
			str = "\n"
		case "r":
			str = "\r"
		case "e":
			str = "\033"
		default:
			return word
		}
	}

	return strconv.Itoa(int(str[0]))
}

// substitute replaces character literals and $(...) expressions with
// their values.
func (asm *Assembler) substitute(line string) (text string, err error) {
	text = charRegexp.ReplaceAllStringFunc(line, charLiteral)
	text = parenRegexp.ReplaceAllStringFunc(text, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil && err == nil {
			err = _err
		}
		return strconv.FormatInt(value, 10)
	})

	return
}

// resolve follows a chain of equates.
func (asm *Assembler) resolve(word string) string {
	for range len(asm.Equate) {
		equate, ok := asm.Equate[word]
		if !ok {
			break
		}
		word = equate
	}

	return word
}

// defineEquate handles `.equ NAME VALUE`.
func (asm *Assembler) defineEquate(args []string) (err error) {
	if len(args) != 2 {
		err = ErrEquateSyntax
		return
	}

	_, ok := asm.Equate[args[0]]
	if ok {
		err = ErrEquateDuplicate
		return
	}

	asm.Equate[args[0]] = args[1]
	return
}

// defineLabel sets a label to the address of the next generated word.
func (asm *Assembler) defineLabel(label string) (err error) {
	if _, ok := asm.Label[label]; ok {
		err = ErrLabelDuplicate
		return
	}

	if asm.Label == nil {
		asm.Label = make(map[string]int, 16)
	}
	asm.Label[label] = asm.currentIp()
	return
}

// expand assembles the lines of a macro, with its arguments bound as
// equates. '@' in the macro text expands to a prefix unique to this
// expansion.
func (asm *Assembler) expand(name string, macro *Macro, args []string) (err error) {
	if len(args) != len(macro.Args) {
		err = ErrMacroSyntax
		return
	}

	saved := maps.Clone(asm.Equate)
	defer func() { asm.Equate = saved }()

	for n, arg := range macro.Args {
		asm.Equate[arg] = args[n]
	}

	asm.expansions++
	unique := fmt.Sprintf("%v_%v_", name, asm.expansions)

	for n, line := range macro.Lines {
		lineno := macro.LineNo + n
		line = strings.ReplaceAll(line, "@", unique)
		err = asm.parseLine(line, lineno)
		if err != nil {
			err = &ErrMacro{Macro: name, Line: lineno, Err: err}
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
			return
		}
	}

	return
}

// parseLine assembles a single line, without its comment.
func (asm *Assembler) parseLine(line string, lineno int) (err error) {
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	line, err = asm.substitute(line)
	if err != nil {
		return
	}

	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	if words[0] == ".equ" {
		err = asm.defineEquate(words[1:])
		return
	}

	for strings.HasSuffix(words[0], ":") {
		err = asm.defineLabel(strings.TrimSuffix(words[0], ":"))
		if err != nil {
			return
		}
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	if macro, ok := asm.Macro[words[0]]; ok {
		args := make([]string, len(words)-1)
		for n, word := range words[1:] {
			args[n] = asm.resolve(word)
		}
		err = asm.expand(words[0], macro, args)
		return
	}

	for n, word := range words[1:] {
		words[n+1] = asm.resolve(word)
	}

	err = asm.parseWords(words, lineno)
	return
}

// currentIp gets the address of the next generated word.
func (asm *Assembler) currentIp() int {
	if len(asm.Lines) == 0 {
		return 0
	}

	last := asm.Lines[len(asm.Lines)-1]

	return last.Ip + len(last.Codes)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Lines = asm.Lines[:0]
	asm.expansions = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.resetEquates()

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	line = ""
	for n := range asm.Lines {
		ln := &asm.Lines[n]
		for index, label := range ln.Links {
			ip, ok := asm.Label[label]
			if !ok {
				lineno = ln.LineNo
				err = ErrLabelMissing(label)
				return
			}
			ln.Codes[index] += int64(ip)
		}
	}

	prog = &Program{
		Lines: slices.Clone(asm.Lines),
	}

	return
}

// parseWords assembles the words of a single line.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	if len(words) == 0 {
		return
	}

	line := Line{
		LineNo: lineno,
		Ip:     asm.currentIp(),
		Words:  words,
	}

	addLink := func(index int, link string) {
		if len(link) == 0 {
			return
		}
		if line.Links == nil {
			line.Links = map[int]string{}
		}
		line.Links[index] = link
	}

	if words[0] == ".data" {
		if len(words) == 1 {
			err = ErrDataEmpty
			return
		}
		for _, word := range words[1:] {
			var value int64
			var link string
			value, link, err = asm.valueOf(word)
			if err != nil {
				return
			}
			addLink(len(line.Codes), link)
			line.Codes = append(line.Codes, value)
		}
		asm.Lines = append(asm.Lines, line)
		return
	}

	op, ok := mnemonicMap[words[0]]
	if !ok {
		err = ErrMnemonic(words[0])
		return
	}
	ins, err := Lookup(op)
	if err != nil {
		return
	}

	params := words[1:]
	if len(params) > ins.Parameters {
		err = ErrOpcodeExtraArgs
		return
	}
	if len(params) < ins.Parameters {
		err = ErrOpcodeValueMissing
		return
	}

	args := make([]Arg, len(params))
	for n, word := range params {
		var link string
		args[n], link, err = asm.parseArg(word)
		if err != nil {
			return
		}
		if n == ins.Destination() && args[n].Mode == MODE_IMMEDIATE {
			err = errors.Join(ErrModeImmediate, ErrMode{Index: n, Mode: args[n].Mode})
			return
		}
		addLink(n+1, link)
	}

	line.Codes = MakeCode(op, args...).Words()
	asm.Lines = append(asm.Lines, line)

	return
}
