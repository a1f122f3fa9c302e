// Package session handles intcode session files. A session file is a TOML
// document naming a program, its memory patches, and its I/O channels.
package session

import (
	"errors"
	"fmt"
	stdio "io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/intcode/emulator"
	"github.com/ezrec/intcode/intcode"
	"github.com/ezrec/intcode/io"
	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	ErrProgramMissing  = errors.New(f("session has no program"))
	ErrProgramConflict = errors.New(f("session has both an image and a source"))
	ErrPatchValue      = errors.New(f("patch value must be an integer or expression"))
)

// Session represents an intcode session file.
type Session struct {
	Program Program `toml:"program"`
	Patch   []Patch `toml:"patch"`
	Input   Input   `toml:"input"`
	Output  Output  `toml:"output"`
	Dump    []Dump  `toml:"dump"`
	Verbose bool    `toml:"verbose"`

	// Dir is the directory containing the session file (set at load time).
	Dir string `toml:"-"`

	// Standard streams, used when no file is named.
	Stdin  stdio.Reader `toml:"-"`
	Stdout stdio.Writer `toml:"-"`
}

// Program names the program to run.
type Program struct {
	Image   string            `toml:"image"`   // Comma separated image file.
	Source  string            `toml:"source"`  // Assembly source file.
	Defines map[string]string `toml:"defines"` // Predefined assembler equates.
}

// Patch replaces a memory cell before the program runs.
type Patch struct {
	Address int64 `toml:"address"`
	Value   Value `toml:"value"`
}

// Value is a patch value: a TOML integer, or a string expression
// evaluated with the program defines, equates and labels.
type Value string

// UnmarshalTOML accepts both integer and string values.
func (v *Value) UnmarshalTOML(data any) (err error) {
	switch data := data.(type) {
	case int64:
		*v = Value(strconv.FormatInt(data, 10))
	case string:
		*v = Value(data)
	default:
		err = fmt.Errorf("%w: %v", ErrPatchValue, data)
	}

	return
}

// Eval returns the integer value of the patch.
func (v Value) Eval(asm *intcode.Assembler) (value int64, err error) {
	value, err = strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	if err == nil {
		return
	}

	return asm.Eval(string(v))
}

// Input configures the input channel. Values are received first, then
// text, then the file.
type Input struct {
	Values []int64 `toml:"values"`
	Text   string  `toml:"text"`
	File   string  `toml:"file"` // "-" for standard input.
	ASCII  bool    `toml:"ascii"`
}

// Output configures the output channel.
type Output struct {
	File  string `toml:"file"` // Empty or "-" for standard output.
	ASCII bool   `toml:"ascii"`
}

// Dump names a memory cell to report after the program halts.
type Dump struct {
	Address int64  `toml:"address"`
	Name    string `toml:"name"`
}

// Load parses a session file. Relative paths in the session are resolved
// against the directory of the file.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var s Session
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	s.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	return &s, nil
}

// Path resolves a file name against the session directory.
func (s *Session) Path(name string) string {
	if name == "" || name == "-" || filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(s.Dir, name)
}

func (s *Session) stdin() stdio.Reader {
	if s.Stdin == nil {
		return os.Stdin
	}
	return s.Stdin
}

func (s *Session) stdout() stdio.Writer {
	if s.Stdout == nil {
		return os.Stdout
	}
	return s.Stdout
}

// Assembler returns an assembler with the program defines.
func (s *Session) Assembler() (asm *intcode.Assembler) {
	asm = &intcode.Assembler{Verbose: s.Verbose}
	for name, value := range s.Program.Defines {
		asm.Predefine(name, value)
	}

	return
}

// Emulator builds an emulator ready to run the session. The emulator must
// be closed by the caller.
func (s *Session) Emulator() (emu *emulator.Emulator, err error) {
	emu = emulator.NewEmulator()
	emu.Verbose = s.Verbose

	defer func() {
		if err != nil {
			emu.Close()
			emu = nil
		}
	}()

	asm := s.Assembler()

	err = s.loadProgram(emu, asm)
	if err != nil {
		return
	}

	for _, patch := range s.Patch {
		var value int64
		value, err = patch.Value.Eval(asm)
		if err != nil {
			err = fmt.Errorf("patch %d: %w", patch.Address, err)
			return
		}
		emu.Patch(patch.Address, value)
	}

	err = s.openInput(emu)
	if err != nil {
		return
	}

	err = s.openOutput(emu)
	if err != nil {
		return
	}

	err = emu.Reset()
	return
}

func (s *Session) loadProgram(emu *emulator.Emulator, asm *intcode.Assembler) (err error) {
	prog := &s.Program
	switch {
	case prog.Image != "" && prog.Source != "":
		err = ErrProgramConflict
	case prog.Source != "":
		path := s.Path(prog.Source)
		var inf *os.File
		inf, err = os.Open(path)
		if err != nil {
			return
		}
		defer inf.Close()
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			err = fmt.Errorf("%s: %w", path, err)
		}
	case prog.Image != "":
		path := s.Path(prog.Image)
		var inf *os.File
		inf, err = os.Open(path)
		if err != nil {
			return
		}
		defer inf.Close()
		emu.Image, err = intcode.ParseImage(inf)
		if err != nil {
			err = fmt.Errorf("%s: %w", path, err)
		}
	default:
		err = ErrProgramMissing
	}

	return
}

func (s *Session) openInput(emu *emulator.Emulator) (err error) {
	input := &s.Input

	var chain io.Chain
	if len(input.Values) != 0 || input.Text != "" {
		seq := io.NewSequence(io.Values(input.Values...), io.Text(input.Text))
		emu.Attach(seq)
		chain = append(chain, seq)
	}

	var rd stdio.Reader
	switch input.File {
	case "":
		if len(chain) == 0 {
			rd = s.stdin()
		}
	case "-":
		rd = s.stdin()
	default:
		var inf *os.File
		inf, err = os.Open(s.Path(input.File))
		if err != nil {
			return
		}
		emu.Attach(inf)
		rd = inf
	}

	if rd != nil {
		if input.ASCII {
			emu.Tape.Input = rd
			chain = append(chain, &emu.Tape)
		} else {
			chain = append(chain, &io.Decimal{Input: rd})
		}
	}

	emu.SetSource(&chain)

	return
}

func (s *Session) openOutput(emu *emulator.Emulator) (err error) {
	output := &s.Output

	var wr stdio.Writer
	switch output.File {
	case "", "-":
		wr = s.stdout()
	default:
		var ouf *os.File
		ouf, err = os.Create(s.Path(output.File))
		if err != nil {
			return
		}
		emu.Attach(ouf)
		wr = ouf
	}

	if output.ASCII {
		emu.Tape.Output = wr
		emu.Sink = &emu.Tape
	} else {
		emu.Sink = &io.Decimal{Output: wr}
	}

	return
}

// Report writes the dumped memory cells of a halted emulator to w.
func (s *Session) Report(w stdio.Writer, emu *emulator.Emulator) (err error) {
	for _, dump := range s.Dump {
		var value int64
		value, err = emu.Read(dump.Address)
		if err != nil {
			return
		}
		name := dump.Name
		if name == "" {
			name = fmt.Sprintf("[%d]", dump.Address)
		}
		_, err = fmt.Fprintf(w, "%s = %d\n", name, value)
		if err != nil {
			return
		}
	}

	return
}
