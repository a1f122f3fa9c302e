package session

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := writeFile(t, dir, "day02.toml", `
verbose = true

[program]
image = "day02.txt"
defines = { NOUN = "12", VERB = "2" }

[[patch]]
address = 1
value = "NOUN"

[[patch]]
address = 2
value = "VERB"

[input]
values = [1, -2]
text = "go\n"
ascii = true

[output]
file = "out.txt"

[[dump]]
address = 0
name = "result"
`)

	s, err := Load(path)
	require.NoError(t, err)

	assert.True(s.Verbose)
	assert.Equal("day02.txt", s.Program.Image)
	assert.Equal(map[string]string{"NOUN": "12", "VERB": "2"}, s.Program.Defines)
	assert.Equal([]Patch{{1, "NOUN"}, {2, "VERB"}}, s.Patch)
	assert.Equal([]int64{1, -2}, s.Input.Values)
	assert.Equal("go\n", s.Input.Text)
	assert.True(s.Input.ASCII)
	assert.Equal("out.txt", s.Output.File)
	assert.Equal([]Dump{{0, "result"}}, s.Dump)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(abs, s.Dir)
	assert.Equal(filepath.Join(abs, "day02.txt"), s.Path(s.Program.Image))
	assert.Equal("-", s.Path("-"))
	assert.Equal("/tmp/x", s.Path("/tmp/x"))
}

func TestLoad_Errors(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(err, os.ErrNotExist)

	path := writeFile(t, dir, "bad.toml", "[program\n")
	_, err = Load(path)
	assert.Error(err)
}

func TestSession_Image(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	writeFile(t, dir, "prog.txt", "1,0,0,0,99,0,0,0,0,0,0,0,0\n")
	path := writeFile(t, dir, "s.toml", `
[program]
image = "prog.txt"
defines = { NOUN = "12", VERB = "2" }

[[patch]]
address = 1
value = "NOUN"

[[patch]]
address = 2
value = "VERB - 1"

[[dump]]
address = 0
name = "result"

[[dump]]
address = 12
`)

	s, err := Load(path)
	require.NoError(t, err)

	emu, err := s.Emulator()
	require.NoError(t, err)
	defer emu.Close()

	assert.NoError(emu.Run())

	report := &bytes.Buffer{}
	assert.NoError(s.Report(report, emu))
	assert.Equal("result = 12\n[12] = 0\n", report.String())
}

func TestSession_Source(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	writeFile(t, dir, "sum.ic", strings.Join([]string{
		"; Sum input values until zero.",
		"loop: in value",
		"      jz value #done",
		"      add total value total",
		"      jz #0 #loop",
		"done: out total",
		"      hlt",
		"value: .data 0",
		"total: .data START",
	}, "\n"))
	writeFile(t, dir, "input.txt", "3, 4\n0\n")
	path := writeFile(t, dir, "s.toml", `
[program]
source = "sum.ic"
defines = { START = "100" }

[input]
values = [1, 2]
file = "input.txt"

[output]
file = "output.txt"
`)

	s, err := Load(path)
	require.NoError(t, err)

	emu, err := s.Emulator()
	require.NoError(t, err)

	assert.NoError(emu.Run())
	assert.NoError(emu.Close())

	output, err := os.ReadFile(filepath.Join(dir, "output.txt"))
	require.NoError(t, err)
	assert.Equal("110\n", string(output))
}

func TestSession_ASCII(t *testing.T) {
	assert := assert.New(t)

	s := &Session{
		Program: Program{Source: "echo.ic"},
		Input:   Input{ASCII: true},
		Output:  Output{ASCII: true},
	}
	s.Dir = t.TempDir()
	writeFile(t, s.Dir, "echo.ic", "in 100\nout 100\nout #1000\nhlt\n")

	stdout := &bytes.Buffer{}
	s.Stdin = strings.NewReader("A")
	s.Stdout = stdout

	emu, err := s.Emulator()
	require.NoError(t, err)
	defer emu.Close()

	assert.NoError(emu.Run())
	assert.Equal("A1000\n", stdout.String())
}

func TestSession_PatchInteger(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	writeFile(t, dir, "prog.txt", "1,0,0,0,99")
	path := writeFile(t, dir, "s.toml", `
[program]
image = "prog.txt"

[[patch]]
address = 1
value = 4

[[patch]]
address = 2
value = "-1 + 5"

[[patch]]
address = 3
value = " 7 "
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal([]Patch{{1, "4"}, {2, "-1 + 5"}, {3, " 7 "}}, s.Patch)

	emu, err := s.Emulator()
	require.NoError(t, err)
	defer emu.Close()

	assert.NoError(emu.Run())
	assert.Equal([]int64{1, 4, 4, 7, 99}, emu.Memory.Fixed())

	value, err := emu.Read(7)
	assert.NoError(err)
	assert.Equal(int64(198), value)

	bad := writeFile(t, dir, "bad.toml", "[[patch]]\naddress = 1\nvalue = 1.5\n")
	_, err = Load(bad)
	assert.Error(err)
}

func TestSession_InputReleased(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	writeFile(t, dir, "prog.txt", "3,0,99")

	s := &Session{
		Program: Program{Image: "prog.txt"},
		Input:   Input{Values: []int64{1, 2, 3}, Text: "unread"},
		Dir:     dir,
		Stdout:  &bytes.Buffer{},
	}

	before := runtime.NumGoroutine()
	for range 50 {
		emu, err := s.Emulator()
		require.NoError(t, err)
		assert.NoError(emu.Run())
		assert.NoError(emu.Close())
	}
	after := runtime.NumGoroutine()

	assert.LessOrEqual(after, before+2)
}

func TestSession_Errors(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	writeFile(t, dir, "prog.txt", "99")
	writeFile(t, dir, "bad.ic", "bogus")

	table := [](struct {
		name    string
		session Session
		err     error
	}){
		{"missing", Session{}, ErrProgramMissing},
		{"conflict", Session{Program: Program{Image: "prog.txt", Source: "bad.ic"}}, ErrProgramConflict},
		{"no_file", Session{Program: Program{Image: "none.txt"}}, os.ErrNotExist},
		{"no_input", Session{Program: Program{Image: "prog.txt"}, Input: Input{File: "none.txt"}}, os.ErrNotExist},
	}

	for _, entry := range table {
		s := entry.session
		s.Dir = dir
		emu, err := s.Emulator()
		assert.ErrorIs(err, entry.err, entry.name)
		assert.Nil(emu, entry.name)
	}

	s := &Session{Program: Program{Source: "bad.ic"}, Dir: dir}
	_, err := s.Emulator()
	assert.ErrorContains(err, "bad.ic")

	s = &Session{
		Program: Program{Image: "prog.txt"},
		Patch:   []Patch{{Address: 0, Value: "'text'"}},
		Dir:     dir,
	}
	_, err = s.Emulator()
	assert.Error(err)
}
