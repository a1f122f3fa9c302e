// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ezrec/intcode/intcode"
	"github.com/ezrec/intcode/session"
	"github.com/ezrec/intcode/translate"
)

// patchList collects repeated -set addr=expr flags.
type patchList []session.Patch

func (pl *patchList) String() string {
	var words []string
	for _, patch := range *pl {
		words = append(words, fmt.Sprintf("%d=%s", patch.Address, patch.Value))
	}
	return strings.Join(words, ",")
}

func (pl *patchList) Set(text string) (err error) {
	addr, expr, ok := strings.Cut(text, "=")
	if !ok {
		err = fmt.Errorf("expected addr=expr: %q", text)
		return
	}

	address, err := strconv.ParseInt(strings.TrimSpace(addr), 0, 64)
	if err != nil {
		return
	}

	*pl = append(*pl, session.Patch{Address: address, Value: session.Value(expr)})
	return
}

// dumpList collects repeated -m addr flags.
type dumpList []session.Dump

func (dl *dumpList) String() string {
	var words []string
	for _, dump := range *dl {
		words = append(words, fmt.Sprintf("%d", dump.Address))
	}
	return strings.Join(words, ",")
}

func (dl *dumpList) Set(text string) (err error) {
	address, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return
	}

	*dl = append(*dl, session.Dump{Address: address})
	return
}

// absPath resolves a flag path against the working directory.
func absPath(path string) string {
	if path == "-" {
		return path
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}
	return abs
}

// disassemble writes a listing of the program image.
func disassemble(s *session.Session) (err error) {
	emu, err := s.Emulator()
	if err != nil {
		return
	}
	defer emu.Close()

	for ip, code := range intcode.Disassemble(emu.Binary()) {
		fmt.Printf("%04d: %v\n", ip, code)
	}

	return
}

// writeImage saves the patched program image.
func writeImage(s *session.Session, path string) (err error) {
	emu, err := s.Emulator()
	if err != nil {
		return
	}
	defer emu.Close()

	text := intcode.FormatImage(emu.Memory.Fixed()) + "\n"
	err = os.WriteFile(path, []byte(text), 0644)
	return
}

func main() {
	var sessionFile string
	var compile string
	var image string
	var input string
	var output string
	var ascii bool
	var patches patchList
	var dumps dumpList
	var list bool
	var save string
	var verbose bool

	flag.StringVar(&sessionFile, "s", "", ".toml session file to load")
	flag.StringVar(&compile, "c", "", ".ic file to compile")
	flag.StringVar(&image, "p", "", "Program image file")
	flag.StringVar(&input, "i", "", "Input file, '-' for stdin")
	flag.StringVar(&output, "o", "", "Output file, '-' for stdout")
	flag.BoolVar(&ascii, "a", false, "ASCII input and output")
	flag.Var(&patches, "set", "Patch memory as addr=expr (repeatable)")
	flag.Var(&dumps, "m", "Print memory at addr after halt (repeatable)")
	flag.BoolVar(&list, "d", false, "Disassemble, do not execute")
	flag.StringVar(&save, "w", "", "Write patched program image to file, do not execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Usage = func() {
		out := flag.CommandLine.Output()
		translate.Fprintf(out, "Usage: %v [options]\n", os.Args[0])
		translate.Fprintf(out, "Runs an intcode program from a session, source or image file.\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	s := &session.Session{}
	if len(sessionFile) != 0 {
		var err error
		s, err = session.Load(sessionFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	// Flags override the session file.
	if len(compile) != 0 {
		s.Program.Source = absPath(compile)
		s.Program.Image = ""
	}
	if len(image) != 0 {
		s.Program.Image = absPath(image)
		s.Program.Source = ""
	}
	if len(input) != 0 {
		s.Input.File = absPath(input)
	}
	if len(output) != 0 {
		s.Output.File = absPath(output)
	}
	if ascii {
		s.Input.ASCII = true
		s.Output.ASCII = true
	}
	s.Patch = append(s.Patch, patches...)
	s.Dump = append(s.Dump, dumps...)
	s.Verbose = s.Verbose || verbose

	if list || len(save) != 0 {
		// No program I/O without execution.
		s.Input.File = ""
		s.Output.File = ""
	}

	if list {
		err := disassemble(s)
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	if len(save) != 0 {
		err := writeImage(s, save)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		return
	}

	emu, err := s.Emulator()
	if err != nil {
		log.Fatal(err)
	}
	defer emu.Close()

	err = emu.Run()
	if err != nil {
		log.Fatalf("%v\n%v", err, emu.Machine)
	}

	err = s.Report(os.Stdout, emu)
	if err != nil {
		log.Fatal(err)
	}
}
