// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	stdio "io"

	"github.com/ezrec/intcode/intcode"
	"github.com/ezrec/intcode/io"
)

// Patch replaces a memory cell after the program is loaded.
type Patch struct {
	Address int64
	Value   int64
}

// Emulator state. Machine + program listing + IO channels.
type Emulator struct {
	Verbose          bool             // If set, enables verbose logging.
	*intcode.Machine                  // Reference to the machine, valid after Reset.
	Program          *intcode.Program // Assembled program listing, if any.
	Image            []int64          // Raw program image, used in preference to Program.

	Tape   io.Tape     // Tape IO channel, the default source and sink.
	Source io.Receiver // Input channel, if not the tape.
	Sink   io.Sender   // Output channel, if not the tape.

	Patches []Patch // Memory patches applied by Reset.

	closers []stdio.Closer
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Program: &intcode.Program{},
	}

	return
}

// Attach registers a resource to be closed by Close.
func (emu *Emulator) Attach(closer stdio.Closer) {
	emu.closers = append(emu.closers, closer)
}

// Close the emulator, and any attached resources.
func (emu *Emulator) Close() (err error) {
	for _, closer := range emu.closers {
		err = errors.Join(err, closer.Close())
	}
	emu.closers = nil

	return
}

// Patch adds a memory patch, applied at the next Reset.
func (emu *Emulator) Patch(address int64, value int64) {
	emu.Patches = append(emu.Patches, Patch{Address: address, Value: value})
}

// SetSource replaces the input channel. It may be called while running.
func (emu *Emulator) SetSource(source io.Receiver) {
	emu.Source = source
}

// Binary returns the program image to be loaded.
func (emu *Emulator) Binary() []int64 {
	if emu.Image != nil {
		return emu.Image
	}

	if emu.Program != nil {
		return emu.Program.Binary()
	}

	return nil
}

// Reset loads a fresh machine with the program, and applies the patches.
func (emu *Emulator) Reset() (err error) {
	binary := emu.Binary()
	if len(binary) == 0 {
		err = ErrNoProgram
		return
	}

	machine, err := intcode.NewMachine(binary, emu.receive, emu.send)
	if err != nil {
		return
	}

	for _, patch := range emu.Patches {
		err = machine.Write(patch.Address, patch.Value)
		if err != nil {
			return
		}
	}

	machine.Verbose = emu.Verbose
	emu.Machine = machine

	return
}

func (emu *Emulator) receive() (int64, error) {
	if emu.Source != nil {
		return emu.Source.Receive()
	}

	return emu.Tape.Receive()
}

func (emu *Emulator) send(value int64) error {
	if emu.Sink != nil {
		return emu.Sink.Send(value)
	}

	return emu.Tape.Send(value)
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	if emu.Machine == nil {
		return 0
	}

	return emu.Machine.Ticks
}

// Code returns the current instruction code.
func (emu *Emulator) Code() intcode.Code {
	if emu.Machine == nil {
		return intcode.Code{}
	}

	code, _, _ := emu.Machine.Fetch()
	return code
}

// LineNo returns the current line number for the executing opcode, or
// zero if the program has no listing.
func (emu *Emulator) LineNo() int {
	if emu.Machine == nil || emu.Image != nil || emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Machine.Ip)
	if dbg.Line == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator. done is set once the
// machine has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	if emu.Machine == nil {
		err = ErrNotReset
		return
	}

	if !emu.Machine.Running() {
		done = true
		return
	}

	emu.Machine.Verbose = emu.Verbose

	ip := emu.Machine.Ip
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Ip: ip, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Machine.Tick()
	if err != nil {
		return
	}

	done = !emu.Machine.Running()
	return
}

// Run ticks the emulator until the machine halts.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}
