package io

import (
	"errors"
	"fmt"
	"io"
)

// Tape provides ASCII I/O. Each input byte is received as its character
// code, and output values in the range 0..255 are written as single bytes.
// Other output values are written as a line of decimal text.
type Tape struct {
	Input  io.Reader
	Output io.Writer
}

var _ Channel = (*Tape)(nil)

// Rewind is not possible on a tape.
func (tc *Tape) Rewind() {
}

// Receive reads the next byte of input.
func (tc *Tape) Receive() (value int64, err error) {
	if tc.Input == nil {
		err = ErrChannelEmpty
		return
	}

	var one [1]byte
	_, err = io.ReadFull(tc.Input, one[:])
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrChannelEmpty
		}
		return
	}

	value = int64(one[0])
	return
}

// Send writes a character, or a decimal line for non-character values.
func (tc *Tape) Send(value int64) (err error) {
	if tc.Output == nil {
		err = ErrChannelFull
		return
	}

	if value >= 0 && value <= 0xff {
		_, err = tc.Output.Write([]byte{byte(value)})
	} else {
		_, err = fmt.Fprintf(tc.Output, "%d\n", value)
	}

	return
}
