package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode"
)

// Decimal provides numeric text I/O. Input values are separated by
// whitespace or commas, and each output value is written on its own line.
type Decimal struct {
	Input  io.Reader
	Output io.Writer

	scanner *bufio.Scanner
}

var _ Channel = (*Decimal)(nil)

// Rewind forgets any buffered input.
func (dc *Decimal) Rewind() {
	dc.scanner = nil
}

func isSeparator(c byte) bool {
	return c == ',' || unicode.IsSpace(rune(c))
}

// scanWords splits on whitespace and commas.
func scanWords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) && isSeparator(data[start]) {
		start++
	}

	for n := start; n < len(data); n++ {
		if isSeparator(data[n]) {
			advance = n + 1
			token = data[start:n]
			return
		}
	}

	if atEOF && len(data) > start {
		advance = len(data)
		token = data[start:]
		return
	}

	advance = start
	return
}

// Receive parses the next decimal value of input.
func (dc *Decimal) Receive() (value int64, err error) {
	if dc.Input == nil {
		err = ErrChannelEmpty
		return
	}

	if dc.scanner == nil {
		dc.scanner = bufio.NewScanner(dc.Input)
		dc.scanner.Split(scanWords)
	}

	if !dc.scanner.Scan() {
		err = dc.scanner.Err()
		if err == nil {
			err = ErrChannelEmpty
		}
		return
	}

	word := dc.scanner.Text()
	value, err = strconv.ParseInt(word, 10, 64)
	if err != nil {
		err = errors.Join(ErrDecimal(word), err)
	}

	return
}

// Send writes a value as a line of decimal text.
func (dc *Decimal) Send(value int64) (err error) {
	if dc.Output == nil {
		err = ErrChannelFull
		return
	}

	_, err = fmt.Fprintf(dc.Output, "%d\n", value)
	return
}
