package emulator

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	ErrNoProgram = errors.New(f("no program loaded"))
	ErrNotReset  = errors.New(f("emulator not reset"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Ip     int64
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("ip %v: %v", err.Ip, err.Err)
	}
	return f("line %v (ip %v): %v", err.LineNo, err.Ip, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
