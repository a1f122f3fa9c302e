package io

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelEmpty = errors.New(f("channel empty"))
	ErrChannelFull  = errors.New(f("channel full"))
)

// ErrDecimal is returned for input text that is not a decimal value.
type ErrDecimal string

func (err ErrDecimal) Error() string {
	return f("not a decimal value: %q", string(err))
}
