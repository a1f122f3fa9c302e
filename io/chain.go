package io

import (
	"errors"
)

// Chain receives from each of its receivers in turn, moving to the next
// when one is empty.
type Chain []Receiver

var _ Receiver = (*Chain)(nil)

// Receive returns the next value of the first non-empty receiver.
func (ch *Chain) Receive() (value int64, err error) {
	for len(*ch) > 0 {
		value, err = (*ch)[0].Receive()
		if !errors.Is(err, ErrChannelEmpty) {
			return
		}
		*ch = (*ch)[1:]
	}

	err = ErrChannelEmpty
	return
}
