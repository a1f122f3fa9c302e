package io

// Rom supplies a fixed list of values.
type Rom struct {
	Data []int64

	index int
}

var _ Channel = (*Rom)(nil)

// Rewind restarts the list from its first value.
func (rc *Rom) Rewind() {
	rc.index = 0
}

// Receive returns the next value of the list.
func (rc *Rom) Receive() (value int64, err error) {
	if rc.index >= len(rc.Data) {
		err = ErrChannelEmpty
		return
	}

	value = rc.Data[rc.index]
	rc.index++
	return
}

// Remaining returns the count of values not yet received.
func (rc *Rom) Remaining() int {
	return len(rc.Data) - rc.index
}

// Send is not possible on a ROM.
func (rc *Rom) Send(value int64) error {
	return ErrChannelFull
}

// Constant supplies the same value forever.
type Constant int64

var _ Receiver = Constant(0)

// Receive returns the constant.
func (c Constant) Receive() (int64, error) {
	return int64(c), nil
}
