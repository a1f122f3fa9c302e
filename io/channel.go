// Package io provides I/O channels for the Intcode machine.
// Receivers supply the values read by the `in` instruction, and senders
// consume the values written by `out`. Channels include fixed input
// lists (Rom), FIFO queues linking machines together (Queue), generated
// input (Sequence), and text streams (Tape, Decimal).
package io

// Receiver supplies input values. Its Receive method can be used directly
// as an intcode.Input.
type Receiver interface {
	// Receive returns the next value, or an error if none is available.
	Receive() (value int64, err error)
}

// Sender consumes output values. Its Send method can be used directly as
// an intcode.Output.
type Sender interface {
	// Send writes a single value to the channel.
	Send(value int64) error
}

// Channel defines the interface for bidirectional I/O channels.
type Channel interface {
	Receiver
	Sender
	// Rewind resets the channel to its initial state.
	Rewind()
}
