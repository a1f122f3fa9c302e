package io

import (
	"iter"

	"github.com/ezrec/intcode/internal"
)

// Sequence supplies values from one or more iterator sequences, in order.
type Sequence struct {
	Seqs []iter.Seq[int64]

	next func() (int64, bool)
	stop func()
}

var _ Receiver = (*Sequence)(nil)

// NewSequence creates a sequence receiver from the concatenation of seqs.
func NewSequence(seqs ...iter.Seq[int64]) *Sequence {
	return &Sequence{Seqs: seqs}
}

// Text returns a sequence of the character codes of s, for ASCII programs.
func Text(s string) iter.Seq[int64] {
	var chars iter.Seq[byte] = func(yield func(byte) bool) {
		for n := range len(s) {
			if !yield(s[n]) {
				return
			}
		}
	}

	return internal.IterSeqMap(chars, func(c byte) int64 { return int64(c) })
}

// Values returns a sequence of the values given.
func Values(values ...int64) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for _, value := range values {
			if !yield(value) {
				return
			}
		}
	}
}

// Rewind restarts the sequence from its first value.
func (sc *Sequence) Rewind() {
	sc.Stop()
}

// Stop releases the resources of a partially consumed sequence.
func (sc *Sequence) Stop() {
	if sc.stop != nil {
		sc.stop()
	}
	sc.next = nil
	sc.stop = nil
}

// Close stops the sequence. It satisfies io.Closer, so an emulator can
// release the sequence with its other resources.
func (sc *Sequence) Close() error {
	sc.Stop()
	return nil
}

// Receive returns the next value of the sequence.
func (sc *Sequence) Receive() (value int64, err error) {
	if sc.next == nil {
		sc.next, sc.stop = iter.Pull(internal.IterSeqConcat(sc.Seqs...))
	}

	value, ok := sc.next()
	if !ok {
		err = ErrChannelEmpty
	}

	return
}
