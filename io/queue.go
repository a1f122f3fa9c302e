package io

// Queue is a FIFO of values. The output of one machine can be sent to a
// queue that another machine receives from.
type Queue struct {
	Capacity int // Capacity in values, zero for unbounded.

	Data []int64
}

var _ Channel = (*Queue)(nil)

// Rewind empties the queue.
func (q *Queue) Rewind() {
	q.Data = nil
}

// Len returns the number of queued values.
func (q *Queue) Len() int {
	return len(q.Data)
}

// Receive removes the oldest value from the queue.
func (q *Queue) Receive() (value int64, err error) {
	if len(q.Data) == 0 {
		err = ErrChannelEmpty
		return
	}

	value = q.Data[0]
	q.Data = q.Data[1:]
	return
}

// Send appends a value to the queue. Returns ErrChannelFull if the queue
// has reached capacity.
func (q *Queue) Send(value int64) (err error) {
	if q.Capacity > 0 && len(q.Data) >= q.Capacity {
		err = ErrChannelFull
		return
	}

	q.Data = append(q.Data, value)
	return
}
