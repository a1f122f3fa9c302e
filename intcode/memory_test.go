package intcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	image := []int64{1, 2, 3}
	mem := NewMemory(image)
	assert.Equal(int64(3), mem.Len())

	value, err := mem.Read(2)
	assert.NoError(err)
	assert.Equal(int64(3), value)

	// Fixed region writes do not leak into the image.
	assert.NoError(mem.Write(0, 10))
	assert.Equal(int64(1), image[0])
	assert.Equal([]int64{10, 2, 3}, mem.Fixed())

	// Sparse region defaults to zero, and reads do not allocate.
	value, err = mem.Read(3)
	assert.NoError(err)
	assert.Equal(int64(0), value)
	assert.Empty(mem.Extended())

	assert.NoError(mem.Write(1<<40, -5))
	value, err = mem.Read(1 << 40)
	assert.NoError(err)
	assert.Equal(int64(-5), value)
	assert.NoError(mem.Write(3, 7))
	assert.Equal([]int64{3, 1 << 40}, mem.Extended())
	assert.Equal(int64(3), mem.Len())
}

func TestMemory_Negative(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory([]int64{1})

	_, err := mem.Read(-1)
	assert.Equal(ErrAddress(-1), err)

	err = mem.Write(-2, 0)
	assert.Equal(ErrAddress(-2), err)
}
