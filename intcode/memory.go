package intcode

import (
	"maps"
	"slices"
)

// Memory is the machine's address space. Addresses below the loaded
// program length are held in a fixed slice, all others in a sparse map
// whose cells read as zero until written.
type Memory struct {
	fixed  []int64
	sparse map[int64]int64
}

// NewMemory creates memory seeded with a copy of image.
func NewMemory(image []int64) (mem *Memory) {
	mem = &Memory{
		fixed:  slices.Clone(image),
		sparse: map[int64]int64{},
	}

	return
}

// Len returns the length of the fixed region.
func (mem *Memory) Len() int64 {
	return int64(len(mem.fixed))
}

// Read returns the value at an address.
func (mem *Memory) Read(address int64) (value int64, err error) {
	switch {
	case address < 0:
		err = ErrAddress(address)
	case address < mem.Len():
		value = mem.fixed[address]
	default:
		value = mem.sparse[address]
	}

	return
}

// Write sets the value at an address.
func (mem *Memory) Write(address int64, value int64) (err error) {
	switch {
	case address < 0:
		err = ErrAddress(address)
	case address < mem.Len():
		mem.fixed[address] = value
	default:
		mem.sparse[address] = value
	}

	return
}

// Fixed returns a copy of the fixed region.
func (mem *Memory) Fixed() []int64 {
	return slices.Clone(mem.fixed)
}

// Extended returns the written addresses beyond the fixed region, in order.
func (mem *Memory) Extended() []int64 {
	return slices.Sorted(maps.Keys(mem.sparse))
}
