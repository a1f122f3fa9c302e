package intcode

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_Debug(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m, err := NewMachine([]int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}, nil, nil)
	require.NoError(err)

	assert.Equal("add [9]=30 [10]=40 ->[3]", m.Debug())
	require.NoError(m.Tick())
	assert.Equal("mul [3]=70 [11]=50 ->[0]", m.Debug())
	require.NoError(m.Tick())
	assert.Equal("hlt", m.Debug())

	m, err = NewMachine(quine, nil, nil)
	require.NoError(err)
	require.NoError(m.Tick())
	assert.Equal("out [rb-1=0]=109", m.Debug())

	m, err = NewMachine([]int64{21101, 1, 2, 3, 99}, nil, nil)
	require.NoError(err)
	require.NoError(m.Write(100, 5))
	m.RelativeBase = 10
	assert.Equal("add #1 #2 ->[rb+3=13]", m.Debug())

	m, err = NewMachine([]int64{42}, nil, nil)
	require.NoError(err)
	assert.Contains(m.Debug(), "??")
}

func TestMachine_DebugReadOnly(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m, err := NewMachine([]int64{204, 1000, 99}, nil, nil)
	require.NoError(err)

	before := m.String()
	assert.Equal("out [rb+1000=1000]=0", m.Debug())
	assert.Equal(before, m.String())
	assert.Empty(m.Memory.Extended())
}

func TestMachine_Verbose(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}()

	m, err := NewMachine([]int64{104, 7, 99}, nil, nil)
	assert.NoError(err)
	m.Verbose = true
	assert.NoError(m.Run())

	assert.Equal("0000: out #7\n0002: hlt\n", buf.String())
}
