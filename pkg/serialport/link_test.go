package serialport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkReadByte(t *testing.T) {
	dev, host := NewPipe()
	dev.Timeout = time.Millisecond
	link := NewLink(dev)

	_, err := host.Write([]byte("ab"))
	require.NoError(t, err)

	b, ok := link.ReadByte()
	require.True(t, ok)
	assert.Equal(t, byte('a'), b)
	b, ok = link.ReadByte()
	require.True(t, ok)
	assert.Equal(t, byte('b'), b)

	_, ok = link.ReadByte()
	assert.False(t, ok, "idle link must report no input")
}

func TestLinkPrint(t *testing.T) {
	dev, host := NewPipe()
	link := NewLink(dev)

	link.Print("a=", 1)
	link.Println(" b")
	link.Printf("c=%02d\n", 7)

	assert.Equal(t, "a=1 b\nc=07\n", string(host.Drain()))
}

func TestPipeOverflowDrops(t *testing.T) {
	dev, host := NewPipe()
	big := make([]byte, pipeBuffer*2)
	n, err := dev.Write(big)
	require.NoError(t, err)
	assert.Equal(t, len(big), n)
	assert.Len(t, host.Drain(), pipeBuffer)
}
