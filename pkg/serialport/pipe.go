package serialport

import (
	"time"
)

// pipeBuffer is the per-direction capacity, sized like a small UART
// FIFO: writers drop bytes when the peer stops draining instead of
// blocking the firmware loop.
const pipeBuffer = 256

// Pipe is one end of an in-memory bidirectional byte stream with the
// timeout semantics of a serial device.
type Pipe struct {
	// Timeout bounds Read like a serial read timeout.
	Timeout time.Duration

	in  chan byte
	out chan byte
}

// NewPipe creates two cross-connected pipe ends.
func NewPipe() (*Pipe, *Pipe) {
	a, b := make(chan byte, pipeBuffer), make(chan byte, pipeBuffer)
	return &Pipe{Timeout: PollInterval, in: a, out: b},
		&Pipe{Timeout: PollInterval, in: b, out: a}
}

// Read implements io.Reader. It returns 0 bytes after the timeout.
func (p *Pipe) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	select {
	case b := <-p.in:
		buf[0] = b
		return 1, nil
	case <-time.After(p.Timeout):
		return 0, nil
	}
}

// Write implements io.Writer. Bytes beyond the buffer are dropped,
// like an overflowing UART.
func (p *Pipe) Write(buf []byte) (int, error) {
	for _, b := range buf {
		select {
		case p.out <- b:
		default:
		}
	}
	return len(buf), nil
}

// Close implements io.Closer. Pipes hold no resources.
func (p *Pipe) Close() error { return nil }

// Drain reads everything pending without waiting.
func (p *Pipe) Drain() []byte {
	var out []byte
	for {
		select {
		case b := <-p.in:
			out = append(out, b)
		default:
			return out
		}
	}
}
