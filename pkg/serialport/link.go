// Package serialport provides hal.SerialLink implementations: a real
// serial device, a generic adapter over any io.ReadWriter with
// serial-like read timeouts, and an in-memory pipe for tests and
// bench-less runs.
package serialport

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// PollInterval bounds how long ReadByte waits for a byte before
// reporting no input.
const PollInterval = 20 * time.Millisecond

// Link adapts a byte stream into the console contract. The underlying
// Read must return with zero bytes when no data arrives; read errors
// are indistinguishable from idle input.
type Link struct {
	rw io.ReadWriter
}

// NewLink creates a Link over an io.ReadWriter.
func NewLink(rw io.ReadWriter) *Link {
	return &Link{rw: rw}
}

// ReadByte implements hal.SerialLink.
func (l *Link) ReadByte() (byte, bool) {
	var buf [1]byte
	n, err := l.rw.Read(buf[:])
	if err != nil || n == 0 {
		return 0, false
	}
	return buf[0], true
}

// Print implements hal.SerialLink.
func (l *Link) Print(args ...interface{}) {
	fmt.Fprint(l.rw, args...)
}

// Println implements hal.SerialLink.
func (l *Link) Println(args ...interface{}) {
	fmt.Fprintln(l.rw, args...)
}

// Printf implements hal.SerialLink.
func (l *Link) Printf(format string, args ...interface{}) {
	fmt.Fprintf(l.rw, format, args...)
}

// Port is a Link over a real serial device.
type Port struct {
	Link
	port serial.Port
}

// Open opens the serial device and arms the poll timeout ReadByte
// relies on.
func Open(device string, baud int) (*Port, error) {
	p, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	if err := p.SetReadTimeout(PollInterval); err != nil {
		p.Close()
		return nil, err
	}
	return &Port{Link: Link{rw: p}, port: p}, nil
}

// Read implements io.Reader. It returns zero bytes on the poll
// timeout.
func (p *Port) Read(buf []byte) (int, error) {
	return p.port.Read(buf)
}

// Write implements io.Writer.
func (p *Port) Write(buf []byte) (int, error) {
	return p.port.Write(buf)
}

// Close implements io.Closer.
func (p *Port) Close() error {
	return p.port.Close()
}

// ListPorts enumerates serial devices present on the host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
