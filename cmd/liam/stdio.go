package main

import (
	"io"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/MakaronKanon/liam/pkg/serialport"
)

// stdioStream adapts stdin/stdout to the poll semantics of a serial
// port: Read returns zero bytes when nothing arrives within the poll
// interval instead of blocking the superloop.
type stdioStream struct {
	in chan byte
}

func newStdioStream() *stdioStream {
	s := &stdioStream{in: make(chan byte, 64)}
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				glog.V(1).Infof("stdin closed: %v", err)
				close(s.in)
				return
			}
			if n > 0 {
				s.in <- buf[0]
			}
		}
	}()
	return s
}

func (s *stdioStream) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	select {
	case b, ok := <-s.in:
		if !ok {
			return 0, io.EOF
		}
		buf[0] = b
		return 1, nil
	case <-time.After(serialport.PollInterval):
		return 0, nil
	}
}

func (s *stdioStream) Write(buf []byte) (int, error) {
	return os.Stdout.Write(buf)
}
