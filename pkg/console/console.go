// Package console provides the ishell backed companion console a
// developer runs on the host. It speaks the mower's single-character
// debug protocol over a serial link and echoes everything the mower
// prints.
package console

import (
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/MakaronKanon/liam/pkg/serialport"
)

const (
	consoleKey   = "$console"
	closedPrompt = "[none] > "
	defaultBaud  = 115200
)

// Protocol maps the friendly commands to the bytes the mower's debug
// console understands.
var Protocol = []struct {
	Name  string
	Alias string
	Help  string
	Byte  byte
}{
	{"debug", "d", "request the debug console", 'd'},
	{"left", "l", "toggle left wheel motor", 'l'},
	{"right", "r", "toggle right wheel motor", 'r'},
	{"cutter", "c", "toggle cutter motor", 'c'},
	{"faster", "+", "increase cutter speed", '+'},
	{"slower", "-", "decrease cutter speed", '-'},
	{"bwf", "b", "read boundary wire sensor", 'b'},
	{"motion", "m", "read motion sensor", 'm'},
	{"battery", "v", "read battery", 'v'},
	{"led", "L", "toggle status led", 'L'},
	{"exit", "x", "leave the debug console", 'x'},
}

// Console is the interactive shell bound to one serial link at a time.
type Console struct {
	Shell *ishell.Shell

	rw   io.ReadWriteCloser
	stop chan struct{}
}

// New creates a Console with all commands registered.
func New() *Console {
	c := &Console{Shell: ishell.New()}
	c.Shell.Set(consoleKey, c)
	c.Shell.SetPrompt(closedPrompt)
	c.Shell.AddCmd(&ishell.Cmd{
		Name: "ports",
		Help: "list serial devices",
		Func: func(ic *ishell.Context) {
			ports, err := serialport.ListPorts()
			if err != nil {
				ic.Err(err)
				return
			}
			if len(ports) == 0 {
				ic.Println("no serial devices found")
				return
			}
			for _, p := range ports {
				ic.Println(p)
			}
		},
	})
	c.Shell.AddCmd(&ishell.Cmd{
		Name: "open",
		Help: "DEVICE [BAUD]",
		Func: func(ic *ishell.Context) {
			if len(ic.Args) < 1 {
				ic.Err(fmt.Errorf("DEVICE required"))
				return
			}
			baud := defaultBaud
			if len(ic.Args) > 1 {
				v, err := strconv.Atoi(ic.Args[1])
				if err != nil {
					ic.Err(fmt.Errorf("invalid BAUD: %v", err))
					return
				}
				baud = v
			}
			if err := ConsoleFrom(ic).Open(ic.Args[0], baud); err != nil {
				ic.Err(err)
			}
		},
	})
	c.Shell.AddCmd(&ishell.Cmd{
		Name: "close",
		Help: "close the serial link",
		Func: func(ic *ishell.Context) {
			ConsoleFrom(ic).CloseLink()
		},
	})
	c.Shell.AddCmd(&ishell.Cmd{
		Name: "raw",
		Help: "BYTES, sent verbatim",
		Func: MustBeOpen(func(ic *ishell.Context) {
			if len(ic.Args) < 1 {
				ic.Err(fmt.Errorf("BYTES required"))
				return
			}
			if err := ConsoleFrom(ic).Send([]byte(ic.Args[0])...); err != nil {
				ic.Err(err)
			}
		}),
	})
	for _, p := range Protocol {
		b := p.Byte
		c.Shell.AddCmd(&ishell.Cmd{
			Name:    p.Name,
			Aliases: []string{p.Alias},
			Help:    p.Help,
			Func: MustBeOpen(func(ic *ishell.Context) {
				if err := ConsoleFrom(ic).Send(b); err != nil {
					ic.Err(err)
				}
			}),
		})
	}
	return c
}

// ConsoleFrom gets the Console from ishell context.
func ConsoleFrom(c *ishell.Context) *Console {
	return c.Get(consoleKey).(*Console)
}

// MustBeOpen wraps a command func that requires an open link.
func MustBeOpen(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ConsoleFrom(c).rw == nil {
			c.Err(fmt.Errorf("no link open"))
			return
		}
		fn(c)
	}
}

// Open opens a serial device and attaches to it.
func (c *Console) Open(device string, baud int) error {
	port, err := serialport.Open(device, baud)
	if err != nil {
		return err
	}
	c.Attach(device, port)
	return nil
}

// Attach binds the console to an open stream and starts echoing the
// mower's output. A previous link is closed first.
func (c *Console) Attach(name string, rw io.ReadWriteCloser) {
	c.CloseLink()
	c.rw = rw
	c.stop = make(chan struct{})
	go c.echo(rw, c.stop)
	c.Shell.SetPrompt(name + " > ")
}

// CloseLink drops the current link, if any.
func (c *Console) CloseLink() {
	if c.rw == nil {
		return
	}
	close(c.stop)
	c.rw.Close()
	c.rw, c.stop = nil, nil
	c.Shell.SetPrompt(closedPrompt)
}

// Send writes raw bytes to the mower.
func (c *Console) Send(bytes ...byte) error {
	if c.rw == nil {
		return fmt.Errorf("no link open")
	}
	_, err := c.rw.Write(bytes)
	return err
}

// echo copies device output to the shell. The underlying Read returns
// with zero bytes on its poll timeout, which keeps the stop check live.
func (c *Console) echo(rw io.Reader, stop chan struct{}) {
	buf := make([]byte, 1)
	for {
		select {
		case <-stop:
			return
		default:
		}
		n, err := rw.Read(buf)
		if err != nil {
			return
		}
		if n > 0 {
			c.Shell.Print(string(buf[:n]))
		}
	}
}

// Run starts the console: one-shot with args, interactive without.
func (c *Console) Run(args ...string) {
	if len(args) > 0 {
		if err := c.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	c.Shell.Run()
}
