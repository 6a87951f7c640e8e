// Package hw provides the periph.io backed hardware drivers of the
// mower: wheel and cutter motors, boundary wire receiver, motion
// sensor, battery monitor and status LED, plus dummy stand-ins for
// bench-less runs.
package hw

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

// Init loads the host peripheral drivers. Call once before opening
// any device.
func Init() error {
	_, err := host.Init()
	return err
}

// OpenI2C opens an I2C bus by name; an empty name picks the first one.
func OpenI2C(name string) (i2c.BusCloser, error) {
	return i2creg.Open(name)
}

func pinByName(name string) (gpio.PinIO, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("no such pin: %s", name)
	}
	return pin, nil
}
