package hw

import (
	"periph.io/x/periph/conn/gpio"
)

// StatusLed implements hal.StatusLed over a single output pin.
type StatusLed struct {
	pin gpio.PinIO
}

// NewStatusLed opens the LED pin.
func NewStatusLed(pinName string) (*StatusLed, error) {
	pin, err := pinByName(pinName)
	if err != nil {
		return nil, err
	}
	return &StatusLed{pin: pin}, nil
}

// Set implements hal.StatusLed.
func (l *StatusLed) Set(on bool) error {
	return l.pin.Out(gpio.Level(on))
}
