package hw

import (
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"
)

const (
	wheelPWMFrequency = 20 * physic.KiloHertz
	wheelSpeedMax     = 255
)

// WheelMotor implements hal.WheelMotor over one H-bridge channel:
// a PWM pin for magnitude and a direction pin for sign.
type WheelMotor struct {
	pwm gpio.PinIO
	dir gpio.PinIO
}

// NewWheelMotor opens the pins of one wheel channel.
func NewWheelMotor(pwmPin, dirPin string) (*WheelMotor, error) {
	pwm, err := pinByName(pwmPin)
	if err != nil {
		return nil, err
	}
	dir, err := pinByName(dirPin)
	if err != nil {
		return nil, err
	}
	return &WheelMotor{pwm: pwm, dir: dir}, nil
}

// SetSpeed implements hal.WheelMotor. Out-of-range speeds saturate.
func (m *WheelMotor) SetSpeed(speed int) error {
	if speed > wheelSpeedMax {
		speed = wheelSpeedMax
	}
	if speed < -wheelSpeedMax {
		speed = -wheelSpeedMax
	}
	reverse := speed < 0
	if reverse {
		speed = -speed
	}
	if err := m.dir.Out(gpio.Level(reverse)); err != nil {
		return err
	}
	duty := gpio.Duty(int64(speed) * int64(gpio.DutyMax) / wheelSpeedMax)
	return m.pwm.PWM(duty, wheelPWMFrequency)
}

// MinSpeed implements hal.WheelMotor.
func (m *WheelMotor) MinSpeed() int { return -wheelSpeedMax }

// MaxSpeed implements hal.WheelMotor.
func (m *WheelMotor) MaxSpeed() int { return wheelSpeedMax }
