package hw

import (
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"
)

const (
	cutterPWMFrequency = 8 * physic.KiloHertz
	cutterSpeedMax     = 255
)

// CutterMotor implements hal.CutterMotor. The blade is driven through
// a single PWM channel; disc presence is read from a sense pin the
// mounted disc pulls low; current comes from a dedicated INA219.
type CutterMotor struct {
	pwm     gpio.PinIO
	sense   gpio.PinIO
	monitor *INA219
}

// NewCutterMotor opens the cutter pins.
func NewCutterMotor(pwmPin, sensePin string, monitor *INA219) (*CutterMotor, error) {
	pwm, err := pinByName(pwmPin)
	if err != nil {
		return nil, err
	}
	sense, err := pinByName(sensePin)
	if err != nil {
		return nil, err
	}
	if err := sense.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, err
	}
	return &CutterMotor{pwm: pwm, sense: sense, monitor: monitor}, nil
}

// SetSpeed implements hal.CutterMotor. The blade has no reverse;
// negative speeds stop it.
func (m *CutterMotor) SetSpeed(speed int) error {
	if speed < 0 {
		speed = 0
	}
	if speed > cutterSpeedMax {
		speed = cutterSpeedMax
	}
	duty := gpio.Duty(int64(speed) * int64(gpio.DutyMax) / cutterSpeedMax)
	return m.pwm.PWM(duty, cutterPWMFrequency)
}

// MinSpeed implements hal.CutterMotor.
func (m *CutterMotor) MinSpeed() int { return 0 }

// MaxSpeed implements hal.CutterMotor.
func (m *CutterMotor) MaxSpeed() int { return cutterSpeedMax }

// IsAttached implements hal.CutterMotor.
func (m *CutterMotor) IsAttached() bool {
	return m.sense.Read() == gpio.Low
}

// Current implements hal.CutterMotor.
func (m *CutterMotor) Current() (int, error) {
	return m.monitor.CurrentMilliamps()
}
