package hw

import (
	"github.com/golang/glog"

	"github.com/MakaronKanon/liam/pkg/hal"
)

// Dummy implementations let the firmware run on a machine without the
// mower hardware attached. Commands are logged, sensors report fixed
// plausible values.

// DummyWheel is a logging hal.WheelMotor.
type DummyWheel struct {
	Name string
}

// SetSpeed implements hal.WheelMotor.
func (w *DummyWheel) SetSpeed(speed int) error {
	glog.V(1).Infof("dummy %s wheel speed=%d", w.Name, speed)
	return nil
}

// MinSpeed implements hal.WheelMotor.
func (w *DummyWheel) MinSpeed() int { return -wheelSpeedMax }

// MaxSpeed implements hal.WheelMotor.
func (w *DummyWheel) MaxSpeed() int { return wheelSpeedMax }

// DummyCutter is a logging hal.CutterMotor.
type DummyCutter struct{}

// SetSpeed implements hal.CutterMotor.
func (c *DummyCutter) SetSpeed(speed int) error {
	glog.V(1).Infof("dummy cutter speed=%d", speed)
	return nil
}

// MinSpeed implements hal.CutterMotor.
func (c *DummyCutter) MinSpeed() int { return 0 }

// MaxSpeed implements hal.CutterMotor.
func (c *DummyCutter) MaxSpeed() int { return cutterSpeedMax }

// IsAttached implements hal.CutterMotor.
func (c *DummyCutter) IsAttached() bool { return true }

// Current implements hal.CutterMotor.
func (c *DummyCutter) Current() (int, error) { return 1500, nil }

// DummyBwf is a hal.BwfSensor that always reports inside.
type DummyBwf struct{}

// Update implements hal.BwfSensor.
func (b *DummyBwf) Update() {}

// Inside implements hal.BwfSensor.
func (b *DummyBwf) Inside() hal.Containment { return hal.ContainmentInside }

// SignalStrength implements hal.BwfSensor.
func (b *DummyBwf) SignalStrength() int { return StrengthMax }

// DummyMotion is a hal.MotionSensor with fixed readings.
type DummyMotion struct{}

// ReadRaw implements hal.MotionSensor.
func (m *DummyMotion) ReadRaw() (hal.RawMotion, error) {
	return hal.RawMotion{
		Mag:   hal.Vec3{X: 312, Y: -40, Z: 198},
		Gyro:  hal.Vec3{X: 2, Y: -1, Z: 0},
		Accel: hal.Vec3{X: 120, Y: -80, Z: 16300},
	}, nil
}

// Heading implements hal.MotionSensor.
func (m *DummyMotion) Heading() int { return 353 }

// TargetHeading implements hal.MotionSensor.
func (m *DummyMotion) TargetHeading() int { return 0 }

// Tilt implements hal.MotionSensor.
func (m *DummyMotion) Tilt() int { return 1 }

// Pitch implements hal.MotionSensor.
func (m *DummyMotion) Pitch() int { return 0 }

// DummyBattery is a hal.Battery at nominal charge.
type DummyBattery struct{}

// VoltageMillivolts implements hal.Battery.
func (b *DummyBattery) VoltageMillivolts() (int, error) { return 12600, nil }

// IsCharging implements hal.Battery.
func (b *DummyBattery) IsCharging() bool { return false }

// DummyLed is a logging hal.StatusLed.
type DummyLed struct{}

// Set implements hal.StatusLed.
func (l *DummyLed) Set(on bool) error {
	glog.V(1).Infof("dummy led on=%v", on)
	return nil
}
