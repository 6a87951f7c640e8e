package hw

import (
	"math"

	"periph.io/x/periph/conn/i2c"

	"github.com/MakaronKanon/liam/pkg/hal"
)

// MPU-9150 registers. Accel and gyro live in the MPU core, the AK8975
// magnetometer sits behind the bypass mux at its own address.
const (
	mpuAddr = 0x68
	magAddr = 0x0c

	regPwrMgmt1   = 0x6b
	regIntPinCfg  = 0x37
	regAccelXoutH = 0x3b

	magRegCntl = 0x0a
	magRegHxl  = 0x03

	magSingleMeasurement = 0x01
	bypassEnable         = 0x02
)

// MotionSensor implements hal.MotionSensor over an MPU-9150.
// Derived angles are refreshed by ReadRaw and cached; the accessors
// only report the last refresh.
type MotionSensor struct {
	dev *i2c.Dev
	mag *i2c.Dev

	target  int
	heading int
	tilt    int
	pitch   int
}

// NewMotionSensor wakes the sensor and enables the magnetometer
// bypass.
func NewMotionSensor(bus i2c.Bus) (*MotionSensor, error) {
	m := &MotionSensor{
		dev: &i2c.Dev{Bus: bus, Addr: mpuAddr},
		mag: &i2c.Dev{Bus: bus, Addr: magAddr},
	}
	if err := m.dev.Tx([]byte{regPwrMgmt1, 0}, nil); err != nil {
		return nil, err
	}
	if err := m.dev.Tx([]byte{regIntPinCfg, bypassEnable}, nil); err != nil {
		return nil, err
	}
	return m, nil
}

// ReadRaw implements hal.MotionSensor.
func (m *MotionSensor) ReadRaw() (hal.RawMotion, error) {
	var raw hal.RawMotion

	// accel(6) + temp(2) + gyro(6), big endian.
	var buf [14]byte
	if err := m.dev.Tx([]byte{regAccelXoutH}, buf[:]); err != nil {
		return raw, err
	}
	raw.Accel = vecBE(buf[0:6])
	raw.Gyro = vecBE(buf[8:14])

	// the AK8975 needs a single-measurement trigger per read.
	if err := m.mag.Tx([]byte{magRegCntl, magSingleMeasurement}, nil); err != nil {
		return raw, err
	}
	var mbuf [6]byte
	if err := m.mag.Tx([]byte{magRegHxl}, mbuf[:]); err != nil {
		return raw, err
	}
	raw.Mag = vecLE(mbuf[:])

	m.heading = headingFromMag(raw.Mag.X, raw.Mag.Y)
	m.tilt = tiltFromAccel(raw.Accel)
	m.pitch = pitchFromAccel(raw.Accel)
	return raw, nil
}

// Heading implements hal.MotionSensor.
func (m *MotionSensor) Heading() int { return m.heading }

// TargetHeading implements hal.MotionSensor.
func (m *MotionSensor) TargetHeading() int { return m.target }

// SetTargetHeading records the heading navigation wants to hold.
func (m *MotionSensor) SetTargetHeading(deg int) {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	m.target = deg
}

// Tilt implements hal.MotionSensor.
func (m *MotionSensor) Tilt() int { return m.tilt }

// Pitch implements hal.MotionSensor.
func (m *MotionSensor) Pitch() int { return m.pitch }

func vecBE(b []byte) hal.Vec3 {
	return hal.Vec3{
		X: int16(b[0])<<8 | int16(b[1]),
		Y: int16(b[2])<<8 | int16(b[3]),
		Z: int16(b[4])<<8 | int16(b[5]),
	}
}

func vecLE(b []byte) hal.Vec3 {
	return hal.Vec3{
		X: int16(b[1])<<8 | int16(b[0]),
		Y: int16(b[3])<<8 | int16(b[2]),
		Z: int16(b[5])<<8 | int16(b[4]),
	}
}

// headingFromMag projects the horizontal field onto a compass angle
// in degrees [0, 360).
func headingFromMag(mx, my int16) int {
	deg := int(math.Round(math.Atan2(float64(my), float64(mx)) * 180 / math.Pi))
	if deg < 0 {
		deg += 360
	}
	return deg % 360
}

// tiltFromAccel is the angle between gravity and the chassis Z axis.
func tiltFromAccel(a hal.Vec3) int {
	horiz := math.Hypot(float64(a.X), float64(a.Y))
	return int(math.Round(math.Atan2(horiz, float64(a.Z)) * 180 / math.Pi))
}

// pitchFromAccel is the fore/aft component alone, signed: positive
// means nose up.
func pitchFromAccel(a hal.Vec3) int {
	rest := math.Hypot(float64(a.Y), float64(a.Z))
	return int(math.Round(math.Atan2(float64(-a.X), rest) * 180 / math.Pi))
}
