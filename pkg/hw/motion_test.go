package hw

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MakaronKanon/liam/pkg/hal"
)

func TestHeadingFromMag(t *testing.T) {
	testCases := []struct {
		mx, my  int16
		heading int
	}{
		{1000, 0, 0},
		{0, 1000, 90},
		{-1000, 0, 180},
		{0, -1000, 270},
		{1000, 1000, 45},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.heading, headingFromMag(tc.mx, tc.my), "mx=%d my=%d", tc.mx, tc.my)
	}
}

func TestTiltFromAccel(t *testing.T) {
	// flat on the ground, gravity on Z.
	assert.Equal(t, 0, tiltFromAccel(hal.Vec3{Z: 16384}))
	// on its side.
	assert.Equal(t, 90, tiltFromAccel(hal.Vec3{X: 16384}))
	// 45 degree slope.
	assert.Equal(t, 45, tiltFromAccel(hal.Vec3{Y: 16384, Z: 16384}))
}

func TestPitchFromAccel(t *testing.T) {
	assert.Equal(t, 0, pitchFromAccel(hal.Vec3{Z: 16384}))
	// nose up tips gravity onto -X.
	assert.Equal(t, 90, pitchFromAccel(hal.Vec3{X: -16384}))
	assert.Equal(t, -45, pitchFromAccel(hal.Vec3{X: 16384, Z: 16384}))
}

func TestVecDecoding(t *testing.T) {
	be := vecBE([]byte{0xff, 0x00, 0x00, 0x10, 0x7f, 0xff})
	assert.Equal(t, hal.Vec3{X: -256, Y: 16, Z: 32767}, be)

	le := vecLE([]byte{0x00, 0xff, 0x10, 0x00, 0xff, 0x7f})
	assert.Equal(t, hal.Vec3{X: -256, Y: 16, Z: 32767}, le)
}

func TestSetTargetHeadingWraps(t *testing.T) {
	m := &MotionSensor{}
	m.SetTargetHeading(370)
	assert.Equal(t, 10, m.TargetHeading())
	m.SetTargetHeading(-90)
	assert.Equal(t, 270, m.TargetHeading())
}

func TestCalibrationValue(t *testing.T) {
	// 3.2A full scale over a 0.1 ohm shunt.
	lsb := 3.2 / (1 << 15)
	assert.Equal(t, uint16(4194), CalibrationValue(lsb, 0.1))
}
