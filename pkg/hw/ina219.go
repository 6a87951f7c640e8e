package hw

import (
	"periph.io/x/periph/conn/i2c"
)

// INA219 register map (per the datasheet).
const (
	ina219RegConfig      = 0
	ina219RegShuntV      = 1
	ina219RegBusV        = 2
	ina219RegPower       = 3
	ina219RegCurrent     = 4
	ina219RegCalibration = 5

	// bus voltage register LSB after the 3-bit shift.
	ina219BusVoltageLSBMillivolts = 4
)

// INA219 is a high-side current/voltage monitor on the I2C bus. It
// serves both the battery gauge and the cutter current sense.
type INA219 struct {
	dev        *i2c.Dev
	currentLSB float64
}

// NewINA219 creates a monitor at the given bus address.
func NewINA219(bus i2c.Bus, addr uint16) *INA219 {
	return &INA219{dev: &i2c.Dev{Bus: bus, Addr: addr}}
}

// Configure writes the calibration register for the wired shunt.
func (m *INA219) Configure(shuntOhms, maxCurrentAmps float64) error {
	m.currentLSB = maxCurrentAmps / (1 << 15)
	cal := CalibrationValue(m.currentLSB, shuntOhms)
	return m.writeReg(ina219RegCalibration, cal)
}

// BusVoltageMillivolts reads the bus voltage.
func (m *INA219) BusVoltageMillivolts() (int, error) {
	raw, err := m.readReg(ina219RegBusV)
	if err != nil {
		return 0, err
	}
	return int(raw>>3) * ina219BusVoltageLSBMillivolts, nil
}

// CurrentMilliamps reads the shunt current. Negative values flow into
// the battery.
func (m *INA219) CurrentMilliamps() (int, error) {
	raw, err := m.readReg(ina219RegCurrent)
	if err != nil {
		return 0, err
	}
	return int(float64(int16(raw)) * m.currentLSB * 1000), nil
}

func (m *INA219) readReg(reg byte) (uint16, error) {
	var buf [2]byte
	if err := m.dev.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

func (m *INA219) writeReg(reg byte, val uint16) error {
	return m.dev.Tx([]byte{reg, byte(val >> 8), byte(val)}, nil)
}

// CalibrationValue computes the calibration register content from the
// current LSB and the shunt resistance.
func CalibrationValue(currentLSB, shuntOhms float64) uint16 {
	return uint16(0.04096 / (currentLSB * shuntOhms))
}
