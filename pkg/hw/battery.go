package hw

import (
	"github.com/golang/glog"
)

// DefaultChargeThresholdMilliamps is the inbound current above which
// the pack counts as charging.
const DefaultChargeThresholdMilliamps = 100

// Battery implements hal.Battery over an INA219 wired between the
// charge connector and the pack.
type Battery struct {
	Monitor *INA219
	// ChargeThresholdMilliamps guards against sensor noise around 0 mA.
	ChargeThresholdMilliamps int
}

// NewBattery creates a Battery over a configured monitor.
func NewBattery(monitor *INA219) *Battery {
	return &Battery{
		Monitor:                  monitor,
		ChargeThresholdMilliamps: DefaultChargeThresholdMilliamps,
	}
}

// VoltageMillivolts implements hal.Battery.
func (b *Battery) VoltageMillivolts() (int, error) {
	return b.Monitor.BusVoltageMillivolts()
}

// IsCharging implements hal.Battery. Charge current flows into the
// pack, which the monitor reports as negative.
func (b *Battery) IsCharging() bool {
	ma, err := b.Monitor.CurrentMilliamps()
	if err != nil {
		glog.V(2).Infof("battery current read: %v", err)
		return false
	}
	return ma < -b.ChargeThresholdMilliamps
}
