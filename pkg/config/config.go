// Package config loads the mower configuration from a YAML file.
package config

import (
	"fmt"
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/MakaronKanon/liam/pkg/hal"
)

// Config is the whole firmware configuration.
type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	Debug     DebugConfig     `yaml:"debug"`
	Pins      PinConfig       `yaml:"pins"`
	I2C       I2CConfig       `yaml:"i2c"`
	Bwf       BwfConfig       `yaml:"bwf"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SerialConfig selects the operator console device.
type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// DebugConfig tunes the debug console.
type DebugConfig struct {
	WheelSpeed  int    `yaml:"wheel_speed"`
	CutterSpeed int    `yaml:"cutter_speed"`
	SpeedStep   int    `yaml:"speed_step"`
	ExitState   string `yaml:"exit_state"`
}

// ExitStateValue resolves the configured exit state name.
func (d DebugConfig) ExitStateValue() (hal.State, error) {
	state, ok := hal.ParseState(d.ExitState)
	if !ok {
		return hal.StateIdle, fmt.Errorf("unknown exit state: %q", d.ExitState)
	}
	return state, nil
}

// PinConfig names the GPIO pins by their periph names.
type PinConfig struct {
	LeftPWM     string `yaml:"left_pwm"`
	LeftDir     string `yaml:"left_dir"`
	RightPWM    string `yaml:"right_pwm"`
	RightDir    string `yaml:"right_dir"`
	CutterPWM   string `yaml:"cutter_pwm"`
	CutterSense string `yaml:"cutter_sense"`
	Bwf         string `yaml:"bwf"`
	Led         string `yaml:"led"`
}

// I2CConfig selects the bus and the current monitors on it.
type I2CConfig struct {
	Bus            string  `yaml:"bus"`
	BatteryAddr    uint16  `yaml:"battery_addr"`
	CutterAddr     uint16  `yaml:"cutter_addr"`
	ShuntOhms      float64 `yaml:"shunt_ohms"`
	MaxCurrentAmps float64 `yaml:"max_current_amps"`
}

// BwfConfig describes the fence transmitter coding in integer units
// so it round-trips through YAML cleanly.
type BwfConfig struct {
	InsideUs    []int `yaml:"inside_us"`
	OutsideUs   []int `yaml:"outside_us"`
	ToleranceUs int   `yaml:"tolerance_us"`
	TimeoutMs   int   `yaml:"timeout_ms"`
}

// Inside returns the inside signature as durations.
func (b BwfConfig) Inside() []time.Duration { return usToDurations(b.InsideUs) }

// Outside returns the outside signature as durations.
func (b BwfConfig) Outside() []time.Duration { return usToDurations(b.OutsideUs) }

// Tolerance returns the per-interval jitter allowance.
func (b BwfConfig) Tolerance() time.Duration {
	return time.Duration(b.ToleranceUs) * time.Microsecond
}

// Timeout returns the signal-lost timeout.
func (b BwfConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutMs) * time.Millisecond
}

func usToDurations(us []int) []time.Duration {
	out := make([]time.Duration, len(us))
	for i, v := range us {
		out[i] = time.Duration(v) * time.Microsecond
	}
	return out
}

// TelemetryConfig selects the MQTT reporting target.
type TelemetryConfig struct {
	Broker     string `yaml:"broker"`
	IntervalMs int    `yaml:"interval_ms"`
	Disabled   bool   `yaml:"disabled"`
}

// Interval returns the publish interval.
func (t TelemetryConfig) Interval() time.Duration {
	return time.Duration(t.IntervalMs) * time.Millisecond
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{Device: "/dev/ttyAMA0", Baud: 115200},
		Debug: DebugConfig{
			WheelSpeed:  100,
			CutterSpeed: 100,
			SpeedStep:   10,
			ExitState:   "idle",
		},
		Pins: PinConfig{
			LeftPWM:     "GPIO12",
			LeftDir:     "GPIO5",
			RightPWM:    "GPIO13",
			RightDir:    "GPIO6",
			CutterPWM:   "GPIO18",
			CutterSense: "GPIO23",
			Bwf:         "GPIO24",
			Led:         "GPIO25",
		},
		I2C: I2CConfig{
			Bus:            "",
			BatteryAddr:    0x40,
			CutterAddr:     0x41,
			ShuntOhms:      0.1,
			MaxCurrentAmps: 3.2,
		},
		Bwf: BwfConfig{
			InsideUs:    []int{1000, 2000, 1000, 4000},
			OutsideUs:   []int{4000, 1000, 2000, 1000},
			ToleranceUs: 200,
			TimeoutMs:   200,
		},
		Telemetry: TelemetryConfig{
			Broker:     "mqtt://localhost:1883",
			IntervalMs: 5000,
		},
	}
}

// Load reads the config file over the defaults. An empty path returns
// the defaults untouched.
func Load(path string) (*Config, error) {
	conf := Default()
	if path == "" {
		return conf, nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.UnmarshalStrict(data, conf); err != nil {
		return nil, fmt.Errorf("parse %s: %v", path, err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return conf, nil
}

// Validate rejects configurations the firmware cannot start with.
func (c *Config) Validate() error {
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial baud must be positive, got %d", c.Serial.Baud)
	}
	if c.Debug.SpeedStep <= 0 {
		return fmt.Errorf("debug speed_step must be positive, got %d", c.Debug.SpeedStep)
	}
	if _, err := c.Debug.ExitStateValue(); err != nil {
		return err
	}
	if len(c.Bwf.InsideUs) < 2 || len(c.Bwf.OutsideUs) < 2 {
		return fmt.Errorf("bwf signatures need at least 2 intervals")
	}
	if c.Bwf.InsideUs[0] == c.Bwf.OutsideUs[0] {
		return fmt.Errorf("bwf signatures must differ in their first interval")
	}
	if !c.Telemetry.Disabled && c.Telemetry.IntervalMs <= 0 {
		return fmt.Errorf("telemetry interval_ms must be positive, got %d", c.Telemetry.IntervalMs)
	}
	return nil
}
