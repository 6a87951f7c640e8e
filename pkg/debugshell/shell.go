// Package debugshell implements the interactive service console of the
// mower. It is entered from the top-level state machine and lets an
// operator on the serial link exercise single actuators and read
// telemetry without the autonomous loop running.
package debugshell

import (
	"github.com/MakaronKanon/liam/pkg/hal"
)

// Config tunes the shell behavior.
type Config struct {
	// WheelSpeed is the forward speed commanded by the wheel toggles.
	WheelSpeed int
	// CutterSpeed is the initial on-speed of the cutter toggle.
	CutterSpeed int
	// SpeedStep is the adjustment applied by '+' and '-'.
	SpeedStep int
	// ExitState is the operating state returned when the operator exits.
	ExitState hal.State
}

// DefaultConfig are the stock shell settings.
var DefaultConfig = Config{
	WheelSpeed:  100,
	CutterSpeed: 100,
	SpeedStep:   10,
	ExitState:   hal.StateIdle,
}

// Mower bundles the borrowed collaborators the shell drives.
// All references are non-owning: the composition root keeps them
// alive for the life of the process.
type Mower struct {
	Controller hal.Controller
	Link       hal.SerialLink
	Left       hal.WheelMotor
	Right      hal.WheelMotor
	Cutter     hal.CutterMotor
	Bwf        hal.BwfSensor
	Motion     hal.MotionSensor
	Battery    hal.Battery
	Led        hal.StatusLed
}

// Shell is the single-character command processor.
type Shell struct {
	m    Mower
	conf Config

	ledOn          bool
	cutterOn       bool
	leftOn         bool
	rightOn        bool
	cutterAttached bool
	cutterSpeed    int
}

// New creates a Shell over borrowed collaborators.
func New(m Mower, conf Config) *Shell {
	if conf.SpeedStep == 0 {
		conf.SpeedStep = DefaultConfig.SpeedStep
	}
	if conf.WheelSpeed == 0 {
		conf.WheelSpeed = DefaultConfig.WheelSpeed
	}
	if conf.CutterSpeed == 0 {
		conf.CutterSpeed = DefaultConfig.CutterSpeed
	}
	return &Shell{m: m, conf: conf, cutterSpeed: conf.CutterSpeed}
}

// TryEnter examines the current operating state. Unless debug is
// requested it returns current unchanged with no side effects.
// Otherwise it seizes the caller's loop, runs the command REPL until
// an exit command, and returns the state to resume with.
func (s *Shell) TryEnter(current hal.State) hal.State {
	if current != hal.StateDebug {
		return current
	}
	s.printHelp()
	for {
		s.UpdateBwf()
		b, ok := s.m.Link.ReadByte()
		if !ok {
			continue
		}
		if next, exit := s.dispatch(b); exit {
			return next
		}
	}
}

// UpdateBwf advances the boundary wire sampling state machine by one
// tick so telemetry commands observe fresh signal data.
func (s *Shell) UpdateBwf() {
	s.m.Bwf.Update()
}

func (s *Shell) dispatch(b byte) (next hal.State, exit bool) {
	switch b {
	case '?', 'h':
		s.printHelp()
	case 'l':
		s.toggleWheelLeft()
	case 'r':
		s.toggleWheelRight()
	case 'c':
		s.toggleCutter()
	case '+':
		s.adjustCutterSpeed(s.conf.SpeedStep)
	case '-':
		s.adjustCutterSpeed(-s.conf.SpeedStep)
	case 'b':
		s.printBwf()
	case 'm':
		s.printMotion()
	case 'v':
		s.printBattery()
	case 'L':
		s.toggleLed()
	case 'x', 'q':
		s.m.Link.Printf("exiting debug, resuming %s\n", s.conf.ExitState)
		return s.conf.ExitState, true
	default:
		s.printHelp()
	}
	return 0, false
}

func (s *Shell) printHelp() {
	s.m.Link.Println("---- Liam debug console ----")
	s.m.Link.Println("?/h  this help")
	s.m.Link.Println("l    toggle left wheel motor")
	s.m.Link.Println("r    toggle right wheel motor")
	s.m.Link.Println("c    toggle cutter motor")
	s.m.Link.Println("+/-  adjust cutter speed")
	s.m.Link.Println("b    read boundary wire sensor")
	s.m.Link.Println("m    read motion sensor")
	s.m.Link.Println("v    read battery")
	s.m.Link.Println("L    toggle status led")
	s.m.Link.Println("x/q  exit debug")
}

// toggles flip the commanded-state flag even if the actuator reports
// an error: the flag tracks what was commanded, the operator reads
// the error and decides.

func (s *Shell) toggleWheelLeft() {
	s.leftOn = !s.leftOn
	speed := 0
	if s.leftOn {
		speed = s.conf.WheelSpeed
	}
	if err := s.m.Left.SetSpeed(speed); err != nil {
		s.m.Link.Println("left wheel:", err)
	}
	s.m.Link.Printf("left wheel speed=%d\n", speed)
}

func (s *Shell) toggleWheelRight() {
	s.rightOn = !s.rightOn
	speed := 0
	if s.rightOn {
		speed = s.conf.WheelSpeed
	}
	if err := s.m.Right.SetSpeed(speed); err != nil {
		s.m.Link.Println("right wheel:", err)
	}
	s.m.Link.Printf("right wheel speed=%d\n", speed)
}

func (s *Shell) toggleCutter() {
	s.cutterAttached = s.m.Cutter.IsAttached()
	if !s.cutterOn && !s.cutterAttached {
		s.m.Link.Println("cutter not attached")
		return
	}
	s.cutterOn = !s.cutterOn
	speed := 0
	if s.cutterOn {
		speed = s.cutterSpeed
	}
	if err := s.m.Cutter.SetSpeed(speed); err != nil {
		s.m.Link.Println("cutter:", err)
	}
	s.m.Link.Printf("cutter speed=%d\n", speed)
}

// adjustCutterSpeed saturates silently at the motor's published range.
// Changing the speed alone never starts the motor; the next toggle-on
// uses the new value.
func (s *Shell) adjustCutterSpeed(delta int) {
	v := s.cutterSpeed + delta
	if min := s.m.Cutter.MinSpeed(); v < min {
		v = min
	}
	if max := s.m.Cutter.MaxSpeed(); v > max {
		v = max
	}
	s.cutterSpeed = v
	s.m.Link.Printf("cutter speed=%d\n", v)
}

// telemetry lines are fixed-format so host-side scripts can parse them.

func (s *Shell) printBwf() {
	s.m.Link.Printf("BWF: %s strength=%d\n", s.m.Bwf.Inside(), s.m.Bwf.SignalStrength())
}

func (s *Shell) printMotion() {
	raw, err := s.m.Motion.ReadRaw()
	if err != nil {
		s.m.Link.Println("motion:", err)
		return
	}
	s.m.Link.Printf("MAG: %d %d %d GYRO: %d %d %d ACC: %d %d %d\n",
		raw.Mag.X, raw.Mag.Y, raw.Mag.Z,
		raw.Gyro.X, raw.Gyro.Y, raw.Gyro.Z,
		raw.Accel.X, raw.Accel.Y, raw.Accel.Z)
	s.m.Link.Printf("HEAD: %d target=%d TILT: %d PITCH: %d\n",
		s.m.Motion.Heading(), s.m.Motion.TargetHeading(),
		s.m.Motion.Tilt(), s.m.Motion.Pitch())
}

func (s *Shell) printBattery() {
	mv, err := s.m.Battery.VoltageMillivolts()
	if err != nil {
		s.m.Link.Println("battery:", err)
		return
	}
	s.m.Link.Printf("BATT: %dmV charging=%v\n", mv, s.m.Battery.IsCharging())
}

func (s *Shell) toggleLed() {
	s.ledOn = !s.ledOn
	if err := s.m.Led.Set(s.ledOn); err != nil {
		s.m.Link.Println("led:", err)
	}
	s.m.Link.Printf("led on=%v\n", s.ledOn)
}
