// Package mower holds the top-level operating state of the robot and
// the superloop glue around the debug console.
package mower

import (
	"github.com/golang/glog"

	"github.com/MakaronKanon/liam/pkg/hal"
)

// DebugRequestByte is the console byte that requests the debug console
// while the mower is in a normal operating state.
const DebugRequestByte = 'd'

// Controller implements hal.Controller.
type Controller struct {
	state hal.State
}

// New creates a Controller in the initial state.
func New(initial hal.State) *Controller {
	return &Controller{state: initial}
}

// State implements hal.Controller.
func (c *Controller) State() hal.State {
	return c.state
}

// SetState implements hal.Controller.
func (c *Controller) SetState(s hal.State) {
	c.state = s
}

// DebugEntry is the entry predicate of the debug console.
type DebugEntry interface {
	TryEnter(hal.State) hal.State
}

// Supervisor runs the superloop policy: it watches the console for a
// debug request, hands the loop to the debug console, and de-energises
// all actuators when the state machine leaves debug. The console itself
// never stops actuators on exit; the responsibility is here so the flag
// state inside the shell keeps reflecting what was last commanded.
type Supervisor struct {
	Controller hal.Controller
	Link       hal.SerialLink
	Shell      DebugEntry
	Left       hal.WheelMotor
	Right      hal.WheelMotor
	Cutter     hal.CutterMotor
	Bwf        hal.BwfSensor
}

// Step runs one superloop iteration.
func (s *Supervisor) Step() {
	if b, ok := s.Link.ReadByte(); ok && b == DebugRequestByte {
		s.Link.Println("debug requested")
		s.Controller.SetState(hal.StateDebug)
	}
	prev := s.Controller.State()
	next := s.Shell.TryEnter(prev)
	if next != prev {
		s.Controller.SetState(next)
		if prev == hal.StateDebug {
			s.StopActuators()
		}
	}
	s.Bwf.Update()
}

// StopActuators commands every actuator to stop. Failures are logged
// and do not stop the remaining actuators from being commanded.
func (s *Supervisor) StopActuators() {
	if err := s.Left.SetSpeed(0); err != nil {
		glog.Errorf("stop left wheel: %v", err)
	}
	if err := s.Right.SetSpeed(0); err != nil {
		glog.Errorf("stop right wheel: %v", err)
	}
	if err := s.Cutter.SetSpeed(0); err != nil {
		glog.Errorf("stop cutter: %v", err)
	}
}
