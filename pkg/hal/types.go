package hal

// State is the mower's top-level operating state.
type State int

// Operating states.
const (
	StateIdle State = iota
	StateCharging
	StateLaunching
	StateMowing
	StateDocking
	StateDebug
)

var stateNames = map[State]string{
	StateIdle:      "idle",
	StateCharging:  "charging",
	StateLaunching: "launching",
	StateMowing:    "mowing",
	StateDocking:   "docking",
	StateDebug:     "debug",
}

// String implements Stringer.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseState maps a state name back to its State.
func ParseState(name string) (State, bool) {
	for state, n := range stateNames {
		if n == name {
			return state, true
		}
	}
	return StateIdle, false
}

// Controller holds the top-level operating state of the mower.
type Controller interface {
	// State gets the current operating state.
	State() State
	// SetState replaces the operating state.
	SetState(State)
}

// WheelMotor drives one wheel at a signed speed.
// 0 stops the wheel, the sign chooses direction.
type WheelMotor interface {
	SetSpeed(speed int) error
	MinSpeed() int
	MaxSpeed() int
}

// CutterMotor drives the blade motor.
type CutterMotor interface {
	SetSpeed(speed int) error
	MinSpeed() int
	MaxSpeed() int
	// IsAttached reports if the blade disc is mounted.
	IsAttached() bool
	// Current reads the motor current in milliamps.
	Current() (int, error)
}

// Containment is the tri-state decision of the boundary wire sensor.
type Containment int

// Containment states.
const (
	ContainmentUnknown Containment = iota
	ContainmentInside
	ContainmentOutside
)

// String implements Stringer.
func (c Containment) String() string {
	switch c {
	case ContainmentInside:
		return "inside"
	case ContainmentOutside:
		return "outside"
	}
	return "no-signal"
}

// BwfSensor samples the boundary wire signal.
type BwfSensor interface {
	// Update advances the sampling state machine by one tick.
	Update()
	// Inside reports the containment decided from recent pulses.
	Inside() Containment
	// SignalStrength reports the raw pulse match metric.
	SignalStrength() int
}

// Vec3 is one raw sensor axis triple.
type Vec3 struct {
	X, Y, Z int16
}

// RawMotion is a snapshot of the raw motion sensor readings.
type RawMotion struct {
	Mag   Vec3
	Gyro  Vec3
	Accel Vec3
}

// MotionSensor provides magnetometer, gyro and accelerometer readings
// and angles derived from them.
type MotionSensor interface {
	ReadRaw() (RawMotion, error)
	// Heading is the compass angle of the chassis in degrees [0, 360).
	Heading() int
	// TargetHeading is the heading the navigation wants to hold.
	TargetHeading() int
	// Tilt is the inclination of the chassis from horizontal in degrees.
	Tilt() int
	// Pitch is the fore/aft inclination in degrees.
	Pitch() int
}

// Battery reports the battery state.
type Battery interface {
	VoltageMillivolts() (int, error)
	IsCharging() bool
}

// StatusLed is the onboard indicator LED.
type StatusLed interface {
	Set(on bool) error
}

// SerialLink is the character console attached to the operator.
type SerialLink interface {
	// ReadByte returns the next pending byte. ok is false when no
	// input arrived within the link's poll interval; read errors are
	// indistinguishable from no input.
	ReadByte() (b byte, ok bool)
	Print(args ...interface{})
	Println(args ...interface{})
	Printf(format string, args ...interface{})
}
