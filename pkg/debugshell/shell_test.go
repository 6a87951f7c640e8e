package debugshell

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MakaronKanon/liam/pkg/hal"
)

const helpBanner = "---- Liam debug console ----"

// scriptLink replays a canned byte sequence and records all output.
// When the script runs out it keeps returning 'x' so a broken test
// cannot hang the REPL.
type scriptLink struct {
	script []byte
	out    bytes.Buffer
}

func (l *scriptLink) ReadByte() (byte, bool) {
	if len(l.script) == 0 {
		return 'x', true
	}
	b := l.script[0]
	l.script = l.script[1:]
	return b, true
}

func (l *scriptLink) Print(args ...interface{})   { fmt.Fprint(&l.out, args...) }
func (l *scriptLink) Println(args ...interface{}) { fmt.Fprintln(&l.out, args...) }
func (l *scriptLink) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&l.out, format, args...)
}

func (l *scriptLink) helpCount() int {
	return strings.Count(l.out.String(), helpBanner)
}

type fakeWheel struct {
	speeds []int
	err    error
}

func (w *fakeWheel) SetSpeed(v int) error {
	w.speeds = append(w.speeds, v)
	return w.err
}
func (w *fakeWheel) MinSpeed() int { return -255 }
func (w *fakeWheel) MaxSpeed() int { return 255 }

type fakeCutter struct {
	speeds   []int
	attached bool
	min, max int
}

func (c *fakeCutter) SetSpeed(v int) error {
	c.speeds = append(c.speeds, v)
	return nil
}
func (c *fakeCutter) MinSpeed() int         { return c.min }
func (c *fakeCutter) MaxSpeed() int         { return c.max }
func (c *fakeCutter) IsAttached() bool      { return c.attached }
func (c *fakeCutter) Current() (int, error) { return 0, nil }

type fakeBwf struct {
	updates     int
	reads       int
	containment hal.Containment
	strength    int
}

func (b *fakeBwf) Update() {
	b.updates++
}
func (b *fakeBwf) Inside() hal.Containment {
	b.reads++
	return b.containment
}
func (b *fakeBwf) SignalStrength() int { return b.strength }

type fakeMotion struct {
	reads int
	raw   hal.RawMotion
	err   error
}

func (m *fakeMotion) ReadRaw() (hal.RawMotion, error) {
	m.reads++
	return m.raw, m.err
}
func (m *fakeMotion) Heading() int       { return 42 }
func (m *fakeMotion) TargetHeading() int { return 90 }
func (m *fakeMotion) Tilt() int          { return 3 }
func (m *fakeMotion) Pitch() int         { return -1 }

type fakeBattery struct {
	reads    int
	mv       int
	charging bool
}

func (b *fakeBattery) VoltageMillivolts() (int, error) {
	b.reads++
	return b.mv, nil
}
func (b *fakeBattery) IsCharging() bool { return b.charging }

type fakeLed struct {
	states []bool
}

func (l *fakeLed) Set(on bool) error {
	l.states = append(l.states, on)
	return nil
}

type fakeController struct {
	state hal.State
}

func (c *fakeController) State() hal.State    { return c.state }
func (c *fakeController) SetState(s hal.State) { c.state = s }

type fixture struct {
	link    *scriptLink
	left    *fakeWheel
	right   *fakeWheel
	cutter  *fakeCutter
	bwf     *fakeBwf
	motion  *fakeMotion
	battery *fakeBattery
	led     *fakeLed
	shell   *Shell
}

func newFixture(script string) *fixture {
	f := &fixture{
		link:    &scriptLink{script: []byte(script)},
		left:    &fakeWheel{},
		right:   &fakeWheel{},
		cutter:  &fakeCutter{attached: true, min: 0, max: 255},
		bwf:     &fakeBwf{containment: hal.ContainmentInside, strength: 87},
		motion:  &fakeMotion{},
		battery: &fakeBattery{mv: 14200},
		led:     &fakeLed{},
	}
	f.shell = New(Mower{
		Controller: &fakeController{state: hal.StateDebug},
		Link:       f.link,
		Left:       f.left,
		Right:      f.right,
		Cutter:     f.cutter,
		Bwf:        f.bwf,
		Motion:     f.motion,
		Battery:    f.battery,
		Led:        f.led,
	}, Config{
		WheelSpeed:  100,
		CutterSpeed: 100,
		SpeedStep:   10,
		ExitState:   hal.StateMowing,
	})
	return f
}

func (f *fixture) run() hal.State {
	return f.shell.TryEnter(hal.StateDebug)
}

// actuatorCalls counts all setter invocations across collaborators.
func (f *fixture) actuatorCalls() int {
	return len(f.left.speeds) + len(f.right.speeds) + len(f.cutter.speeds) + len(f.led.states)
}

func TestPassThrough(t *testing.T) {
	for _, state := range []hal.State{hal.StateIdle, hal.StateCharging, hal.StateMowing} {
		t.Run(state.String(), func(t *testing.T) {
			f := newFixture("")
			require.Equal(t, state, f.shell.TryEnter(state))
			assert.Zero(t, f.actuatorCalls())
			assert.Zero(t, f.bwf.updates)
			assert.Empty(t, f.link.out.String())
		})
	}
}

func TestExitReturnsResumeState(t *testing.T) {
	for _, cmd := range []string{"x", "q"} {
		t.Run(cmd, func(t *testing.T) {
			f := newFixture(cmd)
			require.Equal(t, hal.StateMowing, f.run())
			assert.Zero(t, f.actuatorCalls(), "exit must not invoke actuator setters")
		})
	}
}

func TestHelpOnEntry(t *testing.T) {
	f := newFixture("x")
	f.run()
	assert.Equal(t, 1, f.link.helpCount())
}

// TestCommandSideEffects verifies each command touches exactly the
// documented collaborator and no other.
func TestCommandSideEffects(t *testing.T) {
	testCases := []struct {
		cmd    string
		verify func(t *testing.T, f *fixture)
	}{
		{"l", func(t *testing.T, f *fixture) {
			assert.Equal(t, []int{100}, f.left.speeds)
			assert.Empty(t, f.right.speeds)
			assert.Empty(t, f.cutter.speeds)
			assert.Empty(t, f.led.states)
		}},
		{"r", func(t *testing.T, f *fixture) {
			assert.Equal(t, []int{100}, f.right.speeds)
			assert.Empty(t, f.left.speeds)
			assert.Empty(t, f.cutter.speeds)
			assert.Empty(t, f.led.states)
		}},
		{"c", func(t *testing.T, f *fixture) {
			assert.Equal(t, []int{100}, f.cutter.speeds)
			assert.Empty(t, f.left.speeds)
			assert.Empty(t, f.right.speeds)
			assert.Empty(t, f.led.states)
		}},
		{"L", func(t *testing.T, f *fixture) {
			assert.Equal(t, []bool{true}, f.led.states)
			assert.Empty(t, f.left.speeds)
			assert.Empty(t, f.right.speeds)
			assert.Empty(t, f.cutter.speeds)
		}},
		{"b", func(t *testing.T, f *fixture) {
			assert.Equal(t, 1, f.bwf.reads)
			assert.Zero(t, f.motion.reads)
			assert.Zero(t, f.battery.reads)
			assert.Zero(t, f.actuatorCalls())
		}},
		{"m", func(t *testing.T, f *fixture) {
			assert.Equal(t, 1, f.motion.reads)
			assert.Zero(t, f.bwf.reads)
			assert.Zero(t, f.battery.reads)
			assert.Zero(t, f.actuatorCalls())
		}},
		{"v", func(t *testing.T, f *fixture) {
			assert.Equal(t, 1, f.battery.reads)
			assert.Zero(t, f.bwf.reads)
			assert.Zero(t, f.motion.reads)
			assert.Zero(t, f.actuatorCalls())
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.cmd, func(t *testing.T) {
			f := newFixture(tc.cmd + "x")
			f.run()
			tc.verify(t, f)
		})
	}
}

func TestToggleIdempotence(t *testing.T) {
	t.Run("double toggle restores off", func(t *testing.T) {
		f := newFixture("llx")
		f.run()
		assert.Equal(t, []int{100, 0}, f.left.speeds)
		assert.False(t, f.shell.leftOn)
	})
	t.Run("triple toggle leaves on", func(t *testing.T) {
		f := newFixture("lllx")
		f.run()
		assert.Equal(t, []int{100, 0, 100}, f.left.speeds)
		assert.True(t, f.shell.leftOn)
	})
	t.Run("cutter double toggle", func(t *testing.T) {
		f := newFixture("ccx")
		f.run()
		assert.Equal(t, []int{100, 0}, f.cutter.speeds)
		assert.False(t, f.shell.cutterOn)
	})
	t.Run("led double toggle", func(t *testing.T) {
		f := newFixture("LLx")
		f.run()
		assert.Equal(t, []bool{true, false}, f.led.states)
		assert.False(t, f.shell.ledOn)
	})
}

func TestCutterSpeedClamp(t *testing.T) {
	testCases := []struct {
		name   string
		script string
		speed  int
	}{
		{"four up", "++++x", 140},
		{"eleven down clamps at min", "-----------x", 0},
		{"many up clamps at max", strings.Repeat("+", 40) + "x", 255},
		{"mixed stays in range", "--+++---+x", 90},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(tc.script)
			f.run()
			assert.Equal(t, tc.speed, f.shell.cutterSpeed)
			assert.True(t, f.shell.cutterSpeed >= f.cutter.min)
			assert.True(t, f.shell.cutterSpeed <= f.cutter.max)
			assert.Empty(t, f.cutter.speeds, "speed change alone must not command the motor")
		})
	}
}

func TestNextToggleUsesAdjustedSpeed(t *testing.T) {
	f := newFixture("++cx")
	f.run()
	assert.Equal(t, []int{120}, f.cutter.speeds)
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture("zx")
	f.run()
	assert.Zero(t, f.actuatorCalls())
	// one banner on entry plus exactly one for the unknown byte.
	assert.Equal(t, 2, f.link.helpCount())
}

func TestExitPurity(t *testing.T) {
	f := newFixture("lx")
	f.run()
	assert.Equal(t, []int{100}, f.left.speeds, "exit must leave the last commanded state untouched")
	assert.True(t, f.shell.leftOn)
}

func TestUpdateBwfDelegatesOnce(t *testing.T) {
	f := newFixture("")
	f.shell.UpdateBwf()
	assert.Equal(t, 1, f.bwf.updates)
	assert.Zero(t, f.bwf.reads)
	assert.Zero(t, f.motion.reads)
	assert.Zero(t, f.battery.reads)
	assert.Zero(t, f.actuatorCalls())
}

func TestTelemetryScenario(t *testing.T) {
	f := newFixture("bmvx")
	f.run()
	require.Equal(t, 1, f.bwf.reads)
	require.Equal(t, 1, f.motion.reads)
	require.Equal(t, 1, f.battery.reads)

	out := f.link.out.String()
	bwfAt := strings.Index(out, "BWF:")
	magAt := strings.Index(out, "MAG:")
	battAt := strings.Index(out, "BATT:")
	require.NotEqual(t, -1, bwfAt)
	require.NotEqual(t, -1, magAt)
	require.NotEqual(t, -1, battAt)
	assert.True(t, bwfAt < magAt, "BWF line must precede motion lines")
	assert.True(t, magAt < battAt, "motion lines must precede battery line")
	assert.Contains(t, out, "BWF: inside strength=87")
	assert.Contains(t, out, "BATT: 14200mV charging=false")
}

func TestBothWheelsScenario(t *testing.T) {
	f := newFixture("lrx")
	require.Equal(t, hal.StateMowing, f.run())
	assert.Equal(t, []int{100}, f.left.speeds)
	assert.Equal(t, []int{100}, f.right.speeds)
	assert.True(t, f.shell.leftOn)
	assert.True(t, f.shell.rightOn)
}

func TestCutterNotAttached(t *testing.T) {
	f := newFixture("cx")
	f.cutter.attached = false
	f.run()
	assert.Empty(t, f.cutter.speeds)
	assert.False(t, f.shell.cutterOn)
	assert.Contains(t, f.link.out.String(), "cutter not attached")
}

func TestCollaboratorErrorKeepsShellRunning(t *testing.T) {
	f := newFixture("lrx")
	f.left.err = errors.New("overcurrent")
	require.Equal(t, hal.StateMowing, f.run())
	assert.Contains(t, f.link.out.String(), "overcurrent")
	// the shell kept going: the right wheel command still ran.
	assert.Equal(t, []int{100}, f.right.speeds)
	// the flag still tracks the commanded state.
	assert.True(t, f.shell.leftOn)
}
