package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/MakaronKanon/liam/pkg/config"
	"github.com/MakaronKanon/liam/pkg/debugshell"
	"github.com/MakaronKanon/liam/pkg/hal"
	"github.com/MakaronKanon/liam/pkg/hw"
	"github.com/MakaronKanon/liam/pkg/mower"
	"github.com/MakaronKanon/liam/pkg/run"
	"github.com/MakaronKanon/liam/pkg/serialport"
	"github.com/MakaronKanon/liam/pkg/telemetry"
)

var (
	configFile = flag.String("config", "", "configuration file, defaults apply when empty")
	dummy      = flag.Bool("dummy", false, "run with simulated hardware on stdin/stdout")
)

// rig is everything the superloop drives.
type rig struct {
	link    hal.SerialLink
	left    hal.WheelMotor
	right   hal.WheelMotor
	cutter  hal.CutterMotor
	bwf     hal.BwfSensor
	motion  hal.MotionSensor
	battery hal.Battery
	led     hal.StatusLed

	closers []io.Closer
}

func (r *rig) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i].Close()
	}
}

func buildRig(conf *config.Config) (*rig, error) {
	if *dummy {
		return &rig{
			link:    serialport.NewLink(newStdioStream()),
			left:    &hw.DummyWheel{Name: "left"},
			right:   &hw.DummyWheel{Name: "right"},
			cutter:  &hw.DummyCutter{},
			bwf:     &hw.DummyBwf{},
			motion:  &hw.DummyMotion{},
			battery: &hw.DummyBattery{},
			led:     &hw.DummyLed{},
		}, nil
	}

	if err := hw.Init(); err != nil {
		return nil, err
	}
	r := &rig{}
	port, err := serialport.Open(conf.Serial.Device, conf.Serial.Baud)
	if err != nil {
		return nil, err
	}
	r.link = &port.Link
	r.closers = append(r.closers, port)

	bus, err := hw.OpenI2C(conf.I2C.Bus)
	if err != nil {
		r.close()
		return nil, err
	}
	r.closers = append(r.closers, bus)

	batMon := hw.NewINA219(bus, conf.I2C.BatteryAddr)
	cutMon := hw.NewINA219(bus, conf.I2C.CutterAddr)
	for _, m := range []*hw.INA219{batMon, cutMon} {
		if err := m.Configure(conf.I2C.ShuntOhms, conf.I2C.MaxCurrentAmps); err != nil {
			r.close()
			return nil, err
		}
	}
	r.battery = hw.NewBattery(batMon)

	if r.left, err = hw.NewWheelMotor(conf.Pins.LeftPWM, conf.Pins.LeftDir); err == nil {
		r.right, err = hw.NewWheelMotor(conf.Pins.RightPWM, conf.Pins.RightDir)
	}
	if err == nil {
		r.cutter, err = hw.NewCutterMotor(conf.Pins.CutterPWM, conf.Pins.CutterSense, cutMon)
	}
	if err == nil {
		r.bwf, err = hw.NewBwfSensor(conf.Pins.Bwf, hw.DecoderConfig{
			Inside:    conf.Bwf.Inside(),
			Outside:   conf.Bwf.Outside(),
			Tolerance: conf.Bwf.Tolerance(),
			Timeout:   conf.Bwf.Timeout(),
		})
	}
	if err == nil {
		var motion *hw.MotionSensor
		if motion, err = hw.NewMotionSensor(bus); err == nil {
			r.motion = motion
		}
	}
	if err == nil {
		r.led, err = hw.NewStatusLed(conf.Pins.Led)
	}
	if err != nil {
		r.close()
		return nil, err
	}
	return r, nil
}

// superloop is the firmware main loop as a run.Runnable.
type superloop struct {
	sup      *mower.Supervisor
	rig      *rig
	reporter *telemetry.Reporter
}

func (l *superloop) Run(ctx context.Context) error {
	ticker := time.NewTicker(serialport.PollInterval)
	defer ticker.Stop()
	var lastSample time.Time
	for {
		select {
		case <-ctx.Done():
			l.sup.StopActuators()
			return ctx.Err()
		case <-ticker.C:
		}
		l.sup.Step()
		if l.reporter != nil && time.Since(lastSample) >= l.reporter.Interval {
			lastSample = time.Now()
			l.reporter.SetSnapshot(l.sample())
		}
	}
}

func (l *superloop) sample() telemetry.Snapshot {
	r := l.rig
	s := telemetry.Snapshot{
		Time:           time.Now(),
		State:          l.sup.Controller.State().String(),
		Charging:       r.battery.IsCharging(),
		Containment:    r.bwf.Inside().String(),
		SignalStrength: r.bwf.SignalStrength(),
		Heading:        r.motion.Heading(),
		Tilt:           r.motion.Tilt(),
	}
	if mv, err := r.battery.VoltageMillivolts(); err == nil {
		s.BatteryMillivolts = mv
	} else {
		glog.V(1).Infof("battery sample: %v", err)
	}
	if ma, err := r.cutter.Current(); err == nil {
		s.CutterCurrentMa = ma
	} else {
		glog.V(1).Infof("cutter current sample: %v", err)
	}
	return s
}

func main() {
	flag.Parse()

	conf, err := config.Load(*configFile)
	if err != nil {
		glog.Exitf("config: %v", err)
	}
	r, err := buildRig(conf)
	if err != nil {
		glog.Exitf("hardware: %v", err)
	}
	defer r.close()

	exitState, err := conf.Debug.ExitStateValue()
	if err != nil {
		glog.Exitf("config: %v", err)
	}
	ctl := mower.New(hal.StateIdle)
	shell := debugshell.New(debugshell.Mower{
		Controller: ctl,
		Link:       r.link,
		Left:       r.left,
		Right:      r.right,
		Cutter:     r.cutter,
		Bwf:        r.bwf,
		Motion:     r.motion,
		Battery:    r.battery,
		Led:        r.led,
	}, debugshell.Config{
		WheelSpeed:  conf.Debug.WheelSpeed,
		CutterSpeed: conf.Debug.CutterSpeed,
		SpeedStep:   conf.Debug.SpeedStep,
		ExitState:   exitState,
	})
	sup := &mower.Supervisor{
		Controller: ctl,
		Link:       r.link,
		Shell:      shell,
		Left:       r.left,
		Right:      r.right,
		Cutter:     r.cutter,
		Bwf:        r.bwf,
	}

	group := run.NewGroup(context.Background()).HandleSignals()
	loop := &superloop{sup: sup, rig: r}
	if !conf.Telemetry.Disabled {
		reporter, err := telemetry.NewReporter(conf.Telemetry.Broker,
			conf.Telemetry.Interval(), telemetry.Meta{
				Name:        "liam",
				Description: "robotic lawn mower",
			})
		if err != nil {
			glog.Exitf("telemetry: %v", err)
		}
		loop.reporter = reporter
		group.Go(reporter)
	}
	group.Go(loop)
	if err := group.Wait(); err != nil {
		glog.Exitln(err)
	}
}
