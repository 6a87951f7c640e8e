package hw

import (
	"time"

	"github.com/golang/glog"
	"periph.io/x/periph/conn/gpio"

	"github.com/MakaronKanon/liam/pkg/hal"
)

// StrengthMax caps the signal strength metric.
const StrengthMax = 100

// Signature is the expected pulse-interval sequence of one coded
// boundary wire signal.
type Signature []time.Duration

// DecoderConfig describes the fence transmitter coding.
type DecoderConfig struct {
	// Inside and Outside are the pulse codes seen on either side of
	// the wire. Each must be at least two intervals long and they must
	// differ in their first interval.
	Inside  Signature
	Outside Signature
	// Tolerance is the accepted jitter per interval.
	Tolerance time.Duration
	// Timeout declares the signal lost when no pulse arrives in time.
	Timeout time.Duration
}

// Decoder classifies boundary wire pulse trains. It locks onto one of
// the two signatures and walks it interval by interval; a mismatch
// drops the lock and decays confidence until the decision falls back
// to no-signal.
type Decoder struct {
	conf DecoderConfig

	candidate hal.Containment
	pos       int
	decided   hal.Containment
	strength  int
}

// NewDecoder creates a Decoder.
func NewDecoder(conf DecoderConfig) *Decoder {
	return &Decoder{conf: conf}
}

// Pulse consumes one measured interval between signal edges.
func (d *Decoder) Pulse(interval time.Duration) {
	if d.candidate == hal.ContainmentUnknown {
		switch {
		case d.within(interval, d.conf.Inside[0]):
			d.candidate, d.pos = hal.ContainmentInside, 1
		case d.within(interval, d.conf.Outside[0]):
			d.candidate, d.pos = hal.ContainmentOutside, 1
		default:
			d.decay()
		}
		return
	}
	sig := d.conf.Inside
	if d.candidate == hal.ContainmentOutside {
		sig = d.conf.Outside
	}
	if !d.within(interval, sig[d.pos]) {
		d.candidate, d.pos = hal.ContainmentUnknown, 0
		d.decay()
		return
	}
	if d.pos++; d.pos == len(sig) {
		d.decided = d.candidate
		if d.strength < StrengthMax {
			d.strength++
		}
		d.candidate, d.pos = hal.ContainmentUnknown, 0
	}
}

// Timeout declares the signal lost.
func (d *Decoder) Timeout() {
	d.candidate, d.pos = hal.ContainmentUnknown, 0
	d.decided, d.strength = hal.ContainmentUnknown, 0
}

// Containment reports the current decision.
func (d *Decoder) Containment() hal.Containment { return d.decided }

// Strength reports the consecutive-match confidence metric.
func (d *Decoder) Strength() int { return d.strength }

func (d *Decoder) within(interval, expect time.Duration) bool {
	delta := interval - expect
	if delta < 0 {
		delta = -delta
	}
	return delta <= d.conf.Tolerance
}

func (d *Decoder) decay() {
	if d.strength > 0 {
		d.strength--
	}
	if d.strength == 0 {
		d.decided = hal.ContainmentUnknown
	}
}

// BwfSensor implements hal.BwfSensor. A capture goroutine timestamps
// edges from the receiver coil comparator pin and publishes intervals
// into a buffered channel; Update drains it on the caller's tick, so
// the decoder only ever runs on the superloop.
type BwfSensor struct {
	dec     *Decoder
	timeout time.Duration

	pulses    chan time.Duration
	lastPulse time.Time
}

// NewBwfSensor opens the receiver pin and starts the capture loop.
// The sensor lives for the life of the process.
func NewBwfSensor(pinName string, conf DecoderConfig) (*BwfSensor, error) {
	pin, err := pinByName(pinName)
	if err != nil {
		return nil, err
	}
	if err := pin.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return nil, err
	}
	s := &BwfSensor{
		dec:       NewDecoder(conf),
		timeout:   conf.Timeout,
		pulses:    make(chan time.Duration, 64),
		lastPulse: time.Now(),
	}
	go s.capture(pin)
	return s, nil
}

func (s *BwfSensor) capture(pin gpio.PinIO) {
	last := time.Now()
	for {
		if !pin.WaitForEdge(s.timeout) {
			continue
		}
		now := time.Now()
		select {
		case s.pulses <- now.Sub(last):
		default:
			glog.V(2).Info("bwf pulse buffer full, dropping")
		}
		last = now
	}
}

// Update implements hal.BwfSensor.
func (s *BwfSensor) Update() {
	for {
		select {
		case interval := <-s.pulses:
			s.lastPulse = time.Now()
			s.dec.Pulse(interval)
		default:
			if time.Since(s.lastPulse) > s.timeout {
				s.dec.Timeout()
			}
			return
		}
	}
}

// Inside implements hal.BwfSensor.
func (s *BwfSensor) Inside() hal.Containment { return s.dec.Containment() }

// SignalStrength implements hal.BwfSensor.
func (s *BwfSensor) SignalStrength() int { return s.dec.Strength() }
