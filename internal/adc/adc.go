// Package adc reads an MCP3008-style 8-channel, 10-bit analog-to-digital
// converter by bit-banging its serial protocol over four digital lines.
//
// The package never sleeps: each line transition is a synchronous call on
// the supplied gpio.Controller, so it can be driven by synthetic lines in
// tests.
package adc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sweeney/light-trigger/internal/gpio"
)

// Converter geometry.
const (
	Channels   = 8
	Resolution = 1024
	MaxValue   = Resolution - 1

	commandBits  = 5
	responseBits = 12 // null bit, 10 data bits, trailing bit
)

// ErrInvalidChannel is returned for channels outside [0, Channels).
var ErrInvalidChannel = errors.New("adc: invalid channel")

// Pins assigns the converter's serial lines to BCM pin numbers.
type Pins struct {
	CLK  int
	MOSI int // data out, to the converter's DIN
	MISO int // data in, from the converter's DOUT
	CS   int
}

// DefaultPins returns the Cobbler wiring used by the light sensor board.
func DefaultPins() Pins {
	return Pins{
		CLK:  gpio.DefaultPinCLK,
		MOSI: gpio.DefaultPinMOSI,
		MISO: gpio.DefaultPinMISO,
		CS:   gpio.DefaultPinCS,
	}
}

func (p Pins) validate() error {
	seen := map[int]string{}
	for _, l := range []struct {
		name string
		pin  int
	}{{"clk", p.CLK}, {"mosi", p.MOSI}, {"miso", p.MISO}, {"cs", p.CS}} {
		if l.pin < 0 {
			return fmt.Errorf("adc: %s pin %d is negative", l.name, l.pin)
		}
		if other, ok := seen[l.pin]; ok {
			return fmt.Errorf("adc: %s and %s share pin %d", other, l.name, l.pin)
		}
		seen[l.pin] = l.name
	}
	return nil
}

// Sampler owns the four lines of one converter. A Sampler is safe for
// concurrent use; transactions are serialized because the protocol is not
// reentrant.
type Sampler struct {
	mu   sync.Mutex
	ctrl gpio.Controller
	pins Pins
}

// New configures line directions on ctrl and leaves the bus idle
// (CS high, CLK low).
func New(ctrl gpio.Controller, pins Pins) (*Sampler, error) {
	if err := pins.validate(); err != nil {
		return nil, err
	}

	for _, l := range []struct {
		pin int
		dir gpio.Direction
	}{
		{pins.MOSI, gpio.Output},
		{pins.MISO, gpio.Input},
		{pins.CLK, gpio.Output},
		{pins.CS, gpio.Output},
	} {
		if err := ctrl.SetDirection(l.pin, l.dir); err != nil {
			return nil, fmt.Errorf("adc: configure pin %d: %w", l.pin, err)
		}
	}

	s := &Sampler{ctrl: ctrl, pins: pins}
	if err := s.write(pins.CS, true, "cs high"); err != nil {
		return nil, err
	}
	if err := s.write(pins.CLK, false, "clk low"); err != nil {
		return nil, err
	}
	return s, nil
}

// Command returns the command byte for channel: start and single-ended bits
// followed by the 3-bit channel, left-justified. Only the top five bits are
// clocked out.
func Command(channel int) byte {
	return byte((0x18 | channel) << 3)
}

// Sample runs one transaction and returns the 10-bit reading of channel.
//
// Line errors abort the transaction and are returned wrapped; the sampler
// then tries once to raise CS so the next transaction starts clean.
func (s *Sampler) Sample(channel int) (uint16, error) {
	if channel < 0 || channel >= Channels {
		return 0, fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.transfer(channel)
	if err != nil {
		_ = s.ctrl.Write(s.pins.CS, true)
		return 0, err
	}
	return v, nil
}

func (s *Sampler) transfer(channel int) (uint16, error) {
	if err := s.write(s.pins.CS, true, "cs high"); err != nil {
		return 0, err
	}
	if err := s.write(s.pins.CLK, false, "clk low"); err != nil {
		return 0, err
	}
	if err := s.write(s.pins.CS, false, "cs low"); err != nil {
		return 0, err
	}

	cmd := Command(channel)
	for i := 0; i < commandBits; i++ {
		if err := s.write(s.pins.MOSI, cmd&0x80 != 0, "mosi"); err != nil {
			return 0, err
		}
		cmd <<= 1
		if err := s.pulse(); err != nil {
			return 0, err
		}
	}

	var acc uint16
	for i := 0; i < responseBits; i++ {
		if err := s.pulse(); err != nil {
			return 0, err
		}
		acc <<= 1
		bit, err := s.ctrl.Read(s.pins.MISO)
		if err != nil {
			return 0, fmt.Errorf("adc: read miso bit %d: %w", i, err)
		}
		if bit {
			acc |= 1
		}
	}

	if err := s.write(s.pins.CS, true, "cs high"); err != nil {
		return 0, err
	}

	// Drop the trailing bit. The mask clears the undriven leading bit so the
	// result stays in [0, MaxValue]; a bare acc>>1 could reach 2047.
	return (acc >> 1) & MaxValue, nil
}

func (s *Sampler) pulse() error {
	if err := s.write(s.pins.CLK, true, "clk high"); err != nil {
		return err
	}
	return s.write(s.pins.CLK, false, "clk low")
}

func (s *Sampler) write(pin int, high bool, what string) error {
	if err := s.ctrl.Write(pin, high); err != nil {
		return fmt.Errorf("adc: %s: %w", what, err)
	}
	return nil
}

// Millivolts converts a raw reading to millivolts against the reference
// voltage, truncating toward zero.
func Millivolts(raw uint16, vrefMv int) int {
	return int(raw) * vrefMv / Resolution
}
