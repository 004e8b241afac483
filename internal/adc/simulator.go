package adc

import (
	"sync"

	"github.com/sweeney/light-trigger/internal/gpio"
)

// Simulator is a gpio.Controller that plays the converter's side of the
// serial protocol. It clocks in the command on MOSI, then clocks out a null
// bit, the 10-bit value of the selected channel MSB first, and a trailing
// zero on MISO. Useful for tests and dry runs without hardware.
type Simulator struct {
	mu   sync.Mutex
	pins Pins

	values [Channels]uint16

	levels map[int]bool
	dirs   map[int]gpio.Direction

	selected bool
	started  bool
	cmd      byte
	nbits    int
	out      []bool
	armed    bool
	miso     bool

	transactions int
	lastChannel  int
	closed       bool
}

// NewSimulator creates a Simulator wired to pins with every channel at 0.
func NewSimulator(pins Pins) *Simulator {
	return &Simulator{
		pins:        pins,
		levels:      make(map[int]bool),
		dirs:        make(map[int]gpio.Direction),
		lastChannel: -1,
	}
}

// Set changes the value presented on channel, masked to 10 bits.
func (s *Simulator) Set(channel int, value uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[channel] = value & MaxValue
}

// Transactions returns how many complete commands the simulator decoded.
func (s *Simulator) Transactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactions
}

// LastChannel returns the channel of the last decoded command, or -1.
func (s *Simulator) LastChannel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastChannel
}

// Level returns the last level driven on pin.
func (s *Simulator) Level(pin int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[pin]
}

// SetDirection records the direction.
func (s *Simulator) SetDirection(pin int, dir gpio.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs[pin] = dir
	return nil
}

// Write drives a line and advances the converter state on CS and CLK edges.
func (s *Simulator) Write(pin int, high bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.levels[pin]
	s.levels[pin] = high

	switch pin {
	case s.pins.CS:
		if high {
			s.selected = false
			s.miso = false
		} else if prev || !s.selected {
			s.selected = true
			s.started = false
			s.cmd = 0
			s.nbits = 0
			s.out = nil
			s.armed = false
		}
	case s.pins.CLK:
		if !s.selected {
			return nil
		}
		if high && !prev {
			s.rising()
		} else if !high && prev {
			s.falling()
		}
	}
	return nil
}

func (s *Simulator) rising() {
	if s.out != nil {
		s.armed = true
		return
	}

	bit := s.levels[s.pins.MOSI]
	if !s.started {
		// Leading zeros before the start bit are ignored.
		if !bit {
			return
		}
		s.started = true
	}
	s.cmd = s.cmd<<1 | boolBit(bit)
	s.nbits++
	if s.nbits < commandBits {
		return
	}

	channel := int(s.cmd & 0x07)
	v := s.values[channel]
	out := make([]bool, 0, responseBits)
	out = append(out, false)
	for i := 9; i >= 0; i-- {
		out = append(out, v&(1<<uint(i)) != 0)
	}
	out = append(out, false)

	s.out = out
	s.lastChannel = channel
	s.transactions++
}

func (s *Simulator) falling() {
	if !s.armed {
		return
	}
	s.armed = false
	if len(s.out) == 0 {
		s.miso = false
		return
	}
	s.miso = s.out[0]
	s.out = s.out[1:]
}

// Read returns MISO while selected; other pins read back their driven level.
func (s *Simulator) Read(pin int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pin == s.pins.MISO {
		return s.selected && s.miso, nil
	}
	return s.levels[pin], nil
}

// Closed reports whether Close was called.
func (s *Simulator) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close marks the simulator closed.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func boolBit(b bool) byte {
	if b {
		return 1
	}
	return 0
}
