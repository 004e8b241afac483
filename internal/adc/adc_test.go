package adc

import (
	"errors"
	"sync"
	"testing"

	"github.com/sweeney/light-trigger/internal/gpio"
)

func newFakeSampler(t *testing.T) (*Sampler, *gpio.FakeController, Pins) {
	t.Helper()
	pins := DefaultPins()
	f := gpio.NewFakeController()
	s, err := New(f, pins)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.ClearOps()
	return s, f, pins
}

// bits expands v into n levels, MSB first.
func bits(v uint16, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = v&(1<<uint(n-1-i)) != 0
	}
	return out
}

func TestNewConfiguresLines(t *testing.T) {
	pins := DefaultPins()
	f := gpio.NewFakeController()
	if _, err := New(f, pins); err != nil {
		t.Fatalf("New: %v", err)
	}

	want := map[int]gpio.Direction{
		pins.CLK:  gpio.Output,
		pins.MOSI: gpio.Output,
		pins.CS:   gpio.Output,
		pins.MISO: gpio.Input,
	}
	for pin, dir := range want {
		got, ok := f.Dir(pin)
		if !ok || got != dir {
			t.Errorf("pin %d: expected %s, got %s (configured=%v)", pin, dir, got, ok)
		}
	}
	if !f.Level(pins.CS) {
		t.Error("expected CS idle high after New")
	}
	if f.Level(pins.CLK) {
		t.Error("expected CLK low after New")
	}
}

func TestNewRejectsSharedPins(t *testing.T) {
	pins := DefaultPins()
	pins.MISO = pins.MOSI
	if _, err := New(gpio.NewFakeController(), pins); err == nil {
		t.Error("expected error for shared pins")
	}
}

func TestNewPropagatesDirectionError(t *testing.T) {
	f := gpio.NewFakeController()
	boom := errors.New("no such line")
	f.Fault = func(op gpio.Op) error {
		if op.Kind == gpio.OpDirection {
			return boom
		}
		return nil
	}
	if _, err := New(f, DefaultPins()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped line error, got %v", err)
	}
}

func TestSampleInvalidChannel(t *testing.T) {
	s, f, _ := newFakeSampler(t)

	for _, ch := range []int{-100, -1, 8, 9, 1 << 20} {
		v, err := s.Sample(ch)
		if !errors.Is(err, ErrInvalidChannel) {
			t.Errorf("channel %d: expected ErrInvalidChannel, got %v", ch, err)
		}
		if v != 0 {
			t.Errorf("channel %d: expected zero value with error, got %d", ch, v)
		}
	}
	if ops := f.Ops(); len(ops) != 0 {
		t.Errorf("expected no line operations for invalid channels, got %d: %v", len(ops), ops)
	}
}

func TestCommandWord(t *testing.T) {
	tests := []struct {
		channel int
		want    byte
	}{
		{0, 0xC0},
		{1, 0xC8},
		{2, 0xD0},
		{3, 0xD8},
		{4, 0xE0},
		{5, 0xE8},
		{6, 0xF0},
		{7, 0xF8},
	}
	for _, tt := range tests {
		if got := Command(tt.channel); got != tt.want {
			t.Errorf("Command(%d): expected %#02x, got %#02x", tt.channel, tt.want, got)
		}
	}
}

func TestSampleTransmitsCommandMSBFirst(t *testing.T) {
	for ch := 0; ch < Channels; ch++ {
		s, f, pins := newFakeSampler(t)
		if _, err := s.Sample(ch); err != nil {
			t.Fatalf("channel %d: unexpected error: %v", ch, err)
		}

		var sent []bool
		for _, op := range f.Ops() {
			if op.Kind == gpio.OpWrite && op.Pin == pins.MOSI {
				sent = append(sent, op.High)
			}
		}
		want := bits(uint16((0x18|ch)<<3)>>3, 5)
		if len(sent) != len(want) {
			t.Fatalf("channel %d: expected %d MOSI writes, got %d", ch, len(want), len(sent))
		}
		for i := range want {
			if sent[i] != want[i] {
				t.Errorf("channel %d bit %d: expected %v, got %v", ch, i, want[i], sent[i])
			}
		}
	}
}

func TestSampleLineSequence(t *testing.T) {
	s, f, pins := newFakeSampler(t)
	if _, err := s.Sample(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ops := f.Ops()
	opening := []gpio.Op{
		{Kind: gpio.OpWrite, Pin: pins.CS, High: true},
		{Kind: gpio.OpWrite, Pin: pins.CLK, High: false},
		{Kind: gpio.OpWrite, Pin: pins.CS, High: false},
	}
	for i, want := range opening {
		if ops[i] != want {
			t.Errorf("op %d: expected %v, got %v", i, want, ops[i])
		}
	}
	last := ops[len(ops)-1]
	if last != (gpio.Op{Kind: gpio.OpWrite, Pin: pins.CS, High: true}) {
		t.Errorf("last op: expected CS high, got %v", last)
	}

	// Each command bit: MOSI, CLK high, CLK low.
	for i := 0; i < commandBits; i++ {
		base := 3 + i*3
		if ops[base].Pin != pins.MOSI {
			t.Errorf("bit %d: expected MOSI write, got %v", i, ops[base])
		}
		if ops[base+1] != (gpio.Op{Kind: gpio.OpWrite, Pin: pins.CLK, High: true}) ||
			ops[base+2] != (gpio.Op{Kind: gpio.OpWrite, Pin: pins.CLK, High: false}) {
			t.Errorf("bit %d: expected clock pulse, got %v %v", i, ops[base+1], ops[base+2])
		}
	}

	// Each response bit: CLK high, CLK low, then read MISO.
	for i := 0; i < responseBits; i++ {
		base := 3 + commandBits*3 + i*3
		if ops[base] != (gpio.Op{Kind: gpio.OpWrite, Pin: pins.CLK, High: true}) ||
			ops[base+1] != (gpio.Op{Kind: gpio.OpWrite, Pin: pins.CLK, High: false}) {
			t.Errorf("response bit %d: expected clock pulse, got %v %v", i, ops[base], ops[base+1])
		}
		if ops[base+2].Kind != gpio.OpRead || ops[base+2].Pin != pins.MISO {
			t.Errorf("response bit %d: expected MISO read, got %v", i, ops[base+2])
		}
	}

	if want := 3 + commandBits*3 + responseBits*3 + 1; len(ops) != want {
		t.Errorf("expected %d ops, got %d", want, len(ops))
	}
	if !f.Level(pins.CS) || f.Level(pins.CLK) {
		t.Error("expected bus left with CS high and CLK low")
	}
}

func TestSampleDecodesShiftedBits(t *testing.T) {
	tests := []struct {
		name string
		acc  uint16 // 12 bits as received
		want uint16
	}{
		{"zero", 0x000, 0},
		{"trailing bit ignored", 0x001, 0},
		{"lsb", 0x002, 1},
		{"full scale", 0x7FE, 1023},
		{"full scale with trailing bit", 0x7FF, 1023},
		{"midscale", 0x400, 512},
		{"pattern", 0x2AA, 0x155},
		{"leading null bit masked", 0xC02, 513},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, f, pins := newFakeSampler(t)
			f.Script(pins.MISO, bits(tt.acc, responseBits)...)

			got, err := s.Sample(0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
			if tt.acc&0x800 == 0 && got != tt.acc/2 {
				t.Errorf("expected acc/2 = %d, got %d", tt.acc/2, got)
			}
		})
	}
}

func TestSampleLineFailure(t *testing.T) {
	s, f, pins := newFakeSampler(t)
	boom := errors.New("line fault")
	reads := 0
	f.Fault = func(op gpio.Op) error {
		if op.Kind == gpio.OpRead {
			reads++
			if reads == 4 {
				return boom
			}
		}
		return nil
	}

	v, err := s.Sample(0)
	if !errors.Is(err, boom) {
		t.Fatalf("expected line fault to propagate, got %v", err)
	}
	if v != 0 {
		t.Errorf("expected zero value on failure, got %d", v)
	}
	if !f.Level(pins.CS) {
		t.Error("expected CS released after failure")
	}

	// The sampler is reusable after a failed transaction.
	f.Fault = nil
	f.Script(pins.MISO, bits(0x004, responseBits)...)
	v, err = s.Sample(0)
	if err != nil {
		t.Fatalf("retry: unexpected error: %v", err)
	}
	if v != 2 {
		t.Errorf("retry: expected 2, got %d", v)
	}
}

func TestSampleAgainstSimulator(t *testing.T) {
	pins := DefaultPins()
	sim := NewSimulator(pins)
	s, err := New(sim, pins)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	values := []uint16{0, 1, 512, 1023, 0x155, 0x2AA, 777, 300}
	for ch, v := range values {
		sim.Set(ch, v)
	}
	for ch, want := range values {
		got, err := s.Sample(ch)
		if err != nil {
			t.Fatalf("channel %d: unexpected error: %v", ch, err)
		}
		if got != want {
			t.Errorf("channel %d: expected %d, got %d", ch, want, got)
		}
		if sim.LastChannel() != ch {
			t.Errorf("simulator decoded channel %d, want %d", sim.LastChannel(), ch)
		}
	}
	if n := sim.Transactions(); n != len(values) {
		t.Errorf("expected %d transactions, got %d", len(values), n)
	}
}

func TestSimulatorClose(t *testing.T) {
	sim := NewSimulator(DefaultPins())
	if sim.Closed() {
		t.Error("expected new simulator to be open")
	}
	if err := sim.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !sim.Closed() {
		t.Error("expected Closed after Close")
	}
}

func TestSampleConcurrentPollers(t *testing.T) {
	pins := DefaultPins()
	sim := NewSimulator(pins)
	s, err := New(sim, pins)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for ch := 0; ch < Channels; ch++ {
		sim.Set(ch, uint16(100*ch+7))
	}

	var wg sync.WaitGroup
	errs := make(chan error, Channels*50)
	for ch := 0; ch < Channels; ch++ {
		wg.Add(1)
		go func(ch int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				v, err := s.Sample(ch)
				if err != nil {
					errs <- err
					return
				}
				if v != uint16(100*ch+7) {
					t.Errorf("channel %d: got %d, want %d", ch, v, 100*ch+7)
					return
				}
			}
		}(ch)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMillivolts(t *testing.T) {
	tests := []struct {
		raw  uint16
		vref int
		want int
	}{
		{0, 3300, 0},
		{1, 3300, 3},
		{776, 3300, 2500},
		{777, 3300, 2504},
		{775, 3300, 2497}, // 2497.56 truncates
		{1023, 3300, 3296},
		{512, 5000, 2500},
	}
	for _, tt := range tests {
		if got := Millivolts(tt.raw, tt.vref); got != tt.want {
			t.Errorf("Millivolts(%d, %d): expected %d, got %d", tt.raw, tt.vref, tt.want, got)
		}
	}
}
