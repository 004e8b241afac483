package gpio

import (
	"fmt"
	"sync"
)

// OpKind identifies a recorded line operation.
type OpKind string

const (
	OpDirection OpKind = "DIR"
	OpWrite     OpKind = "WRITE"
	OpRead      OpKind = "READ"
)

// Op is a single line operation performed against a FakeController.
type Op struct {
	Kind OpKind
	Pin  int
	High bool      // level written or read
	Dir  Direction // OpDirection only
}

func (o Op) String() string {
	switch o.Kind {
	case OpDirection:
		return fmt.Sprintf("%s %d %s", o.Kind, o.Pin, o.Dir)
	default:
		level := 0
		if o.High {
			level = 1
		}
		return fmt.Sprintf("%s %d %d", o.Kind, o.Pin, level)
	}
}

// FakeController is a test double that records line operations and returns
// scripted input levels.
type FakeController struct {
	mu sync.Mutex

	// Inputs contains scripted levels per pin. Each Read consumes the next
	// level; once exhausted the last level repeats. Pins without a script
	// read back their last written level.
	Inputs map[int][]bool

	// Fault, if set, is consulted before every operation. A non-nil return
	// fails the operation; failed operations are not recorded.
	Fault func(op Op) error

	// Closed tracks if Close was called.
	Closed bool

	ops    []Op
	levels map[int]bool
	dirs   map[int]Direction
	cursor map[int]int
}

// NewFakeController creates a FakeController with no scripted input.
func NewFakeController() *FakeController {
	return &FakeController{
		Inputs: make(map[int][]bool),
		levels: make(map[int]bool),
		dirs:   make(map[int]Direction),
		cursor: make(map[int]int),
	}
}

// Script sets the levels returned by successive reads of pin.
func (f *FakeController) Script(pin int, levels ...bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inputs[pin] = levels
	f.cursor[pin] = 0
}

// SetDirection records the direction change.
func (f *FakeController) SetDirection(pin int, dir Direction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	op := Op{Kind: OpDirection, Pin: pin, Dir: dir}
	if err := f.fault(op); err != nil {
		return err
	}
	f.dirs[pin] = dir
	f.ops = append(f.ops, op)
	return nil
}

// Write records the level driven on pin.
func (f *FakeController) Write(pin int, high bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	op := Op{Kind: OpWrite, Pin: pin, High: high}
	if err := f.fault(op); err != nil {
		return err
	}
	f.levels[pin] = high
	f.ops = append(f.ops, op)
	return nil
}

// Read returns the next scripted level for pin.
func (f *FakeController) Read(pin int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op := Op{Kind: OpRead, Pin: pin}
	if err := f.fault(op); err != nil {
		return false, err
	}

	level := f.levels[pin]
	if script, ok := f.Inputs[pin]; ok && len(script) > 0 {
		i := f.cursor[pin]
		level = script[i]
		if i < len(script)-1 {
			f.cursor[pin]++
		}
	}

	op.High = level
	f.ops = append(f.ops, op)
	return level, nil
}

// Close marks the controller as closed.
func (f *FakeController) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Ops returns a copy of the recorded operations.
func (f *FakeController) Ops() []Op {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Op, len(f.ops))
	copy(out, f.ops)
	return out
}

// Level returns the last level written to pin.
func (f *FakeController) Level(pin int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.levels[pin]
}

// Dir returns the configured direction of pin.
func (f *FakeController) Dir(pin int) (Direction, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.dirs[pin]
	return d, ok
}

// ClearOps forgets recorded operations but keeps line state and scripts.
func (f *FakeController) ClearOps() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = nil
}

// Reset rewinds scripted input and clears recorded operations.
func (f *FakeController) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = nil
	f.Closed = false
	for pin := range f.cursor {
		f.cursor[pin] = 0
	}
}

func (f *FakeController) fault(op Op) error {
	if f.Fault == nil {
		return nil
	}
	return f.Fault(op)
}
