package logic

import (
	"fmt"
	"strings"
)

// Debouncer turns a noisy stream of boolean observations into a stable
// trigger level using two thresholds over a ring of the last N observations.
//
// The state goes Triggered once at least samplesForAction observations in
// the ring are true, and Idle once at most depth-samplesForAction are. Scores
// in between leave the state unchanged. If the thresholds overlap the
// trigger comparison wins.
type Debouncer struct {
	history          []bool
	next             int // next write position
	score            int
	depth            int
	samplesForAction int
	triggered        bool
}

// NewDebouncer creates a Debouncer in the Idle state with an all-false history.
func NewDebouncer(depth, samplesForAction int) (*Debouncer, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("%w: buffer depth %d must be positive", ErrInvalidConfiguration, depth)
	}
	if samplesForAction <= 0 || samplesForAction > depth {
		return nil, fmt.Errorf("%w: samples for action %d must be in (0, %d]", ErrInvalidConfiguration, samplesForAction, depth)
	}
	return &Debouncer{
		history:          make([]bool, depth),
		depth:            depth,
		samplesForAction: samplesForAction,
	}, nil
}

// Ingest folds one observation into the history and reports the resulting
// edge, if any.
func (d *Debouncer) Ingest(observation bool) Edge {
	// Overwrite the oldest slot.
	if d.history[d.next] {
		d.score--
	}
	d.history[d.next] = observation
	if observation {
		d.score++
	}
	d.next = (d.next + 1) % d.depth

	prev := d.triggered
	if d.score >= d.samplesForAction {
		d.triggered = true
	} else if d.score <= d.depth-d.samplesForAction {
		d.triggered = false
	}

	switch {
	case !prev && d.triggered:
		return RisingEdge
	case prev && !d.triggered:
		return FallingEdge
	default:
		return NoChange
	}
}

// Score returns the number of true observations in the history.
func (d *Debouncer) Score() int { return d.score }

// Triggered reports whether the stable level is Triggered.
func (d *Debouncer) Triggered() bool { return d.triggered }

// State returns the stable level.
func (d *Debouncer) State() State {
	if d.triggered {
		return StateTriggered
	}
	return StateIdle
}

// Depth returns the ring capacity.
func (d *Debouncer) Depth() int { return d.depth }

// SamplesForAction returns the trigger threshold.
func (d *Debouncer) SamplesForAction() int { return d.samplesForAction }

// History returns a copy of the ring in slot order.
func (d *Debouncer) History() []bool {
	out := make([]bool, d.depth)
	copy(out, d.history)
	return out
}

// String renders the ring in slot order, e.g. "[0011101111]".
func (d *Debouncer) String() string {
	var b strings.Builder
	b.Grow(d.depth + 2)
	b.WriteByte('[')
	for _, v := range d.history {
		if v {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	b.WriteByte(']')
	return b.String()
}
