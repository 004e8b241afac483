package logic

import (
	"fmt"
	"time"
)

// Config holds detector parameters.
type Config struct {
	BufferDepth      int
	SamplesForAction int
	ThresholdMv      int // readings strictly above count as light
}

// Detector compares readings against the threshold, debounces them and
// counts edges.
type Detector struct {
	debouncer     *Debouncer
	threshold     int
	startTime     time.Time
	lastHeartbeat time.Time
	counts        EdgeCounts
	last          Input
	samples       int
}

// NewDetector creates a detector. The startTime is used for calculating
// uptime in heartbeat records.
func NewDetector(cfg Config, startTime time.Time) (*Detector, error) {
	deb, err := NewDebouncer(cfg.BufferDepth, cfg.SamplesForAction)
	if err != nil {
		return nil, fmt.Errorf("new detector: %w", err)
	}
	return &Detector{
		debouncer:     deb,
		threshold:     cfg.ThresholdMv,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}, nil
}

// Passes reports whether a reading counts as light present.
func (d *Detector) Passes(millivolts int) bool {
	return millivolts > d.threshold
}

// Process ingests one reading and returns an event on a rising or falling
// edge, nil otherwise.
func (d *Detector) Process(input Input) *Event {
	d.last = input
	d.samples++

	edge := d.debouncer.Ingest(d.Passes(input.Millivolts))
	switch edge {
	case RisingEdge:
		d.counts.Rising++
	case FallingEdge:
		d.counts.Falling++
	default:
		return nil
	}

	return &Event{
		Timestamp:  input.Time,
		Edge:       edge,
		State:      d.debouncer.State(),
		Score:      d.debouncer.Score(),
		Millivolts: input.Millivolts,
	}
}

// CurrentState returns the stable trigger level.
func (d *Detector) CurrentState() State {
	return d.debouncer.State()
}

// Score returns the current history score.
func (d *Detector) Score() int {
	return d.debouncer.Score()
}

// History renders the observation ring.
func (d *Detector) History() string {
	return d.debouncer.String()
}

// Last returns the most recent reading and how many have been processed.
func (d *Detector) Last() (Input, int) {
	return d.last, d.samples
}

// EdgeCountsSnapshot returns the edge counts since startup.
func (d *Detector) EdgeCountsSnapshot() EdgeCounts {
	return d.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed or
// if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.counts,
	}
}
