// Package logic contains the pure trigger logic: ring-buffer hysteresis over
// threshold observations and edge detection.
// This package has NO external dependencies (no GPIO, audio, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"errors"
	"time"
)

// ErrInvalidConfiguration is returned when debouncer parameters are out of range.
var ErrInvalidConfiguration = errors.New("logic: invalid configuration")

// State is the stable trigger level.
type State string

const (
	StateIdle      State = "IDLE"
	StateTriggered State = "TRIGGERED"
)

// Edge is the transition reported by a single ingest.
type Edge string

const (
	NoChange    Edge = "NO_CHANGE"
	RisingEdge  Edge = "RISING"
	FallingEdge Edge = "FALLING"
)

// Input is a single converted reading.
type Input struct {
	Raw        uint16
	Millivolts int
	Time       time.Time
}

// Event is an edge to be acted on.
type Event struct {
	Timestamp  time.Time
	Edge       Edge
	State      State
	Score      int
	Millivolts int
}

// EdgeCounts tracks the number of each edge since startup.
type EdgeCounts struct {
	Rising  int
	Falling int
}

// HeartbeatData contains information for a heartbeat record.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EdgeCounts
}
