// Package status provides a thread-safe status tracker for the light-trigger
// daemon. Snapshots feed the lifecycle events written to the status file.
package status

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sweeney/light-trigger/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Channel          int
	ThresholdMv      int
	VrefMv           int
	BufferDepth      int
	SamplesForAction int
	RefreshMs        int64
	HeartbeatMs      int64
	Probability      float64
	Directory        string
	Sounds           int
	GPIO             string
}

// Reading is the last converted sample.
type Reading struct {
	Raw        uint16
	Millivolts int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State     logic.State
	Score     int
	History   string
	Samples   int
	Reading   Reading
	Counts    logic.EdgeCounts
	LastSound string
	StartTime time.Time
	Now       time.Time
	Config    Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets trigger state, score, history and edge counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(state logic.State, score int, history string, counts logic.EdgeCounts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Score = score
	t.snap.History = history
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetReading records the latest sample.
func (t *Tracker) SetReading(raw uint16, millivolts int) {
	t.mu.Lock()
	t.snap.Reading = Reading{Raw: raw, Millivolts: millivolts}
	t.snap.Samples++
	t.mu.Unlock()
}

// SetLastSound records the clip most recently started.
func (t *Tracker) SetLastSound(path string) {
	t.mu.Lock()
	t.snap.LastSound = path
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

// WriteFile replaces path with data via a temporary file in the same
// directory, so readers never see a partial document.
func WriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp status file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write status file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close status file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod status file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename status file: %w", err)
	}
	return nil
}
