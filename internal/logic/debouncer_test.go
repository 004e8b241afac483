package logic

import (
	"errors"
	"testing"
)

func mustDebouncer(t *testing.T, depth, samples int) *Debouncer {
	t.Helper()
	d, err := NewDebouncer(depth, samples)
	if err != nil {
		t.Fatalf("NewDebouncer(%d, %d): %v", depth, samples, err)
	}
	return d
}

func TestNewDebouncer(t *testing.T) {
	d := mustDebouncer(t, 10, 8)
	if d.Depth() != 10 {
		t.Errorf("expected depth 10, got %d", d.Depth())
	}
	if d.SamplesForAction() != 8 {
		t.Errorf("expected samples for action 8, got %d", d.SamplesForAction())
	}
	if d.State() != StateIdle {
		t.Errorf("expected initial state IDLE, got %s", d.State())
	}
	if d.Score() != 0 {
		t.Errorf("expected initial score 0, got %d", d.Score())
	}
	if got := d.String(); got != "[0000000000]" {
		t.Errorf("expected empty history, got %s", got)
	}
}

func TestNewDebouncerInvalid(t *testing.T) {
	tests := []struct {
		depth, samples int
	}{
		{0, 0},
		{0, 1},
		{-1, 1},
		{10, 0},
		{10, -3},
		{10, 11},
		{1, 2},
	}
	for _, tt := range tests {
		d, err := NewDebouncer(tt.depth, tt.samples)
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("NewDebouncer(%d, %d): expected ErrInvalidConfiguration, got %v", tt.depth, tt.samples, err)
		}
		if d != nil {
			t.Errorf("NewDebouncer(%d, %d): expected nil debouncer", tt.depth, tt.samples)
		}
	}
}

func TestIngestScenario(t *testing.T) {
	d := mustDebouncer(t, 4, 3)

	steps := []struct {
		obs   bool
		score int
		edge  Edge
		state State
	}{
		{true, 1, NoChange, StateIdle},
		{true, 2, NoChange, StateIdle},
		{true, 3, RisingEdge, StateTriggered},
		{false, 3, NoChange, StateTriggered},
		{false, 2, NoChange, StateTriggered},
		{false, 1, FallingEdge, StateIdle},
		{false, 0, NoChange, StateIdle},
	}
	for i, s := range steps {
		edge := d.Ingest(s.obs)
		if d.Score() != s.score {
			t.Errorf("step %d: expected score %d, got %d", i, s.score, d.Score())
		}
		if edge != s.edge {
			t.Errorf("step %d: expected %s, got %s", i, s.edge, edge)
		}
		if d.State() != s.state {
			t.Errorf("step %d: expected state %s, got %s", i, s.state, d.State())
		}
	}
}

func TestConstantStreams(t *testing.T) {
	d := mustDebouncer(t, 10, 8)

	rising := 0
	for i := 0; i < 25; i++ {
		if d.Ingest(true) == RisingEdge {
			rising++
		}
		if i >= 9 && !d.Triggered() {
			t.Fatalf("true stream: expected TRIGGERED after %d samples", i+1)
		}
	}
	if rising != 1 {
		t.Errorf("true stream: expected exactly 1 rising edge, got %d", rising)
	}

	falling := 0
	for i := 0; i < 25; i++ {
		if d.Ingest(false) == FallingEdge {
			falling++
		}
		if i >= 9 && d.Triggered() {
			t.Fatalf("false stream: expected IDLE after %d samples", i+1)
		}
	}
	if falling != 1 {
		t.Errorf("false stream: expected exactly 1 falling edge, got %d", falling)
	}
}

func TestDeadBandHoldsState(t *testing.T) {
	// depth=10, samples=8: enter at >=8, leave at <=2, hold on 3..7.
	idle := mustDebouncer(t, 10, 8)
	for i := 0; i < 5; i++ {
		idle.Ingest(true)
	}
	for i := 0; i < 5; i++ {
		idle.Ingest(false)
	}
	if idle.Score() != 5 {
		t.Fatalf("expected score 5, got %d", idle.Score())
	}
	if idle.State() != StateIdle {
		t.Errorf("score 5 from IDLE: expected IDLE, got %s", idle.State())
	}

	triggered := mustDebouncer(t, 10, 8)
	for i := 0; i < 10; i++ {
		triggered.Ingest(true)
	}
	for i := 0; i < 5; i++ {
		if e := triggered.Ingest(false); e != NoChange {
			t.Errorf("dead band ingest %d: expected NO_CHANGE, got %s", i, e)
		}
	}
	if triggered.Score() != 5 {
		t.Fatalf("expected score 5, got %d", triggered.Score())
	}
	if triggered.State() != StateTriggered {
		t.Errorf("score 5 from TRIGGERED: expected TRIGGERED, got %s", triggered.State())
	}
}

func TestAlternatingInputDoesNotChatter(t *testing.T) {
	d := mustDebouncer(t, 10, 8)
	for i := 0; i < 10; i++ {
		d.Ingest(true)
	}
	for i := 0; i < 100; i++ {
		if e := d.Ingest(i%2 == 0); e != NoChange {
			t.Fatalf("ingest %d: expected NO_CHANGE for alternating input, got %s", i, e)
		}
	}
}

func TestCollapsedDeadBand(t *testing.T) {
	// samples == depth-samples: single threshold at 2.
	d := mustDebouncer(t, 4, 2)

	if e := d.Ingest(true); e != NoChange {
		t.Errorf("score 1: expected NO_CHANGE, got %s", e)
	}
	if e := d.Ingest(true); e != RisingEdge {
		t.Errorf("score 2: expected RISING, got %s", e)
	}
	d.Ingest(true)
	d.Ingest(true)
	if e := d.Ingest(false); e != NoChange {
		t.Errorf("score 3: expected NO_CHANGE, got %s", e)
	}
	// Score 2 satisfies both comparisons; triggering wins.
	if e := d.Ingest(false); e != NoChange {
		t.Errorf("score 2: expected NO_CHANGE, got %s", e)
	}
	if e := d.Ingest(false); e != FallingEdge {
		t.Errorf("score 1: expected FALLING, got %s", e)
	}
}

func TestOverlappingThresholds(t *testing.T) {
	// samples=1 of 4: enter at >=1, leave at <=3; any hit triggers.
	d := mustDebouncer(t, 4, 1)
	if e := d.Ingest(true); e != RisingEdge {
		t.Errorf("expected RISING, got %s", e)
	}
	for i := 0; i < 3; i++ {
		if e := d.Ingest(false); e != NoChange {
			t.Errorf("ingest %d: expected NO_CHANGE, got %s", i, e)
		}
	}
	if e := d.Ingest(false); e != FallingEdge {
		t.Errorf("expected FALLING once the hit ages out, got %s", e)
	}
}

func TestDepthOne(t *testing.T) {
	d := mustDebouncer(t, 1, 1)
	want := []Edge{RisingEdge, FallingEdge, RisingEdge, NoChange}
	for i, obs := range []bool{true, false, true, true} {
		if e := d.Ingest(obs); e != want[i] {
			t.Errorf("ingest %d: expected %s, got %s", i, want[i], e)
		}
	}
}

func TestRingOverwritesOldestSlot(t *testing.T) {
	d := mustDebouncer(t, 4, 3)
	for _, obs := range []bool{true, false, false, false, false, true} {
		d.Ingest(obs)
	}
	// Writes 5 and 6 landed in slots 0 and 1.
	if got := d.String(); got != "[0100]" {
		t.Errorf("expected [0100], got %s", got)
	}
	h := d.History()
	if len(h) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(h))
	}
	h[0] = true
	if d.String() != "[0100]" {
		t.Error("History should return a copy")
	}
	if d.Score() != 1 {
		t.Errorf("expected score 1, got %d", d.Score())
	}
}

func TestScoreMatchesHistory(t *testing.T) {
	d := mustDebouncer(t, 7, 5)
	pattern := []bool{true, true, false, true, false, false, true, true, true, false, true, true, true, true, false}
	for i, obs := range pattern {
		d.Ingest(obs)
		count := 0
		for _, v := range d.History() {
			if v {
				count++
			}
		}
		if count != d.Score() {
			t.Fatalf("ingest %d: score %d disagrees with history count %d", i, d.Score(), count)
		}
	}
}
