package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string      `json:"event,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	State         string      `json:"state"`
	Score         int         `json:"score"`
	History       string      `json:"history,omitempty"`
	Samples       int         `json:"samples"`
	Reading       ReadingJSON `json:"reading"`
	Counts        CountsJSON  `json:"edge_counts"`
	LastSound     string      `json:"last_sound,omitempty"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	Config        ConfigJSON  `json:"config"`
}

// ReadingJSON is the JSON representation of the last sample.
type ReadingJSON struct {
	Raw        uint16 `json:"raw"`
	Millivolts int    `json:"millivolts"`
}

// CountsJSON is the JSON representation of edge counts.
type CountsJSON struct {
	Rising  int `json:"rising"`
	Falling int `json:"falling"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Channel          int     `json:"channel"`
	ThresholdMv      int     `json:"threshold_mv"`
	VrefMv           int     `json:"vref_mv"`
	BufferDepth      int     `json:"buffer_depth"`
	SamplesForAction int     `json:"samples_for_action"`
	RefreshMs        int64   `json:"refresh_ms"`
	HeartbeatMs      int64   `json:"heartbeat_ms"`
	Probability      float64 `json:"probability"`
	Directory        string  `json:"directory"`
	Sounds           int     `json:"sounds"`
	GPIO             string  `json:"gpio"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	return StatusInner{
		State:         state,
		Score:         snap.Score,
		History:       snap.History,
		Samples:       snap.Samples,
		Reading:       ReadingJSON{Raw: snap.Reading.Raw, Millivolts: snap.Reading.Millivolts},
		Counts:        CountsJSON{Rising: snap.Counts.Rising, Falling: snap.Counts.Falling},
		LastSound:     snap.LastSound,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Config: ConfigJSON{
			Channel:          snap.Config.Channel,
			ThresholdMv:      snap.Config.ThresholdMv,
			VrefMv:           snap.Config.VrefMv,
			BufferDepth:      snap.Config.BufferDepth,
			SamplesForAction: snap.Config.SamplesForAction,
			RefreshMs:        snap.Config.RefreshMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			Probability:      snap.Config.Probability,
			Directory:        snap.Config.Directory,
			Sounds:           snap.Config.Sounds,
			GPIO:             snap.Config.GPIO,
		},
	}
}

// FormatStatusEvent returns the JSON status for a lifecycle event
// (STARTUP, HEARTBEAT, SHUTDOWN).
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
