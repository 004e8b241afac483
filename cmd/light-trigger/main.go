// Command light-trigger polls a light sensor on an MCP3008 ADC and plays a
// random sound when light appears.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/sweeney/light-trigger/internal/adc"
	"github.com/sweeney/light-trigger/internal/gpio"
	"github.com/sweeney/light-trigger/internal/logic"
	"github.com/sweeney/light-trigger/internal/sound"
	"github.com/sweeney/light-trigger/internal/sound/speaker"
	"github.com/sweeney/light-trigger/internal/status"
)

func main() {
	cfg := defaultConfig()
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	cfg.register(fs)
	fs.Parse(os.Args[1:])

	logger := newLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	if err := run(cfg, logger, os.Stdout); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func newLogger(w *os.File, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.StampMilli,
		NoColor:    !isatty.IsTerminal(w.Fd()),
	}))
}

// sampler is the part of adc.Sampler the poll loop needs.
type sampler interface {
	Sample(channel int) (uint16, error)
}

func openController(cfg config) (gpio.Controller, error) {
	if cfg.GPIO == backendSim {
		sim := adc.NewSimulator(cfg.Pins)
		sim.Set(cfg.Channel, uint16(cfg.SimRaw))
		return sim, nil
	}
	return gpio.Open(cfg.GPIO, cfg.Chip)
}

func run(cfg config, logger *slog.Logger, out io.Writer) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Initialize GPIO and the converter
	ctrl, err := openController(cfg)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer ctrl.Close()

	adcSampler, err := adc.New(ctrl, cfg.Pins)
	if err != nil {
		return fmt.Errorf("init adc: %w", err)
	}

	// Print state mode
	if cfg.PrintState {
		raw, err := adcSampler.Sample(cfg.Channel)
		if err != nil {
			return fmt.Errorf("read adc: %w", err)
		}
		mv := adc.Millivolts(raw, cfg.VrefMv)
		fmt.Fprintf(out, "raw=%d millivolts=%d light=%s\n", raw, mv, yesNo(mv > cfg.ThresholdMv))
		return nil
	}

	sounds, err := sound.Scan(cfg.Directory)
	if err != nil {
		return err
	}
	chooser, err := sound.NewChooser(sounds, cfg.Probability, rand.NewSource(time.Now().UnixNano()))
	if err != nil {
		return err
	}

	player, err := speaker.New(logger.With("component", "speaker"))
	if err != nil {
		return fmt.Errorf("init audio: %w", err)
	}
	defer player.Close()

	startTime := time.Now()
	detector, err := logic.NewDetector(logic.Config{
		BufferDepth:      cfg.BufferDepth,
		SamplesForAction: cfg.SamplesForAction,
		ThresholdMv:      cfg.ThresholdMv,
	}, startTime)
	if err != nil {
		return err
	}

	tracker := status.NewTracker(startTime, cfg.status(len(sounds)))

	deps := loopDeps{
		sampler:    adcSampler,
		channel:    cfg.Channel,
		vrefMv:     cfg.VrefMv,
		detector:   detector,
		chooser:    chooser,
		player:     player,
		tracker:    tracker,
		heartbeat:  cfg.Heartbeat,
		statusFile: cfg.StatusFile,
		logger:     logger,
		now:        time.Now,
	}
	deps.writeStatus("STARTUP", "")

	logger.Info("started",
		"channel", cfg.Channel,
		"threshold_mv", cfg.ThresholdMv,
		"buffer_depth", cfg.BufferDepth,
		"samples_for_action", cfg.SamplesForAction,
		"refresh", cfg.refreshInterval(),
		"probability", cfg.Probability,
		"sounds", len(sounds),
		"gpio", cfg.GPIO)

	ticker := time.NewTicker(cfg.refreshInterval())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(deps, ticker.C, sigCh)
}

type loopDeps struct {
	sampler    sampler
	channel    int
	vrefMv     int
	detector   *logic.Detector
	chooser    *sound.Chooser
	player     sound.Player
	tracker    *status.Tracker
	heartbeat  time.Duration
	statusFile string
	logger     *slog.Logger
	now        func() time.Time
}

func runLoop(d loopDeps, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			d.logger.Info("shutting down", "signal", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if err := d.player.Stop(); err != nil {
				d.logger.Warn("stop playback", "err", err)
			}
			d.writeStatus("SHUTDOWN", signalName)
			return nil

		case <-tick:
			t := d.now()
			raw, err := d.sampler.Sample(d.channel)
			if err != nil {
				// No observation this tick; the history is left untouched.
				d.logger.Warn("adc read error", "err", err)
				continue
			}
			mv := adc.Millivolts(raw, d.vrefMv)
			d.tracker.SetReading(raw, mv)

			event := d.detector.Process(logic.Input{Raw: raw, Millivolts: mv, Time: t})
			d.logger.Debug("sample",
				"raw", raw,
				"millivolts", mv,
				"passes", d.detector.Passes(mv),
				"history", d.detector.History())

			if event != nil {
				d.handleEdge(event)
			}

			d.tracker.Update(d.detector.CurrentState(), d.detector.Score(), d.detector.History(), d.detector.EdgeCountsSnapshot())

			if hb := d.detector.CheckHeartbeat(t, d.heartbeat); hb != nil {
				d.logger.Info("heartbeat",
					"uptime", hb.Uptime.Truncate(time.Second),
					"state", d.detector.CurrentState(),
					"rising", hb.Counts.Rising,
					"falling", hb.Counts.Falling)
				d.writeStatus("HEARTBEAT", "")
			}
		}
	}
}

// handleEdge maps edges to playback. Playback failures are logged, never fatal.
func (d loopDeps) handleEdge(e *logic.Event) {
	d.logger.Info("edge", "edge", e.Edge, "state", e.State, "score", e.Score, "millivolts", e.Millivolts)

	switch e.Edge {
	case logic.RisingEdge:
		path, ok := d.chooser.Pick()
		if !ok {
			d.logger.Info("playing nothing")
			return
		}
		if err := d.player.Load(path); err != nil {
			d.logger.Error("load sound", "path", path, "err", err)
			return
		}
		if err := d.player.Play(); err != nil {
			d.logger.Error("play sound", "path", path, "err", err)
			return
		}
		d.tracker.SetLastSound(path)
		d.logger.Info("playing", "path", path)

	case logic.FallingEdge:
		if err := d.player.Stop(); err != nil {
			d.logger.Error("stop sound", "err", err)
		}
	}
}

func (d loopDeps) writeStatus(event, reason string) {
	if d.statusFile == "" {
		return
	}
	snap := d.tracker.Snapshot()
	if err := status.WriteFile(d.statusFile, status.FormatStatusEvent(snap, event, reason)); err != nil {
		d.logger.Warn("write status file", "event", event, "err", err)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
