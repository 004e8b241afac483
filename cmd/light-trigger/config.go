package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/sweeney/light-trigger/internal/adc"
	"github.com/sweeney/light-trigger/internal/gpio"
	"github.com/sweeney/light-trigger/internal/status"
)

// backendSim drives the sampler against an in-memory converter.
const backendSim = "sim"

// Bounds on the poll interval.
const (
	minRefresh = time.Millisecond
	maxRefresh = time.Hour
)

type config struct {
	ThresholdMv      int
	Refresh          float64 // seconds
	BufferDepth      int
	SamplesForAction int
	Directory        string
	Probability      float64

	Channel    int
	VrefMv     int
	Pins       adc.Pins
	GPIO       string
	Chip       string
	SimRaw     int
	Heartbeat  time.Duration
	StatusFile string
	PrintState bool
	Verbose    bool
}

func defaultConfig() config {
	return config{
		ThresholdMv:      2500,
		Refresh:          0.25,
		BufferDepth:      10,
		SamplesForAction: 8,
		Directory:        ".",
		Probability:      1.0,
		Channel:          0,
		VrefMv:           3300,
		Pins:             adc.DefaultPins(),
		GPIO:             gpio.BackendGPIOCDev,
		Chip:             "gpiochip0",
		Heartbeat:        15 * time.Minute,
	}
}

func (c *config) register(fs *pflag.FlagSet) {
	fs.IntVarP(&c.ThresholdMv, "threshold", "t", c.ThresholdMv, "millivolt threshold for sensing light")
	fs.Float64VarP(&c.Refresh, "refresh", "r", c.Refresh, "refresh rate for detections in seconds")
	fs.IntVarP(&c.BufferDepth, "buffer-depth", "b", c.BufferDepth, "depth of history buffer")
	fs.IntVarP(&c.SamplesForAction, "samples-for-action", "s", c.SamplesForAction, "number of matching samples required to trigger action")
	fs.StringVarP(&c.Directory, "directory", "d", c.Directory, "directory containing the mp3s or wavs to play")
	fs.Float64VarP(&c.Probability, "probability", "p", c.Probability, "probability of playing a sound when conditions are met (0 to 1)")

	fs.IntVar(&c.Channel, "channel", c.Channel, "ADC channel the light sensor is wired to (0-7)")
	fs.IntVar(&c.VrefMv, "vref", c.VrefMv, "ADC reference voltage in millivolts")
	fs.IntVar(&c.Pins.CLK, "pin-clk", c.Pins.CLK, "BCM pin number for the ADC clock")
	fs.IntVar(&c.Pins.MISO, "pin-miso", c.Pins.MISO, "BCM pin number for ADC data out")
	fs.IntVar(&c.Pins.MOSI, "pin-mosi", c.Pins.MOSI, "BCM pin number for ADC data in")
	fs.IntVar(&c.Pins.CS, "pin-cs", c.Pins.CS, "BCM pin number for ADC chip select")
	fs.StringVar(&c.GPIO, "gpio", c.GPIO, `GPIO backend: "gpiocdev", "periph", "rpio" or "sim"`)
	fs.StringVar(&c.Chip, "chip", c.Chip, "GPIO chip for the gpiocdev backend")
	fs.IntVar(&c.SimRaw, "sim-raw", c.SimRaw, "raw value presented by the sim backend (0-1023)")
	fs.DurationVar(&c.Heartbeat, "heartbeat", c.Heartbeat, "heartbeat interval (0 to disable)")
	fs.StringVar(&c.StatusFile, "status-file", c.StatusFile, "write JSON status here on startup, heartbeat and shutdown (empty to disable)")
	fs.BoolVar(&c.PrintState, "print-state", c.PrintState, "print one reading and exit")
	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "log every sample")
}

func (c config) validate() error {
	if c.BufferDepth <= 0 {
		return fmt.Errorf("buffer depth %d must be positive", c.BufferDepth)
	}
	if c.SamplesForAction <= 0 || c.SamplesForAction > c.BufferDepth {
		return fmt.Errorf("samples for action %d must be in 1..%d", c.SamplesForAction, c.BufferDepth)
	}
	if !(c.Probability >= 0 && c.Probability <= 1) {
		return fmt.Errorf("probability %v must be between 0 and 1", c.Probability)
	}
	if !(c.Refresh > 0) {
		return fmt.Errorf("refresh %v must be positive", c.Refresh)
	}
	if d := c.refreshInterval(); d < minRefresh || d > maxRefresh {
		return fmt.Errorf("refresh %vs must be between %v and %v", c.Refresh, minRefresh, maxRefresh)
	}
	if c.Channel < 0 || c.Channel >= adc.Channels {
		return fmt.Errorf("channel %d must be in 0..%d", c.Channel, adc.Channels-1)
	}
	if c.VrefMv <= 0 {
		return fmt.Errorf("vref %d must be positive", c.VrefMv)
	}
	switch c.GPIO {
	case gpio.BackendGPIOCDev, gpio.BackendPeriph, gpio.BackendRPIO:
	case backendSim:
		if c.SimRaw < 0 || c.SimRaw > adc.MaxValue {
			return fmt.Errorf("sim raw %d must be in 0..%d", c.SimRaw, adc.MaxValue)
		}
	default:
		return fmt.Errorf("unknown gpio backend %q", c.GPIO)
	}
	return nil
}

func (c config) refreshInterval() time.Duration {
	return time.Duration(c.Refresh * float64(time.Second))
}

func (c config) status(sounds int) status.Config {
	return status.Config{
		Channel:          c.Channel,
		ThresholdMv:      c.ThresholdMv,
		VrefMv:           c.VrefMv,
		BufferDepth:      c.BufferDepth,
		SamplesForAction: c.SamplesForAction,
		RefreshMs:        c.refreshInterval().Milliseconds(),
		HeartbeatMs:      c.Heartbeat.Milliseconds(),
		Probability:      c.Probability,
		Directory:        c.Directory,
		Sounds:           sounds,
		GPIO:             c.GPIO,
	}
}
