//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "light-trigger"

// ChipController drives lines through the Linux GPIO character device.
type ChipController struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
	dirs  map[int]Direction
}

// NewChipController opens the named chip, e.g. "gpiochip0".
func NewChipController(name string) (*ChipController, error) {
	chip, err := gpiocdev.NewChip(name)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}
	return &ChipController{
		chip:  chip,
		lines: make(map[int]*gpiocdev.Line),
		dirs:  make(map[int]Direction),
	}, nil
}

// SetDirection requests the line on first use and reconfigures it afterwards.
// Outputs start low.
func (c *ChipController) SetDirection(pin int, dir Direction) error {
	line, ok := c.lines[pin]
	if !ok {
		l, err := c.chip.RequestLine(pin, requestOptions(dir)...)
		if err != nil {
			return fmt.Errorf("request pin %d: %w", pin, err)
		}
		c.lines[pin] = l
		c.dirs[pin] = dir
		return nil
	}
	if err := line.Reconfigure(configOptions(dir)...); err != nil {
		return fmt.Errorf("reconfigure pin %d as %s: %w", pin, dir, err)
	}
	c.dirs[pin] = dir
	return nil
}

func requestOptions(dir Direction) []gpiocdev.LineReqOption {
	if dir == Output {
		return []gpiocdev.LineReqOption{gpiocdev.AsOutput(0), gpiocdev.WithConsumer(consumer)}
	}
	return []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithConsumer(consumer)}
}

func configOptions(dir Direction) []gpiocdev.LineConfigOption {
	if dir == Output {
		return []gpiocdev.LineConfigOption{gpiocdev.AsOutput(0)}
	}
	return []gpiocdev.LineConfigOption{gpiocdev.AsInput}
}

// Write drives an output line.
func (c *ChipController) Write(pin int, high bool) error {
	line, ok := c.lines[pin]
	if !ok || c.dirs[pin] != Output {
		return fmt.Errorf("write pin %d: not configured as output", pin)
	}
	v := 0
	if high {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("write pin %d: %w", pin, err)
	}
	return nil
}

// Read returns the level of a requested line.
func (c *ChipController) Read(pin int) (bool, error) {
	line, ok := c.lines[pin]
	if !ok {
		return false, fmt.Errorf("read pin %d: not requested", pin)
	}
	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return v != 0, nil
}

// Close releases GPIO resources.
// Reconfigures every line to input with pull-down (matching Pi boot defaults)
// before closing so the converter is not left driven across a reboot.
func (c *ChipController) Close() error {
	var errs []error

	for pin, line := range c.lines {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
		delete(c.lines, pin)
	}
	if c.chip != nil {
		if err := c.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		c.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
