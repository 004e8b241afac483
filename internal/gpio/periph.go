package gpio

import (
	"fmt"

	"github.com/pkg/errors"
	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphController drives lines through periph.io's host drivers.
type PeriphController struct {
	pins map[int]pgpio.PinIO
}

// NewPeriphController initialises the periph host drivers.
func NewPeriphController() (*PeriphController, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "periph host init")
	}
	return &PeriphController{pins: make(map[int]pgpio.PinIO)}, nil
}

func (c *PeriphController) pin(n int) (pgpio.PinIO, error) {
	if p, ok := c.pins[n]; ok {
		return p, nil
	}
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
	if p == nil {
		return nil, errors.Errorf("invalid pin: GPIO%d", n)
	}
	c.pins[n] = p
	return p, nil
}

// SetDirection configures the pin. Outputs start low.
func (c *PeriphController) SetDirection(pin int, dir Direction) error {
	p, err := c.pin(pin)
	if err != nil {
		return err
	}
	if dir == Output {
		return errors.Wrapf(p.Out(pgpio.Low), "set GPIO%d out", pin)
	}
	return errors.Wrapf(p.In(pgpio.PullNoChange, pgpio.NoEdge), "set GPIO%d in", pin)
}

// Write drives the pin.
func (c *PeriphController) Write(pin int, high bool) error {
	p, err := c.pin(pin)
	if err != nil {
		return err
	}
	return errors.Wrapf(p.Out(pgpio.Level(high)), "write GPIO%d", pin)
}

// Read returns the pin level.
func (c *PeriphController) Read(pin int) (bool, error) {
	p, err := c.pin(pin)
	if err != nil {
		return false, err
	}
	return p.Read() == pgpio.High, nil
}

// Close returns every used pin to input with pull-down.
func (c *PeriphController) Close() error {
	var first error
	for n, p := range c.pins {
		if err := p.In(pgpio.PullDown, pgpio.NoEdge); err != nil && first == nil {
			first = errors.Wrapf(err, "release GPIO%d", n)
		}
		delete(c.pins, n)
	}
	return first
}
