//go:build linux

package gpio

import (
	"fmt"

	rpio "github.com/stianeikeland/go-rpio/v4"
)

// RPIOController drives lines through /dev/gpiomem.
type RPIOController struct {
	used map[int]rpio.Pin
}

// NewRPIOController maps the GPIO register block.
func NewRPIOController() (*RPIOController, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpiomem: %w", err)
	}
	return &RPIOController{used: make(map[int]rpio.Pin)}, nil
}

// SetDirection configures the pin. Outputs start low.
func (c *RPIOController) SetDirection(pin int, dir Direction) error {
	p := rpio.Pin(pin)
	if dir == Output {
		p.Output()
		p.Low()
	} else {
		p.Input()
	}
	c.used[pin] = p
	return nil
}

// Write drives the pin.
func (c *RPIOController) Write(pin int, high bool) error {
	p := rpio.Pin(pin)
	if high {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

// Read returns the pin level.
func (c *RPIOController) Read(pin int) (bool, error) {
	return rpio.Pin(pin).Read() == rpio.High, nil
}

// Close returns used pins to input with pull-down and unmaps the registers.
func (c *RPIOController) Close() error {
	for n, p := range c.used {
		p.Input()
		p.PullDown()
		delete(c.used, n)
	}
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close gpiomem: %w", err)
	}
	return nil
}
