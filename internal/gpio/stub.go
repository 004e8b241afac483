//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// ChipController is not available on non-Linux platforms.
type ChipController struct{}

// NewChipController returns an error on non-Linux platforms.
func NewChipController(name string) (*ChipController, error) {
	return nil, errUnsupported
}

func (c *ChipController) SetDirection(pin int, dir Direction) error { return errUnsupported }
func (c *ChipController) Write(pin int, high bool) error            { return errUnsupported }
func (c *ChipController) Read(pin int) (bool, error)                { return false, errUnsupported }
func (c *ChipController) Close() error                              { return nil }

// RPIOController is not available on non-Linux platforms.
type RPIOController struct{}

// NewRPIOController returns an error on non-Linux platforms.
func NewRPIOController() (*RPIOController, error) {
	return nil, errUnsupported
}

func (c *RPIOController) SetDirection(pin int, dir Direction) error { return errUnsupported }
func (c *RPIOController) Write(pin int, high bool) error            { return errUnsupported }
func (c *RPIOController) Read(pin int) (bool, error)                { return false, errUnsupported }
func (c *RPIOController) Close() error                              { return nil }
