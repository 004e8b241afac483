// Package gpio provides digital line I/O with hardware abstraction.
// Real implementations drive the Linux GPIO character device (gpiocdev),
// periph.io or /dev/gpiomem (rpio). The fake implementation allows testing
// without hardware.
package gpio

import "fmt"

// Direction is the configured direction of a line.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "in"
	case Output:
		return "out"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Controller sets, drives and reads individual digital lines.
// Pins are addressed by BCM number.
type Controller interface {
	// SetDirection configures a line as input or output.
	SetDirection(pin int, dir Direction) error

	// Write drives an output line high (true) or low (false).
	Write(pin int, high bool) error

	// Read returns the current level of a line, true = high.
	Read(pin int) (bool, error)

	// Close releases all lines.
	Close() error
}

// Default pin assignments (BCM numbering) for the converter's serial lines.
const (
	DefaultPinCLK  = 18
	DefaultPinMISO = 23
	DefaultPinMOSI = 24
	DefaultPinCS   = 25
)

// Backend names accepted by Open.
const (
	BackendGPIOCDev = "gpiocdev"
	BackendPeriph   = "periph"
	BackendRPIO     = "rpio"
)

// Open returns a hardware Controller for the named backend.
// chip is only used by the gpiocdev backend.
func Open(backend, chip string) (Controller, error) {
	var (
		c   Controller
		err error
	)
	switch backend {
	case BackendGPIOCDev:
		c, err = NewChipController(chip)
	case BackendPeriph:
		c, err = NewPeriphController()
	case BackendRPIO:
		c, err = NewRPIOController()
	default:
		return nil, fmt.Errorf("gpio: unknown backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
