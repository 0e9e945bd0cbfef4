package at45

import (
	"fmt"
	"sync/atomic"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// DefaultDevicePath is the spidev node used when none is given.
const DefaultDevicePath = "/dev/spidev0.0"

type Device struct {
	Flash *Flash

	port  spi.PortCloser
	clock physic.Frequency
	conn  spi.Conn
}

var hostInitialized atomic.Bool

// Open opens the spidev node at path and connects to the chip.
// The sysfs driver registers each /dev/spidevN.M node as a port alias,
// so path can be passed to the registry as-is.
func Open(path string) (*Device, error) {
	if hostInitialized.CompareAndSwap(false, true) {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("host initialization failed: %w", err)
		}
	}

	d := &Device{
		clock: 40 * physic.MegaHertz, // [AT45DB041E|10. AC Characteristics: fCAR2]
	}

	port, err := spireg.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI device %q: %w", path, err)
	}
	d.port = port

	if err := d.connectSPI(); err != nil {
		port.Close()
		return nil, err
	}

	d.Flash = NewFlash(d.conn)

	return d, nil
}

func (d *Device) Close() error {
	if d.port == nil {
		return nil
	}
	return d.port.Close()
}

func (d *Device) connectSPI() (err error) {
	// [AT45DB041E|5. Read Commands] mode 0 and mode 3 are supported.
	// spidev asserts CS for the duration of each Tx, so no GPIO handling
	// is needed here.
	mode := spi.Mode0
	d.conn, err = d.port.Connect(d.clock, mode, 8)
	if err != nil {
		return fmt.Errorf("SPI connection failed: %w", err)
	}
	return nil
}
