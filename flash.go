package at45

import (
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3/spi"
)

type Flash struct {
	conn spi.Conn
	id   uint32 // JEDEC ID of the flash chip
	pr   *chipParams
}

func NewFlash(conn spi.Conn) *Flash {
	return &Flash{conn: conn}
}

// Flash commands: [AT45DB041E|Command tables]
const (
	flashCmdReadID      = 0x9F
	flashCmdReadStatus  = 0xD7
	flashCmdPageSize256 = 0xA6 // "power of 2" binary page size
	flashCmdPageSize264 = 0xA7 // standard DataFlash page size
)

// pageSizeUnlock precedes the page-size opcode.
// [AT45DB041E|"Power of 2" Binary Page Size Option]
var pageSizeUnlock = [3]byte{0x3D, 0x2A, 0x80}

// Read commands are framed as a single full-duplex exchange: the opcode is
// clocked out while the chip drives nothing useful back, so the response
// starts one byte into the receive buffer.
const pipelineBytes = 1

// PageSize selects how pages are addressed. The value is the configuration
// opcode sent on the wire.
type PageSize byte

const (
	PageSize256 PageSize = flashCmdPageSize256 // 256-byte binary pages
	PageSize264 PageSize = flashCmdPageSize264 // 264-byte standard pages
)

func (p PageSize) String() string {
	switch p {
	case PageSize256:
		return "256"
	case PageSize264:
		return "264"
	}
	return fmt.Sprintf("PageSize(0x%02X)", byte(p))
}

// ParsePageSize maps a page size in bytes to its configuration opcode.
func ParsePageSize(n int) (PageSize, error) {
	switch n {
	case 256:
		return PageSize256, nil
	case 264:
		return PageSize264, nil
	}
	return 0, fmt.Errorf("invalid page size %d (supported: 256, 264)", n)
}

// ReadID returns the JEDEC ID of the flash chip and configures its parameters.
// It returns a non-empty name for known IDs. The ID is stored manufacturer
// byte lowest, so the AT45DB041E (1F 24 00 01 on the wire) reads 0x0100241F.
func (f *Flash) ReadID() (id uint32, name string, err error) {
	buf := make([]byte, pipelineBytes+4)
	buf[0] = flashCmdReadID

	if err = f.conn.Tx(buf, buf); err != nil {
		return 0, "", fmt.Errorf("read JEDEC ID: %w", err)
	}

	f.id = binary.LittleEndian.Uint32(buf[pipelineBytes:])
	if params, ok := knownChips[f.id]; ok {
		f.pr = &params
		name = params.name
	}
	return f.id, name, nil
}

// ReadStatusRegister reads the 16-bit status register, first wire byte in
// bits 15-8.
func (f *Flash) ReadStatusRegister() (StatusRegister, error) {
	buf := make([]byte, pipelineBytes+2)
	buf[0] = flashCmdReadStatus

	if err := f.conn.Tx(buf, buf); err != nil {
		return 0, fmt.Errorf("read status register: %w", err)
	}
	return StatusRegister(binary.BigEndian.Uint16(buf[pipelineBytes:])), nil
}

// SetPageSize reprograms the page-size configuration. The write is
// fire-and-forget: the chip applies it internally and does not acknowledge,
// so the status register is not guaranteed to reflect the new mode until
// SettleTime has elapsed.
func (f *Flash) SetPageSize(size PageSize) error {
	buf := []byte{pageSizeUnlock[0], pageSizeUnlock[1], pageSizeUnlock[2], byte(size)}
	if err := f.conn.Tx(buf, nil); err != nil {
		return fmt.Errorf("set page size to %s: %w", size, err)
	}
	return nil
}

// BusyWait waits for the flash to become ready by polling the status
// register's RDY bit with specified intervals, or until the timeout expires.
// Set timeout to 0 to wait indefinitely.
func (f *Flash) BusyWait(interval, timeout time.Duration) error {
	// Fast path
	if sr, err := f.ReadStatusRegister(); err == nil && sr.Ready() {
		return nil
	}

	timer := time.NewTimer(timeout)
	if timeout == 0 {
		timer.Stop() // disable timer for unconfigured timeout
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-timer.C:
			return nil
		case <-ticker.C:
			sr, err := f.ReadStatusRegister()
			if err != nil {
				return err
			}
			if sr.Ready() {
				return nil
			}
		}
	}
}
