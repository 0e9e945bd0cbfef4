package at45

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/spi"
)

// fakeConn scripts SPI exchanges: each Tx must match the expected TX bytes
// and gets the scripted RX bytes copied back.
type fakeConn struct {
	t         *testing.T
	exchanges []exchange
	err       error
}

type exchange struct {
	tx []byte
	rx []byte
}

func (c *fakeConn) Tx(w, r []byte) error {
	c.t.Helper()
	if c.err != nil {
		return c.err
	}
	if len(c.exchanges) == 0 {
		c.t.Fatalf("unexpected exchange: TX % X", w)
	}
	e := c.exchanges[0]
	c.exchanges = c.exchanges[1:]
	if !bytes.Equal(w, e.tx) {
		c.t.Fatalf("TX = % X, want % X", w, e.tx)
	}
	if r == nil {
		if e.rx != nil {
			c.t.Fatalf("write-only exchange, but % X was scripted for RX", e.rx)
		}
		return nil
	}
	copy(r, e.rx)
	return nil
}

func (c *fakeConn) TxPackets(p []spi.Packet) error { return errors.New("not implemented") }
func (c *fakeConn) String() string                 { return "fake" }
func (c *fakeConn) Duplex() conn.Duplex            { return conn.Full }

func TestReadID(t *testing.T) {
	c := &fakeConn{t: t, exchanges: []exchange{
		{tx: []byte{0x9F, 0, 0, 0, 0}, rx: []byte{0, 0x1F, 0x24, 0x00, 0x01}},
	}}
	f := NewFlash(c)

	id, name, err := f.ReadID()
	if err != nil {
		t.Fatalf("ReadID failed: %v", err)
	}
	if id != 0x0100241F {
		t.Errorf("id = 0x%08X, want 0x0100241F", id)
	}
	if name != "Adesto AT45DB041E" {
		t.Errorf("name = %q, want %q", name, "Adesto AT45DB041E")
	}
}

func TestReadIDUnknownChip(t *testing.T) {
	c := &fakeConn{t: t, exchanges: []exchange{
		{tx: []byte{0x9F, 0, 0, 0, 0}, rx: []byte{0, 0xEF, 0x40, 0x18, 0x00}},
	}}
	f := NewFlash(c)

	id, name, err := f.ReadID()
	if err != nil {
		t.Fatalf("ReadID failed: %v", err)
	}
	if name != "" {
		t.Errorf("name = %q, want empty for unknown id 0x%08X", name, id)
	}
}

func TestReadIDTransferError(t *testing.T) {
	c := &fakeConn{t: t, err: errors.New("ioctl failed")}
	f := NewFlash(c)

	if _, _, err := f.ReadID(); err == nil {
		t.Fatal("ReadID did not propagate the transfer error")
	}
}

func TestReadStatusRegister(t *testing.T) {
	c := &fakeConn{t: t, exchanges: []exchange{
		{tx: []byte{0xD7, 0, 0}, rx: []byte{0, 0x93, 0x80}},
	}}
	f := NewFlash(c)

	sr, err := f.ReadStatusRegister()
	if err != nil {
		t.Fatalf("ReadStatusRegister failed: %v", err)
	}
	if sr != 0x9380 {
		t.Errorf("status = 0x%04X, want 0x9380", uint16(sr))
	}
}

func TestReadStatusRegisterIdempotent(t *testing.T) {
	status := exchange{tx: []byte{0xD7, 0, 0}, rx: []byte{0, 0x2C, 0x80}}
	c := &fakeConn{t: t, exchanges: []exchange{status, status}}
	f := NewFlash(c)

	first, err := f.ReadStatusRegister()
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	second, err := f.ReadStatusRegister()
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if first != second {
		t.Errorf("status changed between reads: 0x%04X != 0x%04X", uint16(first), uint16(second))
	}
}

func TestSetPageSize(t *testing.T) {
	tests := []struct {
		size PageSize
		tx   []byte
	}{
		{PageSize256, []byte{0x3D, 0x2A, 0x80, 0xA6}},
		{PageSize264, []byte{0x3D, 0x2A, 0x80, 0xA7}},
	}
	for _, tt := range tests {
		t.Run(tt.size.String(), func(t *testing.T) {
			c := &fakeConn{t: t, exchanges: []exchange{{tx: tt.tx}}}
			f := NewFlash(c)

			if err := f.SetPageSize(tt.size); err != nil {
				t.Fatalf("SetPageSize(%s) failed: %v", tt.size, err)
			}
			if len(c.exchanges) != 0 {
				t.Error("expected exchange did not happen")
			}
		})
	}
}

func TestSetPageSizeTransferError(t *testing.T) {
	c := &fakeConn{t: t, err: errors.New("ioctl failed")}
	f := NewFlash(c)

	if err := f.SetPageSize(PageSize256); err == nil {
		t.Fatal("SetPageSize did not propagate the transfer error")
	}
}

func TestParsePageSize(t *testing.T) {
	tests := []struct {
		n    int
		want PageSize
		ok   bool
	}{
		{256, PageSize256, true},
		{264, PageSize264, true},
		{0, 0, false},
		{512, 0, false},
	}
	for _, tt := range tests {
		got, err := ParsePageSize(tt.n)
		if tt.ok != (err == nil) {
			t.Errorf("ParsePageSize(%d) error = %v, want ok = %v", tt.n, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParsePageSize(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestBusyWaitReady(t *testing.T) {
	c := &fakeConn{t: t, exchanges: []exchange{
		{tx: []byte{0xD7, 0, 0}, rx: []byte{0, 0x9C, 0x80}}, // RDY set
	}}
	f := NewFlash(c)

	if err := f.BusyWait(time.Millisecond, time.Second); err != nil {
		t.Fatalf("BusyWait failed: %v", err)
	}
	if len(c.exchanges) != 0 {
		t.Error("BusyWait did not poll the status register")
	}
}

func TestBusyWaitPollsUntilReady(t *testing.T) {
	busy := exchange{tx: []byte{0xD7, 0, 0}, rx: []byte{0, 0x1C, 0x00}}
	ready := exchange{tx: []byte{0xD7, 0, 0}, rx: []byte{0, 0x9C, 0x80}}
	c := &fakeConn{t: t, exchanges: []exchange{busy, busy, ready}}
	f := NewFlash(c)

	if err := f.BusyWait(time.Millisecond, time.Second); err != nil {
		t.Fatalf("BusyWait failed: %v", err)
	}
	if len(c.exchanges) != 0 {
		t.Error("BusyWait stopped polling before the chip was ready")
	}
}

func TestSettleTime(t *testing.T) {
	f := NewFlash(&fakeConn{t: t})
	if f.SettleTime() <= 0 {
		t.Error("default settle time must be positive")
	}

	c := &fakeConn{t: t, exchanges: []exchange{
		{tx: []byte{0x9F, 0, 0, 0, 0}, rx: []byte{0, 0x1F, 0x24, 0x00, 0x01}},
	}}
	f = NewFlash(c)
	if _, _, err := f.ReadID(); err != nil {
		t.Fatalf("ReadID failed: %v", err)
	}
	if got, want := f.SettleTime(), knownChips[chipIDAT45DB041E].tSettle; got != want {
		t.Errorf("SettleTime = %v, want %v", got, want)
	}
}
