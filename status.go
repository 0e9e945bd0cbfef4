package at45

import (
	"fmt"
	"strings"
)

// StatusRegister represents the 16-bit status register of the flash chip,
// first status byte in bits 15-8. [AT45DB041E|Status Register Read]
//
//	Bit | Meaning
//	----+---------------------------------------------
//	15  | RDY: ready/busy
//	14  | Reserved
//	13  | EPE: erase/program error
//	12  | Reserved
//	11  | SLE: sector lockdown enabled
//	10  | PS2: program suspended while using Buffer 2
//	9   | PS1: program suspended while using Buffer 1
//	8   | ES: erase suspended
//	7   | RDY: ready/busy
//	6   | COMP: main memory/buffer compare result
//	5:2 | Density code
//	1   | PROTECT: sector protection enabled
//	0   | PAGE SIZE: 1 = 256-byte binary pages
type StatusRegister uint16

func (sr StatusRegister) Ready() bool             { return sr&(1<<15) != 0 }
func (sr StatusRegister) ProgramError() bool      { return sr&(1<<13) != 0 }
func (sr StatusRegister) LockdownEnabled() bool   { return sr&(1<<11) != 0 }
func (sr StatusRegister) Program2Suspended() bool { return sr&(1<<10) != 0 }
func (sr StatusRegister) Program1Suspended() bool { return sr&(1<<9) != 0 }
func (sr StatusRegister) EraseSuspended() bool    { return sr&(1<<8) != 0 }
func (sr StatusRegister) CompareMismatch() bool   { return sr&(1<<6) != 0 }
func (sr StatusRegister) Protected() bool         { return sr&(1<<1) != 0 }
func (sr StatusRegister) PageSize256() bool       { return sr&(1<<0) != 0 }

// statusBits describes every status bit, clear meaning first, set meaning
// second.
var statusBits = [16][2]string{
	0: {"Device is configured for standard DataFlash page size (264 bytes)",
		"Device is configured for 'power of 2' binary page size (256 bytes)"},
	1: {"Sector protection is disabled",
		"Sector protection is enabled"},
	2: {"Unknown density", "4-Mbit"},
	3: {"Unknown density", "4-Mbit"},
	4: {"Unknown density", "4-Mbit"},
	5: {"4-Mbit", "Unknown density"},
	6: {"Main memory page data matches buffer data",
		"Main memory page data does not match buffer data"},
	7: {"Device is busy with an internal operation",
		"Device is ready"},
	8: {"No sectors are erase suspended",
		"A sector is erase suspended"},
	9: {"No program operation has been suspended while using Buffer 1",
		"A sector is program suspended while using Buffer 1"},
	10: {"No program operation has been suspended while using Buffer 2",
		"A sector is program suspended while using Buffer 2"},
	11: {"Sector Lockdown command is disabled",
		"Sector Lockdown command is enabled"},
	12: {"Reserved", "Reserved"},
	13: {"Erase or program operation was successful",
		"Erase or program error detected"},
	14: {"Reserved", "Reserved"},
	15: {"Device is busy with an internal operation",
		"Device is ready"},
}

// Bit returns the raw value of the given bit, 0 or 1.
func (sr StatusRegister) Bit(bit int) int {
	return int(sr>>bit) & 1
}

// DescribeBit returns the human-readable meaning of the given bit at its
// current value.
func (sr StatusRegister) DescribeBit(bit int) string {
	return statusBits[bit][sr.Bit(bit)]
}

func (sr StatusRegister) String() string {
	b := fmt.Sprintf("%016b", uint16(sr))
	s := []string{}
	if sr.Ready() {
		s = append(s, "RDY")
	}
	if sr.ProgramError() {
		s = append(s, "EPE")
	}
	if sr.LockdownEnabled() {
		s = append(s, "SLE")
	}
	if sr.Program2Suspended() {
		s = append(s, "PS2")
	}
	if sr.Program1Suspended() {
		s = append(s, "PS1")
	}
	if sr.EraseSuspended() {
		s = append(s, "ES")
	}
	if sr.CompareMismatch() {
		s = append(s, "COMP")
	}
	if sr.Protected() {
		s = append(s, "PROT")
	}
	if sr.PageSize256() {
		s = append(s, "P2PS")
	}
	if len(s) == 0 {
		return b
	}
	return b + " " + strings.Join(s, ",")
}
