// Package state aggregates every component's save-state snapshot into
// a single serializable blob and back, used by internal/gameboy's
// SaveState/LoadState. SRAM (the MBC's raw RAM bytes) and RTC (its
// Snapshot/Restore) are encoded separately (SaveSRAM/SaveRTC), since a host typically persists those to a
// different file than a full save state.
package state

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/kestrelgb/gbcore/internal/apu"
	"github.com/kestrelgb/gbcore/internal/cartridge"
	"github.com/kestrelgb/gbcore/internal/cpu"
	"github.com/kestrelgb/gbcore/internal/interrupts"
	"github.com/kestrelgb/gbcore/internal/joypad"
	"github.com/kestrelgb/gbcore/internal/mmu"
	"github.com/kestrelgb/gbcore/internal/ppu"
	"github.com/kestrelgb/gbcore/internal/serial"
	"github.com/kestrelgb/gbcore/internal/timer"
)

// magic tags the blob format; bumped if a future field layout changes
// the gob schema in an incompatible way.
const magic = "GBCORE1"

// ErrCorrupt wraps every reason Decode rejects a blob: too short, a
// checksum mismatch, or a gob decode failure. A foreign or damaged
// save state returns this rather than panicking.
var ErrCorrupt = errors.New("corrupt save state")

// Snapshot is the complete, decoded state of one emulation session.
type Snapshot struct {
	CPU          cpu.Snapshot
	PPU          ppu.Snapshot
	APU          apu.Snapshot
	MMU          mmu.Snapshot
	Timer        timer.Snapshot
	Serial       serial.Snapshot
	Joypad       joypad.Snapshot
	Interrupts   interrupts.Snapshot
	MBCBankState []byte
	RTC          *cartridge.Snapshot
}

// Components bundles pointers to every live component a Core owns, so
// Capture/Apply can read and write them without internal/gameboy
// having to know the blob layout.
type Components struct {
	CPU        *cpu.CPU
	PPU        *ppu.PPU
	APU        *apu.APU
	MMU        *mmu.MMU
	Timer      *timer.Controller
	Serial     *serial.Controller
	Joypad     *joypad.State
	Interrupts *interrupts.Controller
	Cart       *cartridge.Cartridge
}

// Capture reads every component's current state into a Snapshot.
func Capture(c Components) Snapshot {
	s := Snapshot{
		CPU:          c.CPU.Snapshot(),
		PPU:          c.PPU.Snapshot(),
		APU:          c.APU.Snapshot(),
		MMU:          c.MMU.Snapshot(),
		Timer:        c.Timer.Snapshot(),
		Serial:       c.Serial.Snapshot(),
		Joypad:       c.Joypad.Snapshot(),
		Interrupts:   c.Interrupts.Snapshot(),
		MBCBankState: c.Cart.MBC.BankState(),
	}
	if rtc := c.Cart.MBC.RTC(); rtc != nil {
		snap := rtc.Snapshot()
		s.RTC = &snap
	}
	return s
}

// Apply writes a Snapshot back into every live component.
func Apply(c Components, s Snapshot) error {
	c.CPU.Restore(s.CPU)
	c.PPU.Restore(s.PPU)
	c.APU.Restore(s.APU)
	c.MMU.Restore(s.MMU)
	c.Timer.Restore(s.Timer)
	c.Serial.Restore(s.Serial)
	c.Joypad.Restore(s.Joypad)
	c.Interrupts.Restore(s.Interrupts)
	if err := c.Cart.MBC.RestoreBankState(s.MBCBankState); err != nil {
		return fmt.Errorf("restoring MBC banking state: %w", err)
	}
	if s.RTC != nil {
		if rtc := c.Cart.MBC.RTC(); rtc != nil {
			rtc.Restore(*s.RTC)
		}
	}
	return nil
}

// Encode gob-encodes s and appends an xxhash checksum of the payload,
// so Decode can reject a truncated or foreign blob before gob ever
// sees it.
func Encode(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(magic)
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("encoding save state: %w", err)
	}
	payload := buf.Bytes()
	sum := xxhash.Sum64(payload)
	out := make([]byte, len(payload)+8)
	copy(out, payload)
	binary.LittleEndian.PutUint64(out[len(payload):], sum)
	return out, nil
}

// Decode verifies the checksum trailer and gob-decodes the payload
// into a Snapshot.
func Decode(v []byte) (Snapshot, error) {
	if len(v) < len(magic)+8 {
		return Snapshot{}, fmt.Errorf("%w: truncated", ErrCorrupt)
	}
	payload := v[:len(v)-8]
	wantSum := binary.LittleEndian.Uint64(v[len(v)-8:])
	if xxhash.Sum64(payload) != wantSum {
		return Snapshot{}, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	if !bytes.HasPrefix(payload, []byte(magic)) {
		return Snapshot{}, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(payload[len(magic):])).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return s, nil
}

// EncodeSRAM and DecodeSRAM wrap a cartridge's raw battery-backed RAM
// with the same checksum trailer, for Core.SaveSRAM/LoadSRAM.
func EncodeSRAM(ram []byte) []byte {
	sum := xxhash.Sum64(ram)
	out := make([]byte, len(ram)+8)
	copy(out, ram)
	binary.LittleEndian.PutUint64(out[len(ram):], sum)
	return out
}

func DecodeSRAM(v []byte) ([]byte, error) {
	if len(v) < 8 {
		return nil, fmt.Errorf("%w: truncated", ErrCorrupt)
	}
	payload := v[:len(v)-8]
	wantSum := binary.LittleEndian.Uint64(v[len(v)-8:])
	if xxhash.Sum64(payload) != wantSum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	return payload, nil
}

// EncodeRTC and DecodeRTC serialize a standalone RTC snapshot, for
// Core.SaveRTC/LoadRTC.
func EncodeRTC(s cartridge.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("encoding RTC state: %w", err)
	}
	payload := buf.Bytes()
	sum := xxhash.Sum64(payload)
	out := make([]byte, len(payload)+8)
	copy(out, payload)
	binary.LittleEndian.PutUint64(out[len(payload):], sum)
	return out, nil
}

func DecodeRTC(v []byte) (cartridge.Snapshot, error) {
	if len(v) < 8 {
		return cartridge.Snapshot{}, fmt.Errorf("%w: truncated", ErrCorrupt)
	}
	payload := v[:len(v)-8]
	wantSum := binary.LittleEndian.Uint64(v[len(v)-8:])
	if xxhash.Sum64(payload) != wantSum {
		return cartridge.Snapshot{}, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	var s cartridge.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&s); err != nil {
		return cartridge.Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return s, nil
}
