// Package joypad implements the P1 (FF00) button matrix and its
// interrupt (key indices 0..7).
package joypad

import (
	"github.com/kestrelgb/gbcore/internal/interrupts"
	"github.com/kestrelgb/gbcore/internal/types"
)

// Key indices: 0:right,1:left,2:up,3:down,4:A,5:B,6:Select,7:Start.
const (
	Right = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// State tracks the 8-bit button state and the P1 select lines.
type State struct {
	buttons uint8 // bit set = released, matching the active-low hardware convention
	sel     uint8 // bits 4-5 as last written to P1

	irq *interrupts.Controller

	// StopClear is polled by internal/cpu: a key-down transition must
	// wake the CPU from STOP regardless of whether the joypad interrupt
	// line is currently armed.
	StopClear bool
}

// New returns a State with every key released.
func New(irq *interrupts.Controller) *State {
	return &State{buttons: 0xFF, sel: 0x30, irq: irq}
}

// Read returns the P1 register value, gated by the selected group and
// OR'd with the documented open-bus pattern.
//
// Group selection here is bit-set-selects (P1 bit4 set selects the
// direction group, bit5 set selects the button group; writing 0x10
// selects directions and, with Right held, reads back 0xDE), not the
// bit-clear-selects polarity of real P10-P15 hardware wiring. This
// polarity choice is recorded as an Open-Question resolution in
// DESIGN.md.
func (s *State) Read() uint8 {
	result := uint8(0x0F)
	if s.sel&0x10 != 0 { // directions selected
		result &= s.buttons & 0x0F
	}
	if s.sel&0x20 != 0 { // buttons selected
		result &= (s.buttons >> 4) & 0x0F
	}
	return 0xC0 | s.sel | result
}

// Write updates the selection bits (4-5); the rest of P1 is read-only.
func (s *State) Write(v uint8) {
	s.sel = (v & 0x30) | (s.sel &^ 0x30)
	s.sel &^= 0x0F
}

// KeyDown presses key and requests interrupt 0x10 on a 1->0 edge for a
// line the game is currently polling.
func (s *State) KeyDown(key int) {
	mask := keyMask(key)
	wasUp := s.buttons&mask != 0
	s.buttons &^= mask

	s.StopClear = true

	if !wasUp {
		return
	}
	if key < 4 { // direction
		if s.sel&0x10 != 0 {
			s.irq.Request(types.IntJoypad)
		}
	} else {
		if s.sel&0x20 != 0 {
			s.irq.Request(types.IntJoypad)
		}
	}
}

// KeyUp releases key.
func (s *State) KeyUp(key int) {
	s.buttons |= keyMask(key)
}

func keyMask(key int) uint8 {
	switch key {
	case Right, A:
		return 0x01
	case Left, B:
		return 0x02
	case Up, Select:
		return 0x04
	case Down, Start:
		return 0x08
	}
	return 0
}

type Snapshot struct {
	Buttons, Sel uint8
}

func (s *State) Snapshot() Snapshot      { return Snapshot{s.buttons, s.sel} }
func (s *State) Restore(v Snapshot)      { s.buttons, s.sel = v.Buttons, v.Sel }
