package joypad

import (
	"testing"

	"github.com/kestrelgb/gbcore/internal/interrupts"
	"github.com/kestrelgb/gbcore/internal/types"
	"github.com/stretchr/testify/require"
)

func TestReadWithNoKeysSelectedReturnsAllOnes(t *testing.T) {
	irq := interrupts.NewController()
	s := New(irq)
	s.Write(0x00) // select neither directions nor buttons
	require.EqualValues(t, 0xCF, s.Read())
}

func TestKeyDownClearsTheMatchingBitWhenSelected(t *testing.T) {
	irq := interrupts.NewController()
	s := New(irq)
	s.Write(0x10) // select directions
	s.KeyDown(Right)
	require.Zero(t, s.Read()&0x01)
}

func TestKeyDownRequestsJoypadInterruptOnPressEdge(t *testing.T) {
	irq := interrupts.NewController()
	s := New(irq)
	s.Write(0x10)
	s.KeyDown(Up)
	require.NotZero(t, irq.IF&types.IntJoypad)
}

func TestKeyDownWithWrongGroupSelectedRequestsNoInterrupt(t *testing.T) {
	irq := interrupts.NewController()
	s := New(irq)
	s.Write(0x20) // buttons selected, not directions
	s.KeyDown(Up)
	require.Zero(t, irq.IF&types.IntJoypad)
}

func TestKeyUpSetsBitBack(t *testing.T) {
	irq := interrupts.NewController()
	s := New(irq)
	s.Write(0x10)
	s.KeyDown(Down)
	s.KeyUp(Down)
	require.NotZero(t, s.Read()&0x08)
}

func TestKeyDownSetsStopClear(t *testing.T) {
	irq := interrupts.NewController()
	s := New(irq)
	require.False(t, s.StopClear)
	s.KeyDown(A)
	require.True(t, s.StopClear)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	irq := interrupts.NewController()
	s := New(irq)
	s.Write(0x20)
	s.KeyDown(B)

	snap := s.Snapshot()
	s2 := New(irq)
	s2.Restore(snap)

	require.Equal(t, s.Read(), s2.Read())
}
