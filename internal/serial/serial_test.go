package serial

import (
	"testing"

	"github.com/kestrelgb/gbcore/internal/interrupts"
	"github.com/kestrelgb/gbcore/internal/types"
	"github.com/stretchr/testify/require"
)

func TestWriteSCWithInternalClockStartsTransfer(t *testing.T) {
	irq := interrupts.NewController()
	c := NewController(irq)

	c.WriteSC(0x81)
	require.EqualValues(t, 0xFF, c.ReadSC())
}

func TestWriteSCWithExternalClockDoesNotStartTransfer(t *testing.T) {
	irq := interrupts.NewController()
	c := NewController(irq)

	c.WriteSC(0x80) // bit0 clear: external clock, no peer attached
	c.Tick(8192 * 8)
	require.Zero(t, irq.IF&types.IntSerial)
}

func TestFullShiftRequestsInterruptAndClearsStartBit(t *testing.T) {
	irq := interrupts.NewController()
	c := NewController(irq)

	c.WriteSC(0x81)
	c.Tick(8192 * 8) // 8 bits at the normal-speed period

	require.NotZero(t, irq.IF&types.IntSerial)
	require.Zero(t, c.ReadSC()&0x80)
}

func TestFastModeUsesShorterShiftPeriod(t *testing.T) {
	irq := interrupts.NewController()
	c := NewController(irq)
	c.SetFastMode(true)

	c.WriteSC(0x81)
	c.Tick(1024 * 8) // 8 bits at the fast-mode period only

	require.NotZero(t, irq.IF&types.IntSerial)
}

func TestWriteSBIgnoredDuringTransfer(t *testing.T) {
	irq := interrupts.NewController()
	c := NewController(irq)
	c.WriteSB(0x01)
	c.WriteSC(0x81)

	c.WriteSB(0x99) // should be ignored while transferring
	require.NotEqualValues(t, 0x99, c.ReadSB())
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	irq := interrupts.NewController()
	c := NewController(irq)
	c.WriteSB(0x55)
	c.WriteSC(0x81)
	c.Tick(8192 * 3)

	snap := c.Snapshot()
	c2 := NewController(irq)
	c2.Restore(snap)

	require.Equal(t, c.Snapshot(), c2.Snapshot())
}
