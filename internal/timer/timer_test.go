package timer

import (
	"testing"

	"github.com/kestrelgb/gbcore/internal/interrupts"
	"github.com/kestrelgb/gbcore/internal/types"
	"github.com/stretchr/testify/require"
)

func TestDIVIncrementsEvery256Cycles(t *testing.T) {
	irq := interrupts.NewController()
	c := NewController(irq)

	c.Tick(256)
	require.EqualValues(t, 1, c.ReadDIV())
}

func TestWriteDIVResets(t *testing.T) {
	irq := interrupts.NewController()
	c := NewController(irq)

	c.Tick(512 + 100)
	require.NotZero(t, c.ReadDIV())
	c.WriteDIV(0x42) // any written value resets the counter's low byte; DIV (the high byte) keeps its value
	require.EqualValues(t, 0x0200, c.div)
}

func TestTIMAOverflowReloadsFromTMAAndRequestsInterrupt(t *testing.T) {
	irq := interrupts.NewController()
	c := NewController(irq)
	c.WriteTAC(0x05) // enabled, period 16
	c.WriteTMA(0x10)
	c.WriteTIMA(0xFF)

	c.Tick(16)

	require.EqualValues(t, 0x10, c.ReadTIMA())
	require.NotZero(t, irq.IF&types.IntTimer)
}

func TestTACDisabledNeverTicksTIMA(t *testing.T) {
	irq := interrupts.NewController()
	c := NewController(irq)
	c.WriteTAC(0x00) // disabled
	c.Tick(1024 * 4)
	require.Zero(t, c.ReadTIMA())
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	irq := interrupts.NewController()
	c := NewController(irq)
	c.WriteTAC(0x06)
	c.WriteTMA(0x80)
	c.Tick(300)

	snap := c.Snapshot()
	c2 := NewController(irq)
	c2.Restore(snap)

	require.Equal(t, c.ReadDIV(), c2.ReadDIV())
	require.Equal(t, c.ReadTIMA(), c2.ReadTIMA())
	require.Equal(t, c.ReadTMA(), c2.ReadTMA())
	require.Equal(t, c.ReadTAC(), c2.ReadTAC())
}
