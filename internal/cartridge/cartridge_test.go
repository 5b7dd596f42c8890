package cartridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func blankROM(size int, kind, romSizeByte, ramSizeByte byte) []byte {
	rom := make([]byte, size)
	copy(rom[0x134:], "TESTGAME")
	rom[0x147] = kind
	rom[0x148] = romSizeByte
	rom[0x149] = ramSizeByte
	return rom
}

func TestLoadRejectsUndersizedROM(t *testing.T) {
	_, err := Load(make([]byte, 0x100))
	require.ErrorIs(t, err, ErrInvalidCartridge)
}

func TestLoadParsesTitleAndBatteryFlag(t *testing.T) {
	rom := blankROM(0x8000, 0x09, 0x00, 0x00) // ROM+RAM+BATTERY (no mapper)
	cart, err := Load(rom)
	require.NoError(t, err)
	require.Equal(t, "TESTGAME", cart.Header.Title)
	require.True(t, cart.HasBattery())
	require.False(t, cart.HasRTC())
}

func TestMBC3WithTimerReportsRTC(t *testing.T) {
	rom := blankROM(0x20000, 0x0F, 0x02, 0x00) // MBC3+TIMER+BATTERY
	cart, err := Load(rom)
	require.NoError(t, err)
	require.True(t, cart.HasRTC())
}

func TestMBC1RomBankZeroSelectRemapsToOne(t *testing.T) {
	rom := blankROM(0x40000, 0x01, 0x04, 0x00) // MBC1, 16 ROM banks
	cart, err := Load(rom)
	require.NoError(t, err)

	cart.MBC.WriteRomBank(0x2000, 0x00) // the documented 0x00->0x01 remap
	require.Equal(t, 1, cart.MBC.CurrentROMBank())

	cart.MBC.WriteRomBank(0x2000, 0x05)
	require.Equal(t, 5, cart.MBC.CurrentROMBank())
}

func TestMBC1RAMDisabledByDefault(t *testing.T) {
	rom := blankROM(0x40000, 0x03, 0x04, 0x02) // MBC1+RAM+BATTERY
	cart, err := Load(rom)
	require.NoError(t, err)

	cart.MBC.WriteRAM(0xA000, 0x42)
	require.EqualValues(t, 0xFF, cart.MBC.ReadRAM(0xA000))

	cart.MBC.WriteEnable(0x0000, 0x0A)
	cart.MBC.WriteRAM(0xA000, 0x42)
	require.EqualValues(t, 0x42, cart.MBC.ReadRAM(0xA000))
}

func TestMBC2RAMIsHalfByteWide(t *testing.T) {
	rom := blankROM(0x8000, 0x05, 0x00, 0x00) // MBC2
	cart, err := Load(rom)
	require.NoError(t, err)

	cart.MBC.WriteEnable(0x0000, 0x0A)
	cart.MBC.WriteRAM(0xA000, 0xFF)
	require.EqualValues(t, 0x0F, cart.MBC.ReadRAM(0xA000)&0x0F) // only the low nibble is wired
}

func TestBankStateRoundTripAcrossVariants(t *testing.T) {
	cases := []struct {
		name string
		rom  []byte
	}{
		{"mbc1", blankROM(0x40000, 0x01, 0x04, 0x00)},
		{"mbc2", blankROM(0x8000, 0x05, 0x00, 0x00)},
		{"mbc3", blankROM(0x20000, 0x13, 0x02, 0x00)},
		{"mbc5", blankROM(0x40000, 0x19, 0x04, 0x00)},
		{"none", blankROM(0x8000, 0x00, 0x00, 0x00)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cart, err := Load(tc.rom)
			require.NoError(t, err)

			cart.MBC.WriteRomBank(0x2000, 0x02)
			blob := cart.MBC.BankState()
			before := cart.MBC.CurrentROMBank()

			require.NoError(t, cart.MBC.RestoreBankState(blob))
			require.Equal(t, before, cart.MBC.CurrentROMBank())
		})
	}
}
