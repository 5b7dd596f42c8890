package mmu

import "github.com/kestrelgb/gbcore/internal/types"

func (m *MMU) readIO(addr uint16) uint8 {
	switch addr {
	case types.P1:
		return m.Joypad.Read()
	case types.SB:
		return m.Serial.ReadSB()
	case types.SC:
		return m.Serial.ReadSC()
	case types.DIV:
		return m.Timer.ReadDIV()
	case types.TIMA:
		return m.Timer.ReadTIMA()
	case types.TMA:
		return m.Timer.ReadTMA()
	case types.TAC:
		return m.Timer.ReadTAC()
	case types.IF:
		return m.IRQ.ReadIF()

	case types.NR10:
		return m.APU.ReadNR10()
	case types.NR11:
		return m.APU.ReadNR11()
	case types.NR12:
		return m.APU.ReadNR12()
	case types.NR13:
		return m.APU.ReadNR13()
	case types.NR14:
		return m.APU.ReadNR14()
	case types.NR21:
		return m.APU.ReadNR21()
	case types.NR22:
		return m.APU.ReadNR22()
	case types.NR23:
		return m.APU.ReadNR23()
	case types.NR24:
		return m.APU.ReadNR24()
	case types.NR30:
		return m.APU.ReadNR30()
	case types.NR31:
		return m.APU.ReadNR31()
	case types.NR32:
		return m.APU.ReadNR32()
	case types.NR33:
		return m.APU.ReadNR33()
	case types.NR34:
		return m.APU.ReadNR34()
	case types.NR41:
		return m.APU.ReadNR41()
	case types.NR42:
		return m.APU.ReadNR42()
	case types.NR43:
		return m.APU.ReadNR43()
	case types.NR44:
		return m.APU.ReadNR44()
	case types.NR50:
		return m.APU.ReadNR50()
	case types.NR51:
		return m.APU.ReadNR51()
	case types.NR52:
		return m.APU.ReadNR52()

	case types.LCDC:
		return m.PPU.ReadLCDC()
	case types.STAT:
		return m.PPU.ReadSTAT()
	case types.SCY:
		return m.PPU.ReadSCY()
	case types.SCX:
		return m.PPU.ReadSCX()
	case types.LY:
		return m.PPU.ReadLY()
	case types.LYC:
		return m.PPU.ReadLYC()
	case types.DMA:
		return m.PPU.DMA().Read()
	case types.BGP:
		return m.PPU.ReadBGP()
	case types.OBP0:
		return m.PPU.ReadOBP0()
	case types.OBP1:
		return m.PPU.ReadOBP1()
	case types.WY:
		return m.PPU.ReadWY()
	case types.WX:
		return m.PPU.ReadWX()

	case types.KEY0:
		return 0xFF
	case types.KEY1:
		if !m.isCGB {
			return 0xFF
		}
		v := m.key1 & 0x01
		if m.doubleSpeed {
			v |= 0x80
		}
		return v | 0x7E
	case types.VBK:
		return m.PPU.ReadVBK()
	case types.BDIS:
		return 0xFF
	case types.HDMA5:
		return m.PPU.HDMA().ReadHDMA5()
	case types.RP:
		return 0xFF

	case types.BCPS:
		return m.PPU.ReadBGPS()
	case types.BCPD:
		return m.PPU.ReadBGPD()
	case types.OCPS:
		return m.PPU.ReadOCPS()
	case types.OCPD:
		return m.PPU.ReadOCPD()

	case types.SVBK:
		if !m.isCGB {
			return 0xFF
		}
		return m.wramBank | 0xF8

	default:
		if addr >= types.WaveRAMStart && addr <= types.WaveRAMEnd {
			return m.APU.ReadWaveRAM(addr)
		}
		return 0xFF
	}
}

func (m *MMU) writeIO(addr uint16, v uint8) {
	switch addr {
	case types.P1:
		m.Joypad.Write(v)
	case types.SB:
		m.Serial.WriteSB(v)
	case types.SC:
		m.Serial.WriteSC(v)
	case types.DIV:
		m.Timer.WriteDIV(v)
	case types.TIMA:
		m.Timer.WriteTIMA(v)
	case types.TMA:
		m.Timer.WriteTMA(v)
	case types.TAC:
		m.Timer.WriteTAC(v)
	case types.IF:
		m.IRQ.WriteIF(v)

	case types.NR10:
		m.APU.WriteNR10(v)
	case types.NR11:
		m.APU.WriteNR11(v)
	case types.NR12:
		m.APU.WriteNR12(v)
	case types.NR13:
		m.APU.WriteNR13(v)
	case types.NR14:
		m.APU.WriteNR14(v)
	case types.NR21:
		m.APU.WriteNR21(v)
	case types.NR22:
		m.APU.WriteNR22(v)
	case types.NR23:
		m.APU.WriteNR23(v)
	case types.NR24:
		m.APU.WriteNR24(v)
	case types.NR30:
		m.APU.WriteNR30(v)
	case types.NR31:
		m.APU.WriteNR31(v)
	case types.NR32:
		m.APU.WriteNR32(v)
	case types.NR33:
		m.APU.WriteNR33(v)
	case types.NR34:
		m.APU.WriteNR34(v)
	case types.NR41:
		m.APU.WriteNR41(v)
	case types.NR42:
		m.APU.WriteNR42(v)
	case types.NR43:
		m.APU.WriteNR43(v)
	case types.NR44:
		m.APU.WriteNR44(v)
	case types.NR50:
		m.APU.WriteNR50(v)
	case types.NR51:
		m.APU.WriteNR51(v)
	case types.NR52:
		m.APU.WriteNR52(v)

	case types.LCDC:
		m.PPU.WriteLCDC(v)
	case types.STAT:
		m.PPU.WriteSTAT(v)
	case types.SCY:
		m.PPU.WriteSCY(v)
	case types.SCX:
		m.PPU.WriteSCX(v)
	case types.LY:
		// LY is read-only on real hardware.
	case types.LYC:
		m.PPU.WriteLYC(v)
	case types.DMA:
		m.PPU.DMA().Write(v)
	case types.BGP:
		m.PPU.WriteBGP(v)
	case types.OBP0:
		m.PPU.WriteOBP0(v)
	case types.OBP1:
		m.PPU.WriteOBP1(v)
	case types.WY:
		m.PPU.WriteWY(v)
	case types.WX:
		m.PPU.WriteWX(v)

	case types.KEY0:
		// undocumented CGB compatibility-mode latch, read-only to software
	case types.KEY1:
		if m.isCGB {
			m.key1 = (m.key1 &^ 0x01) | (v & 0x01)
		}
	case types.VBK:
		m.PPU.WriteVBK(v)
	case types.BDIS:
		if v != 0 {
			m.FinishBoot()
		}
	case types.HDMA1:
		m.PPU.HDMA().WriteHDMA1(v)
	case types.HDMA2:
		m.PPU.HDMA().WriteHDMA2(v)
	case types.HDMA3:
		m.PPU.HDMA().WriteHDMA3(v)
	case types.HDMA4:
		m.PPU.HDMA().WriteHDMA4(v)
	case types.HDMA5:
		m.PPU.HDMA().WriteHDMA5(v)
	case types.RP:
		// infrared port, stubbed: link-cable/IR peer emulation is a non-goal

	case types.BCPS:
		m.PPU.WriteBGPS(v)
	case types.BCPD:
		m.PPU.WriteBGPD(v)
	case types.OCPS:
		m.PPU.WriteOCPS(v)
	case types.OCPD:
		m.PPU.WriteOCPD(v)

	case types.SVBK:
		if m.isCGB {
			v &= 0x07
			if v == 0 {
				v = 1
			}
			m.wramBank = v
		}

	default:
		if addr >= types.WaveRAMStart && addr <= types.WaveRAMEnd {
			m.APU.WriteWaveRAM(addr, v)
		}
	}
}
