// Package gameboy wires every hardware component into the Core the
// reference host drives: cartridge load, the cycle-budgeted Run loop,
// input, speed control, and save-state/SRAM/RTC persistence.
package gameboy

import (
	"fmt"

	"github.com/kestrelgb/gbcore/internal/apu"
	"github.com/kestrelgb/gbcore/internal/cartridge"
	"github.com/kestrelgb/gbcore/internal/cpu"
	"github.com/kestrelgb/gbcore/internal/interrupts"
	"github.com/kestrelgb/gbcore/internal/joypad"
	"github.com/kestrelgb/gbcore/internal/mmu"
	"github.com/kestrelgb/gbcore/internal/ppu"
	"github.com/kestrelgb/gbcore/internal/scheduler"
	"github.com/kestrelgb/gbcore/internal/serial"
	"github.com/kestrelgb/gbcore/internal/state"
	"github.com/kestrelgb/gbcore/internal/timer"
	"github.com/kestrelgb/gbcore/internal/types"
	"github.com/kestrelgb/gbcore/pkg/log"
)

const (
	masterClockHz  = 4194304
	frameRateHz    = 60
	audioSampleHz  = 44100
)

// Config is immutable for the lifetime of a Core; it is threaded
// through NewCore rather than read from package globals.
type Config struct {
	// Model is the preferred machine mode; ModelAuto picks CGB for a
	// color-compatible cartridge and DMG otherwise.
	Model types.Model

	// BootROM is an optional real boot ROM image (256 bytes DMG, 2304
	// bytes CGB). If nil, Start injects the documented post-boot
	// register values directly.
	BootROM []byte

	// Speed is the initial Run-budget multiplier (1.0 = native speed).
	Speed float64

	// AudioSampleRate configures the APU resampler; 0 defaults to 44100.
	AudioSampleRate int

	// Debug selects a debug-level logger when Log is nil. The core
	// emits no opcode-level tracing.
	Debug bool

	// Log overrides the default logger. If nil, one is constructed
	// from Debug.
	Log log.Logger
}

// HostCallbacks are the host-supplied side effects a Core invokes
// while running. All fields are optional; a nil callback is simply
// skipped.
type HostCallbacks struct {
	// DrawFrame delivers one completed frame as packed RGBA8888 bytes,
	// row-major, w*h*4 long.
	DrawFrame func(rgba []byte, w, h int)

	// WriteAudio delivers interleaved stereo float32 samples
	// accumulated since the previous call.
	WriteAudio func(stereo []float32)

	// RemainingBuffer reports the host audio sink's buffered sample
	// count and whether it is starved; Run uses this to extend its
	// cycle budget via internal/scheduler on underrun.
	RemainingBuffer func() (int, bool)

	// LoadSRAMState and LoadRTCState let InsertCartridge seed
	// battery-backed RAM/RTC from host-persisted storage keyed by
	// cartridge title, without the host needing to call LoadSRAM/
	// LoadRTC itself after InsertCartridge returns.
	LoadSRAMState func(title string) ([]byte, bool)
	LoadRTCState  func(title string) ([]byte, bool)

	// OnMBCWrite fires after any write that can dirty battery-backed
	// RAM or RTC state, so a host can schedule a save without polling.
	OnMBCWrite func()
}

// Core wires the CPU, MMU, and every peripheral together and exposes
// the host-facing API: insert a cartridge, run cycle-budgeted
// iterations, feed input, and persist/restore state.
type Core struct {
	cfg Config
	cb  HostCallbacks
	log log.Logger

	cpu    *cpu.CPU
	mmu    *mmu.MMU
	ppu    *ppu.PPU
	apu    *apu.APU
	timer  *timer.Controller
	serial *serial.Controller
	joypad *joypad.State
	irq    *interrupts.Controller
	cart   *cartridge.Cartridge

	budget *scheduler.Budget

	started bool
}

// NewCore constructs a Core. The returned Core has no cartridge
// inserted yet; call InsertCartridge then Start before Run.
func NewCore(cfg Config, cb HostCallbacks) *Core {
	if cfg.Speed <= 0 {
		cfg.Speed = 1
	}
	if cfg.AudioSampleRate <= 0 {
		cfg.AudioSampleRate = audioSampleHz
	}
	logger := cfg.Log
	if logger == nil {
		if cfg.Debug {
			logger = log.NewDebug()
		} else {
			logger = log.New()
		}
	}
	c := &Core{
		cfg:    cfg,
		cb:     cb,
		log:    logger,
		budget: scheduler.NewBudget(masterClockHz, frameRateHz),
	}
	c.budget.SetSpeed(cfg.Speed)
	return c
}

// InsertCartridge parses rom, builds the matching MBC, and wires every
// peripheral. It returns a wrapped cartridge.ErrInvalidCartridge on a
// malformed header or unsupported size byte; the Core is left without
// a usable cartridge in that case.
func (c *Core) InsertCartridge(rom []byte) error {
	cart, err := cartridge.Load(rom)
	if err != nil {
		return fmt.Errorf("loading cartridge: %w", err)
	}
	c.cart = cart

	mode := cart.Mode(c.cfg.Model)
	isCGB := mode.IsCGB()

	c.irq = interrupts.NewController()
	c.ppu = ppu.New(c.irq, isCGB)
	c.apu = apu.New(c.cfg.AudioSampleRate)
	c.apu.WriteAudio = c.cb.WriteAudio
	c.timer = timer.NewController(c.irq)
	c.serial = serial.NewController(c.irq)
	c.joypad = joypad.New(c.irq)
	c.mmu = mmu.New(c.cart, c.ppu, c.apu, c.timer, c.serial, c.joypad, c.irq, isCGB, c.cfg.BootROM, c.log)
	c.mmu.OnCartWrite = c.cb.OnMBCWrite
	c.cpu = cpu.New(c.mmu)

	c.log.Infof("cartridge %q loaded: kind=%d mode=%s battery=%v rtc=%v",
		cart.Header.Title, cart.Header.Kind, mode, cart.HasBattery(), cart.HasRTC())

	if c.cb.LoadSRAMState != nil && cart.HasBattery() {
		if data, ok := c.cb.LoadSRAMState(cart.Header.Title); ok {
			if err := c.LoadSRAM(data); err != nil {
				c.log.Warnf("discarding saved SRAM for %q: %v", cart.Header.Title, err)
			}
		}
	}
	if c.cb.LoadRTCState != nil && cart.HasRTC() {
		if data, ok := c.cb.LoadRTCState(cart.Header.Title); ok {
			if err := c.LoadRTC(data); err != nil {
				c.log.Warnf("discarding saved RTC for %q: %v", cart.Header.Title, err)
			}
		}
	}
	return nil
}

// dmgPostBootIO is the documented state of the I/O register block a
// real DMG boot ROM leaves behind just before jumping to 0x0100. A
// supplied BootROM produces the same values by actually executing, so
// this table is only applied when BootROM is nil.
var dmgPostBootIO = []struct {
	addr uint16
	v    uint8
}{
	{0xFF05, 0x00}, {0xFF06, 0x00}, {0xFF07, 0x00},
	{0xFF10, 0x80}, {0xFF11, 0xBF}, {0xFF12, 0xF3}, {0xFF14, 0xBF},
	{0xFF16, 0x3F}, {0xFF17, 0x00}, {0xFF19, 0xBF},
	{0xFF1A, 0x7F}, {0xFF1B, 0xFF}, {0xFF1C, 0x9F}, {0xFF1E, 0xBF},
	{0xFF20, 0xFF}, {0xFF21, 0x00}, {0xFF22, 0x00}, {0xFF23, 0xBF},
	{0xFF24, 0x77}, {0xFF25, 0xF3}, {0xFF26, 0xF1},
	{0xFF40, 0x91}, {0xFF42, 0x00}, {0xFF43, 0x00}, {0xFF45, 0x00},
	{0xFF47, 0xFC}, {0xFF48, 0xFF}, {0xFF49, 0xFF},
	{0xFF4A, 0x00}, {0xFF4B, 0x00},
}

// Start brings the machine out of reset: it runs the supplied boot
// ROM from 0x0000, or, if none was configured, injects the documented
// post-boot register state directly and jumps to 0x0100.
func (c *Core) Start() error {
	if c.cart == nil {
		return fmt.Errorf("gameboy: Start called before InsertCartridge")
	}
	if c.cfg.BootROM == nil {
		isCGB := c.cart.Mode(c.cfg.Model).IsCGB()
		c.cpu.InjectPostBoot(isCGB)
		for _, io := range dmgPostBootIO {
			c.mmu.Write(io.addr, io.v)
		}
		c.mmu.FinishBoot()
	}
	c.started = true
	return nil
}

// SetSpeed rescales the per-Run cycle budget (1.0 = native speed) and
// the APU resampler so pitch stays correct at non-1x speeds.
func (c *Core) SetSpeed(multiplier float64) {
	c.budget.SetSpeed(multiplier)
	if c.apu != nil {
		c.apu.SetSpeed(multiplier)
	}
}

// KeyDown presses a joypad.Right..joypad.Start key index.
func (c *Core) KeyDown(idx int) { c.joypad.KeyDown(idx) }

// KeyUp releases a joypad.Right..joypad.Start key index.
func (c *Core) KeyUp(idx int) { c.joypad.KeyUp(idx) }

// Run advances the emulation by one host iteration's cycle budget,
// delivering at most one completed frame via DrawFrame and any
// accumulated audio via WriteAudio, and returns the number of cycles
// actually advanced.
func (c *Core) Run() int {
	underrun := false
	if c.cb.RemainingBuffer != nil {
		_, underrun = c.cb.RemainingBuffer()
	}
	c.budget.Begin(underrun)

	var advanced uint32
	for !c.budget.Done() {
		cycles := c.cpu.Step()
		advanced += cycles
		if c.budget.Advance(cycles) {
			break
		}
	}
	if rtc := c.cart.MBC.RTC(); rtc != nil {
		rtcCycles := advanced
		if c.mmu.IsDoubleSpeed() {
			rtcCycles /= 2 // the RTC runs on real time, not the CPU clock
		}
		rtc.Tick(rtcCycles)
	}

	if c.ppu.HasFrame() {
		if c.cb.DrawFrame != nil {
			c.cb.DrawFrame(c.frameRGBA(), ppu.ScreenWidth, ppu.ScreenHeight)
		}
		c.ppu.ClearFrame()
	}
	c.apu.Flush()

	return int(advanced)
}

// frameRGBA packs the PPU's 0xRRGGBB framebuffer into row-major
// RGBA8888 bytes for the host to blit.
func (c *Core) frameRGBA() []byte {
	out := make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4)
	i := 0
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			px := c.ppu.Framebuffer[y][x]
			out[i+0] = byte(px >> 16)
			out[i+1] = byte(px >> 8)
			out[i+2] = byte(px)
			out[i+3] = 0xFF
			i += 4
		}
	}
	return out
}

// SaveState captures every component's state into a checksummed blob.
func (c *Core) SaveState() ([]byte, error) {
	snap := state.Capture(c.components())
	return state.Encode(snap)
}

// LoadState restores a blob previously returned by SaveState.
func (c *Core) LoadState(v []byte) error {
	snap, err := state.Decode(v)
	if err != nil {
		return err
	}
	return state.Apply(c.components(), snap)
}

// SaveSRAM returns the cartridge's battery-backed RAM, checksummed,
// and whether the cartridge has any (ok is false for ROM-only/no
// battery cartridges).
func (c *Core) SaveSRAM() ([]byte, bool) {
	if c.cart == nil || !c.cart.HasBattery() {
		return nil, false
	}
	return state.EncodeSRAM(c.cart.MBC.RAM()), true
}

// LoadSRAM restores battery-backed RAM previously returned by SaveSRAM.
func (c *Core) LoadSRAM(v []byte) error {
	ram, err := state.DecodeSRAM(v)
	if err != nil {
		return err
	}
	c.cart.MBC.LoadRAM(ram)
	return nil
}

// SaveRTC returns the MBC3 real-time clock state, checksummed, and
// whether the cartridge has one.
func (c *Core) SaveRTC() ([]byte, bool) {
	if c.cart == nil || !c.cart.HasRTC() {
		return nil, false
	}
	return mustEncodeRTC(c.cart.MBC.RTC().Snapshot()), true
}

// LoadRTC restores RTC state previously returned by SaveRTC.
func (c *Core) LoadRTC(v []byte) error {
	rtc := c.cart.MBC.RTC()
	if rtc == nil {
		return fmt.Errorf("gameboy: cartridge has no RTC")
	}
	snap, err := state.DecodeRTC(v)
	if err != nil {
		return err
	}
	rtc.Restore(snap)
	return nil
}

func mustEncodeRTC(s cartridge.Snapshot) []byte {
	v, err := state.EncodeRTC(s)
	if err != nil {
		// Snapshot is a plain value struct; gob-encoding it cannot fail.
		panic(err)
	}
	return v
}

func (c *Core) components() state.Components {
	return state.Components{
		CPU: c.cpu, PPU: c.ppu, APU: c.apu, MMU: c.mmu,
		Timer: c.timer, Serial: c.serial, Joypad: c.joypad,
		Interrupts: c.irq, Cart: c.cart,
	}
}
