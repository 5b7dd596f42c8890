// Command gbcore is the reference host for the emulator core: an
// ebiten window for video/input/audio, driven by internal/gameboy.Core
// through its HostCallbacks, with flags parsed by urfave/cli and ROM
// archives unpacked by archive/zip (.zip) or bodgit/sevenzip (.7z).
package main

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bodgit/sevenzip"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/urfave/cli"

	"github.com/kestrelgb/gbcore/internal/cartridge"
	"github.com/kestrelgb/gbcore/internal/gameboy"
	"github.com/kestrelgb/gbcore/internal/joypad"
	"github.com/kestrelgb/gbcore/internal/types"
	"github.com/kestrelgb/gbcore/pkg/log"
	"github.com/kestrelgb/gbcore/pkg/telemetry"
	"github.com/kestrelgb/gbcore/pkg/wavedump"
)

const (
	screenW, screenH = 160, 144
	sampleRate       = 44100
)

func main() {
	app := cli.NewApp()
	app.Name = "gbcore"
	app.Usage = "gbcore [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "Path to the ROM file (.gb, .gbc, .zip, .7z)"},
		cli.StringFlag{Name: "boot", Usage: "Path to a boot ROM to run before the cartridge"},
		cli.StringFlag{Name: "model", Value: "auto", Usage: "Model to emulate: auto, dmg, or cgb"},
		cli.IntFlag{Name: "scale", Value: 4, Usage: "Window scale factor"},
		cli.BoolFlag{Name: "debug", Usage: "Enable verbose core logging"},
		cli.BoolFlag{Name: "telemetry", Usage: "Serve a websocket debug feed on :6464"},
		cli.StringFlag{Name: "dump-wave", Usage: "Write a PNG of the first second of audio output to this path"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gbcore:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return fmt.Errorf("no ROM path provided")
		}
	}

	rom, err := loadROMFile(romPath)
	if err != nil {
		return fmt.Errorf("load ROM: %w", err)
	}

	var boot []byte
	if p := c.String("boot"); p != "" {
		if boot, err = os.ReadFile(p); err != nil {
			return fmt.Errorf("load boot ROM: %w", err)
		}
	}

	model := types.ModelAuto
	switch c.String("model") {
	case "dmg":
		model = types.ModelDMG
	case "cgb":
		model = types.ModelCGB
	}

	logger := log.New()
	if c.Bool("debug") {
		logger = log.NewDebug()
	}

	a := newApp(romPath, rom, boot, model, c.Int("scale"), logger)
	a.dumpWavePath = c.String("dump-wave")

	var hub *telemetry.Hub
	if c.Bool("telemetry") {
		hub = telemetry.NewHub()
		stop := make(chan struct{})
		go hub.Run(stop)
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", hub.Handler)
		go http.ListenAndServe(":6464", mux)
		a.telemetry = hub
	}

	ebiten.SetWindowTitle(a.title)
	ebiten.SetWindowSize(screenW*a.scale, screenH*a.scale)
	return ebiten.RunGame(a)
}

// loadROMFile reads romPath, transparently unpacking the first .gb/.gbc
// member of a .zip or .7z archive.
func loadROMFile(romPath string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(romPath))
	switch ext {
	case ".zip":
		zr, err := zip.OpenReader(romPath)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return readFirstROM(zipFiles(zr.File))
	case ".7z":
		sr, err := sevenzip.OpenReader(romPath)
		if err != nil {
			return nil, err
		}
		defer sr.Close()
		return readFirstROM(sevenZipFiles(sr.File))
	default:
		return os.ReadFile(romPath)
	}
}

type archiveEntry struct {
	name string
	open func() (io.ReadCloser, error)
}

func zipFiles(files []*zip.File) []archiveEntry {
	entries := make([]archiveEntry, len(files))
	for i, f := range files {
		f := f
		entries[i] = archiveEntry{name: f.Name, open: f.Open}
	}
	return entries
}

func sevenZipFiles(files []*sevenzip.File) []archiveEntry {
	entries := make([]archiveEntry, len(files))
	for i, f := range files {
		f := f
		entries[i] = archiveEntry{name: f.Name, open: f.Open}
	}
	return entries
}

func readFirstROM(entries []archiveEntry) ([]byte, error) {
	for _, e := range entries {
		ln := strings.ToLower(e.name)
		if strings.HasSuffix(ln, ".gb") || strings.HasSuffix(ln, ".gbc") {
			rc, err := e.open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("archive contains no .gb/.gbc ROM")
}

// app implements ebiten.Game, translating keyboard input to joypad
// presses and pulling frames/audio out of the core each tick.
type app struct {
	title string
	scale int

	core     *gameboy.Core
	romTitle string
	savePath string

	tex        *ebiten.Image
	frame      []byte
	frameMu    sync.Mutex
	audioCtx   *audio.Context
	audioPlay  *audio.Player
	stream     *pcmStream
	telemetry  *telemetry.Hub
	saveDirty  bool
	lastSave   time.Time

	dumpWavePath string
	waveSamples  wavedump.Samples
	waveDumped   bool
}

func newApp(romPath string, rom, boot []byte, model types.Model, scale int, logger log.Logger) *app {
	a := &app{title: "gbcore", scale: scale, savePath: romPath + ".sav"}
	if h, err := cartridge.ParseHeader(rom); err == nil {
		a.romTitle = h.Title
	}

	a.stream = &pcmStream{}
	a.audioCtx = audio.NewContext(sampleRate)

	a.core = gameboy.NewCore(gameboy.Config{
		Model: model, BootROM: boot, Speed: 1, AudioSampleRate: sampleRate, Log: logger,
	}, gameboy.HostCallbacks{
		DrawFrame: func(rgba []byte, w, h int) {
			a.frameMu.Lock()
			a.frame = append(a.frame[:0], rgba...)
			a.frameMu.Unlock()
		},
		WriteAudio: func(stereo []float32) {
			a.stream.push(stereo)
			a.collectWaveSamples(stereo)
		},
		LoadSRAMState: func(title string) ([]byte, bool) {
			b, err := os.ReadFile(a.savePath)
			if err != nil {
				return nil, false
			}
			return b, true
		},
		OnMBCWrite: func() { a.saveDirty = true },
	})

	if err := a.core.InsertCartridge(rom); err != nil {
		panic(fmt.Errorf("insert cartridge: %w", err))
	}
	if err := a.core.Start(); err != nil {
		panic(fmt.Errorf("start core: %w", err))
	}

	if p, err := a.audioCtx.NewPlayer(a.stream); err == nil {
		p.Play()
		a.audioPlay = p
	}
	return a
}

var keymap = map[ebiten.Key]int{
	ebiten.KeyArrowRight: joypad.Right, ebiten.KeyArrowLeft: joypad.Left,
	ebiten.KeyArrowUp: joypad.Up, ebiten.KeyArrowDown: joypad.Down,
	ebiten.KeyZ: joypad.A, ebiten.KeyX: joypad.B,
	ebiten.KeyEnter: joypad.Start, ebiten.KeyShiftRight: joypad.Select,
}

func (a *app) Update() error {
	for key, btn := range keymap {
		if ebiten.IsKeyPressed(key) {
			a.core.KeyDown(btn)
		} else {
			a.core.KeyUp(btn)
		}
	}

	a.core.Run()

	if a.saveDirty && time.Since(a.lastSave) > 2*time.Second {
		if blob, ok := a.core.SaveSRAM(); ok {
			_ = os.WriteFile(a.savePath, blob, 0o644)
		}
		a.saveDirty = false
		a.lastSave = time.Now()
	}
	return nil
}

// collectWaveSamples buffers the first second of mixed stereo output
// and dumps it to a.dumpWavePath as a waveform PNG via pkg/wavedump,
// once, when --dump-wave is set.
func (a *app) collectWaveSamples(stereo []float32) {
	if a.dumpWavePath == "" || a.waveDumped {
		return
	}
	a.waveSamples = append(a.waveSamples, stereo...)
	if len(a.waveSamples) < sampleRate*2 {
		return
	}
	f, err := os.Create(a.dumpWavePath)
	if err != nil {
		a.waveDumped = true
		return
	}
	defer f.Close()
	_ = wavedump.WriteWaveformPNG(f, a.romTitle, a.waveSamples, 1024, 400)
	a.waveDumped = true
}

func (a *app) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(screenW, screenH)
	}
	a.frameMu.Lock()
	if len(a.frame) == screenW*screenH*4 {
		a.tex.WritePixels(a.frame)
	}
	a.frameMu.Unlock()
	screen.DrawImage(a.tex, nil)
	ebitenutil.DebugPrintAt(screen, a.romTitle, 2, 2)
}

func (a *app) Layout(outsideWidth, outsideHeight int) (int, int) { return screenW, screenH }

// pcmStream is an io.Reader of little-endian int16 stereo frames, fed
// by WriteAudio from the emulation goroutine and drained by ebiten's
// audio player on its own goroutine.
type pcmStream struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *pcmStream) push(stereo []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range stereo {
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(int16(f*32767)))
		s.buf.Write(b[:])
	}
}

func (s *pcmStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf.Len() == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	return s.buf.Read(p)
}
