// videobackend_ebiten.go - the windowed VideoOutput, backed by ebiten.
//
// Grounded on the shape of the deleted ebiten backend: a small ebiten.Game
// adapter owning one *ebiten.Image the framebuffer's scaled blit writes
// into every frame, with Draw doing a single unscaled image copy since the
// scaling already happened in scaledBlit.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// EbitenVideoOutput presents frames through an ebiten window. It satisfies
// both VideoOutput and ebiten.Game.
type EbitenVideoOutput struct {
	mu      sync.Mutex
	cfg     DisplayConfig
	surface *ebiten.Image
	started atomic.Bool
	frames  atomic.Uint64
	closeCh chan struct{}

	keyHandler   func(byte)
	mouseHandler func(x, y, buttons int)
	escapeHook   func()
}

// SetKeyHandler registers the byte sink fed by the console's printable and
// special-key input, mirroring the teacher backend's SetKeyHandler/
// emitByte/emitSeq shape.
func (e *EbitenVideoOutput) SetKeyHandler(fn func(byte)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keyHandler = fn
}

// SetMouseHandler registers the sink fed each frame with the cursor
// position and button mask.
func (e *EbitenVideoOutput) SetMouseHandler(fn func(x, y, buttons int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mouseHandler = fn
}

// SetEscapeHook registers the callback fired when Escape or Ctrl+Break is
// pressed, used to wire Keyboard.TriggerEscape without this file depending
// on *Interpreter directly.
func (e *EbitenVideoOutput) SetEscapeHook(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.escapeHook = fn
}

func (e *EbitenVideoOutput) emitByte(b byte) {
	e.mu.Lock()
	h := e.keyHandler
	e.mu.Unlock()
	if h != nil {
		h(b)
	}
}

func (e *EbitenVideoOutput) emitSeq(seq []byte) {
	for _, b := range seq {
		e.emitByte(b)
	}
}

func NewEbitenVideoOutput() *EbitenVideoOutput {
	return &EbitenVideoOutput{
		cfg:     DisplayConfig{Width: 640, Height: 512, Format: PixelFormatRGBA8888, Title: "rvbasic"},
		closeCh: make(chan struct{}),
	}
}

func (e *EbitenVideoOutput) SetDisplayConfig(cfg DisplayConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	e.surface = ebiten.NewImage(maxInt(cfg.Width, 1), maxInt(cfg.Height, 1))
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetFullscreen(cfg.Fullscreen)
	return nil
}

func (e *EbitenVideoOutput) GetDisplayConfig() DisplayConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Start launches the ebiten run loop in a dedicated goroutine; ebiten.RunGame
// blocks its caller for the lifetime of the window, so it must not run on
// the interpreter's own goroutine.
func (e *EbitenVideoOutput) Start() error {
	if e.started.Swap(true) {
		return nil
	}
	e.mu.Lock()
	if e.surface == nil {
		e.surface = ebiten.NewImage(e.cfg.Width, e.cfg.Height)
		ebiten.SetWindowSize(e.cfg.Width, e.cfg.Height)
		ebiten.SetWindowTitle(e.cfg.Title)
	}
	e.mu.Unlock()
	go func() {
		if err := ebiten.RunGame(e); err != nil {
			fmt.Fprintf(os.Stderr, "rvbasic: display closed: %v\n", err)
		}
		e.started.Store(false)
		close(e.closeCh)
	}()
	return nil
}

func (e *EbitenVideoOutput) Stop() error {
	if !e.started.Load() {
		return nil
	}
	return nil
}

func (e *EbitenVideoOutput) Close() error { return e.Stop() }

func (e *EbitenVideoOutput) IsStarted() bool { return e.started.Load() }

// UpdateFrame replaces the visible surface pixels with an already-scaled
// RGBA8888 buffer from Framebuffer.Flush.
func (e *EbitenVideoOutput) UpdateFrame(pixels []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.surface == nil {
		return nil
	}
	w, h := e.surface.Bounds().Dx(), e.surface.Bounds().Dy()
	if len(pixels) != w*h*4 {
		return NewErrorf(ErrInternal, 0, "frame size mismatch: got %d want %d", len(pixels), w*h*4)
	}
	e.surface.WritePixels(pixels)
	e.frames.Add(1)
	return nil
}

func (e *EbitenVideoOutput) WaitForVSync() {}

func (e *EbitenVideoOutput) GetFrameCount() uint64 { return e.frames.Load() }

func (e *EbitenVideoOutput) GetRefreshRate() float64 { return ebiten.ActualTPS() }

// --- ebiten.Game adapter ---

// Update pumps ebiten's input state once per tick: printable runes and a
// fixed set of control keys feed the keyboard handler (same translation
// table as the teacher's handleKeyboardInput/translateSpecialKey), Escape
// and Ctrl+Break fire the escape hook, and the cursor/button state feeds
// the mouse handler.
func (e *EbitenVideoOutput) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyPause) {
		e.fireEscape()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		e.fireEscape()
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		if r > 0 && r <= 0xFF {
			e.emitByte(byte(r))
		}
	}
	for _, key := range ebitenSpecialKeys {
		if inpututil.IsKeyJustPressed(key) {
			if seq, ok := translateEbitenSpecialKey(key); ok {
				e.emitSeq(seq)
			}
		}
	}

	e.mu.Lock()
	mh := e.mouseHandler
	e.mu.Unlock()
	if mh != nil {
		x, y := ebiten.CursorPosition()
		buttons := 0
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			buttons |= 1
		}
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
			buttons |= 2
		}
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
			buttons |= 4
		}
		mh(x, y, buttons)
	}
	return nil
}

func (e *EbitenVideoOutput) fireEscape() {
	e.mu.Lock()
	hook := e.escapeHook
	e.mu.Unlock()
	if hook != nil {
		hook()
	}
}

var ebitenSpecialKeys = []ebiten.Key{
	ebiten.KeyEnter,
	ebiten.KeyNumpadEnter,
	ebiten.KeyBackspace,
	ebiten.KeyTab,
	ebiten.KeyArrowUp,
	ebiten.KeyArrowDown,
	ebiten.KeyArrowRight,
	ebiten.KeyArrowLeft,
	ebiten.KeyHome,
	ebiten.KeyEnd,
	ebiten.KeyDelete,
}

func translateEbitenSpecialKey(key ebiten.Key) ([]byte, bool) {
	switch key {
	case ebiten.KeyEnter, ebiten.KeyNumpadEnter:
		return []byte{'\r'}, true
	case ebiten.KeyBackspace:
		return []byte{0x7F}, true
	case ebiten.KeyTab:
		return []byte{'\t'}, true
	case ebiten.KeyArrowUp:
		return []byte{0x8B}, true
	case ebiten.KeyArrowDown:
		return []byte{0x8A}, true
	case ebiten.KeyArrowRight:
		return []byte{0x89}, true
	case ebiten.KeyArrowLeft:
		return []byte{0x88}, true
	case ebiten.KeyHome:
		return []byte{0x1E}, true
	case ebiten.KeyEnd:
		return []byte{0x8D}, true
	case ebiten.KeyDelete:
		return []byte{0x7F}, true
	default:
		return nil, false
	}
}

func (e *EbitenVideoOutput) Draw(screen *ebiten.Image) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.surface != nil {
		screen.DrawImage(e.surface, nil)
	}
}

func (e *EbitenVideoOutput) Layout(outsideWidth, outsideHeight int) (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Width, e.cfg.Height
}
