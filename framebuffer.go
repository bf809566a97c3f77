// framebuffer.go - mode table, multiple write/display banks, scaled blit to
// the physical surface (C12).
//
// Grounded on video_chip.go's dirty-region grid, double-buffered bank swap,
// and rate-limited refreshLoop.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"sync"
	"time"
)

const numBanks = 2
const dirtyBlockSize = 32

// RefreshMode is the auto-refresh flag of §4.12: {off, on, on-error}.
type RefreshMode int

const (
	RefreshOff RefreshMode = iota
	RefreshOn
	RefreshOnError
)

// Bank is one framebuffer surface: a flat RGBA8888 pixel array plus a
// dirty-block grid, matching video_chip.go's markRegionDirty/
// initialiseDirtyGrid.
type Bank struct {
	Pixels []uint32
	Dirty  []bool // one entry per dirtyBlockSize x dirtyBlockSize block
	blocksX, blocksY int
}

func newBank(w, h int) *Bank {
	bx := (w + dirtyBlockSize - 1) / dirtyBlockSize
	by := (h + dirtyBlockSize - 1) / dirtyBlockSize
	return &Bank{Pixels: make([]uint32, w*h), Dirty: make([]bool, bx*by), blocksX: bx, blocksY: by}
}

func (b *Bank) markDirty(x, y int) {
	bx := x / dirtyBlockSize
	by := y / dirtyBlockSize
	idx := by*b.blocksX + bx
	if idx >= 0 && idx < len(b.Dirty) {
		b.Dirty[idx] = true
	}
}

func (b *Bank) clearDirty() {
	for i := range b.Dirty {
		b.Dirty[i] = false
	}
}

// Framebuffer is the C12 component: current mode, N display banks, and the
// write/display bank selectors.
type Framebuffer struct {
	mu sync.RWMutex

	mode       ModeInfo
	modeNum    int
	banks      []*Bank
	writeBank  int
	displayBank int

	refresh     RefreshMode
	videoFreqCs int64
	lastFlush   int64
	clock       *Clock

	backgroundRGBA uint32
}

func NewFramebuffer(clock *Clock) *Framebuffer {
	fb := &Framebuffer{clock: clock, videoFreqCs: 10, refresh: RefreshOn}
	fb.SetMode(7) // boot in Mode 7, the classic BASIC default prompt mode... actually 0 is more typical
	return fb
}

// SetMode reallocates N display banks and fills each with the current
// background colour (§4.12); it does not reset the text/graphics windows or
// the Mode 7 grid. Idempotent per §8: "MODE m; MODE m leaves the framebuffer in the
// same state as MODE m alone."
func (fb *Framebuffer) SetMode(n int) error {
	info, ok := LookupMode(n)
	if !ok {
		return NewError(ErrBadMode, 0)
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.modeNum == n && fb.mode.XRes == info.XRes && fb.mode.YRes == info.YRes && len(fb.banks) == numBanks {
		fb.resetBanksLocked()
		return nil
	}
	fb.mode = info
	fb.modeNum = n
	fb.banks = make([]*Bank, numBanks)
	for i := range fb.banks {
		fb.banks[i] = newBank(info.XRes, info.YRes)
	}
	fb.writeBank = 0
	fb.displayBank = 0
	fb.resetBanksLocked()
	return nil
}

func (fb *Framebuffer) resetBanksLocked() {
	for _, b := range fb.banks {
		for i := range b.Pixels {
			b.Pixels[i] = fb.backgroundRGBA
		}
		b.clearDirty()
	}
}

func (fb *Framebuffer) Mode() ModeInfo { fb.mu.RLock(); defer fb.mu.RUnlock(); return fb.mode }

func (fb *Framebuffer) SetWriteBank(n int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if n >= 0 && n < len(fb.banks) {
		fb.writeBank = n
	}
}

func (fb *Framebuffer) SetDisplayBank(n int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if n >= 0 && n < len(fb.banks) {
		fb.displayBank = n
	}
}

// WriteBank returns the bank drawing operations should target.
func (fb *Framebuffer) WriteBank() *Bank {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return fb.banks[fb.writeBank]
}

// DisplayBank returns the bank the physical surface should blit from.
func (fb *Framebuffer) DisplayBank() *Bank {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return fb.banks[fb.displayBank]
}

// SetPixel writes a pixel into the write bank, applying the GCOL action
// against the existing value, and marks the block dirty.
func (fb *Framebuffer) SetPixel(x, y int, colour uint32, action int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	info := fb.mode
	if x < 0 || y < 0 || x >= info.XRes || y >= info.YRes {
		return
	}
	bank := fb.banks[fb.writeBank]
	idx := y*info.XRes + x
	bank.Pixels[idx] = ApplyAction(action, bank.Pixels[idx], colour)
	bank.markDirty(x, y)
}

// GetPixel reads a pixel from the write bank (POINT reads the write bank in
// real BASIC so a program can test what it just drew).
func (fb *Framebuffer) GetPixel(x, y int) uint32 {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	info := fb.mode
	if x < 0 || y < 0 || x >= info.XRes || y >= info.YRes {
		return 0
	}
	return fb.banks[fb.writeBank].Pixels[y*info.XRes+x]
}

// RepaintLogicalIndex rewrites every pixel across all banks whose stored
// value equals oldRGBA to newRGBA, implementing §4.10's palette-reprogram
// propagation ("every framebuffer pixel whose stored logical index equals
// the changed entry is rewritten ... without a redraw").
func (fb *Framebuffer) RepaintLogicalIndex(oldRGBA, newRGBA uint32) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, bank := range fb.banks {
		for i, px := range bank.Pixels {
			if px == oldRGBA {
				bank.Pixels[i] = newRGBA
			}
		}
	}
}

// SetRefreshMode sets the auto-refresh flag.
func (fb *Framebuffer) SetRefreshMode(m RefreshMode) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.refresh = m
}

// SetVideoFreq sets the minimum centiseconds between coalesced flushes.
func (fb *Framebuffer) SetVideoFreq(cs int64) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.videoFreqCs = cs
}

// MaybeFlush is called after every VDU command that touches the
// framebuffer; it performs a rate-limited flush when refresh is "on", and
// always flushes when "on-error" and errored is true (§4.12).
func (fb *Framebuffer) MaybeFlush(output VideoOutput, errored bool) {
	fb.mu.Lock()
	mode := fb.refresh
	now := fb.clock.CentisecondsSinceStart()
	due := now-fb.lastFlush >= fb.videoFreqCs
	fb.mu.Unlock()

	switch mode {
	case RefreshOn:
		if due {
			fb.Flush(output)
		}
	case RefreshOnError:
		if errored {
			fb.Flush(output)
		}
	}
}

// FlushDue reports whether a rate-limited flush would actually happen right
// now, letting a caller skip expensive compositing work (like rasterising
// the text plane) when refresh is off or the next flush isn't due yet.
func (fb *Framebuffer) FlushDue() bool {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	if fb.refresh != RefreshOn {
		return false
	}
	now := fb.clock.CentisecondsSinceStart()
	return now-fb.lastFlush >= fb.videoFreqCs
}

// Flush blits the display bank to the physical surface unconditionally
// (the "Refresh" star-command / REFRESH statement path).
func (fb *Framebuffer) Flush(output VideoOutput) {
	fb.mu.Lock()
	fb.lastFlush = fb.clock.CentisecondsSinceStart()
	bank := fb.banks[fb.displayBank]
	info := fb.mode
	fb.mu.Unlock()
	if output == nil {
		return
	}
	_ = output.UpdateFrame(scaledBlit(bank, info))
}

// scaledBlit paints each logical pixel as an xscale x yscale block on the
// physical surface, per §4.12's "Scaled blit". Modes 3/6 additionally
// overdraw four black scanlines between character rows (the "gapped"
// text-mode), approximated here by zeroing every (cellHeight)th scaled row
// band.
func scaledBlit(bank *Bank, info ModeInfo) []byte {
	outW := info.XRes * info.XScale
	outH := info.YRes * info.YScale
	out := make([]byte, outW*outH*4)
	cellH := info.YRes / maxInt(info.YText, 1) * info.YScale
	for y := 0; y < info.YRes; y++ {
		for x := 0; x < info.XRes; x++ {
			px := bank.Pixels[y*info.XRes+x]
			r := byte(px >> 24)
			g := byte(px >> 16)
			b := byte(px >> 8)
			a := byte(px)
			for sy := 0; sy < info.YScale; sy++ {
				oy := y*info.YScale + sy
				gapped := info.Gapped && cellH > 4 && oy%cellH >= cellH-4
				for sx := 0; sx < info.XScale; sx++ {
					ox := x*info.XScale + sx
					idx := (oy*outW + ox) * 4
					if gapped {
						out[idx], out[idx+1], out[idx+2], out[idx+3] = 0, 0, 0, 255
						continue
					}
					out[idx], out[idx+1], out[idx+2], out[idx+3] = r, g, b, a
				}
			}
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// refreshTickInterval (mirrors video_chip.go's REFRESH_RATE_HZ) is not
// referenced by any code; MaybeFlush's rate limiting is driven
// synchronously from the VDU dispatch path per statement.
const refreshTickInterval = time.Second / 60
