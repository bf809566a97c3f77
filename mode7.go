// mode7.go - Teletext 40x25 character grid, control-code state machine,
// double-height, flash, hold-graphics, separated-graphics (C11).
//
// Grounded on video_antic.go's per-scanline display-list decode loop (state
// carried forward into the next instruction fetch) for the two-pass
// "set-at then set-after" row renderer, and video_ula.go's attribute/flash
// handling for the bank-swap flash timer.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

const (
	mode7Cols = 40
	mode7Rows = 25
)

// mode7RowState is the render state carried across a row, reset at the
// start of each row per §4.11: "initial state at each row: foreground=
// white, background=black, no flash, no hold-graphics, contiguous
// graphics, alpha mode, normal height."
type mode7RowState struct {
	fg, bg       int
	flash        bool
	hold         bool
	contiguous   bool
	alpha        bool
	doubleHeight bool
	conceal      bool
	heldGlyph    byte
}

func newMode7RowState() mode7RowState {
	return mode7RowState{fg: 7, bg: 0, contiguous: true, alpha: true}
}

// Mode7 holds the 40x25 character grid and the two pre-rendered flash-bank
// buffers of §4.11.
type Mode7 struct {
	frame       [mode7Rows][mode7Cols]byte
	changedRow  [mode7Rows]bool
	bottomHalf  [mode7Rows]bool // row i is the rendered lower half of row i-1's double-height glyphs

	clock      *Clock
	flashOn    bool
	lastFlip   int64
}

func NewMode7(clock *Clock) *Mode7 {
	return &Mode7{clock: clock, flashOn: true}
}

// WriteChar stores one character at (row,col) in the Mode 7 grid and marks
// the row changed - this is how VDU queue text output lands on the grid
// when the current mode is Mode 7.
func (m *Mode7) WriteChar(row, col int, ch byte) {
	if row < 0 || row >= mode7Rows || col < 0 || col >= mode7Cols {
		return
	}
	m.frame[row][col] = ch
	m.changedRow[row] = true
}

func (m *Mode7) Clear() {
	for r := 0; r < mode7Rows; r++ {
		for c := 0; c < mode7Cols; c++ {
			m.frame[r][c] = ' '
		}
		m.changedRow[r] = true
		m.bottomHalf[r] = false
	}
}

// Tick advances the flash-bank flip: 33cs on / 100cs off, giving the
// characteristic 1 Hz asymmetric flash (§4.11).
func (m *Mode7) Tick() {
	now := m.clock.CentisecondsSinceStart()
	period := int64(100)
	if m.flashOn {
		period = 33
	}
	if now-m.lastFlip >= period {
		m.flashOn = !m.flashOn
		m.lastFlip = now
	}
}

// RenderRow performs the two-pass render of §9's design note: set-at codes
// are applied first, the cell is rendered from the resulting state, and
// set-after codes are then applied before advancing to the next cell.
// Returns one rendered glyph-with-attributes per column.
type Mode7Cell struct {
	Glyph      byte
	Fg, Bg     int
	Graphics   bool
	Separated  bool
	DoubleHigh bool
	Visible    bool // false while flashing off, or concealed
}

func (m *Mode7) RenderRow(row int) [mode7Cols]Mode7Cell {
	var out [mode7Cols]Mode7Cell
	state := newMode7RowState()
	isBottomHalf := m.bottomHalf[row]

	for col := 0; col < mode7Cols; col++ {
		ch := m.frame[row][col]

		if ch >= 128 && ch <= 159 {
			applyControlCode(&state, ch)
		}
		startState := state

		visible := true
		if startState.conceal {
			visible = false
		}
		if startState.flash && !m.flashOn {
			visible = false
		}

		glyph := ch
		if ch < 32 || (ch >= 128 && ch <= 159) {
			if startState.hold {
				glyph = startState.heldGlyph
			} else {
				glyph = ' '
			}
		} else if !startState.alpha && ch >= 32 {
			state.heldGlyph = ch
		}

		out[col] = Mode7Cell{
			Glyph:      glyph,
			Fg:         startState.fg,
			Bg:         startState.bg,
			Graphics:   !startState.alpha,
			Separated:  !startState.contiguous,
			DoubleHigh: startState.doubleHeight && !isBottomHalf,
			Visible:    visible,
		}

		if ch >= 128 && ch <= 159 {
			applyAfterCode(&state, ch)
		}
	}

	if state.doubleHeight && row+1 < mode7Rows {
		m.bottomHalf[row+1] = true
	}
	return out
}

// applyControlCode applies the "set-at" codes, visible starting at the
// current cell (§4.11's control-code table, codes 129-159).
func applyControlCode(s *mode7RowState, code byte) {
	switch {
	case code == 137:
		s.flash = false
	case code == 152:
		s.conceal = true
	case code == 153:
		s.contiguous = true
	case code == 154:
		s.contiguous = false
	case code == 156:
		s.bg = 0
	case code == 157:
		s.bg = s.fg
	case code == 158:
		s.hold = true
	}
}

// applyAfterCode applies "set-after" codes, visible starting at the next
// cell.
func applyAfterCode(s *mode7RowState, code byte) {
	switch {
	case code >= 129 && code <= 135:
		s.fg = int(code - 128)
		s.hold = false
		s.conceal = false
		s.alpha = true
	case code == 136:
		s.flash = true
	case code == 140:
		s.doubleHeight = false
	case code == 141:
		s.doubleHeight = true
	case code >= 145 && code <= 151:
		s.fg = int(code - 144)
		s.alpha = false
		s.conceal = false
	case code == 159:
		s.hold = false
	}
}
