// textplane.go - text window, cursor, colour state; scroll/erase, the
// non-queue half of C8.
//
// Grounded on video_terminal.go's cell buffer, scrollUpLocked, newLineLocked
// and renderCellLocked.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

// cursorFlags are the VDU 23,16 bits of §4.8.
const (
	cursorScrollProtect = 1 << 0
	cursorRightToLeft   = 1 << 1
	cursorBottomToTop   = 1 << 2
	cursorWrap          = 1 << 4
	cursorDisabled      = 1 << 5
	cursorIgnoreGWEdge  = 1 << 6
)

// TextPlane is the text-window half of the VDU state of §3: twinleft/
// right/top/bottom, xtext/ytext, paged mode, and the character cell grid
// backing text output when the current mode is not Mode 7.
type TextPlane struct {
	twinLeft, twinRight, twinTop, twinBottom int
	xtext, ytext int
	cursorFlags  int
	paged        bool
	pagedScrollsRemaining int

	cells [][]byte // [row][col], sized to the current mode's xtext/ytext
	cols, rows int

	keyboard *Keyboard
}

func NewTextPlane(keyboard *Keyboard) *TextPlane {
	return &TextPlane{keyboard: keyboard}
}

// Resize reallocates the cell grid and resets the text window to
// full-screen, called on MODE change (§4.12).
func (tp *TextPlane) Resize(cols, rows int) {
	tp.cols, tp.rows = cols, rows
	tp.cells = make([][]byte, rows)
	for i := range tp.cells {
		tp.cells[i] = make([]byte, cols)
		for j := range tp.cells[i] {
			tp.cells[i][j] = ' '
		}
	}
	tp.twinLeft, tp.twinTop = 0, 0
	tp.twinRight, tp.twinBottom = cols-1, rows-1
	tp.xtext, tp.ytext = 0, 0
}

func (tp *TextPlane) SetTextWindow(left, bottom, right, top int) {
	tp.twinLeft, tp.twinRight = left, right
	tp.twinTop, tp.twinBottom = top, bottom
	tp.xtext, tp.ytext = 0, 0
}

func (tp *TextPlane) ResetWindows() {
	tp.twinLeft, tp.twinTop = 0, 0
	tp.twinRight, tp.twinBottom = tp.cols-1, tp.rows-1
}

func (tp *TextPlane) SetCursorFlags(f int) { tp.cursorFlags = f }

func (tp *TextPlane) HomeCursor() { tp.xtext, tp.ytext = 0, 0 }

func (tp *TextPlane) SetPagedMode(on bool) {
	tp.paged = on
	tp.pagedScrollsRemaining = tp.twinBottom - tp.twinTop
}

// PutChar writes one glyph at the current cursor position and advances the
// cursor, handling wrap, scroll and paged-mode pause (§4.8 scroll policy).
func (tp *TextPlane) PutChar(ch byte, bgColour byte) {
	if tp.cursorFlags&cursorDisabled != 0 {
		return
	}
	row := tp.twinTop + tp.ytext
	col := tp.twinLeft + tp.xtext
	if row >= 0 && row < tp.rows && col >= 0 && col < tp.cols {
		tp.cells[row][col] = ch
	}
	tp.advanceCursor()
}

func (tp *TextPlane) advanceCursor() {
	width := tp.twinRight - tp.twinLeft
	height := tp.twinBottom - tp.twinTop
	tp.xtext++
	if tp.xtext > width {
		tp.xtext = 0
		tp.ytext++
	}
	if tp.ytext > height {
		tp.ytext = height
		if tp.cursorFlags&cursorScrollProtect == 0 {
			tp.scrollUp()
		}
	}
}

// CarriageReturn implements VDU 13.
func (tp *TextPlane) CarriageReturn() {
	tp.xtext = 0
}

// LineFeed implements the newline half of CR/LF handling, including the
// paged-mode pause of §4.8 and the Open Question decision (DESIGN.md) to
// also honour pause on upward scroll via ScrollDown.
func (tp *TextPlane) LineFeed() {
	tp.ytext++
	height := tp.twinBottom - tp.twinTop
	if tp.ytext > height {
		tp.ytext = height
		tp.scrollUp()
	}
}

func (tp *TextPlane) scrollUp() {
	for r := tp.twinTop; r < tp.twinBottom; r++ {
		copy(tp.cells[r][tp.twinLeft:tp.twinRight+1], tp.cells[r+1][tp.twinLeft:tp.twinRight+1])
	}
	for c := tp.twinLeft; c <= tp.twinRight; c++ {
		tp.cells[tp.twinBottom][c] = ' '
	}
	if tp.paged {
		tp.pagedScrollsRemaining--
		if tp.pagedScrollsRemaining <= 0 {
			tp.pagedScrollsRemaining = tp.twinBottom - tp.twinTop
			if tp.keyboard != nil {
				tp.keyboard.GetBlocking()
			}
		}
	}
}

// ScrollDown implements upward-scroll (content moves down, revealing a
// blank top row) - used by VDU 23,7 and the paged-mode-upward Open
// Question decision recorded in DESIGN.md: pause is honoured here too.
func (tp *TextPlane) ScrollDown() {
	for r := tp.twinBottom; r > tp.twinTop; r-- {
		copy(tp.cells[r][tp.twinLeft:tp.twinRight+1], tp.cells[r-1][tp.twinLeft:tp.twinRight+1])
	}
	for c := tp.twinLeft; c <= tp.twinRight; c++ {
		tp.cells[tp.twinTop][c] = ' '
	}
	if tp.paged {
		tp.pagedScrollsRemaining--
		if tp.pagedScrollsRemaining <= 0 {
			tp.pagedScrollsRemaining = tp.twinBottom - tp.twinTop
			if tp.keyboard != nil {
				tp.keyboard.GetBlocking()
			}
		}
	}
}

// CLS clears the text window to background colour.
func (tp *TextPlane) CLS() {
	for r := tp.twinTop; r <= tp.twinBottom; r++ {
		for c := tp.twinLeft; c <= tp.twinRight; c++ {
			tp.cells[r][c] = ' '
		}
	}
	tp.xtext, tp.ytext = 0, 0
}

func (tp *TextPlane) MoveCursor(dx, dy int) {
	tp.xtext += dx
	tp.ytext += dy
	width := tp.twinRight - tp.twinLeft
	height := tp.twinBottom - tp.twinTop
	if tp.xtext < 0 {
		tp.xtext = 0
	}
	if tp.xtext > width {
		tp.xtext = width
	}
	if tp.ytext < 0 {
		tp.ytext = 0
	}
	if tp.ytext > height {
		tp.ytext = height
	}
}

func (tp *TextPlane) TabTo(x, y int) {
	tp.xtext, tp.ytext = x, y
}

// Pos/VPos implement the POS/VPOS pseudo-variables.
func (tp *TextPlane) Pos() int  { return tp.xtext }
func (tp *TextPlane) VPos() int { return tp.ytext }
