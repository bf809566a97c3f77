// vdu.go - the 8-bit VDU command-stream state machine (C8).
//
// Modelled as the explicit tagged state `WaitingFor{cmd, needed, buf[9]}`
// §9's design notes ask for, rather than a scalar "bytes remaining"
// counter, so each command's handler is total over its operand tuple.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

// vduOperandCounts gives the number of operand bytes each VDU command
// needs, per the table in §4.8.
var vduOperandCounts = map[byte]int{
	17: 1, 18: 2, 19: 5, 22: 1, 23: 9, 24: 8, 25: 5, 28: 4, 29: 4, 31: 2,
}

// vduWait is the tagged accumulator state of §9's design note.
type vduWait struct {
	active bool
	cmd    byte
	needed int
	got    int
	buf    [9]byte
}

// VDUQueue drives the command stream, dispatching completed commands to
// the text plane, graphics, palette, mode, or Mode 7 collaborators.
type VDUQueue struct {
	wait vduWait

	enabled  bool
	toGraphicsCursor bool
	printerEcho bool

	tp   *TextPlane
	gfx  *Graphics
	pal  *Palette
	fb   *Framebuffer
	mode7 *Mode7
	video VideoOutput
}

func NewVDUQueue(tp *TextPlane, gfx *Graphics, pal *Palette, fb *Framebuffer, m7 *Mode7, video VideoOutput) *VDUQueue {
	return &VDUQueue{tp: tp, gfx: gfx, pal: pal, fb: fb, mode7: m7, video: video, enabled: true}
}

// refreshText composites the text plane (or, in Mode 7, the teletext grid)
// into the framebuffer and flushes it to the physical surface, the same way
// the graphics statements flush after a PLOT/DRAW. Without this, anything
// written through PRINT/VDU character output would be invisible on a
// windowed display - only direct pixel plots would ever reach the screen.
func (q *VDUQueue) refreshText() {
	if !q.fb.FlushDue() {
		return
	}
	if q.fb.Mode().Teletext && q.mode7 != nil {
		renderMode7(q.fb, q.mode7, q.pal)
	} else {
		renderTextPlane(q.fb, q.tp, q.pal)
	}
	q.fb.MaybeFlush(q.video, false)
}

// Feed accepts one byte of the VDU stream (either control bytes 0-31 with
// their operand tails, or printable characters headed for the text/
// graphics cursor).
func (q *VDUQueue) Feed(b byte) error {
	if q.wait.active {
		q.wait.buf[q.wait.got] = b
		q.wait.got++
		if q.wait.got >= q.wait.needed {
			cmd := q.wait.cmd
			buf := q.wait.buf
			q.wait = vduWait{}
			return q.dispatch(cmd, buf[:])
		}
		return nil
	}

	if b < 32 {
		if n, ok := vduOperandCounts[b]; ok && n > 0 {
			q.wait = vduWait{active: true, cmd: b, needed: n}
			return nil
		}
		return q.dispatch(b, nil)
	}

	if !q.enabled {
		return nil
	}
	if q.toGraphicsCursor {
		// Text sent to the graphics cursor is written to the text plane at
		// the text cursor; the graphics position is not used and the Mode 7
		// grid is not updated.
		q.tp.PutChar(b, 0)
		return nil
	}
	q.tp.PutChar(b, 0)
	if q.mode7 != nil {
		q.mode7.WriteChar(q.tp.VPos(), q.tp.Pos(), b)
	}
	q.refreshText()
	return nil
}

// WriteString feeds a whole byte slice through the queue, the common path
// for PRINT/statement output.
func (q *VDUQueue) WriteString(b []byte) error {
	for _, c := range b {
		if err := q.Feed(c); err != nil {
			return err
		}
	}
	return nil
}

func le16(buf []byte, i int) int { return int(buf[i]) | int(buf[i+1])<<8 }

// dispatch handles one complete VDU command per the table in §4.8.
func (q *VDUQueue) dispatch(cmd byte, buf []byte) error {
	err := q.dispatchCommand(cmd, buf)
	q.refreshText()
	return err
}

func (q *VDUQueue) dispatchCommand(cmd byte, buf []byte) error {
	switch cmd {
	case 0: // nop
	case 1: // send next char to printer - modelled as a no-op sink
	case 2:
		q.printerEcho = true
	case 3:
		q.printerEcho = false
	case 4:
		q.toGraphicsCursor = false
	case 5:
		q.toGraphicsCursor = true
	case 6:
		q.enabled = true
	case 7: // BEL - no audible output in this implementation
	case 8:
		q.tp.MoveCursor(-1, 0)
	case 9:
		q.tp.MoveCursor(1, 0)
	case 10:
		q.tp.MoveCursor(0, 1)
	case 11:
		q.tp.MoveCursor(0, -1)
	case 12:
		q.tp.CLS()
		if q.mode7 != nil {
			q.mode7.Clear()
		}
	case 13:
		q.tp.CarriageReturn()
	case 14:
		q.tp.SetPagedMode(true)
	case 15:
		q.tp.SetPagedMode(false)
	case 16:
		q.gfx.SetWindow(0, 0, 0, 0) // CLG: only resets the graphics window; no pixels are cleared
	case 17:
		c := int(buf[0])
		q.pal.SetTextColour(c&0x7F, c >= 128)
	case 18:
		q.pal.SetGraphicsColour(int(buf[0]), int(buf[1]), false)
	case 19:
		q.pal.SelectPhysical(int(buf[0]), int(buf[1]))
		if buf[1] == 255 {
			q.pal.SetPaletteEntry(int(buf[0]), buf[2], buf[3], buf[4])
		}
	case 20:
		q.pal.Reset()
	case 21:
		q.enabled = false
	case 22:
		return q.fb.SetMode(int(buf[0]))
	case 23:
		return q.dispatchVDU23(buf)
	case 24:
		q.gfx.SetWindow(le16(buf, 0), le16(buf, 2), le16(buf, 4), le16(buf, 6))
	case 25:
		return q.dispatchPlot(buf)
	case 26:
		q.tp.ResetWindows()
		q.gfx.SetWindow(0, 0, 0, 0)
	case 27: // ESC pass-through - no-op
	case 28:
		q.tp.SetTextWindow(int(buf[0]), int(buf[1]), int(buf[2]), int(buf[3]))
	case 29:
		q.gfx.SetOrigin(le16(buf, 0), le16(buf, 2))
	case 30:
		q.tp.HomeCursor()
	case 31:
		q.tp.TabTo(int(buf[0]), int(buf[1]))
	}
	return nil
}

func (q *VDUQueue) dispatchVDU23(buf []byte) error {
	switch buf[0] {
	case 1:
		// cursor on/off: buf[1] != 0 means visible - no separate blink state
		// modelled here beyond the text plane's own cursor flags.
	case 7:
		q.tp.ScrollDown()
	case 16:
		q.tp.SetCursorFlags(int(buf[1]))
	case 17:
		q.pal.SetTint(q.toGraphicsCursor, buf[1])
	case 18:
		// Teletext control: buf[1] selects a sub-function; left as a
		// recognised no-op beyond the core two-pass renderer in mode7.go.
	case 22:
		// custom mode definition - left unimplemented; BadMode on MODE
		// selection covers the observable surface.
	default:
		if buf[0] >= 32 {
			// VDU 23,c,... (c>=32) redefines user glyph c. Per the Open
			// Question decision in DESIGN.md, this has no visible effect on
			// Mode 7 cells (Mode 7's character set is fixed), and is simply
			// accepted here for non-Mode-7 text/graphics rendering.
		}
	}
	return nil
}

// dispatchPlot implements VDU 25 (PLOT code,x,y): decodes the PLOT
// sub-opcode matrix of §4.9/§6 table B (abridged to the primitives this
// implementation supports) and applies it against the last-two graphics
// coordinates.
func (q *VDUQueue) dispatchPlot(buf []byte) error {
	code := buf[0]
	x := int(int16(le16(buf, 1)))
	y := int(int16(le16(buf, 3)))
	return q.Plot(code, x, y)
}

// Plot is also called directly by the PLOT statement in the executor (as
// opposed to arriving via the VDU 25 byte stream), since both paths share
// identical semantics.
func (q *VDUQueue) Plot(code byte, x, y int) error {
	absolute := code&0x04 == 0
	visible := code&0x01 == 0
	primitive := code >> 3

	var tx, ty int
	if absolute {
		tx, ty = x, y
	} else {
		tx, ty = q.gfx.lastX+x, q.gfx.lastY+y
	}

	colour := q.pal.GraphForeground()
	action := q.pal.GraphAction()

	switch primitive {
	case 0: // plot a single point / move
		if visible {
			q.gfx.PlotPixel(tx, ty, colour, action)
		} else {
			q.gfx.lastX, q.gfx.lastY = tx, ty
		}
	case 1: // draw line, not including end point
		q.gfx.DrawLine(q.gfx.lastX, q.gfx.lastY, tx, ty, colour, 0x08, action)
	case 2: // draw line, dotted
		q.gfx.DrawLine(q.gfx.lastX, q.gfx.lastY, tx, ty, colour, 0x10, action)
	case 6: // draw line, including end point
		q.gfx.DrawLine(q.gfx.lastX, q.gfx.lastY, tx, ty, colour, 0, action)
	case 8: // filled triangle (uses last three points)
		q.gfx.FilledTriangle(q.gfx.prevX, q.gfx.prevY, q.gfx.lastX, q.gfx.lastY, tx, ty, colour, action)
	case 9: // filled rectangle
		q.gfx.FilledRectangle(q.gfx.lastX, q.gfx.lastY, tx, ty, colour, action)
	case 10: // filled parallelogram
		q.gfx.FilledParallelogram(q.gfx.prevX, q.gfx.prevY, q.gfx.lastX, q.gfx.lastY, tx, ty, colour, action)
	case 24: // flood fill
		q.gfx.FloodFill(tx, ty, colour, action)
	default:
		q.gfx.PlotPixel(tx, ty, colour, action)
	}
	return nil
}

func (q *VDUQueue) Enabled() bool { return q.enabled }
