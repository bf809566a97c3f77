// textrender.go - composites the logical text plane / Mode 7 grid into the
// framebuffer's write bank, the missing half of the physical-surface path:
// PLOT/DRAW already reach the screen through Framebuffer.SetPixel, but
// PRINT/VDU character output previously stopped at the text-plane cell grid
// and never became visible pixels.
//
// Grounded on video_ula.go's attribute-cell-to-pixel rasteriser (character
// ROM lookup plus ink/paper colour per cell), with golang.org/x/image's
// basicfont standing in for the teacher's hand-rolled character ROM bitmap.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// textGlyphFace is the bitmap font used for both normal-mode text and
// Mode 7 teletext glyphs; Mode 7's own block-graphics cells are painted as
// a solid ink rectangle instead of a glyph shape (§3's Non-goals exclude
// bit-for-bit Teletext fidelity beyond nominal flash timing, so the sixel
// mosaic shapes are approximated rather than reproduced).
var textGlyphFace = basicfont.Face7x13

const (
	glyphCellWidth  = 7
	glyphCellHeight = 13
)

// renderTextPlane stamps every cell of tp onto fb's write bank at
// (col*glyphCellWidth, row*glyphCellHeight), using pal's current text ink
// and paper colours. Called after any VDU/PRINT output so the windowed
// backend's next flush carries the text along with any graphics already
// plotted into the same bank.
func renderTextPlane(fb *Framebuffer, tp *TextPlane, pal *Palette) {
	if fb == nil || tp == nil || pal == nil {
		return
	}
	fg := pal.TextForeground()
	bg := pal.TextBackground()
	for row := 0; row < tp.rows; row++ {
		for col := 0; col < tp.cols; col++ {
			paintGlyphCell(fb, col*glyphCellWidth, row*glyphCellHeight, tp.cells[row][col], fg, bg)
		}
	}
}

// renderMode7 stamps the Mode 7 grid, via Mode7.RenderRow's two-pass
// set-at/set-after decode, the same way renderTextPlane does for the
// ordinary text plane, except colours come from the per-cell Teletext
// attribute state rather than a single current ink/paper pair.
func renderMode7(fb *Framebuffer, m7 *Mode7, pal *Palette) {
	if fb == nil || m7 == nil || pal == nil {
		return
	}
	for row := 0; row < mode7Rows; row++ {
		cells := m7.RenderRow(row)
		for col := 0; col < mode7Cols; col++ {
			cell := cells[col]
			ox, oy := col*glyphCellWidth, row*glyphCellHeight
			bg := pal.PhysicalRGBA(cell.Bg, 0)
			if !cell.Visible {
				fillGlyphCell(fb, ox, oy, bg)
				continue
			}
			fg := pal.PhysicalRGBA(cell.Fg, 0)
			if cell.Graphics {
				fillGlyphCell(fb, ox, oy, fg)
				continue
			}
			paintGlyphCell(fb, ox, oy, cell.Glyph, fg, bg)
		}
	}
}

func fillGlyphCell(fb *Framebuffer, ox, oy int, colour uint32) {
	for y := 0; y < glyphCellHeight; y++ {
		for x := 0; x < glyphCellWidth; x++ {
			fb.SetPixel(ox+x, oy+y, colour, ActionSet)
		}
	}
}

// paintGlyphCell fills the cell's background then stamps ch's glyph mask
// over it in the foreground colour.
func paintGlyphCell(fb *Framebuffer, ox, oy int, ch byte, fg, bg uint32) {
	fillGlyphCell(fb, ox, oy, bg)
	if ch == 0 || ch == ' ' {
		return
	}
	dot := fixed.P(ox, oy+textGlyphFace.Ascent)
	dr, mask, maskp, _, ok := textGlyphFace.Glyph(dot, rune(ch))
	if !ok {
		return
	}
	for y := dr.Min.Y; y < dr.Max.Y; y++ {
		for x := dr.Min.X; x < dr.Max.X; x++ {
			_, _, _, a := mask.At(maskp.X+(x-dr.Min.X), maskp.Y+(y-dr.Min.Y)).RGBA()
			if a > 0x7fff {
				fb.SetPixel(x, y, fg, ActionSet)
			}
		}
	}
}
