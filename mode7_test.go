package main

import "testing"

func newTestMode7(t *testing.T) *Mode7 {
	t.Helper()
	clock := NewClock()
	t.Cleanup(clock.Close)
	m := NewMode7(clock)
	m.Clear()
	return m
}

func TestMode7WriteCharMarksRowChanged(t *testing.T) {
	m := newTestMode7(t)
	m.changedRow[3] = false
	m.WriteChar(3, 5, 'X')
	if !m.changedRow[3] {
		t.Fatalf("WriteChar should mark its row changed")
	}
	if m.frame[3][5] != 'X' {
		t.Fatalf("WriteChar should store the glyph at (3,5)")
	}
}

func TestMode7WriteCharOutOfBoundsIsNoop(t *testing.T) {
	m := newTestMode7(t)
	m.WriteChar(-1, 0, 'X')
	m.WriteChar(0, -1, 'X')
	m.WriteChar(mode7Rows, 0, 'X')
	m.WriteChar(0, mode7Cols, 'X')
	// no panic means success.
}

func TestMode7ClearFillsSpaces(t *testing.T) {
	m := newTestMode7(t)
	m.WriteChar(0, 0, 'X')
	m.Clear()
	if m.frame[0][0] != ' ' {
		t.Fatalf("Clear should blank every cell to a space")
	}
}

func TestMode7RenderRowDefaultStateIsWhiteOnBlackAlpha(t *testing.T) {
	m := newTestMode7(t)
	m.WriteChar(0, 0, 'A')
	row := m.RenderRow(0)
	cell := row[0]
	if cell.Glyph != 'A' {
		t.Fatalf("cell glyph = %q, want 'A'", cell.Glyph)
	}
	if cell.Fg != 7 || cell.Bg != 0 {
		t.Fatalf("default row state should be fg=white(7) bg=black(0), got fg=%d bg=%d", cell.Fg, cell.Bg)
	}
	if cell.Graphics {
		t.Fatalf("default row state should be alpha, not graphics")
	}
	if !cell.Visible {
		t.Fatalf("plain glyph with no flash/conceal should be visible")
	}
}

func TestMode7SetAfterColourCodeTakesEffectNextCell(t *testing.T) {
	m := newTestMode7(t)
	m.WriteChar(0, 0, 129) // red alpha, set-after
	m.WriteChar(0, 1, 'A')
	row := m.RenderRow(0)
	if row[0].Fg != 7 {
		t.Fatalf("the control-code cell itself should still show the prior fg, got %d", row[0].Fg)
	}
	if row[1].Fg != 1 {
		t.Fatalf("the cell after a set-after colour code should take the new fg, got %d", row[1].Fg)
	}
}

func TestMode7SetAtConcealTakesEffectSameCell(t *testing.T) {
	m := newTestMode7(t)
	m.WriteChar(0, 0, 152) // conceal, set-at
	m.WriteChar(0, 1, 'A')
	row := m.RenderRow(0)
	if row[0].Visible {
		t.Fatalf("conceal is set-at: the control-code cell itself should already be concealed")
	}
	if row[1].Visible {
		t.Fatalf("conceal should make the following text invisible")
	}
}

func TestMode7FlashInvisibleWhenFlashOff(t *testing.T) {
	m := newTestMode7(t)
	m.flashOn = false
	m.WriteChar(0, 0, 136) // flash, set-after
	m.WriteChar(0, 1, 'A')
	row := m.RenderRow(0)
	if row[1].Visible {
		t.Fatalf("flashing text should be invisible while flashOn is false")
	}
}

func TestMode7GraphicsModeSwitch(t *testing.T) {
	m := newTestMode7(t)
	m.WriteChar(0, 0, 145) // red graphics, set-after
	m.WriteChar(0, 1, 'A')
	row := m.RenderRow(0)
	if !row[1].Graphics {
		t.Fatalf("set-after graphics colour code should switch the row into graphics mode")
	}
}

func TestMode7DoubleHeightPropagatesToNextRow(t *testing.T) {
	m := newTestMode7(t)
	m.WriteChar(0, 0, 141) // double height, set-after
	m.WriteChar(0, 1, 'A')
	m.RenderRow(0)
	if !m.bottomHalf[1] {
		t.Fatalf("a double-height row should mark the next row as its bottom half")
	}
}
