package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestCallSWIOsWritecFeedsVDU(t *testing.T) {
	vm := newTestInterpreter(t)
	if _, err := vm.callSWI("OS_WriteC", []Value{IntValue('A')}); err != nil {
		t.Fatalf("callSWI: %v", err)
	}
	if got := vm.TextPlane.cells[0][0]; got != 'A' {
		t.Fatalf("cells[0][0] = %q, want 'A'", got)
	}
}

func TestCallSWIOsWrite0WritesWholeString(t *testing.T) {
	vm := newTestInterpreter(t)
	d, err := vm.Strings.NewFromBytes([]byte("HI"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	if _, err := vm.callSWI("OS_Write0", []Value{StringValue(d)}); err != nil {
		t.Fatalf("callSWI: %v", err)
	}
	if vm.TextPlane.cells[0][0] != 'H' || vm.TextPlane.cells[0][1] != 'I' {
		t.Fatalf("cells[0][0:2] = %q%q, want \"HI\"", vm.TextPlane.cells[0][0], vm.TextPlane.cells[0][1])
	}
}

func TestCallSWIOsWrite0RejectsNonString(t *testing.T) {
	vm := newTestInterpreter(t)
	_, err := vm.callSWI("OS_Write0", []Value{IntValue(5)})
	be, ok := err.(*BasicError)
	if !ok || be.Kind != ErrTypeMismatch {
		t.Fatalf("OS_Write0 with a non-string arg should raise ErrTypeMismatch, got %v", err)
	}
}

func TestCallSWIOsNewlineMovesToNextLine(t *testing.T) {
	vm := newTestInterpreter(t)
	if _, err := vm.callSWI("OS_NewLine", nil); err != nil {
		t.Fatalf("callSWI: %v", err)
	}
	if vm.TextPlane.Pos() != 0 || vm.TextPlane.VPos() != 1 {
		t.Fatalf("Pos,VPos = %d,%d, want 0,1 after OS_NewLine's CR+LF", vm.TextPlane.Pos(), vm.TextPlane.VPos())
	}
}

func TestCallSWIOsReadcReturnsQueuedKey(t *testing.T) {
	vm := newTestInterpreter(t)
	vm.Keyboard.Feed('Q')
	out, err := vm.callSWI("OS_ReadC", nil)
	if err != nil {
		t.Fatalf("callSWI: %v", err)
	}
	if len(out) != 1 || out[0].AsInt64() != 'Q' {
		t.Fatalf("OS_ReadC = %v, want ['Q']", out)
	}
}

func TestCallSWIOsReadlineReturnsTypedLine(t *testing.T) {
	vm := newTestInterpreter(t)
	vm.TextIO = NewTextIO(&bytes.Buffer{}, strings.NewReader("hello\n"))
	out, err := vm.callSWI("OS_ReadLine", nil)
	if err != nil {
		t.Fatalf("callSWI: %v", err)
	}
	if len(out) != 1 || !out[0].IsString() {
		t.Fatalf("OS_ReadLine should return a single string value, got %v", out)
	}
	if got := string(vm.Strings.Read(out[0].S)); got != "hello" {
		t.Fatalf("OS_ReadLine = %q, want %q", got, "hello")
	}
}

func TestCallSWIOsByte200SetsEscapeDisabled(t *testing.T) {
	vm := newTestInterpreter(t)
	out, err := vm.callSWI("OS_Byte", []Value{IntValue(200), IntValue(1)})
	if err != nil {
		t.Fatalf("callSWI: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("OS_Byte should return two result values, got %v", out)
	}
	vm.Keyboard.TriggerEscape()
	if vm.Keyboard.EscapeRequested() {
		t.Fatalf("OS_Byte 200,1 should disable escape, but EscapeRequested is still true")
	}
}

func TestCallSWIOsPlotForwardsToVDU(t *testing.T) {
	vm := newTestInterpreter(t)
	if _, err := vm.callSWI("OS_Plot", []Value{IntValue(1), IntValue(15), IntValue(25)}); err != nil {
		t.Fatalf("callSWI: %v", err)
	}
	if vm.Graphics.lastX != 15 || vm.Graphics.lastY != 25 {
		t.Fatalf("lastX,lastY = %d,%d, want 15,25 after OS_Plot", vm.Graphics.lastX, vm.Graphics.lastY)
	}
}

func TestCallSWIOsPlotRequiresThreeArgs(t *testing.T) {
	vm := newTestInterpreter(t)
	_, err := vm.callSWI("OS_Plot", []Value{IntValue(1), IntValue(15)})
	be, ok := err.(*BasicError)
	if !ok || be.Kind != ErrSyntax {
		t.Fatalf("OS_Plot with too few args should raise ErrSyntax, got %v", err)
	}
}

func TestCallSWIOsMouseReturnsReading(t *testing.T) {
	vm := newTestInterpreter(t)
	vm.Mouse.Push(100, 200, 3)
	out, err := vm.callSWI("OS_Mouse", nil)
	if err != nil {
		t.Fatalf("callSWI: %v", err)
	}
	if len(out) != 3 || out[0].AsInt64() != 100 || out[1].AsInt64() != 200 || out[2].AsInt64() != 3 {
		t.Fatalf("OS_Mouse = %v, want [100,200,3]", out)
	}
}

func TestCallSWIOsReadModeVariableReportsCurrentMode(t *testing.T) {
	vm := newTestInterpreter(t)
	mode := vm.Framebuffer.Mode()
	out, err := vm.callSWI("OS_ReadModeVariable", []Value{IntValue(1)})
	if err != nil {
		t.Fatalf("callSWI: %v", err)
	}
	if len(out) != 1 || out[0].AsInt64() != int64(mode.XRes-1) {
		t.Fatalf("OS_ReadModeVariable(1) = %v, want [%d]", out, mode.XRes-1)
	}
}

func TestCallSWIColourtransSetGcolAppliesBackgroundBit(t *testing.T) {
	vm := newTestInterpreter(t)
	if _, err := vm.callSWI("ColourTrans_SetGCOL", []Value{IntValue(128 + 5)}); err != nil {
		t.Fatalf("callSWI: %v", err)
	}
	if vm.Palette.bgLogicalG != 5 {
		t.Fatalf("bgLogicalG = %d, want 5 (colour>=128 should select the background slot)", vm.Palette.bgLogicalG)
	}
}

func TestCallSWIColourtransSetTextColourRequiresArg(t *testing.T) {
	vm := newTestInterpreter(t)
	_, err := vm.callSWI("ColourTrans_SetTextColour", nil)
	be, ok := err.(*BasicError)
	if !ok || be.Kind != ErrSyntax {
		t.Fatalf("ColourTrans_SetTextColour with no args should raise ErrSyntax, got %v", err)
	}
}

func TestCallSWIUnknownNameIsUnsupported(t *testing.T) {
	vm := newTestInterpreter(t)
	_, err := vm.callSWI("Wombat_DoesNotExist", nil)
	be, ok := err.(*BasicError)
	if !ok || be.Kind != ErrUnsupported {
		t.Fatalf("an unknown SWI name should raise ErrUnsupported, got %v", err)
	}
}

func TestCallSWINameIsCaseInsensitive(t *testing.T) {
	vm := newTestInterpreter(t)
	if _, err := vm.callSWI("os_newline", nil); err != nil {
		t.Fatalf("callSWI should match SWI names case-insensitively, got %v", err)
	}
}
