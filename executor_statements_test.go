package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestExecutorPrintWritesDigitsToTextPlane(t *testing.T) {
	vm := newTestInterpreter(t)
	runProgram(t, vm, `10 PRINT 42`, `20 END`)
	if got := vm.TextPlane.cells[0][0]; got != '4' {
		t.Fatalf("cells[0][0] = %q, want '4'", got)
	}
	if got := vm.TextPlane.cells[0][1]; got != '2' {
		t.Fatalf("cells[0][1] = %q, want '2'", got)
	}
}

func TestExecutorPrintStringLiteral(t *testing.T) {
	vm := newTestInterpreter(t)
	runProgram(t, vm, `10 PRINT "HI"`, `20 END`)
	if got := vm.TextPlane.cells[0][0]; got != 'H' {
		t.Fatalf("cells[0][0] = %q, want 'H'", got)
	}
	if got := vm.TextPlane.cells[0][1]; got != 'I' {
		t.Fatalf("cells[0][1] = %q, want 'I'", got)
	}
}

func TestExecutorPrintCommaAdvancesToNextPrintZone(t *testing.T) {
	vm := newTestInterpreter(t)
	runProgram(t, vm, `10 PRINT 1,2`, `20 END`)
	if got := vm.TextPlane.cells[0][0]; got != '1' {
		t.Fatalf("cells[0][0] = %q, want '1'", got)
	}
	// the comma pads to the next 10-column zone before printing 2.
	if got := vm.TextPlane.cells[0][10]; got != '2' {
		t.Fatalf("cells[0][10] = %q, want '2' (PRINT 1,2 should land 2 at column 10)", got)
	}
}

func TestExecutorWidthChangesPrintCommaPitch(t *testing.T) {
	vm := newTestInterpreter(t)
	runProgram(t, vm, `10 WIDTH 5`, `20 PRINT 1,2`, `30 END`)
	if got := vm.TextPlane.cells[0][0]; got != '1' {
		t.Fatalf("cells[0][0] = %q, want '1'", got)
	}
	if got := vm.TextPlane.cells[0][5]; got != '2' {
		t.Fatalf("cells[0][5] = %q, want '2' (WIDTH 5 should move the comma zone to column 5)", got)
	}
	if vm.PrintWidth != 5 {
		t.Fatalf("PrintWidth = %d, want 5", vm.PrintWidth)
	}
}

func TestExecutorWidthZeroDisablesZonePadding(t *testing.T) {
	vm := newTestInterpreter(t)
	runProgram(t, vm, `10 WIDTH 0`, `20 PRINT 1,2`, `30 END`)
	if got := vm.TextPlane.cells[0][0]; got != '1' {
		t.Fatalf("cells[0][0] = %q, want '1'", got)
	}
	// WIDTH 0 pads by a single space rather than dividing into zones.
	if got := vm.TextPlane.cells[0][1]; got != ' ' {
		t.Fatalf("cells[0][1] = %q, want a single pad space", got)
	}
	if got := vm.TextPlane.cells[0][2]; got != '2' {
		t.Fatalf("cells[0][2] = %q, want '2'", got)
	}
}

func TestExecutorPrintSemicolonSuppressesSpacing(t *testing.T) {
	vm := newTestInterpreter(t)
	runProgram(t, vm, `10 PRINT 1;2`, `20 END`)
	if got := vm.TextPlane.cells[0][0]; got != '1' {
		t.Fatalf("cells[0][0] = %q, want '1'", got)
	}
	if got := vm.TextPlane.cells[0][1]; got != '2' {
		t.Fatalf("cells[0][1] = %q, want '2' (semicolon should not insert any spacing)", got)
	}
}

func TestExecutorInputSplitsCommaSeparatedFields(t *testing.T) {
	vm := newTestInterpreter(t)
	vm.TextIO = NewTextIO(&bytes.Buffer{}, strings.NewReader("7, hello\n"))
	runProgram(t, vm, `10 INPUT a%,b$`, `20 END`)
	if got := lookup(t, vm, "a%").AsInt64(); got != 7 {
		t.Fatalf("a%% = %d, want 7", got)
	}
	s := lookup(t, vm, "b$")
	if got := string(vm.Strings.Read(s.S)); got != "hello" {
		t.Fatalf("b$ = %q, want %q (fields should be trimmed of surrounding space)", got, "hello")
	}
}

func TestExecutorInputEchoesPromptAndQuestionMark(t *testing.T) {
	vm := newTestInterpreter(t)
	var out bytes.Buffer
	vm.TextIO = NewTextIO(&out, strings.NewReader("5\n"))
	runProgram(t, vm, `10 INPUT "Age" a%`, `20 END`)
	if !strings.Contains(out.String(), "Age") || !strings.HasSuffix(out.String(), "? ") {
		t.Fatalf("INPUT \"Age\" should echo the prompt text followed by \"? \", got %q", out.String())
	}
}

func TestExecutorProcCallWithReturnParamWritesBack(t *testing.T) {
	vm := newTestInterpreter(t)
	runProgram(t, vm,
		`10 n%=5`,
		`20 PROCdouble(n%)`,
		`30 END`,
		`40 DEF PROCdouble(RETURN x%)`,
		`50 x%=x%*2`,
		`60 ENDPROC`,
	)
	if got := lookup(t, vm, "n%").AsInt64(); got != 10 {
		t.Fatalf("n%% = %d, want 10 (the RETURN parameter should write back to the caller's cell)", got)
	}
}

func TestExecutorDefFnOneLinerReturnsValue(t *testing.T) {
	vm := newTestInterpreter(t)
	runProgram(t, vm,
		`10 result=FNsquare(4)`,
		`20 END`,
		`30 DEF FNsquare(n)=n*n`,
	)
	if got := lookup(t, vm, "result").AsInt64(); got != 16 {
		t.Fatalf("result = %d, want 16", got)
	}
}

func TestExecutorCallingUndefinedProcIsError(t *testing.T) {
	vm := newTestInterpreter(t)
	if err := vm.Exec.runImmediateLine("10 PROCnothere"); err != nil {
		t.Fatalf("load: %v", err)
	}
	err := vm.Exec.Run()
	be, ok := err.(*BasicError)
	if !ok || be.Kind != ErrBadCall {
		t.Fatalf("calling an undefined PROC should raise ErrBadCall, got %v", err)
	}
}

func TestExecutorPlotDrawsResolvedGraphForegroundPixel(t *testing.T) {
	vm := newTestInterpreter(t)
	runProgram(t, vm,
		`10 MODE 1`,
		`20 GCOL 0,1`,
		`30 MOVE 0,0`,
		`40 DRAW 0,0`,
		`50 END`,
	)
	want := vm.Palette.GraphForeground()
	got := vm.Framebuffer.GetPixel(0, vm.Framebuffer.Mode().YRes-1)
	if got != want {
		t.Fatalf("GetPixel at OS origin (0,0) = %#x, want the resolved GCOL colour %#x", got, want)
	}
}

func TestExecutorModeSwitchesFramebufferGeometry(t *testing.T) {
	vm := newTestInterpreter(t)
	runProgram(t, vm, `10 MODE 1`, `20 END`)
	mode := vm.Framebuffer.Mode()
	if mode.XRes != 320 || mode.YRes != 256 {
		t.Fatalf("Mode() after MODE 1 = %+v, want the 320x256 Mode 1 geometry", mode)
	}
}

func TestExecutorClsClearsTextWindow(t *testing.T) {
	vm := newTestInterpreter(t)
	runProgram(t, vm, `10 PRINT "X"`, `20 CLS`, `30 END`)
	if got := vm.TextPlane.cells[0][0]; got != ' ' {
		t.Fatalf("cells[0][0] = %q, want ' ' after CLS", got)
	}
}
