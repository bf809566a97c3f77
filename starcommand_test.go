package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunStarCommandQuitEndsRun(t *testing.T) {
	vm := newTestInterpreter(t)
	ct, err := vm.Exec.runStarCommand("QUIT")
	if err != nil {
		t.Fatalf("runStarCommand: %v", err)
	}
	if ct.kind != ctrlEnd {
		t.Fatalf("*QUIT should return ctrlEnd, got %v", ct.kind)
	}
}

func TestRunStarCommandBlankLineIsNoop(t *testing.T) {
	vm := newTestInterpreter(t)
	ct, err := vm.Exec.runStarCommand("   ")
	if err != nil {
		t.Fatalf("runStarCommand: %v", err)
	}
	if ct.kind != ctrlContinue {
		t.Fatalf("a blank *command should just continue, got %v", ct.kind)
	}
}

func TestRunStarCommandKeyStoresFnKeyExpansion(t *testing.T) {
	vm := newTestInterpreter(t)
	if _, err := vm.Exec.runStarCommand("KEY 0 PRINT TIME$"); err != nil {
		t.Fatalf("runStarCommand: %v", err)
	}
	if got := string(vm.Keyboard.fnKeys[0]); got != "PRINT TIME$" {
		t.Fatalf("fnKeys[0] = %q, want %q", got, "PRINT TIME$")
	}
}

func TestRunStarCommandKeyTooFewArgsIsBadCommand(t *testing.T) {
	vm := newTestInterpreter(t)
	_, err := vm.Exec.runStarCommand("KEY 0")
	be, ok := err.(*BasicError)
	if !ok || be.Kind != ErrBadCommand {
		t.Fatalf("*KEY with no expansion text should raise ErrBadCommand, got %v", err)
	}
}

func TestRunStarCommandHelpWritesBanner(t *testing.T) {
	vm := newTestInterpreter(t)
	if _, err := vm.Exec.runStarCommand("HELP"); err != nil {
		t.Fatalf("runStarCommand: %v", err)
	}
	if vm.TextPlane.cells[0][0] != 'r' {
		t.Fatalf("*HELP should write its banner to the text plane, cells[0][0] = %q", vm.TextPlane.cells[0][0])
	}
}

func TestRunStarCommandUnknownWordIsBadCommand(t *testing.T) {
	vm := newTestInterpreter(t)
	_, err := vm.Exec.runStarCommand("FROBNICATE")
	be, ok := err.(*BasicError)
	if !ok || be.Kind != ErrBadCommand {
		t.Fatalf("an unrecognised *command should raise ErrBadCommand, got %v", err)
	}
}

func TestRunStarCommandSaveThenLoadRoundTripsArena(t *testing.T) {
	vm := newTestInterpreter(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.bas")

	if err := vm.Exec.runImmediateLine("10 PRINT 1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := vm.Exec.runStarCommand("SAVE " + path); err != nil {
		t.Fatalf("*SAVE: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("*SAVE should have written a non-empty program image")
	}

	vm2 := newTestInterpreter(t)
	if _, err := vm2.Exec.runStarCommand("LOAD " + path); err != nil {
		t.Fatalf("*LOAD: %v", err)
	}
	if vm2.Arena.Top() != vm2.Arena.Page()+uint32(len(data)) {
		t.Fatalf("*LOAD should advance Top() by the loaded byte count")
	}
}

func TestRunStarCommandSaveMissingArgIsBadCommand(t *testing.T) {
	vm := newTestInterpreter(t)
	_, err := vm.Exec.runStarCommand("SAVE")
	be, ok := err.(*BasicError)
	if !ok || be.Kind != ErrBadCommand {
		t.Fatalf("*SAVE with no filename should raise ErrBadCommand, got %v", err)
	}
}

func TestRunStarCommandLoadMissingFileIsFileNotFound(t *testing.T) {
	vm := newTestInterpreter(t)
	_, err := vm.Exec.runStarCommand("LOAD " + filepath.Join(t.TempDir(), "nope.bas"))
	be, ok := err.(*BasicError)
	if !ok || be.Kind != ErrFileNotFound {
		t.Fatalf("*LOAD of a missing file should raise ErrFileNotFound, got %v", err)
	}
}

func TestRunStarCommandExecReplaysFileAsImmediateLines(t *testing.T) {
	vm := newTestInterpreter(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.txt")
	if err := os.WriteFile(path, []byte("PRINT 1\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := vm.Exec.runStarCommand("EXEC " + path); err != nil {
		t.Fatalf("*EXEC: %v", err)
	}
	if vm.TextPlane.cells[0][0] != '1' {
		t.Fatalf("*EXEC should have run the PRINT 1 line immediately, cells[0][0] = %q", vm.TextPlane.cells[0][0])
	}
}

func TestRunStarCommandNewmodeIsUnsupported(t *testing.T) {
	vm := newTestInterpreter(t)
	_, err := vm.Exec.runStarCommand("NEWMODE")
	be, ok := err.(*BasicError)
	if !ok || be.Kind != ErrUnsupported {
		t.Fatalf("*NEWMODE should raise ErrUnsupported, got %v", err)
	}
}

func TestRunStarCommandWintitleUpdatesDisplayConfig(t *testing.T) {
	vm := newTestInterpreter(t)
	if _, err := vm.Exec.runStarCommand("WINTITLE My Program"); err != nil {
		t.Fatalf("*WINTITLE: %v", err)
	}
	if got := vm.Video.GetDisplayConfig().Title; got != "My Program" {
		t.Fatalf("display title = %q, want %q", got, "My Program")
	}
}

func TestRunStarCommandFullscreenTogglesOffWithArg(t *testing.T) {
	vm := newTestInterpreter(t)
	if _, err := vm.Exec.runStarCommand("FULLSCREEN OFF"); err != nil {
		t.Fatalf("*FULLSCREEN OFF: %v", err)
	}
	if vm.Video.GetDisplayConfig().Fullscreen {
		t.Fatalf("*FULLSCREEN OFF should leave Fullscreen false")
	}
	if _, err := vm.Exec.runStarCommand("FULLSCREEN"); err != nil {
		t.Fatalf("*FULLSCREEN: %v", err)
	}
	if !vm.Video.GetDisplayConfig().Fullscreen {
		t.Fatalf("bare *FULLSCREEN should turn Fullscreen on")
	}
}

func TestRunImmediateLineStoresNumberedLineWithoutRunning(t *testing.T) {
	vm := newTestInterpreter(t)
	if err := vm.Exec.runImmediateLine("10 PRINT 1"); err != nil {
		t.Fatalf("runImmediateLine: %v", err)
	}
	if vm.TextPlane.cells[0][0] != ' ' {
		t.Fatalf("storing a numbered line should not execute it, cells[0][0] = %q", vm.TextPlane.cells[0][0])
	}
	if line, _ := vm.Program.FindLineOrAfter(10); line == nil || line.LineNo != 10 {
		t.Fatalf("line 10 should now be present in the program store, got %+v", line)
	}
}

func TestRunImmediateLineRunsUnnumberedLineDirectly(t *testing.T) {
	vm := newTestInterpreter(t)
	if err := vm.Exec.runImmediateLine("PRINT 1"); err != nil {
		t.Fatalf("runImmediateLine: %v", err)
	}
	if vm.TextPlane.cells[0][0] != '1' {
		t.Fatalf("an unnumbered line should run immediately, cells[0][0] = %q", vm.TextPlane.cells[0][0])
	}
}

func TestRunStarCommandRenumberRewritesLinesAndRefs(t *testing.T) {
	vm := newTestInterpreter(t)
	if err := vm.Exec.runImmediateLine("10 GOTO 20"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := vm.Exec.runImmediateLine("20 PRINT 1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := vm.Exec.runStarCommand("RENUMBER 100,10"); err != nil {
		t.Fatalf("*RENUMBER: %v", err)
	}
	if vm.Program.FindLine(100) == nil || vm.Program.FindLine(110) == nil {
		t.Fatalf("expected lines renumbered to 100,110")
	}
	if got := Expand(vm.Program.FindLine(100)); got != "GOTO 110" {
		t.Fatalf("GOTO target not rewritten: %q", got)
	}
}

func TestRunStarCommandRenumberDefaultsTo10Step10(t *testing.T) {
	vm := newTestInterpreter(t)
	if err := vm.Exec.runImmediateLine("5 PRINT 1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := vm.Exec.runStarCommand("RENUMBER"); err != nil {
		t.Fatalf("*RENUMBER: %v", err)
	}
	if vm.Program.FindLine(10) == nil {
		t.Fatalf("expected default RENUMBER to start at line 10")
	}
}
