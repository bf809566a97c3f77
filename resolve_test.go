// resolve_test.go - exercises §4.4/§4.5's resolved-pointer cache: lazy
// splice on first read, CLEAR/edit invalidation, and the PROC/FN recursion
// hazard that global-only caching sidesteps.

package main

import "testing"

// bodyHasXVar reports whether body contains at least one unresolved name
// token; bodyHasResolvedVar reports whether it contains at least one cached
// pointer form. Used instead of hardcoded byte offsets, since a statement's
// leading keyword/space encoding is not part of the behavior under test.
func bodyHasXVar(body []byte) bool {
	for i := 0; i < len(body); {
		if Token(body[i]) == TokXVar {
			return true
		}
		i += tokenWidth(body, i)
	}
	return false
}

func bodyHasResolvedVar(body []byte) bool {
	for i := 0; i < len(body); {
		if isResolvedVarToken(Token(body[i])) {
			return true
		}
		i += tokenWidth(body, i)
	}
	return false
}

func TestResolveVarReadSplicesGlobalOnFirstRead(t *testing.T) {
	vm := newTestInterpreter(t)
	line, err := vm.tok.Tokenize(10, "total% = total% + 1")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if _, err := vm.Exec.execStatement(NewCursor(line, 0)); err != nil {
		t.Fatalf("exec: %v", err)
	}

	// The RHS occurrence of total% should now be a cached pointer form; the
	// assignment-target occurrence must remain the unresolved name token.
	if !bodyHasXVar(line.Body) {
		t.Fatalf("assignment target should stay an unresolved name token, body=%v", line.Body)
	}
	if !bodyHasResolvedVar(line.Body) {
		t.Fatalf("the value-read occurrence should have been resolved, body=%v", line.Body)
	}
}

func TestResolveVarReadStaysResolvedAcrossRereads(t *testing.T) {
	vm := newTestInterpreter(t)
	line, err := vm.tok.Tokenize(10, "PRINT n%")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	vm.Vars.LookupOrCreate("n%").Value = IntValue(7)

	if _, err := vm.Exec.execStatement(NewCursor(line, 0)); err != nil {
		t.Fatalf("first exec: %v", err)
	}
	firstBody := append([]byte(nil), line.Body...)

	if _, err := vm.Exec.execStatement(NewCursor(line, 0)); err != nil {
		t.Fatalf("second exec: %v", err)
	}
	if string(line.Body) != string(firstBody) {
		t.Fatalf("re-reading an already-resolved variable should not rewrite the line again")
	}
}

func TestClearInvalidatesResolvedVariable(t *testing.T) {
	vm := newTestInterpreter(t)
	line, err := vm.tok.Tokenize(10, "PRINT total")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if _, err := vm.Exec.execStatement(NewCursor(line, 0)); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if !bodyHasResolvedVar(line.Body) {
		t.Fatalf("setup: expected total to have been resolved before CLEAR, body=%v", line.Body)
	}

	clearLine, err := vm.tok.Tokenize(20, "CLEAR")
	if err != nil {
		t.Fatalf("tokenize CLEAR: %v", err)
	}
	if _, err := vm.Exec.execStatement(NewCursor(clearLine, 0)); err != nil {
		t.Fatalf("exec CLEAR: %v", err)
	}

	if bodyHasResolvedVar(line.Body) || !bodyHasXVar(line.Body) {
		t.Fatalf("CLEAR should invalidate the cached pointer back to the unresolved name token, body=%v", line.Body)
	}
}

func TestProgramEditUnresolvesPreviouslyResolvedLines(t *testing.T) {
	vm := newTestInterpreter(t)
	if err := vm.Exec.runImmediateLine("10 PRINT total"); err != nil {
		t.Fatalf("load: %v", err)
	}
	line := vm.Program.FindLine(10)
	if _, err := vm.Exec.execStatement(NewCursor(line, 0)); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if !bodyHasResolvedVar(line.Body) {
		t.Fatalf("setup: expected total to have been resolved, body=%v", line.Body)
	}

	if err := vm.Exec.runImmediateLine("20 PRINT 1"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if bodyHasResolvedVar(line.Body) || !bodyHasXVar(line.Body) {
		t.Fatalf("inserting a new line should unresolve every cached pointer in the program, body=%v", line.Body)
	}
}

func TestRecursivePROCLocalNeverCachesAcrossFrames(t *testing.T) {
	vm := newTestInterpreter(t)
	runProgram(t, vm,
		`10 PROCcount(3)`,
		`20 END`,
		`30 DEF PROCcount(n%)`,
		`40 IF n%=0 THEN ENDPROC`,
		`50 PROCcount(n%-1)`,
		`60 total%=total%+n%`,
		`70 ENDPROC`,
	)
	// If a parameter's resolved pointer were cached into the shared body of
	// PROCcount, every recursive depth would read back the innermost call's
	// cell instead of its own, corrupting the sum.
	if got := lookup(t, vm, "total%").AsInt64(); got != 6 { // 3+2+1
		t.Fatalf("total%% = %d, want 6", got)
	}
}
