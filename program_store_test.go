package main

import "testing"

func newTestProgramStore(t *testing.T) *ProgramStore {
	t.Helper()
	return NewProgramStore(NewArena(64 * 1024))
}

func lineOf(n uint16) *TokenizedLine {
	return &TokenizedLine{LineNo: n, Body: []byte{byte(TokIntZero)}}
}

func TestProgramStoreInsertKeepsAscendingOrder(t *testing.T) {
	p := newTestProgramStore(t)
	p.InsertLine(lineOf(20))
	p.InsertLine(lineOf(10))
	p.InsertLine(lineOf(30))

	if p.Len() != 3 {
		t.Fatalf("expected 3 lines, got %d", p.Len())
	}
	want := []uint16{10, 20, 30}
	for i, w := range want {
		if got := p.LineAt(i).LineNo; got != w {
			t.Fatalf("line %d: got %d, want %d", i, got, w)
		}
	}
}

func TestProgramStoreInsertReplacesExistingLineNumber(t *testing.T) {
	p := newTestProgramStore(t)
	p.InsertLine(lineOf(10))
	replacement := &TokenizedLine{LineNo: 10, Body: []byte{byte(TokIntOne)}}
	p.InsertLine(replacement)

	if p.Len() != 1 {
		t.Fatalf("expected 1 line after replace, got %d", p.Len())
	}
	if p.FindLine(10) != replacement {
		t.Fatalf("FindLine(10) should return the replacement, not the original")
	}
}

func TestProgramStoreDeleteLine(t *testing.T) {
	p := newTestProgramStore(t)
	p.InsertLine(lineOf(10))
	p.InsertLine(lineOf(20))
	p.DeleteLine(10)

	if p.Len() != 1 {
		t.Fatalf("expected 1 line after delete, got %d", p.Len())
	}
	if p.FindLine(10) != nil {
		t.Fatalf("line 10 should be gone")
	}
	if p.FindLine(20) == nil {
		t.Fatalf("line 20 should survive")
	}
}

func TestProgramStoreFindLineOrAfter(t *testing.T) {
	p := newTestProgramStore(t)
	p.InsertLine(lineOf(10))
	p.InsertLine(lineOf(30))

	line, idx := p.FindLineOrAfter(15)
	if line == nil || line.LineNo != 30 || idx != 1 {
		t.Fatalf("FindLineOrAfter(15) should land on line 30 at index 1, got %v idx=%d", line, idx)
	}

	line, idx = p.FindLineOrAfter(100)
	if line != nil || idx != -1 {
		t.Fatalf("FindLineOrAfter past the end should return nil,-1, got %v idx=%d", line, idx)
	}
}

func TestProgramStoreIterateLinesRespectsRangeAndStop(t *testing.T) {
	p := newTestProgramStore(t)
	for _, n := range []uint16{10, 20, 30, 40} {
		p.InsertLine(lineOf(n))
	}
	var seen []uint16
	p.IterateLines(15, 35, func(l *TokenizedLine) bool {
		seen = append(seen, l.LineNo)
		return true
	})
	if len(seen) != 2 || seen[0] != 20 || seen[1] != 30 {
		t.Fatalf("IterateLines(15,35) = %v, want [20 30]", seen)
	}

	seen = nil
	p.IterateLines(0, 40, func(l *TokenizedLine) bool {
		seen = append(seen, l.LineNo)
		return l.LineNo < 20
	})
	if len(seen) != 2 || seen[1] != 20 {
		t.Fatalf("IterateLines should stop once fn returns false, got %v", seen)
	}
}

func TestProgramStoreRenumberRewritesLineRefs(t *testing.T) {
	p := newTestProgramStore(t)
	tk := NewTokenizer()
	// Go through the real tokenizer, not a hand-built TokXLineNum body: this
	// is what proves the tokenizer's GOTO keyword-context tracking actually
	// emits the token Renumber/rewriteLineRefs look for.
	gotoLine, err := tk.Tokenize(10, "GOTO 20")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	targetLine, err := tk.Tokenize(20, "PRINT 1")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	p.InsertLine(gotoLine)
	p.InsertLine(targetLine)

	p.Renumber(100, 10)

	if p.LineAt(0).LineNo != 100 || p.LineAt(1).LineNo != 110 {
		t.Fatalf("renumber should produce 100,110, got %d,%d", p.LineAt(0).LineNo, p.LineAt(1).LineNo)
	}
	body := p.LineAt(0).Body
	idx := -1
	for i, b := range body {
		if Token(b) == TokXLineNum {
			idx = i
			break
		}
	}
	if idx == -1 {
		t.Fatalf("tokenized GOTO 20 should carry a TokXLineNum operand, got body %v", body)
	}
	got := uint16(body[idx+1]) | uint16(body[idx+2])<<8
	if got != 110 {
		t.Fatalf("GOTO target should be rewritten to the renumbered line 110, got %d", got)
	}
	if got := Expand(p.LineAt(0)); got != "GOTO 110" {
		t.Fatalf("Expand after renumber = %q, want %q", got, "GOTO 110")
	}
}

func TestProgramStoreClearEmptiesAndResetsTop(t *testing.T) {
	p := newTestProgramStore(t)
	p.InsertLine(lineOf(10))
	p.InsertLine(lineOf(20))
	p.Clear()

	if p.Len() != 0 {
		t.Fatalf("Clear should empty the store, got %d lines", p.Len())
	}
	if p.arena.Top() != p.arena.Page() {
		t.Fatalf("Clear should reset TOP to PAGE")
	}
}
