// program_store.go - ordered sequence of tokenized lines addressed by line
// number; line-number -> line-address resolution and renumbering (C4).
//
// Grounded on video_antic.go's ordered-by-address display-list structure,
// adapted from scanline addresses to BASIC line numbers: both are a sorted
// sequence of fixed-header variable-body records walked sequentially by the
// execution loop.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"encoding/binary"
	"sort"
)

// ProgramStore holds the program area of the arena: an ascending sequence
// of TokenizedLines from PAGE to TOP (§3's program store invariants).
type ProgramStore struct {
	arena *Arena
	lines []*TokenizedLine // kept in ascending LineNo order
	vars  *VariableTable   // attached post-construction; nil in bare unit tests
}

func NewProgramStore(a *Arena) *ProgramStore {
	return &ProgramStore{arena: a}
}

// AttachVariables wires the variable table InsertLine/DeleteLine unresolve
// against on edit (§4.5). Interpreter construction calls this once; tests
// that only exercise line storage never need to.
func (p *ProgramStore) AttachVariables(vt *VariableTable) {
	p.vars = vt
}

// InsertLine replaces an existing line with an equal number, or splices the
// new line in to keep ascending order (§4.4).
func (p *ProgramStore) InsertLine(t *TokenizedLine) {
	idx := sort.Search(len(p.lines), func(i int) bool { return p.lines[i].LineNo >= t.LineNo })
	if idx < len(p.lines) && p.lines[idx].LineNo == t.LineNo {
		p.lines[idx] = t
		p.touchTop()
		p.unresolveOnEdit()
		return
	}
	p.lines = append(p.lines, nil)
	copy(p.lines[idx+1:], p.lines[idx:])
	p.lines[idx] = t
	p.touchTop()
	p.unresolveOnEdit()
}

// DeleteLine removes the line with the given number, if present.
func (p *ProgramStore) DeleteLine(lineNo uint16) {
	idx := sort.Search(len(p.lines), func(i int) bool { return p.lines[i].LineNo >= lineNo })
	if idx < len(p.lines) && p.lines[idx].LineNo == lineNo {
		p.lines = append(p.lines[:idx], p.lines[idx+1:]...)
		p.touchTop()
		p.unresolveOnEdit()
	}
}

// unresolveOnEdit tears down any resolved pointers every time the program's
// text changes, so a stale cached cell/line pointer can never survive an
// edit into the next RUN (§4.5, §8). A no-op until something has actually
// resolved the program (vars is nil in tests that only exercise storage).
func (p *ProgramStore) unresolveOnEdit() {
	if p.vars == nil {
		return
	}
	p.UnresolveAll(p.vars)
}

// FindLine returns the line with the given number, or nil.
func (p *ProgramStore) FindLine(lineNo uint16) *TokenizedLine {
	idx := sort.Search(len(p.lines), func(i int) bool { return p.lines[i].LineNo >= lineNo })
	if idx < len(p.lines) && p.lines[idx].LineNo == lineNo {
		return p.lines[idx]
	}
	return nil
}

// FindLineOrAfter returns the first line with number >= lineNo, or nil past
// the end - used by GOTO/GOSUB target resolution and NEXT-line stepping.
func (p *ProgramStore) FindLineOrAfter(lineNo uint16) (*TokenizedLine, int) {
	idx := sort.Search(len(p.lines), func(i int) bool { return p.lines[i].LineNo >= lineNo })
	if idx < len(p.lines) {
		return p.lines[idx], idx
	}
	return nil, -1
}

// LineAt returns the line at position idx in program order, or nil past the
// end (the sentinel position).
func (p *ProgramStore) LineAt(idx int) *TokenizedLine {
	if idx < 0 || idx >= len(p.lines) {
		return nil
	}
	return p.lines[idx]
}

// Len reports the number of lines currently stored.
func (p *ProgramStore) Len() int { return len(p.lines) }

// IterateLines walks lines with LineNo in [start,end] calling fn for each;
// stops early if fn returns false.
func (p *ProgramStore) IterateLines(start, end uint16, fn func(*TokenizedLine) bool) {
	for _, l := range p.lines {
		if l.LineNo < start {
			continue
		}
		if l.LineNo > end {
			break
		}
		if !fn(l) {
			return
		}
	}
}

// Renumber rewrites every line's LineNo starting at start, incrementing by
// step, and atomically rewrites every LINENUM/XLINENUM token operand so
// GOTO/GOSUB/RESTORE targets stay reachable (§4.4).
func (p *ProgramStore) Renumber(start, step uint16) {
	oldToNew := make(map[uint16]uint16, len(p.lines))
	n := start
	for _, l := range p.lines {
		oldToNew[l.LineNo] = n
		n += step
	}
	for _, l := range p.lines {
		rewriteLineRefs(l, oldToNew)
		l.LineNo = oldToNew[l.LineNo]
	}
}

func rewriteLineRefs(t *TokenizedLine, mapping map[uint16]uint16) {
	b := t.Body
	for i := 0; i < len(b); {
		tok := Token(b[i])
		switch tok {
		case TokLineNum, TokXLineNum:
			old := uint16(b[i+1]) | uint16(b[i+2])<<8
			if nw, ok := mapping[old]; ok {
				b[i+1] = byte(nw)
				b[i+2] = byte(nw >> 8)
			}
			i += 3
		case TokStringCon, TokQStringCon:
			n := int(b[i+1]) | int(b[i+2])<<8
			i += 3 + n
		case TokIntCon:
			i += 5
		case TokInt64Con, TokFloatCon:
			i += 9
		case TokSmallInt:
			i += 2
		case TokXVar:
			j := i + 1
			for j < len(b) && b[j] != 0 {
				j++
			}
			i = j + 1
		default:
			i++
		}
	}
}

// ResolveAll performs the line-number half of the resolution pass §1/§4.4
// name as one of THE CORE's three defining pieces: every XLINENUM whose
// target currently exists becomes LINENUM, a direct index rather than a
// name needing a FindLine search on every GOTO/GOSUB/RESTORE/THEN/ELSE.
// Called once at RUN (§6.5), before execution starts; UnresolveAll undoes it
// on any edit or CLEAR.
//
// Variable name tokens (XVAR) are deliberately NOT resolved here. Unlike a
// line number, a name occurrence is grammatically ambiguous up front: it can
// be a value read (safe to cache) or a DIM/LOCAL/PRIVATE/FOR/READ/SWAP
// declaration or a PROC/FN routine name (c.readName's call sites require a
// literal XVAR and error on anything else) - a whole-program scan can't tell
// those apart without re-deriving the statement grammar. expr_eval.go's
// resolveVarRead instead resolves a variable lazily, in place, the first
// time it is actually read as a value - the one position that's
// unambiguously a read - which keeps every declaration/target site untouched.
func (p *ProgramStore) ResolveAll(vt *VariableTable) {
	for _, l := range p.lines {
		l.Body = resolveLine(l.Body, p)
	}
}

// UnresolveAll reverts every resolved token stored across the whole program
// back to its "X" form, clearing the patch sites that tracked them (§4.5,
// §8). Safe to call on an already-unresolved program.
func (p *ProgramStore) UnresolveAll(vt *VariableTable) {
	for _, l := range p.lines {
		l.Body = unresolveLine(l.Body, vt)
	}
	for _, c := range vt.resolved {
		c.PatchSites = nil
	}
	vt.resetResolved()
}

func resolveLine(b []byte, p *ProgramStore) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		tok := Token(b[i])
		switch tok {
		case TokXVar:
			j := i + 1
			for j < len(b) && b[j] != 0 {
				j++
			}
			out = append(out, b[i:j+1]...)
			i = j + 1
		case TokXLineNum:
			n := uint16(b[i+1]) | uint16(b[i+2])<<8
			if p.FindLine(n) != nil {
				out = append(out, byte(TokLineNum), b[i+1], b[i+2])
			} else {
				out = append(out, b[i], b[i+1], b[i+2])
			}
			i += 3
		default:
			n := copyLiteralToken(&out, b, i)
			i += n
		}
	}
	return out
}

func unresolveLine(b []byte, vt *VariableTable) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		tok := Token(b[i])
		switch tok {
		case TokXVar:
			j := i + 1
			for j < len(b) && b[j] != 0 {
				j++
			}
			out = append(out, b[i:j+1]...)
			i = j + 1
		case TokStaticVar:
			out = append(out, byte(TokXVar))
			out = append(out, []byte(staticName(b[i+1]))...)
			out = append(out, 0)
			i += 2
		case TokIntVar, TokInt64Var, TokFloatVar, TokStringVar, TokArrayVar:
			idx := binary.LittleEndian.Uint32(b[i+1:])
			name := ""
			if cell := vt.CellAt(idx); cell != nil {
				name = cell.Name
			}
			out = append(out, byte(TokXVar))
			out = append(out, []byte(name)...)
			out = append(out, 0)
			i += 5
		case TokLineNum:
			out = append(out, byte(TokXLineNum), b[i+1], b[i+2])
			i += 3
		case TokXLineNum:
			out = append(out, b[i], b[i+1], b[i+2])
			i += 3
		default:
			n := copyLiteralToken(&out, b, i)
			i += n
		}
	}
	return out
}

// copyLiteralToken appends the non-variable, non-line-ref token starting at
// b[i] to *out verbatim and returns its width, shared by resolveLine and
// unresolveLine for every token kind neither pass touches.
func copyLiteralToken(out *[]byte, b []byte, i int) int {
	switch Token(b[i]) {
	case TokStringCon, TokQStringCon:
		n := int(b[i+1]) | int(b[i+2])<<8
		*out = append(*out, b[i:i+3+n]...)
		return 3 + n
	case TokIntCon:
		*out = append(*out, b[i:i+5]...)
		return 5
	case TokInt64Con, TokFloatCon:
		*out = append(*out, b[i:i+9]...)
		return 9
	case TokSmallInt:
		*out = append(*out, b[i], b[i+1])
		return 2
	default:
		*out = append(*out, b[i])
		return 1
	}
}

// staticName reconstructs A%..Z%/@% from the static table index TokStaticVar
// carries, the inverse of StaticIndex.
func staticName(idx byte) string {
	if idx == 26 {
		return "@%"
	}
	return string(rune('A'+idx)) + "%"
}

// touchTop recomputes the TOP boundary pointer from the serialized size of
// every stored line, keeping PAGE<=TOP<=LOMEM (§3 invariant).
func (p *ProgramStore) touchTop() {
	total := uint32(0)
	for _, l := range p.lines {
		total += uint32(6 + len(l.Body))
	}
	p.arena.SetTop(p.arena.Page() + total)
}

// Clear empties the program store (NEW).
func (p *ProgramStore) Clear() {
	p.lines = nil
	p.arena.SetTop(p.arena.Page())
}
