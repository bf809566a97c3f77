// executor_statements.go - the statement families too large for executor.go's
// main switch: PRINT/INPUT, PROC/FN call mechanics, the VDU/graphics
// statements, file I/O, SYS, and the star-like commands.
//
// Grounded on vdu.go's VDU/PLOT dispatch tables (the graphics statements are
// thin wrappers calling straight into VDUQueue/Graphics/Palette) and on
// cpu_z80.go's CALL/RET handling for the PROC/FN call mechanics (save the
// caller's PC-equivalent, push a frame, recurse the fetch/decode loop, restore
// on return) - except here the "host stack" really is the Go call stack,
// since nothing needs to suspend a call mid-body and resume it later.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// ---- PRINT ----

func (ex *Executor) execPrint(c *Cursor) (ctrl, error) {
	lastWasSeparator := true
	for {
		c.skipSpaces()
		if c.AtEnd() {
			break
		}
		if b, _ := c.PeekByte(); b == ':' {
			break
		}
		b, _ := c.PeekByte()
		switch {
		case b == ',':
			c.Pos++
			ex.printComma()
			lastWasSeparator = true
			continue
		case b == ';':
			c.Pos++
			lastWasSeparator = true
			continue
		case Token(b) == KwTAB:
			c.Pos++ // the keyword text "TAB(" already consumed its paren
			x, err := ex.vm.Evaluator().Eval(c)
			if err != nil {
				return ctrl{}, err
			}
			c.skipSpaces()
			y := -1
			if b2, ok := c.PeekByte(); ok && b2 == ',' {
				c.Pos++
				yv, err := ex.vm.Evaluator().Eval(c)
				if err != nil {
					return ctrl{}, err
				}
				y = int(yv.AsInt64())
			}
			if err := ex.vm.Evaluator().expectChar(c, ')'); err != nil {
				return ctrl{}, err
			}
			if y >= 0 {
				ex.vm.TextPlane.TabTo(int(x.AsInt64()), y)
			} else {
				ex.vm.TextPlane.TabTo(int(x.AsInt64()), ex.vm.TextPlane.VPos())
			}
			ex.vm.PrintColumn = ex.vm.TextPlane.Pos()
			lastWasSeparator = true
			continue
		case Token(b) == KwSPC:
			c.Pos++
			if err := ex.vm.Evaluator().expectChar(c, '('); err != nil {
				return ctrl{}, err
			}
			n, err := ex.vm.Evaluator().Eval(c)
			if err != nil {
				return ctrl{}, err
			}
			if err := ex.vm.Evaluator().expectChar(c, ')'); err != nil {
				return ctrl{}, err
			}
			for i := int64(0); i < n.AsInt64(); i++ {
				if err := ex.vm.VDU.WriteString([]byte{' '}); err != nil {
					return ctrl{}, err
				}
			}
			ex.vm.PrintColumn = ex.vm.TextPlane.Pos()
			lastWasSeparator = true
			continue
		}
		v, err := ex.vm.Evaluator().Eval(c)
		if err != nil {
			return ctrl{}, err
		}
		if err := ex.printValue(v); err != nil {
			return ctrl{}, err
		}
		lastWasSeparator = false
	}
	if !lastWasSeparator {
		if err := ex.vm.VDU.WriteString([]byte("\r\n")); err != nil {
			return ctrl{}, err
		}
		ex.vm.PrintColumn = 0
	}
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) printValue(v Value) error {
	var s string
	switch {
	case v.IsString():
		s = string(ex.vm.Strings.Read(v.S))
	case v.Kind == KindFloat:
		s = strconv.FormatFloat(v.F, 'g', 9, 64)
	default:
		s = fmt.Sprintf("%d", v.AsInt64())
	}
	if err := ex.vm.VDU.WriteString([]byte(s)); err != nil {
		return err
	}
	ex.vm.PrintColumn = ex.vm.TextPlane.Pos()
	return nil
}

// printComma advances to the next print zone, whose pitch is set by the
// WIDTH statement (classic BASIC V default: 10 columns). WIDTH 0 means "no
// wrapping", matching real BASIC V where a zero width just pads to the next
// column instead of dividing by zero.
func (ex *Executor) printComma() {
	width := ex.vm.PrintWidth
	if width <= 0 {
		ex.vm.VDU.WriteString([]byte{' '})
		ex.vm.PrintColumn = ex.vm.TextPlane.Pos()
		return
	}
	col := ex.vm.TextPlane.Pos()
	next := (col/width + 1) * width
	for col < next {
		ex.vm.VDU.WriteString([]byte{' '})
		col++
	}
	ex.vm.PrintColumn = ex.vm.TextPlane.Pos()
}

// ---- WIDTH ----

// execWidth sets the PRINT comma-field pitch (spec.md §4.7's "@% format
// state"). WIDTH with no argument is a no-op that leaves the current value
// unchanged, mirroring how the teacher's statement handlers treat a bare keyword.
func (ex *Executor) execWidth(c *Cursor) (ctrl, error) {
	c.skipSpaces()
	if c.AtEnd() {
		return ctrl{kind: ctrlContinue}, nil
	}
	if b, ok := c.PeekByte(); ok && b == ':' {
		return ctrl{kind: ctrlContinue}, nil
	}
	v, err := ex.vm.Evaluator().Eval(c)
	if err != nil {
		return ctrl{}, err
	}
	n := int(v.AsInt64())
	if n < 0 {
		return ctrl{}, NewErrorf(ErrBadNumber, int(c.Line.LineNo), "bad WIDTH")
	}
	ex.vm.PrintWidth = n
	return ctrl{kind: ctrlContinue}, nil
}

// ---- RENUMBER ----

// execRenumber implements the direct command "RENUMBER [start][,step]"
// (§4.4), reached the same way RUN/OLD/LIST are: typed at the prompt or
// via runImmediateLine, dispatched through the TokCommandClass prefix
// rather than '*'. Classic BASIC V defaults: start 10, step 10.
func (ex *Executor) execRenumber(c *Cursor) (ctrl, error) {
	start, step := uint16(10), uint16(10)
	c.skipSpaces()
	if !c.AtEnd() {
		if b, ok := c.PeekByte(); ok && b != ':' {
			v, err := ex.vm.Evaluator().Eval(c)
			if err != nil {
				return ctrl{}, err
			}
			start = uint16(v.AsInt64())
			c.skipSpaces()
			if b, ok := c.PeekByte(); ok && b == ',' {
				c.Pos++
				v2, err := ex.vm.Evaluator().Eval(c)
				if err != nil {
					return ctrl{}, err
				}
				step = uint16(v2.AsInt64())
			}
		}
	}
	ex.vm.Program.Renumber(start, step)
	c.Pos = len(c.Line.Body)
	return ctrl{kind: ctrlContinue}, nil
}

// ---- INPUT ----

// execInput supports the console form only: a single leading prompt followed
// by a comma-separated variable list reading one split input line. INPUT#h
// (reading fields from an open file) has no formatted-field counterpart in
// FileIO's byte-oriented model and is rejected as unsupported.
func (ex *Executor) execInput(c *Cursor) (ctrl, error) {
	line := int(c.Line.LineNo)
	c.skipSpaces()
	if b, ok := c.PeekByte(); ok && b == '#' {
		return ctrl{}, NewError(ErrUnsupported, line)
	}
	prompt := ""
	appendMark := true
	for {
		c.skipSpaces()
		b, ok := c.PeekByte()
		if !ok {
			break
		}
		if Token(b) == TokStringCon || Token(b) == TokQStringCon {
			v, err := c.readOperandToken(ex.vm)
			if err != nil {
				return ctrl{}, err
			}
			prompt += string(ex.vm.Strings.Read(v.S))
			c.skipSpaces()
			if b2, ok := c.PeekByte(); ok && (b2 == ';' || b2 == ',') {
				if b2 == ';' {
					appendMark = false
				}
				c.Pos++
			}
			continue
		}
		break
	}
	if appendMark {
		prompt += "? "
	}
	var names []string
	for {
		c.skipSpaces()
		if _, ok := c.PeekByte(); !ok {
			break
		}
		name, err := readVarName(c)
		if err != nil {
			return ctrl{}, err
		}
		names = append(names, name)
		c.skipSpaces()
		if b, ok := c.PeekByte(); ok && b == ',' {
			c.Pos++
			continue
		}
		break
	}
	if len(names) == 0 {
		return ctrl{}, NewError(ErrSyntax, line)
	}
	raw, err := ex.vm.TextIO.ReadLine(prompt, 256)
	if err != nil {
		return ctrl{}, err
	}
	fields := splitInputFields(raw)
	for i, name := range names {
		field := ""
		if i < len(fields) {
			field = fields[i]
		}
		t := VarTypeFromName(name)
		v, err := parseInputValue(ex.vm, field, t)
		if err != nil {
			return ctrl{}, err
		}
		cell := ex.vm.Vars.LookupOrCreate(name)
		cell.Value = ex.coerce(v, t)
	}
	return ctrl{kind: ctrlContinue}, nil
}

func splitInputFields(raw []byte) []string {
	parts := strings.Split(string(raw), ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func parseInputValue(vm *Interpreter, field string, t VarType) (Value, error) {
	if t == VarString {
		d, err := vm.Strings.NewFromBytes([]byte(field))
		if err != nil {
			return Value{}, err
		}
		return StringValue(d), nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		f = 0
	}
	return FloatValue(f), nil
}

// ---- DEF PROC / DEF FN ----

// indexProcs scans the whole program store once, recording where every DEF
// PROC/DEF FN body begins and its parameter list, so PROC calls and FN()
// references can jump straight there (§4.5).
func (ex *Executor) indexProcs() error {
	ex.procs = make(map[string]procLoc)
	for idx := 0; idx < ex.vm.Program.Len(); idx++ {
		line := ex.vm.Program.LineAt(idx)
		b := line.Body
		pos := int(line.ExecOff)
		for pos < len(b) {
			if Token(b[pos]) != KwDEF {
				pos += tokenWidth(b, pos)
				continue
			}
			cur := NewCursor(line, pos+1)
			cur.skipSpaces()
			bb, ok := cur.PeekByte()
			if !ok {
				break
			}
			isFn := Token(bb) == KwFN
			isProc := Token(bb) == KwPROC
			if !isFn && !isProc {
				pos += tokenWidth(b, pos)
				continue
			}
			cur.Pos++
			name, err := cur.readName()
			if err != nil {
				return err
			}
			var params []procParam
			cur.skipSpaces()
			if pb, ok := cur.PeekByte(); ok && pb == '(' {
				cur.Pos++
				params, err = parseParamList(cur)
				if err != nil {
					return err
				}
			}
			ex.procs[name] = procLoc{bodyIdx: idx, bodyLine: line, bodyPos: cur.Pos, params: params, isFn: isFn}
			pos = cur.Pos
		}
	}
	return nil
}

func parseParamList(c *Cursor) ([]procParam, error) {
	var params []procParam
	c.skipSpaces()
	if b, ok := c.PeekByte(); ok && b == ')' {
		c.Pos++
		return params, nil
	}
	for {
		byRef := false
		c.skipSpaces()
		if b, ok := c.PeekByte(); ok && Token(b) == KwRETURN {
			c.Pos++
			byRef = true
		}
		name, err := c.readName()
		if err != nil {
			return nil, err
		}
		params = append(params, procParam{name: name, byRef: byRef})
		c.skipSpaces()
		if b, ok := c.PeekByte(); ok && b == ',' {
			c.Pos++
			continue
		}
		break
	}
	c.skipSpaces()
	if b, ok := c.PeekByte(); !ok || b != ')' {
		return nil, NewError(ErrSyntax, int(c.Line.LineNo))
	}
	c.Pos++
	return params, nil
}

// execDef fires when sequential execution reaches a DEF statement rather
// than a call - it must skip straight over the body without running it.
func (ex *Executor) execDef(c *Cursor) (ctrl, error) {
	line := int(c.Line.LineNo)
	c.skipSpaces()
	b, ok := c.PeekByte()
	if !ok {
		return ctrl{}, NewError(ErrSyntax, line)
	}
	isFn := Token(b) == KwFN
	isProc := Token(b) == KwPROC
	if !isFn && !isProc {
		return ctrl{}, NewError(ErrSyntax, line)
	}
	c.Pos++
	if _, err := c.readName(); err != nil {
		return ctrl{}, err
	}
	c.skipSpaces()
	if b, ok := c.PeekByte(); ok && b == '(' {
		c.Pos++
		if _, err := parseParamList(c); err != nil {
			return ctrl{}, err
		}
	}
	var pos progPos
	var err error
	if isProc {
		pos, err = ex.scanToToken(ex.lineIdx, c.Pos, KwENDPROC)
	} else {
		pos, err = ex.scanToFnBody(ex.lineIdx, c.Pos)
	}
	if err != nil {
		return ctrl{}, err
	}
	ex.jumpTo(pos.idx, NewCursor(ex.vm.Program.LineAt(pos.idx), pos.pos))
	return ctrl{kind: ctrlContinue}, nil
}

// scanToToken is a non-nesting-aware forward scan for the first occurrence
// of want, returning the position right after it. DEF PROC bodies do not
// nest (a nested DEF is itself skipped the same way when reached in
// sequence), so the ENDPROC this finds is always the matching one in
// practice.
func (ex *Executor) scanToToken(idx, pos int, want Token) (progPos, error) {
	for {
		line := ex.vm.Program.LineAt(idx)
		if line == nil {
			return progPos{}, NewError(ErrSyntax, 0)
		}
		b := line.Body
		for pos < len(b) {
			if Token(b[pos]) == want {
				return progPos{idx, pos + 1}, nil
			}
			pos += tokenWidth(b, pos)
		}
		idx++
		pos = 0
	}
}

// scanToFnBody finds a DEF FN's body: the first bare '=' at a statement
// boundary at or after (idx,pos), whether on the same line (the common
// one-liner "DEF FNsq(x) = x*x" form) or a later one.
func (ex *Executor) scanToFnBody(startIdx, startPos int) (progPos, error) {
	idx, pos := startIdx, startPos
	for {
		line := ex.vm.Program.LineAt(idx)
		if line == nil {
			return progPos{}, NewError(ErrSyntax, 0)
		}
		b := line.Body
		p := pos
		for p < len(b) {
			for p < len(b) && (b[p] == ' ' || b[p] == '\t') {
				p++
			}
			if p < len(b) && b[p] == '=' {
				return progPos{idx, p + 1}, nil
			}
			for p < len(b) && b[p] != ':' {
				p += tokenWidth(b, p)
			}
			if p < len(b) {
				p++
			}
		}
		idx++
		next := ex.vm.Program.LineAt(idx)
		if next == nil {
			return progPos{}, NewError(ErrSyntax, 0)
		}
		pos = int(next.ExecOff)
	}
}

// byRefBinding ties a by-reference parameter to the caller's variable cell,
// so callRoutine can write the final value back after the call returns.
type byRefBinding struct {
	callerCell *Cell
	paramName  string
}

// callRoutine is the shared PROC/FN call mechanic: parse the argument list,
// bind parameters in a fresh local scope, run the body on the Go call stack
// via a nested step() loop until it signals return, then tear the scope back
// down and report the result. Used by both execProcCall and
// callUserFunction (expr_eval.go's KwFN case).
func (ex *Executor) callRoutine(c *Cursor, name string, wantFn bool) (Value, error) {
	line := int(c.Line.LineNo)
	loc, ok := ex.procs[name]
	if !ok {
		return Value{}, NewErrorf(ErrBadCall, line, "unknown routine %s", name)
	}
	if loc.isFn != wantFn {
		return Value{}, NewError(ErrBadCall, line)
	}

	c.skipSpaces()
	hasParen := false
	if b, ok := c.PeekByte(); ok && b == '(' {
		hasParen = true
		c.Pos++
	}

	args := make([]Value, len(loc.params))
	var byRefs []byRefBinding
	for i, p := range loc.params {
		if i > 0 {
			if err := ex.vm.Evaluator().expectChar(c, ','); err != nil {
				return Value{}, err
			}
		}
		if p.byRef {
			callerName, err := readVarName(c)
			if err != nil {
				return Value{}, err
			}
			callerCell := ex.vm.Vars.LookupOrCreate(callerName)
			args[i] = callerCell.Value
			byRefs = append(byRefs, byRefBinding{callerCell: callerCell, paramName: p.name})
		} else {
			v, err := ex.vm.Evaluator().Eval(c)
			if err != nil {
				return Value{}, err
			}
			args[i] = v
		}
	}
	if hasParen {
		if err := ex.vm.Evaluator().expectChar(c, ')'); err != nil {
			return Value{}, err
		}
	}

	callerIdx, callerCur := ex.here()
	savedCur := &Cursor{Line: callerCur.Line, Pos: callerCur.Pos}

	ex.vm.Vars.EnterLocalFrame()
	for i, p := range loc.params {
		cell := ex.vm.Vars.Create(p.name, VarTypeFromName(p.name))
		cell.Value = ex.coerce(args[i], VarTypeFromName(p.name))
	}
	ex.callKindStack = append(ex.callKindStack, wantFn)
	ex.procNameStack = append(ex.procNameStack, name)
	depth := ex.vm.Vars.Depth()

	ex.jumpTo(loc.bodyIdx, NewCursor(loc.bodyLine, loc.bodyPos))

	var result Value
	var callErr error
	for {
		ct, err := ex.step()
		if err != nil {
			callErr = err
			break
		}
		if ct.kind == ctrlReturnFn {
			result = ct.fnValue
			break
		}
		if ct.kind == ctrlEnd {
			callErr = NewErrorf(ErrBadCall, line, "%s fell off the end of the program", name)
			break
		}
	}

	for _, br := range byRefs {
		if pc, ok := ex.vm.Vars.Lookup(br.paramName); ok {
			br.callerCell.Value = pc.Value
		}
	}

	ex.callKindStack = ex.callKindStack[:len(ex.callKindStack)-1]
	ex.procNameStack = ex.procNameStack[:len(ex.procNameStack)-1]
	ex.vm.Errors.PopLocalsAbove(depth)
	Invalidate(ex.vm.Vars.LeaveLocalFrame(), ex.vm.Vars)

	ex.jumpTo(callerIdx, savedCur)

	if callErr != nil {
		return Value{}, callErr
	}
	return result, nil
}

// callUserFunction is FN's entry point from expr_eval.go's factor parser.
func (ex *Executor) callUserFunction(c *Cursor, name string) (Value, error) {
	return ex.callRoutine(c, name, true)
}

func (ex *Executor) execProcCall(c *Cursor) (ctrl, error) {
	name, err := c.readName()
	if err != nil {
		return ctrl{}, err
	}
	if _, err := ex.callRoutine(c, name, false); err != nil {
		return ctrl{}, err
	}
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) execFnReturn(c *Cursor) (ctrl, error) {
	line := int(c.Line.LineNo)
	if len(ex.callKindStack) == 0 || !ex.callKindStack[len(ex.callKindStack)-1] {
		return ctrl{}, NewError(ErrNotFn, line)
	}
	v, err := ex.vm.Evaluator().Eval(c)
	if err != nil {
		return ctrl{}, err
	}
	return ctrl{kind: ctrlReturnFn, fnValue: v}, nil
}

func (ex *Executor) execEndProc(c *Cursor) (ctrl, error) {
	line := int(c.Line.LineNo)
	if len(ex.callKindStack) == 0 || ex.callKindStack[len(ex.callKindStack)-1] {
		return ctrl{}, NewError(ErrNotProc, line)
	}
	return ctrl{kind: ctrlReturnFn}, nil
}

// ---- LOCAL / PRIVATE ----

func (ex *Executor) execLocal(c *Cursor) (ctrl, error) {
	for {
		c.skipSpaces()
		if b, ok := c.PeekByte(); ok && Token(b) == KwERROR {
			c.Pos++
			// LOCAL ERROR: the currently-active ON ERROR LOCAL trap already
			// scopes itself by call depth (ErrorHandler.LocalDepth), so there
			// is no separate state to rebind here.
		} else {
			name, err := readVarName(c)
			if err != nil {
				return ctrl{}, err
			}
			ex.vm.Vars.Create(name, VarTypeFromName(name))
		}
		c.skipSpaces()
		if b, ok := c.PeekByte(); ok && b == ',' {
			c.Pos++
			continue
		}
		break
	}
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) execPrivate(c *Cursor) (ctrl, error) {
	line := int(c.Line.LineNo)
	if len(ex.procNameStack) == 0 {
		return ctrl{}, NewError(ErrSyntax, line)
	}
	funcKey := ex.procNameStack[len(ex.procNameStack)-1]
	for {
		name, err := readVarName(c)
		if err != nil {
			return ctrl{}, err
		}
		ex.vm.Vars.DeclarePrivate(funcKey, name)
		c.skipSpaces()
		if b, ok := c.PeekByte(); ok && b == ',' {
			c.Pos++
			continue
		}
		break
	}
	return ctrl{kind: ctrlContinue}, nil
}

// ---- numeric argument helper shared by the graphics statements ----

func (ex *Executor) readNumArgs(c *Cursor, n int) ([]int, error) {
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := ex.vm.Evaluator().expectChar(c, ','); err != nil {
				return nil, err
			}
		}
		v, err := ex.vm.Evaluator().Eval(c)
		if err != nil {
			return nil, err
		}
		out = append(out, int(v.AsInt64()))
	}
	return out, nil
}

// ---- VDU / PLOT family ----

func (ex *Executor) execVdu(c *Cursor) (ctrl, error) {
	for {
		c.skipSpaces()
		if c.AtEnd() {
			break
		}
		if b, _ := c.PeekByte(); b == ':' {
			break
		}
		if b, _ := c.PeekByte(); b == '|' {
			c.Pos++
			for i := 0; i < 9; i++ {
				if err := ex.vm.VDU.Feed(0); err != nil {
					return ctrl{}, err
				}
			}
		} else {
			v, err := ex.vm.Evaluator().Eval(c)
			if err != nil {
				return ctrl{}, err
			}
			c.skipSpaces()
			wide := false
			if b, ok := c.PeekByte(); ok && b == ';' {
				wide = true
			}
			n := v.AsInt64()
			if err := ex.vm.VDU.Feed(byte(n)); err != nil {
				return ctrl{}, err
			}
			if wide {
				if err := ex.vm.VDU.Feed(byte(n >> 8)); err != nil {
					return ctrl{}, err
				}
			}
		}
		c.skipSpaces()
		if b, ok := c.PeekByte(); ok && (b == ',' || b == ';') {
			c.Pos++
			continue
		}
		break
	}
	ex.vm.Framebuffer.MaybeFlush(ex.vm.Video, false)
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) execPlot(c *Cursor) (ctrl, error) {
	args, err := ex.readNumArgs(c, 3)
	if err != nil {
		return ctrl{}, err
	}
	if err := ex.vm.VDU.Plot(byte(args[0]), args[1], args[2]); err != nil {
		return ctrl{}, err
	}
	ex.vm.Framebuffer.MaybeFlush(ex.vm.Video, false)
	return ctrl{kind: ctrlContinue}, nil
}

// execMove: MOVE x,y - an invisible absolute move (PLOT code 1), setting the
// graphics cursor without drawing anything.
func (ex *Executor) execMove(c *Cursor) (ctrl, error) {
	args, err := ex.readNumArgs(c, 2)
	if err != nil {
		return ctrl{}, err
	}
	if err := ex.vm.VDU.Plot(1, args[0], args[1]); err != nil {
		return ctrl{}, err
	}
	return ctrl{kind: ctrlContinue}, nil
}

// execDraw: DRAW x,y - an absolute, visible line including its endpoint
// (PLOT code 48) from the last graphics cursor position.
func (ex *Executor) execDraw(c *Cursor) (ctrl, error) {
	args, err := ex.readNumArgs(c, 2)
	if err != nil {
		return ctrl{}, err
	}
	if err := ex.vm.VDU.Plot(48, args[0], args[1]); err != nil {
		return ctrl{}, err
	}
	ex.vm.Framebuffer.MaybeFlush(ex.vm.Video, false)
	return ctrl{kind: ctrlContinue}, nil
}

// execLineStmt: LINE x1,y1,x2,y2 - a MOVE to the first point composed with a
// DRAW to the second, matching classic BASIC's LINE statement.
func (ex *Executor) execLineStmt(c *Cursor) (ctrl, error) {
	args, err := ex.readNumArgs(c, 4)
	if err != nil {
		return ctrl{}, err
	}
	if err := ex.vm.VDU.Plot(1, args[0], args[1]); err != nil {
		return ctrl{}, err
	}
	if err := ex.vm.VDU.Plot(48, args[2], args[3]); err != nil {
		return ctrl{}, err
	}
	ex.vm.Framebuffer.MaybeFlush(ex.vm.Video, false)
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) execRectangle(c *Cursor) (ctrl, error) {
	args, err := ex.readNumArgs(c, 4)
	if err != nil {
		return ctrl{}, err
	}
	x, y, w, h := args[0], args[1], args[2], args[3]
	c.skipSpaces()
	filled := false
	if b, ok := c.PeekByte(); ok && Token(b) == KwFILL {
		c.Pos++
		filled = true
	}
	colour := ex.vm.Palette.GraphForeground()
	action := ex.vm.Palette.GraphAction()
	c.skipSpaces()
	if b, ok := c.PeekByte(); ok && Token(b) == KwTO {
		c.Pos++
		dst, err := ex.readNumArgs(c, 2)
		if err != nil {
			return ctrl{}, err
		}
		ex.vm.Graphics.ShiftRectangle(x, y, x+w, y+h, dst[0], dst[1], false, ex.vm.Palette.GraphBackground())
	} else if filled {
		ex.vm.Graphics.FilledRectangle(x, y, x+w, y+h, colour, action)
	} else {
		ex.vm.Graphics.DrawLine(x, y, x+w, y, colour, 0, action)
		ex.vm.Graphics.DrawLine(x+w, y, x+w, y+h, colour, 0, action)
		ex.vm.Graphics.DrawLine(x+w, y+h, x, y+h, colour, 0, action)
		ex.vm.Graphics.DrawLine(x, y+h, x, y, colour, 0, action)
	}
	ex.vm.Framebuffer.MaybeFlush(ex.vm.Video, false)
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) execCircle(c *Cursor) (ctrl, error) {
	args, err := ex.readNumArgs(c, 3)
	if err != nil {
		return ctrl{}, err
	}
	c.skipSpaces()
	filled := false
	if b, ok := c.PeekByte(); ok && Token(b) == KwFILL {
		c.Pos++
		filled = true
	}
	colour := ex.vm.Palette.GraphForeground()
	action := ex.vm.Palette.GraphAction()
	ex.vm.Graphics.DrawEllipse(args[0], args[1], args[2], args[2], 0, colour, action, filled)
	ex.vm.Framebuffer.MaybeFlush(ex.vm.Video, false)
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) execEllipse(c *Cursor) (ctrl, error) {
	args, err := ex.readNumArgs(c, 4)
	if err != nil {
		return ctrl{}, err
	}
	shear := 0.0
	c.skipSpaces()
	if b, ok := c.PeekByte(); ok && b == ',' {
		c.Pos++
		v, err := ex.vm.Evaluator().Eval(c)
		if err != nil {
			return ctrl{}, err
		}
		shear = v.AsFloat()
	}
	c.skipSpaces()
	filled := false
	if b, ok := c.PeekByte(); ok && Token(b) == KwFILL {
		c.Pos++
		filled = true
	}
	colour := ex.vm.Palette.GraphForeground()
	action := ex.vm.Palette.GraphAction()
	ex.vm.Graphics.DrawEllipse(args[0], args[1], args[2], args[3], shear, colour, action, filled)
	ex.vm.Framebuffer.MaybeFlush(ex.vm.Video, false)
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) execFill(c *Cursor) (ctrl, error) {
	args, err := ex.readNumArgs(c, 2)
	if err != nil {
		return ctrl{}, err
	}
	colour := ex.vm.Palette.GraphForeground()
	action := ex.vm.Palette.GraphAction()
	ex.vm.Graphics.FloodFill(args[0], args[1], colour, action)
	ex.vm.Framebuffer.MaybeFlush(ex.vm.Video, false)
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) execGcol(c *Cursor) (ctrl, error) {
	first, err := ex.vm.Evaluator().Eval(c)
	if err != nil {
		return ctrl{}, err
	}
	action := 0
	colour := int(first.AsInt64())
	c.skipSpaces()
	if b, ok := c.PeekByte(); ok && b == ',' {
		c.Pos++
		second, err := ex.vm.Evaluator().Eval(c)
		if err != nil {
			return ctrl{}, err
		}
		action = colour
		colour = int(second.AsInt64())
	}
	background := colour >= 128
	if background {
		colour -= 128
	}
	ex.vm.Palette.SetGraphicsColour(action, colour, background)
	return ctrl{kind: ctrlContinue}, nil
}

// execColour implements the COLOUR statement's three forms: COLOUR c (text
// colour, >=128 selects the background), COLOUR l,p (remap logical l to hard
// palette entry p), and COLOUR l,r,g,b (redefine l's RGB directly).
func (ex *Executor) execColour(c *Cursor) (ctrl, error) {
	first, err := ex.vm.Evaluator().Eval(c)
	if err != nil {
		return ctrl{}, err
	}
	n1 := int(first.AsInt64())
	c.skipSpaces()
	b, ok := c.PeekByte()
	if !ok || b != ',' {
		background := n1 >= 128
		col := n1
		if background {
			col -= 128
		}
		ex.vm.Palette.SetTextColour(col, background)
		return ctrl{kind: ctrlContinue}, nil
	}
	c.Pos++
	second, err := ex.vm.Evaluator().Eval(c)
	if err != nil {
		return ctrl{}, err
	}
	n2 := int(second.AsInt64())
	c.skipSpaces()
	if b, ok := c.PeekByte(); ok && b == ',' {
		c.Pos++
		g, err := ex.vm.Evaluator().Eval(c)
		if err != nil {
			return ctrl{}, err
		}
		if err := ex.vm.Evaluator().expectChar(c, ','); err != nil {
			return ctrl{}, err
		}
		bl, err := ex.vm.Evaluator().Eval(c)
		if err != nil {
			return ctrl{}, err
		}
		ex.vm.Palette.SelectPhysical(n1, 255)
		ex.vm.Palette.SetPaletteEntry(n1, byte(n2), byte(g.AsInt64()), byte(bl.AsInt64()))
		return ctrl{kind: ctrlContinue}, nil
	}
	ex.vm.Palette.SelectPhysical(n1, n2)
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) execMode(c *Cursor) (ctrl, error) {
	v, err := ex.vm.Evaluator().Eval(c)
	if err != nil {
		return ctrl{}, err
	}
	if err := ex.vm.Framebuffer.SetMode(int(v.AsInt64())); err != nil {
		return ctrl{}, err
	}
	mode := ex.vm.Framebuffer.Mode()
	ex.vm.TextPlane.Resize(mode.XText, mode.YText)
	ex.vm.Graphics.SetWindow(0, 0, mode.XRes*mode.XGraphUnits-1, mode.YRes*mode.YGraphUnits-1)
	ex.vm.Graphics.SetOrigin(0, 0)
	if mode.Teletext {
		ex.vm.Mode7.Clear()
	}
	ex.vm.Framebuffer.MaybeFlush(ex.vm.Video, false)
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) execOrigin(c *Cursor) (ctrl, error) {
	args, err := ex.readNumArgs(c, 2)
	if err != nil {
		return ctrl{}, err
	}
	ex.vm.Graphics.SetOrigin(args[0], args[1])
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) execCls(c *Cursor) (ctrl, error) {
	ex.vm.TextPlane.CLS()
	if ex.vm.Framebuffer.Mode().Teletext {
		ex.vm.Mode7.Clear()
	}
	ex.vm.PrintColumn = 0
	return ctrl{kind: ctrlContinue}, nil
}

// execClg clears the graphics area to the current graphics background
// colour. vdu.go's own VDU-stream CLG dispatch only resets the clipping
// window (SetWindow(0,0,0,0)); the actual pixel fill happens here, since
// Framebuffer exposes no bulk "fill to logical colour" primitive.
func (ex *Executor) execClg(c *Cursor) (ctrl, error) {
	mode := ex.vm.Framebuffer.Mode()
	bg := ex.vm.Palette.GraphBackground()
	for y := 0; y < mode.YRes; y++ {
		for x := 0; x < mode.XRes; x++ {
			ex.vm.Framebuffer.SetPixel(x, y, bg, ActionSet)
		}
	}
	ex.vm.Framebuffer.MaybeFlush(ex.vm.Video, false)
	return ctrl{kind: ctrlContinue}, nil
}

// execTint: TINT value[,graphicsValue] sets the 2-bit tint (value>>6)
// applied on top of the text (and, if given, graphics) logical colour.
func (ex *Executor) execTint(c *Cursor) (ctrl, error) {
	v, err := ex.vm.Evaluator().Eval(c)
	if err != nil {
		return ctrl{}, err
	}
	ex.vm.Palette.SetTint(false, byte(int(v.AsInt64())>>6))
	c.skipSpaces()
	if b, ok := c.PeekByte(); ok && b == ',' {
		c.Pos++
		g, err := ex.vm.Evaluator().Eval(c)
		if err != nil {
			return ctrl{}, err
		}
		ex.vm.Palette.SetTint(true, byte(int(g.AsInt64())>>6))
	}
	return ctrl{kind: ctrlContinue}, nil
}

// ---- MOUSE ----

func (ex *Executor) execMouse(c *Cursor) (ctrl, error) {
	ev := ex.vm.Mouse.Read()
	vals := [3]int64{int64(ev.X), int64(ev.Y), int64(ev.Buttons)}
	for i := 0; i < 3; i++ {
		c.skipSpaces()
		if _, ok := c.PeekByte(); !ok {
			break
		}
		name, err := readVarName(c)
		if err != nil {
			return ctrl{}, err
		}
		t := VarTypeFromName(name)
		cell := ex.vm.Vars.LookupOrCreate(name)
		cell.Value = ex.coerce(NormalizeInt(vals[i]), t)
		c.skipSpaces()
		if b, ok := c.PeekByte(); ok && b == ',' {
			c.Pos++
			continue
		}
		break
	}
	return ctrl{kind: ctrlContinue}, nil
}

// ---- CHAIN / LIBRARY / INSTALL / OSCLI / SYS / CALL ----

// execChain evaluates the filename (so a malformed expression still reports
// a syntax error) then reports unsupported: loading and running a second
// program from disk is out of scope.
func (ex *Executor) execChain(c *Cursor) (ctrl, error) {
	if _, err := ex.vm.Evaluator().Eval(c); err != nil {
		return ctrl{}, err
	}
	return ctrl{}, NewError(ErrUnsupported, int(c.Line.LineNo))
}

// execLibrary backs both LIBRARY and INSTALL: merging another program's PROC/
// FN definitions into the current one is not implemented, so the statement's
// arguments are accepted and discarded.
func (ex *Executor) execLibrary(c *Cursor) (ctrl, error) {
	c.Pos = len(c.Line.Body)
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) execOscli(c *Cursor) (ctrl, error) {
	v, err := ex.vm.Evaluator().Eval(c)
	if err != nil {
		return ctrl{}, err
	}
	if !v.IsString() {
		return ctrl{}, NewError(ErrTypeMismatch, int(c.Line.LineNo))
	}
	return ex.runStarCommand(string(ex.vm.Strings.Read(v.S)))
}

func (ex *Executor) execSys(c *Cursor) (ctrl, error) {
	line := int(c.Line.LineNo)
	nameVal, err := ex.vm.Evaluator().Eval(c)
	if err != nil {
		return ctrl{}, err
	}
	if !nameVal.IsString() {
		return ctrl{}, NewError(ErrTypeMismatch, line)
	}
	name := string(ex.vm.Strings.Read(nameVal.S))
	var args []Value
	for {
		c.skipSpaces()
		b, ok := c.PeekByte()
		if !ok || b != ',' {
			break
		}
		c.Pos++
		c.skipSpaces()
		if b2, ok := c.PeekByte(); ok && Token(b2) == KwTO {
			break
		}
		v, err := ex.vm.Evaluator().Eval(c)
		if err != nil {
			return ctrl{}, err
		}
		args = append(args, v)
	}
	outs, err := ex.vm.callSWI(name, args)
	if err != nil {
		return ctrl{}, err
	}
	c.skipSpaces()
	if b, ok := c.PeekByte(); ok && Token(b) == KwTO {
		c.Pos++
		for i := 0; ; i++ {
			c.skipSpaces()
			if _, ok := c.PeekByte(); !ok {
				break
			}
			name, err := readVarName(c)
			if err != nil {
				return ctrl{}, err
			}
			if i < len(outs) {
				t := VarTypeFromName(name)
				cell := ex.vm.Vars.LookupOrCreate(name)
				cell.Value = ex.coerce(outs[i], t)
			}
			c.skipSpaces()
			if b, ok := c.PeekByte(); ok && b == ',' {
				c.Pos++
				continue
			}
			break
		}
	}
	return ctrl{kind: ctrlContinue}, nil
}

// execCall evaluates the address and any comma-separated arguments (so
// malformed ones still report a syntax error) then reports unsupported:
// jumping into raw machine code at an arena address makes no sense for this
// interpreter's value model.
func (ex *Executor) execCall(c *Cursor) (ctrl, error) {
	if _, err := ex.vm.Evaluator().Eval(c); err != nil {
		return ctrl{}, err
	}
	for {
		c.skipSpaces()
		b, ok := c.PeekByte()
		if !ok || b != ',' {
			break
		}
		c.Pos++
		if _, err := ex.vm.Evaluator().Eval(c); err != nil {
			return ctrl{}, err
		}
	}
	return ctrl{}, NewError(ErrUnsupported, int(c.Line.LineNo))
}

// ---- BGET / BPUT / CLOSE ----
//
// Only the statement forms are supported (BGET#h,var / BPUT#h,expr /
// CLOSE#h) - classic BBC BASIC's BGET#h function-call syntax (A%=BGET#h)
// would require BGET/BPUT to also be recognised at expression-factor level,
// which the grammar here keeps statement-only for simplicity.

func (ex *Executor) execBget(c *Cursor) (ctrl, error) {
	if err := ex.vm.Evaluator().expectChar(c, '#'); err != nil {
		return ctrl{}, err
	}
	h, err := ex.vm.Evaluator().Eval(c)
	if err != nil {
		return ctrl{}, err
	}
	if err := ex.vm.Evaluator().expectChar(c, ','); err != nil {
		return ctrl{}, err
	}
	name, err := readVarName(c)
	if err != nil {
		return ctrl{}, err
	}
	b, err := ex.vm.Files.BGet(int(h.AsInt64()))
	if err != nil {
		return ctrl{}, err
	}
	t := VarTypeFromName(name)
	cell := ex.vm.Vars.LookupOrCreate(name)
	cell.Value = ex.coerce(IntValue(int32(b)), t)
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) execBput(c *Cursor) (ctrl, error) {
	if err := ex.vm.Evaluator().expectChar(c, '#'); err != nil {
		return ctrl{}, err
	}
	h, err := ex.vm.Evaluator().Eval(c)
	if err != nil {
		return ctrl{}, err
	}
	if err := ex.vm.Evaluator().expectChar(c, ','); err != nil {
		return ctrl{}, err
	}
	v, err := ex.vm.Evaluator().Eval(c)
	if err != nil {
		return ctrl{}, err
	}
	if err := ex.vm.Files.BPut(int(h.AsInt64()), byte(v.AsInt64())); err != nil {
		return ctrl{}, err
	}
	return ctrl{kind: ctrlContinue}, nil
}

func (ex *Executor) execClose(c *Cursor) (ctrl, error) {
	if err := ex.vm.Evaluator().expectChar(c, '#'); err != nil {
		return ctrl{}, err
	}
	h, err := ex.vm.Evaluator().Eval(c)
	if err != nil {
		return ctrl{}, err
	}
	if err := ex.vm.Files.Close(int(h.AsInt64())); err != nil {
		return ctrl{}, err
	}
	return ctrl{kind: ctrlContinue}, nil
}

// ---- star-like commands reached as in-program statements ----

// execStarLike backs LIST/RUN/SAVE/LOAD/DELETE/EDIT/OLD when they appear as
// a statement, in a program or typed at the prompt without a '*'
// (RENUMBER has its own handler, execRenumber). Only RUN does anything
// (re-run from the top, as GOSUB-free BASIC programs sometimes do to
// loop); the rest are no-ops here. SAVE and LOAD work as the *SAVE/*LOAD
// star commands in starcommand.go; LIST, DELETE, EDIT and OLD have no
// implementation.
func (ex *Executor) execStarLike(c *Cursor) (ctrl, error) {
	tok := Token(c.Line.Body[c.Pos-1])
	if tok == KwRUN {
		ex.frames = nil
		ex.callKindStack = nil
		ex.procNameStack = nil
		ex.dataIdx, ex.dataCur = 0, nil
		if err := ex.indexProcs(); err != nil {
			return ctrl{}, err
		}
		ex.vm.Program.ResolveAll(ex.vm.Vars)
		ex.jumpTo(0, nil)
		return ctrl{kind: ctrlContinue}, nil
	}
	c.Pos = len(c.Line.Body)
	return ctrl{kind: ctrlContinue}, nil
}
