// expr_eval.go - recursive-descent / operator-precedence evaluator over the
// token stream; numeric tower; string concatenation and substring ops (C6).
//
// Grounded on ie64asm.go's expression folding (precedence climbing over
// `+ - * / << >> | & ^ ~`) for EQU/SET constant expressions, generalised
// here to BASIC's full numeric/string operator set and function catalogue.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// Cursor walks a TokenizedLine's Body, the "current token cursor" §4.6
// takes as input. Both the evaluator and the statement executor share it.
type Cursor struct {
	Line *TokenizedLine
	Pos  int
}

func NewCursor(line *TokenizedLine, pos int) *Cursor { return &Cursor{Line: line, Pos: pos} }

func (c *Cursor) AtEnd() bool { return c.Pos >= len(c.Line.Body) }

func (c *Cursor) PeekByte() (byte, bool) {
	if c.AtEnd() {
		return 0, false
	}
	return c.Line.Body[c.Pos], true
}

func (c *Cursor) skipSpaces() {
	for !c.AtEnd() && (c.Line.Body[c.Pos] == ' ' || c.Line.Body[c.Pos] == '\t') {
		c.Pos++
	}
}

// readOperandToken consumes one literal/variable token and returns its
// decoded Value, advancing Pos past the full operand encoding.
func (c *Cursor) readOperandToken(vm *Interpreter) (Value, error) {
	c.skipSpaces()
	if c.AtEnd() {
		return Value{}, NewError(ErrSyntax, int(c.Line.LineNo))
	}
	b := c.Line.Body
	tok := Token(b[c.Pos])
	switch tok {
	case TokIntZero:
		c.Pos++
		return IntValue(0), nil
	case TokIntOne:
		c.Pos++
		return IntValue(1), nil
	case TokSmallInt:
		v := int32(b[c.Pos+1]) + 1
		c.Pos += 2
		return IntValue(v), nil
	case TokIntCon:
		v := int32(binary.LittleEndian.Uint32(b[c.Pos+1:]))
		c.Pos += 5
		return IntValue(v), nil
	case TokInt64Con:
		v := int64(binary.LittleEndian.Uint64(b[c.Pos+1:]))
		c.Pos += 9
		return Int64Value(v), nil
	case TokFloatZero:
		c.Pos++
		return FloatValue(0), nil
	case TokFloatOne:
		c.Pos++
		return FloatValue(1), nil
	case TokFloatCon:
		bits := binary.LittleEndian.Uint64(b[c.Pos+1:])
		c.Pos += 9
		return FloatValue(math.Float64frombits(bits)), nil
	case TokStringCon, TokQStringCon:
		n := int(binary.LittleEndian.Uint16(b[c.Pos+1:]))
		lit := b[c.Pos+3 : c.Pos+3+n]
		c.Pos += 3 + n
		d, err := vm.Strings.NewFromBytes(lit)
		if err != nil {
			return Value{}, err
		}
		return StringValue(d), nil
	case TokXVar, TokStaticVar, TokIntVar, TokInt64Var, TokFloatVar, TokStringVar, TokArrayVar:
		cell := resolveVarRead(c, vm)
		return cell.Value, nil
	case TokLineNum, TokXLineNum:
		v := int32(uint16(b[c.Pos+1]) | uint16(b[c.Pos+2])<<8)
		c.Pos += 3
		return IntValue(v), nil
	default:
		return Value{}, NewErrorf(ErrSyntax, int(c.Line.LineNo), "unexpected token %#x", byte(tok))
	}
}

// readName consumes a bare TokXVar name token without touching the
// variable table, used where the identifier names a routine (PROC/FN) and
// not a storage cell.
func (c *Cursor) readName() (string, error) {
	c.skipSpaces()
	b := c.Line.Body
	if c.AtEnd() || Token(b[c.Pos]) != TokXVar {
		return "", NewError(ErrSyntax, int(c.Line.LineNo))
	}
	j := c.Pos + 1
	for j < len(b) && b[j] != 0 {
		j++
	}
	name := string(b[c.Pos+1 : j])
	c.Pos = j + 1
	return name, nil
}

// isResolvedVarToken reports whether tag is one of the cached-pointer forms
// a prior resolveVarRead (or ProgramStore.ResolveAll's line-number pass,
// which never produces these) leaves in a token stream in place of XVAR.
func isResolvedVarToken(tag Token) bool {
	switch tag {
	case TokStaticVar, TokIntVar, TokInt64Var, TokFloatVar, TokStringVar, TokArrayVar:
		return true
	}
	return false
}

// cellForResolvedToken dereferences an already-resolved variable token at
// c.Pos without touching the variable directory, advancing the cursor past
// it.
func cellForResolvedToken(c *Cursor, vt *VariableTable) *Cell {
	b := c.Line.Body
	if Token(b[c.Pos]) == TokStaticVar {
		idx := b[c.Pos+1]
		c.Pos += 2
		return &vt.static[idx]
	}
	idx := binary.LittleEndian.Uint32(b[c.Pos+1:])
	c.Pos += 5
	return vt.CellAt(idx)
}

// resolveVarRead reads one bare variable reference - an XVAR name token on
// its first encounter, one of the cached-pointer forms on every encounter
// after - and returns the cell it names, with the cursor left past it.
//
// The first read of a name splices its XVAR occurrence into a cached
// pointer form in place: exactly the cache ProgramStore.ResolveAll's
// XLINENUM pass builds up front, except a variable name can't be resolved
// that way, since the same byte pattern also names a DIM/LOCAL/PRIVATE/
// FOR/READ/SWAP declaration or a PROC/FN routine, none of which go through
// here (they're read with c.readName, which requires a literal XVAR and
// would break the moment one of those got rewritten). Resolving only at the
// point of an actual value read sidesteps the ambiguity entirely.
//
// A frame-local cell (a LOCAL or a parameter) is never spliced: the token
// stream of a PROC/FN body is shared across every call to it, so caching a
// pointer into it would let a recursive re-entry's fresh frame alias an
// outer call's cell (§4.5). Those are always looked up live, by name.
func resolveVarRead(c *Cursor, vm *Interpreter) *Cell {
	if isResolvedVarToken(Token(c.Line.Body[c.Pos])) {
		return cellForResolvedToken(c, vm.Vars)
	}
	b := c.Line.Body
	start := c.Pos
	j := start + 1
	for j < len(b) && b[j] != 0 {
		j++
	}
	name := string(b[start+1 : j])
	end := j + 1
	cell, local := vm.Vars.LookupOrCreateScope(name)
	if local {
		c.Pos = end
		return cell
	}
	var tag Token
	var operand []byte
	if idx, ok := StaticIndex(name); ok {
		tag, operand = TokStaticVar, []byte{byte(idx)}
	} else {
		cell.Name = name
		tag = tokenForVarType(cell.Type)
		operand = make([]byte, 4)
		binary.LittleEndian.PutUint32(operand, vm.Vars.resolveIndex(cell))
	}
	newBody := make([]byte, 0, len(b)-(end-start)+1+len(operand))
	newBody = append(newBody, b[:start]...)
	newBody = append(newBody, byte(tag))
	newBody = append(newBody, operand...)
	newBody = append(newBody, b[end:]...)
	c.Line.Body = newBody
	c.Pos = start + 1 + len(operand)
	if tag != TokStaticVar {
		cell.AddPatchSite(c.Line, start)
	}
	return cell
}

// Evaluator drives expression parsing for the executor.
type Evaluator struct {
	vm *Interpreter
}

func NewEvaluator(vm *Interpreter) *Evaluator { return &Evaluator{vm: vm} }

// Eval parses a full expression starting at the cursor's current position
// at the lowest precedence level (OR/EOR), per §4.6's precedence table.
func (e *Evaluator) Eval(c *Cursor) (Value, error) {
	return e.parseOr(c)
}

func (e *Evaluator) parseOr(c *Cursor) (Value, error) {
	lhs, err := e.parseAnd(c)
	if err != nil {
		return Value{}, err
	}
	for {
		c.skipSpaces()
		tok, ok := c.PeekByte()
		if !ok || (Token(tok) != KwOR && Token(tok) != KwEOR) {
			return lhs, nil
		}
		op := Token(tok)
		c.Pos++
		rhs, err := e.parseAnd(c)
		if err != nil {
			return Value{}, err
		}
		lhs, err = e.applyBitwise(c, op, lhs, rhs)
		if err != nil {
			return Value{}, err
		}
	}
}

func (e *Evaluator) parseAnd(c *Cursor) (Value, error) {
	lhs, err := e.parseComparison(c)
	if err != nil {
		return Value{}, err
	}
	for {
		c.skipSpaces()
		tok, ok := c.PeekByte()
		if !ok || Token(tok) != KwAND {
			return lhs, nil
		}
		c.Pos++
		rhs, err := e.parseComparison(c)
		if err != nil {
			return Value{}, err
		}
		lhs, err = e.applyBitwise(c, KwAND, lhs, rhs)
		if err != nil {
			return Value{}, err
		}
	}
}

func (e *Evaluator) applyBitwise(c *Cursor, op Token, lhs, rhs Value) (Value, error) {
	if !lhs.IsNumeric() || !rhs.IsNumeric() {
		return Value{}, NewError(ErrTypeNum, int(c.Line.LineNo))
	}
	a, b := lhs.AsInt64(), rhs.AsInt64()
	switch op {
	case KwAND:
		return NormalizeInt(a & b), nil
	case KwOR:
		return NormalizeInt(a | b), nil
	case KwEOR:
		return NormalizeInt(a ^ b), nil
	}
	return Value{}, NewError(ErrSyntax, int(c.Line.LineNo))
}

// comparison operators are encoded as raw ASCII bytes (= < > etc.) rather
// than keyword tokens, matching §3's "direct bytes encode operators".
func (e *Evaluator) parseComparison(c *Cursor) (Value, error) {
	lhs, err := e.parseAddSub(c)
	if err != nil {
		return Value{}, err
	}
	c.skipSpaces()
	op, n := peekCompareOp(c)
	if op == "" {
		return lhs, nil
	}
	c.Pos += n
	rhs, err := e.parseAddSub(c)
	if err != nil {
		return Value{}, err
	}
	return e.applyCompare(c, op, lhs, rhs)
}

func peekCompareOp(c *Cursor) (string, int) {
	b := c.Line.Body
	if c.Pos >= len(b) {
		return "", 0
	}
	two := ""
	if c.Pos+1 < len(b) {
		two = string(b[c.Pos : c.Pos+2])
	}
	switch two {
	case "<>", "<=", ">=":
		return two, 2
	}
	switch b[c.Pos] {
	case '=', '<', '>':
		return string(b[c.Pos]), 1
	}
	return "", 0
}

func (e *Evaluator) applyCompare(c *Cursor, op string, lhs, rhs Value) (Value, error) {
	var cmp int
	if lhs.IsString() && rhs.IsString() {
		a := e.vm.Strings.Read(lhs.S)
		b := e.vm.Strings.Read(rhs.S)
		cmp = compareBytes(a, b)
	} else if lhs.IsNumeric() && rhs.IsNumeric() {
		af, bf := lhs.AsFloat(), rhs.AsFloat()
		switch {
		case af < bf:
			cmp = -1
		case af > bf:
			cmp = 1
		}
	} else {
		return Value{}, NewError(ErrTypeMismatch, int(c.Line.LineNo))
	}
	var result bool
	switch op {
	case "=":
		result = cmp == 0
	case "<>":
		result = cmp != 0
	case "<":
		result = cmp < 0
	case ">":
		result = cmp > 0
	case "<=":
		result = cmp <= 0
	case ">=":
		result = cmp >= 0
	}
	if result {
		return IntValue(-1), nil // BASIC TRUE is -1 (all bits set)
	}
	return IntValue(0), nil
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func (e *Evaluator) parseAddSub(c *Cursor) (Value, error) {
	lhs, err := e.parseMulDiv(c)
	if err != nil {
		return Value{}, err
	}
	for {
		c.skipSpaces()
		b, ok := c.PeekByte()
		if !ok || (b != '+' && b != '-') {
			return lhs, nil
		}
		c.Pos++
		rhs, err := e.parseMulDiv(c)
		if err != nil {
			return Value{}, err
		}
		lhs, err = e.applyAddSub(c, b, lhs, rhs)
		if err != nil {
			return Value{}, err
		}
	}
}

func (e *Evaluator) applyAddSub(c *Cursor, op byte, lhs, rhs Value) (Value, error) {
	if op == '+' && (lhs.IsString() || rhs.IsString()) {
		if !lhs.IsString() || !rhs.IsString() {
			return Value{}, NewError(ErrTypeMismatch, int(c.Line.LineNo))
		}
		a := e.vm.Strings.Read(lhs.S)
		b := e.vm.Strings.Read(rhs.S)
		combined := append(append([]byte{}, a...), b...)
		d, err := e.vm.Strings.NewFromBytes(combined)
		if err != nil {
			return Value{}, err
		}
		return StringValue(d), nil
	}
	if !lhs.IsNumeric() || !rhs.IsNumeric() {
		return Value{}, NewError(ErrTypeMismatch, int(c.Line.LineNo))
	}
	if lhs.Kind == KindFloat || rhs.Kind == KindFloat {
		af, bf := lhs.AsFloat(), rhs.AsFloat()
		if op == '+' {
			return FloatValue(af + bf), nil
		}
		return FloatValue(af - bf), nil
	}
	a, b := lhs.AsInt64(), rhs.AsInt64()
	var r int64
	if op == '+' {
		r = a + b
	} else {
		r = a - b
	}
	return NormalizeInt(r), nil
}

func (e *Evaluator) parseMulDiv(c *Cursor) (Value, error) {
	lhs, err := e.parseUnary(c)
	if err != nil {
		return Value{}, err
	}
	for {
		c.skipSpaces()
		b, ok := c.PeekByte()
		tok := Token(0)
		if ok {
			tok = Token(b)
		}
		switch {
		case ok && b == '*':
			c.Pos++
			rhs, err := e.parseUnary(c)
			if err != nil {
				return Value{}, err
			}
			lhs, err = e.applyMul(c, lhs, rhs)
			if err != nil {
				return Value{}, err
			}
		case ok && b == '/':
			c.Pos++
			rhs, err := e.parseUnary(c)
			if err != nil {
				return Value{}, err
			}
			lhs, err = e.applyDiv(c, lhs, rhs)
			if err != nil {
				return Value{}, err
			}
		case ok && tok == KwDIV:
			c.Pos++
			rhs, err := e.parseUnary(c)
			if err != nil {
				return Value{}, err
			}
			lhs, err = e.applyIntDivMod(c, lhs, rhs, true)
			if err != nil {
				return Value{}, err
			}
		case ok && tok == KwMOD:
			c.Pos++
			rhs, err := e.parseUnary(c)
			if err != nil {
				return Value{}, err
			}
			lhs, err = e.applyIntDivMod(c, lhs, rhs, false)
			if err != nil {
				return Value{}, err
			}
		default:
			return lhs, nil
		}
	}
}

func (e *Evaluator) applyMul(c *Cursor, lhs, rhs Value) (Value, error) {
	if !lhs.IsNumeric() || !rhs.IsNumeric() {
		return Value{}, NewError(ErrTypeMismatch, int(c.Line.LineNo))
	}
	if lhs.Kind == KindFloat || rhs.Kind == KindFloat {
		return FloatValue(lhs.AsFloat() * rhs.AsFloat()), nil
	}
	a, b := lhs.AsInt64(), rhs.AsInt64()
	return NormalizeInt(a * b), nil
}

// applyDiv implements §4.6: "/ always produces float".
func (e *Evaluator) applyDiv(c *Cursor, lhs, rhs Value) (Value, error) {
	if !lhs.IsNumeric() || !rhs.IsNumeric() {
		return Value{}, NewError(ErrTypeMismatch, int(c.Line.LineNo))
	}
	denom := rhs.AsFloat()
	if denom == 0 {
		return Value{}, NewError(ErrDivZero, int(c.Line.LineNo))
	}
	return FloatValue(lhs.AsFloat() / denom), nil
}

func (e *Evaluator) applyIntDivMod(c *Cursor, lhs, rhs Value, isDiv bool) (Value, error) {
	if !lhs.IsNumeric() || !rhs.IsNumeric() {
		return Value{}, NewError(ErrTypeNum, int(c.Line.LineNo))
	}
	b := rhs.AsInt64()
	if b == 0 {
		return Value{}, NewError(ErrDivZero, int(c.Line.LineNo))
	}
	a := lhs.AsInt64()
	if isDiv {
		return NormalizeInt(a / b), nil
	}
	return NormalizeInt(a % b), nil
}

func (e *Evaluator) parseUnary(c *Cursor) (Value, error) {
	c.skipSpaces()
	if b, ok := c.PeekByte(); ok {
		switch {
		case b == '-':
			c.Pos++
			v, err := e.parseUnary(c)
			if err != nil {
				return Value{}, err
			}
			return e.negate(c, v)
		case b == '+':
			c.Pos++
			return e.parseUnary(c)
		case Token(b) == KwNOT:
			c.Pos++
			v, err := e.parseUnary(c)
			if err != nil {
				return Value{}, err
			}
			return NormalizeInt(^v.AsInt64()), nil
		}
	}
	return e.parsePower(c)
}

func (e *Evaluator) negate(c *Cursor, v Value) (Value, error) {
	if !v.IsNumeric() {
		return Value{}, NewError(ErrTypeMismatch, int(c.Line.LineNo))
	}
	if v.Kind == KindFloat {
		return FloatValue(-v.F), nil
	}
	return NormalizeInt(-v.AsInt64()), nil
}

// parsePower handles ^, right-associative, with the integer fast path of
// §4.6 ("integer-exponentiation fast path when both sides fit int32 and
// result fits int64").
func (e *Evaluator) parsePower(c *Cursor) (Value, error) {
	base, err := e.parseFactor(c)
	if err != nil {
		return Value{}, err
	}
	c.skipSpaces()
	b, ok := c.PeekByte()
	if !ok || b != '^' {
		return base, nil
	}
	c.Pos++
	exp, err := e.parseUnary(c) // right-associative
	if err != nil {
		return Value{}, err
	}
	return e.applyPower(c, base, exp)
}

func (e *Evaluator) applyPower(c *Cursor, base, exp Value) (Value, error) {
	if !base.IsNumeric() || !exp.IsNumeric() {
		return Value{}, NewError(ErrTypeMismatch, int(c.Line.LineNo))
	}
	bf, ef := base.AsFloat(), exp.AsFloat()
	if bf < 0 && ef != math.Trunc(ef) {
		return Value{}, NewError(ErrNegRoot, int(c.Line.LineNo))
	}
	if base.Kind != KindFloat && exp.Kind != KindFloat {
		bi, ei := base.AsInt64(), exp.AsInt64()
		if bi >= math.MinInt32 && bi <= math.MaxInt32 && ei >= 0 && ei < 63 {
			r := int64(1)
			overflow := false
			for i := int64(0); i < ei; i++ {
				next := r * bi
				if bi != 0 && next/bi != r {
					overflow = true
					break
				}
				r = next
			}
			if !overflow {
				return NormalizeInt(r), nil
			}
		}
	}
	return FloatValue(math.Pow(bf, ef)), nil
}

func (e *Evaluator) parseFactor(c *Cursor) (Value, error) {
	c.skipSpaces()
	b, ok := c.PeekByte()
	if !ok {
		return Value{}, NewError(ErrSyntax, int(c.Line.LineNo))
	}
	if b == '(' {
		c.Pos++
		v, err := e.Eval(c)
		if err != nil {
			return Value{}, err
		}
		c.skipSpaces()
		b2, ok := c.PeekByte()
		if !ok || b2 != ')' {
			return Value{}, NewError(ErrMissingRightParen, int(c.Line.LineNo))
		}
		c.Pos++
		return v, nil
	}
	if Token(b) == TokXVar || isResolvedVarToken(Token(b)) {
		return e.readVarOrArrayFactor(c)
	}
	if tok := Token(b); isFunctionToken(tok) {
		return e.callFunction(c, tok)
	}
	return c.readOperandToken(e.vm)
}

// readVarOrArrayFactor reads a bare variable reference, indexing it against
// a parenthesised subscript list when the cell holds an array (§4.5's array
// element read, sharing the variable directory with scalar cells).
func (e *Evaluator) readVarOrArrayFactor(c *Cursor) (Value, error) {
	cell := resolveVarRead(c, e.vm)
	c.skipSpaces()
	b, ok := c.PeekByte()
	if !ok || b != '(' {
		return cell.Value, nil
	}
	if cell.Type != VarArray {
		return Value{}, NewError(ErrArrayIndex, int(c.Line.LineNo))
	}
	c.Pos++
	idx, err := e.parseArgList(c)
	if err != nil {
		return Value{}, err
	}
	if err := e.expectChar(c, ')'); err != nil {
		return Value{}, err
	}
	arr := cell.Value.Arr
	if arr == nil {
		return Value{}, NewError(ErrArrayIndex, int(c.Line.LineNo))
	}
	flat, err := computeFlatIndex(arr.Dims, idx, int(c.Line.LineNo))
	if err != nil {
		return Value{}, err
	}
	return arr.Elems[flat], nil
}

func isFunctionToken(t Token) bool {
	switch t {
	case KwABS, KwSGN, KwSQR, KwSIN, KwCOS, KwTAN, KwASN, KwACS, KwATN,
		KwEXP, KwLOG, KwINT, KwPI, KwRND, KwLEN, KwASC, KwVAL, KwCHR,
		KwSTRS, KwLEFTS, KwRIGHTS, KwMID, KwSTRINGS, KwGET, KwGETS,
		KwINKEY, KwINKEYS, KwPOINT, KwTIME, KwEOF, KwEXT, KwPTR,
		KwTRUE, KwFALSE, KwEVAL, KwCOUNT, KwADVAL, KwSUM, KwINSTR,
		KwPOS, KwVPOS, KwUSR, KwFN, KwOPENIN, KwOPENOUT, KwOPENUP:
		return true
	}
	return false
}

// parenAlreadyConsumed reports functions whose keyword text in the table
// already includes the opening '(' (POINT(, INSTR(), so the generic
// expectChar(c,'(') step below must be skipped for them.
func parenAlreadyConsumed(t Token) bool {
	return t == KwPOINT || t == KwINSTR
}

func (e *Evaluator) expectChar(c *Cursor, ch byte) error {
	c.skipSpaces()
	b, ok := c.PeekByte()
	if !ok || b != ch {
		if ch == ')' {
			return NewError(ErrMissingRightParen, int(c.Line.LineNo))
		}
		return NewError(ErrSyntax, int(c.Line.LineNo))
	}
	c.Pos++
	return nil
}

// callFunction dispatches the factor-level function catalogue of §2.4 of
// SPEC_FULL.md. Parenthesised argument lists are parsed here; niladic forms
// (PI, TRUE, FALSE, TIME, COUNT) take no parens.
func (e *Evaluator) callFunction(c *Cursor, tok Token) (Value, error) {
	c.Pos++
	line := int(c.Line.LineNo)
	switch tok {
	case KwPI:
		return FloatValue(math.Pi), nil
	case KwTRUE:
		return IntValue(-1), nil
	case KwFALSE:
		return IntValue(0), nil
	case KwTIME:
		return Int64Value(e.vm.Clock.CentisecondsSinceStart()), nil
	case KwCOUNT:
		return IntValue(int32(e.vm.PrintColumn)), nil
	case KwPOS:
		return IntValue(int32(e.vm.TextPlane.Pos())), nil
	case KwVPOS:
		return IntValue(int32(e.vm.TextPlane.VPos())), nil
	case KwGET:
		ch, err := e.vm.Keyboard.GetBlocking()
		if err != nil {
			return Value{}, err
		}
		return IntValue(int32(ch)), nil
	case KwGETS:
		ch, err := e.vm.Keyboard.GetBlocking()
		if err != nil {
			return Value{}, err
		}
		d, err := e.vm.Strings.NewFromBytes([]byte{ch})
		if err != nil {
			return Value{}, err
		}
		return StringValue(d), nil
	case KwFN:
		name, err := c.readName()
		if err != nil {
			return Value{}, err
		}
		return e.vm.Exec.callUserFunction(c, name)
	}

	if !parenAlreadyConsumed(tok) {
		if err := e.expectChar(c, '('); err != nil {
			return Value{}, err
		}
	}
	args, err := e.parseArgList(c)
	if err != nil {
		return Value{}, err
	}
	if err := e.expectChar(c, ')'); err != nil {
		return Value{}, err
	}

	switch tok {
	case KwABS:
		v := args[0]
		if v.Kind == KindFloat {
			return FloatValue(math.Abs(v.F)), nil
		}
		n := v.AsInt64()
		if n < 0 {
			n = -n
		}
		return NormalizeInt(n), nil
	case KwSGN:
		f := args[0].AsFloat()
		switch {
		case f > 0:
			return IntValue(1), nil
		case f < 0:
			return IntValue(-1), nil
		}
		return IntValue(0), nil
	case KwSQR:
		f := args[0].AsFloat()
		if f < 0 {
			return Value{}, NewError(ErrNegRoot, line)
		}
		return FloatValue(math.Sqrt(f)), nil
	case KwSIN:
		return FloatValue(math.Sin(args[0].AsFloat())), nil
	case KwCOS:
		return FloatValue(math.Cos(args[0].AsFloat())), nil
	case KwTAN:
		return FloatValue(math.Tan(args[0].AsFloat())), nil
	case KwASN:
		return FloatValue(math.Asin(args[0].AsFloat())), nil
	case KwACS:
		return FloatValue(math.Acos(args[0].AsFloat())), nil
	case KwATN:
		return FloatValue(math.Atan(args[0].AsFloat())), nil
	case KwEXP:
		return FloatValue(math.Exp(args[0].AsFloat())), nil
	case KwLOG:
		f := args[0].AsFloat()
		if f <= 0 {
			return Value{}, NewError(ErrLogRange, line)
		}
		return FloatValue(math.Log10(f)), nil
	case KwINT:
		return NormalizeInt(int64(math.Floor(args[0].AsFloat()))), nil
	case KwRND:
		return e.vm.RandomFunction(args)
	case KwLEN:
		return IntValue(int32(args[0].S.Len)), nil
	case KwASC:
		b := e.vm.Strings.Read(args[0].S)
		if len(b) == 0 {
			return IntValue(-1), nil
		}
		return IntValue(int32(b[0])), nil
	case KwVAL:
		b := e.vm.Strings.Read(args[0].S)
		f, _ := strconv.ParseFloat(stripLeadingNumeric(string(b)), 64)
		return FloatValue(f), nil
	case KwCHR:
		n := args[0].AsInt64()
		d, err := e.vm.Strings.NewFromBytes([]byte{byte(n)})
		if err != nil {
			return Value{}, err
		}
		return StringValue(d), nil
	case KwSTRS:
		return e.strFn(args)
	case KwLEFTS:
		b := e.vm.Strings.Read(args[0].S)
		n := len(b)
		if len(args) > 1 {
			n = int(args[1].AsInt64())
		}
		if n > len(b) {
			n = len(b)
		}
		if n < 0 {
			n = 0
		}
		d, err := e.vm.Strings.NewFromBytes(b[:n])
		if err != nil {
			return Value{}, err
		}
		return StringValue(d), nil
	case KwRIGHTS:
		b := e.vm.Strings.Read(args[0].S)
		n := len(b)
		if len(args) > 1 {
			n = int(args[1].AsInt64())
		}
		if n > len(b) {
			n = len(b)
		}
		if n < 0 {
			n = 0
		}
		d, err := e.vm.Strings.NewFromBytes(b[len(b)-n:])
		if err != nil {
			return Value{}, err
		}
		return StringValue(d), nil
	case KwMID:
		b := e.vm.Strings.Read(args[0].S)
		start := int(args[1].AsInt64()) - 1
		if start < 0 {
			start = 0
		}
		if start > len(b) {
			start = len(b)
		}
		n := len(b) - start
		if len(args) > 2 {
			n = int(args[2].AsInt64())
		}
		if n < 0 {
			n = 0
		}
		if start+n > len(b) {
			n = len(b) - start
		}
		d, err := e.vm.Strings.NewFromBytes(b[start : start+n])
		if err != nil {
			return Value{}, err
		}
		return StringValue(d), nil
	case KwSTRINGS:
		n := int(args[0].AsInt64())
		if n < 0 {
			return Value{}, NewError(ErrNegRoot, line)
		}
		b := e.vm.Strings.Read(args[1].S)
		if n*len(b) > MaxString {
			return Value{}, NewError(ErrStringLen, line)
		}
		var out []byte
		for i := 0; i < n; i++ {
			out = append(out, b...)
		}
		d, err := e.vm.Strings.NewFromBytes(out)
		if err != nil {
			return Value{}, err
		}
		return StringValue(d), nil
	case KwINKEY:
		return e.vm.Keyboard.Inkey(args[0].AsInt64())
	case KwINKEYS:
		return e.vm.Keyboard.InkeyStr(e.vm, args[0].AsInt64())
	case KwADVAL:
		return IntValue(int32(e.vm.Mouse.Adval(int(args[0].AsInt64())))), nil
	case KwPOINT:
		col := e.vm.Graphics.Point(int(args[0].AsInt64()), int(args[1].AsInt64()))
		return IntValue(int32(col)), nil
	case KwEOF:
		v, err := e.vm.Files.Eof(int(args[0].AsInt64()))
		if err != nil {
			return Value{}, err
		}
		if v {
			return IntValue(-1), nil
		}
		return IntValue(0), nil
	case KwEXT:
		v, err := e.vm.Files.Ext(int(args[0].AsInt64()))
		return Int64Value(v), err
	case KwPTR:
		v, err := e.vm.Files.Ptr(int(args[0].AsInt64()))
		return Int64Value(v), err
	case KwEVAL:
		b := e.vm.Strings.Read(args[0].S)
		return e.vm.EvalString(string(b), line)
	case KwINSTR:
		hay := e.vm.Strings.Read(args[0].S)
		needle := e.vm.Strings.Read(args[1].S)
		start := 0
		if len(args) > 2 {
			start = int(args[2].AsInt64()) - 1
		}
		return IntValue(int32(instrFrom(hay, needle, start))), nil
	case KwSUM:
		return e.vm.SumArray(args[0])
	case KwUSR:
		return Value{}, NewError(ErrUnsupported, line)
	case KwOPENIN, KwOPENOUT, KwOPENUP:
		name := e.vm.Strings.Read(args[0].S)
		var h int
		var err error
		switch tok {
		case KwOPENIN:
			h, err = e.vm.Files.OpenIn(string(name))
		case KwOPENOUT:
			h, err = e.vm.Files.OpenOut(string(name))
		case KwOPENUP:
			h, err = e.vm.Files.OpenUp(string(name))
		}
		if err != nil {
			return Value{}, err
		}
		return IntValue(int32(h)), nil
	}
	return Value{}, NewErrorf(ErrSyntax, line, "unimplemented function")
}

func instrFrom(hay, needle []byte, start int) int {
	if start < 0 {
		start = 0
	}
	if start >= len(hay) {
		return 0
	}
	for i := start; i+len(needle) <= len(hay); i++ {
		if compareBytes(hay[i:i+len(needle)], needle) == 0 {
			return i + 1
		}
	}
	return 0
}

func stripLeadingNumeric(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	j := i
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		j++
	}
	for j < len(s) && (s[j] >= '0' && s[j] <= '9' || s[j] == '.') {
		j++
	}
	return s[i:j]
}

func (e *Evaluator) strFn(args []Value) (Value, error) {
	v := args[0]
	var s string
	if v.Kind == KindFloat {
		s = strconv.FormatFloat(v.F, 'g', -1, 64)
	} else {
		s = fmt.Sprintf("%d", v.AsInt64())
	}
	d, err := e.vm.Strings.NewFromBytes([]byte(s))
	if err != nil {
		return Value{}, err
	}
	return StringValue(d), nil
}

// parseArgList reads a comma-separated argument list up to the closing ')'
// (not consumed here).
func (e *Evaluator) parseArgList(c *Cursor) ([]Value, error) {
	var args []Value
	c.skipSpaces()
	if b, ok := c.PeekByte(); ok && b == ')' {
		return args, nil
	}
	for {
		v, err := e.Eval(c)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		c.skipSpaces()
		b, ok := c.PeekByte()
		if ok && b == ',' {
			c.Pos++
			continue
		}
		break
	}
	return args, nil
}
