// tokenizer.go - source text -> canonical token byte stream (C3).
//
// Grounded on ie64asm.go's two-pass label/directive/mnemonic scan, adapted
// to BASIC's single-pass lexical classification (numeric/string/identifier/
// keyword/operator) with the smallest-legal-encoding selection §4.3 asks
// for.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"encoding/binary"
	"math"
	"sort"
	"strconv"
	"strings"
)

const maxLineLen = 1024

// TokenizedLine is the in-memory form of §3's byte layout: LINE#, LEN,
// EXECOFF header followed by the token/body bytes.
type TokenizedLine struct {
	LineNo  uint16
	ExecOff uint16 // offset within Body (byte 6 of the record onwards) of the first executable token
	Body    []byte
}

// Bytes renders the full on-disk/in-arena record: LINE#(2) LEN(2) EXECOFF(2) body.
func (t *TokenizedLine) Bytes() []byte {
	total := 6 + len(t.Body)
	out := make([]byte, total)
	binary.LittleEndian.PutUint16(out[0:], t.LineNo)
	binary.LittleEndian.PutUint16(out[2:], uint16(total))
	binary.LittleEndian.PutUint16(out[4:], t.ExecOff)
	copy(out[6:], t.Body)
	return out
}

// DecodeTokenizedLine parses a record previously produced by Bytes.
func DecodeTokenizedLine(b []byte) (*TokenizedLine, int) {
	if len(b) < 6 {
		return nil, 0
	}
	lineNo := binary.LittleEndian.Uint16(b[0:])
	length := binary.LittleEndian.Uint16(b[2:])
	execOff := binary.LittleEndian.Uint16(b[4:])
	body := make([]byte, int(length)-6)
	copy(body, b[6:length])
	return &TokenizedLine{LineNo: lineNo, ExecOff: execOff, Body: body}, int(length)
}

var sortedKeywords []Keyword

func init() {
	sortedKeywords = append(sortedKeywords, keywordTable...)
	sort.Slice(sortedKeywords, func(i, j int) bool {
		return len(sortedKeywords[i].Text) > len(sortedKeywords[j].Text)
	})
}

// Tokenizer converts one line of source text to its tokenized form.
type Tokenizer struct{}

func NewTokenizer() *Tokenizer { return &Tokenizer{} }

// Tokenize encodes one line of statement text into a TokenizedLine numbered
// lineNo. The text carries no line number of its own: callers separate it
// first via ParseLineNumber.
func (tk *Tokenizer) Tokenize(lineNo uint16, text string) (*TokenizedLine, error) {
	if len(text) > maxLineLen-7 {
		return nil, NewError(ErrLineTooLong, int(lineNo))
	}
	var body []byte
	execOff := uint16(0)
	runes := []byte(text)
	i := 0
	firstExecutable := true
	// expectLineNum tracks the GOTO/GOSUB/RESTORE/THEN/ELSE keyword-context
	// of §3's token table: a plain decimal literal immediately following one
	// of those keywords is a line-number operand (TokXLineNum), not a
	// general numeric constant. It survives across intervening spaces/tabs
	// so "GOTO   20" still resolves, and is cleared by anything else.
	expectLineNum := false

	for i < len(runes) {
		c := runes[i]
		switch {
		case c == ' ' || c == '\t':
			body = append(body, c)
			i++
		case c == '"':
			lit, consumed, err := scanString(runes[i:])
			if err != nil {
				return nil, &BasicError{Kind: err.(*BasicError).Kind, Code: err.(*BasicError).Code, Message: err.(*BasicError).Message, Line: int(lineNo)}
			}
			body = append(body, byte(TokStringCon))
			lenBuf := make([]byte, 2)
			binary.LittleEndian.PutUint16(lenBuf, uint16(len(lit)))
			body = append(body, lenBuf...)
			body = append(body, lit...)
			i += consumed
			expectLineNum = false
		case isDigit(c):
			if expectLineNum {
				if encoded, consumed, ok := scanLineNumber(runes[i:]); ok {
					body = append(body, encoded...)
					i += consumed
					expectLineNum = false
					break
				}
			}
			encoded, consumed, err := scanNumber(runes[i:])
			if err != nil {
				return nil, &BasicError{Kind: err.(*BasicError).Kind, Code: err.(*BasicError).Code, Message: err.(*BasicError).Message, Line: int(lineNo)}
			}
			body = append(body, encoded...)
			i += consumed
			expectLineNum = false
		case isAlpha(c):
			kw, consumed, matched := matchKeyword(runes[i:])
			if matched {
				if firstExecutable && kw.IsCommand {
					body = append(body, byte(TokCommandClass))
				}
				body = append(body, byte(kw.Tok))
				i += consumed
				expectLineNum = isLineNumberContext(kw.Tok)
			} else {
				name, consumed := scanIdentifier(runes[i:])
				body = append(body, byte(TokXVar))
				body = append(body, []byte(name)...)
				body = append(body, 0) // terminator
				i += consumed
				expectLineNum = false
			}
			firstExecutable = false
		default:
			body = append(body, c)
			i++
			firstExecutable = false
			expectLineNum = false
		}
		if firstExecutable && c != ' ' && c != '\t' {
			execOff = uint16(len(body))
			firstExecutable = false
		}
	}

	return &TokenizedLine{LineNo: lineNo, ExecOff: execOff, Body: body}, nil
}

// isLineNumberContext reports whether a following numeric literal is a line
// reference (GOTO/GOSUB/RESTORE targets, and the classic "THEN 100"/
// "ELSE 200" single-line IF jump-target shorthand) rather than an ordinary
// numeric operand.
func isLineNumberContext(tok Token) bool {
	switch tok {
	case KwGOTO, KwGOSUB, KwRESTORE, KwTHEN, KwELSE:
		return true
	default:
		return false
	}
}

// scanLineNumber recognises a plain decimal integer (no '.', no exponent -
// a line number is never a float) and encodes it as an unresolved line
// reference. ok is false when the digits are actually the start of a float
// literal, so the caller falls back to the general numeric encoding.
func scanLineNumber(b []byte) ([]byte, int, bool) {
	i := 0
	for i < len(b) && isDigit(b[i]) {
		i++
	}
	if i < len(b) && (b[i] == '.' || b[i] == 'e' || b[i] == 'E') {
		return nil, 0, false
	}
	n, err := strconv.ParseUint(string(b[:i]), 10, 16)
	if err != nil {
		return nil, 0, false
	}
	buf := make([]byte, 3)
	buf[0] = byte(TokXLineNum)
	buf[1] = byte(n)
	buf[2] = byte(n >> 8)
	return buf, i, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}
func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

func scanString(b []byte) ([]byte, int, error) {
	var out []byte
	i := 1 // skip opening quote
	for i < len(b) {
		if b[i] == '"' {
			if i+1 < len(b) && b[i+1] == '"' {
				out = append(out, '"')
				i += 2
				continue
			}
			return out, i + 1, nil
		}
		out = append(out, b[i])
		i++
	}
	return nil, 0, NewError(ErrMissingEndQuote, 0)
}

func scanIdentifier(b []byte) (string, int) {
	i := 0
	for i < len(b) && isAlnum(b[i]) {
		i++
	}
	for i < len(b) && (b[i] == '%' || b[i] == '$') {
		i++
		break
	}
	return string(b[:i]), i
}

func matchKeyword(b []byte) (Keyword, int, bool) {
	upper := strings.ToUpper(string(b))
	for _, kw := range sortedKeywords {
		if strings.HasPrefix(upper, kw.Text) {
			// reject a keyword match that is actually a longer identifier
			// prefix (e.g. "ENDIFX" should not match ENDIF)
			end := len(kw.Text)
			if !strings.HasSuffix(kw.Text, "(") && !strings.HasSuffix(kw.Text, "$") {
				if end < len(b) && isAlnum(b[end]) {
					continue
				}
			}
			return kw, end, true
		}
	}
	return Keyword{}, 0, false
}

// scanNumber recognises decimal and scientific (E-notation) literals and
// emits the smallest legal token encoding per §4.3; &hex and %binary
// literals are not recognised here.
func scanNumber(b []byte) ([]byte, int, error) {
	i := 0
	isFloat := false
	for i < len(b) && (isDigit(b[i]) || b[i] == '.') {
		if b[i] == '.' {
			isFloat = true
		}
		i++
	}
	if i < len(b) && (b[i] == 'E' || b[i] == 'e') {
		isFloat = true
		i++
		if i < len(b) && (b[i] == '+' || b[i] == '-') {
			i++
		}
		for i < len(b) && isDigit(b[i]) {
			i++
		}
	}
	text := string(b[:i])

	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, 0, NewError(ErrBadNumber, 0)
		}
		return encodeFloat(f), i, nil
	}

	iv, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		// too large for int64; fall back to float
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil {
			return nil, 0, NewError(ErrBadNumber, 0)
		}
		return encodeFloat(f), i, nil
	}
	return encodeInt(iv), i, nil
}

func encodeInt(v int64) []byte {
	switch {
	case v == 0:
		return []byte{byte(TokIntZero)}
	case v == 1:
		return []byte{byte(TokIntOne)}
	case v >= 0 && v <= 255:
		return []byte{byte(TokSmallInt), byte(v - 1)}
	case v >= math.MinInt32 && v <= math.MaxInt32:
		buf := make([]byte, 5)
		buf[0] = byte(TokIntCon)
		binary.LittleEndian.PutUint32(buf[1:], uint32(int32(v)))
		return buf
	default:
		buf := make([]byte, 9)
		buf[0] = byte(TokInt64Con)
		binary.LittleEndian.PutUint64(buf[1:], uint64(v))
		return buf
	}
}

func encodeFloat(f float64) []byte {
	switch f {
	case 0:
		return []byte{byte(TokFloatZero)}
	case 1:
		return []byte{byte(TokFloatOne)}
	}
	buf := make([]byte, 9)
	buf[0] = byte(TokFloatCon)
	binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(f))
	return buf
}

// ParseLineNumber extracts a leading decimal line number from raw input
// text, returning the remainder and ok=true if one was present.
func ParseLineNumber(text string) (uint16, string, bool) {
	text = strings.TrimLeft(text, " \t")
	i := 0
	for i < len(text) && isDigit(text[i]) {
		i++
	}
	if i == 0 {
		return 0, text, false
	}
	n, err := strconv.ParseUint(text[:i], 10, 16)
	if err != nil {
		return 0, text, false
	}
	return uint16(n), strings.TrimLeft(text[i:], " \t"), true
}
