// detokenizer.go - token byte stream -> source text, for LIST and the
// tokenize/expand round-trip laws of §8.

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
	"strings"
)

var tokenToKeyword map[Token]string

func init() {
	tokenToKeyword = make(map[Token]string, len(keywordTable))
	for _, kw := range keywordTable {
		if _, exists := tokenToKeyword[kw.Tok]; !exists {
			tokenToKeyword[kw.Tok] = strings.TrimSuffix(strings.TrimSuffix(kw.Text, "("), "$") + suffixFor(kw.Text)
		}
	}
}

func suffixFor(text string) string {
	if strings.HasSuffix(text, "(") {
		return "("
	}
	if strings.HasSuffix(text, "$") {
		return "$"
	}
	return ""
}

// Expand renders a TokenizedLine's body back to canonical source text
// (keyword capitalisation and single-space separation), per §8's "expand"
// round-trip law.
func Expand(t *TokenizedLine) string {
	var sb strings.Builder
	b := t.Body
	i := 0
	for i < len(b) {
		tok := Token(b[i])
		switch tok {
		case TokCommandClass:
			i++
		case TokSmallInt:
			sb.WriteString(strconv.Itoa(int(b[i+1]) + 1))
			i += 2
		case TokIntZero:
			sb.WriteString("0")
			i++
		case TokIntOne:
			sb.WriteString("1")
			i++
		case TokIntCon:
			v := int32(binary.LittleEndian.Uint32(b[i+1:]))
			sb.WriteString(strconv.Itoa(int(v)))
			i += 5
		case TokInt64Con:
			v := int64(binary.LittleEndian.Uint64(b[i+1:]))
			sb.WriteString(strconv.FormatInt(v, 10))
			i += 9
		case TokFloatZero:
			sb.WriteString("0")
			i++
		case TokFloatOne:
			sb.WriteString("1")
			i++
		case TokFloatCon:
			bits := binary.LittleEndian.Uint64(b[i+1:])
			f := math.Float64frombits(bits)
			sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
			i += 9
		case TokStringCon, TokQStringCon:
			n := binary.LittleEndian.Uint16(b[i+1:])
			lit := b[i+3 : i+3+int(n)]
			sb.WriteByte('"')
			sb.Write(escapeQuotes(lit))
			sb.WriteByte('"')
			i += 3 + int(n)
		case TokXVar:
			j := i + 1
			for j < len(b) && b[j] != 0 {
				j++
			}
			sb.Write(b[i+1 : j])
			i = j + 1
		case TokLineNum, TokXLineNum:
			v := uint16(b[i+1]) | uint16(b[i+2])<<8
			sb.WriteString(strconv.Itoa(int(v)))
			i += 3
		case TokStaticVar:
			sb.WriteString(staticName(b[i+1]))
			i += 2
		case TokIntVar, TokInt64Var, TokFloatVar, TokStringVar, TokArrayVar:
			// A cached pointer has no name of its own without the variable
			// table; these only ever appear mid-RUN, never in stored program
			// text LIST reads (every edit unresolves). Skip the operand
			// correctly so alignment survives anyway.
			i += tokenWidth(b, i)
		default:
			if name, ok := tokenToKeyword[tok]; ok {
				sb.WriteString(name)
				i++
			} else {
				sb.WriteByte(b[i])
				i++
			}
		}
	}
	return sb.String()
}

func escapeQuotes(b []byte) []byte {
	var out []byte
	for _, c := range b {
		if c == '"' {
			out = append(out, '"', '"')
		} else {
			out = append(out, c)
		}
	}
	return out
}

// ListLine renders a full LIST-style line: "   10 PRINT "hi""
func ListLine(t *TokenizedLine) string {
	return fmt.Sprintf("%5d %s", t.LineNo, Expand(t))
}
