package pdftext

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// kerningSpace is the TJ adjustment (thousandths of an em) treated as a word gap
const kerningSpace = -200

// DecodeContentStream extracts the text shown by Tj, TJ, ' and " operators.
// Line moves (Td, TD, T*, ', ") and the end of a text object start a new line.
// Fonts with custom encodings are not mapped; their bytes are kept as Latin-1.
func DecodeContentStream(data []byte) string {
	lx := &lexer{data: data}
	var out strings.Builder
	var line strings.Builder
	var operands []token

	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			if out.Len() > 0 {
				out.WriteByte('\n')
			}
			out.WriteString(s)
		}
		line.Reset()
	}

	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.text {
		case "Tj":
			writeStrings(&line, operands)
		case "TJ":
			writeArray(&line, operands)
		case "'", "\"":
			flush()
			writeStrings(&line, lastString(operands))
		case "Td", "TD", "T*", "ET":
			flush()
		case "BI":
			lx.skipInlineImage()
		}
		operands = operands[:0]
	}
	flush()

	return out.String()
}

func lastString(operands []token) []token {
	for i := len(operands) - 1; i >= 0; i-- {
		if operands[i].kind == tokString {
			return operands[i : i+1]
		}
	}
	return nil
}

func writeStrings(b *strings.Builder, operands []token) {
	for _, op := range operands {
		if op.kind == tokString {
			b.WriteString(op.text)
		}
	}
}

// writeArray handles the TJ operand list: strings interleaved with kerning numbers
func writeArray(b *strings.Builder, operands []token) {
	for _, op := range operands {
		switch op.kind {
		case tokString:
			b.WriteString(op.text)
		case tokNumber:
			if n, err := strconv.ParseFloat(op.text, 64); err == nil && n <= kerningSpace {
				b.WriteByte(' ')
			}
		}
	}
}

type tokenKind int

const (
	tokOperator tokenKind = iota
	tokString
	tokNumber
	tokOther
)

type token struct {
	kind tokenKind
	text string
}

// lexer is a minimal PDF content-stream tokenizer
type lexer struct {
	data []byte
	pos  int
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func (lx *lexer) next() (token, bool) {
	for lx.pos < len(lx.data) {
		c := lx.data[lx.pos]
		switch {
		case isSpace(c):
			lx.pos++
		case c == '%':
			for lx.pos < len(lx.data) && lx.data[lx.pos] != '\n' && lx.data[lx.pos] != '\r' {
				lx.pos++
			}
		case c == '(':
			return token{tokString, lx.literalString()}, true
		case c == '<' && lx.peek(1) == '<':
			lx.pos += 2
			return token{tokOther, "<<"}, true
		case c == '>' && lx.peek(1) == '>':
			lx.pos += 2
			return token{tokOther, ">>"}, true
		case c == '<':
			return token{tokString, lx.hexString()}, true
		case c == '[' || c == ']' || c == '{' || c == '}' || c == '>' || c == ')':
			// 배열 경계는 피연산자 목록에 영향 없음
			lx.pos++
		case c == '/':
			return token{tokOther, lx.word()}, true
		default:
			w := lx.word()
			if w == "" {
				lx.pos++
				continue
			}
			if isNumber(w) {
				return token{tokNumber, w}, true
			}
			return token{tokOperator, w}, true
		}
	}
	return token{}, false
}

func (lx *lexer) peek(offset int) byte {
	if lx.pos+offset < len(lx.data) {
		return lx.data[lx.pos+offset]
	}
	return 0
}

func (lx *lexer) word() string {
	start := lx.pos
	if lx.pos < len(lx.data) && lx.data[lx.pos] == '/' {
		lx.pos++
	}
	for lx.pos < len(lx.data) && !isSpace(lx.data[lx.pos]) && !isDelimiter(lx.data[lx.pos]) {
		lx.pos++
	}
	return string(lx.data[start:lx.pos])
}

func isNumber(w string) bool {
	_, err := strconv.ParseFloat(w, 64)
	return err == nil
}

// literalString reads a balanced (...) string with escapes
func (lx *lexer) literalString() string {
	lx.pos++ // (
	var b []byte
	depth := 1

	for lx.pos < len(lx.data) {
		c := lx.data[lx.pos]
		lx.pos++

		switch c {
		case '\\':
			if lx.pos >= len(lx.data) {
				return latin1(b)
			}
			e := lx.data[lx.pos]
			lx.pos++
			switch e {
			case 'n':
				b = append(b, '\n')
			case 'r':
				b = append(b, '\r')
			case 't':
				b = append(b, '\t')
			case 'b':
				b = append(b, '\b')
			case 'f':
				b = append(b, '\f')
			case '\r':
				if lx.peek(0) == '\n' {
					lx.pos++
				}
			case '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && lx.pos < len(lx.data) && lx.data[lx.pos] >= '0' && lx.data[lx.pos] <= '7'; i++ {
						v = v*8 + int(lx.data[lx.pos]-'0')
						lx.pos++
					}
					b = append(b, byte(v))
				} else {
					b = append(b, e)
				}
			}
		case '(':
			depth++
			b = append(b, c)
		case ')':
			depth--
			if depth == 0 {
				return latin1(b)
			}
			b = append(b, c)
		default:
			b = append(b, c)
		}
	}
	return latin1(b)
}

// hexString reads <...>; two-byte (UTF-16BE) strings are detected by a BOM
func (lx *lexer) hexString() string {
	lx.pos++ // <
	var digits []byte
	for lx.pos < len(lx.data) && lx.data[lx.pos] != '>' {
		if c := lx.data[lx.pos]; !isSpace(c) {
			digits = append(digits, c)
		}
		lx.pos++
	}
	lx.pos++ // >

	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	raw := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			return ""
		}
		raw = append(raw, byte(v))
	}

	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		return utf16be(raw[2:])
	}
	return latin1(raw)
}

// skipInlineImage jumps past binary image data up to the EI operator
func (lx *lexer) skipInlineImage() {
	idx := strings.Index(string(lx.data[lx.pos:]), "EI")
	for idx >= 0 {
		end := lx.pos + idx + 2
		if (lx.pos+idx == 0 || isSpace(lx.data[lx.pos+idx-1])) && (end >= len(lx.data) || isSpace(lx.data[end])) {
			lx.pos = end
			return
		}
		next := strings.Index(string(lx.data[end:]), "EI")
		if next < 0 {
			break
		}
		idx = end - lx.pos + next
	}
	lx.pos = len(lx.data)
}

func latin1(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

func utf16be(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return string(utf16.Decode(units))
}
