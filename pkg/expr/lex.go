package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/thistle-tpl/thistle/pkg/diag"
)

type tokenType int

const (
	tEOF tokenType = iota
	tNumber
	tString
	tIdent
	tKeyword
	tPunct
)

type token struct {
	typ  tokenType
	text string
	// Value of number and string literals.
	val any
	diag.Ranging
}

func (t token) is(typ tokenType, text string) bool {
	return t.typ == typ && t.text == text
}

func (t token) describe() string {
	switch t.typ {
	case tEOF:
		return "end of expression"
	case tString:
		return "string " + t.text
	case tNumber:
		return "number " + t.text
	default:
		return strconv.Quote(t.text)
	}
}

var keywords = map[string]bool{}

func init() {
	for _, kw := range strings.Fields(`
		break case catch class const continue debugger default delete do
		else export extends false finally for function if import in
		instanceof let new null return super switch this throw true try
		typeof var void while with yield await`) {
		keywords[kw] = true
	}
}

// Punctuators, longest first so that the lexer can match greedily.
var puncts = strings.Fields(`
	>>>= ... === !== **= <<= >>= >>>
	=> == != <= >= && || ?? ?. ++ -- += -= *= /= %= &= |= ^= ** << >>
	{ } ( ) [ ] . ; , < > + - * / % & | ^ ! ~ ? : =`)

// lexer turns source into tokens. Errors are raised by panicking with a
// *ParseError, recovered in Parse.
type lexer struct {
	srcName string
	src     string
	pos     int
	tokens  []token
}

func (lx *lexer) errorf(r diag.Ranging, format string, args ...any) {
	panic(&ParseError{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(lx.srcName, lx.src, r),
	})
}

func lex(srcName, src string) []token {
	lx := &lexer{srcName: srcName, src: src}
	for {
		lx.skipSpace()
		if lx.pos == len(lx.src) {
			lx.tokens = append(lx.tokens, token{typ: tEOF, Ranging: diag.PointRanging(lx.pos)})
			return lx.tokens
		}
		lx.lexToken()
	}
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		switch {
		case unicode.IsSpace(r) || r == '\uFEFF':
			lx.pos += size
		case strings.HasPrefix(lx.src[lx.pos:], "//"):
			end := strings.IndexByte(lx.src[lx.pos:], '\n')
			if end == -1 {
				lx.pos = len(lx.src)
			} else {
				lx.pos += end
			}
		case strings.HasPrefix(lx.src[lx.pos:], "/*"):
			end := strings.Index(lx.src[lx.pos+2:], "*/")
			if end == -1 {
				lx.errorf(diag.Ranging{From: lx.pos, To: len(lx.src)}, "unterminated comment")
			}
			lx.pos += end + 4
		default:
			return
		}
	}
}

func (lx *lexer) emit(typ tokenType, begin int, val any) {
	lx.tokens = append(lx.tokens, token{typ, lx.src[begin:lx.pos], val, diag.Ranging{From: begin, To: lx.pos}})
}

func (lx *lexer) lexToken() {
	begin := lx.pos
	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
	switch {
	case isIdentStart(r):
		lx.pos += size
		for lx.pos < len(lx.src) {
			r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
			if !isIdentPart(r) {
				break
			}
			lx.pos += size
		}
		if keywords[lx.src[begin:lx.pos]] {
			lx.emit(tKeyword, begin, nil)
		} else {
			lx.emit(tIdent, begin, nil)
		}
	case isDigit(r) || (r == '.' && lx.pos+1 < len(lx.src) && isDigit(rune(lx.src[lx.pos+1]))):
		lx.lexNumber()
	case r == '"' || r == '\'':
		lx.lexString(byte(r))
	case r == '`':
		lx.errorf(diag.PointRanging(begin), "template literals are not supported")
	default:
		for _, p := range puncts {
			if strings.HasPrefix(lx.src[lx.pos:], p) {
				lx.pos += len(p)
				lx.emit(tPunct, begin, nil)
				return
			}
		}
		lx.errorf(diag.Ranging{From: begin, To: begin + size}, "unexpected character %q", r)
	}
}

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == '\u200C' || r == '\u200D'
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func (lx *lexer) lexNumber() {
	begin := lx.pos
	src := lx.src
	base := 10
	if src[lx.pos] == '0' && lx.pos+1 < len(src) {
		switch src[lx.pos+1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
	}
	var val float64
	if base != 10 {
		lx.pos += 2
		digitsBegin := lx.pos
		for lx.pos < len(src) && isBaseDigit(src[lx.pos], base) {
			lx.pos++
		}
		i, err := strconv.ParseUint(src[digitsBegin:lx.pos], base, 64)
		if err != nil {
			lx.errorf(diag.Ranging{From: begin, To: lx.pos}, "invalid number literal %s", src[begin:lx.pos])
		}
		val = float64(i)
	} else {
		for lx.pos < len(src) && isDigit(rune(src[lx.pos])) {
			lx.pos++
		}
		if lx.pos < len(src) && src[lx.pos] == '.' {
			lx.pos++
			for lx.pos < len(src) && isDigit(rune(src[lx.pos])) {
				lx.pos++
			}
		}
		if lx.pos < len(src) && (src[lx.pos] == 'e' || src[lx.pos] == 'E') {
			lx.pos++
			if lx.pos < len(src) && (src[lx.pos] == '+' || src[lx.pos] == '-') {
				lx.pos++
			}
			for lx.pos < len(src) && isDigit(rune(src[lx.pos])) {
				lx.pos++
			}
		}
		f, err := strconv.ParseFloat(src[begin:lx.pos], 64)
		if err != nil {
			lx.errorf(diag.Ranging{From: begin, To: lx.pos}, "invalid number literal %s", src[begin:lx.pos])
		}
		val = f
	}
	if lx.pos < len(src) {
		if r, _ := utf8.DecodeRuneInString(src[lx.pos:]); isIdentStart(r) || isDigit(r) {
			lx.errorf(diag.PointRanging(lx.pos), "identifier directly after number")
		}
	}
	lx.emit(tNumber, begin, val)
}

func isBaseDigit(b byte, base int) bool {
	switch {
	case '0' <= b && b <= '9':
		return int(b-'0') < base
	case 'a' <= b && b <= 'f':
		return base == 16
	case 'A' <= b && b <= 'F':
		return base == 16
	}
	return false
}

func (lx *lexer) lexString(quote byte) {
	begin := lx.pos
	lx.pos++
	var sb strings.Builder
	for {
		if lx.pos >= len(lx.src) || lx.src[lx.pos] == '\n' {
			lx.errorf(diag.Ranging{From: begin, To: lx.pos}, "unterminated string literal")
		}
		c := lx.src[lx.pos]
		switch c {
		case quote:
			lx.pos++
			lx.emit(tString, begin, sb.String())
			return
		case '\\':
			lx.lexEscape(&sb)
		default:
			sb.WriteByte(c)
			lx.pos++
		}
	}
}

var simpleEscapes = map[byte]string{
	'n': "\n", 't': "\t", 'r': "\r", 'b': "\b", 'f': "\f", 'v': "\v",
	'0': "\x00", '\\': "\\", '\'': "'", '"': "\"", '\n': "",
}

func (lx *lexer) lexEscape(sb *strings.Builder) {
	begin := lx.pos
	lx.pos++
	if lx.pos >= len(lx.src) {
		lx.errorf(diag.Ranging{From: begin, To: lx.pos}, "unterminated string literal")
	}
	c := lx.src[lx.pos]
	lx.pos++
	if s, ok := simpleEscapes[c]; ok && !(c == '0' && lx.pos < len(lx.src) && isDigit(rune(lx.src[lx.pos]))) {
		sb.WriteString(s)
		return
	}
	switch c {
	case 'x':
		sb.WriteRune(lx.hexDigits(begin, 2))
	case 'u':
		if lx.pos < len(lx.src) && lx.src[lx.pos] == '{' {
			end := strings.IndexByte(lx.src[lx.pos:], '}')
			if end == -1 {
				lx.errorf(diag.Ranging{From: begin, To: lx.pos}, "invalid unicode escape")
			}
			cp, err := strconv.ParseUint(lx.src[lx.pos+1:lx.pos+end], 16, 32)
			if err != nil || cp > unicode.MaxRune {
				lx.errorf(diag.Ranging{From: begin, To: lx.pos + end + 1}, "invalid unicode escape")
			}
			lx.pos += end + 1
			sb.WriteRune(rune(cp))
		} else {
			sb.WriteRune(lx.hexDigits(begin, 4))
		}
	default:
		if isDigit(rune(c)) {
			lx.errorf(diag.Ranging{From: begin, To: lx.pos}, "octal escapes are not supported")
		}
		// Unknown escapes stand for the character itself.
		lx.pos--
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		lx.pos += size
		sb.WriteRune(r)
	}
}

func (lx *lexer) hexDigits(begin, n int) rune {
	if lx.pos+n > len(lx.src) {
		lx.errorf(diag.Ranging{From: begin, To: len(lx.src)}, "invalid escape sequence")
	}
	v, err := strconv.ParseUint(lx.src[lx.pos:lx.pos+n], 16, 32)
	if err != nil {
		lx.errorf(diag.Ranging{From: begin, To: lx.pos + n}, "invalid escape sequence")
	}
	lx.pos += n
	return rune(v)
}
