package lexer

import "vxc/internal/token"

// fstrFrame tracks one nested formatted-string literal (f"...{expr}...").
//
// Formatted strings are scanned as an alternating sequence of literal
// chunks and braced expression regions: the chunk scanner emits
// a FStringBegin/FStringMid/FStringEnd token per literal run, and whenever
// it hits an unescaped '{' it hands control back to the ordinary token
// states so the parser can re-enter expression parsing. depth counts brace
// nesting introduced *within* that embedded expression (struct literals,
// nested blocks) so the matching '}' that closes the expression itself is
// recognised rather than consumed as a literal brace.
type fstrFrame struct {
	depth      int
	inExpr     bool
	chunkIndex int
}

func (l *Lexer) currentFstring() (*fstrFrame, bool) {
	if len(l.fstrStack) == 0 {
		return nil, false
	}
	return &l.fstrStack[len(l.fstrStack)-1], true
}

// onOpenBrace is called by lexOperator whenever a '{' is scanned as an
// ordinary token; it tracks nesting so the chunk scanner can find the '}'
// that really ends the embedded expression.
func (l *Lexer) onOpenBrace() {
	if frame, ok := l.currentFstring(); ok && frame.inExpr {
		frame.depth++
	}
}

// onCloseBrace reports whether the '}' just scanned closes the current
// embedded formatted-string expression (and should not be emitted as
// token.RBrace — scanning resumes in literal-chunk mode instead).
func (l *Lexer) onCloseBrace() bool {
	frame, ok := l.currentFstring()
	if !ok || !frame.inExpr {
		return false
	}
	if frame.depth > 0 {
		frame.depth--
		return false
	}
	frame.inExpr = false
	return true
}

func lexFStringStart(l *Lexer) stateFunc {
	l.next() // '"'; lexAny has already consumed the 'f'
	l.fstrStack = append(l.fstrStack, fstrFrame{})
	return lexFStringChunk
}

func (l *Lexer) unescapeRune(e rune) rune {
	switch e {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	case '\\', '"', '\'', '{', '}':
		return e
	default:
		l.errorf(l.span(), "unknown escape sequence '\\%c'", e)
		return e
	}
}

// lexFStringChunk scans one literal run of a formatted string, stopping at
// an unescaped '{' (begin an embedded expression) or the closing quote.
func lexFStringChunk(l *Lexer) stateFunc {
	l.beginToken()
	frame, _ := l.currentFstring()
	var sb []rune
	for {
		r := l.next()
		switch r {
		case eof, '\n':
			l.errorf(l.span(), "unterminated formatted string literal")
			l.fstrStack = l.fstrStack[:len(l.fstrStack)-1]
			return nil
		case '\\':
			sb = append(sb, l.unescapeRune(l.next()))
		case '"':
			kind := token.FStringEnd
			if frame.chunkIndex == 0 {
				kind = token.FStringBegin
			}
			l.emitValue(kind, string(sb))
			if frame.chunkIndex == 0 {
				// No embedded expressions at all: pair the Begin with an
				// immediate empty End so the parser's Begin..Mid*..End loop
				// stays uniform.
				l.beginToken()
				l.emitValue(token.FStringEnd, "")
			}
			l.fstrStack = l.fstrStack[:len(l.fstrStack)-1]
			return lexAny
		case '{':
			if l.peek() == '{' {
				l.next()
				sb = append(sb, '{')
				continue
			}
			kind := token.FStringMid
			if frame.chunkIndex == 0 {
				kind = token.FStringBegin
			}
			l.emitValue(kind, string(sb))
			frame.chunkIndex++
			frame.inExpr = true
			frame.depth = 0
			return lexAny
		case '}':
			if l.peek() == '}' {
				l.next()
				sb = append(sb, '}')
				continue
			}
			sb = append(sb, r)
		default:
			sb = append(sb, r)
		}
	}
}
