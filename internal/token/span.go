// Package token defines the lexical tokens of vx and the source spans every
// token and AST node is anchored to.
package token

import "fmt"

// Position is a single point in a source file.
type Position struct {
	File   string // File identifier, usually a resolved path.
	Line   int    // 1-indexed line.
	Column int    // 1-indexed column, counted in runes.
	Offset int    // 0-indexed byte offset into the source buffer.
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a byte range [Start, End) into a single source file. It is the
// basis for every diagnostic location produced by the pipeline.
type Span struct {
	Start Position
	End   Position
}

func (s Span) String() string {
	return s.Start.String()
}

// Join returns the smallest span covering both a and b. Either may be the
// zero value, in which case the other is returned.
func Join(a, b Span) Span {
	if a == (Span{}) {
		return b
	}
	if b == (Span{}) {
		return a
	}
	start := a.Start
	if b.Start.Offset < start.Offset {
		start = b.Start
	}
	end := a.End
	if b.End.Offset > end.Offset {
		end = b.End
	}
	return Span{Start: start, End: end}
}
