// Package diag collects structured diagnostics across every compiler stage:
// a buffered collector that lets one failing unit of work (a token, a
// statement, a function body) be recorded without aborting the rest of the
// batch. Bag is synchronous — the pipeline this compiler drives is
// single-threaded, so there is no listener goroutine or channel to dispose
// of.
package diag

import (
	"fmt"
	"sort"

	"vxc/internal/token"
)

// Severity classifies a diagnostic.
type Severity int

const (
	Warning Severity = iota
	Error
	Internal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Internal:
		return "internal error"
	default:
		return "unknown"
	}
}

// Diagnostic is the structured record handed to the (external) renderer.
type Diagnostic struct {
	Severity       Severity
	Code           string
	Message        string
	Primary        token.Span
	Secondary      []token.Span
	Suggestion     string
	SuggestionSpan token.Span
}

func (d Diagnostic) String() string {
	if d.Suggestion != "" {
		return fmt.Sprintf("%s: %s [%s] at %s (help: %s)", d.Severity, d.Message, d.Code, d.Primary, d.Suggestion)
	}
	return fmt.Sprintf("%s: %s [%s] at %s", d.Severity, d.Message, d.Code, d.Primary)
}

// Bag accumulates diagnostics for one compilation. It is safe to pass by
// pointer through every stage; it holds no global state and is dropped with
// the compilation context that owns it.
type Bag struct {
	items []Diagnostic
}

// NewBag returns an empty diagnostic bag with n pre-allocated slots.
func NewBag(n int) *Bag {
	if n < 1 {
		n = 16
	}
	return &Bag{items: make([]Diagnostic, 0, n)}
}

// Append records d. Nil-severity checks are the caller's responsibility;
// every call here is assumed to be a real diagnostic.
func (b *Bag) Append(d Diagnostic) {
	b.items = append(b.items, d)
}

// Errorf appends an Error-severity diagnostic built from a format string.
func (b *Bag) Errorf(span token.Span, code, format string, args ...interface{}) {
	b.Append(Diagnostic{Severity: Error, Code: code, Message: fmt.Sprintf(format, args...), Primary: span})
}

// Warnf appends a Warning-severity diagnostic.
func (b *Bag) Warnf(span token.Span, code, format string, args ...interface{}) {
	b.Append(Diagnostic{Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...), Primary: span})
}

// Flush empties the buffered diagnostics, keeping the underlying capacity.
func (b *Bag) Flush() {
	b.items = b.items[:0]
}

// Len returns the number of buffered diagnostics.
func (b *Bag) Len() int {
	return len(b.items)
}

// HasErrors reports whether any buffered diagnostic is Error or Internal
// severity. The pipeline uses this to gate pass boundaries: later passes are
// skipped once this is true.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity >= Error {
			return true
		}
	}
	return false
}

// All returns the buffered diagnostics in source order (by primary span
// offset), the order the driver is expected to print them in.
func (b *Bag) All() []Diagnostic {
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Primary.Start.Offset < out[j].Primary.Start.Offset
	})
	return out
}
