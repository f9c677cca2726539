package diag

import (
	"testing"

	"vxc/internal/token"
)

func spanAt(offset int) token.Span {
	p := token.Position{Offset: offset}
	return token.Span{Start: p, End: p}
}

func TestBagHasErrorsGatesOnSeverity(t *testing.T) {
	bag := NewBag(0)
	if bag.HasErrors() {
		t.Fatal("empty bag should not report errors")
	}
	bag.Warnf(spanAt(0), "LEX001", "a warning")
	if bag.HasErrors() {
		t.Fatal("a warning-only bag should not report HasErrors")
	}
	bag.Errorf(spanAt(1), "PARSE001", "an error")
	if !bag.HasErrors() {
		t.Fatal("expected HasErrors once an Error-severity diagnostic is appended")
	}
}

func TestBagInternalSeverityCountsAsError(t *testing.T) {
	bag := NewBag(0)
	bag.Append(Diagnostic{Severity: Internal, Code: "CODEGEN099", Message: "ICE", Primary: spanAt(0)})
	if !bag.HasErrors() {
		t.Fatal("an Internal-severity diagnostic should count as an error for gating")
	}
}

func TestAllSortsByPrimarySpanOffset(t *testing.T) {
	bag := NewBag(0)
	bag.Errorf(spanAt(20), "E1", "second")
	bag.Errorf(spanAt(5), "E2", "first")
	bag.Errorf(spanAt(12), "E3", "middle")

	all := bag.All()
	if len(all) != 3 {
		t.Fatalf("got %d diagnostics, want 3", len(all))
	}
	wantOrder := []string{"E2", "E3", "E1"}
	for i, w := range wantOrder {
		if all[i].Code != w {
			t.Errorf("position %d: got code %s, want %s", i, all[i].Code, w)
		}
	}
}

func TestFlushEmptiesWithoutReallocating(t *testing.T) {
	bag := NewBag(4)
	bag.Errorf(spanAt(0), "E1", "x")
	bag.Flush()
	if bag.Len() != 0 {
		t.Fatalf("got len %d after Flush, want 0", bag.Len())
	}
	if cap(bag.items) != 4 {
		t.Fatalf("got cap %d after Flush, want the original 4", cap(bag.items))
	}
	bag.Errorf(spanAt(0), "E2", "y")
	if bag.Len() != 1 {
		t.Fatalf("got len %d after re-append, want 1", bag.Len())
	}
}

func TestDiagnosticStringIncludesSuggestion(t *testing.T) {
	d := Diagnostic{Severity: Error, Code: "PARSE010", Message: "missing semicolon", Primary: spanAt(0), Suggestion: "add ';'"}
	s := d.String()
	if !containsAll(s, "PARSE010", "missing semicolon", "add ';'") {
		t.Errorf("String() = %q, missing expected substrings", s)
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !contains(s, p) {
			return false
		}
	}
	return true
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
