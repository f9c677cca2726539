package lexer

import (
	"testing"

	"vxc/internal/diag"
	"vxc/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func assertKinds(t *testing.T, got []token.Token, want []token.Kind) {
	t.Helper()
	gk := kinds(got)
	if len(gk) != len(want) {
		t.Fatalf("token count mismatch: got %v, want %v", gk, want)
	}
	for i := range want {
		if gk[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, gk[i], want[i])
		}
	}
}

func TestLexKeywordsAndLetMut(t *testing.T) {
	bag := diag.NewBag(0)
	toks := Lex("let x = 1; let! y = 2;", "t.vx", bag)
	assertKinds(t, toks, []token.Kind{
		token.KwLet, token.Identifier, token.Assign, token.Int, token.Semicolon,
		token.KwLetMut, token.Identifier, token.Assign, token.Int, token.Semicolon,
		token.EOF,
	})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
}

func TestLexMutableReferenceSequence(t *testing.T) {
	// '&T!' lexes as the sequence '&', identifier, '!' — the parser, not
	// the lexer, reassembles this into a mutable reference type.
	bag := diag.NewBag(0)
	toks := Lex("&Vec!", "t.vx", bag)
	assertKinds(t, toks, []token.Kind{token.Amp, token.Identifier, token.Bang, token.EOF})
}

func TestLexNumberSuffixesAndFloats(t *testing.T) {
	bag := diag.NewBag(0)
	toks := Lex("1i32 2.5f64 10 3.0e-2", "t.vx", bag)
	assertKinds(t, toks, []token.Kind{token.Int, token.Float, token.Int, token.Float, token.EOF})
}

func TestLexStringEscapes(t *testing.T) {
	bag := diag.NewBag(0)
	toks := Lex(`"a\nb"`, "t.vx", bag)
	assertKinds(t, toks, []token.Kind{token.String, token.EOF})
	if toks[0].Value != "a\nb" {
		t.Errorf("got %q, want %q", toks[0].Value, "a\nb")
	}
}

func TestLexFormattedStringNoExpr(t *testing.T) {
	bag := diag.NewBag(0)
	toks := Lex(`f"hello"`, "t.vx", bag)
	assertKinds(t, toks, []token.Kind{token.FStringBegin, token.FStringEnd, token.EOF})
	if toks[0].Value != "hello" {
		t.Errorf("got %q", toks[0].Value)
	}
}

func TestLexFormattedStringWithExpr(t *testing.T) {
	bag := diag.NewBag(0)
	toks := Lex(`f"a is {a + 1} done"`, "t.vx", bag)
	assertKinds(t, toks, []token.Kind{
		token.FStringBegin, // "a is "
		token.Identifier,   // a
		token.Plus,
		token.Int, // 1
		token.FStringEnd,
		token.EOF,
	})
	if toks[0].Value != "a is " {
		t.Errorf("chunk 0: got %q", toks[0].Value)
	}
	if toks[len(toks)-2].Value != " done" {
		t.Errorf("final chunk: got %q", toks[len(toks)-2].Value)
	}
}

func TestLexFormattedStringWithNestedBrace(t *testing.T) {
	bag := diag.NewBag(0)
	toks := Lex(`f"{ Point{x: 1} }"`, "t.vx", bag)
	// Expect the struct literal braces inside the embedded expression to
	// come through as ordinary LBrace/RBrace tokens, not fstring boundaries.
	assertKinds(t, toks, []token.Kind{
		token.FStringBegin, // ""
		token.Identifier,   // Point
		token.LBrace,
		token.Identifier, // x
		token.Colon,
		token.Int, // 1
		token.RBrace,
		token.FStringEnd,
		token.EOF,
	})
}

func TestLexLineAndBlockComments(t *testing.T) {
	bag := diag.NewBag(0)
	toks := Lex("let x = 1 // comment\n/* block */ let y = 2", "t.vx", bag)
	assertKinds(t, toks, []token.Kind{
		token.KwLet, token.Identifier, token.Assign, token.Int,
		token.KwLet, token.Identifier, token.Assign, token.Int,
		token.EOF,
	})
}

func TestLexUnterminatedStringReportsError(t *testing.T) {
	bag := diag.NewBag(0)
	Lex(`"unterminated`, "t.vx", bag)
	if !bag.HasErrors() {
		t.Fatal("expected a lex error for unterminated string")
	}
}

func TestLexEmitsExactlyOneEOF(t *testing.T) {
	bag := diag.NewBag(0)
	toks := Lex("", "t.vx", bag)
	if len(toks) != 1 || toks[0].Kind != token.EOF {
		t.Fatalf("expected single EOF token, got %v", toks)
	}
}

func TestLexCRLFNormalized(t *testing.T) {
	bag := diag.NewBag(0)
	toks := Lex("let x = 1\r\nlet y = 2", "t.vx", bag)
	if toks[4].Span.Start.Line != 2 {
		t.Errorf("expected second 'let' on line 2, got line %d", toks[4].Span.Start.Line)
	}
}
