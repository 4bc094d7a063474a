package lexer

import (
	"testing"

	"github.com/thrushlang/thrushc/internal/diagnostics"
	"github.com/thrushlang/thrushc/internal/token"
)

func TestLex_Punctuation(t *testing.T) {
	sink := diagnostics.NewSink()
	toks := Lex([]byte("(){}[],:;."), sink)
	want := []token.Kind{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.LeftBracket, token.RightBracket, token.Comma, token.Colon,
		token.SemiColon, token.Dot, token.Eof,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
		}
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
}

func TestLex_Operators(t *testing.T) {
	tests := []struct {
		src  string
		want token.Kind
	}{
		{"+", token.Plus}, {"++", token.PlusPlus}, {"+=", token.PlusEqual},
		{"-", token.Minus}, {"--", token.MinusMinus}, {"-=", token.MinusEqual}, {"->", token.Arrow},
		{"==", token.EqualEqual}, {"!=", token.BangEqual}, {"!", token.Bang},
		{"<", token.Less}, {"<=", token.LessEqual}, {"<<", token.ShiftLeft},
		{">", token.Greater}, {">=", token.GreaterEqual}, {">>", token.ShiftRight},
		{"&&", token.AndAnd}, {"||", token.OrOr}, {"&", token.Amp}, {"|", token.Pipe},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			sink := diagnostics.NewSink()
			toks := Lex([]byte(tt.src), sink)
			if toks[0].Kind != tt.want {
				t.Errorf("Lex(%q)[0].Kind = %v, want %v", tt.src, toks[0].Kind, tt.want)
			}
		})
	}
}

func TestLex_IntegerClassification(t *testing.T) {
	tests := []struct {
		src string
	}{
		{"0"}, {"127"}, {"128"}, {"32767"}, {"32768"}, {"2147483647"}, {"2147483648"},
	}
	for _, tt := range tests {
		sink := diagnostics.NewSink()
		toks := Lex([]byte(tt.src), sink)
		if toks[0].Kind != token.Integer {
			t.Errorf("Lex(%q)[0].Kind = %v, want Integer", tt.src, toks[0].Kind)
		}
		if sink.HasErrors() {
			t.Errorf("Lex(%q) unexpected errors: %v", tt.src, sink.All())
		}
	}
}

func TestLex_FloatVsInteger(t *testing.T) {
	sink := diagnostics.NewSink()
	toks := Lex([]byte("3.14 42 42."), sink)
	if toks[0].Kind != token.Float {
		t.Errorf("3.14: got %v, want Float", toks[0].Kind)
	}
	if toks[1].Kind != token.Integer {
		t.Errorf("42: got %v, want Integer", toks[1].Kind)
	}
	// "42." with no following digit: '.' is not consumed as part of the number.
	if toks[2].Kind != token.Integer {
		t.Errorf("42.: got %v, want Integer", toks[2].Kind)
	}
	if toks[3].Kind != token.Dot {
		t.Errorf("expected a trailing Dot token, got %v", toks[3].Kind)
	}
}

func TestLex_RadixLiterals(t *testing.T) {
	for _, src := range []string{"0x1F", "0b1010", "0o17", "1_000_000"} {
		sink := diagnostics.NewSink()
		toks := Lex([]byte(src), sink)
		if toks[0].Kind != token.Integer {
			t.Errorf("Lex(%q)[0].Kind = %v, want Integer", src, toks[0].Kind)
		}
		if sink.HasErrors() {
			t.Errorf("Lex(%q) unexpected errors: %v", src, sink.All())
		}
	}
}

func TestLex_StringEscapes(t *testing.T) {
	sink := diagnostics.NewSink()
	toks := Lex([]byte(`"hi\n"`), sink)
	if toks[0].Kind != token.Str {
		t.Fatalf("got %v, want Str", toks[0].Kind)
	}
	want := []byte("hi\n\x00")
	if string(toks[0].Bytes) != string(want) {
		t.Errorf("got bytes %v, want %v", toks[0].Bytes, want)
	}
}

func TestLex_UnterminatedString(t *testing.T) {
	sink := diagnostics.NewSink()
	Lex([]byte(`"abc`), sink)
	if !sink.HasErrors() {
		t.Error("expected an unterminated-string error")
	}
}

func TestLex_Keywords(t *testing.T) {
	tests := map[string]token.Kind{
		"fn": token.KwFn, "struct": token.KwStruct, "enum": token.KwEnum,
		"s32": token.KwS32, "u64": token.KwU64, "ptr": token.KwPtr,
		"mut": token.KwMut, "const": token.KwConst, "return": token.KwReturn,
		"break": token.KwBreak, "continue": token.KwContinue, "if": token.KwIf,
		"alloc": token.KwAlloc, "sizeof": token.KwSizeOf,
	}
	for src, want := range tests {
		sink := diagnostics.NewSink()
		toks := Lex([]byte(src), sink)
		if toks[0].Kind != want {
			t.Errorf("Lex(%q)[0].Kind = %v, want %v", src, toks[0].Kind, want)
		}
	}
}

func TestLex_Attributes(t *testing.T) {
	sink := diagnostics.NewSink()
	toks := Lex([]byte("@public @extern @unknownattr"), sink)
	if toks[0].Kind != token.AttrPublic {
		t.Errorf("got %v, want AttrPublic", toks[0].Kind)
	}
	if toks[1].Kind != token.AttrExtern {
		t.Errorf("got %v, want AttrExtern", toks[1].Kind)
	}
	if !sink.HasErrors() {
		t.Error("expected an unknown-attribute error")
	}
}

func TestLex_Identifiers(t *testing.T) {
	sink := diagnostics.NewSink()
	toks := Lex([]byte("my_var _leading helloWorld"), sink)
	for i, want := range []string{"my_var", "_leading", "helloWorld"} {
		if toks[i].Kind != token.Identifier {
			t.Errorf("token %d: got %v, want Identifier", i, toks[i].Kind)
		}
		if toks[i].Lexeme != want {
			t.Errorf("token %d: got lexeme %q, want %q", i, toks[i].Lexeme, want)
		}
	}
}

func TestLex_Comments(t *testing.T) {
	sink := diagnostics.NewSink()
	toks := Lex([]byte("1 // a comment\n2 /* block */ 3"), sink)
	var ints []string
	for _, tk := range toks {
		if tk.Kind == token.Integer {
			ints = append(ints, tk.Lexeme)
		}
	}
	if len(ints) != 3 {
		t.Fatalf("got %d integers, want 3: %v", len(ints), ints)
	}
	if sink.HasErrors() {
		t.Errorf("unexpected errors: %v", sink.All())
	}
}

func TestLex_UnterminatedBlockComment(t *testing.T) {
	sink := diagnostics.NewSink()
	Lex([]byte("/* never closes"), sink)
	if !sink.HasErrors() {
		t.Error("expected an unterminated-block-comment error")
	}
}

// TestLex_SpanSlicesMatchLexeme exercises the invariant from spec section 8:
// every token's span, sliced from the source, yields the token's lexeme
// (string/char literals are exempt, since escapes normalize their contents).
func TestLex_SpanSlicesMatchLexeme(t *testing.T) {
	src := []byte("fn add(a: s32, b: s32) s32 { return a + b; }")
	sink := diagnostics.NewSink()
	toks := Lex(src, sink)
	for _, tk := range toks {
		if tk.Kind == token.Eof || tk.Kind == token.Str || tk.Kind == token.Char {
			continue
		}
		got := tk.Span.Slice(src)
		if got != tk.Lexeme {
			t.Errorf("span slice %q != lexeme %q for token %v", got, tk.Lexeme, tk.Kind)
		}
	}
}

func TestLex_EndsInEof(t *testing.T) {
	sink := diagnostics.NewSink()
	toks := Lex([]byte("x"), sink)
	if toks[len(toks)-1].Kind != token.Eof {
		t.Error("token stream must end in Eof")
	}
}
