package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"codefix/internal/diag"
	"codefix/internal/lexer"
	"codefix/internal/source"
	"codefix/internal/testkit"
	"codefix/internal/token"
)

// makeTestLexer creates a lexer over input with a bag-backed reporter.
func makeTestLexer(input string) (*lexer.Lexer, *diag.Bag) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.cs", []byte(input)))
	bag := diag.NewBag(0)
	return lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}}), bag
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// expectTokens checks the token kinds, ignoring EOF.
func expectTokens(t *testing.T, input string, expected ...token.Kind) {
	t.Helper()
	lx, bag := makeTestLexer(input)
	tokens := lx.Tokenize()
	tokens = tokens[:len(tokens)-1]

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d\nInput: %q\nTokens: %v\nErrors: %v",
			len(expected), len(tokens), input, tokensToString(tokens), bag.Items())
	}
	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("Token %d: expected %v, got %v (text: %q)", i, expected[i], tok.Kind, tok.Text)
		}
	}
}

func rebuild(tokens []token.Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		for _, tv := range tok.Leading {
			b.WriteString(tv.Text)
		}
		b.WriteString(tok.Text)
		for _, tv := range tok.Trailing {
			b.WriteString(tv.Text)
		}
	}
	return b.String()
}

func TestLosslessRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"class C { }",
		"  // lead\nint x = 1; // trail\n\n/* block */ y++;\n",
		"#if DEBUG\nM();\n#endif\n",
		"var s = @\"a\"\"b\nc\"; var i = $\"{x} {{ {y + \"}\"}\";",
		"a?.b ?? c ??= d; x <<= 2; e => f;",
		"bad ` char and 'unterminated\n",
		"/* never closed",
		"x = \"newline\nin string\";",
		"ünïcode = 1;\r\n",
	}
	for _, in := range inputs {
		lx, _ := makeTestLexer(in)
		toks := lx.Tokenize()
		if got := rebuild(toks); got != in {
			t.Errorf("round trip mismatch:\n in: %q\nout: %q", in, got)
		}
		if err := testkit.CheckTokenStream(toks, in); err != nil {
			t.Errorf("%q: %v", in, err)
		}
	}
}

func TestTriviaSplit(t *testing.T) {
	lx, _ := makeTestLexer("a; // c1\n  // c2\n  b;")
	tokens := lx.Tokenize()

	semi := tokens[1]
	if semi.Kind != token.Semicolon {
		t.Fatalf("tokens = %v", tokensToString(tokens))
	}
	var trailing []token.TriviaKind
	for _, tv := range semi.Trailing {
		trailing = append(trailing, tv.Kind)
	}
	want := []token.TriviaKind{token.TriviaSpace, token.TriviaLineComment, token.TriviaNewline}
	if fmt.Sprint(trailing) != fmt.Sprint(want) {
		t.Fatalf("trailing kinds = %v, want %v", trailing, want)
	}

	b := tokens[2]
	if b.Text != "b" || len(b.Leading) != 4 {
		t.Fatalf("leading of b = %+v", b.Leading)
	}
	if b.Leading[1].Kind != token.TriviaLineComment || b.Leading[1].Text != "// c2" {
		t.Fatalf("comment trivia = %+v", b.Leading[1])
	}
}

func TestDirectives(t *testing.T) {
	lx, _ := makeTestLexer("#pragma warning disable RCS1238\nx();\n  #endif\n")
	tokens := lx.Tokenize()
	x := tokens[0]
	if len(x.Leading) < 1 || x.Leading[0].Kind != token.TriviaDirective {
		t.Fatalf("expected directive trivia, got %+v", x.Leading)
	}
	d := x.Leading[0].Directive
	if d == nil || d.Name != "pragma" || d.Payload != "warning disable RCS1238" {
		t.Fatalf("directive = %+v", d)
	}

	eof := tokens[len(tokens)-1]
	var found bool
	for _, tv := range eof.Leading {
		if tv.Kind == token.TriviaDirective && tv.Directive.Name == "endif" {
			found = true
		}
	}
	if !found {
		t.Fatalf("indented #endif not recognised: %+v", eof.Leading)
	}
}

func TestHashInsideLineIsNotDirective(t *testing.T) {
	expectTokens(t, "a # b", token.Ident, token.Invalid, token.Ident)
}

func TestKeywordsAndContextual(t *testing.T) {
	expectTokens(t, "public static async Task<int> M() => await x;",
		token.KwPublic, token.KwStatic, token.Ident, token.Ident, token.Lt, token.KwInt, token.Gt,
		token.Ident, token.LParen, token.RParen, token.FatArrow, token.Ident, token.Ident, token.Semicolon)
	expectTokens(t, "@class @if", token.Ident, token.Ident)
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"0", token.IntLit},
		{"1_000", token.IntLit},
		{"0xFF", token.IntLit},
		{"0b1010", token.IntLit},
		{"10UL", token.IntLit},
		{"1.5", token.RealLit},
		{".5", token.RealLit},
		{"1e-3", token.RealLit},
		{"2f", token.RealLit},
		{"3m", token.RealLit},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lx, _ := makeTestLexer(tt.input)
			tok := lx.Next()
			if tok.Kind != tt.kind || tok.Text != tt.input {
				t.Fatalf("got %v(%q), want %v(%q)", tok.Kind, tok.Text, tt.kind, tt.input)
			}
		})
	}
	expectTokens(t, "1.ToString()", token.IntLit, token.Dot, token.Ident, token.LParen, token.RParen)
}

func TestOperators(t *testing.T) {
	expectTokens(t, "a?.b", token.Ident, token.QuestionDot, token.Ident)
	expectTokens(t, "a ?.5 : 1", token.Ident, token.Question, token.RealLit, token.Colon, token.IntLit)
	expectTokens(t, "x >> 1", token.Ident, token.Gt, token.Gt, token.IntLit)
	expectTokens(t, "a != null && !b || c == d",
		token.Ident, token.BangEq, token.KwNull, token.AndAnd, token.Bang, token.Ident,
		token.OrOr, token.Ident, token.EqEq, token.Ident)
}

func TestStringErrors(t *testing.T) {
	lx, bag := makeTestLexer("\"abc\nx")
	tokens := lx.Tokenize()
	if tokens[0].Kind != token.StringLit || tokens[0].Text != "\"abc" {
		t.Fatalf("first token = %v(%q)", tokens[0].Kind, tokens[0].Text)
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.CSNewlineInConstant {
		t.Fatalf("diagnostics = %+v", items)
	}
}

func TestUnterminatedComment(t *testing.T) {
	lx, bag := makeTestLexer("x /* open")
	lx.Tokenize()
	if items := bag.Items(); len(items) != 1 || items[0].Code != diag.CSEndOfFileInComment {
		t.Fatalf("diagnostics = %+v", items)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("a b")
	if p := lx.Peek(); p.Text != "a" {
		t.Fatalf("Peek = %q", p.Text)
	}
	if n := lx.Next(); n.Text != "a" {
		t.Fatalf("Next after Peek = %q", n.Text)
	}
	if n := lx.Next(); n.Text != "b" {
		t.Fatalf("second Next = %q", n.Text)
	}
	if n := lx.Next(); n.Kind != token.EOF {
		t.Fatalf("expected EOF, got %v", n.Kind)
	}
}

func TestIdentName(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	if lexer.IdentName(decomposed) != composed {
		t.Fatalf("NFC normalisation failed")
	}
	if lexer.IdentName("@class") != "class" {
		t.Fatalf("verbatim prefix not stripped")
	}
	if got := lexer.IdentName("us\u00aders"); got != "users" {
		t.Fatalf("format character kept: %q", got)
	}
}

func TestUnicodeIdentifiers(t *testing.T) {
	tests := []struct {
		input string
		kinds []token.Kind
	}{
		{"caf\u00e9", []token.Kind{token.Ident}},
		{"e\u0301x", []token.Kind{token.Ident}},
		{"us\u00aders", []token.Kind{token.Ident}},
		{"\u2160x", []token.Kind{token.Ident}},
		{"a\u203fb", []token.Kind{token.Ident}},
		{"@\u00e9", []token.Kind{token.Ident}},
		{"\u00e9 + 1", []token.Kind{token.Ident, token.Plus, token.IntLit}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectTokens(t, tt.input, tt.kinds...)
		})
	}
}
