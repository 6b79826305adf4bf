package semantic_test

import (
	"context"
	"strings"
	"testing"

	"codefix/internal/diag"
	"codefix/internal/parser"
	"codefix/internal/semantic"
	"codefix/internal/syntax"
)

const prelude = "using System;\nusing System.Diagnostics;\nusing System.Threading.Tasks;\n\n"

func bindSource(t *testing.T, src string) *semantic.Model {
	t.Helper()
	res := parser.ParseText(1, "test.cs", src, parser.Options{})
	if res.Bag != nil && res.Bag.HasErrors() {
		t.Fatalf("parse errors: %v", res.Bag.Items())
	}
	m, err := semantic.Bind(context.Background(), res.Tree, semantic.Options{})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	return m
}

// inClass wraps members in a class after the usual usings.
func inClass(members string) string {
	return prelude + "class C\n{\n" + members + "\n}\n"
}

// find returns the first node of kind k whose text is text.
func find(t *testing.T, m *semantic.Model, k syntax.Kind, text string) *syntax.Node {
	t.Helper()
	for n := range m.Tree().Root().DescendantNodesAndSelf(nil) {
		if n.Kind() == k && n.Text() == text {
			return n
		}
	}
	t.Fatalf("no %s node with text %q", k, text)
	return nil
}

func codes(m *semantic.Model) []diag.Code {
	var out []diag.Code
	for _, d := range m.Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

func TestCoreLibraryTypes(t *testing.T) {
	m := bindSource(t, "class C { }\n")
	tests := []struct {
		name    string
		special semantic.SpecialType
	}{
		{"System.Object", semantic.SpecialObject},
		{"System.String", semantic.SpecialString},
		{"System.Int32", semantic.SpecialInt32},
		{"System.Nullable`1", semantic.SpecialNullableT},
	}
	for _, tt := range tests {
		got := m.TypeByMetadataName(tt.name)
		if got == nil || got.Special != tt.special {
			t.Errorf("TypeByMetadataName(%q) = %v, want special %d", tt.name, got, tt.special)
		}
		if got.IsFromSource() {
			t.Errorf("%s reported as declared in source", tt.name)
		}
	}
	for _, name := range []string{"System.Threading.Tasks.Task", "System.Threading.Tasks.Task`1", "System.Diagnostics.Debug"} {
		if m.TypeByMetadataName(name) == nil {
			t.Errorf("missing %s", name)
		}
	}
	if m.TypeByMetadataName("C") == nil || !m.TypeByMetadataName("C").IsFromSource() {
		t.Errorf("source type C not found")
	}
}

func TestHostErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want diag.Code
	}{
		{"unknown name", "void M() { var x = y; }", diag.CSNameNotFound},
		{"unknown member", "void M(string s) { var n = s.Size; }", diag.CSNoMemberOnType},
		{"unknown static member", "void M() { var n = string.Nope; }", diag.CSTypeHasNoMember},
		{"no overload", "void M() { Debug.Fail(); }", diag.CSNoOverload},
		{"bad argument", "void M() { Debug.Fail(1); }", diag.CSBadArgument},
		{"bad operands", "void M(bool b) { var x = b + 1; }", diag.CSBadOperands},
		{"conversion", "void M() { int x = \"a\"; }", diag.CSNoConversion},
		{"unknown type", "Missing M() { return null; }", diag.CSTypeOrNamespaceNotFound},
		{"await non task", "async Task M() { await 1; }", diag.CSBadAwait},
		{"literal too large", "void M() { var x = 99999999999999999999; }", diag.CSIntegralTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := bindSource(t, inClass(tt.body))
			got := codes(m)
			if len(got) != 1 || got[0] != tt.want {
				t.Fatalf("codes = %v, want [%s]; diagnostics %v", got, tt.want, m.Diagnostics())
			}
		})
	}
}

func TestCleanSourcesHaveNoErrors(t *testing.T) {
	sources := []string{
		inClass(`string M(string a, string b) { if (string.Compare(a, b, StringComparison.Ordinal) == 0) { return a + 1; } return b.ToString(); }`),
		inClass(`int? L(string s) => s?.Length;`),
		inClass(`async Task<int> GetAsync() { await Task.Delay(1); return 1; }
async Task UseAsync() { int v = await GetAsync(); Console.WriteLine(v); }`),
		inClass(`void Loop(int[] xs) { for (int i = 0; i < xs.Length; i++) { Console.WriteLine(xs[i]); } foreach (var x in xs) { Console.WriteLine(x); } }`),
		inClass(`bool P(object o) { if (o is string s && s.Length > 0) { return true; } return o == null || !(o is null); }`),
		prelude + "namespace N.Inner\n{\n    [Flags]\n    enum E { A = 1, B = 2, C = A | B }\n    class D { E e = E.A | E.B; bool Has() => (e & E.C) != 0; }\n}\n",
	}
	for i, src := range sources {
		m := bindSource(t, src)
		if ds := m.Diagnostics(); len(ds) != 0 {
			t.Errorf("source %d: unexpected diagnostics %v", i, ds)
		}
	}
}

func TestInvocationSymbol(t *testing.T) {
	m := bindSource(t, inClass(`bool M(string a, string b) => string.Compare(a, b, StringComparison.OrdinalIgnoreCase) == 0;`))
	call := find(t, m, syntax.KindInvocationExpr, "string.Compare(a, b, StringComparison.OrdinalIgnoreCase)")
	sym := m.SymbolInfo(call)
	if !semantic.IsPublicStaticMethod(sym, semantic.SpecialString, "Compare") {
		t.Fatalf("SymbolInfo = %v, want string.Compare", sym)
	}
	if len(sym.Params) != 3 || sym.Params[2].Type.Name != "StringComparison" {
		t.Fatalf("picked overload %v with params %v", sym, sym.Params)
	}
	if got := m.TypeOf(call); got == nil || got.Special != semantic.SpecialInt32 {
		t.Fatalf("TypeOf(call) = %v, want int", got)
	}
	arg := find(t, m, syntax.KindMemberAccessExpr, "StringComparison.OrdinalIgnoreCase")
	if v, ok := m.ConstantValue(arg); !ok || v != int32(5) {
		t.Fatalf("ConstantValue(StringComparison.OrdinalIgnoreCase) = %v, %v", v, ok)
	}
}

func TestEnumValues(t *testing.T) {
	m := bindSource(t, prelude+`[Flags]
enum E
{
    None = 0,
    A = 1,
    B = A << 1,
    AB = A | B,
    Next,
}

enum Small : byte { Max = 255, Over }
`)
	e := m.TypeByMetadataName("E")
	if !semantic.IsFlagsEnum(e) {
		t.Fatalf("E is not a flags enum")
	}
	want := map[string]any{"None": int32(0), "A": int32(1), "B": int32(2), "AB": int32(3), "Next": int32(4)}
	for _, f := range e.Members() {
		v, ok := f.ConstantValue()
		if !ok || v != want[f.Name] {
			t.Errorf("%s = %v (%v), want %v", f.Name, v, ok, want[f.Name])
		}
	}
	small := m.TypeByMetadataName("Small")
	if lo, hi, ok := semantic.EnumUnderlyingRange(small); !ok || lo != 0 || hi != 255 {
		t.Fatalf("EnumUnderlyingRange(Small) = %d, %d, %v", lo, hi, ok)
	}
	for _, f := range small.Members() {
		_, ok := f.ConstantValue()
		if f.Name == "Over" && ok {
			t.Errorf("Over has a value past the byte range")
		}
	}
}

func TestConstantFolding(t *testing.T) {
	m := bindSource(t, inClass(`const int K = 1 << 4;
const string S = "a" + "b";
const long N = -9223372036854775808;
const bool T = K > 10 && S == "ab";`))
	tests := []struct {
		text string
		want any
	}{
		{"1 << 4", int32(16)},
		{`"a" + "b"`, "ab"},
		{"-9223372036854775808", int64(-1 << 63)},
		{`K > 10 && S == "ab"`, true},
	}
	for _, tt := range tests {
		var n *syntax.Node
		for d := range m.Tree().Root().DescendantNodes(nil) {
			if d.Kind().IsExpression() && d.Text() == tt.text {
				n = d
				break
			}
		}
		if n == nil {
			t.Fatalf("no expression %q", tt.text)
		}
		if v, ok := m.ConstantValue(n); !ok || v != tt.want {
			t.Errorf("ConstantValue(%s) = %v (%v), want %v", tt.text, v, ok, tt.want)
		}
	}
}

func TestConditionalAccessAndAwaitTypes(t *testing.T) {
	m := bindSource(t, inClass(`async Task<string> Name() => "n";
async Task M(string s)
{
    var len = s?.Length;
    var name = await Name();
}`))
	ca := find(t, m, syntax.KindConditionalAccessExpr, "s?.Length")
	if got := m.TypeOf(ca); got == nil || !got.IsNullable() || got.NullableUnderlying().Special != semantic.SpecialInt32 {
		t.Fatalf("TypeOf(s?.Length) = %v, want int?", got)
	}
	aw := find(t, m, syntax.KindAwaitExpr, "await Name()")
	if got := m.TypeOf(aw); got == nil || got.Special != semantic.SpecialString {
		t.Fatalf("TypeOf(await Name()) = %v, want string", got)
	}
	method := m.DeclaredSymbol(find(t, m, syntax.KindMethodDecl, `async Task<string> Name() => "n";`))
	if method == nil || !method.IsAsync() || !semantic.IsAwaitable(method.Type) {
		t.Fatalf("DeclaredSymbol(Name) = %v", method)
	}
}

func TestSpeculativeBinding(t *testing.T) {
	src := inClass(`string M(string s, int x)
{
    var r = s + x.ToString();
    return r;
}`)
	m := bindSource(t, src)
	pos := uint32(strings.Index(src, "var r"))
	sym := m.SpeculativeSymbol(pos, syntax.Binary(syntax.KindAddExpr, syntax.IdentifierName("s"), syntax.IdentifierName("x")))
	if sym == nil || sym.Name != "op_Addition" || sym.Containing.Special != semantic.SpecialString {
		t.Fatalf("speculative s + x = %v, want string concatenation", sym)
	}
	if got := m.SpeculativeType(pos, syntax.IdentifierName("r")); got != nil {
		t.Fatalf("r is visible before its declaration: %v", got)
	}
	after := uint32(strings.Index(src, "return r"))
	if got := m.SpeculativeType(after, syntax.IdentifierName("r")); got == nil || got.Special != semantic.SpecialString {
		t.Fatalf("SpeculativeType(r) = %v, want string", got)
	}
	if ds := m.Diagnostics(); len(ds) != 0 {
		t.Fatalf("speculation leaked diagnostics: %v", ds)
	}
}

func TestReferences(t *testing.T) {
	m := bindSource(t, inClass(`async Task Work() { await Task.Delay(1); }
async Task Run() { await Work(); await this.Work(); var n = nameof(Work); }`))
	decl := find(t, m, syntax.KindMethodDecl, "async Task Work() { await Task.Delay(1); }")
	sym := m.DeclaredSymbol(decl)
	refs := m.References(sym)
	if len(refs) != 3 {
		t.Fatalf("References(Work) = %d nodes, want 3", len(refs))
	}
	for _, r := range refs {
		if r.Text() != "Work" {
			t.Errorf("reference text %q", r.Text())
		}
	}
}

func TestConvertedType(t *testing.T) {
	m := bindSource(t, inClass(`long M(int i) { long l = i; object o = i; return l; }`))
	var ints []*syntax.Node
	for n := range m.Tree().Root().DescendantNodes(nil) {
		if n.Is(syntax.KindIdentifierName) && n.Text() == "i" {
			ints = append(ints, n)
		}
	}
	if len(ints) != 2 {
		t.Fatalf("found %d uses of i", len(ints))
	}
	wants := []semantic.SpecialType{semantic.SpecialInt64, semantic.SpecialObject}
	for k, n := range ints {
		if got := m.ConvertedTypeOf(n); got == nil || got.Special != wants[k] {
			t.Errorf("ConvertedTypeOf(i #%d) = %v", k, got)
		}
		if got := m.TypeOf(n); got == nil || got.Special != semantic.SpecialInt32 {
			t.Errorf("TypeOf(i #%d) = %v", k, got)
		}
	}
}
