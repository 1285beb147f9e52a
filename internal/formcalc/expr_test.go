package formcalc

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseSingle parses src and returns its only statement
func parseSingle(t *testing.T, src string) Leaf {
	t.Helper()
	list, err := Parse(src)
	require.NoError(t, err, src)
	require.Len(t, list.Exprs, 1, src)
	return list.Exprs[0]
}

func id(name string) map[string]any {
	return map[string]any{"id": name}
}

func binary(op string, left, right any) map[string]any {
	return map[string]any{"operator": op, "left": left, "right": right}
}

func unary(op string, arg any) map[string]any {
	return map[string]any{"operator": op, "arg": arg}
}

func TestExpressionDumps(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{"number", "42", 42.0},
		{"string", `"abc"`, "abc"},
		{"null", "null", map[string]any{"special": nil}},
		{"this", "$", id("$")},
		{"this keyword", "this", map[string]any{"special": "this"}},
		{"constant folding", "1 + 2 * 3", 7.0},
		{"string coerced", `(5 - "abc") * 3`, 15.0},
		{"numeric string coerced", `"2" * " 4 "`, 8.0},
		{"parens", "(1 + 2) * 3", 9.0},
		{"division", "1 / 4", 0.25},
		{
			"left associative",
			"1 + a + 3",
			binary("+", binary("+", 1.0, id("a")), 3.0),
		},
		{
			"precedence",
			"a + b * c",
			binary("+", id("a"), binary("*", id("b"), id("c"))),
		},
		{
			"grouping",
			"(a + b) * c",
			binary("*", binary("+", id("a"), id("b")), id("c")),
		},
		{
			"comparison chain",
			"a < b == c",
			binary("==", binary("<", id("a"), id("b")), id("c")),
		},
		{
			"logical precedence",
			"a or b and c",
			binary("||", id("a"), binary("&&", id("b"), id("c"))),
		},
		{
			"symbol aliases",
			"a & b | c",
			binary("||", binary("&&", id("a"), id("b")), id("c")),
		},
		{
			"word comparisons",
			"a eq b ne c",
			binary("!=", binary("==", id("a"), id("b")), id("c")),
		},
		{
			"less greater",
			"a lt 1 and b ge 2",
			binary("&&", binary("<", id("a"), 1.0), binary(">=", id("b"), 2.0)),
		},
		{"unary minus", "-a", unary("-", id("a"))},
		{"unary plus", "+a", unary("+", id("a"))},
		{"not", "not a", unary("!", id("a"))},
		{"double negation", "- -a", unary("-", unary("-", id("a")))},
		{"unary binds tighter", "-a * b", binary("*", unary("-", id("a")), id("b"))},
		{"unary folded", "-3", -3.0},
		{"not folded", "not 0", 1.0},
		{"not folded on true", "not 5", 0.0},
		{"subtract negative", "a - -1", binary("-", id("a"), -1.0)},
		{"comparison folded", "1 < 2", 1.0},
		{"null equals null", "null == null", 1.0},
		{"null not zero", "null == 0", 0.0},
		{"string equality", `"1" == 1`, 1.0},
		{"and folded", "1 and 0", 0.0},
		{"or folded", "0 or 2", 1.0},
		{
			"builtin call",
			"Sum(1, a)",
			map[string]any{"builtin": "sum", "params": []any{1.0, id("a")}},
		},
		{
			"generic call",
			"foo(1)",
			map[string]any{"callee": id("foo"), "params": []any{1.0}},
		},
		{
			"call without params",
			"foo()",
			map[string]any{"callee": id("foo"), "params": []any{}},
		},
		{
			"null builtin",
			"Null()",
			map[string]any{"builtin": "null", "params": []any{}},
		},
		{
			"null builtin in arithmetic",
			"null() + 1",
			binary("+", map[string]any{"builtin": "null", "params": []any{}}, 1.0),
		},
		{
			"method call",
			"a.b(1)",
			map[string]any{"callee": binary(".", id("a"), id("b")), "params": []any{1.0}},
		},
		{
			"call in arithmetic",
			"abs(a) + 1",
			binary("+", map[string]any{"builtin": "abs", "params": []any{id("a")}}, 1.0),
		},
		{
			"subscript",
			"a[1]",
			map[string]any{"operand": id("a"), "index": 1.0},
		},
		{
			"every occurrence index",
			"a[*]",
			map[string]any{"operand": id("a"), "index": map[string]any{"special": "*"}},
		},
		{
			"positive zero index",
			"a[+0]",
			map[string]any{"operand": id("a"), "index": 0.0},
		},
		{
			"subscript on path segment",
			"a.b[2]",
			binary(".", id("a"), map[string]any{"operand": id("b"), "index": 2.0}),
		},
		{
			"every occurrence segment",
			"a.*",
			binary(".", id("a"), map[string]any{"special": "*"}),
		},
		{
			"som binds tighter than arithmetic",
			"a.b + 1",
			binary("+", binary(".", id("a"), id("b")), 1.0),
		},
		{
			"unary over path",
			"-a.b",
			unary("-", binary(".", id("a"), id("b"))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dump(parseSingle(t, tt.input))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Dump(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestSomChainIsRightNested(t *testing.T) {
	l := parseSingle(t, "a.b.c.#d..e.f..g.*")

	want := binary(".", id("a"),
		binary(".", id("b"),
			binary(".#", id("c"),
				binary("..", id("d"),
					binary(".", id("e"),
						binary("..", id("f"),
							binary(".", id("g"), map[string]any{"special": "*"})))))))

	if diff := cmp.Diff(want, Dump(l)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, IsDotExpression(l))
}

func TestNegativeZeroIndex(t *testing.T) {
	l := parseSingle(t, "a[-0]")
	sub, ok := l.(*Subscript)
	require.True(t, ok)
	num, ok := sub.Index.(*Number)
	require.True(t, ok)
	assert.Equal(t, 0.0, num.Value)
	assert.True(t, math.Signbit(num.Value))
}

func TestNonFiniteLiterals(t *testing.T) {
	l := parseSingle(t, "-infinity")
	assert.True(t, math.IsInf(l.(*Number).Value, -1))

	l = parseSingle(t, "nan + 1")
	assert.True(t, math.IsNaN(l.(*Number).Value))

	l = parseSingle(t, "1 / 0")
	assert.True(t, math.IsInf(l.(*Number).Value, 1))
}

func TestCallNamesAreLowercased(t *testing.T) {
	l := parseSingle(t, "MyFunc(1)")
	call, ok := l.(*Call)
	require.True(t, ok)
	assert.Equal(t, "myfunc", call.Callee.(*Identifier).Name)

	l = parseSingle(t, "UPPER(\"x\")")
	builtin, ok := l.(*BuiltinCall)
	require.True(t, ok)
	assert.Equal(t, "upper", builtin.Name)
}

func TestNullBuiltinCall(t *testing.T) {
	list, err := Parse("x = Null()")
	require.NoError(t, err)
	require.Len(t, list.Exprs, 1)

	want := map[string]any{
		"assignment": "x",
		"expr":       map[string]any{"builtin": "null", "params": []any{}},
	}
	if diff := cmp.Diff(want, Dump(list.Exprs[0])); diff != "" {
		t.Errorf("Dump mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, IsBuiltin("null"))

	// A parenthesized null is a value, not a callee
	_, err = Parse("x = (null)()")
	require.Error(t, err)
}

func TestExpressionErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  ErrorKind
	}{
		{"dangling operator", "1 +", ErrorKindExpression},
		{"unclosed paren", "(1 + 2", ErrorKindExpression},
		{"empty parens", "()", ErrorKindExpression},
		{"bad parameter list", "foo(1 2)", ErrorKindParams},
		{"unclosed call", "foo(1", ErrorKindParams},
		{"empty middle argument", "foo(1, , 2)", ErrorKindParams},
		{"empty leading argument", "foo(, 1)", ErrorKindParams},
		{"trailing comma", "foo(1,)", ErrorKindParams},
		{"only a comma", "foo(,)", ErrorKindParams},
		{"empty index", "a[]", ErrorKindIndex},
		{"bad star index", "a[* 1]", ErrorKindIndex},
		{"unclosed index", "a[1", ErrorKindIndex},
		{"lexical", "a + #", ErrorKindLexical},
		{"unexpected close", "1 )", ErrorKindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			kind, ok := ErrorKindOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, kind, err.Error())
		})
	}
}
