package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-formcalc/internal/formcalc"
)

const invoiceScript = `
func Total(a, b) do a + b endfunc
var t = total(1, 2)
$.rawValue = Sum(Items.price[*]) + summ(1) + Total(1, 2)
if (Items.qty > 0) then t = t + 1 endif
`

func TestAnalyze(t *testing.T) {
	list, err := formcalc.Parse(invoiceScript)
	require.NoError(t, err)

	r := Analyze(list)
	assert.Equal(t, 4, r.Statements)
	assert.Equal(t, []string{"Total"}, r.Functions)
	assert.Equal(t, []string{"a", "b", "t"}, r.Variables)
	assert.Equal(t, map[string]int{"sum": 1}, r.Builtins)
	assert.Equal(t, []UnresolvedCall{{Name: "summ", Suggestion: "sum"}}, r.UnresolvedCalls)
	assert.Equal(t, []string{"$.rawValue", "Items.price[*]"}, r.SomReferences)
	assert.Equal(t, 1, r.SomPredicates)
	assert.Greater(t, r.Nodes, r.Statements)
	assert.Greater(t, r.MaxDepth, 2)
}

func TestAnalyzeLoops(t *testing.T) {
	list, err := formcalc.Parse(`
for i = 1 upto 3 do
  foreach v in (a, b) do
    s = s + v * i
  endfor
endfor
for var j = 3 downto 1 do undefinedThing(j) endfor`)
	require.NoError(t, err)

	r := Analyze(list)
	assert.Equal(t, []string{"i", "v", "j"}, r.Variables)
	require.Len(t, r.UnresolvedCalls, 1)
	assert.Equal(t, "undefinedthing", r.UnresolvedCalls[0].Name)
	assert.Empty(t, r.UnresolvedCalls[0].Suggestion)
}

func TestAnalyzeReportsEachUnresolvedCallOnce(t *testing.T) {
	list, err := formcalc.Parse("foo(1) foo(2) bar(foo(3))")
	require.NoError(t, err)

	r := Analyze(list)
	names := make([]string, 0, len(r.UnresolvedCalls))
	for _, c := range r.UnresolvedCalls {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"foo", "bar"}, names)
}

func TestAnalyzeNil(t *testing.T) {
	r := Analyze(nil)
	assert.Zero(t, r.Statements)
	assert.NotNil(t, r.Builtins)
	assert.NotNil(t, r.SomReferences)
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		candidates []string
		want       string
	}{
		{"subsequence", "sm", []string{"substr", "sum"}, "sum"},
		{"case folded", "CONCT", []string{"concat", "count"}, "concat"},
		{"typo by edit distance", "summ", []string{"sum", "max"}, "sum"},
		{"too far", "xyzzy", formcalc.Builtins(), ""},
		{"no candidates", "sum", nil, ""},
		{"empty name", "", []string{"sum"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(tt.input, tt.candidates))
		})
	}
}
