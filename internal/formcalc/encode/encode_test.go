package encode

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-formcalc/internal/formcalc"
)

func dump(t *testing.T, src string) any {
	t.Helper()
	list, err := formcalc.Parse(src)
	require.NoError(t, err)
	return formcalc.Dump(list)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{" cbor ", FormatCBOR, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, FormatCBOR.IsBinary())
	assert.False(t, FormatYAML.IsBinary())
	assert.Len(t, Formats(), 3)
}

func TestJSON(t *testing.T) {
	data, err := JSON(dump(t, `a = b + 1 c = "<tag>"`))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"<tag>"`)

	var decoded any
	require.NoError(t, json.Unmarshal(data, &decoded))
	want := []any{
		map[string]any{
			"assignment": "a",
			"expr":       map[string]any{"operator": "+", "left": map[string]any{"id": "b"}, "right": 1.0},
		},
		map[string]any{"assignment": "c", "expr": "<tag>"},
	}
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONNonFinite(t *testing.T) {
	data, err := JSON(dump(t, "a = nan b = infinity c = -infinity"))
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `"NaN"`)
	assert.Contains(t, text, `"Infinity"`)
	assert.Contains(t, text, `"-Infinity"`)
}

func TestJSONSignedZero(t *testing.T) {
	data, err := JSON(dump(t, "a[-0]"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"index": -0`)
}

func TestYAML(t *testing.T) {
	data, err := YAML(dump(t, "if (a) then b = nan endif"))
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "decl: if")
	assert.Contains(t, text, "id: a")
	assert.Contains(t, text, ".nan")
}

func TestCBORIsCanonical(t *testing.T) {
	tree := dump(t, "for i = 1 upto 10 step 2 do s = s + a.b[i] endfor")

	first, err := CBOR(tree)
	require.NoError(t, err)
	second, err := CBOR(dump(t, "for i = 1 upto 10 step 2 do s = s + a.b[i] endfor"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	decoded, err := DecodeCBOR(first)
	require.NoError(t, err)
	if diff := cmp.Diff(tree, decoded); diff != "" {
		t.Errorf("CBOR round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCBORKeepsSpecialFloats(t *testing.T) {
	data, err := CBOR(dump(t, "a[-0] b = infinity c = null"))
	require.NoError(t, err)

	decoded, err := DecodeCBOR(data)
	require.NoError(t, err)
	list, ok := decoded.([]any)
	require.True(t, ok)
	require.Len(t, list, 3)

	index := list[0].(map[string]any)["index"].(float64)
	assert.True(t, math.Signbit(index))

	inf := list[1].(map[string]any)["expr"].(float64)
	assert.True(t, math.IsInf(inf, 1))

	null := list[2].(map[string]any)["expr"].(map[string]any)
	assert.Contains(t, null, "special")
	assert.Nil(t, null["special"])
}

func TestMarshal(t *testing.T) {
	tree := dump(t, "1")
	for _, format := range Formats() {
		data, err := Marshal(tree, format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, data, format)
	}
	_, err := Marshal(tree, Format("toml"))
	assert.Error(t, err)
}
