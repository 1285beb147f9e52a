package xfa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXDP = `<?xml version="1.0" encoding="UTF-8"?>
<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/">
<template xmlns="http://www.xfa.org/schema/xfa-template/3.3/">
  <subform name="form1" layout="tb">
    <variables>
      <script name="util" contentType="application/x-formcalc">func Twice(x) do x * 2 endfunc</script>
    </variables>
    <subform name="page1">
      <field name="qty"/>
      <field name="price"/>
      <field name="total">
        <calculate>
          <script contentType="application/x-formcalc">qty * price</script>
        </calculate>
        <validate>
          <script>$ &gt;= 0</script>
        </validate>
      </field>
      <field name="notes">
        <event activity="exit" ref="$">
          <script contentType="application/x-javascript">this.rawValue = "";</script>
        </event>
        <event activity="click" ref="$">
          <script contentType="application/x-formcalc"><![CDATA[if (qty < 1) then $.rawValue = "none" endif]]></script>
        </event>
      </field>
      <field name="broken">
        <calculate>
          <script>var 1 = 2</script>
        </calculate>
      </field>
    </subform>
  </subform>
</template>
<xfa:datasets xmlns:xfa="http://www.xfa.org/schema/xfa-data/1.0/">
  <xfa:data><form1><qty>2</qty></form1></xfa:data>
</xfa:datasets>
</xdp:xdp>`

func TestExtractScripts(t *testing.T) {
	extraction, err := ExtractScripts([]byte(sampleXDP))
	require.NoError(t, err)
	require.Len(t, extraction.Scripts, 5)
	assert.Equal(t, 1, extraction.Skipped)

	tests := []struct {
		somPath string
		event   string
		ref     string
		name    string
		source  string
	}{
		{"form1", "variables", "", "util", "func Twice(x) do x * 2 endfunc"},
		{"form1.page1.total", "calculate", "", "", "qty * price"},
		{"form1.page1.total", "validate", "", "", "$ >= 0"},
		{"form1.page1.notes", "click", "$", "", `if (qty < 1) then $.rawValue = "none" endif`},
		{"form1.page1.broken", "calculate", "", "", "var 1 = 2"},
	}

	for i, tt := range tests {
		script := extraction.Scripts[i]
		assert.Equal(t, i, script.Index)
		assert.Equal(t, tt.somPath, script.SomPath, "script %d", i)
		assert.Equal(t, tt.event, script.Event, "script %d", i)
		assert.Equal(t, tt.ref, script.Ref, "script %d", i)
		assert.Equal(t, tt.name, script.Name, "script %d", i)
		assert.Equal(t, tt.source, script.Source, "script %d", i)
		assert.Greater(t, script.Line, 1, "script %d", i)
	}
}

func TestExtractScriptsWithoutScripts(t *testing.T) {
	extraction, err := ExtractScripts([]byte(`<xdp><template><subform name="a"/></template></xdp>`))
	require.NoError(t, err)
	assert.Empty(t, extraction.Scripts)
	assert.Zero(t, extraction.Skipped)
}

func TestExtractScriptsMalformed(t *testing.T) {
	_, err := ExtractScripts([]byte(`<xdp><template><script>a = 1</scr`))
	assert.Error(t, err)
}

func TestIsFormCalc(t *testing.T) {
	assert.True(t, isFormCalc(""))
	assert.True(t, isFormCalc("application/x-formcalc"))
	assert.True(t, isFormCalc(" Application/X-FormCalc "))
	assert.False(t, isFormCalc("application/x-javascript"))
}
