package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	// Source Tools
	FormCalcParseDescription = `Parse a FormCalc script and return its syntax tree together with a static report.

**When to use:** Need to understand what an XFA calculate, validate or event script does without running it.

**What you get:** The AST as a JSON tree (numbers, strings, {id}, {operator, left, right}, {builtin, params}, declarations) and a report listing declared variables, user functions, builtin calls, unresolved calls with spelling suggestions and SOM references.

**Examples:**
• Review a calculation: "Parse 'Sum(Items.price[*]) * (1 + TaxRate)' and list the fields it reads"
• Spot typos: "Parse this validate script and flag calls that are neither builtins nor declared functions"
• Inspect precedence: "Show how 'a + b * c <> d and e' groups"

**Common workflows:**
1. Script Review: formcalc_parse → read report.som_references → cross-check with the form template
2. Migration: formcalc_parse → walk the AST → rewrite in another scripting language
3. Debugging: formcalc_validate fails → formcalc_parse a smaller fragment → locate the construct

**Best practices:** Use format=yaml for a compact human readable tree. Constant sub-expressions are folded, so '1 + 2' dumps as 3.`

	FormCalcValidateDescription = `Check that a FormCalc script is syntactically valid.

**When to use:** Before saving or deploying an edited XFA script, or to triage a batch of scripts quickly.

**What you get:** Either a confirmation with the statement count, or the error kind (var, if, for, func, params, index, expression, lexical, ...), the byte offset and the token near the failure.

**Examples:**
• Pre-commit check: "Validate the calculate script of the total field before updating the template"
• Triage: "Which of these five validate scripts fail to parse?"

**Best practices:** Parsing stops at the first error. Fix it and validate again to find the next one.`

	FormCalcBuiltinsDescription = `List the FormCalc builtin functions grouped by category.

**When to use:** Need to know whether a name is a builtin (Sum, Date2Num, Concat, ...) or to look up the functions available in a category.

**What you get:** Categories arithmetic, date, financial, logical, string, url, miscellaneous and undocumented with their lowercase function names. Pass name to look up a single function.

**Best practices:** Builtin names are case-insensitive in FormCalc. The parser lowercases them in the tree.`

	// PDF Tools
	PDFFormCalcScriptsDescription = `Extract and parse every FormCalc script embedded in an XFA PDF form.

**When to use:** Auditing or migrating a dynamic XFA form, or answering "what does this form compute?".

**What you get:** For each script its SOM context (form1.page1.total), the event it runs on (calculate, validate, click, ...), its source line in the XFA packet, and either the parsed AST with a report or the parse error. JavaScript scripts are counted and skipped.

**Examples:**
• Form audit: "List all calculations in invoice-form.pdf and the fields they depend on"
• Migration planning: "Which scripts in tax-form.pdf fail to parse or call unknown functions?"

**Common workflows:**
1. Form Audit: pdf_formcalc_scripts → group by som_path → document dependencies
2. Quality Check: pdf_formcalc_scripts → filter failed scripts → formcalc_validate after fixing

**Best practices:** Paths are resolved inside the configured directory. Use include_ast=false on large forms to get reports only.`

	// Information Tools
	FormCalcServerInfoDescription = `Get server information, configured limits and the available tools.

**When to use:** First call in a session, or to check which directory PDF paths resolve against.

**What you get:** Server name and version, the PDF directory, file and script size limits, the XFA packet reader in use, supported output formats and a description of every tool.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"formcalc_parse":       FormCalcParseDescription,
	"formcalc_validate":    FormCalcValidateDescription,
	"formcalc_builtins":    FormCalcBuiltinsDescription,
	"pdf_formcalc_scripts": PDFFormCalcScriptsDescription,
	"formcalc_server_info": FormCalcServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the sorted names of all tools
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary returns the first line of a tool description
func Summary(toolName string) string {
	desc := GetToolDescription(toolName)
	for i, r := range desc {
		if r == '\n' {
			return desc[:i]
		}
	}
	return desc
}
