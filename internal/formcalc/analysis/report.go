package analysis

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/a3tai/mcp-formcalc/internal/formcalc"
)

// maxSuggestionDistance bounds the edit distance of a typo suggestion
const maxSuggestionDistance = 2

// UnresolvedCall is a call to a name that is neither a builtin nor declared
// in the script
type UnresolvedCall struct {
	Name       string `json:"name" yaml:"name" cbor:"name"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty" cbor:"suggestion,omitempty"`
}

// Report summarizes a parsed script
type Report struct {
	Statements      int              `json:"statements" yaml:"statements" cbor:"statements"`
	Nodes           int              `json:"nodes" yaml:"nodes" cbor:"nodes"`
	MaxDepth        int              `json:"max_depth" yaml:"max_depth" cbor:"max_depth"`
	Variables       []string         `json:"variables" yaml:"variables" cbor:"variables"`
	Functions       []string         `json:"functions" yaml:"functions" cbor:"functions"`
	Builtins        map[string]int   `json:"builtins" yaml:"builtins" cbor:"builtins"`
	UnresolvedCalls []UnresolvedCall `json:"unresolved_calls" yaml:"unresolved_calls" cbor:"unresolved_calls"`
	SomReferences   []string         `json:"som_references" yaml:"som_references" cbor:"som_references"`
	SomPredicates   int              `json:"som_predicates" yaml:"som_predicates" cbor:"som_predicates"`
}

// Analyze builds a report for a parsed script
func Analyze(list *formcalc.ExprList) *Report {
	r := &Report{
		Variables:       []string{},
		Functions:       []string{},
		Builtins:        map[string]int{},
		UnresolvedCalls: []UnresolvedCall{},
		SomReferences:   []string{},
	}
	if list == nil {
		return r
	}
	r.Statements = len(list.Exprs)

	a := &analyzer{
		report:   r,
		declared: map[string]bool{},
		seen:     map[string]bool{},
	}
	a.collectDeclarations(list)
	Walk(list, a.visit)
	a.resolveCalls()
	return r
}

type analyzer struct {
	report   *Report
	declared map[string]bool // lowercase names of declared functions
	seen     map[string]bool // SOM references already reported
	calls    []string
}

// collectDeclarations records names first so calls that precede the
// function declaration still resolve
func (a *analyzer) collectDeclarations(list *formcalc.ExprList) {
	vars := map[string]bool{}
	addVar := func(name string) {
		if !vars[name] {
			vars[name] = true
			a.report.Variables = append(a.report.Variables, name)
		}
	}

	Walk(list, func(node formcalc.Leaf, _ int) bool {
		switch n := node.(type) {
		case *formcalc.VarDecl:
			addVar(n.Name)
		case *formcalc.ForeachDecl:
			addVar(n.Name)
		case *formcalc.FuncDecl:
			key := strings.ToLower(n.Name)
			if !a.declared[key] {
				a.declared[key] = true
				a.report.Functions = append(a.report.Functions, n.Name)
			}
			for _, p := range n.Params {
				addVar(p)
			}
		case *formcalc.ForDecl:
			if assignment, ok := n.Assignment.(*formcalc.Assignment); ok {
				addVar(assignment.TargetName())
			}
		}
		return true
	})
}

func (a *analyzer) visit(node formcalc.Leaf, depth int) bool {
	a.report.Nodes++
	if depth > a.report.MaxDepth {
		a.report.MaxDepth = depth
	}

	switch n := node.(type) {
	case *formcalc.BuiltinCall:
		a.report.Builtins[n.Name]++
	case *formcalc.Call:
		if id, ok := n.Callee.(*formcalc.Identifier); ok && !a.declared[id.Name] {
			a.calls = append(a.calls, id.Name)
		}
	case *formcalc.BinaryOperator:
		if formcalc.IsSomPredicate(n) {
			a.report.SomPredicates++
			return a.descend(n, depth)
		}
		if n.Op.IsSom() {
			a.addReference(n)
			return a.descend(n, depth)
		}
	case *formcalc.UnaryOperator:
		if formcalc.IsSomPredicate(n) {
			a.report.SomPredicates++
			return a.descend(n, depth)
		}
	case *formcalc.Subscript:
		a.addReference(n)
		return a.descend(n, depth)
	case *formcalc.Assignment:
		if n.TargetName() == "" {
			a.addReference(n.Target)
		}
	}
	return true
}

// descend walks the children of a node the visitor claimed, counting them
// without reporting nested path segments or predicates again
func (a *analyzer) descend(node formcalc.Leaf, depth int) bool {
	for _, c := range Children(node) {
		Walk(c, func(inner formcalc.Leaf, d int) bool {
			a.report.Nodes++
			if depth+1+d > a.report.MaxDepth {
				a.report.MaxDepth = depth + 1 + d
			}
			switch n := inner.(type) {
			case *formcalc.BuiltinCall:
				a.report.Builtins[n.Name]++
			case *formcalc.Call:
				if id, ok := n.Callee.(*formcalc.Identifier); ok && !a.declared[id.Name] {
					a.calls = append(a.calls, id.Name)
				}
			}
			return true
		})
	}
	return false
}

func (a *analyzer) addReference(l formcalc.Leaf) {
	path, ok := FormatPath(l)
	if !ok || a.seen[path] {
		return
	}
	a.seen[path] = true
	a.report.SomReferences = append(a.report.SomReferences, path)
}

// resolveCalls reports each unresolved name once, in order of first use
func (a *analyzer) resolveCalls() {
	candidates := append(formcalc.Builtins(), a.report.Functions...)
	reported := map[string]bool{}
	for _, name := range a.calls {
		if reported[name] {
			continue
		}
		reported[name] = true
		a.report.UnresolvedCalls = append(a.report.UnresolvedCalls, UnresolvedCall{
			Name:       name,
			Suggestion: Suggest(name, candidates),
		})
	}
}

// Suggest returns the candidate closest to name, or "" when nothing is
// close. Candidates that contain name as a fuzzy subsequence win; otherwise
// the nearest candidate by edit distance is used.
func Suggest(name string, candidates []string) string {
	if name == "" || len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDistance := "", maxSuggestionDistance+1
	for _, c := range candidates {
		d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(c))
		if d < bestDistance || (d == bestDistance && c < best) {
			best, bestDistance = c, d
		}
	}
	if bestDistance > maxSuggestionDistance {
		return ""
	}
	return best
}
