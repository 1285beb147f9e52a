package formcalc

import (
	"sort"
	"strings"
)

// BuiltinCategory groups the predefined functions the way the FormCalc
// reference does
type BuiltinCategory string

const (
	CategoryArithmetic    BuiltinCategory = "arithmetic"
	CategoryDate          BuiltinCategory = "date"
	CategoryFinancial     BuiltinCategory = "financial"
	CategoryLogical       BuiltinCategory = "logical"
	CategoryString        BuiltinCategory = "string"
	CategoryURL           BuiltinCategory = "url"
	CategoryMiscellaneous BuiltinCategory = "miscellaneous"
	CategoryUndocumented  BuiltinCategory = "undocumented"
)

var builtinsByCategory = map[BuiltinCategory][]string{
	CategoryArithmetic: {
		"abs", "avg", "ceil", "count", "floor", "max", "min", "mod", "round", "sum",
	},
	CategoryDate: {
		"date", "date2num", "datefmt", "isodate2num", "isotime2num", "localdatefmt",
		"localtimefmt", "num2date", "num2gmtime", "num2time", "time", "time2num", "timefmt",
	},
	CategoryFinancial: {
		"apr", "cterm", "fv", "ipmt", "npv", "pmt", "ppmt", "pv", "rate", "term",
	},
	CategoryLogical: {
		"choose", "exists", "hasvalue", "oneof", "within",
	},
	CategoryString: {
		"at", "concat", "decode", "encode", "format", "left", "len", "lower", "ltrim",
		"parse", "replace", "right", "rtrim", "space", "str", "stuff", "substr", "uuid",
		"upper", "wordnum",
	},
	CategoryURL: {
		"get", "post", "put",
	},
	CategoryMiscellaneous: {
		"eval", "null", "ref", "unitvalue", "unittype",
	},
	CategoryUndocumented: {
		"acos", "asin", "atan", "cos", "deg2rad", "exp", "log", "pi", "rad2deg", "sin",
		"sqrt", "tan",
	},
}

// builtins is the read-only lookup built once from builtinsByCategory
var builtins = func() map[string]BuiltinCategory {
	m := make(map[string]BuiltinCategory)
	for category, names := range builtinsByCategory {
		for _, name := range names {
			m[name] = category
		}
	}
	return m
}()

// IsBuiltin reports whether name, in any case, is a predefined function
func IsBuiltin(name string) bool {
	_, ok := builtins[strings.ToLower(name)]
	return ok
}

// BuiltinCategoryOf returns the category of a predefined function
func BuiltinCategoryOf(name string) (BuiltinCategory, bool) {
	category, ok := builtins[strings.ToLower(name)]
	return category, ok
}

// Builtins returns all predefined function names, sorted
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuiltinsByCategory returns a copy of the predefined functions per category
func BuiltinsByCategory() map[BuiltinCategory][]string {
	out := make(map[BuiltinCategory][]string, len(builtinsByCategory))
	for category, names := range builtinsByCategory {
		out[category] = append([]string(nil), names...)
	}
	return out
}
