package catalog

// Operation defines a read-only cluster query that can be routed to, bound as
// an LLM tool, or converted to MCP and toolset forms.
type Operation struct {
	Name        string
	Description string
	Title       string
	Params      []ParamDef
	ReadOnly    bool
	Destructive bool
	Idempotent  bool
	OpenWorld   bool
}

// Param looks up a parameter by name.
func (o Operation) Param(name string) (ParamDef, bool) {
	for _, p := range o.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamDef{}, false
}

// ParamDef defines an operation parameter
type ParamDef struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Pattern     string
	// Enum lists the accepted values of a ParamTypeEnum parameter.
	Enum []string
	// Format adds a semantic check on top of the type.
	Format ParamFormat
	// Default is applied when the argument is absent. Nil means no default.
	Default any
}

// ParamType represents the type of a parameter
type ParamType string

const (
	ParamTypeString ParamType = "string"
	ParamTypeEnum   ParamType = "enum"
	ParamTypeFlag   ParamType = "flag"
	// ParamTypeInteger is a non-negative whole number.
	ParamTypeInteger ParamType = "integer"
)

// ParamFormat names an additional check for string parameters.
type ParamFormat string

const (
	FormatNone ParamFormat = ""
	// FormatDNSLabel requires an RFC 1123 label, the rule for namespace names.
	FormatDNSLabel ParamFormat = "dns1123-label"
)

// Arguments maps parameter names to values. After validation string and enum
// values are strings and flags are bools.
type Arguments map[string]any

// String returns a string argument, or "" when absent.
func (a Arguments) String(name string) string {
	if v, ok := a[name].(string); ok {
		return v
	}
	return ""
}

// Flag returns a flag argument, or false when absent.
func (a Arguments) Flag(name string) bool {
	if v, ok := a[name].(bool); ok {
		return v
	}
	return false
}

// Int returns an integer argument, or def when absent.
func (a Arguments) Int(name string, def int) int {
	if v, ok := a[name].(int); ok {
		return v
	}
	return def
}

// Clone returns a shallow copy; nil stays nil.
func (a Arguments) Clone() Arguments {
	if a == nil {
		return nil
	}
	out := make(Arguments, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
