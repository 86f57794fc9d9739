package catalog

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

// Validate checks args against the operation's parameters and returns a
// normalized copy: strings trimmed, enum values in their declared spelling,
// flags as bools, defaults filled in. Empty strings count as absent.
func (o Operation) Validate(args map[string]any) (Arguments, error) {
	for name := range args {
		if _, ok := o.Param(name); !ok {
			return nil, &ValidationError{Operation: o.Name, Param: name, Reason: "unknown parameter"}
		}
	}

	out := Arguments{}
	for _, p := range o.Params {
		raw, present := args[p.Name]
		if present && raw != nil {
			val, err := p.coerce(raw)
			if err != nil {
				return nil, &ValidationError{Operation: o.Name, Param: p.Name, Reason: err.Error()}
			}
			if val != nil {
				out[p.Name] = val
				continue
			}
		}
		if p.Required {
			return nil, &ValidationError{Operation: o.Name, Param: p.Name, Reason: "required parameter is missing"}
		}
		if p.Default != nil {
			out[p.Name] = p.Default
		}
	}
	return out, nil
}

// coerce returns nil, nil for values that count as absent.
func (p ParamDef) coerce(raw any) (any, error) {
	switch p.Type {
	case ParamTypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string, got %T", raw)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		if p.Pattern != "" {
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", p.Pattern, err)
			}
			if !re.MatchString(s) {
				return nil, fmt.Errorf("value %q does not match pattern %s", s, p.Pattern)
			}
		}
		if p.Format == FormatDNSLabel {
			if errs := validation.IsDNS1123Label(s); len(errs) > 0 {
				return nil, fmt.Errorf("value %q is not a valid name: %s", s, strings.Join(errs, "; "))
			}
		}
		return s, nil

	case ParamTypeEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string, got %T", raw)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		for _, allowed := range p.Enum {
			if strings.EqualFold(allowed, s) {
				return allowed, nil
			}
		}
		return nil, fmt.Errorf("value %q is not one of %s", s, strings.Join(p.Enum, ", "))

	case ParamTypeFlag:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "yes", "1":
				return true, nil
			case "false", "no", "0":
				return false, nil
			case "":
				return nil, nil
			}
			return nil, fmt.Errorf("value %q is not a boolean", v)
		default:
			return nil, fmt.Errorf("must be a boolean, got %T", raw)
		}

	case ParamTypeInteger:
		var n int
		switch v := raw.(type) {
		case int:
			n = v
		case int64:
			if v > math.MaxInt32 || v < math.MinInt32 {
				return nil, fmt.Errorf("value %d is out of range", v)
			}
			n = int(v)
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("value %v is not a whole number", v)
			}
			if v > math.MaxInt32 || v < math.MinInt32 {
				return nil, fmt.Errorf("value %v is out of range", v)
			}
			n = int(v)
		case string:
			v = strings.TrimSpace(v)
			if v == "" {
				return nil, nil
			}
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("value %q is not a whole number", v)
			}
			n = parsed
		default:
			return nil, fmt.Errorf("must be an integer, got %T", raw)
		}
		if n > math.MaxInt32 {
			return nil, fmt.Errorf("value %d is out of range", n)
		}
		if n < 0 {
			return nil, fmt.Errorf("value %d must not be negative", n)
		}
		return n, nil
	}
	return nil, fmt.Errorf("unsupported parameter type %q", p.Type)
}
