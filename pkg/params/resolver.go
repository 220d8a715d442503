// Package params implements the layered parameter-resolution policy shared by
// every domain module.
//
// A parameter value is taken from the first layer that holds it, in fixed
// order: the call-site parameters, the action-scoped section of the module's
// persisted config, the global section of that config, and finally the code
// default supplied by the caller. Resolution is total: every variant returns
// some value.
package params

import (
	"fmt"
	"strings"
)

// source is one layer of the precedence chain. lookup returns the raw value
// and whether the layer holds the key at all.
type source interface {
	lookup(key string) (any, bool)
}

// callSite is the highest-precedence layer: parameters given explicitly on
// the invocation.
type callSite map[string]string

func (s callSite) lookup(key string) (any, bool) {
	v, ok := s[key]
	return v, ok
}

// actionScoped reads the [default.<action>] section of the module config.
type actionScoped struct {
	defaults map[string]any
	action   string
}

func (s actionScoped) lookup(key string) (any, bool) {
	section, ok := s.defaults[s.action].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := section[key]
	return v, ok
}

// globalScoped reads the top-level scalars of [default]. Nested tables at
// this level are per-action sections and are skipped.
type globalScoped struct {
	defaults map[string]any
}

func (s globalScoped) lookup(key string) (any, bool) {
	v, ok := s.defaults[key]
	if !ok {
		return nil, false
	}
	if _, nested := v.(map[string]any); nested {
		return nil, false
	}
	return v, ok
}

// Resolver resolves parameters for one module. The module's persisted config
// is loaded once at construction and read-only afterwards.
type Resolver struct {
	module   string
	defaults map[string]any
}

// NewResolver builds a resolver for the named module, loading its persisted
// configuration. A missing config file is normal; a broken one degrades to
// code defaults with a logged warning.
func NewResolver(module string) *Resolver {
	return &Resolver{
		module:   module,
		defaults: loadModuleDefaults(module),
	}
}

func (r *Resolver) chain(action string, params map[string]string) []source {
	return []source{
		callSite(params),
		actionScoped{defaults: r.defaults, action: action},
		globalScoped{defaults: r.defaults},
	}
}

// scalarString renders a scalar config value as a string. Tables and arrays
// are not scalars and report false.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool, int, int64, float64:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}

// Resolve returns the value for key, falling back layer by layer and finally
// to the supplied code default.
func (r *Resolver) Resolve(key, action string, params map[string]string, fallback string) string {
	for _, layer := range r.chain(action, params) {
		if raw, ok := layer.lookup(key); ok {
			if s, scalar := scalarString(raw); scalar {
				return s
			}
		}
	}
	return fallback
}

// coerceBool maps a string onto a boolean. Unrecognized values coerce to the
// supplied default rather than guessing.
func coerceBool(v string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1", "on":
		return true
	case "false", "no", "0", "off":
		return false
	default:
		return fallback
	}
}

// ResolveBool resolves a boolean parameter. A call-site parameter that is
// present with an empty value is an explicit true — the flag-only form
// ("force:") — which is why presence and emptiness are checked separately
// instead of treating "" as absent.
func (r *Resolver) ResolveBool(key, action string, params map[string]string, fallback bool) bool {
	if v, ok := params[key]; ok {
		if v == "" {
			return true
		}
		return coerceBool(v, fallback)
	}
	for _, layer := range r.chain(action, nil)[1:] {
		if raw, ok := layer.lookup(key); ok {
			switch t := raw.(type) {
			case bool:
				return t
			default:
				if s, scalar := scalarString(raw); scalar {
					return coerceBool(s, fallback)
				}
			}
		}
	}
	return fallback
}

// splitList splits a separated string value, trimming items and discarding
// empty ones.
func splitList(v, sep string) []string {
	var out []string
	for _, item := range strings.Split(v, sep) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ResolveList resolves a list-valued parameter. String values are split on
// sep (comma when empty); native config arrays pass through with each element
// stringified and trimmed.
func (r *Resolver) ResolveList(key, action string, params map[string]string, sep string, fallback []string) []string {
	if sep == "" {
		sep = ","
	}
	for _, layer := range r.chain(action, params) {
		raw, ok := layer.lookup(key)
		if !ok {
			continue
		}
		switch t := raw.(type) {
		case []any:
			var out []string
			for _, item := range t {
				if s, scalar := scalarString(item); scalar {
					if s = strings.TrimSpace(s); s != "" {
						out = append(out, s)
					}
				}
			}
			return out
		default:
			if s, scalar := scalarString(raw); scalar {
				return splitList(s, sep)
			}
		}
	}
	return fallback
}
