package pipeline

import (
	"os"
	"sort"
	"strings"
)

// Env is the set of variables exported by the pipeline on top of the parent
// process environment. It is threaded explicitly from step to step.
type Env map[string]string

// FromEnviron parses KEY=VALUE entries. Later duplicates win.
func FromEnviron(environ []string) Env {
	env := make(Env, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

// Clone returns an independent copy.
func (e Env) Clone() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Keys returns the variable names in sorted order.
func (e Env) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a copy of e with delta applied. e is not modified.
func (e Env) Merge(delta Env) Env {
	out := e.Clone()
	for k, v := range delta {
		out[k] = v
	}
	return out
}

// Export expands the values of vars against e and then base, and returns a
// copy of e with the results set. Every value is expanded against the state
// before the call, so sibling variables do not see each other.
// Empty and repeated entries are removed from PATH-like lists.
func (e Env) Export(vars Env, base Env) Env {
	lookup := func(name string) string {
		if v, ok := e[name]; ok {
			return v
		}
		return base[name]
	}

	out := e.Clone()
	for _, k := range vars.Keys() {
		v := os.Expand(vars[k], lookup)
		if isPathList(k) {
			v = cleanPathList(v)
		}
		out[k] = v
	}
	return out
}

// Environ overlays e on base and returns KEY=VALUE entries. Base order is
// kept; variables not in base are appended in sorted order.
func (e Env) Environ(base []string) []string {
	out := make([]string, 0, len(base)+len(e))
	seen := make(map[string]bool, len(e))
	for _, kv := range base {
		k, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if v, override := e[k]; override {
			if seen[k] {
				continue
			}
			out = append(out, k+"="+v)
			seen[k] = true
			continue
		}
		out = append(out, kv)
	}
	for _, k := range e.Keys() {
		if !seen[k] {
			out = append(out, k+"="+e[k])
		}
	}
	return out
}

// Delta returns the variables of after that are new or changed relative to
// before. Removed variables are not reported.
func Delta(before, after Env) Env {
	out := Env{}
	for k, v := range after {
		if old, ok := before[k]; !ok || old != v {
			out[k] = v
		}
	}
	return out
}

func isPathList(key string) bool {
	return key == "PATH" || strings.HasSuffix(key, "_PATH")
}

func cleanPathList(v string) string {
	parts := strings.Split(v, ":")
	kept := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		kept = append(kept, p)
	}
	return strings.Join(kept, ":")
}
