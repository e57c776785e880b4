package action

import (
	"strings"
	"sync"
)

// Variables is the named-value map scoped to one job. An action publishes a
// value under a name; later actions in the same job consume it through
// placeholder substitution in their argument lists.
type Variables struct {
	mu sync.Mutex
	m  map[string][]string
}

// NewVariables returns an empty variable map.
func NewVariables() *Variables {
	return &Variables{m: make(map[string][]string)}
}

// Set stores a possibly multi-token value. Setting no tokens clears the
// variable.
func (v *Variables) Set(name string, values ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(values) == 0 {
		delete(v.m, name)
		return
	}
	v.m[name] = append([]string(nil), values...)
}

// Get returns the stored tokens, nil when unset.
func (v *Variables) Get(name string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.m[name]...)
}

// Substitute expands placeholder arguments. An argument of the exact form
// {name} is replaced in place by the variable's tokens; an unset variable
// removes the placeholder from the list. Partial matches are left alone.
func (v *Variables) Substitute(args []string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]string, 0, len(args))
	for _, arg := range args {
		if len(arg) > 2 && strings.HasPrefix(arg, "{") && strings.HasSuffix(arg, "}") {
			name := arg[1 : len(arg)-1]
			if !strings.ContainsAny(name, "{} ") {
				out = append(out, v.m[name]...)
				continue
			}
		}
		out = append(out, arg)
	}
	return out
}
