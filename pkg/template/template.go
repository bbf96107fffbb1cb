// Package template implements the {{name}} placeholder substitution used
// to resolve a CommandSpec's executable, args, env values, and cwd against
// a set of runtime variables.
package template

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {{ name }} with optional internal whitespace;
// name is restricted to [A-Za-z0-9_]+.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// shellMetacharacters are the characters Check warns about when found in a
// user-controlled variable's value.
const shellMetacharacters = "`|;&<>*?[]{}~#!$()"

// Engine substitutes {{name}} placeholders in strings. By default it never
// shell-escapes: values are passed as argv elements, never through a
// shell. ShellEscape exists only because the original source applied it to
// the "prompt" variable; spec guidance is not to use it for non-shell
// execution (see DESIGN.md Open Questions).
type Engine struct {
	// UserControlled names a set of variables subject to shell-escaping
	// when ShellEscape is enabled, and to Check's warning scan always.
	UserControlled map[string]bool
	// ShellEscape enables POSIX single-quote wrapping for UserControlled
	// variables. Off by default; see the Engine doc above.
	ShellEscape bool
}

// NewEngine returns an Engine with "prompt" marked user-controlled and
// shell-escape disabled, matching spec.md §4.1's default posture.
func NewEngine() *Engine {
	return &Engine{
		UserControlled: map[string]bool{"prompt": true},
		ShellEscape:    false,
	}
}

// Apply substitutes every {{name}} placeholder in s using vars. Unknown
// names resolve to the empty string; Apply never errors.
func (e *Engine) Apply(s string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		val := vars[name]
		if e.ShellEscape && e.UserControlled[name] {
			return shellQuote(val)
		}
		return val
	})
}

// ApplyMap substitutes placeholders in every value of m, returning a new
// map with the same keys.
func (e *Engine) ApplyMap(m map[string]string, vars map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = e.Apply(v, vars)
	}
	return out
}

// ApplySlice substitutes placeholders in every element of ss.
func (e *Engine) ApplySlice(ss []string, vars map[string]string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = e.Apply(s, vars)
	}
	return out
}

// shellQuote wraps s in POSIX single quotes, escaping embedded single
// quotes via the '"'"' idiom.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// Check scans vars for user-controlled values containing shell
// metacharacters and returns human-readable warnings for operator logging.
// It never blocks execution; it is purely advisory.
func (e *Engine) Check(vars map[string]string) []string {
	var warnings []string
	for name := range e.UserControlled {
		val, ok := vars[name]
		if !ok {
			continue
		}
		if found := firstMetacharacters(val); found != "" {
			warnings = append(warnings, "variable "+name+" contains shell metacharacters: "+found)
		}
	}
	return warnings
}

// firstMetacharacters returns the distinct shell metacharacters present in
// s, in the order they occur in shellMetacharacters.
func firstMetacharacters(s string) string {
	var found strings.Builder
	for _, c := range shellMetacharacters {
		if strings.ContainsRune(s, c) {
			found.WriteRune(c)
		}
	}
	return found.String()
}
