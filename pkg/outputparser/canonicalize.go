package outputparser

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	camelBoundaryPattern = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	nonAlnumPattern      = regexp.MustCompile(`[^a-z0-9_]+`)
	underscoreRunPattern = regexp.MustCompile(`_+`)
)

// canonicalizeName lowercases a declared- or emitted-tool name into
// snake_case: camelCase boundaries split, spaces/hyphens/dots/slashes
// become underscores, remaining non-alphanumerics are stripped, runs of
// underscores collapse, and edges are trimmed. It is idempotent:
// canonicalizeName(canonicalizeName(x)) == canonicalizeName(x).
func canonicalizeName(s string) string {
	s = camelBoundaryPattern.ReplaceAllString(s, "${1}_${2}")
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '/':
			return '_'
		}
		return r
	}, s)
	s = nonAlnumPattern.ReplaceAllString(s, "")
	s = underscoreRunPattern.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// postProcessAgainstTools implements spec.md §4.3's "post-processing
// against declared tools": when tools is empty, every tool call is
// dropped; otherwise calls are filtered to declared names, renamed to the
// canonical declared name, and their argument keys canonicalized against
// the declared parameter property names. If every call drops and
// finishReason was tool_calls, it downgrades to stop.
func postProcessAgainstTools(calls []ToolCall, finishReason string, tools []ToolDef) ([]ToolCall, string) {
	if len(tools) == 0 {
		if finishReason == "tool_calls" {
			finishReason = "stop"
		}
		return nil, finishReason
	}

	canonicalNames := make(map[string]string, len(tools))
	paramsByCanonical := make(map[string]map[string]string, len(tools))
	for _, t := range tools {
		norm := canonicalizeName(t.Name)
		if _, exists := canonicalNames[norm]; !exists {
			canonicalNames[norm] = t.Name
		}
		paramsByCanonical[canonicalNames[norm]] = canonicalizeParamKeys(t.Parameters)
	}

	var kept []ToolCall
	for _, c := range calls {
		canon, ok := canonicalNames[canonicalizeName(c.Name)]
		if !ok {
			continue
		}
		kept = append(kept, ToolCall{
			ID:        c.ID,
			Name:      canon,
			Arguments: rewriteArgumentKeys(c.Arguments, paramsByCanonical[canon]),
		})
	}

	if len(kept) == 0 && finishReason == "tool_calls" {
		finishReason = "stop"
	}
	return kept, finishReason
}

// canonicalizeParamKeys maps a JSON-schema-shaped Parameters value's
// property names to a normalized-name -> declared-name lookup.
func canonicalizeParamKeys(parameters any) map[string]string {
	obj, ok := parameters.(map[string]any)
	if !ok {
		return nil
	}
	props, ok := obj["properties"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(props))
	for name := range props {
		out[canonicalizeName(name)] = name
	}
	return out
}

// rewriteArgumentKeys canonicalizes argsJSON's top-level object keys
// against declared parameter property names. Non-object argument payloads
// (arrays, scalars, unparsable strings) pass through unchanged.
func rewriteArgumentKeys(argsJSON string, keyMap map[string]string) string {
	if len(keyMap) == 0 {
		return argsJSON
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &obj); err != nil {
		return argsJSON
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if canon, ok := keyMap[canonicalizeName(k)]; ok {
			out[canon] = v
		} else {
			out[k] = v
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return argsJSON
	}
	return string(b)
}
