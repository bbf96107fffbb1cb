package outputparser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// maxTraversalNodes bounds the nested-tool-call worklist (spec.md §4.3:
// "breadth-limited traversal (≤80 visited nodes)").
const maxTraversalNodes = 80

var fencedBlockPattern = regexp.MustCompile("(?s)```(?:[A-Za-z0-9_-]*\\n)?(.*?)```")

// normalizeToolCalls walks each raw tool-call entry and extracts a
// normalized ToolCall per spec.md §4.3's field-aliasing rules, recovering
// a nested tool call when the arguments value hides an assistant reply.
func normalizeToolCalls(raw []any) []ToolCall {
	var calls []ToolCall
	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		explicitID := firstString(obj, "id", "call_id", "tool_id", "toolId")
		id := explicitID
		if id == "" {
			id = fmt.Sprintf("call_%d", i+1)
		}

		name := firstString(obj, "name", "tool_name", "toolName")
		if name == "" {
			name = functionFieldString(obj, "name")
		}

		argsRaw, hasArgs := firstPresent(obj, "arguments", "args", "parameters")
		if !hasArgs {
			argsRaw, hasArgs = functionField(obj, "arguments")
		}
		if !hasArgs {
			argsRaw, hasArgs = functionField(obj, "args")
		}

		if asStr, ok := argsRaw.(string); ok {
			if inner, outerID, found := findNestedToolCall(asStr); found {
				if innerName := firstString(inner, "name", "tool_name", "toolName"); innerName != "" {
					name = innerName
				}
				innerArgs, ok := firstPresent(inner, "arguments", "args", "parameters")
				if ok {
					argsRaw = innerArgs
				}
				if explicitID == "" && outerID != "" {
					id = outerID
				}
			}
		}

		calls = append(calls, ToolCall{
			ID:        id,
			Name:      name,
			Arguments: normalizeArguments(argsRaw),
		})
	}
	return calls
}

// normalizeArguments implements spec.md §4.3's arguments rule: a
// JSON-looking string is parsed and re-serialized (trimming whitespace
// around a top-level object's keys); any other string passes through
// verbatim; objects are stringified; absent arguments default to "{}".
func normalizeArguments(raw any) string {
	switch v := raw.(type) {
	case nil:
		return "{}"
	case string:
		trimmed := strings.TrimSpace(v)
		if looksLikeJSON(trimmed) {
			var parsed any
			if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
				if obj, ok := parsed.(map[string]any); ok {
					clean := make(map[string]any, len(obj))
					for k, val := range obj {
						clean[strings.TrimSpace(k)] = val
					}
					parsed = clean
				}
				if b, err := json.Marshal(parsed); err == nil {
					return string(b)
				}
			}
		}
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "{}"
		}
		return string(b)
	}
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func firstPresent(obj map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func functionField(obj map[string]any, key string) (any, bool) {
	fn, ok := obj["function"].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := fn[key]
	return v, ok
}

func functionFieldString(obj map[string]any, key string) string {
	v, ok := functionField(obj, key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// findNestedToolCall implements spec.md §4.3's nested recovery: a
// breadth-limited traversal over candidate JSON strings extracted from s
// (fenced code blocks, the first-{-to-last-} span, and s itself), visiting
// each parsed object's tool_calls[] first, then string-typed
// response|message.content|output_text|text|content, then all other
// string children, capped at maxTraversalNodes total visits.
func findNestedToolCall(s string) (entry map[string]any, outerID string, found bool) {
	seen := map[string]bool{}
	var queue []string
	enqueue := func(candidates ...string) {
		for _, c := range candidates {
			if c != "" && !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}
	enqueue(extractCandidateJSONStrings(s)...)

	steps := 0
	for len(queue) > 0 && steps < maxTraversalNodes {
		cur := queue[0]
		queue = queue[1:]
		steps++

		obj, ok := tryParseContract(cur)
		if !ok {
			continue
		}

		if calls, ok := obj["tool_calls"].([]any); ok && len(calls) > 0 {
			if first, ok := calls[0].(map[string]any); ok {
				return first, firstString(obj, "id", "call_id"), true
			}
		}

		if resp, ok := obj["response"].(string); ok {
			enqueue(resp)
		}
		if msg, ok := obj["message"].(map[string]any); ok {
			if content, ok := msg["content"].(string); ok {
				enqueue(content)
			}
		}
		for _, key := range []string{"output_text", "text", "content"} {
			if str, ok := obj[key].(string); ok {
				enqueue(str)
			}
		}
		for k, v := range obj {
			switch k {
			case "response", "output_text", "text", "content", "message", "tool_calls":
				continue
			}
			if str, ok := v.(string); ok {
				enqueue(str)
			}
		}
	}

	return nil, "", false
}

// extractCandidateJSONStrings returns s's plausible JSON substrings: s
// itself (if it looks like JSON), the contents of any fenced code blocks,
// and the span between the first '{' and the last '}'.
func extractCandidateJSONStrings(s string) []string {
	var out []string

	trimmed := strings.TrimSpace(s)
	if looksLikeJSON(trimmed) {
		out = append(out, trimmed)
	}

	for _, m := range fencedBlockPattern.FindAllStringSubmatch(s, -1) {
		c := strings.TrimSpace(m[1])
		if looksLikeJSON(c) {
			out = append(out, c)
		}
	}

	if i := strings.IndexByte(s, '{'); i >= 0 {
		if j := strings.LastIndexByte(s, '}'); j > i {
			c := s[i : j+1]
			if c != trimmed {
				out = append(out, c)
			}
		}
	}

	return out
}
