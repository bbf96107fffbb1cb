// Package outputparser implements the output-parsing state machine: the
// four output contracts (text, text_plain, text_contract_final_line,
// json_contract) that extract assistant text and structured tool calls
// from arbitrary child-process stdout.
//
// Provider stdout is untrusted and ranges from a single line of text to
// deeply nested, doubly-encoded JSON wrapped in fenced code blocks. Rather
// than duck-typed ad-hoc traversal, recovery of a nested tool call walks a
// bounded worklist over parsed JSON objects (see findNestedToolCall),
// capped at maxTraversalNodes visits.
package outputparser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Mode is one of the four output contracts spec.md §4.3 defines.
type Mode string

const (
	ModeText                Mode = "text"
	ModeTextPlain           Mode = "text_plain"
	ModeTextContractFinal   Mode = "text_contract_final_line"
	ModeJSONContract        Mode = "json_contract"
)

// ToolDef is the subset of a declared tool definition the parser needs to
// canonicalize and filter emitted tool calls against.
type ToolDef struct {
	Name       string
	Parameters any
}

// ToolCall is a normalized, post-processed tool call extracted from stdout.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Result is the normalized extraction: trimmed assistant text, ordered
// tool calls, and a finish reason.
type Result struct {
	OutputText   string
	ToolCalls    []ToolCall
	FinishReason string
}

// ParseError means json_contract mode could not extract an object from
// stdout (including the empty-stdout case).
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("output parse error: %s", e.Reason)
}

var lineSplitPattern = regexp.MustCompile(`\r?\n`)

// Parse extracts {outputText, toolCalls, finishReason} from stdout per
// mode, then filters/canonicalizes any extracted tool calls against tools
// (the request's declared ToolDefinition set).
func Parse(stdout string, mode Mode, tools []ToolDef) (Result, error) {
	var result Result

	switch mode {
	case ModeTextPlain:
		result = Result{OutputText: strings.TrimSpace(stdout), FinishReason: "stop"}

	case ModeTextContractFinal:
		lines := lineSplitPattern.Split(stdout, -1)
		last := lastNonEmpty(lines)
		if last != "" {
			if obj, ok := tryParseContract(last); ok {
				result = buildResult(obj)
				break
			}
		}
		result = Result{OutputText: strings.TrimSpace(stdout), FinishReason: "stop"}

	case ModeJSONContract:
		trimmed := strings.TrimSpace(stdout)
		if trimmed == "" {
			return Result{}, &ParseError{Reason: "empty stdout"}
		}
		if obj, ok := tryParseContract(trimmed); ok {
			result = buildResult(obj)
			break
		}
		lines := lineSplitPattern.Split(stdout, -1)
		found := false
		for i := len(lines) - 1; i >= 0; i-- {
			if obj, ok := tryParseContract(lines[i]); ok {
				result = buildResult(obj)
				found = true
				break
			}
		}
		if !found {
			return Result{}, &ParseError{Reason: "no valid JSON object found in stdout"}
		}

	default: // ModeText and any unrecognized mode: soft contract extraction
		if obj, ok := tryParseContract(strings.TrimSpace(stdout)); ok && contractHasContent(obj) {
			result = buildResult(obj)
		} else {
			result = Result{OutputText: strings.TrimSpace(stdout), FinishReason: "stop"}
		}
	}

	result.ToolCalls, result.FinishReason = postProcessAgainstTools(result.ToolCalls, result.FinishReason, tools)
	return result, nil
}

func lastNonEmpty(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}

// tryParseContract attempts to decode s as a JSON object.
func tryParseContract(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// contractHasContent reports whether obj carries at least one of
// output_text|text|content|tool_calls[], the threshold for `text` mode to
// prefer the parsed contract over raw stdout.
func contractHasContent(obj map[string]any) bool {
	if firstString(obj, "output_text", "text", "content") != "" {
		return true
	}
	calls, ok := obj["tool_calls"].([]any)
	return ok && len(calls) > 0
}

// buildResult converts a parsed JSON contract object into a Result.
// outputText := first-of(output_text, text, content, "").
// finishReason := finish_reason ?? (toolCalls non-empty ? tool_calls : stop).
func buildResult(obj map[string]any) Result {
	outputText := strings.TrimSpace(firstString(obj, "output_text", "text", "content"))

	var calls []ToolCall
	if raw, ok := obj["tool_calls"].([]any); ok {
		calls = normalizeToolCalls(raw)
	}

	finishReason := firstString(obj, "finish_reason")
	if finishReason == "" {
		if len(calls) > 0 {
			finishReason = "tool_calls"
		} else {
			finishReason = "stop"
		}
	}

	return Result{OutputText: outputText, ToolCalls: calls, FinishReason: finishReason}
}
