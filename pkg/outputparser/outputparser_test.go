package outputparser

import (
	"encoding/json"
	"testing"
)

func TestTextPlainAlwaysReturnsTrimmedStdout(t *testing.T) {
	result, err := Parse(`  {"output_text":"ignored"}  `, ModeTextPlain, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OutputText != `{"output_text":"ignored"}` || result.FinishReason != "stop" {
		t.Fatalf("got %+v", result)
	}
}

func TestTextModeFallsBackWhenNoContract(t *testing.T) {
	result, err := Parse("just plain text", ModeText, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OutputText != "just plain text" || result.FinishReason != "stop" {
		t.Fatalf("got %+v", result)
	}
}

func TestTextModeUsesContractWhenRecognized(t *testing.T) {
	result, err := Parse(`{"output_text":"hi there"}`, ModeText, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OutputText != "hi there" || result.FinishReason != "stop" {
		t.Fatalf("got %+v", result)
	}
}

func TestJSONContractEmptyStdoutIsParseError(t *testing.T) {
	_, err := Parse("   ", ModeJSONContract, nil)
	if err == nil {
		t.Fatal("expected ParseError on empty stdout")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
}

func TestJSONContractScansBottomUpOnDirectParseFailure(t *testing.T) {
	stdout := "garbage line one\nnot json either\n{\"output_text\":\"recovered\"}\n"
	result, err := Parse(stdout, ModeJSONContract, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OutputText != "recovered" {
		t.Fatalf("got %+v", result)
	}
}

func TestTextContractFinalLineFallsBackOnInvalidLastLine(t *testing.T) {
	result, err := Parse("first line\nnot json", ModeTextContractFinal, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OutputText != "first line\nnot json" || result.FinishReason != "stop" {
		t.Fatalf("got %+v", result)
	}
}

func TestScenario2_JSONContractWithToolCall(t *testing.T) {
	stdout := `{"output_text":"","tool_calls":[{"id":"c1","name":"search","arguments":"{\"q\":\"x\"}"}],"finish_reason":"tool_calls"}`
	tools := []ToolDef{{Name: "search", Parameters: map[string]any{"properties": map[string]any{"q": map[string]any{}}}}}
	result, err := Parse(stdout, ModeJSONContract, tools)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(result.ToolCalls))
	}
	call := result.ToolCalls[0]
	if call.ID != "c1" || call.Name != "search" || call.Arguments != `{"q":"x"}` {
		t.Fatalf("got %+v", call)
	}
	if result.FinishReason != "tool_calls" {
		t.Fatalf("finishReason = %s", result.FinishReason)
	}
}

func TestScenario4_CanonicalizationAndDrop(t *testing.T) {
	stdout := `{"tool_calls":[{"name":"Search-Docs","arguments":{}},{"name":"unknown_tool","arguments":{}}],"finish_reason":"tool_calls"}`
	tools := []ToolDef{{Name: "searchDocs"}}
	result, err := Parse(stdout, ModeJSONContract, tools)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ToolCalls) != 1 {
		t.Fatalf("expected 1 surviving tool call, got %d: %+v", len(result.ToolCalls), result.ToolCalls)
	}
	if result.ToolCalls[0].Name != "searchDocs" {
		t.Fatalf("name = %s, want searchDocs", result.ToolCalls[0].Name)
	}
}

func TestAllToolCallsDroppedDowngradesFinishReason(t *testing.T) {
	stdout := `{"tool_calls":[{"name":"nope","arguments":{}}],"finish_reason":"tool_calls"}`
	tools := []ToolDef{{Name: "somethingElse"}}
	result, err := Parse(stdout, ModeJSONContract, tools)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ToolCalls) != 0 {
		t.Fatalf("expected all calls dropped, got %+v", result.ToolCalls)
	}
	if result.FinishReason != "stop" {
		t.Fatalf("finishReason = %s, want stop", result.FinishReason)
	}
}

func TestEmptyDeclaredToolsDropsAllCalls(t *testing.T) {
	stdout := `{"tool_calls":[{"name":"whatever","arguments":{}}],"finish_reason":"tool_calls"}`
	result, err := Parse(stdout, ModeJSONContract, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ToolCalls) != 0 || result.FinishReason != "stop" {
		t.Fatalf("got %+v", result)
	}
}

func TestToolCallIDSynthesizedWhenAbsent(t *testing.T) {
	stdout := `{"tool_calls":[{"name":"search","arguments":{}}]}`
	tools := []ToolDef{{Name: "search"}}
	result, err := Parse(stdout, ModeJSONContract, tools)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ToolCalls) != 1 || result.ToolCalls[0].ID != "call_1" {
		t.Fatalf("got %+v", result.ToolCalls)
	}
}

func TestNestedToolCallRecovery(t *testing.T) {
	inner := `{"tool_calls":[{"id":"inner1","name":"search","arguments":"{\"q\":\"deep\"}"}]}`
	stdout := `{"tool_calls":[{"id":"outer1","name":"wrapper","arguments":` + jsonString(inner) + `}]}`
	tools := []ToolDef{{Name: "search"}}
	result, err := Parse(stdout, ModeJSONContract, tools)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ToolCalls) != 1 {
		t.Fatalf("expected 1 surviving tool call, got %+v", result.ToolCalls)
	}
	call := result.ToolCalls[0]
	if call.Name != "search" || call.ID != "outer1" {
		t.Fatalf("got %+v, want name=search id=outer1 (outer id preferred)", call)
	}
}

func TestNestedToolCallRecoveryThroughFence(t *testing.T) {
	raw := "Sure, here is the call:\n```json\n" +
		`{"tool_calls":[{"name":"search","arguments":"{\"q\":\"fenced\"}"}]}` +
		"\n```\n"
	stdout := `{"tool_calls":[{"id":"outer2","name":"wrapper","arguments":` + jsonString(raw) + `}]}`
	tools := []ToolDef{{Name: "search"}}
	result, err := Parse(stdout, ModeJSONContract, tools)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ToolCalls) != 1 || result.ToolCalls[0].Name != "search" {
		t.Fatalf("got %+v", result.ToolCalls)
	}
}

func TestCanonicalizeNameIdempotent(t *testing.T) {
	cases := []string{"Search-Docs", "search_docs", "SEARCH.DOCS", "search/docs", "camelCaseName"}
	for _, c := range cases {
		once := canonicalizeName(c)
		twice := canonicalizeName(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: once=%q twice=%q", c, once, twice)
		}
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
