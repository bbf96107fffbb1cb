package wireadapter

import (
	"strings"

	"github.com/hearthline/cligate/pkg/provider"
)

// ToUnifiedRequest converts a parsed wire request into the core's
// UnifiedRequest, flattening multimodal message content to text and
// dropping duplicate tool names (case-insensitive), preserving first
// occurrence (spec.md §3).
func ToUnifiedRequest(req *ChatCompletionRequest, requestID string) provider.UnifiedRequest {
	messages := make([]provider.ChatMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = provider.ChatMessage{
			Role:       provider.Role(m.Role),
			Content:    flattenContent(m.Content),
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
	}

	var metadata map[string]any
	if req.User != "" {
		metadata = map[string]any{"user": req.User}
	}

	return provider.UnifiedRequest{
		RequestID: requestID,
		Model:     req.Model,
		Messages:  messages,
		Tools:     dedupTools(req.Tools),
		Metadata:  metadata,
	}
}

// dedupTools drops tools whose name (case-insensitive) has already been
// seen, keeping the first occurrence's definition.
func dedupTools(tools []Tool) []provider.ToolDefinition {
	if len(tools) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tools))
	out := make([]provider.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		key := strings.ToLower(t.Function.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, provider.ToolDefinition{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  t.Function.Parameters,
		})
	}
	return out
}

// flattenContent extracts plain text from a message's content, whether
// it's a bare string (the common case) or an array of OpenAI multimodal
// content parts. Non-text parts (image_url, etc.) are dropped: the core
// treats content as already-flattened text (spec.md §3).
func flattenContent(content interface{}) string {
	if content == nil {
		return ""
	}
	if s, ok := content.(string); ok {
		return s
	}
	parts, ok := content.([]interface{})
	if !ok {
		return ""
	}
	var texts []string
	for _, part := range parts {
		m, ok := part.(map[string]interface{})
		if !ok {
			continue
		}
		if t, _ := m["type"].(string); t != "text" {
			continue
		}
		if text, ok := m["text"].(string); ok {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, " ")
}

// FromProviderResult builds the OpenAI response body for one successful
// dispatch. modelUsed is the id that actually produced result, which the
// response reports back to the caller as-is (it may differ from the
// requested model after a fallback).
func FromProviderResult(result provider.ProviderResult, modelUsed, responseID string, createdUnix int64) *ChatCompletionResponse {
	msg := Message{
		Role:    "assistant",
		Content: result.OutputText,
	}
	if len(result.ToolCalls) > 0 {
		msg.ToolCalls = make([]ToolCall, len(result.ToolCalls))
		for i, tc := range result.ToolCalls {
			msg.ToolCalls[i] = ToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			}
		}
	}

	return &ChatCompletionResponse{
		ID:      responseID,
		Object:  "chat.completion",
		Created: createdUnix,
		Model:   modelUsed,
		Choices: []Choice{
			{
				Index:        0,
				Message:      msg,
				FinishReason: string(result.FinishReason),
			},
		},
		Usage: Usage{},
	}
}
