// Package provider implements the CLI provider binding, the immutable
// model registry built from a set of bindings, and the fallback-chain
// dispatcher that routes a unified request to a bound provider.
package provider

// Role identifies who produced a ChatMessage.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// FinishReason is the closed set of reasons a ProviderResult completed.
type FinishReason string

const (
	FinishStop      FinishReason = "stop"
	FinishToolCalls FinishReason = "tool_calls"
	FinishLength    FinishReason = "length"
	FinishError     FinishReason = "error"
)

// InputMode selects how the request is delivered to the child's stdin.
type InputMode string

const (
	InputPromptStdin      InputMode = "prompt_stdin"
	InputRequestJSONStdin InputMode = "request_json_stdin"
)

// OutputMode selects which output-parsing contract applies to stdout.
type OutputMode string

const (
	OutputText                 OutputMode = "text"
	OutputTextPlain            OutputMode = "text_plain"
	OutputTextContractFinal    OutputMode = "text_contract_final_line"
	OutputJSONContract         OutputMode = "json_contract"
)

// ChatMessage is one turn in the conversation handed to a provider. Content
// is already-flattened text; extracting text from multimodal content parts
// is the wire adapter's responsibility, not the core's.
type ChatMessage struct {
	Role       Role   `json:"role"`
	Content    string `json:"content"`
	Name       string `json:"name,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolDefinition describes one function the model may call.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}

// UnifiedRequest is one model invocation, immutable once dispatched.
type UnifiedRequest struct {
	RequestID    string
	Model        string
	ProviderModel string
	Messages     []ChatMessage
	Tools        []ToolDefinition
	Metadata     map[string]any
}

// ToolCall is a structured intent to invoke a named function. Arguments is
// always a JSON-encoded string, never a parsed object, preserving the
// provider's exact encoding for the wire layer.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ProviderResult is what a provider hands back for one invocation.
type ProviderResult struct {
	OutputText   string
	ToolCalls    []ToolCall
	FinishReason FinishReason
	Raw          string // optional raw stdout blob, for diagnostics only
}

// CommandSpec describes one external process to spawn. All string fields
// may contain {{name}} template placeholders.
type CommandSpec struct {
	Executable string            `yaml:"executable"`
	Args       []string          `yaml:"args"`
	Env        map[string]string `yaml:"env,omitempty"`
	Cwd        string            `yaml:"cwd,omitempty"`
	TimeoutMs  int               `yaml:"timeoutMs"`
	Input      InputMode         `yaml:"input,omitempty"`
	Output     OutputMode        `yaml:"output,omitempty"`
}

// ModelConfig is one model entry within a ProviderBinding's config.
type ModelConfig struct {
	ID             string   `yaml:"id"`
	ProviderModel  string   `yaml:"providerModel,omitempty"`
	Description    string   `yaml:"description,omitempty"`
	FallbackModels []string `yaml:"fallbackModels,omitempty"`
}

// ProviderBinding is the parsed configuration for one upstream CLI.
type ProviderBinding struct {
	ID               string        `yaml:"id"`
	Type             string        `yaml:"type"`
	Description      string        `yaml:"description,omitempty"`
	Models           []ModelConfig `yaml:"models"`
	ResponseCommand  CommandSpec   `yaml:"responseCommand"`
	LoginCommand     *CommandSpec  `yaml:"-"`
	StatusCommand    *CommandSpec  `yaml:"-"`
	RateLimitCommand *CommandSpec  `yaml:"-"`
}

// bindingAuth mirrors the YAML "auth" block; ProviderBinding flattens it
// into the three optional command pointers above via UnmarshalYAML.
type bindingAuth struct {
	LoginCommand     *CommandSpec `yaml:"loginCommand,omitempty"`
	StatusCommand    *CommandSpec `yaml:"statusCommand,omitempty"`
	RateLimitCommand *CommandSpec `yaml:"rateLimitCommand,omitempty"`
}

// providerBindingYAML is the literal wire shape of one providers[] entry
// (spec.md §6); UnmarshalYAML decodes into this and flattens into a
// ProviderBinding.
type providerBindingYAML struct {
	ID              string        `yaml:"id"`
	Type            string        `yaml:"type"`
	Description     string        `yaml:"description,omitempty"`
	Models          []ModelConfig `yaml:"models"`
	ResponseCommand CommandSpec   `yaml:"responseCommand"`
	Auth            *bindingAuth  `yaml:"auth,omitempty"`
}

// UnmarshalYAML decodes one providers[] entry and applies the config-format
// defaults named in spec.md §6: responseCommand.timeoutMs defaults to
// 180000, responseCommand.input defaults to prompt_stdin, and each model's
// providerModel defaults to its id.
func (p *ProviderBinding) UnmarshalYAML(unmarshal func(any) error) error {
	var raw providerBindingYAML
	if err := unmarshal(&raw); err != nil {
		return err
	}

	p.ID = raw.ID
	p.Type = raw.Type
	p.Description = raw.Description
	p.Models = raw.Models
	p.ResponseCommand = raw.ResponseCommand

	if p.ResponseCommand.TimeoutMs <= 0 {
		p.ResponseCommand.TimeoutMs = 180000
	}
	if p.ResponseCommand.Input == "" {
		p.ResponseCommand.Input = InputPromptStdin
	}
	for i := range p.Models {
		if p.Models[i].ProviderModel == "" {
			p.Models[i].ProviderModel = p.Models[i].ID
		}
	}

	if raw.Auth != nil {
		p.LoginCommand = raw.Auth.LoginCommand
		p.StatusCommand = raw.Auth.StatusCommand
		p.RateLimitCommand = raw.Auth.RateLimitCommand
		for _, cmd := range []*CommandSpec{p.LoginCommand, p.StatusCommand, p.RateLimitCommand} {
			if cmd != nil && cmd.TimeoutMs <= 0 {
				cmd.TimeoutMs = 180000
			}
		}
	}

	return nil
}

// ModelBinding is the registry-build-time resolution of one model ID to its
// owning provider and provider-specific identifiers.
type ModelBinding struct {
	ModelID        string
	ProviderID     string
	ProviderModel  string
	Description    string
	FallbackModels []string
}
