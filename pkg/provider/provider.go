package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hearthline/cligate/pkg/executor"
	"github.com/hearthline/cligate/pkg/health"
	"github.com/hearthline/cligate/pkg/outputparser"
	"github.com/hearthline/cligate/pkg/template"
)

// defaultCommandTimeoutMs is applied when a binding's responseCommand
// omits timeoutMs (spec.md §6: "default 180000").
const defaultCommandTimeoutMs = 180000

// toolContractInstruction is the fixed instruction appended to the prompt
// when input=prompt_stdin and tools were declared (spec.md §4.4 step 3):
// "a fixed instruction; verbatim content is a contract with the model, not
// with this spec". It asks the model to emit the §4.3 JSON contract shape.
const toolContractInstruction = `You have access to the following tools (JSON Schema):
%s

If you need to call a tool, respond with ONLY a single JSON object of the
form: {"output_text": "", "tool_calls": [{"id": "call_1", "name": "<tool
name>", "arguments": "<JSON-encoded arguments string>"}], "finish_reason":
"tool_calls"}. Otherwise, respond with ONLY:
{"output_text": "<your reply>", "tool_calls": [], "finish_reason": "stop"}.`

// JobManager is the subset of the background job manager a Provider needs
// to hand off its loginCommand (spec.md §4.4: "startLoginJob(jobManager)").
type JobManager interface {
	StartCommand(tag string, spec CommandSpec, vars map[string]string) (string, error)
}

// Provider is one upstream CLI binding: a set of model IDs, a response
// command, and optional auth/status/rate-limit commands.
type Provider struct {
	id          string
	binding     ProviderBinding
	modelIDs    map[string]bool
	engine      *template.Engine
}

func newProvider(binding ProviderBinding) *Provider {
	modelIDs := make(map[string]bool, len(binding.Models))
	for _, m := range binding.Models {
		modelIDs[m.ID] = true
	}
	return &Provider{
		id:       binding.ID,
		binding:  binding,
		modelIDs: modelIDs,
		engine:   template.NewEngine(),
	}
}

// ID returns the provider's configured id.
func (p *Provider) ID() string { return p.id }

// Binding returns the provider's parsed configuration.
func (p *Provider) Binding() ProviderBinding { return p.binding }

// Run executes req against this provider's responseCommand and returns a
// normalized ProviderResult (spec.md §4.4).
func (p *Provider) Run(ctx context.Context, req UnifiedRequest) (ProviderResult, error) {
	if !p.modelIDs[req.Model] {
		return ProviderResult{}, &InvalidModelError{ModelID: req.Model}
	}

	prompt := flattenMessages(req.Messages)
	if p.binding.ResponseCommand.Input == InputPromptStdin && len(req.Tools) > 0 {
		prompt = prompt + "\n\n" + fmt.Sprintf(toolContractInstruction, toolsJSON(req.Tools))
	}

	tmpDir, err := os.MkdirTemp("", "cligate-run-*")
	if err != nil {
		return ProviderResult{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	promptFile := filepath.Join(tmpDir, "prompt.txt")
	requestFile := filepath.Join(tmpDir, "request.json")
	requestJSON := requestJSONFor(req, prompt)

	if err := os.WriteFile(promptFile, []byte(prompt), 0o600); err != nil {
		return ProviderResult{}, fmt.Errorf("write prompt.txt: %w", err)
	}
	if err := os.WriteFile(requestFile, []byte(requestJSON), 0o600); err != nil {
		return ProviderResult{}, fmt.Errorf("write request.json: %w", err)
	}

	vars := map[string]string{
		"request_id":     req.RequestID,
		"provider_id":    p.id,
		"model":          req.Model,
		"provider_model": req.ProviderModel,
		"prompt":         prompt,
		"prompt_file":    promptFile,
		"request_file":   requestFile,
	}

	spec := p.resolveCommand(p.binding.ResponseCommand, vars)

	stdin := prompt
	if p.binding.ResponseCommand.Input == InputRequestJSONStdin {
		stdin = requestJSON
	}

	slog.DebugContext(ctx, "provider: invoking response command",
		"provider", p.id, "model", req.Model, "executable", spec.Executable)

	outcome, err := executor.Run(ctx, spec, stdin)
	if err != nil {
		return ProviderResult{}, &SpawnError{Executable: spec.Executable, Err: err}
	}
	if outcome.TimedOut {
		return ProviderResult{}, &TimeoutError{Executable: spec.Executable, TimeoutMs: spec.TimeoutMs}
	}
	if outcome.ExitCode != 0 {
		exitErr := &ProviderExitError{
			ExitCode: outcome.ExitCode,
			Stdout:   outcome.Stdout,
			Stderr:   outcome.Stderr,
		}
		return ProviderResult{}, classifyUpstream(outcome.Stderr, outcome.Stdout, exitErr)
	}

	parsed, err := outputparser.Parse(outcome.Stdout, outputparser.Mode(p.binding.ResponseCommand.Output), toolDefsFor(req.Tools))
	if err != nil {
		return ProviderResult{}, &ParseError{Reason: err.Error()}
	}

	result := ProviderResult{
		OutputText:   parsed.OutputText,
		FinishReason: FinishReason(parsed.FinishReason),
		Raw:          outcome.Stdout,
	}
	for _, c := range parsed.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{ID: c.ID, Name: c.Name, Arguments: c.Arguments})
	}
	return result, nil
}

// StartLoginJob hands the loginCommand to jm, with vars {provider_id}.
// Fails if no loginCommand is configured.
func (p *Provider) StartLoginJob(jm JobManager) (string, error) {
	if p.binding.LoginCommand == nil {
		return "", &ConfigError{Field: "loginCommand", Message: fmt.Sprintf("provider %s has no loginCommand configured", p.id)}
	}
	return jm.StartCommand(p.id+":login", *p.binding.LoginCommand, map[string]string{"provider_id": p.id})
}

// AuthStatus is the result of CheckAuthStatus.
type AuthStatus struct {
	OK       bool
	ExitCode int
	Stdout   string
	Stderr   string
}

// CheckAuthStatus resolves and runs statusCommand synchronously. If
// unconfigured, returns {OK: false, Stderr: "not configured"}.
func (p *Provider) CheckAuthStatus(ctx context.Context) AuthStatus {
	if p.binding.StatusCommand == nil {
		return AuthStatus{OK: false, Stderr: "not configured"}
	}
	vars := map[string]string{"provider_id": p.id}
	spec := p.resolveCommand(*p.binding.StatusCommand, vars)
	outcome, err := executor.Run(ctx, spec, "")
	if err != nil {
		return AuthStatus{OK: false, Stderr: err.Error()}
	}
	return AuthStatus{
		OK:       outcome.ExitCode == 0 && !outcome.TimedOut,
		ExitCode: outcome.ExitCode,
		Stdout:   outcome.Stdout,
		Stderr:   outcome.Stderr,
	}
}

// RateLimits is the result of CheckRateLimits; shape mirrors AuthStatus
// per spec.md §4.4 ("same shape, different command").
type RateLimits struct {
	OK       bool
	ExitCode int
	Stdout   string
	Stderr   string
}

// CheckRateLimits resolves and runs rateLimitCommand synchronously.
func (p *Provider) CheckRateLimits(ctx context.Context) RateLimits {
	if p.binding.RateLimitCommand == nil {
		return RateLimits{OK: false, Stderr: "not configured"}
	}
	vars := map[string]string{"provider_id": p.id}
	spec := p.resolveCommand(*p.binding.RateLimitCommand, vars)
	outcome, err := executor.Run(ctx, spec, "")
	if err != nil {
		return RateLimits{OK: false, Stderr: err.Error()}
	}
	return RateLimits{
		OK:       outcome.ExitCode == 0 && !outcome.TimedOut,
		ExitCode: outcome.ExitCode,
		Stdout:   outcome.Stdout,
		Stderr:   outcome.Stderr,
	}
}

// resolveCommand applies template substitution to every templatable field
// of spec and maps it onto an executor.Spec.
func (p *Provider) resolveCommand(spec CommandSpec, vars map[string]string) executor.Spec {
	timeout := spec.TimeoutMs
	if timeout <= 0 {
		timeout = defaultCommandTimeoutMs
	}
	return executor.Spec{
		Executable: p.engine.Apply(spec.Executable, vars),
		Args:       p.engine.ApplySlice(spec.Args, vars),
		Env:        p.engine.ApplyMap(spec.Env, vars),
		Cwd:        p.engine.Apply(spec.Cwd, vars),
		TimeoutMs:  timeout,
	}
}

// classifyUpstream inspects a non-zero-exit child's stderr (falling back to
// stdout) and, when it matches one of the four upstream failure kinds,
// returns the typed Upstream* error instead of the generic fallback so
// callers above the core can react to auth/quota/capacity/rate-limit
// conditions without string-matching (spec.md §7's classifier row). Any
// other classification, including provider_exit itself, returns fallback
// unchanged.
func classifyUpstream(stderr, stdout string, fallback *ProviderExitError) error {
	message := stderr
	if message == "" {
		message = stdout
	}
	kind := health.Classify(message)
	u := upstreamError{kind: kind, message: fallback.Error()}
	switch kind {
	case health.KindAuth:
		return &UpstreamAuthError{u}
	case health.KindQuotaExhausted:
		return &UpstreamQuotaError{u}
	case health.KindCapacityExhausted:
		return &UpstreamCapacityError{u}
	case health.KindRateLimited:
		return &UpstreamRateLimitError{u}
	default:
		return fallback
	}
}

// flattenMessages renders each message as "<ROLE_UPPER>:\n<content>",
// joined with "\n\n" (spec.md §4.4 step 2).
func flattenMessages(messages []ChatMessage) string {
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = strings.ToUpper(string(m.Role)) + ":\n" + m.Content
	}
	return strings.Join(parts, "\n\n")
}

func toolDefsFor(tools []ToolDefinition) []outputparser.ToolDef {
	out := make([]outputparser.ToolDef, len(tools))
	for i, t := range tools {
		out[i] = outputparser.ToolDef{Name: t.Name, Parameters: t.Parameters}
	}
	return out
}

func toolsJSON(tools []ToolDefinition) string {
	b, err := json.Marshal(tools)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func requestJSONFor(req UnifiedRequest, prompt string) string {
	payload := map[string]any{
		"request_id": req.RequestID,
		"model":      req.Model,
		"messages":   req.Messages,
		"tools":      req.Tools,
		"prompt":     prompt,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "{}"
	}
	return string(b)
}
