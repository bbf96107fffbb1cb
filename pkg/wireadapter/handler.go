package wireadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hearthline/cligate/pkg/provider"
)

// Dispatcher is the subset of provider.Dispatcher the chat-completions
// handler depends on, so it can be tested against a fake.
type Dispatcher interface {
	RunModel(ctx context.Context, req provider.UnifiedRequest) (provider.ProviderResult, string, error)
}

// ModelLister is the subset of provider.Registry the models handler
// depends on.
type ModelLister interface {
	ListModels() []string
	GetModel(modelID string) (provider.ModelBinding, bool)
}

// RequestIDFunc extracts a request's id from its context (e.g. the
// server's request-id middleware); handlers fall back to a fresh UUID
// when it returns "".
type RequestIDFunc func(ctx context.Context) string

// Handler serves the OpenAI-compatible wire endpoints over a Dispatcher
// and a ModelLister.
type Handler struct {
	dispatcher   Dispatcher
	models       ModelLister
	getRequestID RequestIDFunc
}

// NewHandler builds a Handler. getRequestID may be nil, in which case
// every request gets a freshly generated id.
func NewHandler(dispatcher Dispatcher, models ModelLister, getRequestID RequestIDFunc) *Handler {
	if getRequestID == nil {
		getRequestID = func(context.Context) string { return "" }
	}
	return &Handler{dispatcher: dispatcher, models: models, getRequestID: getRequestID}
}

// ChatCompletions serves POST /v1/chat/completions: parse, dispatch,
// convert, respond. Streaming requests are rejected by Validate before
// dispatch ever happens.
func (h *Handler) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := h.requestID(ctx)

	if r.Method != http.MethodPost {
		writeErr(w, ctx, NewInvalidRequestError("method not allowed, use POST", "method", "method_not_allowed"))
		return
	}

	chatReq, err := ParseChatCompletionRequest(r)
	if err != nil {
		slog.WarnContext(ctx, "chat completion request rejected", "request_id", requestID, "error", err)
		writeErr(w, ctx, HandleError(err))
		return
	}

	unified := ToUnifiedRequest(chatReq, requestID)

	start := time.Now()
	result, modelUsed, err := h.dispatcher.RunModel(ctx, unified)
	latency := time.Since(start)
	if err != nil {
		slog.ErrorContext(ctx, "model dispatch failed",
			"request_id", requestID, "model", chatReq.Model, "error", err, "latency_ms", latency.Milliseconds())
		writeErr(w, ctx, HandleError(err))
		return
	}

	slog.InfoContext(ctx, "chat completion succeeded",
		"request_id", requestID, "requested_model", chatReq.Model, "model_used", modelUsed,
		"finish_reason", result.FinishReason, "latency_ms", latency.Milliseconds())

	resp := FromProviderResult(result, modelUsed, "chatcmpl-"+requestID, time.Now().Unix())
	if err := WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write chat completion response", "request_id", requestID, "error", err)
	}
}

// Models serves GET /v1/models.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		writeErr(w, ctx, NewInvalidRequestError("method not allowed, use GET", "method", "method_not_allowed"))
		return
	}

	ids := h.models.ListModels()
	data := make([]ModelInfo, 0, len(ids))
	for _, id := range ids {
		binding, ok := h.models.GetModel(id)
		if !ok {
			continue
		}
		data = append(data, ModelInfo{
			ID:          id,
			Object:      "model",
			OwnedBy:     binding.ProviderID,
			Description: binding.Description,
		})
	}

	if err := WriteJSONResponse(w, http.StatusOK, ModelsResponse{Object: "list", Data: data}); err != nil {
		slog.ErrorContext(ctx, "failed to write models response", "error", err)
	}
}

func (h *Handler) requestID(ctx context.Context) string {
	if id := h.getRequestID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeErr(w http.ResponseWriter, ctx context.Context, errResp *ErrorResponse) {
	if err := WriteErrorResponse(w, errResp); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}
