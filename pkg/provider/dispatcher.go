package provider

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hearthline/cligate/pkg/health"
)

// Dispatcher resolves a requested model id through its configured fallback
// chain, running each candidate against its bound provider until one
// succeeds or the chain is exhausted (spec.md §4.5). Its registry can be
// hot-swapped between calls (supplemented feature: registry hot-reload);
// any one RunModel call sees a single, internally consistent generation.
type Dispatcher struct {
	registry atomic.Pointer[Registry]
	tracker  *health.Tracker
}

// NewDispatcher builds a Dispatcher over registry, recording every attempt,
// success, failure, and fallback transition into tracker.
func NewDispatcher(registry *Registry, tracker *health.Tracker) *Dispatcher {
	d := &Dispatcher{tracker: tracker}
	d.registry.Store(registry)
	return d
}

// UpdateRegistry atomically swaps in a new registry generation. In-flight
// RunModel calls keep running against the generation they started with.
func (d *Dispatcher) UpdateRegistry(registry *Registry) {
	d.registry.Store(registry)
}

// RunModel runs req.Model, falling back through its chain on failure.
// modelUsed is the model id that actually produced result, which may differ
// from req.Model. An unknown req.Model fails immediately and consumes no
// chain slot; a fallback id that does not resolve to a registered model is
// recorded as one attempt and one config failure against that id, without
// advancing the active model (spec.md §4.5).
func (d *Dispatcher) RunModel(ctx context.Context, req UnifiedRequest) (result ProviderResult, modelUsed string, err error) {
	reg := d.registry.Load()
	current, ok := reg.GetModel(req.Model)
	if !ok {
		return ProviderResult{}, "", &InvalidModelError{ModelID: req.Model}
	}
	currentID := req.Model

	visited := map[string]bool{}
	var attempted []string
	var lastErr error

	for {
		visited[currentID] = true
		attempted = append(attempted, currentID)

		res, runErr := d.attempt(ctx, reg, current, currentID, req)
		if runErr == nil {
			return res, currentID, nil
		}
		lastErr = runErr

		next, nextID, ok := d.nextCandidate(reg, currentID, current, visited, &attempted, &lastErr)
		if !ok {
			break
		}
		current, currentID = next, nextID
	}

	if len(attempted) <= 1 {
		return ProviderResult{}, "", lastErr
	}
	return ProviderResult{}, "", wrapChainError(attempted, lastErr)
}

// nextCandidate walks current's fallback list looking for the first
// unvisited entry that resolves to a registered model. The transition is
// recorded against the tracker the moment that candidate is chosen, before
// it runs, regardless of how it eventually fares (spec.md §4.5). Dangling
// entries (fallback ids with no matching model) are recorded as a failed
// attempt in place and skipped, without being returned as a candidate and
// without recording a fallback transition.
func (d *Dispatcher) nextCandidate(reg *Registry, fromID string, current ModelBinding, visited map[string]bool, attempted *[]string, lastErr *error) (ModelBinding, string, bool) {
	for _, fallbackID := range current.FallbackModels {
		if visited[fallbackID] {
			continue
		}
		next, ok := reg.GetModel(fallbackID)
		if !ok {
			visited[fallbackID] = true
			*attempted = append(*attempted, fallbackID)
			cfgErr := danglingFallbackError(fallbackID)
			*lastErr = cfgErr
			d.tracker.RecordAttempt(fallbackID)
			d.tracker.RecordFailure(fallbackID, 0, cfgErr.Error())
			continue
		}
		d.tracker.RecordFallback(fromID, fallbackID)
		return next, fallbackID, true
	}
	return ModelBinding{}, "", false
}

// attempt runs req against model's bound provider, recording the attempt,
// success, or failure into the tracker.
func (d *Dispatcher) attempt(ctx context.Context, reg *Registry, model ModelBinding, modelID string, req UnifiedRequest) (ProviderResult, error) {
	p, ok := reg.GetProvider(model.ProviderID)
	if !ok {
		return ProviderResult{}, &ConfigError{
			Field:   "providerId",
			Message: "model " + modelID + " references unknown provider " + model.ProviderID,
		}
	}

	runReq := req
	runReq.Model = modelID
	runReq.ProviderModel = model.ProviderModel

	d.tracker.RecordAttempt(modelID)
	start := time.Now()
	res, err := p.Run(ctx, runReq)
	duration := time.Since(start)
	if err != nil {
		d.tracker.RecordFailure(modelID, duration, err.Error())
		return ProviderResult{}, err
	}
	d.tracker.RecordSuccess(modelID, duration)
	return res, nil
}
