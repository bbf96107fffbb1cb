package provider

import (
	"context"
	"strings"
	"testing"

	"github.com/hearthline/cligate/pkg/health"
)

func echoCommand(text string) CommandSpec {
	return CommandSpec{
		Executable: "/bin/sh",
		Args:       []string{"-c", "echo " + text},
		Input:      InputPromptStdin,
		Output:     OutputTextPlain,
		TimeoutMs:  5000,
	}
}

func failCommand() CommandSpec {
	return CommandSpec{
		Executable: "/bin/sh",
		Args:       []string{"-c", "echo boom rate limit exceeded >&2; exit 1"},
		Input:      InputPromptStdin,
		Output:     OutputTextPlain,
		TimeoutMs:  5000,
	}
}

func newTestRegistry(t *testing.T, bindings []ProviderBinding) *Registry {
	t.Helper()
	reg, err := NewRegistry(bindings)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestDispatcherSucceedsOnFirstModel(t *testing.T) {
	reg := newTestRegistry(t, []ProviderBinding{
		{ID: "p1", Models: []ModelConfig{{ID: "m1"}}, ResponseCommand: echoCommand("hi")},
	})
	d := NewDispatcher(reg, health.NewTracker())

	res, used, err := d.RunModel(context.Background(), UnifiedRequest{Model: "m1"})
	if err != nil {
		t.Fatalf("RunModel: %v", err)
	}
	if used != "m1" {
		t.Fatalf("used = %q, want m1", used)
	}
	if !strings.Contains(res.OutputText, "hi") {
		t.Fatalf("output = %q", res.OutputText)
	}
}

func TestDispatcherFallsBackOnFailure(t *testing.T) {
	reg := newTestRegistry(t, []ProviderBinding{
		{ID: "bad", Models: []ModelConfig{{ID: "m1", FallbackModels: []string{"m2"}}}, ResponseCommand: failCommand()},
		{ID: "good", Models: []ModelConfig{{ID: "m2"}}, ResponseCommand: echoCommand("fallback-ok")},
	})
	tracker := health.NewTracker()
	d := NewDispatcher(reg, tracker)

	res, used, err := d.RunModel(context.Background(), UnifiedRequest{Model: "m1"})
	if err != nil {
		t.Fatalf("RunModel: %v", err)
	}
	if used != "m2" {
		t.Fatalf("used = %q, want m2", used)
	}
	if !strings.Contains(res.OutputText, "fallback-ok") {
		t.Fatalf("output = %q", res.OutputText)
	}

	if tracker.SnapshotModel("m1").Failures != 1 {
		t.Fatalf("expected m1 to have recorded one failure")
	}
	if tracker.SnapshotModel("m2").FallbackInCount != 1 {
		t.Fatalf("expected m2 to have recorded one fallback-in")
	}
}

func TestDispatcherInvalidInitialModelConsumesNoChainSlot(t *testing.T) {
	reg := newTestRegistry(t, []ProviderBinding{
		{ID: "p1", Models: []ModelConfig{{ID: "m1"}}, ResponseCommand: echoCommand("hi")},
	})
	tracker := health.NewTracker()
	d := NewDispatcher(reg, tracker)

	_, _, err := d.RunModel(context.Background(), UnifiedRequest{Model: "does-not-exist"})
	if err == nil {
		t.Fatal("expected InvalidModelError")
	}
	var invalidErr *InvalidModelError
	if !asInvalidModelError(err, &invalidErr) {
		t.Fatalf("err = %v, want *InvalidModelError", err)
	}
	if tracker.SnapshotModel("does-not-exist").Attempts != 0 {
		t.Fatal("expected no attempt recorded for an unknown initial model")
	}
}

func TestDispatcherDanglingFallbackRecordsConfigFailure(t *testing.T) {
	reg := newTestRegistry(t, []ProviderBinding{
		{ID: "bad", Models: []ModelConfig{{ID: "m1", FallbackModels: []string{"ghost"}}}, ResponseCommand: failCommand()},
	})
	tracker := health.NewTracker()
	d := NewDispatcher(reg, tracker)

	_, _, err := d.RunModel(context.Background(), UnifiedRequest{Model: "m1"})
	if err == nil {
		t.Fatal("expected a chain-exhausted error")
	}
	if !strings.Contains(err.Error(), "m1 -> ghost") {
		t.Fatalf("error chain summary = %q", err.Error())
	}
	if tracker.SnapshotModel("ghost").Attempts != 1 {
		t.Fatalf("expected exactly one recorded attempt against the dangling fallback id")
	}
	if tracker.SnapshotModel("ghost").Failures != 1 {
		t.Fatalf("expected exactly one recorded failure against the dangling fallback id")
	}
}

func TestDispatcherBreaksCyclesInFallbackChain(t *testing.T) {
	reg := newTestRegistry(t, []ProviderBinding{
		{ID: "bad1", Models: []ModelConfig{{ID: "m1", FallbackModels: []string{"m2"}}}, ResponseCommand: failCommand()},
		{ID: "bad2", Models: []ModelConfig{{ID: "m2", FallbackModels: []string{"m1"}}}, ResponseCommand: failCommand()},
	})
	tracker := health.NewTracker()
	d := NewDispatcher(reg, tracker)

	_, _, err := d.RunModel(context.Background(), UnifiedRequest{Model: "m1"})
	if err == nil {
		t.Fatal("expected the cyclic chain to fail rather than loop forever")
	}
	if tracker.SnapshotModel("m1").Attempts != 1 || tracker.SnapshotModel("m2").Attempts != 1 {
		t.Fatalf("expected exactly one attempt per model in the cycle, got m1=%d m2=%d",
			tracker.SnapshotModel("m1").Attempts, tracker.SnapshotModel("m2").Attempts)
	}
}

func asInvalidModelError(err error, target **InvalidModelError) bool {
	if e, ok := err.(*InvalidModelError); ok {
		*target = e
		return true
	}
	return false
}
