package executor

import (
	"context"
	"testing"
	"time"
)

func TestRunCapturesStdoutStderrAndExitCode(t *testing.T) {
	out, err := Run(context.Background(), Spec{
		Executable: "/bin/sh",
		Args:       []string{"-c", "echo out; echo err 1>&2; exit 3"},
		TimeoutMs:  5000,
	}, "")
	if err != nil {
		t.Fatalf("unexpected SpawnError: %v", err)
	}
	if out.Stdout != "out\n" {
		t.Fatalf("stdout = %q", out.Stdout)
	}
	if out.Stderr != "err\n" {
		t.Fatalf("stderr = %q", out.Stderr)
	}
	if out.ExitCode != 3 {
		t.Fatalf("exitCode = %d", out.ExitCode)
	}
	if out.TimedOut {
		t.Fatal("should not have timed out")
	}
}

func TestRunFeedsStdin(t *testing.T) {
	out, err := Run(context.Background(), Spec{
		Executable: "/bin/cat",
		TimeoutMs:  5000,
	}, "hello from stdin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Stdout != "hello from stdin" {
		t.Fatalf("stdout = %q", out.Stdout)
	}
}

func TestRunMergesEnvWithSpecWinning(t *testing.T) {
	out, err := Run(context.Background(), Spec{
		Executable: "/bin/sh",
		Args:       []string{"-c", "echo $FOO"},
		Env:        map[string]string{"FOO": "overridden"},
		TimeoutMs:  5000,
	}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Stdout != "overridden\n" {
		t.Fatalf("stdout = %q", out.Stdout)
	}
}

func TestRunTimeoutEscalatesToKill(t *testing.T) {
	start := time.Now()
	out, err := Run(context.Background(), Spec{
		Executable: "/bin/sh",
		Args:       []string{"-c", "trap '' TERM; sleep 30"},
		TimeoutMs:  200,
	}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.TimedOut {
		t.Fatal("expected timedOut = true")
	}
	// Should escalate to SIGKILL after killGrace, not wait the full 30s sleep.
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("took too long to kill: %v", elapsed)
	}
}

func TestRunSpawnErrorOnMissingExecutable(t *testing.T) {
	_, err := Run(context.Background(), Spec{
		Executable: "/no/such/binary-xyz",
		TimeoutMs:  1000,
	}, "")
	if err == nil {
		t.Fatal("expected a SpawnError")
	}
	var spawnErr *SpawnError
	if ok := asSpawnError(err, &spawnErr); !ok {
		t.Fatalf("expected *SpawnError, got %T", err)
	}
}

func asSpawnError(err error, target **SpawnError) bool {
	se, ok := err.(*SpawnError)
	if ok {
		*target = se
	}
	return ok
}
