package jobmanager

import (
	"strings"
	"testing"
	"time"

	"github.com/hearthline/cligate/pkg/provider"
)

func waitForStatus(t *testing.T, m *Manager, id string, want Status, timeout time.Duration) JobSummary {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		summary, _, ok := m.GetJob(id)
		if !ok {
			t.Fatalf("job %s not found", id)
		}
		if summary.Status == want {
			return summary
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach status %s in time", id, want)
	return JobSummary{}
}

func TestStartCommandCapturesOutputAndSucceeds(t *testing.T) {
	m := NewManager(nil)
	defer m.Stop()

	id, err := m.StartCommand("test:echo", provider.CommandSpec{
		Executable: "/bin/sh",
		Args:       []string{"-c", "echo hello world"},
		TimeoutMs:  5000,
	}, nil)
	if err != nil {
		t.Fatalf("StartCommand: %v", err)
	}

	summary := waitForStatus(t, m, id, StatusSucceeded, 3*time.Second)
	_, lines, _ := m.GetJob(id)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "hello world") {
		t.Fatalf("log lines = %v", lines)
	}
	if summary.ExitCode != 0 {
		t.Fatalf("exitCode = %d", summary.ExitCode)
	}
}

func TestStartCommandExtractsURLs(t *testing.T) {
	m := NewManager(nil)
	defer m.Stop()

	id, err := m.StartCommand("test:login", provider.CommandSpec{
		Executable: "/bin/sh",
		Args:       []string{"-c", "echo 'visit https://example.com/device?code=ABC to continue'"},
		TimeoutMs:  5000,
	}, nil)
	if err != nil {
		t.Fatalf("StartCommand: %v", err)
	}

	waitForStatus(t, m, id, StatusSucceeded, 3*time.Second)
	summary, _, _ := m.GetJob(id)
	if len(summary.URLs) != 1 || summary.URLs[0] != "https://example.com/device?code=ABC" {
		t.Fatalf("urls = %v", summary.URLs)
	}
}

func TestStartCommandRecordsNonZeroExit(t *testing.T) {
	m := NewManager(nil)
	defer m.Stop()

	id, err := m.StartCommand("test:fail", provider.CommandSpec{
		Executable: "/bin/sh",
		Args:       []string{"-c", "exit 7"},
		TimeoutMs:  5000,
	}, nil)
	if err != nil {
		t.Fatalf("StartCommand: %v", err)
	}

	summary := waitForStatus(t, m, id, StatusFailed, 3*time.Second)
	if summary.ExitCode != 7 {
		t.Fatalf("exitCode = %d, want 7", summary.ExitCode)
	}
}

func TestStartCommandEscalatesToKillOnTimeout(t *testing.T) {
	m := NewManager(nil)
	defer m.Stop()

	id, err := m.StartCommand("test:hang", provider.CommandSpec{
		Executable: "/bin/sh",
		Args:       []string{"-c", "trap '' TERM; sleep 30"},
		TimeoutMs:  200,
	}, nil)
	if err != nil {
		t.Fatalf("StartCommand: %v", err)
	}

	start := time.Now()
	waitForStatus(t, m, id, StatusTimedOut, 5*time.Second)
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Fatalf("kill escalation took too long: %v", elapsed)
	}
}

func TestStartGenericCommandRespectsAllowList(t *testing.T) {
	m := NewManager([]string{"echo"})
	defer m.Stop()

	if _, err := m.StartGenericCommand("test:blocked", "/bin/rm", []string{"-rf", "/"}, nil, 1000); err == nil {
		t.Fatal("expected the allow-list to reject /bin/rm")
	}

	id, err := m.StartGenericCommand("test:allowed", "/bin/echo", []string{"ok"}, nil, 1000)
	if err != nil {
		t.Fatalf("StartGenericCommand: %v", err)
	}
	waitForStatus(t, m, id, StatusSucceeded, 3*time.Second)
}

func TestListJobsOrdersNewestFirst(t *testing.T) {
	m := NewManager(nil)
	defer m.Stop()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := m.StartCommand("test:seq", provider.CommandSpec{Executable: "/bin/echo", Args: []string{"x"}, TimeoutMs: 2000}, nil)
		if err != nil {
			t.Fatalf("StartCommand: %v", err)
		}
		ids = append(ids, id)
		waitForStatus(t, m, id, StatusSucceeded, 3*time.Second)
	}

	jobs := m.ListJobs(0)
	if len(jobs) != 3 {
		t.Fatalf("jobs = %d, want 3", len(jobs))
	}
	if jobs[0].ID != ids[2] {
		t.Fatalf("expected newest job first")
	}
}
