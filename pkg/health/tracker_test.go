package health

import (
	"sync"
	"testing"
	"time"
)

func TestRecordSuccessResetsConsecutiveCounters(t *testing.T) {
	tr := NewTracker()
	tr.RecordAttempt("m1")
	tr.RecordFailure("m1", 10*time.Millisecond, "rate limit exceeded")
	tr.RecordAttempt("m1")
	tr.RecordFailure("m1", 10*time.Millisecond, "rate limit exceeded")

	snap := tr.SnapshotModel("m1")
	if snap.Failures != 2 {
		t.Fatalf("failures = %d, want 2", snap.Failures)
	}
	// Two consecutive rate-limited failures: multiplier 2 => up to 120s.
	if snap.CooldownRemainingSecs <= 60 {
		t.Fatalf("cooldown = %d before success, want > 60", snap.CooldownRemainingSecs)
	}

	tr.RecordAttempt("m1")
	tr.RecordSuccess("m1", 5*time.Millisecond)

	snap = tr.SnapshotModel("m1")
	if snap.Attempts != 3 || snap.Successes != 1 {
		t.Fatalf("attempts=%d successes=%d", snap.Attempts, snap.Successes)
	}
	// The success resets the consecutive counter, so the multiplier clamps
	// back to 1 against the last (rate-limited) failure: base 60s.
	if snap.CooldownRemainingSecs <= 0 || snap.CooldownRemainingSecs > 60 {
		t.Fatalf("cooldown = %d after success, want in (0,60]", snap.CooldownRemainingSecs)
	}
}

func TestRecordFailureClassifiesAndReturnsKind(t *testing.T) {
	tr := NewTracker()
	kind := tr.RecordFailure("m1", 0, "the request timed out after 30s")
	if kind != KindTimeout {
		t.Fatalf("kind = %q, want timeout", kind)
	}
	snap := tr.SnapshotModel("m1")
	if snap.LastFailureKind != KindTimeout {
		t.Fatalf("lastFailureKind = %q", snap.LastFailureKind)
	}
	if snap.FailuresByKind[KindTimeout] != 1 {
		t.Fatalf("failuresByKind[timeout] = %d", snap.FailuresByKind[KindTimeout])
	}
}

func TestCooldownRemainingDecaysOverTime(t *testing.T) {
	tr := NewTracker()
	tr.RecordFailure("m1", 0, "rate limit exceeded")
	snap := tr.SnapshotModel("m1")
	if snap.CooldownRemainingSecs <= 0 || snap.CooldownRemainingSecs > 60 {
		t.Fatalf("cooldown = %d, want in (0,60]", snap.CooldownRemainingSecs)
	}
	if snap.SuggestedState != "rate_limited" {
		t.Fatalf("suggestedState = %q, want rate_limited", snap.SuggestedState)
	}
}

func TestConsecutiveCooldownMultiplierClampsAtEight(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 12; i++ {
		tr.RecordFailure("m1", 0, "rate limit exceeded")
	}
	snap := tr.SnapshotModel("m1")
	// base=60s, multiplier clamps to 8 => 480s ceiling regardless of the
	// 12 recorded consecutive failures.
	if snap.CooldownRemainingSecs > 480 {
		t.Fatalf("cooldown = %d, want <= 480", snap.CooldownRemainingSecs)
	}
}

func TestSuggestedStateDegradedAboveFailureThreshold(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 6; i++ {
		tr.RecordAttempt("m1")
		tr.RecordFailure("m1", 0, "the dog ate my homework")
	}
	snap := tr.SnapshotModel("m1")
	if snap.SuggestedState != "degraded" {
		t.Fatalf("suggestedState = %q, want degraded", snap.SuggestedState)
	}
}

func TestSuggestedStateHealthyByDefault(t *testing.T) {
	tr := NewTracker()
	snap := tr.SnapshotModel("never-seen")
	if snap.SuggestedState != "healthy" {
		t.Fatalf("suggestedState = %q, want healthy", snap.SuggestedState)
	}
}

func TestRecordFallbackUpdatesBothModelsAndProcessCounter(t *testing.T) {
	tr := NewTracker()
	tr.RecordFallback("m1", "m2")
	if tr.SnapshotModel("m1").FallbackOutCount != 1 {
		t.Fatalf("fallbackOutCount on m1 not recorded")
	}
	if tr.SnapshotModel("m2").FallbackInCount != 1 {
		t.Fatalf("fallbackInCount on m2 not recorded")
	}
	if tr.FallbackTransitions() != 1 {
		t.Fatalf("fallbackTransitions = %d, want 1", tr.FallbackTransitions())
	}
}

func TestFailureRingCapsAt200(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 250; i++ {
		tr.RecordFailure("m1", 0, "the dog ate my homework")
	}
	if got := len(tr.RecentFailures()); got != maxFailureRingSize {
		t.Fatalf("ring size = %d, want %d", got, maxFailureRingSize)
	}
}

func TestConcurrentAccessAcrossModelsDoesNotRace(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		modelID := "m1"
		if i%2 == 0 {
			modelID = "m2"
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			tr.RecordAttempt(id)
			tr.RecordFailure(id, time.Millisecond, "rate limit exceeded")
		}(modelID)
	}
	wg.Wait()
	if tr.SnapshotModel("m1").Attempts == 0 || tr.SnapshotModel("m2").Attempts == 0 {
		t.Fatal("expected attempts recorded on both models")
	}
}
