package metrics

import (
	"sync"
	"testing"
)

func TestCollector_Lifecycle(t *testing.T) {
	c := NewCollector("scalatest", "/build/test-classes")

	c.IncRunStarted()
	c.IncLaunchSuccess()
	c.IncRunWarned()

	snap := c.Snapshot()
	if snap.RunsStarted != 1 {
		t.Errorf("RunsStarted = %d, want 1", snap.RunsStarted)
	}
	if snap.RunsWarned != 1 {
		t.Errorf("RunsWarned = %d, want 1", snap.RunsWarned)
	}
	if snap.LaunchSuccess != 1 {
		t.Errorf("LaunchSuccess = %d, want 1", snap.LaunchSuccess)
	}
	if snap.Runner != "scalatest" || snap.TestRoot != "/build/test-classes" {
		t.Errorf("dimensions not carried: %+v", snap)
	}
}

func TestCollector_NilReceiverSafe(t *testing.T) {
	var c *Collector

	// None of these may panic
	c.IncRunStarted()
	c.IncRunSucceeded()
	c.IncRunWarned()
	c.IncRunFailed()
	c.IncLaunchSuccess()
	c.IncLaunchFailure()
	c.AddArtifactsArchived(3)
	c.IncArchiveFailure()
	c.IncNotifyFailure()

	if snap := c.Snapshot(); snap != (Snapshot{}) {
		t.Errorf("nil collector snapshot = %+v, want zero value", snap)
	}
}

func TestCollector_SnapshotIsolation(t *testing.T) {
	c := NewCollector("scalatest", "/root")
	c.IncRunStarted()
	snap := c.Snapshot()

	c.IncRunStarted()
	if snap.RunsStarted != 1 {
		t.Errorf("snapshot mutated after the fact: %d", snap.RunsStarted)
	}
	if c.Snapshot().RunsStarted != 2 {
		t.Errorf("collector lost an increment")
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := NewCollector("scalatest", "/root")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncRunStarted()
			c.AddArtifactsArchived(2)
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.RunsStarted != 50 {
		t.Errorf("RunsStarted = %d, want 50", snap.RunsStarted)
	}
	if snap.ArtifactsArchived != 100 {
		t.Errorf("ArtifactsArchived = %d, want 100", snap.ArtifactsArchived)
	}
}
