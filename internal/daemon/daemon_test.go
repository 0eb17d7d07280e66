package daemon

import (
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func TestRunSyncUpdatesStatus(t *testing.T) {
	d := New(func() (int, error) { return 12, nil }, "0 */2 * * *", false, zap.NewNop())

	if err := d.runSync(); err != nil {
		t.Fatalf("runSync failed: %v", err)
	}

	status := d.GetStatus()
	if status["remaining_days"] != 12 {
		t.Errorf("remaining_days = %v, want 12", status["remaining_days"])
	}
	if _, ok := status["last_sync"]; !ok {
		t.Error("last_sync missing from status")
	}
	if _, ok := status["last_error"]; ok {
		t.Errorf("unexpected last_error: %v", status["last_error"])
	}
}

func TestRunSyncRecordsError(t *testing.T) {
	d := New(func() (int, error) { return 0, errors.New("network down") }, "0 */2 * * *", false, zap.NewNop())

	if err := d.runSync(); err == nil {
		t.Fatal("expected error from failing sync")
	}

	status := d.GetStatus()
	if status["last_error"] != "network down" {
		t.Errorf("last_error = %v, want network down", status["last_error"])
	}
	if _, ok := status["remaining_days"]; ok {
		t.Error("remaining_days should not be set after a failed sync")
	}
}

func TestRunSyncRejectsConcurrentRuns(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	d := New(func() (int, error) {
		close(started)
		<-release
		return 5, nil
	}, "0 */2 * * *", false, zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.runSync(); err != nil {
			t.Errorf("first runSync failed: %v", err)
		}
	}()

	<-started
	if err := d.runSync(); err == nil {
		t.Error("second concurrent runSync should be rejected")
	}

	close(release)
	wg.Wait()
}

func TestRunRejectsBadSchedule(t *testing.T) {
	d := New(func() (int, error) { return 0, nil }, "not a schedule", false, zap.NewNop())

	if err := d.run(); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}
