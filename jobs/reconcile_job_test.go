package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRecounter struct {
	calls    int
	n        int64
	err      error
	deadline bool
}

func (f *fakeRecounter) Recount(ctx context.Context) (int64, error) {
	f.calls++
	_, f.deadline = ctx.Deadline()
	return f.n, f.err
}

func TestReconcileEnrollmentCounts(t *testing.T) {
	for _, r := range []*fakeRecounter{{n: 3}, {n: 0}, {err: errors.New("db down")}} {
		ReconcileEnrollmentCounts(r, time.Second)()
		if r.calls != 1 || !r.deadline {
			t.Errorf("calls=%d deadline=%v", r.calls, r.deadline)
		}
	}
}

func TestSchedule(t *testing.T) {
	c, err := Schedule("@every 1h", &fakeRecounter{}, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(c.Entries()); got != 1 {
		t.Errorf("entries = %d, want 1", got)
	}

	if _, err := Schedule("not a schedule", &fakeRecounter{}, time.Second); err == nil {
		t.Error("expected an error for a bad spec")
	}
}
