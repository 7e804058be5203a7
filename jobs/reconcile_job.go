package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type Recounter interface {
	Recount(ctx context.Context) (int64, error)
}

// ReconcileEnrollmentCounts brings enrolledStudentsCount back in line with
// the enrolledStudents set.
func ReconcileEnrollmentCounts(r Recounter, timeout time.Duration) func() {
	return func() {
		log.Println("Running job: ReconcileEnrollmentCounts...")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		n, err := r.Recount(ctx)
		if err != nil {
			log.Printf("Error reconciling enrollment counts: %v", err)
			return
		}
		if n == 0 {
			log.Println("Enrollment counts already consistent.")
			return
		}
		log.Printf("Reconciled enrollment count on %d class(es).", n)
	}
}

// Schedule registers the jobs on a new cron scheduler. The caller starts and
// stops it.
func Schedule(spec string, r Recounter, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, ReconcileEnrollmentCounts(r, timeout)); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return c, nil
}
