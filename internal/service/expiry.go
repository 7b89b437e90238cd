package service

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo/v4"
)

// ScheduleExpirySweep registers a recurring job that marks overdue pending
// reservations as expired.  Overlapping runs are skipped.
func ScheduleExpirySweep(sched gocron.Scheduler, svc *ReservationService, every time.Duration, log echo.Logger) (gocron.Job, error) {
	return sched.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			n, err := svc.SweepExpired(ctx)
			if err != nil {
				log.Errorf("expiry sweep: %v", err)
				return
			}
			if n > 0 {
				log.Infof("expiry sweep: %d reservation(s) expired", n)
			}
		}),
		gocron.WithName("reservation-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
}
