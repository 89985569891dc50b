package reminder

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler запускает ежедневный обход напоминаний в заданный час.
type Scheduler struct {
	service   *Service
	sweepHour int
	log       *slog.Logger
}

// NewScheduler создает новый Scheduler. sweepHour — час суток (0-23),
// в который запускается обход.
func NewScheduler(service *Service, sweepHour int, log *slog.Logger) *Scheduler {
	return &Scheduler{
		service:   service,
		sweepHour: sweepHour,
		log:       log,
	}
}

// Run блокируется до отмены контекста, раз в сутки вызывая RunDailySweep.
// Первый запуск откладывается до ближайшего наступления sweepHour.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		wait := untilNextRun(time.Now(), s.sweepHour)
		s.log.Info("next reminder sweep scheduled",
			slog.Duration("in", wait))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("reminder scheduler stopped")
			return
		case <-timer.C:
			s.service.RunDailySweep(ctx)
		}
	}
}

// untilNextRun возвращает время до ближайшего наступления часа hour.
// Если сегодняшний запуск уже прошел, планируется завтрашний.
func untilNextRun(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
