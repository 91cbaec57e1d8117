package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mealtrace/catering/internal/platform/ist"
)

// Scheduler runs the generator once per day at a fixed regional hour.
type Scheduler struct {
	gen    *Generator
	hour   int
	logger zerolog.Logger
	now    func() time.Time
}

func NewScheduler(gen *Generator, hour int, logger zerolog.Logger) *Scheduler {
	return &Scheduler{gen: gen, hour: hour, logger: logger, now: time.Now}
}

// nextRun returns the next instant of the configured hour in regional time,
// strictly after now.
func (s *Scheduler) nextRun(now time.Time) time.Time {
	local := now.In(ist.Location)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, 0, 0, 0, ist.Location)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// Start blocks until ctx is cancelled, firing one generator run per day.
func (s *Scheduler) Start(ctx context.Context) {
	for {
		next := s.nextRun(s.now())
		s.logger.Info().Time("next_run", next).Msg("daily generation scheduled")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		report, err := s.gen.Run(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("daily generation failed")
			continue
		}
		created := 0
		for _, r := range report.Results {
			if r.Action == "created" {
				created++
			}
		}
		s.logger.Info().
			Int("plans", report.Count).
			Int("created", created).
			Msg("daily generation complete")
	}
}
