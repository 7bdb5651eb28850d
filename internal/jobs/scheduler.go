package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Pruner reconciles session bookkeeping that the store cannot expire on its
// own. *session.RedisStore satisfies it.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron     *cron.Cron
	sessions Pruner
	spec     string
	log      zerolog.Logger
}

func NewScheduler(sessions Pruner, spec string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:     c,
		sessions: sessions,
		spec:     spec,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.sessions == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.pruneSessions); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish, up to a bounded grace period.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) pruneSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.sessions.Prune(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session index prune failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("pruned stale session index entries")
	}
}
