package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a unit of recurring background work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on cron specs. A run that is still in
// progress when the next tick fires is skipped.
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
	ctx  context.Context
	stop context.CancelFunc
}

func NewScheduler(log *logrus.Logger, loc *time.Location) *Scheduler {
	ctx, stop := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log})),
		),
		log:  log,
		ctx:  ctx,
		stop: stop,
	}
}

func (s *Scheduler) Register(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		entry := s.log.WithField("job", job.Name())
		if err := job.Run(s.ctx); err != nil {
			entry.Warnf("Job failed: %+v", err)
			return
		}
		entry.WithField("duration", time.Since(start).String()).Debug("Job finished")
	})
	if err != nil {
		return fmt.Errorf("register job %s: %w", job.Name(), err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Infof("Job scheduler started with %d job(s)", len(s.cron.Entries()))
}

// Stop cancels running jobs and waits for them to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.stop()
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Timed out waiting for running jobs to stop")
	}
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	log *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithFields(toFields(keysAndValues)).WithError(err).Error(msg)
}

func toFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
