package jobs

import (
	"context"
	"errors"
	"time"

	"medray-api/internal/domain/entity"
	"medray-api/internal/domain/repository"
	"medray-api/internal/infrastructure/cache"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const rayRetryBatchSize = 20

// releaseLockScript deletes the lock only if this run still owns it.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RayAnalyzer interface {
	Analyze(ctx context.Context, ray *entity.Ray) error
}

// RayRetryJob re-runs classification for rays stuck in pending or failed.
// A Redis lock keeps concurrent instances from retrying the same batch.
type RayRetryJob struct {
	log         *logrus.Logger
	rayRepo     repository.RayRepository
	analyzer    RayAnalyzer
	redisClient *redis.Client
	maxAttempts int
	grace       time.Duration
	lockTTL     time.Duration
	now         func() time.Time
}

func NewRayRetryJob(
	log *logrus.Logger,
	rayRepo repository.RayRepository,
	analyzer RayAnalyzer,
	redisClient *redis.Client,
	maxAttempts int,
	grace time.Duration,
) *RayRetryJob {
	return &RayRetryJob{
		log:         log,
		rayRepo:     rayRepo,
		analyzer:    analyzer,
		redisClient: redisClient,
		maxAttempts: maxAttempts,
		grace:       grace,
		lockTTL:     10 * time.Minute,
		now:         time.Now,
	}
}

func (j *RayRetryJob) Name() string {
	return "ray-retry"
}

func (j *RayRetryJob) Run(ctx context.Context) error {
	token := uuid.NewString()
	acquired, err := j.redisClient.SetNX(ctx, cache.RayRetryLockKey, token, j.lockTTL).Result()
	if err != nil {
		return err
	}
	if !acquired {
		j.log.Debug("Ray retry already running elsewhere, skipping")
		return nil
	}
	defer func() {
		if err := releaseLockScript.Run(context.WithoutCancel(ctx), j.redisClient, []string{cache.RayRetryLockKey}, token).Err(); err != nil {
			j.log.Warnf("Failed to release ray retry lock: %+v", err)
		}
	}()

	rays, err := j.rayRepo.FindRetryable(ctx, j.now().Add(-j.grace), j.maxAttempts, rayRetryBatchSize)
	if err != nil {
		return err
	}

	var failed int
	for i := range rays {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := j.analyzer.Analyze(ctx, &rays[i]); err != nil {
			failed++
			j.log.Warnf("Failed to re-analyze ray %s: %+v", rays[i].ID, err)
		}
	}

	j.log.WithFields(logrus.Fields{
		"candidates": len(rays),
		"failed":     failed,
	}).Info("Ray retry pass finished")

	if failed > 0 && failed == len(rays) {
		return errors.New("every ray in the retry batch failed")
	}
	return nil
}
