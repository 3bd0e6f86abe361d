package jobs

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"medray-api/internal/domain/entity"
	"medray-api/internal/infrastructure/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRayRepository struct{ mock.Mock }

func (m *mockRayRepository) Create(ctx context.Context, ray *entity.Ray) error { return nil }
func (m *mockRayRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ray, error) {
	return nil, nil
}
func (m *mockRayRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*entity.Ray, error) {
	return nil, nil
}
func (m *mockRayRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Ray, error) {
	return nil, nil
}
func (m *mockRayRepository) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (m *mockRayRepository) ApplyAnalysis(ctx context.Context, id uuid.UUID, analysis entity.RayAnalysis, analyzedAt time.Time) (int64, error) {
	return 0, nil
}

func (m *mockRayRepository) FindRetryable(ctx context.Context, pendingBefore time.Time, maxAttempts, limit int) ([]entity.Ray, error) {
	args := m.Called(ctx, pendingBefore, maxAttempts, limit)
	rays, _ := args.Get(0).([]entity.Ray)
	return rays, args.Error(1)
}

type mockAnalyzer struct{ mock.Mock }

func (m *mockAnalyzer) Analyze(ctx context.Context, ray *entity.Ray) error {
	return m.Called(ctx, ray).Error(0)
}

func newTestJob(t *testing.T) (*RayRetryJob, *mockRayRepository, *mockAnalyzer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	repo := new(mockRayRepository)
	analyzer := new(mockAnalyzer)
	job := NewRayRetryJob(log, repo, analyzer, client, 3, 2*time.Minute)
	job.now = func() time.Time { return time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC) }
	return job, repo, analyzer, mr
}

func TestRayRetryJob_RetriesCandidates(t *testing.T) {
	job, repo, analyzer, mr := newTestJob(t)
	rays := []entity.Ray{{ID: uuid.New()}, {ID: uuid.New()}}
	repo.On("FindRetryable", mock.Anything, time.Date(2030, 3, 4, 9, 58, 0, 0, time.UTC), 3, rayRetryBatchSize).Return(rays, nil)
	analyzer.On("Analyze", mock.Anything, mock.Anything).Return(nil).Twice()

	require.NoError(t, job.Run(context.Background()))

	analyzer.AssertExpectations(t)
	assert.False(t, mr.Exists(cache.RayRetryLockKey))
}

func TestRayRetryJob_SkipsWhenLocked(t *testing.T) {
	job, repo, _, mr := newTestJob(t)
	require.NoError(t, mr.Set(cache.RayRetryLockKey, "other-instance"))

	require.NoError(t, job.Run(context.Background()))

	repo.AssertNotCalled(t, "FindRetryable", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	got, err := mr.Get(cache.RayRetryLockKey)
	require.NoError(t, err)
	assert.Equal(t, "other-instance", got)
}

func TestRayRetryJob_AllFailed(t *testing.T) {
	job, repo, analyzer, _ := newTestJob(t)
	repo.On("FindRetryable", mock.Anything, mock.Anything, 3, rayRetryBatchSize).Return([]entity.Ray{{ID: uuid.New()}}, nil)
	analyzer.On("Analyze", mock.Anything, mock.Anything).Return(errors.New("image missing"))

	assert.Error(t, job.Run(context.Background()))
}

func TestRayRetryJob_NothingToDo(t *testing.T) {
	job, repo, analyzer, _ := newTestJob(t)
	repo.On("FindRetryable", mock.Anything, mock.Anything, 3, rayRetryBatchSize).Return([]entity.Ray{}, nil)

	require.NoError(t, job.Run(context.Background()))
	analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

type countingJob struct{ runs chan struct{} }

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	select {
	case j.runs <- struct{}{}:
	default:
	}
	return nil
}

func TestScheduler_RunsRegisteredJob(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewScheduler(log, time.UTC)
	job := &countingJob{runs: make(chan struct{}, 1)}

	require.NoError(t, s.Register("@every 1s", job))
	assert.Error(t, s.Register("not a spec", job))

	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-job.runs:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
