package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"medray-api/internal/delivery/dto"
	"medray-api/internal/domain/entity"
	"medray-api/internal/infrastructure/classifier"
	"medray-api/internal/infrastructure/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type rayFixture struct {
	usecase    *rayUsecase
	rayRepo    *mockRayRepository
	blobStore  *storage.MemoryStore
	classifier *mockClassifier
	now        time.Time
}

func newRayFixture() *rayFixture {
	rayRepo := new(mockRayRepository)
	blobStore := storage.NewMemoryStore()
	xray := new(mockClassifier)
	uc := NewRayUsecase(quietLogger(), rayRepo, blobStore, xray, newMockAuditService(), 5120*1024).(*rayUsecase)
	now := time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	return &rayFixture{usecase: uc, rayRepo: rayRepo, blobStore: blobStore, classifier: xray, now: now}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUpload_PneumoniaVerdict(t *testing.T) {
	f := newRayFixture()
	patient := patientIdentity()
	img := pngBytes(t)
	temperature := 38.46
	heartRate := 96

	var stored *entity.Ray
	f.rayRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *entity.Ray) bool {
		stored = r
		return r.UserID == patient.UserID && r.AnalysisState == entity.AnalysisPending
	})).Return(nil)
	f.classifier.On("Probe", mock.Anything).Return(nil)
	f.classifier.On("Classify", mock.Anything, mock.Anything, img).Return([]byte(`{"has_pneumonia": true, "confidence": 0.87}`), nil)
	f.rayRepo.On("ApplyAnalysis", mock.Anything, mock.Anything, mock.MatchedBy(func(a entity.RayAnalysis) bool {
		return a.State == entity.AnalysisDone && *a.Status == entity.DiagnosisPneumonia && *a.Confidence == 87
	}), f.now).Return(int64(1), nil)

	resp, err := f.usecase.Upload(context.Background(), patient, &dto.UploadRayRequest{
		FileName:    "chest.png",
		Image:       img,
		Temperature: &temperature,
		HeartRate:   &heartRate,
		HasCough:    true,
	})

	require.NoError(t, err)
	require.NotNil(t, resp.AIStatus)
	assert.Equal(t, "Pneumonia", *resp.AIStatus)
	assert.Equal(t, 87, *resp.AIConfidence)
	assert.Contains(t, *resp.AISummary, "87%")
	assert.Contains(t, *resp.AISummary, "Pneumonia detected")
	assert.Equal(t, "done", resp.AnalysisState)
	assert.Equal(t, 1, resp.AnalysisAttempts)
	assert.Equal(t, 38.5, *resp.Temperature)
	assert.True(t, resp.CanSmellTaste)
	assert.Equal(t, "image/png", resp.ContentType)

	saved, err := f.blobStore.Get(context.Background(), stored.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, img, saved)
}

func TestUpload_ClassifierTimeoutStillSucceeds(t *testing.T) {
	f := newRayFixture()
	f.rayRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.classifier.On("Probe", mock.Anything).Return(errors.New("probe failed"))
	f.classifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)
	f.rayRepo.On("ApplyAnalysis", mock.Anything, mock.Anything, mock.MatchedBy(func(a entity.RayAnalysis) bool {
		return a.State == entity.AnalysisFailed && a.Status == nil
	}), mock.Anything).Return(int64(1), nil)

	resp, err := f.usecase.Upload(context.Background(), patientIdentity(), &dto.UploadRayRequest{FileName: "chest.png", Image: pngBytes(t)})

	require.NoError(t, err)
	assert.Nil(t, resp.AIStatus)
	assert.Nil(t, resp.AIConfidence)
	assert.Equal(t, "AI service temporarily unavailable - context deadline exceeded", *resp.AISummary)
	assert.Equal(t, "failed", resp.AnalysisState)
}

func TestUpload_ClassifierRejects(t *testing.T) {
	f := newRayFixture()
	f.rayRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.classifier.On("Probe", mock.Anything).Return(nil)
	f.classifier.On("Classify", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &classifier.StatusError{StatusCode: 502, Body: "bad gateway"})
	f.rayRepo.On("ApplyAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)

	resp, err := f.usecase.Upload(context.Background(), patientIdentity(), &dto.UploadRayRequest{FileName: "chest.png", Image: pngBytes(t)})

	require.NoError(t, err)
	assert.Equal(t, "AI analysis failed - classifier returned status 502", *resp.AISummary)
}

func TestUpload_AnalysisSurvivesClientCancellation(t *testing.T) {
	f := newRayFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	live := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
	f.rayRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.classifier.On("Probe", live).Return(nil)
	f.classifier.On("Classify", live, mock.Anything, mock.Anything).Return([]byte(`{"has_pneumonia": false, "confidence": 0.9}`), nil)
	f.rayRepo.On("ApplyAnalysis", live, mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)

	resp, err := f.usecase.Upload(ctx, patientIdentity(), &dto.UploadRayRequest{FileName: "chest.png", Image: pngBytes(t)})

	require.NoError(t, err)
	assert.Equal(t, "Normal", *resp.AIStatus)
	f.rayRepo.AssertExpectations(t)
}

func TestUpload_RejectsBadImages(t *testing.T) {
	f := newRayFixture()
	f.usecase.maxImageBytes = 1024

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"missing", nil, ErrImageRequired},
		{"too large", bytes.Repeat([]byte{0xFF}, 2048), ErrImageTooLarge},
		{"not an image", []byte("%PDF-1.4 not an x-ray"), ErrUnsupportedImageType},
		{"truncated png", []byte("\x89PNG\r\n\x1a\n\x00\x00garbage"), ErrInvalidImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.usecase.Upload(context.Background(), patientIdentity(), &dto.UploadRayRequest{FileName: "x", Image: tt.data})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	f.rayRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpload_CreateFailureRemovesImage(t *testing.T) {
	f := newRayFixture()
	var key string
	f.rayRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *entity.Ray) bool {
		key = r.ImagePath
		return true
	})).Return(errors.New("db down"))

	_, err := f.usecase.Upload(context.Background(), patientIdentity(), &dto.UploadRayRequest{FileName: "chest.png", Image: pngBytes(t)})

	assert.EqualError(t, err, "db down")
	_, err = f.blobStore.Get(context.Background(), key)
	assert.ErrorIs(t, err, storage.ErrBlobNotFound)
	f.classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything, mock.Anything)
}

func TestGet_ScopedToOwner(t *testing.T) {
	f := newRayFixture()
	patient := patientIdentity()
	rayID := uuid.New()
	f.rayRepo.On("FindByIDAndOwner", mock.Anything, rayID, patient.UserID).Return(nil, nil)

	_, err := f.usecase.Get(context.Background(), patient, rayID)

	assert.ErrorIs(t, err, ErrRayNotFound)
}

func TestDelete_RemovesRowAndImage(t *testing.T) {
	f := newRayFixture()
	patient := patientIdentity()
	ray := &entity.Ray{ID: uuid.New(), UserID: patient.UserID, ImagePath: "rays/a.png"}
	require.NoError(t, f.blobStore.Put(context.Background(), ray.ImagePath, []byte("img")))
	f.rayRepo.On("FindByIDAndOwner", mock.Anything, ray.ID, patient.UserID).Return(ray, nil)
	f.rayRepo.On("Delete", mock.Anything, ray.ID).Return(nil)

	require.NoError(t, f.usecase.Delete(context.Background(), patient, ray.ID))

	_, err := f.blobStore.Get(context.Background(), ray.ImagePath)
	assert.ErrorIs(t, err, storage.ErrBlobNotFound)
}

func TestImage_ReturnsStoredBytes(t *testing.T) {
	f := newRayFixture()
	patient := patientIdentity()
	ray := &entity.Ray{ID: uuid.New(), UserID: patient.UserID, ImagePath: "rays/p/b.png", ContentType: "image/png"}
	require.NoError(t, f.blobStore.Put(context.Background(), ray.ImagePath, []byte("img")))
	f.rayRepo.On("FindByIDAndOwner", mock.Anything, ray.ID, patient.UserID).Return(ray, nil)

	img, err := f.usecase.Image(context.Background(), patient, ray.ID)

	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "b.png", img.FileName)
	assert.Equal(t, []byte("img"), img.Data)
}

func TestAnalyze_MissingImage(t *testing.T) {
	f := newRayFixture()

	err := f.usecase.Analyze(context.Background(), &entity.Ray{ID: uuid.New(), ImagePath: "rays/gone.png"})

	assert.ErrorIs(t, err, ErrRayImageMissing)
}

func TestAnalyze_AlreadyDoneLeavesRayUntouched(t *testing.T) {
	f := newRayFixture()
	ray := &entity.Ray{ID: uuid.New(), ImagePath: "rays/c.png", AnalysisState: entity.AnalysisFailed, AnalysisAttempts: 1}
	require.NoError(t, f.blobStore.Put(context.Background(), ray.ImagePath, []byte("img")))
	f.classifier.On("Probe", mock.Anything).Return(nil)
	f.classifier.On("Classify", mock.Anything, "c.png", []byte("img")).Return([]byte(`{"has_pneumonia": false, "confidence": 0.4}`), nil)
	f.rayRepo.On("ApplyAnalysis", mock.Anything, ray.ID, mock.Anything, mock.Anything).Return(int64(0), nil)

	require.NoError(t, f.usecase.Analyze(context.Background(), ray))

	assert.Equal(t, entity.AnalysisFailed, ray.AnalysisState)
	assert.Equal(t, 1, ray.AnalysisAttempts)
}
