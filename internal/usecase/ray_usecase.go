package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"time"

	"medray-api/internal/converter"
	"medray-api/internal/delivery/dto"
	"medray-api/internal/domain/entity"
	"medray-api/internal/domain/repository"
	"medray-api/internal/infrastructure/classifier"
	"medray-api/internal/infrastructure/storage"
	"medray-api/internal/service"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrRayNotFound          = errors.New("ray not found")
	ErrRayImageMissing      = errors.New("ray image not found")
	ErrImageRequired        = errors.New("image is required")
	ErrImageTooLarge        = errors.New("image exceeds the maximum allowed size")
	ErrUnsupportedImageType = errors.New("image must be a JPEG or PNG file")
	ErrInvalidImage         = errors.New("image could not be decoded")
)

var allowedImageTypes = []string{"image/jpeg", "image/png"}

// Classifier is the external chest X-ray model.
type Classifier interface {
	Probe(ctx context.Context) error
	Classify(ctx context.Context, fileName string, image []byte) ([]byte, error)
}

type RayUsecase interface {
	Upload(ctx context.Context, identity entity.Identity, req *dto.UploadRayRequest) (*dto.RayResponse, error)
	List(ctx context.Context, identity entity.Identity) ([]dto.RayResponse, error)
	Get(ctx context.Context, identity entity.Identity, rayID uuid.UUID) (*dto.RayResponse, error)
	Image(ctx context.Context, identity entity.Identity, rayID uuid.UUID) (*dto.RayImage, error)
	Delete(ctx context.Context, identity entity.Identity, rayID uuid.UUID) error
	// Analyze re-runs classification for a stored ray. Used by the retry job.
	Analyze(ctx context.Context, ray *entity.Ray) error
}

type rayUsecase struct {
	log           *logrus.Logger
	rayRepo       repository.RayRepository
	blobStore     storage.BlobStore
	classifier    Classifier
	auditService  service.AuditService
	maxImageBytes int64
	now           func() time.Time
}

func NewRayUsecase(
	log *logrus.Logger,
	rayRepo repository.RayRepository,
	blobStore storage.BlobStore,
	xrayClassifier Classifier,
	auditService service.AuditService,
	maxImageBytes int64,
) RayUsecase {
	return &rayUsecase{
		log:           log,
		rayRepo:       rayRepo,
		blobStore:     blobStore,
		classifier:    xrayClassifier,
		auditService:  auditService,
		maxImageBytes: maxImageBytes,
		now:           time.Now,
	}
}

// Upload stores the image and a pending ray, then classifies it. The
// classification outcome never fails the upload: it is written onto the ray.
func (u *rayUsecase) Upload(ctx context.Context, identity entity.Identity, req *dto.UploadRayRequest) (*dto.RayResponse, error) {
	contentType, ext, err := u.checkImage(req.Image)
	if err != nil {
		return nil, err
	}

	rayID := uuid.New()
	key := path.Join("rays", identity.UserID.String(), rayID.String()+ext)

	ray := &entity.Ray{
		ID:            rayID,
		UserID:        identity.UserID,
		ImagePath:     key,
		OriginalName:  req.FileName,
		ContentType:   contentType,
		SizeBytes:     int64(len(req.Image)),
		SystolicBP:    req.SystolicBP,
		HeartRate:     req.HeartRate,
		HasCough:      req.HasCough,
		HasHeadaches:  req.HasHeadaches,
		CanSmellTaste: true,
		AnalysisState: entity.AnalysisPending,
	}
	if req.Temperature != nil {
		ray.Temperature = decimal.NewNullDecimal(decimal.NewFromFloat(*req.Temperature).Round(1))
	}
	if req.CanSmellTaste != nil {
		ray.CanSmellTaste = *req.CanSmellTaste
	}

	if err := u.blobStore.Put(ctx, key, req.Image); err != nil {
		u.log.Warnf("Failed to store ray image: %+v", err)
		return nil, err
	}

	if err := u.rayRepo.Create(ctx, ray); err != nil {
		u.log.Warnf("Failed to create ray: %+v", err)
		if delErr := u.blobStore.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			u.log.Warnf("Failed to remove orphaned ray image %s: %+v", key, delErr)
		}
		return nil, err
	}

	_ = u.auditService.LogCreate(ctx, &identity.UserID, entity.AuditActionRayUpload, "ray", ray.ID.String(), map[string]interface{}{
		"image_path": ray.ImagePath,
		"size_bytes": ray.SizeBytes,
	})

	// The analysis must land even if the client goes away mid-request.
	if err := u.analyze(context.WithoutCancel(ctx), ray, req.Image); err != nil {
		u.log.Warnf("Failed to record analysis for ray %s: %+v", ray.ID, err)
	}

	return converter.RayToResponse(ray), nil
}

func (u *rayUsecase) List(ctx context.Context, identity entity.Identity) ([]dto.RayResponse, error) {
	rays, err := u.rayRepo.FindByOwner(ctx, identity.UserID)
	if err != nil {
		u.log.Warnf("Failed to list rays of %s: %+v", identity.UserID, err)
		return nil, err
	}
	return converter.RaysToResponse(rays), nil
}

func (u *rayUsecase) Get(ctx context.Context, identity entity.Identity, rayID uuid.UUID) (*dto.RayResponse, error) {
	ray, err := u.findOwned(ctx, identity, rayID)
	if err != nil {
		return nil, err
	}
	return converter.RayToResponse(ray), nil
}

func (u *rayUsecase) Image(ctx context.Context, identity entity.Identity, rayID uuid.UUID) (*dto.RayImage, error) {
	ray, err := u.findOwned(ctx, identity, rayID)
	if err != nil {
		return nil, err
	}
	return loadRayImage(ctx, u.log, u.blobStore, ray)
}

func (u *rayUsecase) Delete(ctx context.Context, identity entity.Identity, rayID uuid.UUID) error {
	ray, err := u.findOwned(ctx, identity, rayID)
	if err != nil {
		return err
	}

	if err := u.rayRepo.Delete(ctx, ray.ID); err != nil {
		u.log.Warnf("Failed to delete ray %s: %+v", ray.ID, err)
		return err
	}

	if err := u.blobStore.Delete(ctx, ray.ImagePath); err != nil {
		u.log.Warnf("Failed to delete ray image %s: %+v", ray.ImagePath, err)
	}

	_ = u.auditService.LogDelete(ctx, &identity.UserID, entity.AuditActionRayDelete, "ray", ray.ID.String(), converter.RayToResponse(ray))

	return nil
}

func (u *rayUsecase) Analyze(ctx context.Context, ray *entity.Ray) error {
	data, err := u.blobStore.Get(ctx, ray.ImagePath)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return ErrRayImageMissing
		}
		return err
	}
	return u.analyze(ctx, ray, data)
}

// analyze runs the classification phase and applies its outcome with a single
// conditional update. ray is refreshed in place when the update lands.
func (u *rayUsecase) analyze(ctx context.Context, ray *entity.Ray, data []byte) error {
	if err := u.classifier.Probe(ctx); err != nil {
		u.log.Warnf("Classifier probe failed: %+v", err)
	}

	var analysis entity.RayAnalysis
	body, err := u.classifier.Classify(ctx, path.Base(ray.ImagePath), data)
	var statusErr *classifier.StatusError
	switch {
	case errors.As(err, &statusErr):
		u.log.Warnf("Classifier rejected ray %s: status %d: %s", ray.ID, statusErr.StatusCode, statusErr.Body)
		analysis = service.DiagnoseRejected(statusErr.StatusCode)
	case err != nil:
		u.log.Warnf("Classifier unavailable for ray %s: %+v", ray.ID, err)
		analysis = service.DiagnoseUnavailable(err)
	default:
		analysis = service.DiagnoseResponse(body)
	}

	analyzedAt := u.now()
	rows, err := u.rayRepo.ApplyAnalysis(ctx, ray.ID, analysis, analyzedAt)
	if err != nil {
		return err
	}
	if rows == 0 {
		// Another attempt already recorded a verdict.
		return nil
	}

	ray.AIStatus = analysis.Status
	ray.AISummary = &analysis.Summary
	ray.AIConfidence = analysis.Confidence
	ray.DifferentialDiagnosis = analysis.Differential
	ray.AnalysisState = analysis.State
	ray.AnalysisAttempts++
	ray.AnalyzedAt = &analyzedAt

	_ = u.auditService.LogEvent(ctx, &ray.UserID, entity.AuditActionRayAnalyze, entity.JSON{
		"ray_id": ray.ID.String(),
		"state":  string(analysis.State),
	})

	return nil
}

func (u *rayUsecase) findOwned(ctx context.Context, identity entity.Identity, rayID uuid.UUID) (*entity.Ray, error) {
	ray, err := u.rayRepo.FindByIDAndOwner(ctx, rayID, identity.UserID)
	if err != nil {
		u.log.Warnf("Failed to find ray %s: %+v", rayID, err)
		return nil, err
	}
	if ray == nil {
		return nil, ErrRayNotFound
	}
	return ray, nil
}

// checkImage enforces size, sniffed content type and decodability.
// It returns the detected MIME type and file extension.
func (u *rayUsecase) checkImage(data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", ErrImageRequired
	}
	if int64(len(data)) > u.maxImageBytes {
		return "", "", ErrImageTooLarge
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return "", "", ErrUnsupportedImageType
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", "", ErrInvalidImage
	}

	return mtype.String(), mtype.Extension(), nil
}

func loadRayImage(ctx context.Context, log *logrus.Logger, blobStore storage.BlobStore, ray *entity.Ray) (*dto.RayImage, error) {
	data, err := blobStore.Get(ctx, ray.ImagePath)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, ErrRayImageMissing
		}
		log.Warnf("Failed to read ray image %s: %+v", ray.ImagePath, err)
		return nil, err
	}

	return &dto.RayImage{
		ContentType: ray.ContentType,
		FileName:    path.Base(ray.ImagePath),
		Data:        data,
	}, nil
}
