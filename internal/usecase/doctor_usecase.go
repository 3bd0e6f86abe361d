package usecase

import (
	"context"
	"errors"

	"medray-api/internal/converter"
	"medray-api/internal/delivery/dto"
	"medray-api/internal/domain/entity"
	"medray-api/internal/domain/repository"
	"medray-api/internal/infrastructure/storage"
	"medray-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotDoctor       = errors.New("only doctors can access this resource")
	ErrPatientNotFound = errors.New("patient not found")
	ErrNoteNotFound    = errors.New("note not found")
)

// DoctorUsecase is the doctor workspace. Notes and statuses are always scoped
// to identity.UserID as author.
type DoctorUsecase interface {
	ListPatients(ctx context.Context, identity entity.Identity) ([]dto.DoctorPatientResponse, error)
	CreateNote(ctx context.Context, identity entity.Identity, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	UpdateNote(ctx context.Context, identity entity.Identity, noteID uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	DeleteNote(ctx context.Context, identity entity.Identity, noteID uuid.UUID) error
	PatientNotes(ctx context.Context, identity entity.Identity, patientID uuid.UUID) ([]dto.NoteResponse, error)
	RayAI(ctx context.Context, identity entity.Identity, rayID uuid.UUID) (*dto.RayAIResponse, error)
	RayImage(ctx context.Context, identity entity.Identity, rayID uuid.UUID) (*dto.RayImage, error)
	SetPatientStatus(ctx context.Context, identity entity.Identity, req *dto.SetPatientStatusRequest) (*dto.PatientStatusResponse, error)
}

type doctorUsecase struct {
	log          *logrus.Logger
	userRepo     repository.UserRepository
	rayRepo      repository.RayRepository
	noteRepo     repository.MedicalNoteRepository
	statusRepo   repository.PatientStatusRepository
	blobStore    storage.BlobStore
	auditService service.AuditService
}

func NewDoctorUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	rayRepo repository.RayRepository,
	noteRepo repository.MedicalNoteRepository,
	statusRepo repository.PatientStatusRepository,
	blobStore storage.BlobStore,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		log:          log,
		userRepo:     userRepo,
		rayRepo:      rayRepo,
		noteRepo:     noteRepo,
		statusRepo:   statusRepo,
		blobStore:    blobStore,
		auditService: auditService,
	}
}

// ListPatients returns everyone with an appointment with the doctor. Patients
// the doctor never labelled are reported as New.
func (u *doctorUsecase) ListPatients(ctx context.Context, identity entity.Identity) ([]dto.DoctorPatientResponse, error) {
	if !identity.IsDoctor() {
		return nil, ErrNotDoctor
	}

	patients, err := u.userRepo.FindPatientsOfDoctor(ctx, identity.UserID)
	if err != nil {
		u.log.Warnf("Failed to find patients of doctor %s: %+v", identity.UserID, err)
		return nil, err
	}

	patientIDs := make([]uuid.UUID, 0, len(patients))
	for _, p := range patients {
		patientIDs = append(patientIDs, p.ID)
	}

	statuses, err := u.statusRepo.FindByDoctor(ctx, identity.UserID, patientIDs)
	if err != nil {
		u.log.Warnf("Failed to find patient statuses of doctor %s: %+v", identity.UserID, err)
		return nil, err
	}
	statusByPatient := make(map[uuid.UUID]entity.PatientStatusValue, len(statuses))
	for _, s := range statuses {
		statusByPatient[s.PatientID] = s.Status
	}

	responses := make([]dto.DoctorPatientResponse, 0, len(patients))
	for i := range patients {
		status, ok := statusByPatient[patients[i].ID]
		if !ok {
			status = entity.PatientStatusNew
		}
		responses = append(responses, converter.PatientToDoctorResponse(&patients[i], status))
	}
	return responses, nil
}

func (u *doctorUsecase) CreateNote(ctx context.Context, identity entity.Identity, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	if !identity.IsDoctor() {
		return nil, ErrNotDoctor
	}

	patient, err := u.findPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	note := &entity.MedicalNote{
		DoctorID:  identity.UserID,
		PatientID: patient.ID,
		Note:      req.Note,
	}

	if req.RayID != nil && *req.RayID != "" {
		rayID, err := uuid.Parse(*req.RayID)
		if err != nil {
			return nil, ErrRayNotFound
		}
		ray, err := u.rayRepo.FindByIDAndOwner(ctx, rayID, patient.ID)
		if err != nil {
			u.log.Warnf("Failed to find ray %s: %+v", rayID, err)
			return nil, err
		}
		if ray == nil {
			return nil, ErrRayNotFound
		}
		note.RayID = &ray.ID
		note.Ray = ray
	}

	if err := u.noteRepo.Create(ctx, note); err != nil {
		u.log.Warnf("Failed to create note: %+v", err)
		return nil, err
	}

	response := converter.NoteToResponse(note)
	_ = u.auditService.LogCreate(ctx, &identity.UserID, entity.AuditActionNoteCreate, "medical_note", note.ID.String(), map[string]interface{}{
		"patient_id": note.PatientID,
		"ray_id":     note.RayID,
	})

	return response, nil
}

func (u *doctorUsecase) UpdateNote(ctx context.Context, identity entity.Identity, noteID uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	if !identity.IsDoctor() {
		return nil, ErrNotDoctor
	}

	note, err := u.findNote(ctx, identity, noteID)
	if err != nil {
		return nil, err
	}
	oldText := note.Note

	rows, err := u.noteRepo.UpdateText(ctx, note.ID, identity.UserID, req.Note)
	if err != nil {
		u.log.Warnf("Failed to update note %s: %+v", note.ID, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNoteNotFound
	}
	note.Note = req.Note

	_ = u.auditService.LogUpdate(ctx, &identity.UserID, entity.AuditActionNoteUpdate, "medical_note", note.ID.String(),
		map[string]string{"note": oldText}, map[string]string{"note": req.Note})

	return converter.NoteToResponse(note), nil
}

func (u *doctorUsecase) DeleteNote(ctx context.Context, identity entity.Identity, noteID uuid.UUID) error {
	if !identity.IsDoctor() {
		return ErrNotDoctor
	}

	note, err := u.findNote(ctx, identity, noteID)
	if err != nil {
		return err
	}

	rows, err := u.noteRepo.Delete(ctx, note.ID, identity.UserID)
	if err != nil {
		u.log.Warnf("Failed to delete note %s: %+v", note.ID, err)
		return err
	}
	if rows == 0 {
		return ErrNoteNotFound
	}

	_ = u.auditService.LogDelete(ctx, &identity.UserID, entity.AuditActionNoteDelete, "medical_note", note.ID.String(), converter.NoteToResponse(note))

	return nil
}

func (u *doctorUsecase) PatientNotes(ctx context.Context, identity entity.Identity, patientID uuid.UUID) ([]dto.NoteResponse, error) {
	if !identity.IsDoctor() {
		return nil, ErrNotDoctor
	}

	notes, err := u.noteRepo.FindByDoctorAndPatient(ctx, identity.UserID, patientID)
	if err != nil {
		u.log.Warnf("Failed to find notes for patient %s: %+v", patientID, err)
		return nil, err
	}
	return converter.NotesToResponse(notes), nil
}

// RayAI exposes the AI verdict of any ray to doctors.
func (u *doctorUsecase) RayAI(ctx context.Context, identity entity.Identity, rayID uuid.UUID) (*dto.RayAIResponse, error) {
	ray, err := u.findRay(ctx, identity, rayID)
	if err != nil {
		return nil, err
	}

	return &dto.RayAIResponse{
		Ray:     converter.RayToResponse(ray),
		Patient: converter.UserToResponse(ray.User),
	}, nil
}

func (u *doctorUsecase) RayImage(ctx context.Context, identity entity.Identity, rayID uuid.UUID) (*dto.RayImage, error) {
	ray, err := u.findRay(ctx, identity, rayID)
	if err != nil {
		return nil, err
	}
	return loadRayImage(ctx, u.log, u.blobStore, ray)
}

func (u *doctorUsecase) SetPatientStatus(ctx context.Context, identity entity.Identity, req *dto.SetPatientStatusRequest) (*dto.PatientStatusResponse, error) {
	if !identity.IsDoctor() {
		return nil, ErrNotDoctor
	}

	patient, err := u.findPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	status := &entity.PatientStatus{
		DoctorID:  identity.UserID,
		PatientID: patient.ID,
		Status:    entity.PatientStatusValue(req.Status),
	}

	if err := u.statusRepo.Upsert(ctx, status); err != nil {
		u.log.Warnf("Failed to upsert patient status: %+v", err)
		return nil, err
	}

	_ = u.auditService.LogEvent(ctx, &identity.UserID, entity.AuditActionPatientStatusUpsert, entity.JSON{
		"patient_id": patient.ID.String(),
		"status":     req.Status,
	})

	return converter.PatientStatusToResponse(status), nil
}

func (u *doctorUsecase) findPatient(ctx context.Context, rawID string) (*entity.User, error) {
	patientID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrPatientNotFound
	}

	patient, err := u.userRepo.FindByID(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	return patient, nil
}

func (u *doctorUsecase) findNote(ctx context.Context, identity entity.Identity, noteID uuid.UUID) (*entity.MedicalNote, error) {
	note, err := u.noteRepo.FindByIDAndDoctor(ctx, noteID, identity.UserID)
	if err != nil {
		u.log.Warnf("Failed to find note %s: %+v", noteID, err)
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

func (u *doctorUsecase) findRay(ctx context.Context, identity entity.Identity, rayID uuid.UUID) (*entity.Ray, error) {
	if !identity.IsDoctor() {
		return nil, ErrNotDoctor
	}

	ray, err := u.rayRepo.FindByID(ctx, rayID)
	if err != nil {
		u.log.Warnf("Failed to find ray %s: %+v", rayID, err)
		return nil, err
	}
	if ray == nil {
		return nil, ErrRayNotFound
	}
	return ray, nil
}
