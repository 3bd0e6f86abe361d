package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"medray-api/internal/delivery/dto"
	"medray-api/internal/usecase"
	"medray-api/pkg/response"
	"medray-api/pkg/validator"

	"github.com/spf13/cast"
)

// multipartOverhead leaves room for the vitals fields next to the image.
const multipartOverhead = 1 << 20

type RayHandler struct {
	rayUsecase    usecase.RayUsecase
	validator     *validator.CustomValidator
	maxImageBytes int64
}

func NewRayHandler(rayUsecase usecase.RayUsecase, validator *validator.CustomValidator, maxImageBytes int64) *RayHandler {
	return &RayHandler{
		rayUsecase:    rayUsecase,
		validator:     validator,
		maxImageBytes: maxImageBytes,
	}
}

// Upload stores a chest X-ray with optional vitals and runs the AI analysis
// @Summary Upload a ray
// @Tags Rays
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "JPEG or PNG image"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /rays [post]
func (h *RayHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxImageBytes + multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			fieldError(w, "image", usecase.ErrImageTooLarge)
			return
		}
		response.BadRequest(w, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, fieldErrs := parseUploadForm(r)
	if len(fieldErrs) > 0 {
		response.ValidationError(w, fieldErrs)
		return
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		req.FileName = header.Filename
		// One byte past the limit is enough to reject oversize images.
		req.Image, err = io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
		if err != nil {
			response.BadRequest(w, "Failed to read image")
			return
		}
	}

	if err := h.validator.Validate(req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	ray, err := h.rayUsecase.Upload(r.Context(), identity, req)
	if err != nil {
		h.writeError(w, err, "Failed to upload ray")
		return
	}

	response.Created(w, "Ray uploaded successfully", ray)
}

// List returns the caller's rays, newest first
// @Summary List rays
// @Tags Rays
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /rays [get]
func (h *RayHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	rays, err := h.rayUsecase.List(r.Context(), identity)
	if err != nil {
		response.InternalServerError(w, "Failed to get rays")
		return
	}

	response.Success(w, http.StatusOK, "Rays retrieved successfully", rays)
}

// @Summary Get a ray
// @Tags Rays
// @Security BearerAuth
// @Produce json
// @Param id path string true "Ray ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /rays/{id} [get]
func (h *RayHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}
	rayID, ok := pathID(w, r, "id", "ray")
	if !ok {
		return
	}

	ray, err := h.rayUsecase.Get(r.Context(), identity, rayID)
	if err != nil {
		h.writeError(w, err, "Failed to get ray")
		return
	}

	response.Success(w, http.StatusOK, "Ray retrieved successfully", ray)
}

// @Summary Get a ray image
// @Tags Rays
// @Security BearerAuth
// @Produce image/jpeg,image/png
// @Param id path string true "Ray ID"
// @Router /rays/{id}/image [get]
func (h *RayHandler) Image(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}
	rayID, ok := pathID(w, r, "id", "ray")
	if !ok {
		return
	}

	image, err := h.rayUsecase.Image(r.Context(), identity, rayID)
	if err != nil {
		h.writeError(w, err, "Failed to get ray image")
		return
	}

	writeImage(w, image)
}

// @Summary Delete a ray
// @Tags Rays
// @Security BearerAuth
// @Produce json
// @Param id path string true "Ray ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /rays/{id} [delete]
func (h *RayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}
	rayID, ok := pathID(w, r, "id", "ray")
	if !ok {
		return
	}

	if err := h.rayUsecase.Delete(r.Context(), identity, rayID); err != nil {
		h.writeError(w, err, "Failed to delete ray")
		return
	}

	response.Success(w, http.StatusOK, "Ray deleted successfully", nil)
}

func (h *RayHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrRayNotFound):
		response.NotFound(w, "Ray not found")
	case errors.Is(err, usecase.ErrRayImageMissing):
		response.NotFound(w, "Ray image not found")
	case errors.Is(err, usecase.ErrImageRequired),
		errors.Is(err, usecase.ErrImageTooLarge),
		errors.Is(err, usecase.ErrUnsupportedImageType),
		errors.Is(err, usecase.ErrInvalidImage):
		fieldError(w, "image", err)
	default:
		response.InternalServerError(w, fallback)
	}
}

// parseUploadForm coerces the optional vitals and flags of an upload form.
func parseUploadForm(r *http.Request) (*dto.UploadRayRequest, map[string]string) {
	req := &dto.UploadRayRequest{}
	errs := map[string]string{}

	if v := formValue(r, "temperature"); v != "" {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			errs["temperature"] = "temperature must be a number"
		} else {
			req.Temperature = &f
		}
	}

	for field, dst := range map[string]**int{
		"systolic_bp": &req.SystolicBP,
		"heart_rate":  &req.HeartRate,
	} {
		v := formValue(r, field)
		if v == "" {
			continue
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			errs[field] = field + " must be an integer"
			continue
		}
		*dst = &n
	}

	for field, dst := range map[string]*bool{
		"has_cough":     &req.HasCough,
		"has_headaches": &req.HasHeadaches,
	} {
		v := formValue(r, field)
		if v == "" {
			continue
		}
		b, err := cast.ToBoolE(v)
		if err != nil {
			errs[field] = field + " must be a boolean"
			continue
		}
		*dst = b
	}

	if v := formValue(r, "can_smell_taste"); v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			errs["can_smell_taste"] = "can_smell_taste must be a boolean"
		} else {
			req.CanSmellTaste = &b
		}
	}

	return req, errs
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

func writeImage(w http.ResponseWriter, image *dto.RayImage) {
	w.Header().Set("Content-Type", image.ContentType)
	w.Header().Set("Content-Length", fmt.Sprint(len(image.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", image.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(image.Data)
}
