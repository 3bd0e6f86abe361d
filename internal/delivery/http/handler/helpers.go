package handler

import (
	"encoding/json"
	"net/http"

	"medray-api/internal/delivery/http/middleware"
	"medray-api/internal/domain/entity"
	"medray-api/pkg/response"
	"medray-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// decodeAndValidate reads a JSON body into req and validates it. On failure
// the error response has already been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}

	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}

	return true
}

func identityOrUnauthorized(w http.ResponseWriter, r *http.Request) (entity.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
	}
	return identity, ok
}

func pathID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func fieldError(w http.ResponseWriter, field string, err error) {
	response.ValidationError(w, map[string]string{field: err.Error()})
}
