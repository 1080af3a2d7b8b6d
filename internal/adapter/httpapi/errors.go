package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/eslsoft/vocstudy/internal/entity"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// toStatus maps domain errors onto HTTP status codes and stable error codes.
func toStatus(err error) (int, string) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, entity.ErrInvalidWordCount),
		errors.Is(err, entity.ErrInvalidPolicy),
		errors.Is(err, entity.ErrInvalidMode),
		errors.Is(err, entity.ErrInvalidSwipe),
		errors.Is(err, entity.ErrInvalidFilter),
		errors.Is(err, entity.ErrUnknownCard),
		errors.Is(err, entity.ErrUnknownWord):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, entity.ErrSetNotFound):
		return http.StatusNotFound, "set_not_found"
	case errors.Is(err, entity.ErrNoActiveSession):
		return http.StatusNotFound, "no_active_session"
	case errors.Is(err, entity.ErrNoSnapshot):
		return http.StatusNotFound, "no_snapshot"
	case errors.Is(err, entity.ErrNoLastSession):
		return http.StatusNotFound, "no_last_session"
	case errors.Is(err, entity.ErrEmptySelection):
		return http.StatusConflict, "empty_selection"
	case errors.Is(err, entity.ErrNoWeakWords):
		return http.StatusConflict, "no_weak_words"
	case errors.Is(err, entity.ErrModeMismatch):
		return http.StatusConflict, "mode_mismatch"
	case errors.Is(err, entity.ErrAnswerLocked):
		return http.StatusConflict, "answer_locked"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := toStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		msg = "internal error"
	}
	h.writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
