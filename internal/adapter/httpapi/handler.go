// Package httpapi exposes the study controller over JSON/HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/internal/usecase"
)

var errBadRequest = errors.New("bad request")

const maxBodyBytes = 1 << 16

type Handler struct {
	controller usecase.SessionController
	library    *usecase.Library
	validate   *validator.Validate
	logger     logrus.FieldLogger
}

func NewHandler(controller usecase.SessionController, library *usecase.Library, logger logrus.FieldLogger) *Handler {
	return &Handler{
		controller: controller,
		library:    library,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Routes returns the API router, meant to be mounted under /api.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/library", h.browseLibrary)
	r.Get("/stats", h.stats)
	r.Get("/sets/{id}", h.selectSet)
	r.Post("/sessions", h.startSession)
	r.Post("/progress/reset", h.resetProgress)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.view)
		r.Delete("/", h.endSession)
		r.Post("/swipe", h.swipe)
		r.Post("/flip", h.flip)
		r.Post("/answer", h.answer)
		r.Post("/cards/{cardID}/select", h.selectCard)
		r.Post("/resume", h.resume)
		r.Post("/repeat", h.repeat)
		r.Post("/relearn", h.relearn)
	})
	return r
}

type startSessionRequest struct {
	SetID  string `json:"setId" validate:"required"`
	Mode   string `json:"mode" validate:"required,oneof=flashcard learn matching"`
	Policy string `json:"policy" validate:"omitempty,oneof=all fixed unlearned custom"`
	Count  int    `json:"count" validate:"gte=0"`
}

type swipeRequest struct {
	Direction string `json:"direction" validate:"required"`
}

type answerRequest struct {
	OptionID entity.WordID `json:"optionId" validate:"required"`
}

type relearnRequest struct {
	Mode string `json:"mode" validate:"omitempty,oneof=flashcard learn matching"`
}

func (h *Handler) browseLibrary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	progress, err := entity.ParseProgressFilter(q.Get("progress"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.library.Browse(usecase.LibraryQuery{
		Search:   q.Get("search"),
		Progress: progress,
		Filter:   q.Get("filter"),
		OrderBy:  q.Get("order_by"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) stats(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.library.Stats())
}

func (h *Handler) selectSet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.controller.SelectSet(r.Context(), entity.SetByID(chi.URLParam(r, "id")))
	h.respond(w, r, detail, err)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	mode, err := entity.ParseStudyMode(req.Mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	policy, err := entity.ParseSelectionPolicy(req.Policy, req.Count)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.controller.StartSession(r.Context(), entity.SetByID(req.SetID), mode, policy)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	view, err := h.controller.View(r.Context())
	h.respond(w, r, view, err)
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.EndSession(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) swipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if !h.decode(w, r, &req) {
		return
	}
	dir, err := entity.ParseSwipeDirection(req.Direction)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.controller.Swipe(r.Context(), dir)
	h.respond(w, r, view, err)
}

func (h *Handler) flip(w http.ResponseWriter, r *http.Request) {
	view, err := h.controller.Flip(r.Context())
	h.respond(w, r, view, err)
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.controller.SubmitAnswer(r.Context(), req.OptionID)
	h.respond(w, r, view, err)
}

func (h *Handler) selectCard(w http.ResponseWriter, r *http.Request) {
	view, err := h.controller.SelectCard(r.Context(), chi.URLParam(r, "cardID"))
	h.respond(w, r, view, err)
}

func (h *Handler) resume(w http.ResponseWriter, r *http.Request) {
	view, err := h.controller.Resume(r.Context())
	h.respond(w, r, view, err)
}

func (h *Handler) repeat(w http.ResponseWriter, r *http.Request) {
	view, err := h.controller.RepeatLastSession(r.Context())
	h.respond(w, r, view, err)
}

func (h *Handler) relearn(w http.ResponseWriter, r *http.Request) {
	var req relearnRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.controller.StartRelearn(r.Context(), entity.StudyMode(req.Mode))
	h.respond(w, r, view, err)
}

func (h *Handler) resetProgress(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.ResetAllProgress(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads and validates a JSON body. An empty body decodes to the zero value.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeError(w, r, err)
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, body any, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, body)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Warn("failed to write response")
	}
}
