package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/finsight/advisor-service/internal/errs"
	"github.com/finsight/advisor-service/internal/models"
	"github.com/finsight/advisor-service/internal/scoring"
	"github.com/finsight/advisor-service/internal/service"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type askRequest struct {
	Question string `json:"question"`
}

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.Username == "" || req.Email == "" || len(req.Password) < 6 {
		h.respondError(w, http.StatusBadRequest, errors.New("username, email and a password of at least 6 characters are required"))
		return
	}

	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.respondError(w, http.StatusConflict, errors.New("registration failed"))
		return
	}
	h.respondJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// SubmitProfile handles financial profile submission and scoring
func (h *Handler) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.FinancialProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		h.respondError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	result, err := h.svc.SubmitProfile(r.Context(), &profile)
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// GetProfile returns the stored financial profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetProfile(r.Context())
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, profile)
}

// Dashboard returns profile, features, scores and projections
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.svc.Dashboard(r.Context())
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dashboard)
}

// Ask handles an advisory question
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	exchange, err := h.svc.Ask(r.Context(), req.Question)
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, exchange)
}

// History returns the advisory exchange history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	history, err := h.svc.History(r.Context(), limit)
	if err != nil {
		h.mapError(w, err)
		return
	}
	if history == nil {
		history = []models.AdvisoryExchange{}
	}
	h.respondJSON(w, http.StatusOK, history)
}

// Tips returns personalized financial tips
func (h *Handler) Tips(w http.ResponseWriter, r *http.Request) {
	tips, err := h.svc.Tips(r.Context())
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string][]string{"tips": tips})
}

// TrainModel handles an explicit training run. With a JSON batch in
// the body it trains on that batch; with an empty body it retrains
// from the configured dataset file.
func (h *Handler) TrainModel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Samples []scoring.Sample `json:"samples"`
	}
	// An empty body means "retrain from file"; anything else must
	// decode cleanly.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.respondError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	var artifact *models.ModelArtifact
	var err error
	if len(req.Samples) > 0 {
		artifact, err = h.svc.TrainModel(req.Samples)
	} else {
		artifact, err = h.svc.TrainFromFile()
	}
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, artifact)
}

// LatestModel returns the currently served model artifact
func (h *Handler) LatestModel(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.svc.LatestArtifact()
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, artifact)
}

// mapError translates the error taxonomy into HTTP statuses.
func (h *Handler) mapError(w http.ResponseWriter, err error) {
	var validationErr *errs.ValidationError
	var scoringErr *errs.ScoringError
	var trainingErr *errs.TrainingError
	var upstreamErr *errs.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		h.respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Fields: validationErr.Fields,
		})
	case errors.As(err, &scoringErr):
		h.respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: "scoring unavailable: " + scoringErr.Reason,
		})
	case errors.As(err, &trainingErr):
		h.respondJSON(w, http.StatusBadRequest, errorResponse{
			Error: trainingErr.Error(),
		})
	case errors.As(err, &upstreamErr):
		h.respondJSON(w, http.StatusBadGateway, errorResponse{
			Error: "advice unavailable, please try again later",
		})
	case errors.Is(err, errs.ErrNotFound):
		h.respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		h.log.Errorf("Internal error: %v", err)
		h.respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, err error) {
	h.respondJSON(w, status, errorResponse{Error: err.Error()})
}
