package adaptor

import (
	"net/http"

	"pdao-registration/internal/schema"
	"pdao-registration/internal/usecase"
	"pdao-registration/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service  usecase.AuthService
	pipeline *schema.Pipeline
	log      *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, pipeline *schema.Pipeline, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:  service,
		pipeline: pipeline,
		log:      log.With(zap.String("handler", "auth")),
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		utils.ResponseFieldError(w, http.StatusBadRequest, "body", "Request body is too large or unreadable")
		return
	}

	req, errs := h.pipeline.ParseRegistration(body)
	if len(errs) > 0 {
		h.log.Info("Register validation failed", zap.Int("errors", len(errs)))
		writeValidation(w, errs)
		return
	}

	response, err := h.service.Register(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "register")
		return
	}

	utils.ResponseCreated(w, "Registration successful", response)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		utils.ResponseFieldError(w, http.StatusBadRequest, "body", "Request body is too large or unreadable")
		return
	}

	req, errs := h.pipeline.ParseLogin(body)
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	response, err := h.service.Login(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", response)
}
