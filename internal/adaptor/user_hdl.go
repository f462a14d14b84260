package adaptor

import (
	"net/http"

	"pdao-registration/internal/dto/request"
	"pdao-registration/internal/schema"
	"pdao-registration/internal/usecase"
	"pdao-registration/pkg/utils"

	"go.uber.org/zap"
)

type UserHandler struct {
	service  usecase.UserService
	pipeline *schema.Pipeline
	log      *zap.Logger
}

func NewUserHandler(service usecase.UserService, pipeline *schema.Pipeline, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service:  service,
		pipeline: pipeline,
		log:      log.With(zap.String("handler", "user")),
	}
}

// GetProfile handles GET /api/users/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	// set by the auth middleware
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", profile)
}

// UpdateProfile handles PUT /api/users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		utils.ResponseFieldError(w, http.StatusBadRequest, "body", "Request body is too large or unreadable")
		return
	}

	req, errs := h.pipeline.ParseUpdate(body)
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "update profile")
		return
	}

	utils.ResponseSuccess(w, "Profile updated successfully", profile)
}

// ListUsers handles GET /api/admin/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.UserListRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 10),
		},
		Status: query.Get("status"),
		Role:   query.Get("role"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Invalid query parameters", validationErrors)
		return
	}

	users, err := h.service.ListUsers(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list users")
		return
	}

	utils.ResponseSuccess(w, "Users retrieved successfully", users)
}
