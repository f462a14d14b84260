package adaptor

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"pdao-registration/internal/data/repository"
	"pdao-registration/internal/schema"
	"pdao-registration/internal/usecase"
	"pdao-registration/pkg/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Auth   *AuthHandler
	User   *UserHandler
	Geo    *GeoHandler
	System *SystemHandler
}

func NewHandler(service *usecase.Service, pipeline *schema.Pipeline, repo *repository.Repository, info SystemInfo, log *zap.Logger) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(service.Auth, pipeline, log),
		User:   NewUserHandler(service.User, pipeline, log),
		Geo:    NewGeoHandler(service.Geo, log),
		System: NewSystemHandler(repo.Health, repo.Driver, info, log),
	}
}

// readBody reads at most maxBodyBytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func writeValidation(w http.ResponseWriter, errs schema.FieldErrors) {
	resp := utils.Response{
		Status:  false,
		Message: "Validation failed",
		Errors:  errs,
	}
	if len(errs) > 0 {
		resp.Field = errs[0].Field
		if len(errs) == 1 {
			resp.Message = errs[0].Message
		}
	}
	utils.WriteResponse(w, http.StatusBadRequest, resp)
}

// handleServiceError maps the usecase error types onto status codes. Anything
// unrecognised is logged and answered with a generic 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var (
		validationErr *usecase.ValidationError
		duplicateErr  *usecase.DuplicateError
		authnErr      *usecase.AuthenticationError
		authzErr      *usecase.AuthorizationError
	)

	switch {
	case errors.As(err, &validationErr):
		log.Info(operation+" validation failed", zap.Error(err))
		writeValidation(w, validationErr.Errors)

	case errors.As(err, &duplicateErr):
		log.Info(operation+" failed - duplicate", zap.String("field", duplicateErr.Field))
		utils.ResponseFieldError(w, http.StatusBadRequest, duplicateErr.Field, duplicateErr.Message)

	case errors.As(err, &authnErr):
		log.Info(operation+" failed - bad credentials", zap.String("field", authnErr.Field))
		utils.ResponseFieldError(w, http.StatusUnauthorized, authnErr.Field, authnErr.Message)

	case errors.As(err, &authzErr):
		log.Warn(operation+" failed - not allowed", zap.Int("status", authzErr.Status))
		utils.ResponseJSON(w, authzErr.Status, false, authzErr.Message, nil, nil)

	case errors.Is(err, usecase.ErrUserNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, "User not found")

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
