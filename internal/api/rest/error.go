package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nereus-labs/datanft-gateway/internal/domain"
	"github.com/nereus-labs/datanft-gateway/internal/logger"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	errCodeBadRequest       ErrorCode = "bad_request"
	errCodeNotFound         ErrorCode = "not_found"
	errCodeValidationFailed ErrorCode = "validation_failed"
	errCodeTxWouldFail      ErrorCode = "transaction_would_fail"
	errCodeNoAccessService  ErrorCode = "no_access_service"

	// Server errors (5xx)
	errCodeInternalError ErrorCode = "internal_error"
	errCodeServiceError  ErrorCode = "service_error"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail contains error information
type errorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...string) {
	response := errorResponse{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	}

	if len(details) > 0 {
		response.Error.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, errCodeBadRequest, message, details...)
}

// respondDomainError maps a failure from the flow layers onto the HTTP
// surface. Unrecognized errors become opaque 500s; their detail is logged,
// never leaked.
func respondDomainError(c *gin.Context, err error) {
	var stageErr *domain.StageError
	if errors.As(err, &stageErr) {
		c.Header("X-Failed-Stage", string(stageErr.Stage))
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		respondWithError(c, http.StatusBadRequest, errCodeBadRequest, "Invalid input", err.Error())
	case errors.Is(err, domain.ErrAssetNotFound):
		respondWithError(c, http.StatusNotFound, errCodeNotFound, "Asset not found", err.Error())
	case errors.Is(err, domain.ErrDDOValidationFailed):
		respondWithError(c, http.StatusUnprocessableEntity, errCodeValidationFailed, "Metadata validation failed", err.Error())
	case errors.Is(err, domain.ErrTransactionWouldFail):
		respondWithError(c, http.StatusUnprocessableEntity, errCodeTxWouldFail, "Transaction would fail", err.Error())
	case errors.Is(err, domain.ErrNoAccessService):
		respondWithError(c, http.StatusConflict, errCodeNoAccessService, "Asset has no access service", err.Error())
	case errors.Is(err, domain.ErrExternalService):
		respondWithError(c, http.StatusBadGateway, errCodeServiceError, "Upstream service failure", err.Error())
	default:
		logger.ErrorCtx(c.Request.Context(), err,
			zap.String("path", c.Request.URL.Path))
		respondWithError(c, http.StatusInternalServerError, errCodeInternalError, "Internal server error")
	}
}
