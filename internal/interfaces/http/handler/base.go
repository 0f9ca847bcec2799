package handler

import (
	"errors"
	"net/http"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/auth"
	"github.com/erp/pricing/internal/interfaces/http/dto"
	"github.com/erp/pricing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "X-Request-ID"

// defaultTenantID is the fallback tenant for unauthenticated development
// requests that carry neither a JWT claim nor an X-Tenant-ID header.
var defaultTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// BaseHandler provides the response helpers shared by all HTTP handlers.
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// getTenantID resolves the tenant for the request. JWT claims win over the
// X-Tenant-ID header; when both are absent the development tenant is used.
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	tenantIDStr := middleware.GetJWTTenantID(c)
	if tenantIDStr == "" {
		tenantIDStr = c.GetHeader(middleware.TenantHeaderKey)
	}
	if tenantIDStr == "" {
		return defaultTenantID, nil
	}
	return uuid.Parse(tenantIDStr)
}

// currentActor builds the access-policy actor for the authenticated caller.
// Full JWT claims win; otherwise the actor is reconstructed from the identity
// keys the auth middleware placed in context. Reports false when the request
// carries no verified identity.
func currentActor(c *gin.Context) (pricing.Actor, bool) {
	if claims := middleware.GetJWTClaims(c); claims != nil {
		actor, err := auth.ActorFromClaims(claims)
		if err != nil {
			return pricing.Actor{}, false
		}
		return actor, true
	}
	tenantID, err := uuid.Parse(middleware.GetJWTTenantID(c))
	if err != nil {
		return pricing.Actor{}, false
	}
	userID, err := uuid.Parse(middleware.GetJWTUserID(c))
	if err != nil {
		return pricing.Actor{}, false
	}
	return pricing.Actor{
		UserID:   userID,
		TenantID: tenantID,
		Roles:    middleware.GetJWTRoles(c),
	}, true
}

// Success sends a 200 response wrapping data in the standard envelope.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with pagination metadata.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response wrapping data in the standard envelope.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error envelope with an explicit HTTP status.
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error envelope, deriving the HTTP status from code.
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

func (h *BaseHandler) UnprocessableEntity(c *gin.Context, code, message string) {
	h.Error(c, http.StatusUnprocessableEntity, code, message)
}

func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

func (h *BaseHandler) TooManyRequests(c *gin.Context, message string) {
	h.Error(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, message)
}

// ValidationError sends a 400 response carrying per-field validation details.
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// writeDomainError maps a *shared.DomainError (including wrapped ones) to its
// HTTP representation. It reports false when err is not a domain error.
func (h *BaseHandler) writeDomainError(c *gin.Context, err error) bool {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	code := dto.NormalizeErrorCode(domainErr.Code)
	h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
	return true
}

// HandleDomainError converts a domain error to its HTTP response. Errors of
// unknown types are reported as internal errors without leaking detail.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	if h.writeDomainError(c, err) {
		return
	}
	h.InternalError(c, "An unexpected error occurred")
}

// HandleError handles any error from the application layer. A nil error is a
// no-op so handlers can call it unconditionally.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	h.HandleDomainError(c, err)
}
