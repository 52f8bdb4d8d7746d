// Package http provides HTTP handlers for the identity vault.
package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bymjmazzei/par-noir/internal/httputil"
	"github.com/bymjmazzei/par-noir/internal/identity/domain"
	"github.com/bymjmazzei/par-noir/internal/identity/http/dto"
	identityUseCase "github.com/bymjmazzei/par-noir/internal/identity/usecase"
	customValidation "github.com/bymjmazzei/par-noir/internal/validation"
)

// IdentityHandler handles HTTP requests for the local identity wallet.
type IdentityHandler struct {
	wallet identityUseCase.WalletUseCase
	logger *slog.Logger
}

// NewIdentityHandler creates a new identity handler.
func NewIdentityHandler(wallet identityUseCase.WalletUseCase, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{
		wallet: wallet,
		logger: logger,
	}
}

// handleError collapses every authentication failure into
// domain.ErrAuthenticationFailed so the response never reveals which check
// rejected the request.
func (h *IdentityHandler) handleError(c *gin.Context, err error) {
	if domain.IsAuthenticationFailure(err) {
		err = domain.ErrAuthenticationFailed
	}
	httputil.HandleErrorGin(c, err, h.logger)
}

// bind decodes the JSON body into req and runs its validation.
func (h *IdentityHandler) bind(c *gin.Context, req interface{ Validate() error }) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return false
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return false
	}
	return true
}

// CreateHandler creates a new encrypted identity and stores it as version 1.
// POST /v1/identities
func (h *IdentityHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateIdentityRequest
	if !h.bind(c, &req) {
		return
	}

	version, err := h.wallet.Register(c.Request.Context(), req.ToInput())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIdentityToResponse(version))
}

// ListHandler lists the active version of every identity, most recently used first.
// GET /v1/identities
func (h *IdentityHandler) ListHandler(c *gin.Context) {
	versions, err := h.wallet.ListActive(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapIdentitiesToListResponse(versions))
}

// DirectoryHandler pages through the identities unlocked in this process.
// GET /v1/identities/directory?page=1&pageSize=20&status=&search=&sortBy=&sortOrder=
func (h *IdentityHandler) DirectoryHandler(c *gin.Context) {
	page, pageSize, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var q dto.DirectoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := q.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.wallet.Directory(c.Request.Context(), q.ToQuery(page, pageSize))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapPageToResponse(result))
}

// AuthenticateHandler unlocks the active version of an identity and issues a session.
// POST /v1/identities/:publicKey/authenticate
func (h *IdentityHandler) AuthenticateHandler(c *gin.Context) {
	var req dto.AuthenticateRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.wallet.Login(c.Request.Context(), c.Param("publicKey"), req.Passcode, req.Username)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapSessionToResponse(session))
}

// VersionsHandler lists the retained versions of an identity, newest first.
// GET /v1/identities/:publicKey/versions
func (h *IdentityHandler) VersionsHandler(c *gin.Context) {
	versions, err := h.wallet.Versions(c.Request.Context(), c.Param("publicKey"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapIdentitiesToListResponse(versions))
}

// UpdateNicknameHandler renames an identity by appending a new version.
// PUT /v1/identities/:publicKey/nickname
func (h *IdentityHandler) UpdateNicknameHandler(c *gin.Context) {
	var req dto.UpdateNicknameRequest
	if !h.bind(c, &req) {
		return
	}

	version, err := h.wallet.UpdateNickname(c.Request.Context(), c.Param("publicKey"), req.Nickname)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapIdentityToResponse(version))
}

// DeleteHandler removes every version of an identity.
// DELETE /v1/identities/:publicKey
func (h *IdentityHandler) DeleteHandler(c *gin.Context) {
	if err := h.wallet.Remove(c.Request.Context(), c.Param("publicKey")); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportHandler returns an export envelope for the selected identities.
// POST /v1/identities/export
func (h *IdentityHandler) ExportHandler(c *gin.Context) {
	var req dto.ExportRequest
	// An empty body exports every active identity.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	envelope, err := h.wallet.Export(c.Request.Context(), req.PublicKeys)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope)
}

// ImportHandler authenticates and stores every identity of an export envelope.
// POST /v1/identities/import
func (h *IdentityHandler) ImportHandler(c *gin.Context) {
	var req dto.ImportRequest
	if !h.bind(c, &req) {
		return
	}

	versions, err := h.wallet.Import(c.Request.Context(), req.Export, req.Passcode)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIdentitiesToListResponse(versions))
}

// VerifySessionHandler checks a session token against a DID.
// POST /v1/sessions/verify
func (h *IdentityHandler) VerifySessionHandler(c *gin.Context) {
	var req dto.VerifySessionRequest
	if !h.bind(c, &req) {
		return
	}

	claims, err := h.wallet.VerifySession(c.Request.Context(), req.Token, req.DID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapClaimsToResponse(claims))
}

// RegisterRoutes mounts the identity routes on a /v1 group. authLimiter, when
// not nil, guards the routes that check a passcode.
func (h *IdentityHandler) RegisterRoutes(v1 *gin.RouterGroup, authLimiter gin.HandlerFunc) {
	guarded := []gin.HandlerFunc{}
	if authLimiter != nil {
		guarded = append(guarded, authLimiter)
	}

	identities := v1.Group("/identities")
	{
		identities.POST("", h.CreateHandler)
		identities.GET("", h.ListHandler)
		identities.GET("/directory", h.DirectoryHandler)
		identities.POST("/export", h.ExportHandler)
		identities.POST("/import", append(guarded, h.ImportHandler)...)
		identities.POST("/:publicKey/authenticate", append(guarded, h.AuthenticateHandler)...)
		identities.GET("/:publicKey/versions", h.VersionsHandler)
		identities.PUT("/:publicKey/nickname", h.UpdateNicknameHandler)
		identities.DELETE("/:publicKey", h.DeleteHandler)
	}

	sessions := v1.Group("/sessions")
	{
		sessions.POST("/verify", h.VerifySessionHandler)
	}
}
