package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
	"github.com/burakzaferozcan/Vaultify/internal/transport/http/middleware"
	"github.com/burakzaferozcan/Vaultify/internal/usecase"
)

// PasswordHandler exposes the password vault endpoints.
type PasswordHandler struct {
	credentials *usecase.CredentialService
}

// NewPasswordHandler constructs PasswordHandler.
func NewPasswordHandler(credentials *usecase.CredentialService) *PasswordHandler {
	return &PasswordHandler{credentials: credentials}
}

// RegisterRoutes binds the password endpoints onto an authenticated group.
func (h *PasswordHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.GET("", h.list)
	r.GET("/search", h.search)
	r.GET("/export", h.export)
	r.GET("/:id", h.get)
	r.GET("/:id/decrypt", h.decrypt)
	r.PUT("/:id", h.update)
	r.DELETE("/:id", h.remove)
}

var passwordErrorCases = []ErrorCase{
	{Err: usecase.ErrCredentialNotFound, Status: http.StatusNotFound, Message: "password entry not found"},
}

func (h *PasswordHandler) create(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PasswordEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password entry payload"))
		return
	}

	created, err := h.credentials.Create(c.Request.Context(), accountID, domain.Credential{
		Title:    req.Title,
		Username: req.Username,
		Secret:   req.Password,
		URL:      req.URL,
		Notes:    req.Notes,
	}, middleware.GetRequestMetadata(c))
	if err != nil {
		RespondWithMappedError(c, err, passwordErrorCases, http.StatusInternalServerError, "failed to create password entry")
		return
	}

	c.JSON(http.StatusCreated, toPasswordEntryResponse(created))
}

func (h *PasswordHandler) list(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	credentials, err := h.credentials.GetAll(c.Request.Context(), accountID)
	if err != nil {
		RespondWithMappedError(c, err, passwordErrorCases, http.StatusInternalServerError, "failed to list password entries")
		return
	}

	c.JSON(http.StatusOK, toPasswordEntryResponses(credentials))
}

func (h *PasswordHandler) search(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	// "q" is accepted as a legacy alias for "query".
	query := c.Query("query")
	if query == "" {
		query = c.Query("q")
	}

	results, err := h.credentials.Search(c.Request.Context(), accountID, query, middleware.GetRequestMetadata(c))
	if err != nil {
		RespondWithMappedError(c, err, passwordErrorCases, http.StatusInternalServerError, "search failed")
		return
	}

	c.JSON(http.StatusOK, toPasswordEntryResponses(results))
}

func (h *PasswordHandler) get(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	credential, err := h.credentials.GetByID(c.Request.Context(), accountID, c.Param("id"), middleware.GetRequestMetadata(c))
	if err != nil {
		RespondWithMappedError(c, err, passwordErrorCases, http.StatusInternalServerError, "failed to load password entry")
		return
	}

	c.JSON(http.StatusOK, toPasswordEntryResponse(credential))
}

func (h *PasswordHandler) decrypt(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	plaintext, err := h.credentials.Decrypt(c.Request.Context(), accountID, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, passwordErrorCases, http.StatusInternalServerError, "failed to decrypt password entry")
		return
	}

	c.JSON(http.StatusOK, DecryptResponse{Password: plaintext})
}

func (h *PasswordHandler) update(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PasswordEntryPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password entry payload"))
		return
	}

	updated, err := h.credentials.Update(c.Request.Context(), accountID, c.Param("id"), domain.CredentialPatch{
		Title:    req.Title,
		Username: req.Username,
		Secret:   req.Password,
		URL:      req.URL,
		Notes:    req.Notes,
	}, middleware.GetRequestMetadata(c))
	if err != nil {
		RespondWithMappedError(c, err, passwordErrorCases, http.StatusInternalServerError, "failed to update password entry")
		return
	}

	c.JSON(http.StatusOK, toPasswordEntryResponse(updated))
}

func (h *PasswordHandler) remove(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.credentials.Delete(c.Request.Context(), accountID, c.Param("id"), middleware.GetRequestMetadata(c)); err != nil {
		RespondWithMappedError(c, err, passwordErrorCases, http.StatusInternalServerError, "failed to delete password entry")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password entry deleted"})
}

func (h *PasswordHandler) export(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	format := usecase.ExportFormat(c.DefaultQuery("format", "json"))
	if format != usecase.ExportJSON && format != usecase.ExportCSV {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "format must be json or csv"))
		return
	}

	out, err := h.credentials.Export(c.Request.Context(), accountID, format, middleware.GetRequestMetadata(c))
	if err != nil {
		RespondWithMappedError(c, err, passwordErrorCases, http.StatusInternalServerError, "export failed")
		return
	}

	filename := fmt.Sprintf("vaultify-passwords-%s.%s", time.Now().UTC().Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	contentType := "application/json"
	if format == usecase.ExportCSV {
		contentType = "text/csv"
	}
	c.Data(http.StatusOK, contentType, out)
}
