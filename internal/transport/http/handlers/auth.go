package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
	"github.com/burakzaferozcan/Vaultify/internal/transport/http/middleware"
	"github.com/burakzaferozcan/Vaultify/internal/usecase"
)

// AuthHandler exposes registration, login, and account endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds authentication routes, applying optional middleware
// ahead of the credential-accepting handlers.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, registerLimit, loginLimit gin.HandlerFunc) {
	if registerLimit != nil {
		r.POST("/register", registerLimit, h.register)
	} else {
		r.POST("/register", h.register)
	}
	if loginLimit != nil {
		r.POST("/login", loginLimit, h.login)
	} else {
		r.POST("/login", h.login)
	}
	r.POST("/logout", middleware.RequireAuth(h.auth), h.logout)
}

// RegisterAccountRoutes binds the authenticated profile endpoints.
func (h *AuthHandler) RegisterAccountRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.profile)
	r.PUT("/me", h.updateProfile)
	r.PUT("/me/password", h.changePassword)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	session, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password, middleware.GetRequestMetadata(c))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
		}, http.StatusInternalServerError, "registration failed")
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Token:   session.Token,
		Account: toAccountSummary(session.Account),
	})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, middleware.GetRequestMetadata(c))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid email or password"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token:   session.Token,
		Account: toAccountSummary(session.Account),
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	h.auth.Logout(c.Request.Context(), accountID, middleware.GetRequestMetadata(c))

	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) profile(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	account, err := h.auth.Profile(c.Request.Context(), accountID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, toAccountSummary(account))
}

func (h *AuthHandler) updateProfile(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}
	if req.Name == nil && req.Email == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "nothing to update"))
		return
	}

	account, err := h.auth.UpdateProfile(c.Request.Context(), accountID, domain.AccountPatch{
		Name:  req.Name,
		Email: req.Email,
	}, middleware.GetRequestMetadata(c))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
		}, http.StatusInternalServerError, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, toAccountSummary(account))
}

func (h *AuthHandler) changePassword(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password payload"))
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), accountID, req.CurrentPassword, req.NewPassword, middleware.GetRequestMetadata(c))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "current password is incorrect"},
		}, http.StatusInternalServerError, "failed to change password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}
