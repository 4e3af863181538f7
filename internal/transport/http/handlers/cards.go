package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/burakzaferozcan/Vaultify/internal/transport/http/middleware"
	"github.com/burakzaferozcan/Vaultify/internal/usecase"
)

// CardHandler exposes the card vault endpoints.
type CardHandler struct {
	cards *usecase.CardService
}

// NewCardHandler constructs CardHandler.
func NewCardHandler(cards *usecase.CardService) *CardHandler {
	return &CardHandler{cards: cards}
}

// RegisterRoutes binds the card endpoints onto an authenticated group.
func (h *CardHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.PUT("/:id", h.update)
	r.DELETE("/:id", h.remove)
}

var cardErrorCases = []ErrorCase{
	{Err: usecase.ErrCardNotFound, Status: http.StatusNotFound, Message: "card not found"},
}

func (h *CardHandler) create(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req CardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid card payload"))
		return
	}

	view, err := h.cards.Create(c.Request.Context(), accountID, req.toDomain(), middleware.GetRequestMetadata(c))
	if err != nil {
		RespondWithMappedError(c, err, cardErrorCases, http.StatusInternalServerError, "failed to create card")
		return
	}

	c.JSON(http.StatusCreated, toCardResponse(view))
}

func (h *CardHandler) list(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	views, err := h.cards.GetAll(c.Request.Context(), accountID)
	if err != nil {
		RespondWithMappedError(c, err, cardErrorCases, http.StatusInternalServerError, "failed to list cards")
		return
	}

	c.JSON(http.StatusOK, toCardResponses(views))
}

func (h *CardHandler) get(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	view, err := h.cards.GetByID(c.Request.Context(), accountID, c.Param("id"), middleware.GetRequestMetadata(c))
	if err != nil {
		RespondWithMappedError(c, err, cardErrorCases, http.StatusInternalServerError, "failed to load card")
		return
	}

	c.JSON(http.StatusOK, toCardResponse(view))
}

func (h *CardHandler) update(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req CardPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid card payload"))
		return
	}

	view, err := h.cards.Update(c.Request.Context(), accountID, c.Param("id"), req.toDomain(), middleware.GetRequestMetadata(c))
	if err != nil {
		RespondWithMappedError(c, err, cardErrorCases, http.StatusInternalServerError, "failed to update card")
		return
	}

	c.JSON(http.StatusOK, toCardResponse(view))
}

func (h *CardHandler) remove(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.cards.Delete(c.Request.Context(), accountID, c.Param("id"), middleware.GetRequestMetadata(c)); err != nil {
		RespondWithMappedError(c, err, cardErrorCases, http.StatusInternalServerError, "failed to delete card")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "card deleted"})
}
