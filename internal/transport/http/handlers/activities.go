package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/burakzaferozcan/Vaultify/internal/transport/http/middleware"
	"github.com/burakzaferozcan/Vaultify/internal/usecase"
)

// ActivityHandler exposes read-only audit trail endpoints. The trail is
// append-only; there are no write endpoints here.
type ActivityHandler struct {
	activities *usecase.ActivityService
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(activities *usecase.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// RegisterRoutes binds the activity endpoints onto an authenticated group.
func (h *ActivityHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.recent)
	r.GET("/stats", h.stats)
	r.GET("/security", h.securityEvents)
}

func (h *ActivityHandler) recent(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	activities, err := h.activities.Recent(c.Request.Context(), accountID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load activities"))
		return
	}

	c.JSON(http.StatusOK, toActivityResponses(activities))
}

func (h *ActivityHandler) stats(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	stats, err := h.activities.Stats(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load activity stats"))
		return
	}

	c.JSON(http.StatusOK, toActivityStatsResponse(stats))
}

func (h *ActivityHandler) securityEvents(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.activities.SecurityEvents(c.Request.Context(), accountID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load security events"))
		return
	}

	c.JSON(http.StatusOK, toActivityResponses(events))
}
