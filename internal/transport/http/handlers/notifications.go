package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/burakzaferozcan/Vaultify/internal/usecase"
)

// NotificationHandler exposes on-demand sweep triggers. The scheduler runs
// the same sweeps daily; these endpoints exist for manual runs.
type NotificationHandler struct {
	notifications *usecase.NotificationService
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(notifications *usecase.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterRoutes binds the sweep endpoints onto an authenticated group.
func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/check-expiry", h.checkExpiry)
	r.POST("/check-spending", h.checkSpending)
}

func (h *NotificationHandler) checkExpiry(c *gin.Context) {
	result, err := h.notifications.CheckExpiringCards(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "expiry sweep failed"))
		return
	}

	c.JSON(http.StatusOK, SweepResponse{
		Checked:  result.Checked,
		Notified: result.Notified,
		Failed:   result.Failed,
	})
}

func (h *NotificationHandler) checkSpending(c *gin.Context) {
	result, err := h.notifications.CheckSpendingLimits(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "spending sweep failed"))
		return
	}

	c.JSON(http.StatusOK, SweepResponse{
		Checked:  result.Checked,
		Notified: result.Notified,
		Failed:   result.Failed,
	})
}
