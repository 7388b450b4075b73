package handlers

import (
	"net/http"

	"beautycita/services/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DeviceHandler struct {
	Notifications notification.NotificationService
	Logger        *zap.Logger
}

func NewDeviceHandler(n notification.NotificationService, logger *zap.Logger) *DeviceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceHandler{Notifications: n, Logger: logger}
}

// RegisterDeviceToken handles POST /api/devices/token.
func (h *DeviceHandler) RegisterDeviceToken(c *gin.Context) {
	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if err := h.Notifications.RegisterDevice(c.Request.Context(), c.GetString("role"), c.GetString("userID"), input.Token); err != nil {
		h.Logger.Error("RegisterDeviceToken: failed to store token", zap.String("userID", c.GetString("userID")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register device"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device token registered"})
}
