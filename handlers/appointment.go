package handlers

import (
	"net/http"

	"beautycita/models"
	"beautycita/services/appointment"
	"beautycita/services/chat"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler serves appointment lookups, stylist confirmation and chat history.
type AppointmentHandler struct {
	Appointments appointment.AppointmentService
	Chat         *chat.Service
	Logger       *zap.Logger
}

func NewAppointmentHandler(appts appointment.AppointmentService, chatSvc *chat.Service, logger *zap.Logger) *AppointmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentHandler{Appointments: appts, Chat: chatSvc, Logger: logger}
}

// ConfirmAppointment handles POST /api/stylist/appointments/:id/confirm.
func (h *AppointmentHandler) ConfirmAppointment(c *gin.Context) {
	appt, err := h.Appointments.ConfirmAppointment(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": appt.Status, "appointment": appt})
}

// ListStylistAppointments handles GET /api/stylist/appointments?status=.
func (h *AppointmentHandler) ListStylistAppointments(c *gin.Context) {
	list, err := h.Appointments.ListForStylist(c.Request.Context(), c.GetString("userID"), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.Appointment{}
	}
	c.JSON(http.StatusOK, gin.H{"appointments": list})
}

// GetAppointment handles GET /api/appointments/:id for either participant.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	appt, err := h.Appointments.GetForParticipant(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// CancelAppointment handles DELETE /api/appointments/:id.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	appt, err := h.Appointments.CancelAppointment(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": appt.Status, "appointment": appt})
}

// ChatHistory handles GET /api/appointments/:id/messages.
func (h *AppointmentHandler) ChatHistory(c *gin.Context) {
	msgs, err := h.Chat.History(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
