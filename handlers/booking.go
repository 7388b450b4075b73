package handlers

import (
	"context"
	"net/http"

	"beautycita/models"
	"beautycita/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServiceLookup resolves a catalogue service by id.
type ServiceLookup interface {
	GetService(ctx context.Context, id string) (*models.ServiceRef, error)
}

// BookingHandler exposes booking sessions over REST. Every route responds with the
// session snapshot.
type BookingHandler struct {
	Sessions *booking.SessionRegistry
	Services ServiceLookup
	Logger   *zap.Logger
}

func NewBookingHandler(sessions *booking.SessionRegistry, services ServiceLookup, logger *zap.Logger) *BookingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingHandler{Sessions: sessions, Services: services, Logger: logger}
}

func (h *BookingHandler) workflow(c *gin.Context) (*booking.Workflow, bool) {
	w, err := h.Sessions.Get(c.Param("sessionID"), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return w, true
}

func (h *BookingHandler) respond(c *gin.Context, w *booking.Workflow, status int, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, w.Snapshot())
}

// StartSession handles POST /api/booking/session.
func (h *BookingHandler) StartSession(c *gin.Context) {
	var input struct {
		Category string   `json:"category"`
		Lat      *float64 `json:"lat"`
		Lng      *float64 `json:"lng"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
	}

	w := h.Sessions.Start(c.GetString("userID"), input.Category)
	if input.Lat != nil && input.Lng != nil {
		if err := w.SetLocation(models.GeoPoint{Lat: *input.Lat, Lng: *input.Lng}); err != nil {
			h.Logger.Debug("Ignoring client location", zap.String("sessionID", w.ID()), zap.Error(err))
		}
	}
	c.JSON(http.StatusCreated, w.Snapshot())
}

// GetSession handles GET /api/booking/session/:sessionID.
func (h *BookingHandler) GetSession(c *gin.Context) {
	if w, ok := h.workflow(c); ok {
		c.JSON(http.StatusOK, w.Snapshot())
	}
}

func (h *BookingHandler) SelectCategory(c *gin.Context) {
	w, ok := h.workflow(c)
	if !ok {
		return
	}
	var input struct {
		Category string `json:"category" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	h.respond(c, w, http.StatusOK, w.SelectCategory(input.Category))
}

func (h *BookingHandler) SelectService(c *gin.Context) {
	w, ok := h.workflow(c)
	if !ok {
		return
	}
	var input struct {
		ServiceID string `json:"serviceId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	svc, err := h.Services.GetService(c.Request.Context(), input.ServiceID)
	if err != nil {
		h.Logger.Warn("Service lookup failed", zap.String("serviceID", input.ServiceID), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		return
	}
	h.respond(c, w, http.StatusOK, w.SelectService(*svc))
}

func (h *BookingHandler) SetSchedule(c *gin.Context) {
	w, ok := h.workflow(c)
	if !ok {
		return
	}
	var input struct {
		Date         string `json:"date"`
		Time         string `json:"time"`
		FlexibleTime *bool  `json:"flexibleTime"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	flexible := w.Snapshot().Draft.FlexibleTime
	if input.FlexibleTime != nil {
		flexible = *input.FlexibleTime
	}
	h.respond(c, w, http.StatusOK, w.SetSchedule(input.Date, input.Time, flexible))
}

func (h *BookingHandler) SetLocation(c *gin.Context) {
	w, ok := h.workflow(c)
	if !ok {
		return
	}
	var input struct {
		Lat *float64 `json:"lat" binding:"required"`
		Lng *float64 `json:"lng" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	h.respond(c, w, http.StatusOK, w.SetLocation(models.GeoPoint{Lat: *input.Lat, Lng: *input.Lng}))
}

// ListStylists handles GET /api/booking/session/:sessionID/stylists?q=&sort=.
func (h *BookingHandler) ListStylists(c *gin.Context) {
	w, ok := h.workflow(c)
	if !ok {
		return
	}
	stylists := w.Stylists(c.Query("q"), booking.ParseSortMode(c.Query("sort")))
	if stylists == nil {
		stylists = []models.CandidateStylist{}
	}
	snap := w.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"stylists":    stylists,
		"count":       len(stylists),
		"searchError": snap.SearchError,
	})
}

func (h *BookingHandler) SelectStylist(c *gin.Context) {
	w, ok := h.workflow(c)
	if !ok {
		return
	}
	var input struct {
		StylistID string `json:"stylistId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	h.respond(c, w, http.StatusOK, w.SelectStylist(input.StylistID))
}

func (h *BookingHandler) SetDetails(c *gin.Context) {
	w, ok := h.workflow(c)
	if !ok {
		return
	}
	var input struct {
		Notes         string               `json:"notes"`
		PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	h.respond(c, w, http.StatusOK, w.SetDetails(input.Notes, input.PaymentMethod))
}

// Next handles POST /api/booking/session/:sessionID/next.
func (h *BookingHandler) Next(c *gin.Context) {
	w, ok := h.workflow(c)
	if !ok {
		return
	}
	h.respond(c, w, http.StatusOK, w.Advance(c.Request.Context()))
}

func (h *BookingHandler) Back(c *gin.Context) {
	w, ok := h.workflow(c)
	if !ok {
		return
	}
	h.respond(c, w, http.StatusOK, w.Back())
}

func (h *BookingHandler) RetrySearch(c *gin.Context) {
	w, ok := h.workflow(c)
	if !ok {
		return
	}
	h.respond(c, w, http.StatusOK, w.RetrySearch(c.Request.Context()))
}

// CancelSession handles DELETE /api/booking/session/:sessionID.
func (h *BookingHandler) CancelSession(c *gin.Context) {
	if err := h.Sessions.Close(c.Param("sessionID"), c.GetString("userID")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking session cancelled"})
}
