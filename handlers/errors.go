package handlers

import (
	"errors"
	"net/http"

	"beautycita/services/appointment"
	"beautycita/services/booking"
	"beautycita/services/chat"
	"beautycita/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	var verr *booking.ValidationError
	var ierr *appointment.InvalidRequestError
	var sf *booking.SearchFailure
	var subf *booking.SubmissionFailure

	switch {
	case errors.As(err, &verr):
		utils.JSONFieldError(c, http.StatusUnprocessableEntity, verr.Field, verr.Message)
	case errors.As(err, &ierr):
		utils.JSONFieldError(c, http.StatusUnprocessableEntity, ierr.Field, ierr.Message)
	case errors.Is(err, booking.ErrSessionNotFound),
		errors.Is(err, appointment.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, appointment.ErrNotParticipant):
		utils.JSONError(c, http.StatusForbidden, "Access denied", err.Error())
	case errors.Is(err, booking.ErrWorkflowClosed),
		errors.Is(err, booking.ErrStepNotAllowed),
		errors.Is(err, booking.ErrNoPreviousStep),
		errors.Is(err, appointment.ErrNotPending),
		errors.Is(err, appointment.ErrAlreadyClosed):
		utils.JSONError(c, http.StatusConflict, "Request conflicts with current state", err.Error())
	case errors.Is(err, booking.ErrUnknownStylist),
		errors.Is(err, appointment.ErrStylistNotFound),
		errors.Is(err, appointment.ErrStylistInactive),
		errors.Is(err, appointment.ErrServiceNotFound),
		errors.Is(err, chat.ErrEmptyMessage):
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.As(err, &sf):
		utils.JSONError(c, http.StatusBadGateway, "Failed to load stylists. Please try again.", err.Error())
	case errors.As(err, &subf):
		utils.JSONError(c, http.StatusBadGateway, "Booking failed. Please try again.", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}
