package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "beautycita/database/repository/appointment"
	"beautycita/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const scheduledAtLayout = "2006-01-02T15:04"

// DefaultConfirmWindow is how long a stylist has to accept a pending request.
const DefaultConfirmWindow = 10 * time.Minute

// DefaultAppointmentService implements AppointmentService.
type DefaultAppointmentService struct {
	store     Store
	stylists  StylistLookup
	services  ServiceLookup
	publisher ConfirmationPublisher
	push      Pusher
	reminders ReminderScheduler
	logger    *zap.Logger
	now       func() time.Time
	location  *time.Location
	window    time.Duration
}

// Options carries the optional collaborators of the service.
// ConfirmWindow bounds ConfirmAppointment, counted from creation; zero means
// DefaultConfirmWindow.
type Options struct {
	Services      ServiceLookup
	Push          Pusher
	Reminders     ReminderScheduler
	Logger        *zap.Logger
	Now           func() time.Time
	Location      *time.Location
	ConfirmWindow time.Duration
}

func NewDefaultAppointmentService(store Store, stylists StylistLookup, publisher ConfirmationPublisher, opts Options) *DefaultAppointmentService {
	s := &DefaultAppointmentService{
		store:     store,
		stylists:  stylists,
		services:  opts.Services,
		publisher: publisher,
		push:      opts.Push,
		reminders: opts.Reminders,
		logger:    opts.Logger,
		now:       opts.Now,
		location:  opts.Location,
		window:    opts.ConfirmWindow,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.window <= 0 {
		s.window = DefaultConfirmWindow
	}
	return s
}

// CreateAppointment stores a request. Stylists who auto-accept get it confirmed
// immediately; everyone else is pushed a pending request.
func (s *DefaultAppointmentService) CreateAppointment(ctx context.Context, req models.AppointmentRequest) (*models.AppointmentResult, error) {
	at, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	stylist, err := s.stylists.GetByID(ctx, req.StylistID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStylistNotFound, err)
	}
	if stylist.Status != "" && stylist.Status != "active" {
		return nil, ErrStylistInactive
	}

	var service *models.ServiceRef
	if s.services != nil {
		if service, err = s.services.GetService(ctx, req.ServiceID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrServiceNotFound, err)
		}
	}

	now := s.now()
	appt := models.Appointment{
		ID:            uuid.NewString(),
		ClientID:      req.ClientID,
		StylistID:     req.StylistID,
		ServiceID:     req.ServiceID,
		ScheduledAt:   req.ScheduledAt,
		FlexibleTime:  req.FlexibleTime,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
		Status:        models.AppointmentPending,
		CreatedAt:     now,
	}
	if stylist.AutoAccept {
		appt.Status = models.AppointmentConfirmed
		appt.ConfirmedAt = &now
	}

	if err := s.store.Create(ctx, &appt); err != nil {
		return nil, err
	}
	s.logger.Info("Appointment created",
		zap.String("appointmentID", appt.ID),
		zap.String("stylistID", appt.StylistID),
		zap.String("status", appt.Status))

	if appt.Status == models.AppointmentConfirmed {
		s.scheduleReminders(ctx, appt, at)
	} else if s.push != nil {
		body := "A client requested an appointment on " + at.Format("Jan 2 at 15:04")
		if service != nil {
			body = fmt.Sprintf("%s requested for %s", service.Name, at.Format("Jan 2 at 15:04"))
		}
		if err := s.push.SendStylistPushNotification(ctx, appt.StylistID, "New appointment request", body, map[string]string{
			"type":          "appointment_request",
			"appointmentId": appt.ID,
		}); err != nil {
			s.logger.Warn("Stylist push failed", zap.String("appointmentID", appt.ID), zap.Error(err))
		}
	}

	return &models.AppointmentResult{Status: appt.Status, Appointment: appt}, nil
}

func (s *DefaultAppointmentService) validate(req models.AppointmentRequest) (time.Time, error) {
	switch {
	case req.ClientID == "":
		return time.Time{}, &InvalidRequestError{Field: "clientId", Message: "missing client"}
	case req.ServiceID == "":
		return time.Time{}, &InvalidRequestError{Field: "serviceId", Message: "Please select a service"}
	case req.StylistID == "":
		return time.Time{}, &InvalidRequestError{Field: "stylistId", Message: "Please select a stylist"}
	case !req.PaymentMethod.Valid():
		return time.Time{}, &InvalidRequestError{Field: "paymentMethod", Message: "Please select a payment method"}
	}
	at, err := time.ParseInLocation(scheduledAtLayout, req.ScheduledAt, s.location)
	if err != nil {
		return time.Time{}, &InvalidRequestError{Field: "scheduledAt", Message: "Please select date and time"}
	}
	return at, nil
}

// ConfirmAppointment is the stylist accepting a pending request. The confirmation is
// published on the realtime channel so a waiting booking workflow resolves.
func (s *DefaultAppointmentService) ConfirmAppointment(ctx context.Context, stylistID, appointmentID string) (*models.Appointment, error) {
	appt, err := s.get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.StylistID != stylistID {
		return nil, ErrNotParticipant
	}
	if appt.Status != models.AppointmentPending {
		return nil, ErrNotPending
	}
	if !s.now().Before(appt.CreatedAt.Add(s.window)) {
		if err := s.ExpireAppointment(ctx, appointmentID); err != nil && !errors.Is(err, ErrNotPending) {
			s.logger.Warn("Failed to expire late appointment", zap.String("appointmentID", appointmentID), zap.Error(err))
		}
		return nil, ErrNotPending
	}

	updated, err := s.store.UpdateStatus(ctx, appointmentID, models.AppointmentPending, models.AppointmentConfirmed, s.now())
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			return nil, ErrNotPending
		}
		return nil, err
	}

	if err := s.publisher.PublishConfirmed(ctx, *updated); err != nil {
		s.logger.Warn("Failed to publish confirmation", zap.String("appointmentID", appointmentID), zap.Error(err))
	}
	if s.push != nil {
		if err := s.push.SendClientPushNotification(ctx, updated.ClientID, "Appointment confirmed",
			"Your stylist accepted your request.", map[string]string{
				"type":          models.EventAppointmentConfirmed,
				"appointmentId": updated.ID,
			}); err != nil {
			s.logger.Debug("Client push failed", zap.String("appointmentID", appointmentID), zap.Error(err))
		}
	}
	if at, err := time.ParseInLocation(scheduledAtLayout, updated.ScheduledAt, s.location); err == nil {
		s.scheduleReminders(ctx, *updated, at)
	}

	s.logger.Info("Appointment confirmed by stylist", zap.String("appointmentID", appointmentID))
	return updated, nil
}

// CancelAppointment cancels a pending or confirmed appointment for either participant.
func (s *DefaultAppointmentService) CancelAppointment(ctx context.Context, userID, appointmentID string) (*models.Appointment, error) {
	appt, err := s.GetForParticipant(ctx, userID, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Status == models.AppointmentCancelled || appt.Status == models.AppointmentExpired {
		return nil, ErrAlreadyClosed
	}
	updated, err := s.store.UpdateStatus(ctx, appointmentID, appt.Status, models.AppointmentCancelled, s.now())
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			return nil, ErrAlreadyClosed
		}
		return nil, err
	}
	s.logger.Info("Appointment cancelled", zap.String("appointmentID", appointmentID), zap.String("by", userID))
	return updated, nil
}

// ExpireAppointment closes a request nobody confirmed in time. Only pending
// appointments move; anything else yields ErrNotPending.
func (s *DefaultAppointmentService) ExpireAppointment(ctx context.Context, appointmentID string) error {
	if _, err := s.store.UpdateStatus(ctx, appointmentID, models.AppointmentPending, models.AppointmentExpired, s.now()); err != nil {
		return s.statusErr(err)
	}
	s.logger.Info("Appointment request expired", zap.String("appointmentID", appointmentID))
	return nil
}

// WithdrawAppointment is the client dropping a request the stylist has not answered yet.
func (s *DefaultAppointmentService) WithdrawAppointment(ctx context.Context, clientID, appointmentID string) error {
	appt, err := s.get(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt.ClientID != clientID {
		return ErrNotParticipant
	}
	if _, err := s.store.UpdateStatus(ctx, appointmentID, models.AppointmentPending, models.AppointmentCancelled, s.now()); err != nil {
		return s.statusErr(err)
	}
	s.logger.Info("Appointment request withdrawn", zap.String("appointmentID", appointmentID))
	return nil
}

func (s *DefaultAppointmentService) statusErr(err error) error {
	switch {
	case errors.Is(err, appointmentRepo.ErrStatusConflict):
		return ErrNotPending
	case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
		return ErrNotFound
	}
	return err
}

// GetForParticipant returns the appointment if userID is its client or stylist.
func (s *DefaultAppointmentService) GetForParticipant(ctx context.Context, userID, appointmentID string) (*models.Appointment, error) {
	appt, err := s.get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.ClientID != userID && appt.StylistID != userID {
		return nil, ErrNotParticipant
	}
	return appt, nil
}

func (s *DefaultAppointmentService) ListForStylist(ctx context.Context, stylistID, status string) ([]models.Appointment, error) {
	return s.store.ListByStylist(ctx, stylistID, status)
}

func (s *DefaultAppointmentService) get(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return appt, nil
}

func (s *DefaultAppointmentService) scheduleReminders(ctx context.Context, appt models.Appointment, at time.Time) {
	if s.reminders == nil {
		return
	}
	n, err := s.reminders.ScheduleAppointmentReminders(ctx, appt, at)
	if err != nil {
		s.logger.Warn("Failed to schedule reminders", zap.String("appointmentID", appt.ID), zap.Error(err))
		return
	}
	s.logger.Debug("Reminders scheduled", zap.String("appointmentID", appt.ID), zap.Int("count", n))
}
