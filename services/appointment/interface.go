package appointment

import (
	"context"
	"time"

	"beautycita/models"
)

// Store is the appointment persistence the service needs.
type Store interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, id, from, to string, at time.Time) (*models.Appointment, error)
	ListByStylist(ctx context.Context, stylistID, status string) ([]models.Appointment, error)
}

// StylistLookup resolves the stylist an appointment is requested from.
type StylistLookup interface {
	GetByID(ctx context.Context, id string) (*models.Stylist, error)
}

// ServiceLookup resolves the booked service.
type ServiceLookup interface {
	GetService(ctx context.Context, id string) (*models.ServiceRef, error)
}

// ConfirmationPublisher announces confirmations on the realtime channel.
type ConfirmationPublisher interface {
	PublishConfirmed(ctx context.Context, appt models.Appointment) error
}

// Pusher sends push notifications to either side of an appointment.
type Pusher interface {
	SendClientPushNotification(ctx context.Context, clientID, title, body string, data map[string]string) error
	SendStylistPushNotification(ctx context.Context, stylistID, title, body string, data map[string]string) error
}

// ReminderScheduler queues pre-appointment reminders.
type ReminderScheduler interface {
	ScheduleAppointmentReminders(ctx context.Context, appt models.Appointment, at time.Time) (int, error)
}

// AppointmentService is the appointment collaborator used by booking workflows and stylists.
type AppointmentService interface {
	CreateAppointment(ctx context.Context, req models.AppointmentRequest) (*models.AppointmentResult, error)
	ConfirmAppointment(ctx context.Context, stylistID, appointmentID string) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, userID, appointmentID string) (*models.Appointment, error)
	GetForParticipant(ctx context.Context, userID, appointmentID string) (*models.Appointment, error)
	ListForStylist(ctx context.Context, stylistID, status string) ([]models.Appointment, error)
}
