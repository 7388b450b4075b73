package booking

import (
	"context"

	"beautycita/models"
)

// StylistSearcher finds candidate stylists near a location.
type StylistSearcher interface {
	SearchStylists(ctx context.Context, params models.StylistSearchParams) ([]models.CandidateStylist, error)
}

// AppointmentCreator submits a finished draft.
type AppointmentCreator interface {
	CreateAppointment(ctx context.Context, req models.AppointmentRequest) (*models.AppointmentResult, error)
}

// AppointmentCloser moves a stored request out of pending once the client stops waiting on it.
type AppointmentCloser interface {
	ExpireAppointment(ctx context.Context, appointmentID string) error
	WithdrawAppointment(ctx context.Context, clientID, appointmentID string) error
}

// Catalog lists bookable categories and services.
type Catalog interface {
	GetServiceCategories(ctx context.Context) ([]models.Category, error)
	GetServicesByCategory(ctx context.Context, category string) ([]models.ServiceRef, error)
}

// Locator resolves the client's position when the draft carries none.
type Locator interface {
	Locate(ctx context.Context) (models.GeoPoint, error)
}

// ConfirmationChannel delivers appointment_confirmed events scoped to one appointment.
// The returned func unsubscribes and is safe to call more than once.
type ConfirmationChannel interface {
	SubscribeAppointment(appointmentID string, fn func(models.AppointmentConfirmedEvent)) (unsubscribe func())
}

// Notifier shows a notice to the user owning a booking session.
type Notifier interface {
	Notify(ctx context.Context, userID string, notice models.Notice)
}
