package appointmentRepo

import (
	"context"
	"time"

	"beautycita/models"
)

// AppointmentRepository defines appointment data access.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// UpdateStatus moves an appointment from one status to another. It fails with
	// ErrStatusConflict when the stored status is not from.
	UpdateStatus(ctx context.Context, id, from, to string, at time.Time) (*models.Appointment, error)
	ListByStylist(ctx context.Context, stylistID, status string) ([]models.Appointment, error)
}
