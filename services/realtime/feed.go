package realtime

import (
	"context"

	"beautycita/models"

	"go.uber.org/zap"
)

// AppointmentFeed exposes appointment-scoped confirmation events to booking workflows.
type AppointmentFeed struct {
	bus    Bus
	logger *zap.Logger
}

func NewAppointmentFeed(bus Bus, logger *zap.Logger) *AppointmentFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentFeed{bus: bus, logger: logger}
}

// SubscribeAppointment calls fn for every appointment_confirmed event of appointmentID.
func (f *AppointmentFeed) SubscribeAppointment(appointmentID string, fn func(models.AppointmentConfirmedEvent)) func() {
	sub := f.bus.Subscribe(AppointmentTopic(appointmentID), func(ev Event) {
		if ev.Name != models.EventAppointmentConfirmed {
			return
		}
		var payload models.AppointmentConfirmedEvent
		if err := ev.Decode(&payload); err != nil {
			f.logger.Warn("Malformed appointment_confirmed payload", zap.String("appointmentID", appointmentID), zap.Error(err))
			return
		}
		if payload.AppointmentID == "" {
			payload.AppointmentID = appointmentID
		}
		if payload.AppointmentID != appointmentID {
			return
		}
		fn(payload)
	})
	return sub.Unsubscribe
}

// PublishConfirmed announces a confirmed appointment on its own topic and to the client.
func (f *AppointmentFeed) PublishConfirmed(ctx context.Context, appt models.Appointment) error {
	ev, err := NewEvent(models.EventAppointmentConfirmed, models.AppointmentConfirmedEvent{
		AppointmentID: appt.ID,
		Appointment:   appt,
	})
	if err != nil {
		return err
	}
	if err := f.bus.Publish(ctx, AppointmentTopic(appt.ID), ev); err != nil {
		return err
	}
	if appt.ClientID != "" {
		return f.bus.Publish(ctx, UserTopic(appt.ClientID), ev)
	}
	return nil
}
