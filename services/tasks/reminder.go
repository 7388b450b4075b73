package tasks

import (
	"beautycita/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeSendReminder = "reminder:send"

	// ReminderLead is how long before an appointment reminders fire.
	ReminderLead = time.Hour
)

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(fmt.Sprintf("%s:%s:%s", payload.AppointmentID, payload.Target, payload.ID)),
		asynq.MaxRetry(3),
	}

	return task, opts, nil
}

// Enqueuer is the part of *asynq.Client the scheduler uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReminderScheduler queues appointment reminders for the worker in package cron.
type ReminderScheduler struct {
	client Enqueuer
	now    func() time.Time
}

func NewReminderScheduler(client Enqueuer) *ReminderScheduler {
	return &ReminderScheduler{client: client, now: time.Now}
}

// ScheduleAppointmentReminders queues one reminder for the client and one for the
// stylist, ReminderLead before the appointment. Past fire times are skipped.
func (s *ReminderScheduler) ScheduleAppointmentReminders(ctx context.Context, appt models.Appointment, at time.Time) (int, error) {
	fireAt := at.Add(-ReminderLead)
	if !fireAt.After(s.now()) {
		return 0, nil
	}

	payloads := []models.ReminderPayload{
		{
			ID:            appt.ClientID,
			AppointmentID: appt.ID,
			Title:         "Upcoming appointment",
			Body:          "Your stylist will see you in one hour.",
			FireDate:      fireAt.Format(time.RFC3339),
			Target:        models.ReminderTargetClient,
		},
		{
			ID:            appt.StylistID,
			AppointmentID: appt.ID,
			Title:         "Upcoming appointment",
			Body:          "You have a client appointment in one hour.",
			FireDate:      fireAt.Format(time.RFC3339),
			Target:        models.ReminderTargetStylist,
		},
	}

	queued := 0
	for _, p := range payloads {
		task, opts, err := NewReminderTask(p, fireAt)
		if err != nil {
			return queued, err
		}
		if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
			if errors.Is(err, asynq.ErrTaskIDConflict) {
				continue
			}
			return queued, fmt.Errorf("failed to enqueue %s reminder: %w", p.Target, err)
		}
		queued++
	}
	return queued, nil
}
