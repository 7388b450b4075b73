package cron

import (
	"context"
	"encoding/json"
	"time"

	"beautycita/config"
	"beautycita/models"
	"beautycita/services/tasks"
	"beautycita/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderSender is the part of the notification service reminders need.
type ReminderSender interface {
	SendClientPushNotification(ctx context.Context, clientID, title, body string, data map[string]string) error
	SendStylistPushNotification(ctx context.Context, stylistID, title, body string, data map[string]string) error
}

// QueueRedisOpt is the asynq connection for the reminder queue.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitReminderWorker runs the async worker in background and returns it for shutdown.
func InitReminderWorker(sender ReminderSender) *asynq.Server {
	logger := utils.GetLogger()

	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, HandleReminderTask(sender, logger))

	go func() {
		logger.Info("Starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Warn("Reminder worker failed to start", zap.Int("attempt", attempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Reminder worker gave up; reminders will not be delivered")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandleReminderTask pushes a queued reminder to its target.
func HandleReminderTask(sender ReminderSender, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return err
		}

		logger.Info("Sending reminder",
			zap.String("target", p.Target),
			zap.String("id", p.ID),
			zap.String("appointmentID", p.AppointmentID))

		data := map[string]string{
			"type":          "reminder",
			"appointmentId": p.AppointmentID,
			"fireDate":      p.FireDate,
		}

		var err error
		switch p.Target {
		case models.ReminderTargetClient:
			err = sender.SendClientPushNotification(ctx, p.ID, p.Title, p.Body, data)
		case models.ReminderTargetStylist:
			err = sender.SendStylistPushNotification(ctx, p.ID, p.Title, p.Body, data)
		default:
			logger.Warn("Unknown reminder target", zap.String("target", p.Target))
			return nil
		}

		if err != nil {
			logger.Warn("Failed to send reminder", zap.Error(err))
		}
		return err
	}
}
