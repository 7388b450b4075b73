package chatRepo

import (
	"context"

	"beautycita/models"
)

// ChatRepository stores relayed chat messages.
type ChatRepository interface {
	SaveMessage(ctx context.Context, msg *models.ChatMessage) error
	// ListMessages returns up to limit messages of an appointment, oldest first.
	ListMessages(ctx context.Context, appointmentID string, limit int64) ([]models.ChatMessage, error)
}
