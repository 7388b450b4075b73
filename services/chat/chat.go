package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	chatRepo "beautycita/database/repository/chat"
	"beautycita/models"
	"beautycita/services/realtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxMessageLength = 2000
	historyLimit     = 100
)

var (
	ErrMessageBlocked = errors.New(BlockedMessage)
	ErrEmptyMessage   = errors.New("message is empty")
	ErrNotInRoom      = errors.New("join the chat room first")
)

// Participants checks that a user belongs to an appointment.
type Participants interface {
	GetForParticipant(ctx context.Context, userID, appointmentID string) (*models.Appointment, error)
}

// Service relays chat between the client and stylist of an appointment.
type Service struct {
	bus          realtime.Bus
	store        chatRepo.ChatRepository
	participants Participants
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(bus realtime.Bus, store chatRepo.ChatRepository, participants Participants, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{bus: bus, store: store, participants: participants, logger: logger, now: time.Now}
}

// CanJoin checks userID may join the room of appointmentID.
func (s *Service) CanJoin(ctx context.Context, userID, appointmentID string) error {
	if appointmentID == "" {
		return fmt.Errorf("appointmentId is required")
	}
	_, err := s.participants.GetForParticipant(ctx, userID, appointmentID)
	return err
}

// Send filters, stores and publishes a message from senderID.
func (s *Service) Send(ctx context.Context, senderID, appointmentID, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if len(content) > maxMessageLength {
		return nil, fmt.Errorf("message exceeds %d characters", maxMessageLength)
	}
	if !PassesPrivacyCheck(content) {
		s.logger.Info("Chat message blocked", zap.String("appointmentID", appointmentID), zap.String("senderID", senderID))
		return nil, ErrMessageBlocked
	}

	msg := &models.ChatMessage{
		ID:            uuid.NewString(),
		AppointmentID: appointmentID,
		SenderID:      senderID,
		Content:       content,
		CreatedAt:     s.now().UTC(),
	}
	if s.store != nil {
		if err := s.store.SaveMessage(ctx, msg); err != nil {
			return nil, err
		}
	}

	ev, err := realtime.NewEvent(models.EventChatMessageReceived, msg)
	if err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, realtime.ChatTopic(appointmentID), ev); err != nil {
		return nil, err
	}
	return msg, nil
}

// Typing relays a typing indicator to the room.
func (s *Service) Typing(ctx context.Context, userID, appointmentID string, typing bool) error {
	ev, err := realtime.NewEvent(models.EventUserTyping, models.TypingEvent{
		AppointmentID: appointmentID,
		UserID:        userID,
		Typing:        typing,
	})
	if err != nil {
		return err
	}
	return s.bus.Publish(ctx, realtime.ChatTopic(appointmentID), ev)
}

// History returns stored messages for a participant, oldest first.
func (s *Service) History(ctx context.Context, userID, appointmentID string) ([]models.ChatMessage, error) {
	if err := s.CanJoin(ctx, userID, appointmentID); err != nil {
		return nil, err
	}
	if s.store == nil {
		return []models.ChatMessage{}, nil
	}
	return s.store.ListMessages(ctx, appointmentID, historyLimit)
}

// Register installs the chat socket events on hub.
func (s *Service) Register(hub *realtime.Hub) {
	hub.Handle(models.EventJoinChatRoom, s.handleJoin)
	hub.Handle(models.EventLeaveChatRoom, s.handleLeave)
	hub.Handle(models.EventChatMessage, s.handleMessage)
	hub.Handle(models.EventUserTyping, s.handleTyping)
}

func (s *Service) handleJoin(ctx context.Context, c *realtime.Client, data json.RawMessage) error {
	id, err := roomID(data)
	if err != nil {
		return err
	}
	if err := s.CanJoin(ctx, c.UserID, id); err != nil {
		return err
	}
	c.Join(realtime.ChatTopic(id))
	s.logger.Debug("Joined chat room", zap.String("appointmentID", id), zap.String("userID", c.UserID))
	return nil
}

func (s *Service) handleLeave(_ context.Context, c *realtime.Client, data json.RawMessage) error {
	id, err := roomID(data)
	if err != nil {
		return err
	}
	c.Leave(realtime.ChatTopic(id))
	return nil
}

func (s *Service) handleMessage(ctx context.Context, c *realtime.Client, data json.RawMessage) error {
	var body struct {
		AppointmentID string `json:"appointmentId"`
		Message       string `json:"message"`
		Content       string `json:"content"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return fmt.Errorf("invalid chat_message payload: %w", err)
	}
	if !c.Joined(realtime.ChatTopic(body.AppointmentID)) {
		return ErrNotInRoom
	}
	content := body.Message
	if content == "" {
		content = body.Content
	}
	if _, err := s.Send(ctx, c.UserID, body.AppointmentID, content); err != nil {
		if errors.Is(err, ErrMessageBlocked) || errors.Is(err, ErrEmptyMessage) {
			c.SendEvent(models.EventChatError, map[string]string{"appointmentId": body.AppointmentID, "message": err.Error()})
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) handleTyping(ctx context.Context, c *realtime.Client, data json.RawMessage) error {
	var body models.TypingEvent
	if err := json.Unmarshal(data, &body); err != nil {
		return fmt.Errorf("invalid user_typing payload: %w", err)
	}
	if !c.Joined(realtime.ChatTopic(body.AppointmentID)) {
		return ErrNotInRoom
	}
	return s.Typing(ctx, c.UserID, body.AppointmentID, body.Typing)
}

// roomID accepts either a bare appointment id string or {"appointmentId": ...}.
func roomID(data json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(data, &id); err == nil && id != "" {
		return id, nil
	}
	var body struct {
		AppointmentID string `json:"appointmentId"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.AppointmentID == "" {
		return "", fmt.Errorf("appointmentId is required")
	}
	return body.AppointmentID, nil
}
