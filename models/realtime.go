package models

import "time"

// Real-time event names exchanged over the socket and the bus.
const (
	EventAppointmentConfirmed = "appointment_confirmed"
	EventNotification         = "notification"
	EventJoinChatRoom         = "join_chat_room"
	EventLeaveChatRoom        = "leave_chat_room"
	EventChatMessage          = "chat_message"
	EventChatMessageReceived  = "chat_message_received"
	EventChatError            = "chat_error"
	EventUserTyping           = "user_typing"
	EventLocationUpdate       = "location_update"
	EventClientLocation       = "client_location"
	EventClientProximityAlert = "client_proximity_alert"
)

// AppointmentConfirmedEvent is published when a stylist accepts a pending request.
type AppointmentConfirmedEvent struct {
	AppointmentID string      `json:"appointment_id"`
	Appointment   Appointment `json:"appointment"`
}

// ChatMessage is a relayed and persisted chat line between client and stylist.
type ChatMessage struct {
	ID            string    `bson:"id" json:"id"`
	AppointmentID string    `bson:"appointmentId" json:"appointmentId"`
	SenderID      string    `bson:"senderId" json:"senderId"`
	Content       string    `bson:"content" json:"content"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// TypingEvent is relayed as-is to the other participants of a chat room.
type TypingEvent struct {
	AppointmentID string `json:"appointmentId"`
	UserID        string `json:"userId"`
	Typing        bool   `json:"typing"`
}

// LocationUpdate is a client position report during an appointment.
type LocationUpdate struct {
	AppointmentID string  `json:"appointmentId"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
}

// ProximityAlert tells the stylist the client is close to the appointment location.
type ProximityAlert struct {
	AppointmentID  string  `json:"appointmentId"`
	DistanceMeters float64 `json:"distance"`
}
