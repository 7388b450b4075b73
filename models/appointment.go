package models

import "time"

const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
	AppointmentExpired   = "expired"
)

// Appointment is a submitted booking as stored by the appointment service.
type Appointment struct {
	ID            string        `bson:"id" json:"id"`
	ClientID      string        `bson:"clientId" json:"clientId"`
	StylistID     string        `bson:"stylistId" json:"stylistId"`
	ServiceID     string        `bson:"serviceId" json:"serviceId"`
	ScheduledAt   string        `bson:"scheduledAt" json:"scheduledAt"` // "YYYY-MM-DDTHH:MM"
	FlexibleTime  bool          `bson:"flexibleTime" json:"flexibleTime"`
	Notes         string        `bson:"notes,omitempty" json:"notes,omitempty"`
	PaymentMethod PaymentMethod `bson:"paymentMethod" json:"paymentMethod"`
	Status        string        `bson:"status" json:"status"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	ConfirmedAt   *time.Time    `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
}

// AppointmentRequest is what the booking workflow submits.
type AppointmentRequest struct {
	ClientID      string        `json:"clientId"`
	ServiceID     string        `json:"serviceId"`
	StylistID     string        `json:"stylistId"`
	ScheduledAt   string        `json:"scheduledAt"`
	FlexibleTime  bool          `json:"flexibleTime"`
	Notes         string        `json:"notes"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// AppointmentResult is the appointment collaborator's answer to a submission.
type AppointmentResult struct {
	Status      string      `json:"status"` // "pending" or "confirmed"
	Appointment Appointment `json:"appointment"`
}
