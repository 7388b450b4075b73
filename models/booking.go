package models

// PaymentMethod is the client's chosen way to pay.
type PaymentMethod string

const (
	PaymentPayPal PaymentMethod = "paypal"
	PaymentCard   PaymentMethod = "card"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	return m == PaymentPayPal || m == PaymentCard
}

// ServiceRef is the part of a catalogue service the booking needs.
type ServiceRef struct {
	ID                   string  `bson:"id" json:"id"`
	Name                 string  `bson:"name" json:"name"`
	Category             string  `bson:"category" json:"category"`
	BasePrice            float64 `bson:"basePrice" json:"basePrice"`
	DurationMinutes      int     `bson:"durationMinutes" json:"durationMinutes"`
	RequiresConsultation bool    `bson:"requiresConsultation" json:"requiresConsultation"`
	BookingAdvanceHours  int     `bson:"bookingAdvanceHours" json:"bookingAdvanceHours"`
}

// BookingDraft accumulates the client's choices across the booking steps.
type BookingDraft struct {
	Category      string        `json:"category,omitempty"`
	Service       *ServiceRef   `json:"service,omitempty"`
	Date          string        `json:"date,omitempty"` // "YYYY-MM-DD"
	Time          string        `json:"time,omitempty"` // "HH:MM"
	FlexibleTime  bool          `json:"flexibleTime"`   // ±15 minutes
	StylistID     string        `json:"stylistId,omitempty"`
	Location      *GeoPoint     `json:"location,omitempty"`
	Notes         string        `json:"notes"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
}

// NewBookingDraft returns an empty draft, optionally pre-seeded with a category.
func NewBookingDraft(category string) BookingDraft {
	return BookingDraft{Category: category, FlexibleTime: true}
}

// ScheduledAt composes the draft's date and time the way the appointment API expects.
func (d BookingDraft) ScheduledAt() string {
	return d.Date + "T" + d.Time
}

// PriceBreakdown is the client-facing total for a service.
type PriceBreakdown struct {
	BasePrice   float64 `json:"basePrice"`
	TravelFee   float64 `json:"travelFee"`
	PlatformFee float64 `json:"platformFee"`
	Total       float64 `json:"total"`
}

// Notice is a user-visible message raised by the booking flow.
type Notice struct {
	Level   string `json:"level"` // "info", "success", "warning", "error"
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}
