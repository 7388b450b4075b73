package models

const (
	ReminderTargetClient  = "client"
	ReminderTargetStylist = "stylist"
)

type ReminderPayload struct {
	ID            string `json:"id"` // clientId or stylistId
	AppointmentID string `json:"appointmentId"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	FireDate      string `json:"fireDate"`
	Target        string `json:"target"` // "client" or "stylist"
}
