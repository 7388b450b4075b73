package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Booking      *BookingHandler
	Appointments *AppointmentHandler
	Catalog      *CatalogHandler
	Socket       *SocketHandler
	Devices      *DeviceHandler

	HealthHandler gin.HandlerFunc
}
