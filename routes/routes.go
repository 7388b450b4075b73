package routes

import (
	"time"

	"beautycita/config"
	"beautycita/handlers"
	"beautycita/middleware"
	"beautycita/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterCatalogRoutes registers the public service catalogue.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.GET("/categories", hb.Catalog.GetCategories)
		api.GET("/categories/:category", hb.Catalog.GetServicesByCategory)
	}
}

// RegisterBookingRoutes sets up the endpoints for booking sessions.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(utils.RoleClient))
		bookingGroup.POST("/session", hb.Booking.StartSession)
		bookingGroup.GET("/session/:sessionID", hb.Booking.GetSession)
		bookingGroup.PUT("/session/:sessionID/category", hb.Booking.SelectCategory)
		bookingGroup.PUT("/session/:sessionID/service", hb.Booking.SelectService)
		bookingGroup.PUT("/session/:sessionID/schedule", hb.Booking.SetSchedule)
		bookingGroup.PUT("/session/:sessionID/location", hb.Booking.SetLocation)
		bookingGroup.GET("/session/:sessionID/stylists", hb.Booking.ListStylists)
		bookingGroup.PUT("/session/:sessionID/stylist", hb.Booking.SelectStylist)
		bookingGroup.PUT("/session/:sessionID/details", hb.Booking.SetDetails)
		bookingGroup.POST("/session/:sessionID/next", hb.Booking.Next)
		bookingGroup.POST("/session/:sessionID/back", hb.Booking.Back)
		bookingGroup.POST("/session/:sessionID/retry", hb.Booking.RetrySearch)
		bookingGroup.DELETE("/session/:sessionID", hb.Booking.CancelSession)
	}
}

// RegisterAppointmentRoutes registers participant and stylist appointment endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/:id", hb.Appointments.GetAppointment)
		api.DELETE("/:id", hb.Appointments.CancelAppointment)
		api.GET("/:id/messages", hb.Appointments.ChatHistory)
	}

	stylist := r.Group("/api/stylist")
	{
		stylist.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(utils.RoleStylist))
		stylist.GET("/appointments", hb.Appointments.ListStylistAppointments)
		stylist.POST("/appointments/:id/confirm", hb.Appointments.ConfirmAppointment)
	}
}

// RegisterDeviceRoutes registers push token registration.
func RegisterDeviceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/devices")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/token", hb.Devices.RegisterDeviceToken)
	}
}

// RegisterSocketRoute registers the realtime WebSocket endpoint.
func RegisterSocketRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/ws", middleware.JWTAuthMiddleware(), hb.Socket.ServeWS)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	corsConfig := cors.Config{
		AllowOrigins:     config.Origins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	RegisterHealthRoute(r, hb)
	RegisterCatalogRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterDeviceRoutes(r, hb)
	RegisterSocketRoute(r, hb)
}
