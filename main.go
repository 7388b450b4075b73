package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"beautycita/config"
	"beautycita/cron"
	"beautycita/database"
	appointmentRepo "beautycita/database/repository/appointment"
	catalogRepo "beautycita/database/repository/catalog"
	chatRepo "beautycita/database/repository/chat"
	stylistRepo "beautycita/database/repository/stylist"
	"beautycita/handlers"
	"beautycita/middleware"
	"beautycita/routes"
	"beautycita/services/appointment"
	"beautycita/services/booking"
	"beautycita/services/catalog"
	"beautycita/services/chat"
	"beautycita/services/notification"
	"beautycita/services/realtime"
	"beautycita/services/tasks"
	"beautycita/services/tracking"
	"beautycita/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitRealtime()
	utils.FirebaseInit()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// realtime.
	bus := realtime.NewRedisBus(utils.GetRealtimeClient(), logger)
	go func() {
		if err := bus.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("main: realtime bus stopped", zap.Error(err))
		}
	}()
	hub := realtime.NewHub(bus, logger)
	feed := realtime.NewAppointmentFeed(bus, logger)

	// repositories.
	stylists := stylistRepo.NewMongoStylistRepo()
	appointments := appointmentRepo.NewMongoAppointmentRepo()
	catalogStore := catalogRepo.NewMongoCatalogRepo()
	chatStore := chatRepo.NewMongoChatRepo()

	// services.
	var push notification.Pusher
	if utils.FCMClient != nil {
		push = utils.FCMClient
	}
	notificationService, err := notification.NewDefaultNotificationService(
		bus,
		notification.NewDeviceTokenStore(utils.GetCacheClient()),
		stylists,
		push,
		logger,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	queue := asynq.NewClient(cron.QueueRedisOpt())
	worker := cron.InitReminderWorker(notificationService)

	catalogService := catalog.NewDefaultCatalogService(catalogStore, utils.GetCacheClient(), logger)
	appointmentService := appointment.NewDefaultAppointmentService(appointments, stylists, feed, appointment.Options{
		Services:      catalogService,
		Push:          notificationService,
		Reminders:     tasks.NewReminderScheduler(queue),
		Logger:        logger,
		ConfirmWindow: booking.SoftConfirmWindow + booking.GraceWindow,
	})

	chatService := chat.NewService(bus, chatStore, appointmentService, logger)
	chatService.Register(hub)
	tracker := tracking.NewTracker(utils.GetRealtimeClient(), bus, appointmentService, stylists, notificationService, logger)
	tracker.Register(hub)

	geoTimeout := time.Duration(config.AppConfig.GeolocationTimeoutSeconds) * time.Second
	sessions := booking.NewSessionRegistry(booking.Dependencies{
		Search:        stylists,
		Appointments:  appointmentService,
		Closer:        appointmentService,
		Locator:       middleware.NewIPLocator(config.AppConfig.GeolocationURL, geoTimeout, logger),
		LocateTimeout: geoTimeout,
		Confirmations: feed,
		Notifier:      notificationService,
		Logger:        logger,
	}, time.Duration(config.AppConfig.SessionIdleMinutes)*time.Minute)
	go sessions.Run(ctx, time.Minute)

	utils.StartHealthMonitor(ctx, []*redis.Client{utils.GetCacheClient(), utils.GetRealtimeClient()}, database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.RateLimitMax, time.Duration(config.AppConfig.RateLimitWindow)*time.Minute))
	router.Use(middleware.ClientIPMiddleware())

	handlerBundle := &handlers.HandlerBundle{
		Booking:       handlers.NewBookingHandler(sessions, catalogService, logger),
		Appointments:  handlers.NewAppointmentHandler(appointmentService, chatService, logger),
		Catalog:       handlers.NewCatalogHandler(catalogService, logger),
		Socket:        handlers.NewSocketHandler(hub, config.Origins(), logger),
		Devices:       handlers.NewDeviceHandler(notificationService, logger),
		HealthHandler: handlers.Health(sessions.Len, hub.Connected),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	sessions.CloseAll()
	hub.Close()
	worker.Shutdown()
	if err := queue.Close(); err != nil {
		logger.Warn("main: failed to close task queue", zap.Error(err))
	}
	stop()
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
