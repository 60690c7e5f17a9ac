package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"hotel-pms/config"
	"hotel-pms/controllers"
	"hotel-pms/routes"
	"hotel-pms/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("❌ config.DB is nil after ConnectDatabase()")
	}
	log.Println("✅ Database connection established and migrations applied.")

	// Collaborators. Swap these for real integrations when they exist.
	notifier := services.LogNotifier{}
	tasks := services.LogTaskCreator{}
	events := services.LogBroadcaster{}

	// Initialize services
	detector := services.NewConflictDetector(db, settings.HoldTTL)
	paymentService := services.NewPaymentService(db, settings.GatewaySecret)
	inventoryService := services.NewInventoryService(db)
	availabilityService := services.NewAvailabilityService(db, detector)
	bookingService := services.NewBookingService(db, detector, paymentService, inventoryService, notifier, tasks, events, settings.HoldTTL)
	paymentService.Confirmer = bookingService
	roomService := services.NewRoomService(db, events)
	roomTypeService := services.NewRoomTypeService(db)
	customerService := services.NewCustomerService(db)
	serviceCatalog := services.NewServiceCatalog(db)
	pairingStore := services.NewPairingStore(settings.PairingTTL, func(id string) {
		log.Printf("pairing session %s expired", id)
	})

	// Initialize controllers
	bookingController := controllers.NewBookingController(bookingService)
	availabilityController := controllers.NewAvailabilityController(availabilityService)
	paymentController := controllers.NewPaymentController(paymentService)
	roomController := controllers.NewRoomController(roomService)
	roomTypeController := controllers.NewRoomTypeController(roomTypeService)
	serviceController := controllers.NewServiceController(serviceCatalog, inventoryService)
	customerController := controllers.NewCustomerController(customerService)
	pairingController := controllers.NewPairingController(pairingStore)

	// Periodically release expired pending holds.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(settings.SweepCron, func() {
		if n, err := bookingService.SweepExpiredHolds(); err != nil {
			log.Printf("warning: hold sweep failed: %v", err)
		} else if n > 0 {
			log.Printf("hold sweep released %d expired booking(s)", n)
		}
	}); err != nil {
		log.Fatalf("❌ Invalid SWEEP_CRON %q: %v", settings.SweepCron, err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	// Catch up on anything that expired while the process was down.
	if n, err := bookingService.SweepExpiredHolds(); err != nil {
		log.Printf("warning: startup hold sweep failed: %v", err)
	} else if n > 0 {
		log.Printf("startup hold sweep released %d expired booking(s)", n)
	}

	router := routes.SetupRouter(
		bookingController,
		availabilityController,
		paymentController,
		roomController,
		roomTypeController,
		serviceController,
		customerController,
		pairingController,
		settings.CORSOrigins,
	)

	addr := ":" + settings.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
