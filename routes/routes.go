package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hotel-pms/controllers"
	"hotel-pms/middleware"
)

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func SetupRouter(
	bc *controllers.BookingController,
	ac *controllers.AvailabilityController,
	pc *controllers.PaymentController,
	rc *controllers.RoomController,
	tc *controllers.RoomTypeController,
	sc *controllers.ServiceController,
	ctc *controllers.CustomerController,
	prc *controllers.PairingController,
	corsOrigins string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	origins := parseCorsOrigins(corsOrigins)
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		rooms := api.Group("/rooms")
		{
			rooms.GET("", rc.GetRooms)
			rooms.GET("/:id", rc.GetRoomByID)
			rooms.POST("", rc.CreateRoom)
			rooms.PUT("/:id", rc.UpdateRoom)
			rooms.PATCH("/:id/state", rc.UpdateRoomState)
			rooms.DELETE("/:id", rc.DeleteRoom)
		}

		types := api.Group("/room-types")
		{
			types.GET("", tc.GetRoomTypes)
			types.GET("/:id", tc.GetRoomTypeByID)
			types.POST("", tc.CreateRoomType)
			types.PUT("/:id", tc.UpdateRoomType)
			types.DELETE("/:id", tc.DeleteRoomType)
		}

		api.GET("/availability", ac.Resolve)
		api.GET("/availability/types", ac.ResolveByType)

		bookings := api.Group("/bookings")
		{
			bookings.GET("", bc.ListBookings)
			bookings.GET("/:id", bc.GetBooking)
			bookings.POST("", bc.CreateBooking)
			bookings.POST("/hold", bc.CreateHold)
			bookings.PATCH("/:id", bc.UpdateBooking)
			bookings.POST("/:id/confirm", bc.ConfirmBooking)
			bookings.POST("/:id/cancel", bc.CancelBooking)
			bookings.POST("/:id/check-in", bc.CheckIn)
			bookings.POST("/:id/check-out", bc.CheckOut)
			bookings.POST("/:id/lines/:lineId/assign", bc.AssignRoom)
			bookings.GET("/:id/receipt", bc.Receipt)

			bookings.GET("/:id/payments", pc.ListPayments)
			bookings.POST("/:id/payments", pc.RecordPayment)
			bookings.POST("/:id/payments/intent", pc.CreateIntent)
		}

		// Asynchronous settlement callback from the online gateway.
		api.GET("/payments/return", pc.GatewayReturn)

		services := api.Group("/services")
		{
			services.GET("", sc.GetServices)
			services.GET("/:id", sc.GetServiceByID)
			services.POST("", sc.CreateService)
			services.PUT("/:id", sc.UpdateService)
			services.DELETE("/:id", sc.DeleteService)
		}
		api.GET("/inventory", sc.GetInventoryItems)

		customers := api.Group("/customers")
		{
			customers.GET("", ctc.GetCustomers)
			customers.GET("/:id", ctc.GetCustomerByID)
			customers.POST("", ctc.CreateCustomer)
			customers.PUT("/:id", ctc.UpdateCustomer)
			customers.DELETE("/:id", ctc.DeleteCustomer)
		}

		pairing := api.Group("/pairing")
		{
			pairing.POST("", prc.CreateSession)
			pairing.POST("/:id/attach", prc.AttachPayload)
			pairing.POST("/:id/claim", prc.ClaimSession)
		}
	}

	return r
}
