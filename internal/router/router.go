package router

import (
	"database/sql"

	"spa_salon_backend/internal/handlers"
	"spa_salon_backend/internal/middleware"
	"spa_salon_backend/internal/notifications"
	"spa_salon_backend/internal/repositories"
	"spa_salon_backend/internal/services"
	"spa_salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, notifier notifications.Notifier) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	shiftRepo := repositories.NewShiftRepository(db)
	scheduleRepo := repositories.NewScheduleRepository(db)
	leaveRepo := repositories.NewLeaveRepository(db)
	appointmentRepo := repositories.NewAppointmentRepository(db)
	staffRepo := repositories.NewStaffRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	feedbackRepo := repositories.NewFeedbackRepository(db)

	// Initialize Services
	ordering := services.FreeStaffOrdering(utils.Getenv("FREE_STAFF_ORDERING", string(services.OrderByStaffID)))
	availabilityService := services.NewAvailabilityService(scheduleRepo, appointmentRepo, leaveRepo, staffRepo, shiftRepo, catalogRepo, ordering)

	authService := services.NewAuthService(authRepo, staffRepo, notifications.LogMailer{}, db)
	scheduleService := services.NewScheduleService(shiftRepo, scheduleRepo, staffRepo, db)
	leaveService := services.NewLeaveService(leaveRepo, scheduleRepo, appointmentRepo, staffRepo, shiftRepo, availabilityService, notifier)
	appointmentService := services.NewAppointmentService(appointmentRepo, catalogRepo, customerRepo, staffRepo, feedbackRepo, availabilityService, notifier, db)
	catalogService := services.NewCatalogService(catalogRepo, db)
	customerService := services.NewCustomerService(customerRepo, db)
	staffService := services.NewStaffService(staffRepo, catalogRepo, db)
	orderService := services.NewOrderService(orderRepo, catalogRepo, staffRepo, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	leaveHandler := handlers.NewLeaveHandler(leaveService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	staffHandler := handlers.NewStaffHandler(staffService)
	orderHandler := handlers.NewOrderHandler(orderService)

	apiV1 := engine.Group("/api/v1")

	// Public authentication routes
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	// Everything else requires a valid token
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)

		SetupShiftRoutes(authenticated, scheduleHandler)
		SetupScheduleRoutes(authenticated, scheduleHandler)
		SetupAvailabilityRoutes(authenticated, availabilityHandler)
		SetupLeaveRoutes(authenticated, leaveHandler)
		SetupAppointmentRoutes(authenticated, appointmentHandler)
		SetupFeedbackRoutes(authenticated, appointmentHandler)
		SetupCatalogRoutes(authenticated, catalogHandler)
		SetupCustomerRoutes(authenticated, customerHandler)
		SetupStaffRoutes(authenticated, staffHandler)
		SetupOrderRoutes(authenticated, orderHandler)
	}
}

// SetupPublicAuthRoutes registers the routes reachable without a token.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/register", authHandler.RegisterUser)
	group.POST("/login", authHandler.LoginUser)
}

// SetupAuthenticatedAuthRoutes registers auth routes that need a valid token.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetCurrentUser)
}
