package router

import (
	"spa_salon_backend/internal/handlers"
	"spa_salon_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupShiftRoutes sets up the shift template routes. Shift templates are
// shared config, so writes are admin only.
func SetupShiftRoutes(authenticatedGroup *gin.RouterGroup, scheduleHandler *handlers.ScheduleHandler) {
	shiftRoutes := authenticatedGroup.Group("/shifts")
	shiftRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		shiftRoutes.GET("", scheduleHandler.GetShifts)
		shiftRoutes.GET("/:id", scheduleHandler.GetShiftByID)
	}

	shiftWriteRoutes := authenticatedGroup.Group("/shifts")
	shiftWriteRoutes.Use(middleware.RoleAuthMiddleware("Admin"))
	{
		shiftWriteRoutes.POST("", scheduleHandler.CreateShift)
		shiftWriteRoutes.PUT("/:id", scheduleHandler.UpdateShift)
	}
}

// SetupScheduleRoutes sets up the work schedule routes.
func SetupScheduleRoutes(authenticatedGroup *gin.RouterGroup, scheduleHandler *handlers.ScheduleHandler) {
	scheduleRoutes := authenticatedGroup.Group("/work-schedules")
	scheduleRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		scheduleRoutes.POST("", scheduleHandler.CreateWorkSchedule)
		scheduleRoutes.POST("/multi", scheduleHandler.CreateMultiShiftSchedule)
		scheduleRoutes.GET("/staff/:staff_id", scheduleHandler.GetSchedule)
	}
}

// SetupAvailabilityRoutes sets up the availability query routes.
func SetupAvailabilityRoutes(authenticatedGroup *gin.RouterGroup, availabilityHandler *handlers.AvailabilityHandler) {
	availabilityRoutes := authenticatedGroup.Group("/availability")
	availabilityRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		availabilityRoutes.GET("/staff/:staff_id/busy", availabilityHandler.GetBusyTimes)
		availabilityRoutes.GET("/busy", availabilityHandler.GetMultiStaffBusyTimes)
		availabilityRoutes.GET("/free-staff", availabilityHandler.GetFreeStaff)
	}
}

// SetupLeaveRoutes sets up the staff leave routes. Approval and rejection
// are admin decisions.
func SetupLeaveRoutes(authenticatedGroup *gin.RouterGroup, leaveHandler *handlers.LeaveHandler) {
	leaveRoutes := authenticatedGroup.Group("/leaves")
	leaveRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		leaveRoutes.POST("", leaveHandler.RequestLeave)
		leaveRoutes.GET("", leaveHandler.GetLeaves)
		leaveRoutes.GET("/:id", leaveHandler.GetLeaveByID)
	}

	leaveAdminRoutes := authenticatedGroup.Group("/leaves")
	leaveAdminRoutes.Use(middleware.RoleAuthMiddleware("Admin"))
	{
		leaveAdminRoutes.PATCH("/:id/approve", leaveHandler.ApproveLeave)
		leaveAdminRoutes.PATCH("/:id/reject", leaveHandler.RejectLeave)
	}
}

// SetupAppointmentRoutes sets up the appointment routes.
func SetupAppointmentRoutes(authenticatedGroup *gin.RouterGroup, appointmentHandler *handlers.AppointmentHandler) {
	appointmentRoutes := authenticatedGroup.Group("/appointments")
	appointmentRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		appointmentRoutes.POST("", appointmentHandler.BookAppointment)
		appointmentRoutes.GET("", appointmentHandler.GetAppointments)
		appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
		appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
		appointmentRoutes.POST("/:id/pay", appointmentHandler.MarkAppointmentPaid)
		appointmentRoutes.POST("/:id/feedback", appointmentHandler.SubmitFeedback)
	}
}

// SetupFeedbackRoutes sets up the feedback query routes.
func SetupFeedbackRoutes(authenticatedGroup *gin.RouterGroup, appointmentHandler *handlers.AppointmentHandler) {
	feedbackRoutes := authenticatedGroup.Group("/feedback")
	feedbackRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		feedbackRoutes.GET("/staff/:staff_id", appointmentHandler.GetStaffFeedback)
	}
}

// SetupCatalogRoutes sets up the service offering and product routes.
// Catalog writes are admin only.
func SetupCatalogRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	serviceRoutes := authenticatedGroup.Group("/services")
	serviceRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		serviceRoutes.GET("", catalogHandler.GetServiceOfferings)
		serviceRoutes.GET("/:id", catalogHandler.GetServiceOfferingByID)
	}
	serviceWriteRoutes := authenticatedGroup.Group("/services")
	serviceWriteRoutes.Use(middleware.RoleAuthMiddleware("Admin"))
	{
		serviceWriteRoutes.POST("", catalogHandler.CreateServiceOffering)
		serviceWriteRoutes.PUT("/:id", catalogHandler.UpdateServiceOffering)
	}

	productRoutes := authenticatedGroup.Group("/products")
	productRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		productRoutes.GET("", catalogHandler.GetProducts)
		productRoutes.GET("/:id", catalogHandler.GetProductByID)
	}
	productWriteRoutes := authenticatedGroup.Group("/products")
	productWriteRoutes.Use(middleware.RoleAuthMiddleware("Admin"))
	{
		productWriteRoutes.POST("", catalogHandler.CreateProduct)
		productWriteRoutes.PUT("/:id", catalogHandler.UpdateProduct)
		productWriteRoutes.POST("/:id/restock", catalogHandler.RestockProduct)
	}
}

// SetupCustomerRoutes sets up the customer routes.
func SetupCustomerRoutes(authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customerRoutes := authenticatedGroup.Group("/customers")
	customerRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		customerRoutes.POST("", customerHandler.CreateCustomer)
		customerRoutes.GET("", customerHandler.GetCustomers)
		customerRoutes.GET("/:id", customerHandler.GetCustomerByID)
		customerRoutes.PUT("/:id", customerHandler.UpdateCustomer)
	}
}

// SetupStaffRoutes sets up the staff member routes. Writes and service
// assignment are admin only.
func SetupStaffRoutes(authenticatedGroup *gin.RouterGroup, staffHandler *handlers.StaffHandler) {
	staffRoutes := authenticatedGroup.Group("/staff")
	staffRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		staffRoutes.GET("", staffHandler.GetStaffMembers)
		staffRoutes.GET("/:id", staffHandler.GetStaffMemberByID)
		staffRoutes.GET("/:id/services", staffHandler.GetServicesForStaff)
	}

	staffWriteRoutes := authenticatedGroup.Group("/staff")
	staffWriteRoutes.Use(middleware.RoleAuthMiddleware("Admin"))
	{
		staffWriteRoutes.POST("", staffHandler.CreateStaffMember)
		staffWriteRoutes.PUT("/:id", staffHandler.UpdateStaffMember)
		staffWriteRoutes.POST("/:id/services/:service_id", staffHandler.AssignService)
		staffWriteRoutes.DELETE("/:id/services/:service_id", staffHandler.UnassignService)
	}
}

// SetupOrderRoutes sets up the retail order routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	orderRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		orderRoutes.POST("", orderHandler.CreateOrder)
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
	}
}
