package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fleet/internal/handler"
	"fleet/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	DriverHandler     *handler.DriverHandler
	VehicleHandler    *handler.VehicleHandler
	SchemeHandler     *handler.SchemeHandler
	DutyHandler       *handler.DutyHandler
	AssignmentHandler *handler.AssignmentHandler
	PayrollHandler    *handler.PayrollHandler
	RedisClient       *redis.Client // nil disables idempotency replay
	NewRelicApp       *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.NewRelicAttributes())
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/nearby", deps.DriverHandler.Nearby)
			drivers.GET("/:id", deps.DriverHandler.Get)
			drivers.POST("/:id/approve", deps.DriverHandler.Approve)
			drivers.POST("/:id/reject", deps.DriverHandler.Reject)
			drivers.POST("/:id/deactivate", deps.DriverHandler.Deactivate)
			drivers.POST("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.GET("/:id/location", deps.DriverHandler.GetLocation)
			drivers.GET("/:id/assignments", deps.AssignmentHandler.ListByDriver)
		}

		// Vehicle routes.
		vehicles := v1.Group("/vehicles")
		{
			vehicles.POST("", deps.VehicleHandler.Register)
			vehicles.GET("", deps.VehicleHandler.GetAll)
			vehicles.GET("/:id", deps.VehicleHandler.Get)
			vehicles.PATCH("/:id", deps.VehicleHandler.Update)
		}

		// Compensation scheme routes.
		schemes := v1.Group("/schemes")
		{
			schemes.POST("", deps.SchemeHandler.Create)
			schemes.GET("", deps.SchemeHandler.GetAll)
			schemes.GET("/types", deps.SchemeHandler.Types)
			schemes.GET("/:id", deps.SchemeHandler.Get)
			schemes.PUT("/:id", deps.SchemeHandler.Update)
			schemes.POST("/:id/preview", deps.SchemeHandler.Preview)
		}

		// Duty routes.
		duties := v1.Group("/duties")
		{
			duties.POST("", deps.DutyHandler.Start)
			duties.GET("/:id", deps.DutyHandler.Get)
			duties.POST("/:id/end", deps.DutyHandler.End)
			duties.POST("/:id/cancel", deps.DutyHandler.Cancel)
		}

		// Assignment routes.
		assignments := v1.Group("/assignments")
		{
			assignments.POST("", deps.AssignmentHandler.Create)
			assignments.POST("/check", deps.AssignmentHandler.CheckConflicts)
			assignments.POST("/suggestions", deps.AssignmentHandler.Suggestions)
			assignments.POST("/bulk", deps.AssignmentHandler.CreateBulk)
			assignments.POST("/recurring", deps.AssignmentHandler.CreateRecurring)
			assignments.GET("/:id", deps.AssignmentHandler.Get)
			assignments.POST("/:id/end", deps.AssignmentHandler.End)
			assignments.POST("/:id/cancel", deps.AssignmentHandler.Cancel)
		}

		// Payroll routes.
		payroll := v1.Group("/payroll")
		{
			payroll.GET("", deps.PayrollHandler.Summary)
			payroll.GET("/export", deps.PayrollHandler.Export)
		}
	}

	return router
}
