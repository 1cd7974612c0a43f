package router

import (
	"github.com/gin-gonic/gin"

	"formulab/internal/handler"
	"formulab/internal/middleware"
	"formulab/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	formulaH *handler.FormulaHandler,
	orderH *handler.OrderHandler,
	ruleH *handler.RuleHandler,
	mappingH *handler.MappingHandler,
	healthH *handler.HealthHandler,
	corsOrigins ...string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins...))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)

	// Protected routes - require valid JWT when auth is configured
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Catalog routes
	formulas := protected.Group("/formulas")
	formulas.POST("", formulaH.Import)
	formulas.POST("/parse", formulaH.Parse)
	formulas.GET("", formulaH.List)
	formulas.GET("/export", formulaH.Export)
	formulas.GET("/:key", formulaH.Get)
	formulas.DELETE("/:key", formulaH.Delete)
	formulas.POST("/:key/scale", formulaH.Scale)
	formulas.POST("/:key/validate", formulaH.Validate)

	// Production order routes
	orders := protected.Group("/orders")
	orders.POST("", orderH.Create)
	orders.GET("", orderH.List)
	orders.GET("/:id", orderH.Get)
	orders.POST("/:id/produce", orderH.Produce)
	orders.POST("/:id/cancel", orderH.Cancel)
	orders.GET("/:id/document", orderH.Document)

	// Validation rule routes
	rules := protected.Group("/rules")
	rules.POST("", ruleH.Create)
	rules.GET("", ruleH.List)
	rules.GET("/builtin", ruleH.BuiltinKeys)
	rules.GET("/:id", ruleH.Get)
	rules.PATCH("/:id", ruleH.Update)
	rules.DELETE("/:id", ruleH.Delete)

	// Type-tag mapping routes
	mappings := protected.Group("/mappings")
	mappings.GET("", mappingH.List)
	mappings.PUT("", mappingH.Upsert)

	return r
}
