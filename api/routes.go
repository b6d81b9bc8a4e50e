package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "backend/api/handlers/auth"
	billinghandler "backend/api/handlers/billing"
	checklisthandler "backend/api/handlers/checklist"
	customerhandler "backend/api/handlers/customer"
	estimatehandler "backend/api/handlers/estimate"
	jobhandler "backend/api/handlers/job"
	leadhandler "backend/api/handlers/lead"
	materialhandler "backend/api/handlers/material"
	tenanthandler "backend/api/handlers/tenant"
	timesheethandler "backend/api/handlers/timesheet"
	userhandler "backend/api/handlers/user"
	"backend/internal/auth"
	"backend/internal/infra"
	"backend/internal/metrics"
	"backend/internal/middleware"
	"backend/internal/user"
)

// SetupRouter builds the gin engine with the full middleware chain and all
// routes. The order matters: request context first, then observability, then
// the tenant guard in front of everything tenant-scoped.
func SetupRouter(app *AppContainer) *gin.Engine {
	gin.SetMode(app.Config.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORS())
	r.Use(middleware.RequestContext(app.Logger))
	r.Use(metrics.PrometheusMiddleware())
	r.Use(RequestLogger())

	r.GET("/health", healthCheck)
	r.GET("/ready", readinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := middleware.NewRateLimiter(nil)

	tenantH := tenanthandler.NewHandler(app.TenantService)
	authH := authhandler.NewHandler(app.Users, app.JWT)
	userH := userhandler.NewHandler(app.Users)
	customerH := customerhandler.NewHandler(app.Customers)
	leadH := leadhandler.NewHandler(app.Leads)
	estimateH := estimatehandler.NewHandler(app.Estimates)
	jobH := jobhandler.NewHandler(app.Jobs)
	timesheetH := timesheethandler.NewHandler(app.Timesheets)
	materialH := materialhandler.NewHandler(app.Materials)
	checklistH := checklisthandler.NewHandler(app.Checklists)
	billingH := billinghandler.NewHandler(app.Invoices)

	// Platform-operator surface: manages the tenant directory itself, so it
	// sits outside the tenant guard.
	admin := r.Group("/admin/tenants")
	{
		admin.POST("", tenantH.Create)
		admin.GET("", tenantH.List)
		admin.GET("/:id", tenantH.Get)
		admin.PUT("/:id", tenantH.Update)
		admin.DELETE("/:id", tenantH.Delete)
	}

	// Everything under /api runs with a verified tenant.
	api := r.Group("/api")
	api.Use(middleware.TenantGuard(app.TenantResolver, app.Logger))
	api.Use(middleware.RateLimitByTenant(limiter))

	// Login proves tenant via header, identity via credentials.
	api.POST("/auth/login", authH.Login)

	// All remaining routes additionally require a bearer token.
	authed := api.Group("")
	authed.Use(auth.Middleware(app.JWT))
	{
		authed.POST("/auth/logout", authH.Logout)
		authed.GET("/auth/me", authH.Me)

		users := authed.Group("/users", auth.RequireRole(user.RoleAdmin))
		{
			users.POST("", userH.Create)
			users.GET("", userH.List)
			users.GET("/:id", userH.Get)
			users.DELETE("/:id", userH.Deactivate)
		}

		customers := authed.Group("/customers")
		{
			customers.POST("", customerH.Create)
			customers.GET("", customerH.List)
			customers.GET("/:id", customerH.Get)
			customers.PUT("/:id", customerH.Update)
			customers.DELETE("/:id", customerH.Delete)
			customers.POST("/:id/addresses", customerH.AddAddress)
			customers.GET("/:id/addresses", customerH.ListAddresses)
		}

		leads := authed.Group("/leads")
		{
			leads.POST("", leadH.Create)
			leads.GET("", leadH.List)
			leads.GET("/:id", leadH.Get)
			leads.PUT("/:id", leadH.Update)
			leads.PUT("/:id/status", leadH.UpdateStatus)
			leads.POST("/:id/convert", leadH.Convert)
			leads.DELETE("/:id", leadH.Delete)
		}

		estimates := authed.Group("/estimates")
		{
			estimates.POST("", estimateH.Create)
			estimates.GET("", estimateH.List)
			estimates.GET("/:id", estimateH.Get)
			estimates.PUT("/:id", estimateH.Update)
			estimates.PUT("/:id/status", estimateH.UpdateStatus)
			estimates.POST("/:id/convert", estimateH.ConvertToJob)
			estimates.DELETE("/:id", estimateH.Delete)
		}

		jobs := authed.Group("/jobs")
		{
			jobs.POST("", jobH.Create)
			jobs.GET("", jobH.List)
			jobs.GET("/stats", jobH.Stats)
			jobs.GET("/:id", jobH.Get)
			jobs.PUT("/:id", jobH.Update)
			jobs.PUT("/:id/assign", jobH.Assign)
			jobs.PUT("/:id/status", jobH.Transition)

			jobs.POST("/:id/materials", materialH.RecordUsage)
			jobs.GET("/:id/materials", materialH.ListUsage)
			jobs.DELETE("/:id/materials/:usageId", materialH.RemoveUsage)

			jobs.POST("/:id/checklists", checklistH.Attach)
			jobs.GET("/:id/checklists", checklistH.ListForJob)
		}

		timesheets := authed.Group("/timesheets")
		{
			timesheets.POST("/clock-in", timesheetH.ClockIn)
			timesheets.PUT("/:id/clock-out", timesheetH.ClockOut)
			timesheets.GET("/open", timesheetH.Open)
			timesheets.GET("/week-total", timesheetH.WeekTotal)
			timesheets.GET("", timesheetH.List)
			timesheets.DELETE("/:id", timesheetH.Delete)
		}

		materials := authed.Group("/materials")
		{
			materials.POST("", materialH.Create)
			materials.GET("", materialH.List)
			materials.GET("/:id", materialH.Get)
			materials.PUT("/:id", materialH.Update)
		}

		checklists := authed.Group("/checklist-templates")
		{
			checklists.POST("", checklistH.CreateTemplate)
			checklists.GET("", checklistH.ListTemplates)
			checklists.DELETE("/:id", checklistH.DeleteTemplate)
		}
		authed.PUT("/checklists/:id/items/:index/toggle", checklistH.ToggleItem)

		invoices := authed.Group("/invoices")
		{
			invoices.POST("", billingH.Generate)
			invoices.GET("", billingH.List)
			invoices.GET("/unpaid-total", billingH.UnpaidTotal)
			invoices.GET("/:id", billingH.Get)
			invoices.POST("/:id/issue", billingH.Issue)
			invoices.POST("/:id/pay", billingH.MarkPaid)
			invoices.POST("/:id/void", billingH.Void)
		}
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "healthy", "service": "fieldserve"})
}

func readinessCheck(c *gin.Context) {
	if err := infra.HealthCheck(); err != nil {
		c.JSON(503, gin.H{"status": "not_ready", "reason": "database unavailable"})
		return
	}
	if err := infra.HealthCheckRedis(); err != nil {
		c.JSON(503, gin.H{"status": "not_ready", "reason": "redis unavailable"})
		return
	}
	c.JSON(200, gin.H{"status": "ready"})
}
