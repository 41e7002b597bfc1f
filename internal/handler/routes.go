package handler

import (
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(
	app *fiber.App,
	authHandler *AuthHandler,
	userHandler *UserHandler,
	tenantHandler *TenantHandler,
	impersonationHandler *ImpersonationHandler,
	dashboardHandler *DashboardHandler,
	subscriptionHandler *SubscriptionHandler,
	healthHandler *HealthHandler,
	authMiddleware fiber.Handler,
	requireAdmin fiber.Handler,
) {
	// Health checks (public)
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)

	// Auth routes (public)
	auth := app.Group("/auth")
	auth.Post("/sign-up", authHandler.SignUp)
	auth.Post("/sign-in", authHandler.SignIn)
	auth.Post("/sign-out", authHandler.SignOut)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Newsletter sign-up (public)
	app.Post("/subscribe", subscriptionHandler.Subscribe)

	// User-facing routes (signed in, any role)
	dashboard := app.Group("/dashboard", authMiddleware)
	dashboard.Get("/", dashboardHandler.UserDashboard)
	dashboard.Get("/me", userHandler.GetMe)
	dashboard.Get("/impersonation", impersonationHandler.Status)
	dashboard.Post("/impersonation/stop", impersonationHandler.Stop)

	// Admin console (require admin role)
	admin := app.Group("/admin", authMiddleware, requireAdmin)
	admin.Get("/dashboard", dashboardHandler.AdminDashboard)
	admin.Post("/impersonate", impersonationHandler.Start)

	adminUsers := admin.Group("/users")
	adminUsers.Get("/", userHandler.List)
	adminUsers.Post("/", userHandler.Create)
	adminUsers.Patch("/:id/role", userHandler.UpdateRole)
	adminUsers.Delete("/:id", userHandler.Delete)

	adminTenants := admin.Group("/tenants")
	adminTenants.Get("/", tenantHandler.List)
	adminTenants.Post("/", tenantHandler.Create)
	adminTenants.Get("/:id", tenantHandler.Get)
	adminTenants.Patch("/:id", tenantHandler.Update)
	adminTenants.Patch("/:id/admin", tenantHandler.ReassignAdmin)
	adminTenants.Delete("/:id", tenantHandler.Delete)
}
