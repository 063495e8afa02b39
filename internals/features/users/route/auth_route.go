package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	usersController "kplt_backend/internals/features/users/controller"
	"kplt_backend/internals/middlewares"
)

// AuthRoutes: login publik (rate-limited), logout & me butuh token.
func AuthRoutes(public fiber.Router, protected fiber.Router, db *gorm.DB) {
	ctl := usersController.NewAuthController(db)

	public.Post("/auth/login", middlewares.LoginRateLimiter(), ctl.Login)

	protected.Post("/auth/logout", ctl.Logout)
	protected.Get("/auth/me", ctl.Me)
}
