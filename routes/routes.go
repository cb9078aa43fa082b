package routes

import (
	"github.com/anjiri1684/freelance_music/handlers"
	"github.com/gofiber/fiber/v2"
)

func Register(app *fiber.App, h *handlers.Handler) {
	PublicRoutes(app, h)
	AuthRoutes(app, h)
	ProfileRoutes(app, h)
	BookingRoutes(app, h)
	PaymentRoutes(app, h)
	RecurringRoutes(app, h)
	AdminRoutes(app, h)
}
