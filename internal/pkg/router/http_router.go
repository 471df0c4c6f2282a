package router

import (
	"github.com/fantribe/fantribe/internal/pkg/middleware"
	"github.com/fantribe/fantribe/internal/pkg/oauth"
	"github.com/fantribe/fantribe/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Banned accounts are cut off everywhere except the auth surface
	app.Use(middleware.BanEnforcementMiddleware)

	h.registerPublicRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func loggedInMiddleware(c *fiber.Ctx) error {
	// UserContextMiddleware already set all user context.
	// All user information is available via usercontext.GetUserContext(c).
	return c.Next()
}
