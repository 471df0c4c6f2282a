package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/fantribe/fantribe/app/controllers"
	"github.com/fantribe/fantribe/internal/pkg/constants"
	"github.com/fantribe/fantribe/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// Provider callbacks are registered ahead of the rate-limited group so
	// gateway retries are never throttled. Both are signature/state verified
	// in their controllers.
	app.Get(constants.PaymentNotifyRoute, controllers.HandlePaymentNotificationHealth)
	app.Post(constants.PaymentNotifyRoute, controllers.HandlePaymentNotification)
	app.Get(constants.PaymentReturnRoute, controllers.HandlePaymentReturn)
	app.Post(constants.PaymentReturnRoute, controllers.HandlePaymentReturn)

	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// Account
	v1.Get("/user/account", middleware.RequireAPISessionAuth, controllers.HandleGetUserAccount)
	v1.Patch("/user/profile", middleware.RequireAPISessionAuth, controllers.HandleUpdateProfile)
	v1.Post("/user/become-creator", middleware.RequireAPISessionAuth, controllers.HandleBecomeCreator)

	// Creators
	v1.Get("/creators", controllers.HandleListCreators)
	v1.Get("/creators/:handle", controllers.HandleGetCreatorProfile)
	v1.Get("/creators/:handle/posts", controllers.HandleGetCreatorPosts)
	v1.Post("/creators/:handle/subscribe", middleware.RequireAPISessionAuth, controllers.HandleSubscriptionCheckout)

	// Feed
	v1.Get("/feed", middleware.RequireAPISessionAuth, controllers.HandleGetFeed)
	v1.Get("/discover", controllers.HandleGetDiscover)

	// Posts
	v1.Post("/posts", middleware.RequireAPISessionAuth, middleware.RequireCreator, controllers.HandleCreatePost)
	v1.Get("/posts/:uuid", controllers.HandleGetPost)
	v1.Delete("/posts/:uuid", middleware.RequireAPISessionAuth, controllers.HandleDeletePost)
	v1.Post("/posts/:uuid/like", middleware.RequireAPISessionAuth, controllers.HandleToggleLike)
	v1.Get("/posts/:uuid/comments", controllers.HandleGetComments)
	v1.Post("/posts/:uuid/comments", middleware.RequireAPISessionAuth, controllers.HandleCreateComment)

	// Messaging
	v1.Get("/conversations", middleware.RequireAPISessionAuth, controllers.HandleListConversations)
	v1.Post("/conversations", middleware.RequireAPISessionAuth, controllers.HandleStartConversation)
	v1.Get("/conversations/:uuid/messages", middleware.RequireAPISessionAuth, controllers.HandleGetMessages)
	v1.Post("/conversations/:uuid/messages", middleware.RequireAPISessionAuth, controllers.HandleSendMessage)

	// Payments
	v1.Post("/tips", middleware.RequireAPISessionAuth, controllers.HandleTipCheckout)
	v1.Get("/subscriptions", middleware.RequireAPISessionAuth, controllers.HandleListMySubscriptions)

	// Notifications
	v1.Get("/notifications", middleware.RequireAPISessionAuth, controllers.HandleListNotifications)
	v1.Post("/notifications/read", middleware.RequireAPISessionAuth, controllers.HandleMarkNotificationsRead)

	// Reports (open to anonymous reporters as well)
	v1.Post("/reports", controllers.HandleSubmitReport)

	// Media uploads
	v1.Post("/media/uploads", middleware.RequireAPISessionAuth, middleware.RequireCreator, controllers.HandleCreateMediaUpload)
	v1.Post("/media/uploads/complete", middleware.RequireAPISessionAuth, middleware.RequireCreator, controllers.HandleCompleteMediaUpload)

	h.registerAdminRoutes(v1)
}

func (h ApiRouter) registerAdminRoutes(v1 fiber.Router) {
	admin := v1.Group("/admin", middleware.RequireAPIAdmin)
	admin.Get("/dashboard", controllers.HandleAdminDashboard)
	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Post("/users/:id/ban", controllers.HandleAdminBanUser)
	admin.Post("/users/:id/unban", controllers.HandleAdminUnbanUser)
	admin.Get("/reports", controllers.HandleAdminListReports)
	admin.Post("/reports/:id/resolve", controllers.HandleAdminResolveReport)
	admin.Get("/transactions", controllers.HandleAdminListTransactions)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
