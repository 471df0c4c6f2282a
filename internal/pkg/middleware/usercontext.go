package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fantribe/fantribe/app/models"
	"github.com/fantribe/fantribe/internal/pkg/database"
	"github.com/fantribe/fantribe/internal/pkg/session"
	"github.com/fantribe/fantribe/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request
// This centralizes user session handling and eliminates code duplication
func UserContextMiddleware(c *fiber.Ctx) error {
	// Avoid interfering with Goth/Fiber session handling on OAuth routes.
	// Goth uses its own fiber session store and relies on per-request locals.
	// We skip our app session on /auth/* to prevent cross-store collisions.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return anonymousContext(c)
	}

	userID := sess.Get(usercontext.KeyUserID)
	if userID == nil {
		return anonymousContext(c)
	}

	username := session.GetSessionValue(c, usercontext.KeyUsername)
	isAdmin := sess.Get(usercontext.KeyIsAdmin)

	// Creator flag with session-first strategy, DB fallback cached back into the session
	isCreator := false
	switch session.GetSessionValue(c, usercontext.KeyIsCreator) {
	case "1":
		isCreator = true
	case "0":
		isCreator = false
	default:
		if db := database.GetDB(); db != nil {
			var user models.User
			if err := db.Select("is_creator", "handle").First(&user, userID.(uint)).Error; err == nil {
				isCreator = user.IsCreator
				_ = session.SetSessionValue(c, "handle", user.Handle)
			}
		}
		flag := "0"
		if isCreator {
			flag = "1"
		}
		_ = session.SetSessionValue(c, usercontext.KeyIsCreator, flag)
	}

	userCtx := usercontext.UserContext{
		UserID:     userID.(uint),
		Username:   username,
		Handle:     session.GetSessionValue(c, "handle"),
		IsLoggedIn: true,
		IsAdmin:    isAdmin != nil && isAdmin.(bool),
		IsCreator:  isCreator,
	}
	c.Locals("USER_CONTEXT", userCtx)

	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUsername, username)
	c.Locals(usercontext.KeyUserID, userID.(uint))
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)

	return c.Next()
}

func anonymousContext(c *fiber.Ctx) error {
	c.Locals("USER_CONTEXT", usercontext.UserContext{
		IsLoggedIn: false,
		IsAdmin:    false,
	})
	c.Locals(usercontext.KeyFromProtected, false)
	c.Locals(usercontext.KeyIsAdmin, false)
	return c.Next()
}
