package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/fantribe/fantribe/app/models"
	"github.com/fantribe/fantribe/app/repository"
	"github.com/fantribe/fantribe/internal/pkg/database"
	"github.com/fantribe/fantribe/internal/pkg/session"
	"github.com/fantribe/fantribe/internal/pkg/usercontext"
)

func HandleAuthLogin(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Render("auth/login", fiber.Map{
			"Title": "Login",
			"Flash": flash.Get(c),
		})
	}

	fm := fiber.Map{
		"type": "error",
	}

	// notice: in production you should not inform the user
	// with detailed messages about login failures
	user, err := repository.GetGlobalFactory().GetUserRepository().GetByEmail(c.FormValue("email"))
	if err != nil {
		fm["message"] = "There is a problem with the login process"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if !user.CheckPassword(c.FormValue("password")) {
		fm["message"] = "There is a problem with the login process"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if user.Status == models.STATUS_DISABLED {
		fm["message"] = "This account has been disabled"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if err := createAppSession(c, user); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	database.GetDB().Model(user).Update("last_login_at", time.Now())

	fm = fiber.Map{
		"type":    "success",
		"message": "Welcome back!",
	}

	return flash.WithSuccess(c, fm).Redirect("/")
}

func HandleAuthLogout(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = "logged out (no sess)"

		return flash.WithError(c, fm).Redirect("/login")
	}

	err = sess.Destroy()
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "See you soon!",
	}

	c.Locals(usercontext.KeyFromProtected, false)

	return flash.WithSuccess(c, fm).Redirect("/login")
}

func HandleAuthRegister(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Render("auth/register", fiber.Map{
			"Title": "Register",
			"Flash": flash.Get(c),
		})
	}

	user, err := models.CreateUser(
		c.FormValue("name"),
		c.FormValue("handle"),
		c.FormValue("email"),
		c.FormValue("password"),
	)
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}

		return flash.WithError(c, fm).Redirect("/register")
	}

	ipv4, ipv6 := GetClientIP(c)
	user.IPv4 = ipv4
	user.IPv6 = ipv6

	if err := user.GenerateActivationToken(); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}

		return flash.WithError(c, fm).Redirect("/register")
	}

	if err := repository.GetGlobalFactory().GetUserRepository().Create(user); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}

		return flash.WithError(c, fm).Redirect("/register")
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Registration successful! Check your inbox to activate your account.",
	}

	return flash.WithSuccess(c, fm).Redirect("/login")
}

// HandleAuthActivate flips an account to active when the token matches.
func HandleAuthActivate(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		fm := fiber.Map{
			"type":    "error",
			"message": "Missing activation token",
		}
		return flash.WithError(c, fm).Redirect("/login")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByActivationToken(token)
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Invalid activation token",
		}
		return flash.WithError(c, fm).Redirect("/login")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := repo.Update(user); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}
		return flash.WithError(c, fm).Redirect("/login")
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Account activated, you can log in now.",
	}
	return flash.WithSuccess(c, fm).Redirect("/login")
}

// createAppSession writes the logged-in user into the app session store.
func createAppSession(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)

	if err := sess.Save(); err != nil {
		return err
	}

	flag := "0"
	if user.IsCreator {
		flag = "1"
	}
	_ = session.SetSessionValue(c, usercontext.KeyIsCreator, flag)
	_ = session.SetSessionValue(c, "handle", user.Handle)

	return nil
}
