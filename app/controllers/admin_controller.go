package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fantribe/fantribe/app/models"
	"github.com/fantribe/fantribe/app/repository"
	"github.com/fantribe/fantribe/internal/pkg/database"
	"github.com/fantribe/fantribe/internal/pkg/moderation"
	"github.com/fantribe/fantribe/internal/pkg/payments"
)

// HandleAdminDashboard returns headline counts for the admin overview.
func HandleAdminDashboard(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	userCount, err := repos.User.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count users"})
	}
	postCount, err := repos.Post.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count posts"})
	}
	openReports, err := repos.Report.CountOpen()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count reports"})
	}
	txCount, err := payments.NewRepository(database.GetDB()).CountTransactions()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count transactions"})
	}

	return c.JSON(fiber.Map{
		"users":        userCount,
		"posts":        postCount,
		"open_reports": openReports,
		"transactions": txCount,
	})
}

// HandleAdminListUsers returns users for the admin user management page.
func HandleAdminListUsers(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	repos := repository.GetGlobalRepositories()

	var users []models.User
	var err error
	if query := c.Query("q"); query != "" {
		users, err = repos.User.Search(query)
	} else {
		users, err = repos.User.List(offset, limit)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load users"})
	}

	items := make([]fiber.Map, 0, len(users))
	for i := range users {
		items = append(items, fiber.Map{
			"id":         users[i].ID,
			"name":       users[i].Name,
			"handle":     users[i].Handle,
			"email":      users[i].Email,
			"role":       users[i].Role,
			"status":     users[i].Status,
			"is_creator": users[i].IsCreator,
			"created_at": users[i].CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"users": items})
}

// HandleAdminBanUser suspends a user, permanently or for duration_hours.
func HandleAdminBanUser(c *fiber.Ctx) error {
	userCtx := mustUserContext(c)
	if userCtx == nil {
		return nil
	}

	userID, err := c.ParamsInt("id")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid user id"})
	}

	var payload struct {
		Reason        string `json:"reason"`
		DurationHours int    `json:"duration_hours"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	var expiresAt *time.Time
	if payload.DurationHours > 0 {
		t := time.Now().Add(time.Duration(payload.DurationHours) * time.Hour)
		expiresAt = &t
	}

	ban, err := moderation.NewService(database.GetDB()).
		BanUser(uint(userID), userCtx.UserID, payload.Reason, expiresAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ban_failed", "message": err.Error()})
	}

	response := fiber.Map{"message": "User banned", "ban_id": ban.ID}
	if ban.ExpiresAt != nil {
		response["expires_at"] = ban.ExpiresAt
	}
	return c.JSON(response)
}

// HandleAdminUnbanUser lifts a user's active ban.
func HandleAdminUnbanUser(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid user id"})
	}

	if err := moderation.NewService(database.GetDB()).LiftBan(uint(userID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to lift ban"})
	}
	return c.JSON(fiber.Map{"message": "Ban lifted"})
}

// HandleAdminListReports returns the moderation queue.
func HandleAdminListReports(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	status := c.Query("status", models.ReportStatusOpen)
	reports, err := repository.GetGlobalRepositories().Report.
		ListByStatus(status, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load reports"})
	}

	items := make([]fiber.Map, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		item := fiber.Map{
			"id":          r.ID,
			"target_type": r.TargetType,
			"target_id":   r.TargetID,
			"reason":      r.Reason,
			"details":     r.Details,
			"status":      r.Status,
			"created_at":  r.CreatedAt,
		}
		if r.Reporter != nil {
			item["reporter"] = fiber.Map{"id": r.Reporter.ID, "handle": r.Reporter.Handle}
		}
		items = append(items, item)
	}
	return c.JSON(fiber.Map{"reports": items})
}

// HandleAdminResolveReport closes a report as resolved or dismissed.
func HandleAdminResolveReport(c *fiber.Ctx) error {
	userCtx := mustUserContext(c)
	if userCtx == nil {
		return nil
	}

	reportID, err := c.ParamsInt("id")
	if err != nil || reportID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid report id"})
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if payload.Status != models.ReportStatusResolved && payload.Status != models.ReportStatusDismissed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Status must be resolved or dismissed"})
	}

	if err := repository.GetGlobalRepositories().Report.
		Resolve(uint(reportID), userCtx.UserID, payload.Status); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update report"})
	}
	return c.JSON(fiber.Map{"message": "Report " + payload.Status})
}

// HandleAdminListTransactions pages through the payment ledger.
func HandleAdminListTransactions(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	repo := payments.NewRepository(database.GetDB())
	transactions, err := repo.ListTransactions(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load transactions"})
	}
	total, err := repo.CountTransactions()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count transactions"})
	}

	items := make([]fiber.Map, 0, len(transactions))
	for i := range transactions {
		tx := &transactions[i]
		items = append(items, fiber.Map{
			"id":                      tx.ID,
			"provider":                tx.Provider,
			"provider_transaction_id": tx.ProviderTransactionID,
			"kind":                    tx.Kind,
			"creator_id":              tx.CreatorID,
			"subscriber_id":           tx.SubscriberID,
			"amount":                  tx.Amount,
			"currency":                tx.Currency,
			"payment_method":          tx.PaymentMethod,
			"paid_at":                 tx.PaidAt,
		})
	}
	return c.JSON(fiber.Map{"transactions": items, "total": total})
}
