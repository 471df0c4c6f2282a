package constants

// Static route constants
const (
	PublicRoute = "/"

	// Payment provider callback endpoints
	PaymentNotifyRoute = "/api/notification"
	PaymentReturnRoute = "/api/return"

	// Payment landing pages
	PaymentThanksRoute    = "/payment/merci"
	PaymentCancelledRoute = "/payment/cancelled"
)
