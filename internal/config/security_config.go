// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
	SecurityAdmin                       // Access token with the ADMIN role required
)

// EndpointSecurityConfig maps methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// BookingService - Public
	"/rental.ledger.v1.BookingService/QuotePrice": SecurityPublic,

	// BookingService - Access Protected
	"/rental.ledger.v1.BookingService/CreateBooking":   SecurityAccess,
	"/rental.ledger.v1.BookingService/ApproveBooking":  SecurityAccess,
	"/rental.ledger.v1.BookingService/CancelBooking":   SecurityAccess,
	"/rental.ledger.v1.BookingService/CompleteBooking": SecurityAccess,
	"/rental.ledger.v1.BookingService/GetBooking":      SecurityAccess,
	"/rental.ledger.v1.BookingService/ListMyBookings":  SecurityAccess,

	// BookingService - Admin
	"/rental.ledger.v1.BookingService/RejectBooking": SecurityAdmin,

	// LedgerService - Access Protected
	"/rental.ledger.v1.LedgerService/GetBalance":     SecurityAccess,
	"/rental.ledger.v1.LedgerService/GetPaymentLogs": SecurityAccess,

	// LedgerService - Admin
	"/rental.ledger.v1.LedgerService/GetPlatformPaymentLogs": SecurityAdmin,
	"/rental.ledger.v1.LedgerService/Deposit":                SecurityAdmin,
	"/rental.ledger.v1.LedgerService/Reconcile":              SecurityAdmin,

	// ReviewService - Access Protected
	"/rental.ledger.v1.ReviewService/CreateReview": SecurityAccess,

	// NotificationService - Access Protected
	"/rental.ledger.v1.NotificationService/GetNotifications":     SecurityAccess,
	"/rental.ledger.v1.NotificationService/MarkNotificationRead": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to access for unknown endpoints
	return SecurityAccess
}
