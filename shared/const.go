package shared

const (
	UserID    = "user_id"
	UserEmail = "user_email"
	IsAdmin   = "is_admin"

	// RedactionPlaceholder replaces sensitive values in audit records.
	RedactionPlaceholder = "[REDACTED]"
)
