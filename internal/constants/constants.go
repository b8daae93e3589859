package constants

const (
	// ContextKeyPrincipal is the gin context key holding the authenticated user
	ContextKeyPrincipal = "principal"
	// ContextKeyRequestID is the gin context key holding the request correlation id
	ContextKeyRequestID = "request_id"

	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	BearerPrefix        = "Bearer "
)

// Pagination
const (
	DefaultPage     = 0
	DefaultPageSize = 10
	MinPageSize     = 1
	MaxPageSize     = 100
)

// Credentials
const (
	MinPasswordLength = 4
	// bcrypt ignores input beyond 72 bytes
	MaxPasswordBytes  = 72
	MinJWTSecretBytes = 32
)

const MaxSuggestedTasks = 20
