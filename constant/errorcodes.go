package constant

// Payload / QR service error codes
const (
	// Validation errors (1xx)
	ErrCodeInvalidPayload = "QR101"
	ErrCodeInvalidStyle   = "QR102"
	ErrCodeUnknownKind    = "QR103"

	// Rendering errors (2xx)
	ErrCodeRenderSVG = "QR201"
	ErrCodeRenderPNG = "QR202"
)

// Shortener service error codes
const (
	// Validation errors (1xx)
	ErrCodeInvalidLongURL = "SVC101"

	// Upstream errors (2xx)
	ErrCodeUpstreamStatus = "SVC201"
	ErrCodeUpstreamBody   = "SVC202"
	ErrCodeUpstreamCall   = "SVC203"
	ErrCodeRateLimitWait  = "SVC204"
	ErrCodeCallerGone     = "SVC205"

	// History errors (3xx)
	ErrCodeRecordLink = "SVC301"
	ErrCodeListLinks  = "SVC302"
	ErrCodeFindLink   = "SVC303"
)

// Database error codes
const (
	// General DB errors (5xx)
	ErrCodeDBGeneral = "DB500"

	// Connection errors (0xx)
	ErrCodeDBOpen    = "DB001"
	ErrCodeDBMigrate = "DB002"

	// Record operation errors (1xx)
	ErrCodeDBLookup = "DB101"
	ErrCodeDBInsert = "DB102"
	ErrCodeDBUpdate = "DB103"

	// List operation errors (2xx)
	ErrCodeDBList = "DB201"

	// Close operation errors (4xx)
	ErrCodeDBClose = "DB401"
)

// API and application error codes
const (
	ErrCodeAPIDecodeRequest  = "API001"
	ErrCodeAPIServiceError   = "API002"
	ErrCodeAPIUpstream       = "API004"
	ErrCodeAppDBInit         = "APP001"
	ErrCodeAppServerStart    = "APP002"
	ErrCodeAppServerShutdown = "APP003"
)

// Error types for categorization
const (
	// Domain error types
	ErrTypeValidation = "validation"
	ErrTypeRender     = "render"
	ErrTypeUpstream   = "upstream"
	ErrTypeStorage    = "storage"

	// Infrastructure error types
	ErrTypeDB = "db"

	// Outer layers
	ErrTypeAPI = "api"
	ErrTypeApp = "application"
)
