package constant

// HTTP header names
const (
	HeaderRequestID          = "X-Request-ID"
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
)

// Content types
const (
	ContentTypeJSON = "application/json"
	ContentTypePNG  = "image/png"
)

// Function/Context names
const (
	// Domain context names
	CtxDomain      = "domain"
	CtxGenerateSVG = "GenerateSVG"
	CtxGeneratePNG = "GeneratePNG"
	CtxShorten     = "Shorten"
	CtxRecentLinks = "RecentLinks"
	CtxIsgdShorten = "IsgdShorten"

	// Infrastructure context names
	CtxDB            = "db"
	CtxRecord        = "Record"
	CtxFindByLongURL = "FindByLongURL"
	CtxListRecent    = "ListRecent"
	CtxClose         = "Close"
	CtxAPI           = "api"

	// Handler context names
	CtxRouter            = "Router"
	CtxMain              = "Main"
	CtxGenerateQRCode    = "GenerateQRCode"
	CtxGenerateQRCodePNG = "GenerateQRCodePNG"
	CtxShortenURL        = "ShortenURL"
	CtxListLinks         = "ListLinks"
)

// Data field keys
const (
	// Service data fields
	DataService   = "service"
	DataKind      = "kind"
	DataFormat    = "format"
	DataContent   = "content_length"
	DataCacheHit  = "cache_hit"
	DataLongURL   = "long_url"
	DataShortURL  = "short_url"
	DataRequests  = "requests"
	DataLimit     = "limit"
	DataFields    = "fields"
	DataStatus    = "status"
	DataBody      = "body"
	DataEndpoint  = "endpoint"
	DataShared    = "shared"
	DataSize      = "size"
	DataLatency   = "latency"
	DataCount     = "count"
	DataAddress   = "address"
	DataDBPath    = "db_path"
	DataLogLevel  = "log_level"
	DataRateLimit = "rate_limit"
	DataTTL       = "ttl"

	// Database data fields
	DataPath    = "path"
	DataElapsed = "elapsed"
	DataRows    = "rows"
	DataSQL     = "sql"
	DataData    = "data"

	// API data fields
	DataMethod     = "method"
	DataRemoteAddr = "remote_addr"
	DataUserAgent  = "user_agent"
	DataPort       = "port"
)

// User facing messages
const (
	MsgInvalidRequestFormat = "Invalid request format"
	MsgValidationFailed     = "Validation failed"
	MsgQRCodeFailed         = "Failed to generate QR code. Please try again."
	MsgShortenFailed        = "Failed to shorten URL. Please try again."
	MsgShortenProviderError = "There was a problem shortening the URL. Please try again."
	MsgListLinksFailed      = "Failed to load shortened links"
)

// Field validation messages
const (
	MsgURLEmpty           = "URL cannot be empty."
	MsgURLInvalid         = "Please enter a valid URL."
	MsgSSIDEmpty          = "SSID cannot be empty."
	MsgEncryptionInvalid  = "Encryption must be one of WPA, WEP, nopass."
	MsgNameEmpty          = "Name cannot be empty."
	MsgPhoneEmpty         = "Phone number cannot be empty."
	MsgColorInvalid       = "Invalid hex color."
	MsgKindUnsupported    = "Type must be one of url, wifi, vcard, sms."
	MsgSizeOutOfRange     = "Size must be between 64 and 4096."
	MsgLimitInvalid       = "Limit must be a positive integer."
	MsgRenderFailedDetail = "failed to render QR code"
)

// API routes
const (
	RouteQRCode      = "/api/qrcode"
	RouteQRCodePNG   = "/api/qrcode/png"
	RouteShorten     = "/api/shorten"
	RouteLinks       = "/api/links"
	RouteHealthcheck = "/health"
	RouteMetrics     = "/metrics"
)

// Basic auth realm for the history endpoints
const AuthRealm = "qrlink"

// Log keys
const (
	LogTimeKey         = "time"
	LogLevelKey        = "level"
	LogNameKey         = "logger"
	LogCallerKey       = "caller"
	LogMessageKey      = "msg"
	LogStacktraceKey   = "stacktrace"
	LogRequestIDKey    = "request_id"
	LogFunctionKey     = "function"
	LogErrorCodeKey    = "error_code"
	LogErrorTypeKey    = "error_type"
	LogErrorMessageKey = "error_message"
	LogEncodingJSON    = "json"
	LogEncodingConsole = "console"
	LogOutputStdout    = "stdout"
	LogOutputStderr    = "stderr"
	LogLevelProduction = "INFO"
)

// Message constants for application
const (
	MsgApplicationStarting   = "Application starting"
	MsgFailedToLoadConfig    = "Failed to load configuration"
	MsgFailedToInitDB        = "Failed to initialize database"
	MsgServerStarting        = "Server starting"
	MsgServerFailedToStart   = "Server failed to start"
	MsgServerShuttingDown    = "Server shutting down"
	MsgServerShutdownError   = "Error during server shutdown"
	MsgServerStopped         = "Server stopped"
	MsgRequestReceived       = "Request received"
	MsgRequestCompleted      = "Request completed"
	MsgSettingUpRoutes       = "Setting up API routes"
	MsgHealthcheckRequest    = "Handling healthcheck request"
	MsgHealthy               = "Healthy"
	MsgHandlingQRCodeRequest = "Handling QR code request"
	MsgHandlingShortenURL    = "Handling shorten URL request"
)

// Cache namespaces
const (
	SVGNamespace = "SVG"
	PNGNamespace = "PNG"
)

// QR rendering defaults
const (
	DefaultForeground = "#000000"
	DefaultBackground = "#ffffff"
	PreviewSize       = 256
	MinRasterSize     = 64
	MaxRasterSize     = 4096
)

// Link history paging
const (
	DefaultLinksLimit = 20
	MaxLinksLimit     = 100
)
