package constant

const (
	DefaultNamespace = "shelfmark"
	DefaultPort      = "8080"
	DefaultDataPath  = "/data/shelfmark.db"
	DefaultLogLevel  = "info"

	// CatalogConfigMap holds the tier catalog override when running in a cluster.
	CatalogConfigMap = "tier-catalog"
	// CatalogConfigMapKey is the ConfigMap data key containing the catalog YAML.
	CatalogConfigMapKey = "catalog"

	// SessionCookie carries the session JWT for browser requests.
	SessionCookie = "sb-access-token"

	// UserContextKey is the gin context key the auth middleware stores the caller under.
	UserContextKey = "user"
)

const (
	// AdminRequestsPerSecond and AdminBurst throttle the tier admin API.
	AdminRequestsPerSecond = 5
	AdminBurst             = 20

	// ResendAPIKeyEnv names the variable the email diagnostic reads its API key from.
	ResendAPIKeyEnv = "RESEND_API_KEY"
)
