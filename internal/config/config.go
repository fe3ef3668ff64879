package config

import (
	"flag"

	"k8s.io/utils/env"

	"github.com/shelfmark/shelfmark-web/internal/constant"
)

// StorageMode selects the backing database for tier data.
type StorageMode string

const (
	StorageModeInMemory StorageMode = "in-memory"
	StorageModeDisk     StorageMode = "disk"
	StorageModeExternal StorageMode = "external"

	DefaultDataPath = constant.DefaultDataPath
)

// Config holds application configuration
type Config struct {
	// Namespace the tier catalog ConfigMap is read from
	Namespace string

	// Server configuration
	Port string

	// Executable-specific configuration
	DebugMode bool
	LogLevel  string

	// Storage configuration
	StorageMode     StorageMode
	DataPath        string
	DBConnectionURL string

	// Session tokens are HS256 JWTs signed with this secret
	JWTSecret string

	// Read the tier catalog from a ConfigMap instead of the embedded default
	CatalogFromCluster bool
}

// Load loads configuration from environment variables
func Load() *Config {
	debugMode, _ := env.GetBool("DEBUG_MODE", false)
	catalogFromCluster, _ := env.GetBool("CATALOG_FROM_CLUSTER", false)

	c := &Config{
		Namespace:          env.GetString("NAMESPACE", constant.DefaultNamespace),
		Port:               env.GetString("PORT", constant.DefaultPort),
		DebugMode:          debugMode,
		LogLevel:           env.GetString("LOG_LEVEL", constant.DefaultLogLevel),
		StorageMode:        StorageMode(env.GetString("STORAGE_MODE", string(StorageModeInMemory))),
		DataPath:           env.GetString("DATA_PATH", DefaultDataPath),
		DBConnectionURL:    env.GetString("DB_CONNECTION_URL", ""),
		JWTSecret:          env.GetString("JWT_SECRET", ""),
		CatalogFromCluster: catalogFromCluster,
	}
	c.bindFlags(flag.CommandLine)

	return c
}

// bindFlags will parse the given flagset and bind values to selected config options
func (c *Config) bindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Namespace, "namespace", c.Namespace, "Namespace holding the tier catalog ConfigMap")
	fs.StringVar(&c.Port, "port", c.Port, "Port to listen on")
	fs.BoolVar(&c.DebugMode, "debug", c.DebugMode, "Enable debug mode")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
	fs.Func("storage", "Storage mode (in-memory, disk, external)", func(s string) error {
		c.StorageMode = StorageMode(s)
		return nil
	})
	fs.StringVar(&c.DataPath, "data-path", c.DataPath, "Path to the SQLite database file for disk storage")
	fs.StringVar(&c.DBConnectionURL, "db-connection-url", c.DBConnectionURL, "Database URL for external storage")
	fs.BoolVar(&c.CatalogFromCluster, "catalog-from-cluster", c.CatalogFromCluster, "Load the tier catalog from a Kubernetes ConfigMap")
}
