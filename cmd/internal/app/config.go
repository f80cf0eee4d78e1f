package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string // "json" (default) or "pretty"

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// DatabaseURL selects the persistence mode: empty means in-memory stores
	// (dev/test), anything else a Postgres pool.
	DatabaseURL string
	DBSchema    string
	DBMaxConns  int32
	DBMinConns  int32

	// RunMigrations applies embedded SQL migrations at startup.
	RunMigrations bool

	// If true, /readyz returns 503 unless the DB is configured and reachable.
	ReadinessRequireDB bool

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int

	MetricsEnabled bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("TASKBOARD_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("TASKBOARD_LOG_LEVEL", "info"),
		LogFormat: EnvString("TASKBOARD_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("TASKBOARD_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("TASKBOARD_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("TASKBOARD_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("TASKBOARD_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("TASKBOARD_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("TASKBOARD_DATABASE_URL", ""),
		DBSchema:    EnvString("TASKBOARD_DB_SCHEMA", "taskboard"),
		DBMaxConns:  EnvInt32("TASKBOARD_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("TASKBOARD_DB_MIN_CONNS", 0),

		RunMigrations: EnvBool("TASKBOARD_DB_MIGRATE", true),

		ReadinessRequireDB: EnvBool("TASKBOARD_READINESS_REQUIRE_DB", false),

		CORSAllowedOrigins:   EnvStrings("TASKBOARD_CORS_ALLOWED_ORIGINS", nil),
		CORSAllowCredentials: EnvBool("TASKBOARD_CORS_ALLOW_CREDENTIALS", false),
		CORSMaxAgeSeconds:    EnvInt("TASKBOARD_CORS_MAX_AGE_SECONDS", 600),

		MetricsEnabled: EnvBool("TASKBOARD_METRICS_ENABLED", true),
	}
}
