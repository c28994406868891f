package store

import (
	"time"

	"subshift/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot knobs; zero takes the defaults in openPG
	ConnectRetries int
	PingTimeout    time.Duration
}

// PGFromConfig reads SERVICE_PGSQL_* and enables the backend when DBURL is set
func PGFromConfig(root config.Conf) PGConfig {
	c := root.Prefix("SERVICE_PGSQL_")
	return PGConfig{
		Enabled:        c.Has("DBURL"),
		URL:            c.MayString("DBURL", ""),
		MaxConns:       int32(c.MayInt("MAX_CONNS", 4)),
		SlowQueryMs:    c.MayInt("SLOW_MS", 500),
		LogSQL:         c.MayBool("LOG_SQL", false),
		ConnectRetries: c.MayInt("CONNECT_RETRIES", 6),
		PingTimeout:    c.MayDuration("PING_TIMEOUT", 3*time.Second),
	}
}
