package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/peterbourgon/ff"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig holds the snapshot cache settings.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// NATSConfig holds the event bus settings.
type NATSConfig struct {
	Enabled bool
	URL     string
}

// XMPPConfig holds the race-officer alert settings.
type XMPPConfig struct {
	Host     string
	Jid      string
	Password string
	To       string
}

// SimulationConfig holds the racing-area and refresh settings.
type SimulationConfig struct {
	AreaLat         float64
	AreaLon         float64
	ShoreLat        float64
	ShoreLon        float64
	RefreshInterval time.Duration
	Seed            int64
	GribDir         string
}

// TacticalConfig holds the classification thresholds. They are racing
// heuristics rather than derived constants, so deployments may tune them.
type TacticalConfig struct {
	NeutralBandDeg          float64
	SquareBandDeg           float64
	HighBiasDeg             float64
	MediumBiasDeg           float64
	SteadyBandDeg           float64
	OscillatingBandDeg      float64
	ModerateCurrentRatio    float64
	SignificantCurrentRatio float64
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string
}

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NATS       NATSConfig
	XMPP       XMPPConfig
	Simulation SimulationConfig
	Tactical   TacticalConfig
	Logging    LoggingConfig
}

// LoadConfig parses configuration from the given command-line arguments
// with environment-variable fallback (flag server-port becomes
// SERVER_PORT). Call with no arguments to read the environment only.
func LoadConfig(args ...string) (*Config, error) {
	fs := flag.NewFlagSet("regatta-server", flag.ContinueOnError)

	var cfg Config

	fs.StringVar(&cfg.Server.Host, "server-host", "0.0.0.0", "HTTP listen host")
	fs.IntVar(&cfg.Server.Port, "server-port", 8080, "HTTP listen port")
	fs.DurationVar(&cfg.Server.ReadTimeout, "server-read-timeout", 15*time.Second, "HTTP read timeout")
	fs.DurationVar(&cfg.Server.WriteTimeout, "server-write-timeout", 15*time.Second, "HTTP write timeout")
	fs.DurationVar(&cfg.Server.IdleTimeout, "server-idle-timeout", 60*time.Second, "HTTP idle timeout")

	fs.StringVar(&cfg.Database.Host, "db-host", "localhost", "PostgreSQL host")
	fs.IntVar(&cfg.Database.Port, "db-port", 5432, "PostgreSQL port")
	fs.StringVar(&cfg.Database.User, "db-user", "regatta", "PostgreSQL user")
	fs.StringVar(&cfg.Database.Password, "db-password", "", "PostgreSQL password")
	fs.StringVar(&cfg.Database.Database, "db-name", "regatta", "PostgreSQL database name")
	fs.StringVar(&cfg.Database.SSLMode, "db-sslmode", "disable", "PostgreSQL SSL mode")
	fs.IntVar(&cfg.Database.MaxOpenConns, "db-max-open-conns", 25, "Max open database connections")
	fs.IntVar(&cfg.Database.MaxIdleConns, "db-max-idle-conns", 5, "Max idle database connections")
	fs.DurationVar(&cfg.Database.ConnMaxLifetime, "db-conn-max-lifetime", 30*time.Minute, "Max connection lifetime")
	fs.DurationVar(&cfg.Database.ConnMaxIdleTime, "db-conn-max-idle-time", 5*time.Minute, "Max connection idle time")

	fs.BoolVar(&cfg.Redis.Enabled, "redis-enabled", true, "Enable the snapshot cache")
	fs.StringVar(&cfg.Redis.Addr, "redis-addr", "localhost:6379", "Redis address")
	fs.StringVar(&cfg.Redis.Password, "redis-password", "", "Redis password")
	fs.IntVar(&cfg.Redis.DB, "redis-db", 0, "Redis database number")

	fs.BoolVar(&cfg.NATS.Enabled, "nats-enabled", false, "Enable event publishing")
	fs.StringVar(&cfg.NATS.URL, "nats-url", "nats://localhost:4222", "NATS server URL")

	fs.StringVar(&cfg.XMPP.Host, "xmpp-host", "", "XMPP server host")
	fs.StringVar(&cfg.XMPP.Jid, "xmpp-jid", "", "XMPP account JID")
	fs.StringVar(&cfg.XMPP.Password, "xmpp-password", "", "XMPP account password")
	fs.StringVar(&cfg.XMPP.To, "xmpp-to", "", "XMPP alert recipient")

	fs.Float64Var(&cfg.Simulation.AreaLat, "area-lat", 22.20, "Racing area center latitude")
	fs.Float64Var(&cfg.Simulation.AreaLon, "area-lon", 114.00, "Racing area center longitude")
	fs.Float64Var(&cfg.Simulation.ShoreLat, "shore-lat", 22.225, "Nearest shoreline latitude")
	fs.Float64Var(&cfg.Simulation.ShoreLon, "shore-lon", 114.015, "Nearest shoreline longitude")
	fs.DurationVar(&cfg.Simulation.RefreshInterval, "refresh-interval", 5*time.Minute, "Condition refresh interval")
	fs.Int64Var(&cfg.Simulation.Seed, "sim-seed", 0, "Simulation seed, 0 means time-based")
	fs.StringVar(&cfg.Simulation.GribDir, "grib-dir", "", "Directory of GRIB2 wind files, empty disables live wind")

	fs.Float64Var(&cfg.Tactical.NeutralBandDeg, "tactical-neutral-band", 10, "Line-to-wind angle below which the line is square, degrees")
	fs.Float64Var(&cfg.Tactical.SquareBandDeg, "tactical-square-band", 90, "Boundary between the direct and supplementary bias rules, degrees")
	fs.Float64Var(&cfg.Tactical.HighBiasDeg, "tactical-high-bias", 15, "Bias angle for high confidence, degrees")
	fs.Float64Var(&cfg.Tactical.MediumBiasDeg, "tactical-medium-bias", 8, "Bias angle for medium confidence, degrees")
	fs.Float64Var(&cfg.Tactical.SteadyBandDeg, "tactical-steady-band", 10, "Direction swing below which the wind reads steady, degrees")
	fs.Float64Var(&cfg.Tactical.OscillatingBandDeg, "tactical-oscillating-band", 25, "Direction swing below which the wind reads oscillating, degrees")
	fs.Float64Var(&cfg.Tactical.ModerateCurrentRatio, "tactical-moderate-current", 0.05, "Current-to-wind ratio for moderate impact")
	fs.Float64Var(&cfg.Tactical.SignificantCurrentRatio, "tactical-significant-current", 0.15, "Current-to-wind ratio for significant impact")

	fs.StringVar(&cfg.Logging.Level, "log-level", "info", "Log level: debug, info, warn, error")

	if err := ff.Parse(fs, args, ff.WithEnvVarNoPrefix()); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Simulation.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}
	if c.Simulation.AreaLat < -90 || c.Simulation.AreaLat > 90 {
		return fmt.Errorf("invalid racing area latitude: %f", c.Simulation.AreaLat)
	}
	if c.Simulation.AreaLon < -180 || c.Simulation.AreaLon > 180 {
		return fmt.Errorf("invalid racing area longitude: %f", c.Simulation.AreaLon)
	}
	if c.Tactical.MediumBiasDeg > c.Tactical.HighBiasDeg {
		return fmt.Errorf("tactical medium bias threshold exceeds the high threshold")
	}
	if c.Tactical.SteadyBandDeg > c.Tactical.OscillatingBandDeg {
		return fmt.Errorf("tactical steady band exceeds the oscillating band")
	}
	if c.Tactical.ModerateCurrentRatio > c.Tactical.SignificantCurrentRatio {
		return fmt.Errorf("tactical moderate current ratio exceeds the significant ratio")
	}
	return nil
}
