package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Inventory InventoryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodySize     int64
	TrustedProxies  []string
	// RateLimit is the number of requests a client may make per RateWindow.
	// Zero disables rate limiting.
	RateLimit  int
	RateWindow time.Duration
	// SwaggerEnabled serves the API browser under /swagger
	SwaggerEnabled bool
}

// Addr returns the listen address.
func (h HTTPConfig) Addr() string {
	return h.Host + ":" + h.Port
}

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
	LogFullSQL      bool
}

// DSN returns the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// MigrationURL returns the postgres URL used by golang-migrate.
func (d DatabaseConfig) MigrationURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string // OTEL Collector gRPC endpoint
	Insecure          bool
	ServiceName       string
	SamplingRatio     float64
	MetricsInterval   time.Duration
	DBTraceEnabled    bool
	LogsEnabled       bool
	ProfilerEnabled   bool
	ProfilerAddress   string // Pyroscope server URL
}

// Inventory store backends
const (
	StoreMemory   = "memory"
	StoreDatabase = "database"
)

// Location cache backends
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// InventoryConfig holds the engine's own settings
type InventoryConfig struct {
	Store                string // memory, database
	LocationCache        string // memory, redis
	LocationCacheTTL     time.Duration
	ForecastHistoryWeeks int
	ReorderLeadTime      time.Duration
	ReorderJobEnabled    bool
	ReorderInterval      time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with INVENTORY_ prefix (e.g., INVENTORY_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/inventory")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v)
}

// LoadFile loads configuration from an explicit file path, still honouring
// environment overrides.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("INVENTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		HTTP: HTTPConfig{
			Host:            v.GetString("http.host"),
			Port:            v.GetString("http.port"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			MaxBodySize:     v.GetInt64("http.max_body_size"),
			TrustedProxies:  v.GetStringSlice("http.trusted_proxies"),
			RateLimit:       v.GetInt("http.rate_limit"),
			RateWindow:      v.GetDuration("http.rate_window"),
			SwaggerEnabled:  v.GetBool("http.swagger_enabled"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			SlowThreshold:   v.GetDuration("database.slow_threshold"),
			LogFullSQL:      v.GetBool("database.log_full_sql"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ServiceName:       v.GetString("telemetry.service_name"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			ProfilerEnabled:   v.GetBool("telemetry.profiler_enabled"),
			ProfilerAddress:   v.GetString("telemetry.profiler_address"),
		},
		Inventory: InventoryConfig{
			Store:                v.GetString("inventory.store"),
			LocationCache:        v.GetString("inventory.location_cache"),
			LocationCacheTTL:     v.GetDuration("inventory.location_cache_ttl"),
			ForecastHistoryWeeks: v.GetInt("inventory.forecast_history_weeks"),
			ReorderLeadTime:      v.GetDuration("inventory.reorder_lead_time"),
			ReorderJobEnabled:    v.GetBool("inventory.reorder_job_enabled"),
			ReorderInterval:      v.GetDuration("inventory.reorder_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "inventory"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == "" {
		cfg.HTTP.Port = "8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateWindow == 0 {
		cfg.HTTP.RateWindow = time.Minute
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "inventory"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "inventory.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.SlowThreshold == 0 {
		cfg.Database.SlowThreshold = 200 * time.Millisecond
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ProfilerAddress == "" {
		cfg.Telemetry.ProfilerAddress = "http://localhost:4040"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 30 * time.Second
	}
	if cfg.Inventory.Store == "" {
		cfg.Inventory.Store = StoreMemory
	}
	if cfg.Inventory.LocationCache == "" {
		cfg.Inventory.LocationCache = CacheMemory
	}
	if cfg.Inventory.LocationCacheTTL == 0 {
		cfg.Inventory.LocationCacheTTL = 5 * time.Minute
	}
	if cfg.Inventory.ForecastHistoryWeeks == 0 {
		cfg.Inventory.ForecastHistoryWeeks = 8
	}
	if cfg.Inventory.ReorderLeadTime == 0 {
		cfg.Inventory.ReorderLeadTime = 7 * 24 * time.Hour
	}
	if cfg.Inventory.ReorderInterval == 0 {
		cfg.Inventory.ReorderInterval = time.Hour
	}
}

// Validate checks cross-field constraints after defaults are applied.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit cannot be negative")
	}

	switch c.Inventory.Store {
	case StoreMemory, StoreDatabase:
	default:
		return fmt.Errorf("inventory.store must be %q or %q, got %q", StoreMemory, StoreDatabase, c.Inventory.Store)
	}
	switch c.Inventory.LocationCache {
	case CacheMemory:
	case CacheRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("inventory.location_cache=redis requires redis.enabled")
		}
	default:
		return fmt.Errorf("inventory.location_cache must be %q or %q, got %q", CacheMemory, CacheRedis, c.Inventory.LocationCache)
	}
	if c.Inventory.ForecastHistoryWeeks < 0 {
		return fmt.Errorf("inventory.forecast_history_weeks cannot be negative")
	}
	if c.Inventory.LocationCacheTTL < 0 || c.Inventory.ReorderLeadTime < 0 || c.Inventory.ReorderInterval < 0 {
		return fmt.Errorf("inventory durations cannot be negative")
	}

	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %v", c.Telemetry.SamplingRatio)
	}

	if c.IsProduction() && c.HTTP.SwaggerEnabled {
		return fmt.Errorf("http.swagger_enabled is not allowed in production")
	}
	if c.IsProduction() && c.Inventory.Store == StoreMemory {
		return fmt.Errorf("inventory.store=memory is not allowed in production")
	}
	return nil
}

// IsProduction reports whether the app runs with env=production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsDevelopment reports whether the app runs with env=development.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}
