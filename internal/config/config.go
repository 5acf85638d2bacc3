// Package config defines the configuration structures of the CohortMap
// service.  No I/O lives here, only plain data types and validation.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/turtacn/CohortMap/internal/domain/hierarchy"
	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP and gRPC server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadSize   int64         `mapstructure:"max_upload_size"`
}

// Addr returns the HTTP listen address.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// GRPCAddr returns the gRPC listen address.  Empty when gRPC is disabled.
func (s ServerConfig) GRPCAddr() string {
	if s.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", s.Host, s.GRPCPort)
}

// HierarchyConfig holds the program shape and the presentation knobs.
type HierarchyConfig struct {
	RootLabel         string    `mapstructure:"root_label"`
	RootWeight        float64   `mapstructure:"root_weight"`
	CohortOwnerLabel  string    `mapstructure:"cohort_owner_label"`
	CohortOwnerWeight float64   `mapstructure:"cohort_owner_weight"`
	AICoachLabel      string    `mapstructure:"ai_coach_label"`
	AICoachWeight     float64   `mapstructure:"ai_coach_weight"`
	UnassignedLabel   string    `mapstructure:"unassigned_label"`
	LeadSuffix        string    `mapstructure:"lead_suffix"`
	InternSuffix      string    `mapstructure:"intern_suffix"`
	DuplicatePolicy   string    `mapstructure:"duplicate_policy"` // "sum" | "last" | "first" | "reject"
	DisplayEpsilon    float64   `mapstructure:"display_epsilon"`
	ThresholdOptions  []float64 `mapstructure:"threshold_options"`
	DefaultThreshold  float64   `mapstructure:"default_threshold"`
	PreviewRows       int       `mapstructure:"preview_rows"`
}

// Structure converts the configured labels and weights to a hierarchy.Structure.
func (h HierarchyConfig) Structure() hierarchy.Structure {
	return hierarchy.Structure{
		RootLabel:         h.RootLabel,
		RootWeight:        h.RootWeight,
		CohortOwnerLabel:  h.CohortOwnerLabel,
		CohortOwnerWeight: h.CohortOwnerWeight,
		AICoachLabel:      h.AICoachLabel,
		AICoachWeight:     h.AICoachWeight,
		UnassignedLabel:   h.UnassignedLabel,
		LeadSuffix:        h.LeadSuffix,
		InternSuffix:      h.InternSuffix,
	}
}

// Policy parses DuplicatePolicy.
func (h HierarchyConfig) Policy() (hierarchy.DuplicatePolicy, error) {
	return hierarchy.ParseDuplicatePolicy(h.DuplicatePolicy)
}

// CacheConfig selects where built hierarchies are memoised.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"` // "memory" | "redis"
	Size    int           `mapstructure:"size"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// SessionConfig selects where uploaded datasets live between requests.
type SessionConfig struct {
	Backend      string        `mapstructure:"backend"` // "memory" | "redis"
	TTL          time.Duration `mapstructure:"ttl"`
	MaxSessions  int           `mapstructure:"max_sessions"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds the optional export bucket.
type MinIOConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	Region        string        `mapstructure:"region"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// SourcesConfig names the files served when no dataset was uploaded.
type SourcesConfig struct {
	InternsPath string        `mapstructure:"interns_path"`
	LeadsPath   string        `mapstructure:"leads_path"`
	Watch       bool          `mapstructure:"watch"`
	Debounce    time.Duration `mapstructure:"debounce"`
}

// Configured reports whether both file paths are set.
func (s SourcesConfig) Configured() bool { return s.InternsPath != "" && s.LeadsPath != "" }

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// RateLimitConfig bounds how fast one client may upload datasets.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// CORSConfig holds cross-origin settings for browser front ends.
type CORSConfig struct {
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	AllowedMethods []string      `mapstructure:"allowed_methods"`
	AllowedHeaders []string      `mapstructure:"allowed_headers"`
	MaxAge         time.Duration `mapstructure:"max_age"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Every component reads its
// settings from the relevant sub-struct.
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Log       logging.LogConfig `mapstructure:"log"`
	Hierarchy HierarchyConfig   `mapstructure:"hierarchy"`
	Cache     CacheConfig       `mapstructure:"cache"`
	Session   SessionConfig     `mapstructure:"session"`
	Redis     RedisConfig       `mapstructure:"redis"`
	MinIO     MinIOConfig       `mapstructure:"minio"`
	Sources   SourcesConfig     `mapstructure:"sources"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
	RateLimit RateLimitConfig   `mapstructure:"ratelimit"`
	CORS      CORSConfig        `mapstructure:"cors"`
}

// UsesRedis reports whether any component is configured to talk to Redis.
func (c *Config) UsesRedis() bool {
	return c.Cache.Backend == BackendRedis || c.Session.Backend == BackendRedis
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.  It
// returns the first error encountered; callers treat any error as fatal.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("config: server.grpc_port %d is out of range [0, 65535]", c.Server.GRPCPort)
	}
	if c.Server.GRPCPort != 0 && c.Server.GRPCPort == c.Server.Port {
		return fmt.Errorf("config: server.grpc_port must differ from server.port")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("config: server.max_upload_size must be positive, got %d", c.Server.MaxUploadSize)
	}

	// Hierarchy
	if err := c.Hierarchy.Structure().Validate(); err != nil {
		return fmt.Errorf("config: hierarchy: %w", err)
	}
	if _, err := c.Hierarchy.Policy(); err != nil {
		return fmt.Errorf("config: hierarchy.duplicate_policy: %w", err)
	}
	if c.Hierarchy.DisplayEpsilon <= 0 || math.IsInf(c.Hierarchy.DisplayEpsilon, 0) || math.IsNaN(c.Hierarchy.DisplayEpsilon) {
		return fmt.Errorf("config: hierarchy.display_epsilon must be a positive number")
	}
	for _, th := range append([]float64{c.Hierarchy.DefaultThreshold}, c.Hierarchy.ThresholdOptions...) {
		if th < 0 || math.IsInf(th, 0) || math.IsNaN(th) {
			return fmt.Errorf("config: hierarchy thresholds must be finite and non-negative, got %v", th)
		}
	}

	// Cache and session
	if err := checkBackend("cache.backend", c.Cache.Backend); err != nil {
		return err
	}
	if err := checkBackend("session.backend", c.Session.Backend); err != nil {
		return err
	}
	if c.Cache.Size < 1 {
		return fmt.Errorf("config: cache.size must be >= 1, got %d", c.Cache.Size)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: session.ttl must be positive")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("config: session.cookie_name is required")
	}

	// Redis
	if c.UsesRedis() && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when a redis backend is selected")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// MinIO
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.endpoint and minio.bucket are required when minio is enabled")
		}
	}

	// Sources
	if (c.Sources.InternsPath == "") != (c.Sources.LeadsPath == "") {
		return fmt.Errorf("config: sources.interns_path and sources.leads_path must be set together")
	}

	// Rate limit
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1) {
		return fmt.Errorf("config: ratelimit needs a positive requests_per_second and burst")
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

func checkBackend(key, value string) error {
	switch value {
	case BackendMemory, BackendRedis:
		return nil
	}
	return fmt.Errorf("config: %s %q is invalid; expected memory|redis", key, value)
}

//Personal.AI order the ending
