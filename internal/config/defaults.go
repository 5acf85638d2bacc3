package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/turtacn/CohortMap/internal/domain/hierarchy"
)

// Backend names accepted by cache.backend and session.backend.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultGRPCPort        = 9090
	DefaultServerMode      = "release"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxUploadSize   = 32 << 20

	DefaultDuplicatePolicy = "sum"
	DefaultPreviewRows     = 10

	DefaultCacheSize = 64
	DefaultCacheTTL  = 30 * time.Minute

	DefaultSessionTTL     = 2 * time.Hour
	DefaultMaxSessions    = 1024
	DefaultCookieName     = "cohortmap_session"
	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPrefix    = "cohortmap:"
	DefaultPresignExpiry  = 15 * time.Minute
	DefaultSourceDebounce = 500 * time.Millisecond

	DefaultMetricsNamespace = "cohortmap"
	DefaultMetricsPath      = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// setDefaults registers every default with v.  Registering keys is also what
// lets AutomaticEnv resolve COHORTMAP_* overrides during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.grpc_port", DefaultGRPCPort)
	v.SetDefault("server.mode", DefaultServerMode)
	v.SetDefault("server.read_timeout", DefaultReadTimeout)
	v.SetDefault("server.write_timeout", DefaultWriteTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("server.max_upload_size", DefaultMaxUploadSize)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("hierarchy.root_label", hierarchy.DefaultRootLabel)
	v.SetDefault("hierarchy.root_weight", hierarchy.DefaultRootWeight)
	v.SetDefault("hierarchy.cohort_owner_label", hierarchy.DefaultCohortOwnerLabel)
	v.SetDefault("hierarchy.cohort_owner_weight", hierarchy.DefaultCohortOwnerWeight)
	v.SetDefault("hierarchy.ai_coach_label", hierarchy.DefaultAICoachLabel)
	v.SetDefault("hierarchy.ai_coach_weight", hierarchy.DefaultAICoachWeight)
	v.SetDefault("hierarchy.unassigned_label", hierarchy.DefaultUnassignedLabel)
	v.SetDefault("hierarchy.lead_suffix", hierarchy.DefaultLeadSuffix)
	v.SetDefault("hierarchy.intern_suffix", hierarchy.DefaultInternSuffix)
	v.SetDefault("hierarchy.duplicate_policy", DefaultDuplicatePolicy)
	v.SetDefault("hierarchy.display_epsilon", hierarchy.DefaultEpsilon)
	v.SetDefault("hierarchy.threshold_options", hierarchy.ThresholdOptions())
	v.SetDefault("hierarchy.default_threshold", float64(hierarchy.DefaultThreshold))
	v.SetDefault("hierarchy.preview_rows", DefaultPreviewRows)

	v.SetDefault("cache.backend", BackendMemory)
	v.SetDefault("cache.size", DefaultCacheSize)
	v.SetDefault("cache.ttl", DefaultCacheTTL)

	v.SetDefault("session.backend", BackendMemory)
	v.SetDefault("session.ttl", DefaultSessionTTL)
	v.SetDefault("session.max_sessions", DefaultMaxSessions)
	v.SetDefault("session.cookie_name", DefaultCookieName)
	v.SetDefault("session.cookie_secure", false)

	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.key_prefix", DefaultRedisPrefix)

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "")
	v.SetDefault("minio.region", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.presign_expiry", DefaultPresignExpiry)

	v.SetDefault("sources.interns_path", "")
	v.SetDefault("sources.leads_path", "")
	v.SetDefault("sources.watch", false)
	v.SetDefault("sources.debounce", DefaultSourceDebounce)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.path", DefaultMetricsPath)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_second", 2.0)
	v.SetDefault("ratelimit.burst", 5)

	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "X-Session-ID", "X-Request-ID"})
	v.SetDefault("cors.max_age", 10*time.Minute)
}

// ApplyDefaults fills zero-value fields in cfg with the defaults.  Fields
// already set are left unchanged so explicit configuration always wins.  It
// is used for configs assembled in code, such as by the CLI.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxUploadSize == 0 {
		cfg.Server.MaxUploadSize = DefaultMaxUploadSize
	}
	// GRPCPort 0 means disabled and is left alone.

	// ── Hierarchy ─────────────────────────────────────────────────────────────
	h := &cfg.Hierarchy
	d := hierarchy.DefaultStructure()
	if h.RootLabel == "" {
		h.RootLabel = d.RootLabel
		h.RootWeight = d.RootWeight
	}
	if h.CohortOwnerLabel == "" {
		h.CohortOwnerLabel = d.CohortOwnerLabel
		h.CohortOwnerWeight = d.CohortOwnerWeight
	}
	if h.AICoachLabel == "" {
		h.AICoachLabel = d.AICoachLabel
		h.AICoachWeight = d.AICoachWeight
	}
	if h.UnassignedLabel == "" {
		h.UnassignedLabel = d.UnassignedLabel
	}
	if h.LeadSuffix == "" {
		h.LeadSuffix = d.LeadSuffix
	}
	if h.InternSuffix == "" {
		h.InternSuffix = d.InternSuffix
	}
	if h.DuplicatePolicy == "" {
		h.DuplicatePolicy = DefaultDuplicatePolicy
	}
	if h.DisplayEpsilon == 0 {
		h.DisplayEpsilon = hierarchy.DefaultEpsilon
	}
	if len(h.ThresholdOptions) == 0 {
		h.ThresholdOptions = hierarchy.ThresholdOptions()
	}
	if h.DefaultThreshold == 0 {
		h.DefaultThreshold = hierarchy.DefaultThreshold
	}
	if h.PreviewRows == 0 {
		h.PreviewRows = DefaultPreviewRows
	}

	// ── Cache / Session ───────────────────────────────────────────────────────
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = BackendMemory
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = DefaultCacheSize
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = BackendMemory
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = DefaultSessionTTL
	}
	if cfg.Session.MaxSessions == 0 {
		cfg.Session.MaxSessions = DefaultMaxSessions
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = DefaultCookieName
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisPrefix
	}

	// ── MinIO / Sources ───────────────────────────────────────────────────────
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = DefaultPresignExpiry
	}
	if cfg.Sources.Debounce == 0 {
		cfg.Sources.Debounce = DefaultSourceDebounce
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
