package config

import (
	"errors"
	"time"

	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
)

type Config struct {
	AppEnv             string `json:"app_env"`
	ServerPort         int    `json:"server_port"`
	JWTSecretKey       string `json:"jwt_secret_key"`
	JWTIssuer          string `json:"jwt_issuer"`
	JWTAudience        string `json:"jwt_audience"`
	JWTExpirationHours int    `json:"jwt_expiration_hours"`
	DefaultRateLimit   int    `json:"default_rate_limit"`
	GlobalRateLimit    int    `json:"global_rate_limit"`
	MaxRequestBytes    int64  `json:"max_request_bytes"`
	Tenant             TenantConfig
	Telemetry          TelemetryConfig
}

type TenantConfig struct {
	Claim          string
	Header         string
	RouteParam     string
	QueryKey       string
	CacheTTL       time.Duration
	CacheSize      int
	MismatchPolicy tenancy.MismatchPolicy
}

type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
	OTLPHeaders  string
}

// Enabled reports whether traces should be exported.
func (c TelemetryConfig) Enabled() bool {
	return c.OTLPEndpoint != ""
}

func Load() (*Config, error) {
	secret := getEnvWithDefault("JWT_SECRET_KEY", "")
	if secret == "" {
		return nil, errors.New("JWT_SECRET_KEY is required")
	}

	policy, err := tenancy.ParseMismatchPolicy(getEnvWithDefault("TENANT_MISMATCH_POLICY", string(tenancy.MismatchReject)))
	if err != nil {
		return nil, err
	}

	return &Config{
		AppEnv:             getEnvWithDefault("APP_ENV", "development"),
		ServerPort:         getEnvIntWithDefault("SERVER_PORT", 10000),
		JWTSecretKey:       secret,
		JWTIssuer:          getEnvWithDefault("JWT_ISSUER", "tenant-notify-api"),
		JWTAudience:        getEnvWithDefault("JWT_AUDIENCE", "tenant-notify-api"),
		JWTExpirationHours: getEnvIntWithDefault("JWT_EXPIRATION_HOURS", 24),
		DefaultRateLimit:   getEnvIntWithDefault("DEFAULT_RATE_LIMIT", 1000), // per tenant per minute
		GlobalRateLimit:    getEnvIntWithDefault("GLOBAL_RATE_LIMIT", 10000), // per IP per minute
		MaxRequestBytes:    int64(getEnvIntWithDefault("MAX_REQUEST_BYTES", 1<<20)),
		Tenant: TenantConfig{
			Claim:          getEnvWithDefault("TENANT_CLAIM", "tenant_id"),
			Header:         getEnvWithDefault("TENANT_HEADER", "X-Tenant-ID"),
			RouteParam:     "tenant",
			QueryKey:       "tenant",
			CacheTTL:       getEnvDurationWithDefault("TENANT_CACHE_TTL", 5*time.Second),
			CacheSize:      getEnvIntWithDefault("TENANT_CACHE_SIZE", 1024),
			MismatchPolicy: policy,
		},
		Telemetry: TelemetryConfig{
			ServiceName:  getEnvWithDefault("OTEL_SERVICE_NAME", "tenant-notify-api"),
			OTLPEndpoint: getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OTLPHeaders:  getEnvWithDefault("OTEL_EXPORTER_OTLP_HEADERS", ""),
		},
	}, nil
}
