package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rinkcharts/shotmap/internal/platform/logging"
)

// Config stores runtime configuration for the fetcher.
type Config struct {
	AppEnv                    string
	ServiceName               string
	ServiceVersion            string
	Season                    string
	StandingsDate             string
	OutputDir                 string
	MaxTeamWorkers            int
	NHLEBaseURL               string
	NHLETimeout               time.Duration
	NHLEMaxRetries            int
	NHLECircuitEnabled        bool
	NHLECircuitFailureCount   int
	NHLECircuitOpenTimeout    time.Duration
	NHLECircuitHalfOpenMaxReq int
	CacheEnabled              bool
	CacheTTL                  time.Duration
	ArchiveEnabled            bool
	DBURL                     string
	UptraceEnabled            bool
	UptraceDSN                string
	PyroscopeEnabled          bool
	PyroscopeServerAddress    string
	PyroscopeAppName          string
	PyroscopeAuthToken        string
	PyroscopeBasicAuthUser    string
	PyroscopeBasicAuthPass    string
	PyroscopeUploadRate       time.Duration
	LogLevel                  logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	season := strings.TrimSpace(getEnv("SEASON", "20232024"))
	if err := validateSeason(season); err != nil {
		return Config{}, err
	}

	standingsDate := strings.TrimSpace(getEnv("STANDINGS_DATE", "2023-12-01"))
	if standingsDate == "" {
		return Config{}, fmt.Errorf("STANDINGS_DATE cannot be empty")
	}

	maxTeamWorkers, err := getEnvAsInt("MAX_TEAM_WORKERS", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_TEAM_WORKERS: %w", err)
	}
	if maxTeamWorkers < 0 {
		return Config{}, fmt.Errorf("MAX_TEAM_WORKERS must be >= 0")
	}

	nhleTimeout, err := time.ParseDuration(getEnv("NHLE_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NHLE_TIMEOUT: %w", err)
	}
	if nhleTimeout <= 0 {
		return Config{}, fmt.Errorf("NHLE_TIMEOUT must be > 0")
	}

	nhleMaxRetries, err := getEnvAsInt("NHLE_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse NHLE_MAX_RETRIES: %w", err)
	}
	if nhleMaxRetries < 0 {
		return Config{}, fmt.Errorf("NHLE_MAX_RETRIES must be >= 0")
	}

	nhleCircuitEnabled, err := strconv.ParseBool(getEnv("NHLE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NHLE_CIRCUIT_ENABLED: %w", err)
	}
	nhleCircuitFailureCount, err := getEnvAsInt("NHLE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse NHLE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if nhleCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("NHLE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	nhleCircuitOpenTimeout, err := time.ParseDuration(getEnv("NHLE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NHLE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if nhleCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("NHLE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	nhleCircuitHalfOpenMaxReq, err := getEnvAsInt("NHLE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse NHLE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if nhleCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("NHLE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	archiveEnabled, err := strconv.ParseBool(getEnv("ARCHIVE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ARCHIVE_ENABLED: %w", err)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if archiveEnabled && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when ARCHIVE_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:                    appEnv,
		ServiceName:               getEnv("APP_SERVICE_NAME", "shotmap-fetcher"),
		ServiceVersion:            getEnv("APP_SERVICE_VERSION", "dev"),
		Season:                    season,
		StandingsDate:             standingsDate,
		OutputDir:                 getEnv("OUTPUT_DIR", "data"),
		MaxTeamWorkers:            maxTeamWorkers,
		NHLEBaseURL:               strings.TrimSpace(getEnv("NHLE_BASE_URL", "https://api-web.nhle.com/v1")),
		NHLETimeout:               nhleTimeout,
		NHLEMaxRetries:            nhleMaxRetries,
		NHLECircuitEnabled:        nhleCircuitEnabled,
		NHLECircuitFailureCount:   nhleCircuitFailureCount,
		NHLECircuitOpenTimeout:    nhleCircuitOpenTimeout,
		NHLECircuitHalfOpenMaxReq: nhleCircuitHalfOpenMaxReq,
		CacheEnabled:              cacheEnabled,
		CacheTTL:                  cacheTTL,
		ArchiveEnabled:            archiveEnabled,
		DBURL:                     dbURL,
		UptraceEnabled:            uptraceEnabled,
		UptraceDSN:                uptraceDSN,
		PyroscopeEnabled:          pyroscopeEnabled,
		PyroscopeServerAddress:    pyroscopeServerAddress,
		PyroscopeAuthToken:        strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:    strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPass:    strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:       pyroscopeUploadRate,
		LogLevel:                  parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}

	return cfg, nil
}

// validateSeason rejects anything that is not an eight-digit start+end year
// pair, e.g. "20232024".
func validateSeason(v string) error {
	if len(v) != 8 {
		return fmt.Errorf("invalid SEASON %q: expected 8 digits like 20232024", v)
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid SEASON %q: expected 8 digits like 20232024", v)
		}
	}
	startYear, err := strconv.Atoi(v[:4])
	if err != nil {
		return fmt.Errorf("invalid SEASON %q: %w", v, err)
	}
	endYear, err := strconv.Atoi(v[4:])
	if err != nil {
		return fmt.Errorf("invalid SEASON %q: %w", v, err)
	}
	if endYear != startYear+1 {
		return fmt.Errorf("invalid SEASON %q: end year must follow start year", v)
	}

	return nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
