package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultConfigName         = "config"
	defaultMaxRequestBodySize = "64KB"

	// EnvConfigDir overrides the directory searched first for the YAML file.
	EnvConfigDir = "GREENPOINTS_CONFIG_DIR"
)

// Database drivers supported by the ledger store.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Code styles accepted by code.style.
const (
	CodeStyleOpaque     = "opaque"
	CodeStyleStructured = "structured"
)

// OTP delivery providers accepted by delivery.provider.
const (
	DeliveryProviderLog    = "log"
	DeliveryProviderResend = "resend"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Database DatabaseConfig `json:"database" yaml:"database"`

	// Postgres is only read when database.driver is "postgres".
	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// SecretKey has no defaults. Missing values fail Validate.
	SecretKey struct {
		Session string `json:"session" yaml:"session"`
		OTP     string `json:"otp" yaml:"otp"`
	} `json:"secretKey" yaml:"secretKey"`

	Session SessionConfig `json:"session" yaml:"session"`

	Admin AdminConfig `json:"admin" yaml:"admin"`

	Points PointsConfig `json:"points" yaml:"points"`

	Code CodeConfig `json:"code" yaml:"code"`

	OTP OTPConfig `json:"otp" yaml:"otp"`

	Delivery DeliveryConfig `json:"delivery" yaml:"delivery"`

	// QRCode configuration for redeemable code QR images
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`

	Tracing *TracingConfig `json:"tracing" yaml:"tracing"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// DatabaseConfig selects the persistence engine.
type DatabaseConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	// DSN is the SQLite file path (or ":memory:").
	DSN           string        `json:"dsn" yaml:"dsn"`
	SlowThreshold time.Duration `json:"slowThreshold" yaml:"slowThreshold"`
}

// SessionConfig controls the signed session token handed out after login.
type SessionConfig struct {
	TTL    time.Duration `json:"ttl" yaml:"ttl"`
	Issuer string        `json:"issuer" yaml:"issuer"`
}

// AdminConfig holds the administrator allowlist as a comma-separated list.
type AdminConfig struct {
	Emails string `json:"emails" yaml:"emails"`
}

// PointsConfig bounds the point value of a single code (inclusive).
type PointsConfig struct {
	Min int64 `json:"min" yaml:"min"`
	Max int64 `json:"max" yaml:"max"`
}

// CodeConfig defines the shape of issued transaction codes.
type CodeConfig struct {
	Style       string `json:"style" yaml:"style"`
	Length      int    `json:"length" yaml:"length"`
	MaxAttempts int    `json:"maxAttempts" yaml:"maxAttempts"`
}

// OTPConfig defines login challenge thresholds.
type OTPConfig struct {
	TTL         time.Duration `json:"ttl" yaml:"ttl"`
	MaxAttempts int           `json:"maxAttempts" yaml:"maxAttempts"`
	// RequestRate is the allowed login code requests per second per client.
	RequestRate  float64 `json:"requestRate" yaml:"requestRate"`
	RequestBurst int     `json:"requestBurst" yaml:"requestBurst"`
}

// DeliveryConfig defines how one-time passcodes leave the service.
type DeliveryConfig struct {
	Provider       string        `json:"provider" yaml:"provider"`
	Workers        int           `json:"workers" yaml:"workers"`
	QueueSize      int           `json:"queueSize" yaml:"queueSize"`
	MaxRetries     int           `json:"maxRetries" yaml:"maxRetries"`
	InitialBackoff time.Duration `json:"initialBackoff" yaml:"initialBackoff"`
	Resend         ResendConfig  `json:"resend" yaml:"resend"`
}

// ResendConfig configures the Resend-compatible email API.
type ResendConfig struct {
	BaseURL string        `json:"baseUrl" yaml:"baseUrl"`
	APIKey  string        `json:"apiKey" yaml:"apiKey"`
	From    string        `json:"from" yaml:"from"`
	Subject string        `json:"subject" yaml:"subject"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// TracingConfig enables the OpenTelemetry Jaeger exporter.
type TracingConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// AdminAllowlist returns the normalized administrator emails.
func (c *Config) AdminAllowlist() []string {
	raw := strings.Split(c.Admin.Emails, ",")
	emails := make([]string, 0, len(raw))
	for _, e := range raw {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			emails = append(emails, e)
		}
	}

	return emails
}

// LoadWithEnv loads <name>.yaml through koanf and overlays environment variables.
func LoadWithEnv[T any](name string, configPath ...string) (*T, error) {
	cfg := new(T)
	k := koanf.New(".")

	configFile, err := findConfigFile(name, configPath)
	if err != nil {
		return nil, err
	}

	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", name)
	}

	yamlKeys := k.Raw()

	// ADMIN_EMAILS -> admin.emails, SECRETKEY_OTP -> secretKey.otp
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			return canonicalizeEnvKey(key, yamlKeys), value
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: strings.EqualFold,
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", name)
	}

	return cfg, nil
}

func findConfigFile(name string, configPath []string) (string, error) {
	searchPaths := make([]string, 0, len(configPath)+2)
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		searchPaths = append(searchPaths, dir)
	}
	searchPaths = append(searchPaths, ".")

	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	for _, path := range searchPaths {
		candidate := filepath.Join(path, name+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.Errorf("config file %s.yaml not found in any search path", name)
}

// New loads, defaults and validates the service configuration.
func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config](defaultConfigName, "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if cfg.Database.Driver == DriverPostgres && cfg.Postgres != nil {
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.HTTP.MaxRequestBodySize) == "" {
		c.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Driver == DriverSQLite && c.Database.DSN == "" {
		c.Database.DSN = "greenpoints.db"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 12 * time.Hour
	}
	if c.Session.Issuer == "" {
		c.Session.Issuer = "greenpoints"
	}
	if c.Code.Style == "" {
		c.Code.Style = CodeStyleOpaque
	}
	if c.Code.Length == 0 {
		c.Code.Length = 8
	}
	if c.Code.MaxAttempts == 0 {
		c.Code.MaxAttempts = 10
	}
	// An explicit max keeps min as configured, so [0, max] stays expressible.
	if c.Points.Min == 0 && c.Points.Max == 0 {
		c.Points.Min = 1
		c.Points.Max = 999
	}
	if c.OTP.TTL == 0 {
		c.OTP.TTL = 10 * time.Minute
	}
	if c.OTP.MaxAttempts == 0 {
		c.OTP.MaxAttempts = 5
	}
	if c.OTP.RequestRate == 0 {
		c.OTP.RequestRate = 0.2
	}
	if c.OTP.RequestBurst == 0 {
		c.OTP.RequestBurst = 3
	}
	if c.Delivery.Provider == "" {
		c.Delivery.Provider = DeliveryProviderLog
	}
	if c.Delivery.Workers == 0 {
		c.Delivery.Workers = 2
	}
	if c.Delivery.QueueSize == 0 {
		c.Delivery.QueueSize = 128
	}
	if c.Delivery.MaxRetries == 0 {
		c.Delivery.MaxRetries = 3
	}
	if c.Delivery.InitialBackoff == 0 {
		c.Delivery.InitialBackoff = 500 * time.Millisecond
	}
}

// Validate rejects configurations the ledger cannot run safely with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SecretKey.Session) == "" {
		return errors.New("secretKey.session is required")
	}
	if strings.TrimSpace(c.SecretKey.OTP) == "" {
		return errors.New("secretKey.otp is required")
	}

	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Postgres == nil {
			return errors.New("postgres section is required for the postgres driver")
		}
	default:
		return errors.Errorf("unknown database driver: %s", c.Database.Driver)
	}

	if c.Points.Min < 0 || c.Points.Max < c.Points.Min {
		return errors.Errorf("invalid points bound [%d, %d]", c.Points.Min, c.Points.Max)
	}

	switch c.Code.Style {
	case CodeStyleOpaque:
		if c.Code.Length < 4 {
			return errors.Errorf("code.length must be at least 4, got %d", c.Code.Length)
		}
	case CodeStyleStructured:
		// The last three characters carry the point value.
		if c.Points.Max > 999 {
			return errors.Errorf("structured codes support at most 999 points, got %d", c.Points.Max)
		}
	default:
		return errors.Errorf("unknown code style: %s", c.Code.Style)
	}

	if c.Code.MaxAttempts < 1 {
		return errors.New("code.maxAttempts must be positive")
	}
	if c.OTP.MaxAttempts < 1 || c.OTP.TTL <= 0 {
		return errors.New("otp.maxAttempts and otp.ttl must be positive")
	}

	switch c.Delivery.Provider {
	case DeliveryProviderLog:
	case DeliveryProviderResend:
		if c.Delivery.Resend.APIKey == "" || c.Delivery.Resend.From == "" {
			return errors.New("delivery.resend.apiKey and delivery.resend.from are required")
		}
	default:
		return errors.Errorf("unknown delivery provider: %s", c.Delivery.Provider)
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		matched, next, ok := findExistingSegment(current, segment)
		if !ok {
			canonical = append(canonical, segment)
			current = nil

			continue
		}
		canonical = append(canonical, matched)
		current = next
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			normalized.WriteRune(unicode.ToLower(r))
		}
	}

	return normalized.String()
}

// buildReplicasFromEnv reads POSTGRES_REPLICAS_{i}_{HOST,PORT,USERNAME,PASSWORD}.
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
