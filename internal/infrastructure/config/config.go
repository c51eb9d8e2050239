package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/internal/domain/service"
	"github.com/bibbank/credit-service/pkg/auth"
	"github.com/bibbank/credit-service/pkg/kafka"
	"github.com/bibbank/credit-service/pkg/postgres"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

// Postgres converts the settings into the shared pool config.
func (d DatabaseConfig) Postgres() postgres.Config {
	return postgres.Config{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Database: d.Name,
		SSLMode:  d.SSLMode,
		MaxConns: int32(d.MaxConns),

		ApplicationName: "credit-service",
	}
}

type KafkaConfig struct {
	// Enabled false routes notifications, audit records and outbox events
	// to the log instead of the brokers.
	Enabled            bool
	Brokers            []string
	ConsumerGroup      string
	EventsTopic        string
	NotificationsTopic string
	AuditTopic         string

	TLS           bool
	SASLEnabled   bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

// GRPCConfig enables transport security when both TLSCertFile and
// TLSKeyFile are set. ClientCAFile additionally requires client
// certificates.
type GRPCConfig struct {
	TLSCertFile  string
	TLSKeyFile   string
	ClientCAFile string
	Reflection   bool
}

// Client converts the settings into the shared producer/consumer config.
func (k KafkaConfig) Client() kafka.Config {
	return kafka.Config{
		Brokers:       k.Brokers,
		ConsumerGroup: k.ConsumerGroup,
		TLS:           k.TLS,
		SASLEnabled:   k.SASLEnabled,
		SASLMechanism: k.SASLMechanism,
		SASLUsername:  k.SASLUsername,
		SASLPassword:  k.SASLPassword,
	}
}

type LogConfig struct {
	Level  string
	Format string
}

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

type Config struct {
	GRPCPort         int
	GRPC             GRPCConfig
	HTTPPort         int
	StorageDriver    string
	DB               DatabaseConfig
	Kafka            KafkaConfig
	Log              LogConfig
	Outbox           OutboxConfig
	JWT              auth.JWTConfig
	SignatureBaseURL string
	RulesFile        string
	ServiceName      string
}

// Validate reports settings the service cannot start with.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if c.DB.Password == "" {
			return fmt.Errorf("DB_PASSWORD environment variable is required when STORAGE_DRIVER=%s", StoragePostgres)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.JWT.Secret == "" && c.JWT.PublicKeyPEM == "" && c.JWT.PrivateKeyPEM == "" {
		return fmt.Errorf("one of JWT_SECRET, JWT_PUBLIC_KEY or JWT_PRIVATE_KEY is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	if c.Kafka.SASLEnabled && c.Kafka.SASLUsername == "" {
		return fmt.Errorf("KAFKA_SASL_USERNAME is required when KAFKA_SASL_ENABLED=true")
	}
	if (c.GRPC.TLSCertFile == "") != (c.GRPC.TLSKeyFile == "") {
		return fmt.Errorf("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together")
	}
	if c.Outbox.PollInterval <= 0 {
		return fmt.Errorf("OUTBOX_POLL_INTERVAL must be positive")
	}
	return nil
}

func Load() Config {
	return Config{
		GRPCPort: getEnvInt("GRPC_PORT", 9095),
		GRPC: GRPCConfig{
			TLSCertFile:  getEnv("GRPC_TLS_CERT_FILE", ""),
			TLSKeyFile:   getEnv("GRPC_TLS_KEY_FILE", ""),
			ClientCAFile: getEnv("GRPC_TLS_CLIENT_CA_FILE", ""),
			Reflection:   getEnvBool("GRPC_REFLECTION", false),
		},
		HTTPPort:      getEnvInt("HTTP_PORT", 8095),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StoragePostgres)),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "bib"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "bib_credit"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Kafka: KafkaConfig{
			Enabled:            getEnvBool("KAFKA_ENABLED", true),
			Brokers:            getEnvList("KAFKA_BROKERS", "localhost:9092"),
			ConsumerGroup:      getEnv("KAFKA_CONSUMER_GROUP", "credit-service"),
			EventsTopic:        getEnv("KAFKA_EVENTS_TOPIC", "credit-events"),
			NotificationsTopic: getEnv("KAFKA_NOTIFICATIONS_TOPIC", "credit-notifications"),
			AuditTopic:         getEnv("KAFKA_AUDIT_TOPIC", "credit-audit"),
			TLS:                getEnvBool("KAFKA_TLS", false),
			SASLEnabled:        getEnvBool("KAFKA_SASL_ENABLED", false),
			SASLMechanism:      strings.ToUpper(getEnv("KAFKA_SASL_MECHANISM", "PLAIN")),
			SASLUsername:       getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:       getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Outbox: OutboxConfig{
			PollInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
			BatchSize:    getEnvInt("OUTBOX_BATCH_SIZE", 100),
		},
		JWT: auth.JWTConfig{
			Secret:        getEnv("JWT_SECRET", ""),
			PrivateKeyPEM: getEnv("JWT_PRIVATE_KEY", ""),
			PublicKeyPEM:  getEnv("JWT_PUBLIC_KEY", ""),
			Issuer:        getEnv("JWT_ISSUER", "bib-credit"),
			Expiration:    getEnvDuration("JWT_EXPIRATION", time.Hour),
		},
		SignatureBaseURL: getEnv("SIGNATURE_BASE_URL", "https://sign.bib.local/contracts"),
		RulesFile:        getEnv("CREDIT_RULES_FILE", ""),
		ServiceName:      "credit-service",
	}
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// rulesFile mirrors service.RulesConfig with every field optional, so a
// file only overrides the thresholds it names. Money is written as strings.
type rulesFile struct {
	AutoApproveCeiling   *string `toml:"auto_approve_ceiling"`
	ScoreThreshold       *int    `toml:"score_threshold"`
	Level1Ceiling        *string `toml:"level1_ceiling"`
	Level2Ceiling        *string `toml:"level2_ceiling"`
	MinMonthlyIncome     *string `toml:"min_monthly_income"`
	MaxDebtToIncomeRatio *string `toml:"max_debt_to_income_ratio"`
}

// LoadRules returns the default thresholds overridden by the TOML file at
// path. An empty path yields the defaults.
func LoadRules(path string) (service.RulesConfig, error) {
	cfg := service.DefaultRulesConfig()
	if path == "" {
		return cfg, nil
	}

	var f rulesFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return cfg, fmt.Errorf("decode rules file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("rules file %s: unknown key %s", path, undecoded[0])
	}

	for _, d := range []struct {
		raw *string
		dst *decimal.Decimal
	}{
		{f.AutoApproveCeiling, &cfg.AutoApproveCeiling},
		{f.Level1Ceiling, &cfg.Level1Ceiling},
		{f.Level2Ceiling, &cfg.Level2Ceiling},
		{f.MinMonthlyIncome, &cfg.MinMonthlyIncome},
		{f.MaxDebtToIncomeRatio, &cfg.MaxDebtToIncomeRatio},
	} {
		if d.raw == nil {
			continue
		}
		if err := d.dst.UnmarshalText([]byte(strings.TrimSpace(*d.raw))); err != nil {
			return cfg, fmt.Errorf("rules file %s: %w", path, err)
		}
	}
	if f.ScoreThreshold != nil {
		cfg.ScoreThreshold = *f.ScoreThreshold
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("rules file %s: %w", path, err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
