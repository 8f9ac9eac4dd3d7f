package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Docstore DocstoreConfig
	Pricing  PricingConfig
	Discount DiscountConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Docstore.Driver == DocstoreDriverGorm {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BAZARIO_APP_ENV" required:"true"`
	Port         string `envconfig:"BAZARIO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BAZARIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BAZARIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

const (
	DocstoreDriverGorm  = "gorm"
	DocstoreDriverRedis = "redis"
)

type DocstoreConfig struct {
	Driver string `envconfig:"BAZARIO_DOCSTORE_DRIVER" default:"gorm"`
	// OpTimeout bounds every single storage call; surfaced as TIMEOUT.
	OpTimeout time.Duration `envconfig:"BAZARIO_DOCSTORE_OP_TIMEOUT" default:"5s"`
}

type DBConfig struct {
	DSN    string `envconfig:"BAZARIO_DB_DSN"`
	Driver string `envconfig:"BAZARIO_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"BAZARIO_DB_HOST"`
	Port     int    `envconfig:"BAZARIO_DB_PORT" default:"5432"`
	User     string `envconfig:"BAZARIO_DB_USER"`
	Password string `envconfig:"BAZARIO_DB_PASSWORD"`
	Name     string `envconfig:"BAZARIO_DB_NAME"`
	SSLMode  string `envconfig:"BAZARIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BAZARIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BAZARIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BAZARIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BAZARIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"BAZARIO_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BAZARIO_REDIS_URL"`
	Address      string        `envconfig:"BAZARIO_REDIS_ADDR"`
	Password     string        `envconfig:"BAZARIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"BAZARIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BAZARIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BAZARIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BAZARIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BAZARIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BAZARIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PricingConfig is the externally sourced fee schedule handed to the
// pricing engine. The engine never reads these values ambiently.
type PricingConfig struct {
	PlatformFeePercent float64 `envconfig:"BAZARIO_PLATFORM_FEE_PERCENT" default:"2"`
	HandlingFeeFixed   float64 `envconfig:"BAZARIO_HANDLING_FEE_FIXED" default:"50"`
	// TaxTableJSON maps "category" and "category/subcategory" keys to
	// percent rates, e.g. {"electronics":18,"electronics/cables":12}.
	TaxTableJSON string `envconfig:"BAZARIO_TAX_TABLE_JSON" default:"{}"`
}

func (p PricingConfig) validate() error {
	if p.PlatformFeePercent < 0 || p.PlatformFeePercent > 100 {
		return fmt.Errorf("platform fee percent %v out of range [0,100]", p.PlatformFeePercent)
	}
	if p.HandlingFeeFixed < 0 {
		return fmt.Errorf("handling fee %v must not be negative", p.HandlingFeeFixed)
	}
	if _, err := p.TaxTable(); err != nil {
		return err
	}
	return nil
}

// TaxTable parses the configured tax rates.
func (p PricingConfig) TaxTable() (map[string]float64, error) {
	table := map[string]float64{}
	raw := strings.TrimSpace(p.TaxTableJSON)
	if raw == "" {
		return table, nil
	}
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		return nil, fmt.Errorf("parsing tax table: %w", err)
	}
	for key, rate := range table {
		if rate < 0 || rate > 100 {
			return nil, fmt.Errorf("tax rate %v for %q out of range [0,100]", rate, key)
		}
	}
	return table, nil
}

// DiscountConfig describes the single configured discount rule. The rule is
// active when Name is set; eligibility is a postal-code allow list.
type DiscountConfig struct {
	Name        string   `envconfig:"BAZARIO_DISCOUNT_NAME"`
	Value       float64  `envconfig:"BAZARIO_DISCOUNT_VALUE" default:"0"`
	PostalCodes []string `envconfig:"BAZARIO_DISCOUNT_POSTAL_CODES"`
}

func (d DiscountConfig) Enabled() bool {
	return strings.TrimSpace(d.Name) != "" && d.Value > 0
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"BAZARIO_DB_HOST": db.Host,
		"BAZARIO_DB_USER": db.User,
		"BAZARIO_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either BAZARIO_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
