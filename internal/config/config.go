package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	DB           DBConfig           `mapstructure:"db"`
	Cron         CronConfig         `mapstructure:"cron"`
	Accrual      AccrualConfig      `mapstructure:"accrual"`
	Lock         LockConfig         `mapstructure:"lock"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Notification NotificationConfig `mapstructure:"notification"`
	Auth         AuthConfig         `mapstructure:"auth"`
	PaaS         PaaSConfig         `mapstructure:"paas"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type CronConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DailyAccrual string `mapstructure:"daily_accrual"`
}

// AccrualConfig holds the job defaults for scheduled runs. Manual runs may
// override the email and policy flags per request.
type AccrualConfig struct {
	PolicyCutover               string        `mapstructure:"policy_cutover"`
	LockKey                     string        `mapstructure:"lock_key"`
	EmailTimeout                time.Duration `mapstructure:"email_timeout"`
	SendIncrementEmails         bool          `mapstructure:"send_increment_emails"`
	SendCompletionEmails        bool          `mapstructure:"send_completion_emails"`
	ForceCreditOnCompletionOnly bool          `mapstructure:"force_credit_on_completion_only"`
}

// Cutover parses PolicyCutover as RFC3339 or a plain date.
func (c AccrualConfig) Cutover() (time.Time, error) {
	raw := strings.TrimSpace(c.PolicyCutover)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("accrual.policy_cutover %q: %w", raw, err)
	}
	return t.UTC(), nil
}

type LockConfig struct {
	// Backend is one of postgres, redis, memory or none.
	Backend  string        `mapstructure:"backend"`
	RedisTTL time.Duration `mapstructure:"redis_ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NotificationConfig struct {
	Email EmailConfig `mapstructure:"email"`
}

type EmailConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Token      string        `mapstructure:"token"`
	From       string        `mapstructure:"from"`
	Locale     string        `mapstructure:"locale"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	Disabled  bool   `mapstructure:"disabled"`
}

type PaaSConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Agent   string `mapstructure:"agent"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ACCRUAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	_ = v.BindEnv("paas.base_url", "ACCRUAL_PAAS_BASE_URL", "EASYWEB3_API_BASE")
	_ = v.BindEnv("paas.api_key", "ACCRUAL_PAAS_API_KEY", "EASYWEB3_API_KEY")

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.development", false)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 2)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.daily_accrual", "0 5 0 * * *")
	v.SetDefault("accrual.policy_cutover", "2025-09-01T00:00:00Z")
	v.SetDefault("accrual.lock_key", "accrual.daily_investment")
	v.SetDefault("accrual.email_timeout", "15s")
	v.SetDefault("accrual.send_increment_emails", false)
	v.SetDefault("accrual.send_completion_emails", true)
	v.SetDefault("accrual.force_credit_on_completion_only", false)
	v.SetDefault("lock.backend", "postgres")
	v.SetDefault("lock.redis_ttl", "30m")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("notification.email.webhook_url", "")
	v.SetDefault("notification.email.token", "")
	v.SetDefault("notification.email.from", "no-reply@axixfinance.com")
	v.SetDefault("notification.email.locale", "en")
	v.SetDefault("notification.email.timeout", "10s")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.disabled", false)
	v.SetDefault("paas.agent", "accrual-service")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Accrual.Cutover(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
