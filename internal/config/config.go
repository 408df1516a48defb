package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Gateway   GatewaySection  `mapstructure:"gateway"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Tenants   []TenantConfig  `mapstructure:"tenants"`
}

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"` // production 下不输出遥测告警
	ReadOnly    bool   `mapstructure:"read_only"`   // 暂停下单，报价与风险计划仍可用
}

func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AuthConfig struct {
	RequireAPIKey bool   `mapstructure:"require_api_key"`
	APIKey        string `mapstructure:"api_key"`
	AdminKey      string `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	DSN                       string `mapstructure:"dsn"`
	IdempotencyRetentionHours int    `mapstructure:"idempotency_retention_hours"`
	AuditRetentionDays        int    `mapstructure:"audit_retention_days"`
	TelemetryRetentionDays    int    `mapstructure:"telemetry_retention_days"`
	CleanupIntervalMinutes    int    `mapstructure:"cleanup_interval_minutes"`
}

type RedisConfig struct {
	Addr                  string `mapstructure:"addr"`
	Password              string `mapstructure:"password"`
	DB                    int    `mapstructure:"db"`
	IdempotencyTTLSeconds int    `mapstructure:"idempotency_ttl_seconds"`
	AuditListKey          string `mapstructure:"audit_list_key"`
	AuditListMax          int    `mapstructure:"audit_list_max"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

type TelemetryConfig struct {
	ListKey    string `mapstructure:"list_key"`
	ListMax    int    `mapstructure:"list_max"`
	BufferSize int    `mapstructure:"buffer_size"`
	LogDir     string `mapstructure:"log_dir"`
}

// GatewaySection 允许两个逻辑客户端 (portal / admin) 各自覆盖环境变量解析出的配置
type GatewaySection struct {
	Portal GatewayConfig `mapstructure:"portal"`
	Admin  GatewayConfig `mapstructure:"admin"`
}

type RiskConfig struct {
	MaxOrderNotional float64  `mapstructure:"max_order_notional"` // 单笔最大名义金额 (quantity * limit_price)
	MaxDailyNotional float64  `mapstructure:"max_daily_notional"` // 单日累计名义金额
	MaxDailyOrders   int      `mapstructure:"max_daily_orders"`
	MaxSlippageBps   float64  `mapstructure:"max_slippage_bps"`
	MaxLadderRungs   int      `mapstructure:"max_ladder_rungs"`
	BlockedPairs     []string `mapstructure:"blocked_pairs"` // e.g. ["USDRUB"]
}

type TenantConfig struct {
	ID        string     `mapstructure:"id"`
	Name      string     `mapstructure:"name"`
	APIKey    string     `mapstructure:"api_key"`
	RateQPS   float64    `mapstructure:"rate_qps"`
	RateBurst int        `mapstructure:"rate_burst"`
	Risk      RiskConfig `mapstructure:"risk"`
}

// Load reads configs/config.yaml (optional), .env files and HEDGEGATE_* variables.
func Load() (*Config, error) {
	// .env 只补充未设置的变量，不覆盖真实环境
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// e.g. HEDGEGATE_REDIS_ADDR
	v.SetEnvPrefix("hedgegate")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.require_api_key", false)
	v.SetDefault("auth.admin_key", "")
	v.SetDefault("redis.idempotency_ttl_seconds", 86400)
	v.SetDefault("redis.audit_list_key", "audit_logs")
	v.SetDefault("redis.audit_list_max", 10000)
	v.SetDefault("database.idempotency_retention_hours", 168)
	v.SetDefault("database.audit_retention_days", 30)
	v.SetDefault("database.telemetry_retention_days", 14)
	v.SetDefault("database.cleanup_interval_minutes", 60)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "hedgegate")
	v.SetDefault("telemetry.list_key", "gateway_telemetry")
	v.SetDefault("telemetry.list_max", 5000)
	v.SetDefault("telemetry.buffer_size", 1000)
	v.SetDefault("telemetry.log_dir", "logs")
	v.SetDefault("risk.max_slippage_bps", 50)
	v.SetDefault("risk.max_ladder_rungs", 10)
}
