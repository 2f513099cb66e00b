package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 RECEIVABLES_SERVER_PORT 覆盖 server.port
const EnvPrefix = "RECEIVABLES"

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Business BusinessConfig `mapstructure:"business"`
	Log      LogConfig      `mapstructure:"log"`
	Seed     SeedConfig     `mapstructure:"seed"`
	WorkerID int64          `mapstructure:"worker_id"`
}

type ServerConfig struct {
	Port                   int `mapstructure:"port"`
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"`
}

// DatabaseConfig 数据库配置，Type 取值 sqlite / mysql / postgres
type DatabaseConfig struct {
	Type         string `mapstructure:"type"`
	Path         string `mapstructure:"path"` // sqlite 文件路径
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Enabled bool             `mapstructure:"enabled"`
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	PaymentEvents string `mapstructure:"payment_events"`
}

type BusinessConfig struct {
	MaxRetryCount        int `mapstructure:"max_retry_count"`
	LoginMaxFailures     int `mapstructure:"login_max_failures"`
	LoginLockMinutes     int `mapstructure:"login_lock_minutes"`
	OutboxRetentionHours int `mapstructure:"outbox_retention_hours"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type SeedConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Account SeedAccountConfig `mapstructure:"account"`
}

// SeedAccountConfig 首次启动时写入的默认账户
type SeedAccountConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// EventsEnabled 是否写入收款事件 outbox
func (c *Config) EventsEnabled() bool {
	return c.Kafka.Enabled && c.Kafka.Topic.PaymentEvents != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout_seconds", 5)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "data.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "receivables")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic.payment_events", "payment_events")

	v.SetDefault("business.max_retry_count", 5)
	v.SetDefault("business.login_max_failures", 5)
	v.SetDefault("business.login_lock_minutes", 15)
	v.SetDefault("business.outbox_retention_hours", 72)

	v.SetDefault("log.level", "info")

	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.account.username", "dayou")
	v.SetDefault("seed.account.password", "Dayou123?")

	v.SetDefault("worker_id", 1)
}

// LoadConfig 加载配置文件
// 配置文件不存在时使用默认值，环境变量优先级最高
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Type {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("不支持的数据库类型: %q", c.Database.Type)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port 必须大于0")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers 不能为空")
	}
	return nil
}
