// Package config 加载店铺客户端配置
//
// 优先级（高到低）：命令行覆盖 > 环境变量 STOREFRONT_* > .env 文件 > storefront.yaml > 默认值
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"katydid-storefront/pkg/logger"
	"katydid-storefront/pkg/money"
	"katydid-storefront/pkg/storage"
	"katydid-storefront/pkg/validator"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "STOREFRONT"

// ErrInvalidConfig 配置校验失败
var ErrInvalidConfig = errors.New("invalid config")

// Config 全部配置
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	IDGen   IDGenConfig   `mapstructure:"idgen"`
	Locale  LocaleConfig  `mapstructure:"locale"`
}

// APIConfig 服务端连接
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	CSRFToken string        `mapstructure:"csrf_token"`
	Token     string        `mapstructure:"token"`
}

// StorageConfig 本地缓存存储
type StorageConfig struct {
	Driver    string `mapstructure:"driver" validate:"oneof=memory redis sqlite mysql postgres"`
	DSN       string `mapstructure:"dsn" validate:"required_if=Driver mysql,required_if=Driver postgres"`
	RedisAddr string `mapstructure:"redis_addr" validate:"required_if=Driver redis"`
	RedisDB   int    `mapstructure:"redis_db" validate:"gte=0"`
	Prefix    string `mapstructure:"prefix"`
	Compress  bool   `mapstructure:"compress"`
}

// LogConfig 日志
type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File        string `mapstructure:"file"`
	MaxSizeMB   int    `mapstructure:"max_size_mb" validate:"gte=1"`
	Development bool   `mapstructure:"development"`
}

// IDGenConfig 临时 ID 生成
type IDGenConfig struct {
	WorkerID int64 `mapstructure:"worker_id" validate:"gte=0,lte=1023"`
}

// LocaleConfig 展示语言与币种
type LocaleConfig struct {
	Currency string `mapstructure:"currency" validate:"oneof=IDR USD"`
}

// defaults 所有已知键及默认值
var defaults = map[string]any{
	"api.base_url":       "http://localhost:8080",
	"api.timeout":        10 * time.Second,
	"api.csrf_token":     "",
	"api.token":          "",
	"storage.driver":     storage.DriverMemory,
	"storage.dsn":        "",
	"storage.redis_addr": "",
	"storage.redis_db":   0,
	"storage.prefix":     "",
	"storage.compress":   false,
	"log.level":          "info",
	"log.file":           "",
	"log.max_size_mb":    10,
	"log.development":    false,
	"idgen.worker_id":    1,
	"locale.currency":    money.Default.Code,
}

type options struct {
	file      string
	envFile   string
	overrides map[string]any
}

// Option 加载选项
type Option func(*options)

// WithFile 指定配置文件；未指定时在当前目录和 $HOME/.storefront 下查找 storefront.yaml，找不到不报错
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// WithEnvFile 指定 .env 文件，默认 ".env"，不存在时忽略
func WithEnvFile(path string) Option {
	return func(o *options) {
		o.envFile = path
	}
}

// WithOverride 最高优先级的覆盖值（命令行参数）
func WithOverride(key string, value any) Option {
	return func(o *options) {
		if o.overrides == nil {
			o.overrides = make(map[string]any)
		}
		o.overrides[key] = value
	}
}

// Load 加载并校验配置
func Load(opts ...Option) (*Config, error) {
	o := &options{envFile: ".env"}
	for _, opt := range opts {
		opt(o)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if o.file != "" {
		v.SetConfigFile(o.file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", o.file, err)
		}
	} else {
		v.SetConfigName("storefront")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.storefront")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := applyEnvFile(v, o.envFile); err != nil {
		return nil, err
	}
	for key, value := range o.overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Locale.Currency = strings.ToUpper(cfg.Locale.Currency)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvFile .env 中的值低于真实环境变量，不写入进程环境
func applyEnvFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}

	for key := range defaults {
		name := envName(key)
		value, ok := values[name]
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}
		v.Set(key, value)
	}
	return nil
}

// envName api.base_url -> STOREFRONT_API_BASE_URL
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Validate 按 struct tag 校验
func (c *Config) Validate() error {
	results := validator.Default().ValidateStruct(c)
	if len(results) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(results))
	for _, r := range results {
		msgs = append(msgs, r.Field+": "+r.Tag)
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// StorageOptions 转换为 storage.Open 的参数
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:    c.Storage.Driver,
		DSN:       c.Storage.DSN,
		RedisAddr: c.Storage.RedisAddr,
		RedisDB:   c.Storage.RedisDB,
		Prefix:    c.Storage.Prefix,
	}
}

// LoggerOptions 转换为 logger.New 的参数
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:       c.Log.Level,
		File:        c.Log.File,
		MaxSizeMB:   c.Log.MaxSizeMB,
		MaxBackups:  3,
		MaxAgeDays:  7,
		Development: c.Log.Development,
	}
}

// Currency 展示用币种
func (c *Config) Currency() money.Currency {
	if cur, ok := money.LookupCurrency(c.Locale.Currency); ok {
		return cur
	}
	return money.Default
}
