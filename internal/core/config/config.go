package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Log struct {
	Level string
	JSON  bool
}

type JWT struct {
	Secret            string // 留空则管理端不挂鉴权（仅限本地开发）
	Issuer            string
	AccessTokenTTLMin int
}

// Backend 数据来源；Mode 未设置回落 mock，方便离线起服务
type Backend struct {
	Mode          string `mapstructure:"mode"`     // "mock" / "http"
	BaseURL       string `mapstructure:"base_url"` // 按部署环境配置
	TenantID      string `mapstructure:"tenant_id"`
	TimeoutSec    int    `mapstructure:"timeout_sec"` // 缺省 30
	MaxRetries    int    `mapstructure:"max_retries"`
	CacheTTLSec   int    `mapstructure:"cache_ttl_sec"`
	MockLatencyMS int    `mapstructure:"mock_latency_ms"`
}

type Redis struct {
	Enable   bool   `mapstructure:"enable"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	Backend Backend `mapstructure:"backend"`
	Redis   Redis   `mapstructure:"redis"`
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}

func (b Backend) Timeout() time.Duration {
	if b.TimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.TimeoutSec) * time.Second
}

func (b Backend) CacheTTL() time.Duration {
	if b.CacheTTLSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.CacheTTLSec) * time.Second
}

func (b Backend) MockLatency() time.Duration {
	return time.Duration(b.MockLatencyMS) * time.Millisecond
}
