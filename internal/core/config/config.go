package config

import (
	"fmt"
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
	Name         string
	Env          string
	HTTP         HTTP
	Admin        HTTP
	AllowOrigins []string
	Limits       Limits
}

// Limits feeds the overload middleware; zero values fall back to the router defaults.
type Limits struct {
	RPS          float64
	Burst        int
	PerIPRPS     float64
	PerIPBurst   int
	MaxInFlight  int
	MaxBodyBytes int64
	TimeoutSec   int
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	Secret    string
	Issuer    string
	LeewaySec int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type Cache struct {
	Enable bool
	TTLSec int
}

type MQ struct {
	URL      string
	Exchange string
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Rating struct {
	AggregateStrategy string
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	DB     DB
	Redis  Redis `mapstructure:"redis"`
	Cache  Cache
	MQ     MQ
	Rating Rating
}

func (c Cache) TTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }

func (l Limits) Timeout() time.Duration { return time.Duration(l.TimeoutSec) * time.Second }

// Load reads the config or exits.
func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

// Read resolves path (falling back to CONFIG_PATH, then ./configs/config.local.yaml) and
// overlays APP_* environment variables, e.g. APP_DB_DSN for db.dsn.
func Read(path string) (*Config, error) {
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
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if c.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "store-rating")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 15)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("app.admin.readtimeoutsec", 5)
	v.SetDefault("app.admin.writetimeoutsec", 15)
	v.SetDefault("app.admin.idletimeoutsec", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.issuer", "store-rating")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:store-rating.db?_foreign_keys=1")
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("redis.prefix", "store-rating:")
	v.SetDefault("cache.ttlsec", 30)
	v.SetDefault("mq.exchange", "store-rating.events")
	v.SetDefault("rating.aggregatestrategy", "grouped")
	// AutomaticEnv only overlays keys viper already knows about.
	v.SetDefault("jwt.secret", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("mq.url", "")
}
