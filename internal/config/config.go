package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"

	defaultJWTSecret = "change-me"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	ResetDB     bool   `env:"RESET_DB" envDefault:"false"`
	SwaggerHost string `env:"SWAGGER_HOST"`

	Server   Server   `envPrefix:"SERVER_"`
	Database Database `envPrefix:"DB_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	JWT      JWT      `envPrefix:"JWT_"`
	Hash     Hash     `envPrefix:"HASH_"`
}

// Server contains HTTP listener parameters.
type Server struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	BodyLimit       string        `env:"BODY_LIMIT" envDefault:"1M"`
}

// Database contains MySQL connection parameters. DSN, when set, wins over
// the individual fields.
type Database struct {
	DSN             string        `env:"DSN"`
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"3306"`
	Username        string        `env:"USERNAME" envDefault:"root"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME" envDefault:"app"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"warn"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

// Redis contains cache connection parameters.
type Redis struct {
	Enabled  bool   `env:"ENABLED" envDefault:"true"`
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// JWT contains access token parameters. AccessTTL defaults to 15 minutes;
// shorter values are only sensible while developing.
type JWT struct {
	Secret    string        `env:"SECRET" envDefault:"change-me"`
	AccessTTL time.Duration `env:"ACCESS_TTL" envDefault:"15m"`
}

// Hash contains argon2id cost parameters.
type Hash struct {
	Memory      uint32 `env:"ARGON2_MEMORY" envDefault:"65536"`
	Iterations  uint32 `env:"ARGON2_ITERATIONS" envDefault:"1"`
	Parallelism uint8  `env:"ARGON2_PARALLELISM" envDefault:"4"`
	SaltLength  uint32 `env:"ARGON2_SALT_LENGTH" envDefault:"16"`
	KeyLength   uint32 `env:"ARGON2_KEY_LENGTH" envDefault:"32"`
}

// Load reads an optional .env file and builds Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that are unsafe to run with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.Env != EnvDevelopment && c.JWT.Secret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set when APP_ENV=%s", c.Env)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.Hash.Iterations == 0 || c.Hash.Memory == 0 || c.Hash.Parallelism == 0 {
		return errors.New("argon2 cost parameters must be positive")
	}
	if c.Hash.SaltLength == 0 || c.Hash.KeyLength == 0 {
		return errors.New("argon2 salt and key lengths must be positive")
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// MySQLDSN returns the go-sql-driver DSN for the configured database.
func (d Database) MySQLDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	mc := mysql.NewConfig()
	mc.User = d.Username
	mc.Passwd = d.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	mc.DBName = d.Name
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}
