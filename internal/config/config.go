package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is populated from STOCKROOM_* environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	MySQLDSN        string        `envconfig:"MYSQL_DSN" default:"root:root@tcp(localhost:3306)/stockroom?parseTime=true"`
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	MigrationsDir   string        `envconfig:"MIGRATIONS_DIR" default:"migrations"`
	TokenTTL        time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	BcryptCost      int           `envconfig:"BCRYPT_COST" default:"10"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("stockroom", &cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
