package internal

import (
	"fmt"
	"os"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Config is the full configuration surface of the relay. SessionSecret
// signs session tokens and must be unpredictable; it has no default on
// purpose.
type Config struct {
	Host          string        `env:"HOST,default=localhost"`
	Port          int           `env:"PORT,default=8080"`
	SessionSecret string        `env:"SESSION_SECRET,required=true"`
	SessionTTL    time.Duration `env:"SESSION_TTL,default=24h"`
	LogLevel      string        `env:"LOG_LEVEL,default=INFO"`
	LimitMessages *int          `env:"LIMIT_MESSAGES"`
	InspectPort   *int          `env:"INSPECT_PORT"`
}

// LoadConfig reads configuration from the environment, after loading a
// .env file when one is present in the working directory.
func LoadConfig() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("loading .env: %w", err)
		}
	}

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return config, nil
}
