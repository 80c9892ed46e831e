package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is populated from the environment. Rooms are short-lived
// in-memory sessions, so there is nothing to configure beyond the listen
// port, the allowed browser origins, and the expiry knobs.
type Config struct {
	Port           string        `envconfig:"PORT" default:"3001"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000"`
	RoomTTL        time.Duration `envconfig:"ROOM_TTL" default:"30m"`
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`
}

func FromEnv() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
