package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/dmitrymomot/moodlog/pkg/authapi"
	"github.com/dmitrymomot/moodlog/pkg/config"
	"github.com/dmitrymomot/moodlog/pkg/redis"
	"github.com/dmitrymomot/moodlog/pkg/session"
)

const serviceName = "moodlog-session"

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	SessionFile string `env:"MOODLOG_SESSION_FILE"`
	// Durable selects the durable tier: "file" or "redis"
	Durable string `env:"MOODLOG_DURABLE" envDefault:"file"`
}

type settings struct {
	app     appConfig
	session session.Config
	api     authapi.Config
	redis   redis.Config
}

func loadConfig() (settings, error) {
	var s settings
	if err := config.Load(&s.app); err != nil {
		return settings{}, err
	}
	if err := config.Load(&s.session); err != nil {
		return settings{}, err
	}
	if err := config.Load(&s.api); err != nil {
		return settings{}, err
	}
	if s.app.Durable == "redis" {
		if err := config.Load(&s.redis); err != nil {
			return settings{}, err
		}
	}

	if s.app.SessionFile == "" {
		path, err := defaultSessionFile()
		if err != nil {
			return settings{}, err
		}
		s.app.SessionFile = path
	}

	return s, nil
}

func defaultSessionFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Join(errors.New("cannot resolve config directory, set MOODLOG_SESSION_FILE"), err)
	}
	return filepath.Join(dir, "moodlog", "session.yaml"), nil
}
