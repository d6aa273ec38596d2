package config

import (
	"log"
	"os"
	"strconv"
	"sync"
)

type AppConfig struct {
	Name            string
	Env             string
	Port            string
	BaseURL         string
	ResearchWorkers int
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
			log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
		}
		workers, err := strconv.Atoi(os.Getenv("APP_RESEARCH_WORKERS"))
		if err != nil || workers <= 0 {
			workers = 4
		}
		appConfig = &AppConfig{
			Name:            os.Getenv("APP_NAME"),
			Env:             env,
			Port:            os.Getenv("APP_PORT"),
			BaseURL:         os.Getenv("APP_URL"),
			ResearchWorkers: workers,
		}
	})
	return appConfig
}
