package config

import "time"

type App struct {
	Port          string `env:"APP_PORT" default:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	JWTSecret     string `env:"JWT_SECRET,required"`
	UploadDir     string `env:"UPLOAD_DIR" default:"./uploads"`
	SweepInterval time.Duration
	Env           string `env:"APP_ENV" default:"dev"`
}
