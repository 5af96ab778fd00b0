package db

import (
	"fmt"
	"net/url"

	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
)

type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
}

func NewConfig() Config {
	return Config{
		Host:     env.GetEnv("PG_HOST", "localhost"),
		Port:     env.GetInt("PG_PORT", 5432),
		Database: env.GetEnv("PG_DB", "postgres"),
		User:     env.GetEnv("PG_USER", "postgres"),
		Password: env.GetEnv("PG_PASSWORD", "postgres"),
		SSLMode:  env.GetEnv("PG_SSLMODE", "disable"),
		MaxConns: env.GetInt("PG_MAX_CONNS", 10),
	}
}

func (conf *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		url.QueryEscape(conf.User), url.QueryEscape(conf.Password), conf.Host, conf.Port, conf.Database,
		conf.SSLMode, conf.MaxConns,
	)
}
