package config

import "os"

// PostgresConfig locates the optional dispatch audit database. An empty
// Url disables auditing entirely.
type PostgresConfig struct {
	Url string
}

func NewPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Url: os.Getenv("DATABASE_URL"),
	}
}
