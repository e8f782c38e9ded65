package config

import "os"

// JwtConfig holds the admin API token secret. An empty secret leaves
// the admin API unauthenticated; the wire protocol never carries auth.
type JwtConfig struct {
	Secret string
}

func NewJwtConfig() *JwtConfig {
	return &JwtConfig{
		Secret: os.Getenv("JWT_SECRET"),
	}
}
