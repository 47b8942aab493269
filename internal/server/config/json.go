package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/apparel/internal/flagx"
	"github.com/dmitrijs2005/apparel/internal/timex"
)

// JsonConfig mirrors Config for file loading. Durations accept "20m" or
// integer nanoseconds. Absent keys leave the current value untouched.
type JsonConfig struct {
	HTTPAddr    string `json:"http_addr"`
	GRPCAddr    string `json:"grpc_addr"`
	DatabaseDSN string `json:"database_dsn"`
	SecretKey   string `json:"secret_key"`

	SessionTTL           timex.Duration `json:"session_ttl"`
	SessionSweepInterval timex.Duration `json:"session_sweep_interval"`
	SessionCapacity      int            `json:"session_capacity"`
	CookieMaxAge         timex.Duration `json:"cookie_max_age"`
	PBKDF2Iterations     int            `json:"pbkdf2_iterations"`

	QueryTimeout   timex.Duration `json:"query_timeout"`
	RequestTimeout timex.Duration `json:"request_timeout"`

	AllowedOrigin string `json:"allowed_origin"`
	PublicDir     string `json:"public_dir"`
	LogLevel      string `json:"log_level"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)

	setDuration(&config.SessionTTL, c.SessionTTL)
	setDuration(&config.SessionSweepInterval, c.SessionSweepInterval)
	setInt(&config.SessionCapacity, c.SessionCapacity)
	setDuration(&config.CookieMaxAge, c.CookieMaxAge)
	setInt(&config.PBKDF2Iterations, c.PBKDF2Iterations)

	setDuration(&config.QueryTimeout, c.QueryTimeout)
	setDuration(&config.RequestTimeout, c.RequestTimeout)

	setString(&config.AllowedOrigin, c.AllowedOrigin)
	setString(&config.PublicDir, c.PublicDir)
	setString(&config.LogLevel, c.LogLevel)

	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
