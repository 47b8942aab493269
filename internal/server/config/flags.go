package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/apparel/internal/flagx"
)

var serverFlags = []string{
	"-a", "-g", "-d", "-s",
	"-l", "-i", "-n", "-m", "-k",
	"-q", "-r", "-o", "-p", "-v",
	"-u", "-w", "-b", "-R", "-e",
}

// parseFlags overlays the short flags:
//
//	-a  HTTP address            -g  gRPC address
//	-d  PostgreSQL DSN          -s  cookie signing secret
//	-l  session idle TTL        -i  session sweep interval
//	-n  session capacity        -m  cookie max age
//	-k  PBKDF2 iterations       -q  query timeout
//	-r  request timeout         -o  CORS allowed origin
//	-p  public asset dir        -v  log level
//	-u  S3 user                 -w  S3 password
//	-b  S3 bucket               -R  S3 region
//	-e  S3 endpoint
//
// Durations use time.ParseDuration syntax ("20m", "2s").
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP listen address")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC health listen address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "cookie signing secret")

	fs.DurationVar(&config.SessionTTL, "l", config.SessionTTL, "session idle ttl")
	fs.DurationVar(&config.SessionSweepInterval, "i", config.SessionSweepInterval, "session sweep interval")
	fs.IntVar(&config.SessionCapacity, "n", config.SessionCapacity, "max live sessions")
	fs.DurationVar(&config.CookieMaxAge, "m", config.CookieMaxAge, "session cookie max age")
	fs.IntVar(&config.PBKDF2Iterations, "k", config.PBKDF2Iterations, "pbkdf2 iterations")

	fs.DurationVar(&config.QueryTimeout, "q", config.QueryTimeout, "per-query timeout")
	fs.DurationVar(&config.RequestTimeout, "r", config.RequestTimeout, "per-request timeout")
	fs.StringVar(&config.AllowedOrigin, "o", config.AllowedOrigin, "CORS allowed origin")
	fs.StringVar(&config.PublicDir, "p", config.PublicDir, "public asset directory")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 user")
	fs.StringVar(&config.S3RootPassword, "w", config.S3RootPassword, "S3 password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "R", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
