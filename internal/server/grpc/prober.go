package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/apparel/internal/logging"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// StatusSetter is satisfied by *health.Server.
type StatusSetter interface {
	SetServingStatus(service string, status healthpb.HealthCheckResponse_ServingStatus)
}

// Prober pings the database on an interval and publishes the result as the
// overall health status.
type Prober struct {
	db       Pinger
	interval time.Duration
	timeout  time.Duration
	logger   logging.Logger
}

func NewProber(db Pinger, interval, timeout time.Duration, l logging.Logger) *Prober {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Prober{db: db, interval: interval, timeout: timeout, logger: l.With("module", "health")}
}

// Check pings once and returns the resulting status.
func (p *Prober) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.db.PingContext(ctx); err != nil {
		p.logger.Warn(ctx, "database ping failed", "error", err)
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}

// Run publishes a status right away and then on every tick until ctx is
// done.
func (p *Prober) Run(ctx context.Context, hs StatusSetter) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		st := p.Check(ctx)
		if ctx.Err() != nil {
			return
		}
		if st != last {
			p.logger.Info(ctx, "health status changed", "status", st.String())
			last = st
		}
		hs.SetServingStatus("", st)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
