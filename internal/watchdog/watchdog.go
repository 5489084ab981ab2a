package watchdog

import (
	"context"
	"time"

	"gaugyan-payout-service/internal/core/ports"

	"github.com/rs/zerolog"
)

// Watchdog periodically pings every registered health checker and logs
// degradations. It is purely observational; it never restarts anything.
type Watchdog struct {
	checkers []ports.HealthChecker
	interval time.Duration
	log      zerolog.Logger
}

// New creates a Watchdog over the given checkers.
func New(checkers []ports.HealthChecker, interval time.Duration, log zerolog.Logger) *Watchdog {
	return &Watchdog{
		checkers: checkers,
		interval: interval,
		log:      log,
	}
}

// Run blocks, checking dependencies on every tick until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) {
	if w.interval <= 0 || len(w.checkers) == 0 {
		w.log.Debug().Msg("watchdog disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info().Dur("interval", w.interval).Int("checkers", len(w.checkers)).Msg("watchdog started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("watchdog stopped")
			return
		case <-ticker.C:
			w.checkAll(ctx)
		}
	}
}

func (w *Watchdog) checkAll(ctx context.Context) {
	for _, checker := range w.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := checker.Ping(checkCtx)
		cancel()

		if err != nil {
			w.log.Error().Err(err).Str("dependency", checker.Name()).Msg("dependency unhealthy")
		} else {
			w.log.Debug().Str("dependency", checker.Name()).Msg("dependency healthy")
		}
	}
}
