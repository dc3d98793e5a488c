package store

import (
	"fmt"

	"github.com/kwararru/shell/internal/infrastructure/config"
	"github.com/kwararru/shell/internal/infrastructure/logging"
	"github.com/kwararru/shell/internal/infrastructure/monitoring"
	"github.com/kwararru/shell/internal/infrastructure/resilience"
	"go.uber.org/zap"
)

// Open builds the configured store wrapped in a breaker
func Open(cfg config.StoreConfig, metrics *monitoring.Metrics, log *logging.Logger) (*Guarded, error) {
	log = logging.OrNop(log)

	var inner Store
	switch cfg.Driver {
	case "memory":
		inner = NewMemory()
	case "sqlite":
		db, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		inner = db
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	log.Info("store opened", zap.String("driver", cfg.Driver), zap.String("path", cfg.Path))

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	return NewGuarded(inner, resilience.Settings{
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: resilience.ConsecutiveFailures(failures),
	}, metrics, log), nil
}
