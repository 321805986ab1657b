package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/sessiontimeout/core/logger"
)

// ErrNotReady is returned when at least one dependency check fails.
var ErrNotReady = errors.New("dependencies are not ready")

// Check is a named dependency check.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// Readiness runs every check concurrently and returns nil only when all of
// them pass. Failures are logged and joined into the returned error.
func Readiness(ctx context.Context, log *slog.Logger, checks ...Check) error {
	if log == nil {
		log = logger.Nop()
	}

	errs := make([]error, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			if err := run(ctx, c); err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component(c.Name), logger.Elapsed(start), logger.Error(err))
				errs[i] = fmt.Errorf("%s: %w", c.Name, err)
				return
			}
			log.DebugContext(ctx, "readiness check passed",
				logger.Component(c.Name), logger.Elapsed(start))
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return errors.Join(ErrNotReady, err)
	}
	return nil
}

func run(ctx context.Context, c Check) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check panicked: %v", r)
		}
	}()
	if c.Fn == nil {
		return errors.New("no check function")
	}
	return c.Fn(ctx)
}
