package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/metrics"
)

// DefaultMaxAttempts is how many times an overloaded model is tried
const DefaultMaxAttempts = 10

// ErrRetriesExhausted is returned when every attempt was answered with 503
var ErrRetriesExhausted = errors.New("model still overloaded after all retries")

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real SleepFunc
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns the wait after the given zero-based failed attempt: 1s, 2s, 4s, ...
func Backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// Retrier retries a Generator while the model reports overload
type Retrier struct {
	gen         Generator
	maxAttempts int
	sleep       SleepFunc
	log         logger.Logger
}

// NewRetrier wraps gen; a nil sleep uses Sleep
func NewRetrier(gen Generator, maxAttempts int, sleep SleepFunc, log logger.Logger) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if sleep == nil {
		sleep = Sleep
	}
	return &Retrier{gen: gen, maxAttempts: maxAttempts, sleep: sleep, log: log}
}

// Generate calls the model, backing off exponentially on 503 only. Any other
// error is returned at once. A cancelled ctx during backoff returns ctx.Err().
func (r *Retrier) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		text, err := r.gen.Generate(ctx, prompt)
		if err == nil {
			metrics.LLMRequests.WithLabelValues("ok").Inc()
			return text, nil
		}
		if !IsOverloaded(err) {
			metrics.LLMRequests.WithLabelValues("error").Inc()
			return "", err
		}
		metrics.LLMRequests.WithLabelValues("overloaded").Inc()
		lastErr = err

		if attempt == r.maxAttempts-1 {
			break
		}
		wait := Backoff(attempt)
		r.log.Warn("Model overloaded, backing off",
			logger.Int("attempt", attempt+1),
			logger.Duration("wait", wait))
		if err := r.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, r.maxAttempts, lastErr)
}
