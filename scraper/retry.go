package scraper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-scrape-bestsellers/config"
)

const attemptKey = "attempt"

// retrier re-submits failed requests after a capped exponential backoff.
// Attempts are tracked on the request context so detail pages keep their
// product across retries.
type retrier struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *Metrics
	ctx     context.Context

	mu          sync.Mutex
	pending     sync.WaitGroup
	outstanding int
	timers      map[*time.Timer]struct{}
	total       int
	stopped     bool
}

func newRetrier(cfg *config.Config, logger *slog.Logger, metrics *Metrics) *retrier {
	if logger == nil {
		logger = slog.Default()
	}
	return &retrier{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		ctx:     context.Background(),
		timers:  make(map[*time.Timer]struct{}),
	}
}

func (r *retrier) setContext(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	r.ctx = ctx
}

// schedule queues another attempt for req and reports whether it did.
func (r *retrier) schedule(req *colly.Request) bool {
	if req == nil || r.cfg.MaxRetries == 0 {
		return false
	}

	attempt, _ := req.Ctx.GetAny(attemptKey).(int)
	if attempt >= r.cfg.MaxRetries {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || r.ctx.Err() != nil {
		return false
	}

	attempt++
	req.Ctx.Put(attemptKey, attempt)
	r.total++
	r.outstanding++
	r.pending.Add(1)
	r.metrics.IncRetries(pageKind(req))

	var timer *time.Timer
	timer = time.AfterFunc(r.backoff(attempt), func() {
		defer r.done()

		r.mu.Lock()
		delete(r.timers, timer)
		cancelled := r.stopped || r.ctx.Err() != nil
		r.mu.Unlock()
		if cancelled {
			return
		}
		if err := req.Retry(); err != nil {
			r.logger.Debug("retry submit failed", slog.String("url", req.URL.String()), slog.Any("error", err))
		}
	})
	r.timers[timer] = struct{}{}
	return true
}

func (r *retrier) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := r.cfg.RetryBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := r.cfg.RetryBackoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

func (r *retrier) done() {
	r.mu.Lock()
	r.outstanding--
	r.mu.Unlock()
	r.pending.Done()
}

// wait blocks until every scheduled retry has been submitted. It reports
// whether there was anything to wait for.
func (r *retrier) wait() bool {
	r.mu.Lock()
	idle := r.outstanding == 0
	r.mu.Unlock()
	if idle {
		return false
	}
	r.pending.Wait()
	return true
}

func (r *retrier) stop() {
	r.mu.Lock()
	r.stopped = true
	var cancelled int
	for timer := range r.timers {
		if timer.Stop() {
			cancelled++
		}
		delete(r.timers, timer)
	}
	r.outstanding -= cancelled
	r.mu.Unlock()

	for i := 0; i < cancelled; i++ {
		r.pending.Done()
	}
}

func (r *retrier) totalRetries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}
