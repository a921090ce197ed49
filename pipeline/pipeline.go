package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-scrape-bestsellers/config"
	"github.com/aluiziolira/go-scrape-bestsellers/export"
	"github.com/aluiziolira/go-scrape-bestsellers/models"
	"github.com/aluiziolira/go-scrape-bestsellers/parser"
)

var (
	// ErrPipelineClosed is returned when Process is called after shutdown.
	ErrPipelineClosed = errors.New("pipeline: closed")
)

// Sink receives the ordered listing once the pipeline drains.
type Sink interface {
	Export(products []*models.Product, category string) export.Result
}

// Pipeline validates, de-duplicates and orders scraped products, then hands
// them to the sink on Close.
type Pipeline struct {
	ctx       context.Context
	sink      Sink
	logger    *slog.Logger
	category  string
	productCh chan *models.Product

	wg        sync.WaitGroup
	startOnce sync.Once

	seen      *lru.Cache[string, struct{}]
	collected []*models.Product

	metrics metrics

	mu     sync.Mutex // guards closed/collected
	closed bool

	closeOnce    sync.Once
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// NewPipeline builds a pipeline with a modest in-memory buffer. A nil
// logger uses slog.Default.
func NewPipeline(ctx context.Context, sink Sink, cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}
	seen, err := lru.New[string, struct{}](cfg.DedupeMaxSize)
	if err != nil {
		return nil, fmt.Errorf("create dedupe cache: %w", err)
	}
	return &Pipeline{
		ctx:       ctx,
		sink:      sink,
		logger:    logger,
		category:  cfg.Category,
		productCh: make(chan *models.Product, 512),
		seen:      seen,
		metrics:   newMetrics(),
		shutdown:  make(chan struct{}),
	}, nil
}

// Start launches the collecting goroutine. Collection is sequential so the
// arrival order of equally positioned products is preserved.
func (p *Pipeline) Start() {
	if p.isClosed() {
		return
	}

	p.startOnce.Do(func() {
		p.wg.Add(1)
		go p.worker()
	})
}

// Process enqueues products for downstream processing.
func (p *Pipeline) Process(products ...*models.Product) error {
	if len(products) == 0 {
		return nil
	}

	if p.isClosed() {
		return ErrPipelineClosed
	}

	for _, product := range products {
		if product == nil {
			continue
		}
		if err := p.enqueue(product); err != nil {
			return err
		}
	}
	return nil
}

// Close drains pending products, orders them by listing position and
// exports them. It returns what the sink wrote.
func (p *Pipeline) Close() (export.Result, error) {
	p.mu.Lock()
	alreadyClosed := p.closed
	p.closed = true
	p.mu.Unlock()

	p.signalShutdown()
	p.closeOnce.Do(func() {
		close(p.productCh)
	})
	p.wg.Wait()

	if alreadyClosed {
		return export.Result{}, ErrPipelineClosed
	}

	ordered := p.Products()
	p.logger.Debug("pipeline drained",
		slog.String("category", p.category),
		slog.Int("products", len(ordered)),
	)
	return p.sink.Export(ordered, p.category), nil
}

// Products returns the collected products ordered by listing position.
// Products without a known position follow in arrival order.
func (p *Pipeline) Products() []*models.Product {
	p.mu.Lock()
	out := make([]*models.Product, len(p.collected))
	copy(out, p.collected)
	p.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Position, out[j].Position
		if a == 0 || b == 0 {
			return a != 0 && b == 0
		}
		return a < b
	})
	return out
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.metrics.snapshot()
}

// StartMetricsReporting emits periodic progress logs.
func (p *Pipeline) StartMetricsReporting(interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				metrics := p.GetMetrics()
				processed := metrics["processed_products"].(int64)
				validation := metrics["validation_errors"].(map[string]int)
				p.logger.Info("pipeline progress",
					slog.Int64("processed", processed),
					slog.Int("validation_errors", len(validation)),
				)
			case <-p.shutdown:
				return
			}
		}
	}()
}

func (p *Pipeline) worker() {
	defer p.wg.Done()

	for product := range p.productCh {
		prepared := p.prepare(product)
		if prepared == nil {
			continue
		}
		p.mu.Lock()
		p.collected = append(p.collected, prepared)
		p.mu.Unlock()
	}
}

func (p *Pipeline) prepare(product *models.Product) *models.Product {
	product.Title = parser.NormalizeText(product.Title)
	product.ASIN = parser.NormalizeText(product.ASIN)
	product.Price = parser.NormalizeValue(product.Price)
	product.Rating = parser.NormalizeValue(product.Rating)
	product.ReviewCount = parser.NormalizeValue(product.ReviewCount)
	product.Description = parser.NormalizeText(product.Description)

	if err := parser.ValidateProduct(product); err != nil {
		p.logger.Debug("dropping invalid product", slog.Any("error", err))
		p.metrics.addValidation("invalid_record")
		return nil
	}

	if found, _ := p.seen.ContainsOrAdd(product.ASIN, struct{}{}); found {
		p.metrics.addValidation("duplicate_asin")
		return nil
	}

	p.metrics.incrementProcessed()
	return product
}

func (p *Pipeline) enqueue(product *models.Product) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrPipelineClosed
		}
	}()

	select {
	case <-p.shutdown:
		return ErrPipelineClosed
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.productCh <- product:
		return nil
	}
}

func (p *Pipeline) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Pipeline) signalShutdown() {
	p.shutdownOnce.Do(func() {
		close(p.shutdown)
	})
}

type metrics struct {
	mu         sync.Mutex
	processed  int64
	validation map[string]int
}

func newMetrics() metrics {
	return metrics{
		validation: make(map[string]int),
	}
}

func (m *metrics) incrementProcessed() {
	m.mu.Lock()
	m.processed++
	m.mu.Unlock()
}

func (m *metrics) addValidation(kind string) {
	m.mu.Lock()
	m.validation[kind]++
	m.mu.Unlock()
}

func (m *metrics) snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	copyValidation := make(map[string]int, len(m.validation))
	for k, v := range m.validation {
		copyValidation[k] = v
	}

	return map[string]interface{}{
		"processed_products": m.processed,
		"validation_errors":  copyValidation,
	}
}
