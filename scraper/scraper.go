package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aluiziolira/go-scrape-bestsellers/config"
	"github.com/aluiziolira/go-scrape-bestsellers/models"
	"github.com/aluiziolira/go-scrape-bestsellers/parser"
	"github.com/aluiziolira/go-scrape-bestsellers/pipeline"
)

const productKey = "product"

// Processor accepts scraped products.
type Processor interface {
	Process(products ...*models.Product) error
}

// Scraper wraps the colly collector and retry logic for a bestseller listing.
type Scraper struct {
	cfg       *config.Config
	collector *colly.Collector
	retry     *retrier
	logger    *slog.Logger
	Metrics   *Metrics

	requestCount int64
	pageCount    int64
	followed     int64
	detailCount  int64
	emitted      int64
	errorCount   int64

	mu           sync.Mutex
	failedURLs   []string
	errorsByType map[string]int

	handlersOnce sync.Once
}

// NewScraper builds a scraper configured from cfg. A nil logger uses
// slog.Default and metrics are registered on reg when it is non-nil.
func NewScraper(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Scraper, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.Async(true),
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Parallelism,
		Delay:       cfg.Delay,
		RandomDelay: cfg.RandomDelay,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	metrics := NewMetrics(reg)
	return &Scraper{
		cfg:          cfg,
		collector:    collector,
		retry:        newRetrier(cfg, logger, metrics),
		logger:       logger,
		errorsByType: make(map[string]int),
		Metrics:      metrics,
	}, nil
}

// Run crawls the listing and streams products into p.
func (s *Scraper) Run(ctx context.Context, p Processor) (*models.ScraperResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.retry.setContext(ctx)
	s.configureHandlers(ctx, p)

	start := time.Now()
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			s.retry.stop()
		case <-done:
		}
	}()

	if err := s.collector.Visit(s.cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("initial visit: %w", err)
	}

	for {
		s.collector.Wait()
		if !s.retry.wait() {
			break
		}
	}
	s.retry.stop()

	return &models.ScraperResult{
		StartTime:    start,
		EndTime:      time.Now(),
		TotalCount:   int(atomic.LoadInt64(&s.emitted)),
		ErrorCount:   int(atomic.LoadInt64(&s.errorCount)),
		FailedURLs:   s.snapshotFailedURLs(),
		ErrorsByType: s.snapshotErrors(),
		RetryCount:   s.retry.totalRetries(),
		RequestCount: int(atomic.LoadInt64(&s.requestCount)),
		PageCount:    int(atomic.LoadInt64(&s.pageCount)),
		DetailCount:  int(atomic.LoadInt64(&s.detailCount)),
	}, nil
}

func pageKind(r *colly.Request) string {
	if r != nil && r.Ctx.GetAny(productKey) != nil {
		return pageDetail
	}
	return pageList
}

func (s *Scraper) configureHandlers(ctx context.Context, p Processor) {
	s.handlersOnce.Do(func() {
		sel := s.cfg.Selectors

		s.collector.OnRequest(func(r *colly.Request) {
			if ctx.Err() != nil {
				r.Abort()
				return
			}
			r.Ctx.Put("start", time.Now())
			current := atomic.AddInt64(&s.requestCount, 1)
			s.Metrics.IncRequest(pageKind(r))
			s.logger.Debug("scraper request",
				slog.Int64("requests", current),
				slog.String("page", pageKind(r)),
				slog.String("url", r.URL.String()),
			)
		})

		s.collector.OnResponse(func(r *colly.Response) {
			if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
				s.Metrics.ObserveDuration(pageKind(r.Request), time.Since(start))
			}
		})

		s.collector.OnError(func(r *colly.Response, err error) {
			atomic.AddInt64(&s.errorCount, 1)
			statusCode := 0
			var req *colly.Request
			if r != nil {
				statusCode = r.StatusCode
				req = r.Request
			}
			classified := classifyError(err, statusCode)
			category := errorTypeLabel(classified)

			s.mu.Lock()
			s.errorsByType[category]++
			s.mu.Unlock()

			target := ""
			if req != nil && req.URL != nil {
				target = req.URL.String()
			}
			s.logger.Error("request error",
				slog.String("url", target),
				slog.String("page", pageKind(req)),
				slog.String("category", category),
				slog.Any("error", err),
			)
			s.Metrics.IncError(pageKind(req), category)

			if retryable(classified) && s.retry.schedule(req) {
				return
			}

			s.mu.Lock()
			s.failedURLs = append(s.failedURLs, target)
			s.mu.Unlock()

			// A product whose detail page failed is still worth exporting.
			if req != nil {
				if product, ok := req.Ctx.GetAny(productKey).(*models.Product); ok {
					s.emit(p, product, pageDetail)
				}
			}
		})

		s.collector.OnHTML(sel.Item, func(e *colly.HTMLElement) {
			if pageKind(e.Request) == pageDetail {
				return
			}
			product := extractProduct(e, sel)
			if product == nil {
				return
			}
			if s.cfg.FetchDetails && product.URL != "" {
				detailCtx := colly.NewContext()
				detailCtx.Put(productKey, product)
				err := s.collector.Request(http.MethodGet, product.URL, nil, detailCtx, nil)
				if err == nil {
					return
				}
				s.logger.Debug("detail visit skipped", slog.String("url", product.URL), slog.Any("error", err))
			}
			s.emit(p, product, pageList)
		})

		if sel.Description != "" {
			s.collector.OnHTML(sel.Description, func(e *colly.HTMLElement) {
				product, ok := e.Request.Ctx.GetAny(productKey).(*models.Product)
				if !ok || product.Description != "" {
					return
				}
				product.Description = parser.NormalizeText(e.Text)
			})
		}

		if sel.NextPage != "" {
			s.collector.OnHTML(sel.NextPage, func(e *colly.HTMLElement) {
				if pageKind(e.Request) == pageDetail || ctx.Err() != nil {
					return
				}
				if atomic.AddInt64(&s.followed, 1) >= int64(s.cfg.MaxPages) {
					return
				}
				next := e.Request.AbsoluteURL(e.Attr("href"))
				if err := s.collector.Visit(next); err != nil {
					s.logger.Debug("next page skipped", slog.String("url", next), slog.Any("error", err))
				}
			})
		}

		s.collector.OnScraped(func(r *colly.Response) {
			product, ok := r.Request.Ctx.GetAny(productKey).(*models.Product)
			if !ok {
				atomic.AddInt64(&s.pageCount, 1)
				return
			}
			atomic.AddInt64(&s.detailCount, 1)
			s.emit(p, product, pageDetail)
		})
	})
}

func (s *Scraper) emit(p Processor, product *models.Product, page string) {
	atomic.AddInt64(&s.emitted, 1)
	s.Metrics.IncProducts(page)
	if err := p.Process(product); err != nil && !errors.Is(err, pipeline.ErrPipelineClosed) {
		s.logger.Error("pipeline process error", slog.Any("error", err))
	}
}

func extractProduct(e *colly.HTMLElement, sel config.Selectors) *models.Product {
	title := strings.TrimSpace(e.ChildText(sel.Title))
	if title == "" {
		title = strings.TrimSpace(e.ChildAttr("img", "alt"))
	}
	if title == "" {
		return nil
	}

	link := ""
	if sel.Link != "" {
		if href := e.ChildAttr(sel.Link, "href"); href != "" {
			link = e.Request.AbsoluteURL(href)
		}
	}

	asin := e.Attr("data-asin")
	if asin == "" {
		asin = e.ChildAttr("[data-asin]", "data-asin")
	}
	if asin == "" {
		asin = parser.ASINFromURL(link)
	}

	return &models.Product{
		Position:    parser.ParsePosition(childText(e, sel.Position)),
		Title:       title,
		Price:       models.Text(parser.NormalizePrice(childText(e, sel.Price))),
		Rating:      parser.RatingValue(childText(e, sel.Rating)),
		ReviewCount: parser.ReviewCountValue(childText(e, sel.ReviewCount)),
		ASIN:        asin,
		URL:         link,
		ScrapedAt:   time.Now(),
	}
}

func childText(e *colly.HTMLElement, selector string) string {
	if selector == "" {
		return ""
	}
	return e.ChildText(selector)
}

func (s *Scraper) snapshotFailedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.failedURLs))
	copy(out, s.failedURLs)
	return out
}

func (s *Scraper) snapshotErrors() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.errorsByType))
	for k, v := range s.errorsByType {
		out[k] = v
	}
	return out
}
