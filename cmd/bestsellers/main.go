package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-scrape-bestsellers/config"
	"github.com/aluiziolira/go-scrape-bestsellers/export"
	"github.com/aluiziolira/go-scrape-bestsellers/models"
	"github.com/aluiziolira/go-scrape-bestsellers/pipeline"
	"github.com/aluiziolira/go-scrape-bestsellers/scraper"
)

func main() {
	defaultCfg := config.DefaultConfig()
	if err := applyEnv(defaultCfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	baseURL := flag.String("url", defaultCfg.BaseURL, "Bestseller listing URL to crawl")
	category := flag.String("category", defaultCfg.Category, "Category label used in the output filename")
	maxPages := flag.Int("pages", defaultCfg.MaxPages, "Maximum listing pages to scrape")
	parallelism := flag.Int("parallel", defaultCfg.Parallelism, "Number of concurrent requests")
	delay := flag.Duration("delay", defaultCfg.Delay, "Delay between requests")
	randomDelay := flag.Duration("random-delay", defaultCfg.RandomDelay, "Random jitter added to delay")
	maxRetries := flag.Int("max-retries", defaultCfg.MaxRetries, "Maximum retry attempts per URL")
	retryBackoff := flag.Duration("retry-backoff", defaultCfg.RetryBackoff, "Initial retry backoff")
	retryBackoffMax := flag.Duration("retry-backoff-max", defaultCfg.RetryBackoffMax, "Maximum retry backoff")
	respectRobots := flag.Bool("respect-robots", defaultCfg.RespectRobotsTxt, "Respect robots.txt directives")
	fetchDetails := flag.Bool("details", defaultCfg.FetchDetails, "Visit product pages to capture descriptions")
	dirs := flag.String("dirs", strings.Join(defaultCfg.Export.Dirs, string(os.PathListSeparator)), "Spreadsheet directories to try, in order")
	backupDir := flag.String("backup-dir", defaultCfg.Export.BackupDir, "Directory for the CSV backup")
	input := flag.String("input", "", "Export products from a JSON file instead of crawling")
	metricsAddr := flag.String("metrics-addr", defaultCfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := defaultCfg
	cfg.BaseURL = *baseURL
	cfg.Category = *category
	cfg.MaxPages = *maxPages
	cfg.Parallelism = *parallelism
	cfg.Delay = *delay
	cfg.RandomDelay = *randomDelay
	cfg.MaxRetries = *maxRetries
	cfg.RetryBackoff = *retryBackoff
	cfg.RetryBackoffMax = *retryBackoffMax
	cfg.RespectRobotsTxt = *respectRobots
	cfg.FetchDetails = *fetchDetails
	cfg.Export.Dirs = splitDirs(*dirs)
	cfg.Export.BackupDir = *backupDir
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	exporter := export.NewExporter(cfg.Export, logger, export.NewMetrics(registry))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsServer := startMetricsServer(cfg.MetricsAddr, registry)

	startTime := time.Now()
	var (
		result  export.Result
		summary *models.ScraperResult
		count   int
		runErr  error
	)
	if *input != "" {
		var products []*models.Product
		products, runErr = loadProducts(*input)
		if runErr == nil {
			count = len(products)
			result = exporter.Export(products, cfg.Category)
		}
	} else {
		summary, result, runErr = crawl(ctx, cfg, logger, registry, exporter)
		if summary != nil {
			count = summary.TotalCount
		}
	}
	if runErr != nil {
		slog.Error("run failed", slog.Any("error", runErr))
	} else {
		printSummary(summary, result, time.Since(startTime))
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	if runErr != nil || (count > 0 && !result.Written()) {
		os.Exit(1)
	}
}

func crawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, registry *prometheus.Registry, exporter *export.Exporter) (*models.ScraperResult, export.Result, error) {
	logger.Info("starting scrape",
		slog.String("base_url", cfg.BaseURL),
		slog.String("category", cfg.Category),
		slog.Int("pages", cfg.MaxPages),
		slog.Int("workers", cfg.Parallelism),
	)

	s, err := scraper.NewScraper(cfg, logger, registry)
	if err != nil {
		return nil, export.Result{}, fmt.Errorf("initialising scraper: %w", err)
	}

	p, err := pipeline.NewPipeline(ctx, exporter, cfg, logger)
	if err != nil {
		return nil, export.Result{}, fmt.Errorf("creating pipeline: %w", err)
	}
	p.Start()
	if cfg.Verbose {
		p.StartMetricsReporting(10 * time.Second)
	}

	summary, runErr := s.Run(ctx, p)
	// Whatever was collected is exported even when the crawl was interrupted.
	result, closeErr := p.Close()
	if runErr != nil {
		return nil, result, runErr
	}
	if closeErr != nil {
		return summary, result, fmt.Errorf("pipeline shutdown: %w", closeErr)
	}
	if metrics := p.GetMetrics(); metrics != nil {
		if processed, ok := metrics["processed_products"].(int64); ok {
			summary.TotalCount = int(processed)
		}
	}
	return summary, result, nil
}

func applyEnv(cfg *config.Config) error {
	if value, ok := config.EnvString("BESTSELLERS_URL"); ok {
		cfg.BaseURL = value
	}
	if value, ok := config.EnvString("BESTSELLERS_CATEGORY"); ok {
		cfg.Category = value
	}
	if value, ok, err := config.EnvInt("BESTSELLERS_PAGES"); err != nil {
		return err
	} else if ok {
		cfg.MaxPages = value
	}
	if value, ok, err := config.EnvInt("BESTSELLERS_PARALLEL"); err != nil {
		return err
	} else if ok {
		cfg.Parallelism = value
	}
	if value, ok, err := config.EnvBool("BESTSELLERS_DETAILS"); err != nil {
		return err
	} else if ok {
		cfg.FetchDetails = value
	}
	if dirs, ok := config.EnvPathList("BESTSELLERS_EXPORT_DIRS"); ok {
		cfg.Export.Dirs = dirs
	}
	if value, ok := config.EnvString("BESTSELLERS_METRICS_ADDR"); ok {
		cfg.MetricsAddr = value
	}
	return nil
}

func splitDirs(value string) []string {
	var out []string
	for _, dir := range filepath.SplitList(value) {
		if dir = strings.TrimSpace(dir); dir != "" {
			out = append(out, dir)
		}
	}
	return out
}

func loadProducts(path string) ([]*models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	var products []*models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return products, nil
}

func startMetricsServer(addr string, registry *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil
	}
	server := &http.Server{
		Addr:    addr,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", addr))
	return server
}

func printSummary(result *models.ScraperResult, written export.Result, duration time.Duration) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Export complete")

	if result != nil {
		fmt.Printf("  Products:      %d\n", result.TotalCount)
		fmt.Printf("  Pages:         %d\n", result.PageCount)
		fmt.Printf("  Detail pages:  %d\n", result.DetailCount)
		successRate := 0.0
		if result.RequestCount > 0 {
			successRate = float64(result.RequestCount-result.ErrorCount) / float64(result.RequestCount) * 100
		}
		fmt.Printf("  Success rate:  %.2f%%\n", successRate)
		fmt.Printf("  Errors:        %d\n", result.ErrorCount)
		fmt.Printf("  Retries:       %d\n", result.RetryCount)
		fmt.Printf("  Failed URLs:   %d\n", len(result.FailedURLs))
		if len(result.ErrorsByType) > 0 {
			fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
		}
	}
	fmt.Printf("  Duration:      %v\n", duration)
	if written.Written() {
		fmt.Printf("  Output file:   %s (%s, %d rows)\n", written.Path, written.Format, written.Rows)
	} else {
		fmt.Println("  Output file:   none")
	}
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
