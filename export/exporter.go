// Package export persists bestseller listings as spreadsheets. It tries an
// ordered list of directories and falls back to a CSV backup when none of
// them accepts the workbook.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aluiziolira/go-scrape-bestsellers/config"
	"github.com/aluiziolira/go-scrape-bestsellers/models"
)

// Result describes the file an export produced. The zero value means nothing was written.
type Result struct {
	Path   string
	Format string
	Rows   int
}

// Written reports whether a file was produced.
func (r Result) Written() bool {
	return r.Path != ""
}

// Exporter writes product listings to disk. It never returns errors: every
// failure is logged and the call degrades to the backup format or to no file.
type Exporter struct {
	cfg     config.ExportConfig
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// NewExporter builds an exporter. A nil logger uses slog.Default and nil
// metrics disables instrumentation.
func NewExporter(cfg config.ExportConfig, logger *slog.Logger, metrics *Metrics) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// attempt is one candidate location for a file.
type attempt struct {
	dir  string
	name string
}

func (a attempt) path() string {
	return filepath.Join(a.dir, a.name)
}

// Export writes products ranked in slice order under a file named after category.
func (e *Exporter) Export(products []*models.Product, category string) Result {
	if len(products) == 0 {
		e.logger.Warn("no products to save", slog.String("category", category))
		return Result{}
	}

	label := SanitizeLabel(category)
	stamp := Timestamp(e.now())
	table := BuildTable(products)

	path, err := e.saveSpreadsheet(table, label, stamp)
	if err == nil {
		e.metrics.IncFile(FormatXLSX, "ok")
		e.metrics.AddRows(FormatXLSX, table.Len())
		return Result{Path: path, Format: FormatXLSX, Rows: table.Len()}
	}

	e.metrics.IncFile(FormatXLSX, "failed")
	e.logger.Error("saving spreadsheet failed, writing csv backup",
		slog.String("category", category),
		slog.Any("error", err),
	)

	path, err = e.saveBackup(table, label, stamp)
	if err != nil {
		e.metrics.IncFile(FormatCSV, "failed")
		e.logger.Error("saving csv backup failed",
			slog.String("category", category),
			slog.String("dir", e.cfg.BackupDir),
			slog.Any("error", err),
		)
		return Result{}
	}

	e.metrics.IncFile(FormatCSV, "ok")
	e.metrics.AddRows(FormatCSV, table.Len())
	e.logger.Info("saved data as csv instead",
		slog.String("path", path),
		slog.Int("rows", table.Len()),
	)
	return Result{Path: path, Format: FormatCSV, Rows: table.Len()}
}

func (e *Exporter) saveSpreadsheet(table *Table, label, stamp string) (string, error) {
	name := Filename(label, stamp, FormatXLSX)

	var failures []error
	for _, dir := range e.cfg.Dirs {
		a := attempt{dir: dir, name: name}
		if err := writeSpreadsheet(a.path(), table, e.cfg.SheetName, e.cfg.MaxColumnWidth); err != nil {
			locErr := &LocationError{Dir: dir, Path: a.path(), Err: err}
			kind := errorTypeLabel(locErr)
			e.metrics.IncLocationFailure(kind)
			e.logger.Warn("error saving spreadsheet, trying next location",
				slog.String("dir", dir),
				slog.String("error_type", kind),
				slog.Any("error", err),
			)
			failures = append(failures, locErr)
			continue
		}

		path := absPath(a.path())
		e.logger.Info("successfully saved spreadsheet",
			slog.String("path", path),
			slog.Int("rows", table.Len()),
		)
		return path, nil
	}

	if len(failures) == 0 {
		return "", ErrExhaustedLocations
	}
	return "", fmt.Errorf("%w: %w", ErrExhaustedLocations, errors.Join(failures...))
}

func (e *Exporter) saveBackup(table *Table, label, stamp string) (string, error) {
	a := attempt{dir: e.cfg.BackupDir, name: Filename(label, stamp, FormatCSV)}
	if err := writeBackupCSV(a.path(), table); err != nil {
		return "", &LocationError{Dir: a.dir, Path: a.path(), Err: err}
	}
	return absPath(a.path()), nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
