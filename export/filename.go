package export

import (
	"fmt"
	"strings"
	"time"
)

// File formats produced by the exporter.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

const timestampLayout = "20060102_150405"

var labelReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	`"`, "_",
	"/", "_",
	`\`, "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// SanitizeLabel replaces characters that are illegal in filenames with '_'.
func SanitizeLabel(label string) string {
	return labelReplacer.Replace(label)
}

// Timestamp formats t as YYYYMMDD_HHMMSS.
func Timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// Filename builds "{label}_bestsellers_{stamp}.{format}".
func Filename(label, stamp, format string) string {
	return fmt.Sprintf("%s_bestsellers_%s.%s", label, stamp, format)
}
