package export

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// ErrExhaustedLocations is returned when no candidate directory accepted the spreadsheet.
var ErrExhaustedLocations = errors.New("export: unable to save file in any of the attempted locations")

// LocationError records a failed write into one candidate directory.
type LocationError struct {
	Dir  string
	Path string
	Err  error
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("save to %s: %v", e.Dir, e.Err)
}

func (e *LocationError) Unwrap() error {
	return e.Err
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	switch {
	case errors.Is(err, fs.ErrPermission):
		return "permission"
	case errors.Is(err, syscall.ENOSPC):
		return "disk_full"
	case errors.Is(err, syscall.ENOTDIR):
		return "not_a_directory"
	case errors.Is(err, fs.ErrNotExist):
		return "not_found"
	}
	return "other"
}
