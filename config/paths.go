package config

import (
	"os"
	"path/filepath"
)

// TempDirEnv names the variable consulted for the temp candidate and the backup directory.
const TempDirEnv = "TEMP"

// DefaultCandidateDirs returns the spreadsheet save locations in priority order:
// working directory, home, home/Documents, then $TEMP (home when unset).
func DefaultCandidateDirs() []string {
	home := homeDir()
	temp, ok := EnvString(TempDirEnv)
	if !ok {
		temp = home
	}
	return []string{
		".",
		home,
		filepath.Join(home, "Documents"),
		temp,
	}
}

// DefaultBackupDir returns $TEMP, or the working directory when unset.
func DefaultBackupDir() string {
	if temp, ok := EnvString(TempDirEnv); ok {
		return temp
	}
	return "."
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return home
}
