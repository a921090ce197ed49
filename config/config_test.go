package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "negative parallelism",
			mutate: func(cfg *Config) {
				cfg.Parallelism = -1
			},
			wantErr: "parallelism",
		},
		{
			name: "zero max pages",
			mutate: func(cfg *Config) {
				cfg.MaxPages = 0
			},
			wantErr: "max pages",
		},
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "blank category",
			mutate: func(cfg *Config) {
				cfg.Category = "  "
			},
			wantErr: "category",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "backoff above max",
			mutate: func(cfg *Config) {
				cfg.RetryBackoff = 10 * time.Second
				cfg.RetryBackoffMax = time.Second
			},
			wantErr: "retry backoff",
		},
		{
			name: "missing item selector",
			mutate: func(cfg *Config) {
				cfg.Selectors.Item = ""
			},
			wantErr: "selectors",
		},
		{
			name: "no export dirs",
			mutate: func(cfg *Config) {
				cfg.Export.Dirs = nil
			},
			wantErr: "candidate directory",
		},
		{
			name: "blank export dir",
			mutate: func(cfg *Config) {
				cfg.Export.Dirs = []string{".", ""}
			},
			wantErr: "export directory 1",
		},
		{
			name: "long sheet name",
			mutate: func(cfg *Config) {
				cfg.Export.SheetName = strings.Repeat("x", 32)
			},
			wantErr: "31 characters",
		},
		{
			name: "zero column width",
			mutate: func(cfg *Config) {
				cfg.Export.MaxColumnWidth = 0
			},
			wantErr: "column width",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.Export.SheetName != "Bestsellers" {
		t.Fatalf("sheet name = %q, want Bestsellers", cfg.Export.SheetName)
	}
	if cfg.Export.MaxColumnWidth != 50 {
		t.Fatalf("max column width = %d, want 50", cfg.Export.MaxColumnWidth)
	}
}

func TestDefaultCandidateDirsOrder(t *testing.T) {
	home := t.TempDir()
	temp := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(TempDirEnv, temp)

	got := DefaultCandidateDirs()
	want := []string{".", home, filepath.Join(home, "Documents"), temp}
	if len(got) != len(want) {
		t.Fatalf("dirs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dirs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if backup := DefaultBackupDir(); backup != temp {
		t.Fatalf("backup dir = %q, want %q", backup, temp)
	}
}

func TestDefaultCandidateDirsWithoutTemp(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(TempDirEnv, "")

	dirs := DefaultCandidateDirs()
	if last := dirs[len(dirs)-1]; last != home {
		t.Fatalf("temp fallback = %q, want home %q", last, home)
	}
	if backup := DefaultBackupDir(); backup != "." {
		t.Fatalf("backup dir = %q, want working directory", backup)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("BESTSELLERS_TEST_INT", " 12 ")
	t.Setenv("BESTSELLERS_TEST_BAD", "twelve")
	t.Setenv("BESTSELLERS_TEST_BOOL", "true")
	t.Setenv("BESTSELLERS_TEST_DIRS", strings.Join([]string{"a", "", "b"}, string(os.PathListSeparator)))

	if v, ok, err := EnvInt("BESTSELLERS_TEST_INT"); err != nil || !ok || v != 12 {
		t.Fatalf("EnvInt = %d/%v/%v, want 12/true/nil", v, ok, err)
	}
	if _, _, err := EnvInt("BESTSELLERS_TEST_BAD"); err == nil {
		t.Fatalf("expected parse error for non-numeric value")
	}
	if v, ok, err := EnvBool("BESTSELLERS_TEST_BOOL"); err != nil || !ok || !v {
		t.Fatalf("EnvBool = %v/%v/%v, want true/true/nil", v, ok, err)
	}
	if _, ok := EnvString("BESTSELLERS_TEST_UNSET"); ok {
		t.Fatalf("unset variable reported as set")
	}
	dirs, ok := EnvPathList("BESTSELLERS_TEST_DIRS")
	if !ok || len(dirs) != 2 || dirs[0] != "a" || dirs[1] != "b" {
		t.Fatalf("EnvPathList = %v/%v, want [a b]/true", dirs, ok)
	}
}
