package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"worktoolkit/internal/config"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Unify.OutDirName != "unified_files" {
		t.Fatalf("unexpected out dir name: %q", cfg.Unify.OutDirName)
	}
	if cfg.Unify.Optimize != "light" {
		t.Fatalf("unexpected optimize level: %q", cfg.Unify.Optimize)
	}
	if cfg.Unify.JPEG.Quality != 70 || cfg.Unify.JPEG.MinKB != 64 {
		t.Fatalf("unexpected jpeg defaults: %+v", cfg.Unify.JPEG)
	}
	if !cfg.Unify.JPEG.Recompress || !cfg.Unify.JPEG.OnlyIfSmaller {
		t.Fatalf("jpeg recompression should default on: %+v", cfg.Unify.JPEG)
	}
	if cfg.Search.BlockSize != 20 {
		t.Fatalf("unexpected block size: %d", cfg.Search.BlockSize)
	}
	wantData := filepath.Join(tempHome, ".local", "share", "worktoolkit")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("data dir = %q, want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.JournalPath() != filepath.Join(wantData, "journal.db") {
		t.Fatalf("journal path = %q", cfg.JournalPath())
	}
	if cfg.EffectiveWorkers() < 1 {
		t.Fatalf("effective workers = %d", cfg.EffectiveWorkers())
	}
}

func TestLoadReadsExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[unify]",
		`optimize = "full"`,
		"workers = 3",
		"[unify.jpeg]",
		"quality = 55",
		"[logging]",
		`level = "debug"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing resolved config, got exists=%v resolved=%q", exists, resolved)
	}
	if cfg.Unify.Optimize != "full" {
		t.Fatalf("optimize = %q", cfg.Unify.Optimize)
	}
	if cfg.EffectiveWorkers() != 3 {
		t.Fatalf("workers = %d", cfg.EffectiveWorkers())
	}
	if cfg.Unify.JPEG.Quality != 55 {
		t.Fatalf("quality = %d", cfg.Unify.JPEG.Quality)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q", cfg.Logging.Level)
	}
	// Untouched sections keep defaults.
	if cfg.Unify.OutDirName != "unified_files" {
		t.Fatalf("out dir name = %q", cfg.Unify.OutDirName)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []string{
		"[unify]\noptimize = \"max\"",
		"[unify.jpeg]\nquality = 0",
		"[unify.jpeg]\nquality = 101",
		"[logging]\nformat = \"xml\"",
		"[logging]\nlevel = \"loud\"",
	}
	for _, content := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, _, _, err := config.Load(path); err == nil {
			t.Fatalf("expected validation error for %q", content)
		}
	}
}

func TestCreateSampleWritesParseableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config did not load: exists=%v err=%v", exists, err)
	}
}
