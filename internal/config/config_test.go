package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fmt.Exe != "clang-format" || cfg.Fmt.Style != "file" {
		t.Errorf("fmt defaults = %+v", cfg.Fmt)
	}
	if cfg.Fmt.TimeoutSecs != 5 {
		t.Errorf("timeout default = %d", cfg.Fmt.TimeoutSecs)
	}
	if cfg.IgnoreDefault {
		t.Error("ignore_default should default to false")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level default = %q", cfg.LogLevel)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
library_paths = ["/usr/share/scad"]
ignore_default = true
log_level = "debug"

[fmt]
exe = "scadformat"
style = "LLVM"
timeout_secs = 10
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.LibraryPaths) != 1 || cfg.LibraryPaths[0] != "/usr/share/scad" {
		t.Errorf("library paths = %v", cfg.LibraryPaths)
	}
	if !cfg.IgnoreDefault {
		t.Error("ignore_default not read")
	}
	if cfg.Fmt.Exe != "scadformat" || cfg.Fmt.Style != "LLVM" || cfg.Fmt.TimeoutSecs != 10 {
		t.Errorf("fmt = %+v", cfg.Fmt)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OPENSCADPATH", strings.Join([]string{"/a", "/b"}, string(os.PathListSeparator)))
	t.Setenv("OPENSCAD_LSP_FMT_EXE", "myfmt")
	t.Setenv("OPENSCAD_LSP_LOG", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.LibraryPaths) != 2 || cfg.LibraryPaths[0] != "/a" || cfg.LibraryPaths[1] != "/b" {
		t.Errorf("library paths = %v", cfg.LibraryPaths)
	}
	if cfg.Fmt.Exe != "myfmt" {
		t.Errorf("fmt exe = %q", cfg.Fmt.Exe)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	bad := Default()
	bad.LogLevel = "chatty"
	bad.Fmt.TimeoutSecs = -1

	err := bad.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "log_level") {
		t.Errorf("missing log_level error in %q", msg)
	}
	if !strings.Contains(msg, "timeout_secs") {
		t.Errorf("missing timeout_secs error in %q", msg)
	}
}
