package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func watchFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("watch", pflag.ContinueOnError)
	flags.String("ws", "", "")
	flags.String("out", "-", "")
	flags.String("errors", "", "")
	flags.String("metrics-addr", "", "")
	flags.Uint64("limit", 0, "")
	flags.String("log-level", "info", "")
	return flags
}

func TestLoadWatchFlagsOverrideEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("INDEXER_WS", "ws://env.test")
	t.Setenv("INDEXER_METRICS_ADDR", ":9100")

	flags := watchFlags()
	if err := flags.Parse([]string{"--ws", "ws://flag.test", "--limit", "3"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadWatch("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WSURL != "ws://flag.test" {
		t.Fatalf("expected flag url, got %q", cfg.WSURL)
	}
	if cfg.MetricsAddr != ":9100" {
		t.Fatalf("expected env metrics addr, got %q", cfg.MetricsAddr)
	}
	if cfg.Limit != 3 {
		t.Fatalf("expected limit 3, got %d", cfg.Limit)
	}
	if cfg.Out != "-" {
		t.Fatalf("expected stdout default, got %q", cfg.Out)
	}
}

func TestLoadWatchRequiresURL(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := LoadWatch("", watchFlags()); err == nil {
		t.Fatalf("expected error for missing ws url")
	}
}

func TestLoadBalanceFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "indexer.yaml")
	content := "rpc: http://node.test\naddress: \" 0xabc \"\ntimeout: 5s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadBalance(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCURL != "http://node.test" {
		t.Fatalf("unexpected rpc url %q", cfg.RPCURL)
	}
	if cfg.Address != "0xabc" {
		t.Fatalf("expected trimmed address, got %q", cfg.Address)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.Timeout)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
}

func TestLoadBalanceMissingFile(t *testing.T) {
	if _, err := LoadBalance(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
