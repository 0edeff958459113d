package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/getsentry/hprof/internal/hprof"
	"github.com/getsentry/hprof/internal/testutil"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HPROF_WORKERS", "4")
	t.Setenv("HPROF_FRAME_INTERVAL", "8ms")
	t.Setenv("HPROF_KAFKA_BROKERS", "kafka-0:9092,kafka-1:9092")
	t.Setenv("HPROF_MISUSE_POLICY", "log")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("couldn't load config: %v", err)
	}
	if cfg.Workload.Workers != 4 {
		t.Fatalf("expected 4 workers, got %d", cfg.Workload.Workers)
	}
	if cfg.Workload.FrameInterval != 8*time.Millisecond {
		t.Fatalf("expected 8ms frame interval, got %v", cfg.Workload.FrameInterval)
	}
	if cfg.Workload.PrintEvery != 60 {
		t.Fatalf("expected default print_every of 60, got %d", cfg.Workload.PrintEvery)
	}
	if diff := testutil.Diff(cfg.KafkaBrokers, []string{"kafka-0:9092", "kafka-1:9092"}); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
	if cfg.misusePolicy() != hprof.MisuseLog {
		t.Fatalf("expected log policy, got %v", cfg.misusePolicy())
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := []byte("kafka_topic: frames\nworkload:\n  workers: 3\n  print_every: 10\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("couldn't write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("couldn't load config: %v", err)
	}
	if cfg.KafkaTopic != "frames" {
		t.Fatalf("expected frames topic, got %q", cfg.KafkaTopic)
	}
	if cfg.Workload.Workers != 3 || cfg.Workload.PrintEvery != 10 {
		t.Fatalf("unexpected workload: %+v", cfg.Workload)
	}
	if cfg.Workload.WorkUnit != 100*time.Microsecond {
		t.Fatalf("expected default work unit, got %v", cfg.Workload.WorkUnit)
	}
}

func TestLoadConfigRejectsZeroFrameInterval(t *testing.T) {
	t.Setenv("HPROF_FRAME_INTERVAL", "0s")
	if _, err := loadConfig(""); err == nil {
		t.Fatal("expected an error for a zero frame interval")
	}
}

func TestValidate(t *testing.T) {
	valid := ServiceConfig{
		MisusePolicy: "panic",
		Workload:     WorkloadConfig{Workers: 1, FrameInterval: 16 * time.Millisecond},
	}
	tests := []struct {
		name    string
		mutate  func(c *ServiceConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(*ServiceConfig) {}},
		{name: "unknown policy", mutate: func(c *ServiceConfig) { c.MisusePolicy = "ignore" }, wantErr: true},
		{name: "no worker", mutate: func(c *ServiceConfig) { c.Workload.Workers = 0 }, wantErr: true},
		{name: "negative frames", mutate: func(c *ServiceConfig) { c.Workload.Frames = -1 }, wantErr: true},
		{name: "zero frame interval", mutate: func(c *ServiceConfig) { c.Workload.FrameInterval = 0 }, wantErr: true},
		{name: "negative frame interval", mutate: func(c *ServiceConfig) { c.Workload.FrameInterval = -time.Second }, wantErr: true},
		{name: "negative print_every", mutate: func(c *ServiceConfig) { c.Workload.PrintEvery = -1 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.validate(); (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
