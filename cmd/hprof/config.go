package main

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/getsentry/hprof/internal/hprof"
)

type (
	ServiceConfig struct {
		Environment string `yaml:"environment" env:"SENTRY_ENVIRONMENT" env-default:"development"`
		SentryDSN   string `yaml:"sentry_dsn" env:"SENTRY_DSN"`
		Port        string `yaml:"port" env:"PORT" env-default:"8080"`
		LogLevel    string `yaml:"log_level" env:"HPROF_LOG_LEVEL" env-default:"info"`

		Workload WorkloadConfig `yaml:"workload"`

		// MisusePolicy is one of panic, return or log.
		MisusePolicy string `yaml:"misuse_policy" env:"HPROF_MISUSE_POLICY" env-default:"panic"`

		FramesBucket    string        `yaml:"frames_bucket" env:"HPROF_FRAMES_BUCKET"`
		KafkaBrokers    []string      `yaml:"kafka_brokers" env:"HPROF_KAFKA_BROKERS" env-separator:","`
		KafkaTopic      string        `yaml:"kafka_topic" env:"HPROF_KAFKA_TOPIC" env-default:"hprof-frames"`
		SlowFrameBudget time.Duration `yaml:"slow_frame_budget" env:"HPROF_SLOW_FRAME_BUDGET" env-default:"0s"`
	}

	WorkloadConfig struct {
		Workers       int           `yaml:"workers" env:"HPROF_WORKERS" env-default:"2"`
		Frames        int           `yaml:"frames" env:"HPROF_FRAMES" env-default:"0"`
		FrameInterval time.Duration `yaml:"frame_interval" env:"HPROF_FRAME_INTERVAL" env-default:"16ms"`
		WorkUnit      time.Duration `yaml:"work_unit" env:"HPROF_WORK_UNIT" env-default:"100us"`
		PrintEvery    int           `yaml:"print_every" env:"HPROF_PRINT_EVERY" env-default:"60"`
	}
)

// loadConfig reads the configuration from path when set, environment
// variables taking precedence, or from the environment alone.
func loadConfig(path string) (ServiceConfig, error) {
	var cfg ServiceConfig
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return cfg, errors.Wrap(err, "reading configuration")
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c ServiceConfig) validate() error {
	if _, err := hprof.ParseMisusePolicy(c.MisusePolicy); err != nil {
		return err
	}
	if c.Workload.Workers < 1 {
		return errors.Newf("at least one worker is required, got %d", c.Workload.Workers)
	}
	if c.Workload.Frames < 0 {
		return errors.Newf("frames must not be negative, got %d", c.Workload.Frames)
	}
	if c.Workload.FrameInterval <= 0 {
		return errors.Newf("frame_interval must be positive, got %s", c.Workload.FrameInterval)
	}
	if c.Workload.PrintEvery < 0 {
		return errors.Newf("print_every must not be negative, got %d", c.Workload.PrintEvery)
	}
	return nil
}

func (c ServiceConfig) misusePolicy() hprof.MisusePolicy {
	m, _ := hprof.ParseMisusePolicy(c.MisusePolicy)
	return m
}
