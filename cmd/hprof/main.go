package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/getsentry/hprof/internal/hprof"
	"github.com/getsentry/hprof/internal/httputil"
	"github.com/getsentry/hprof/internal/logutil"
	"github.com/getsentry/hprof/internal/sink"
	"github.com/getsentry/hprof/internal/storageutil"
)

type environment struct {
	config ServiceConfig

	registry *hprof.Registry
	sinks    sink.Multi

	framesBucket *storageutil.BucketHandler
	framesWriter *kafka.Writer
}

var release string

func newEnvironment(ctx context.Context, cfg ServiceConfig) (*environment, error) {
	e := environment{config: cfg}
	e.registry = hprof.NewRegistry(
		hprof.WithMisusePolicy(cfg.misusePolicy()),
		hprof.WithMisuseHook(func(err error) {
			sentry.CaptureException(err)
		}),
	)
	e.sinks = sink.Multi{sink.NewWriter(os.Stdout)}

	if cfg.FramesBucket != "" {
		h, err := storageutil.OpenBucket(ctx, cfg.FramesBucket)
		if err != nil {
			return nil, err
		}
		e.framesBucket = h
		e.sinks = append(e.sinks, sink.Blob{Handler: h, Prefix: cfg.Environment})
	}
	if len(cfg.KafkaBrokers) > 0 {
		e.framesWriter = &kafka.Writer{
			Addr:         kafka.TCP(cfg.KafkaBrokers...),
			Async:        true,
			Balancer:     kafka.CRC32Balancer{},
			BatchSize:    10,
			Compression:  kafka.Lz4,
			ReadTimeout:  3 * time.Second,
			Topic:        cfg.KafkaTopic,
			WriteTimeout: 3 * time.Second,
		}
		e.sinks = append(e.sinks, sink.Kafka{Writer: e.framesWriter})
	}
	if cfg.SlowFrameBudget > 0 {
		e.sinks = append(e.sinks, sink.Sentry{Hub: sentry.CurrentHub(), Budget: cfg.SlowFrameBudget})
	}
	return &e, nil
}

func (e *environment) shutdown() {
	if e.framesBucket != nil {
		if err := e.framesBucket.Close(); err != nil {
			sentry.CaptureException(err)
		}
	}
	if e.framesWriter != nil {
		if err := e.framesWriter.Close(); err != nil {
			sentry.CaptureException(err)
		}
	}
	sentry.Flush(5 * time.Second)
}

// runWorkers runs one worker per profiler until ctx is done or every worker
// ran its frames, then flushes the remaining records.
func (e *environment) runWorkers(ctx context.Context) {
	records := make(chan sink.FrameRecord, 16*e.config.Workload.Workers)
	published := make(chan struct{})
	go publisher(records, e.sinks, published)

	var wg sync.WaitGroup
	for i := 0; i < e.config.Workload.Workers; i++ {
		w := &worker{
			profiler: e.registry.Get(fmt.Sprintf("worker-%d", i)),
			config:   e.config.Workload,
			records:  records,
			sleep:    time.Sleep,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}
	wg.Wait()
	close(records)
	<-published
}

func main() {
	configPath := flag.String("config", "", "path to a YAML, JSON or TOML configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("error reading configuration")
	}
	if err := logutil.ConfigureLogger(cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("error configuring logger")
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:                   cfg.SentryDSN,
		EnableTracing:         true,
		Environment:           cfg.Environment,
		Release:               release,
		TracesSampleRate:      1.0,
		BeforeSendTransaction: httputil.SetHTTPStatusCodeTag,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("can't initialize sentry")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newEnvironment(ctx, cfg)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal().Err(err).Msg("error setting up environment")
	}
	defer env.shutdown()

	router, err := env.newRouter()
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal().Err(err).Msg("error setting up the router")
	}
	server := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: sentryhttp.New(sentryhttp.Options{}).Handle(router),
	}
	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			sentry.CaptureException(err)
			log.Err(err).Msg("server failed")
		}
	}()

	log.Info().Int("workers", cfg.Workload.Workers).Str("port", cfg.Port).Msg("running frame loop")
	env.runWorkers(ctx)

	sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		sentry.CaptureException(err)
		log.Err(err).Msg("error shutting down server")
	}
}
