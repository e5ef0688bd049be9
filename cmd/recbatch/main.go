package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/recbatch/internal/app"
	"github.com/bft-labs/recbatch/internal/cliconfig"
	"github.com/bft-labs/recbatch/internal/partition"
	"github.com/bft-labs/recbatch/internal/sink"
	"github.com/bft-labs/recbatch/pkg/log"
)

const longHelp = `Split a stream of text records into size- and count-bounded batches.

Records are read one per line (or one JSON string per line with --format jsonl)
and grouped greedily in input order. A batch closes when it holds
--max-records-in-batch records or when the next record would push it past
--max-batch-size-mb. Records larger than --max-record-size-mb are dropped and,
with --dlq, written to a dead-letter file. Sizes are UTF-8 bytes and 1 MB is
1,000,000 bytes.

Finished batches are written as JSON lines to stdout or a file, POSTed to an
HTTP ingestion endpoint, or published to an AMQP queue.`

var exampleUsage = strings.TrimSpace(`
  recbatch --input records.txt
  cat events.jsonl | recbatch --format jsonl --max-records-in-batch 100
  recbatch --input records.txt --sink amqp --amqp-queue batches --dlq dropped.jsonl
  recbatch --watch /var/spool/records --sink http --service-url https://ingest.example.com
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	zl := cliconfig.Logger()

	root := &cobra.Command{
		Use:           "recbatch",
		Short:         "Split text records into bounded batches for downstream delivery",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			level, _ := cliconfig.ParseLevel(cfg.LogLevel)
			zl = zl.Level(level)
			logger := log.NewZerolog(zl)

			logCfg := cfg
			if logCfg.AuthKey != "" {
				logCfg.AuthKey = "*****"
			}
			zl.Debug().Interface("config", logCfg).Msg("configuration")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, logger)
		},
	}

	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file, TOML or YAML (default: $HOME/.recbatch/config.toml)")

	f.Float64Var(&cfg.Policy.MaxRecordSizeMB, "max-record-size-mb", cfg.Policy.MaxRecordSizeMB, "largest record kept, in MB (1 MB = 1,000,000 bytes, fractions allowed)")
	f.Float64Var(&cfg.Policy.MaxBatchSizeMB, "max-batch-size-mb", cfg.Policy.MaxBatchSizeMB, "largest batch, in MB")
	f.IntVar(&cfg.Policy.MaxRecordsInBatch, "max-records-in-batch", cfg.Policy.MaxRecordsInBatch, "most records per batch")

	f.StringVarP(&cfg.Input, "input", "i", cfg.Input, "input file, - for stdin")
	f.StringVar(&cfg.Format, "format", cfg.Format, "record format: lines or jsonl")

	f.StringVar(&cfg.Sink, "sink", cfg.Sink, "where batches go: stdout, file, http or amqp")
	f.StringVarP(&cfg.Output, "output", "o", cfg.Output, "output file for the file sink")
	f.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "base URL for the http sink")
	f.StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "bearer token for the http sink")
	f.StringVar(&cfg.AMQPURL, "amqp-url", cfg.AMQPURL, "broker URL for the amqp sink")
	f.StringVar(&cfg.AMQPQueue, "amqp-queue", cfg.AMQPQueue, "queue for the amqp sink")
	f.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")
	f.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "send retries per batch")

	f.StringVar(&cfg.DeadLetter, "dlq", cfg.DeadLetter, "file receiving discarded records as JSON lines")

	f.StringVar(&cfg.Watch, "watch", cfg.Watch, "watch a directory and batch files as they appear")
	f.StringVar(&cfg.WatchPattern, "watch-pattern", cfg.WatchPattern, "file name pattern for --watch (default *)")
	f.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "quiet period before a watched file is read")

	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := root.Execute(); err != nil {
		zl.Error().Err(err).Msg("recbatch")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cliconfig.Config, logger log.Logger) error {
	p, err := partition.New(cfg.Policy)
	if err != nil {
		return err
	}

	s, err := openSink(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warn("close sink", log.Err(err))
		}
	}()

	var dlq *sink.DeadLetterWriter
	if cfg.DeadLetter != "" {
		dlq, err = sink.OpenDeadLetterFile(cfg.DeadLetter)
		if err != nil {
			return err
		}
		defer dlq.Close()
	}

	pipeline := app.NewPipeline(app.PipelineConfig{
		Format:     cfg.Format,
		MaxRetries: cfg.MaxRetries,
	}, p, s, dlq, logger)

	if cfg.Watch != "" {
		return app.NewWatcher(cfg.Watch, cfg.WatchPattern, cfg.Debounce, pipeline, logger).Run(ctx)
	}

	_, err = pipeline.ProcessFile(ctx, cfg.Input)
	return err
}

func openSink(cfg cliconfig.Config) (sink.Sink, error) {
	switch cfg.Sink {
	case sink.KindFile:
		return sink.NewFileSink(cfg.Output)
	case sink.KindHTTP:
		return sink.NewHTTPSink(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.ServiceURL, cfg.AuthKey), nil
	case sink.KindAMQP:
		return sink.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
	default:
		return sink.NewWriterSink(os.Stdout), nil
	}
}
