package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cuelang.org/go/cue"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/epithet-ssh/maybeutf8/pkg/capture"
	"github.com/epithet-ssh/maybeutf8/pkg/config"
	"github.com/epithet-ssh/maybeutf8/pkg/handler"
	"github.com/epithet-ssh/maybeutf8/pkg/inspect"
)

const (
	defaultListen  = "127.0.0.1:8080"
	defaultTimeout = 60 * time.Second
)

// ServeCLI runs the inspect server. Flags override the "serve" section
// of the config files.
type ServeCLI struct {
	Listen       string        `help:"Address to listen on (default 127.0.0.1:8080)" short:"l" env:"MAYBEUTF8_LISTEN"`
	MaxBodySize  int64         `help:"Largest request body accepted, in bytes" name:"max-body-size"`
	Timeout      time.Duration `help:"Per-request timeout" name:"timeout"`
	CaptureFile  string        `help:"Append captured requests to this file" name:"capture-file" type:"path"`
	TemplateFile string        `help:"Mustache template for summaries" name:"template" type:"existingfile"`
	S3Bucket     string        `help:"Archive captured requests to this S3 bucket" name:"s3-bucket" env:"MAYBEUTF8_S3_BUCKET"`
	S3Prefix     string        `help:"Key prefix inside the S3 bucket" name:"s3-prefix"`
}

func (c *ServeCLI) Run(logger *slog.Logger, unifiedConfig cue.Value) error {
	cfg, err := config.Serve(unifiedConfig)
	if err != nil {
		return fmt.Errorf("failed to load serve config: %w", err)
	}
	if err := c.applyOverrides(cfg); err != nil {
		return err
	}

	timeout := defaultTimeout
	if cfg.Timeout != "" {
		timeout, err = time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", cfg.Timeout, err)
		}
	}

	tmpl, err := capture.ParseTemplate(cfg.Template)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorders := []capture.Recorder{capture.NewSlogRecorder(logger)}

	if cfg.CaptureFile != "" {
		f, err := os.OpenFile(cfg.CaptureFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("unable to open capture file: %w", err)
		}
		defer f.Close()
		recorders = append(recorders, capture.NewFileRecorder(f))
		logger.Info("capturing to file", "path", cfg.CaptureFile)
	}

	if cfg.S3 != nil && cfg.S3.Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}
		archiver := capture.NewS3Archiver(capture.S3ArchiverConfig{
			Client:    s3.NewFromConfig(awsCfg),
			Bucket:    cfg.S3.Bucket,
			KeyPrefix: cfg.S3.Prefix,
			Logger:    logger,
		})
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := archiver.Close(closeCtx); err != nil {
				logger.Warn("capture archive did not drain", "error", err)
			}
		}()
		recorders = append(recorders, archiver)
		logger.Info("archiving to S3", "bucket", cfg.S3.Bucket, "prefix", cfg.S3.Prefix)
	}

	srv := inspect.New(logger, tmpl, capture.NewMultiRecorder(recorders...))
	r := newRouter(srv, logger, cfg.MaxBodySize, timeout)

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logger.Info("listening", "address", cfg.Listen)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
	return nil
}

func newRouter(h handler.Handler, logger *slog.Logger, maxBody int64, timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	opts := []handler.Option{handler.WithLogger(logger)}
	if maxBody > 0 {
		opts = append(opts, handler.MaxBodySize(maxBody))
	}
	r.Handle("/*", handler.HTTP(h, opts...))
	return r
}

// applyOverrides applies flags over config file values and fills in
// defaults for anything still unset.
func (c *ServeCLI) applyOverrides(cfg *config.ServeConfig) error {
	if c.Listen != "" {
		cfg.Listen = c.Listen
	}
	if c.MaxBodySize != 0 {
		cfg.MaxBodySize = c.MaxBodySize
	}
	if c.Timeout != 0 {
		cfg.Timeout = c.Timeout.String()
	}
	if c.CaptureFile != "" {
		cfg.CaptureFile = c.CaptureFile
	}
	if c.TemplateFile != "" {
		data, err := os.ReadFile(c.TemplateFile)
		if err != nil {
			return fmt.Errorf("unable to read template: %w", err)
		}
		cfg.Template = string(data)
	}
	if c.S3Bucket != "" {
		if cfg.S3 == nil {
			cfg.S3 = &config.S3{}
		}
		cfg.S3.Bucket = c.S3Bucket
	}
	if c.S3Prefix != "" {
		if cfg.S3 == nil {
			cfg.S3 = &config.S3{}
		}
		cfg.S3.Prefix = c.S3Prefix
	}

	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}
	if cfg.MaxBodySize < 0 {
		return fmt.Errorf("max_body_size must not be negative, got %d", cfg.MaxBodySize)
	}
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = handler.DefaultMaxBodySize
	}
	return nil
}
