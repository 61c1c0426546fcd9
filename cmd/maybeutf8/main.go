package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"

	"github.com/epithet-ssh/maybeutf8/pkg/config"
)

// CLI is the root command.
type CLI struct {
	Verbose int      `help:"Increase log verbosity (-v info, -vv debug)" short:"v" type:"counter"`
	Config  []string `help:"Config files or globs to load and unify (default ~/.maybeutf8/*.{yaml,json,cue})" short:"c" sep:"none"`
	LogFile string   `help:"Write logs to this file instead of stderr" name:"log-file" type:"path"`

	Classify ClassifyCLI `cmd:"" help:"Report whether files (or stdin) are UTF-8 text or raw bytes"`
	Serve    ServeCLI    `cmd:"" help:"Run an HTTP server that describes how each request classified"`
	Replay   ReplayCLI   `cmd:"" help:"Render the records in a capture file"`
}

func main() {
	cli := &CLI{}
	ktx := kong.Parse(cli,
		kong.Name("maybeutf8"),
		kong.Description("Inspect values that may or may not be UTF-8."),
		kong.UsageOnError(),
	)

	logger, closeLog, err := newLogger(cli.Verbose, cli.LogFile)
	ktx.FatalIfErrorf(err)

	unified, err := config.LoadAndUnifyPaths(configPatterns(cli.Config))
	if err != nil {
		closeLog()
		ktx.FatalIfErrorf(err)
	}

	err = ktx.Run(logger, unified)
	closeLog()
	ktx.FatalIfErrorf(err)
}

func newLogger(verbosity int, logFile string) (*slog.Logger, func(), error) {
	level := slog.LevelWarn
	switch {
	case verbosity == 1:
		level = slog.LevelInfo
	case verbosity >= 2:
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	logger := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    logFile != "",
	}))
	return logger, closeFn, nil
}

func configPatterns(explicit []string) []string {
	if len(explicit) > 0 {
		out := make([]string, 0, len(explicit))
		for _, p := range explicit {
			out = append(out, expandPath(p))
		}
		return out
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	dir := filepath.Join(home, ".maybeutf8")
	return []string{
		filepath.Join(dir, "*.yaml"),
		filepath.Join(dir, "*.json"),
		filepath.Join(dir, "*.cue"),
	}
}

func expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
