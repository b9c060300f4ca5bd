package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/example/dunaswap/internal/cli"
	"github.com/example/dunaswap/internal/duna"
	"github.com/example/dunaswap/internal/duna/config"
)

var exitFunc = os.Exit

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		exitFunc(1)
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	engine := duna.NewEngine(afero.NewOsFs(), logger)
	prompter := cli.NewPromptUI()

	root := cli.NewRootCommand(engine, prompter, steamPath(cfg), cfg.GetPollInterval(), os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitFunc(1)
	}
}

func configPath() string {
	if override := os.Getenv("DUNASWAP_CONFIG"); override != "" {
		return override
	}
	return config.DefaultPath()
}

func steamPath(cfg *config.Config) string {
	if override := os.Getenv("DUNASWAP_STEAM_PATH"); override != "" {
		return override
	}
	return cfg.SteamPath
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
