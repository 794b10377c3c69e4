package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/notexe/motivator/internal/app"
	"github.com/notexe/motivator/internal/config"
	"github.com/notexe/motivator/internal/logging"
	"github.com/notexe/motivator/internal/repl"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	provider := flag.String("provider", "", "Provider to use (deepseek, ollama, gemini)")
	modelName := flag.String("model", "", "Model name (overrides config)")
	storage := flag.String("storage", "", "Storage driver (sqlite, bolt, memory)")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	flag.Parse()

	app.LoadDotEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if *provider != "" {
		cfg.Provider = *provider
	}
	if *modelName != "" {
		cfg.Model.Name = *modelName
	}
	if *storage != "" {
		cfg.Storage.Driver = *storage
	}
	if *noColor {
		cfg.UI.ColoredOutput = false
	}
	if cfg.Notify.Owner == "" {
		cfg.Notify.Owner = "repl"
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, os.Stderr)

	a, err := app.New(cfg, logger, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	replInstance := repl.NewREPL(a.Service, a.Gateway, a.Settings, cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
		replInstance.Stop()
	}()

	if err := replInstance.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
