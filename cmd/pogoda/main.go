package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/valpere/pogoda/internal/app"
	"github.com/valpere/pogoda/internal/config"
	"github.com/valpere/pogoda/internal/console"
	"github.com/valpere/pogoda/internal/version"
)

func main() {
	// Command-line flags
	versionFlag := flag.Bool("version", false, "Print version information and exit")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API instead of the terminal front end")
	configFlag := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *serveFlag {
		cfg.Server.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, os.Stderr)
	if err != nil {
		log.Fatalf("Failed to start Pogoda: %v", err)
	}
	defer application.Close()

	logger := application.Logger()
	logger.Info().Str("version", version.Version).Msg("Starting Pogoda")

	runErr := make(chan error, 1)
	go func() {
		runErr <- application.Run(ctx)
	}()

	if *serveFlag {
		err = <-runErr
	} else {
		term := console.New(application.Pipeline(), application.Renderer(), os.Stdout, logger)
		if err = term.Run(ctx, os.Stdin); err == nil {
			stop()
			err = <-runErr
		}
	}
	if err != nil {
		logger.Error().Err(err).Msg("Pogoda stopped with error")
		application.Close()
		os.Exit(1)
	}

	logger.Info().Msg("Pogoda stopped gracefully")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
