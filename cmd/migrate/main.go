package main

import (
	"flag"
	"log"

	"github.com/valpere/pogoda/internal/config"
	"github.com/valpere/pogoda/internal/storage"
)

func main() {
	configFlag := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	// Load configuration
	var (
		cfg *config.Config
		err error
	)
	if *configFlag != "" {
		cfg, err = config.LoadFile(*configFlag)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Storage.Driver == config.StorageRedis {
		log.Println("Redis storage has no schema, nothing to migrate")
		return
	}

	// Opening a SQL store creates or migrates the settings table
	store, err := storage.Open(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := store.Close(); err != nil {
		log.Printf("Failed to close %s storage: %v", cfg.Storage.Driver, err)
	}

	log.Printf("Migrations for %s storage completed successfully!", cfg.Storage.Driver)
}
