package main

import (
	"log"
	"os"
	"path/filepath"

	"punishment-bot/bot"
	"punishment-bot/config"
	"punishment-bot/handlers"
	"punishment-bot/punish"
	"punishment-bot/utils/database/punishconfig"
	"punishment-bot/utils/database/punishments"
	"punishment-bot/utils/roblox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	db, err := punishments.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	if err := punishments.SeedDefaults(db); err != nil {
		log.Fatalf("Error seeding default punishment configuration: %v", err)
	}

	resolver := roblox.NewClient()
	service := punish.NewService(db, punishconfig.New(db), resolver)

	b, err := bot.New(cfg, db, service, resolver)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)

	b.Run()

	defer b.Close()
}
