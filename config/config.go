package config

import (
	"log"
	"strings"

	"punishment-bot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from the environment (and an optional .env file).
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DATABASE_PATH", "data/punishments.db")
	v.SetDefault("SWEEP_HOUR", 6)

	token := v.GetString("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := v.GetString("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	if v.GetString("LOG_WEBHOOK_URL") == "" {
		log.Println("Warning: LOG_WEBHOOK_URL not set, webhook logging will be disabled")
	}

	sweepHour := v.GetInt("SWEEP_HOUR")
	if sweepHour < 0 || sweepHour > 23 {
		log.Printf("Warning: Invalid SWEEP_HOUR value %d, using default of 6", sweepHour)
		sweepHour = 6
	}

	cfg := &model.Config{
		BotToken:         token,
		AppID:            appID,
		LogWebhookURL:    v.GetString("LOG_WEBHOOK_URL"),
		DatabasePath:     v.GetString("DATABASE_PATH"),
		GuildIDs:         splitList(v.GetString("GUILD_IDS")),
		DeveloperUserIDs: splitList(v.GetString("DEVELOPER_USER_IDS")),
		SweepHour:        sweepHour,
	}

	return cfg, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
