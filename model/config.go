package model

// Config holds the runtime configuration loaded from the environment.
type Config struct {
	BotToken         string
	AppID            string
	LogWebhookURL    string
	DatabasePath     string
	GuildIDs         []string // Guilds to register commands in; empty = global
	DeveloperUserIDs []string
	SweepHour        int // Local hour of day for the daily expiry sweep
}
