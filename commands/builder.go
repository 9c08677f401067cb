package commands

import (
	"punishment-bot/commands/defs"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns every slash command the bot registers.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Issue,
		defs.Update,
		defs.Remove,
		defs.Delete,
		defs.Get,
		defs.Recap,
		defs.PunishmentConfig,
		defs.NotificationSettings,
		defs.SystemInfo,
	}
}
