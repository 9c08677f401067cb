package handlers

import (
	"log"

	"punishment-bot/bot"
	"punishment-bot/handlers/admin"
	"punishment-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// Register wires every interaction handler onto the bot's session.
func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"issue": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleIssueCommand(s, i, b)
		},
		"update": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleUpdateCommand(s, i, b)
		},
		"remove": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleRemoveCommand(s, i, b)
		},
		"delete": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleDeleteCommand(s, i, b)
		},
		"get": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleGetCommand(s, i, b)
		},
		"recap": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleRecapCommand(s, i, b)
		},
		"punishment-config": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			admin.HandlePunishmentConfigCommand(s, i, b)
		},
		"notification-settings": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			admin.HandleNotificationSettingsCommand(s, i, b)
		},
		"system-info": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !isDeveloper(b, i) {
				utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
				return
			}
			SystemInfoHandler(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
				h(s, i)
			}
		case discordgo.InteractionApplicationCommandAutocomplete:
			HandleAutocomplete(s, i, b)
		}
	})
}

func isDeveloper(b *bot.Bot, i *discordgo.InteractionCreate) bool {
	if i.Member == nil || i.Member.User == nil {
		return false
	}
	for _, id := range b.GetConfig().DeveloperUserIDs {
		if id == i.Member.User.ID {
			return true
		}
	}
	return false
}
