package admin

import (
	"fmt"
	"log"

	"punishment-bot/bot"
	"punishment-bot/utils"
	"punishment-bot/utils/database"

	"github.com/bwmarrin/discordgo"
)

// HandleNotificationSettingsCommand dispatches the notification-settings
// subcommands.
func HandleNotificationSettingsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !canManageGuild(i) {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "set-channel":
		opts := optionMap(sub.Options)
		channel := opts["channel"].ChannelValue(s)
		if channel == nil {
			utils.SendFollowUpError(s, i.Interaction, "Could not resolve the selected channel.")
			return
		}
		if err := database.SetNotificationChannel(b.GetDB(), i.GuildID, channel.ID); err != nil {
			log.Printf("Failed to set notification channel: %v", err)
			utils.SendFollowUpError(s, i.Interaction, "Failed to save notification settings.")
			return
		}
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ Punishment notifications will be sent to <#%s>.", channel.ID))

	case "view":
		settings, err := database.GetGuildSettings(b.GetDB(), i.GuildID)
		if err != nil {
			log.Printf("Failed to load notification settings: %v", err)
			utils.SendFollowUpError(s, i.Interaction, "Failed to load notification settings.")
			return
		}
		if settings == nil || !settings.NotificationsEnabled || settings.NotificationChannelID == "" {
			utils.SendFollowUp(s, i.Interaction, "Notifications are disabled for this server.")
			return
		}
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("Notifications are enabled, sent to <#%s>.", settings.NotificationChannelID))

	case "disable":
		if err := database.DisableNotifications(b.GetDB(), i.GuildID); err != nil {
			log.Printf("Failed to disable notifications: %v", err)
			utils.SendFollowUpError(s, i.Interaction, "Failed to save notification settings.")
			return
		}
		utils.SendFollowUp(s, i.Interaction, "✅ Punishment notifications disabled for this server.")

	default:
		utils.SendFollowUpError(s, i.Interaction, "Unknown subcommand.")
	}
}
