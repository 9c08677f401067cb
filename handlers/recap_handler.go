package handlers

import (
	"log"
	"time"

	"punishment-bot/bot"
	"punishment-bot/tasks"
	"punishment-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleRecapCommand runs the expiry sweep on demand and reports the result
// to the invoker. The sweep itself is read-only, so running it early never
// changes what the scheduled run will find.
func HandleRecapCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	entries, err := tasks.CheckExpiredPunishments(b.GetDB(), b.Resolver, time.Now())
	if err != nil {
		log.Printf("Recap command failed: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to check expired punishments.")
		return
	}
	if len(entries) == 0 {
		utils.SendFollowUp(s, i.Interaction, "✅ No expired punishments found.")
		return
	}
	utils.SendFollowUpEmbed(s, i.Interaction, tasks.ExpiredReportEmbed(entries))
}
