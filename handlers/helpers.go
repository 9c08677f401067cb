package handlers

import (
	"fmt"
	"log"
	"strings"
	"time"

	"punishment-bot/bot"
	"punishment-bot/model"
	"punishment-bot/notify"
	"punishment-bot/punish"
	"punishment-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func strOpt(m map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := m[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func intOpt(m map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	if opt, ok := m[name]; ok {
		return opt.IntValue()
	}
	return 0
}

func actorID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// replyServiceError renders a lifecycle error. Expected rejections go back to
// the user verbatim; store failures are logged and answered generically.
func replyServiceError(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, operation string, err error) {
	if punish.IsRejection(err) {
		utils.SendFollowUpError(s, i.Interaction, capitalizeFirst(err.Error()))
		return
	}
	log.Printf("%s command failed: %v", operation, err)
	if logErr := utils.LogError(b.GetConfig().LogWebhookURL, "Punish", operation, err.Error()); logErr != nil {
		log.Printf("Failed to send error log: %v", logErr)
	}
	utils.SendFollowUpError(s, i.Interaction, "An internal error occurred. Please try again later.")
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func recordEmbed(record *model.PunishmentRecord, username string) *discordgo.MessageEmbed {
	status := "Active"
	color := notify.ColorIssue
	if !record.Active {
		status = "Inactive"
		color = notify.ColorRemove
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Punishment Record #%d", record.RecordID),
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (ID: %d)", username, record.SubjectID), Inline: true},
			{Name: "Type", Value: capitalizeFirst(record.TypeName), Inline: true},
			{Name: "Status", Value: status, Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if record.TierNumber.Valid {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Tier", Value: fmt.Sprintf("%d", record.TierNumber.Int64), Inline: true,
		})
	}
	if record.Category.Valid && record.Category.String != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Category", Value: record.Category.String, Inline: true,
		})
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Reason", Value: record.Reason},
		&discordgo.MessageEmbedField{Name: "Evidence", Value: record.Evidence},
		&discordgo.MessageEmbedField{
			Name:   "Issued",
			Value:  fmt.Sprintf("<t:%d:f> by <@%s>", record.IssuedAt, record.IssuedBy),
			Inline: true,
		},
	)
	if record.EndAt.Valid {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Expires", Value: fmt.Sprintf("<t:%d:f>", record.EndAt.Int64), Inline: true,
		})
	} else if record.Active {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Expires", Value: "Never", Inline: true,
		})
	}
	if record.DeactivatedAt.Valid {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Removed",
			Value: fmt.Sprintf("<t:%d:f> by <@%s>", record.DeactivatedAt.Int64, record.DeactivatedBy.String),
		})
		if record.DeactivationReason.Valid && record.DeactivationReason.String != "" {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "Removal Reason", Value: record.DeactivationReason.String,
			})
		}
	}
	return embed
}

func subjectEmbed(subjectID int64, username string, summary *model.SubjectSummary, totalRecords int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Punishment Status: %s", username),
		Color:     notify.ColorRemove,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User ID", Value: fmt.Sprintf("%d", subjectID), Inline: true},
			{Name: "Total Records", Value: fmt.Sprintf("%d", totalRecords), Inline: true},
		},
	}

	if summary.Active && summary.RecordID.Valid {
		embed.Color = notify.ColorIssue
		current := capitalizeFirst(summary.TypeName.String)
		if summary.TierNumber.Valid {
			current = fmt.Sprintf("%s (Tier %d)", current, summary.TierNumber.Int64)
		} else if summary.Category.Valid && summary.Category.String != "" {
			current = fmt.Sprintf("%s (%s)", current, summary.Category.String)
		}
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Current Punishment", Value: fmt.Sprintf("%s — #%d", current, summary.RecordID.Int64), Inline: true},
		)
		if summary.Reason.Valid {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Reason", Value: summary.Reason.String})
		}
		if summary.EndAt.Valid {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "Expires", Value: fmt.Sprintf("<t:%d:f>", summary.EndAt.Int64), Inline: true,
			})
		}
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Current Punishment", Value: "None", Inline: true,
		})
	}

	history := strings.TrimSpace(summary.History)
	if history == "" {
		history = "No history recorded."
	}
	for idx, chunk := range splitFieldChunks(history, 1024) {
		name := "History"
		if idx > 0 {
			name = fmt.Sprintf("History (cont. %d)", idx+1)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: chunk})
	}
	return embed
}

// splitFieldChunks breaks text on line boundaries into pieces that fit
// Discord's embed field value limit.
func splitFieldChunks(text string, limit int) []string {
	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if current.Len() > 0 && current.Len()+len(line)+1 > limit {
			chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if trimmed := strings.TrimRight(current.String(), "\n"); trimmed != "" {
		chunks = append(chunks, trimmed)
	}
	return chunks
}
