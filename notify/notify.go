// Package notify delivers punishment event embeds to each guild's configured
// notification channel. Delivery is best-effort: failures are logged and
// never propagated to the lifecycle operation that triggered them.
package notify

import (
	"fmt"
	"log"
	"strings"
	"time"

	"punishment-bot/model"
	"punishment-bot/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// Action colors, matching the lifecycle event palette.
const (
	ColorIssue  = 0xFF0000
	ColorRemove = 0x00FF00
	ColorDelete = 0xFF6B6B
	ColorUpdate = 0xFFFF00
	ColorExpire = 0xFFA500
)

// Notifier is the notification sink over per-guild channel settings.
type Notifier struct {
	session *discordgo.Session
	db      *sqlx.DB
}

func New(session *discordgo.Session, db *sqlx.DB) *Notifier {
	return &Notifier{session: session, db: db}
}

// Send posts an embed to one guild's notification channel, if configured.
func (n *Notifier) Send(guildID string, embed *discordgo.MessageEmbed) {
	settings, err := database.GetGuildSettings(n.db, guildID)
	if err != nil {
		log.Printf("Failed to load notification settings for guild %s: %v", guildID, err)
		return
	}
	if settings == nil || !settings.NotificationsEnabled || settings.NotificationChannelID == "" {
		return
	}
	if _, err := n.session.ChannelMessageSendEmbed(settings.NotificationChannelID, embed); err != nil {
		log.Printf("Failed to send notification to guild %s: %v", guildID, err)
	}
}

// Broadcast posts an embed to every guild with notifications enabled.
func (n *Notifier) Broadcast(embed *discordgo.MessageEmbed) {
	targets, err := database.ListNotificationTargets(n.db)
	if err != nil {
		log.Printf("Failed to list notification targets: %v", err)
		return
	}
	for _, target := range targets {
		if _, err := n.session.ChannelMessageSendEmbed(target.NotificationChannelID, embed); err != nil {
			log.Printf("Failed to send notification to guild %s: %v", target.GuildID, err)
		}
	}
}

// ActionEmbedOptions carries the action-specific extras of a lifecycle event.
type ActionEmbedOptions struct {
	Username      string
	ActorID       string
	Changes       []string // update only
	RemovalReason string   // remove only
}

// ActionEmbed builds the notification embed for a lifecycle action
// (issue, update, remove, delete).
func ActionEmbed(action string, record *model.PunishmentRecord, opts ActionEmbedOptions) *discordgo.MessageEmbed {
	titles := map[string]string{
		"issue":  "Issued",
		"remove": "Removed",
		"delete": "Deleted",
		"update": "Updated",
	}
	colors := map[string]int{
		"issue":  ColorIssue,
		"remove": ColorRemove,
		"delete": ColorDelete,
		"update": ColorUpdate,
	}
	color, ok := colors[action]
	if !ok {
		color = 0x0099FF
	}

	typeName := capitalizeName(record.TypeName)
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📋 %s %s", typeName, titles[action]),
		Color:       color,
		Description: fmt.Sprintf("Action performed by <@%s>", opts.ActorID),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (ID: %d)", opts.Username, record.SubjectID), Inline: true},
			{Name: "Record ID", Value: fmt.Sprintf("#%d", record.RecordID), Inline: true},
			{Name: "Type", Value: typeName, Inline: true},
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
	if record.Reason != "" && record.Reason != "No reason provided" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Reason", Value: record.Reason,
		})
	}

	switch action {
	case "issue":
		if record.EndAt.Valid {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   "Expires",
				Value:  time.Unix(record.EndAt.Int64, 0).Format("1/2/2006"),
				Inline: true,
			})
		}
	case "remove":
		reason := opts.RemovalReason
		if reason == "" {
			reason = "No reason provided"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Removal Reason", Value: reason,
		})
	case "update":
		if len(opts.Changes) > 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "Changes", Value: strings.Join(opts.Changes, "\n"),
			})
		}
	}

	return embed
}

func capitalizeName(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
