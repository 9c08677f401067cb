// Package tasks holds the scheduled jobs run by the bot scheduler.
package tasks

import (
	"fmt"
	"log"
	"strings"
	"time"

	"punishment-bot/notify"
	"punishment-bot/punish"
	"punishment-bot/utils/database/punishments"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// ExpiredEntry describes one punishment whose computed expiry has passed.
type ExpiredEntry struct {
	Username   string
	SubjectID  int64
	RecordID   int64
	TypeName   string
	TierNumber int64 // 0 when the record has no tier
	Category   string
	EndAt      time.Time
}

// CheckExpiredPunishments scans for active records whose end time is strictly
// before now. Read-only and idempotent: expiry is detected here, never
// enforced, so two back-to-back runs report the same set.
func CheckExpiredPunishments(db *sqlx.DB, resolver punish.Resolver, now time.Time) ([]ExpiredEntry, error) {
	records, err := punishments.GetExpiredActivePunishments(db, now)
	if err != nil {
		return nil, fmt.Errorf("expiry sweep: %w", err)
	}

	entries := make([]ExpiredEntry, 0, len(records))
	for _, r := range records {
		entry := ExpiredEntry{
			Username:  resolver.GetUsername(r.SubjectID),
			SubjectID: r.SubjectID,
			RecordID:  r.RecordID,
			TypeName:  r.TypeName,
			EndAt:     time.Unix(r.EndAt.Int64, 0),
		}
		if r.TierNumber.Valid {
			entry.TierNumber = r.TierNumber.Int64
		}
		if r.Category.Valid {
			entry.Category = r.Category.String
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// RunExpirySweep performs the daily sweep and reports the result to every
// guild with notifications enabled.
func RunExpirySweep(db *sqlx.DB, resolver punish.Resolver, notifier *notify.Notifier) {
	entries, err := CheckExpiredPunishments(db, resolver, time.Now())
	if err != nil {
		log.Printf("Error checking expired punishments: %v", err)
		return
	}
	log.Printf("Expiry sweep found %d expired punishment(s)", len(entries))
	if len(entries) == 0 {
		return
	}
	notifier.Broadcast(ExpiredReportEmbed(entries))
}

// ExpiredReportEmbed renders the sweep result, chunking long reports to stay
// under Discord's 1024-character field limit.
func ExpiredReportEmbed(entries []ExpiredEntry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Expired Punishments Report",
		Color:       notify.ColorExpire,
		Description: fmt.Sprintf("Found %d expired punishment(s)", len(entries)),
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	var report strings.Builder
	for _, e := range entries {
		detail := e.TypeName
		if e.TierNumber > 0 {
			detail = fmt.Sprintf("%s (Tier %d)", e.TypeName, e.TierNumber)
		} else if e.Category != "" {
			detail = fmt.Sprintf("%s (%s)", e.TypeName, e.Category)
		}
		fmt.Fprintf(&report, "• **%s** (ID: %d)\n  - Record: #%d\n  - Type: %s\n  - Expired: %s\n\n",
			e.Username, e.SubjectID, e.RecordID, detail, e.EndAt.Format("1/2/2006"))
	}

	chunks := chunkLines(report.String(), 1024)
	for i, chunk := range chunks {
		name := "Expired Punishments"
		if len(chunks) > 1 {
			name = fmt.Sprintf("Expired Punishments (Part %d)", i+1)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: chunk})
	}
	return embed
}

func chunkLines(text string, limit int) []string {
	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if current.Len()+len(line)+1 > limit {
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
