package database

import (
	"database/sql"
	"errors"
	"fmt"

	"punishment-bot/model"

	"github.com/jmoiron/sqlx"
)

// GetGuildSettings returns the notification settings for a guild, or nil when
// the guild has never been configured.
func GetGuildSettings(db *sqlx.DB, guildID string) (*model.GuildSettings, error) {
	var settings model.GuildSettings
	err := db.Get(&settings, "SELECT * FROM guild_settings WHERE guild_id = ?", guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings for guild %s: %w", guildID, err)
	}
	return &settings, nil
}

// SetNotificationChannel enables notifications for a guild on the given channel.
func SetNotificationChannel(db *sqlx.DB, guildID, channelID string) error {
	query := `INSERT INTO guild_settings (guild_id, notification_channel_id, notifications_enabled)
	          VALUES (?, ?, 1)
	          ON CONFLICT(guild_id) DO UPDATE SET
	              notification_channel_id = excluded.notification_channel_id,
	              notifications_enabled = 1`
	if _, err := db.Exec(query, guildID, channelID); err != nil {
		return fmt.Errorf("failed to set notification channel for guild %s: %w", guildID, err)
	}
	return nil
}

// DisableNotifications turns off the notification sink for a guild.
func DisableNotifications(db *sqlx.DB, guildID string) error {
	query := "UPDATE guild_settings SET notifications_enabled = 0 WHERE guild_id = ?"
	if _, err := db.Exec(query, guildID); err != nil {
		return fmt.Errorf("failed to disable notifications for guild %s: %w", guildID, err)
	}
	return nil
}

// ListNotificationTargets returns every guild with notifications enabled.
func ListNotificationTargets(db *sqlx.DB) ([]model.GuildSettings, error) {
	var targets []model.GuildSettings
	query := "SELECT * FROM guild_settings WHERE notifications_enabled = 1 AND notification_channel_id != ''"
	if err := db.Select(&targets, query); err != nil {
		return nil, fmt.Errorf("failed to list notification targets: %w", err)
	}
	return targets, nil
}
