package model

import "database/sql"

// PunishmentType defines a category of punishment and its stacking policy.
// The database table is named 'punishment_types'.
type PunishmentType struct {
	TypeID            int64  `db:"type_id"` // Externally assignable, unique
	Name              string `db:"name"`    // Case-normalized (lower), unique
	Stackable         bool   `db:"stackable"`
	StackLimit        int64  `db:"stack_limit"`         // -1 = unlimited; meaningful only if Stackable
	NonConcurrentWith string `db:"non_concurrent_with"` // JSON array of type IDs
}

// PunishmentTier is a severity level (or named category) under a type.
// The database table is named 'punishment_tiers'.
type PunishmentTier struct {
	TierID     int64          `db:"tier_id"` // Primary key, auto-increment, never reused
	TypeID     int64          `db:"type_id"`
	TierNumber int64          `db:"tier_number"` // Unique per TypeID
	LengthDays sql.NullInt64  `db:"length_days"` // -1 = permanent, NULL = not applicable
	Category   sql.NullString `db:"category"`    // Set only for category-style types
}

// PunishmentRecord is one issued punishment, the unit of audit.
// The database table is named 'punishments'.
type PunishmentRecord struct {
	RecordID           int64          `db:"record_id"` // Primary key, auto-increment, never reused
	SubjectID          int64          `db:"subject_id"`
	TypeName           string         `db:"type_name"` // Denormalized as of issue time
	TypeID             int64          `db:"type_id"`
	TierNumber         sql.NullInt64  `db:"tier_number"`
	Category           sql.NullString `db:"category"`
	TierID             sql.NullInt64  `db:"tier_id"`
	Reason             string         `db:"reason"`
	Evidence           string         `db:"evidence"`
	IssuedBy           string         `db:"issued_by"`
	IssuedAt           int64          `db:"issued_at"` // Unix seconds, server-assigned
	StartAt            int64          `db:"start_at"`
	EndAt              sql.NullInt64  `db:"end_at"` // NULL = no expiry
	Active             bool           `db:"active"`
	DeactivatedAt      sql.NullInt64  `db:"deactivated_at"`
	DeactivatedBy      sql.NullString `db:"deactivated_by"`
	DeactivationReason sql.NullString `db:"deactivation_reason"`
	LastUpdatedAt      sql.NullInt64  `db:"last_updated_at"`
	LastUpdatedBy      sql.NullString `db:"last_updated_by"`
}

// SubjectSummary is the per-subject denormalized projection. It mirrors the
// subject's primary active record for fast status lookups and carries the
// append-only audit history. The database table is named 'individuals'.
type SubjectSummary struct {
	SubjectID  int64          `db:"subject_id"` // Primary key
	RecordID   sql.NullInt64  `db:"record_id"`  // Primary record pointer; NULL = no active punishment
	TypeName   sql.NullString `db:"type_name"`
	TypeID     sql.NullInt64  `db:"type_id"`
	TierNumber sql.NullInt64  `db:"tier_number"`
	Category   sql.NullString `db:"category"`
	TierID     sql.NullInt64  `db:"tier_id"`
	Reason     sql.NullString `db:"reason"`
	Evidence   sql.NullString `db:"evidence"`
	StartAt    sql.NullInt64  `db:"start_at"`
	EndAt      sql.NullInt64  `db:"end_at"`
	Active     bool           `db:"active"`
	History    string         `db:"punishment_history"` // One line per lifecycle event
	UpdatedAt  int64          `db:"updated_at"`
}

// GuildSettings holds the per-guild notification sink configuration.
// The database table is named 'guild_settings'.
type GuildSettings struct {
	GuildID               string `db:"guild_id"`
	NotificationChannelID string `db:"notification_channel_id"`
	NotificationsEnabled  bool   `db:"notifications_enabled"`
}
