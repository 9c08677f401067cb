package punishments

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"punishment-bot/model"

	"github.com/jmoiron/sqlx"
)

// ErrRecordNotFound is returned when a punishment record does not exist.
var ErrRecordNotFound = errors.New("punishment record not found")

// AddPunishmentRecord inserts a new punishment record and returns its generated ID.
func AddPunishmentRecord(db *sqlx.DB, record *model.PunishmentRecord) (int64, error) {
	query := `INSERT INTO punishments
	          (subject_id, type_name, type_id, tier_number, category, tier_id, reason, evidence,
	           issued_by, issued_at, start_at, end_at, active)
	          VALUES (:subject_id, :type_name, :type_id, :tier_number, :category, :tier_id, :reason, :evidence,
	                  :issued_by, :issued_at, :start_at, :end_at, :active)`

	result, err := db.NamedExec(query, record)
	if err != nil {
		return 0, fmt.Errorf("failed to insert punishment record for subject %d: %w", record.SubjectID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// GetPunishmentRecordByID retrieves a single punishment record by its primary key.
func GetPunishmentRecordByID(db *sqlx.DB, recordID int64) (*model.PunishmentRecord, error) {
	var record model.PunishmentRecord
	err := db.Get(&record, "SELECT * FROM punishments WHERE record_id = ?", recordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get punishment record %d: %w", recordID, err)
	}
	return &record, nil
}

// GetPunishmentRecordsBySubject retrieves a subject's punishment records,
// most recently issued first, optionally restricted to active ones.
func GetPunishmentRecordsBySubject(db *sqlx.DB, subjectID int64, activeOnly bool) ([]model.PunishmentRecord, error) {
	var records []model.PunishmentRecord
	query := "SELECT * FROM punishments WHERE subject_id = ?"
	if activeOnly {
		query += " AND active = 1"
	}
	query += " ORDER BY issued_at DESC, record_id DESC"

	if err := db.Select(&records, query, subjectID); err != nil {
		return nil, fmt.Errorf("failed to get punishment records for subject %d: %w", subjectID, err)
	}
	return records, nil
}

// GetLatestActivePunishment returns the most recently issued active record
// for a subject, or ErrRecordNotFound when none remain.
func GetLatestActivePunishment(db *sqlx.DB, subjectID int64) (*model.PunishmentRecord, error) {
	var record model.PunishmentRecord
	query := `SELECT * FROM punishments WHERE subject_id = ? AND active = 1
	          ORDER BY issued_at DESC, record_id DESC LIMIT 1`
	err := db.Get(&record, query, subjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest active punishment for subject %d: %w", subjectID, err)
	}
	return &record, nil
}

// CountPunishmentRecordsBySubject counts all of a subject's records, active or not.
func CountPunishmentRecordsBySubject(db *sqlx.DB, subjectID int64) (int, error) {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM punishments WHERE subject_id = ?", subjectID); err != nil {
		return 0, fmt.Errorf("failed to count punishment records for subject %d: %w", subjectID, err)
	}
	return count, nil
}

// RecordPatch carries the in-place edits applied by an update operation.
// Nil fields are left untouched.
type RecordPatch struct {
	Reason     *string
	Evidence   *string
	TierNumber *int64
	TierID     *int64
	EndAt      sql.NullInt64
	SetEndAt   bool // EndAt is only written when true
}

// UpdatePunishmentRecord applies a patch to a record and stamps the updater.
func UpdatePunishmentRecord(db *sqlx.DB, recordID int64, patch RecordPatch, updatedBy string, at time.Time) error {
	query := "UPDATE punishments SET last_updated_at = ?, last_updated_by = ?"
	args := []interface{}{at.Unix(), updatedBy}

	if patch.Reason != nil {
		query += ", reason = ?"
		args = append(args, *patch.Reason)
	}
	if patch.Evidence != nil {
		query += ", evidence = ?"
		args = append(args, *patch.Evidence)
	}
	if patch.TierNumber != nil {
		query += ", tier_number = ?"
		args = append(args, *patch.TierNumber)
	}
	if patch.TierID != nil {
		query += ", tier_id = ?"
		args = append(args, *patch.TierID)
	}
	if patch.SetEndAt {
		query += ", end_at = ?"
		args = append(args, patch.EndAt)
	}

	query += " WHERE record_id = ?"
	args = append(args, recordID)

	result, err := db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update punishment record %d: %w", recordID, err)
	}
	return requireRowsAffected(result, recordID)
}

// DeactivatePunishmentRecord flips a record inactive with removal metadata.
func DeactivatePunishmentRecord(db *sqlx.DB, recordID int64, removedBy, reason string, at time.Time) error {
	query := `UPDATE punishments SET active = 0, deactivated_at = ?, deactivated_by = ?, deactivation_reason = ?
	          WHERE record_id = ?`
	result, err := db.Exec(query, at.Unix(), removedBy, reason, recordID)
	if err != nil {
		return fmt.Errorf("failed to deactivate punishment record %d: %w", recordID, err)
	}
	return requireRowsAffected(result, recordID)
}

// DeletePunishmentRecordByID permanently erases a record.
func DeletePunishmentRecordByID(db *sqlx.DB, recordID int64) error {
	result, err := db.Exec("DELETE FROM punishments WHERE record_id = ?", recordID)
	if err != nil {
		return fmt.Errorf("failed to delete punishment record %d: %w", recordID, err)
	}
	return requireRowsAffected(result, recordID)
}

// GetExpiredActivePunishments returns active records whose end time is
// strictly before now. Read-only: expiry is reported, never enforced here.
func GetExpiredActivePunishments(db *sqlx.DB, now time.Time) ([]model.PunishmentRecord, error) {
	var records []model.PunishmentRecord
	query := `SELECT * FROM punishments WHERE active = 1 AND end_at IS NOT NULL AND end_at < ?
	          ORDER BY end_at ASC, record_id ASC`
	if err := db.Select(&records, query, now.Unix()); err != nil {
		return nil, fmt.Errorf("failed to get expired punishments: %w", err)
	}
	return records, nil
}

func requireRowsAffected(result sql.Result, recordID int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for punishment record %d: %w", recordID, err)
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
