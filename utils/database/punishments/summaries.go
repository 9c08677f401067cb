package punishments

import (
	"database/sql"
	"errors"
	"fmt"

	"punishment-bot/model"

	"github.com/jmoiron/sqlx"
)

// ErrSummaryNotFound is returned when a subject has no summary row.
var ErrSummaryNotFound = errors.New("subject summary not found")

// GetSubjectSummary retrieves a subject's summary row.
func GetSubjectSummary(db *sqlx.DB, subjectID int64) (*model.SubjectSummary, error) {
	var summary model.SubjectSummary
	err := db.Get(&summary, "SELECT * FROM individuals WHERE subject_id = ?", subjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary for subject %d: %w", subjectID, err)
	}
	return &summary, nil
}

// UpsertSubjectSummary writes the full summary row for a subject, replacing
// any previous one. Each write is a single atomic document update.
func UpsertSubjectSummary(db *sqlx.DB, summary *model.SubjectSummary) error {
	query := `INSERT INTO individuals
	          (subject_id, record_id, type_name, type_id, tier_number, category, tier_id,
	           reason, evidence, start_at, end_at, active, punishment_history, updated_at)
	          VALUES (:subject_id, :record_id, :type_name, :type_id, :tier_number, :category, :tier_id,
	                  :reason, :evidence, :start_at, :end_at, :active, :punishment_history, :updated_at)
	          ON CONFLICT(subject_id) DO UPDATE SET
	              record_id = excluded.record_id,
	              type_name = excluded.type_name,
	              type_id = excluded.type_id,
	              tier_number = excluded.tier_number,
	              category = excluded.category,
	              tier_id = excluded.tier_id,
	              reason = excluded.reason,
	              evidence = excluded.evidence,
	              start_at = excluded.start_at,
	              end_at = excluded.end_at,
	              active = excluded.active,
	              punishment_history = excluded.punishment_history,
	              updated_at = excluded.updated_at`

	if _, err := db.NamedExec(query, summary); err != nil {
		return fmt.Errorf("failed to upsert summary for subject %d: %w", summary.SubjectID, err)
	}
	return nil
}

// UpdateSubjectSummaryHistory replaces only the audit history text.
func UpdateSubjectSummaryHistory(db *sqlx.DB, subjectID int64, history string, updatedAt int64) error {
	result, err := db.Exec(
		"UPDATE individuals SET punishment_history = ?, updated_at = ? WHERE subject_id = ?",
		history, updatedAt, subjectID)
	if err != nil {
		return fmt.Errorf("failed to update history for subject %d: %w", subjectID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for subject %d: %w", subjectID, err)
	}
	if rowsAffected == 0 {
		return ErrSummaryNotFound
	}
	return nil
}

// DeleteSubjectSummary erases a subject's summary row entirely.
func DeleteSubjectSummary(db *sqlx.DB, subjectID int64) error {
	if _, err := db.Exec("DELETE FROM individuals WHERE subject_id = ?", subjectID); err != nil {
		return fmt.Errorf("failed to delete summary for subject %d: %w", subjectID, err)
	}
	return nil
}
