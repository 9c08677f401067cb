package tasks

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"punishment-bot/model"
	"punishment-bot/utils/database/punishments"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct{}

func (stubResolver) GetIDByUsername(username string) (int64, error) { return 0, nil }
func (stubResolver) GetUsername(subjectID int64) string {
	return fmt.Sprintf("subject-%d", subjectID)
}

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := punishments.Init(":memory:")
	require.NoError(t, err)
	// Every pooled connection to :memory: is a distinct database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func insertRecord(t *testing.T, db *sqlx.DB, subjectID int64, endAt sql.NullInt64, active bool) int64 {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id, err := punishments.AddPunishmentRecord(db, &model.PunishmentRecord{
		SubjectID: subjectID,
		TypeName:  "suspension",
		TypeID:    1005,
		Reason:    "test",
		Evidence:  "test",
		IssuedBy:  "111",
		IssuedAt:  now.Unix(),
		StartAt:   now.Unix(),
		EndAt:     endAt,
		Active:    active,
	})
	require.NoError(t, err)
	return id
}

func unixAt(tm time.Time) sql.NullInt64 {
	return sql.NullInt64{Int64: tm.Unix(), Valid: true}
}

func TestCheckExpiredPunishments(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	expired := insertRecord(t, db, 1, unixAt(now.Add(-time.Hour)), true)
	insertRecord(t, db, 2, unixAt(now.Add(time.Hour)), true)          // not yet expired
	insertRecord(t, db, 3, sql.NullInt64{}, true)                     // no expiry
	insertRecord(t, db, 4, unixAt(now.Add(-2*time.Hour)), false)      // already inactive
	boundary := insertRecord(t, db, 5, unixAt(now), true)             // end == now is not yet expired

	entries, err := CheckExpiredPunishments(db, stubResolver{}, now)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, expired, entries[0].RecordID)
	assert.Equal(t, int64(1), entries[0].SubjectID)
	assert.Equal(t, "subject-1", entries[0].Username)
	assert.NotEqual(t, boundary, entries[0].RecordID)
}

func TestCheckExpiredPunishmentsIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	id := insertRecord(t, db, 1, unixAt(now.Add(-time.Hour)), true)

	first, err := CheckExpiredPunishments(db, stubResolver{}, now)
	require.NoError(t, err)
	second, err := CheckExpiredPunishments(db, stubResolver{}, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// The sweep reports expiry; it never deactivates.
	record, err := punishments.GetPunishmentRecordByID(db, id)
	require.NoError(t, err)
	assert.True(t, record.Active)
}

func TestExpiredReportEmbedChunksLongReports(t *testing.T) {
	entries := make([]ExpiredEntry, 40)
	for i := range entries {
		entries[i] = ExpiredEntry{
			Username:  fmt.Sprintf("user-with-a-long-name-%d", i),
			SubjectID: int64(i),
			RecordID:  int64(100000 + i),
			TypeName:  "suspension",
			EndAt:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	embed := ExpiredReportEmbed(entries)
	require.Greater(t, len(embed.Fields), 1, "long reports split into multiple fields")
	for _, field := range embed.Fields {
		assert.LessOrEqual(t, len(field.Value), 1024)
	}
	assert.Contains(t, embed.Description, "40")
}

func TestChunkLinesNeverSplitsALine(t *testing.T) {
	text := strings.Repeat("0123456789\n", 20)
	for _, chunk := range chunkLines(text, 50) {
		for _, line := range strings.Split(chunk, "\n") {
			assert.Equal(t, "0123456789", line)
		}
	}
}
