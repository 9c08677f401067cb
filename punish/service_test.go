package punish

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"punishment-bot/utils/database/punishconfig"
	"punishment-bot/utils/database/punishments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	ids map[string]int64
}

func (r *stubResolver) GetIDByUsername(username string) (int64, error) {
	id, ok := r.ids[username]
	if !ok {
		return 0, errors.New("user not found")
	}
	return id, nil
}

func (r *stubResolver) GetUsername(subjectID int64) string {
	return fmt.Sprintf("subject-%d", subjectID)
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := punishments.Init(":memory:")
	require.NoError(t, err)
	// Every pooled connection to :memory: is a distinct database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, punishments.SeedDefaults(db))

	resolver := &stubResolver{ids: map[string]int64{"Builderman": 156}}
	svc := NewService(db, punishconfig.New(db), resolver)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func (s *Service) advance(d time.Duration) {
	base := s.now()
	s.now = func() time.Time { return base.Add(d) }
}

func issueReq(typeName, selector string) IssueRequest {
	sel, _ := ParseSelector(selector)
	return IssueRequest{
		Username: "Builderman",
		TypeName: typeName,
		Selector: sel,
		Reason:   "test reason",
		IssuedBy: "111",
	}
}

func TestIssueAssignsMonotonicSixDigitIDs(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Issue(issueReq("reminder", ""))
	require.NoError(t, err)
	second, err := svc.Issue(issueReq("reminder", ""))
	require.NoError(t, err)

	assert.Equal(t, int64(100000), first.Record.RecordID)
	assert.Equal(t, int64(100001), second.Record.RecordID)
}

func TestIssueDefaultsToSingleTier(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Issue(issueReq("reminder", ""))
	require.NoError(t, err)

	require.True(t, result.Record.TierNumber.Valid)
	assert.Equal(t, int64(1), result.Record.TierNumber.Int64)

	// The single reminder tier is 90 days.
	require.True(t, result.Record.EndAt.Valid)
	want := svc.now().AddDate(0, 0, 90).Unix()
	assert.Equal(t, want, result.Record.EndAt.Int64)
}

func TestIssueRequiresTierForMultiTierType(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Issue(issueReq("suspension", ""))
	assert.ErrorIs(t, err, ErrMissingTierOrCategory)
}

func TestIssueRejectsUnknownType(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Issue(issueReq("banishment", ""))
	assert.ErrorIs(t, err, ErrInvalidType)
	assert.True(t, IsRejection(err))
}

func TestIssueRejectsUnknownTier(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Issue(issueReq("suspension", "tier:99"))
	assert.ErrorIs(t, err, ErrInvalidTierOrCategory)
}

func TestIssueRejectsUnknownUser(t *testing.T) {
	svc := newTestService(t)

	req := issueReq("reminder", "")
	req.Username = "NoSuchUser"
	_, err := svc.Issue(req)
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestIssuePermanentBlacklistCategory(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Issue(issueReq("blacklist", "category:ddos"))
	require.NoError(t, err)

	assert.False(t, result.Record.EndAt.Valid, "permanent punishments carry no expiry")
	require.True(t, result.Record.Category.Valid)
	assert.Equal(t, "ddos", result.Record.Category.String)
	assert.False(t, result.Record.TierNumber.Valid)
}

func TestStrikeStackLimitLifecycle(t *testing.T) {
	svc := newTestService(t)

	for n := 0; n < 3; n++ {
		_, err := svc.Issue(issueReq("strike", ""))
		require.NoError(t, err)
		svc.advance(time.Duration(n+1) * time.Hour)
	}

	_, err := svc.Issue(issueReq("strike", ""))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// Removing one strike frees a slot.
	_, err = svc.Remove(conflict.Conflicting.RecordID, "111", "appealed")
	require.NoError(t, err)
	_, err = svc.Issue(issueReq("strike", ""))
	assert.NoError(t, err)
}

func TestSuspensionBlacklistNonConcurrency(t *testing.T) {
	svc := newTestService(t)

	susp, err := svc.Issue(issueReq("suspension", "tier:5"))
	require.NoError(t, err)

	_, err = svc.Issue(issueReq("blacklist", "category:scamming"))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, susp.Record.RecordID, conflict.Conflicting.RecordID)

	_, err = svc.Remove(susp.Record.RecordID, "111", "")
	require.NoError(t, err)

	black, err := svc.Issue(issueReq("blacklist", "category:scamming"))
	require.NoError(t, err)

	// The reverse direction blocks too.
	_, err = svc.Issue(issueReq("suspension", "tier:5"))
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, black.Record.RecordID, conflict.Conflicting.RecordID)
}

func TestRemoveReelectsPrimary(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Issue(issueReq("strike", ""))
	require.NoError(t, err)
	svc.advance(time.Hour)
	second, err := svc.Issue(issueReq("strike", ""))
	require.NoError(t, err)

	summary, _, err := svc.GetBySubject(first.SubjectID)
	require.NoError(t, err)
	require.True(t, summary.RecordID.Valid)
	assert.Equal(t, second.Record.RecordID, summary.RecordID.Int64)

	result, err := svc.Remove(second.Record.RecordID, "111", "appealed")
	require.NoError(t, err)
	require.NotNil(t, result.NewPrimary)
	assert.Equal(t, first.Record.RecordID, result.NewPrimary.RecordID)

	summary, _, err = svc.GetBySubject(first.SubjectID)
	require.NoError(t, err)
	assert.Equal(t, first.Record.RecordID, summary.RecordID.Int64)

	// Removing the last active record leaves an inactive summary with the
	// full history intact.
	result, err = svc.Remove(first.Record.RecordID, "111", "")
	require.NoError(t, err)
	assert.Nil(t, result.NewPrimary)

	summary, _, err = svc.GetBySubject(first.SubjectID)
	require.NoError(t, err)
	assert.False(t, summary.Active)
	assert.False(t, summary.RecordID.Valid)
	assert.Contains(t, summary.History, fmt.Sprintf("#%d", first.Record.RecordID))
	assert.Contains(t, summary.History, fmt.Sprintf("#%d", second.Record.RecordID))
}

func TestRemoveAlreadyInactive(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Issue(issueReq("reminder", ""))
	require.NoError(t, err)
	_, err = svc.Remove(result.Record.RecordID, "111", "")
	require.NoError(t, err)

	_, err = svc.Remove(result.Record.RecordID, "111", "")
	assert.ErrorIs(t, err, ErrAlreadyInactive)
}

func TestRemoveUnknownRecord(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Remove(424242, "111", "")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestUpdateReasonAndEvidence(t *testing.T) {
	svc := newTestService(t)

	issued, err := svc.Issue(issueReq("reminder", ""))
	require.NoError(t, err)

	reason := "updated reason"
	evidence := "https://example.com/proof"
	result, err := svc.Update(issued.Record.RecordID, UpdatePatch{Reason: &reason, Evidence: &evidence}, "222")
	require.NoError(t, err)

	assert.Equal(t, reason, result.Record.Reason)
	assert.Equal(t, evidence, result.Record.Evidence)
	assert.Len(t, result.Changes, 2)
	require.True(t, result.Record.LastUpdatedBy.Valid)
	assert.Equal(t, "222", result.Record.LastUpdatedBy.String)

	summary, _, err := svc.GetBySubject(issued.SubjectID)
	require.NoError(t, err)
	require.True(t, summary.Reason.Valid)
	assert.Equal(t, reason, summary.Reason.String)
	assert.Contains(t, summary.History, "Updated")
}

func TestUpdateNoChanges(t *testing.T) {
	svc := newTestService(t)

	issued, err := svc.Issue(issueReq("reminder", ""))
	require.NoError(t, err)

	_, err = svc.Update(issued.Record.RecordID, UpdatePatch{}, "222")
	assert.ErrorIs(t, err, ErrNoChanges)
}

func TestUpdateTierReanchorsFromStart(t *testing.T) {
	svc := newTestService(t)

	issued, err := svc.Issue(issueReq("suspension", "tier:1"))
	require.NoError(t, err)

	// Ten days pass before the correction; the new expiry still counts from
	// the original start, not from the update.
	svc.advance(10 * 24 * time.Hour)
	tier := int64(3)
	result, err := svc.Update(issued.Record.RecordID, UpdatePatch{Tier: &tier}, "222")
	require.NoError(t, err)

	want := time.Unix(issued.Record.StartAt, 0).AddDate(0, 0, 14).Unix()
	require.True(t, result.Record.EndAt.Valid)
	assert.Equal(t, want, result.Record.EndAt.Int64)
	require.True(t, result.Record.TierNumber.Valid)
	assert.Equal(t, tier, result.Record.TierNumber.Int64)
}

func TestUpdateTierRejectedForCategorizedType(t *testing.T) {
	svc := newTestService(t)

	issued, err := svc.Issue(issueReq("blacklist", "category:doxxing"))
	require.NoError(t, err)

	tier := int64(2)
	_, err = svc.Update(issued.Record.RecordID, UpdatePatch{Tier: &tier}, "222")
	assert.ErrorIs(t, err, ErrInvalidTierOrCategory)
}

func TestDeleteStripsHistoryAndReelects(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Issue(issueReq("strike", ""))
	require.NoError(t, err)
	svc.advance(time.Hour)
	second, err := svc.Issue(issueReq("strike", ""))
	require.NoError(t, err)

	result, err := svc.Delete(second.Record.RecordID)
	require.NoError(t, err)
	assert.False(t, result.SummaryErased)

	_, err = svc.GetByRecord(second.Record.RecordID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	summary, records, err := svc.GetBySubject(first.SubjectID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, first.Record.RecordID, summary.RecordID.Int64)
	assert.NotContains(t, summary.History, fmt.Sprintf("#%d", second.Record.RecordID))
	assert.Contains(t, summary.History, fmt.Sprintf("#%d", first.Record.RecordID))
}

func TestDeleteLastRecordErasesSummary(t *testing.T) {
	svc := newTestService(t)

	issued, err := svc.Issue(issueReq("reminder", ""))
	require.NoError(t, err)

	result, err := svc.Delete(issued.Record.RecordID)
	require.NoError(t, err)
	assert.True(t, result.SummaryErased)

	_, _, err = svc.GetBySubject(issued.SubjectID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDeletedRecordIDNeverReused(t *testing.T) {
	svc := newTestService(t)

	issued, err := svc.Issue(issueReq("reminder", ""))
	require.NoError(t, err)
	_, err = svc.Delete(issued.Record.RecordID)
	require.NoError(t, err)

	next, err := svc.Issue(issueReq("reminder", ""))
	require.NoError(t, err)
	assert.Greater(t, next.Record.RecordID, issued.Record.RecordID)
}

func TestStackLimitConfigurableToUnlimited(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Config().SetStacking("strike", true, -1))

	for n := 0; n < 5; n++ {
		_, err := svc.Issue(issueReq("strike", ""))
		require.NoError(t, err)
	}
}

func TestConcurrentRemovesExactlyOneSucceeds(t *testing.T) {
	svc := newTestService(t)

	issued, err := svc.Issue(issueReq("reminder", ""))
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = svc.Remove(issued.Record.RecordID, fmt.Sprintf("actor-%d", n), "appealed")
		}(n)
	}
	wg.Wait()

	winner := -1
	for n, err := range errs {
		if err == nil {
			require.Equal(t, -1, winner, "only one removal may succeed")
			winner = n
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyInactive)
	}
	require.NotEqual(t, -1, winner)

	// The winner's removal metadata is never overwritten by a loser.
	record, err := svc.GetByRecord(issued.Record.RecordID)
	require.NoError(t, err)
	assert.False(t, record.Active)
	require.True(t, record.DeactivatedBy.Valid)
	assert.Equal(t, fmt.Sprintf("actor-%d", winner), record.DeactivatedBy.String)

	// Exactly one "Removed" line lands in the history.
	summary, _, err := svc.GetBySubject(issued.SubjectID)
	require.NoError(t, err)
	assert.False(t, summary.Active)
	assert.Equal(t, 1, strings.Count(summary.History, "Removed"))
}

func TestConcurrentIssuesHonorStackLimit(t *testing.T) {
	svc := newTestService(t)

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = svc.Issue(issueReq("strike", ""))
		}(n)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var conflict *ConflictError
		assert.ErrorAs(t, err, &conflict)
	}
	assert.Equal(t, 3, successes, "the strike stack limit holds under contention")

	summary, _, err := svc.GetBySubject(156)
	require.NoError(t, err)

	active, err := punishments.GetPunishmentRecordsBySubject(svc.db, 156, true)
	require.NoError(t, err)
	require.Len(t, active, 3)

	// The primary pointer references one of the active records.
	require.True(t, summary.RecordID.Valid)
	found := false
	for _, r := range active {
		if r.RecordID == summary.RecordID.Int64 {
			found = true
		}
	}
	assert.True(t, found)
	assert.Len(t, strings.Split(summary.History, "\n"), 3)
}

func TestGetBySubjectUnknown(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.GetBySubject(999999)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
