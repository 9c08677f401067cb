package punish

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"punishment-bot/model"
	"punishment-bot/utils/database/punishconfig"
	"punishment-bot/utils/database/punishments"

	"github.com/jmoiron/sqlx"
)

// Resolver is the external identity lookup. Network failures on
// lookup-by-name surface as ErrSubjectNotFound; display lookups degrade.
type Resolver interface {
	GetIDByUsername(username string) (int64, error)
	GetUsername(subjectID int64) string
}

// Service is the punishment lifecycle orchestrator. It owns all mutations of
// punishment records and subject summaries; configuration is only read here.
type Service struct {
	db        *sqlx.DB
	cfg       *punishconfig.Store
	resolver  Resolver
	validator *Validator
	locks     *subjectLocks
	now       func() time.Time
}

// NewService wires the orchestrator over its collaborators.
func NewService(db *sqlx.DB, cfg *punishconfig.Store, resolver Resolver) *Service {
	return &Service{
		db:        db,
		cfg:       cfg,
		resolver:  resolver,
		validator: &Validator{Types: cfg},
		locks:     newSubjectLocks(),
		now:       time.Now,
	}
}

// Config exposes the configuration store for the admin command layer.
func (s *Service) Config() *punishconfig.Store { return s.cfg }

// DB exposes the underlying store for read-only query handlers.
func (s *Service) DB() *sqlx.DB { return s.db }

// IssueRequest carries the inputs of an issue operation. SubjectID may be
// pre-resolved; otherwise Username is resolved through the identity lookup.
type IssueRequest struct {
	Username string
	TypeName string
	Selector Selector
	Reason   string
	Evidence string
	IssuedBy string
}

// IssueResult reports a successful issue.
type IssueResult struct {
	Record    *model.PunishmentRecord
	Tier      *model.PunishmentTier
	Username  string
	SubjectID int64
}

// Issue validates and persists a new punishment and repoints the subject's
// summary at it as the primary record.
func (s *Service) Issue(req IssueRequest) (*IssueResult, error) {
	subjectID, err := s.resolver.GetIDByUsername(req.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSubjectNotFound, req.Username)
	}

	ptype, err := s.cfg.GetTypeByName(req.TypeName)
	if errors.Is(err, punishconfig.ErrTypeNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, req.TypeName)
	}
	if err != nil {
		return nil, fmt.Errorf("issue: failed to resolve type %q: %w", req.TypeName, err)
	}

	tiers, err := s.cfg.ListTiers(ptype.TypeID)
	if err != nil {
		return nil, fmt.Errorf("issue: failed to list tiers for %s: %w", ptype.Name, err)
	}
	tier, err := s.resolveTier(ptype, tiers, req.Selector)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(subjectID)
	defer unlock()

	active, err := punishments.GetPunishmentRecordsBySubject(s.db, subjectID, true)
	if err != nil {
		return nil, fmt.Errorf("issue: failed to load active records for subject %d: %w", subjectID, err)
	}
	if err := s.validator.Validate(ptype, active); err != nil {
		return nil, err
	}

	now := s.now()
	record := &model.PunishmentRecord{
		SubjectID: subjectID,
		TypeName:  ptype.Name,
		TypeID:    ptype.TypeID,
		Reason:    defaultText(req.Reason, "No reason provided"),
		Evidence:  defaultText(req.Evidence, "No evidence provided"),
		IssuedBy:  req.IssuedBy,
		IssuedAt:  now.Unix(),
		StartAt:   now.Unix(),
		Active:    true,
	}
	if tier != nil {
		record.TierID = sql.NullInt64{Int64: tier.TierID, Valid: true}
		if tier.Category.Valid && tier.Category.String != "" {
			record.Category = tier.Category
		} else {
			record.TierNumber = sql.NullInt64{Int64: tier.TierNumber, Valid: true}
		}
	}
	if endAt := ComputeEndAt(now, tierLengthDays(tier)); endAt != nil {
		record.EndAt = sql.NullInt64{Int64: endAt.Unix(), Valid: true}
	}

	recordID, err := punishments.AddPunishmentRecord(s.db, record)
	if err != nil {
		return nil, fmt.Errorf("issue: failed to persist record for subject %d: %w", subjectID, err)
	}
	record.RecordID = recordID

	history := ""
	if summary, err := punishments.GetSubjectSummary(s.db, subjectID); err == nil {
		history = summary.History
	} else if !errors.Is(err, punishments.ErrSummaryNotFound) {
		return nil, fmt.Errorf("issue: failed to load summary for subject %d: %w", subjectID, err)
	}
	history = AppendHistory(history, IssueLine(now, s.historyLabel(ptype, tier, len(tiers)), record.Reason, recordID))

	summary := summaryFromRecord(record, history, now.Unix())
	if err := punishments.UpsertSubjectSummary(s.db, summary); err != nil {
		return nil, fmt.Errorf("issue: failed to update summary for subject %d: %w", subjectID, err)
	}

	return &IssueResult{Record: record, Tier: tier, Username: req.Username, SubjectID: subjectID}, nil
}

// resolveTier maps a selector onto a configured tier. Types whose tiers
// carry categories require a category selector; multi-tier types require a
// tier number; a single plain tier is the default; a type with no tiers
// yields a record with a null tier reference.
func (s *Service) resolveTier(ptype *model.PunishmentType, tiers []model.PunishmentTier, sel Selector) (*model.PunishmentTier, error) {
	switch sel.Kind {
	case SelectorCategory:
		tier, err := s.cfg.GetTierByCategory(ptype.TypeID, sel.Category)
		if errors.Is(err, punishconfig.ErrTierNotFound) {
			return nil, fmt.Errorf("%w: category %q for type %s", ErrInvalidTierOrCategory, sel.Category, ptype.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category %q: %w", sel.Category, err)
		}
		return tier, nil
	case SelectorTier:
		tier, err := s.cfg.GetTier(ptype.TypeID, sel.Tier)
		if errors.Is(err, punishconfig.ErrTierNotFound) {
			return nil, fmt.Errorf("%w: tier %d for type %s", ErrInvalidTierOrCategory, sel.Tier, ptype.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tier %d: %w", sel.Tier, err)
		}
		return tier, nil
	default:
		if len(tiers) == 0 {
			return nil, nil
		}
		if len(tiers) == 1 && !isCategorized(tiers) {
			return &tiers[0], nil
		}
		return nil, fmt.Errorf("%w: %s", ErrMissingTierOrCategory, ptype.Name)
	}
}

func (s *Service) historyLabel(ptype *model.PunishmentType, tier *model.PunishmentTier, tierCount int) string {
	label := capitalize(ptype.Name)
	if tier == nil {
		return label
	}
	if tier.Category.Valid && tier.Category.String != "" {
		return fmt.Sprintf("%s (%s)", label, tier.Category.String)
	}
	if tierCount > 1 {
		return fmt.Sprintf("Tier %d %s", tier.TierNumber, label)
	}
	return label
}

// UpdatePatch carries the optional edits of an update operation.
type UpdatePatch struct {
	Reason   *string
	Evidence *string
	Tier     *int64
}

// UpdateResult reports a successful update.
type UpdateResult struct {
	Record  *model.PunishmentRecord
	Changes []string
}

// Update applies in-place edits to a record. A tier change re-resolves the
// expiry from the record's original start time, not from now.
func (s *Service) Update(recordID int64, patch UpdatePatch, updatedBy string) (*UpdateResult, error) {
	record, err := s.getRecord(recordID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(record.SubjectID)
	defer unlock()

	// Re-read under the lock so the change diff reflects the current state,
	// not a snapshot from before a concurrent operation.
	record, err = s.getRecord(recordID)
	if err != nil {
		return nil, err
	}

	var changes []string
	var dbPatch punishments.RecordPatch

	if patch.Reason != nil && *patch.Reason != "" {
		dbPatch.Reason = patch.Reason
		changes = append(changes, fmt.Sprintf("Reason: %s → %s", record.Reason, *patch.Reason))
	}
	if patch.Evidence != nil && *patch.Evidence != "" {
		dbPatch.Evidence = patch.Evidence
		changes = append(changes, fmt.Sprintf("Evidence: %s → %s", record.Evidence, *patch.Evidence))
	}
	if patch.Tier != nil {
		tier, err := s.resolveUpdateTier(record, *patch.Tier)
		if err != nil {
			return nil, err
		}
		dbPatch.TierNumber = &tier.TierNumber
		dbPatch.TierID = &tier.TierID
		dbPatch.SetEndAt = true
		if endAt := ComputeEndAt(time.Unix(record.StartAt, 0), tierLengthDays(tier)); endAt != nil {
			dbPatch.EndAt = sql.NullInt64{Int64: endAt.Unix(), Valid: true}
		}
		oldTier := "None"
		if record.TierNumber.Valid {
			oldTier = fmt.Sprintf("%d", record.TierNumber.Int64)
		}
		changes = append(changes, fmt.Sprintf("Tier: %s → %d", oldTier, tier.TierNumber))
	}

	if len(changes) == 0 {
		return nil, ErrNoChanges
	}

	now := s.now()
	if err := punishments.UpdatePunishmentRecord(s.db, recordID, dbPatch, updatedBy, now); err != nil {
		return nil, fmt.Errorf("update: failed to patch record #%d: %w", recordID, err)
	}
	updated, err := punishments.GetPunishmentRecordByID(s.db, recordID)
	if err != nil {
		return nil, fmt.Errorf("update: failed to reload record #%d: %w", recordID, err)
	}

	summary, err := punishments.GetSubjectSummary(s.db, record.SubjectID)
	if err != nil && !errors.Is(err, punishments.ErrSummaryNotFound) {
		return nil, fmt.Errorf("update: failed to load summary for subject %d: %w", record.SubjectID, err)
	}
	if summary != nil {
		history := AppendHistory(summary.History, UpdateLine(now, recordID, changes))
		if summary.RecordID.Valid && summary.RecordID.Int64 == recordID {
			// This is the subject's primary record; mirror the patch.
			refreshed := summaryFromRecord(updated, history, now.Unix())
			if err := punishments.UpsertSubjectSummary(s.db, refreshed); err != nil {
				return nil, fmt.Errorf("update: failed to refresh summary for subject %d: %w", record.SubjectID, err)
			}
		} else if err := punishments.UpdateSubjectSummaryHistory(s.db, record.SubjectID, history, now.Unix()); err != nil {
			return nil, fmt.Errorf("update: failed to append history for subject %d: %w", record.SubjectID, err)
		}
	}

	return &UpdateResult{Record: updated, Changes: changes}, nil
}

func (s *Service) resolveUpdateTier(record *model.PunishmentRecord, tierNumber int64) (*model.PunishmentTier, error) {
	tiers, err := s.cfg.ListTiers(record.TypeID)
	if err != nil {
		return nil, fmt.Errorf("update: failed to list tiers for type %d: %w", record.TypeID, err)
	}
	if isCategorized(tiers) {
		return nil, fmt.Errorf("%w: %s punishments use categories, not tiers", ErrInvalidTierOrCategory, record.TypeName)
	}
	tier, err := s.cfg.GetTier(record.TypeID, tierNumber)
	if errors.Is(err, punishconfig.ErrTierNotFound) {
		return nil, fmt.Errorf("%w: tier %d for type %s", ErrInvalidTierOrCategory, tierNumber, record.TypeName)
	}
	if err != nil {
		return nil, fmt.Errorf("update: failed to resolve tier %d: %w", tierNumber, err)
	}
	return tier, nil
}

// RemoveResult reports a successful removal.
type RemoveResult struct {
	Record     *model.PunishmentRecord
	NewPrimary *model.PunishmentRecord // nil when no active record remains
}

// Remove deactivates an active record, keeping it retrievable, and re-elects
// the subject's primary record when the removed one held that role.
func (s *Service) Remove(recordID int64, removedBy, reason string) (*RemoveResult, error) {
	record, err := s.getRecord(recordID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(record.SubjectID)
	defer unlock()

	// Re-check under the lock: a concurrent removal may have won the race
	// between the first fetch and lock acquisition.
	record, err = s.getRecord(recordID)
	if err != nil {
		return nil, err
	}
	if !record.Active {
		return nil, fmt.Errorf("%w: #%d", ErrAlreadyInactive, recordID)
	}

	now := s.now()
	reason = defaultText(reason, "No reason provided")
	if err := punishments.DeactivatePunishmentRecord(s.db, recordID, removedBy, reason, now); err != nil {
		return nil, fmt.Errorf("remove: failed to deactivate record #%d: %w", recordID, err)
	}
	record.Active = false
	record.DeactivatedAt = sql.NullInt64{Int64: now.Unix(), Valid: true}
	record.DeactivatedBy = sql.NullString{String: removedBy, Valid: true}
	record.DeactivationReason = sql.NullString{String: reason, Valid: true}

	summary, err := punishments.GetSubjectSummary(s.db, record.SubjectID)
	if err != nil && !errors.Is(err, punishments.ErrSummaryNotFound) {
		return nil, fmt.Errorf("remove: failed to load summary for subject %d: %w", record.SubjectID, err)
	}

	result := &RemoveResult{Record: record}
	if summary == nil {
		return result, nil
	}

	history := AppendHistory(summary.History, RemoveLine(now, recordID, reason))
	if !summary.RecordID.Valid || summary.RecordID.Int64 != recordID {
		if err := punishments.UpdateSubjectSummaryHistory(s.db, record.SubjectID, history, now.Unix()); err != nil {
			return nil, fmt.Errorf("remove: failed to append history for subject %d: %w", record.SubjectID, err)
		}
		return result, nil
	}

	// The removed record was the primary; elect the most recently issued
	// remaining active record, or mark the summary inactive.
	next, err := punishments.GetLatestActivePunishment(s.db, record.SubjectID)
	if err != nil && !errors.Is(err, punishments.ErrRecordNotFound) {
		return nil, fmt.Errorf("remove: failed to re-elect primary for subject %d: %w", record.SubjectID, err)
	}
	var refreshed *model.SubjectSummary
	if next != nil {
		refreshed = summaryFromRecord(next, history, now.Unix())
		result.NewPrimary = next
	} else {
		refreshed = emptySummary(record.SubjectID, history, now.Unix())
	}
	if err := punishments.UpsertSubjectSummary(s.db, refreshed); err != nil {
		return nil, fmt.Errorf("remove: failed to refresh summary for subject %d: %w", record.SubjectID, err)
	}
	return result, nil
}

// DeleteResult reports a successful permanent erasure.
type DeleteResult struct {
	Record        *model.PunishmentRecord
	SummaryErased bool
}

// Delete permanently erases a record and strips its lines from the subject's
// audit history. When the subject has no records left at all, the summary is
// erased entirely.
func (s *Service) Delete(recordID int64) (*DeleteResult, error) {
	record, err := s.getRecord(recordID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(record.SubjectID)
	defer unlock()

	// Re-check under the lock so a concurrent deletion surfaces as not-found.
	record, err = s.getRecord(recordID)
	if err != nil {
		return nil, err
	}

	if err := punishments.DeletePunishmentRecordByID(s.db, recordID); err != nil {
		return nil, fmt.Errorf("delete: failed to erase record #%d: %w", recordID, err)
	}

	summary, err := punishments.GetSubjectSummary(s.db, record.SubjectID)
	if err != nil && !errors.Is(err, punishments.ErrSummaryNotFound) {
		return nil, fmt.Errorf("delete: failed to load summary for subject %d: %w", record.SubjectID, err)
	}
	result := &DeleteResult{Record: record}
	if summary == nil {
		return result, nil
	}

	remaining, err := punishments.CountPunishmentRecordsBySubject(s.db, record.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("delete: failed to count records for subject %d: %w", record.SubjectID, err)
	}
	if remaining == 0 {
		if err := punishments.DeleteSubjectSummary(s.db, record.SubjectID); err != nil {
			return nil, fmt.Errorf("delete: failed to erase summary for subject %d: %w", record.SubjectID, err)
		}
		result.SummaryErased = true
		return result, nil
	}

	now := s.now()
	history := StripRecordLines(summary.History, recordID)
	if summary.RecordID.Valid && summary.RecordID.Int64 == recordID {
		next, err := punishments.GetLatestActivePunishment(s.db, record.SubjectID)
		if err != nil && !errors.Is(err, punishments.ErrRecordNotFound) {
			return nil, fmt.Errorf("delete: failed to re-elect primary for subject %d: %w", record.SubjectID, err)
		}
		var refreshed *model.SubjectSummary
		if next != nil {
			refreshed = summaryFromRecord(next, history, now.Unix())
		} else {
			refreshed = emptySummary(record.SubjectID, history, now.Unix())
		}
		if err := punishments.UpsertSubjectSummary(s.db, refreshed); err != nil {
			return nil, fmt.Errorf("delete: failed to refresh summary for subject %d: %w", record.SubjectID, err)
		}
		return result, nil
	}
	if err := punishments.UpdateSubjectSummaryHistory(s.db, record.SubjectID, history, now.Unix()); err != nil {
		return nil, fmt.Errorf("delete: failed to rewrite history for subject %d: %w", record.SubjectID, err)
	}
	return result, nil
}

// GetBySubject returns a subject's summary and full record list.
func (s *Service) GetBySubject(subjectID int64) (*model.SubjectSummary, []model.PunishmentRecord, error) {
	summary, err := punishments.GetSubjectSummary(s.db, subjectID)
	if errors.Is(err, punishments.ErrSummaryNotFound) {
		return nil, nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get: failed to load summary for subject %d: %w", subjectID, err)
	}
	records, err := punishments.GetPunishmentRecordsBySubject(s.db, subjectID, false)
	if err != nil {
		return nil, nil, fmt.Errorf("get: failed to load records for subject %d: %w", subjectID, err)
	}
	return summary, records, nil
}

// GetByRecord returns a single record by ID.
func (s *Service) GetByRecord(recordID int64) (*model.PunishmentRecord, error) {
	return s.getRecord(recordID)
}

func (s *Service) getRecord(recordID int64) (*model.PunishmentRecord, error) {
	record, err := punishments.GetPunishmentRecordByID(s.db, recordID)
	if errors.Is(err, punishments.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: #%d", ErrRecordNotFound, recordID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record #%d: %w", recordID, err)
	}
	return record, nil
}

func summaryFromRecord(record *model.PunishmentRecord, history string, updatedAt int64) *model.SubjectSummary {
	return &model.SubjectSummary{
		SubjectID:  record.SubjectID,
		RecordID:   sql.NullInt64{Int64: record.RecordID, Valid: true},
		TypeName:   sql.NullString{String: record.TypeName, Valid: true},
		TypeID:     sql.NullInt64{Int64: record.TypeID, Valid: true},
		TierNumber: record.TierNumber,
		Category:   record.Category,
		TierID:     record.TierID,
		Reason:     sql.NullString{String: record.Reason, Valid: true},
		Evidence:   sql.NullString{String: record.Evidence, Valid: true},
		StartAt:    sql.NullInt64{Int64: record.StartAt, Valid: true},
		EndAt:      record.EndAt,
		Active:     true,
		History:    history,
		UpdatedAt:  updatedAt,
	}
}

func emptySummary(subjectID int64, history string, updatedAt int64) *model.SubjectSummary {
	return &model.SubjectSummary{
		SubjectID: subjectID,
		Active:    false,
		History:   history,
		UpdatedAt: updatedAt,
	}
}

func tierLengthDays(tier *model.PunishmentTier) *int64 {
	if tier == nil || !tier.LengthDays.Valid {
		return nil
	}
	v := tier.LengthDays.Int64
	return &v
}

func isCategorized(tiers []model.PunishmentTier) bool {
	for _, t := range tiers {
		if t.Category.Valid && t.Category.String != "" {
			return true
		}
	}
	return false
}

func defaultText(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
