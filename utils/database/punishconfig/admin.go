package punishconfig

import (
	"fmt"
	"strings"

	"punishment-bot/model"
)

// Administrative mutations. Each one invalidates the read cache synchronously
// before returning so subsequent lifecycle operations see fresh config.

// AddType registers a new punishment type.
func (s *Store) AddType(typeID int64, name string, stackable bool, stackLimit int64) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("punishment type name must not be empty")
	}
	_, err := s.db.Exec(
		`INSERT INTO punishment_types (type_id, name, stackable, stack_limit, non_concurrent_with)
		 VALUES (?, ?, ?, ?, '[]')`,
		typeID, name, stackable, stackLimit)
	if err != nil {
		return fmt.Errorf("failed to add punishment type %s: %w", name, err)
	}
	s.Invalidate()
	return nil
}

// RemoveType deletes a type and all of its tiers.
func (s *Store) RemoveType(name string) (*model.PunishmentType, error) {
	t, err := s.GetTypeByName(name)
	if err != nil {
		return nil, err
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin remove-type transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM punishment_tiers WHERE type_id = ?", t.TypeID); err != nil {
		return nil, fmt.Errorf("failed to remove tiers of type %s: %w", t.Name, err)
	}
	if _, err := tx.Exec("DELETE FROM punishment_types WHERE type_id = ?", t.TypeID); err != nil {
		return nil, fmt.Errorf("failed to remove punishment type %s: %w", t.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit remove-type transaction: %w", err)
	}
	s.Invalidate()
	return t, nil
}

// AddTier adds a tier under a type. lengthDays: nil = not applicable,
// -1 = permanent. category is empty for ordinal-severity types.
func (s *Store) AddTier(typeName string, tierNumber int64, lengthDays *int64, category string) (*model.PunishmentTier, error) {
	t, err := s.GetTypeByName(typeName)
	if err != nil {
		return nil, err
	}

	var length interface{}
	if lengthDays != nil {
		length = *lengthDays
	}
	var cat interface{}
	if category != "" {
		cat = strings.TrimSpace(category)
	}

	result, err := s.db.Exec(
		`INSERT INTO punishment_tiers (type_id, tier_number, length_days, category)
		 VALUES (?, ?, ?, ?)`,
		t.TypeID, tierNumber, length, cat)
	if err != nil {
		return nil, fmt.Errorf("failed to add tier %d for type %s: %w", tierNumber, t.Name, err)
	}
	tierID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get tier ID: %w", err)
	}
	s.Invalidate()
	return s.GetTierByID(tierID)
}

// RemoveTier deletes a tier by its generated ID.
func (s *Store) RemoveTier(tierID int64) error {
	result, err := s.db.Exec("DELETE FROM punishment_tiers WHERE tier_id = ?", tierID)
	if err != nil {
		return fmt.Errorf("failed to remove tier %d: %w", tierID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for tier %d: %w", tierID, err)
	}
	if rowsAffected == 0 {
		return ErrTierNotFound
	}
	s.Invalidate()
	return nil
}

// SetStacking updates a type's stackable flag and stack limit.
func (s *Store) SetStacking(typeName string, stackable bool, stackLimit int64) error {
	t, err := s.GetTypeByName(typeName)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"UPDATE punishment_types SET stackable = ?, stack_limit = ? WHERE type_id = ?",
		stackable, stackLimit, t.TypeID)
	if err != nil {
		return fmt.Errorf("failed to set stacking for type %s: %w", t.Name, err)
	}
	s.Invalidate()
	return nil
}

// SetNonConcurrency replaces a type's non-concurrency set. The relation is
// intended to be symmetric but each side is stored independently; callers
// configure both directions (the validator checks both regardless).
func (s *Store) SetNonConcurrency(typeName string, typeIDs []int64) error {
	t, err := s.GetTypeByName(typeName)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"UPDATE punishment_types SET non_concurrent_with = ? WHERE type_id = ?",
		EncodeNonConcurrent(typeIDs), t.TypeID)
	if err != nil {
		return fmt.Errorf("failed to set non-concurrency for type %s: %w", t.Name, err)
	}
	s.Invalidate()
	return nil
}
