package punish

import (
	"errors"
	"fmt"

	"punishment-bot/model"
	"punishment-bot/utils/database/punishconfig"
)

// TypeLookup resolves punishment type configuration. Satisfied by
// *punishconfig.Store.
type TypeLookup interface {
	GetType(typeID int64) (*model.PunishmentType, error)
}

// Validator decides whether a proposed punishment may coexist with a
// subject's current active punishments.
type Validator struct {
	Types TypeLookup
}

// Validate checks the proposed type against every active record. It returns
// nil to allow, a *ConflictError to reject, or a wrapped store error. The
// first conflict encountered wins; no ordering is guaranteed across multiple
// simultaneous conflicts.
func (v *Validator) Validate(proposed *model.PunishmentType, active []model.PunishmentRecord) error {
	proposedBlocks := punishconfig.DecodeNonConcurrent(proposed.NonConcurrentWith)

	for i := range active {
		r := &active[i]

		// Non-concurrency is checked in both directions independently; an
		// asymmetric configuration still blocks.
		if containsID(proposedBlocks, r.TypeID) {
			return &ConflictError{
				Reason:      fmt.Sprintf("a %s cannot be issued while a %s is active", proposed.Name, r.TypeName),
				Conflicting: r,
			}
		}

		activeType, err := v.Types.GetType(r.TypeID)
		if errors.Is(err, punishconfig.ErrTypeNotFound) {
			// The record's type was deconfigured; it can no longer declare
			// conflicts of its own.
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to resolve type %d of active record #%d: %w", r.TypeID, r.RecordID, err)
		}
		if containsID(punishconfig.DecodeNonConcurrent(activeType.NonConcurrentWith), proposed.TypeID) {
			return &ConflictError{
				Reason:      fmt.Sprintf("an active %s does not allow issuing a %s", r.TypeName, proposed.Name),
				Conflicting: r,
			}
		}
	}

	var sameType []*model.PunishmentRecord
	for i := range active {
		if active[i].TypeID == proposed.TypeID {
			sameType = append(sameType, &active[i])
		}
	}
	if len(sameType) == 0 {
		return nil
	}

	if !proposed.Stackable {
		return &ConflictError{
			Reason:      fmt.Sprintf("%s punishments do not stack and one is already active", proposed.Name),
			Conflicting: sameType[0],
		}
	}
	if proposed.StackLimit != -1 && int64(len(sameType)) >= proposed.StackLimit {
		return &ConflictError{
			Reason:      fmt.Sprintf("subject already has %d active %s punishments (limit %d)", len(sameType), proposed.Name, proposed.StackLimit),
			Conflicting: sameType[0],
		}
	}
	return nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
