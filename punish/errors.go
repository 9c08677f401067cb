package punish

import (
	"errors"
	"fmt"

	"punishment-bot/model"
)

// Expected, caller-recoverable rejections. These are returned as values and
// rendered to the user; they never abort the process.
var (
	ErrInvalidType           = errors.New("invalid punishment type")
	ErrMissingTierOrCategory = errors.New("a tier or category is required for this punishment type")
	ErrInvalidTierOrCategory = errors.New("tier or category does not resolve to a configured tier")
	ErrSubjectNotFound       = errors.New("could not find a Roblox user with that username")
	ErrRecordNotFound        = errors.New("no punishment record found with that ID")
	ErrAlreadyInactive       = errors.New("punishment record is already inactive")
	ErrNoChanges             = errors.New("no changes specified")
)

// ConflictError is a stacking or non-concurrency rejection. When multiple
// conflicts exist, Conflicting holds the first one encountered.
type ConflictError struct {
	Reason      string
	Conflicting *model.PunishmentRecord
}

func (e *ConflictError) Error() string {
	if e.Conflicting != nil {
		return fmt.Sprintf("%s (conflicting record #%d)", e.Reason, e.Conflicting.RecordID)
	}
	return e.Reason
}

// IsRejection reports whether err is an expected user-facing rejection rather
// than a store or transport failure.
func IsRejection(err error) bool {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return true
	}
	for _, sentinel := range []error{
		ErrInvalidType, ErrMissingTierOrCategory, ErrInvalidTierOrCategory,
		ErrSubjectNotFound, ErrRecordNotFound, ErrAlreadyInactive, ErrNoChanges,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
