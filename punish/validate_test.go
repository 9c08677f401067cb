package punish

import (
	"testing"

	"punishment-bot/model"
	"punishment-bot/utils/database/punishconfig"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTypes map[int64]*model.PunishmentType

func (f fakeTypes) GetType(typeID int64) (*model.PunishmentType, error) {
	t, ok := f[typeID]
	if !ok {
		return nil, punishconfig.ErrTypeNotFound
	}
	return t, nil
}

func activeRecord(recordID, typeID int64, typeName string) model.PunishmentRecord {
	return model.PunishmentRecord{RecordID: recordID, TypeID: typeID, TypeName: typeName, Active: true}
}

func TestValidateAllowsUnrelatedTypes(t *testing.T) {
	types := fakeTypes{
		1: {TypeID: 1, Name: "warning", Stackable: true, StackLimit: -1, NonConcurrentWith: "[]"},
		2: {TypeID: 2, Name: "strike", Stackable: true, StackLimit: 3, NonConcurrentWith: "[]"},
	}
	v := &Validator{Types: types}

	err := v.Validate(types[2], []model.PunishmentRecord{activeRecord(100, 1, "warning")})
	assert.NoError(t, err)
}

func TestValidateNonStackableSameType(t *testing.T) {
	types := fakeTypes{
		4: {TypeID: 4, Name: "demotion", Stackable: false, StackLimit: 1, NonConcurrentWith: "[]"},
	}
	v := &Validator{Types: types}

	err := v.Validate(types[4], []model.PunishmentRecord{activeRecord(100, 4, "demotion")})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(100), conflict.Conflicting.RecordID)
	assert.True(t, IsRejection(err))
}

func TestValidateStackLimit(t *testing.T) {
	types := fakeTypes{
		3: {TypeID: 3, Name: "strike", Stackable: true, StackLimit: 3, NonConcurrentWith: "[]"},
	}
	v := &Validator{Types: types}

	two := []model.PunishmentRecord{
		activeRecord(100, 3, "strike"),
		activeRecord(101, 3, "strike"),
	}
	assert.NoError(t, v.Validate(types[3], two))

	three := append(two, activeRecord(102, 3, "strike"))
	err := v.Validate(types[3], three)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(100), conflict.Conflicting.RecordID)
}

func TestValidateUnlimitedStacking(t *testing.T) {
	types := fakeTypes{
		2: {TypeID: 2, Name: "warning", Stackable: true, StackLimit: -1, NonConcurrentWith: "[]"},
	}
	v := &Validator{Types: types}

	var active []model.PunishmentRecord
	for i := int64(0); i < 50; i++ {
		active = append(active, activeRecord(100+i, 2, "warning"))
	}
	assert.NoError(t, v.Validate(types[2], active))
}

func TestValidateNonConcurrencyForward(t *testing.T) {
	types := fakeTypes{
		5: {TypeID: 5, Name: "suspension", Stackable: false, StackLimit: 1, NonConcurrentWith: "[6]"},
		6: {TypeID: 6, Name: "blacklist", Stackable: false, StackLimit: 1, NonConcurrentWith: "[]"},
	}
	v := &Validator{Types: types}

	// The proposed type declares the conflict.
	err := v.Validate(types[5], []model.PunishmentRecord{activeRecord(200, 6, "blacklist")})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(200), conflict.Conflicting.RecordID)
}

func TestValidateNonConcurrencyReverse(t *testing.T) {
	types := fakeTypes{
		5: {TypeID: 5, Name: "suspension", Stackable: false, StackLimit: 1, NonConcurrentWith: "[6]"},
		6: {TypeID: 6, Name: "blacklist", Stackable: false, StackLimit: 1, NonConcurrentWith: "[]"},
	}
	v := &Validator{Types: types}

	// Only the active record's type declares the conflict; it still blocks.
	err := v.Validate(types[6], []model.PunishmentRecord{activeRecord(201, 5, "suspension")})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(201), conflict.Conflicting.RecordID)
}

func TestValidateDeconfiguredActiveTypeIgnored(t *testing.T) {
	types := fakeTypes{
		3: {TypeID: 3, Name: "strike", Stackable: true, StackLimit: 3, NonConcurrentWith: "[]"},
	}
	v := &Validator{Types: types}

	// Type 99 no longer exists; its record cannot declare conflicts.
	err := v.Validate(types[3], []model.PunishmentRecord{activeRecord(300, 99, "legacy")})
	assert.NoError(t, err)
}

func TestValidateFirstConflictWins(t *testing.T) {
	types := fakeTypes{
		5: {TypeID: 5, Name: "suspension", Stackable: false, StackLimit: 1, NonConcurrentWith: "[6]"},
		6: {TypeID: 6, Name: "blacklist", Stackable: false, StackLimit: 1, NonConcurrentWith: "[5]"},
	}
	v := &Validator{Types: types}

	active := []model.PunishmentRecord{
		activeRecord(400, 6, "blacklist"),
		activeRecord(401, 6, "blacklist"),
	}
	err := v.Validate(types[5], active)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(400), conflict.Conflicting.RecordID)
}

func TestValidateMalformedNonConcurrencySet(t *testing.T) {
	types := fakeTypes{
		5: {TypeID: 5, Name: "suspension", Stackable: false, StackLimit: 1, NonConcurrentWith: "{not json"},
		6: {TypeID: 6, Name: "blacklist", Stackable: false, StackLimit: 1, NonConcurrentWith: "[]"},
	}
	v := &Validator{Types: types}

	// A malformed set blocks nothing.
	assert.NoError(t, v.Validate(types[5], []model.PunishmentRecord{activeRecord(500, 6, "blacklist")}))
}
