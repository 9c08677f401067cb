package punishments

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

type seedType struct {
	typeID            int64
	name              string
	stackable         bool
	stackLimit        int64
	nonConcurrentWith string
}

type seedTier struct {
	typeID     int64
	tierNumber int64
	lengthDays interface{} // int64, -1 for permanent, nil for not applicable
	category   interface{} // string or nil
}

// SeedDefaults installs the default punishment types and tiers on first run.
// It does nothing when any type already exists; from then on the
// /punishment-config commands own this data.
func SeedDefaults(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM punishment_types"); err != nil {
		return fmt.Errorf("failed to check punishment types: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Println("First time setup: seeding default punishment types and tiers...")

	types := []seedType{
		{1001, "reminder", true, -1, "[]"},
		{1002, "warning", true, -1, "[]"},
		{1003, "strike", true, 3, "[]"},
		{1004, "demotion", false, 1, "[]"},
		{1005, "suspension", false, 1, "[1006]"}, // cannot coexist with blacklist
		{1006, "blacklist", false, 1, "[1005]"},  // cannot coexist with suspension
	}

	tiers := []seedTier{
		{1001, 1, int64(90), nil},
		{1002, 1, int64(90), nil},
		{1003, 1, int64(90), nil},
		{1004, 1, nil, nil}, // n/a

		// Suspensions, 1 day to 5 years
		{1005, 1, int64(1), nil},
		{1005, 2, int64(7), nil},
		{1005, 3, int64(14), nil},
		{1005, 4, int64(21), nil},
		{1005, 5, int64(30), nil},
		{1005, 6, int64(42), nil},
		{1005, 7, int64(60), nil},
		{1005, 8, int64(90), nil},
		{1005, 9, int64(120), nil},
		{1005, 10, int64(180), nil},
		{1005, 11, int64(240), nil},
		{1005, 12, int64(300), nil},
		{1005, 13, int64(365), nil},
		{1005, 14, int64(540), nil},
		{1005, 15, int64(730), nil},
		{1005, 16, int64(1095), nil},
		{1005, 17, int64(1460), nil},
		{1005, 18, int64(1825), nil},

		// Blacklist categories, all permanent
		{1006, 1, int64(-1), "degeneracy"},
		{1006, 2, int64(-1), "exploit/cheats (repeated 3+ times)"},
		{1006, 3, int64(-1), "ddos"},
		{1006, 4, int64(-1), "alt account (of blacklisted person)"},
		{1006, 5, int64(-1), "scamming"},
		{1006, 6, int64(-1), "doxxing"},
		{1006, 7, int64(-1), "grooming"},
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range types {
		_, err := tx.Exec(
			`INSERT INTO punishment_types (type_id, name, stackable, stack_limit, non_concurrent_with)
			 VALUES (?, ?, ?, ?, ?)`,
			t.typeID, t.name, t.stackable, t.stackLimit, t.nonConcurrentWith)
		if err != nil {
			return fmt.Errorf("failed to seed punishment type %s: %w", t.name, err)
		}
	}

	for _, tier := range tiers {
		_, err := tx.Exec(
			`INSERT INTO punishment_tiers (type_id, tier_number, length_days, category)
			 VALUES (?, ?, ?, ?)`,
			tier.typeID, tier.tierNumber, tier.lengthDays, tier.category)
		if err != nil {
			return fmt.Errorf("failed to seed tier %d for type %d: %w", tier.tierNumber, tier.typeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	log.Printf("Seeded %d punishment types and %d tiers", len(types), len(tiers))
	return nil
}
