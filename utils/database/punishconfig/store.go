package punishconfig

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"punishment-bot/model"

	"github.com/jmoiron/sqlx"
)

// cacheDuration is the freshness window for cached type data. Administrative
// mutations invalidate synchronously; concurrent readers may observe data up
// to this old otherwise.
const cacheDuration = 5 * time.Minute

var (
	// ErrTypeNotFound is returned when a punishment type does not exist.
	ErrTypeNotFound = errors.New("punishment type not found")
	// ErrTierNotFound is returned when a punishment tier does not exist.
	ErrTierNotFound = errors.New("punishment tier not found")
)

// Store is the configuration store for punishment types and tiers. Reads go
// through an explicit cache owned by the store; every admin mutation
// invalidates it before returning.
type Store struct {
	db *sqlx.DB

	mu          sync.RWMutex
	typesByID   map[int64]model.PunishmentType
	typesByName map[string]model.PunishmentType
	cachedAt    time.Time
}

// New creates a configuration store over the given database.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) cachedTypes() (map[int64]model.PunishmentType, map[string]model.PunishmentType, error) {
	s.mu.RLock()
	if s.typesByID != nil && time.Since(s.cachedAt) < cacheDuration {
		byID, byName := s.typesByID, s.typesByName
		s.mu.RUnlock()
		return byID, byName, nil
	}
	s.mu.RUnlock()

	var types []model.PunishmentType
	if err := s.db.Select(&types, "SELECT * FROM punishment_types"); err != nil {
		return nil, nil, fmt.Errorf("failed to load punishment types: %w", err)
	}

	byID := make(map[int64]model.PunishmentType, len(types))
	byName := make(map[string]model.PunishmentType, len(types))
	for _, t := range types {
		byID[t.TypeID] = t
		byName[t.Name] = t
	}

	s.mu.Lock()
	s.typesByID = byID
	s.typesByName = byName
	s.cachedAt = time.Now()
	s.mu.Unlock()

	return byID, byName, nil
}

// Invalidate drops the cache. Called synchronously by every admin mutation.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.typesByID = nil
	s.typesByName = nil
	s.cachedAt = time.Time{}
	s.mu.Unlock()
}

// ListTypes returns the name -> typeID map for all configured types.
func (s *Store) ListTypes() (map[string]int64, error) {
	byID, _, err := s.cachedTypes()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(byID))
	for _, t := range byID {
		out[t.Name] = t.TypeID
	}
	return out, nil
}

// GetType returns a type by its ID.
func (s *Store) GetType(typeID int64) (*model.PunishmentType, error) {
	byID, _, err := s.cachedTypes()
	if err != nil {
		return nil, err
	}
	t, ok := byID[typeID]
	if !ok {
		return nil, ErrTypeNotFound
	}
	return &t, nil
}

// GetTypeByName returns a type by its case-normalized name.
func (s *Store) GetTypeByName(name string) (*model.PunishmentType, error) {
	_, byName, err := s.cachedTypes()
	if err != nil {
		return nil, err
	}
	t, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrTypeNotFound
	}
	return &t, nil
}

// ListTiers returns all tiers of a type ordered by tier number.
func (s *Store) ListTiers(typeID int64) ([]model.PunishmentTier, error) {
	var tiers []model.PunishmentTier
	query := "SELECT * FROM punishment_tiers WHERE type_id = ? ORDER BY tier_number ASC"
	if err := s.db.Select(&tiers, query, typeID); err != nil {
		return nil, fmt.Errorf("failed to list tiers for type %d: %w", typeID, err)
	}
	return tiers, nil
}

// GetTier returns the tier with the given number under a type.
func (s *Store) GetTier(typeID, tierNumber int64) (*model.PunishmentTier, error) {
	var tier model.PunishmentTier
	query := "SELECT * FROM punishment_tiers WHERE type_id = ? AND tier_number = ?"
	err := s.db.Get(&tier, query, typeID, tierNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTierNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tier %d for type %d: %w", tierNumber, typeID, err)
	}
	return &tier, nil
}

// GetTierByCategory returns the tier whose category matches, case-insensitively.
func (s *Store) GetTierByCategory(typeID int64, category string) (*model.PunishmentTier, error) {
	var tier model.PunishmentTier
	query := "SELECT * FROM punishment_tiers WHERE type_id = ? AND LOWER(category) = LOWER(?)"
	err := s.db.Get(&tier, query, typeID, category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTierNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category %q for type %d: %w", category, typeID, err)
	}
	return &tier, nil
}

// GetTierByID returns a tier by its generated ID.
func (s *Store) GetTierByID(tierID int64) (*model.PunishmentTier, error) {
	var tier model.PunishmentTier
	err := s.db.Get(&tier, "SELECT * FROM punishment_tiers WHERE tier_id = ?", tierID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTierNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tier %d: %w", tierID, err)
	}
	return &tier, nil
}

// DecodeNonConcurrent parses the stored JSON non-concurrency set.
func DecodeNonConcurrent(raw string) []int64 {
	if raw == "" {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		// A malformed set blocks nothing rather than everything.
		return nil
	}
	return ids
}

// EncodeNonConcurrent serializes a non-concurrency set for storage.
func EncodeNonConcurrent(ids []int64) string {
	if ids == nil {
		ids = []int64{}
	}
	raw, _ := json.Marshal(ids)
	return string(raw)
}
