package punish

import (
	"fmt"
	"strconv"
	"strings"
)

// SelectorKind tags which variant of tier selection a request carries.
type SelectorKind int

const (
	// SelectorNone means no tier or category was supplied.
	SelectorNone SelectorKind = iota
	// SelectorTier is an ordinal severity tier ("tier:3").
	SelectorTier
	// SelectorCategory is a named category ("category:scamming").
	SelectorCategory
)

// Selector is the tagged tier/category variant supplied with an issue
// request. Exactly one of Tier or Category is meaningful, per Kind.
type Selector struct {
	Kind     SelectorKind
	Tier     int64
	Category string
}

// ParseSelector parses the "tier:N" / "category:X" option tokens produced by
// the autocomplete layer. The literal values "none" and "invalid" are
// placeholder autocomplete responses and are treated as absent.
func ParseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "" || raw == "none" || raw == "invalid":
		return Selector{Kind: SelectorNone}, nil
	case strings.HasPrefix(raw, "tier:"):
		n, err := strconv.ParseInt(strings.TrimPrefix(raw, "tier:"), 10, 64)
		if err != nil {
			return Selector{}, fmt.Errorf("%w: bad tier number %q", ErrInvalidTierOrCategory, raw)
		}
		return Selector{Kind: SelectorTier, Tier: n}, nil
	case strings.HasPrefix(raw, "category:"):
		cat := strings.TrimPrefix(raw, "category:")
		if cat == "" {
			return Selector{}, fmt.Errorf("%w: empty category", ErrInvalidTierOrCategory)
		}
		return Selector{Kind: SelectorCategory, Category: cat}, nil
	default:
		return Selector{}, fmt.Errorf("%w: unrecognized selector %q", ErrInvalidTierOrCategory, raw)
	}
}

// TierSelector builds a tier selector directly from a number (update path).
func TierSelector(n int64) Selector {
	return Selector{Kind: SelectorTier, Tier: n}
}
