package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Farengier/usernotes-bot/internal/platform"
)

const (
	restrictionPrefix = "b"
	incrementalSuffix = "i"
	permanentSuffix   = "p"

	// DefaultIncrementDays is proposed for an incremental restriction
	// when the user has no usable restriction history.
	DefaultIncrementDays = 3

	banAction = "banuser"
)

type RestrictionKind int

const (
	RestrictionNone RestrictionKind = iota
	RestrictionTimed
	RestrictionIncremental
	RestrictionPermanent
)

type Restriction struct {
	Kind RestrictionKind
	Days int
}

func (r Restriction) IsSet() bool {
	return r.Kind != RestrictionNone
}

// String gives "5" for five days, "perm" for permanent and "i" for an
// unresolved incremental restriction.
func (r Restriction) String() string {
	switch r.Kind {
	case RestrictionTimed:
		return strconv.Itoa(r.Days)
	case RestrictionIncremental:
		return incrementalSuffix
	case RestrictionPermanent:
		return "perm"
	default:
		return ""
	}
}

// Describe is the human readable form used in summaries.
func (r Restriction) Describe() string {
	switch r.Kind {
	case RestrictionTimed:
		if r.Days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", r.Days)
	case RestrictionPermanent:
		return "Perm"
	case RestrictionIncremental:
		return "incremental"
	default:
		return "none"
	}
}

// FindRestriction reads a restriction directive ("b<days>", "bi", "bp")
// from the first token.
func FindRestriction(tokens []string) (Restriction, bool) {
	if len(tokens) == 0 || !strings.HasPrefix(tokens[0], restrictionPrefix) {
		return Restriction{}, false
	}
	suffix := strings.TrimPrefix(tokens[0], restrictionPrefix)
	if days, ok := number(suffix); ok {
		return Restriction{Kind: RestrictionTimed, Days: days}, true
	}
	switch suffix {
	case incrementalSuffix:
		return Restriction{Kind: RestrictionIncremental}, true
	case permanentSuffix:
		return Restriction{Kind: RestrictionPermanent}, true
	}
	return Restriction{}, false
}

// NextIncrement doubles the most recent restriction found in history
// (newest first). The error is set when that entry could not be parsed;
// DefaultIncrementDays is returned alongside it.
func NextIncrement(history []platform.RestrictionEvent) (int, error) {
	for _, ev := range history {
		if ev.Action != banAction || ev.Details == "" {
			continue
		}
		first := strings.Fields(ev.Details)
		if len(first) == 0 {
			return DefaultIncrementDays, fmt.Errorf("empty restriction detail %q", ev.Details)
		}
		days, err := strconv.Atoi(first[0])
		if err != nil {
			return DefaultIncrementDays, fmt.Errorf("restriction detail %q: %w", ev.Details, err)
		}
		return days * 2, nil
	}
	return DefaultIncrementDays, nil
}
