/*
store.go - Rule lookup, edition selection, validation, and caching

PURPOSE:
  The Store is the single lookup contract the calculators depend on:

    rules, err := store.Rules(taxrules.Ontario, payDate)

  It selects the correct edition for the pay date (most recent edition not
  after the date wins), fails loudly with RuleNotFoundError when no rule set
  covers the date, and validates every rule set exhaustively at construction
  so formula dispatch can never miss at calculation time.

EDITION SELECTION:
  For a pay date in 2025, a store holding (2025, jan) and (2025, jul) serves
  jan for dates before July 1 and jul from July 1 onward. A date in a year
  with no rule sets is an error - the store never silently falls back to a
  neighbouring year's tables.

CACHING:
  Assembled TaxYearRules are cached per (jurisdiction, year, edition) with a
  short TTL. Rule data changes a few times a year at most, so the cache is
  purely an allocation saver for hot batch loops.

SEE ALSO:
  - types.go: The rule types
  - tables.go: Embedded rule data and DefaultStore()
*/
package taxrules

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ErrRuleNotFound is the sentinel behind RuleNotFoundError.
var ErrRuleNotFound = errors.New("no tax rules for date and jurisdiction")

// RuleNotFoundError reports a lookup that no rule set covers. It is fatal
// for the employee calculation that triggered it; callers must never
// substitute a neighbouring year's tables.
type RuleNotFoundError struct {
	Jurisdiction Jurisdiction
	PayDate      time.Time
}

func (e *RuleNotFoundError) Error() string {
	return fmt.Sprintf("no tax rules for %s on %s", e.Jurisdiction, e.PayDate.Format("2006-01-02"))
}

func (e *RuleNotFoundError) Unwrap() error { return ErrRuleNotFound }

// =============================================================================
// STORE
// =============================================================================

const defaultCacheTTL = 15 * time.Minute

type cacheKey struct {
	jurisdiction Jurisdiction
	year         int
	edition      Edition
}

type cacheEntry struct {
	rules   TaxYearRules
	expires time.Time
}

// Store holds validated, immutable rule sets and serves assembled
// TaxYearRules. Construct once and inject; safe for concurrent use.
type Store struct {
	sets []RuleSet // sorted by (Year, edition effective date)

	cacheTTL time.Duration
	mu       sync.RWMutex
	cache    map[cacheKey]cacheEntry
}

// NewStore validates and indexes the given rule sets.
// Validation is exhaustive: every set must cover every supported
// jurisdiction with a known holiday formula, ascending vacation tiers, and
// well-formed bracket tables. A store that constructs cannot miss at
// calculation time.
func NewStore(sets ...RuleSet) (*Store, error) {
	if len(sets) == 0 {
		return nil, errors.New("taxrules: at least one rule set required")
	}
	for _, set := range sets {
		if err := validateSet(set); err != nil {
			return nil, fmt.Errorf("taxrules: rule set %d/%s: %w", set.Year, set.Edition, err)
		}
	}

	sorted := make([]RuleSet, len(sets))
	copy(sorted, sets)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Edition.EffectiveFrom(sorted[i].Year).
			Before(sorted[j].Edition.EffectiveFrom(sorted[j].Year))
	})

	return &Store{
		sets:     sorted,
		cacheTTL: defaultCacheTTL,
		cache:    make(map[cacheKey]cacheEntry),
	}, nil
}

// Rules returns the assembled rules for a jurisdiction and pay date.
// Edition selection is most-recent-not-after within the pay date's year.
func (s *Store) Rules(j Jurisdiction, payDate time.Time) (TaxYearRules, error) {
	set, ok := s.setFor(payDate)
	if !ok {
		return TaxYearRules{}, &RuleNotFoundError{Jurisdiction: j, PayDate: payDate}
	}

	key := cacheKey{jurisdiction: j, year: set.Year, edition: set.Edition}
	s.mu.RLock()
	entry, hit := s.cache[key]
	s.mu.RUnlock()
	if hit && time.Now().Before(entry.expires) {
		return entry.rules, nil
	}

	prov, ok := set.Provinces[j]
	if !ok {
		return TaxYearRules{}, &RuleNotFoundError{Jurisdiction: j, PayDate: payDate}
	}

	rules := TaxYearRules{
		Year:               set.Year,
		Edition:            set.Edition,
		Jurisdiction:       j,
		FederalBPA:         set.Federal.BasicPersonalAmount,
		ProvincialBPA:      prov.BasicPersonalAmount,
		FederalBrackets:    set.Federal.Brackets,
		ProvincialBrackets: prov.Brackets,
		CPP:                set.Federal.CPP,
		EI:                 set.Federal.EI,
		Holiday:            prov.Holiday,
		Vacation:           prov.Vacation,
		Overtime:           prov.Overtime,
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{rules: rules, expires: time.Now().Add(s.cacheTTL)}
	s.mu.Unlock()

	return rules, nil
}

// HolidayFormula is a projection of the store: the holiday formula for a
// jurisdiction as of the most recent rule set.
func (s *Store) HolidayFormula(j Jurisdiction) (HolidayFormula, error) {
	latest := s.sets[len(s.sets)-1]
	prov, ok := latest.Provinces[j]
	if !ok {
		return "", &RuleNotFoundError{Jurisdiction: j, PayDate: latest.Edition.EffectiveFrom(latest.Year)}
	}
	return prov.Holiday.Formula, nil
}

// VacationTiers is a projection of the store: the ordered vacation tier
// table for a jurisdiction as of the most recent rule set.
func (s *Store) VacationTiers(j Jurisdiction) (VacationTiers, error) {
	latest := s.sets[len(s.sets)-1]
	prov, ok := latest.Provinces[j]
	if !ok {
		return nil, &RuleNotFoundError{Jurisdiction: j, PayDate: latest.Edition.EffectiveFrom(latest.Year)}
	}
	return prov.Vacation, nil
}

// setFor picks the rule set whose (year, edition) covers the pay date:
// same year, latest effective date not after the date.
func (s *Store) setFor(payDate time.Time) (RuleSet, bool) {
	var best RuleSet
	found := false
	for _, set := range s.sets {
		if set.Year != payDate.Year() {
			continue
		}
		if set.Edition.EffectiveFrom(set.Year).After(payDate) {
			continue
		}
		best = set
		found = true
	}
	return best, found
}

// =============================================================================
// VALIDATION
// =============================================================================

func validateSet(set RuleSet) error {
	if set.Year == 0 {
		return errors.New("year required")
	}
	if err := validateBrackets(set.Federal.Brackets); err != nil {
		return fmt.Errorf("federal brackets: %w", err)
	}
	if set.Federal.CPP.BaseRate.Sign() <= 0 || set.Federal.EI.Rate.Sign() <= 0 {
		return errors.New("CPP and EI rates must be positive")
	}
	if set.Federal.CPP.YAMPE.LessThan(set.Federal.CPP.YMPE) {
		return errors.New("YAMPE below YMPE")
	}

	for _, j := range Supported() {
		prov, ok := set.Provinces[j]
		if !ok {
			return fmt.Errorf("jurisdiction %s missing", j)
		}
		if err := validateBrackets(prov.Brackets); err != nil {
			return fmt.Errorf("%s brackets: %w", j, err)
		}
		if !knownFormula(prov.Holiday.Formula) {
			return fmt.Errorf("%s: unknown holiday formula %q", j, prov.Holiday.Formula)
		}
		if err := validateTiers(prov.Vacation); err != nil {
			return fmt.Errorf("%s vacation tiers: %w", j, err)
		}
	}
	return nil
}

func validateBrackets(bt BracketTable) error {
	if len(bt) == 0 {
		return errors.New("empty")
	}
	prev := decimal.Zero
	for i, b := range bt {
		last := i == len(bt)-1
		if b.UpTo.IsZero() && !last {
			return errors.New("unbounded bracket before end of table")
		}
		if !b.UpTo.IsZero() && !b.UpTo.GreaterThan(prev) {
			return errors.New("ceilings not strictly ascending")
		}
		if b.Rate.Sign() < 0 {
			return errors.New("negative rate")
		}
		prev = b.UpTo
	}
	return nil
}

func validateTiers(vt VacationTiers) error {
	if len(vt) == 0 {
		return errors.New("empty")
	}
	if vt[0].MinYearsService != 0 {
		return errors.New("first tier must start at 0 years")
	}
	for i := 1; i < len(vt); i++ {
		if vt[i].MinYearsService <= vt[i-1].MinYearsService {
			return errors.New("thresholds not ascending")
		}
	}
	return nil
}

func knownFormula(f HolidayFormula) bool {
	for _, k := range KnownFormulas() {
		if f == k {
			return true
		}
	}
	return false
}
