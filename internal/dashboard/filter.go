package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"stockboard/internal/domain"
)

// SortKey selects the record field the view is ordered by.
type SortKey int

const (
	SortNone SortKey = iota
	SortTicker
	SortName
	SortCurrentPrice
	SortCostChange
	SortPercentageChange
	SortKeyCount
)

var sortKeyNames = [SortKeyCount]string{
	"none", "ticker", "name", "currentPrice", "costChange", "percentageChange",
}

var sortKeyLabels = [SortKeyCount]string{
	"NONE", "TICKER", "NAME", "PRICE", "CHG$", "CHG%",
}

// String returns the wire/config name of the key.
func (k SortKey) String() string {
	if k < 0 || k >= SortKeyCount {
		return "?"
	}
	return sortKeyNames[k]
}

// Label returns a short header label for the key.
func (k SortKey) Label() string {
	if k < 0 || k >= SortKeyCount {
		return "?"
	}
	return sortKeyLabels[k]
}

// ParseSortKey parses a config or flag value. Empty input means SortNone.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortNone, nil
	}
	for i, name := range sortKeyNames {
		if strings.EqualFold(name, s) {
			return SortKey(i), nil
		}
	}
	return SortNone, fmt.Errorf("unknown sort key %q", s)
}

// NextSortKey cycles through the keys, wrapping back to SortNone.
func NextSortKey(k SortKey) SortKey {
	return (k + 1) % SortKeyCount
}

// SortOrder is the sort direction.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

func (o SortOrder) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// Flip returns the opposite direction.
func (o SortOrder) Flip() SortOrder {
	if o == Descending {
		return Ascending
	}
	return Descending
}

// ParseSortOrder parses "asc" or "desc". Empty input means Ascending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("unknown sort order %q", s)
	}
}

// FilterConfig is the complete filter and sort selection for a stock list.
// It is a value: edits produce a new FilterConfig.
type FilterConfig struct {
	SortBy    SortKey
	SortOrder SortOrder

	MinPrice         Bound
	MaxPrice         Bound
	MinChange        Bound
	MaxChange        Bound
	MinPercentChange Bound
	MaxPercentChange Bound

	// Query matches ticker or name, case-insensitively, as a substring.
	Query string
}

// DefaultConfig returns the reset configuration: no bounds, no query, no sort.
func DefaultConfig() FilterConfig {
	return FilterConfig{}
}

// HasBounds reports whether any numeric bound is set.
func (c FilterConfig) HasBounds() bool {
	for _, b := range []Bound{
		c.MinPrice, c.MaxPrice,
		c.MinChange, c.MaxChange,
		c.MinPercentChange, c.MaxPercentChange,
	} {
		if b.IsSet() {
			return true
		}
	}
	return false
}

// IsReset reports whether the configuration leaves the collection untouched.
func (c FilterConfig) IsReset() bool {
	return !c.HasBounds() && c.SortBy == SortNone && strings.TrimSpace(c.Query) == ""
}

// Matches reports whether r satisfies every bound and the query.
func (c FilterConfig) Matches(r domain.StockRecord) bool {
	return c.matches(r, strings.ToLower(strings.TrimSpace(c.Query)))
}

func (c FilterConfig) matches(r domain.StockRecord, query string) bool {
	if !c.MinPrice.AllowsMin(r.CurrentPrice) || !c.MaxPrice.AllowsMax(r.CurrentPrice) {
		return false
	}
	if !c.MinChange.AllowsMin(r.CostChange) || !c.MaxChange.AllowsMax(r.CostChange) {
		return false
	}
	if !c.MinPercentChange.AllowsMin(r.PercentageChange) || !c.MaxPercentChange.AllowsMax(r.PercentageChange) {
		return false
	}
	if query != "" &&
		!strings.Contains(strings.ToLower(r.Ticker), query) &&
		!strings.Contains(strings.ToLower(r.Name), query) {
		return false
	}
	return true
}

// ActiveBounds returns a compact summary of the active filters, or "" when none.
func (c FilterConfig) ActiveBounds() string {
	var parts []string
	add := func(field, op string, b Bound) {
		if b.IsSet() {
			parts = append(parts, field+op+b.String())
		}
	}
	add("price", ">=", c.MinPrice)
	add("price", "<=", c.MaxPrice)
	add("chg", ">=", c.MinChange)
	add("chg", "<=", c.MaxChange)
	add("chg%", ">=", c.MinPercentChange)
	add("chg%", "<=", c.MaxPercentChange)
	if q := strings.TrimSpace(c.Query); q != "" {
		parts = append(parts, fmt.Sprintf("q=%q", q))
	}
	return strings.Join(parts, " ")
}

// Apply derives the rendered view from the authoritative collection base.
// The result is always computed from base, never from a previous view, so
// relaxing a bound brings excluded records back. base is not modified; the
// returned slice is new. Tickers repeated in base keep their first
// occurrence only.
func Apply(base []domain.StockRecord, cfg FilterConfig) []domain.StockRecord {
	out := make([]domain.StockRecord, 0, len(base))
	if len(base) == 0 {
		return out
	}

	query := strings.ToLower(strings.TrimSpace(cfg.Query))
	seen := make(map[string]bool, len(base))
	for _, r := range base {
		if seen[r.Ticker] {
			continue
		}
		seen[r.Ticker] = true
		if cfg.matches(r, query) {
			out = append(out, r)
		}
	}

	if cfg.SortBy != SortNone {
		sortRecords(out, cfg.SortBy, cfg.SortOrder)
	}
	return out
}

// sortRecords stably orders ss by key. Strings use English collation;
// numbers use their arithmetic difference.
func sortRecords(ss []domain.StockRecord, key SortKey, order SortOrder) {
	col := collate.New(language.English)

	compare := func(a, b *domain.StockRecord) int {
		switch key {
		case SortTicker:
			return col.CompareString(a.Ticker, b.Ticker)
		case SortName:
			return col.CompareString(a.Name, b.Name)
		case SortCurrentPrice:
			return sign(a.CurrentPrice - b.CurrentPrice)
		case SortCostChange:
			return sign(a.CostChange - b.CostChange)
		case SortPercentageChange:
			return sign(a.PercentageChange - b.PercentageChange)
		default:
			return 0
		}
	}

	sort.SliceStable(ss, func(i, j int) bool {
		c := compare(&ss[i], &ss[j])
		if order == Descending {
			return c > 0
		}
		return c < 0
	})
}

func sign(d float64) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}
