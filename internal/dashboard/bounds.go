package dashboard

import (
	"math"
	"strconv"
	"strings"
)

// Bound is an optional inclusive numeric threshold. The zero value is
// unbounded.
type Bound struct {
	value float64
	set   bool
}

// BoundAt returns a bound fixed at v. Non-finite values yield an unset bound.
func BoundAt(v float64) Bound {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Bound{}
	}
	return Bound{value: v, set: true}
}

// ParseBound turns free-text numeric input into a Bound. Empty input, input
// that is not a number and non-finite numbers all produce an unset bound,
// never zero.
func ParseBound(s string) Bound {
	s = strings.TrimSpace(s)
	if s == "" {
		return Bound{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Bound{}
	}
	return BoundAt(v)
}

// Get returns the threshold and whether it is set.
func (b Bound) Get() (float64, bool) {
	return b.value, b.set
}

// IsSet reports whether the bound constrains anything.
func (b Bound) IsSet() bool {
	return b.set
}

// String renders the bound the way a user would type it; unset is "".
func (b Bound) String() string {
	if !b.set {
		return ""
	}
	return strconv.FormatFloat(b.value, 'f', -1, 64)
}

// AllowsMin reports whether v satisfies the bound used as a minimum.
func (b Bound) AllowsMin(v float64) bool {
	return !b.set || v >= b.value
}

// AllowsMax reports whether v satisfies the bound used as a maximum.
func (b Bound) AllowsMax(v float64) bool {
	return !b.set || v <= b.value
}
