package forest

import (
	"fmt"
	"strconv"
	"strings"
)

// Budget caps how many stubs may be resolved while flattening one thread.
// The zero value is Limit(0).
type Budget struct {
	limit   int
	bounded bool
}

func Unlimited() Budget {
	return Budget{}
}

func Limit(n int) Budget {
	if n < 0 {
		n = 0
	}
	return Budget{limit: n, bounded: true}
}

func (b Budget) Bounded() bool {
	return b.bounded
}

func (b Budget) Max() int {
	return b.limit
}

func (b Budget) String() string {
	if !b.bounded {
		return "unbounded"
	}
	return strconv.Itoa(b.limit)
}

// ParseBudget accepts a non-negative integer, or "" / "unbounded" for no cap.
func ParseBudget(s string) (Budget, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "unbounded") {
		return Unlimited(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Budget{}, fmt.Errorf("parse budget %q: %w", s, err)
	}
	if n < 0 {
		return Budget{}, fmt.Errorf("parse budget %q: must not be negative", s)
	}
	return Limit(n), nil
}

// ChargePolicy decides which resolutions share one allowance.
type ChargePolicy string

const (
	ChargeInvalid ChargePolicy = ""

	// ChargeShared uses one allowance for the whole call. A stub is charged
	// when its fetch succeeds, before its contents are traversed.
	ChargeShared ChargePolicy = "shared"

	// ChargePerLevel gives every resolved forest a fresh allowance of the
	// full budget. Replies share the allowance of the forest holding their node.
	ChargePerLevel ChargePolicy = "per-level"
)

func ParseChargePolicy(s string) ChargePolicy {
	switch ChargePolicy(s) {
	case ChargeShared, ChargePerLevel:
		return ChargePolicy(s)
	}
	return ChargeInvalid
}
