package model

import (
	"strconv"
	"strings"
)

// Tier identifies a membership plan. Ranks order the tiers for access decisions.
type Tier string

const (
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
	TierVIP     Tier = "vip"
)

func (t Tier) Rank() int {
	switch t {
	case TierVIP:
		return 3
	case TierPremium:
		return 2
	case TierBasic:
		return 1
	default:
		return 0
	}
}

func (t Tier) Valid() bool { return t.Rank() > 0 }

// MembershipPlan is an immutable catalog entry.
type MembershipPlan struct {
	ID        Tier     `json:"id"`
	Name      string   `json:"name"`
	Price     int64    `json:"price"`
	Duration  string   `json:"duration"` // "month" | "N months"
	Features  []string `json:"features"`
	Highlight bool     `json:"highlight"`
}

var catalog = []MembershipPlan{
	{
		ID:       TierBasic,
		Name:     "Basic Fit",
		Price:    1000,
		Duration: "month",
		Features: []string{
			"Access to all gym equipment",
			"Locker room access",
			"Standard workout plans",
			"One-time payment",
		},
	},
	{
		ID:       TierPremium,
		Name:     "Premium Pro",
		Price:    5500,
		Duration: "6 months",
		Features: []string{
			"All Basic Fit benefits",
			"Access to group classes",
			"Personalized workout tracker",
			"1x monthly personal training session",
			"One-time payment",
		},
		Highlight: true,
	},
	{
		ID:       TierVIP,
		Name:     "VIP Elite",
		Price:    10000,
		Duration: "12 months",
		Features: []string{
			"All Premium Pro benefits",
			"Unlimited personal training sessions",
			"Guest passes",
			"Nutritional guidance",
			"One-time payment",
		},
	},
}

// Catalog returns a copy of the static plan catalog in display order.
func Catalog() []MembershipPlan {
	out := make([]MembershipPlan, len(catalog))
	for i, p := range catalog {
		p.Features = append([]string(nil), p.Features...)
		out[i] = p
	}
	return out
}

// PlanByID looks a plan up in the catalog.
func PlanByID(id string) (MembershipPlan, bool) {
	for _, p := range catalog {
		if string(p.ID) == id {
			p.Features = append([]string(nil), p.Features...)
			return p, true
		}
	}
	return MembershipPlan{}, false
}

// Months parses the plan duration. "month" is 1; otherwise the leading integer
// token, or 0 when it does not parse.
func (p MembershipPlan) Months() int {
	if p.Duration == "month" {
		return 1
	}
	fields := strings.Fields(p.Duration)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}

// DurationMonths returns the duration of a catalog plan, 0 for unknown ids.
func DurationMonths(planID string) int {
	p, ok := PlanByID(planID)
	if !ok {
		return 0
	}
	return p.Months()
}
