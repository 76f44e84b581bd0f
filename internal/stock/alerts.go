package stock

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go-insumos-ws/internal/model"

	"github.com/google/uuid"
)

// ExpiringSoonDays is the look-ahead window of the expiring-soon alert.
const ExpiringSoonDays = 7

// Severity weights; an item matching several predicates adds them up.
const (
	WeightOutOfStock   = 4
	WeightExpired      = 3
	WeightLowStock     = 2
	WeightExpiringSoon = 1
)

// Category selects a subset of the alert list.
type Category string

const (
	CategoryAll          Category = "all"
	CategoryLowStock     Category = "low-stock"
	CategoryOutOfStock   Category = "out-of-stock"
	CategoryExpiringSoon Category = "expiring-soon"
	CategoryExpired      Category = "expired"
)

// ParseCategory treats the empty string as CategoryAll.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case "":
		return CategoryAll, nil
	case CategoryAll, CategoryLowStock, CategoryOutOfStock, CategoryExpiringSoon, CategoryExpired:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown alert category %q", s)
}

// Classification holds the four alert predicates of one supply at one instant.
type Classification struct {
	OutOfStock      bool
	LowStock        bool
	Expired         bool
	ExpiringSoon    bool
	DaysUntilExpiry *int
}

// Severity is the weighted sum of the matching predicates.
func (c Classification) Severity() int {
	s := 0
	if c.OutOfStock {
		s += WeightOutOfStock
	}
	if c.Expired {
		s += WeightExpired
	}
	if c.LowStock {
		s += WeightLowStock
	}
	if c.ExpiringSoon {
		s += WeightExpiringSoon
	}
	return s
}

// Any reports whether the item raises at least one alert.
func (c Classification) Any() bool {
	return c.OutOfStock || c.LowStock || c.Expired || c.ExpiringSoon
}

// In reports membership in cat.
func (c Classification) In(cat Category) bool {
	switch cat {
	case CategoryAll:
		return c.Any()
	case CategoryLowStock:
		return c.LowStock
	case CategoryOutOfStock:
		return c.OutOfStock
	case CategoryExpiringSoon:
		return c.ExpiringSoon && !c.Expired
	case CategoryExpired:
		return c.Expired
	}
	return false
}

func (c Classification) Categories() []Category {
	cats := make([]Category, 0, 4)
	for _, cat := range []Category{CategoryOutOfStock, CategoryExpired, CategoryLowStock, CategoryExpiringSoon} {
		if c.In(cat) {
			cats = append(cats, cat)
		}
	}
	return cats
}

// Classify evaluates the predicates for item at now. The expiry date is a calendar day
// in loc; it counts as expired once that day has started, and days-until-expiry is
// rounded up to whole days.
func Classify(item model.SupplyItem, now time.Time, loc *time.Location) Classification {
	var c Classification

	c.OutOfStock = item.QuantityOnHand.IsZero()
	c.LowStock = item.QuantityOnHand.IsPositive() && item.QuantityOnHand.LessThanOrEqual(item.MinimumThreshold)

	if item.ExpiryDate != nil {
		e := *item.ExpiryDate
		expiry := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, loc)
		days := int(math.Ceil(float64(expiry.Sub(now)) / float64(24*time.Hour)))
		c.DaysUntilExpiry = &days
		c.Expired = expiry.Before(now)
		c.ExpiringSoon = days > 0 && days <= ExpiringSoonDays
	}
	return c
}

// Alert is a supply with its classification, as returned to clients.
type Alert struct {
	model.SupplyItem
	Severity        int        `json:"severity"`
	Alerts          []Category `json:"alerts"`
	DaysUntilExpiry *int       `json:"days_until_expiry,omitempty"`
}

// Dedupe keeps the first occurrence of every supply ID, in input order.
func Dedupe(items []model.SupplyItem) []model.SupplyItem {
	seen := make(map[uuid.UUID]struct{}, len(items))
	out := make([]model.SupplyItem, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Rank dedupes items, keeps those in cat and orders them by descending severity.
// Equal severities keep their input order.
func Rank(items []model.SupplyItem, cat Category, now time.Time, loc *time.Location) []Alert {
	alerts := make([]Alert, 0, len(items))
	for _, it := range Dedupe(items) {
		c := Classify(it, now, loc)
		if !c.In(cat) {
			continue
		}
		alerts = append(alerts, Alert{
			SupplyItem:      it,
			Severity:        c.Severity(),
			Alerts:          c.Categories(),
			DaysUntilExpiry: c.DaysUntilExpiry,
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity > alerts[j].Severity
	})
	return alerts
}

// Summary counts supplies per alert category.
type Summary struct {
	LowStock     int `json:"low_stock"`
	OutOfStock   int `json:"out_of_stock"`
	ExpiringSoon int `json:"expiring_soon"`
	Expired      int `json:"expired"`
}

func Summarize(items []model.SupplyItem, now time.Time, loc *time.Location) Summary {
	var s Summary
	for _, it := range Dedupe(items) {
		c := Classify(it, now, loc)
		if c.In(CategoryLowStock) {
			s.LowStock++
		}
		if c.In(CategoryOutOfStock) {
			s.OutOfStock++
		}
		if c.In(CategoryExpiringSoon) {
			s.ExpiringSoon++
		}
		if c.In(CategoryExpired) {
			s.Expired++
		}
	}
	return s
}
