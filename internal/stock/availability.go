// Package stock holds the derivations made over the supply ledger: how many units of a
// product can be made, which supplies need attention, and what an order status change
// must do to the ledger. Everything here is pure; callers load state and persist results.
package stock

import (
	"fmt"

	"go-insumos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LowStockUnits is the producible-units ceiling of the low-stock band.
const LowStockUnits = 5

// Status is the closed set of product stock states.
type Status string

const (
	StatusOutOfStock Status = "out-of-stock"
	StatusLowStock   Status = "low-stock"
	StatusOK         Status = "ok"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOutOfStock, StatusLowStock, StatusOK:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown stock status %q", s)
}

// StatusFor classifies a producible-units count.
func StatusFor(units int64) Status {
	switch {
	case units <= 0:
		return StatusOutOfStock
	case units <= LowStockUnits:
		return StatusLowStock
	default:
		return StatusOK
	}
}

// Ledger maps supply name to quantity on hand.
type Ledger map[string]decimal.Decimal

func NewLedger(items []model.SupplyItem) Ledger {
	l := make(Ledger, len(items))
	for _, it := range items {
		l[it.Name] = it.QuantityOnHand
	}
	return l
}

// LineAvailability is one recipe line joined with the ledger.
type LineAvailability struct {
	ID               string          `json:"id,omitempty"`
	SupplyName       string          `json:"supply_name"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
	Unit             string          `json:"unit"`
	Resolved         bool            `json:"resolved"`
	StockAvailable   decimal.Decimal `json:"stock_available"`
	UnitsPossible    int64           `json:"units_possible"`
}

// Availability is the derived stock picture of one product.
type Availability struct {
	ProducibleUnits int64              `json:"producible_units"`
	Status          Status             `json:"stock_status"`
	Lines           []LineAvailability `json:"recipe"`
}

// Compute derives producible units as floor(min(on_hand / required)) over the lines
// that resolve against the ledger. Lines naming an unknown supply, or with a
// non-positive requirement, cannot be satisfied and are left out of the minimum.
// No resolvable line at all (including an empty recipe) means zero units.
func Compute(lines []model.RecipeLine, ledger Ledger) Availability {
	out := Availability{Lines: make([]LineAvailability, 0, len(lines))}

	var (
		minUnits int64
		found    bool
	)
	for _, line := range lines {
		la := LineAvailability{
			SupplyName:       line.SupplyName,
			QuantityRequired: line.QuantityRequired,
			Unit:             line.Unit,
		}
		if line.ID != uuid.Nil {
			la.ID = line.ID.String()
		}

		onHand, ok := ledger[line.SupplyName]
		if ok && line.QuantityRequired.IsPositive() {
			la.Resolved = true
			la.StockAvailable = onHand
			la.UnitsPossible = unitsPossible(onHand, line.QuantityRequired)
			if !found || la.UnitsPossible < minUnits {
				minUnits = la.UnitsPossible
				found = true
			}
		}
		out.Lines = append(out.Lines, la)
	}

	if found {
		out.ProducibleUnits = minUnits
	}
	out.Status = StatusFor(out.ProducibleUnits)
	return out
}

func unitsPossible(onHand, required decimal.Decimal) int64 {
	if !onHand.IsPositive() {
		return 0
	}
	q, _ := onHand.QuoRem(required, 0)
	return q.IntPart()
}
