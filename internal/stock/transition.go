package stock

import (
	"errors"

	"go-insumos-ws/internal/model"
)

// ErrTerminalState is returned when a delivered or cancelled order is asked to move.
var ErrTerminalState = errors.New("order is already closed")

// Transition is the plan for one set-status request.
type Transition struct {
	From    model.OrderStatus
	To      model.OrderStatus
	Changed bool
	// Credit is true only on entry into delivered.
	Credit bool
}

// PlanTransition applies the order lifecycle: pending may move to delivered or cancelled,
// both of which are terminal. Asking for the status an order already has is a no-op,
// which is what makes a repeated "delivered" request safe.
func PlanTransition(current, next model.OrderStatus) (Transition, error) {
	t := Transition{From: current, To: next}
	if current == next {
		return t, nil
	}
	if current.Terminal() {
		return t, ErrTerminalState
	}
	t.Changed = true
	t.Credit = next == model.OrderDelivered
	return t, nil
}

// CreditsLedger reports whether applying t to an order with target credits supply stock.
// Product orders have no ledger entry to credit.
func (t Transition) CreditsLedger(target model.OrderTarget) bool {
	if !t.Credit {
		return false
	}
	_, ok := target.(model.SupplyTarget)
	return ok
}
