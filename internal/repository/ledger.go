package repository

import (
	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockSupply loads a supply row with FOR UPDATE. Must run inside a transaction.
func lockSupply(tx *gorm.DB, query string, args ...interface{}) (*model.SupplyItem, error) {
	var s model.SupplyItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where(query, args...).First(&s).Error
	if err != nil {
		return nil, translate(err, "supply")
	}
	return &s, nil
}

// applyMovement moves a locked supply by mv.Quantity in the direction of mv.Type
// and appends mv to the ledger history. The balance never goes negative.
func applyMovement(tx *gorm.DB, s *model.SupplyItem, mv *model.StockMovement) error {
	before := s.QuantityOnHand
	after := before.Add(mv.Quantity)
	if mv.Type == model.MovementOut {
		after = before.Sub(mv.Quantity)
	}
	if after.IsNegative() {
		return apierror.Validation("insufficient stock for " + s.Name)
	}

	err := tx.Model(&model.SupplyItem{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"quantity_on_hand": after,
			"updated_by":       mv.CreatedBy,
		}).Error
	if err != nil {
		return translate(err, "supply")
	}

	mv.SupplyID = s.ID
	mv.QuantityBefore = before
	mv.QuantityAfter = after
	if err := tx.Create(mv).Error; err != nil {
		return translate(err, "stock movement")
	}
	s.QuantityOnHand = after
	return nil
}
