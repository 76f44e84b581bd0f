package model

import "time"

// Supplier (proveedor) is a plain directory record; supplies and orders refer to it by name.
type Supplier struct {
	BaseModel
	Name         string    `gorm:"type:varchar(120);not null;index" json:"name"`
	Category     string    `gorm:"type:varchar(60);not null" json:"category"`
	Item         string    `gorm:"type:varchar(120)" json:"item"`
	Email        string    `gorm:"type:varchar(255);not null" json:"email"`
	Phone        string    `gorm:"type:varchar(30)" json:"phone"`
	Address      string    `gorm:"type:text;not null" json:"address"`
	Contact      string    `gorm:"type:varchar(120);not null" json:"contact"`
	RegisteredAt time.Time `gorm:"type:date" json:"registered_at"`
}

func (Supplier) TableName() string { return "suppliers" }
