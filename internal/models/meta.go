package models

import (
	"strings"

	"gorm.io/datatypes"
)

type ProductMeta struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ProductID uint           `json:"product_id" gorm:"index;not null"`
	Key       string         `json:"key" gorm:"column:meta_key;size:255;index;not null"`
	Value     datatypes.JSON `json:"value" gorm:"column:meta_value"`
}

func (ProductMeta) TableName() string {
	return "product_meta"
}

// IsProtected reports whether the key is internal and hidden from public output.
func (m *ProductMeta) IsProtected() bool {
	return strings.HasPrefix(m.Key, "_")
}
