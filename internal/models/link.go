package models

import "sort"

// Link kinds.
const (
	LinkUpsell    = "upsell"
	LinkCrossSell = "cross_sell"
	LinkGrouped   = "grouped"
)

type ProductLink struct {
	ProductID uint   `json:"product_id" gorm:"primaryKey;autoIncrement:false"`
	LinkedID  uint   `json:"linked_id" gorm:"primaryKey;autoIncrement:false;index"`
	Kind      string `json:"kind" gorm:"primaryKey;size:20"`
	Position  int    `json:"position"`
}

func sortedLinks(links []ProductLink) []ProductLink {
	out := append([]ProductLink(nil), links...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
