package models

import (
	"sort"
	"time"

	"gorm.io/datatypes"
)

type Image struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	Title     string            `json:"title"`
	Alt       string            `json:"alt"`
	URL       string            `json:"url" gorm:"not null"`
	Sources   datatypes.JSONMap `json:"sources"`
	CreatedAt time.Time         `json:"created_at"`
}

// Src returns the URL registered for size, falling back to the full size URL.
func (i *Image) Src(size string) string {
	if size != "full" {
		if src, ok := i.Sources[size].(string); ok && src != "" {
			return src
		}
	}
	return i.URL
}

type GalleryImage struct {
	ProductID uint `json:"product_id" gorm:"primaryKey;autoIncrement:false"`
	ImageID   uint `json:"image_id" gorm:"primaryKey;autoIncrement:false"`
	Position  int  `json:"position"`
}

func (GalleryImage) TableName() string {
	return "product_gallery"
}

func sortedGallery(gallery []GalleryImage) []GalleryImage {
	out := append([]GalleryImage(nil), gallery...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
