package models

import "time"

type Review struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ProductID     uint      `json:"product_id" gorm:"index;not null"`
	Reviewer      string    `json:"reviewer"`
	ReviewerEmail string    `json:"reviewer_email"`
	Content       string    `json:"review" gorm:"type:text"`
	Rating        int       `json:"rating"`
	Verified      bool      `json:"verified"`
	Status        string    `json:"status" gorm:"size:20;index;default:approved"`
	CreatedAt     time.Time `json:"date_created"`
}
