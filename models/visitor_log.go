package models

import "time"

// VisitorLog holds one row per UTC calendar day. Date is the day
// truncated to midnight UTC; the unique index makes it the upsert key.
// Count only ever grows.
type VisitorLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"uniqueIndex;not null" json:"date"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
