package models

import (
	"time"
)

// MaterialLocation represents the placement of a material in a tray/location.
// A cleared record keeps its location identity but has an empty material ID.
type MaterialLocation struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	MaterialID  *string   `json:"material_id" gorm:"column:material_id"`
	TrayNumber  *string   `json:"tray_number" gorm:"column:tray_number"`
	ProcessID   *string   `json:"process_id" gorm:"column:process_id"`
	TaskID      *string   `json:"task_id" gorm:"column:task_id"`
	StatusNotes *string   `json:"status_notes" gorm:"column:status_notes"`
	Timestamp   time.Time `json:"timestamp" gorm:"column:timestamp;not null"`
}

// TableName overrides the gorm table name
func (MaterialLocation) TableName() string {
	return "material_locations"
}
