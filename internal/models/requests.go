package models

// LocationCreate is the payload for creating a location record.
// Every field is optional; unset fields are stored as NULL.
type LocationCreate struct {
	MaterialID  *string `json:"material_id"`
	TrayNumber  *string `json:"tray_number"`
	ProcessID   *string `json:"process_id"`
	TaskID      *string `json:"task_id"`
	StatusNotes *string `json:"status_notes"`
}

// LocationUpdate is a sparse update payload. Only keys present in the
// request body count as set; everything else is left untouched in storage.
type LocationUpdate struct {
	MaterialID  OptString `json:"material_id"`
	TrayNumber  OptString `json:"tray_number"`
	ProcessID   OptString `json:"process_id"`
	TaskID      OptString `json:"task_id"`
	StatusNotes OptString `json:"status_notes"`
}

// Fields returns the explicitly-set fields as a column-to-value map.
// Explicit nulls map to a nil value. An empty map means a no-op update.
func (u *LocationUpdate) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	collect := func(column string, o OptString) {
		if !o.Set {
			return
		}
		if !o.Valid {
			fields[column] = nil
			return
		}
		fields[column] = o.Value
	}
	collect("material_id", u.MaterialID)
	collect("tray_number", u.TrayNumber)
	collect("process_id", u.ProcessID)
	collect("task_id", u.TaskID)
	collect("status_notes", u.StatusNotes)
	return fields
}

// BatchUpdateItem pairs a location ID with its sparse update payload
type BatchUpdateItem struct {
	LocationID int64          `json:"location_id"`
	Data       LocationUpdate `json:"data"`
}

// BatchUpdateRequest is the payload for the batch update endpoint
type BatchUpdateRequest struct {
	Updates []BatchUpdateItem `json:"updates"`
}

// ClearLocationRequest is the payload for clearing a single location by ID
type ClearLocationRequest struct {
	LocationID int64 `json:"location_id" binding:"required"`
}

// BatchClearRequest is the payload for the batch clear endpoint
type BatchClearRequest struct {
	LocationIDs []int64 `json:"location_ids"`
}

// ClearByMaterialTrayRequest clears the record matching both criteria.
// Both are required; a clear-by-criteria call with a missing criterion is
// rejected before touching storage.
type ClearByMaterialTrayRequest struct {
	MaterialID string `json:"material_id" binding:"required"`
	TrayNumber string `json:"tray_number" binding:"required"`
}
