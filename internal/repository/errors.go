package repository

import "errors"

// ErrNotFound is returned when a referenced location record, or a
// material+tray combination, does not exist
var ErrNotFound = errors.New("record not found")
