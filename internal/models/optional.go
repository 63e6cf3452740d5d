package models

import (
	"encoding/json"
)

// OptString is a presence-tagged optional string for sparse update payloads.
// It distinguishes three states a plain *string cannot: key absent from the
// request (Set == false), key present with an explicit null (Set && !Valid),
// and key present with a value (Set && Valid).
type OptString struct {
	Set   bool
	Valid bool
	Value string
}

// NewOptString returns an OptString carrying the given value
func NewOptString(value string) OptString {
	return OptString{Set: true, Valid: true, Value: value}
}

// NullOptString returns an OptString carrying an explicit null
func NullOptString() OptString {
	return OptString{Set: true}
}

// UnmarshalJSON is only invoked for keys present in the payload, so Set is
// always true here; absent keys leave the zero value untouched.
func (o *OptString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Valid = false
		o.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler
func (o OptString) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr returns the value as a *string, nil for null or unset
func (o OptString) Ptr() *string {
	if !o.Set || !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}
