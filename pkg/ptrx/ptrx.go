// Package ptrx converts between values, pointers and database nullable types.
package ptrx

import (
	"database/sql"
	"time"
)

// To returns a pointer to v
func To[T any](v T) *T {
	return &v
}

func String(v string) *string     { return &v }
func Float64(v float64) *float64 { return &v }
func Time(v time.Time) *time.Time { return &v }

// NonEmpty returns nil for the empty string
func NonEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// Value dereferences v, returning the zero value for nil
func Value[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// ValueOr dereferences v, returning def for nil
func ValueOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

func StringValue(v *string) string { return Value(v) }

// ============================================================================
// database/sql nullable types
// ============================================================================

func FromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func FromNullFloat64(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func FromNullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}

func ToNullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func ToNullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func ToNullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}
