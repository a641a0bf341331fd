package model

import "time"

// PrizeEntry is one wedge of the wheel. Its position in the catalog defines its
// angular position, so catalogs must keep a stable order.
type PrizeEntry struct {
	Code            string `json:"code" yaml:"code" validate:"required,notblank,max=32"`
	DiscountLabel   string `json:"discount_label" yaml:"discount_label" validate:"required,notblank,max=64"`
	Color           string `json:"color" yaml:"color" validate:"required,notblank"`
	BackgroundColor string `json:"background_color" yaml:"background_color" validate:"required,notblank"`
}

// Award is a settled spin recorded in the award ledger.
type Award struct {
	ID              int64     `json:"id"`
	SessionID       string    `json:"session_id"`
	UserName        string    `json:"user_name"`
	Code            string    `json:"code"`
	DiscountLabel   string    `json:"discount_label"`
	RotationDegrees float64   `json:"rotation_degrees"`
	CreatedAt       time.Time `json:"created_at"`
}

// AwardCount is the number of times a code has been won.
type AwardCount struct {
	Code  string `json:"code"`
	Count int64  `json:"count"`
}
