// Package catalog loads and validates the prize catalog shown on the wheel.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/spin-wheel-promo/internal/model"
	"github.com/fairyhunter13/spin-wheel-promo/internal/validator"
)

var (
	// ErrEmptyCatalog is returned when a catalog has no entries.
	ErrEmptyCatalog = errors.New("catalog has no prizes")

	// ErrDuplicateCode is returned when two entries share a code.
	ErrDuplicateCode = errors.New("duplicate prize code")

	// ErrInvalidEntry is returned when an entry is missing a field.
	ErrInvalidEntry = errors.New("invalid prize entry")
)

// Default returns the stock eight-prize catalog.
func Default() []model.PrizeEntry {
	return []model.PrizeEntry{
		{Code: "BIRYANI10", DiscountLabel: "10% OFF", Color: "#ef4444", BackgroundColor: "#fef2f2"},
		{Code: "SPICE20", DiscountLabel: "20% OFF", Color: "#3b82f6", BackgroundColor: "#eff6ff"},
		{Code: "FLAVOR15", DiscountLabel: "15% OFF", Color: "#10b981", BackgroundColor: "#f0fdf4"},
		{Code: "MASALA25", DiscountLabel: "25% OFF", Color: "#8b5cf6", BackgroundColor: "#faf5ff"},
		{Code: "RICE30", DiscountLabel: "30% OFF", Color: "#f59e0b", BackgroundColor: "#fffbeb"},
		{Code: "FEAST50", DiscountLabel: "50% OFF", Color: "#ec4899", BackgroundColor: "#fdf2f8"},
		{Code: "DELUX40", DiscountLabel: "40% OFF", Color: "#6366f1", BackgroundColor: "#eef2ff"},
		{Code: "TASTE35", DiscountLabel: "35% OFF", Color: "#f97316", BackgroundColor: "#fff7ed"},
	}
}

type file struct {
	Prizes []model.PrizeEntry `yaml:"prizes"`
}

// Load reads a YAML catalog from path. An empty path yields Default.
func Load(path string) ([]model.PrizeEntry, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) ([]model.PrizeEntry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := Validate(f.Prizes); err != nil {
		return nil, err
	}
	return f.Prizes, nil
}

// Validate checks that entries is non-empty, complete, and free of duplicate codes.
// Codes are compared case-insensitively.
func Validate(entries []model.PrizeEntry) error {
	if len(entries) == 0 {
		return ErrEmptyCatalog
	}
	v := validator.New()
	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		if err := v.Struct(e); err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrInvalidEntry, i, err)
		}
		key := strings.ToUpper(strings.TrimSpace(e.Code))
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s at entries %d and %d", ErrDuplicateCode, e.Code, prev, i)
		}
		seen[key] = i
	}
	return nil
}
