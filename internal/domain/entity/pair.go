package entity

import (
	"errors"
	"strings"
)

// Pair is a single tracked value, e.g. the price of one currency in another
type Pair struct {
	ID         string  `json:"id"`
	Base       string  `json:"base"`
	Comparison string  `json:"comparison"`
	Value      float64 `json:"value"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// Validate ensures the pair can be persisted
func (p *Pair) Validate() error {
	if err := ValidateID(p.ID); err != nil {
		return err
	}

	if strings.TrimSpace(p.Base) == "" {
		return errors.New("base must not be empty")
	}

	if strings.TrimSpace(p.Comparison) == "" {
		return errors.New("comparison must not be empty")
	}

	return nil
}

// ValidateID checks that id can be used as a single file name
func ValidateID(id string) error {
	switch {
	case id == "":
		return errors.New("id must not be empty")
	case id == "." || id == "..":
		return errors.New("id must not be a relative path element")
	case strings.ContainsAny(id, "/\\"):
		return errors.New("id must not contain path separators")
	}
	return nil
}
