package entity

import "fmt"

// PairGroup is a named, pinnable collection of pairs
type PairGroup struct {
	ID        string `json:"id"`
	IsPinned  bool   `json:"is_pinned"`
	Pairs     []Pair `json:"pairs"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ValidatePairIDs checks that every member pair id can be used as a record
// key. Pair content is not checked.
func (g *PairGroup) ValidatePairIDs() error {
	for i := range g.Pairs {
		if err := ValidateID(g.Pairs[i].ID); err != nil {
			return fmt.Errorf("pair %d: %w", i, err)
		}
	}

	return nil
}

// PairIndex returns the position of the pair with the given id, or -1
func (g *PairGroup) PairIndex(pairID string) int {
	for i := range g.Pairs {
		if g.Pairs[i].ID == pairID {
			return i
		}
	}
	return -1
}
