package db

import (
	"encoding/json"
	"errors"

	"github.com/damon-houk/pair-group-store/internal/domain/entity"
)

// pairRecord is the stored form of a pair
type pairRecord struct {
	ID         string  `json:"id"`
	Base       string  `json:"base"`
	Comparison string  `json:"comparison"`
	Value      float64 `json:"value"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// pairGroupRecord is the stored form of a pair group. Pairs holds member pair
// ids in order; the pairs themselves live in their own records.
type pairGroupRecord struct {
	ID        string   `json:"id"`
	IsPinned  bool     `json:"is_pinned"`
	Pairs     []string `json:"pairs"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

var errMissingID = errors.New("record has no id")

func newPairRecord(p *entity.Pair) pairRecord {
	return pairRecord{
		ID:         p.ID,
		Base:       p.Base,
		Comparison: p.Comparison,
		Value:      p.Value,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (r pairRecord) toEntity() entity.Pair {
	return entity.Pair{
		ID:         r.ID,
		Base:       r.Base,
		Comparison: r.Comparison,
		Value:      r.Value,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// newPairGroupRecord dehydrates a group into its stored form
func newPairGroupRecord(g *entity.PairGroup) pairGroupRecord {
	ids := make([]string, 0, len(g.Pairs))
	for _, p := range g.Pairs {
		ids = append(ids, p.ID)
	}

	return pairGroupRecord{
		ID:        g.ID,
		IsPinned:  g.IsPinned,
		Pairs:     ids,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// hydrate rebuilds the group, loading every referenced pair in stored order.
// The first pair that cannot be loaded fails the whole group. Pairs is never
// nil, a group stored with nil or empty pairs comes back with an empty slice.
func (r pairGroupRecord) hydrate(loadPair func(id string) (entity.Pair, error)) (entity.PairGroup, error) {
	group := entity.PairGroup{
		ID:        r.ID,
		IsPinned:  r.IsPinned,
		Pairs:     make([]entity.Pair, 0, len(r.Pairs)),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	for _, id := range r.Pairs {
		pair, err := loadPair(id)
		if err != nil {
			return entity.PairGroup{}, err
		}
		group.Pairs = append(group.Pairs, pair)
	}

	return group, nil
}

func decodePairRecord(data []byte, path string) (pairRecord, error) {
	var rec pairRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, storeError("failed to decode pair record", path, err)
	}
	if rec.ID == "" {
		return rec, storeError("failed to decode pair record", path, errMissingID)
	}
	return rec, nil
}

func decodePairGroupRecord(data []byte, path string) (pairGroupRecord, error) {
	var rec pairGroupRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, storeError("failed to decode pair group record", path, err)
	}
	if rec.ID == "" {
		return rec, storeError("failed to decode pair group record", path, errMissingID)
	}
	return rec, nil
}

func encodeRecord(kind, path string, v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, storeError("failed to encode "+kind+" record", path, err)
	}
	return data, nil
}
