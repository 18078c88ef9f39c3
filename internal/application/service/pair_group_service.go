// Package service contains the pair group use cases
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/damon-houk/pair-group-store/internal/domain/entity"
	"github.com/damon-houk/pair-group-store/internal/domain/repository"
	"github.com/damon-houk/pair-group-store/internal/infrastructure/logger"
	"github.com/google/uuid"
)

// ErrInvalidPair is returned when a new pair is missing required fields
var ErrInvalidPair = errors.New("invalid pair")

// PairGroupService handles business logic for pair groups. Every mutation is a
// read-modify-write through the repository; concurrent calls on the same
// group are last-write-wins.
type PairGroupService struct {
	repo   repository.PairGroupRepository
	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

// NewPairGroupService creates a new pair group service
func NewPairGroupService(repo repository.PairGroupRepository, log logger.Logger) *PairGroupService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &PairGroupService{
		repo:   repo,
		logger: log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (s *PairGroupService) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// ListPairGroups returns all pair groups, pinned first, then oldest first
func (s *PairGroupService) ListPairGroups(ctx context.Context) ([]entity.PairGroup, error) {
	groups, err := s.repo.FetchPairGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pair groups: %w", err)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})

	return groups, nil
}

// GetPairGroup returns a single pair group by id
func (s *PairGroupService) GetPairGroup(ctx context.Context, id string) (*entity.PairGroup, error) {
	groups, err := s.repo.FetchPairGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pair groups: %w", err)
	}

	for i := range groups {
		if groups[i].ID == id {
			return &groups[i], nil
		}
	}

	return nil, fmt.Errorf("pair group %s: %w", id, repository.ErrPairGroupNotFound)
}

// CreatePairGroup creates an empty pair group
func (s *PairGroupService) CreatePairGroup(ctx context.Context, pinned bool) (*entity.PairGroup, error) {
	ts := s.timestamp()
	group := &entity.PairGroup{
		ID:        s.newID(),
		IsPinned:  pinned,
		Pairs:     []entity.Pair{},
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	if err := s.repo.CreatePairGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create pair group: %w", err)
	}

	s.logger.Info("Pair group created", map[string]interface{}{
		"id":        group.ID,
		"is_pinned": pinned,
	})

	return group, nil
}

// SetPinned changes the pin state of a pair group
func (s *PairGroupService) SetPinned(ctx context.Context, id string, pinned bool) (*entity.PairGroup, error) {
	return s.modify(ctx, id, func(group *entity.PairGroup, ts string) error {
		group.IsPinned = pinned
		return nil
	})
}

// AddPair appends a new pair to a pair group
func (s *PairGroupService) AddPair(ctx context.Context, groupID, base, comparison string, value float64) (*entity.Pair, error) {
	var added entity.Pair

	_, err := s.modify(ctx, groupID, func(group *entity.PairGroup, ts string) error {
		added = entity.Pair{
			ID:         s.newID(),
			Base:       base,
			Comparison: comparison,
			Value:      value,
			CreatedAt:  ts,
			UpdatedAt:  ts,
		}
		if err := added.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPair, err)
		}
		group.Pairs = append(group.Pairs, added)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &added, nil
}

// UpdatePairValue sets the value of one pair in a group
func (s *PairGroupService) UpdatePairValue(ctx context.Context, groupID, pairID string, value float64) (*entity.Pair, error) {
	var updated entity.Pair

	_, err := s.modify(ctx, groupID, func(group *entity.PairGroup, ts string) error {
		i := group.PairIndex(pairID)
		if i < 0 {
			return fmt.Errorf("pair %s: %w", pairID, repository.ErrPairNotFound)
		}
		group.Pairs[i].Value = value
		group.Pairs[i].UpdatedAt = ts
		updated = group.Pairs[i]
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// RemovePair drops a pair from a group. The pair record itself is kept.
func (s *PairGroupService) RemovePair(ctx context.Context, groupID, pairID string) error {
	_, err := s.modify(ctx, groupID, func(group *entity.PairGroup, ts string) error {
		i := group.PairIndex(pairID)
		if i < 0 {
			return fmt.Errorf("pair %s: %w", pairID, repository.ErrPairNotFound)
		}
		group.Pairs = append(group.Pairs[:i], group.Pairs[i+1:]...)
		return nil
	})
	return err
}

// DeletePairGroup removes a pair group
func (s *PairGroupService) DeletePairGroup(ctx context.Context, id string) error {
	if err := s.repo.DeletePairGroup(ctx, id); err != nil {
		return fmt.Errorf("failed to delete pair group: %w", err)
	}

	s.logger.Info("Pair group deleted", map[string]interface{}{
		"id": id,
	})

	return nil
}

// modify loads a group, applies change and writes it back
func (s *PairGroupService) modify(ctx context.Context, id string, change func(group *entity.PairGroup, ts string) error) (*entity.PairGroup, error) {
	group, err := s.GetPairGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	ts := s.timestamp()
	if err := change(group, ts); err != nil {
		return nil, err
	}
	group.UpdatedAt = ts

	if err := s.repo.UpdatePairGroup(ctx, group); err != nil {
		s.logger.Error("Failed to update pair group", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to update pair group: %w", err)
	}

	s.logger.Info("Pair group updated", map[string]interface{}{
		"id":    id,
		"pairs": len(group.Pairs),
	})

	return group, nil
}
