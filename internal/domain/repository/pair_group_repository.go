// Package repository defines the storage contracts of the domain
package repository

import (
	"context"
	"errors"

	"github.com/damon-houk/pair-group-store/internal/domain/entity"
)

var (
	// ErrPairGroupNotFound is returned when a pair group record does not exist
	ErrPairGroupNotFound = errors.New("pair group does not exist")

	// ErrPairGroupExists is returned when creating a pair group whose record already exists
	ErrPairGroupExists = errors.New("pair group already exists")

	// ErrPairNotFound is returned when a group does not contain the requested pair
	ErrPairNotFound = errors.New("pair not found in pair group")
)

// PairGroupRepository defines the interface for pair group storage.
// Implementations provide no locking; concurrent callers may observe
// intermediate states.
type PairGroupRepository interface {
	// FetchPairGroups returns every stored pair group with its pairs hydrated.
	// The order is backend-defined.
	FetchPairGroups(ctx context.Context) ([]entity.PairGroup, error)

	// UpdatePairGroup overwrites an existing pair group and every pair it contains
	UpdatePairGroup(ctx context.Context, group *entity.PairGroup) error

	// CreatePairGroup stores a pair group that does not exist yet
	CreatePairGroup(ctx context.Context, group *entity.PairGroup) error

	// DeletePairGroup removes a pair group record, leaving its pairs in place
	DeletePairGroup(ctx context.Context, id string) error
}
