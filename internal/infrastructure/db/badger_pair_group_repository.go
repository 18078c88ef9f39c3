package db

import (
	"context"
	"errors"

	"github.com/damon-houk/pair-group-store/internal/domain/entity"
	"github.com/damon-houk/pair-group-store/internal/domain/repository"
	"github.com/damon-houk/pair-group-store/internal/infrastructure/logger"
	"github.com/dgraph-io/badger/v3"
)

const (
	pairKeyPrefix      = "pair:"
	pairGroupKeyPrefix = "pair_group:"
)

// BadgerPairGroupRepository keeps the same record model as the file store in
// BadgerDB: one key per pair and one per group. Unlike the file store each
// write runs in a single badger transaction.
type BadgerPairGroupRepository struct {
	db     *badger.DB
	logger logger.Logger
}

// NewBadgerPairGroupRepository creates a new BadgerDB pair group repository
func NewBadgerPairGroupRepository(db *badger.DB, log logger.Logger) *BadgerPairGroupRepository {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &BadgerPairGroupRepository{
		db:     db,
		logger: log.WithField("component", "badger_repository"),
	}
}

func pairKey(id string) []byte {
	return []byte(pairKeyPrefix + id)
}

func pairGroupKey(id string) []byte {
	return []byte(pairGroupKeyPrefix + id)
}

// FetchPairGroups returns every pair group in key order
func (r *BadgerPairGroupRepository) FetchPairGroups(ctx context.Context) ([]entity.PairGroup, error) {
	groups := []entity.PairGroup{}

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(pairGroupKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return storeError("fetch pair groups interrupted", "", err)
			}

			item := it.Item()
			key := string(item.Key())

			data, err := item.ValueCopy(nil)
			if err != nil {
				return storeError("failed to read pair group record", key, err)
			}

			rec, err := decodePairGroupRecord(data, key)
			if err != nil {
				return err
			}

			group, err := rec.hydrate(func(id string) (entity.Pair, error) {
				return readBadgerPair(txn, id)
			})
			if err != nil {
				return err
			}
			groups = append(groups, group)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to fetch pair groups", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	return groups, nil
}

// UpdatePairGroup overwrites an existing pair group and its pairs atomically
func (r *BadgerPairGroupRepository) UpdatePairGroup(ctx context.Context, group *entity.PairGroup) error {
	if err := checkGroup(group); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return storeError("update pair group interrupted", group.ID, err)
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		key := pairGroupKey(group.ID)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storeError("failed to update pair group", string(key), repository.ErrPairGroupNotFound)
			}
			return storeError("failed to read pair group record", string(key), err)
		}
		if err := group.ValidatePairIDs(); err != nil {
			return storeError("invalid pair group", group.ID, err)
		}
		return setBadgerPairGroup(txn, group)
	})
	if err != nil {
		return err
	}

	r.logger.Info("Pair group updated", map[string]interface{}{
		"id":    group.ID,
		"pairs": len(group.Pairs),
	})

	return nil
}

// CreatePairGroup stores a new pair group and its pairs atomically
func (r *BadgerPairGroupRepository) CreatePairGroup(ctx context.Context, group *entity.PairGroup) error {
	if err := checkGroup(group); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return storeError("create pair group interrupted", group.ID, err)
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		key := pairGroupKey(group.ID)
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return storeError("failed to create pair group", string(key), repository.ErrPairGroupExists)
		case !errors.Is(err, badger.ErrKeyNotFound):
			return storeError("failed to read pair group record", string(key), err)
		}
		if err := group.ValidatePairIDs(); err != nil {
			return storeError("invalid pair group", group.ID, err)
		}
		return setBadgerPairGroup(txn, group)
	})
	if err != nil {
		return err
	}

	r.logger.Info("Pair group created", map[string]interface{}{
		"id":    group.ID,
		"pairs": len(group.Pairs),
	})

	return nil
}

// DeletePairGroup removes the group key, leaving its pairs in place
func (r *BadgerPairGroupRepository) DeletePairGroup(ctx context.Context, id string) error {
	if err := entity.ValidateID(id); err != nil {
		return storeError("invalid pair group id", id, err)
	}
	if err := ctx.Err(); err != nil {
		return storeError("delete pair group interrupted", id, err)
	}

	return r.db.Update(func(txn *badger.Txn) error {
		key := pairGroupKey(id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storeError("failed to delete pair group", string(key), repository.ErrPairGroupNotFound)
			}
			return storeError("failed to read pair group record", string(key), err)
		}
		if err := txn.Delete(key); err != nil {
			return storeError("failed to delete pair group record", string(key), err)
		}
		return nil
	})
}

// checkGroup rejects a nil group or one whose id cannot be a key
func checkGroup(group *entity.PairGroup) error {
	if group == nil {
		return storeError("invalid pair group", "", errors.New("pair group is nil"))
	}
	if err := entity.ValidateID(group.ID); err != nil {
		return storeError("invalid pair group", group.ID, err)
	}
	return nil
}

func readBadgerPair(txn *badger.Txn, id string) (entity.Pair, error) {
	key := pairKey(id)

	item, err := txn.Get(key)
	if err != nil {
		return entity.Pair{}, storeError("failed to read pair record", string(key), err)
	}

	data, err := item.ValueCopy(nil)
	if err != nil {
		return entity.Pair{}, storeError("failed to read pair record", string(key), err)
	}

	rec, err := decodePairRecord(data, string(key))
	if err != nil {
		return entity.Pair{}, err
	}

	return rec.toEntity(), nil
}

func setBadgerPairGroup(txn *badger.Txn, group *entity.PairGroup) error {
	for i := range group.Pairs {
		rec := newPairRecord(&group.Pairs[i])
		key := pairKey(rec.ID)

		data, err := encodeRecord("pair", string(key), rec)
		if err != nil {
			return err
		}
		if err := txn.Set(key, data); err != nil {
			return storeError("failed to write pair record", string(key), err)
		}
	}

	key := pairGroupKey(group.ID)
	data, err := encodeRecord("pair group", string(key), newPairGroupRecord(group))
	if err != nil {
		return err
	}
	if err := txn.Set(key, data); err != nil {
		return storeError("failed to write pair group record", string(key), err)
	}

	return nil
}
