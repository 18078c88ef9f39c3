package db

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/damon-houk/pair-group-store/internal/domain/entity"
	"github.com/damon-houk/pair-group-store/internal/domain/repository"
	"github.com/damon-houk/pair-group-store/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logger.Logger {
	return logger.NewJSONLogger(&bytes.Buffer{}, logger.ErrorLevel)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func examplePairs() []entity.Pair {
	return []entity.Pair{
		{ID: "p1", Base: "USD", Comparison: "BTC", Value: 1.0, CreatedAt: now(), UpdatedAt: now()},
		{ID: "p2", Base: "USD", Comparison: "ETH", Value: 2.0, CreatedAt: now(), UpdatedAt: now()},
		{ID: "p3", Base: "USD", Comparison: "BRL", Value: 3.0, CreatedAt: now(), UpdatedAt: now()},
	}
}

func exampleGroups() []entity.PairGroup {
	pairs := examplePairs()
	return []entity.PairGroup{
		{
			ID:        "pg1",
			IsPinned:  true,
			Pairs:     []entity.Pair{pairs[0], pairs[1]},
			CreatedAt: now(),
			UpdatedAt: now(),
		},
		{
			ID:        "pg2",
			IsPinned:  false,
			Pairs:     []entity.Pair{pairs[2]},
			CreatedAt: now(),
			UpdatedAt: now(),
		},
	}
}

func findGroup(groups []entity.PairGroup, id string) *entity.PairGroup {
	for i := range groups {
		if groups[i].ID == id {
			return &groups[i]
		}
	}
	return nil
}

// runRepositoryContract checks the behaviour every backend shares
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) repository.PairGroupRepository) {
	ctx := context.Background()

	t.Run("Empty store", func(t *testing.T) {
		repo := newRepo(t)

		groups, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		assert.NotNil(t, groups)
		assert.Empty(t, groups)
	})

	t.Run("Example scenario", func(t *testing.T) {
		repo := newRepo(t)
		expected := exampleGroups()
		for i := range expected {
			require.NoError(t, repo.CreatePairGroup(ctx, &expected[i]))
		}

		groups, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		assert.Len(t, groups, 2)
		assert.ElementsMatch(t, expected, groups)
	})

	t.Run("Round trip", func(t *testing.T) {
		repo := newRepo(t)
		// pair records are shared by id, so every case draws from one set
		pairs := examplePairs()
		pairs[1].Value = 0.000123456789

		cases := []entity.PairGroup{
			{ID: "empty", IsPinned: true, Pairs: []entity.Pair{}, CreatedAt: now(), UpdatedAt: now()},
			{ID: "single", Pairs: pairs[:1], CreatedAt: now(), UpdatedAt: now()},
			{ID: "many", Pairs: pairs, CreatedAt: now(), UpdatedAt: now()},
		}

		for i := range cases {
			require.NoError(t, repo.CreatePairGroup(ctx, &cases[i]))
		}

		groups, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		for _, want := range cases {
			got := findGroup(groups, want.ID)
			require.NotNil(t, got, "group %s missing", want.ID)
			assert.Equal(t, want, *got)
		}
	})

	t.Run("Nil pairs", func(t *testing.T) {
		repo := newRepo(t)
		group := entity.PairGroup{ID: "bare", CreatedAt: now(), UpdatedAt: now()}
		require.NoError(t, repo.CreatePairGroup(ctx, &group))

		groups, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.NotNil(t, groups[0].Pairs)
		assert.Empty(t, groups[0].Pairs)
	})

	t.Run("Count", func(t *testing.T) {
		repo := newRepo(t)
		const n = 25
		for i := 0; i < n; i++ {
			group := entity.PairGroup{
				ID:        "group-" + string(rune('a'+i)),
				Pairs:     examplePairs()[:i%3],
				CreatedAt: now(),
				UpdatedAt: now(),
			}
			require.NoError(t, repo.CreatePairGroup(ctx, &group))
		}

		groups, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		assert.Len(t, groups, n)
	})

	t.Run("Update replaces", func(t *testing.T) {
		repo := newRepo(t)
		pairs := examplePairs()

		original := entity.PairGroup{
			ID:        "pg1",
			IsPinned:  false,
			Pairs:     []entity.Pair{pairs[0], pairs[1]},
			CreatedAt: now(),
			UpdatedAt: now(),
		}
		require.NoError(t, repo.CreatePairGroup(ctx, &original))

		updated := entity.PairGroup{
			ID:        "pg1",
			IsPinned:  true,
			Pairs:     []entity.Pair{pairs[0], pairs[1], pairs[2]},
			CreatedAt: original.CreatedAt,
			UpdatedAt: now(),
		}
		require.NoError(t, repo.UpdatePairGroup(ctx, &updated))

		groups, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, updated, groups[0])

		// removing a pair must not leave it in the group
		shrunk := updated
		shrunk.Pairs = []entity.Pair{pairs[2]}
		require.NoError(t, repo.UpdatePairGroup(ctx, &shrunk))

		groups, err = repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, shrunk, groups[0])
	})

	t.Run("Update requires existence", func(t *testing.T) {
		repo := newRepo(t)
		group := exampleGroups()[0]

		err := repo.UpdatePairGroup(ctx, &group)
		require.Error(t, err)
		assert.ErrorIs(t, err, repository.ErrPairGroupNotFound)
		assert.Contains(t, err.Error(), "does not exist")

		var storeErr *StoreError
		assert.ErrorAs(t, err, &storeErr)

		groups, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("Update requires existence before content", func(t *testing.T) {
		repo := newRepo(t)
		group := entity.PairGroup{
			ID: "nope",
			Pairs: []entity.Pair{
				{ID: "p1"},
				{ID: "../outside", Base: "USD", Comparison: "EUR"},
			},
		}

		err := repo.UpdatePairGroup(ctx, &group)
		assert.ErrorIs(t, err, repository.ErrPairGroupNotFound)
		assert.Contains(t, err.Error(), "does not exist")

		groups, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("Update as fetched", func(t *testing.T) {
		repo := newRepo(t)
		group := entity.PairGroup{
			ID: "sparse",
			Pairs: []entity.Pair{
				{ID: "blank", Value: 0.5},
				{ID: "half", Base: "USD"},
			},
		}
		require.NoError(t, repo.CreatePairGroup(ctx, &group))

		fetched, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		require.Len(t, fetched, 1)
		require.NoError(t, repo.UpdatePairGroup(ctx, &fetched[0]))

		again, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		assert.Equal(t, fetched, again)
		assert.Equal(t, group, again[0])
	})

	t.Run("Create refuses existing", func(t *testing.T) {
		repo := newRepo(t)
		group := exampleGroups()[0]
		require.NoError(t, repo.CreatePairGroup(ctx, &group))

		changed := group
		changed.IsPinned = !group.IsPinned
		err := repo.CreatePairGroup(ctx, &changed)
		assert.ErrorIs(t, err, repository.ErrPairGroupExists)

		groups, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, group, groups[0])
	})

	t.Run("Idempotent rewrite", func(t *testing.T) {
		repo := newRepo(t)
		group := exampleGroups()[0]
		require.NoError(t, repo.CreatePairGroup(ctx, &group))

		once, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)

		require.NoError(t, repo.UpdatePairGroup(ctx, &group))
		require.NoError(t, repo.UpdatePairGroup(ctx, &group))

		twice, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	})

	t.Run("Shared pair", func(t *testing.T) {
		repo := newRepo(t)
		groups := exampleGroups()
		groups[1].Pairs = append(groups[1].Pairs, groups[0].Pairs[0])
		for i := range groups {
			require.NoError(t, repo.CreatePairGroup(ctx, &groups[i]))
		}

		// a pair's content is owned by its own record, so the latest write wins
		groups[0].Pairs[0].Value = 42
		require.NoError(t, repo.UpdatePairGroup(ctx, &groups[0]))

		fetched, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		other := findGroup(fetched, "pg2")
		require.NotNil(t, other)
		assert.Equal(t, 42.0, other.Pairs[1].Value)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		groups := exampleGroups()
		for i := range groups {
			require.NoError(t, repo.CreatePairGroup(ctx, &groups[i]))
		}

		require.NoError(t, repo.DeletePairGroup(ctx, "pg1"))
		assert.ErrorIs(t, repo.DeletePairGroup(ctx, "pg1"), repository.ErrPairGroupNotFound)

		fetched, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		require.Len(t, fetched, 1)
		assert.Equal(t, "pg2", fetched[0].ID)

		// pairs of the deleted group are still usable
		recreated := groups[0]
		require.NoError(t, repo.CreatePairGroup(ctx, &recreated))
	})

	t.Run("Invalid group", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.CreatePairGroup(ctx, &entity.PairGroup{ID: "../escape"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid pair group")

		err = repo.UpdatePairGroup(ctx, nil)
		assert.Error(t, err)

		err = repo.CreatePairGroup(ctx, &entity.PairGroup{
			ID:    "pg1",
			Pairs: []entity.Pair{{ID: ".."}},
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid pair group pg1: pair 0")

		groups, err := repo.FetchPairGroups(ctx)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		repo := newRepo(t)
		group := exampleGroups()[0]

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := repo.CreatePairGroup(cancelled, &group)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
