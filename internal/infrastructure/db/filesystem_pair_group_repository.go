// Package db contains the pair group storage backends
package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"unicode/utf8"

	"github.com/damon-houk/pair-group-store/internal/domain/entity"
	"github.com/damon-houk/pair-group-store/internal/domain/repository"
	"github.com/damon-houk/pair-group-store/internal/infrastructure/logger"
	"github.com/spf13/afero"
)

const (
	pairsDirName      = "pairs"
	pairGroupsDirName = "pair_groups"

	recordFileMode = 0o644
	dirMode        = 0o755
)

// FileSystemPairGroupRepository stores every pair and pair group as its own
// JSON file:
//
//	<root>/pairs/<pair-id>
//	<root>/pair_groups/<group-id>
//
// A group file lists member pair ids only. Writes truncate and rewrite files in
// place, pairs first and the group last, with no staging and no locking.
type FileSystemPairGroupRepository struct {
	fs     afero.Fs
	root   string
	logger logger.Logger
}

// NewFileSystemPairGroupRepository creates a repository rooted at root on fs
func NewFileSystemPairGroupRepository(fs afero.Fs, root string, log logger.Logger) *FileSystemPairGroupRepository {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &FileSystemPairGroupRepository{
		fs:     fs,
		root:   root,
		logger: log.WithField("component", "filesystem_repository"),
	}
}

// FetchPairGroups reads and hydrates every pair group under the root.
// Entries are returned in directory listing order.
func (r *FileSystemPairGroupRepository) FetchPairGroups(ctx context.Context) ([]entity.PairGroup, error) {
	dir := ensureDir(r.fs, r.root, pairGroupsDirName)

	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil, storeError("failed to read pair groups directory", dir, err)
	}

	groups := make([]entity.PairGroup, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, storeError("fetch pair groups interrupted", dir, err)
		}

		id := entry.Name()
		if !utf8.ValidString(id) {
			r.logger.Warn("Skipping pair group file with non UTF-8 name", map[string]interface{}{
				"name": fmt.Sprintf("%q", id),
			})
			continue
		}

		group, err := r.readPairGroup(id)
		if err != nil {
			r.logger.Error("Failed to read pair group", map[string]interface{}{
				"id":    id,
				"error": err.Error(),
			})
			return nil, err
		}
		groups = append(groups, group)
	}

	r.logger.Debug("Fetched pair groups", map[string]interface{}{
		"count": len(groups),
	})

	return groups, nil
}

// UpdatePairGroup overwrites an existing pair group. The group record must
// already exist; nothing is written otherwise. Pair content is stored as given,
// only ids are checked since they become file names.
func (r *FileSystemPairGroupRepository) UpdatePairGroup(ctx context.Context, group *entity.PairGroup) error {
	path, err := r.checkedGroupPath(group)
	if err != nil {
		return err
	}

	exists, err := afero.Exists(r.fs, path)
	if err != nil {
		return storeError("failed to check pair group record", path, err)
	}
	if !exists {
		return storeError("failed to update pair group", path, repository.ErrPairGroupNotFound)
	}
	if err := group.ValidatePairIDs(); err != nil {
		return storeError("invalid pair group", group.ID, err)
	}

	if err := r.writePairGroup(ctx, group); err != nil {
		return err
	}

	r.logger.Info("Pair group updated", map[string]interface{}{
		"id":    group.ID,
		"pairs": len(group.Pairs),
	})

	return nil
}

// CreatePairGroup writes a pair group whose record does not exist yet
func (r *FileSystemPairGroupRepository) CreatePairGroup(ctx context.Context, group *entity.PairGroup) error {
	path, err := r.checkedGroupPath(group)
	if err != nil {
		return err
	}

	exists, err := afero.Exists(r.fs, path)
	if err != nil {
		return storeError("failed to check pair group record", path, err)
	}
	if exists {
		return storeError("failed to create pair group", path, repository.ErrPairGroupExists)
	}
	if err := group.ValidatePairIDs(); err != nil {
		return storeError("invalid pair group", group.ID, err)
	}

	if err := r.writePairGroup(ctx, group); err != nil {
		return err
	}

	r.logger.Info("Pair group created", map[string]interface{}{
		"id":    group.ID,
		"pairs": len(group.Pairs),
	})

	return nil
}

// DeletePairGroup removes the group record. Pair files stay, other groups may
// still reference them.
func (r *FileSystemPairGroupRepository) DeletePairGroup(ctx context.Context, id string) error {
	if err := entity.ValidateID(id); err != nil {
		return storeError("invalid pair group id", id, err)
	}

	path := filepath.Join(ensureDir(r.fs, r.root, pairGroupsDirName), id)

	exists, err := afero.Exists(r.fs, path)
	if err != nil {
		return storeError("failed to check pair group record", path, err)
	}
	if !exists {
		return storeError("failed to delete pair group", path, repository.ErrPairGroupNotFound)
	}

	if err := ctx.Err(); err != nil {
		return storeError("delete pair group interrupted", path, err)
	}

	if err := r.fs.Remove(path); err != nil {
		return storeError("failed to remove pair group record", path, err)
	}

	r.logger.Info("Pair group deleted", map[string]interface{}{
		"id": id,
	})

	return nil
}

// checkedGroupPath returns the record path of group after checking its id
func (r *FileSystemPairGroupRepository) checkedGroupPath(group *entity.PairGroup) (string, error) {
	if group == nil {
		return "", storeError("invalid pair group", "", errors.New("pair group is nil"))
	}
	if err := entity.ValidateID(group.ID); err != nil {
		return "", storeError("invalid pair group", group.ID, err)
	}

	return filepath.Join(ensureDir(r.fs, r.root, pairGroupsDirName), group.ID), nil
}

func (r *FileSystemPairGroupRepository) readPairGroup(id string) (entity.PairGroup, error) {
	path := filepath.Join(ensureDir(r.fs, r.root, pairGroupsDirName), id)

	data, err := r.readFile(path, "pair group")
	if err != nil {
		return entity.PairGroup{}, err
	}

	rec, err := decodePairGroupRecord(data, path)
	if err != nil {
		return entity.PairGroup{}, err
	}

	return rec.hydrate(r.readPair)
}

func (r *FileSystemPairGroupRepository) readPair(id string) (entity.Pair, error) {
	path := filepath.Join(ensureDir(r.fs, r.root, pairsDirName), id)

	data, err := r.readFile(path, "pair")
	if err != nil {
		return entity.Pair{}, err
	}

	rec, err := decodePairRecord(data, path)
	if err != nil {
		return entity.Pair{}, err
	}

	return rec.toEntity(), nil
}

func (r *FileSystemPairGroupRepository) readFile(path, kind string) ([]byte, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return nil, storeError("failed to open "+kind+" record", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, storeError("failed to read "+kind+" record", path, err)
	}

	return data, nil
}

// writePairGroup writes every member pair, then the group record
func (r *FileSystemPairGroupRepository) writePairGroup(ctx context.Context, group *entity.PairGroup) error {
	pairsDir := ensureDir(r.fs, r.root, pairsDirName)
	for i := range group.Pairs {
		rec := newPairRecord(&group.Pairs[i])
		if err := r.writeRecord(ctx, filepath.Join(pairsDir, rec.ID), "pair", rec); err != nil {
			return err
		}
	}

	path := filepath.Join(ensureDir(r.fs, r.root, pairGroupsDirName), group.ID)
	return r.writeRecord(ctx, path, "pair group", newPairGroupRecord(group))
}

func (r *FileSystemPairGroupRepository) writeRecord(ctx context.Context, path, kind string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return storeError("write "+kind+" record interrupted", path, err)
	}

	data, err := encodeRecord(kind, path, v)
	if err != nil {
		return err
	}

	if err := afero.WriteFile(r.fs, path, data, recordFileMode); err != nil {
		return storeError("failed to write "+kind+" record", path, err)
	}

	return nil
}

// ensureDir returns root/name, creating it and any missing parents. A data
// directory that cannot be created is an environment fault, not a recoverable
// error, so this panics.
func ensureDir(fs afero.Fs, root, name string) string {
	dir := filepath.Join(root, name)
	if err := fs.MkdirAll(dir, dirMode); err != nil {
		panic(fmt.Sprintf("could not create database directory %s: %v", dir, err))
	}
	return dir
}
