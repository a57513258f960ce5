package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/daleelapp/daleel-server/internal/domain"
)

// Key prefix for category tree documents. The key suffix is the root's
// slug, so slug collisions surface as key collisions at creation time.
const categoryPrefix = "category:"

// Category errors.
var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("category already exists")
	// ErrCategoryConflict is returned when a write-back carries a stale
	// version: the document changed since it was read.
	ErrCategoryConflict = errors.New("category modified concurrently")
)

// CreateCategory creates a new root category document.
// The category's Version is set to 1 on success.
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(categoryPrefix + c.ID)
	c.Version = 1

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrDuplicateCategory
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check category exists: %w", err)
		}

		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal category: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("category created", "id", c.ID, "name", c.Name)
	}
	return nil
}

// GetCategory retrieves a root category document by slug.
func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var c domain.Category
	if err := s.get([]byte(categoryPrefix+id), &c); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &c, nil
}

// ListCategories returns all root category documents sorted by name.
func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var categories []*domain.Category

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(categoryPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var c domain.Category
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			})
			if err != nil {
				return fmt.Errorf("unmarshal category: %w", err)
			}
			categories = append(categories, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})

	return categories, nil
}

// UpdateCategory writes back a category document read earlier.
//
// The whole document is the unit of consistency: there is no sub-document
// locking, so the write-back carries the Version observed at read time and
// is rejected with ErrCategoryConflict if the stored version differs. On
// success the stored Version is incremented, and c is updated to match so
// the caller can chain further writes.
func (s *Store) UpdateCategory(ctx context.Context, c *domain.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(categoryPrefix + c.ID)

	updated := *c
	updated.Version++
	updated.Touch()

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrCategoryNotFound
		}
		if err != nil {
			return fmt.Errorf("get category: %w", err)
		}

		var current domain.Category
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &current)
		}); err != nil {
			return fmt.Errorf("unmarshal category: %w", err)
		}

		if current.Version != c.Version {
			return ErrCategoryConflict
		}

		data, err := json.Marshal(&updated)
		if err != nil {
			return fmt.Errorf("marshal category: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	// Sync the caller's copy so a chained write-back carries the stored version.
	c.Version = updated.Version
	c.UpdatedAt = updated.UpdatedAt

	if s.logger != nil {
		s.logger.Debug("category updated", "id", c.ID, "version", c.Version)
	}
	return nil
}

// DeleteCategory removes the whole root document, subtree included.
// Business records referencing the root are untouched here; clearing their
// assignments is the sync engine's responsibility.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(categoryPrefix + id)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("check category exists: %w", err)
		}
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("category deleted", "id", id)
	}
	return nil
}
