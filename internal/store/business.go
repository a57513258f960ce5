package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/daleelapp/daleel-server/internal/domain"
)

// Key prefixes for business records. Each record lives under businessPrefix
// keyed by id; a second, empty-valued key under businessCategoryIdx encodes
// its taxonomy assignment so category listings are a prefix scan instead of
// a full table walk. Slugs are lowercase alphanumerics and hyphens and ids
// are nanoids, so ':' is safe as a separator.
const (
	businessPrefix      = "business:"
	businessCategoryIdx = "idx:business:category:"
)

// Business errors.
var (
	ErrBusinessNotFound  = errors.New("business not found")
	ErrDuplicateBusiness = errors.New("business already exists")
)

func businessCategoryKey(b *domain.Business) []byte {
	return []byte(businessCategoryIdx + b.CategoryID + ":" + b.SubcategoryID + ":" + b.ID)
}

// CreateBusiness creates a new business record and its category index entry.
func (s *Store) CreateBusiness(ctx context.Context, b *domain.Business) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(businessPrefix + b.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrDuplicateBusiness
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check business exists: %w", err)
		}

		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("marshal business: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		if b.CategoryID != "" {
			return txn.Set(businessCategoryKey(b), nil)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("business created", "id", b.ID, "name", b.Name)
	}
	return nil
}

// GetBusiness retrieves a business record by id.
func (s *Store) GetBusiness(ctx context.Context, id string) (*domain.Business, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b domain.Business
	if err := s.get([]byte(businessPrefix+id), &b); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("get business: %w", err)
	}

	return &b, nil
}

// BusinessExists reports whether a business record with the given id exists.
func (s *Store) BusinessExists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.exists([]byte(businessPrefix + id))
}

// UpdateBusiness writes back a business record. The category index entry is
// rewritten in the same transaction when the assignment changed, so a crash
// never leaves the index pointing at a stale assignment.
func (s *Store) UpdateBusiness(ctx context.Context, b *domain.Business) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(businessPrefix + b.ID)
	b.Touch()

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBusinessNotFound
		}
		if err != nil {
			return fmt.Errorf("get business: %w", err)
		}

		var old domain.Business
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &old)
		}); err != nil {
			return fmt.Errorf("unmarshal business: %w", err)
		}

		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("marshal business: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}

		if old.CategoryID != b.CategoryID || old.SubcategoryID != b.SubcategoryID {
			if old.CategoryID != "" {
				if err := txn.Delete(businessCategoryKey(&old)); err != nil {
					return err
				}
			}
			if b.CategoryID != "" {
				return txn.Set(businessCategoryKey(b), nil)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Debug("business updated", "id", b.ID)
	}
	return nil
}

// DeleteBusiness removes a business record and its category index entry.
func (s *Store) DeleteBusiness(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(businessPrefix + id)

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBusinessNotFound
		}
		if err != nil {
			return fmt.Errorf("get business: %w", err)
		}

		var b domain.Business
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &b)
		}); err != nil {
			return fmt.Errorf("unmarshal business: %w", err)
		}

		if err := txn.Delete(key); err != nil {
			return err
		}
		if b.CategoryID != "" {
			return txn.Delete(businessCategoryKey(&b))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("business deleted", "id", id)
	}
	return nil
}

// ListBusinesses returns all business records sorted by name.
func (s *Store) ListBusinesses(ctx context.Context) ([]*domain.Business, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var businesses []*domain.Business

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(businessPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var b domain.Business
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &b)
			})
			if err != nil {
				return fmt.Errorf("unmarshal business: %w", err)
			}
			businesses = append(businesses, &b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(businesses, func(i, j int) bool {
		return businesses[i].Name < businesses[j].Name
	})

	return businesses, nil
}

// ListBusinessesByCategory returns the records assigned to a root category,
// narrowed to one subcategory when subID is non-empty. With an empty subID
// the scan covers the whole root, root-only assignments included.
func (s *Store) ListBusinessesByCategory(ctx context.Context, rootID, subID string) ([]*domain.Business, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := businessCategoryIdx + rootID + ":"
	if subID != "" {
		prefix += subID + ":"
	}

	var ids []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			k := string(it.Item().Key())
			ids = append(ids, k[strings.LastIndexByte(k, ':')+1:])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	businesses := make([]*domain.Business, 0, len(ids))
	for _, id := range ids {
		b, err := s.GetBusiness(ctx, id)
		if err != nil {
			// The index is advisory; a record deleted between the scan
			// and the read is not an error.
			if errors.Is(err, ErrBusinessNotFound) {
				continue
			}
			return nil, err
		}
		businesses = append(businesses, b)
	}

	sort.Slice(businesses, func(i, j int) bool {
		return businesses[i].Name < businesses[j].Name
	})

	return businesses, nil
}
