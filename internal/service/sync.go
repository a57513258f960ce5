package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/daleelapp/daleel-server/internal/domain"
	domainerrors "github.com/daleelapp/daleel-server/internal/errors"
	"github.com/daleelapp/daleel-server/internal/store"
)

// treeWriteRetries bounds the re-read loop when a compensating tree write
// loses a version race. Contention on a single root document is rare, so a
// handful of attempts is plenty.
const treeWriteRetries = 3

// SyncService keeps the denormalized category trees consistent with the
// business registry. The registry is the source of truth: every accepted
// business write is followed by a compensating leaf write here, and
// Reconcile can rebuild a whole root from the registry at any time.
//
// Compensating writes run after the registry write has already succeeded,
// so their failures never abort the triggering operation. They are logged
// as inconsistencies and repaired by an immediate reconcile attempt.
type SyncService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewSyncService creates a new sync service.
func NewSyncService(store *store.Store, logger *slog.Logger) *SyncService {
	return &SyncService{
		store:  store,
		logger: logger,
	}
}

// BusinessSaved mirrors a business create or update into the tree. old is
// the record before the write (nil on create), updated the record as stored.
// The leaf moves when the assignment changed, is refreshed in place when
// only name or logo changed, and disappears when the business lost its
// assignment.
func (s *SyncService) BusinessSaved(ctx context.Context, old, updated *domain.Business) {
	moved := old != nil && old.Categorized() &&
		(old.CategoryID != updated.CategoryID || old.SubcategoryID != updated.SubcategoryID)

	if moved || (old != nil && old.Categorized() && !updated.Categorized()) {
		s.removeLeaf(ctx, old.CategoryID, old.SubcategoryID, old.ID)
	}

	if updated.Categorized() {
		s.upsertLeaf(ctx, updated.CategoryID, updated.SubcategoryID, updated.Leaf())
	}
}

// BusinessDeleted removes the deleted record's leaf from the tree. Removal
// is idempotent: a leaf already gone (or a root already deleted) is not an
// error.
func (s *SyncService) BusinessDeleted(ctx context.Context, b *domain.Business) {
	if !b.Categorized() {
		return
	}
	s.removeLeaf(ctx, b.CategoryID, b.SubcategoryID, b.ID)
}

// SubcategoryRemoved clears the subcategory assignment on every business
// that referenced the removed node. The root assignment stays so the
// records remain findable under the root. Businesses are never deleted by
// tree edits.
func (s *SyncService) SubcategoryRemoved(ctx context.Context, rootID, subID string) {
	businesses, err := s.store.ListBusinessesByCategory(ctx, rootID, subID)
	if err != nil {
		s.inconsistency(ctx, rootID, "list businesses for removed subcategory", err,
			"subcategory_id", subID)
		return
	}

	for _, b := range businesses {
		b.SubcategoryID = ""
		if err := s.store.UpdateBusiness(ctx, b); err != nil {
			s.inconsistency(ctx, rootID, "clear subcategory assignment", err,
				"business_id", b.ID, "subcategory_id", subID)
		}
	}
}

// RootRemoved clears both assignment fields on every business that
// referenced the deleted root.
func (s *SyncService) RootRemoved(ctx context.Context, rootID string) {
	businesses, err := s.store.ListBusinessesByCategory(ctx, rootID, "")
	if err != nil {
		s.logger.Warn("failed to list businesses for removed root",
			"code", domainerrors.CodeInconsistency, "category_id", rootID, "error", err)
		return
	}

	for _, b := range businesses {
		b.CategoryID = ""
		b.SubcategoryID = ""
		if err := s.store.UpdateBusiness(ctx, b); err != nil {
			s.logger.Warn("failed to clear root assignment",
				"code", domainerrors.CodeInconsistency, "category_id", rootID,
				"business_id", b.ID, "error", err)
		}
	}
}

// Reconcile rebuilds every subcategory's leaf list in the root's tree from
// the business registry. Leaves whose business still carries the matching
// assignment keep their relative order and get their name and image
// refreshed; leaves whose business moved or disappeared are dropped;
// businesses missing from the tree are appended in name order. Running it
// twice is a no-op.
func (s *SyncService) Reconcile(ctx context.Context, rootID string) error {
	err := s.updateTree(ctx, rootID, func(c *domain.Category) (bool, error) {
		changed := false
		for i := range c.Subcategories {
			sub := &c.Subcategories[i]

			assigned, err := s.store.ListBusinessesByCategory(ctx, rootID, sub.ID)
			if err != nil {
				return false, err
			}

			rebuilt := rebuildItems(sub.Items, assigned)
			if !itemsEqual(sub.Items, rebuilt) {
				sub.Items = rebuilt
				changed = true
			}
		}
		return changed, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("category reconciled", "category_id", rootID)
	return nil
}

// rebuildItems computes a subcategory's leaf list from the businesses
// actually assigned to it. Existing leaves keep their relative order.
func rebuildItems(existing []domain.Item, assigned []*domain.Business) []domain.Item {
	byID := make(map[string]*domain.Business, len(assigned))
	for _, b := range assigned {
		byID[b.ID] = b
	}

	rebuilt := make([]domain.Item, 0, len(assigned))
	for _, item := range existing {
		b, ok := byID[item.ID]
		if !ok {
			continue
		}
		rebuilt = append(rebuilt, b.Leaf())
		delete(byID, item.ID)
	}

	// assigned is name-sorted, so new leaves append in name order.
	for _, b := range assigned {
		if _, ok := byID[b.ID]; ok {
			rebuilt = append(rebuilt, b.Leaf())
		}
	}

	return rebuilt
}

func itemsEqual(a, b []domain.Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// upsertLeaf inserts or refreshes a single leaf. A missing root or
// subcategory is an inconsistency, not a failure: the registry write
// already happened.
func (s *SyncService) upsertLeaf(ctx context.Context, rootID, subID string, item domain.Item) {
	err := s.updateTree(ctx, rootID, func(c *domain.Category) (bool, error) {
		sub := c.Subcategory(subID)
		if sub == nil {
			return false, store.ErrCategoryNotFound
		}
		sub.UpsertItem(item)
		return true, nil
	})
	if err != nil {
		s.inconsistency(ctx, rootID, "upsert leaf", err,
			"subcategory_id", subID, "business_id", item.ID)
	}
}

// removeLeaf removes a single leaf. Absence of the root, the subcategory,
// or the leaf itself is fine: the desired end state already holds.
func (s *SyncService) removeLeaf(ctx context.Context, rootID, subID, itemID string) {
	err := s.updateTree(ctx, rootID, func(c *domain.Category) (bool, error) {
		sub := c.Subcategory(subID)
		if sub == nil {
			return false, nil
		}
		return sub.RemoveItem(itemID), nil
	})
	if err != nil && !errors.Is(err, store.ErrCategoryNotFound) {
		s.inconsistency(ctx, rootID, "remove leaf", err,
			"subcategory_id", subID, "business_id", itemID)
	}
}

// updateTree runs a read-modify-write cycle against a root document,
// re-reading and retrying when the write-back loses a version race.
// mutate returns false to skip the write.
func (s *SyncService) updateTree(ctx context.Context, rootID string, mutate func(*domain.Category) (bool, error)) error {
	var err error
	for attempt := 0; attempt <= treeWriteRetries; attempt++ {
		var c *domain.Category
		c, err = s.store.GetCategory(ctx, rootID)
		if err != nil {
			return err
		}

		var changed bool
		changed, err = mutate(c)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		err = s.store.UpdateCategory(ctx, c)
		if err == nil || !errors.Is(err, store.ErrCategoryConflict) {
			return err
		}
	}
	return err
}

// inconsistency records a failed compensating write and immediately tries
// to repair the root by reconciling it.
func (s *SyncService) inconsistency(ctx context.Context, rootID, op string, err error, args ...any) {
	args = append([]any{"code", domainerrors.CodeInconsistency, "category_id", rootID, "error", err}, args...)
	s.logger.Warn("tree out of sync: "+op+" failed", args...)

	if rerr := s.Reconcile(ctx, rootID); rerr != nil {
		s.logger.Warn("reconcile after failed tree write also failed",
			"code", domainerrors.CodeInconsistency, "category_id", rootID, "error", rerr)
	}
}
