package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/daleelapp/daleel-server/internal/domain"
	domainerrors "github.com/daleelapp/daleel-server/internal/errors"
	"github.com/daleelapp/daleel-server/internal/slug"
	"github.com/daleelapp/daleel-server/internal/store"
	"github.com/daleelapp/daleel-server/internal/validation"
)

// TaxonomyService orchestrates edits to the category trees. Structural
// deletes cascade into the business registry through the sync engine:
// assignments are cleared, businesses are never deleted.
type TaxonomyService struct {
	store     *store.Store
	sync      *SyncService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewTaxonomyService creates a new taxonomy service.
func NewTaxonomyService(store *store.Store, sync *SyncService, logger *slog.Logger) *TaxonomyService {
	return &TaxonomyService{
		store:     store,
		sync:      sync,
		logger:    logger,
		validator: validation.New(),
	}
}

// ListRoots returns all root categories.
func (s *TaxonomyService) ListRoots(ctx context.Context) ([]*domain.Category, error) {
	return s.store.ListCategories(ctx)
}

// GetTree returns a root category with its full subtree.
func (s *TaxonomyService) GetTree(ctx context.Context, rootID string) (*domain.Category, error) {
	c, err := s.store.GetCategory(ctx, rootID)
	if err != nil {
		return nil, mapCategoryError(err)
	}
	return c, nil
}

// CreateRootRequest contains fields for creating a root category.
type CreateRootRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// CreateRoot creates a new root category. Its id is the slug of the name
// and never changes afterwards; a name slugging to an existing id is a
// duplicate.
func (s *TaxonomyService) CreateRoot(ctx context.Context, req CreateRootRequest) (*domain.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	id := slug.Make(req.Name)
	if id == "" {
		return nil, domainerrors.Validation("name must contain at least one latin letter or digit")
	}

	c := &domain.Category{
		ID:            id,
		Name:          req.Name,
		Subcategories: []domain.Subcategory{},
	}
	c.InitTimestamps()

	if err := s.store.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicateCategory) {
			return nil, domainerrors.Duplicate("a category with this name already exists").WithDetails(id)
		}
		return nil, err
	}

	s.logger.Info("root category created", "id", id, "name", req.Name)
	return c, nil
}

// RenameRoot changes a root's display name. The id keeps the slug of the
// original name: business records and URLs reference it.
func (s *TaxonomyService) RenameRoot(ctx context.Context, rootID, name string) (*domain.Category, error) {
	if name == "" {
		return nil, domainerrors.MissingField("name is required")
	}

	return s.updateTree(ctx, rootID, func(c *domain.Category) error {
		c.Name = name
		return nil
	})
}

// DeleteRoot deletes a root category and its whole subtree, then clears
// the assignment fields on every business that referenced the root.
func (s *TaxonomyService) DeleteRoot(ctx context.Context, rootID string) error {
	if err := s.store.DeleteCategory(ctx, rootID); err != nil {
		return mapCategoryError(err)
	}

	s.sync.RootRemoved(ctx, rootID)

	s.logger.Info("root category deleted", "id", rootID)
	return nil
}

// AddSubcategoryRequest contains fields for adding a subcategory.
type AddSubcategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// AddSubcategory appends a subcategory to a root. The new node's id is the
// slug of its name, unique among its siblings only.
func (s *TaxonomyService) AddSubcategory(ctx context.Context, rootID string, req AddSubcategoryRequest) (*domain.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	subID := slug.Make(req.Name)
	if subID == "" {
		return nil, domainerrors.Validation("name must contain at least one latin letter or digit")
	}

	return s.updateTree(ctx, rootID, func(c *domain.Category) error {
		if !c.AddSubcategory(domain.Subcategory{ID: subID, Name: req.Name}) {
			return domainerrors.Duplicate("a subcategory with this name already exists").WithDetails(subID)
		}
		return nil
	})
}

// RenameSubcategory changes a subcategory's display name, keeping its id.
func (s *TaxonomyService) RenameSubcategory(ctx context.Context, rootID, subID, name string) (*domain.Category, error) {
	if name == "" {
		return nil, domainerrors.MissingField("name is required")
	}

	return s.updateTree(ctx, rootID, func(c *domain.Category) error {
		sub := c.Subcategory(subID)
		if sub == nil {
			return domainerrors.NotFound("subcategory not found")
		}
		sub.Name = name
		return nil
	})
}

// DeleteSubcategory removes a subcategory node and its leaves from the
// tree, then clears the subcategory assignment on affected businesses.
// The businesses keep their root assignment and are otherwise untouched.
func (s *TaxonomyService) DeleteSubcategory(ctx context.Context, rootID, subID string) (*domain.Category, error) {
	c, err := s.updateTree(ctx, rootID, func(c *domain.Category) error {
		if !c.RemoveSubcategory(subID) {
			return domainerrors.NotFound("subcategory not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sync.SubcategoryRemoved(ctx, rootID, subID)

	s.logger.Info("subcategory deleted", "category_id", rootID, "subcategory_id", subID)
	return c, nil
}

// ReorderSubcategories rearranges a root's children to match order, which
// must list every current child id exactly once.
func (s *TaxonomyService) ReorderSubcategories(ctx context.Context, rootID string, order []string) (*domain.Category, error) {
	return s.updateTree(ctx, rootID, func(c *domain.Category) error {
		if !c.ReorderSubcategories(order) {
			return domainerrors.InvalidOrdering("order must list each subcategory id exactly once")
		}
		return nil
	})
}

// ReorderItems rearranges a subcategory's leaves to match order, which
// must list every current leaf id exactly once.
func (s *TaxonomyService) ReorderItems(ctx context.Context, rootID, subID string, order []string) (*domain.Category, error) {
	return s.updateTree(ctx, rootID, func(c *domain.Category) error {
		sub := c.Subcategory(subID)
		if sub == nil {
			return domainerrors.NotFound("subcategory not found")
		}
		if !sub.ReorderItems(order) {
			return domainerrors.InvalidOrdering("order must list each item id exactly once")
		}
		return nil
	})
}

// SetRootImage attaches an uploaded image to a root category.
func (s *TaxonomyService) SetRootImage(ctx context.Context, rootID, url, blurHash string) (*domain.Category, error) {
	return s.updateTree(ctx, rootID, func(c *domain.Category) error {
		c.ImageURL = url
		c.BlurHash = blurHash
		return nil
	})
}

// SetSubcategoryImage attaches an uploaded image to a subcategory.
func (s *TaxonomyService) SetSubcategoryImage(ctx context.Context, rootID, subID, url, blurHash string) (*domain.Category, error) {
	return s.updateTree(ctx, rootID, func(c *domain.Category) error {
		sub := c.Subcategory(subID)
		if sub == nil {
			return domainerrors.NotFound("subcategory not found")
		}
		sub.ImageURL = url
		sub.BlurHash = blurHash
		return nil
	})
}

// SetItemImage attaches an uploaded image to a business leaf. The image is
// the business's logo, so the write goes to the registry record and the
// tree mirror follows through the sync engine; writing the leaf directly
// would be undone by the next reconcile.
func (s *TaxonomyService) SetItemImage(ctx context.Context, rootID, subID, itemID, url, blurHash string) error {
	c, err := s.store.GetCategory(ctx, rootID)
	if err != nil {
		return mapCategoryError(err)
	}
	sub := c.Subcategory(subID)
	if sub == nil {
		return domainerrors.NotFound("subcategory not found")
	}
	if sub.Item(itemID) == nil {
		return domainerrors.NotFound("item not found")
	}

	b, err := s.store.GetBusiness(ctx, itemID)
	if err != nil {
		if errors.Is(err, store.ErrBusinessNotFound) {
			return domainerrors.NotFound("business not found")
		}
		return err
	}

	old := *b
	b.LogoURL = url
	b.LogoBlurHash = blurHash
	if err := s.store.UpdateBusiness(ctx, b); err != nil {
		return err
	}

	s.sync.BusinessSaved(ctx, &old, b)
	return nil
}

// updateTree runs a single read-modify-write cycle against a root document
// and maps store errors to domain errors. A lost version race surfaces as
// CONFLICT for the caller to retry; the interactive admin surface makes
// automatic retries here more confusing than useful.
func (s *TaxonomyService) updateTree(ctx context.Context, rootID string, mutate func(*domain.Category) error) (*domain.Category, error) {
	c, err := s.store.GetCategory(ctx, rootID)
	if err != nil {
		return nil, mapCategoryError(err)
	}

	if err := mutate(c); err != nil {
		return nil, err
	}

	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, mapCategoryError(err)
	}

	return c, nil
}

// mapCategoryError converts store sentinels to coded domain errors.
func mapCategoryError(err error) error {
	switch {
	case errors.Is(err, store.ErrCategoryNotFound):
		return domainerrors.NotFound("category not found")
	case errors.Is(err, store.ErrCategoryConflict):
		return domainerrors.Conflict("category was modified concurrently, re-read and retry")
	default:
		return err
	}
}
