package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/daleelapp/daleel-server/internal/domain"
	domainerrors "github.com/daleelapp/daleel-server/internal/errors"
	"github.com/daleelapp/daleel-server/internal/id"
	"github.com/daleelapp/daleel-server/internal/store"
	"github.com/daleelapp/daleel-server/internal/validation"
)

// RegistryService orchestrates business record operations. The registry is
// the source of truth for business attributes; every accepted write here
// triggers the compensating tree write through the sync engine.
type RegistryService struct {
	store     *store.Store
	sync      *SyncService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewRegistryService creates a new registry service.
func NewRegistryService(store *store.Store, sync *SyncService, logger *slog.Logger) *RegistryService {
	return &RegistryService{
		store:     store,
		sync:      sync,
		logger:    logger,
		validator: validation.New(),
	}
}

// GetBusiness returns a single business record.
func (s *RegistryService) GetBusiness(ctx context.Context, bizID string) (*domain.Business, error) {
	b, err := s.store.GetBusiness(ctx, bizID)
	if err != nil {
		return nil, mapBusinessError(err)
	}
	return b, nil
}

// ListBusinesses returns all business records.
func (s *RegistryService) ListBusinesses(ctx context.Context) ([]*domain.Business, error) {
	return s.store.ListBusinesses(ctx)
}

// ListByCategory returns the businesses assigned to a root category,
// narrowed to one subcategory when subID is non-empty.
func (s *RegistryService) ListByCategory(ctx context.Context, rootID, subID string) ([]*domain.Business, error) {
	if err := s.verifyAssignment(ctx, rootID, subID); err != nil {
		return nil, err
	}
	return s.store.ListBusinessesByCategory(ctx, rootID, subID)
}

// CreateBusinessRequest contains fields for creating a business record.
type CreateBusinessRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Phone       string `json:"phone" validate:"max=32"`
	Email       string `json:"email" validate:"omitempty,email"`
	Address     string `json:"address" validate:"max=500"`
	Website     string `json:"website" validate:"omitempty,url"`

	PaymentMethod string `json:"payment_method" validate:"required,oneof=platform bank_transfer"`
	MerchantID    string `json:"merchant_id"`
	BankName      string `json:"bank_name"`
	AccountHolder string `json:"account_holder"`
	AccountNumber string `json:"account_number"`

	Status string `json:"status" validate:"omitempty,oneof=active inactive"`

	CategoryID    string `json:"category_id"`
	SubcategoryID string `json:"subcategory_id"`
}

// CreateBusiness creates a new business record. When the request carries a
// category assignment the referenced nodes must exist, and the accepted
// record is mirrored into the tree.
func (s *RegistryService) CreateBusiness(ctx context.Context, req CreateBusinessRequest) (*domain.Business, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bizID, err := id.Generate(id.PrefixBusiness)
	if err != nil {
		return nil, err
	}

	status := domain.Status(req.Status)
	if status == "" {
		status = domain.StatusActive
	}

	b := &domain.Business{
		ID:            bizID,
		Name:          req.Name,
		Description:   req.Description,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Website:       req.Website,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		MerchantID:    req.MerchantID,
		BankName:      req.BankName,
		AccountHolder: req.AccountHolder,
		AccountNumber: req.AccountNumber,
		Status:        status,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
	}
	b.InitTimestamps()

	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.verifyAssignment(ctx, b.CategoryID, b.SubcategoryID); err != nil {
		return nil, err
	}

	if err := s.store.CreateBusiness(ctx, b); err != nil {
		return nil, mapBusinessError(err)
	}

	s.sync.BusinessSaved(ctx, nil, b)

	s.logger.Info("business created", "id", bizID, "name", b.Name,
		"category_id", b.CategoryID, "subcategory_id", b.SubcategoryID)
	return b, nil
}

// UpdateBusinessRequest contains fields for updating a business record.
// Nil fields are left unchanged; assignment fields may be set to the empty
// string to uncategorize.
type UpdateBusinessRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Address     *string `json:"address"`
	Website     *string `json:"website" validate:"omitempty,url"`

	PaymentMethod *string `json:"payment_method"`
	MerchantID    *string `json:"merchant_id"`
	BankName      *string `json:"bank_name"`
	AccountHolder *string `json:"account_holder"`
	AccountNumber *string `json:"account_number"`

	Status *string `json:"status"`

	CategoryID    *string `json:"category_id"`
	SubcategoryID *string `json:"subcategory_id"`
}

// UpdateBusiness applies a partial update to a business record: renames,
// payment changes, status toggles, recategorization. The record is
// re-validated as a whole before anything is written; the tree mirror
// follows the accepted write.
func (s *RegistryService) UpdateBusiness(ctx context.Context, bizID string, req UpdateBusinessRequest) (*domain.Business, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	b, err := s.store.GetBusiness(ctx, bizID)
	if err != nil {
		return nil, mapBusinessError(err)
	}
	old := *b

	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.Phone != nil {
		b.Phone = *req.Phone
	}
	if req.Email != nil {
		b.Email = *req.Email
	}
	if req.Address != nil {
		b.Address = *req.Address
	}
	if req.Website != nil {
		b.Website = *req.Website
	}
	if req.PaymentMethod != nil {
		b.PaymentMethod = domain.PaymentMethod(*req.PaymentMethod)
	}
	if req.MerchantID != nil {
		b.MerchantID = *req.MerchantID
	}
	if req.BankName != nil {
		b.BankName = *req.BankName
	}
	if req.AccountHolder != nil {
		b.AccountHolder = *req.AccountHolder
	}
	if req.AccountNumber != nil {
		b.AccountNumber = *req.AccountNumber
	}
	if req.Status != nil {
		b.Status = domain.Status(*req.Status)
	}
	if req.CategoryID != nil {
		b.CategoryID = *req.CategoryID
	}
	if req.SubcategoryID != nil {
		b.SubcategoryID = *req.SubcategoryID
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.CategoryID != old.CategoryID || b.SubcategoryID != old.SubcategoryID {
		if err := s.verifyAssignment(ctx, b.CategoryID, b.SubcategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.store.UpdateBusiness(ctx, b); err != nil {
		return nil, mapBusinessError(err)
	}

	s.sync.BusinessSaved(ctx, &old, b)
	return b, nil
}

// DeleteBusiness deletes a business record and removes its tree leaf.
func (s *RegistryService) DeleteBusiness(ctx context.Context, bizID string) error {
	b, err := s.store.GetBusiness(ctx, bizID)
	if err != nil {
		return mapBusinessError(err)
	}

	if err := s.store.DeleteBusiness(ctx, bizID); err != nil {
		return mapBusinessError(err)
	}

	s.sync.BusinessDeleted(ctx, b)

	s.logger.Info("business deleted", "id", bizID)
	return nil
}

// SetLogo attaches an uploaded logo to a business record and refreshes the
// tree leaf's image.
func (s *RegistryService) SetLogo(ctx context.Context, bizID, url, blurHash string) (*domain.Business, error) {
	b, err := s.store.GetBusiness(ctx, bizID)
	if err != nil {
		return nil, mapBusinessError(err)
	}
	old := *b

	b.LogoURL = url
	b.LogoBlurHash = blurHash
	if err := s.store.UpdateBusiness(ctx, b); err != nil {
		return nil, mapBusinessError(err)
	}

	s.sync.BusinessSaved(ctx, &old, b)
	return b, nil
}

// AddAttachment records an uploaded file against a business.
func (s *RegistryService) AddAttachment(ctx context.Context, bizID, name, url string) (*domain.Business, error) {
	if name == "" {
		return nil, domainerrors.MissingField("attachment name is required")
	}

	attID, err := id.Generate(id.PrefixAttachment)
	if err != nil {
		return nil, err
	}

	b, err := s.store.GetBusiness(ctx, bizID)
	if err != nil {
		return nil, mapBusinessError(err)
	}

	b.Attachments = append(b.Attachments, domain.Attachment{
		ID:         attID,
		Name:       name,
		URL:        url,
		UploadedAt: time.Now(),
	})
	if err := s.store.UpdateBusiness(ctx, b); err != nil {
		return nil, mapBusinessError(err)
	}

	return b, nil
}

// RemoveAttachment removes an attachment record from a business.
func (s *RegistryService) RemoveAttachment(ctx context.Context, bizID, attID string) (*domain.Business, error) {
	b, err := s.store.GetBusiness(ctx, bizID)
	if err != nil {
		return nil, mapBusinessError(err)
	}

	found := false
	kept := b.Attachments[:0]
	for _, att := range b.Attachments {
		if att.ID == attID {
			found = true
			continue
		}
		kept = append(kept, att)
	}
	if !found {
		return nil, domainerrors.NotFound("attachment not found")
	}
	b.Attachments = kept

	if err := s.store.UpdateBusiness(ctx, b); err != nil {
		return nil, mapBusinessError(err)
	}

	return b, nil
}

// verifyAssignment checks that a requested category assignment points at
// nodes that actually exist. An empty rootID (uncategorized) is fine.
func (s *RegistryService) verifyAssignment(ctx context.Context, rootID, subID string) error {
	if rootID == "" {
		return nil
	}

	c, err := s.store.GetCategory(ctx, rootID)
	if err != nil {
		return mapCategoryError(err)
	}
	if subID != "" && c.Subcategory(subID) == nil {
		return domainerrors.NotFound("subcategory not found")
	}
	return nil
}

// mapBusinessError converts store sentinels to coded domain errors.
func mapBusinessError(err error) error {
	switch {
	case errors.Is(err, store.ErrBusinessNotFound):
		return domainerrors.NotFound("business not found")
	case errors.Is(err, store.ErrDuplicateBusiness):
		return domainerrors.Duplicate("business id already exists")
	default:
		return err
	}
}
