package domain

import (
	"time"

	"github.com/daleelapp/daleel-server/internal/errors"
)

// PaymentMethod is the closed set of ways a business settles payments.
type PaymentMethod string

// Supported payment methods.
const (
	// PaymentPlatform settles through the platform's payment processor
	// and requires a merchant identifier.
	PaymentPlatform PaymentMethod = "platform"
	// PaymentBankTransfer settles by direct transfer and requires full
	// bank account details.
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// Status is the two-value business status. There is no state machine
// beyond this toggle.
type Status string

// Business statuses.
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Attachment is a file uploaded for a business (menus, certificates, ...).
type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Business is the normalized record holding a business's authoritative
// attributes. The category tree only mirrors it: CategoryID and
// SubcategoryID are plain strings, not enforced foreign keys - referential
// integrity is the sync engine's job.
type Business struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
	Website     string `json:"website,omitempty"`

	PaymentMethod PaymentMethod `json:"payment_method"`
	// Required when PaymentMethod is PaymentPlatform.
	MerchantID string `json:"merchant_id,omitempty"`
	// Required when PaymentMethod is PaymentBankTransfer.
	BankName      string `json:"bank_name,omitempty"`
	AccountHolder string `json:"account_holder,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`

	Status Status `json:"status"`

	// CategoryID / SubcategoryID reference taxonomy node slugs. A business
	// may be uncategorized (both empty) or assigned to a root only.
	CategoryID    string `json:"category_id,omitempty"`
	SubcategoryID string `json:"subcategory_id,omitempty"`

	LogoURL      string       `json:"logo_url,omitempty"`
	LogoBlurHash string       `json:"logo_blur_hash,omitempty"`
	Attachments  []Attachment `json:"attachments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp to the current time.
func (b *Business) Touch() {
	b.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (b *Business) InitTimestamps() {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
}

// Categorized reports whether the business is assigned to a subcategory
// and therefore has a mirror leaf in the taxonomy tree.
func (b *Business) Categorized() bool {
	return b.CategoryID != "" && b.SubcategoryID != ""
}

// Leaf returns the denormalized tree representation of the business.
func (b *Business) Leaf() Item {
	return Item{
		ID:       b.ID,
		Name:     b.Name,
		ImageURL: b.LogoURL,
	}
}

// Validate checks the record's own invariants. It runs before any write;
// a failure leaves both stores untouched.
func (b *Business) Validate() error {
	if b.Name == "" {
		return errors.MissingField("business name is required")
	}

	switch b.Status {
	case StatusActive, StatusInactive:
	default:
		return errors.Validation("status must be active or inactive")
	}

	switch b.PaymentMethod {
	case PaymentPlatform:
		if b.MerchantID == "" {
			return errors.MissingField("merchant id is required for platform payments")
		}
	case PaymentBankTransfer:
		missing := []string{}
		if b.BankName == "" {
			missing = append(missing, "bank_name")
		}
		if b.AccountHolder == "" {
			missing = append(missing, "account_holder")
		}
		if b.AccountNumber == "" {
			missing = append(missing, "account_number")
		}
		if len(missing) > 0 {
			return errors.MissingField("bank transfer requires bank details").WithDetails(missing)
		}
	default:
		return errors.Validation("payment method must be platform or bank_transfer")
	}

	// A subcategory assignment is meaningless without its root.
	if b.SubcategoryID != "" && b.CategoryID == "" {
		return errors.Validation("subcategory assignment requires a category")
	}

	return nil
}
