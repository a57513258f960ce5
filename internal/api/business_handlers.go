package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/daleelapp/daleel-server/internal/domain"
	"github.com/daleelapp/daleel-server/internal/service"
)

func (s *Server) registerBusinessRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBusinesses",
		Method:      http.MethodGet,
		Path:        "/api/v1/businesses",
		Summary:     "List businesses",
		Description: "Returns all business records, name-sorted",
		Tags:        []string{"Businesses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBusinesses)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBusiness",
		Method:      http.MethodPost,
		Path:        "/api/v1/businesses",
		Summary:     "Create business",
		Description: "Creates a business record and mirrors it into the category tree",
		Tags:        []string{"Businesses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBusiness)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBusiness",
		Method:      http.MethodGet,
		Path:        "/api/v1/businesses/{id}",
		Summary:     "Get business",
		Description: "Returns a business record by ID",
		Tags:        []string{"Businesses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBusiness)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBusiness",
		Method:      http.MethodPatch,
		Path:        "/api/v1/businesses/{id}",
		Summary:     "Update business",
		Description: "Applies a partial update; renames and recategorizations propagate to the tree",
		Tags:        []string{"Businesses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBusiness)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBusiness",
		Method:      http.MethodDelete,
		Path:        "/api/v1/businesses/{id}",
		Summary:     "Delete business",
		Description: "Deletes a business record and removes its tree leaf",
		Tags:        []string{"Businesses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBusiness)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategoryBusinesses",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}/businesses",
		Summary:     "List businesses in category",
		Description: "Returns businesses assigned to a root, optionally narrowed to one subcategory",
		Tags:        []string{"Businesses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCategoryBusinesses)
}

// === DTOs ===

type AttachmentResponse struct {
	ID         string    `json:"id" doc:"Attachment ID"`
	Name       string    `json:"name" doc:"Original filename"`
	URL        string    `json:"url" doc:"Public URL"`
	UploadedAt time.Time `json:"uploaded_at" doc:"Upload time"`
}

type BusinessResponse struct {
	ID          string `json:"id" doc:"Business ID"`
	Name        string `json:"name" doc:"Business name"`
	Description string `json:"description,omitempty" doc:"Description"`
	Phone       string `json:"phone,omitempty" doc:"Contact phone"`
	Email       string `json:"email,omitempty" doc:"Contact email"`
	Address     string `json:"address,omitempty" doc:"Street address"`
	Website     string `json:"website,omitempty" doc:"Website URL"`

	PaymentMethod string `json:"payment_method" doc:"platform or bank_transfer"`
	MerchantID    string `json:"merchant_id,omitempty" doc:"Merchant ID for platform payments"`
	BankName      string `json:"bank_name,omitempty" doc:"Bank name for transfers"`
	AccountHolder string `json:"account_holder,omitempty" doc:"Account holder for transfers"`
	AccountNumber string `json:"account_number,omitempty" doc:"Account number for transfers"`

	Status string `json:"status" doc:"active or inactive"`

	CategoryID    string `json:"category_id,omitempty" doc:"Assigned root category slug"`
	SubcategoryID string `json:"subcategory_id,omitempty" doc:"Assigned subcategory slug"`

	LogoURL      string               `json:"logo_url,omitempty" doc:"Logo URL"`
	LogoBlurHash string               `json:"logo_blur_hash,omitempty" doc:"Logo BlurHash placeholder"`
	Attachments  []AttachmentResponse `json:"attachments,omitempty" doc:"Uploaded files"`

	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func mapBusinessResponse(b *domain.Business) BusinessResponse {
	var attachments []AttachmentResponse
	for _, att := range b.Attachments {
		attachments = append(attachments, AttachmentResponse{
			ID:         att.ID,
			Name:       att.Name,
			URL:        att.URL,
			UploadedAt: att.UploadedAt,
		})
	}

	return BusinessResponse{
		ID:            b.ID,
		Name:          b.Name,
		Description:   b.Description,
		Phone:         b.Phone,
		Email:         b.Email,
		Address:       b.Address,
		Website:       b.Website,
		PaymentMethod: string(b.PaymentMethod),
		MerchantID:    b.MerchantID,
		BankName:      b.BankName,
		AccountHolder: b.AccountHolder,
		AccountNumber: b.AccountNumber,
		Status:        string(b.Status),
		CategoryID:    b.CategoryID,
		SubcategoryID: b.SubcategoryID,
		LogoURL:       b.LogoURL,
		LogoBlurHash:  b.LogoBlurHash,
		Attachments:   attachments,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

type ListBusinessesInput struct {
	Authorization string `header:"Authorization"`
}

type ListBusinessesResponse struct {
	Businesses []BusinessResponse `json:"businesses" doc:"Business records"`
}

type ListBusinessesOutput struct {
	Body ListBusinessesResponse
}

type CreateBusinessInput struct {
	Authorization string `header:"Authorization"`
	Body          service.CreateBusinessRequest
}

type BusinessOutput struct {
	Body BusinessResponse
}

type GetBusinessInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Business ID"`
}

type UpdateBusinessInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Business ID"`
	Body          service.UpdateBusinessRequest
}

type DeleteBusinessInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Business ID"`
}

type ListCategoryBusinessesInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Root category slug"`
	Subcategory   string `query:"subcategory" doc:"Narrow the listing to one subcategory"`
}

// === Handlers ===

func (s *Server) handleListBusinesses(ctx context.Context, input *ListBusinessesInput) (*ListBusinessesOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	businesses, err := s.services.Registry.ListBusinesses(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]BusinessResponse, len(businesses))
	for i, b := range businesses {
		resp[i] = mapBusinessResponse(b)
	}

	return &ListBusinessesOutput{Body: ListBusinessesResponse{Businesses: resp}}, nil
}

func (s *Server) handleCreateBusiness(ctx context.Context, input *CreateBusinessInput) (*BusinessOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	b, err := s.services.Registry.CreateBusiness(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	return &BusinessOutput{Body: mapBusinessResponse(b)}, nil
}

func (s *Server) handleGetBusiness(ctx context.Context, input *GetBusinessInput) (*BusinessOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	b, err := s.services.Registry.GetBusiness(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BusinessOutput{Body: mapBusinessResponse(b)}, nil
}

func (s *Server) handleUpdateBusiness(ctx context.Context, input *UpdateBusinessInput) (*BusinessOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	b, err := s.services.Registry.UpdateBusiness(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &BusinessOutput{Body: mapBusinessResponse(b)}, nil
}

func (s *Server) handleDeleteBusiness(ctx context.Context, input *DeleteBusinessInput) (*struct{}, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Registry.DeleteBusiness(ctx, input.ID); err != nil {
		return nil, err
	}

	return &struct{}{}, nil
}

func (s *Server) handleListCategoryBusinesses(ctx context.Context, input *ListCategoryBusinessesInput) (*ListBusinessesOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	businesses, err := s.services.Registry.ListByCategory(ctx, input.ID, input.Subcategory)
	if err != nil {
		return nil, err
	}

	resp := make([]BusinessResponse, len(businesses))
	for i, b := range businesses {
		resp[i] = mapBusinessResponse(b)
	}

	return &ListBusinessesOutput{Body: ListBusinessesResponse{Businesses: resp}}, nil
}
