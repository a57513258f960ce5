package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/daleelapp/daleel-server/internal/domain"
	"github.com/daleelapp/daleel-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns all root categories with their full subtrees",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories",
		Summary:     "Create category",
		Description: "Creates a new root category; its id is the slug of the name",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategory",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Get category",
		Description: "Returns a root category with its full subtree",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameCategory",
		Method:      http.MethodPatch,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Rename category",
		Description: "Changes a root category's display name; the id never changes",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRenameCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCategory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Delete category",
		Description: "Deletes a root category and clears assignments on its businesses",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "reorderSubcategories",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories/{id}/reorder",
		Summary:     "Reorder subcategories",
		Description: "Rearranges a root's subcategories; order must list each id exactly once",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReorderSubcategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "reconcileCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories/{id}/reconcile",
		Summary:     "Reconcile category",
		Description: "Rebuilds the tree's leaves from the business registry; idempotent",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReconcileCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "addSubcategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories/{id}/subcategories",
		Summary:     "Add subcategory",
		Description: "Appends a subcategory to a root category",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddSubcategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameSubcategory",
		Method:      http.MethodPatch,
		Path:        "/api/v1/categories/{id}/subcategories/{subID}",
		Summary:     "Rename subcategory",
		Description: "Changes a subcategory's display name; the id never changes",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRenameSubcategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteSubcategory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/categories/{id}/subcategories/{subID}",
		Summary:     "Delete subcategory",
		Description: "Removes a subcategory; affected businesses keep their root assignment",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteSubcategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "reorderItems",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories/{id}/subcategories/{subID}/reorder",
		Summary:     "Reorder items",
		Description: "Rearranges a subcategory's business leaves; order must list each id exactly once",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReorderItems)
}

// === DTOs ===

type ItemResponse struct {
	ID       string `json:"id" doc:"Business ID"`
	Name     string `json:"name" doc:"Denormalized business name"`
	ImageURL string `json:"image_url,omitempty" doc:"Business logo URL"`
}

type SubcategoryResponse struct {
	ID       string         `json:"id" doc:"Subcategory slug, unique within its root"`
	Name     string         `json:"name" doc:"Display name"`
	ImageURL string         `json:"image_url,omitempty" doc:"Tile image URL"`
	BlurHash string         `json:"blur_hash,omitempty" doc:"BlurHash placeholder"`
	Items    []ItemResponse `json:"items" doc:"Ordered business leaves"`
}

type CategoryResponse struct {
	ID            string                `json:"id" doc:"Root category slug"`
	Name          string                `json:"name" doc:"Display name"`
	ImageURL      string                `json:"image_url,omitempty" doc:"Tile image URL"`
	BlurHash      string                `json:"blur_hash,omitempty" doc:"BlurHash placeholder"`
	Version       uint64                `json:"version" doc:"Document version, increments on every write"`
	Subcategories []SubcategoryResponse `json:"subcategories" doc:"Ordered subcategories"`
	CreatedAt     time.Time             `json:"created_at" doc:"Creation time"`
	UpdatedAt     time.Time             `json:"updated_at" doc:"Last update time"`
}

func mapCategoryResponse(c *domain.Category) CategoryResponse {
	subs := make([]SubcategoryResponse, len(c.Subcategories))
	for i, sub := range c.Subcategories {
		items := make([]ItemResponse, len(sub.Items))
		for j, item := range sub.Items {
			items[j] = ItemResponse{ID: item.ID, Name: item.Name, ImageURL: item.ImageURL}
		}
		subs[i] = SubcategoryResponse{
			ID:       sub.ID,
			Name:     sub.Name,
			ImageURL: sub.ImageURL,
			BlurHash: sub.BlurHash,
			Items:    items,
		}
	}

	return CategoryResponse{
		ID:            c.ID,
		Name:          c.Name,
		ImageURL:      c.ImageURL,
		BlurHash:      c.BlurHash,
		Version:       c.Version,
		Subcategories: subs,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

type ListCategoriesInput struct {
	Authorization string `header:"Authorization"`
}

type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories" doc:"All root categories"`
}

type ListCategoriesOutput struct {
	Body ListCategoriesResponse
}

type CreateCategoryInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		Name string `json:"name" doc:"Display name; the id is its slug"`
	}
}

type CategoryOutput struct {
	Body CategoryResponse
}

type GetCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Root category slug"`
}

type RenameCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Root category slug"`
	Body          struct {
		Name string `json:"name" doc:"New display name"`
	}
}

type DeleteCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Root category slug"`
}

type ReorderSubcategoriesInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Root category slug"`
	Body          struct {
		Order []string `json:"order" doc:"Every subcategory id, in the desired order"`
	}
}

type ReconcileCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Root category slug"`
}

type AddSubcategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Root category slug"`
	Body          struct {
		Name string `json:"name" doc:"Display name; the id is its slug"`
	}
}

type RenameSubcategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Root category slug"`
	SubID         string `path:"subID" doc:"Subcategory slug"`
	Body          struct {
		Name string `json:"name" doc:"New display name"`
	}
}

type DeleteSubcategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Root category slug"`
	SubID         string `path:"subID" doc:"Subcategory slug"`
}

type ReorderItemsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Root category slug"`
	SubID         string `path:"subID" doc:"Subcategory slug"`
	Body          struct {
		Order []string `json:"order" doc:"Every item id, in the desired order"`
	}
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, input *ListCategoriesInput) (*ListCategoriesOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	roots, err := s.services.Taxonomy.ListRoots(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]CategoryResponse, len(roots))
	for i, c := range roots {
		resp[i] = mapCategoryResponse(c)
	}

	return &ListCategoriesOutput{Body: ListCategoriesResponse{Categories: resp}}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Taxonomy.CreateRoot(ctx, service.CreateRootRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}

func (s *Server) handleGetCategory(ctx context.Context, input *GetCategoryInput) (*CategoryOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Taxonomy.GetTree(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}

func (s *Server) handleRenameCategory(ctx context.Context, input *RenameCategoryInput) (*CategoryOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Taxonomy.RenameRoot(ctx, input.ID, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *DeleteCategoryInput) (*struct{}, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Taxonomy.DeleteRoot(ctx, input.ID); err != nil {
		return nil, err
	}

	return &struct{}{}, nil
}

func (s *Server) handleReorderSubcategories(ctx context.Context, input *ReorderSubcategoriesInput) (*CategoryOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Taxonomy.ReorderSubcategories(ctx, input.ID, input.Body.Order)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}

func (s *Server) handleReconcileCategory(ctx context.Context, input *ReconcileCategoryInput) (*CategoryOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Sync.Reconcile(ctx, input.ID); err != nil {
		return nil, err
	}

	c, err := s.services.Taxonomy.GetTree(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}

func (s *Server) handleAddSubcategory(ctx context.Context, input *AddSubcategoryInput) (*CategoryOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Taxonomy.AddSubcategory(ctx, input.ID, service.AddSubcategoryRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}

func (s *Server) handleRenameSubcategory(ctx context.Context, input *RenameSubcategoryInput) (*CategoryOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Taxonomy.RenameSubcategory(ctx, input.ID, input.SubID, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}

func (s *Server) handleDeleteSubcategory(ctx context.Context, input *DeleteSubcategoryInput) (*CategoryOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Taxonomy.DeleteSubcategory(ctx, input.ID, input.SubID)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}

func (s *Server) handleReorderItems(ctx context.Context, input *ReorderItemsInput) (*CategoryOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	c, err := s.services.Taxonomy.ReorderItems(ctx, input.ID, input.SubID, input.Body.Order)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}
