package api

import (
	"context"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/daleelapp/daleel-server/internal/errors"
	"github.com/daleelapp/daleel-server/internal/id"
)

// allowedAttachmentExts lists the file types accepted for business
// attachments (menus, certificates, price lists).
var allowedAttachmentExts = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

func (s *Server) registerUploadRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "uploadCategoryImage",
		Method:      http.MethodPut,
		Path:        "/api/v1/categories/{id}/image",
		Summary:     "Upload category image",
		Description: "Processes and attaches a tile image to a root category",
		Tags:        []string{"Uploads"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadCategoryImage)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadSubcategoryImage",
		Method:      http.MethodPut,
		Path:        "/api/v1/categories/{id}/subcategories/{subID}/image",
		Summary:     "Upload subcategory image",
		Description: "Processes and attaches a tile image to a subcategory",
		Tags:        []string{"Uploads"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadSubcategoryImage)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadItemImage",
		Method:      http.MethodPut,
		Path:        "/api/v1/categories/{id}/subcategories/{subID}/items/{itemID}/image",
		Summary:     "Upload item image",
		Description: "Sets a business leaf's image; the logo lives on the business record and the tree mirrors it",
		Tags:        []string{"Uploads"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadItemImage)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadBusinessLogo",
		Method:      http.MethodPut,
		Path:        "/api/v1/businesses/{id}/logo",
		Summary:     "Upload business logo",
		Description: "Processes and attaches a logo to a business record",
		Tags:        []string{"Uploads"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadBusinessLogo)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadBusinessAttachment",
		Method:      http.MethodPost,
		Path:        "/api/v1/businesses/{id}/attachments",
		Summary:     "Upload business attachment",
		Description: "Stores a file (menu, certificate) and records it against the business",
		Tags:        []string{"Uploads"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadBusinessAttachment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBusinessAttachment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/businesses/{id}/attachments/{attID}",
		Summary:     "Delete business attachment",
		Description: "Removes an attachment record and its stored file",
		Tags:        []string{"Uploads"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBusinessAttachment)
}

// === DTOs ===

type UploadCategoryImageInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Root category slug"`
	RawBody       []byte
}

type UploadSubcategoryImageInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Root category slug"`
	SubID         string `path:"subID" doc:"Subcategory slug"`
	RawBody       []byte
}

type UploadItemImageInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Root category slug"`
	SubID         string `path:"subID" doc:"Subcategory slug"`
	ItemID        string `path:"itemID" doc:"Business ID"`
	RawBody       []byte
}

type UploadBusinessLogoInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Business ID"`
	RawBody       []byte
}

type UploadBusinessAttachmentInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Business ID"`
	Name          string `query:"name" doc:"Original filename, extension decides the stored type"`
	RawBody       []byte
}

type DeleteBusinessAttachmentInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Business ID"`
	AttID         string `path:"attID" doc:"Attachment ID"`
}

type UploadImageResponse struct {
	URL      string `json:"url" doc:"Public URL of the processed image"`
	BlurHash string `json:"blur_hash" doc:"BlurHash placeholder"`
}

type UploadImageOutput struct {
	Body UploadImageResponse
}

// === Handlers ===

func (s *Server) handleUploadCategoryImage(ctx context.Context, input *UploadCategoryImageInput) (*UploadImageOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	// The node must exist before any bytes hit the disk.
	if _, err := s.services.Taxonomy.GetTree(ctx, input.ID); err != nil {
		return nil, err
	}

	processed, err := s.processor.Process(input.RawBody)
	if err != nil {
		return nil, domainerrors.Validation("uploaded data is not a decodable image").WithCause(err)
	}

	if err := s.storage.CategoryImages.Save(input.ID, processed.JPEG); err != nil {
		return nil, err
	}
	url := s.storage.CategoryImages.URL(input.ID)

	if _, err := s.services.Taxonomy.SetRootImage(ctx, input.ID, url, processed.BlurHash); err != nil {
		return nil, err
	}

	return &UploadImageOutput{Body: UploadImageResponse{URL: url, BlurHash: processed.BlurHash}}, nil
}

func (s *Server) handleUploadSubcategoryImage(ctx context.Context, input *UploadSubcategoryImageInput) (*UploadImageOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	processed, err := s.processor.Process(input.RawBody)
	if err != nil {
		return nil, domainerrors.Validation("uploaded data is not a decodable image").WithCause(err)
	}

	// Subcategory slugs are only unique within their root; slugs never
	// contain underscores, so this composite cannot collide.
	fileID := input.ID + "_" + input.SubID
	if err := s.storage.CategoryImages.Save(fileID, processed.JPEG); err != nil {
		return nil, err
	}
	url := s.storage.CategoryImages.URL(fileID)

	if _, err := s.services.Taxonomy.SetSubcategoryImage(ctx, input.ID, input.SubID, url, processed.BlurHash); err != nil {
		return nil, err
	}

	return &UploadImageOutput{Body: UploadImageResponse{URL: url, BlurHash: processed.BlurHash}}, nil
}

func (s *Server) handleUploadItemImage(ctx context.Context, input *UploadItemImageInput) (*UploadImageOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	processed, err := s.processor.Process(input.RawBody)
	if err != nil {
		return nil, domainerrors.Validation("uploaded data is not a decodable image").WithCause(err)
	}

	// Item ids are business ids, so the image lands in logo storage.
	if err := s.storage.Logos.Save(input.ItemID, processed.JPEG); err != nil {
		return nil, err
	}
	url := s.storage.Logos.URL(input.ItemID)

	if err := s.services.Taxonomy.SetItemImage(ctx, input.ID, input.SubID, input.ItemID, url, processed.BlurHash); err != nil {
		return nil, err
	}

	return &UploadImageOutput{Body: UploadImageResponse{URL: url, BlurHash: processed.BlurHash}}, nil
}

func (s *Server) handleUploadBusinessLogo(ctx context.Context, input *UploadBusinessLogoInput) (*UploadImageOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	if _, err := s.services.Registry.GetBusiness(ctx, input.ID); err != nil {
		return nil, err
	}

	processed, err := s.processor.Process(input.RawBody)
	if err != nil {
		return nil, domainerrors.Validation("uploaded data is not a decodable image").WithCause(err)
	}

	if err := s.storage.Logos.Save(input.ID, processed.JPEG); err != nil {
		return nil, err
	}
	url := s.storage.Logos.URL(input.ID)

	if _, err := s.services.Registry.SetLogo(ctx, input.ID, url, processed.BlurHash); err != nil {
		return nil, err
	}

	return &UploadImageOutput{Body: UploadImageResponse{URL: url, BlurHash: processed.BlurHash}}, nil
}

func (s *Server) handleUploadBusinessAttachment(ctx context.Context, input *UploadBusinessAttachmentInput) (*BusinessOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	if input.Name == "" {
		return nil, domainerrors.MissingField("name query parameter is required")
	}
	ext := strings.ToLower(filepath.Ext(input.Name))
	if !allowedAttachmentExts[ext] {
		return nil, domainerrors.Validation("unsupported attachment type").WithDetails(ext)
	}

	if _, err := s.services.Registry.GetBusiness(ctx, input.ID); err != nil {
		return nil, err
	}

	fileID, err := id.Generate(id.PrefixAttachment)
	if err != nil {
		return nil, err
	}
	filename := fileID + ext

	if err := s.storage.Files.SaveFile(filename, input.RawBody); err != nil {
		return nil, err
	}

	b, err := s.services.Registry.AddAttachment(ctx, input.ID, input.Name, s.storage.Files.FileURL(filename))
	if err != nil {
		return nil, err
	}

	return &BusinessOutput{Body: mapBusinessResponse(b)}, nil
}

func (s *Server) handleDeleteBusinessAttachment(ctx context.Context, input *DeleteBusinessAttachmentInput) (*BusinessOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}

	// Find the stored filename before the record disappears.
	current, err := s.services.Registry.GetBusiness(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	var filename string
	for _, att := range current.Attachments {
		if att.ID == input.AttID {
			filename = path.Base(att.URL)
			break
		}
	}

	b, err := s.services.Registry.RemoveAttachment(ctx, input.ID, input.AttID)
	if err != nil {
		return nil, err
	}

	if filename != "" {
		if err := s.storage.Files.DeleteFile(filename); err != nil {
			s.logger.Warn("failed to delete attachment file", "filename", filename, "error", err)
		}
	}

	return &BusinessOutput{Body: mapBusinessResponse(b)}, nil
}
