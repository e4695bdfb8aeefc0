package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/core/ports"
)

type DocumentService struct {
	docs     ports.DocumentRepository
	licenses ports.LicenseRepository
	locs     ports.LocationRepository
}

func NewDocumentService(docs ports.DocumentRepository, licenses ports.LicenseRepository, locs ports.LocationRepository) *DocumentService {
	return &DocumentService{docs: docs, licenses: licenses, locs: locs}
}

// Upload stores a document and its content. The size and the sha256 digest
// are computed here, never trusted from the caller.
func (s *DocumentService) Upload(ctx context.Context, doc domain.ComplianceDocument, content []byte, meta domain.MutationMeta) (domain.ComplianceDocument, error) {
	doc.ByteSize = int64(len(content))
	sum := sha256.Sum256(content)
	doc.SHA256 = hex.EncodeToString(sum[:])
	doc.UploadedBy = meta.Actor

	if err := doc.Validate(); err != nil {
		return domain.ComplianceDocument{}, err
	}
	if len(content) == 0 {
		return domain.ComplianceDocument{}, domain.NewValidationError("content", "required")
	}

	if doc.LicenseID != nil {
		if _, err := s.licenses.Get(ctx, *doc.LicenseID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ComplianceDocument{}, domain.NewValidationError("license_id", fmt.Sprintf("license %d does not exist", *doc.LicenseID))
			}
			return domain.ComplianceDocument{}, err
		}
	}
	if doc.LocationID != nil {
		if _, err := s.locs.Get(ctx, *doc.LocationID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ComplianceDocument{}, domain.NewValidationError("location_id", fmt.Sprintf("location %d does not exist", *doc.LocationID))
			}
			return domain.ComplianceDocument{}, err
		}
	}

	return s.docs.Create(ctx, doc, content, meta.Normalize())
}

func (s *DocumentService) Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error) {
	return s.docs.Delete(ctx, id, meta.Normalize())
}

func (s *DocumentService) Get(ctx context.Context, id uint) (domain.ComplianceDocument, error) {
	return s.docs.Get(ctx, id)
}

func (s *DocumentService) Content(ctx context.Context, id uint) (domain.ComplianceDocument, []byte, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return domain.ComplianceDocument{}, nil, err
	}
	content, err := s.docs.GetContent(ctx, id)
	if err != nil {
		return domain.ComplianceDocument{}, nil, err
	}
	return doc, content, nil
}

func (s *DocumentService) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.ComplianceDocument, int64, error) {
	filter.Page = filter.Page.Normalize()
	return s.docs.List(ctx, filter)
}
