package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/everkeep/backend/internal/domain"
	"github.com/everkeep/backend/internal/repository"
	"github.com/everkeep/backend/internal/storage"
	"github.com/everkeep/backend/pkg/pdf"
)

type willService struct {
	repos        *repository.Repositories
	storage      *storage.Client
	pdfGenerator *pdf.Generator
}

func newWillService(
	repos *repository.Repositories,
	storageClient *storage.Client,
	pdfGenerator *pdf.Generator,
) *willService {
	return &willService{
		repos:        repos,
		storage:      storageClient,
		pdfGenerator: pdfGenerator,
	}
}

type WillInput struct {
	Title     string
	Body      string
	Completed bool
}

type AssetInput struct {
	Kind         domain.AssetKind
	Name         string
	Description  string
	Instructions string
}

type DocumentUpload struct {
	Document  *domain.WillDocument
	UploadURL string
}

func (s *willService) Create(ctx context.Context, userID uuid.UUID, input WillInput) (*domain.Will, error) {
	willID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate will id failed: %w", err)
	}

	status := domain.WillStatusDraft
	if input.Completed {
		status = domain.WillStatusCompleted
	}

	will := &domain.Will{
		ID:     willID,
		UserID: userID,
		Title:  input.Title,
		Body:   input.Body,
		Status: status,
	}

	if err := s.repos.Wills.Create(ctx, will); err != nil {
		return nil, fmt.Errorf("create will failed: %w", err)
	}

	return will, nil
}

// getOwned loads a will and enforces ownership.
func (s *willService) getOwned(ctx context.Context, userID, willID uuid.UUID) (*domain.Will, error) {
	will, err := s.repos.Wills.GetOneByID(ctx, willID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrWillNotFound
		}
		return nil, fmt.Errorf("get will failed: %w", err)
	}

	if will.UserID != userID {
		return nil, ErrForbidden
	}

	return will, nil
}

func (s *willService) GetOneByID(ctx context.Context, userID, willID uuid.UUID) (*domain.Will, error) {
	return s.getOwned(ctx, userID, willID)
}

func (s *willService) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.Will, error) {
	return s.repos.Wills.GetAllByUser(ctx, userID)
}

func (s *willService) Update(ctx context.Context, userID, willID uuid.UUID, input WillInput) error {
	will, err := s.getOwned(ctx, userID, willID)
	if err != nil {
		return err
	}

	// Once the death workflow owns the will it is frozen for editing.
	if will.Status == domain.WillStatusPendingVerification || will.Status == domain.WillStatusReleased {
		return ErrWillNotEditable
	}

	will.Title = input.Title
	will.Body = input.Body
	will.Status = domain.WillStatusDraft
	if input.Completed {
		will.Status = domain.WillStatusCompleted
	}

	if err := s.repos.Wills.Update(ctx, will); err != nil {
		return fmt.Errorf("update will failed: %w", err)
	}

	return nil
}

func (s *willService) AddAsset(ctx context.Context, userID, willID uuid.UUID, input AssetInput) (*domain.Asset, error) {
	if _, err := s.getOwned(ctx, userID, willID); err != nil {
		return nil, err
	}

	assetID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate asset id failed: %w", err)
	}

	asset := &domain.Asset{
		ID:           assetID,
		WillID:       willID,
		Kind:         input.Kind,
		Name:         input.Name,
		Description:  input.Description,
		Instructions: input.Instructions,
	}

	if err := s.repos.Assets.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("create asset failed: %w", err)
	}

	return asset, nil
}

func (s *willService) GetAssets(ctx context.Context, userID, willID uuid.UUID) ([]domain.Asset, error) {
	if _, err := s.getOwned(ctx, userID, willID); err != nil {
		return nil, err
	}

	return s.repos.Assets.GetAllByWill(ctx, willID)
}

func (s *willService) UpdateAsset(ctx context.Context, userID, willID, assetID uuid.UUID, input AssetInput) error {
	if _, err := s.getOwned(ctx, userID, willID); err != nil {
		return err
	}

	asset := &domain.Asset{
		ID:           assetID,
		WillID:       willID,
		Kind:         input.Kind,
		Name:         input.Name,
		Description:  input.Description,
		Instructions: input.Instructions,
	}

	if err := s.repos.Assets.Update(ctx, asset); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return ErrWillNotFound
		}
		return fmt.Errorf("update asset failed: %w", err)
	}

	return nil
}

func (s *willService) DeleteAsset(ctx context.Context, userID, willID, assetID uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, willID); err != nil {
		return err
	}

	if err := s.repos.Assets.Delete(ctx, assetID); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return ErrWillNotFound
		}
		return fmt.Errorf("delete asset failed: %w", err)
	}

	return nil
}

func (s *willService) ExportPDF(ctx context.Context, userID, willID uuid.UUID) ([]byte, error) {
	will, err := s.getOwned(ctx, userID, willID)
	if err != nil {
		return nil, err
	}

	owner, err := s.repos.Users.GetOneByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get will owner failed: %w", err)
	}

	assets, err := s.repos.Assets.GetAllByWill(ctx, willID)
	if err != nil {
		return nil, fmt.Errorf("get will assets failed: %w", err)
	}

	contacts, err := s.repos.Contacts.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get contacts failed: %w", err)
	}

	data, err := s.pdfGenerator.Generate(will, owner, assets, contacts)
	if err != nil {
		return nil, fmt.Errorf("generate pdf failed: %w", err)
	}

	return data, nil
}

func (s *willService) DocumentUploadURL(ctx context.Context, userID, willID uuid.UUID, fileName, contentType string) (*DocumentUpload, error) {
	if _, err := s.getOwned(ctx, userID, willID); err != nil {
		return nil, err
	}

	docID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate document id failed: %w", err)
	}

	doc := &domain.WillDocument{
		ID:          docID,
		WillID:      willID,
		FileName:    fileName,
		ContentType: contentType,
		StorageKey:  storage.RandomKey(willID),
	}

	uploadURL, err := s.storage.PresignPut(ctx, doc.StorageKey, contentType)
	if err != nil {
		return nil, fmt.Errorf("presign upload failed: %w", err)
	}

	if err := s.repos.WillDocuments.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create will document failed: %w", err)
	}

	return &DocumentUpload{Document: doc, UploadURL: uploadURL}, nil
}

func (s *willService) DocumentDownloadURL(ctx context.Context, userID, docID uuid.UUID) (string, error) {
	doc, err := s.repos.WillDocuments.GetOneByID(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrWillNotFound
		}
		return "", fmt.Errorf("get will document failed: %w", err)
	}

	if _, err := s.getOwned(ctx, userID, doc.WillID); err != nil {
		return "", err
	}

	return s.storage.PresignGet(ctx, doc.StorageKey)
}
