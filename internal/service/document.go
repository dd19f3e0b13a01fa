package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"finledger/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentService stores uploaded receipts and statements and hands them to
// the importer.
type DocumentService struct {
	docs      DocumentStore
	importer  *ImportService
	uploadDir string
	logger    *zap.Logger
}

func NewDocumentService(docs DocumentStore, importer *ImportService, uploadDir string, logger *zap.Logger) *DocumentService {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		logger.Warn("Failed to create upload directory", zap.Error(err))
	}

	return &DocumentService{
		docs:      docs,
		importer:  importer,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// Upload saves the file and its record.
func (s *DocumentService) Upload(ctx context.Context, userID uuid.UUID, file io.Reader, fileName string, docType models.DocumentType) (*models.Document, error) {
	fileID := uuid.New()
	ext := filepath.Ext(fileName)
	storedName := fileID.String() + ext
	filePath := filepath.Join(s.uploadDir, storedName)

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	fileSize, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	now := time.Now()
	doc := &models.Document{
		ID:        fileID,
		UserID:    userID,
		Type:      docType,
		FileName:  fileName,
		FileSize:  fileSize,
		FileURL:   "/uploads/" + storedName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	return doc, nil
}

// Process runs the extraction importer over a previously uploaded document.
func (s *DocumentService) Process(ctx context.Context, userID, documentID, accountID uuid.UUID) (*BatchResult, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil || doc.UserID != userID {
		return nil, ErrDocumentNotFound
	}

	filePath := filepath.Join(s.uploadDir, filepath.Base(doc.FileURL))
	isStatement := doc.Type == models.DocumentTypeStatement

	return s.importer.ImportDocument(ctx, userID, accountID, filePath, isStatement)
}

// List returns the user's uploaded documents.
func (s *DocumentService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Document, error) {
	return s.docs.ListByUser(ctx, userID, limit, offset)
}
