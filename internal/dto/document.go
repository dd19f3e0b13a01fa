package dto

import (
	"time"

	"finledger/internal/models"
)

type ProcessDocumentRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
}

type DocumentResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	FileName  string `json:"file_name"`
	FileSize  int64  `json:"file_size"`
	CreatedAt string `json:"created_at"`
}

type ImportItemResponse struct {
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ImportResultResponse struct {
	SavedCount int                  `json:"saved_count"`
	Total      int                  `json:"total"`
	Items      []ImportItemResponse `json:"items"`
}

func NewDocumentResponse(doc *models.Document) DocumentResponse {
	return DocumentResponse{
		ID:        doc.ID.String(),
		Type:      string(doc.Type),
		FileName:  doc.FileName,
		FileSize:  doc.FileSize,
		CreatedAt: doc.CreatedAt.Format(time.RFC3339),
	}
}

func NewDocumentResponses(docs []models.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, NewDocumentResponse(&docs[i]))
	}
	return out
}
