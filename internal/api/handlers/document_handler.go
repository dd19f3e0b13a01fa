package handlers

import (
	"finledger/internal/dto"
	"finledger/internal/models"
	"finledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	docService *service.DocumentService
	logger     *zap.Logger
}

func NewDocumentHandler(docService *service.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "File is required")
	}

	var docType models.DocumentType
	switch c.FormValue("type") {
	case "receipt":
		docType = models.DocumentTypeReceipt
	case "statement":
		docType = models.DocumentTypeStatement
	default:
		return errorJSON(c, fiber.StatusBadRequest, "Type must be receipt or statement")
	}

	src, err := file.Open()
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Failed to open file")
	}
	defer src.Close()

	doc, err := h.docService.Upload(c.Context(), userID, src, file.Filename, docType)
	if err != nil {
		h.logger.Error("Failed to upload document", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to upload document")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewDocumentResponse(doc))
}

// Process runs extraction over a previously uploaded document and imports
// the resulting line items into the given account.
func (h *DocumentHandler) Process(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	documentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid document ID")
	}

	var req dto.ProcessDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid account ID")
	}

	result, err := h.docService.Process(c.Context(), userID, documentID, accountID)
	if err != nil {
		// A batch where every item was dropped still carries its
		// per-item outcomes.
		if result != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(newImportResultResponse(result))
		}
		return respondServiceError(c, h.logger, err)
	}

	return c.JSON(newImportResultResponse(result))
}

func newImportResultResponse(result *service.BatchResult) dto.ImportResultResponse {
	resp := dto.ImportResultResponse{
		SavedCount: result.SavedCount,
		Total:      result.Total,
		Items:      make([]dto.ImportItemResponse, 0, len(result.Results)),
	}
	for _, item := range result.Results {
		out := dto.ImportItemResponse{
			Index:   item.Index,
			Skipped: item.Skipped,
		}
		if item.TransactionID != uuid.Nil {
			out.ID = item.TransactionID.String()
		}
		if item.Err != nil {
			out.Error = item.Err.Error()
		}
		resp.Items = append(resp.Items, out)
	}
	return resp
}

func (h *DocumentHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	limit := c.QueryInt("limit", 10)
	offset := c.QueryInt("offset", 0)

	docs, err := h.docService.List(c.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list documents")
	}

	return c.JSON(dto.NewDocumentResponses(docs))
}
