package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/finance-dashboard/backend/internal/auth"
	"example.com/finance-dashboard/backend/internal/events"
	"example.com/finance-dashboard/backend/internal/models"
	"example.com/finance-dashboard/backend/internal/notifications"
	"example.com/finance-dashboard/backend/internal/repository"
	"example.com/finance-dashboard/backend/internal/storage"
)

const pdfContentType = "application/pdf"

var pdfMagic = []byte("%PDF-")

type DocumentHandler struct {
	Documents DocumentStore
	Blobs     storage.BlobStore
	Events    events.Publisher
	Notifier  *notifications.Hub
	MaxBytes  int64
	now       func() time.Time
}

// NewDocumentHandler создает обработчик документов.
func NewDocumentHandler(documents DocumentStore, blobs storage.BlobStore, publisher events.Publisher, notifier *notifications.Hub, maxBytes int64) *DocumentHandler {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &DocumentHandler{
		Documents: documents,
		Blobs:     blobs,
		Events:    publisher,
		Notifier:  notifier,
		MaxBytes:  maxBytes,
		now:       time.Now,
	}
}

type RenameDocumentRequest struct {
	FileName string `json:"file_name" validate:"required,max=255"`
}

// List возвращает документы пользователя.
func (h *DocumentHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	docs, err := h.Documents.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, docs)
}

// Upload принимает PDF, кладет его в хранилище и сохраняет метаданные.
func (h *DocumentHandler) Upload(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	if header.Size <= 0 {
		return badRequest(c, "file is empty")
	}
	if h.MaxBytes > 0 && header.Size > h.MaxBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
	}

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get(echo.HeaderContentType)))
	if contentType != pdfContentType {
		return badRequest(c, "only PDF files are allowed")
	}

	file, err := header.Open()
	if err != nil {
		return badRequest(c, "invalid file")
	}
	defer file.Close()

	if err := checkPDF(file); err != nil {
		return badRequest(c, "only PDF files are allowed")
	}

	ctx := c.Request().Context()
	fileName := sanitizeFileName(header.Filename)
	path := fmt.Sprintf("%s/%d_%s", userID, h.now().UnixMilli(), fileName)

	object, err := h.Blobs.Upload(ctx, path, pdfContentType, header.Size, file)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return serviceUnavailable(c, "storage is not configured")
		}
		if errors.Is(err, storage.ErrConflict) {
			return conflict(c, "document already exists")
		}
		slog.ErrorContext(ctx, "document upload failed", slog.String("path", path), slog.String("error", err.Error()))
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "upload failed"})
	}

	doc, err := h.Documents.Create(ctx, models.Document{
		UserID:      userID,
		FileName:    fileName,
		FilePath:    object.Path,
		PublicURL:   object.PublicURL,
		FileSize:    object.Size,
		ContentType: pdfContentType,
	})
	if err != nil {
		if removeErr := h.Blobs.Remove(context.WithoutCancel(ctx), object.Path); removeErr != nil {
			slog.ErrorContext(ctx, "orphaned document blob", slog.String("path", object.Path), slog.String("error", removeErr.Error()))
		}
		return serverError(c)
	}

	h.publish(ctx, events.DocumentEvent{
		Type:       events.DocumentUploaded,
		DocumentID: doc.ID,
		UserID:     userID,
		FilePath:   doc.FilePath,
		PublicURL:  doc.PublicURL,
	})
	if h.Notifier != nil {
		h.Notifier.NotifyDocumentUploaded(userID, notifications.DocumentUploaded{DocumentID: doc.ID, FileName: doc.FileName})
	}

	return c.JSON(http.StatusCreated, doc)
}

// Rename меняет отображаемое имя документа.
func (h *DocumentHandler) Rename(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	documentID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid document id")
	}

	var req RenameDocumentRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	fileName := strings.TrimSpace(req.FileName)
	if fileName == "" {
		return badRequest(c, "file_name is required")
	}

	doc, err := h.Documents.Rename(c.Request().Context(), userID, documentID, fileName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "document not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, doc)
}

// Delete удаляет файл из хранилища и его метаданные.
func (h *DocumentHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	documentID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid document id")
	}

	ctx := c.Request().Context()
	doc, err := h.Documents.GetByID(ctx, userID, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "document not found")
		}
		return serverError(c)
	}

	if err := h.Blobs.Remove(ctx, doc.FilePath); err != nil && !errors.Is(err, storage.ErrNotFound) {
		if errors.Is(err, storage.ErrNotConfigured) {
			return serviceUnavailable(c, "storage is not configured")
		}
		slog.ErrorContext(ctx, "document remove failed", slog.String("path", doc.FilePath), slog.String("error", err.Error()))
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "remove failed"})
	}

	if err := h.Documents.Delete(ctx, userID, documentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "document not found")
		}
		return serverError(c)
	}

	h.publish(ctx, events.DocumentEvent{
		Type:       events.DocumentDeleted,
		DocumentID: doc.ID,
		UserID:     userID,
		FilePath:   doc.FilePath,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *DocumentHandler) publish(ctx context.Context, event events.DocumentEvent) {
	event.OccurredAt = h.now().UTC()
	if err := h.Events.PublishDocument(ctx, event); err != nil {
		slog.WarnContext(ctx, "document event not published",
			slog.String("type", string(event.Type)),
			slog.String("document_id", event.DocumentID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// checkPDF сверяет сигнатуру файла и возвращает курсор в начало.
func checkPDF(file multipart.File) error {
	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(file, head); err != nil {
		return err
	}
	if !bytes.Equal(head, pdfMagic) {
		return errors.New("not a pdf")
	}
	_, err := file.Seek(0, io.SeekStart)
	return err
}

// sanitizeFileName оставляет в имени только безопасные символы и расширение .pdf.
func sanitizeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, stem)

	cleaned = strings.Trim(cleaned, "_-")
	if cleaned == "" {
		cleaned = "document"
	}
	return cleaned + ".pdf"
}
