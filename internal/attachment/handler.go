package attachment

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/frahmantamala/expense-reports/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Upload(ctx context.Context, in UploadInput) (*Attachment, error)
	ListByExpense(ctx context.Context, expenseID string) ([]*Attachment, error)
	Open(ctx context.Context, id string) (*Attachment, io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	MaxBytes int64
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, maxBytes int64) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		MaxBytes:    maxBytes,
	}
}

// UploadAttachment handles POST /expenses/{id}/attachments with a multipart "file" field.
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	expenseID := chi.URLParam(r, "id")

	// leave room for the multipart envelope, the service enforces the real limit
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.Logger.Warn("UploadAttachment: invalid multipart body", "error", err, "expense_id", expenseID)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.WriteError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		h.WriteError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}

	att, err := h.Service.Upload(r.Context(), UploadInput{
		ExpenseID: expenseID,
		FileName:  header.Filename,
		MimeType:  mimeType,
		Content:   file,
	})
	if err != nil {
		h.Logger.Warn("UploadAttachment: service error", "error", err, "expense_id", expenseID)
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, att.ToResponse())
}

func (h *Handler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	expenseID := chi.URLParam(r, "id")

	attachments, err := h.Service.ListByExpense(r.Context(), expenseID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	responses := make([]AttachmentResponse, len(attachments))
	for i, a := range attachments {
		responses[i] = a.ToResponse()
	}
	h.WriteJSON(w, http.StatusOK, AttachmentsResponse{
		ExpenseID:   expenseID,
		Attachments: responses,
	})
}

// DownloadAttachment streams the stored file back with its original name.
func (h *Handler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	att, content, err := h.Service.Open(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", att.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(att.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": att.FileName}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content); err != nil {
		h.Logger.Warn("DownloadAttachment: copy interrupted", "error", err, "attachment_id", id)
	}
}

func (h *Handler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Logger.Warn("DeleteAttachment: service error", "error", err, "attachment_id", id)
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
