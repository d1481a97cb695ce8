package attachment

import (
	"time"

	attachmentDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/attachment"
)

type Attachment struct {
	ID        string
	ExpenseID string
	FileName  string
	FilePath  string
	MimeType  string
	Size      int64
	CreatedAt time.Time
}

func (a *Attachment) ToResponse() AttachmentResponse {
	return AttachmentResponse{
		ID:        a.ID,
		ExpenseID: a.ExpenseID,
		FileName:  a.FileName,
		MimeType:  a.MimeType,
		Size:      a.Size,
		CreatedAt: a.CreatedAt,
	}
}

func ToDataModel(a *Attachment) *attachmentDatamodel.Attachment {
	return &attachmentDatamodel.Attachment{
		ID:        a.ID,
		ExpenseID: a.ExpenseID,
		FileName:  a.FileName,
		FilePath:  a.FilePath,
		MimeType:  a.MimeType,
		Size:      a.Size,
		CreatedAt: a.CreatedAt,
	}
}

func FromDataModel(a *attachmentDatamodel.Attachment) *Attachment {
	return &Attachment{
		ID:        a.ID,
		ExpenseID: a.ExpenseID,
		FileName:  a.FileName,
		FilePath:  a.FilePath,
		MimeType:  a.MimeType,
		Size:      a.Size,
		CreatedAt: a.CreatedAt,
	}
}

type AttachmentResponse struct {
	ID        string    `json:"id"`
	ExpenseID string    `json:"expenseId"`
	FileName  string    `json:"fileName"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type AttachmentsResponse struct {
	ExpenseID   string               `json:"expenseId"`
	Attachments []AttachmentResponse `json:"attachments"`
}
