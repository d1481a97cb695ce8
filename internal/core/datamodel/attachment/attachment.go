package attachment

import "time"

type Attachment struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	ExpenseID string    `gorm:"column:expense_id;type:varchar(36);not null;index"`
	FileName  string    `gorm:"column:file_name;not null"`
	FilePath  string    `gorm:"column:file_path;not null"`
	MimeType  string    `gorm:"column:mime_type;not null"`
	Size      int64     `gorm:"column:size;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Attachment) TableName() string {
	return "attachments"
}
