package models

// Attachment kind tags. LINK rows point at external URLs and carry no
// stored content.
const (
	AttachmentImage = "IMAGE"
	AttachmentFile  = "FILE"
	AttachmentLink  = "LINK"
)

// ValidAttachmentType reports whether t is a known attachment kind.
func ValidAttachmentType(t string) bool {
	return t == AttachmentImage || t == AttachmentFile || t == AttachmentLink
}

// Attachment belongs to exactly one post.
type Attachment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"index;not null" json:"post_id"`
	FileURL  string `gorm:"size:1024;not null" json:"file_url"`
	FileName string `gorm:"size:255;not null" json:"file_name"`
	FileType string `gorm:"size:16;not null;default:'FILE'" json:"file_type"`
}
