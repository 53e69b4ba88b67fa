package epaper

import (
	"time"

	"epaper-app/internal/domain/media"
)

// Page is one scanned page of an edition. PageNo is unique within the edition.
type Page struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	EditionID  uint  `gorm:"not null;uniqueIndex:idx_pages_edition_page_no,priority:1;index:idx_pages_edition_category,priority:1" json:"edition_id"`
	PageNo     int   `gorm:"not null;uniqueIndex:idx_pages_edition_page_no,priority:2" json:"page_no"`
	CategoryID *uint `gorm:"index:idx_pages_edition_category,priority:2" json:"category_id,omitempty"`

	Category *Category `gorm:"constraint:OnDelete:SET NULL;" json:"-"`

	media.PageImage `gorm:"embedded"`

	Width      *int  `json:"width,omitempty"`
	Height     *int  `json:"height,omitempty"`
	UploadedBy *uint `json:"-"`

	Hotspots []PageHotspot `gorm:"constraint:OnDelete:CASCADE;" json:"hotspots,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
