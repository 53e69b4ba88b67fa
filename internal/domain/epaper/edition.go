package epaper

import "time"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type Edition struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	EditionDate time.Time  `gorm:"type:date;not null;index;index:idx_editions_status_date,priority:2" json:"edition_date"`
	Name        string     `gorm:"size:150" json:"name,omitempty"`
	Status      string     `gorm:"type:text;not null;default:'draft';index:idx_editions_status_date,priority:1" json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedBy   *uint      `json:"-"`

	Pages []Page `gorm:"constraint:OnDelete:CASCADE;" json:"pages,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e Edition) IsPublished() bool {
	return e.Status == StatusPublished
}

// DateString renders the edition date as YYYY-MM-DD.
func (e Edition) DateString() string {
	return e.EditionDate.Format(DateLayout)
}

const DateLayout = "2006-01-02"
