package epaper

import "time"

const (
	RelationNext     = "next"
	RelationPrevious = "previous"
)

// PageHotspot is a normalized rectangle on a page image.
//
// TargetPageNo is a soft reference resolved at read time. TargetHotspotID and
// LinkedHotspotID form a strict one-to-one pair between two hotspots: when A
// targets B, B.LinkedHotspotID is A. Neither column carries a foreign key.
type PageHotspot struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	PageID       uint   `gorm:"not null;index:idx_hotspots_page_kind,priority:1" json:"page_id"`
	Type         string `gorm:"type:text;not null;default:'relation'" json:"type"`
	RelationKind string `gorm:"type:text;index:idx_hotspots_page_kind,priority:2" json:"relation_kind"`

	TargetPageNo    *int  `json:"target_page_no"`
	TargetHotspotID *uint `gorm:"index" json:"target_hotspot_id"`
	LinkedHotspotID *uint `gorm:"index" json:"linked_hotspot_id"`

	X float64 `gorm:"type:decimal(8,6);not null" json:"x"`
	Y float64 `gorm:"type:decimal(8,6);not null" json:"y"`
	W float64 `gorm:"type:decimal(8,6);not null" json:"w"`
	H float64 `gorm:"type:decimal(8,6);not null" json:"h"`

	Label     *string `gorm:"size:150" json:"label"`
	CreatedBy *uint   `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h PageHotspot) Rect() Rect {
	return Rect{X: h.X, Y: h.Y, W: h.W, H: h.H}
}

// ValidRelationKind reports whether kind is one of the known relation labels.
func ValidRelationKind(kind string) bool {
	return kind == RelationNext || kind == RelationPrevious
}
