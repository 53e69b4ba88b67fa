package media

// PageImage holds the storage keys of the three renditions of a scanned page.
type PageImage struct {
	OriginalPath string  `gorm:"column:image_original_path;size:500;not null" json:"image_original_path"`
	LargePath    *string `gorm:"column:image_large_path;size:500" json:"image_large_path,omitempty"`
	ThumbPath    *string `gorm:"column:image_thumb_path;size:500" json:"image_thumb_path,omitempty"`
}

// Paths returns the non-empty storage keys, original first.
func (p PageImage) Paths() []string {
	out := make([]string, 0, 3)
	if p.OriginalPath != "" {
		out = append(out, p.OriginalPath)
	}
	for _, v := range []*string{p.LargePath, p.ThumbPath} {
		if v != nil && *v != "" {
			out = append(out, *v)
		}
	}
	return out
}
