package platzi

import "strings"

// Category is a catalog category.
type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug,omitempty"`
	Image string `json:"image"`
}

// Product is a catalog product.
type Product struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug,omitempty"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Category    Category `json:"category"`
}

// ListParams filters ListProducts. Zero CategoryID means all categories.
type ListParams struct {
	Offset     int
	Limit      int
	CategoryID int
}

const (
	DefaultOffset = 0
	DefaultLimit  = 24
)

// PlaceholderImage is used when a product has no usable image.
const PlaceholderImage = "/file.svg"

// CleanImageURL strips whitespace plus the stray quotes and brackets the
// catalog sometimes leaves around image URLs. It returns "" when nothing usable remains.
func CleanImageURL(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), `"[]`)
}

// PrimaryImage returns the first usable image or PlaceholderImage.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return PlaceholderImage
	}
	if cleaned := CleanImageURL(p.Images[0]); cleaned != "" {
		return cleaned
	}
	return PlaceholderImage
}

// CleanImages returns every non-empty cleaned image URL.
func (p Product) CleanImages() []string {
	out := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if cleaned := CleanImageURL(img); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
