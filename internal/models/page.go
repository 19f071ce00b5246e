package models

// Page is one slice of an ordered product listing.
type Page struct {
	Items      []Product
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// NewPage computes TotalPages as ceil(total / pageSize).
func NewPage(items []Product, total int64, page, pageSize int) *Page {
	if items == nil {
		items = []Product{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Offset returns the number of rows preceding page.
func Offset(page, pageSize int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * pageSize
}
