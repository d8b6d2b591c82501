package service

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Page is a normalised 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps page to at least 1 and size to 1..100, defaulting to 10.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of rows before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
