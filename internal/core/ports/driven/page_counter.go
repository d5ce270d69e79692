package driven

import "context"

// PageCounter inspects a PDF payload.
type PageCounter interface {
	// CountPages returns the number of pages in the document.
	// Returns an error wrapping domain.ErrNotPDF for unreadable input.
	CountPages(ctx context.Context, data []byte) (int, error)
}
