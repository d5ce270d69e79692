package mocks

import (
	"bytes"
	"context"
	"fmt"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

// MockPageCounter returns a fixed page count for payloads starting with the
// PDF magic bytes and ErrNotPDF otherwise.
type MockPageCounter struct {
	Pages int
	Err   error
}

func (m *MockPageCounter) CountPages(ctx context.Context, data []byte) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, fmt.Errorf("%w: missing header", domain.ErrNotPDF)
	}
	return m.Pages, nil
}
