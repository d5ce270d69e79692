// Package pdf counts pages of uploaded documents with pdfcpu.
package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PageCounter = (*PageCounter)(nil)

// PageCounter implements driven.PageCounter using pdfcpu
type PageCounter struct {
	conf *model.Configuration
}

// NewPageCounter creates a page counter with relaxed validation,
// matching what common viewers accept.
func NewPageCounter() *PageCounter {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PageCounter{conf: conf}
}

// CountPages parses the payload and returns its page count
func (c *PageCounter) CountPages(ctx context.Context, data []byte) (n int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, fmt.Errorf("%w: missing header", domain.ErrNotPDF)
	}

	// pdfcpu panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: %v", domain.ErrNotPDF, r)
		}
	}()

	n, err = api.PageCount(bytes.NewReader(data), c.conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrNotPDF, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: no pages", domain.ErrNotPDF)
	}
	return n, nil
}
