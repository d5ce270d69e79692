package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

func TestCountPages_RejectsNonPDF(t *testing.T) {
	counter := NewPageCounter()

	tests := map[string][]byte{
		"empty":     nil,
		"text":      []byte("hello world"),
		"png":       {0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
		"truncated": []byte("%PDF-1.7\n1 0 obj\n<<"),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			n, err := counter.CountPages(context.Background(), data)
			if !errors.Is(err, domain.ErrNotPDF) {
				t.Fatalf("expected ErrNotPDF, got %v", err)
			}
			if n != 0 {
				t.Errorf("expected 0 pages, got %d", n)
			}
		})
	}
}

func TestCountPages_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPageCounter().CountPages(ctx, []byte("%PDF-1.7"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
