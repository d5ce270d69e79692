package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrAlreadyExists", ErrAlreadyExists, "already exists"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrUnauthorized", ErrUnauthorized, "unauthorized"},
		{"ErrForbidden", ErrForbidden, "forbidden"},
		{"ErrTokenExpired", ErrTokenExpired, "token expired"},
		{"ErrTokenInvalid", ErrTokenInvalid, "token invalid"},
		{"ErrSessionNotFound", ErrSessionNotFound, "session not found"},
		{"ErrInvalidCredentials", ErrInvalidCredentials, "invalid credentials"},
		{"ErrUnknownContext", ErrUnknownContext, "unknown context"},
		{"ErrInsufficientCredits", ErrInsufficientCredits, "insufficient credits"},
		{"ErrBatchEmpty", ErrBatchEmpty, "upload batch is empty"},
		{"ErrBatchInProgress", ErrBatchInProgress, "upload batch already in progress"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrUnauthorized,
		ErrForbidden,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrSessionNotFound,
		ErrInvalidCredentials,
		ErrServiceUnavailable,
		ErrUnknownContext,
		ErrInsufficientCredits,
		ErrNotPDF,
		ErrBatchEmpty,
		ErrBatchInProgress,
		ErrBatchClosed,
		ErrLastAdmin,
		ErrInvitationClosed,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestWrappedErrorsUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("debit account acct-1: %w", ErrInsufficientCredits)
	if !errors.Is(wrapped, ErrInsufficientCredits) {
		t.Error("expected wrapped error to match ErrInsufficientCredits")
	}
}
