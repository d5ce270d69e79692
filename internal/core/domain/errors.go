package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrServiceUnavailable indicates a backing service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrUnknownContext indicates a context id the user cannot act as
	ErrUnknownContext = errors.New("unknown context")

	// ErrInsufficientCredits indicates the account balance cannot cover the charge
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrNotPDF indicates an uploaded file is not a PDF document
	ErrNotPDF = errors.New("file is not a pdf")

	// ErrBatchEmpty indicates an upload batch has no files to start
	ErrBatchEmpty = errors.New("upload batch is empty")

	// ErrBatchInProgress indicates an upload batch already has files uploading
	ErrBatchInProgress = errors.New("upload batch already in progress")

	// ErrBatchClosed indicates the upload batch has been discarded
	ErrBatchClosed = errors.New("upload batch closed")

	// ErrLastAdmin indicates the operation would leave an organization without an admin
	ErrLastAdmin = errors.New("organization must keep at least one admin")

	// ErrInvitationClosed indicates the invitation was already answered, revoked or expired
	ErrInvitationClosed = errors.New("invitation no longer open")
)
