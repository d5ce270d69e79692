package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

const (
	// maxUploadBytes bounds one multipart request
	maxUploadBytes = 100 << 20
	// maxUploadMemory is kept in memory before parts spill to disk
	maxUploadMemory = 32 << 20
)

// DocumentListResponse is one page of the ledger
// @Description Filtered document ledger
type DocumentListResponse struct {
	Documents []*domain.Document    `json:"documents"`
	Filter    domain.DocumentFilter `json:"filter"`
}

// handleListDocuments godoc
// @Summary      Document ledger
// @Description  Documents of every context the caller can act as, newest first
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        q        query     string  false  "Case-insensitive file name substring"
// @Param        status   query     string  false  "completed, processing, failed or all"
// @Param        context  query     string  false  "Context ID or all"
// @Success      200      {object}  DocumentListResponse
// @Router       /documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.DocumentFilter{
		Text:      q.Get("q"),
		Status:    q.Get("status"),
		ContextID: q.Get("context"),
	}

	docs, err := s.docService.List(r.Context(), GetAuthContext(r.Context()), filter)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to list documents")
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs, Filter: filter})
}

// handleGetDocument godoc
// @Summary      Get document
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  domain.Document
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /documents/{id} [get]
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docService.Get(r.Context(), GetAuthContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to get document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Upload batch endpoints

// handleCreateUpload godoc
// @Summary      Open upload batch
// @Tags         Uploads
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  domain.UploadBatchSnapshot
// @Router       /uploads [post]
func (s *Server) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.uploadService.Create(r.Context(), GetAuthContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to create upload batch")
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// handleGetUpload godoc
// @Summary      Upload batch progress
// @Tags         Uploads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Batch ID"
// @Success      200  {object}  domain.UploadBatchSnapshot
// @Failure      404  {object}  ErrorResponse
// @Router       /uploads/{id} [get]
func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.uploadService.Get(r.Context(), GetAuthContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to get upload batch")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleDiscardUpload godoc
// @Summary      Discard upload batch
// @Description  Closes the batch and cancels its pending timers
// @Tags         Uploads
// @Security     BearerAuth
// @Param        id   path  string  true  "Batch ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /uploads/{id} [delete]
func (s *Server) handleDiscardUpload(w http.ResponseWriter, r *http.Request) {
	if err := s.uploadService.Discard(r.Context(), GetAuthContext(r.Context()), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err, "failed to discard upload batch")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddUploadFiles godoc
// @Summary      Add files
// @Description  Admits PDF parts of a multipart form (field "files"); other files are reported as rejected
// @Tags         Uploads
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true   "Batch ID"
// @Param        source  formData  string  false  "drop or picker"
// @Param        files   formData  file    true   "Files"
// @Success      200     {object}  domain.AddFilesResult
// @Failure      400     {object}  ErrorResponse
// @Failure      409     {object}  ErrorResponse  "Batch closed"
// @Router       /uploads/{id}/files [post]
func (s *Server) handleAddUploadFiles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	source := domain.UploadSource(r.FormValue("source"))
	if source == "" {
		source = domain.UploadSourceDrop
	}

	headers := r.MultipartForm.File["files"]
	candidates := make([]domain.UploadCandidate, 0, len(headers))
	for _, fh := range headers {
		c, err := readCandidate(fh)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		candidates = append(candidates, c)
	}

	result, err := s.uploadService.AddFiles(r.Context(), GetAuthContext(r.Context()), r.PathValue("id"), source, candidates)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to add files")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func readCandidate(fh *multipart.FileHeader) (domain.UploadCandidate, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.UploadCandidate{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.UploadCandidate{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return domain.UploadCandidate{
		Name:      fh.Filename,
		MediaType: fh.Header.Get("Content-Type"),
		Data:      data,
	}, nil
}

// handleRemoveUploadFile godoc
// @Summary      Remove pending file
// @Tags         Uploads
// @Security     BearerAuth
// @Param        id      path  string  true  "Batch ID"
// @Param        fileId  path  string  true  "File ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse  "No pending file with that id"
// @Router       /uploads/{id}/files/{fileId} [delete]
func (s *Server) handleRemoveUploadFile(w http.ResponseWriter, r *http.Request) {
	removed, err := s.uploadService.RemoveFile(r.Context(), GetAuthContext(r.Context()), r.PathValue("id"), r.PathValue("fileId"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to remove file")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "no pending file with that id")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStartUpload godoc
// @Summary      Start upload
// @Description  Begins the staggered upload of every pending file, attributed to the active context
// @Tags         Uploads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Batch ID"
// @Success      202  {object}  domain.UploadBatchSnapshot
// @Failure      400  {object}  ErrorResponse  "Batch is empty"
// @Failure      409  {object}  ErrorResponse  "Batch already started"
// @Router       /uploads/{id}/start [post]
func (s *Server) handleStartUpload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.uploadService.Start(r.Context(), GetAuthContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to start upload")
		return
	}
	writeJSON(w, http.StatusAccepted, snap)
}
