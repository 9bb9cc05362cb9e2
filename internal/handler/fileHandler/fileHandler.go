package fileHandler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"filevault/internal/apperrors"
	"filevault/internal/model/fileInfo"
	"filevault/internal/service/fileService"
	"filevault/pkg/httpx"
	"filevault/pkg/middleware"

	"github.com/gabriel-vasile/mimetype"
)

const (
	formField = "file"
	// parts above this size spill to temp files
	multipartMemory = 32 << 20
)

type deleteRequest struct {
	FileIDs []string `json:"fileIds" validate:"required"`
}

type readRequest struct {
	FileID string `json:"fileIds" validate:"required"`
}

type listResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Files   []fileInfo.Entry `json:"files"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type readResponse struct {
	Success bool     `json:"success"`
	Data    fileData `json:"data"`
}

type fileData struct {
	FileName string `json:"fileName"`
	Path     string `json:"path"`
}

type FileHandler struct {
	fileService    *fileService.FileService
	maxUploadBytes int64
}

func NewFileHandler(fileService *fileService.FileService, maxUploadBytes int64) *FileHandler {
	return &FileHandler{fileService: fileService, maxUploadBytes: maxUploadBytes}
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteMessage(w, http.StatusRequestEntityTooLarge, "Upload is too large")
			return
		}
		httpx.WriteError(w, r, fmt.Errorf("%w: expected multipart form", apperrors.ErrInvalidInput))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[formField]
	if len(headers) == 0 {
		httpx.WriteError(w, r, fmt.Errorf("%w: No files uploaded", apperrors.ErrInvalidInput))
		return
	}

	uploads := make([]fileInfo.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			httpx.WriteError(w, r, fmt.Errorf("%w: unreadable part %q", apperrors.ErrInvalidInput, fh.Filename))
			return
		}
		defer func(f multipart.File) { _ = f.Close() }(f)
		uploads = append(uploads, fileInfo.Upload{Name: fh.Filename, Size: fh.Size, Content: f})
	}

	stored, err := h.fileService.Upload(r.Context(), identity.ID, uploads)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, listResponse{
		Success: true,
		Message: "File uploaded successfully",
		Files:   stored,
	})
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	entries, err := h.fileService.List(r.Context(), identity.ID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{Success: true, Files: entries})
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	var req deleteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if err := h.fileService.Delete(r.Context(), identity.ID, req.FileIDs); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Files deleted successfully"})
}

// Read returns the file inline as a base64 data URI.
func (h *FileHandler) Read(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	var req readRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	data, err := h.fileService.Read(r.Context(), identity.ID, req.FileID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, readResponse{
		Success: true,
		Data: fileData{
			FileName: req.FileID,
			Path:     DataURI(data),
		},
	})
}

func DataURI(data []byte) string {
	mediaType := strings.ReplaceAll(mimetype.Detect(data).String(), " ", "")
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
